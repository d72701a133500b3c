// Package fallback runs an ordered list of providers for one image operation
// and hosts whatever the first successful stage produced.
package fallback

import (
	"context"
	"fmt"
	"time"

	"ai-tools-backend/internal/apperr"
	"ai-tools-backend/internal/artifacts"
	"ai-tools-backend/internal/metrics"
	"ai-tools-backend/internal/models"
	"ai-tools-backend/internal/providers"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type Chain struct {
	name           string
	providers      []providers.Provider
	final          providers.Finalizer
	store          artifacts.Store
	attemptTimeout time.Duration
	logger         logrus.FieldLogger
	now            func() time.Time
}

type Option func(*Chain)

// WithAttemptTimeout bounds each provider attempt. Zero leaves only the HTTP client timeout.
func WithAttemptTimeout(d time.Duration) Option {
	return func(c *Chain) { c.attemptTimeout = d }
}

func WithLogger(logger logrus.FieldLogger) Option {
	return func(c *Chain) { c.logger = logger }
}

func WithClock(now func() time.Time) Option {
	return func(c *Chain) { c.now = now }
}

// New builds a chain. Provider order is priority order and is never changed at runtime.
func New(name string, ps []providers.Provider, final providers.Finalizer, store artifacts.Store, opts ...Option) *Chain {
	c := &Chain{
		name:      name,
		providers: append([]providers.Provider(nil), ps...),
		final:     final,
		store:     store,
		logger:    logrus.StandardLogger(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Chain) Name() string { return c.name }

// Stages lists provider names in the order they are tried, final stage last.
func (c *Chain) Stages() []string {
	names := make([]string, 0, len(c.providers)+1)
	for _, p := range c.providers {
		names = append(names, p.Name())
	}
	return append(names, c.final.Name())
}

type Result struct {
	// URL is the effect URL when one was requested and accepted, else the stored URL.
	URL      string
	Object   *artifacts.Object
	Artifact *models.Artifact
	Attempts []models.ProviderAttempt
	// EffectFallback is set when the host refused the effect and URL is untransformed.
	EffectFallback bool
}

// Run tries each provider in order, falls back to the finalizer, and stores
// the artifact. The only error it returns is KindStorageUnavailable; the
// partial Result is still returned alongside it for diagnostics.
func (c *Chain) Run(ctx context.Context, req *models.GenerationRequest) (*Result, error) {
	res := &Result{Attempts: make([]models.ProviderAttempt, 0, len(c.providers)+1)}
	log := c.logger.WithFields(logrus.Fields{
		"chain":     c.name,
		"operation": req.Operation,
		"user_id":   req.RequesterID,
	})

	for _, p := range c.providers {
		art, attempt := c.attempt(ctx, p, req)
		res.Attempts = append(res.Attempts, attempt)

		if art != nil {
			res.Artifact = art
			break
		}
		log.WithFields(logrus.Fields{
			"provider": attempt.Provider,
			"error":    attempt.Error,
		}).Warn("provider attempt failed, trying next stage")
	}

	if res.Artifact == nil {
		started := c.now()
		res.Artifact = c.final.Finalize(req)
		d := c.now().Sub(started)
		res.Attempts = append(res.Attempts, models.ProviderAttempt{
			Provider:  c.final.Name(),
			StartedAt: started,
			Duration:  d,
			Outcome:   models.OutcomeSuccess,
		})
		metrics.RecordProviderAttempt(c.name, c.final.Name(), true, d)
		log.WithField("provider", c.final.Name()).Info("all providers failed, using final stage")
	}

	key := fmt.Sprintf("%s/%s/%s", req.Operation, req.RequesterID, uuid.NewString())
	obj, err := c.store.Put(ctx, res.Artifact, key)
	if err != nil {
		log.WithError(err).WithField("store", c.store.Name()).Error("artifact produced but could not be stored")
		if apperr.KindOf(err) != apperr.KindStorageUnavailable {
			err = apperr.Wrap(apperr.KindStorageUnavailable, "failed to store artifact", err)
		}
		return res, err
	}
	res.Object = obj
	res.URL = obj.URL

	if res.Artifact.Effect != "" {
		effect := artifacts.Effect{Name: res.Artifact.Effect, Target: req.ObjectLabel}
		effectURL, err := c.store.EffectURL(ctx, obj, effect)
		if err != nil {
			res.EffectFallback = true
			metrics.RecordEffectFallback(c.store.Name(), effect.Name)
			log.WithError(err).WithField("effect", effect.Name).Warn("host effect rejected, returning untransformed image")
		} else {
			res.URL = effectURL
		}
	}

	log.WithFields(logrus.Fields{
		"stage":    res.Artifact.Stage,
		"attempts": len(res.Attempts),
		"url":      res.URL,
	}).Info("chain completed")

	return res, nil
}

func (c *Chain) attempt(ctx context.Context, p providers.Provider, req *models.GenerationRequest) (*models.Artifact, models.ProviderAttempt) {
	attemptCtx := ctx
	if c.attemptTimeout > 0 {
		var cancel context.CancelFunc
		attemptCtx, cancel = context.WithTimeout(ctx, c.attemptTimeout)
		defer cancel()
	}

	started := c.now()
	art, err := p.Attempt(attemptCtx, req)
	attempt := models.ProviderAttempt{
		Provider:  p.Name(),
		StartedAt: started,
		Duration:  c.now().Sub(started),
	}

	if err == nil && art != nil {
		if art.Stage == "" {
			art.Stage = p.Name()
		}
		attempt.Outcome = models.OutcomeSuccess
		metrics.RecordProviderAttempt(c.name, p.Name(), true, attempt.Duration)
		return art, attempt
	}

	if err == nil {
		err = apperr.New(apperr.KindProviderRejected, p.Name()+": returned no artifact")
	}
	attempt.Outcome = models.OutcomeFailure
	attempt.Error = err.Error()
	metrics.RecordProviderAttempt(c.name, p.Name(), false, attempt.Duration)
	return nil, attempt
}
