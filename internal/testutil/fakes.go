// Package testutil holds in-memory fakes shared by package tests.
package testutil

import (
	"context"
	"fmt"
	"sync"

	"ai-tools-backend/internal/apperr"
	"ai-tools-backend/internal/artifacts"
	"ai-tools-backend/internal/models"
)

// FakeProvider returns Artifact, or Err, or blocks until ctx ends when Block is set.
type FakeProvider struct {
	ProviderName string
	Artifact     *models.Artifact
	Err          error
	Block        bool

	mu    sync.Mutex
	calls int
}

func (p *FakeProvider) Name() string { return p.ProviderName }

func (p *FakeProvider) Attempt(ctx context.Context, req *models.GenerationRequest) (*models.Artifact, error) {
	p.mu.Lock()
	p.calls++
	p.mu.Unlock()

	if p.Block {
		<-ctx.Done()
		return nil, apperr.Wrap(apperr.KindProviderUnavailable, p.ProviderName+": timed out", ctx.Err())
	}
	if p.Err != nil {
		return nil, p.Err
	}
	art := *p.Artifact
	return &art, nil
}

func (p *FakeProvider) Calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

// ImageProvider succeeds with a small PNG-tagged artifact.
func ImageProvider(name string) *FakeProvider {
	return &FakeProvider{
		ProviderName: name,
		Artifact:     &models.Artifact{Data: []byte("png-from-" + name), MimeKind: "image/png", Stage: name},
	}
}

func FailingProvider(name string, kind apperr.Kind) *FakeProvider {
	return &FakeProvider{ProviderName: name, Err: apperr.New(kind, name+" failed")}
}

// FakeStore keeps uploads in memory. Object URLs are https://store.test/<key>
// so tests can tell which artifact was stored.
type FakeStore struct {
	PutErr    error
	EffectErr error

	mu      sync.Mutex
	Objects map[string]*models.Artifact
}

func NewFakeStore() *FakeStore {
	return &FakeStore{Objects: map[string]*models.Artifact{}}
}

func (s *FakeStore) Name() string { return "fake" }

func (s *FakeStore) Put(ctx context.Context, art *models.Artifact, key string) (*artifacts.Object, error) {
	if s.PutErr != nil {
		return nil, s.PutErr
	}
	if err := artifacts.Validate(art); err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.Objects[key] = art
	s.mu.Unlock()
	return &artifacts.Object{ID: key, URL: "https://store.test/" + key, MimeKind: art.MimeKind}, nil
}

func (s *FakeStore) EffectURL(ctx context.Context, obj *artifacts.Object, effect artifacts.Effect) (string, error) {
	if s.EffectErr != nil {
		return "", s.EffectErr
	}
	if effect.Target != "" {
		return fmt.Sprintf("%s?effect=%s:%s", obj.URL, effect.Name, effect.Target), nil
	}
	return obj.URL + "?effect=" + effect.Name, nil
}

// Stored returns the only stored artifact, or nil when there is not exactly one.
func (s *FakeStore) Stored() *models.Artifact {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.Objects) != 1 {
		return nil
	}
	for _, art := range s.Objects {
		return art
	}
	return nil
}

func (s *FakeStore) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.Objects)
}
