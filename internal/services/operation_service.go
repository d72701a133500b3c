package services

import (
	"context"
	"fmt"

	"ai-tools-backend/internal/apperr"
	"ai-tools-backend/internal/fallback"
	"ai-tools-backend/internal/llm"
	"ai-tools-backend/internal/models"
	"ai-tools-backend/internal/resume"
	"github.com/sirupsen/logrus"
)

type TextGenerator interface {
	Complete(ctx context.Context, prompt string, maxTokens int) (string, error)
}

type ChainRunner interface {
	Name() string
	Run(ctx context.Context, req *models.GenerationRequest) (*fallback.Result, error)
}

type CreationWriter interface {
	CreateCreation(ctx context.Context, c *models.Creation) (*models.Creation, error)
}

// UsageMeter reserves a quota slot before an operation and releases it when
// the operation fails.
type UsageMeter interface {
	Reserve(ctx context.Context, userID string, tier models.Tier) error
	Release(ctx context.Context, userID string, tier models.Tier) error
}

type CreationPublisher interface {
	PublishCreation(ctx context.Context, c *models.Creation) error
}

// Outcome is what an operation hands back to its endpoint.
type Outcome struct {
	Content  string
	Creation *models.Creation
	// Chain is set for image operations only.
	Chain *fallback.Result
}

type OperationService struct {
	text      TextGenerator
	chains    map[models.OperationType]ChainRunner
	ledger    CreationWriter
	usage     UsageMeter
	publisher CreationPublisher
	limits    Limits
	logger    logrus.FieldLogger
}

type Option func(*OperationService)

// WithPublisher broadcasts published creations. Without it nothing is broadcast.
func WithPublisher(p CreationPublisher) Option {
	return func(s *OperationService) { s.publisher = p }
}

func WithLimits(l Limits) Option {
	return func(s *OperationService) { s.limits = l }
}

func NewOperationService(text TextGenerator, chains map[models.OperationType]ChainRunner, ledger CreationWriter,
	usage UsageMeter, logger logrus.FieldLogger, opts ...Option) *OperationService {
	s := &OperationService{
		text:   text,
		chains: chains,
		ledger: ledger,
		usage:  usage,
		limits: DefaultLimits(),
		logger: logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Execute validates req, reserves a quota slot, runs the operation and
// records the creation. Validation failures never reach a provider or the
// quota; any later failure hands the slot back.
func (s *OperationService) Execute(ctx context.Context, req *models.GenerationRequest) (out *Outcome, err error) {
	if err := s.limits.Validate(req); err != nil {
		return nil, err
	}

	log := s.logger.WithFields(logrus.Fields{
		"operation": req.Operation,
		"user_id":   req.RequesterID,
	})

	if err := s.usage.Reserve(ctx, req.RequesterID, req.Tier); err != nil {
		return nil, err
	}
	defer func() {
		if err == nil {
			return
		}
		if rerr := s.usage.Release(context.WithoutCancel(ctx), req.RequesterID, req.Tier); rerr != nil {
			log.WithError(rerr).Warn("failed to release usage")
		}
	}()

	switch req.Operation {
	case models.OperationArticle, models.OperationBlogTitle, models.OperationResumeReview:
		out, err = s.runText(ctx, req)
	default:
		out, err = s.runChain(ctx, req, log)
	}
	if err != nil {
		return out, err
	}

	creation, err := s.ledger.CreateCreation(ctx, &models.Creation{
		UserID:  req.RequesterID,
		Prompt:  LedgerPrompt(req),
		Content: out.Content,
		Type:    req.Operation,
		Publish: req.Publish,
	})
	if err != nil {
		log.WithError(err).WithField("content_length", len(out.Content)).Error("failed to record creation")
		return out, apperr.Wrap(apperr.KindInternal, "failed to record creation", err)
	}
	out.Creation = creation

	if creation.Publish && s.publisher != nil {
		if err := s.publisher.PublishCreation(ctx, creation); err != nil {
			log.WithError(err).Warn("failed to broadcast creation")
		}
	}

	return out, nil
}

func (s *OperationService) runText(ctx context.Context, req *models.GenerationRequest) (*Outcome, error) {
	prompt := req.Prompt
	maxTokens := llm.BlogTitleMaxTokens

	switch req.Operation {
	case models.OperationArticle:
		maxTokens = req.Length
		if maxTokens <= 0 {
			maxTokens = llm.DefaultArticleTokens
		}
	case models.OperationResumeReview:
		text, err := resume.Extract(req.Payload)
		if err != nil {
			return nil, err
		}
		prompt = resume.ReviewPrompt(text)
		maxTokens = llm.ResumeReviewMaxTokens
	}

	content, err := s.text.Complete(ctx, prompt, maxTokens)
	if err != nil {
		return nil, err
	}
	return &Outcome{Content: content}, nil
}

func (s *OperationService) runChain(ctx context.Context, req *models.GenerationRequest, log logrus.FieldLogger) (*Outcome, error) {
	chain, ok := s.chains[req.Operation]
	if !ok {
		return nil, apperr.New(apperr.KindInternal, fmt.Sprintf("no chain configured for %s", req.Operation))
	}

	res, err := chain.Run(ctx, req)
	if err != nil {
		return &Outcome{Chain: res}, err
	}

	if res.EffectFallback {
		log.WithField("chain", chain.Name()).Info("returning untransformed image")
	}
	return &Outcome{Content: res.URL, Chain: res}, nil
}

// LedgerPrompt is the prompt text stored with a creation.
func LedgerPrompt(req *models.GenerationRequest) string {
	switch req.Operation {
	case models.OperationBgRemoval:
		return "Removed background from image"
	case models.OperationObjectRemoval:
		return fmt.Sprintf("Removed %s from image", req.ObjectLabel)
	case models.OperationResumeReview:
		return resume.LedgerPrompt
	default:
		return req.Prompt
	}
}
