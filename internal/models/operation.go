package models

import (
	"time"
)

type OperationType string

const (
	OperationArticle       OperationType = "article"
	OperationBlogTitle     OperationType = "blog-title"
	OperationImage         OperationType = "image"
	OperationBgRemoval     OperationType = "bg-removal"
	OperationObjectRemoval OperationType = "object-removal"
	OperationResumeReview  OperationType = "resume-review"
)

var operationTypes = []OperationType{
	OperationArticle,
	OperationBlogTitle,
	OperationImage,
	OperationBgRemoval,
	OperationObjectRemoval,
	OperationResumeReview,
}

func OperationTypes() []OperationType {
	out := make([]OperationType, len(operationTypes))
	copy(out, operationTypes)
	return out
}

func ParseOperationType(s string) (OperationType, bool) {
	for _, op := range operationTypes {
		if string(op) == s {
			return op, true
		}
	}
	return "", false
}

type Tier string

const (
	TierFree    Tier = "free"
	TierPremium Tier = "premium"
)

// GenerationRequest is built once per incoming call and never mutated afterwards.
type GenerationRequest struct {
	Operation   OperationType
	Prompt      string
	ObjectLabel string
	Payload     []byte
	PayloadMime string
	Filename    string
	Length      int
	Publish     bool
	RequesterID string
	Tier        Tier
}

type AttemptOutcome string

const (
	OutcomeSuccess AttemptOutcome = "success"
	OutcomeFailure AttemptOutcome = "failure"
)

// ProviderAttempt is diagnostic only; it is logged and counted, never persisted.
type ProviderAttempt struct {
	Provider  string         `json:"provider"`
	StartedAt time.Time      `json:"started_at"`
	Duration  time.Duration  `json:"duration"`
	Outcome   AttemptOutcome `json:"outcome"`
	Error     string         `json:"error,omitempty"`
}

// Artifact is the output of whichever stage of a chain succeeded.
// Exactly one of Data or RemoteURL is set.
type Artifact struct {
	Data      []byte
	RemoteURL string
	MimeKind  string
	// Effect is a host-side transformation to apply after storing, e.g. "background_removal".
	Effect string
	Stage  string
}
