package services

import (
	"fmt"
	"regexp"
	"strings"

	"ai-tools-backend/internal/apperr"
	"ai-tools-backend/internal/models"
)

var objectLabel = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

const PDFMime = "application/pdf"

// Limits bounds uploaded payloads per operation.
type Limits struct {
	MaxImageBytes int64
	MaxPDFBytes   int64
	MaxPromptLen  int
}

func DefaultLimits() Limits {
	return Limits{
		MaxImageBytes: 10 << 20,
		MaxPDFBytes:   5 << 20,
		MaxPromptLen:  4000,
	}
}

func (l Limits) Validate(req *models.GenerationRequest) error {
	if req.RequesterID == "" {
		return apperr.Validation("missing requester")
	}

	switch req.Operation {
	case models.OperationArticle, models.OperationBlogTitle, models.OperationImage:
		return l.validatePrompt(req.Prompt)
	case models.OperationBgRemoval:
		return l.validateImage(req)
	case models.OperationObjectRemoval:
		// The label is checked before the image so a bad label never uploads anything.
		if !objectLabel.MatchString(req.ObjectLabel) {
			return apperr.Validation("Please provide a single object name")
		}
		return l.validateImage(req)
	case models.OperationResumeReview:
		if len(req.Payload) == 0 {
			return apperr.Validation("No resume file uploaded")
		}
		if req.PayloadMime != PDFMime {
			return apperr.Validation("Only PDF files are allowed for resume review")
		}
		if int64(len(req.Payload)) > l.MaxPDFBytes {
			return apperr.Validation(fmt.Sprintf("Resume file size exceeds allowed size (%dMB).", l.MaxPDFBytes>>20))
		}
		return nil
	default:
		return apperr.Validation(fmt.Sprintf("unknown operation %q", req.Operation))
	}
}

func (l Limits) validatePrompt(prompt string) error {
	if strings.TrimSpace(prompt) == "" {
		return apperr.Validation("prompt is required")
	}
	if l.MaxPromptLen > 0 && len([]rune(prompt)) > l.MaxPromptLen {
		return apperr.Validation(fmt.Sprintf("prompt exceeds %d characters", l.MaxPromptLen))
	}
	return nil
}

func (l Limits) validateImage(req *models.GenerationRequest) error {
	if len(req.Payload) == 0 {
		return apperr.Validation("No image file uploaded")
	}
	if !strings.HasPrefix(req.PayloadMime, "image/") {
		return apperr.Validation("Only image files are allowed")
	}
	if int64(len(req.Payload)) > l.MaxImageBytes {
		return apperr.New(apperr.KindPayloadTooLarge, fmt.Sprintf("Image file size exceeds allowed size (%dMB).", l.MaxImageBytes>>20))
	}
	return nil
}
