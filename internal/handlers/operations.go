package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"ai-tools-backend/internal/apperr"
	"ai-tools-backend/internal/middleware"
	"ai-tools-backend/internal/models"
	"ai-tools-backend/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
)

type OperationExecutor interface {
	Execute(ctx context.Context, req *models.GenerationRequest) (*services.Outcome, error)
}

type OperationsHandler struct {
	svc    OperationExecutor
	limits services.Limits
	logger logrus.FieldLogger
}

func NewOperationsHandler(svc OperationExecutor, limits services.Limits, logger logrus.FieldLogger) *OperationsHandler {
	return &OperationsHandler{svc: svc, limits: limits, logger: logger}
}

func (h *OperationsHandler) newRequest(c *gin.Context, op models.OperationType) *models.GenerationRequest {
	return &models.GenerationRequest{
		Operation:   op,
		RequesterID: middleware.GetUserID(c),
		Tier:        middleware.GetTier(c),
	}
}

func (h *OperationsHandler) bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		respondError(c, h.logger, bindError(err))
		return false
	}
	return true
}

func bindError(err error) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return apperr.Wrap(apperr.KindPayloadTooLarge, "request body too large", err)
	}
	var invalid validator.ValidationErrors
	if errors.As(err, &invalid) {
		for _, fe := range invalid {
			if fe.Field() == "Prompt" {
				return apperr.Wrap(apperr.KindValidation, "prompt is required", err)
			}
		}
	}
	return apperr.Wrap(apperr.KindValidation, "invalid request body", err)
}

// GenerateArticle godoc
// @Summary     Generate an article
// @Description Generates article text from a prompt. length is forwarded as the token budget.
// @Tags        operations
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Param       request body models.ArticleRequest true "Article prompt"
// @Success     200 {object} models.OperationResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     401 {object} models.ErrorResponse
// @Failure     403 {object} models.ErrorResponse
// @Failure     500 {object} models.ErrorResponse
// @Router      /operations/article [post]
func (h *OperationsHandler) GenerateArticle(c *gin.Context) {
	var body models.ArticleRequest
	if !h.bindJSON(c, &body) {
		return
	}
	req := h.newRequest(c, models.OperationArticle)
	req.Prompt = body.Prompt
	req.Length = body.Length

	h.runText(c, req)
}

// GenerateBlogTitle godoc
// @Summary     Generate blog titles
// @Tags        operations
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Param       request body models.BlogTitleRequest true "Blog title prompt"
// @Success     200 {object} models.OperationResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     403 {object} models.ErrorResponse
// @Router      /operations/blog-title [post]
func (h *OperationsHandler) GenerateBlogTitle(c *gin.Context) {
	var body models.BlogTitleRequest
	if !h.bindJSON(c, &body) {
		return
	}
	req := h.newRequest(c, models.OperationBlogTitle)
	req.Prompt = body.Prompt

	h.runText(c, req)
}

func (h *OperationsHandler) runText(c *gin.Context, req *models.GenerationRequest) {
	out, err := h.svc.Execute(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, models.OperationResponse{Success: true, Data: out.Content})
}

// GenerateImage godoc
// @Summary     Generate an image
// @Description Runs the image provider chain. When every provider fails a placeholder image is returned instead.
// @Tags        operations
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Param       request body models.ImageRequest true "Image prompt"
// @Success     200 {object} models.OperationResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     403 {object} models.ErrorResponse
// @Failure     500 {object} models.ErrorResponse
// @Router      /operations/image [post]
func (h *OperationsHandler) GenerateImage(c *gin.Context) {
	var body models.ImageRequest
	if !h.bindJSON(c, &body) {
		return
	}
	req := h.newRequest(c, models.OperationImage)
	req.Prompt = body.Prompt
	req.Publish = body.Publish

	h.runImage(c, req)
}

// RemoveBackground godoc
// @Summary     Remove an image background
// @Tags        operations
// @Accept      multipart/form-data
// @Produce     json
// @Security    Bearer
// @Param       image formData file true "Image (max 10MB)"
// @Success     200 {object} models.OperationResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     413 {object} models.ErrorResponse
// @Router      /operations/bg-removal [post]
func (h *OperationsHandler) RemoveBackground(c *gin.Context) {
	req := h.newRequest(c, models.OperationBgRemoval)
	if !h.attachImage(c, req) {
		return
	}
	h.runImage(c, req)
}

// RemoveObject godoc
// @Summary     Remove an object from an image
// @Description object must be a single word, e.g. "car".
// @Tags        operations
// @Accept      multipart/form-data
// @Produce     json
// @Security    Bearer
// @Param       image  formData file   true "Image (max 10MB)"
// @Param       object formData string true "Object to remove"
// @Success     200 {object} models.OperationResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     413 {object} models.ErrorResponse
// @Router      /operations/object-removal [post]
func (h *OperationsHandler) RemoveObject(c *gin.Context) {
	req := h.newRequest(c, models.OperationObjectRemoval)
	req.ObjectLabel = strings.TrimSpace(c.PostForm("object"))
	if !h.attachImage(c, req) {
		return
	}
	h.runImage(c, req)
}

func (h *OperationsHandler) attachImage(c *gin.Context, req *models.GenerationRequest) bool {
	up, err := readUpload(c, "image", h.limits.MaxImageBytes)
	if err != nil {
		respondError(c, h.logger, err)
		return false
	}
	if up != nil {
		req.Payload, req.PayloadMime, req.Filename = up.Data, up.Mime, up.Filename
	}
	return true
}

func (h *OperationsHandler) runImage(c *gin.Context, req *models.GenerationRequest) {
	out, err := h.svc.Execute(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	// Both fields carry the URL; older clients read data.
	c.JSON(http.StatusOK, models.OperationResponse{Success: true, Content: out.Content, Data: out.Content})
}

// ReviewResume godoc
// @Summary     Review a resume
// @Tags        operations
// @Accept      multipart/form-data
// @Produce     json
// @Security    Bearer
// @Param       resume formData file true "Resume PDF (max 5MB)"
// @Success     200 {object} models.OperationResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     403 {object} models.ErrorResponse
// @Router      /operations/resume-review [post]
func (h *OperationsHandler) ReviewResume(c *gin.Context) {
	req := h.newRequest(c, models.OperationResumeReview)
	up, err := readUpload(c, "resume", h.limits.MaxPDFBytes)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	if up != nil {
		req.Payload, req.PayloadMime, req.Filename = up.Data, up.Mime, up.Filename
	}

	out, err := h.svc.Execute(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, models.OperationResponse{
		Success: true,
		Content: out.Content,
		Message: "Resume reviewed successfully",
	})
}
