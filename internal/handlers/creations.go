package handlers

import (
	"context"
	"net/http"

	"ai-tools-backend/internal/apperr"
	"ai-tools-backend/internal/middleware"
	"ai-tools-backend/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type CreationStore interface {
	ListByUser(ctx context.Context, userID string) ([]models.Creation, error)
	ListPublished(ctx context.Context) ([]models.Creation, error)
	ToggleLike(ctx context.Context, id uuid.UUID, userID string) (*models.Creation, bool, error)
}

type LikePublisher interface {
	PublishLike(ctx context.Context, c *models.Creation, liked bool) error
}

type CreationsHandler struct {
	store     CreationStore
	publisher LikePublisher
	logger    logrus.FieldLogger
}

// NewCreationsHandler accepts a nil publisher when realtime broadcast is off.
func NewCreationsHandler(store CreationStore, publisher LikePublisher, logger logrus.FieldLogger) *CreationsHandler {
	return &CreationsHandler{store: store, publisher: publisher, logger: logger}
}

func toResponses(creations []models.Creation) []models.CreationResponse {
	out := make([]models.CreationResponse, 0, len(creations))
	for i := range creations {
		out = append(out, models.NewCreationResponse(&creations[i]))
	}
	return out
}

// ListMine godoc
// @Summary     List the caller's creations
// @Tags        creations
// @Produce     json
// @Security    Bearer
// @Success     200 {object} models.CreationsResponse
// @Failure     401 {object} models.ErrorResponse
// @Router      /creations [get]
func (h *CreationsHandler) ListMine(c *gin.Context) {
	creations, err := h.store.ListByUser(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, models.CreationsResponse{Success: true, Creations: toResponses(creations)})
}

// ListPublished godoc
// @Summary     List published creations
// @Description Newest first.
// @Tags        creations
// @Produce     json
// @Security    Bearer
// @Success     200 {object} models.CreationsResponse
// @Router      /creations/published [get]
func (h *CreationsHandler) ListPublished(c *gin.Context) {
	creations, err := h.store.ListPublished(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, models.CreationsResponse{Success: true, Creations: toResponses(creations)})
}

// ToggleLike godoc
// @Summary     Like or unlike a creation
// @Tags        creations
// @Produce     json
// @Security    Bearer
// @Param       id path string true "Creation ID (UUID)"
// @Success     200 {object} models.ToggleLikeResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Router      /creations/{id}/toggle-like [post]
func (h *CreationsHandler) ToggleLike(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, h.logger, apperr.Validation("invalid creation id"))
		return
	}

	creation, liked, err := h.store.ToggleLike(c.Request.Context(), id, middleware.GetUserID(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	if h.publisher != nil {
		if err := h.publisher.PublishLike(c.Request.Context(), creation, liked); err != nil {
			h.logger.WithError(err).WithField("creation_id", id).Warn("failed to broadcast like")
		}
	}

	message := "Creation unliked"
	if liked {
		message = "Creation liked"
	}
	c.JSON(http.StatusOK, models.ToggleLikeResponse{
		Success: true,
		Liked:   liked,
		Likes:   len(creation.Likes),
		Message: message,
	})
}
