package handlers

import (
	"net/http"

	"ai-tools-backend/internal/apperr"
	"ai-tools-backend/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// respondError writes the failure envelope. Detail stays in the server log;
// the client only sees the public message for the error's kind.
func respondError(c *gin.Context, logger logrus.FieldLogger, err error) {
	status := apperr.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		logger.WithError(err).WithFields(logrus.Fields{
			"path": c.FullPath(),
			"kind": apperr.KindOf(err),
		}).Error("request failed")
	}
	c.Error(err)
	c.JSON(status, models.ErrorResponse{
		Success: false,
		Message: apperr.PublicMessage(err),
	})
}
