package middleware

import (
	"context"
	"errors"
	"net/http"

	"ai-tools-backend/internal/apperr"
	"ai-tools-backend/internal/entitlement"
	"ai-tools-backend/internal/metrics"
	"ai-tools-backend/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const EntitlementKey = "entitlement"

type EntitlementResolver interface {
	Resolve(ctx context.Context, userID string, tier models.Tier, op models.OperationType) (entitlement.Entitlement, error)
}

// RequireEntitlement answers 403 before the handler runs when the requester
// may not perform op.
func RequireEntitlement(gate EntitlementResolver, op models.OperationType, logger logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := GetUserID(c)
		ent, err := gate.Resolve(c.Request.Context(), userID, GetTier(c), op)
		if err != nil {
			var denied *entitlement.DeniedError
			if errors.As(err, &denied) {
				metrics.RecordQuotaDenial(string(op), denied.Reason)
				c.AbortWithStatusJSON(http.StatusForbidden, models.ErrorResponse{
					Success: false,
					Message: apperr.PublicMessage(err),
				})
				return
			}

			logger.WithError(err).WithField("user_id", userID).Error("entitlement check failed")
			c.AbortWithStatusJSON(http.StatusInternalServerError, models.ErrorResponse{
				Success: false,
				Message: apperr.PublicMessage(err),
			})
			return
		}

		c.Set(EntitlementKey, ent)
		c.Next()
	}
}
