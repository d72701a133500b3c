package middleware

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"ai-tools-backend/internal/config"
	"ai-tools-backend/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const (
	UserIDKey = "user_id"
	TierKey   = "tier"
)

func unauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, models.ErrorResponse{Success: false, Message: message})
}

// AuthMiddleware verifies a Supabase-issued HS256 bearer token and stores the
// requester id and subscription tier on the context.
func AuthMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			unauthorized(c, "missing authorization header")
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			unauthorized(c, "invalid authorization header format")
			return
		}

		tokenString := strings.TrimSpace(parts[1])
		if tokenString == "" {
			unauthorized(c, "empty token")
			return
		}

		// Some clients URL-encode the token.
		if decoded, err := url.QueryUnescape(tokenString); err == nil {
			tokenString = decoded
		}

		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			if cfg.SupabaseJWTSecret == "" {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(cfg.SupabaseJWTSecret), nil
		}, jwt.WithValidMethods([]string{"HS256"}))
		if err != nil {
			unauthorized(c, tokenErrorMessage(err))
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok || !token.Valid {
			unauthorized(c, "invalid token claims")
			return
		}

		sub, ok := claims["sub"].(string)
		if !ok || sub == "" {
			unauthorized(c, "missing user id in token")
			return
		}

		c.Set(UserIDKey, sub)
		c.Set(TierKey, TierFromClaims(claims))
		c.Next()
	}
}

func tokenErrorMessage(err error) string {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return "token has expired"
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrSignatureInvalid):
		return "token signature is invalid"
	case errors.Is(err, jwt.ErrTokenMalformed):
		return "token is malformed"
	default:
		return "invalid token"
	}
}

// TierFromClaims reads the plan from app_metadata.plan, falling back to a
// top-level plan claim. Anything but "premium" is free.
func TierFromClaims(claims jwt.MapClaims) models.Tier {
	plan, _ := claims["plan"].(string)
	if meta, ok := claims["app_metadata"].(map[string]interface{}); ok {
		if p, ok := meta["plan"].(string); ok {
			plan = p
		}
	}
	if models.Tier(plan) == models.TierPremium {
		return models.TierPremium
	}
	return models.TierFree
}

func GetUserID(c *gin.Context) string {
	return c.GetString(UserIDKey)
}

func GetTier(c *gin.Context) models.Tier {
	if tier, ok := c.Get(TierKey); ok {
		if t, ok := tier.(models.Tier); ok {
			return t
		}
	}
	return models.TierFree
}
