package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/propcore/backend/internal/infrastructure/auth"
	"github.com/propcore/backend/internal/infrastructure/logger"
	"github.com/propcore/backend/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

// JWT context keys
const (
	JWTClaimsKey  = "jwt_claims"
	JWTOrgIDKey   = "jwt_org_id"
	JWTUserIDKey  = "jwt_user_id"
	AuthHeaderKey = "Authorization"
	BearerPrefix  = "Bearer "
)

// JWTMiddlewareConfig holds configuration for JWT middleware
type JWTMiddlewareConfig struct {
	// Verifier is required for token validation
	Verifier *auth.Verifier
	// SkipPaths are paths that don't require authentication
	SkipPaths []string
	// Logger for middleware logging
	Logger *zap.Logger
}

// DefaultJWTConfig returns default JWT middleware configuration
func DefaultJWTConfig(verifier *auth.Verifier, log *zap.Logger) JWTMiddlewareConfig {
	return JWTMiddlewareConfig{
		Verifier: verifier,
		SkipPaths: []string{
			"/health",
			"/ready",
			"/api/v1/health",
		},
		Logger: log,
	}
}

// JWTAuth creates JWT authentication middleware
func JWTAuth(verifier *auth.Verifier, log *zap.Logger) gin.HandlerFunc {
	return JWTAuthWithConfig(DefaultJWTConfig(verifier, log))
}

// JWTAuthWithConfig validates the bearer token and places the organization and
// acting user on the gin context and on the request context
func JWTAuthWithConfig(cfg JWTMiddlewareConfig) gin.HandlerFunc {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	skip := make(map[string]bool, len(cfg.SkipPaths))
	for _, p := range cfg.SkipPaths {
		skip[p] = true
	}

	return func(c *gin.Context) {
		if skip[c.Request.URL.Path] {
			c.Next()
			return
		}

		authHeader := c.GetHeader(AuthHeaderKey)
		if authHeader == "" {
			abortUnauthorized(c, log, auth.ErrInvalidToken, "Missing authorization header")
			return
		}
		if !strings.HasPrefix(authHeader, BearerPrefix) {
			abortUnauthorized(c, log, auth.ErrInvalidToken, "Invalid authorization header format")
			return
		}
		tokenString := strings.TrimPrefix(authHeader, BearerPrefix)
		if tokenString == "" {
			abortUnauthorized(c, log, auth.ErrInvalidToken, "Missing token")
			return
		}

		claims, err := cfg.Verifier.Verify(tokenString)
		if err != nil {
			abortUnauthorized(c, log, err, "Token validation failed")
			return
		}
		orgID, err := claims.OrgUUID()
		if err != nil {
			abortUnauthorized(c, log, auth.ErrMissingOrgID, "Invalid org_id claim")
			return
		}
		userID, err := claims.UserUUID()
		if err != nil {
			abortUnauthorized(c, log, auth.ErrMissingUserID, "Invalid user_id claim")
			return
		}

		c.Set(JWTClaimsKey, claims)
		c.Set(JWTOrgIDKey, orgID)
		c.Set(JWTUserIDKey, userID)

		ctx := logger.WithOrgID(c.Request.Context(), claims.OrgID)
		ctx = logger.WithActorID(ctx, claims.UserID)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// abortUnauthorized writes a 401 in the standard envelope
func abortUnauthorized(c *gin.Context, log *zap.Logger, err error, message string) {
	log.Warn("JWT authentication failed",
		zap.Error(err),
		zap.String("message", message),
		zap.String("path", c.Request.URL.Path),
	)

	code := dto.ErrCodeUnauthorized
	msg := "Authentication required"
	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		code = dto.ErrCodeTokenExpired
		msg = "Token has expired"
	case errors.Is(err, auth.ErrTokenNotYetValid):
		msg = "Token is not yet valid"
	case errors.Is(err, auth.ErrMissingOrgID), errors.Is(err, auth.ErrMissingUserID):
		msg = "Token does not identify an organization and user"
	case errors.Is(err, auth.ErrInvalidToken), errors.Is(err, auth.ErrInvalidClaims):
		msg = "Invalid token"
	}

	c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse(code, msg, c.GetString(logger.GinRequestIDKey)))
}

// RequireRole rejects requests whose token lacks role
func RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := GetJWTClaims(c)
		if claims == nil || !claims.HasRole(role) {
			c.AbortWithStatusJSON(http.StatusForbidden, dto.NewErrorResponse(
				dto.ErrCodeForbidden, "Requires role "+role, c.GetString(logger.GinRequestIDKey)))
			return
		}
		c.Next()
	}
}

// GetJWTClaims retrieves JWT claims from gin.Context
func GetJWTClaims(c *gin.Context) *auth.Claims {
	if claims, exists := c.Get(JWTClaimsKey); exists {
		if jwtClaims, ok := claims.(*auth.Claims); ok {
			return jwtClaims
		}
	}
	return nil
}

// OrgID returns the organization the request acts for
func OrgID(c *gin.Context) (uuid.UUID, bool) {
	return uuidFromContext(c, JWTOrgIDKey)
}

// UserID returns the acting user
func UserID(c *gin.Context) (uuid.UUID, bool) {
	return uuidFromContext(c, JWTUserIDKey)
}

func uuidFromContext(c *gin.Context, key string) (uuid.UUID, bool) {
	v, exists := c.Get(key)
	if !exists {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok && id != uuid.Nil
}
