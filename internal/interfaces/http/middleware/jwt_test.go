package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/propcore/backend/internal/infrastructure/auth"
	"github.com/propcore/backend/internal/infrastructure/config"
	"github.com/propcore/backend/internal/infrastructure/logger"
	"github.com/propcore/backend/internal/interfaces/http/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestVerifier() *auth.Verifier {
	return auth.NewVerifier(config.JWTConfig{
		Secret: "test-secret-key-at-least-32-chars",
		Issuer: "test-issuer",
	})
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) *dto.ErrorInfo {
	t.Helper()
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	require.NotNil(t, resp.Error)
	return resp.Error
}

func TestJWTAuth_ValidToken(t *testing.T) {
	verifier := newTestVerifier()
	orgID, userID := uuid.New(), uuid.New()
	token, err := verifier.Sign(orgID, userID, time.Minute)
	require.NoError(t, err)

	router := gin.New()
	router.Use(JWTAuth(verifier, nil))
	router.GET("/test", func(c *gin.Context) {
		gotOrg, ok := OrgID(c)
		assert.True(t, ok)
		assert.Equal(t, orgID, gotOrg)
		gotUser, ok := UserID(c)
		assert.True(t, ok)
		assert.Equal(t, userID, gotUser)
		assert.Equal(t, orgID.String(), logger.GetOrgID(c.Request.Context()))
		assert.Equal(t, userID.String(), logger.GetActorID(c.Request.Context()))
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestJWTAuth_Rejections(t *testing.T) {
	verifier := newTestVerifier()
	expired, err := verifier.Sign(uuid.New(), uuid.New(), -time.Hour)
	require.NoError(t, err)
	foreign, err := auth.NewVerifier(config.JWTConfig{Secret: "another-secret-key-at-least-32-chars", Issuer: "test-issuer"}).
		Sign(uuid.New(), uuid.New(), time.Minute)
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		code   string
	}{
		{"missing header", "", dto.ErrCodeUnauthorized},
		{"wrong scheme", "Basic abc", dto.ErrCodeUnauthorized},
		{"empty token", "Bearer ", dto.ErrCodeUnauthorized},
		{"garbage", "Bearer not-a-jwt", dto.ErrCodeUnauthorized},
		{"expired", "Bearer " + expired, dto.ErrCodeTokenExpired},
		{"wrong secret", "Bearer " + foreign, dto.ErrCodeUnauthorized},
	}

	router := gin.New()
	router.Use(JWTAuth(verifier, nil))
	router.GET("/test", func(c *gin.Context) {
		t.Fatal("handler must not run")
	})

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Equal(t, tt.code, decodeError(t, w).Code)
		})
	}
}

func TestJWTAuth_SkipPaths(t *testing.T) {
	router := gin.New()
	router.Use(JWTAuth(newTestVerifier(), nil))
	router.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequireRole(t *testing.T) {
	verifier := newTestVerifier()
	admin, err := verifier.Sign(uuid.New(), uuid.New(), time.Minute, "admin")
	require.NoError(t, err)
	clerk, err := verifier.Sign(uuid.New(), uuid.New(), time.Minute, "clerk")
	require.NoError(t, err)

	router := gin.New()
	router.Use(JWTAuth(verifier, nil))
	router.GET("/admin", RequireRole("admin"), func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+admin)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+clerk)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, dto.ErrCodeForbidden, decodeError(t, w).Code)
}
