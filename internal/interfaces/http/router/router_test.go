package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestNewRouter(t *testing.T) {
	r := NewRouter(gin.New())
	assert.Equal(t, "v1", r.apiVersion)
	assert.Empty(t, r.registrars)

	r = NewRouter(gin.New(), WithAPIVersion("v2"))
	assert.Equal(t, "v2", r.apiVersion)
}

func TestRouterSetup_AppliesAPIMiddleware(t *testing.T) {
	engine := gin.New()
	engine.GET("/outside", func(c *gin.Context) { c.String(http.StatusOK, c.GetString("mark")) })

	r := NewRouter(engine, WithAPIMiddleware(func(c *gin.Context) {
		c.Set("mark", "api")
		c.Next()
	}))
	r.Register(NewDomainGroup("test", "/test").
		GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, c.GetString("mark")) }))
	r.Setup()

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/test/ping", nil))
	assert.Equal(t, "api", w.Body.String())

	w = httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/outside", nil))
	assert.Empty(t, w.Body.String(), "middleware is scoped to the API group")
}

func TestDomainGroup(t *testing.T) {
	t.Run("name and prefix", func(t *testing.T) {
		g := NewDomainGroup("tenants", "/tenants")
		assert.Equal(t, "tenants", g.Name())
		assert.Equal(t, "/tenants", g.Prefix())
	})

	t.Run("registers every method", func(t *testing.T) {
		engine := gin.New()
		ok := func(c *gin.Context) { c.String(http.StatusOK, c.Request.Method) }
		NewDomainGroup("units", "/units").
			GET("/:id", ok).
			POST("/:id", ok).
			PATCH("/:id/status", ok).
			DELETE("/:id", ok).
			RegisterRoutes(engine.Group("/api/v1"))

		for _, tc := range []struct{ method, path string }{
			{http.MethodGet, "/api/v1/units/1"},
			{http.MethodPost, "/api/v1/units/1"},
			{http.MethodPatch, "/api/v1/units/1/status"},
			{http.MethodDelete, "/api/v1/units/1"},
		} {
			w := httptest.NewRecorder()
			engine.ServeHTTP(w, httptest.NewRequest(tc.method, tc.path, nil))
			assert.Equal(t, http.StatusOK, w.Code, "%s %s", tc.method, tc.path)
			assert.Equal(t, tc.method, w.Body.String())
		}
	})

	t.Run("subgroups inherit group middleware", func(t *testing.T) {
		engine := gin.New()
		admin := NewDomainGroup("admin", "/admin").Use(func(c *gin.Context) {
			c.Header("X-Admin", "yes")
			c.Next()
		})
		admin.Group("outbox", "/outbox").GET("/stats", func(c *gin.Context) { c.Status(http.StatusOK) })
		admin.RegisterRoutes(engine.Group("/api/v1"))

		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/admin/outbox/stats", nil))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "yes", w.Header().Get("X-Admin"))
	})
}
