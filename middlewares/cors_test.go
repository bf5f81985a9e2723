package middlewares

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func newRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(Cors())
	router.POST("/detect", func(c *gin.Context) {
		c.JSON(http.StatusOK, struct{}{})
	})
	return router
}

func TestCorsHeadersAreSet(t *testing.T) {
	router := newRouter()

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/detect", nil)
	router.ServeHTTP(w, req)

	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Fatalf("expected wildcard allow-origin, got %q", got)
	}
	if got := w.Header().Get("Access-Control-Allow-Methods"); got == "" {
		t.Fatal("expected allow-methods header to be set")
	}
}

func TestCorsShortCircuitsPreflight(t *testing.T) {
	router := newRouter()

	w := httptest.NewRecorder()
	req := httptest.NewRequest("OPTIONS", "/detect", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected preflight to return 200, got %d", w.Code)
	}
}
