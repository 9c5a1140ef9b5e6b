package httpgin

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func etagRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.GET("/data", func(c *gin.Context) {
		writeJSONWithCache(c, http.StatusOK, gin.H{"hello": "world"}, "public, max-age=60", true)
	})

	return r
}

func TestWriteJSONWithCache(t *testing.T) {
	r := etagRouter()

	req := httptest.NewRequest(http.MethodGet, "/data", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "public, max-age=60", w.Header().Get("Cache-Control"))

	tag := w.Header().Get("ETag")
	require.NotEmpty(t, tag)
	require.Contains(t, tag, "W/")
	require.Contains(t, w.Body.String(), "world")
}

func TestWriteJSONWithCacheNotModified(t *testing.T) {
	r := etagRouter()

	first := httptest.NewRecorder()
	r.ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/data", nil))
	tag := first.Header().Get("ETag")

	req := httptest.NewRequest(http.MethodGet, "/data", nil)
	req.Header.Set("If-None-Match", tag)
	second := httptest.NewRecorder()
	r.ServeHTTP(second, req)

	require.Equal(t, http.StatusNotModified, second.Code)
	require.Empty(t, second.Body.String())
}
