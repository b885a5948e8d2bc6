package metrics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPMetricsMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	provider, err := NewProvider("devicetrust_test")
	require.NoError(t, err)
	defer func() {
		assert.NoError(t, provider.Shutdown(context.Background()))
	}()

	router := gin.New()
	router.Use(HTTPMetricsMiddleware(provider.MeterProvider(), "devicetrust_test"))
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})
	router.GET("/ready", func(c *gin.Context) {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready"})
	})

	requests := []struct {
		path   string
		status int
	}{
		{"/health", http.StatusOK},
		{"/health", http.StatusOK},
		{"/ready", http.StatusServiceUnavailable},
		{"/wp-admin", http.StatusNotFound},
		{"/.env", http.StatusNotFound},
	}
	for _, r := range requests {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, r.path, nil))
		require.Equal(t, r.status, w.Code, r.path)
	}

	output := scrape(t, provider)

	assertMetricLine(t, output, `devicetrust_test_http_requests_total`,
		`method="GET".*route="/health".*status_code="200"`, `2`)
	assertMetricLine(t, output, `devicetrust_test_http_requests_total`,
		`method="GET".*route="/ready".*status_code="503"`, `1`)
	assertMetricLine(t, output, `devicetrust_test_http_requests_total`,
		`method="GET".*route="unmatched".*status_code="404"`, `2`)
}

func TestRouteLabel(t *testing.T) {
	assert.Equal(t, "/health", routeLabel("/health"))
	assert.Equal(t, "/devices/:id", routeLabel("/devices/:id"))
	assert.Equal(t, "unmatched", routeLabel(""))
}
