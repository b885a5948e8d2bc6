package metrics

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// assertMetricLine checks the scrape output for a series. The exporter injects OTel
// scope labels, so labels is matched as a partial pattern.
func assertMetricLine(t *testing.T, output, name, labels, value string) {
	t.Helper()
	pattern := name + `\{[^}]*` + labels + `[^}]*\} ` + value
	assert.Regexp(t, pattern, output)
}

func scrape(t *testing.T, provider *Provider) string {
	t.Helper()
	w := httptest.NewRecorder()
	provider.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	return w.Body.String()
}

func TestStatusHelpers(t *testing.T) {
	assert.Equal(t, StatusSuccess, StatusOf(nil))
	assert.Equal(t, StatusError, StatusOf(errors.New("boom")))
	assert.Equal(t, StatusSuccess, DecisionStatus(true))
	assert.Equal(t, StatusDenied, DecisionStatus(false))
}

func TestBusinessMetrics(t *testing.T) {
	provider, err := NewProvider("devicetrust_test")
	require.NoError(t, err)
	defer func() {
		assert.NoError(t, provider.Shutdown(context.Background()))
	}()

	bm, err := NewBusinessMetrics(provider.MeterProvider(), "devicetrust_test")
	require.NoError(t, err)

	ctx := context.Background()
	bm.RecordOperation(ctx, "auth", "token_issue", StatusSuccess)
	bm.RecordOperation(ctx, "auth", "token_issue", StatusSuccess)
	bm.RecordOperation(ctx, "auth", "token_issue", StatusError)
	bm.RecordOperation(ctx, "audit", "event_write", StatusError)
	bm.RecordDuration(ctx, "auth", "token_issue", 2*time.Millisecond, StatusSuccess)
	bm.RecordDuration(ctx, "auth", "token_issue", 3*time.Millisecond, StatusSuccess)
	Observe(ctx, bm, "device_security", "action_authorize", StatusDenied, time.Now())

	output := scrape(t, provider)

	assertMetricLine(t, output, `devicetrust_test_operations_total`,
		`domain="auth".*operation="token_issue".*status="success"`, `2`)
	assertMetricLine(t, output, `devicetrust_test_operations_total`,
		`domain="auth".*operation="token_issue".*status="error"`, `1`)
	assertMetricLine(t, output, `devicetrust_test_operations_total`,
		`domain="audit".*operation="event_write".*status="error"`, `1`)
	assertMetricLine(t, output, `devicetrust_test_operations_total`,
		`domain="device_security".*operation="action_authorize".*status="denied"`, `1`)
	assertMetricLine(t, output, `devicetrust_test_operation_duration_seconds_count`,
		`domain="auth".*operation="token_issue".*status="success"`, `2`)
	assertMetricLine(t, output, `devicetrust_test_operation_duration_seconds_bucket`,
		`domain="auth".*le="0.0025".*`, `1`)
}

func TestNoOpBusinessMetrics(t *testing.T) {
	m := NewNoOpBusinessMetrics()

	assert.NotPanics(t, func() {
		m.RecordOperation(context.Background(), "pki", "certificate_issue", StatusSuccess)
		m.RecordDuration(context.Background(), "pki", "certificate_issue", time.Second, StatusError)
		Observe(context.Background(), m, "pki", "certificate_revoke", StatusSuccess, time.Now())
	})
}
