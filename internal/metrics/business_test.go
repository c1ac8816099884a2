package metrics

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// assertBizMetricLine checks that the Prometheus output contains a metric matching
// the given name, partial label pattern and value. The exporter injects extra scope
// labels, hence the regex.
func assertBizMetricLine(t *testing.T, output, name, labels, value string) {
	t.Helper()
	pattern := name + `\{[^}]*` + labels + `[^}]*\} ` + value
	assert.Regexp(t, pattern, output)
}

func TestNewBusinessMetrics(t *testing.T) {
	provider, err := NewProvider("test_app")
	require.NoError(t, err)

	businessMetrics, err := NewBusinessMetrics(provider.MeterProvider(), "test_app", "memory")

	require.NoError(t, err)
	assert.NotNil(t, businessMetrics)
}

func TestBusinessMetrics_Integration(t *testing.T) {
	provider, err := NewProvider("integration_test")
	require.NoError(t, err)
	defer func() {
		assert.NoError(t, provider.Shutdown(context.Background()))
	}()

	bm, err := NewBusinessMetrics(provider.MeterProvider(), "integration_test", "aws")
	require.NoError(t, err)

	ctx := context.Background()

	bm.RecordOperation(ctx, "secrets", "secrets_get", "success")
	bm.RecordOperation(ctx, "secrets", "secrets_get", "success")
	bm.RecordOperation(ctx, "secrets", "secrets_get", "error")
	bm.RecordOperation(ctx, "secrets", "secrets_set", "warning")
	bm.RecordOperation(ctx, "auth", "token_issue", "success")

	bm.RecordDuration(ctx, "secrets", "secrets_get", 50*time.Millisecond, "success")
	bm.RecordDuration(ctx, "secrets", "secrets_get", 60*time.Millisecond, "success")
	bm.RecordDuration(ctx, "secrets", "secrets_set", 100*time.Millisecond, "warning")

	bm.RecordDocumentKeys(ctx, 4)
	bm.RecordDocumentKeys(ctx, 7)

	output := scrape(t, provider)

	assertBizMetricLine(
		t,
		output,
		`integration_test_operations_total`,
		`domain="secrets".*operation="secrets_get".*status="success".*store_driver="aws"`,
		`2`,
	)
	assertBizMetricLine(
		t,
		output,
		`integration_test_operations_total`,
		`domain="secrets".*operation="secrets_get".*status="error"`,
		`1`,
	)
	assertBizMetricLine(
		t,
		output,
		`integration_test_operations_total`,
		`domain="secrets".*operation="secrets_set".*status="warning"`,
		`1`,
	)
	assertBizMetricLine(
		t,
		output,
		`integration_test_operations_total`,
		`domain="auth".*operation="token_issue".*status="success"`,
		`1`,
	)
	assertBizMetricLine(
		t,
		output,
		`integration_test_operation_duration_seconds_count`,
		`operation="secrets_get".*status="success"`,
		`2`,
	)
	assertBizMetricLine(t, output, `integration_test_document_keys`, `store_driver="aws"`, `7`)
}

func TestNewNoOpBusinessMetrics(t *testing.T) {
	noOpMetrics := NewNoOpBusinessMetrics()

	assert.IsType(t, &NoOpBusinessMetrics{}, noOpMetrics)
	assert.NotPanics(t, func() {
		noOpMetrics.RecordOperation(context.Background(), "secrets", "secrets_get", "success")
		noOpMetrics.RecordDuration(context.Background(), "secrets", "secrets_set", time.Second, "error")
		noOpMetrics.RecordDocumentKeys(context.Background(), 3)
	})
}
