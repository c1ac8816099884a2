package usecase

import (
	"context"
	"time"

	"github.com/allisson/blueprint-secrets/internal/metrics"
	secretsDomain "github.com/allisson/blueprint-secrets/internal/secrets/domain"
)

// secretsUseCaseWithMetrics decorates SecretsUseCase with metrics instrumentation.
type secretsUseCaseWithMetrics struct {
	next    SecretsUseCase
	metrics metrics.BusinessMetrics
}

// NewSecretsUseCaseWithMetrics wraps a SecretsUseCase with metrics recording.
func NewSecretsUseCaseWithMetrics(useCase SecretsUseCase, m metrics.BusinessMetrics) SecretsUseCase {
	return &secretsUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

// Get records metrics for document reads.
func (s *secretsUseCaseWithMetrics) Get(ctx context.Context) (*secretsDomain.VersionedDocument, error) {
	start := time.Now()
	doc, err := s.next.Get(ctx)
	s.record(ctx, "secrets_get", start, err)
	if err == nil {
		s.metrics.RecordDocumentKeys(ctx, len(doc.Secrets))
	}
	return doc, err
}

// GetKey records metrics for single key reads.
func (s *secretsUseCaseWithMetrics) GetKey(ctx context.Context, key string) (*secretsDomain.KeyValue, error) {
	start := time.Now()
	kv, err := s.next.GetKey(ctx, key)
	s.record(ctx, "secrets_get_key", start, err)
	return kv, err
}

// Set records metrics for document writes. A write whose description update
// failed is counted with status "warning".
func (s *secretsUseCaseWithMetrics) Set(
	ctx context.Context,
	input *secretsDomain.SetInput,
) (*secretsDomain.WriteResult, error) {
	start := time.Now()
	result, err := s.next.Set(ctx, input)

	status := statusOf(err)
	if err == nil && result.Warning != "" {
		status = "warning"
	}

	s.metrics.RecordOperation(ctx, "secrets", "secrets_set", status)
	s.metrics.RecordDuration(ctx, "secrets", "secrets_set", time.Since(start), status)
	if err == nil {
		s.metrics.RecordDocumentKeys(ctx, len(result.Secrets))
	}

	return result, err
}

func (s *secretsUseCaseWithMetrics) record(ctx context.Context, operation string, start time.Time, err error) {
	status := statusOf(err)
	s.metrics.RecordOperation(ctx, "secrets", operation, status)
	s.metrics.RecordDuration(ctx, "secrets", operation, time.Since(start), status)
}

func statusOf(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}
