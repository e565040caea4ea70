// Package checkout creates sponsorship checkout sessions. Payment is
// delegated to a Provider; without one configured the service hands back a
// mock session URL so the purchase flow stays demoable.
package checkout

import (
	"context"
	"time"

	"github.com/blackpeopleeats/platform/internal/app/metrics"
	"github.com/blackpeopleeats/platform/pkg/logger"
)

// MockSessionURL is returned when no payment provider is configured.
const MockSessionURL = "https://checkout.stripe.com/pay/mock_session?reason=no_key"

// Provider creates a hosted checkout session and returns its URL.
type Provider interface {
	CreateSession(ctx context.Context) (string, error)
}

// Service wraps a payment provider with the mock fallback.
type Service struct {
	provider Provider
	log      *logger.Logger
}

// New constructs a checkout service. A nil provider enables mock mode.
func New(provider Provider, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("checkout")
	}
	return &Service{provider: provider, log: log}
}

// CreateSession returns the URL the buyer should be redirected to. Provider
// failures are returned to the caller; only a missing provider falls back to
// the mock URL.
func (s *Service) CreateSession(ctx context.Context) (string, error) {
	if s.provider == nil {
		s.log.Warn("no payment provider configured, returning mock session")
		return MockSessionURL, nil
	}
	start := time.Now()
	url, err := s.provider.CreateSession(ctx)
	metrics.RecordProviderCall("checkout", time.Since(start), err)
	if err != nil {
		s.log.WithError(err).Error("create checkout session")
		return "", err
	}
	return url, nil
}
