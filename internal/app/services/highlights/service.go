// Package highlights recommends restaurants per city. Live recommendations
// come from an AI provider; a curated fallback table keeps the feature
// working when the provider is unavailable or returns garbage.
package highlights

import (
	"context"
	_ "embed"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/blackpeopleeats/platform/internal/app/domain/highlight"
	"github.com/blackpeopleeats/platform/internal/app/metrics"
	"github.com/blackpeopleeats/platform/pkg/logger"
)

// DefaultCity is used when the fallback table has no entry for a city.
const DefaultCity = "Atlanta"

//go:embed fallbacks.yaml
var fallbackYAML []byte

// Provider produces live restaurant highlights for a city.
type Provider interface {
	CityHighlights(ctx context.Context, city string) ([]highlight.Highlight, error)
	SearchRestaurants(ctx context.Context, query string, lat, lng *float64) (highlight.SearchResult, error)
}

// Service wraps a provider with the curated fallback table.
type Service struct {
	provider  Provider
	fallbacks map[string][]highlight.Highlight
	log       *logger.Logger
}

// New constructs a highlight service. A nil provider always serves fallbacks.
func New(provider Provider, log *logger.Logger) (*Service, error) {
	if log == nil {
		log = logger.NewDefault("highlights")
	}
	fallbacks := make(map[string][]highlight.Highlight)
	if err := yaml.Unmarshal(fallbackYAML, &fallbacks); err != nil {
		return nil, fmt.Errorf("parse fallback table: %w", err)
	}
	if _, ok := fallbacks[DefaultCity]; !ok {
		return nil, fmt.Errorf("fallback table missing default city %q", DefaultCity)
	}
	return &Service{provider: provider, fallbacks: fallbacks, log: log}, nil
}

// CityHighlights returns five recommendations for the city. Any provider
// failure, including an empty result, degrades to the fallback table. The
// call itself never fails.
func (s *Service) CityHighlights(ctx context.Context, city string) []highlight.Highlight {
	if s.provider != nil {
		start := time.Now()
		live, err := s.provider.CityHighlights(ctx, city)
		metrics.RecordProviderCall("highlights", time.Since(start), err)
		if err == nil && len(live) > 0 {
			return live
		}
		if err != nil {
			s.log.WithError(err).WithField("city", city).Warn("highlight provider failed, using fallback")
		}
	}
	return s.Fallback(city)
}

// Fallback returns the curated entries for the city, or the default city's
// entries when the city is unknown.
func (s *Service) Fallback(city string) []highlight.Highlight {
	if entries, ok := s.fallbacks[city]; ok {
		return entries
	}
	return s.fallbacks[DefaultCity]
}

// SearchRestaurants runs a free-text restaurant search near an optional
// coordinate. Failures collapse to an apologetic result rather than an error.
func (s *Service) SearchRestaurants(ctx context.Context, query string, lat, lng *float64) highlight.SearchResult {
	if s.provider == nil {
		return highlight.SearchResult{Text: "Could not find restaurants.", Sources: []highlight.Source{}}
	}
	start := time.Now()
	result, err := s.provider.SearchRestaurants(ctx, query, lat, lng)
	metrics.RecordProviderCall("search", time.Since(start), err)
	if err != nil {
		s.log.WithError(err).WithField("query", query).Warn("restaurant search failed")
		return highlight.SearchResult{Text: "Could not find restaurants.", Sources: []highlight.Source{}}
	}
	if result.Sources == nil {
		result.Sources = []highlight.Source{}
	}
	return result
}
