package restaurants

import (
	"context"
	"strings"

	"github.com/blackpeopleeats/platform/internal/app/domain/restaurant"
	"github.com/blackpeopleeats/platform/internal/app/storage"
	"github.com/blackpeopleeats/platform/pkg/logger"
)

// Service serves restaurant listings and sponsor placements.
type Service struct {
	store storage.RestaurantStore
	log   *logger.Logger
}

// New constructs a restaurant service.
func New(store storage.RestaurantStore, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("restaurants")
	}
	return &Service{store: store, log: log}
}

// List returns restaurants with their average rating, optionally filtered by
// exact city name.
func (s *Service) List(ctx context.Context, city string) ([]restaurant.Rated, error) {
	city = strings.TrimSpace(city)
	listed, err := s.store.ListRestaurants(ctx, city)
	if err != nil {
		s.log.WithError(err).Error("list restaurants")
		return nil, err
	}
	return listed, nil
}

// Sponsors returns restaurants flagged as sponsored.
func (s *Service) Sponsors(ctx context.Context) ([]restaurant.Restaurant, error) {
	sponsored, err := s.store.ListSponsored(ctx)
	if err != nil {
		s.log.WithError(err).Error("list sponsors")
		return nil, err
	}
	return sponsored, nil
}
