// Package app wires domain services to their stores and collaborators.
package app

import (
	"fmt"

	checkoutsvc "github.com/blackpeopleeats/platform/internal/app/services/checkout"
	highlightsvc "github.com/blackpeopleeats/platform/internal/app/services/highlights"
	postsvc "github.com/blackpeopleeats/platform/internal/app/services/posts"
	restaurantsvc "github.com/blackpeopleeats/platform/internal/app/services/restaurants"
	usersvc "github.com/blackpeopleeats/platform/internal/app/services/users"
	"github.com/blackpeopleeats/platform/internal/app/storage"
	"github.com/blackpeopleeats/platform/internal/app/storage/memory"
	"github.com/blackpeopleeats/platform/pkg/logger"
)

// Stores encapsulates persistence dependencies. Nil stores default to the
// in-memory implementation.
type Stores struct {
	Restaurants storage.RestaurantStore
	Users       storage.UserStore
	Posts       storage.PostStore
}

// Collaborators holds the optional external providers. Nil providers put the
// corresponding service in its degraded mode: mock checkout sessions and
// fallback highlights.
type Collaborators struct {
	Checkout   checkoutsvc.Provider
	Highlights highlightsvc.Provider
}

// Application ties domain services together.
type Application struct {
	log *logger.Logger

	Restaurants *restaurantsvc.Service
	Users       *usersvc.Service
	Posts       *postsvc.Service
	Checkout    *checkoutsvc.Service
	Highlights  *highlightsvc.Service
}

// New builds a fully initialised application with the provided stores and
// collaborators.
func New(stores Stores, collabs Collaborators, log *logger.Logger) (*Application, error) {
	if log == nil {
		log = logger.NewDefault("app")
	}

	mem := memory.New()
	if stores.Restaurants == nil {
		stores.Restaurants = mem
	}
	if stores.Users == nil {
		stores.Users = mem
	}
	if stores.Posts == nil {
		stores.Posts = mem
	}

	highlightService, err := highlightsvc.New(collabs.Highlights, log)
	if err != nil {
		return nil, fmt.Errorf("init highlights: %w", err)
	}

	return &Application{
		log:         log,
		Restaurants: restaurantsvc.New(stores.Restaurants, log),
		Users:       usersvc.New(stores.Users, log),
		Posts:       postsvc.New(stores.Posts, log),
		Checkout:    checkoutsvc.New(collabs.Checkout, log),
		Highlights:  highlightService,
	}, nil
}
