// Package storage defines the persistence interfaces injected into the
// domain services.
package storage

import (
	"context"

	"github.com/blackpeopleeats/platform/internal/app/domain/post"
	"github.com/blackpeopleeats/platform/internal/app/domain/restaurant"
	"github.com/blackpeopleeats/platform/internal/app/domain/user"
)

// RestaurantStore persists restaurant rows.
type RestaurantStore interface {
	CreateRestaurant(ctx context.Context, r restaurant.Restaurant) (restaurant.Restaurant, error)
	// ListRestaurants returns every restaurant joined with the average rating
	// of its posts. A non-empty city filters by exact, case-sensitive match.
	ListRestaurants(ctx context.Context, city string) ([]restaurant.Rated, error)
	ListSponsored(ctx context.Context) ([]restaurant.Restaurant, error)
	CountRestaurants(ctx context.Context) (int, error)
}

// UserStore persists user profiles and follow relationships.
type UserStore interface {
	// CreateUser honors an explicit ID when set, so the seed user keeps id 1.
	CreateUser(ctx context.Context, u user.User) (user.User, error)
	// GetUser returns sql.ErrNoRows when the id is absent.
	GetUser(ctx context.Context, id int64) (user.User, error)
	// UpdateUser overwrites username, bio and profile picture unconditionally.
	// A missing id is not an error.
	UpdateUser(ctx context.Context, u user.User) error
	// CreateFollow inserts the pair, ignoring it if already present.
	CreateFollow(ctx context.Context, f user.Follow) error
}

// PostStore persists meal posts.
type PostStore interface {
	CreatePost(ctx context.Context, p post.Post) (post.Post, error)
	// ListPosts returns posts newest-first with joined restaurant and author
	// fields. A nil viewer returns everything; a non-nil viewer (any value,
	// including 0) restricts to posts authored by users the viewer follows,
	// or by the viewer themselves.
	ListPosts(ctx context.Context, viewer *int64) ([]post.Post, error)
}
