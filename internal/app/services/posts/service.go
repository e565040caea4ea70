package posts

import (
	"context"
	"strings"

	"github.com/blackpeopleeats/platform/internal/app/domain/post"
	"github.com/blackpeopleeats/platform/internal/app/storage"
	apperrors "github.com/blackpeopleeats/platform/internal/errors"
	"github.com/blackpeopleeats/platform/pkg/logger"
)

// DefaultUserID is attributed to posts submitted without an author.
const DefaultUserID int64 = 1

// DefaultRating is applied when a post omits its rating.
const DefaultRating = 5

// Service manages the review feed.
type Service struct {
	store storage.PostStore
	log   *logger.Logger
}

// New constructs a post service.
func New(store storage.PostStore, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("posts")
	}
	return &Service{store: store, log: log}
}

// List returns posts newest first. A nil viewer returns the global feed;
// otherwise the feed is limited to authors the viewer follows plus the viewer
// themselves. Viewer id 0 is a valid (nonexistent) viewer and sees nothing.
func (s *Service) List(ctx context.Context, viewer *int64) ([]post.Post, error) {
	if viewer != nil && *viewer < 0 {
		return nil, apperrors.InvalidInput("userId must not be negative")
	}
	listed, err := s.store.ListPosts(ctx, viewer)
	if err != nil {
		s.log.WithError(err).Error("list posts")
		return nil, err
	}
	return listed, nil
}

// Create publishes a review. Missing user id and rating fall back to their
// defaults.
func (s *Service) Create(ctx context.Context, p post.Post) (post.Post, error) {
	p.UserName = strings.TrimSpace(p.UserName)
	p.MealName = strings.TrimSpace(p.MealName)

	if p.RestaurantID <= 0 {
		return post.Post{}, apperrors.InvalidInput("restaurant_id is required")
	}
	if p.MealName == "" {
		return post.Post{}, apperrors.InvalidInput("meal_name is required")
	}
	if p.UserName == "" {
		return post.Post{}, apperrors.InvalidInput("user_name is required")
	}
	if p.UserID == 0 {
		p.UserID = DefaultUserID
	}
	if p.Rating == 0 {
		p.Rating = DefaultRating
	}

	created, err := s.store.CreatePost(ctx, p)
	if err != nil {
		s.log.WithError(err).WithField("restaurant_id", p.RestaurantID).Error("create post")
		return post.Post{}, err
	}
	return created, nil
}
