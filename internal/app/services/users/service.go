package users

import (
	"context"
	"strings"

	"github.com/blackpeopleeats/platform/internal/app/domain/user"
	"github.com/blackpeopleeats/platform/internal/app/storage"
	apperrors "github.com/blackpeopleeats/platform/internal/errors"
	"github.com/blackpeopleeats/platform/pkg/logger"
)

// Service manages user profiles and follow relationships.
type Service struct {
	store storage.UserStore
	log   *logger.Logger
}

// New constructs a user service.
func New(store storage.UserStore, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("users")
	}
	return &Service{store: store, log: log}
}

// Get fetches a single user profile. A missing user surfaces the store's
// not-found error unchanged so callers can distinguish it.
func (s *Service) Get(ctx context.Context, id int64) (user.User, error) {
	if id <= 0 {
		return user.User{}, apperrors.InvalidInput("user id must be positive")
	}
	return s.store.GetUser(ctx, id)
}

// Update overwrites a user's profile fields. Updating an unknown id is a
// silent no-op.
func (s *Service) Update(ctx context.Context, u user.User) (user.User, error) {
	if u.ID <= 0 {
		return user.User{}, apperrors.InvalidInput("user id must be positive")
	}
	u.Username = strings.TrimSpace(u.Username)
	if u.Username == "" {
		return user.User{}, apperrors.InvalidInput("username is required")
	}
	if err := s.store.UpdateUser(ctx, u); err != nil {
		s.log.WithError(err).WithField("user_id", u.ID).Error("update user")
		return user.User{}, err
	}
	return u, nil
}

// Follow records that follower follows followed. The pair is idempotent and
// neither id is checked for existence.
func (s *Service) Follow(ctx context.Context, followerID, followedID int64) error {
	if followerID <= 0 || followedID <= 0 {
		return apperrors.InvalidInput("follower_id and followed_id must be positive")
	}
	if err := s.store.CreateFollow(ctx, user.Follow{FollowerID: followerID, FollowedID: followedID}); err != nil {
		s.log.WithError(err).Error("create follow")
		return err
	}
	return nil
}
