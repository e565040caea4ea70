// Package memory provides an in-memory implementation of the storage
// interfaces. It is safe for concurrent use and is primarily intended for
// tests and local development without a database.
package memory

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/blackpeopleeats/platform/internal/app/domain/post"
	"github.com/blackpeopleeats/platform/internal/app/domain/restaurant"
	"github.com/blackpeopleeats/platform/internal/app/domain/user"
	"github.com/blackpeopleeats/platform/internal/app/storage"
)

// Store holds all entities behind a single lock.
type Store struct {
	mu               sync.RWMutex
	nextRestaurantID int64
	nextUserID       int64
	nextPostID       int64
	restaurants      map[int64]restaurant.Restaurant
	users            map[int64]user.User
	follows          map[user.Follow]struct{}
	posts            map[int64]post.Post
}

var _ storage.RestaurantStore = (*Store)(nil)
var _ storage.UserStore = (*Store)(nil)
var _ storage.PostStore = (*Store)(nil)

// New creates an empty store.
func New() *Store {
	return &Store{
		nextRestaurantID: 1,
		nextUserID:       1,
		nextPostID:       1,
		restaurants:      make(map[int64]restaurant.Restaurant),
		users:            make(map[int64]user.User),
		follows:          make(map[user.Follow]struct{}),
		posts:            make(map[int64]post.Post),
	}
}

// RestaurantStore implementation ----------------------------------------------

func (s *Store) CreateRestaurant(_ context.Context, r restaurant.Restaurant) (restaurant.Restaurant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if r.ID == 0 {
		r.ID = s.nextRestaurantID
		s.nextRestaurantID++
	} else {
		if _, exists := s.restaurants[r.ID]; exists {
			return restaurant.Restaurant{}, fmt.Errorf("restaurant %d already exists", r.ID)
		}
		if r.ID >= s.nextRestaurantID {
			s.nextRestaurantID = r.ID + 1
		}
	}

	s.restaurants[r.ID] = cloneRestaurant(r)
	return cloneRestaurant(r), nil
}

func (s *Store) ListRestaurants(_ context.Context, city string) ([]restaurant.Rated, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]int64, 0, len(s.restaurants))
	for id, r := range s.restaurants {
		if city != "" && r.City != city {
			continue
		}
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	result := make([]restaurant.Rated, 0, len(ids))
	for _, id := range ids {
		rated := restaurant.Rated{Restaurant: cloneRestaurant(s.restaurants[id])}
		var sum, n int
		for _, p := range s.posts {
			if p.RestaurantID == id {
				sum += p.Rating
				n++
			}
		}
		if n > 0 {
			avg := float64(sum) / float64(n)
			rated.AvgRating = &avg
		}
		result = append(result, rated)
	}
	return result, nil
}

func (s *Store) ListSponsored(_ context.Context) ([]restaurant.Restaurant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []restaurant.Restaurant
	for _, r := range s.restaurants {
		if r.IsSponsored {
			result = append(result, cloneRestaurant(r))
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (s *Store) CountRestaurants(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.restaurants), nil
}

// UserStore implementation ----------------------------------------------------

func (s *Store) CreateUser(_ context.Context, u user.User) (user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if u.ID == 0 {
		u.ID = s.nextUserID
		s.nextUserID++
	} else {
		if _, exists := s.users[u.ID]; exists {
			return user.User{}, fmt.Errorf("user %d already exists", u.ID)
		}
		if u.ID >= s.nextUserID {
			s.nextUserID = u.ID + 1
		}
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}

	s.users[u.ID] = u
	return u, nil
}

func (s *Store) GetUser(_ context.Context, id int64) (user.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return user.User{}, sql.ErrNoRows
	}
	return u, nil
}

func (s *Store) UpdateUser(_ context.Context, u user.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.users[u.ID]
	if !ok {
		return nil
	}
	existing.Username = u.Username
	existing.Bio = u.Bio
	existing.ProfilePic = u.ProfilePic
	s.users[u.ID] = existing
	return nil
}

func (s *Store) CreateFollow(_ context.Context, f user.Follow) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.follows[f] = struct{}{}
	return nil
}

// PostStore implementation ----------------------------------------------------

func (s *Store) CreatePost(_ context.Context, p post.Post) (post.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p.ID = s.nextPostID
	s.nextPostID++
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}

	stored := p
	stored.RestaurantName = ""
	stored.RestaurantCity = ""
	stored.UserAvatar = ""
	s.posts[p.ID] = stored
	return p, nil
}

func (s *Store) ListPosts(_ context.Context, viewer *int64) ([]post.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var followed map[int64]struct{}
	if viewer != nil {
		followed = make(map[int64]struct{})
		for f := range s.follows {
			if f.FollowerID == *viewer {
				followed[f.FollowedID] = struct{}{}
			}
		}
	}

	var result []post.Post
	for _, p := range s.posts {
		if viewer != nil {
			_, viewerFollows := followed[p.UserID]
			if !viewerFollows && p.UserID != *viewer {
				continue
			}
		}
		r, haveRestaurant := s.restaurants[p.RestaurantID]
		u, haveUser := s.users[p.UserID]
		if !haveRestaurant || !haveUser {
			// The feed query inner-joins restaurants and users; orphaned
			// posts are invisible.
			continue
		}
		p.RestaurantName = r.Name
		p.RestaurantCity = r.City
		p.UserAvatar = u.ProfilePic
		result = append(result, p)
	}

	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.After(result[j].CreatedAt)
		}
		return result[i].ID > result[j].ID
	})
	return result, nil
}

func cloneRestaurant(r restaurant.Restaurant) restaurant.Restaurant {
	out := r
	if r.Lat != nil {
		lat := *r.Lat
		out.Lat = &lat
	}
	if r.Lng != nil {
		lng := *r.Lng
		out.Lng = &lng
	}
	return out
}
