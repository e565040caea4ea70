// Package postgres implements the storage interfaces backed by PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/blackpeopleeats/platform/internal/app/domain/post"
	"github.com/blackpeopleeats/platform/internal/app/domain/restaurant"
	"github.com/blackpeopleeats/platform/internal/app/domain/user"
	"github.com/blackpeopleeats/platform/internal/app/storage"
)

// Store implements the storage interfaces using a database handle.
type Store struct {
	db *sql.DB
}

var _ storage.RestaurantStore = (*Store)(nil)
var _ storage.UserStore = (*Store)(nil)
var _ storage.PostStore = (*Store)(nil)

// New creates a Store using the provided database handle.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// --- RestaurantStore --------------------------------------------------------

func (s *Store) CreateRestaurant(ctx context.Context, r restaurant.Restaurant) (restaurant.Restaurant, error) {
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO restaurants (name, city, address, lat, lng, category, is_black_owned, is_sponsored)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`, r.Name, r.City, r.Address, toNullFloat(r.Lat), toNullFloat(r.Lng), r.Category, r.IsBlackOwned, r.IsSponsored)

	if err := row.Scan(&r.ID); err != nil {
		return restaurant.Restaurant{}, err
	}
	return r, nil
}

func (s *Store) ListRestaurants(ctx context.Context, city string) ([]restaurant.Rated, error) {
	query := `
		SELECT r.id, r.name, r.city, r.address, r.lat, r.lng, r.category, r.is_black_owned, r.is_sponsored,
		       AVG(p.rating) AS avg_rating
		FROM restaurants r
		LEFT JOIN posts p ON r.id = p.restaurant_id
	`
	var args []interface{}
	if city != "" {
		query += " WHERE r.city = $1"
		args = append(args, city)
	}
	query += " GROUP BY r.id ORDER BY r.id"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []restaurant.Rated
	for rows.Next() {
		var (
			rated restaurant.Rated
			lat   sql.NullFloat64
			lng   sql.NullFloat64
			avg   sql.NullFloat64
		)
		if err := rows.Scan(&rated.ID, &rated.Name, &rated.City, &rated.Address, &lat, &lng,
			&rated.Category, &rated.IsBlackOwned, &rated.IsSponsored, &avg); err != nil {
			return nil, err
		}
		rated.Lat = fromNullFloat(lat)
		rated.Lng = fromNullFloat(lng)
		rated.AvgRating = fromNullFloat(avg)
		result = append(result, rated)
	}
	return result, rows.Err()
}

func (s *Store) ListSponsored(ctx context.Context) ([]restaurant.Restaurant, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, city, address, lat, lng, category, is_black_owned, is_sponsored
		FROM restaurants
		WHERE is_sponsored
		ORDER BY id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []restaurant.Restaurant
	for rows.Next() {
		var (
			r   restaurant.Restaurant
			lat sql.NullFloat64
			lng sql.NullFloat64
		)
		if err := rows.Scan(&r.ID, &r.Name, &r.City, &r.Address, &lat, &lng,
			&r.Category, &r.IsBlackOwned, &r.IsSponsored); err != nil {
			return nil, err
		}
		r.Lat = fromNullFloat(lat)
		r.Lng = fromNullFloat(lng)
		result = append(result, r)
	}
	return result, rows.Err()
}

func (s *Store) CountRestaurants(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM restaurants`).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

// --- UserStore --------------------------------------------------------------

func (s *Store) CreateUser(ctx context.Context, u user.User) (user.User, error) {
	if u.ID != 0 {
		// Explicit id insert (seed user). Keep the sequence ahead of
		// manually assigned ids.
		_, err := s.db.ExecContext(ctx, `
			INSERT INTO users (id, username, bio, profile_pic)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (id) DO NOTHING
		`, u.ID, u.Username, u.Bio, u.ProfilePic)
		if err != nil {
			return user.User{}, err
		}
		if _, err := s.db.ExecContext(ctx, `
			SELECT setval(pg_get_serial_sequence('users', 'id'), GREATEST((SELECT COALESCE(MAX(id), 1) FROM users), 1))
		`); err != nil {
			return user.User{}, fmt.Errorf("advance users sequence: %w", err)
		}
		return s.GetUser(ctx, u.ID)
	}

	row := s.db.QueryRowContext(ctx, `
		INSERT INTO users (username, bio, profile_pic)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`, u.Username, u.Bio, u.ProfilePic)
	if err := row.Scan(&u.ID, &u.CreatedAt); err != nil {
		return user.User{}, err
	}
	return u, nil
}

func (s *Store) GetUser(ctx context.Context, id int64) (user.User, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, username, bio, profile_pic, created_at
		FROM users
		WHERE id = $1
	`, id)

	var u user.User
	if err := row.Scan(&u.ID, &u.Username, &u.Bio, &u.ProfilePic, &u.CreatedAt); err != nil {
		return user.User{}, err
	}
	return u, nil
}

func (s *Store) UpdateUser(ctx context.Context, u user.User) error {
	// Unconditional overwrite; an unknown id updates nothing and is not an
	// error.
	_, err := s.db.ExecContext(ctx, `
		UPDATE users
		SET username = $2, bio = $3, profile_pic = $4
		WHERE id = $1
	`, u.ID, u.Username, u.Bio, u.ProfilePic)
	return err
}

func (s *Store) CreateFollow(ctx context.Context, f user.Follow) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO follows (follower_id, followed_id)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING
	`, f.FollowerID, f.FollowedID)
	return err
}

// --- PostStore --------------------------------------------------------------

func (s *Store) CreatePost(ctx context.Context, p post.Post) (post.Post, error) {
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO posts (restaurant_id, user_id, user_name, meal_name, image_url, review, rating)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`, p.RestaurantID, p.UserID, p.UserName, p.MealName, p.ImageURL, p.Review, p.Rating)

	if err := row.Scan(&p.ID, &p.CreatedAt); err != nil {
		return post.Post{}, err
	}
	return p, nil
}

func (s *Store) ListPosts(ctx context.Context, viewer *int64) ([]post.Post, error) {
	query := `
		SELECT p.id, p.restaurant_id, p.user_id, p.user_name, p.meal_name, p.image_url, p.review, p.rating, p.created_at,
		       r.name AS restaurant_name, r.city AS restaurant_city, u.profile_pic AS user_avatar
		FROM posts p
		JOIN restaurants r ON p.restaurant_id = r.id
		JOIN users u ON p.user_id = u.id
	`
	var args []interface{}
	if viewer != nil {
		// Feed scope: authors the viewer follows, or the viewer themselves.
		query += ` WHERE p.user_id IN (SELECT followed_id FROM follows WHERE follower_id = $1) OR p.user_id = $1`
		args = append(args, *viewer)
	}
	query += " ORDER BY p.created_at DESC, p.id DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []post.Post
	for rows.Next() {
		var p post.Post
		if err := rows.Scan(&p.ID, &p.RestaurantID, &p.UserID, &p.UserName, &p.MealName, &p.ImageURL,
			&p.Review, &p.Rating, &p.CreatedAt, &p.RestaurantName, &p.RestaurantCity, &p.UserAvatar); err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	return result, rows.Err()
}

func toNullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func fromNullFloat(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}
