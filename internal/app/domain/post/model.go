// Package post defines the meal post domain model.
package post

import "time"

// Post is a meal review tied to a restaurant and an author. UserName is
// denormalized at creation time. RestaurantName, RestaurantCity and
// UserAvatar are populated by feed queries.
type Post struct {
	ID           int64     `json:"id"`
	RestaurantID int64     `json:"restaurant_id"`
	UserID       int64     `json:"user_id"`
	UserName     string    `json:"user_name"`
	MealName     string    `json:"meal_name"`
	ImageURL     string    `json:"image_url"`
	Review       string    `json:"review"`
	Rating       int       `json:"rating"`
	CreatedAt    time.Time `json:"created_at"`

	RestaurantName string `json:"restaurant_name,omitempty"`
	RestaurantCity string `json:"restaurant_city,omitempty"`
	UserAvatar     string `json:"user_avatar,omitempty"`
}
