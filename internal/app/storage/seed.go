package storage

import (
	"context"
	"fmt"

	"github.com/blackpeopleeats/platform/internal/app/domain/post"
	"github.com/blackpeopleeats/platform/internal/app/domain/restaurant"
	"github.com/blackpeopleeats/platform/internal/app/domain/user"
)

// SeedRestaurants is the starter restaurant directory.
var SeedRestaurants = []restaurant.Restaurant{
	{Name: "Slutty Vegan", City: "Atlanta", Address: "154 Howell Mill Rd NW", Category: "Vegan", IsBlackOwned: true, IsSponsored: true},
	{Name: "Busy Bee Cafe", City: "Atlanta", Address: "810 Martin Luther King Jr Dr SW", Category: "Soul Food", IsBlackOwned: true},
	{Name: "Harold's Chicken Shack", City: "Chicago", Address: "1208 E 53rd St", Category: "Chicken", IsBlackOwned: true},
	{Name: "The Breakfast Klub", City: "Houston", Address: "3711 Travis St", Category: "Breakfast", IsBlackOwned: true, IsSponsored: true},
	{Name: "Dooky Chase's", City: "New Orleans", Address: "2301 Orleans Ave", Category: "Creole", IsBlackOwned: true},
}

// SeedUser is the default profile every anonymous action is attributed to.
var SeedUser = user.User{
	ID:         1,
	Username:   "ChefBae",
	Bio:        "Foodie & Explorer",
	ProfilePic: "https://images.unsplash.com/photo-1531123897727-8f129e1bf98c?q=80&w=200&h=200&fit=crop",
}

// SeedPosts are the starter feed entries. RestaurantID indexes into
// SeedRestaurants by seed order.
var SeedPosts = []post.Post{
	{
		RestaurantID: 1,
		UserID:       1,
		UserName:     "ChefBae",
		MealName:     "One Night Stand Burger",
		Review:       "The best vegan burger I've ever had. Period.",
		Rating:       5,
		ImageURL:     "https://images.unsplash.com/photo-1525059696034-4967a8e1dca2?q=80&w=600&h=450&fit=crop",
	},
	{
		RestaurantID: 2,
		UserID:       1,
		UserName:     "ChefBae",
		MealName:     "Fried Chicken & Mac",
		Review:       "Tastes like grandma's cooking. The line is worth it.",
		Rating:       4,
		ImageURL:     "https://images.unsplash.com/photo-1626645738196-c2a7c87a8f58?q=80&w=600&h=450&fit=crop",
	},
}

// Seed populates the stores with the starter dataset. It is a no-op when the
// restaurant table already has rows.
func Seed(ctx context.Context, restaurants RestaurantStore, users UserStore, posts PostStore) error {
	count, err := restaurants.CountRestaurants(ctx)
	if err != nil {
		return fmt.Errorf("count restaurants: %w", err)
	}
	if count > 0 {
		return nil
	}

	for _, r := range SeedRestaurants {
		if _, err := restaurants.CreateRestaurant(ctx, r); err != nil {
			return fmt.Errorf("seed restaurant %s: %w", r.Name, err)
		}
	}
	if _, err := users.CreateUser(ctx, SeedUser); err != nil {
		return fmt.Errorf("seed user %s: %w", SeedUser.Username, err)
	}
	for _, p := range SeedPosts {
		if _, err := posts.CreatePost(ctx, p); err != nil {
			return fmt.Errorf("seed post %s: %w", p.MealName, err)
		}
	}
	return nil
}
