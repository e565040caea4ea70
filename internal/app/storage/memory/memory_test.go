package memory

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/blackpeopleeats/platform/internal/app/domain/post"
	"github.com/blackpeopleeats/platform/internal/app/domain/restaurant"
	"github.com/blackpeopleeats/platform/internal/app/domain/user"
)

func TestCreateRestaurantAssignsIDs(t *testing.T) {
	store := New()
	ctx := context.Background()

	first, err := store.CreateRestaurant(ctx, restaurant.Restaurant{Name: "A", City: "Atlanta"})
	if err != nil {
		t.Fatalf("CreateRestaurant: %v", err)
	}
	second, err := store.CreateRestaurant(ctx, restaurant.Restaurant{Name: "B", City: "Chicago"})
	if err != nil {
		t.Fatalf("CreateRestaurant: %v", err)
	}
	if first.ID != 1 || second.ID != 2 {
		t.Fatalf("expected sequential ids, got %d and %d", first.ID, second.ID)
	}
}

func TestListRestaurantsComputesAverage(t *testing.T) {
	store := New()
	ctx := context.Background()

	r, _ := store.CreateRestaurant(ctx, restaurant.Restaurant{Name: "A", City: "Atlanta"})
	u, _ := store.CreateUser(ctx, user.User{Username: "tester"})
	for _, rating := range []int{3, 5} {
		if _, err := store.CreatePost(ctx, post.Post{RestaurantID: r.ID, UserID: u.ID, UserName: "tester", MealName: "dish", Rating: rating}); err != nil {
			t.Fatalf("CreatePost: %v", err)
		}
	}

	listed, err := store.ListRestaurants(ctx, "")
	if err != nil {
		t.Fatalf("ListRestaurants: %v", err)
	}
	if len(listed) != 1 {
		t.Fatalf("expected 1 restaurant, got %d", len(listed))
	}
	if listed[0].AvgRating == nil || *listed[0].AvgRating != 4 {
		t.Fatalf("expected average 4, got %v", listed[0].AvgRating)
	}
}

func TestGetUserMissing(t *testing.T) {
	store := New()

	_, err := store.GetUser(context.Background(), 5)
	if !errors.Is(err, sql.ErrNoRows) {
		t.Fatalf("expected sql.ErrNoRows, got %v", err)
	}
}

func TestUpdateUserUnknownIDNoError(t *testing.T) {
	store := New()

	if err := store.UpdateUser(context.Background(), user.User{ID: 9, Username: "ghost"}); err != nil {
		t.Fatalf("UpdateUser: %v", err)
	}
}

func TestFollowPairIdempotent(t *testing.T) {
	store := New()
	ctx := context.Background()

	pair := user.Follow{FollowerID: 1, FollowedID: 2}
	if err := store.CreateFollow(ctx, pair); err != nil {
		t.Fatalf("CreateFollow: %v", err)
	}
	if err := store.CreateFollow(ctx, pair); err != nil {
		t.Fatalf("repeat CreateFollow: %v", err)
	}
}

func TestListPostsOrphansInvisible(t *testing.T) {
	store := New()
	ctx := context.Background()

	u, _ := store.CreateUser(ctx, user.User{Username: "tester"})
	// Restaurant 42 does not exist, so the post should not surface.
	if _, err := store.CreatePost(ctx, post.Post{RestaurantID: 42, UserID: u.ID, UserName: "tester", MealName: "dish", Rating: 5}); err != nil {
		t.Fatalf("CreatePost: %v", err)
	}

	posts, err := store.ListPosts(ctx, nil)
	if err != nil {
		t.Fatalf("ListPosts: %v", err)
	}
	if len(posts) != 0 {
		t.Fatalf("expected orphaned post to be invisible, got %d", len(posts))
	}
}

func TestListPostsNewestFirst(t *testing.T) {
	store := New()
	ctx := context.Background()

	r, _ := store.CreateRestaurant(ctx, restaurant.Restaurant{Name: "A", City: "Atlanta"})
	u, _ := store.CreateUser(ctx, user.User{Username: "tester"})

	older := time.Now().Add(-time.Hour)
	newer := time.Now()
	if _, err := store.CreatePost(ctx, post.Post{RestaurantID: r.ID, UserID: u.ID, UserName: "tester", MealName: "old", Rating: 5, CreatedAt: older}); err != nil {
		t.Fatalf("CreatePost: %v", err)
	}
	if _, err := store.CreatePost(ctx, post.Post{RestaurantID: r.ID, UserID: u.ID, UserName: "tester", MealName: "new", Rating: 5, CreatedAt: newer}); err != nil {
		t.Fatalf("CreatePost: %v", err)
	}

	posts, err := store.ListPosts(ctx, nil)
	if err != nil {
		t.Fatalf("ListPosts: %v", err)
	}
	if len(posts) != 2 || posts[0].MealName != "new" {
		t.Fatalf("expected newest first, got %+v", posts)
	}
}

func TestListPostsViewerScope(t *testing.T) {
	store := New()
	ctx := context.Background()

	r, _ := store.CreateRestaurant(ctx, restaurant.Restaurant{Name: "A", City: "Atlanta"})
	author, _ := store.CreateUser(ctx, user.User{Username: "author"})
	viewer, _ := store.CreateUser(ctx, user.User{Username: "viewer"})
	if _, err := store.CreatePost(ctx, post.Post{RestaurantID: r.ID, UserID: author.ID, UserName: "author", MealName: "dish", Rating: 5}); err != nil {
		t.Fatalf("CreatePost: %v", err)
	}

	scoped, err := store.ListPosts(ctx, &viewer.ID)
	if err != nil {
		t.Fatalf("ListPosts: %v", err)
	}
	if len(scoped) != 0 {
		t.Fatalf("viewer should not see posts from unfollowed authors, got %d", len(scoped))
	}

	if err := store.CreateFollow(ctx, user.Follow{FollowerID: viewer.ID, FollowedID: author.ID}); err != nil {
		t.Fatalf("CreateFollow: %v", err)
	}
	scoped, err = store.ListPosts(ctx, &viewer.ID)
	if err != nil {
		t.Fatalf("ListPosts: %v", err)
	}
	if len(scoped) != 1 {
		t.Fatalf("expected followed author's post, got %d", len(scoped))
	}
}
