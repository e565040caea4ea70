package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	app "github.com/blackpeopleeats/platform/internal/app"
	"github.com/blackpeopleeats/platform/internal/app/domain/post"
	"github.com/blackpeopleeats/platform/internal/app/domain/user"
	"github.com/blackpeopleeats/platform/internal/app/services/checkout"
	"github.com/blackpeopleeats/platform/internal/app/storage"
	"github.com/blackpeopleeats/platform/internal/app/storage/memory"
)

func newTestHandler(t *testing.T) http.Handler {
	t.Helper()
	mem := memory.New()
	if err := storage.Seed(context.Background(), mem, mem, mem); err != nil {
		t.Fatalf("seed: %v", err)
	}
	return newHandlerWithStores(t, app.Stores{Restaurants: mem, Users: mem, Posts: mem})
}

func newHandlerWithStores(t *testing.T, stores app.Stores) http.Handler {
	t.Helper()
	application, err := app.New(stores, app.Collaborators{}, nil)
	if err != nil {
		t.Fatalf("app.New: %v", err)
	}
	return NewHandler(application, "")
}

func doRequest(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), dst); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
}

func TestListRestaurantsIncludesAverageRating(t *testing.T) {
	h := newTestHandler(t)

	rec := doRequest(t, h, http.MethodGet, "/api/restaurants", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var listed []struct {
		Name      string   `json:"name"`
		AvgRating *float64 `json:"avg_rating"`
	}
	decodeBody(t, rec, &listed)
	if len(listed) != 5 {
		t.Fatalf("expected 5 seeded restaurants, got %d", len(listed))
	}

	byName := map[string]*float64{}
	for _, r := range listed {
		byName[r.Name] = r.AvgRating
	}
	if avg := byName["Slutty Vegan"]; avg == nil || *avg != 5 {
		t.Fatalf("expected Slutty Vegan avg 5, got %v", avg)
	}
	if avg := byName["Busy Bee Cafe"]; avg == nil || *avg != 4 {
		t.Fatalf("expected Busy Bee Cafe avg 4, got %v", avg)
	}
	if avg := byName["Dooky Chase's"]; avg != nil {
		t.Fatalf("expected null avg for unrated restaurant, got %v", *avg)
	}
}

func TestListRestaurantsCityFilterIsExact(t *testing.T) {
	h := newTestHandler(t)

	var atlanta []struct {
		City string `json:"city"`
	}
	rec := doRequest(t, h, http.MethodGet, "/api/restaurants?city=Atlanta", "")
	decodeBody(t, rec, &atlanta)
	if len(atlanta) != 2 {
		t.Fatalf("expected 2 Atlanta restaurants, got %d", len(atlanta))
	}

	var lowercase []struct{}
	rec = doRequest(t, h, http.MethodGet, "/api/restaurants?city=atlanta", "")
	decodeBody(t, rec, &lowercase)
	if len(lowercase) != 0 {
		t.Fatalf("city filter should be case sensitive, got %d rows", len(lowercase))
	}
}

func TestSponsorsEmptyIsArray(t *testing.T) {
	h := newHandlerWithStores(t, app.Stores{})

	rec := doRequest(t, h, http.MethodGet, "/api/sponsors", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if strings.TrimSpace(rec.Body.String()) != "[]" {
		t.Fatalf("expected empty array, got %q", rec.Body.String())
	}
}

func TestSponsorsOnlySponsored(t *testing.T) {
	h := newTestHandler(t)

	var sponsors []struct {
		Name        string `json:"name"`
		IsSponsored bool   `json:"is_sponsored"`
	}
	rec := doRequest(t, h, http.MethodGet, "/api/sponsors", "")
	decodeBody(t, rec, &sponsors)
	if len(sponsors) != 2 {
		t.Fatalf("expected 2 sponsors, got %d", len(sponsors))
	}
	for _, s := range sponsors {
		if !s.IsSponsored {
			t.Fatalf("%s listed as sponsor but not flagged", s.Name)
		}
	}
}

func TestGetUserAbsentReturnsNull(t *testing.T) {
	h := newTestHandler(t)

	rec := doRequest(t, h, http.MethodGet, "/api/users/999", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for absent user, got %d", rec.Code)
	}
	if strings.TrimSpace(rec.Body.String()) != "null" {
		t.Fatalf("expected null body, got %q", rec.Body.String())
	}
}

func TestGetUserReturnsSeedProfile(t *testing.T) {
	h := newTestHandler(t)

	var u struct {
		Username string `json:"username"`
	}
	rec := doRequest(t, h, http.MethodGet, "/api/users/1", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	decodeBody(t, rec, &u)
	if u.Username != "ChefBae" {
		t.Fatalf("expected seed user ChefBae, got %q", u.Username)
	}
}

func TestUpdateUserOverwritesProfile(t *testing.T) {
	h := newTestHandler(t)

	rec := doRequest(t, h, http.MethodPost, "/api/users/1",
		`{"username":"ChefBae","bio":"Updated bio","profile_pic":"new.jpg"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var result struct {
		Success bool `json:"success"`
	}
	decodeBody(t, rec, &result)
	if !result.Success {
		t.Fatal("expected success true")
	}

	var u struct {
		Bio string `json:"bio"`
	}
	rec = doRequest(t, h, http.MethodGet, "/api/users/1", "")
	decodeBody(t, rec, &u)
	if u.Bio != "Updated bio" {
		t.Fatalf("update not applied, bio %q", u.Bio)
	}
}

func TestUserInvalidIDReturnsBadRequest(t *testing.T) {
	h := newTestHandler(t)

	rec := doRequest(t, h, http.MethodGet, "/api/users/abc", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for non-numeric id, got %d", rec.Code)
	}
	var result struct {
		Error string `json:"error"`
	}
	decodeBody(t, rec, &result)
	if result.Error == "" {
		t.Fatal("expected error message in body")
	}
}

func TestFollowIsIdempotent(t *testing.T) {
	h := newTestHandler(t)

	for i := 0; i < 2; i++ {
		rec := doRequest(t, h, http.MethodPost, "/api/follow", `{"follower_id":1,"followed_id":2}`)
		if rec.Code != http.StatusOK {
			t.Fatalf("follow attempt %d: expected 200, got %d: %s", i+1, rec.Code, rec.Body.String())
		}
		var result struct {
			Success bool `json:"success"`
		}
		decodeBody(t, rec, &result)
		if !result.Success {
			t.Fatalf("follow attempt %d: expected success", i+1)
		}
	}
}

func TestFollowRejectsMissingIDs(t *testing.T) {
	h := newTestHandler(t)

	rec := doRequest(t, h, http.MethodPost, "/api/follow", `{"follower_id":1}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

// failingUserStore simulates backend failures on writes.
type failingUserStore struct {
	*memory.Store
}

func (s *failingUserStore) UpdateUser(context.Context, user.User) error {
	return errors.New("connection reset")
}

func (s *failingUserStore) CreateFollow(context.Context, user.Follow) error {
	return errors.New("connection reset")
}

// failingPostStore simulates a backend failure on insert.
type failingPostStore struct {
	*memory.Store
}

func (s *failingPostStore) CreatePost(context.Context, post.Post) (post.Post, error) {
	return post.Post{}, errors.New("connection reset")
}

func TestStoreFailuresAreServerErrors(t *testing.T) {
	mem := memory.New()
	h := newHandlerWithStores(t, app.Stores{
		Restaurants: mem,
		Users:       &failingUserStore{Store: mem},
		Posts:       &failingPostStore{Store: mem},
	})

	cases := []struct {
		name   string
		method string
		path   string
		body   string
	}{
		{"update user", http.MethodPost, "/api/users/1", `{"username":"ChefBae"}`},
		{"follow", http.MethodPost, "/api/follow", `{"follower_id":1,"followed_id":2}`},
		{"create post", http.MethodPost, "/api/posts", `{"restaurant_id":1,"user_name":"ChefBae","meal_name":"Oxtail Plate"}`},
	}
	for _, tc := range cases {
		rec := doRequest(t, h, tc.method, tc.path, tc.body)
		if rec.Code != http.StatusInternalServerError {
			t.Errorf("%s: expected 500 for store failure, got %d: %s", tc.name, rec.Code, rec.Body.String())
		}
	}
}

func TestCreatePostAppliesDefaults(t *testing.T) {
	h := newTestHandler(t)

	rec := doRequest(t, h, http.MethodPost, "/api/posts",
		`{"restaurant_id":3,"user_name":"ChefBae","meal_name":"Mild Sauce Wings"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var created struct {
		ID int64 `json:"id"`
	}
	decodeBody(t, rec, &created)
	if created.ID == 0 {
		t.Fatal("expected generated post id")
	}

	var posts []struct {
		ID     int64 `json:"id"`
		UserID int64 `json:"user_id"`
		Rating int   `json:"rating"`
	}
	rec = doRequest(t, h, http.MethodGet, "/api/posts", "")
	decodeBody(t, rec, &posts)
	for _, p := range posts {
		if p.ID == created.ID {
			if p.UserID != 1 {
				t.Fatalf("expected default user_id 1, got %d", p.UserID)
			}
			if p.Rating != 5 {
				t.Fatalf("expected default rating 5, got %d", p.Rating)
			}
			return
		}
	}
	t.Fatalf("created post %d not found in feed", created.ID)
}

func TestCreatePostRequiresMealName(t *testing.T) {
	h := newTestHandler(t)

	rec := doRequest(t, h, http.MethodPost, "/api/posts", `{"restaurant_id":1,"user_name":"ChefBae"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestCreatePostRejectsServerFields(t *testing.T) {
	h := newTestHandler(t)

	// Clients must not supply id or created_at; a forged timestamp would pin
	// the post to the top of the feed.
	rec := doRequest(t, h, http.MethodPost, "/api/posts",
		`{"restaurant_id":1,"user_name":"ChefBae","meal_name":"Oxtail Plate","created_at":"2999-01-01T00:00:00Z"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for created_at in payload, got %d: %s", rec.Code, rec.Body.String())
	}
	var result struct {
		Error string `json:"error"`
	}
	decodeBody(t, rec, &result)
	if result.Error == "" {
		t.Fatal("expected error message in body")
	}

	rec = doRequest(t, h, http.MethodPost, "/api/posts",
		`{"id":99,"restaurant_id":1,"user_name":"ChefBae","meal_name":"Oxtail Plate"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for id in payload, got %d", rec.Code)
	}

	// The feed still shows only the two seeded posts.
	var posts []struct {
		MealName string `json:"meal_name"`
	}
	rec = doRequest(t, h, http.MethodGet, "/api/posts", "")
	decodeBody(t, rec, &posts)
	if len(posts) != 2 {
		t.Fatalf("expected 2 seeded posts, got %d", len(posts))
	}
}

func TestCreatePostMalformedJSON(t *testing.T) {
	h := newTestHandler(t)

	rec := doRequest(t, h, http.MethodPost, "/api/posts", `{"restaurant_id":`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed JSON, got %d", rec.Code)
	}
	var result struct {
		Error string `json:"error"`
	}
	decodeBody(t, rec, &result)
	if result.Error == "" {
		t.Fatal("expected error message in body")
	}
}

func TestFeedScopedToFollowsAndSelf(t *testing.T) {
	h := newTestHandler(t)

	// Viewer 2 follows nobody and has no posts.
	var empty []struct{}
	rec := doRequest(t, h, http.MethodGet, "/api/posts?userId=2", "")
	decodeBody(t, rec, &empty)
	if len(empty) != 0 {
		t.Fatalf("expected empty feed for isolated viewer, got %d posts", len(empty))
	}

	// After following the seed author, their posts show up.
	doRequest(t, h, http.MethodPost, "/api/follow", `{"follower_id":2,"followed_id":1}`)
	var scoped []struct {
		UserID int64 `json:"user_id"`
	}
	rec = doRequest(t, h, http.MethodGet, "/api/posts?userId=2", "")
	decodeBody(t, rec, &scoped)
	if len(scoped) != 2 {
		t.Fatalf("expected 2 posts after following seed author, got %d", len(scoped))
	}
	for _, p := range scoped {
		if p.UserID != 1 {
			t.Fatalf("unexpected author %d in scoped feed", p.UserID)
		}
	}
}

func TestFeedViewerZeroIsEmpty(t *testing.T) {
	h := newTestHandler(t)

	// Viewer 0 is a real (if nonexistent) viewer, not a request for the
	// global feed.
	var posts []struct{}
	rec := doRequest(t, h, http.MethodGet, "/api/posts?userId=0", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	decodeBody(t, rec, &posts)
	if len(posts) != 0 {
		t.Fatalf("expected empty feed for viewer 0, got %d posts", len(posts))
	}
}

func TestFeedIncludesJoinedFields(t *testing.T) {
	h := newTestHandler(t)

	var posts []struct {
		RestaurantName string `json:"restaurant_name"`
		RestaurantCity string `json:"restaurant_city"`
		UserAvatar     string `json:"user_avatar"`
	}
	rec := doRequest(t, h, http.MethodGet, "/api/posts", "")
	decodeBody(t, rec, &posts)
	if len(posts) == 0 {
		t.Fatal("expected seeded posts")
	}
	for _, p := range posts {
		if p.RestaurantName == "" || p.RestaurantCity == "" || p.UserAvatar == "" {
			t.Fatalf("joined fields missing: %+v", p)
		}
	}
}

func TestCheckoutWithoutProviderReturnsMockURL(t *testing.T) {
	h := newTestHandler(t)

	rec := doRequest(t, h, http.MethodPost, "/api/create-checkout-session", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var result struct {
		URL string `json:"url"`
	}
	decodeBody(t, rec, &result)
	if result.URL != checkout.MockSessionURL {
		t.Fatalf("expected mock session URL, got %q", result.URL)
	}
}

func TestHighlightsServeFallbackTable(t *testing.T) {
	h := newTestHandler(t)

	var entries []struct {
		Name     string `json:"name"`
		Category string `json:"category"`
		Reason   string `json:"reason"`
	}
	rec := doRequest(t, h, http.MethodGet, "/api/highlights?city=Chicago", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	decodeBody(t, rec, &entries)
	if len(entries) != 5 {
		t.Fatalf("expected 5 fallback entries, got %d", len(entries))
	}
	if entries[0].Name != "Harold's Chicken Shack" {
		t.Fatalf("unexpected first Chicago entry %q", entries[0].Name)
	}

	// Unknown cities collapse to the default city's table.
	var unknown []struct {
		Name string `json:"name"`
	}
	rec = doRequest(t, h, http.MethodGet, "/api/highlights?city=Nowhere", "")
	decodeBody(t, rec, &unknown)
	if len(unknown) != 5 || unknown[0].Name != "Slutty Vegan" {
		t.Fatalf("expected Atlanta fallback for unknown city, got %+v", unknown)
	}
}

func TestHighlightsRequireCity(t *testing.T) {
	h := newTestHandler(t)

	rec := doRequest(t, h, http.MethodGet, "/api/highlights", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestSearchWithoutProviderDegrades(t *testing.T) {
	h := newTestHandler(t)

	var result struct {
		Text    string            `json:"text"`
		Sources []json.RawMessage `json:"sources"`
	}
	rec := doRequest(t, h, http.MethodGet, "/api/search?q=jerk+chicken", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	decodeBody(t, rec, &result)
	if result.Text != "Could not find restaurants." {
		t.Fatalf("unexpected degraded text %q", result.Text)
	}
	if result.Sources == nil || len(result.Sources) != 0 {
		t.Fatalf("expected empty sources array, got %v", result.Sources)
	}
}

func TestHealthz(t *testing.T) {
	h := newTestHandler(t)

	rec := doRequest(t, h, http.MethodGet, "/healthz", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	h := newTestHandler(t)

	rec := doRequest(t, h, http.MethodDelete, "/api/restaurants", "")
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rec.Code)
	}
}
