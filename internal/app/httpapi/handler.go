// Package httpapi exposes the application services as a JSON REST API.
package httpapi

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	app "github.com/blackpeopleeats/platform/internal/app"
	"github.com/blackpeopleeats/platform/internal/app/domain/post"
	"github.com/blackpeopleeats/platform/internal/app/domain/restaurant"
	"github.com/blackpeopleeats/platform/internal/app/domain/user"
	"github.com/blackpeopleeats/platform/internal/app/metrics"
	apperrors "github.com/blackpeopleeats/platform/internal/errors"
)

// handler bundles HTTP endpoints for the application services.
type handler struct {
	app *app.Application
}

// NewHandler returns a mux exposing the REST API. When staticDir is non-empty
// unmatched paths serve files from it, with index.html as the SPA fallback.
func NewHandler(application *app.Application, staticDir string) http.Handler {
	h := &handler{app: application}
	mux := http.NewServeMux()
	mux.HandleFunc("/api/restaurants", h.restaurants)
	mux.HandleFunc("/api/sponsors", h.sponsors)
	mux.HandleFunc("/api/users/", h.userResource)
	mux.HandleFunc("/api/follow", h.follow)
	mux.HandleFunc("/api/posts", h.posts)
	mux.HandleFunc("/api/create-checkout-session", h.createCheckoutSession)
	mux.HandleFunc("/api/highlights", h.highlights)
	mux.HandleFunc("/api/search", h.search)
	mux.HandleFunc("/healthz", h.healthz)
	mux.Handle("/metrics", metrics.Handler())
	if staticDir != "" {
		mux.Handle("/", spaFileServer(staticDir))
	}
	return mux
}

func (h *handler) restaurants(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	listed, err := h.app.Restaurants.List(r.Context(), r.URL.Query().Get("city"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if listed == nil {
		listed = []restaurant.Rated{}
	}
	writeJSON(w, http.StatusOK, listed)
}

func (h *handler) sponsors(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	sponsors, err := h.app.Restaurants.Sponsors(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if sponsors == nil {
		sponsors = []restaurant.Restaurant{}
	}
	writeJSON(w, http.StatusOK, sponsors)
}

func (h *handler) userResource(w http.ResponseWriter, r *http.Request) {
	idRaw := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/users"), "/")
	if idRaw == "" || strings.Contains(idRaw, "/") {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	id, err := strconv.ParseInt(idRaw, 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid user id %q", idRaw))
		return
	}

	switch r.Method {
	case http.MethodGet:
		u, err := h.app.Users.Get(r.Context(), id)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				// A missing profile is not an error to the feed UI.
				writeJSON(w, http.StatusOK, nil)
				return
			}
			writeError(w, statusForError(err), err)
			return
		}
		writeJSON(w, http.StatusOK, u)

	case http.MethodPost, http.MethodPut:
		var payload struct {
			Username   string `json:"username"`
			Bio        string `json:"bio"`
			ProfilePic string `json:"profile_pic"`
		}
		if err := decodeJSON(r.Body, &payload); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		_, err := h.app.Users.Update(r.Context(), user.User{
			ID:         id,
			Username:   payload.Username,
			Bio:        payload.Bio,
			ProfilePic: payload.ProfilePic,
		})
		if err != nil {
			writeError(w, statusForError(err), err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]bool{"success": true})

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *handler) follow(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var payload struct {
		FollowerID int64 `json:"follower_id"`
		FollowedID int64 `json:"followed_id"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := h.app.Users.Follow(r.Context(), payload.FollowerID, payload.FollowedID); err != nil {
		writeError(w, statusForError(err), err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *handler) posts(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		var viewer *int64
		if raw := r.URL.Query().Get("userId"); raw != "" {
			parsed, err := strconv.ParseInt(raw, 10, 64)
			if err != nil {
				writeError(w, http.StatusBadRequest, fmt.Errorf("invalid userId %q", raw))
				return
			}
			viewer = &parsed
		}
		listed, err := h.app.Posts.List(r.Context(), viewer)
		if err != nil {
			writeError(w, statusForError(err), err)
			return
		}
		if listed == nil {
			listed = []post.Post{}
		}
		writeJSON(w, http.StatusOK, listed)

	case http.MethodPost:
		var payload struct {
			RestaurantID int64  `json:"restaurant_id"`
			UserID       int64  `json:"user_id"`
			UserName     string `json:"user_name"`
			MealName     string `json:"meal_name"`
			ImageURL     string `json:"image_url"`
			Review       string `json:"review"`
			Rating       int    `json:"rating"`
		}
		if err := decodeJSON(r.Body, &payload); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		created, err := h.app.Posts.Create(r.Context(), post.Post{
			RestaurantID: payload.RestaurantID,
			UserID:       payload.UserID,
			UserName:     payload.UserName,
			MealName:     payload.MealName,
			ImageURL:     payload.ImageURL,
			Review:       payload.Review,
			Rating:       payload.Rating,
		})
		if err != nil {
			writeError(w, statusForError(err), err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]int64{"id": created.ID})

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *handler) createCheckoutSession(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	url, err := h.app.Checkout.CreateSession(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"url": url})
}

func (h *handler) highlights(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	city := strings.TrimSpace(r.URL.Query().Get("city"))
	if city == "" {
		writeError(w, http.StatusBadRequest, fmt.Errorf("city is required"))
		return
	}
	writeJSON(w, http.StatusOK, h.app.Highlights.CityHighlights(r.Context(), city))
}

func (h *handler) search(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		writeError(w, http.StatusBadRequest, fmt.Errorf("q is required"))
		return
	}
	var lat, lng *float64
	if raw := r.URL.Query().Get("lat"); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Errorf("invalid lat %q", raw))
			return
		}
		lat = &parsed
	}
	if raw := r.URL.Query().Get("lng"); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Errorf("invalid lng %q", raw))
			return
		}
		lng = &parsed
	}
	writeJSON(w, http.StatusOK, h.app.Highlights.SearchRestaurants(r.Context(), query, lat, lng))
}

func (h *handler) healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// spaFileServer serves staticDir, falling back to index.html for client-side
// routes.
func spaFileServer(dir string) http.Handler {
	fs := http.FileServer(http.Dir(dir))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" && !strings.Contains(r.URL.Path, ".") {
			r.URL.Path = "/"
		}
		fs.ServeHTTP(w, r)
	})
}

func decodeJSON(body io.ReadCloser, dst interface{}) error {
	defer body.Close()
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// statusForError maps a service error to its HTTP status. Anything that does
// not carry a status, store and driver failures included, is a server error.
func statusForError(err error) int {
	var svcErr *apperrors.ServiceError
	if errors.As(err, &svcErr) {
		return svcErr.HTTPStatus
	}
	return http.StatusInternalServerError
}

func writeError(w http.ResponseWriter, status int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}
