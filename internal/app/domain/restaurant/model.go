// Package restaurant defines the restaurant domain model.
package restaurant

// Restaurant is a directory entry. Rows are immutable after seeding; the
// sponsored flag is flipped out of band after a sponsorship purchase.
type Restaurant struct {
	ID           int64    `json:"id"`
	Name         string   `json:"name"`
	City         string   `json:"city"`
	Address      string   `json:"address"`
	Lat          *float64 `json:"lat"`
	Lng          *float64 `json:"lng"`
	Category     string   `json:"category"`
	IsBlackOwned bool     `json:"is_black_owned"`
	IsSponsored  bool     `json:"is_sponsored"`
}

// Rated is a restaurant joined with the average rating of its posts.
// AvgRating is nil when the restaurant has no posts.
type Rated struct {
	Restaurant
	AvgRating *float64 `json:"avg_rating"`
}
