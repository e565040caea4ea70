// Package highlight defines city highlight suggestions. Highlights are not
// persisted; they come from the generative provider or the static fallback.
package highlight

// Highlight is a single city-scoped restaurant suggestion.
type Highlight struct {
	Name     string `json:"name" yaml:"name"`
	Category string `json:"category" yaml:"category"`
	Reason   string `json:"reason" yaml:"reason"`
}

// SearchResult is the best-effort output of a generative restaurant search.
type SearchResult struct {
	Text    string   `json:"text"`
	Sources []Source `json:"sources"`
}

// Source is a grounding reference attached to a search result.
type Source struct {
	Title string `json:"title"`
	URI   string `json:"uri"`
}
