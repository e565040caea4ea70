package highlights

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/blackpeopleeats/platform/internal/app/domain/highlight"
)

// GeminiProvider calls the Gemini generateContent REST API.
type GeminiProvider struct {
	apiKey string
	apiURL string
	model  string
	client *http.Client
}

var _ Provider = (*GeminiProvider)(nil)

// NewGeminiProvider configures a provider for the given model and API base
// URL.
func NewGeminiProvider(apiKey, apiURL, model string, timeout time.Duration) *GeminiProvider {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &GeminiProvider{
		apiKey: apiKey,
		apiURL: strings.TrimRight(apiURL, "/"),
		model:  model,
		client: &http.Client{Timeout: timeout},
	}
}

type geminiRequest struct {
	Contents   []geminiContent `json:"contents"`
	Tools      []geminiTool    `json:"tools,omitempty"`
	ToolConfig *toolConfig     `json:"toolConfig,omitempty"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiTool struct {
	GoogleMaps struct{} `json:"googleMaps"`
}

type toolConfig struct {
	RetrievalConfig retrievalConfig `json:"retrievalConfig"`
}

type retrievalConfig struct {
	LatLng *latLng `json:"latLng,omitempty"`
}

type latLng struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// CityHighlights asks the model for five recommendations and parses its JSON
// answer. Markdown code fences around the payload are tolerated.
func (p *GeminiProvider) CityHighlights(ctx context.Context, city string) ([]highlight.Highlight, error) {
	prompt := fmt.Sprintf("List 5 highly recommended restaurants in %s that are popular within the Black community. "+
		"For each, provide the name, category, and a brief reason why it's a staple. "+
		"Format as a JSON array of objects with keys: name, category, reason. "+
		"Do not include markdown formatting like ```json.", city)

	body, err := p.generate(ctx, geminiRequest{
		Contents: []geminiContent{{Parts: []geminiPart{{Text: prompt}}}},
	})
	if err != nil {
		return nil, err
	}

	text := gjson.GetBytes(body, "candidates.0.content.parts.0.text").String()
	text = strings.ReplaceAll(text, "```json", "")
	text = strings.ReplaceAll(text, "```", "")
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("gemini: empty response text")
	}

	var parsed []highlight.Highlight
	if err := json.Unmarshal([]byte(text), &parsed); err != nil {
		return nil, fmt.Errorf("gemini: parse highlights: %w", err)
	}
	if len(parsed) == 0 {
		return nil, fmt.Errorf("gemini: no highlights returned")
	}
	return parsed, nil
}

// SearchRestaurants runs a grounded search via the googleMaps tool and
// returns the answer text with its grounding sources.
func (p *GeminiProvider) SearchRestaurants(ctx context.Context, query string, lat, lng *float64) (highlight.SearchResult, error) {
	req := geminiRequest{
		Contents: []geminiContent{{Parts: []geminiPart{{
			Text: fmt.Sprintf("Find restaurants matching %q that are popular in the Black community.", query),
		}}}},
		Tools:      []geminiTool{{}},
		ToolConfig: &toolConfig{},
	}
	if lat != nil && lng != nil {
		req.ToolConfig.RetrievalConfig.LatLng = &latLng{Latitude: *lat, Longitude: *lng}
	}

	body, err := p.generate(ctx, req)
	if err != nil {
		return highlight.SearchResult{}, err
	}

	result := highlight.SearchResult{
		Text:    gjson.GetBytes(body, "candidates.0.content.parts.0.text").String(),
		Sources: []highlight.Source{},
	}
	gjson.GetBytes(body, "candidates.0.groundingMetadata.groundingChunks").ForEach(func(_, chunk gjson.Result) bool {
		result.Sources = append(result.Sources, highlight.Source{
			Title: chunk.Get("web.title").String(),
			URI:   chunk.Get("web.uri").String(),
		})
		return true
	})
	return result, nil
}

func (p *GeminiProvider) generate(ctx context.Context, payload geminiRequest) ([]byte, error) {
	encoded, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	endpoint := fmt.Sprintf("%s/v1beta/models/%s:generateContent", p.apiURL, p.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(encoded))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", p.apiKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("gemini request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("read gemini response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		if msg := gjson.GetBytes(body, "error.message"); msg.Exists() {
			return nil, fmt.Errorf("gemini: %s", msg.String())
		}
		return nil, fmt.Errorf("gemini: unexpected status %d", resp.StatusCode)
	}
	return body, nil
}
