package checkout

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

const (
	sponsorshipAmountCents = 5000
	sponsorshipCurrency    = "usd"
	sponsorshipName        = "Restaurant Sponsorship"
	sponsorshipDescription = "Highlight your restaurant on BlackPeopleEats"
)

// StripeProvider creates Stripe Checkout sessions over the REST API.
type StripeProvider struct {
	secretKey string
	apiURL    string
	appURL    string
	client    *http.Client
}

var _ Provider = (*StripeProvider)(nil)

// NewStripeProvider configures a provider against the given API base URL.
func NewStripeProvider(secretKey, apiURL, appURL string) *StripeProvider {
	return &StripeProvider{
		secretKey: secretKey,
		apiURL:    strings.TrimRight(apiURL, "/"),
		appURL:    strings.TrimRight(appURL, "/"),
		client:    &http.Client{Timeout: 15 * time.Second},
	}
}

// CreateSession creates a one-off sponsorship payment session and returns the
// hosted checkout URL.
func (p *StripeProvider) CreateSession(ctx context.Context) (string, error) {
	form := url.Values{}
	form.Set("mode", "payment")
	form.Set("payment_method_types[0]", "card")
	form.Set("line_items[0][price_data][currency]", sponsorshipCurrency)
	form.Set("line_items[0][price_data][unit_amount]", strconv.Itoa(sponsorshipAmountCents))
	form.Set("line_items[0][price_data][product_data][name]", sponsorshipName)
	form.Set("line_items[0][price_data][product_data][description]", sponsorshipDescription)
	form.Set("line_items[0][quantity]", "1")
	form.Set("success_url", p.appURL+"/?success=true")
	form.Set("cancel_url", p.appURL+"/?canceled=true")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.apiURL+"/v1/checkout/sessions", strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+p.secretKey)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("stripe request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("read stripe response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		if msg := gjson.GetBytes(body, "error.message"); msg.Exists() {
			return "", fmt.Errorf("stripe: %s", msg.String())
		}
		return "", fmt.Errorf("stripe: unexpected status %d", resp.StatusCode)
	}

	sessionURL := gjson.GetBytes(body, "url").String()
	if sessionURL == "" {
		return "", fmt.Errorf("stripe: session response missing url")
	}
	return sessionURL, nil
}
