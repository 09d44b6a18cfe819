package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"liveshop/internal/domain"
)

const (
	stripeAPIURL   = "https://api.stripe.com/v1/checkout/sessions"
	requestTimeout = 10 * time.Second
)

// StripeCheckout creates Stripe Checkout Sessions through the REST API.
type StripeCheckout struct {
	secretKey  string
	successURL string
	cancelURL  string
	httpClient *http.Client
	apiURL     string
}

func NewStripeCheckout(secretKey, successURL, cancelURL string) *StripeCheckout {
	return &StripeCheckout{
		secretKey:  secretKey,
		successURL: successURL,
		cancelURL:  cancelURL,
		httpClient: &http.Client{Timeout: requestTimeout},
		apiURL:     stripeAPIURL,
	}
}

type stripeSession struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

type stripeError struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// CreateSession opens a card payment session for the product. The success
// redirect carries the session id back so the completion handler can match
// it against the pending-session store.
func (s *StripeCheckout) CreateSession(ctx context.Context, product *domain.Product, user string) (*domain.CheckoutSession, error) {
	form := url.Values{}
	form.Set("mode", "payment")
	form.Set("payment_method_types[0]", "card")
	form.Set("line_items[0][price_data][currency]", "usd")
	form.Set("line_items[0][price_data][product_data][name]", product.Name)
	// Round: float cents like 19.99*100 land just under the integer.
	form.Set("line_items[0][price_data][unit_amount]", strconv.FormatInt(int64(math.Round(product.Price*100)), 10))
	form.Set("line_items[0][quantity]", "1")
	form.Set("success_url", s.successURL+"?session_id={CHECKOUT_SESSION_ID}&user="+url.QueryEscape(user))
	form.Set("cancel_url", s.cancelURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.apiURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+s.secretKey)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr stripeError
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Error.Message != "" {
			return nil, fmt.Errorf("stripe: %s", apiErr.Error.Message)
		}
		return nil, fmt.Errorf("stripe: unexpected status %d", resp.StatusCode)
	}

	var session stripeSession
	if err := json.Unmarshal(body, &session); err != nil {
		return nil, err
	}

	return &domain.CheckoutSession{
		ID:        session.ID,
		ProductID: product.ID,
		User:      user,
		URL:       session.URL,
	}, nil
}
