package payment

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"liveshop/internal/domain"
)

func newTestCheckout(t *testing.T, handler http.HandlerFunc) *StripeCheckout {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	s := NewStripeCheckout("sk_test_key", "http://localhost:5173/payment-success", "http://localhost:5173/payment-cancel")
	s.apiURL = srv.URL
	return s
}

func TestCreateSessionConvertsPriceToWholeCents(t *testing.T) {
	var form url.Values
	s := newTestCheckout(t, func(w http.ResponseWriter, r *http.Request) {
		r.ParseForm()
		form = r.PostForm
		w.Write([]byte(`{"id":"cs_123","url":"https://checkout.example/cs_123"}`))
	})

	product := &domain.Product{ID: "prod-1", Name: "Card", Price: 19.99}
	session, err := s.CreateSession(context.Background(), product, "bob")
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}

	if got := form.Get("line_items[0][price_data][unit_amount]"); got != "1999" {
		t.Errorf("unit_amount = %q, want 1999", got)
	}
	if got := form.Get("line_items[0][price_data][product_data][name]"); got != "Card" {
		t.Errorf("product name = %q, want Card", got)
	}
	if session.ID != "cs_123" || session.ProductID != "prod-1" || session.User != "bob" {
		t.Errorf("session = %+v", session)
	}
}

func TestCreateSessionSurfacesAPIError(t *testing.T) {
	s := newTestCheckout(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusPaymentRequired)
		w.Write([]byte(`{"error":{"message":"Your card was declined."}}`))
	})

	_, err := s.CreateSession(context.Background(), &domain.Product{ID: "prod-1", Name: "Card", Price: 10}, "bob")
	if err == nil || err.Error() != "stripe: Your card was declined." {
		t.Errorf("err = %v, want the API message", err)
	}
}
