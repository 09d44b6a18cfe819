package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"liveshop/internal/domain"
	redisstore "liveshop/internal/infrastructure/redis"
	"liveshop/pkg/logger"
)

type fakeMarketplace struct {
	products map[string]domain.Product
	sold     []string
}

func (f *fakeMarketplace) Product(id string) (domain.Product, bool) {
	p, ok := f.products[id]
	return p, ok
}

func (f *fakeMarketplace) MarkSold(id string) bool {
	if _, ok := f.products[id]; !ok {
		return false
	}
	f.sold = append(f.sold, id)
	return true
}

type fakeCheckout struct {
	session *domain.CheckoutSession
	err     error
}

func (f *fakeCheckout) CreateSession(ctx context.Context, p *domain.Product, user string) (*domain.CheckoutSession, error) {
	return f.session, f.err
}

type fakeSessionStore struct {
	saved   map[string]*domain.CheckoutSession
	takeErr error
}

func (f *fakeSessionStore) SavePending(ctx context.Context, s *domain.CheckoutSession, ttl time.Duration) error {
	if f.saved == nil {
		f.saved = make(map[string]*domain.CheckoutSession)
	}
	f.saved[s.ID] = s
	return nil
}

func (f *fakeSessionStore) TakePending(ctx context.Context, id string) (*domain.CheckoutSession, error) {
	if f.takeErr != nil {
		return nil, f.takeErr
	}
	s, ok := f.saved[id]
	if !ok {
		return nil, redisstore.ErrSessionNotFound
	}
	delete(f.saved, id)
	return s, nil
}

type fakeMailer struct {
	sent []*domain.ShippingInfo
	err  error
}

func (f *fakeMailer) SendShippingConfirmation(ctx context.Context, info *domain.ShippingInfo) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, info)
	return nil
}

func newTestHandlers(t *testing.T, market *fakeMarketplace, checkout *fakeCheckout,
	store *fakeSessionStore, mailer *fakeMailer) *HTTPHandlers {
	t.Helper()
	return NewHTTPHandlers(market, checkout, store, mailer, t.TempDir(), time.Hour, logger.Nop())
}

func doJSON(t *testing.T, handler echo.HandlerFunc, body string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	if err := handler(e.NewContext(req, rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	return rec
}

func TestCreateCheckoutSession(t *testing.T) {
	market := &fakeMarketplace{products: map[string]domain.Product{
		"prod-1": {ID: "prod-1", Name: "Card", Price: 100, Status: domain.StatusAvailable},
		"prod-2": {ID: "prod-2", Name: "Mug", Price: 5, Status: domain.StatusSold},
	}}
	checkout := &fakeCheckout{session: &domain.CheckoutSession{
		ID: "cs_123", ProductID: "prod-1", User: "bob", URL: "https://checkout.example/cs_123",
	}}
	store := &fakeSessionStore{}
	h := newTestHandlers(t, market, checkout, store, &fakeMailer{})

	rec := doJSON(t, h.CreateCheckoutSession, `{"productId":"prod-1","user":"bob"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body)
	}
	var resp map[string]string
	json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp["url"] != checkout.session.URL {
		t.Errorf("url = %q, want %q", resp["url"], checkout.session.URL)
	}
	if _, ok := store.saved["cs_123"]; !ok {
		t.Error("pending session was not recorded")
	}
}

func TestCreateCheckoutSessionRejectsUnavailableProduct(t *testing.T) {
	market := &fakeMarketplace{products: map[string]domain.Product{
		"prod-2": {ID: "prod-2", Status: domain.StatusSold},
	}}
	h := newTestHandlers(t, market, &fakeCheckout{}, &fakeSessionStore{}, &fakeMailer{})

	for _, body := range []string{
		`{"productId":"prod-2","user":"bob"}`,
		`{"productId":"prod-missing","user":"bob"}`,
	} {
		rec := doJSON(t, h.CreateCheckoutSession, body)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("body %s: status = %d, want 400", body, rec.Code)
		}
	}
}

func TestCompletePayment(t *testing.T) {
	market := &fakeMarketplace{products: map[string]domain.Product{
		"prod-1": {ID: "prod-1", Status: domain.StatusAvailable},
	}}
	store := &fakeSessionStore{saved: map[string]*domain.CheckoutSession{
		"cs_123": {ID: "cs_123", ProductID: "prod-1", User: "bob"},
	}}
	h := newTestHandlers(t, market, &fakeCheckout{}, store, &fakeMailer{})

	rec := doJSON(t, h.CompletePayment, `{"sessionId":"cs_123"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body)
	}
	if len(market.sold) != 1 || market.sold[0] != "prod-1" {
		t.Errorf("sold = %v, want [prod-1]", market.sold)
	}

	// The session is consumed; replaying the redirect finds nothing.
	rec = doJSON(t, h.CompletePayment, `{"sessionId":"cs_123"}`)
	if rec.Code != http.StatusNotFound {
		t.Errorf("replay status = %d, want 404", rec.Code)
	}
}

func TestCompletePaymentUnknownSession(t *testing.T) {
	h := newTestHandlers(t, &fakeMarketplace{}, &fakeCheckout{}, &fakeSessionStore{}, &fakeMailer{})

	rec := doJSON(t, h.CompletePayment, `{"sessionId":"cs_nope"}`)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestShippingInfo(t *testing.T) {
	mailer := &fakeMailer{}
	h := newTestHandlers(t, &fakeMarketplace{}, &fakeCheckout{}, &fakeSessionStore{}, mailer)

	rec := doJSON(t, h.ShippingInfo, `{"name":"Bob","email":"bob@example.com","address":"1 Main St","product":"Card"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body)
	}
	if len(mailer.sent) != 1 || mailer.sent[0].Email != "bob@example.com" {
		t.Errorf("sent = %+v", mailer.sent)
	}

	rec = doJSON(t, h.ShippingInfo, `{"name":"","email":"bob@example.com"}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("missing name: status = %d, want 400", rec.Code)
	}
}

func TestUploadImage(t *testing.T) {
	h := newTestHandlers(t, &fakeMarketplace{}, &fakeCheckout{}, &fakeSessionStore{}, &fakeMailer{})

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("image", "card.png")
	if err != nil {
		t.Fatal(err)
	}
	part.Write([]byte("png bytes"))
	w.Close()

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/", &buf)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	rec := httptest.NewRecorder()
	if err := h.UploadImage(e.NewContext(req, rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body)
	}
	var resp map[string]string
	json.Unmarshal(rec.Body.Bytes(), &resp)
	if !strings.HasPrefix(resp["imageUrl"], "/uploads/") || !strings.HasSuffix(resp["imageUrl"], "-card.png") {
		t.Errorf("imageUrl = %q", resp["imageUrl"])
	}
}

func TestUploadImageWithoutFile(t *testing.T) {
	h := newTestHandlers(t, &fakeMarketplace{}, &fakeCheckout{}, &fakeSessionStore{}, &fakeMailer{})

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	rec := httptest.NewRecorder()
	if err := h.UploadImage(e.NewContext(req, rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestHealth(t *testing.T) {
	h := newTestHandlers(t, &fakeMarketplace{}, &fakeCheckout{}, &fakeSessionStore{}, &fakeMailer{})

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	if err := h.Health(e.NewContext(req, rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp map[string]interface{}
	json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp["status"] != "UP" {
		t.Errorf("status field = %v, want UP", resp["status"])
	}
}
