package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/labstack/echo/v4"

	"liveshop/internal/domain"
	redisstore "liveshop/internal/infrastructure/redis"
	"liveshop/pkg/logger"
)

// Marketplace is the slice of the hub the HTTP surface needs: catalog reads
// and the payment-completion mutation, both routed through the hub's queue.
type Marketplace interface {
	Product(productID string) (domain.Product, bool)
	MarkSold(productID string) bool
}

type HTTPHandlers struct {
	market     Marketplace
	checkout   domain.CheckoutProvider
	sessions   domain.CheckoutStore
	mailer     domain.Mailer
	uploadDir  string
	sessionTTL time.Duration
	log        logger.Logger
}

func NewHTTPHandlers(market Marketplace, checkout domain.CheckoutProvider,
	sessions domain.CheckoutStore, mailer domain.Mailer,
	uploadDir string, sessionTTL time.Duration, log logger.Logger) *HTTPHandlers {
	return &HTTPHandlers{
		market:     market,
		checkout:   checkout,
		sessions:   sessions,
		mailer:     mailer,
		uploadDir:  uploadDir,
		sessionTTL: sessionTTL,
		log:        log,
	}
}

type checkoutRequest struct {
	ProductID string `json:"productId"`
	User      string `json:"user"`
}

// CreateCheckoutSession opens an external payment session for an Available
// product and records it as pending until the success redirect returns.
func (h *HTTPHandlers) CreateCheckoutSession(c echo.Context) error {
	var req checkoutRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}

	product, ok := h.market.Product(req.ProductID)
	if !ok || product.Status != domain.StatusAvailable {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Product not available"})
	}

	session, err := h.checkout.CreateSession(c.Request().Context(), &product, req.User)
	if err != nil {
		h.log.Error("Failed to create checkout session", "product_id", req.ProductID, "error", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to create checkout session"})
	}

	if err := h.sessions.SavePending(c.Request().Context(), session, h.sessionTTL); err != nil {
		h.log.Error("Failed to record pending session", "session_id", session.ID, "error", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to create checkout session"})
	}

	h.log.Info("Checkout session created", "session_id", session.ID, "product_id", req.ProductID)
	return c.JSON(http.StatusOK, map[string]string{"url": session.URL})
}

type paymentCompleteRequest struct {
	SessionID string `json:"sessionId"`
}

// CompletePayment is the success-redirect callback. It consumes the pending
// session and marks the product sold, which broadcasts the catalog.
func (h *HTTPHandlers) CompletePayment(c echo.Context) error {
	var req paymentCompleteRequest
	if err := c.Bind(&req); err != nil || req.SessionID == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}

	session, err := h.sessions.TakePending(c.Request().Context(), req.SessionID)
	if err != nil {
		if errors.Is(err, redisstore.ErrSessionNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "Unknown checkout session"})
		}
		h.log.Error("Failed to look up checkout session", "session_id", req.SessionID, "error", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to complete payment"})
	}

	if !h.market.MarkSold(session.ProductID) {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Product not found"})
	}

	h.log.Info("Payment completed", "session_id", session.ID, "product_id", session.ProductID, "user", session.User)
	return c.JSON(http.StatusOK, map[string]bool{"ok": true})
}

// ShippingInfo fires confirmation mail. Mail failure is a 5xx; nothing else
// depends on it.
func (h *HTTPHandlers) ShippingInfo(c echo.Context) error {
	var info domain.ShippingInfo
	if err := c.Bind(&info); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}
	if info.Email == "" || info.Name == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Name and email are required"})
	}

	if err := h.mailer.SendShippingConfirmation(c.Request().Context(), &info); err != nil {
		h.log.Error("Failed to send shipping confirmation", "email", info.Email, "error", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to send confirmation"})
	}

	return c.JSON(http.StatusOK, map[string]bool{"ok": true})
}

// UploadImage stores a multipart image under the upload dir and returns the
// URL it will be served from.
func (h *HTTPHandlers) UploadImage(c echo.Context) error {
	file, err := c.FormFile("image")
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "No file uploaded"})
	}

	src, err := file.Open()
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Unreadable upload"})
	}
	defer src.Close()

	if err := os.MkdirAll(h.uploadDir, 0o755); err != nil {
		h.log.Error("Failed to create upload dir", "dir", h.uploadDir, "error", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to store upload"})
	}

	name := fmt.Sprintf("%d-%s", time.Now().UnixNano(), filepath.Base(file.Filename))
	dst, err := os.Create(filepath.Join(h.uploadDir, name))
	if err != nil {
		h.log.Error("Failed to create upload file", "name", name, "error", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to store upload"})
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		h.log.Error("Failed to write upload", "name", name, "error", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to store upload"})
	}

	return c.JSON(http.StatusOK, map[string]string{"imageUrl": "/uploads/" + name})
}

// Health reports liveness for monitors.
func (h *HTTPHandlers) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":    "UP",
		"timestamp": time.Now().Format(time.RFC3339),
		"version":   "1.0.0",
	})
}
