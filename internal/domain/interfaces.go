package domain

import (
	"context"
	"time"
)

// Repository interfaces
type ProductRepository interface {
	LoadAll(ctx context.Context) ([]*Product, error)
	Insert(ctx context.Context, product *Product) error
	Update(ctx context.Context, product *Product) error
	Delete(ctx context.Context, productID string) error
}

type ChatRepository interface {
	Append(ctx context.Context, msg *ChatMessage) error
	LoadRecent(ctx context.Context, limit int) ([]*ChatMessage, error)
}

// CheckoutStore keeps pending payment sessions until the success redirect
// comes back. Entries expire on their own if the buyer never completes.
type CheckoutStore interface {
	SavePending(ctx context.Context, session *CheckoutSession, ttl time.Duration) error
	TakePending(ctx context.Context, sessionID string) (*CheckoutSession, error)
}

// CheckoutProvider creates an external payment session and returns the
// redirect URL the client should follow.
type CheckoutProvider interface {
	CreateSession(ctx context.Context, product *Product, user string) (*CheckoutSession, error)
}

// Mailer delivers order confirmation mail. Failures are the caller's to log.
type Mailer interface {
	SendShippingConfirmation(ctx context.Context, info *ShippingInfo) error
}
