package domain

import (
	"time"
)

type ProductStatus string

const (
	StatusAvailable    ProductStatus = "Available"
	StatusSold         ProductStatus = "Sold"
	StatusAuctionEnded ProductStatus = "Auction Ended"
)

// Product is the authoritative in-memory entity, mirrored to storage.
// AuctionEnd is the single source of truth for a running countdown: a
// product is under auction iff Auction is true and AuctionEnd is set.
type Product struct {
	ID         string        `json:"id"`
	Name       string        `json:"name"`
	Price      float64       `json:"price"`
	Status     ProductStatus `json:"status"`
	Auction    bool          `json:"auction"`
	AuctionEnd *time.Time    `json:"auctionEnd,omitempty"`
	ImageURL   string        `json:"imageUrl,omitempty"`
}

// ProductSpec carries the caller-supplied fields of an add-product request.
type ProductSpec struct {
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	ImageURL string  `json:"imageUrl,omitempty"`
	Auction  bool    `json:"auction,omitempty"`
	Duration int     `json:"duration,omitempty"` // seconds
}

// ProductPatch is a partial update; nil fields are left untouched.
type ProductPatch struct {
	Price  *float64
	Status *ProductStatus
}

// ChatMessage is immutable once created. Time is a client-formatted
// display string, stored verbatim.
type ChatMessage struct {
	User string `json:"user"`
	Text string `json:"text"`
	Time string `json:"time"`
}

// CheckoutSession links a started payment back to the product it is for.
type CheckoutSession struct {
	ID        string `json:"id"`
	ProductID string `json:"product_id"`
	User      string `json:"user"`
	URL       string `json:"url"`
}

// ShippingInfo is the payload of a shipping confirmation request.
type ShippingInfo struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	City    string `json:"city"`
	Zip     string `json:"zip"`
	Email   string `json:"email"`
}
