package services

import (
	"math"
	"time"

	"liveshop/internal/domain"
	"liveshop/pkg/logger"
)

// Reasons reported to a bidder on the failure path.
const (
	ReasonProductNotFound     = "Product not found."
	ReasonProductNotAvailable = "Product not available."
)

type BidResult struct {
	OK     bool
	Reason string
}

// AuctionEngine drives countdown auctions over the catalog. The product's
// AuctionEnd timestamp is the only countdown state; remaining seconds are
// derived on each sweep, so there is nothing per-connection to reconcile
// and deleting a product implicitly cancels its countdown.
type AuctionEngine struct {
	catalog *Catalog
	log     logger.Logger
}

func NewAuctionEngine(catalog *Catalog, log logger.Logger) *AuctionEngine {
	return &AuctionEngine{
		catalog: catalog,
		log:     log,
	}
}

// Start arms a countdown on an existing product. Starting while a countdown
// is already running is a no-op, which guards against duplicate timers from
// repeated start requests.
func (e *AuctionEngine) Start(productID string, durationSeconds int, now time.Time) (*domain.Product, bool) {
	if durationSeconds <= 0 {
		return nil, false
	}

	product := e.catalog.Get(productID)
	if product == nil {
		return nil, false
	}
	if e.active(product, now) {
		return nil, false
	}

	end := now.Add(time.Duration(durationSeconds) * time.Second)
	product.Auction = true
	product.AuctionEnd = &end
	e.catalog.Persist(product)

	e.log.Info("Auction started", "product_id", productID, "duration_s", durationSeconds)
	return product, true
}

// Sweep advances every running countdown to the given instant. It returns
// the remaining-seconds map for all auctions that were running this sweep
// (expired ones report 0) and the products whose auctions just ended.
func (e *AuctionEngine) Sweep(now time.Time) (map[string]int, []*domain.Product) {
	timers := make(map[string]int)
	var ended []*domain.Product

	for _, product := range e.catalog.Products() {
		if !product.Auction || product.AuctionEnd == nil {
			continue
		}

		remaining := int(math.Ceil(product.AuctionEnd.Sub(now).Seconds()))
		if remaining > 0 {
			timers[product.ID] = remaining
			continue
		}

		timers[product.ID] = 0
		product.Auction = false
		product.AuctionEnd = nil
		product.Status = domain.StatusAuctionEnded
		e.catalog.Persist(product)
		ended = append(ended, product)
		e.log.Info("Auction ended", "product_id", product.ID)
	}

	return timers, ended
}

// Timers reports remaining seconds for every running countdown without
// advancing any state.
func (e *AuctionEngine) Timers(now time.Time) map[string]int {
	timers := make(map[string]int)
	for _, product := range e.catalog.Products() {
		if !product.Auction || product.AuctionEnd == nil {
			continue
		}
		if remaining := int(math.Ceil(product.AuctionEnd.Sub(now).Seconds())); remaining > 0 {
			timers[product.ID] = remaining
		}
	}
	return timers
}

// PlaceBid accepts a bid on any Available product, auctioned or not, and
// moves its displayed price to the bid amount.
func (e *AuctionEngine) PlaceBid(productID string, amount float64, user string) BidResult {
	product := e.catalog.Get(productID)
	if product == nil {
		return BidResult{Reason: ReasonProductNotFound}
	}
	if product.Status != domain.StatusAvailable {
		return BidResult{Reason: ReasonProductNotAvailable}
	}

	product.Price = amount
	e.catalog.Persist(product)

	e.log.Info("Bid accepted", "product_id", productID, "user", user, "amount", amount)
	return BidResult{OK: true}
}

func (e *AuctionEngine) active(product *domain.Product, now time.Time) bool {
	return product.Auction && product.AuctionEnd != nil && product.AuctionEnd.After(now)
}
