package services

import (
	"context"
	"time"

	"liveshop/internal/domain"
	"liveshop/pkg/logger"
	"liveshop/pkg/utils"
)

// Catalog owns the authoritative in-memory product list. The repository is
// the source of truth at startup only; afterwards the in-memory copy leads
// and storage follows fire-and-forget.
type Catalog struct {
	repo     domain.ProductRepository
	products []*domain.Product
	log      logger.Logger
}

func NewCatalog(repo domain.ProductRepository, log logger.Logger) *Catalog {
	return &Catalog{
		repo: repo,
		log:  log,
	}
}

// LoadInitial reads all products from storage. An empty store is seeded with
// two defaults; the guard is a count check, so it runs once per fresh store.
func (c *Catalog) LoadInitial(ctx context.Context) error {
	products, err := c.repo.LoadAll(ctx)
	if err != nil {
		return err
	}

	if len(products) == 0 {
		products = []*domain.Product{
			{ID: utils.GenerateID("prod"), Name: "Rare Pikachu Card", Price: 100, Status: domain.StatusAvailable},
			{ID: utils.GenerateID("prod"), Name: "Charizard Figure", Price: 250, Status: domain.StatusAvailable},
		}
		for _, p := range products {
			if err := c.repo.Insert(ctx, p); err != nil {
				return err
			}
		}
		c.log.Info("Seeded empty product store", "count", len(products))
	}

	c.products = products
	return nil
}

// Add creates a product from the given spec. A positive auction duration
// arms the countdown immediately.
func (c *Catalog) Add(spec *domain.ProductSpec, now time.Time) *domain.Product {
	product := &domain.Product{
		ID:       utils.GenerateID("prod"),
		Name:     spec.Name,
		Price:    spec.Price,
		Status:   domain.StatusAvailable,
		ImageURL: spec.ImageURL,
	}

	if spec.Auction && spec.Duration > 0 {
		end := now.Add(time.Duration(spec.Duration) * time.Second)
		product.Auction = true
		product.AuctionEnd = &end
	}

	c.products = append(c.products, product)
	// The insert goroutine must read a copy; the live struct keeps mutating
	// on the hub goroutine.
	inserted := *product
	c.persist(func(ctx context.Context) error { return c.repo.Insert(ctx, &inserted) }, product.ID)
	return product
}

// Remove deletes by identifier. Removing an unknown id is a no-op and the
// caller must not broadcast.
func (c *Catalog) Remove(productID string) bool {
	for i, p := range c.products {
		if p.ID == productID {
			c.products = append(c.products[:i], c.products[i+1:]...)
			c.persist(func(ctx context.Context) error { return c.repo.Delete(ctx, productID) }, productID)
			return true
		}
	}
	return false
}

// Update applies a partial patch. Unknown ids fail silently.
func (c *Catalog) Update(productID string, patch *domain.ProductPatch) (*domain.Product, bool) {
	product := c.Get(productID)
	if product == nil {
		return nil, false
	}

	if patch.Price != nil {
		product.Price = *patch.Price
	}
	if patch.Status != nil {
		product.Status = *patch.Status
	}

	c.Persist(product)
	return product, true
}

func (c *Catalog) Get(productID string) *domain.Product {
	for _, p := range c.products {
		if p.ID == productID {
			return p
		}
	}
	return nil
}

// Products returns the live list. Callers on the hub goroutine may read it
// directly; anything crossing a goroutine boundary must copy first.
func (c *Catalog) Products() []*domain.Product {
	return c.products
}

// Snapshot returns a shallow copy safe to hand to encoding on another goroutine.
func (c *Catalog) Snapshot() []domain.Product {
	out := make([]domain.Product, len(c.products))
	for i, p := range c.products {
		out[i] = *p
	}
	return out
}

// Persist writes the product's current state to storage in the background.
func (c *Catalog) Persist(product *domain.Product) {
	snapshot := *product
	c.persist(func(ctx context.Context) error { return c.repo.Update(ctx, &snapshot) }, product.ID)
}

func (c *Catalog) persist(op func(context.Context) error, productID string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
		defer cancel()
		if err := op(ctx); err != nil {
			c.log.Error("Failed to persist product", "product_id", productID, "error", err)
		}
	}()
}
