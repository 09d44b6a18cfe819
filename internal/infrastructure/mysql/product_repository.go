package mysql

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/go-sql-driver/mysql"

	"liveshop/internal/domain"
)

type MySQLProductRepository struct {
	db *sql.DB
}

func NewMySQLProductRepository(db *sql.DB) *MySQLProductRepository {
	return &MySQLProductRepository{db: db}
}

func (r *MySQLProductRepository) LoadAll(ctx context.Context) ([]*domain.Product, error) {
	query := `
        SELECT id, name, price, status, auction, auction_end, image_url
        FROM products ORDER BY created_at ASC
    `

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []*domain.Product
	for rows.Next() {
		var (
			product    domain.Product
			status     string
			auctionEnd sql.NullTime
			imageURL   sql.NullString
		)

		err := rows.Scan(&product.ID, &product.Name, &product.Price,
			&status, &product.Auction, &auctionEnd, &imageURL)
		if err != nil {
			return nil, err
		}

		product.Status = domain.ProductStatus(status)
		if auctionEnd.Valid {
			end := auctionEnd.Time
			product.AuctionEnd = &end
		}
		product.ImageURL = imageURL.String
		products = append(products, &product)
	}

	return products, rows.Err()
}

func (r *MySQLProductRepository) Insert(ctx context.Context, product *domain.Product) error {
	query := `
        INSERT INTO products (id, name, price, status, auction, auction_end, image_url, created_at, updated_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
    `
	now := time.Now()
	_, err := r.db.ExecContext(ctx, query,
		product.ID, product.Name, product.Price, string(product.Status),
		product.Auction, nullTime(product.AuctionEnd), nullString(product.ImageURL), now, now)
	return err
}

func (r *MySQLProductRepository) Update(ctx context.Context, product *domain.Product) error {
	query := `
        UPDATE products
        SET name = ?, price = ?, status = ?, auction = ?, auction_end = ?, image_url = ?, updated_at = ?
        WHERE id = ?
    `
	_, err := r.db.ExecContext(ctx, query,
		product.Name, product.Price, string(product.Status), product.Auction,
		nullTime(product.AuctionEnd), nullString(product.ImageURL), time.Now(), product.ID)
	return err
}

func (r *MySQLProductRepository) Delete(ctx context.Context, productID string) error {
	query := `DELETE FROM products WHERE id = ?`
	_, err := r.db.ExecContext(ctx, query, productID)
	return err
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
