// Package catalog implements the product catalog collaborator on Postgres.
package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"

	contractx "github.com/tiendita-labs/tiendita/agent/contract"
)

const defaultListLimit = 20

type Config struct {
	DSN string `envconfig:"DSN" split_words:"true" required:"true"`
}

type productRow struct {
	bun.BaseModel `bun:"table:products,alias:p"`

	ID        string  `bun:"id,pk"`
	Name      string  `bun:"name,notnull"`
	Price     float64 `bun:"price,notnull"`
	Available int     `bun:"available_quantity,notnull"`
}

// Store reads the products table. It is read-mostly; stock reservation is
// the order pipeline's concern, not the catalog's.
type Store struct {
	db *bun.DB
}

var _ contractx.Catalog = (*Store)(nil)

func New(cfg Config) (*Store, error) {
	dsn := strings.TrimSpace(cfg.DSN)
	if dsn == "" {
		return nil, errors.New("catalog dsn is required")
	}

	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	db := bun.NewDB(sqldb, pgdialect.New())

	return &Store{db: db}, nil
}

// NewWithDB wraps an existing bun handle (used by tests).
func NewWithDB(db *bun.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) LookupProduct(ctx context.Context, id string) (*contractx.Product, error) {
	row := new(productRow)
	err := s.db.NewSelect().
		Model(row).
		Where("p.id = ?", id).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, contractx.ErrProductNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("lookup product id=%s: %w", id, err)
	}
	return row.toProduct(), nil
}

// FindProduct resolves a free-text product name to the best catalog match.
// Every token of the query must appear in the product name, so "pizza
// muzzarella" matches "Pizza Muzzarella" even with articles stripped out.
func (s *Store) FindProduct(ctx context.Context, name string) (*contractx.Product, error) {
	tokens := strings.Fields(strings.TrimSpace(name))
	if len(tokens) == 0 {
		return nil, contractx.ErrProductNotFound
	}

	row := new(productRow)
	q := s.db.NewSelect().
		Model(row).
		OrderExpr("length(p.name) ASC").
		Limit(1)
	for _, tok := range tokens {
		q = q.Where("p.name ILIKE ?", "%"+tok+"%")
	}
	err := q.Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, contractx.ErrProductNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find product name=%q: %w", name, err)
	}
	return row.toProduct(), nil
}

func (s *Store) ListProducts(ctx context.Context, filter contractx.ProductFilter) ([]contractx.Product, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}

	q := s.db.NewSelect().
		Model((*productRow)(nil)).
		Order("name ASC").
		Limit(limit)
	if needle := strings.TrimSpace(filter.NameContains); needle != "" {
		q = q.Where("p.name ILIKE ?", "%"+needle+"%")
	}

	var rows []productRow
	if err := q.Scan(ctx, &rows); err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}

	products := make([]contractx.Product, 0, len(rows))
	for _, row := range rows {
		products = append(products, *row.toProduct())
	}
	return products, nil
}

func (r *productRow) toProduct() *contractx.Product {
	return &contractx.Product{
		ID:                r.ID,
		Name:              r.Name,
		Price:             r.Price,
		AvailableQuantity: r.Available,
	}
}
