package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
	"github.com/shopspring/decimal"
)

// PostgresStore keeps the catalog and orders in PostgreSQL.
//
// Schema:
//
//	CREATE TABLE products (
//	    id          TEXT PRIMARY KEY,
//	    name        TEXT NOT NULL,
//	    price       NUMERIC NOT NULL CHECK (price > 0),
//	    image       TEXT NOT NULL DEFAULT '',
//	    category    TEXT NOT NULL DEFAULT '',
//	    description TEXT,
//	    stock       INTEGER NOT NULL DEFAULT 0 CHECK (stock >= 0)
//	);
//
//	CREATE TABLE orders (
//	    id               TEXT PRIMARY KEY,
//	    items            JSONB NOT NULL,
//	    subtotal         NUMERIC NOT NULL,
//	    discount         JSONB,
//	    total            NUMERIC NOT NULL,
//	    status           TEXT NOT NULL,
//	    source           TEXT NOT NULL,
//	    customer_message TEXT NOT NULL DEFAULT '',
//	    created_at       TIMESTAMPTZ NOT NULL DEFAULT now()
//	);
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// ConnectPostgres establishes a connection to PostgreSQL.
func ConnectPostgres(connStr string) (*sql.DB, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	return db, nil
}

func (s *PostgresStore) ListProducts(ctx context.Context) ([]Product, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, price, image, category, description, stock
		 FROM products
		 ORDER BY name ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var products []Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, *p)
	}
	return products, rows.Err()
}

func (s *PostgresStore) GetProduct(ctx context.Context, id string) (*Product, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, price, image, category, description, stock
		 FROM products
		 WHERE id = $1`,
		id,
	)
	p, err := scanProduct(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProductNotFound
	}
	return p, err
}

func (s *PostgresStore) PutProduct(ctx context.Context, p Product) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO products (id, name, price, image, category, description, stock)
		 VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), $7)
		 ON CONFLICT (id) DO UPDATE SET
		   name = EXCLUDED.name,
		   price = EXCLUDED.price,
		   image = EXCLUDED.image,
		   category = EXCLUDED.category,
		   description = EXCLUDED.description,
		   stock = EXCLUDED.stock`,
		p.ID, p.Name, p.Price.String(), p.Image, p.Category, p.Description, p.Stock,
	)
	if err != nil {
		return fmt.Errorf("put product %s: %w", p.ID, err)
	}
	return nil
}

func (s *PostgresStore) AddStock(ctx context.Context, productID string, quantity int) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE products SET stock = stock + $1 WHERE id = $2`,
		quantity, productID,
	)
	if err != nil {
		return fmt.Errorf("add stock for %s: %w", productID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrProductNotFound
	}
	return nil
}

// DecrementStock runs all decrements inside a single transaction. A guarded
// UPDATE that matches no row means the product is missing or under-stocked;
// the transaction is rolled back and nothing is applied.
func (s *PostgresStore) DecrementStock(ctx context.Context, decs []StockDecrement) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin stock transaction: %w", err)
	}
	defer tx.Rollback()

	for _, dec := range decs {
		res, err := tx.ExecContext(ctx,
			`UPDATE products SET stock = stock - $1 WHERE id = $2 AND stock >= $1`,
			dec.Quantity, dec.ProductID,
		)
		if err != nil {
			return fmt.Errorf("decrement stock for %s: %w", dec.ProductID, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return fmt.Errorf("%w: %s", ErrInsufficientStock, dec.ProductID)
		}
	}

	return tx.Commit()
}

func (s *PostgresStore) AddOrder(ctx context.Context, o Order) (*Order, error) {
	items, err := json.Marshal(o.Items)
	if err != nil {
		return nil, err
	}

	var discount any
	if o.Discount != nil {
		discount, err = json.Marshal(o.Discount)
		if err != nil {
			return nil, err
		}
	}

	o.ID = uuid.New().String()
	err = s.db.QueryRowContext(ctx,
		`INSERT INTO orders (id, items, subtotal, discount, total, status, source, customer_message)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING created_at`,
		o.ID, items, o.Subtotal.String(), discount, o.Total.String(),
		o.Status, o.Source, o.CustomerMessage,
	).Scan(&o.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert order: %w", err)
	}
	return &o, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (*Product, error) {
	var (
		p           Product
		price       string
		description sql.NullString
	)
	if err := row.Scan(&p.ID, &p.Name, &price, &p.Image, &p.Category, &description, &p.Stock); err != nil {
		return nil, err
	}

	var err error
	p.Price, err = decimal.NewFromString(price)
	if err != nil {
		return nil, fmt.Errorf("parse price for %s: %w", p.ID, err)
	}
	p.Description = description.String
	return &p, nil
}
