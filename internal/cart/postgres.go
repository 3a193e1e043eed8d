package cart

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/dukerupert/nahl/internal/domain"
)

// querier is the subset of *pgxpool.Pool used by PostgresStore.
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

const (
	qtyQuery = `SELECT quantity FROM cart_items WHERE session_id = $1 AND product_id = $2`

	addQuery = `
WITH prev AS (
    SELECT quantity FROM cart_items WHERE session_id = $1 AND product_id = $2
)
INSERT INTO cart_items (session_id, product_id, quantity)
VALUES ($1, $2, GREATEST(0, $3::integer))
ON CONFLICT (session_id, product_id) DO UPDATE
    SET quantity = GREATEST(0, cart_items.quantity + $3::integer),
        updated_at = now()
RETURNING quantity, COALESCE((SELECT quantity FROM prev), 0)`

	linesQuery = `
SELECT product_id, quantity
FROM cart_items
WHERE session_id = $1 AND quantity > 0
ORDER BY product_id`

	// A cart is idle when none of its lines changed since the cutoff.
	deleteIdleQuery = `
DELETE FROM cart_items c
WHERE NOT EXISTS (
    SELECT 1 FROM cart_items r
    WHERE r.session_id = c.session_id AND r.updated_at >= $1
)`
)

// PostgresStore keeps carts in the cart_items table.
type PostgresStore struct {
	db  querier
	hub *Hub
}

// NewPostgresStore creates a store over db (normally a *pgxpool.Pool).
func NewPostgresStore(db querier, hub *Hub) *PostgresStore {
	return &PostgresStore{db: db, hub: hub}
}

// Qty implements domain.Cart.
func (s *PostgresStore) Qty(ctx context.Context, session, productID string) (int, error) {
	var qty int
	err := s.db.QueryRow(ctx, qtyQuery, session, productID).Scan(&qty)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read cart quantity: %w", err)
	}
	return qty, nil
}

// Add implements domain.Cart. The update is a single upsert so concurrent
// adds from several tabs never lose a delta.
func (s *PostgresStore) Add(ctx context.Context, session, productID string, delta int) (int, error) {
	var next, prev int
	if err := s.db.QueryRow(ctx, addQuery, session, productID, delta).Scan(&next, &prev); err != nil {
		return 0, fmt.Errorf("failed to update cart quantity: %w", err)
	}

	if next != prev {
		s.hub.Publish(domain.QuantityChanged{Session: session, ID: productID, Qty: next})
	}
	return next, nil
}

// Lines implements domain.Cart.
func (s *PostgresStore) Lines(ctx context.Context, session string) ([]domain.CartLine, error) {
	rows, err := s.db.Query(ctx, linesQuery, session)
	if err != nil {
		return nil, fmt.Errorf("failed to list cart lines: %w", err)
	}

	lines, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.CartLine, error) {
		var l domain.CartLine
		err := row.Scan(&l.ProductID, &l.Qty)
		return l, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan cart lines: %w", err)
	}
	return lines, nil
}

// Subscribe implements domain.Cart.
func (s *PostgresStore) Subscribe(session string) (<-chan domain.QuantityChanged, func()) {
	return s.hub.Subscribe(session)
}

// DeleteIdle removes carts whose lines were all last changed before cutoff.
func (s *PostgresStore) DeleteIdle(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := s.db.Exec(ctx, deleteIdleQuery, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete idle carts: %w", err)
	}
	return tag.RowsAffected(), nil
}
