package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	apperrors "github.com/utafrali/CoffeeOrderGo/pkg/errors"

	"github.com/utafrali/CoffeeOrderGo/internal/domain"
)

// PgxPool is the subset of pgxpool.Pool the repository uses. pgxmock
// satisfies it too, which keeps the tests off a live database.
type PgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// CartRepository implements repository.CartRepository using PostgreSQL.
// Lines are stored as a JSONB document; the cart is always written whole,
// so per-line columns would buy nothing.
type CartRepository struct {
	pool PgxPool
}

// NewCartRepository creates a new PostgreSQL-backed cart repository.
func NewCartRepository(pool PgxPool) *CartRepository {
	return &CartRepository{pool: pool}
}

// Get retrieves a user's persisted cart.
func (r *CartRepository) Get(ctx context.Context, userID string) (*domain.Cart, error) {
	query := `
		SELECT user_id, coffee_shop_id, lines
		FROM carts
		WHERE user_id = $1`

	var (
		cart      domain.Cart
		linesJSON []byte
	)
	err := r.pool.QueryRow(ctx, query, userID).Scan(&cart.UserID, &cart.CoffeeShopID, &linesJSON)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("cart", userID)
		}
		return nil, fmt.Errorf("select cart: %w", err)
	}

	if len(linesJSON) > 0 {
		if err := json.Unmarshal(linesJSON, &cart.Lines); err != nil {
			return nil, fmt.Errorf("unmarshal cart lines: %w", err)
		}
	}

	return &cart, nil
}

// Save upserts a user's cart.
func (r *CartRepository) Save(ctx context.Context, cart *domain.Cart) error {
	linesJSON, err := json.Marshal(cart.Lines)
	if err != nil {
		return fmt.Errorf("marshal cart lines: %w", err)
	}

	query := `
		INSERT INTO carts (user_id, coffee_shop_id, lines, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id) DO UPDATE SET
			coffee_shop_id = EXCLUDED.coffee_shop_id,
			lines = EXCLUDED.lines,
			updated_at = EXCLUDED.updated_at`

	_, err = r.pool.Exec(ctx, query,
		cart.UserID,
		cart.CoffeeShopID,
		linesJSON,
		time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("upsert cart: %w", err)
	}

	return nil
}

// Delete removes a user's cart. Deleting a cart that does not exist is
// not an error.
func (r *CartRepository) Delete(ctx context.Context, userID string) error {
	query := `DELETE FROM carts WHERE user_id = $1`

	if _, err := r.pool.Exec(ctx, query, userID); err != nil {
		return fmt.Errorf("delete cart: %w", err)
	}

	return nil
}
