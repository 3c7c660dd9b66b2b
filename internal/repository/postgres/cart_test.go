package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/CoffeeOrderGo/pkg/database"
	apperrors "github.com/utafrali/CoffeeOrderGo/pkg/errors"

	"github.com/utafrali/CoffeeOrderGo/internal/domain"
)

func newTestRepo(t *testing.T) (*CartRepository, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := database.NewMockPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return NewCartRepository(mock), mock
}

func sampleCart() *domain.Cart {
	return &domain.Cart{
		UserID:       "user-001",
		CoffeeShopID: "shop-kadikoy",
		Lines: []domain.CartLine{
			{
				ID:           "line-001",
				MenuItemID:   "item-latte",
				CoffeeShopID: "shop-kadikoy",
				Quantity:     2,
				UnitPrice:    domain.NewMoney(7500, "TRY"),
				Selection: domain.CustomizationSelection{
					SizeID:      "size-l",
					Ingredients: map[string]int64{"ing-espresso": 2},
				},
				Snapshot: domain.LineSnapshot{ItemName: "Latte", SizeName: "Large"},
			},
		},
	}
}

func TestCartRepository_Get_Success(t *testing.T) {
	repo, mock := newTestRepo(t)

	cart := sampleCart()
	linesJSON, err := json.Marshal(cart.Lines)
	require.NoError(t, err)

	mock.ExpectQuery(`SELECT user_id, coffee_shop_id, lines FROM carts`).
		WithArgs("user-001").
		WillReturnRows(pgxmock.NewRows([]string{"user_id", "coffee_shop_id", "lines"}).
			AddRow("user-001", "shop-kadikoy", linesJSON))

	got, err := repo.Get(context.Background(), "user-001")
	require.NoError(t, err)
	assert.Equal(t, cart.UserID, got.UserID)
	assert.Equal(t, cart.CoffeeShopID, got.CoffeeShopID)
	require.Len(t, got.Lines, 1)
	assert.Equal(t, cart.Lines[0].Selection, got.Lines[0].Selection)
	assert.True(t, got.Lines[0].UnitPrice.Equal(domain.NewMoney(7500, "TRY")))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCartRepository_Get_NotFound(t *testing.T) {
	repo, mock := newTestRepo(t)

	mock.ExpectQuery(`SELECT user_id, coffee_shop_id, lines FROM carts`).
		WithArgs("user-404").
		WillReturnError(pgx.ErrNoRows)

	_, err := repo.Get(context.Background(), "user-404")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCartRepository_Get_QueryError(t *testing.T) {
	repo, mock := newTestRepo(t)

	mock.ExpectQuery(`SELECT user_id, coffee_shop_id, lines FROM carts`).
		WithArgs("user-001").
		WillReturnError(errors.New("connection refused"))

	_, err := repo.Get(context.Background(), "user-001")
	assert.ErrorContains(t, err, "select cart")
}

func TestCartRepository_Save_Upsert(t *testing.T) {
	repo, mock := newTestRepo(t)

	cart := sampleCart()
	linesJSON, err := json.Marshal(cart.Lines)
	require.NoError(t, err)

	mock.ExpectExec(`INSERT INTO carts`).
		WithArgs(cart.UserID, cart.CoffeeShopID, linesJSON, pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, repo.Save(context.Background(), cart))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCartRepository_Save_RoundTrip(t *testing.T) {
	repo, mock := newTestRepo(t)

	cart := sampleCart()
	linesJSON, err := json.Marshal(cart.Lines)
	require.NoError(t, err)

	mock.ExpectExec(`INSERT INTO carts`).
		WithArgs(cart.UserID, cart.CoffeeShopID, linesJSON, pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectQuery(`SELECT user_id, coffee_shop_id, lines FROM carts`).
		WithArgs(cart.UserID).
		WillReturnRows(pgxmock.NewRows([]string{"user_id", "coffee_shop_id", "lines"}).
			AddRow(cart.UserID, cart.CoffeeShopID, linesJSON))

	ctx := context.Background()
	require.NoError(t, repo.Save(ctx, cart))

	got, err := repo.Get(ctx, cart.UserID)
	require.NoError(t, err)
	assert.Equal(t, cart.Lines, got.Lines)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCartRepository_Delete(t *testing.T) {
	repo, mock := newTestRepo(t)

	mock.ExpectExec(`DELETE FROM carts`).
		WithArgs("user-001").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	require.NoError(t, repo.Delete(context.Background(), "user-001"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCartRepository_Delete_MissingIsNotAnError(t *testing.T) {
	repo, mock := newTestRepo(t)

	mock.ExpectExec(`DELETE FROM carts`).
		WithArgs("user-404").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	assert.NoError(t, repo.Delete(context.Background(), "user-404"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
