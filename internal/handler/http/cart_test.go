package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/utafrali/CoffeeOrderGo/pkg/errors"
	"github.com/utafrali/CoffeeOrderGo/pkg/health"

	"github.com/utafrali/CoffeeOrderGo/internal/domain"
	"github.com/utafrali/CoffeeOrderGo/internal/service"
)

// --- Stubs ---

type stubCatalog struct {
	entries map[string]*domain.ItemCustomization
}

func (s *stubCatalog) GetItemCustomization(_ context.Context, coffeeShopID, menuItemID string) (*domain.ItemCustomization, error) {
	item, ok := s.entries[coffeeShopID+"/"+menuItemID]
	if !ok {
		return nil, apperrors.NotFound("menu item", menuItemID)
	}
	return item, nil
}

type stubRepo struct {
	mu    sync.Mutex
	carts map[string]*domain.Cart
}

func (s *stubRepo) Get(_ context.Context, userID string) (*domain.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cart, ok := s.carts[userID]
	if !ok {
		return nil, apperrors.NotFound("cart", userID)
	}
	return cart, nil
}

func (s *stubRepo) Save(_ context.Context, cart *domain.Cart) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.carts[cart.UserID] = cart
	return nil
}

func (s *stubRepo) Delete(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.carts, userID)
	return nil
}

type stubProducer struct{}

func (stubProducer) PublishCartUpdated(context.Context, *domain.Cart) error      { return nil }
func (stubProducer) PublishCartCleared(context.Context, string) error            { return nil }
func (stubProducer) PublishCartCheckedOut(context.Context, domain.OrderPayload) error { return nil }

// --- Helpers ---

func try(amount int64) domain.Money {
	return domain.NewMoney(amount, "TRY")
}

func testCatalog() *stubCatalog {
	latte := &domain.ItemCustomization{
		MenuItemID:   "item-latte",
		CoffeeShopID: "shop-kadikoy",
		Name:         "Latte",
		BasePrice:    try(6000),
		Sizes: []domain.SizeOption{
			{ID: "size-s", Name: "Small", IsDefault: true, AdditionalPrice: try(0)},
			{ID: "size-l", Name: "Large", AdditionalPrice: try(1500)},
		},
		OptionGroups: []domain.OptionGroupDefinition{
			{
				ID: "grp-milk", Name: "Milk", Required: true,
				Choices: []domain.ChoiceDefinition{
					{ID: "ch-whole", Name: "Whole Milk"},
					{ID: "ch-oat", Name: "Oat Milk", BasePrice: try(600)},
				},
			},
		},
	}
	espresso := &domain.ItemCustomization{
		MenuItemID:   "item-espresso",
		CoffeeShopID: "shop-besiktas",
		Name:         "Espresso",
		BasePrice:    try(4000),
	}
	return &stubCatalog{entries: map[string]*domain.ItemCustomization{
		"shop-kadikoy/item-latte":     latte,
		"shop-besiktas/item-espresso": espresso,
	}}
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := service.NewCartService(
		testCatalog(),
		&stubRepo{carts: make(map[string]*domain.Cart)},
		stubProducer{},
		logger,
		time.Second,
	)
	return NewRouter(svc, health.NewHandler(), logger)
}

func doJSON(t *testing.T, router http.Handler, method, path, userID string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		req.Header.Set("X-User-ID", userID)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func addLatteRequest() map[string]any {
	return map[string]any{
		"coffee_shop_id": "shop-kadikoy",
		"menu_item_id":   "item-latte",
		"quantity":       1,
		"selection": map[string]any{
			"size_id": "size-l",
			"options": map[string]any{"grp-milk": map[string]any{"ch-whole": 1}},
		},
	}
}

// --- Tests ---

func TestGetCart_RequiresUserID(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/api/v1/cart", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestGetCart_EmptyCart(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/api/v1/cart", "user-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	data := body["data"].(map[string]any)
	assert.Empty(t, data["lines"])
	assert.Equal(t, "0.00", data["total"].(map[string]any)["amount"])
}

func TestAddItem_Success(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/v1/cart/items", "user-1", addLatteRequest())
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	data := decodeBody(t, rec)["data"].(map[string]any)
	lines := data["lines"].([]any)
	require.Len(t, lines, 1)

	line := lines[0].(map[string]any)
	assert.Equal(t, "Latte", line["item_name"])
	assert.Equal(t, "Large", line["size_name"])
	assert.Equal(t, "75.00", line["unit_price"].(map[string]any)["amount"])
	assert.Equal(t, "TRY", line["unit_price"].(map[string]any)["currency"])
	assert.Equal(t, "shop-kadikoy", data["coffee_shop_id"])
}

func TestAddItem_ValidationError(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/v1/cart/items", "user-1", map[string]any{
		"menu_item_id": "item-latte",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	errObj := decodeBody(t, rec)["error"].(map[string]any)
	assert.Equal(t, "VALIDATION_ERROR", errObj["code"])
}

func TestAddItem_MissingRequiredOption(t *testing.T) {
	router := newTestRouter(t)

	req := addLatteRequest()
	req["selection"] = map[string]any{"size_id": "size-l"}

	rec := doJSON(t, router, http.MethodPost, "/api/v1/cart/items", "user-1", req)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	errObj := decodeBody(t, rec)["error"].(map[string]any)
	assert.Equal(t, "REQUIRED_OPTION_MISSING", errObj["code"])
}

func TestAddItem_UnknownItem(t *testing.T) {
	router := newTestRouter(t)

	req := addLatteRequest()
	req["menu_item_id"] = "item-unknown"

	rec := doJSON(t, router, http.MethodPost, "/api/v1/cart/items", "user-1", req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAddItem_ShopConflict(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/v1/cart/items", "user-1", addLatteRequest())
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/api/v1/cart/items", "user-1", map[string]any{
		"coffee_shop_id": "shop-besiktas",
		"menu_item_id":   "item-espresso",
		"quantity":       1,
	})
	require.Equal(t, http.StatusConflict, rec.Code)

	errObj := decodeBody(t, rec)["error"].(map[string]any)
	assert.Equal(t, "COFFEE_SHOP_CONFLICT", errObj["code"])
}

func TestAddItem_ReplaceQueryResolvesConflict(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/v1/cart/items", "user-1", addLatteRequest())
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/api/v1/cart/items?replace=true", "user-1", map[string]any{
		"coffee_shop_id": "shop-besiktas",
		"menu_item_id":   "item-espresso",
		"quantity":       1,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	data := decodeBody(t, rec)["data"].(map[string]any)
	assert.Equal(t, "shop-besiktas", data["coffee_shop_id"])
	assert.Len(t, data["lines"].([]any), 1)
}

func TestUpdateLineQuantity(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/v1/cart/items", "user-1", addLatteRequest())
	require.Equal(t, http.StatusOK, rec.Code)
	lineID := decodeBody(t, rec)["data"].(map[string]any)["lines"].([]any)[0].(map[string]any)["id"].(string)

	rec = doJSON(t, router, http.MethodPut, "/api/v1/cart/items/"+lineID, "user-1", map[string]any{"quantity": 3})
	require.Equal(t, http.StatusOK, rec.Code)

	data := decodeBody(t, rec)["data"].(map[string]any)
	assert.Equal(t, float64(3), data["item_count"])
	assert.Equal(t, "225.00", data["total"].(map[string]any)["amount"])
}

func TestUpdateLineQuantity_UnknownLine(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPut, "/api/v1/cart/items/no-such-line", "user-1", map[string]any{"quantity": 3})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRemoveLine(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/v1/cart/items", "user-1", addLatteRequest())
	require.Equal(t, http.StatusOK, rec.Code)
	lineID := decodeBody(t, rec)["data"].(map[string]any)["lines"].([]any)[0].(map[string]any)["id"].(string)

	rec = doJSON(t, router, http.MethodDelete, "/api/v1/cart/items/"+lineID, "user-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	data := decodeBody(t, rec)["data"].(map[string]any)
	assert.Empty(t, data["lines"])
}

func TestRemoveLineAt(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/v1/cart/items", "user-1", addLatteRequest())
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodDelete, "/api/v1/cart/items/at/0", "user-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodDelete, "/api/v1/cart/items/at/0", "user-1", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestClearCart(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/v1/cart/items", "user-1", addLatteRequest())
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodDelete, "/api/v1/cart", "user-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/api/v1/cart", "user-1", nil)
	data := decodeBody(t, rec)["data"].(map[string]any)
	assert.Empty(t, data["lines"])
}

func TestCheckout(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/v1/cart/items", "user-1", addLatteRequest())
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/api/v1/cart/checkout", "user-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	data := decodeBody(t, rec)["data"].(map[string]any)
	assert.Equal(t, "user-1", data["user_id"])
	assert.Equal(t, "shop-kadikoy", data["coffee_shop_id"])
	items := data["items"].([]any)
	require.Len(t, items, 1)

	item := items[0].(map[string]any)
	custom := item["customization"].(map[string]any)
	assert.Equal(t, "size-l", custom["size_id"])

	// The cart is empty after checkout.
	rec = doJSON(t, router, http.MethodGet, "/api/v1/cart", "user-1", nil)
	assert.Empty(t, decodeBody(t, rec)["data"].(map[string]any)["lines"])
}

func TestCheckout_EmptyCart(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/v1/cart/checkout", "user-1", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPriceQuote(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/v1/price-quote", "", map[string]any{
		"coffee_shop_id": "shop-kadikoy",
		"menu_item_id":   "item-latte",
		"selection": map[string]any{
			"size_id": "size-l",
			"options": map[string]any{"grp-milk": map[string]any{"ch-oat": 1}},
		},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	data := decodeBody(t, rec)["data"].(map[string]any)
	assert.Equal(t, "60.00", data["base_price"].(map[string]any)["amount"])
	assert.Equal(t, "15.00", data["size_surcharge"].(map[string]any)["amount"])
	assert.Equal(t, "6.00", data["options_total"].(map[string]any)["amount"])
	assert.Equal(t, "81.00", data["unit_price"].(map[string]any)["amount"])
}

func TestContentTypeEnforced(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/cart/items", bytes.NewBufferString("<xml/>"))
	req.Header.Set("Content-Type", "text/xml")
	req.Header.Set("X-User-ID", "user-1")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
}

func TestHealthEndpoints(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/health/live", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/health/ready", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}
