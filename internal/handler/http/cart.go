package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/utafrali/CoffeeOrderGo/pkg/httputil"
	"github.com/utafrali/CoffeeOrderGo/pkg/validator"

	"github.com/utafrali/CoffeeOrderGo/internal/domain"
	"github.com/utafrali/CoffeeOrderGo/internal/service"
)

// CartHandler handles HTTP requests for cart endpoints.
type CartHandler struct {
	service *service.CartService
	logger  *slog.Logger
}

// NewCartHandler creates a new cart HTTP handler.
func NewCartHandler(svc *service.CartService, logger *slog.Logger) *CartHandler {
	return &CartHandler{
		service: svc,
		logger:  logger,
	}
}

// --- Request DTOs ---

// SelectionRequest is the JSON shape of a customization selection.
type SelectionRequest struct {
	SizeID      string                      `json:"size_id"`
	Ingredients map[string]int64            `json:"ingredients"`
	Options     map[string]map[string]int64 `json:"options"`
}

func (s SelectionRequest) toDomain() domain.CustomizationSelection {
	return domain.CustomizationSelection{
		SizeID:      s.SizeID,
		Ingredients: s.Ingredients,
		Options:     s.Options,
	}
}

// AddItemRequest is the JSON request body for adding an item to the cart.
type AddItemRequest struct {
	CoffeeShopID string           `json:"coffee_shop_id" validate:"required"`
	MenuItemID   string           `json:"menu_item_id" validate:"required"`
	Quantity     int64            `json:"quantity" validate:"gte=0,lte=50"`
	Selection    SelectionRequest `json:"selection"`
}

// UpdateQuantityRequest is the JSON request body for updating a line's quantity.
type UpdateQuantityRequest struct {
	Quantity int64 `json:"quantity" validate:"lte=50"`
}

// PriceQuoteRequest is the JSON request body for a live price quote.
type PriceQuoteRequest struct {
	CoffeeShopID string           `json:"coffee_shop_id" validate:"required"`
	MenuItemID   string           `json:"menu_item_id" validate:"required"`
	Selection    SelectionRequest `json:"selection"`
}

// --- Response DTOs ---

// MoneyResponse renders an amount as decimal text at the wire boundary,
// e.g. {"amount":"75.00","currency":"TRY"}.
type MoneyResponse struct {
	Amount   string `json:"amount"`
	Currency string `json:"currency"`
}

func moneyResponse(m domain.Money) MoneyResponse {
	return MoneyResponse{Amount: m.DecimalString(), Currency: m.Currency}
}

// CartLineResponse is one cart line in a cart response.
type CartLineResponse struct {
	ID        string                        `json:"id"`
	MenuItem  string                        `json:"menu_item_id"`
	ItemName  string                        `json:"item_name"`
	SizeName  string                        `json:"size_name,omitempty"`
	Details   []string                      `json:"details,omitempty"`
	Quantity  int64                         `json:"quantity"`
	UnitPrice MoneyResponse                 `json:"unit_price"`
	LineTotal MoneyResponse                 `json:"line_total"`
	Selection domain.CustomizationSelection `json:"selection"`
}

// CartResponse is the JSON shape of a cart.
type CartResponse struct {
	CoffeeShopID string             `json:"coffee_shop_id,omitempty"`
	Lines        []CartLineResponse `json:"lines"`
	ItemCount    int64              `json:"item_count"`
	Total        MoneyResponse      `json:"total"`
}

func cartResponse(cart *domain.Cart) CartResponse {
	resp := CartResponse{
		CoffeeShopID: cart.CoffeeShopID,
		Lines:        make([]CartLineResponse, 0, len(cart.Lines)),
		ItemCount:    cart.ItemCount(),
		Total:        moneyResponse(cart.Total()),
	}
	for i := range cart.Lines {
		line := &cart.Lines[i]
		resp.Lines = append(resp.Lines, CartLineResponse{
			ID:        line.ID,
			MenuItem:  line.MenuItemID,
			ItemName:  line.Snapshot.ItemName,
			SizeName:  line.Snapshot.SizeName,
			Details:   line.Snapshot.Details,
			Quantity:  line.Quantity,
			UnitPrice: moneyResponse(line.UnitPrice),
			LineTotal: moneyResponse(line.LineTotal()),
			Selection: line.Selection,
		})
	}
	return resp
}

// PriceQuoteResponse is the JSON shape of a price quote.
type PriceQuoteResponse struct {
	BasePrice        MoneyResponse `json:"base_price"`
	SizeSurcharge    MoneyResponse `json:"size_surcharge"`
	IngredientsTotal MoneyResponse `json:"ingredients_total"`
	OptionsTotal     MoneyResponse `json:"options_total"`
	UnitPrice        MoneyResponse `json:"unit_price"`
}

func priceQuoteResponse(q *domain.PriceQuote) PriceQuoteResponse {
	return PriceQuoteResponse{
		BasePrice:        moneyResponse(q.BasePrice),
		SizeSurcharge:    moneyResponse(q.SizeSurcharge),
		IngredientsTotal: moneyResponse(q.IngredientsTotal),
		OptionsTotal:     moneyResponse(q.OptionsTotal),
		UnitPrice:        moneyResponse(q.UnitPrice),
	}
}

// --- Handlers ---

// GetCart handles GET /api/v1/cart
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	userID, _ := userIDFromContext(r.Context())

	cart, err := h.service.GetCart(r.Context(), userID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: cartResponse(cart)})
}

// AddItem handles POST /api/v1/cart/items
//
// With ?replace=true an add that would mix coffee shops clears the cart
// first instead of failing with 409.
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	userID, _ := userIDFromContext(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req AddItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}

	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	input := service.AddItemInput{
		CoffeeShopID: req.CoffeeShopID,
		MenuItemID:   req.MenuItemID,
		Quantity:     req.Quantity,
		Selection:    req.Selection.toDomain(),
		Replace:      r.URL.Query().Get("replace") == "true",
	}

	cart, err := h.service.AddItem(r.Context(), userID, input)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: cartResponse(cart)})
}

// UpdateLineQuantity handles PUT /api/v1/cart/items/{lineID}
func (h *CartHandler) UpdateLineQuantity(w http.ResponseWriter, r *http.Request) {
	userID, _ := userIDFromContext(r.Context())

	lineID := chi.URLParam(r, "lineID")
	if lineID == "" {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "lineID is required"},
		})
		return
	}

	var req UpdateQuantityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}

	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	cart, err := h.service.UpdateQuantity(r.Context(), userID, lineID, req.Quantity)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: cartResponse(cart)})
}

// RemoveLine handles DELETE /api/v1/cart/items/{lineID}
func (h *CartHandler) RemoveLine(w http.ResponseWriter, r *http.Request) {
	userID, _ := userIDFromContext(r.Context())

	lineID := chi.URLParam(r, "lineID")
	if lineID == "" {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "lineID is required"},
		})
		return
	}

	cart, err := h.service.RemoveLine(r.Context(), userID, lineID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: cartResponse(cart)})
}

// RemoveLineAt handles DELETE /api/v1/cart/items/at/{index}
func (h *CartHandler) RemoveLineAt(w http.ResponseWriter, r *http.Request) {
	userID, _ := userIDFromContext(r.Context())

	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "index must be an integer"},
		})
		return
	}

	cart, err := h.service.RemoveLineAt(r.Context(), userID, index)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: cartResponse(cart)})
}

// ClearCart handles DELETE /api/v1/cart
func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	userID, _ := userIDFromContext(r.Context())

	if err := h.service.Clear(r.Context(), userID); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: map[string]string{"status": "cleared"}})
}

// Checkout handles POST /api/v1/cart/checkout
func (h *CartHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	userID, _ := userIDFromContext(r.Context())

	payload, err := h.service.Checkout(r.Context(), userID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: payload})
}

// PriceQuote handles POST /api/v1/price-quote
func (h *CartHandler) PriceQuote(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req PriceQuoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}

	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	quote, err := h.service.PriceQuote(r.Context(), service.QuoteInput{
		CoffeeShopID: req.CoffeeShopID,
		MenuItemID:   req.MenuItemID,
		Selection:    req.Selection.toDomain(),
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: priceQuoteResponse(quote)})
}
