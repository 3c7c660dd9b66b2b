package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	apperrors "github.com/utafrali/CoffeeOrderGo/pkg/errors"

	"github.com/utafrali/CoffeeOrderGo/internal/catalog"
	"github.com/utafrali/CoffeeOrderGo/internal/domain"
	"github.com/utafrali/CoffeeOrderGo/internal/repository"
)

// Cart operation upper-bound limits to prevent abuse.
const (
	// MaxQuantityPerLine is the maximum quantity allowed for a single cart line.
	MaxQuantityPerLine = 50
	// MaxLinesPerCart is the maximum number of distinct lines allowed in a cart.
	MaxLinesPerCart = 30
)

// EventPublisher publishes cart domain events. *event.Producer satisfies it.
type EventPublisher interface {
	PublishCartUpdated(ctx context.Context, cart *domain.Cart) error
	PublishCartCleared(ctx context.Context, userID string) error
	PublishCartCheckedOut(ctx context.Context, order domain.OrderPayload) error
}

// AddItemInput holds the parameters for adding an item to the cart.
type AddItemInput struct {
	CoffeeShopID string                        `json:"coffee_shop_id" validate:"required"`
	MenuItemID   string                        `json:"menu_item_id" validate:"required"`
	Quantity     int64                         `json:"quantity" validate:"gte=0,lte=50"`
	Selection    domain.CustomizationSelection `json:"selection"`
	// Replace clears the existing cart before adding, which is how a client
	// resolves a coffee shop conflict in the customer's favor.
	Replace bool `json:"-"`
}

// QuoteInput holds the parameters for a live price quote. It never touches
// cart state.
type QuoteInput struct {
	CoffeeShopID string                        `json:"coffee_shop_id" validate:"required"`
	MenuItemID   string                        `json:"menu_item_id" validate:"required"`
	Selection    domain.CustomizationSelection `json:"selection"`
}

// cartEntry is one user's in-memory cart plus the mutex that serializes all
// writes to it. Per-user single writer; different users never contend.
type cartEntry struct {
	mu     sync.Mutex
	loaded bool
	cart   *domain.Cart
}

// CartService implements the business logic for cart operations. The
// in-memory cart is the source of truth while the process lives; the
// repository is a best-effort backup written asynchronously after each
// mutation, so a storage outage never blocks a customer.
type CartService struct {
	catalog      catalog.Provider
	repo         repository.CartRepository
	producer     EventPublisher
	logger       *slog.Logger
	flushTimeout time.Duration

	mu    sync.Mutex
	carts map[string]*cartEntry
}

// NewCartService creates a new cart service.
func NewCartService(
	catalogProvider catalog.Provider,
	repo repository.CartRepository,
	producer EventPublisher,
	logger *slog.Logger,
	flushTimeout time.Duration,
) *CartService {
	if flushTimeout <= 0 {
		flushTimeout = 5 * time.Second
	}
	return &CartService{
		catalog:      catalogProvider,
		repo:         repo,
		producer:     producer,
		logger:       logger,
		flushTimeout: flushTimeout,
		carts:        make(map[string]*cartEntry),
	}
}

// entry returns the user's cart entry, creating it if needed. The returned
// entry is locked; the caller must unlock it.
func (s *CartService) entry(ctx context.Context, userID string) *cartEntry {
	s.mu.Lock()
	e, ok := s.carts[userID]
	if !ok {
		e = &cartEntry{}
		s.carts[userID] = e
	}
	s.mu.Unlock()

	e.mu.Lock()
	if !e.loaded {
		e.cart = s.loadCart(ctx, userID)
		e.loaded = true
	}
	return e
}

// loadCart restores a cart from storage on first touch. Storage trouble
// degrades to an empty cart; the customer can keep ordering.
func (s *CartService) loadCart(ctx context.Context, userID string) *domain.Cart {
	cart, err := s.repo.Get(ctx, userID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.logger.WarnContext(ctx, "cart restore failed, starting empty",
				slog.String("user_id", userID),
				slog.String("error", err.Error()),
			)
		}
		return domain.NewCart(userID)
	}
	return cart
}

// flushAsync persists a cart snapshot in the background. The write gets its
// own timeout so it outlives the request; a failure is logged and the
// in-memory cart stays authoritative.
func (s *CartService) flushAsync(ctx context.Context, snapshot *domain.Cart) {
	detached := context.WithoutCancel(ctx)
	go func() {
		flushCtx, cancel := context.WithTimeout(detached, s.flushTimeout)
		defer cancel()

		if err := s.repo.Save(flushCtx, snapshot); err != nil {
			s.logger.ErrorContext(flushCtx, "cart flush failed",
				slog.String("user_id", snapshot.UserID),
				slog.String("error", err.Error()),
			)
		}
	}()
}

// deleteAsync removes a cart from storage in the background.
func (s *CartService) deleteAsync(ctx context.Context, userID string) {
	detached := context.WithoutCancel(ctx)
	go func() {
		flushCtx, cancel := context.WithTimeout(detached, s.flushTimeout)
		defer cancel()

		if err := s.repo.Delete(flushCtx, userID); err != nil {
			s.logger.ErrorContext(flushCtx, "cart delete failed",
				slog.String("user_id", userID),
				slog.String("error", err.Error()),
			)
		}
	}()
}

// notifyUpdated publishes cart.updated; a broker failure is logged, never
// surfaced to the customer.
func (s *CartService) notifyUpdated(ctx context.Context, snapshot *domain.Cart) {
	if err := s.producer.PublishCartUpdated(ctx, snapshot); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish cart.updated event",
			slog.String("user_id", snapshot.UserID),
			slog.String("error", err.Error()),
		)
	}
}

// GetCart retrieves the user's cart. A user with no cart gets an empty one.
func (s *CartService) GetCart(ctx context.Context, userID string) (*domain.Cart, error) {
	if userID == "" {
		return nil, apperrors.InvalidInput("user id is required")
	}

	e := s.entry(ctx, userID)
	defer e.mu.Unlock()

	return e.cart.Clone(), nil
}

// AddItem validates and prices a customized item, then places it in the
// user's cart. A line equal to an existing one merges into it. Adding from
// a second coffee shop fails with a conflict unless input.Replace is set,
// which clears the cart first.
func (s *CartService) AddItem(ctx context.Context, userID string, input AddItemInput) (*domain.Cart, error) {
	if userID == "" {
		return nil, apperrors.InvalidInput("user id is required")
	}
	if input.CoffeeShopID == "" {
		return nil, apperrors.InvalidInput("coffee shop id is required")
	}
	if input.MenuItemID == "" {
		return nil, apperrors.InvalidInput("menu item id is required")
	}
	if input.Quantity > MaxQuantityPerLine {
		return nil, apperrors.InvalidInput(fmt.Sprintf("quantity must not exceed %d", MaxQuantityPerLine))
	}

	// Catalog fetch and pricing happen outside the cart lock; only the
	// mutation itself is serialized.
	item, err := s.catalog.GetItemCustomization(ctx, input.CoffeeShopID, input.MenuItemID)
	if err != nil {
		return nil, fmt.Errorf("fetch item customization: %w", err)
	}

	validated, err := domain.ValidateSelection(item, input.Selection)
	if err != nil {
		return nil, err
	}

	line := domain.NewCartLine(item, validated, input.Quantity)

	e := s.entry(ctx, userID)
	defer e.mu.Unlock()

	if input.Replace && !e.cart.IsEmpty() && e.cart.CoffeeShopID != line.CoffeeShopID {
		e.cart.Clear()
	}

	if len(e.cart.Lines) >= MaxLinesPerCart {
		merges := false
		for i := range e.cart.Lines {
			if e.cart.Lines[i].MergeableWith(&line) {
				merges = true
				break
			}
		}
		if !merges {
			return nil, apperrors.InvalidInput(fmt.Sprintf("cart must not exceed %d distinct lines", MaxLinesPerCart))
		}
	}

	lineID, err := e.cart.Add(line)
	if err != nil {
		return nil, err
	}

	snapshot := e.cart.Clone()

	s.logger.InfoContext(ctx, "item added to cart",
		slog.String("user_id", userID),
		slog.String("line_id", lineID),
		slog.String("menu_item_id", input.MenuItemID),
		slog.Int64("unit_price", line.UnitPrice.Amount),
	)

	s.flushAsync(ctx, snapshot)
	s.notifyUpdated(ctx, snapshot)

	return snapshot, nil
}

// UpdateQuantity sets a line's quantity. Values below 1 clamp to 1.
func (s *CartService) UpdateQuantity(ctx context.Context, userID, lineID string, quantity int64) (*domain.Cart, error) {
	if userID == "" {
		return nil, apperrors.InvalidInput("user id is required")
	}
	if quantity > MaxQuantityPerLine {
		return nil, apperrors.InvalidInput(fmt.Sprintf("quantity must not exceed %d", MaxQuantityPerLine))
	}

	e := s.entry(ctx, userID)
	defer e.mu.Unlock()

	if err := e.cart.UpdateQuantity(lineID, quantity); err != nil {
		return nil, err
	}

	snapshot := e.cart.Clone()
	s.flushAsync(ctx, snapshot)
	s.notifyUpdated(ctx, snapshot)

	return snapshot, nil
}

// RemoveLine deletes a line from the cart by id.
func (s *CartService) RemoveLine(ctx context.Context, userID, lineID string) (*domain.Cart, error) {
	if userID == "" {
		return nil, apperrors.InvalidInput("user id is required")
	}

	e := s.entry(ctx, userID)
	defer e.mu.Unlock()

	if err := e.cart.Remove(lineID); err != nil {
		return nil, err
	}

	snapshot := e.cart.Clone()
	s.flushAsync(ctx, snapshot)
	s.notifyUpdated(ctx, snapshot)

	return snapshot, nil
}

// RemoveLineAt deletes a line from the cart by position.
func (s *CartService) RemoveLineAt(ctx context.Context, userID string, index int) (*domain.Cart, error) {
	if userID == "" {
		return nil, apperrors.InvalidInput("user id is required")
	}

	e := s.entry(ctx, userID)
	defer e.mu.Unlock()

	if err := e.cart.RemoveAt(index); err != nil {
		return nil, err
	}

	snapshot := e.cart.Clone()
	s.flushAsync(ctx, snapshot)
	s.notifyUpdated(ctx, snapshot)

	return snapshot, nil
}

// Clear empties the user's cart. Clearing an already empty cart is a no-op.
func (s *CartService) Clear(ctx context.Context, userID string) error {
	if userID == "" {
		return apperrors.InvalidInput("user id is required")
	}

	e := s.entry(ctx, userID)
	defer e.mu.Unlock()

	if e.cart.IsEmpty() {
		return nil
	}

	e.cart.Clear()
	s.deleteAsync(ctx, userID)

	if err := s.producer.PublishCartCleared(ctx, userID); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish cart.cleared event",
			slog.String("user_id", userID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "cart cleared", slog.String("user_id", userID))
	return nil
}

// PriceQuote computes the live unit price of a customized item without
// touching any cart.
func (s *CartService) PriceQuote(ctx context.Context, input QuoteInput) (*domain.PriceQuote, error) {
	if input.CoffeeShopID == "" {
		return nil, apperrors.InvalidInput("coffee shop id is required")
	}
	if input.MenuItemID == "" {
		return nil, apperrors.InvalidInput("menu item id is required")
	}

	item, err := s.catalog.GetItemCustomization(ctx, input.CoffeeShopID, input.MenuItemID)
	if err != nil {
		return nil, fmt.Errorf("fetch item customization: %w", err)
	}

	validated, err := domain.ValidateSelection(item, input.Selection)
	if err != nil {
		return nil, err
	}

	quote := domain.Quote(item, validated)
	return &quote, nil
}

// Checkout freezes the cart into its order payload, announces it, and
// empties the cart. The payload carries everything the order service needs;
// nothing is repriced on the way out.
func (s *CartService) Checkout(ctx context.Context, userID string) (*domain.OrderPayload, error) {
	if userID == "" {
		return nil, apperrors.InvalidInput("user id is required")
	}

	e := s.entry(ctx, userID)
	defer e.mu.Unlock()

	if e.cart.IsEmpty() {
		return nil, apperrors.InvalidInput("cart is empty")
	}

	payload := domain.BuildOrderPayload(e.cart)

	if err := s.producer.PublishCartCheckedOut(ctx, payload); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish cart.checked_out event",
			slog.String("user_id", userID),
			slog.String("error", err.Error()),
		)
	}

	e.cart.Clear()
	s.deleteAsync(ctx, userID)

	s.logger.InfoContext(ctx, "cart checked out",
		slog.String("user_id", userID),
		slog.String("coffee_shop_id", payload.CoffeeShopID),
		slog.Int64("total_amount", payload.Total.Amount),
		slog.Int("line_count", len(payload.Items)),
	)

	return &payload, nil
}
