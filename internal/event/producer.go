package event

import (
	"context"
	"fmt"
	"log/slog"

	pkgkafka "github.com/utafrali/CoffeeOrderGo/pkg/kafka"
	"github.com/utafrali/CoffeeOrderGo/pkg/logger"

	"github.com/utafrali/CoffeeOrderGo/internal/domain"
)

// Kafka topic constants for cart domain events.
const (
	TopicCartUpdated    = "coffee.cart.updated"
	TopicCartCleared    = "coffee.cart.cleared"
	TopicCartCheckedOut = "coffee.cart.checked_out"
)

// Aggregate type constant.
const AggregateTypeCart = "cart"

// Source identifier for events originating from this service.
const SourceCartService = "coffee-cart-service"

// CartLineData is the line payload within cart events.
type CartLineData struct {
	LineID     string `json:"line_id"`
	MenuItemID string `json:"menu_item_id"`
	ItemName   string `json:"item_name"`
	Quantity   int64  `json:"quantity"`
	UnitPrice  int64  `json:"unit_price"`
}

// CartUpdatedData is the payload for a cart.updated event.
type CartUpdatedData struct {
	UserID       string         `json:"user_id"`
	CoffeeShopID string         `json:"coffee_shop_id,omitempty"`
	Lines        []CartLineData `json:"lines"`
	ItemCount    int64          `json:"item_count"`
	TotalAmount  int64          `json:"total_amount"`
	Currency     string         `json:"currency"`
}

// CartClearedData is the payload for a cart.cleared event.
type CartClearedData struct {
	UserID string `json:"user_id"`
}

// CartCheckedOutData is the payload for a cart.checked_out event. It carries
// the full order payload so downstream consumers never have to reprice.
type CartCheckedOutData struct {
	Order domain.OrderPayload `json:"order"`
}

// Producer publishes cart domain events to Kafka.
type Producer struct {
	kafka  *pkgkafka.Producer
	logger *slog.Logger
}

// NewProducer creates a new event producer for the cart service.
func NewProducer(kafka *pkgkafka.Producer, logger *slog.Logger) *Producer {
	return &Producer{
		kafka:  kafka,
		logger: logger,
	}
}

func (p *Producer) publish(ctx context.Context, topic, aggregateID string, data any) error {
	event, err := pkgkafka.NewEvent(topic, aggregateID, AggregateTypeCart, SourceCartService, data)
	if err != nil {
		return fmt.Errorf("create %s event: %w", topic, err)
	}
	if cid := logger.CorrelationIDFromContext(ctx); cid != "" {
		event.WithCorrelationID(cid)
	}

	if err := p.kafka.Publish(ctx, topic, event); err != nil {
		return fmt.Errorf("publish %s event: %w", topic, err)
	}
	return nil
}

// PublishCartUpdated publishes a cart.updated event.
func (p *Producer) PublishCartUpdated(ctx context.Context, cart *domain.Cart) error {
	lines := make([]CartLineData, len(cart.Lines))
	for i := range cart.Lines {
		line := &cart.Lines[i]
		lines[i] = CartLineData{
			LineID:     line.ID,
			MenuItemID: line.MenuItemID,
			ItemName:   line.Snapshot.ItemName,
			Quantity:   line.Quantity,
			UnitPrice:  line.UnitPrice.Amount,
		}
	}

	total := cart.Total()
	data := CartUpdatedData{
		UserID:       cart.UserID,
		CoffeeShopID: cart.CoffeeShopID,
		Lines:        lines,
		ItemCount:    cart.ItemCount(),
		TotalAmount:  total.Amount,
		Currency:     total.Currency,
	}

	if err := p.publish(ctx, TopicCartUpdated, cart.UserID, data); err != nil {
		return err
	}

	p.logger.DebugContext(ctx, "published cart.updated event",
		slog.String("user_id", cart.UserID),
		slog.Int64("item_count", data.ItemCount),
	)

	return nil
}

// PublishCartCleared publishes a cart.cleared event.
func (p *Producer) PublishCartCleared(ctx context.Context, userID string) error {
	if err := p.publish(ctx, TopicCartCleared, userID, CartClearedData{UserID: userID}); err != nil {
		return err
	}

	p.logger.DebugContext(ctx, "published cart.cleared event",
		slog.String("user_id", userID),
	)

	return nil
}

// PublishCartCheckedOut publishes a cart.checked_out event.
func (p *Producer) PublishCartCheckedOut(ctx context.Context, order domain.OrderPayload) error {
	if err := p.publish(ctx, TopicCartCheckedOut, order.UserID, CartCheckedOutData{Order: order}); err != nil {
		return err
	}

	p.logger.DebugContext(ctx, "published cart.checked_out event",
		slog.String("user_id", order.UserID),
		slog.String("coffee_shop_id", order.CoffeeShopID),
		slog.Int64("total_amount", order.Total.Amount),
	)

	return nil
}
