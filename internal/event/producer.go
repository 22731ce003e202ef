package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/summerbooks/backend/internal/domain"
	pkgkafka "github.com/summerbooks/backend/pkg/kafka"
	"github.com/summerbooks/backend/pkg/logger"
)

// Kafka topics for storefront domain events.
var (
	TopicOrderCreated       = pkgkafka.Topic("order", "created")
	TopicOrderStatusChanged = pkgkafka.Topic("order", "status_changed")
	TopicVoucherRedeemed    = pkgkafka.Topic("voucher", "redeemed")
	TopicCartCleared        = pkgkafka.Topic("cart", "cleared")
)

// Aggregate type constants.
const (
	AggregateTypeOrder   = "order"
	AggregateTypeVoucher = "voucher"
	AggregateTypeCart    = "cart"
)

// Source identifier for events originating from this backend.
const SourceBackend = "summerbooks-backend"

// OrderCreatedData is the payload for an order.created event (full order snapshot).
type OrderCreatedData struct {
	ID             string           `json:"id"`
	UserID         string           `json:"user_id"`
	Status         string           `json:"status"`
	Items          []OrderItemData  `json:"items"`
	Recipient      domain.Recipient `json:"recipient"`
	OriginalPrice  int64            `json:"original_price"`
	DiscountAmount int64            `json:"discount_amount"`
	TotalPrice     int64            `json:"total_price"`
	VoucherID      string           `json:"voucher_id,omitempty"`
}

// OrderItemData is the event payload for an order item.
type OrderItemData struct {
	ID        string `json:"id"`
	ProductID string `json:"product_id"`
	Title     string `json:"title"`
	Author    string `json:"author"`
	UnitPrice int64  `json:"unit_price"`
	Quantity  int    `json:"quantity"`
}

// OrderStatusChangedData is the payload for an order.status_changed event.
type OrderStatusChangedData struct {
	OrderID   string `json:"order_id"`
	OldStatus string `json:"old_status"`
	NewStatus string `json:"new_status"`
}

// VoucherRedeemedData is the payload for a voucher.redeemed event.
type VoucherRedeemedData struct {
	VoucherID      string `json:"voucher_id"`
	AssignmentID   string `json:"assignment_id"`
	UserID         string `json:"user_id"`
	OrderID        string `json:"order_id"`
	DiscountAmount int64  `json:"discount_amount"`
}

// CartClearedData is the payload for a cart.cleared event.
type CartClearedData struct {
	OwnerID string `json:"owner_id"`
	OrderID string `json:"order_id,omitempty"`
}

// Producer publishes storefront domain events to Kafka.
type Producer struct {
	kafka  *pkgkafka.Producer
	logger *slog.Logger
}

// NewProducer creates a new event producer.
func NewProducer(kafka *pkgkafka.Producer, logger *slog.Logger) *Producer {
	return &Producer{
		kafka:  kafka,
		logger: logger,
	}
}

// publish stamps the event with the request correlation ID, when one is
// present on the context, and hands it to the Kafka producer.
func (p *Producer) publish(ctx context.Context, topic string, event *pkgkafka.Event) error {
	if cid := logger.CorrelationIDFromContext(ctx); cid != "" {
		event.WithCorrelationID(cid)
	}
	return p.kafka.Publish(ctx, topic, event)
}

// PublishOrderCreated publishes an order.created event with the full order snapshot.
func (p *Producer) PublishOrderCreated(ctx context.Context, order *domain.Order) error {
	items := make([]OrderItemData, len(order.Items))
	for i, item := range order.Items {
		items[i] = OrderItemData{
			ID:        item.ID,
			ProductID: item.ProductID,
			Title:     item.Title,
			Author:    item.Author,
			UnitPrice: item.UnitPrice,
			Quantity:  item.Quantity,
		}
	}

	data := OrderCreatedData{
		ID:             order.ID,
		UserID:         order.UserID,
		Status:         order.Status,
		Items:          items,
		Recipient:      order.Recipient,
		OriginalPrice:  order.OriginalPrice,
		DiscountAmount: order.DiscountAmount,
		TotalPrice:     order.TotalPrice,
		VoucherID:      order.VoucherID,
	}

	event, err := pkgkafka.NewEvent(TopicOrderCreated, order.ID, AggregateTypeOrder, SourceBackend, data)
	if err != nil {
		return fmt.Errorf("create order.created event: %w", err)
	}

	if err := p.publish(ctx, TopicOrderCreated, event); err != nil {
		return fmt.Errorf("publish order.created event: %w", err)
	}

	p.logger.DebugContext(ctx, "published order.created event",
		slog.String("order_id", order.ID),
		slog.String("user_id", order.UserID),
	)

	return nil
}

// PublishOrderStatusChanged publishes an order.status_changed event.
func (p *Producer) PublishOrderStatusChanged(ctx context.Context, orderID, oldStatus, newStatus string) error {
	data := OrderStatusChangedData{
		OrderID:   orderID,
		OldStatus: oldStatus,
		NewStatus: newStatus,
	}

	event, err := pkgkafka.NewEvent(TopicOrderStatusChanged, orderID, AggregateTypeOrder, SourceBackend, data)
	if err != nil {
		return fmt.Errorf("create order.status_changed event: %w", err)
	}

	if err := p.publish(ctx, TopicOrderStatusChanged, event); err != nil {
		return fmt.Errorf("publish order.status_changed event: %w", err)
	}

	return nil
}

// PublishVoucherRedeemed publishes a voucher.redeemed event.
func (p *Producer) PublishVoucherRedeemed(ctx context.Context, data VoucherRedeemedData) error {
	event, err := pkgkafka.NewEvent(TopicVoucherRedeemed, data.VoucherID, AggregateTypeVoucher, SourceBackend, data)
	if err != nil {
		return fmt.Errorf("create voucher.redeemed event: %w", err)
	}

	if err := p.publish(ctx, TopicVoucherRedeemed, event); err != nil {
		return fmt.Errorf("publish voucher.redeemed event: %w", err)
	}

	return nil
}

// PublishCartCleared publishes a cart.cleared event.
func (p *Producer) PublishCartCleared(ctx context.Context, ownerID, orderID string) error {
	data := CartClearedData{OwnerID: ownerID, OrderID: orderID}

	event, err := pkgkafka.NewEvent(TopicCartCleared, ownerID, AggregateTypeCart, SourceBackend, data)
	if err != nil {
		return fmt.Errorf("create cart.cleared event: %w", err)
	}

	if err := p.publish(ctx, TopicCartCleared, event); err != nil {
		return fmt.Errorf("publish cart.cleared event: %w", err)
	}

	return nil
}
