package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/summerbooks/backend/internal/domain"
	"github.com/summerbooks/backend/internal/event"
	"github.com/summerbooks/backend/internal/repository"
	apperrors "github.com/summerbooks/backend/pkg/errors"
)

// ErrInsufficientStock builds the rejection for a product whose stock cannot
// cover the requested quantity, naming the product in the message.
func ErrInsufficientStock(title string) *apperrors.AppError {
	return apperrors.FieldError("INSUFFICIENT_STOCK", apperrors.FieldCart,
		fmt.Sprintf("Sản phẩm \"%s\" không còn đủ hàng trong kho", title))
}

// CheckoutItemInput is one submitted cart line. Price is the snapshot the
// cart carried, not a live catalog read.
type CheckoutItemInput struct {
	ProductID string `json:"product_id"`
	Title     string `json:"title"`
	Author    string `json:"author"`
	ImageURL  string `json:"image_url"`
	Price     int64  `json:"price"`
	Quantity  int    `json:"quantity"`
}

// CheckoutInput holds the parameters for a checkout.
type CheckoutInput struct {
	UserID       string
	Items        []CheckoutItemInput
	Recipient    domain.Recipient
	AssignmentID string
}

// CheckoutService turns a submitted cart plus recipient info and an optional
// voucher reference into a committed order with all side effects applied
// consistently. It is the only component that decides final success or
// failure; the validator and resolver hand it structured rejections that map
// one to one onto the field-tagged response contract.
type CheckoutService struct {
	products repository.ProductRepository
	orders   repository.OrderRepository
	carts    repository.CartRepository
	vouchers *VoucherService
	producer *event.Producer
	logger   *slog.Logger
}

// NewCheckoutService creates a new checkout service.
func NewCheckoutService(
	products repository.ProductRepository,
	orders repository.OrderRepository,
	carts repository.CartRepository,
	vouchers *VoucherService,
	producer *event.Producer,
	logger *slog.Logger,
) *CheckoutService {
	return &CheckoutService{
		products: products,
		orders:   orders,
		carts:    carts,
		vouchers: vouchers,
		producer: producer,
		logger:   logger,
	}
}

// Checkout runs the full pipeline: validate, resolve products, price, apply
// the voucher, commit, clear the cart and emit events. No partial order is
// ever visible on failure.
func (s *CheckoutService) Checkout(ctx context.Context, input CheckoutInput) (*domain.Order, error) {
	if input.UserID == "" {
		return nil, apperrors.Unauthorized("authentication required")
	}

	input.Recipient = NormalizeRecipient(input.Recipient)

	lines := make([]domain.CartLine, len(input.Items))
	for i, item := range input.Items {
		lines[i] = domain.CartLine{
			ProductID: item.ProductID,
			Title:     item.Title,
			Author:    item.Author,
			ImageURL:  item.ImageURL,
			UnitPrice: item.Price,
			Quantity:  item.Quantity,
		}
	}

	if err := ValidateCheckout(lines, input.Recipient); err != nil {
		return nil, err
	}

	// Resolve every referenced product in one batch. Lines whose product
	// has been deleted since being added to the cart are dropped, never a
	// hard failure; the cart may simply have gone stale.
	ids := make([]string, 0, len(lines))
	seen := make(map[string]struct{}, len(lines))
	for _, line := range lines {
		if _, ok := seen[line.ProductID]; !ok {
			seen[line.ProductID] = struct{}{}
			ids = append(ids, line.ProductID)
		}
	}

	products, err := s.products.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("resolve cart products: %w", err)
	}

	byID := make(map[string]*domain.Product, len(products))
	for i := range products {
		byID[products[i].ID] = &products[i]
	}

	now := time.Now().UTC()
	orderID := uuid.New().String()

	var (
		items    []domain.OrderItem
		subtotal int64
	)
	for _, line := range lines {
		product, ok := byID[line.ProductID]
		if !ok {
			s.logger.InfoContext(ctx, "dropping stale cart line",
				slog.String("product_id", line.ProductID),
				slog.String("user_id", input.UserID),
			)
			continue
		}

		// Snapshot price is authoritative for the order; a drifted live
		// price is only worth a warning.
		if product.Price != line.UnitPrice {
			s.logger.WarnContext(ctx, "cart snapshot price differs from catalog price",
				slog.String("product_id", line.ProductID),
				slog.Int64("snapshot_price", line.UnitPrice),
				slog.Int64("catalog_price", product.Price),
			)
		}

		title := line.Title
		if title == "" {
			title = product.Title
		}

		item := domain.OrderItem{
			ID:        uuid.New().String(),
			OrderID:   orderID,
			ProductID: line.ProductID,
			Title:     title,
			Author:    line.Author,
			ImageURL:  line.ImageURL,
			UnitPrice: line.UnitPrice,
			Quantity:  line.Quantity,
		}
		items = append(items, item)
		subtotal += item.LineTotal()
	}

	// Every line was stale: there is nothing left to order.
	if len(items) == 0 {
		return nil, ErrEmptyCart
	}

	var (
		discount     int64
		voucherID    string
		assignmentID string
	)
	if input.AssignmentID != "" {
		quote, err := s.vouchers.Resolve(ctx, input.AssignmentID, input.UserID, subtotal, now)
		if err != nil {
			return nil, err
		}
		discount = quote.DiscountAmount
		voucherID = quote.VoucherID
		assignmentID = quote.AssignmentID
	}

	total := subtotal - discount
	if total < 0 {
		total = 0
	}

	order := &domain.Order{
		ID:             orderID,
		UserID:         input.UserID,
		Items:          items,
		Recipient:      input.Recipient,
		OriginalPrice:  subtotal,
		DiscountAmount: discount,
		TotalPrice:     total,
		VoucherID:      voucherID,
		Status:         domain.OrderStatusPending,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.orders.CommitCheckout(ctx, order, assignmentID); err != nil {
		return nil, s.mapCommitError(err)
	}

	// The order is durable from here on. Cart deletion and event publishing
	// are retry-safe side effects; their failure must not unwind the order.
	if err := s.carts.Delete(ctx, input.UserID); err != nil {
		s.logger.ErrorContext(ctx, "failed to clear cart after checkout",
			slog.String("user_id", input.UserID),
			slog.String("order_id", order.ID),
			slog.String("error", err.Error()),
		)
	}

	s.publishCheckoutEvents(ctx, order, assignmentID)

	s.logger.InfoContext(ctx, "checkout completed",
		slog.String("order_id", order.ID),
		slog.String("user_id", input.UserID),
		slog.Int64("total_price", order.TotalPrice),
		slog.Int64("discount_amount", order.DiscountAmount),
	)

	return order, nil
}

// mapCommitError translates transaction guard failures into the field-tagged
// contract. A guard firing means a concurrent request won the race between
// resolution and commit.
func (s *CheckoutService) mapCommitError(err error) error {
	switch {
	case errors.Is(err, repository.ErrVoucherAlreadyUsed):
		return ErrVoucherAlreadyUsed
	case errors.Is(err, repository.ErrVoucherExhausted):
		return ErrVoucherExhausted
	}

	var stockErr *repository.InsufficientStockError
	if errors.As(err, &stockErr) {
		return ErrInsufficientStock(stockErr.Title)
	}

	return fmt.Errorf("commit checkout: %w", err)
}

func (s *CheckoutService) publishCheckoutEvents(ctx context.Context, order *domain.Order, assignmentID string) {
	if err := s.producer.PublishOrderCreated(ctx, order); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish order.created event",
			slog.String("order_id", order.ID),
			slog.String("error", err.Error()),
		)
	}

	if order.VoucherID != "" {
		err := s.producer.PublishVoucherRedeemed(ctx, event.VoucherRedeemedData{
			VoucherID:      order.VoucherID,
			AssignmentID:   assignmentID,
			UserID:         order.UserID,
			OrderID:        order.ID,
			DiscountAmount: order.DiscountAmount,
		})
		if err != nil {
			s.logger.ErrorContext(ctx, "failed to publish voucher.redeemed event",
				slog.String("voucher_id", order.VoucherID),
				slog.String("error", err.Error()),
			)
		}
	}

	if err := s.producer.PublishCartCleared(ctx, order.UserID, order.ID); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish cart.cleared event",
			slog.String("user_id", order.UserID),
			slog.String("error", err.Error()),
		)
	}
}
