package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/summerbooks/backend/internal/domain"
	"github.com/summerbooks/backend/internal/event"
	"github.com/summerbooks/backend/internal/repository"
	apperrors "github.com/summerbooks/backend/pkg/errors"
)

// OrderService implements post-checkout order lifecycle operations. Order
// creation itself goes through CheckoutService.
type OrderService struct {
	repo     repository.OrderRepository
	producer *event.Producer
	logger   *slog.Logger
}

// NewOrderService creates a new order service.
func NewOrderService(repo repository.OrderRepository, producer *event.Producer, logger *slog.Logger) *OrderService {
	return &OrderService{
		repo:     repo,
		producer: producer,
		logger:   logger,
	}
}

// GetOrder retrieves an order by ID. A non-admin caller may only read their
// own orders.
func (s *OrderService) GetOrder(ctx context.Context, id, requesterID string) (*domain.Order, error) {
	order, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}

	if requesterID != "" && order.UserID != requesterID {
		return nil, apperrors.Forbidden("order belongs to another user")
	}

	return order, nil
}

// ListOrders returns orders matching the filter with the total count.
func (s *OrderService) ListOrders(ctx context.Context, filter repository.OrderFilter) ([]domain.Order, int, error) {
	orders, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("list orders: %w", err)
	}
	return orders, total, nil
}

// UpdateStatus moves an order through its lifecycle. Pending may go to
// shipping or cancelled, shipping to delivered; delivered and cancelled are
// terminal. Cancelling restores the stock the order had claimed.
func (s *OrderService) UpdateStatus(ctx context.Context, id, newStatus string) (*domain.Order, error) {
	if !domain.IsValidStatus(newStatus) {
		return nil, apperrors.InvalidInput(fmt.Sprintf("invalid status %q", newStatus))
	}

	order, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}

	if order.Status == newStatus {
		return order, nil
	}

	if !order.CanTransitionTo(newStatus) {
		return nil, apperrors.Conflict(
			fmt.Sprintf("cannot transition order from %s to %s", order.Status, newStatus))
	}

	if err := s.repo.UpdateStatus(ctx, id, newStatus); err != nil {
		return nil, fmt.Errorf("update order status: %w", err)
	}

	oldStatus := order.Status

	if err := s.producer.PublishOrderStatusChanged(ctx, id, oldStatus, newStatus); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish order.status_changed event",
			slog.String("order_id", id),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "order status updated",
		slog.String("order_id", id),
		slog.String("old_status", oldStatus),
		slog.String("new_status", newStatus),
	)

	updated, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("reload order: %w", err)
	}

	return updated, nil
}

// MarkPaid records payment on an order. Paying twice is a conflict.
func (s *OrderService) MarkPaid(ctx context.Context, id string) (*domain.Order, error) {
	order, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}

	if order.IsPaid {
		return nil, apperrors.Conflict("order already paid")
	}
	if order.Status == domain.OrderStatusCancelled {
		return nil, apperrors.Conflict("cannot pay a cancelled order")
	}

	if err := s.repo.MarkPaid(ctx, id); err != nil {
		return nil, fmt.Errorf("mark order paid: %w", err)
	}

	s.logger.InfoContext(ctx, "order marked paid",
		slog.String("order_id", id),
	)

	updated, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("reload order: %w", err)
	}

	return updated, nil
}
