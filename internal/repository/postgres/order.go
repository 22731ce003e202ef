package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/summerbooks/backend/internal/domain"
	"github.com/summerbooks/backend/internal/repository"
	"github.com/summerbooks/backend/pkg/database"
	apperrors "github.com/summerbooks/backend/pkg/errors"
)

// OrderRepository implements repository.OrderRepository using PostgreSQL.
type OrderRepository struct {
	pool database.DBTX
}

// NewOrderRepository creates a new PostgreSQL-backed order repository.
func NewOrderRepository(pool database.DBTX) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// CommitCheckout persists the order and, in the same transaction, consumes
// the voucher assignment, claims a slot from the voucher's usage pool and
// decrements product stock. Every side effect is a conditional update; a
// guard that affects no rows aborts the transaction so a concurrent checkout
// can never oversell stock or double-spend a voucher.
func (r *OrderRepository) CommitCheckout(ctx context.Context, o *domain.Order, assignmentID string) (err error) {
	ctx, end := database.TraceQuery(ctx, "CommitCheckout", "checkout transaction")
	defer func() { end(err) }()

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	orderQuery := `
		INSERT INTO orders (id, user_id, recipient_name, recipient_phone, recipient_address, original_price, discount_amount, total_price, voucher_id, status, is_paid, is_delivered, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`

	var voucherID any
	if o.VoucherID != "" {
		voucherID = o.VoucherID
	}

	_, err = tx.Exec(ctx, orderQuery,
		o.ID,
		o.UserID,
		o.Recipient.Name,
		o.Recipient.Phone,
		o.Recipient.Address,
		o.OriginalPrice,
		o.DiscountAmount,
		o.TotalPrice,
		voucherID,
		o.Status,
		o.IsPaid,
		o.IsDelivered,
		o.CreatedAt,
		o.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	itemQuery := `
		INSERT INTO order_items (id, order_id, product_id, title, author, image_url, unit_price, quantity)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	for _, item := range o.Items {
		_, err = tx.Exec(ctx, itemQuery,
			item.ID,
			item.OrderID,
			item.ProductID,
			item.Title,
			item.Author,
			item.ImageURL,
			item.UnitPrice,
			item.Quantity,
		)
		if err != nil {
			return fmt.Errorf("insert order item: %w", err)
		}
	}

	now := time.Now().UTC()

	if assignmentID != "" {
		assignmentQuery := `
			UPDATE voucher_assignments
			SET used = true, used_at = $1
			WHERE id = $2 AND used = false`

		ct, err := tx.Exec(ctx, assignmentQuery, now, assignmentID)
		if err != nil {
			return fmt.Errorf("consume voucher assignment: %w", err)
		}
		if ct.RowsAffected() == 0 {
			return repository.ErrVoucherAlreadyUsed
		}

		voucherQuery := `
			UPDATE vouchers
			SET remain = remain - 1, updated_at = $1
			WHERE id = $2 AND remain > 0`

		ct, err = tx.Exec(ctx, voucherQuery, now, o.VoucherID)
		if err != nil {
			return fmt.Errorf("decrement voucher pool: %w", err)
		}
		if ct.RowsAffected() == 0 {
			return repository.ErrVoucherExhausted
		}
	}

	stockQuery := `
		UPDATE products
		SET count_in_stock = count_in_stock - $1, updated_at = $2
		WHERE id = $3 AND count_in_stock >= $1`

	for _, item := range o.Items {
		ct, err := tx.Exec(ctx, stockQuery, item.Quantity, now, item.ProductID)
		if err != nil {
			return fmt.Errorf("decrement stock: %w", err)
		}
		if ct.RowsAffected() == 0 {
			return &repository.InsufficientStockError{ProductID: item.ProductID, Title: item.Title}
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}

const orderColumns = `o.id, o.user_id, o.recipient_name, o.recipient_phone, o.recipient_address, o.original_price, o.discount_amount, o.total_price, o.voucher_id, o.status, o.is_paid, o.paid_at, o.is_delivered, o.delivered_at, o.created_at, o.updated_at`

func scanOrder(row pgx.Row, o *domain.Order, extra ...any) error {
	var voucherID *string
	dest := []any{
		&o.ID,
		&o.UserID,
		&o.Recipient.Name,
		&o.Recipient.Phone,
		&o.Recipient.Address,
		&o.OriginalPrice,
		&o.DiscountAmount,
		&o.TotalPrice,
		&voucherID,
		&o.Status,
		&o.IsPaid,
		&o.PaidAt,
		&o.IsDelivered,
		&o.DeliveredAt,
		&o.CreatedAt,
		&o.UpdatedAt,
	}
	dest = append(dest, extra...)

	if err := row.Scan(dest...); err != nil {
		return err
	}
	if voucherID != nil {
		o.VoucherID = *voucherID
	}
	return nil
}

// GetByID retrieves an order by its ID, eagerly loading its items.
func (r *OrderRepository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	// Single query with JSONB_AGG to avoid a second items round trip.
	query := `
		SELECT ` + orderColumns + `,
			COALESCE(
				JSONB_AGG(
					JSONB_BUILD_OBJECT(
						'id', oi.id,
						'order_id', oi.order_id,
						'product_id', oi.product_id,
						'title', oi.title,
						'author', oi.author,
						'image_url', oi.image_url,
						'unit_price', oi.unit_price,
						'quantity', oi.quantity
					) ORDER BY oi.id
				) FILTER (WHERE oi.id IS NOT NULL),
				'[]'::jsonb
			) AS items
		FROM orders o
		LEFT JOIN order_items oi ON o.id = oi.order_id
		WHERE o.id = $1
		GROUP BY o.id`

	var (
		o         domain.Order
		itemsJSON []byte
	)

	if err := scanOrder(r.pool.QueryRow(ctx, query, id), &o, &itemsJSON); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("order", id)
		}
		return nil, fmt.Errorf("scan order: %w", err)
	}

	o.Items = []domain.OrderItem{}
	if len(itemsJSON) > 0 && string(itemsJSON) != "null" && string(itemsJSON) != "[]" {
		if err := json.Unmarshal(itemsJSON, &o.Items); err != nil {
			return nil, fmt.Errorf("unmarshal order items: %w", err)
		}
	}

	return &o, nil
}

// List returns orders matching the given filter with the total count.
func (r *OrderRepository) List(ctx context.Context, filter repository.OrderFilter) ([]domain.Order, int, error) {
	var (
		conditions []string
		args       []any
		argIndex   = 1
	)

	if filter.UserID != nil {
		conditions = append(conditions, fmt.Sprintf("user_id = $%d", argIndex))
		args = append(args, *filter.UserID)
		argIndex++
	}

	if filter.Status != nil {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argIndex))
		args = append(args, *filter.Status)
		argIndex++
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	query := fmt.Sprintf(`
		SELECT %s, count(*) OVER() AS total_count
		FROM orders o
		%s
		ORDER BY o.created_at DESC
		LIMIT $%d OFFSET $%d`,
		orderColumns, whereClause, argIndex, argIndex+1,
	)

	limit := filter.PerPage
	if limit <= 0 {
		limit = 20
	}
	offset := 0
	if filter.Page > 1 {
		offset = (filter.Page - 1) * limit
	}

	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	var totalCount int
	orders := make([]domain.Order, 0)

	for rows.Next() {
		var o domain.Order
		if err := scanOrder(rows, &o, &totalCount); err != nil {
			return nil, 0, fmt.Errorf("scan order row: %w", err)
		}
		orders = append(orders, o)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate order rows: %w", err)
	}

	// Batch-load items for all orders in a single query.
	if len(orders) > 0 {
		orderIDs := make([]string, len(orders))
		for i := range orders {
			orderIDs[i] = orders[i].ID
		}

		itemsQuery := `
			SELECT id, order_id, product_id, title, author, image_url, unit_price, quantity
			FROM order_items
			WHERE order_id = ANY($1)
			ORDER BY id`

		itemRows, err := r.pool.Query(ctx, itemsQuery, orderIDs)
		if err != nil {
			return nil, 0, fmt.Errorf("batch load order items: %w", err)
		}
		defer itemRows.Close()

		itemsByOrderID := make(map[string][]domain.OrderItem, len(orders))
		for itemRows.Next() {
			var item domain.OrderItem
			if err := itemRows.Scan(
				&item.ID,
				&item.OrderID,
				&item.ProductID,
				&item.Title,
				&item.Author,
				&item.ImageURL,
				&item.UnitPrice,
				&item.Quantity,
			); err != nil {
				return nil, 0, fmt.Errorf("scan order item: %w", err)
			}
			itemsByOrderID[item.OrderID] = append(itemsByOrderID[item.OrderID], item)
		}
		if err := itemRows.Err(); err != nil {
			return nil, 0, fmt.Errorf("iterate batch order item rows: %w", err)
		}

		for i := range orders {
			if items, ok := itemsByOrderID[orders[i].ID]; ok {
				orders[i].Items = items
			} else {
				orders[i].Items = []domain.OrderItem{}
			}
		}
	}

	return orders, totalCount, nil
}

// UpdateStatus changes the status of an order. Moving to cancelled returns
// the items' stock to the catalog in the same transaction; moving to
// delivered stamps the delivery fields.
func (r *OrderRepository) UpdateStatus(ctx context.Context, id string, status string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	now := time.Now().UTC()

	if status == domain.OrderStatusCancelled {
		restoreQuery := `
			UPDATE products p
			SET count_in_stock = count_in_stock + oi.quantity, updated_at = $1
			FROM order_items oi
			WHERE oi.order_id = $2 AND p.id = oi.product_id`

		if _, err := tx.Exec(ctx, restoreQuery, now, id); err != nil {
			return fmt.Errorf("restore stock: %w", err)
		}
	}

	var (
		query string
		args  []any
	)
	if status == domain.OrderStatusDelivered {
		query = `
			UPDATE orders
			SET status = $1, is_delivered = true, delivered_at = $2, updated_at = $2
			WHERE id = $3`
		args = []any{status, now, id}
	} else {
		query = `
			UPDATE orders
			SET status = $1, updated_at = $2
			WHERE id = $3`
		args = []any{status, now, id}
	}

	ct, err := tx.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("order", id)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}

// MarkPaid records payment on an order exactly once.
func (r *OrderRepository) MarkPaid(ctx context.Context, id string) error {
	query := `
		UPDATE orders
		SET is_paid = true, paid_at = $1, updated_at = $1
		WHERE id = $2 AND is_paid = false`

	ct, err := r.pool.Exec(ctx, query, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("mark order paid: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.Conflict("order already paid or not found")
	}

	return nil
}
