package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/summerbooks/backend/internal/domain"
)

// Guard errors surfaced by the checkout transaction when one of its
// conditional updates affects no rows. The service layer maps them onto the
// storefront's field-tagged messages.
var (
	// ErrVoucherAlreadyUsed means the assignment was consumed between the
	// resolver's read and the commit.
	ErrVoucherAlreadyUsed = errors.New("voucher assignment already used")

	// ErrVoucherExhausted means the voucher's global usage pool hit zero
	// before this order could claim a slot.
	ErrVoucherExhausted = errors.New("voucher usage pool exhausted")
)

// InsufficientStockError names the product whose stock could not cover the
// requested quantity.
type InsufficientStockError struct {
	ProductID string
	Title     string
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %s (%s)", e.ProductID, e.Title)
}

// ProductFilter defines filter criteria for listing products.
type ProductFilter struct {
	Search  *string
	Page    int
	PerPage int
}

// ProductRepository defines the interface for catalog persistence operations.
type ProductRepository interface {
	// Create inserts a new product.
	Create(ctx context.Context, product *domain.Product) error

	// GetByID retrieves a product by its unique identifier.
	GetByID(ctx context.Context, id string) (*domain.Product, error)

	// GetBySlug retrieves a product by its URL slug.
	GetBySlug(ctx context.Context, slug string) (*domain.Product, error)

	// FindByIDs retrieves all products matching the given IDs in a single
	// query. IDs with no matching product are silently absent from the
	// result.
	FindByIDs(ctx context.Context, ids []string) ([]domain.Product, error)

	// List returns products matching the given filter along with the total count.
	List(ctx context.Context, filter ProductFilter) ([]domain.Product, int, error)

	// Update overwrites a product's mutable fields.
	Update(ctx context.Context, product *domain.Product) error
}

// AssignedVoucher pairs an assignment with the voucher it grants.
type AssignedVoucher struct {
	Assignment domain.VoucherAssignment
	Voucher    domain.Voucher
}

// VoucherRepository defines the interface for voucher persistence operations.
type VoucherRepository interface {
	// Create inserts a new voucher.
	Create(ctx context.Context, voucher *domain.Voucher) error

	// GetByID retrieves a voucher by its unique identifier.
	GetByID(ctx context.Context, id string) (*domain.Voucher, error)

	// GetByCode retrieves a voucher by its code.
	GetByCode(ctx context.Context, code string) (*domain.Voucher, error)

	// Assign grants a voucher to a user.
	Assign(ctx context.Context, assignment *domain.VoucherAssignment) error

	// GetAssignment retrieves an assignment together with its voucher.
	GetAssignment(ctx context.Context, assignmentID string) (*AssignedVoucher, error)

	// ListByUser returns all assignments granted to a user, newest first.
	ListByUser(ctx context.Context, userID string) ([]AssignedVoucher, error)
}

// OrderFilter defines filter criteria for listing orders.
type OrderFilter struct {
	UserID  *string
	Status  *string
	Page    int
	PerPage int
}

// OrderRepository defines the interface for order persistence operations.
type OrderRepository interface {
	// CommitCheckout inserts the order and its items and, atomically in the
	// same transaction, consumes the voucher assignment, decrements the
	// voucher's usage pool and decrements product stock. assignmentID is
	// empty when no voucher is applied. Any failed guard aborts the whole
	// transaction.
	CommitCheckout(ctx context.Context, order *domain.Order, assignmentID string) error

	// GetByID retrieves an order by its unique identifier, including items.
	GetByID(ctx context.Context, id string) (*domain.Order, error)

	// List returns orders matching the given filter along with the total count.
	List(ctx context.Context, filter OrderFilter) ([]domain.Order, int, error)

	// UpdateStatus changes the status of an order. Cancelling restores the
	// stock its items had claimed, in the same transaction.
	UpdateStatus(ctx context.Context, id string, status string) error

	// MarkPaid records payment on an order. It is a no-op error if the order
	// is already paid.
	MarkPaid(ctx context.Context, id string) error
}

// CartRepository defines the interface for cart persistence operations.
type CartRepository interface {
	// Get retrieves the cart for the given owner.
	Get(ctx context.Context, ownerID string) (*domain.Cart, error)

	// Save persists the cart, overwriting any existing cart for its owner.
	Save(ctx context.Context, cart *domain.Cart) error

	// Delete removes the cart for the given owner.
	Delete(ctx context.Context, ownerID string) error
}
