package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/summerbooks/backend/internal/domain"
	"github.com/summerbooks/backend/internal/repository"
	apperrors "github.com/summerbooks/backend/pkg/errors"
)

// CartService maintains the pre-checkout mutable line list. Line snapshots
// (title, author, image, price) are taken at add time and only re-validated
// against the catalog on read and at checkout.
type CartService struct {
	carts    repository.CartRepository
	products repository.ProductRepository
	logger   *slog.Logger
}

// NewCartService creates a new cart service.
func NewCartService(carts repository.CartRepository, products repository.ProductRepository, logger *slog.Logger) *CartService {
	return &CartService{
		carts:    carts,
		products: products,
		logger:   logger,
	}
}

func newCart(ownerID string) *domain.Cart {
	now := time.Now().UTC()
	return &domain.Cart{
		ID:        uuid.New().String(),
		OwnerID:   ownerID,
		Lines:     []domain.CartLine{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// GetCart returns the owner's cart, reconciled against the catalog: lines
// whose product no longer exists are dropped and the pruned cart persisted.
// A missing cart reads as an empty one.
func (s *CartService) GetCart(ctx context.Context, ownerID string) (*domain.Cart, error) {
	cart, err := s.carts.Get(ctx, ownerID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return newCart(ownerID), nil
		}
		return nil, fmt.Errorf("get cart: %w", err)
	}

	if cart.IsEmpty() {
		return cart, nil
	}

	ids := make([]string, len(cart.Lines))
	for i, line := range cart.Lines {
		ids[i] = line.ProductID
	}

	products, err := s.products.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("reconcile cart: %w", err)
	}

	exists := make(map[string]struct{}, len(products))
	for _, p := range products {
		exists[p.ID] = struct{}{}
	}

	kept := cart.Lines[:0]
	var dropped int
	for _, line := range cart.Lines {
		if _, ok := exists[line.ProductID]; ok {
			kept = append(kept, line)
		} else {
			dropped++
		}
	}

	if dropped > 0 {
		cart.Lines = kept
		cart.Recalculate()
		cart.UpdatedAt = time.Now().UTC()

		if err := s.carts.Save(ctx, cart); err != nil {
			return nil, fmt.Errorf("persist reconciled cart: %w", err)
		}

		s.logger.InfoContext(ctx, "dropped stale cart lines",
			slog.String("owner_id", ownerID),
			slog.Int("dropped", dropped),
		)
	}

	return cart, nil
}

// AddLine adds a product to the cart, or increments the quantity of an
// existing line. The line snapshot is populated from the current catalog
// entry; re-adding overwrites the author snapshot.
func (s *CartService) AddLine(ctx context.Context, ownerID, productID string, quantity int) (*domain.Cart, error) {
	if quantity < 1 {
		return nil, apperrors.InvalidInput("quantity must be at least 1")
	}

	product, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("load product: %w", err)
	}

	cart, err := s.carts.Get(ctx, ownerID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("get cart: %w", err)
		}
		cart = newCart(ownerID)
	}

	if idx := cart.FindLineIndex(productID); idx >= 0 {
		cart.Lines[idx].Quantity += quantity
		cart.Lines[idx].Author = product.Author
	} else {
		cart.Lines = append(cart.Lines, domain.CartLine{
			ProductID: product.ID,
			Title:     product.Title,
			Author:    product.Author,
			ImageURL:  product.ImageURL,
			UnitPrice: product.Price,
			Quantity:  quantity,
		})
	}

	cart.Recalculate()
	cart.UpdatedAt = time.Now().UTC()

	if err := s.carts.Save(ctx, cart); err != nil {
		return nil, fmt.Errorf("save cart: %w", err)
	}

	return cart, nil
}

// UpdateLine sets the quantity of an existing line. Quantity zero removes
// the line; any other quantity is re-validated against current stock.
func (s *CartService) UpdateLine(ctx context.Context, ownerID, productID string, quantity int) (*domain.Cart, error) {
	if quantity < 0 {
		return nil, apperrors.InvalidInput("quantity must not be negative")
	}

	cart, err := s.carts.Get(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("get cart: %w", err)
	}

	idx := cart.FindLineIndex(productID)
	if idx < 0 {
		return nil, apperrors.NotFound("cart item", productID)
	}

	if quantity == 0 {
		cart.Lines = append(cart.Lines[:idx], cart.Lines[idx+1:]...)
	} else {
		product, err := s.products.GetByID(ctx, productID)
		if err != nil {
			return nil, fmt.Errorf("load product: %w", err)
		}
		if !product.InStock(quantity) {
			return nil, ErrInsufficientStock(product.Title)
		}
		cart.Lines[idx].Quantity = quantity
	}

	cart.Recalculate()
	cart.UpdatedAt = time.Now().UTC()

	if err := s.carts.Save(ctx, cart); err != nil {
		return nil, fmt.Errorf("save cart: %w", err)
	}

	return cart, nil
}

// RemoveLine deletes the line for the given product.
func (s *CartService) RemoveLine(ctx context.Context, ownerID, productID string) (*domain.Cart, error) {
	return s.UpdateLine(ctx, ownerID, productID, 0)
}

// Clear deletes the owner's cart entirely.
func (s *CartService) Clear(ctx context.Context, ownerID string) error {
	if err := s.carts.Delete(ctx, ownerID); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	return nil
}
