package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/summerbooks/backend/internal/domain"
	"github.com/summerbooks/backend/internal/repository"
	apperrors "github.com/summerbooks/backend/pkg/errors"
	"github.com/summerbooks/backend/pkg/slug"
)

// CatalogService implements the read side of the book catalog plus admin
// product creation. Stock is never mutated here; only the checkout commit
// and order cancellation touch count_in_stock.
type CatalogService struct {
	repo   repository.ProductRepository
	logger *slog.Logger
}

// NewCatalogService creates a new catalog service.
func NewCatalogService(repo repository.ProductRepository, logger *slog.Logger) *CatalogService {
	return &CatalogService{
		repo:   repo,
		logger: logger,
	}
}

// CreateProductInput holds the parameters for creating a product.
type CreateProductInput struct {
	Title        string `json:"title" validate:"required,min=1,max=200"`
	Author       string `json:"author" validate:"required,min=1,max=100"`
	Description  string `json:"description" validate:"max=2000"`
	ImageURL     string `json:"image_url" validate:"omitempty,url"`
	Price        int64  `json:"price" validate:"required,min=1"`
	CountInStock int    `json:"count_in_stock" validate:"min=0"`
}

// CreateProduct adds a new book to the catalog.
func (s *CatalogService) CreateProduct(ctx context.Context, input CreateProductInput) (*domain.Product, error) {
	if input.Price < 1 {
		return nil, apperrors.InvalidInput("price must be positive")
	}
	if input.CountInStock < 0 {
		return nil, apperrors.InvalidInput("count_in_stock must not be negative")
	}

	now := time.Now().UTC()
	id := uuid.New().String()

	// Titles are not unique across editions, so the slug carries a short ID
	// suffix: "nha-gia-kim-3f2a9c1b".
	productSlug := slug.Generate(input.Title) + "-" + id[:8]

	product := &domain.Product{
		ID:           id,
		Title:        input.Title,
		Slug:         productSlug,
		Author:       input.Author,
		Description:  input.Description,
		ImageURL:     input.ImageURL,
		Price:        input.Price,
		CountInStock: input.CountInStock,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}

	s.logger.InfoContext(ctx, "product created",
		slog.String("product_id", product.ID),
		slog.String("title", product.Title),
	)

	return product, nil
}

// GetProduct retrieves a product by ID.
func (s *CatalogService) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	return product, nil
}

// GetProductBySlug retrieves a product by its URL slug.
func (s *CatalogService) GetProductBySlug(ctx context.Context, productSlug string) (*domain.Product, error) {
	product, err := s.repo.GetBySlug(ctx, productSlug)
	if err != nil {
		return nil, fmt.Errorf("get product by slug: %w", err)
	}
	return product, nil
}

// ListProducts returns a page of the catalog, optionally filtered by a
// title/author search term.
func (s *CatalogService) ListProducts(ctx context.Context, search string, page, perPage int) ([]domain.Product, int, error) {
	filter := repository.ProductFilter{
		Page:    page,
		PerPage: perPage,
	}
	if search != "" {
		filter.Search = &search
	}

	products, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}

	return products, total, nil
}
