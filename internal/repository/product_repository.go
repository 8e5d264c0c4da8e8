package repository

import (
	"context"
	"errors"
	"path/filepath"

	"pet-market/internal/codec"
	"pet-market/internal/domain"

	"go.uber.org/zap"
)

var (
	ErrProductNotFound      = errors.New("product not found")
	ErrProductAlreadyExists = errors.New("product with this id already exists")
)

// ProductRepository defines the interface for catalog data access
type ProductRepository interface {
	Load(ctx context.Context) error
	Create(ctx context.Context, product domain.Product) error
	Update(ctx context.Context, product domain.Product) error
	Delete(ctx context.Context, id string) error
	FindByID(ctx context.Context, id string) (domain.Product, error)
	List(ctx context.Context) ([]domain.Product, error)
}

type productRepository struct {
	table *fileTable[domain.Product]
}

// NewProductRepository creates a catalog backed by products.txt in dir
func NewProductRepository(dir string, logger *zap.Logger) ProductRepository {
	return &productRepository{
		table: newFileTable(
			filepath.Join(dir, ProductsFile),
			codec.Products,
			func(p domain.Product) string { return p.ID },
			logger,
		),
	}
}

func (r *productRepository) Load(ctx context.Context) error {
	return r.table.load(ctx)
}

// Create adds a new product template
func (r *productRepository) Create(ctx context.Context, product domain.Product) error {
	return r.table.insert(ctx, product, ErrProductAlreadyExists)
}

// Update replaces an existing product template. Listings keep their own
// snapshot and are not affected.
func (r *productRepository) Update(ctx context.Context, product domain.Product) error {
	return r.table.update(ctx, product.ID, ErrProductNotFound, func(domain.Product) domain.Product {
		return product
	})
}

// Delete removes a product template
func (r *productRepository) Delete(ctx context.Context, id string) error {
	removed, err := r.table.remove(ctx, id)
	if err != nil {
		return err
	}
	if !removed {
		return ErrProductNotFound
	}
	return nil
}

// FindByID retrieves a product by its id
func (r *productRepository) FindByID(ctx context.Context, id string) (domain.Product, error) {
	product, ok := r.table.get(id)
	if !ok {
		return domain.Product{}, ErrProductNotFound
	}
	return product, nil
}

// List returns the catalog in file order, which is also the display order
func (r *productRepository) List(ctx context.Context) ([]domain.Product, error) {
	return r.table.list(), nil
}
