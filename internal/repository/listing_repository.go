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
	ErrListingNotFound      = errors.New("listing not found")
	ErrListingAlreadyExists = errors.New("pet is already listed")
)

// ListingRepository defines the interface for marketplace listing data access
type ListingRepository interface {
	Load(ctx context.Context) error
	Create(ctx context.Context, listing domain.Listing) error
	Delete(ctx context.Context, petID string) (bool, error)
	FindByPetID(ctx context.Context, petID string) (domain.Listing, error)
	List(ctx context.Context) ([]domain.Listing, error)
}

type listingRepository struct {
	table *fileTable[domain.Listing]
}

// NewListingRepository creates a listing store backed by listings.txt in dir
func NewListingRepository(dir string, logger *zap.Logger) ListingRepository {
	return &listingRepository{
		table: newFileTable(
			filepath.Join(dir, ListingsFile),
			codec.Listings,
			func(l domain.Listing) string { return l.PetID },
			logger,
		),
	}
}

func (r *listingRepository) Load(ctx context.Context) error {
	return r.table.load(ctx)
}

func (r *listingRepository) Create(ctx context.Context, listing domain.Listing) error {
	return r.table.insert(ctx, listing, ErrListingAlreadyExists)
}

// Delete removes a listing and reports whether it existed
func (r *listingRepository) Delete(ctx context.Context, petID string) (bool, error) {
	return r.table.remove(ctx, petID)
}

func (r *listingRepository) FindByPetID(ctx context.Context, petID string) (domain.Listing, error) {
	l, ok := r.table.get(petID)
	if !ok {
		return domain.Listing{}, ErrListingNotFound
	}
	return l, nil
}

// List returns active listings in the order they were created
func (r *listingRepository) List(ctx context.Context) ([]domain.Listing, error) {
	return r.table.list(), nil
}
