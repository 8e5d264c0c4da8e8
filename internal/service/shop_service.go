package service

import (
	"context"
	"fmt"
	"time"

	"pet-market/internal/domain"
	"pet-market/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TopSeller is one row of the best-seller board
type TopSeller struct {
	Product domain.Product
	Count   int
}

// ShopService defines the interface for system-to-user sales
type ShopService interface {
	Catalog(ctx context.Context) ([]domain.Product, error)
	Purchase(ctx context.Context, username string, position int) (domain.Pet, error)
	History(ctx context.Context, username string) ([]domain.Purchase, error)
	TopSellers(ctx context.Context, n int) ([]TopSeller, error)
}

type shopService struct {
	users    repository.UserRepository
	products repository.ProductRepository
	ledger   repository.PurchaseLedger
	activity ActivityRecorder
	locks    *LockSet
	now      func() time.Time
	logger   *zap.Logger
}

// NewShopService creates a new instance of ShopService
func NewShopService(
	users repository.UserRepository,
	products repository.ProductRepository,
	ledger repository.PurchaseLedger,
	activity ActivityRecorder,
	locks *LockSet,
	logger *zap.Logger,
) ShopService {
	return &shopService{
		users:    users,
		products: products,
		ledger:   ledger,
		activity: activity,
		locks:    locks,
		now:      time.Now,
		logger:   logger,
	}
}

// Catalog returns the products in display order
func (s *shopService) Catalog(ctx context.Context) ([]domain.Product, error) {
	return s.products.List(ctx)
}

// Purchase buys the product at the 1-based catalog position. The user store
// is the commit point: once it is written the purchase stands, and a failure
// to append the ledger or activity entry is logged and returned.
func (s *shopService) Purchase(ctx context.Context, username string, position int) (domain.Pet, error) {
	release := s.locks.acquire(lockUsers, lockLedger)
	defer release()

	catalog, err := s.products.List(ctx)
	if err != nil {
		return domain.Pet{}, fmt.Errorf("failed to list products: %w", err)
	}
	product, err := selectAt(catalog, position)
	if err != nil {
		return domain.Pet{}, err
	}

	user, err := activeUser(ctx, s.users, username)
	if err != nil {
		return domain.Pet{}, err
	}
	if !user.CanAfford(product.Price) {
		return domain.Pet{}, ErrInsufficientFunds
	}

	if err := ctx.Err(); err != nil {
		return domain.Pet{}, err
	}

	pet := product.NewPet(uuid.New().String())
	user.Gold = user.Gold.Sub(product.Price)
	user.Inventory = append(user.Inventory, pet)

	if err := s.users.Save(ctx, user); err != nil {
		return domain.Pet{}, fmt.Errorf("failed to save purchase: %w", err)
	}

	purchase := domain.Purchase{
		Username:    user.Username,
		ProductID:   product.ID,
		ProductName: product.Name,
		PricePaid:   product.Price,
		Timestamp:   s.now(),
	}
	if err := s.ledger.Append(ctx, purchase); err != nil {
		s.logger.Error("Purchase committed but not recorded in ledger",
			zap.String("username", user.Username),
			zap.String("product_id", product.ID),
			zap.String("pet_id", pet.UniqueID),
			zap.Error(err),
		)
		return pet, fmt.Errorf("failed to record purchase: %w", err)
	}

	msg := fmt.Sprintf("bought %s for %s gold", product.Name, product.Price)
	if err := recordActivity(ctx, s.activity, s.logger, user.Username, msg); err != nil {
		return pet, err
	}
	return pet, nil
}

// History returns the user's purchases, oldest first
func (s *shopService) History(ctx context.Context, username string) ([]domain.Purchase, error) {
	purchases, err := s.ledger.ByUser(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("failed to read purchase history: %w", err)
	}
	return purchases, nil
}

// TopSellers ranks the n most purchased products. Products no longer in the
// catalog are reported with their id only.
func (s *shopService) TopSellers(ctx context.Context, n int) ([]TopSeller, error) {
	ranked, err := s.ledger.TopProducts(ctx, n)
	if err != nil {
		return nil, fmt.Errorf("failed to rank products: %w", err)
	}

	out := make([]TopSeller, 0, len(ranked))
	for _, r := range ranked {
		product, err := s.products.FindByID(ctx, r.ProductID)
		if err != nil {
			product = domain.Product{ID: r.ProductID, Name: r.ProductID}
		}
		out = append(out, TopSeller{Product: product, Count: r.Count})
	}
	return out, nil
}
