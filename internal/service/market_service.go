package service

import (
	"context"
	"errors"
	"fmt"

	"pet-market/internal/domain"
	"pet-market/internal/repository"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// MarketService defines the interface for user-to-user trading
type MarketService interface {
	Listings(ctx context.Context) ([]domain.Listing, error)
	List(ctx context.Context, seller, petID string, price decimal.Decimal) (domain.Listing, error)
	Buy(ctx context.Context, buyer string, position int) (domain.Pet, error)
	Delist(ctx context.Context, actor, petID string) error
}

type marketService struct {
	users    repository.UserRepository
	products repository.ProductRepository
	listings repository.ListingRepository
	activity ActivityRecorder
	locks    *LockSet
	logger   *zap.Logger
}

// NewMarketService creates a new instance of MarketService
func NewMarketService(
	users repository.UserRepository,
	products repository.ProductRepository,
	listings repository.ListingRepository,
	activity ActivityRecorder,
	locks *LockSet,
	logger *zap.Logger,
) MarketService {
	return &marketService{
		users:    users,
		products: products,
		listings: listings,
		activity: activity,
		locks:    locks,
		logger:   logger,
	}
}

// Listings returns active listings in display order
func (s *marketService) Listings(ctx context.Context) ([]domain.Listing, error) {
	return s.listings.List(ctx)
}

// List moves a pet from the seller's inventory onto the marketplace.
// The listing is written before the inventory.
func (s *marketService) List(ctx context.Context, seller, petID string, price decimal.Decimal) (domain.Listing, error) {
	if !price.IsPositive() {
		return domain.Listing{}, ErrInvalidPrice
	}

	release := s.locks.acquire(lockUsers, lockListings)
	defer release()

	user, err := activeUser(ctx, s.users, seller)
	if err != nil {
		return domain.Listing{}, err
	}
	pet, ok := user.TakePet(petID)
	if !ok {
		return domain.Listing{}, ErrPetNotOwned
	}

	if err := ctx.Err(); err != nil {
		return domain.Listing{}, err
	}

	listing := domain.NewListing(user.Username, pet, price)
	if err := s.listings.Create(ctx, listing); err != nil {
		return domain.Listing{}, fmt.Errorf("failed to create listing: %w", err)
	}

	if err := s.users.Save(ctx, user); err != nil {
		// undo the listing so the pet is not on sale while still owned
		if _, undoErr := s.listings.Delete(ctx, petID); undoErr != nil {
			s.logger.Error("Listing written but inventory was not, pet is both owned and listed",
				zap.String("pet_id", petID),
				zap.String("seller", user.Username),
				zap.Error(undoErr),
			)
		}
		return domain.Listing{}, fmt.Errorf("failed to save seller: %w", err)
	}

	msg := fmt.Sprintf("listed %s for %s gold", pet.Name, price)
	if err := recordActivity(ctx, s.activity, s.logger, user.Username, msg); err != nil {
		return listing, err
	}
	return listing, nil
}

// Buy purchases the listing at the 1-based position. Buyer and seller are
// written in one users rewrite, which is the commit point; the listing is
// removed afterwards.
func (s *marketService) Buy(ctx context.Context, buyerName string, position int) (domain.Pet, error) {
	release := s.locks.acquire(lockUsers, lockListings)
	defer release()

	listings, err := s.listings.List(ctx)
	if err != nil {
		return domain.Pet{}, fmt.Errorf("failed to list listings: %w", err)
	}
	listing, err := selectAt(listings, position)
	if err != nil {
		return domain.Pet{}, err
	}

	if listing.Seller == buyerName {
		return domain.Pet{}, ErrSelfTrade
	}

	buyer, err := activeUser(ctx, s.users, buyerName)
	if err != nil {
		return domain.Pet{}, err
	}
	if !buyer.CanAfford(listing.Price) {
		return domain.Pet{}, ErrInsufficientFunds
	}

	seller, err := s.users.FindByUsername(ctx, listing.Seller)
	if err != nil {
		if !errors.Is(err, repository.ErrUserNotFound) {
			return domain.Pet{}, fmt.Errorf("failed to find seller: %w", err)
		}
		if err := s.dropListing(ctx, listing, "seller no longer exists"); err != nil {
			return domain.Pet{}, err
		}
		return domain.Pet{}, ErrSellerGone
	}

	product, err := s.products.FindByID(ctx, listing.ProductID)
	if err != nil {
		return domain.Pet{}, ErrProductGone
	}

	if owner, held := s.users.PetOwner(ctx, listing.PetID); held {
		s.logger.Warn("Listed pet is already owned", zap.String("pet_id", listing.PetID), zap.String("owner", owner))
		if err := s.dropListing(ctx, listing, "pet already owned"); err != nil {
			return domain.Pet{}, err
		}
		return domain.Pet{}, ErrStaleListing
	}

	if err := ctx.Err(); err != nil {
		return domain.Pet{}, err
	}

	pet := listing.RestorePet(product)
	buyer.Gold = buyer.Gold.Sub(listing.Price)
	buyer.Inventory = append(buyer.Inventory, pet)
	seller.Gold = seller.Gold.Add(listing.Price)

	if err := s.users.Save(ctx, buyer, seller); err != nil {
		return domain.Pet{}, fmt.Errorf("failed to save trade: %w", err)
	}

	if _, err := s.listings.Delete(ctx, listing.PetID); err != nil {
		s.logger.Error("Trade committed but listing was not removed",
			zap.String("pet_id", listing.PetID),
			zap.String("buyer", buyer.Username),
			zap.Error(err),
		)
		return pet, fmt.Errorf("failed to remove listing: %w", err)
	}

	buyMsg := fmt.Sprintf("bought %s from %s for %s gold", pet.Name, seller.Username, listing.Price)
	sellMsg := fmt.Sprintf("sold %s to %s for %s gold", pet.Name, buyer.Username, listing.Price)
	err = errors.Join(
		recordActivity(ctx, s.activity, s.logger, buyer.Username, buyMsg),
		recordActivity(ctx, s.activity, s.logger, seller.Username, sellMsg),
	)
	return pet, err
}

// Delist withdraws a listing and returns the pet to its seller. Only
// administrators may delist. The inventory is written before the listing.
func (s *marketService) Delist(ctx context.Context, actor, petID string) error {
	if err := requireAdmin(ctx, s.users, actor); err != nil {
		return err
	}

	release := s.locks.acquire(lockUsers, lockListings)
	defer release()

	listing, err := s.listings.FindByPetID(ctx, petID)
	if err != nil {
		return err
	}

	seller, err := s.users.FindByUsername(ctx, listing.Seller)
	if err != nil {
		if !errors.Is(err, repository.ErrUserNotFound) {
			return fmt.Errorf("failed to find seller: %w", err)
		}
		return s.dropListing(ctx, listing, "delisted, seller no longer exists")
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	product, err := s.products.FindByID(ctx, listing.ProductID)
	if err != nil {
		// rebuild from the snapshot alone
		product = domain.Product{ID: listing.ProductID, Name: listing.PetName, Description: listing.Description}
	}
	if seller.PetIndex(petID) < 0 {
		seller.Inventory = append(seller.Inventory, listing.RestorePet(product))
		if err := s.users.Save(ctx, seller); err != nil {
			return fmt.Errorf("failed to return pet to seller: %w", err)
		}
	}

	if _, err := s.listings.Delete(ctx, petID); err != nil {
		s.logger.Error("Pet returned to seller but listing was not removed",
			zap.String("pet_id", petID),
			zap.String("seller", seller.Username),
			zap.Error(err),
		)
		return fmt.Errorf("failed to remove listing: %w", err)
	}

	msg := fmt.Sprintf("listing of %s withdrawn by %s", listing.PetName, actor)
	return recordActivity(ctx, s.activity, s.logger, seller.Username, msg)
}

func (s *marketService) dropListing(ctx context.Context, listing domain.Listing, reason string) error {
	if _, err := s.listings.Delete(ctx, listing.PetID); err != nil {
		return fmt.Errorf("failed to remove listing: %w", err)
	}
	s.logger.Info("Removed listing",
		zap.String("pet_id", listing.PetID),
		zap.String("seller", listing.Seller),
		zap.String("reason", reason),
	)
	return nil
}
