package service

import (
	"context"
	"fmt"

	"pet-market/internal/domain"
	"pet-market/internal/repository"
	"pet-market/internal/validation"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// DefaultSellBackRatio is the share of the catalog price refunded on sale
var DefaultSellBackRatio = decimal.NewFromFloat(0.5)

const petNameRules = "required,max=32,nopipe"

// InventoryService defines the interface for managing owned pets
type InventoryService interface {
	Inventory(ctx context.Context, username string) ([]domain.Pet, error)
	Sell(ctx context.Context, username, petID string) (decimal.Decimal, error)
	Rename(ctx context.Context, username, petID, name string) error
}

type inventoryService struct {
	users         repository.UserRepository
	products      repository.ProductRepository
	activity      ActivityRecorder
	locks         *LockSet
	sellBackRatio decimal.Decimal
	logger        *zap.Logger
}

// NewInventoryService creates a new instance of InventoryService
func NewInventoryService(
	users repository.UserRepository,
	products repository.ProductRepository,
	activity ActivityRecorder,
	locks *LockSet,
	sellBackRatio decimal.Decimal,
	logger *zap.Logger,
) InventoryService {
	if sellBackRatio.IsNegative() {
		sellBackRatio = decimal.Zero
	}
	if one := decimal.NewFromInt(1); sellBackRatio.GreaterThan(one) {
		sellBackRatio = one
	}
	return &inventoryService{
		users:         users,
		products:      products,
		activity:      activity,
		locks:         locks,
		sellBackRatio: sellBackRatio,
		logger:        logger,
	}
}

func (s *inventoryService) Inventory(ctx context.Context, username string) ([]domain.Pet, error) {
	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	return user.Inventory, nil
}

// Sell destroys a pet and refunds part of its catalog price. A pet whose
// product was removed sells for nothing.
func (s *inventoryService) Sell(ctx context.Context, username, petID string) (decimal.Decimal, error) {
	release := s.locks.acquire(lockUsers)
	defer release()

	user, err := activeUser(ctx, s.users, username)
	if err != nil {
		return decimal.Zero, err
	}
	pet, ok := user.TakePet(petID)
	if !ok {
		return decimal.Zero, ErrPetNotOwned
	}

	refund := decimal.Zero
	if product, err := s.products.FindByID(ctx, pet.ProductID); err == nil {
		refund = product.Price.Mul(s.sellBackRatio).Round(2)
	}

	if err := ctx.Err(); err != nil {
		return decimal.Zero, err
	}

	user.Gold = user.Gold.Add(refund)
	if err := s.users.Save(ctx, user); err != nil {
		return decimal.Zero, fmt.Errorf("failed to save sale: %w", err)
	}

	msg := fmt.Sprintf("sold %s back to the shop for %s gold", pet.Name, refund)
	if err := recordActivity(ctx, s.activity, s.logger, user.Username, msg); err != nil {
		return refund, err
	}
	return refund, nil
}

// Rename gives an owned pet a new display name
func (s *inventoryService) Rename(ctx context.Context, username, petID, name string) error {
	if err := validation.Var(name, petNameRules); err != nil {
		return invalidInput(err)
	}

	release := s.locks.acquire(lockUsers)
	defer release()

	user, err := activeUser(ctx, s.users, username)
	if err != nil {
		return err
	}
	i := user.PetIndex(petID)
	if i < 0 {
		return ErrPetNotOwned
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	old := user.Inventory[i].Name
	user.Inventory[i].Name = name
	if err := s.users.Save(ctx, user); err != nil {
		return fmt.Errorf("failed to save pet name: %w", err)
	}

	return recordActivity(ctx, s.activity, s.logger, user.Username, fmt.Sprintf("renamed %s to %s", old, name))
}
