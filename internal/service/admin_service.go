package service

import (
	"context"
	"errors"
	"fmt"

	"pet-market/internal/domain"
	"pet-market/internal/repository"
	"pet-market/internal/validation"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ProductInput describes a catalog entry as entered by an administrator
type ProductInput struct {
	ID          string `validate:"required,alphanum,max=16"`
	Name        string `validate:"required,max=40,nopipe"`
	Description string `validate:"max=200,nopipe"`
	Price       decimal.Decimal
	MaxHealth   int    `validate:"gte=1,lte=10000"`
	Level       int    `validate:"gte=1,lte=100"`
	AttackPower int    `validate:"gte=0,lte=10000"`
	ImageName   string `validate:"omitempty,max=64,nopipe"`
}

func (in ProductInput) product() domain.Product {
	return domain.Product{
		ID:          in.ID,
		Name:        in.Name,
		Description: in.Description,
		Price:       in.Price,
		MaxHealth:   in.MaxHealth,
		Level:       in.Level,
		AttackPower: in.AttackPower,
		ImageName:   in.ImageName,
	}
}

// AdminService defines the interface for administrative operations.
// Every method except Announcement requires an administrator actor.
type AdminService interface {
	AddProduct(ctx context.Context, actor string, input ProductInput) (domain.Product, error)
	UpdateProduct(ctx context.Context, actor string, input ProductInput) (domain.Product, error)
	RemoveProduct(ctx context.Context, actor, productID string) error
	SetBanned(ctx context.Context, actor, username string, banned bool) error
	GrantGold(ctx context.Context, actor, username string, amount decimal.Decimal) error
	SetAnnouncement(ctx context.Context, actor, text string) error
	Announcement(ctx context.Context) string
	ActivityFor(ctx context.Context, actor, username string, limit int) ([]repository.ActivityEntry, error)
}

type adminService struct {
	users         repository.UserRepository
	products      repository.ProductRepository
	listings      repository.ListingRepository
	announcements repository.AnnouncementRepository
	activity      ActivityJournal
	locks         *LockSet
	logger        *zap.Logger
}

// NewAdminService creates a new instance of AdminService
func NewAdminService(
	users repository.UserRepository,
	products repository.ProductRepository,
	listings repository.ListingRepository,
	announcements repository.AnnouncementRepository,
	activity ActivityJournal,
	locks *LockSet,
	logger *zap.Logger,
) AdminService {
	return &adminService{
		users:         users,
		products:      products,
		listings:      listings,
		announcements: announcements,
		activity:      activity,
		locks:         locks,
		logger:        logger,
	}
}

func validateProduct(input ProductInput) error {
	if err := validation.Struct(input); err != nil {
		return invalidInput(err)
	}
	if !input.Price.IsPositive() {
		return ErrInvalidPrice
	}
	return nil
}

func (s *adminService) AddProduct(ctx context.Context, actor string, input ProductInput) (domain.Product, error) {
	if err := requireAdmin(ctx, s.users, actor); err != nil {
		return domain.Product{}, err
	}
	if err := validateProduct(input); err != nil {
		return domain.Product{}, err
	}

	product := input.product()
	if err := s.products.Create(ctx, product); err != nil {
		if errors.Is(err, repository.ErrProductAlreadyExists) {
			return domain.Product{}, err
		}
		return domain.Product{}, fmt.Errorf("failed to create product: %w", err)
	}

	if err := recordActivity(ctx, s.activity, s.logger, actor, "added product "+product.ID); err != nil {
		return product, err
	}
	return product, nil
}

// UpdateProduct replaces a catalog entry. Owned pets and listings keep
// their own stats.
func (s *adminService) UpdateProduct(ctx context.Context, actor string, input ProductInput) (domain.Product, error) {
	if err := requireAdmin(ctx, s.users, actor); err != nil {
		return domain.Product{}, err
	}
	if err := validateProduct(input); err != nil {
		return domain.Product{}, err
	}

	product := input.product()
	if err := s.products.Update(ctx, product); err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return domain.Product{}, err
		}
		return domain.Product{}, fmt.Errorf("failed to update product: %w", err)
	}

	if err := recordActivity(ctx, s.activity, s.logger, actor, "updated product "+product.ID); err != nil {
		return product, err
	}
	return product, nil
}

// RemoveProduct deletes a catalog entry that no pet or listing refers to
func (s *adminService) RemoveProduct(ctx context.Context, actor, productID string) error {
	if err := requireAdmin(ctx, s.users, actor); err != nil {
		return err
	}

	release := s.locks.acquire(lockUsers, lockListings)
	defer release()

	users, err := s.users.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list users: %w", err)
	}
	for _, u := range users {
		for _, pet := range u.Inventory {
			if pet.ProductID == productID {
				return ErrProductInUse
			}
		}
	}

	listings, err := s.listings.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list listings: %w", err)
	}
	for _, l := range listings {
		if l.ProductID == productID {
			return ErrProductInUse
		}
	}

	if err := s.products.Delete(ctx, productID); err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return err
		}
		return fmt.Errorf("failed to delete product: %w", err)
	}

	return recordActivity(ctx, s.activity, s.logger, actor, "removed product "+productID)
}

func (s *adminService) SetBanned(ctx context.Context, actor, username string, banned bool) error {
	if err := requireAdmin(ctx, s.users, actor); err != nil {
		return err
	}
	if actor == username {
		return fmt.Errorf("%w: cannot change your own ban status", ErrInvalidInput)
	}

	release := s.locks.acquire(lockUsers)
	defer release()

	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return err
	}
	if user.IsBanned == banned {
		return nil
	}

	user.IsBanned = banned
	if err := s.users.Save(ctx, user); err != nil {
		return fmt.Errorf("failed to save user: %w", err)
	}

	action := "unbanned"
	if banned {
		action = "banned"
	}
	return recordActivity(ctx, s.activity, s.logger, actor, action+" "+username)
}

func (s *adminService) GrantGold(ctx context.Context, actor, username string, amount decimal.Decimal) error {
	if err := requireAdmin(ctx, s.users, actor); err != nil {
		return err
	}
	if !amount.IsPositive() {
		return ErrInvalidAmount
	}

	release := s.locks.acquire(lockUsers)
	defer release()

	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return err
	}

	user.Gold = user.Gold.Add(amount)
	if err := s.users.Save(ctx, user); err != nil {
		return fmt.Errorf("failed to save user: %w", err)
	}

	return recordActivity(ctx, s.activity, s.logger, username, fmt.Sprintf("received %s gold from %s", amount, actor))
}

func (s *adminService) SetAnnouncement(ctx context.Context, actor, text string) error {
	if err := requireAdmin(ctx, s.users, actor); err != nil {
		return err
	}
	if err := validation.Var(text, "max=1000"); err != nil {
		return invalidInput(err)
	}

	if err := s.announcements.Set(ctx, text); err != nil {
		return fmt.Errorf("failed to save announcement: %w", err)
	}
	return recordActivity(ctx, s.activity, s.logger, actor, "changed the announcement")
}

func (s *adminService) Announcement(ctx context.Context) string {
	return s.announcements.Get(ctx)
}

// ActivityFor returns the most recent entries for a user, or for everyone
// when username is empty
func (s *adminService) ActivityFor(ctx context.Context, actor, username string, limit int) ([]repository.ActivityEntry, error) {
	if err := requireAdmin(ctx, s.users, actor); err != nil {
		return nil, err
	}
	entries, err := s.activity.Recent(ctx, username, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to read activity log: %w", err)
	}
	return entries, nil
}
