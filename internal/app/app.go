package app

import (
	"context"
	"fmt"
	"os"

	"pet-market/internal/config"
	"pet-market/internal/domain"
	"pet-market/internal/repository"
	"pet-market/internal/service"

	"go.uber.org/zap"
)

// App owns every store and service of one data directory
type App struct {
	config *config.Config
	logger *zap.Logger

	Products      repository.ProductRepository
	Users         repository.UserRepository
	Listings      repository.ListingRepository
	Codes         repository.CodeRepository
	Ledger        repository.PurchaseLedger
	Saves         repository.SaveRepository
	Announcements repository.AnnouncementRepository
	Activity      *repository.ActivityLog

	Accounts  service.AccountService
	Shop      service.ShopService
	Market    service.MarketService
	Redeem    service.RedeemService
	Inventory service.InventoryService
	Admin     service.AdminService
}

// New opens the data directory, loads every store and wires the services.
// A missing directory is created; missing files start empty.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	dir := cfg.Storage.DataDir
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	a := &App{
		config:        cfg,
		logger:        logger,
		Products:      repository.NewProductRepository(dir, logger),
		Listings:      repository.NewListingRepository(dir, logger),
		Codes:         repository.NewCodeRepository(dir, logger),
		Ledger:        repository.NewPurchaseLedger(dir, logger),
		Saves:         repository.NewSaveRepository(dir, logger),
		Announcements: repository.NewAnnouncementRepository(dir, logger),
	}
	a.Users = repository.NewUserRepository(dir, a.Products, logger)

	if err := a.load(ctx); err != nil {
		return nil, err
	}

	activity, err := repository.NewActivityLog(dir)
	if err != nil {
		return nil, err
	}
	a.Activity = activity

	locks := service.NewLockSet()
	codes := service.CodeSettings{
		Segments:      cfg.Codes.Segments,
		SegmentLength: cfg.Codes.SegmentLength,
		MaxAttempts:   cfg.Codes.MaxAttempts,
	}

	a.Accounts = service.NewAccountService(a.Users, a.Announcements, a.Saves, activity, locks, cfg.Economy.StartingGold, cfg.Economy.BcryptCost, logger)
	a.Shop = service.NewShopService(a.Users, a.Products, a.Ledger, activity, locks, logger)
	a.Market = service.NewMarketService(a.Users, a.Products, a.Listings, activity, locks, logger)
	a.Redeem = service.NewRedeemService(a.Users, a.Codes, activity, locks, codes, logger)
	a.Inventory = service.NewInventoryService(a.Users, a.Products, activity, locks, cfg.Economy.SellBackRatio, logger)
	a.Admin = service.NewAdminService(a.Users, a.Products, a.Listings, a.Announcements, activity, locks, logger)

	if err := a.bootstrapAdmin(ctx); err != nil {
		_ = activity.Close()
		return nil, err
	}
	if _, err := a.Reconcile(ctx); err != nil {
		_ = activity.Close()
		return nil, err
	}

	return a, nil
}

// load reads the stores. The catalog goes first since inventories resolve
// against it.
func (a *App) load(ctx context.Context) error {
	steps := []struct {
		name string
		load func(context.Context) error
	}{
		{"products", a.Products.Load},
		{"users", a.Users.Load},
		{"listings", a.Listings.Load},
		{"codes", a.Codes.Load},
		{"saves", a.Saves.Load},
		{"announcements", a.Announcements.Load},
	}

	for _, step := range steps {
		if err := step.load(ctx); err != nil {
			a.logger.Error("Failed to load store", zap.String("store", step.name), zap.Error(err))
			return fmt.Errorf("failed to load %s: %w", step.name, err)
		}
	}

	a.logger.Info("Data loaded",
		zap.String("dir", a.config.Storage.DataDir),
		zap.Int("users", a.Users.Count(ctx)),
	)
	return nil
}

// bootstrapAdmin creates the configured administrator when no user exists
func (a *App) bootstrapAdmin(ctx context.Context) error {
	if a.Users.Count(ctx) > 0 {
		return nil
	}

	hash, err := service.HashPassword(a.config.Admin.Password, a.config.Economy.BcryptCost)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}

	admin := &domain.User{
		Username:      a.config.Admin.Username,
		PasswordHash:  hash,
		IsAdmin:       true,
		FirstName:     "Admin",
		LastName:      "Admin",
		Gold:          a.config.Economy.StartingGold,
		WorldLevel:    1,
		ProgressLevel: 1,
	}
	if err := a.Users.Create(ctx, admin); err != nil {
		return fmt.Errorf("failed to create default admin: %w", err)
	}

	a.logger.Warn("No users found, created default administrator", zap.String("username", admin.Username))
	return nil
}

// Reconcile removes listings whose pet is already held in an inventory.
// Such listings are left behind when a process stops between the two
// writes of a marketplace flow. It returns the number of listings removed.
func (a *App) Reconcile(ctx context.Context) (int, error) {
	listings, err := a.Listings.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list listings: %w", err)
	}

	removed := 0
	for _, l := range listings {
		owner, held := a.Users.PetOwner(ctx, l.PetID)
		if !held {
			continue
		}
		if _, err := a.Listings.Delete(ctx, l.PetID); err != nil {
			return removed, fmt.Errorf("failed to remove stale listing: %w", err)
		}
		a.logger.Warn("Removed listing of a pet already in an inventory",
			zap.String("pet_id", l.PetID),
			zap.String("seller", l.Seller),
			zap.String("owner", owner),
		)
		removed++
	}
	return removed, nil
}

func (a *App) Close() error {
	a.logger.Info("Closing data stores")

	if err := a.Activity.Close(); err != nil {
		a.logger.Error("Failed to close activity log", zap.Error(err))
		return err
	}

	_ = a.logger.Sync()
	return nil
}
