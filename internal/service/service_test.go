package service

import (
	"context"
	"testing"

	"pet-market/internal/domain"
	"pet-market/internal/repository"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// testEnv wires every service to file-backed stores in a temp directory
type testEnv struct {
	dir           string
	products      repository.ProductRepository
	users         repository.UserRepository
	listings      repository.ListingRepository
	codes         repository.CodeRepository
	ledger        repository.PurchaseLedger
	saves         repository.SaveRepository
	announcements repository.AnnouncementRepository
	activity      *repository.ActivityLog

	accounts  AccountService
	shop      ShopService
	market    MarketService
	redeem    RedeemService
	inventory InventoryService
	admin     AdminService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()
	logger := zap.NewNop()
	dir := t.TempDir()

	env := &testEnv{dir: dir}
	env.products = repository.NewProductRepository(dir, logger)
	env.users = repository.NewUserRepository(dir, env.products, logger)
	env.listings = repository.NewListingRepository(dir, logger)
	env.codes = repository.NewCodeRepository(dir, logger)
	env.ledger = repository.NewPurchaseLedger(dir, logger)
	env.saves = repository.NewSaveRepository(dir, logger)
	env.announcements = repository.NewAnnouncementRepository(dir, logger)

	require.NoError(t, env.products.Load(ctx))
	require.NoError(t, env.users.Load(ctx))
	require.NoError(t, env.listings.Load(ctx))
	require.NoError(t, env.codes.Load(ctx))
	require.NoError(t, env.saves.Load(ctx))
	require.NoError(t, env.announcements.Load(ctx))

	activity, err := repository.NewActivityLog(dir)
	require.NoError(t, err)
	t.Cleanup(func() { _ = activity.Close() })
	env.activity = activity

	locks := NewLockSet()
	env.accounts = NewAccountService(env.users, env.announcements, env.saves, activity, locks, decimal.Zero, 4, logger)
	env.shop = NewShopService(env.users, env.products, env.ledger, activity, locks, logger)
	env.market = NewMarketService(env.users, env.products, env.listings, activity, locks, logger)
	env.redeem = NewRedeemService(env.users, env.codes, activity, locks, DefaultCodeSettings, logger)
	env.inventory = NewInventoryService(env.users, env.products, activity, locks, DefaultSellBackRatio, logger)
	env.admin = NewAdminService(env.users, env.products, env.listings, env.announcements, activity, locks, logger)
	return env
}

func (e *testEnv) addProduct(t *testing.T, id, name string, price int64) domain.Product {
	t.Helper()
	p := domain.Product{
		ID:          id,
		Name:        name,
		Description: name + " pet",
		Price:       decimal.NewFromInt(price),
		MaxHealth:   100,
		Level:       1,
		AttackPower: 10,
		ImageName:   id + ".png",
	}
	require.NoError(t, e.products.Create(context.Background(), p))
	return p
}

func (e *testEnv) addUser(t *testing.T, username string, gold int64) {
	t.Helper()
	require.NoError(t, e.users.Create(context.Background(), &domain.User{
		Username: username,
		Gold:     decimal.NewFromInt(gold),
	}))
}

func (e *testEnv) addAdmin(t *testing.T, username string) {
	t.Helper()
	require.NoError(t, e.users.Create(context.Background(), &domain.User{Username: username, IsAdmin: true}))
}

func (e *testEnv) user(t *testing.T, username string) *domain.User {
	t.Helper()
	u, err := e.users.FindByUsername(context.Background(), username)
	require.NoError(t, err)
	return u
}

// petHolders counts the places a pet id appears across inventories and listings
func (e *testEnv) petHolders(t *testing.T) map[string]int {
	t.Helper()
	ctx := context.Background()
	holders := make(map[string]int)

	users, err := e.users.List(ctx)
	require.NoError(t, err)
	for _, u := range users {
		for _, p := range u.Inventory {
			holders[p.UniqueID]++
		}
	}

	listings, err := e.listings.List(ctx)
	require.NoError(t, err)
	for _, l := range listings {
		holders[l.PetID]++
	}
	return holders
}

func gold(n int64) decimal.Decimal {
	return decimal.NewFromInt(n)
}
