package service

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestInventorySell_RefundsShareOfPrice(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.addProduct(t, "P001", "Sparkle Fox", 300)
	env.addUser(t, "alice0001", 300)
	pet := buyPet(t, env, "alice0001")

	refund, err := env.inventory.Sell(ctx, "alice0001", pet.UniqueID)
	require.NoError(t, err)
	assert.True(t, refund.Equal(gold(150)))

	alice := env.user(t, "alice0001")
	assert.True(t, alice.Gold.Equal(gold(150)))
	assert.Empty(t, alice.Inventory)

	listings, _ := env.market.Listings(ctx)
	assert.Empty(t, listings, "selling back creates no listing")
	history, _ := env.shop.History(ctx, "alice0001")
	assert.Len(t, history, 1, "selling back creates no purchase")

	_, err = env.inventory.Sell(ctx, "alice0001", pet.UniqueID)
	assert.ErrorIs(t, err, ErrPetNotOwned)
}

func TestInventorySell_RemovedProductSellsForNothing(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.addProduct(t, "P001", "Sparkle Fox", 300)
	env.addUser(t, "alice0001", 300)
	pet := buyPet(t, env, "alice0001")
	require.NoError(t, env.products.Delete(ctx, "P001"))

	refund, err := env.inventory.Sell(ctx, "alice0001", pet.UniqueID)
	require.NoError(t, err)
	assert.True(t, refund.IsZero())
	assert.Empty(t, env.user(t, "alice0001").Inventory)
}

func TestInventoryRename(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.addProduct(t, "P001", "Sparkle Fox", 10)
	env.addUser(t, "alice0001", 10)
	pet := buyPet(t, env, "alice0001")

	tests := map[string]struct {
		name    string
		wantErr error
	}{
		"valid":          {name: "Sir Fluff", wantErr: nil},
		"empty":          {name: "", wantErr: ErrInvalidInput},
		"delimiter":      {name: "Fl|uff", wantErr: ErrInvalidInput},
		"too long":       {name: "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456", wantErr: ErrInvalidInput},
		"exactly at max": {name: "ABCDEFGHIJKLMNOPQRSTUVWXYZ012345", wantErr: nil},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			err := env.inventory.Rename(ctx, "alice0001", pet.UniqueID, tt.name)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			inv, err := env.inventory.Inventory(ctx, "alice0001")
			require.NoError(t, err)
			assert.Equal(t, tt.name, inv[0].Name)
		})
	}

	assert.ErrorIs(t, env.inventory.Rename(ctx, "alice0001", "missing", "Rex"), ErrPetNotOwned)
}

func TestInventorySell_RatioIsClampedToShareOfPrice(t *testing.T) {
	tests := map[string]struct {
		ratio      decimal.Decimal
		wantRefund decimal.Decimal
	}{
		"negative ratio refunds nothing": {ratio: decimal.NewFromInt(-1), wantRefund: gold(0)},
		"ratio above one refunds price":  {ratio: decimal.NewFromInt(3), wantRefund: gold(300)},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			env := newTestEnv(t)
			env.inventory = NewInventoryService(env.users, env.products, env.activity, NewLockSet(), tt.ratio, zap.NewNop())
			env.addProduct(t, "P001", "Sparkle Fox", 300)
			env.addUser(t, "alice0001", 300)
			pet := buyPet(t, env, "alice0001")

			refund, err := env.inventory.Sell(ctx, "alice0001", pet.UniqueID)
			require.NoError(t, err)
			assert.True(t, refund.Equal(tt.wantRefund), "refund %s", refund)
			assert.False(t, env.user(t, "alice0001").Gold.IsNegative())
		})
	}
}
