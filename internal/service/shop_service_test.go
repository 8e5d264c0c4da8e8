package service

import (
	"context"
	"sync"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShopPurchase_InsufficientFundsChangesNothing(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.addProduct(t, "P001", "Sparkle Fox", 300)
	env.addUser(t, "alice0001", 0)

	_, err := env.shop.Purchase(ctx, "alice0001", 1)
	assert.ErrorIs(t, err, ErrInsufficientFunds)

	alice := env.user(t, "alice0001")
	assert.True(t, alice.Gold.IsZero())
	assert.Empty(t, alice.Inventory)

	history, err := env.shop.History(ctx, "alice0001")
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestShopPurchase_DebitsAndRecords(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.addProduct(t, "P001", "Sparkle Fox", 300)
	env.addProduct(t, "P002", "Mud Toad", 120)
	env.addUser(t, "alice0001", 500)

	pet, err := env.shop.Purchase(ctx, "alice0001", 2)
	require.NoError(t, err)
	assert.Equal(t, "P002", pet.ProductID)
	assert.Equal(t, pet.MaxHealth, pet.Health, "new pets start at full health")
	assert.NotEmpty(t, pet.UniqueID)

	alice := env.user(t, "alice0001")
	assert.True(t, alice.Gold.Equal(gold(380)))
	require.Len(t, alice.Inventory, 1)
	assert.Equal(t, pet.UniqueID, alice.Inventory[0].UniqueID)

	history, err := env.shop.History(ctx, "alice0001")
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "Mud Toad", history[0].ProductName)
	assert.True(t, history[0].PricePaid.Equal(gold(120)))

	entries, err := env.activity.Recent(ctx, "alice0001", 0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Contains(t, entries[0].Message, "bought Mud Toad")
}

func TestShopPurchase_InvalidSelection(t *testing.T) {
	env := newTestEnv(t)
	env.addProduct(t, "P001", "Sparkle Fox", 300)
	env.addUser(t, "alice0001", 1000)

	for _, pos := range []int{0, -1, 2} {
		_, err := env.shop.Purchase(context.Background(), "alice0001", pos)
		assert.ErrorIs(t, err, ErrInvalidSelection, "position %d", pos)
	}
}

func TestShopPurchase_BannedUserRejected(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.addProduct(t, "P001", "Sparkle Fox", 10)
	env.addUser(t, "alice0001", 1000)

	alice := env.user(t, "alice0001")
	alice.IsBanned = true
	require.NoError(t, env.users.Save(ctx, alice))

	_, err := env.shop.Purchase(ctx, "alice0001", 1)
	assert.ErrorIs(t, err, ErrUserBanned)
}

func TestShopTopSellers_TieGoesToFirstPurchased(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	for _, id := range []string{"A", "B", "C", "D"} {
		env.addProduct(t, id, "Pet "+id, 1)
	}
	env.addUser(t, "alice0001", 100)

	// positions: A=1 B=2 C=3 D=4
	for _, pos := range []int{1, 2, 3, 4, 1, 2, 4, 1, 2, 4, 4, 4} {
		_, err := env.shop.Purchase(ctx, "alice0001", pos)
		require.NoError(t, err)
	}

	top, err := env.shop.TopSellers(ctx, 3)
	require.NoError(t, err)
	require.Len(t, top, 3)
	assert.Equal(t, "D", top[0].Product.ID)
	assert.Equal(t, 5, top[0].Count)
	assert.Equal(t, "A", top[1].Product.ID)
	assert.Equal(t, "B", top[2].Product.ID)
	assert.Equal(t, "Pet A", top[1].Product.Name)
}

func TestProperty_ConcurrentPurchasesNeverOverspend(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 25
	properties := gopter.NewProperties(parameters)

	properties.Property("balance covers exactly the purchases that succeed", prop.ForAll(
		func(affordable, attempts int) bool {
			ctx := context.Background()
			env := newTestEnv(t)
			env.addProduct(t, "P001", "Sparkle Fox", 100)
			env.addUser(t, "alice0001", int64(affordable*100))

			var wg sync.WaitGroup
			var mu sync.Mutex
			succeeded := 0
			for i := 0; i < attempts; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					if _, err := env.shop.Purchase(ctx, "alice0001", 1); err == nil {
						mu.Lock()
						succeeded++
						mu.Unlock()
					}
				}()
			}
			wg.Wait()

			want := affordable
			if attempts < want {
				want = attempts
			}
			alice := env.user(t, "alice0001")
			if succeeded != want || len(alice.Inventory) != want {
				t.Logf("FAIL: Expected %d purchases, got %d (inventory %d)", want, succeeded, len(alice.Inventory))
				return false
			}
			return !alice.Gold.IsNegative()
		},
		gen.IntRange(0, 4),
		gen.IntRange(1, 8),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}
