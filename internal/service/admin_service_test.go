package service

import (
	"context"
	"testing"

	"pet-market/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validProductInput() ProductInput {
	return ProductInput{
		ID:          "P100",
		Name:        "Storm Owl",
		Description: "Sees in the dark",
		Price:       gold(250),
		MaxHealth:   90,
		Level:       2,
		AttackPower: 18,
		ImageName:   "owl.png",
	}
}

func TestAdmin_RequiresAdministrator(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.addUser(t, "alice0001", 0)

	_, err := env.admin.AddProduct(ctx, "alice0001", validProductInput())
	assert.ErrorIs(t, err, ErrNotAdmin)
	assert.ErrorIs(t, env.admin.SetAnnouncement(ctx, "alice0001", "hi"), ErrNotAdmin)
	assert.ErrorIs(t, env.admin.GrantGold(ctx, "nobody", "alice0001", gold(5)), ErrNotAdmin)
	_, err = env.admin.ActivityFor(ctx, "alice0001", "", 10)
	assert.ErrorIs(t, err, ErrNotAdmin)
}

func TestAdmin_ProductLifecycle(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.addAdmin(t, "admin")
	env.addUser(t, "alice0001", 1000)

	in := validProductInput()
	_, err := env.admin.AddProduct(ctx, "admin", in)
	require.NoError(t, err)

	_, err = env.admin.AddProduct(ctx, "admin", in)
	assert.ErrorIs(t, err, repository.ErrProductAlreadyExists)

	bad := in
	bad.Name = "Storm|Owl"
	_, err = env.admin.AddProduct(ctx, "admin", bad)
	assert.ErrorIs(t, err, ErrInvalidInput)

	bad = in
	bad.Price = gold(0)
	_, err = env.admin.UpdateProduct(ctx, "admin", bad)
	assert.ErrorIs(t, err, ErrInvalidPrice)

	in.Price = gold(200)
	updated, err := env.admin.UpdateProduct(ctx, "admin", in)
	require.NoError(t, err)
	assert.True(t, updated.Price.Equal(gold(200)))

	pet := buyPet(t, env, "alice0001")
	assert.ErrorIs(t, env.admin.RemoveProduct(ctx, "admin", "P100"), ErrProductInUse)

	_, err = env.inventory.Sell(ctx, "alice0001", pet.UniqueID)
	require.NoError(t, err)
	require.NoError(t, env.admin.RemoveProduct(ctx, "admin", "P100"))
	assert.ErrorIs(t, env.admin.RemoveProduct(ctx, "admin", "P100"), repository.ErrProductNotFound)
}

func TestAdmin_BanAndGrantGold(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.addAdmin(t, "admin")
	env.addUser(t, "alice0001", 0)

	require.NoError(t, env.admin.GrantGold(ctx, "admin", "alice0001", gold(75)))
	assert.True(t, env.user(t, "alice0001").Gold.Equal(gold(75)))
	assert.ErrorIs(t, env.admin.GrantGold(ctx, "admin", "alice0001", gold(-5)), ErrInvalidAmount)

	require.NoError(t, env.admin.SetBanned(ctx, "admin", "alice0001", true))
	assert.True(t, env.user(t, "alice0001").IsBanned)
	assert.ErrorIs(t, env.admin.SetBanned(ctx, "admin", "admin", true), ErrInvalidInput)
	assert.ErrorIs(t, env.admin.SetBanned(ctx, "admin", "nobody", true), repository.ErrUserNotFound)

	require.NoError(t, env.admin.SetBanned(ctx, "admin", "alice0001", false))
	assert.False(t, env.user(t, "alice0001").IsBanned)
}

func TestAdmin_AnnouncementAndActivity(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.addAdmin(t, "admin")
	env.addUser(t, "alice0001", 0)

	require.NoError(t, env.admin.SetAnnouncement(ctx, "admin", "Double gold weekend"))
	assert.Equal(t, "Double gold weekend", env.admin.Announcement(ctx))

	require.NoError(t, env.admin.GrantGold(ctx, "admin", "alice0001", gold(10)))

	entries, err := env.admin.ActivityFor(ctx, "admin", "alice0001", 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "received 10 gold from admin", entries[0].Message)

	all, err := env.admin.ActivityFor(ctx, "admin", "", 0)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
