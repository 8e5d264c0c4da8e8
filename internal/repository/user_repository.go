package repository

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"

	"pet-market/internal/codec"
	"pet-market/internal/domain"

	"go.uber.org/zap"
)

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrUserAlreadyExists = errors.New("user with this username already exists")
)

// UserRepository defines the interface for user data access. Users and their
// inventories are one store: every write rewrites users.txt and then
// inventories.txt.
type UserRepository interface {
	Load(ctx context.Context) error
	Create(ctx context.Context, user *domain.User) error
	Save(ctx context.Context, users ...*domain.User) error
	Delete(ctx context.Context, username string) (bool, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	List(ctx context.Context) ([]*domain.User, error)
	Count(ctx context.Context) int
	PetOwner(ctx context.Context, petID string) (string, bool)
}

type userRepository struct {
	mu        sync.RWMutex
	usersPath string
	invPath   string
	products  ProductRepository
	logger    *zap.Logger

	users map[string]*domain.User
	order []string
}

// NewUserRepository creates a user store backed by users.txt and
// inventories.txt in dir. Inventory rows are resolved against products.
func NewUserRepository(dir string, products ProductRepository, logger *zap.Logger) UserRepository {
	return &userRepository{
		usersPath: filepath.Join(dir, UsersFile),
		invPath:   filepath.Join(dir, InventoriesFile),
		products:  products,
		logger:    logger,
		users:     make(map[string]*domain.User),
	}
}

// Load reads users first, then attaches inventory rows to their owners.
// The product catalog must already be loaded.
func (r *userRepository) Load(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	usersLog := r.logger.With(zap.String("file", r.usersPath))
	records, err := readRecords(r.usersPath, codec.Users, usersLog)
	if err != nil {
		return err
	}

	r.users = make(map[string]*domain.User, len(records))
	r.order = r.order[:0]
	for i := range records {
		u := records[i]
		if _, dup := r.users[u.Username]; dup {
			usersLog.Warn("Duplicate username in data file, keeping the later record", zap.String("username", u.Username))
		} else {
			r.order = append(r.order, u.Username)
		}
		r.users[u.Username] = &u
	}

	invLog := r.logger.With(zap.String("file", r.invPath))
	rows, err := readRecords(r.invPath, codec.Inventory, invLog)
	if err != nil {
		return err
	}

	seen := make(map[string]string, len(rows))
	for _, row := range rows {
		owner, ok := r.users[row.Owner]
		if !ok {
			invLog.Warn("Skipping pet of unknown owner",
				zap.String("pet_id", row.Pet.UniqueID),
				zap.String("owner", row.Owner),
			)
			continue
		}
		if prev, dup := seen[row.Pet.UniqueID]; dup {
			invLog.Error("Skipping pet id already held by another inventory",
				zap.String("pet_id", row.Pet.UniqueID),
				zap.String("owner", row.Owner),
				zap.String("held_by", prev),
			)
			continue
		}

		product, err := r.products.FindByID(ctx, row.Pet.ProductID)
		if err != nil {
			invLog.Warn("Skipping pet with unknown product",
				zap.String("pet_id", row.Pet.UniqueID),
				zap.String("product_id", row.Pet.ProductID),
			)
			continue
		}

		owner.Inventory = append(owner.Inventory, restorePet(product, row))
		seen[row.Pet.UniqueID] = row.Owner
	}

	r.logger.Debug("Loaded users", zap.Int("users", len(r.users)), zap.Int("pets", len(seen)))
	return nil
}

// restorePet rebuilds an owned pet from its template and the persisted row
func restorePet(product domain.Product, row codec.InventoryRow) domain.Pet {
	pet := product.NewPet(row.Pet.UniqueID)
	pet.Name = row.Pet.Name
	pet.Level = row.Pet.Level
	pet.Exp = row.Pet.Exp
	if row.HasMaxHealth {
		pet.MaxHealth = row.Pet.MaxHealth
		pet.Health = row.Pet.MaxHealth
	}
	if row.HasAttack {
		pet.AttackPower = row.Pet.AttackPower
	}
	return pet
}

// Create stores a new user
func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.users[user.Username]; exists {
		return ErrUserAlreadyExists
	}
	return r.commit([]*domain.User{user})
}

// Save inserts or replaces users with one rewrite of the store. Several
// users written together land in the same file replacement.
func (r *userRepository) Save(ctx context.Context, users ...*domain.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(users) == 0 {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	return r.commit(users)
}

// Delete removes a user and the pets it owns
func (r *userRepository) Delete(ctx context.Context, username string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[username]; !ok {
		return false, nil
	}

	order := make([]string, 0, len(r.order))
	for _, name := range r.order {
		if name != username {
			order = append(order, name)
		}
	}

	if err := r.write(order, r.users); err != nil {
		return false, err
	}

	delete(r.users, username)
	r.order = order
	return true, nil
}

// FindByUsername returns a copy of the user; changes need Save
func (r *userRepository) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[username]
	if !ok {
		return nil, ErrUserNotFound
	}
	return u.Clone(), nil
}

func (r *userRepository) List(ctx context.Context) ([]*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domain.User, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.users[name].Clone())
	}
	return out, nil
}

func (r *userRepository) Count(ctx context.Context) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.users)
}

// PetOwner finds which inventory holds a pet
func (r *userRepository) PetOwner(ctx context.Context, petID string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, name := range r.order {
		if r.users[name].PetIndex(petID) >= 0 {
			return name, true
		}
	}
	return "", false
}

// commit writes the store with the given users applied and, on success,
// swaps them into memory. Caller holds the write lock.
func (r *userRepository) commit(changed []*domain.User) error {
	next := make(map[string]*domain.User, len(r.users)+len(changed))
	for name, u := range r.users {
		next[name] = u
	}
	order := append([]string(nil), r.order...)
	for _, u := range changed {
		if _, exists := next[u.Username]; !exists {
			order = append(order, u.Username)
		}
		next[u.Username] = u.Clone()
	}

	if err := r.write(order, next); err != nil {
		return err
	}

	r.users = next
	r.order = order
	return nil
}

func (r *userRepository) write(order []string, users map[string]*domain.User) error {
	records := make([]domain.User, 0, len(order))
	var rows []codec.InventoryRow
	for _, name := range order {
		u := users[name]
		records = append(records, *u)
		for _, pet := range u.Inventory {
			rows = append(rows, codec.InventoryRow{Owner: u.Username, Pet: pet, HasMaxHealth: true, HasAttack: true})
		}
	}

	if err := writeFileAtomic(r.usersPath, codec.Users.Marshal(records)); err != nil {
		r.logger.Error("Failed to persist users, in-memory state left unchanged", zap.Error(err))
		return err
	}
	if err := writeFileAtomic(r.invPath, codec.Inventory.Marshal(rows)); err != nil {
		r.logger.Error("Failed to persist inventories after users were written", zap.Error(err))
		return fmt.Errorf("users saved but inventories were not: %w", err)
	}
	return nil
}
