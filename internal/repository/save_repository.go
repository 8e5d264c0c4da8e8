package repository

import (
	"context"
	"errors"
	"path/filepath"

	"pet-market/internal/codec"
	"pet-market/internal/domain"

	"go.uber.org/zap"
)

var ErrSaveNotFound = errors.New("no saved battle for this user")

// SaveRepository stores one interrupted battle per user
type SaveRepository interface {
	Load(ctx context.Context) error
	Save(ctx context.Context, save domain.SaveGame) error
	FindByUsername(ctx context.Context, username string) (domain.SaveGame, error)
	Delete(ctx context.Context, username string) (bool, error)
}

type saveRepository struct {
	table *fileTable[domain.SaveGame]
}

// NewSaveRepository creates a save store backed by saves.txt in dir
func NewSaveRepository(dir string, logger *zap.Logger) SaveRepository {
	return &saveRepository{
		table: newFileTable(
			filepath.Join(dir, SavesFile),
			codec.Saves,
			func(s domain.SaveGame) string { return s.Username },
			logger,
		),
	}
}

func (r *saveRepository) Load(ctx context.Context) error {
	return r.table.load(ctx)
}

// Save overwrites the user's slot
func (r *saveRepository) Save(ctx context.Context, save domain.SaveGame) error {
	return r.table.put(ctx, save)
}

func (r *saveRepository) FindByUsername(ctx context.Context, username string) (domain.SaveGame, error) {
	s, ok := r.table.get(username)
	if !ok {
		return domain.SaveGame{}, ErrSaveNotFound
	}
	return s, nil
}

func (r *saveRepository) Delete(ctx context.Context, username string) (bool, error) {
	return r.table.remove(ctx, username)
}
