package repository

import (
	"context"
	"errors"
	"path/filepath"

	"pet-market/internal/codec"
	"pet-market/internal/domain"

	"go.uber.org/zap"
)

var (
	ErrCodeNotFound      = errors.New("redeem code not found")
	ErrCodeAlreadyExists = errors.New("redeem code already exists")
)

// CodeRepository defines the interface for redeem code data access
type CodeRepository interface {
	Load(ctx context.Context) error
	Create(ctx context.Context, code domain.RedeemCode) error
	MarkUsed(ctx context.Context, code string) error
	FindByCode(ctx context.Context, code string) (domain.RedeemCode, error)
	Exists(ctx context.Context, code string) bool
	List(ctx context.Context) ([]domain.RedeemCode, error)
}

type codeRepository struct {
	table *fileTable[domain.RedeemCode]
}

// NewCodeRepository creates a code store backed by codes.txt in dir
func NewCodeRepository(dir string, logger *zap.Logger) CodeRepository {
	return &codeRepository{
		table: newFileTable(
			filepath.Join(dir, CodesFile),
			codec.Codes,
			func(c domain.RedeemCode) string { return c.Code },
			logger,
		),
	}
}

func (r *codeRepository) Load(ctx context.Context) error {
	return r.table.load(ctx)
}

func (r *codeRepository) Create(ctx context.Context, code domain.RedeemCode) error {
	return r.table.insert(ctx, code, ErrCodeAlreadyExists)
}

// MarkUsed flips the used flag and persists the store
func (r *codeRepository) MarkUsed(ctx context.Context, code string) error {
	return r.table.update(ctx, code, ErrCodeNotFound, func(rc domain.RedeemCode) domain.RedeemCode {
		rc.IsUsed = true
		return rc
	})
}

func (r *codeRepository) FindByCode(ctx context.Context, code string) (domain.RedeemCode, error) {
	rc, ok := r.table.get(code)
	if !ok {
		return domain.RedeemCode{}, ErrCodeNotFound
	}
	return rc, nil
}

func (r *codeRepository) Exists(ctx context.Context, code string) bool {
	_, ok := r.table.get(code)
	return ok
}

func (r *codeRepository) List(ctx context.Context) ([]domain.RedeemCode, error) {
	return r.table.list(), nil
}
