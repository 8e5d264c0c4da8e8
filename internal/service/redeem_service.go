package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"pet-market/internal/domain"
	"pet-market/internal/repository"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// CodeSettings shapes generated codes: Segments groups of SegmentLength
// characters joined by '-'.
type CodeSettings struct {
	Segments      int
	SegmentLength int
	MaxAttempts   int
}

// DefaultCodeSettings produces codes like "XXXX-XXXX-XXXX"
var DefaultCodeSettings = CodeSettings{Segments: 3, SegmentLength: 4, MaxAttempts: 100}

// RedeemService defines the interface for gold codes
type RedeemService interface {
	Redeem(ctx context.Context, username, code string) (decimal.Decimal, error)
	Generate(ctx context.Context, value decimal.Decimal, count int) ([]domain.RedeemCode, error)
}

type redeemService struct {
	users    repository.UserRepository
	codes    repository.CodeRepository
	activity ActivityRecorder
	locks    *LockSet
	settings CodeSettings
	logger   *zap.Logger
}

// NewRedeemService creates a new instance of RedeemService
func NewRedeemService(
	users repository.UserRepository,
	codes repository.CodeRepository,
	activity ActivityRecorder,
	locks *LockSet,
	settings CodeSettings,
	logger *zap.Logger,
) RedeemService {
	if settings.Segments <= 0 || settings.SegmentLength <= 0 {
		settings.Segments = DefaultCodeSettings.Segments
		settings.SegmentLength = DefaultCodeSettings.SegmentLength
	}
	if settings.MaxAttempts <= 0 {
		settings.MaxAttempts = DefaultCodeSettings.MaxAttempts
	}
	return &redeemService{
		users:    users,
		codes:    codes,
		activity: activity,
		locks:    locks,
		settings: settings,
		logger:   logger,
	}
}

// Redeem exchanges an unused code for gold and returns the amount credited.
// The code is marked used and persisted before the balance is credited.
func (s *redeemService) Redeem(ctx context.Context, username, code string) (decimal.Decimal, error) {
	code = strings.ToUpper(strings.TrimSpace(code))

	release := s.locks.acquire(lockCodes, lockUsers)
	defer release()

	user, err := activeUser(ctx, s.users, username)
	if err != nil {
		return decimal.Zero, err
	}

	rc, err := s.codes.FindByCode(ctx, code)
	if err != nil || rc.IsUsed {
		return decimal.Zero, ErrCodeUnavailable
	}

	if err := ctx.Err(); err != nil {
		return decimal.Zero, err
	}

	if err := s.codes.MarkUsed(ctx, code); err != nil {
		return decimal.Zero, fmt.Errorf("failed to mark code used: %w", err)
	}

	user.Gold = user.Gold.Add(rc.Value)
	if err := s.users.Save(ctx, user); err != nil {
		s.logger.Error("Code consumed but gold was not credited",
			zap.String("username", user.Username),
			zap.String("code", code),
			zap.String("value", rc.Value.String()),
			zap.Error(err),
		)
		return decimal.Zero, fmt.Errorf("failed to credit gold: %w", err)
	}

	msg := fmt.Sprintf("redeemed code %s for %s gold", code, rc.Value)
	if err := recordActivity(ctx, s.activity, s.logger, user.Username, msg); err != nil {
		return rc.Value, err
	}
	return rc.Value, nil
}

// Generate creates count new unused codes worth value each
func (s *redeemService) Generate(ctx context.Context, value decimal.Decimal, count int) ([]domain.RedeemCode, error) {
	if !value.IsPositive() || count <= 0 {
		return nil, ErrInvalidAmount
	}

	release := s.locks.acquire(lockCodes)
	defer release()

	out := make([]domain.RedeemCode, 0, count)
	for i := 0; i < count; i++ {
		rc, err := s.generateOne(ctx, value)
		if err != nil {
			return out, err
		}
		out = append(out, rc)
	}

	msg := fmt.Sprintf("generated %d codes worth %s gold", len(out), value)
	if err := recordActivity(ctx, s.activity, s.logger, "", msg); err != nil {
		return out, err
	}
	return out, nil
}

func (s *redeemService) generateOne(ctx context.Context, value decimal.Decimal) (domain.RedeemCode, error) {
	for attempt := 0; attempt < s.settings.MaxAttempts; attempt++ {
		code, err := randomCode(s.settings.Segments, s.settings.SegmentLength)
		if err != nil {
			return domain.RedeemCode{}, fmt.Errorf("failed to generate code: %w", err)
		}
		if s.codes.Exists(ctx, code) {
			continue
		}

		rc := domain.RedeemCode{Code: code, Value: value}
		if err := s.codes.Create(ctx, rc); err != nil {
			if errors.Is(err, repository.ErrCodeAlreadyExists) {
				continue
			}
			return domain.RedeemCode{}, fmt.Errorf("failed to store code: %w", err)
		}
		return rc, nil
	}
	return domain.RedeemCode{}, ErrCodeSpaceExhausted
}

func randomCode(segments, length int) (string, error) {
	var b strings.Builder
	limit := big.NewInt(int64(len(codeAlphabet)))
	for i := 0; i < segments; i++ {
		if i > 0 {
			b.WriteByte('-')
		}
		for j := 0; j < length; j++ {
			n, err := rand.Int(rand.Reader, limit)
			if err != nil {
				return "", err
			}
			b.WriteByte(codeAlphabet[n.Int64()])
		}
	}
	return b.String(), nil
}
