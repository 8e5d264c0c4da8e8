package service

import (
	"context"
	"errors"
	"fmt"

	"pet-market/internal/domain"
	"pet-market/internal/repository"
	"pet-market/internal/validation"

	"go.uber.org/zap"
)

// ActivityRecorder appends human-readable entries to the audit trail
type ActivityRecorder interface {
	Record(ctx context.Context, username, message string) error
}

// ActivityJournal is an ActivityRecorder that can also be read back
type ActivityJournal interface {
	ActivityRecorder
	Recent(ctx context.Context, username string, limit int) ([]repository.ActivityEntry, error)
}

// activeUser loads a user that is allowed to trade
func activeUser(ctx context.Context, users repository.UserRepository, username string) (*domain.User, error) {
	user, err := users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if user.IsBanned {
		return nil, ErrUserBanned
	}
	return user, nil
}

func requireAdmin(ctx context.Context, users repository.UserRepository, actor string) error {
	user, err := users.FindByUsername(ctx, actor)
	if err != nil || !user.IsAdmin {
		return ErrNotAdmin
	}
	return nil
}

// selectAt translates a 1-based menu position
func selectAt[T any](items []T, position int) (T, error) {
	var zero T
	if position < 1 || position > len(items) {
		return zero, ErrInvalidSelection
	}
	return items[position-1], nil
}

func invalidInput(err error) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, validation.Summary(err))
}

// recordActivity writes an audit entry after a flow has committed. A failure
// does not undo the flow.
func recordActivity(ctx context.Context, activity ActivityRecorder, logger *zap.Logger, username, message string) error {
	if activity == nil {
		return nil
	}
	if err := activity.Record(ctx, username, message); err != nil {
		logger.Error("Failed to record activity",
			zap.String("username", username),
			zap.String("message", message),
			zap.Error(err),
		)
		return fmt.Errorf("failed to record activity: %w", err)
	}
	return nil
}
