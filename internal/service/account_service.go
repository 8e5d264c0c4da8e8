package service

import (
	"context"
	"errors"
	"fmt"

	"pet-market/internal/domain"
	"pet-market/internal/repository"
	"pet-market/internal/validation"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// DefaultBcryptCost is used when no cost is configured
const DefaultBcryptCost = 10

// RegisterInput is the data a new player supplies
type RegisterInput struct {
	Username   string `validate:"required,alphanum,min=3,max=20"`
	Password   string `validate:"required,min=6,max=72"`
	FirstName  string `validate:"required,max=50,nopipe"`
	LastName   string `validate:"required,max=50,nopipe"`
	ContactNum string `validate:"omitempty,numeric,max=15"`
}

// AccountService defines the interface for account business logic
type AccountService interface {
	Register(ctx context.Context, input RegisterInput) (*domain.User, error)
	Login(ctx context.Context, username, password string) (*Session, error)
	Profile(ctx context.Context, username string) (*domain.User, error)
}

type accountService struct {
	users         repository.UserRepository
	announcements repository.AnnouncementRepository
	saves         repository.SaveRepository
	activity      ActivityRecorder
	locks         *LockSet
	startingGold  decimal.Decimal
	bcryptCost    int
	logger        *zap.Logger
}

// NewAccountService creates a new instance of AccountService
func NewAccountService(
	users repository.UserRepository,
	announcements repository.AnnouncementRepository,
	saves repository.SaveRepository,
	activity ActivityRecorder,
	locks *LockSet,
	startingGold decimal.Decimal,
	bcryptCost int,
	logger *zap.Logger,
) AccountService {
	if bcryptCost == 0 {
		bcryptCost = DefaultBcryptCost
	}
	if startingGold.IsNegative() {
		startingGold = decimal.Zero
	}
	return &accountService{
		users:         users,
		announcements: announcements,
		saves:         saves,
		activity:      activity,
		locks:         locks,
		startingGold:  startingGold,
		bcryptCost:    bcryptCost,
		logger:        logger,
	}
}

// Register creates a new player account with a hashed password
func (s *accountService) Register(ctx context.Context, input RegisterInput) (*domain.User, error) {
	if err := validation.Struct(input); err != nil {
		return nil, invalidInput(err)
	}

	hashedPassword, err := HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &domain.User{
		Username:      input.Username,
		PasswordHash:  hashedPassword,
		FirstName:     input.FirstName,
		LastName:      input.LastName,
		ContactNum:    input.ContactNum,
		Gold:          s.startingGold,
		WorldLevel:    1,
		ProgressLevel: 1,
	}

	release := s.locks.acquire(lockUsers)
	defer release()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrUserAlreadyExists) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	if err := recordActivity(ctx, s.activity, s.logger, user.Username, "registered"); err != nil {
		return user.Clone(), err
	}
	return user.Clone(), nil
}

// Login verifies credentials and opens a session. The session starts with
// the current announcement and a reminder of any unfinished battle.
func (s *accountService) Login(ctx context.Context, username, password string) (*Session, error) {
	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if err := VerifyPassword(user.PasswordHash, password); err != nil {
		return nil, ErrInvalidCredentials
	}
	if user.IsBanned {
		return nil, ErrUserBanned
	}

	session := NewSession(user.Username, user.IsAdmin)
	if text := s.announcements.Get(ctx); text != "" {
		session.Alert("Announcement: " + text)
	}
	if _, err := s.saves.FindByUsername(ctx, user.Username); err == nil {
		session.Alert("You have an unfinished battle")
	}
	return session, nil
}

// Profile returns the user together with its inventory
func (s *accountService) Profile(ctx context.Context, username string) (*domain.User, error) {
	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// HashPassword hashes a password using bcrypt
func HashPassword(password string, cost int) (string, error) {
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hashedBytes), nil
}

// VerifyPassword verifies a password against a bcrypt hash
func VerifyPassword(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}
