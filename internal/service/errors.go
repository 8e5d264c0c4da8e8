package service

import "errors"

// Business rule violations. A flow that returns one of these has not
// mutated any store.
var (
	ErrInvalidSelection   = errors.New("invalid selection")
	ErrInvalidInput       = errors.New("invalid input")
	ErrInvalidPrice       = errors.New("price must be greater than zero")
	ErrInvalidAmount      = errors.New("amount must be greater than zero")
	ErrInsufficientFunds  = errors.New("insufficient gold")
	ErrSelfTrade          = errors.New("cannot buy your own listing")
	ErrSellerGone         = errors.New("seller no longer exists, listing removed")
	ErrProductGone        = errors.New("product no longer exists in the catalog")
	ErrProductInUse       = errors.New("product is still owned or listed")
	ErrStaleListing       = errors.New("pet is already owned, listing removed")
	ErrPetNotOwned        = errors.New("pet not found in inventory")
	ErrNotAdmin           = errors.New("administrator privileges required")
	ErrCodeUnavailable    = errors.New("code is invalid or has already been used")
	ErrCodeSpaceExhausted = errors.New("could not generate a unique code")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUserBanned         = errors.New("account is banned")
)
