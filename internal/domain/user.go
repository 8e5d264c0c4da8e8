package domain

import "github.com/shopspring/decimal"

// User represents a player account together with the pets it owns
type User struct {
	Username      string
	PasswordHash  string
	IsAdmin       bool
	IsBanned      bool
	FirstName     string
	LastName      string
	ContactNum    string
	Gold          decimal.Decimal
	WorldLevel    int
	ProgressLevel int
	Inventory     []Pet
}

// Clone returns a deep copy so callers never share the inventory slice with a store
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	c := *u
	c.Inventory = append([]Pet(nil), u.Inventory...)
	return &c
}

// CanAfford reports whether the balance covers the given amount
func (u *User) CanAfford(amount decimal.Decimal) bool {
	return u.Gold.GreaterThanOrEqual(amount)
}

// PetIndex returns the inventory position of a pet or -1
func (u *User) PetIndex(uniqueID string) int {
	for i, p := range u.Inventory {
		if p.UniqueID == uniqueID {
			return i
		}
	}
	return -1
}

// TakePet removes a pet from the inventory and returns it
func (u *User) TakePet(uniqueID string) (Pet, bool) {
	i := u.PetIndex(uniqueID)
	if i < 0 {
		return Pet{}, false
	}
	pet := u.Inventory[i]
	u.Inventory = append(u.Inventory[:i:i], u.Inventory[i+1:]...)
	return pet, true
}
