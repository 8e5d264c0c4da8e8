package domain

import "github.com/shopspring/decimal"

// Product represents a pet template in the shop catalog
type Product struct {
	ID          string
	Name        string
	Description string
	Price       decimal.Decimal
	MaxHealth   int
	Level       int
	AttackPower int
	ImageName   string
}

// NewPet creates a freshly acquired pet at full health
func (p Product) NewPet(uniqueID string) Pet {
	return Pet{
		UniqueID:    uniqueID,
		ProductID:   p.ID,
		Name:        p.Name,
		Description: p.Description,
		ImageName:   p.ImageName,
		Level:       p.Level,
		MaxHealth:   p.MaxHealth,
		Health:      p.MaxHealth,
		AttackPower: p.AttackPower,
	}
}
