package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Pet is an owned creature instance derived from a Product.
// Name, level and health are independent of the template once acquired.
type Pet struct {
	UniqueID    string
	ProductID   string
	Name        string
	Description string
	ImageName   string
	Level       int
	MaxHealth   int
	Health      int
	AttackPower int
	Exp         int
}

func (p *Pet) DisplayName() string { return p.Name }
func (p *Pet) HP() int             { return p.Health }
func (p *Pet) MaxHP() int          { return p.MaxHealth }
func (p *Pet) Attack() int         { return p.AttackPower }
func (p *Pet) Defeated() bool      { return p.Health <= 0 }

func (p *Pet) TakeDamage(n int) {
	p.Health = clampHealth(p.Health-n, p.MaxHealth)
}

// Listing is an active marketplace offer. It carries a snapshot of the pet
// taken at listing time, so catalog edits never change what is on sale.
type Listing struct {
	PetID       string
	Seller      string
	Price       decimal.Decimal
	ProductID   string
	PetName     string
	PetLevel    int
	PetHealth   int
	PetAttack   int
	Description string
	PetExp      int
}

// NewListing snapshots a pet for sale
func NewListing(seller string, pet Pet, price decimal.Decimal) Listing {
	return Listing{
		PetID:       pet.UniqueID,
		Seller:      seller,
		Price:       price,
		ProductID:   pet.ProductID,
		PetName:     pet.Name,
		PetLevel:    pet.Level,
		PetHealth:   pet.MaxHealth,
		PetAttack:   pet.AttackPower,
		Description: pet.Description,
		PetExp:      pet.Exp,
	}
}

// RestorePet rebuilds the listed pet from its template and overlays the
// snapshot. The unique id is preserved.
func (l Listing) RestorePet(template Product) Pet {
	pet := template.NewPet(l.PetID)
	pet.Name = l.PetName
	pet.Level = l.PetLevel
	pet.MaxHealth = l.PetHealth
	pet.Health = l.PetHealth
	pet.AttackPower = l.PetAttack
	pet.Exp = l.PetExp
	return pet
}

// Purchase is a completed shop purchase
type Purchase struct {
	Username    string
	ProductID   string
	ProductName string
	PricePaid   decimal.Decimal
	Timestamp   time.Time
}

// RedeemCode is a single-use token exchangeable for gold
type RedeemCode struct {
	Code   string
	Value  decimal.Decimal
	IsUsed bool
}

func clampHealth(hp, max int) int {
	if hp < 0 {
		return 0
	}
	if hp > max {
		return max
	}
	return hp
}
