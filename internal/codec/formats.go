package codec

import (
	"time"

	"pet-market/internal/domain"
)

// Users: username|password|isAdmin|firstName|lastName|contactNum|goldBalance|worldLevel|progressLevel[|isBanned]
var Users = &Format[domain.User]{
	Columns: []string{
		"username", "password", "isAdmin", "firstName", "lastName", "contactNum",
		"goldBalance", "worldLevel", "progressLevel", "isBanned",
	},
	MinFields: 9,
	encode: func(u domain.User) []string {
		return []string{
			u.Username,
			u.PasswordHash,
			btoa(u.IsAdmin),
			u.FirstName,
			u.LastName,
			u.ContactNum,
			u.Gold.String(),
			itoa(u.WorldLevel),
			itoa(u.ProgressLevel),
			btoa(u.IsBanned),
		}
	},
	decode: func(f *Fields) domain.User {
		return domain.User{
			Username:      f.String(0),
			PasswordHash:  f.String(1),
			IsAdmin:       f.Bool(2, "isAdmin"),
			FirstName:     f.String(3),
			LastName:      f.String(4),
			ContactNum:    f.String(5),
			Gold:          f.Decimal(6, "goldBalance"),
			WorldLevel:    f.Int(7, "worldLevel"),
			ProgressLevel: f.Int(8, "progressLevel"),
			IsBanned:      f.OptBool(9, "isBanned", false),
		}
	},
}

// InventoryRow is one owned pet as stored in inventories.txt. Only the
// fields that can diverge from the product template are persisted.
type InventoryRow struct {
	Owner string
	Pet   domain.Pet
	// HasMaxHealth and HasAttack are false for rows written before the stat
	// columns existed; the loader then takes the value from the template.
	HasMaxHealth bool
	HasAttack    bool
}

// Inventory: uniqueId|ownerUsername|productId|customName|level[|maxHealth|attackPower|exp]
var Inventory = &Format[InventoryRow]{
	Columns: []string{
		"uniqueId", "ownerUsername", "productId", "customName", "level",
		"maxHealth", "attackPower", "exp",
	},
	MinFields: 5,
	encode: func(r InventoryRow) []string {
		return []string{
			r.Pet.UniqueID,
			r.Owner,
			r.Pet.ProductID,
			r.Pet.Name,
			itoa(r.Pet.Level),
			itoa(r.Pet.MaxHealth),
			itoa(r.Pet.AttackPower),
			itoa(r.Pet.Exp),
		}
	},
	decode: func(f *Fields) InventoryRow {
		row := InventoryRow{
			Owner: f.String(1),
			Pet: domain.Pet{
				UniqueID:  f.String(0),
				ProductID: f.String(2),
				Name:      f.String(3),
				Level:     f.Int(4, "level"),
			},
			HasMaxHealth: f.Present(5),
			HasAttack:    f.Present(6),
		}
		row.Pet.MaxHealth = f.OptInt(5, "maxHealth", 0)
		row.Pet.AttackPower = f.OptInt(6, "attackPower", 0)
		row.Pet.Exp = f.OptInt(7, "exp", 0)
		return row
	},
}

// Products: productId|name|description|price|maxHealth|level|attackPower[|imageName]
var Products = &Format[domain.Product]{
	Columns: []string{
		"productId", "name", "description", "price", "maxHealth", "level",
		"attackPower", "imageName",
	},
	MinFields: 7,
	encode: func(p domain.Product) []string {
		return []string{
			p.ID,
			p.Name,
			p.Description,
			p.Price.String(),
			itoa(p.MaxHealth),
			itoa(p.Level),
			itoa(p.AttackPower),
			p.ImageName,
		}
	},
	decode: func(f *Fields) domain.Product {
		return domain.Product{
			ID:          f.String(0),
			Name:        f.String(1),
			Description: f.String(2),
			Price:       f.Decimal(3, "price"),
			MaxHealth:   f.Int(4, "maxHealth"),
			Level:       f.Int(5, "level"),
			AttackPower: f.Int(6, "attackPower"),
			ImageName:   f.String(7),
		}
	},
}

// Listings: uniquePetId|sellerUsername|price|productId|petName|petLevel|petHealth|petAttack|description[|petExp]
var Listings = &Format[domain.Listing]{
	Columns: []string{
		"uniquePetId", "sellerUsername", "price", "productId", "petName",
		"petLevel", "petHealth", "petAttack", "description", "petExp",
	},
	MinFields: 9,
	encode: func(l domain.Listing) []string {
		return []string{
			l.PetID,
			l.Seller,
			l.Price.String(),
			l.ProductID,
			l.PetName,
			itoa(l.PetLevel),
			itoa(l.PetHealth),
			itoa(l.PetAttack),
			l.Description,
			itoa(l.PetExp),
		}
	},
	decode: func(f *Fields) domain.Listing {
		return domain.Listing{
			PetID:       f.String(0),
			Seller:      f.String(1),
			Price:       f.Decimal(2, "price"),
			ProductID:   f.String(3),
			PetName:     f.String(4),
			PetLevel:    f.Int(5, "petLevel"),
			PetHealth:   f.Int(6, "petHealth"),
			PetAttack:   f.Int(7, "petAttack"),
			Description: f.String(8),
			PetExp:      f.OptInt(9, "petExp", 0),
		}
	},
}

// Purchases: username|productId|productName|pricePaid|timestampIso
var Purchases = &Format[domain.Purchase]{
	Columns:   []string{"username", "productId", "productName", "pricePaid", "timestampIso"},
	MinFields: 5,
	encode: func(p domain.Purchase) []string {
		return []string{
			p.Username,
			p.ProductID,
			p.ProductName,
			p.PricePaid.String(),
			p.Timestamp.UTC().Format(time.RFC3339),
		}
	},
	decode: func(f *Fields) domain.Purchase {
		return domain.Purchase{
			Username:    f.String(0),
			ProductID:   f.String(1),
			ProductName: f.String(2),
			PricePaid:   f.Decimal(3, "pricePaid"),
			Timestamp:   f.Time(4, "timestampIso"),
		}
	},
}

// Codes: codeString|goldValue|isUsed
var Codes = &Format[domain.RedeemCode]{
	Columns:   []string{"codeString", "goldValue", "isUsed"},
	MinFields: 3,
	encode: func(c domain.RedeemCode) []string {
		return []string{c.Code, c.Value.String(), btoa(c.IsUsed)}
	},
	decode: func(f *Fields) domain.RedeemCode {
		return domain.RedeemCode{
			Code:   f.String(0),
			Value:  f.Decimal(1, "goldValue"),
			IsUsed: f.Bool(2, "isUsed"),
		}
	},
}

// Saves: username|secretWord|clue|guessedLetters|enemyName|enemyHp|enemyMaxHp|enemyAtk|enemyImageFolder|enemyLevel|playerPetId|playerPetHp
var Saves = &Format[domain.SaveGame]{
	Columns: []string{
		"username", "secretWord", "clue", "guessedLetters", "enemyName", "enemyHp",
		"enemyMaxHp", "enemyAtk", "enemyImageFolder", "enemyLevel", "playerPetId", "playerPetHp",
	},
	MinFields: 12,
	encode: func(s domain.SaveGame) []string {
		return []string{
			s.Username,
			s.SecretWord,
			s.Clue,
			s.GuessedLetters,
			s.Enemy.Name,
			itoa(s.Enemy.Health),
			itoa(s.Enemy.MaxHealth),
			itoa(s.Enemy.AttackPower),
			s.Enemy.ImageFolder,
			itoa(s.Enemy.Level),
			s.PlayerPetID,
			itoa(s.PlayerPetHP),
		}
	},
	decode: func(f *Fields) domain.SaveGame {
		return domain.SaveGame{
			Username:       f.String(0),
			SecretWord:     f.String(1),
			Clue:           f.String(2),
			GuessedLetters: f.String(3),
			Enemy: domain.Enemy{
				Name:        f.String(4),
				Health:      f.Int(5, "enemyHp"),
				MaxHealth:   f.Int(6, "enemyMaxHp"),
				AttackPower: f.Int(7, "enemyAtk"),
				ImageFolder: f.String(8),
				Level:       f.Int(9, "enemyLevel"),
			},
			PlayerPetID: f.String(10),
			PlayerPetHP: f.Int(11, "playerPetHp"),
		}
	},
}
