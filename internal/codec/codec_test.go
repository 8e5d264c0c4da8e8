package codec

import (
	"strings"
	"testing"
	"time"

	"pet-market/internal/domain"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// free text never contains the delimiter; input validation rejects it
func genText() gopter.Gen {
	return gen.RegexMatch(`[A-Za-z0-9 .,!'-]{0,24}`)
}

func genID() gopter.Gen {
	return gen.RegexMatch(`[a-z][a-z0-9]{2,12}`)
}

func genGold() gopter.Gen {
	return gen.Int64Range(0, 10_000_000).Map(func(cents int64) decimal.Decimal {
		return decimal.New(cents, -2)
	})
}

func TestProperty_UserRoundTrip(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("decoding an encoded user reproduces every field", prop.ForAll(
		func(name, first, last string, gold decimal.Decimal, admin, banned bool, world, progress int) bool {
			u := domain.User{
				Username:      name,
				PasswordHash:  "$2a$10$abcdefghijklmnopqrstuv",
				IsAdmin:       admin,
				IsBanned:      banned,
				FirstName:     first,
				LastName:      last,
				ContactNum:    "0123456789",
				Gold:          gold,
				WorldLevel:    world,
				ProgressLevel: progress,
			}

			got, err := Users.Decode(Users.Encode(u))
			if err != nil {
				t.Logf("decode failed: %v", err)
				return false
			}
			if !got.Gold.Equal(u.Gold) {
				return false
			}
			got.Gold = u.Gold
			return assert.ObjectsAreEqual(u, got)
		},
		genID(),
		genText(),
		genText(),
		genGold(),
		gen.Bool(),
		gen.Bool(),
		gen.IntRange(0, 99),
		gen.IntRange(0, 99),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestProperty_ListingRoundTrip(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("decoding an encoded listing reproduces every field", prop.ForAll(
		func(seller, name, desc string, price decimal.Decimal, level, hp, atk, exp int) bool {
			l := domain.Listing{
				PetID:       "7f1c2a9e-0000-4000-8000-000000000001",
				Seller:      seller,
				Price:       price,
				ProductID:   "P001",
				PetName:     name,
				PetLevel:    level,
				PetHealth:   hp,
				PetAttack:   atk,
				Description: desc,
				PetExp:      exp,
			}

			got, err := Listings.Decode(Listings.Encode(l))
			if err != nil || !got.Price.Equal(l.Price) {
				return false
			}
			got.Price = l.Price
			return assert.ObjectsAreEqual(l, got)
		},
		genID(),
		genText(),
		genText(),
		genGold(),
		gen.IntRange(1, 100),
		gen.IntRange(1, 1000),
		gen.IntRange(0, 500),
		gen.IntRange(0, 10000),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestProperty_ProductAndCodeRoundTrip(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("products survive encode and decode", prop.ForAll(
		func(id, name, desc string, price decimal.Decimal, hp, level, atk int) bool {
			p := domain.Product{
				ID: id, Name: name, Description: desc, Price: price,
				MaxHealth: hp, Level: level, AttackPower: atk, ImageName: "img_" + id,
			}
			got, err := Products.Decode(Products.Encode(p))
			if err != nil || !got.Price.Equal(p.Price) {
				return false
			}
			got.Price = p.Price
			return assert.ObjectsAreEqual(p, got)
		},
		genID(),
		genText(),
		genText(),
		genGold(),
		gen.IntRange(1, 1000),
		gen.IntRange(1, 50),
		gen.IntRange(0, 300),
	))

	properties.Property("codes survive encode and decode", prop.ForAll(
		func(code string, value decimal.Decimal, used bool) bool {
			c := domain.RedeemCode{Code: code, Value: value, IsUsed: used}
			got, err := Codes.Decode(Codes.Encode(c))
			return err == nil && got.Code == c.Code && got.Value.Equal(c.Value) && got.IsUsed == c.IsUsed
		},
		gen.RegexMatch(`[A-Z0-9]{4}-[A-Z0-9]{4}-[A-Z0-9]{4}`),
		genGold(),
		gen.Bool(),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestInventoryAndPurchaseRoundTrip(t *testing.T) {
	row := InventoryRow{
		Owner: "alice0001",
		Pet: domain.Pet{
			UniqueID: "id-1", ProductID: "P002", Name: "Sparky",
			Level: 4, MaxHealth: 120, AttackPower: 17, Exp: 33,
		},
		HasMaxHealth: true,
		HasAttack:    true,
	}
	gotRow, err := Inventory.Decode(Inventory.Encode(row))
	require.NoError(t, err)
	assert.Equal(t, row, gotRow)

	p := domain.Purchase{
		Username:    "alice0001",
		ProductID:   "P002",
		ProductName: "Sparkle Fox",
		PricePaid:   decimal.RequireFromString("300.50"),
		Timestamp:   time.Date(2026, 3, 1, 12, 30, 0, 0, time.UTC),
	}
	gotP, err := Purchases.Decode(Purchases.Encode(p))
	require.NoError(t, err)
	assert.True(t, gotP.PricePaid.Equal(p.PricePaid))
	assert.True(t, gotP.Timestamp.Equal(p.Timestamp))
	assert.Equal(t, p.ProductName, gotP.ProductName)

	s := domain.SaveGame{
		Username: "bob", SecretWord: "PYTHON", Clue: "a snake", GuessedLetters: "PYX",
		Enemy:       domain.Enemy{Name: "Goblin", Health: 20, MaxHealth: 40, AttackPower: 6, ImageFolder: "goblin", Level: 2},
		PlayerPetID: "id-1", PlayerPetHP: 55,
	}
	gotS, err := Saves.Decode(Saves.Encode(s))
	require.NoError(t, err)
	assert.Equal(t, s, gotS)
}

func TestDecodeToleratesMissingOptionalFields(t *testing.T) {
	l, err := Listings.Decode("pet-9|bob|50|P001|Rex|3|90|12|A loyal dog")
	require.NoError(t, err)
	assert.Equal(t, 0, l.PetExp)
	assert.Equal(t, "A loyal dog", l.Description)

	u, err := Users.Decode("bob|hash|FALSE|Bob|Stone|555|10.5|1|2")
	require.NoError(t, err)
	assert.False(t, u.IsBanned)
	assert.False(t, u.IsAdmin)

	row, err := Inventory.Decode("pet-9|bob|P001|Rex|3")
	require.NoError(t, err)
	assert.False(t, row.HasMaxHealth)
	assert.False(t, row.HasAttack)
	assert.Equal(t, 3, row.Pet.Level)

	row, err = Inventory.Decode("pet-9|bob|P001|Rex|3|120")
	require.NoError(t, err)
	assert.True(t, row.HasMaxHealth)
	assert.Equal(t, 120, row.Pet.MaxHealth)
	assert.False(t, row.HasAttack)

	p, err := Products.Decode("P001|Rex|A loyal dog|25|90|1|12")
	require.NoError(t, err)
	assert.Empty(t, p.ImageName)
}

func TestPurchaseTimestampLayouts(t *testing.T) {
	cases := map[string]time.Time{
		"2024-05-01T12:30:45Z":             time.Date(2024, 5, 1, 12, 30, 45, 0, time.UTC),
		"2024-05-01T12:30:45.5+02:00":      time.Date(2024, 5, 1, 10, 30, 45, 500_000_000, time.UTC),
		"2024-05-01T12:30:45":              time.Date(2024, 5, 1, 12, 30, 45, 0, time.Local),
		"2024-05-01T12:30:45.123456":       time.Date(2024, 5, 1, 12, 30, 45, 123_456_000, time.Local),
		"01/05/2024 12:30":                 {},
	}

	for raw, want := range cases {
		t.Run(raw, func(t *testing.T) {
			p, err := Purchases.Decode("alice0001|P001|Sparkle Fox|300|" + raw)
			if want.IsZero() {
				assert.ErrorIs(t, err, ErrCorruptLine)
				return
			}
			require.NoError(t, err)
			assert.True(t, p.Timestamp.Equal(want), "got %s", p.Timestamp)
		})
	}
}

func TestDecodeRejectsCorruptLines(t *testing.T) {
	cases := map[string]string{
		"too few fields":  "bob|hash|false",
		"bad bool":        "bob|hash|maybe|Bob|Stone|555|10|1|2",
		"bad decimal":     "bob|hash|true|Bob|Stone|555|lots|1|2",
		"bad int":         "bob|hash|true|Bob|Stone|555|10|one|2",
		"bad opt boolean": "bob|hash|true|Bob|Stone|555|10|1|2|yes",
	}

	for name, line := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Users.Decode(line)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrCorruptLine)
		})
	}
}

func TestReadAllSkipsCommentsBlanksAndCorruptLines(t *testing.T) {
	input := strings.Join([]string{
		Codes.Header(),
		"",
		"AAAA-BBBB-CCCC|100|false",
		"// a note left by an operator",
		"broken",
		"DDDD-EEEE-FFFF|not-a-number|false",
		"GGGG-HHHH-IIII|25.5|TRUE",
	}, "\n")

	var corrupt []*CorruptLineError
	codes, err := Codes.ReadAll(strings.NewReader(input), func(e *CorruptLineError) {
		corrupt = append(corrupt, e)
	})
	require.NoError(t, err)

	require.Len(t, codes, 2)
	assert.Equal(t, "AAAA-BBBB-CCCC", codes[0].Code)
	assert.True(t, codes[1].IsUsed)

	require.Len(t, corrupt, 2)
	assert.Equal(t, 5, corrupt[0].Line)
	assert.Equal(t, 6, corrupt[1].Line)
}

func TestMarshalWritesHeaderFirst(t *testing.T) {
	out := string(Codes.Marshal([]domain.RedeemCode{
		{Code: "AAAA-BBBB-CCCC", Value: decimal.NewFromInt(100)},
	}))

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "// FORMAT: codeString|goldValue|isUsed", lines[0])
	assert.Equal(t, "AAAA-BBBB-CCCC|100|false", lines[1])
}
