package domain

// Combatant is what the battle mode needs from either side of a fight
type Combatant interface {
	DisplayName() string
	HP() int
	MaxHP() int
	Attack() int
	TakeDamage(n int)
	Defeated() bool
}

var (
	_ Combatant = (*Pet)(nil)
	_ Combatant = (*Enemy)(nil)
)

// Enemy is an ephemeral battle opponent. It has no catalog entry.
type Enemy struct {
	Name        string
	Health      int
	MaxHealth   int
	AttackPower int
	ImageFolder string
	Level       int
}

func (e *Enemy) DisplayName() string { return e.Name }
func (e *Enemy) HP() int             { return e.Health }
func (e *Enemy) MaxHP() int          { return e.MaxHealth }
func (e *Enemy) Attack() int         { return e.AttackPower }
func (e *Enemy) Defeated() bool      { return e.Health <= 0 }

func (e *Enemy) TakeDamage(n int) {
	e.Health = clampHealth(e.Health-n, e.MaxHealth)
}

// SaveGame is an interrupted battle, one slot per user
type SaveGame struct {
	Username       string
	SecretWord     string
	Clue           string
	GuessedLetters string
	Enemy          Enemy
	PlayerPetID    string
	PlayerPetHP    int
}
