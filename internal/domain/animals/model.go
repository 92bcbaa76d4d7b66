package animals

import "time"

type Animal struct {
	ID   string
	Name string

	Species Species
	Gender  Gender
	Origin  Origin

	BirthDate *time.Time
	IsBreeder bool

	MotherID string
	FatherID string
	CorralID string

	Discarded       bool
	DiscardedReason string

	Slaughtered     bool
	SlaughteredDate *time.Time
	InFreezer       bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// SlaughterEligible indica si el animal todavía requiere la acción de
// sacrificio: no criador, no descartado y no sacrificado.
func (a Animal) SlaughterEligible() bool {
	return !a.IsBreeder && !a.Discarded && !a.Slaughtered
}

// DeadOffspring registra crías nacidas muertas de una camada (no se crean
// registros de Animal para ellas).
type DeadOffspring struct {
	ID       string
	MotherID string
	FatherID string

	Species   Species
	BirthDate time.Time
	Count     int

	Notes          string
	SuspectedCause string
	RecordedBy     string

	CreatedAt time.Time
}
