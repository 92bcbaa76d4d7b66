package alerts

import (
	"time"

	"farm-husbandry/internal/domain/animals"
)

// Alert es un recordatorio programado con ventana de validez y ciclo de vida.
// Invariantes: MaxDate >= InitDate; DONE/EXPIRED son terminales.
type Alert struct {
	ID string

	Kind        Kind
	Description string

	InitDate time.Time
	MaxDate  time.Time

	Status   Status
	Priority Priority

	Species animals.Species

	// AnimalID es el animal ancla (o la madre, en alertas agrupadas).
	AnimalID string
	CorralID string

	// EventID enlaza el evento que originó la alerta o el derivado al
	// completarla.
	EventID string

	DeclinedReason string

	// MemberIDs es la membresía de una alerta agrupada (camada); vacío para
	// alertas de un solo animal.
	MemberIDs []string

	AcknowledgedAt *time.Time
	ResolvedAt     *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Grouped indica si la alerta representa un recordatorio compartido por
// varios animales.
func (a Alert) Grouped() bool {
	return len(a.MemberIDs) > 0
}

func (a Alert) HasMember(id string) bool {
	for _, m := range a.MemberIDs {
		if m == id {
			return true
		}
	}
	return false
}
