package events

import (
	"time"

	"farm-husbandry/internal/domain/animals"
)

// Event es el registro inmutable de una acción de manejo sobre un animal
// (INDIVIDUAL) o sobre un corral completo (GROUP).
type Event struct {
	ID string

	Category    Category
	Description string
	Date        time.Time

	Scope   Scope
	Species animals.Species
	SubType SubType

	// AnimalID aplica a scope INDIVIDUAL; CorralID a scope GROUP.
	AnimalID string
	CorralID string

	CreatedAt time.Time
	UpdatedAt time.Time
}
