package animals

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("animal not found")

type Repository interface {
	Create(ctx context.Context, a Animal) error
	GetByID(ctx context.Context, id string) (Animal, error)
	GetByIDs(ctx context.Context, ids []string) ([]Animal, error)
	Update(ctx context.Context, a Animal) error

	// ListChildren devuelve los hijos no descartados de esa madre.
	ListChildren(ctx context.Context, motherID string, species Species) ([]Animal, error)

	// ListSlaughterEligible aplica el predicado de elegibilidad (no criador,
	// no descartado, no sacrificado) dentro de una ventana de nacimiento.
	ListSlaughterEligible(ctx context.Context, q EligibilityQuery) ([]Animal, error)

	// MarkSlaughtered marca el animal como sacrificado y lo pasa al congelador.
	MarkSlaughtered(ctx context.Context, id string, at time.Time) error
}

type EligibilityQuery struct {
	Species      Species
	MinBirthDate time.Time
	MaxBirthDate time.Time

	// MotherID restringe el escaneo a hijos de esa madre (opcional).
	MotherID string
}

type DeadOffspringRepository interface {
	Create(ctx context.Context, d DeadOffspring) error
	ListByMother(ctx context.Context, motherID string) ([]DeadOffspring, error)
}

// BirthPlanner es el puerto hacia los generadores de reglas de alertas.
// Se invoca de forma síncrona dentro de la misma operación lógica.
type BirthPlanner interface {
	AnimalBorn(ctx context.Context, a Animal) error
	LitterBorn(ctx context.Context, mother Animal, offspring []Animal) error
}
