package alerts

import (
	"context"
	"errors"

	"farm-husbandry/internal/domain/animals"
)

var ErrNotFound = errors.New("alert not found")

type Repository interface {
	Create(ctx context.Context, a Alert) error
	GetByID(ctx context.Context, id string) (Alert, error)

	// GetByIDForUpdate toma un lock de fila sobre la alerta dentro de la
	// transacción en curso (evita lost updates en completions concurrentes).
	GetByIDForUpdate(ctx context.Context, id string) (Alert, error)

	Update(ctx context.Context, a Alert) error

	// ListByStatus devuelve las alertas en ese estado ordenadas por MaxDate
	// ascendente (más urgente primero).
	ListByStatus(ctx context.Context, st Status) ([]Alert, error)

	ListPendingByKind(ctx context.Context, kind Kind, species animals.Species) ([]Alert, error)

	// FindPendingByMembers busca una alerta PENDING con exactamente esa
	// membresía (clave primaria de de-duplicación).
	FindPendingByMembers(ctx context.Context, kind Kind, species animals.Species, memberIDs []string) (Alert, error)

	// FindPendingByAnchor busca por animal ancla (clave de de-duplicación de
	// registros históricos sin membresía).
	FindPendingByAnchor(ctx context.Context, kind Kind, species animals.Species, animalID string) (Alert, error)

	// ListPendingReferencing devuelve las alertas PENDING cuyo ancla o
	// membresía incluye al animal.
	ListPendingReferencing(ctx context.Context, animalID string) ([]Alert, error)
}
