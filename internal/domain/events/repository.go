package events

import (
	"context"
	"errors"
	"time"

	"farm-husbandry/internal/domain/animals"
)

var ErrNotFound = errors.New("event not found")

type Repository interface {
	Create(ctx context.Context, e Event) error
	GetByID(ctx context.Context, id string) (Event, error)
	List(ctx context.Context, f ListFilter) ([]Event, error)

	// FindRecent devuelve el evento más reciente que calce con la consulta,
	// o ErrNotFound. Se usa como guarda de idempotencia (look-back de 7 días).
	FindRecent(ctx context.Context, q RecentQuery) (Event, error)
}

type ListFilter struct {
	Species  animals.Species
	Scope    Scope
	From     *time.Time
	To       *time.Time
	AnimalID string
	CorralID string
	Limit    int
}

type RecentQuery struct {
	Species animals.Species
	SubType SubType

	// Exactamente uno de AnimalID/CorralID según el scope buscado.
	AnimalID string
	CorralID string

	Since time.Time

	// ExcludeID deja fuera un evento concreto (típicamente el que disparó
	// la consulta).
	ExcludeID string
}
