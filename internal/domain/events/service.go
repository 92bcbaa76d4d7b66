package events

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"farm-husbandry/internal/domain/animals"
	"farm-husbandry/internal/ports/storage"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput = errors.New("invalid input")
)

// AlertScheduler es el puerto hacia los generadores de reglas: ciertos
// sub-tipos de evento programan recordatorios futuros al registrarse.
type AlertScheduler interface {
	EventRecorded(ctx context.Context, e Event) error
}

type Service struct {
	repo  Repository
	sched AlertScheduler // puede ser nil (sin reglas cableadas)
	tx    storage.TxRunner
	now   func() time.Time
}

func NewService(repo Repository, sched AlertScheduler, tx storage.TxRunner) *Service {
	return &Service{
		repo:  repo,
		sched: sched,
		tx:    tx,
		now:   time.Now,
	}
}

type RecordInput struct {
	Category    Category
	Description string
	Date        time.Time

	Scope   Scope
	Species animals.Species
	SubType SubType

	AnimalID string
	CorralID string
}

// Record valida y persiste un evento de manejo. Para las combinaciones
// (especie, sub-tipo) que derivan recordatorios, invoca el generador de
// reglas de forma síncrona dentro de la misma transacción.
func (s *Service) Record(ctx context.Context, in RecordInput) (Event, error) {
	if in.Scope != ScopeIndividual && in.Scope != ScopeGroup {
		return Event{}, fmt.Errorf("%w: scope must be INDIVIDUAL or GROUP", ErrInvalidInput)
	}
	if !animals.ValidSpecies(in.Species) {
		return Event{}, fmt.Errorf("%w: unknown species %q", ErrInvalidInput, in.Species)
	}

	in.AnimalID = strings.TrimSpace(in.AnimalID)
	in.CorralID = strings.TrimSpace(in.CorralID)

	if in.Scope == ScopeIndividual && in.AnimalID == "" {
		return Event{}, fmt.Errorf("%w: animal_id required for INDIVIDUAL scope", ErrInvalidInput)
	}
	if in.Scope == ScopeGroup && in.CorralID == "" {
		return Event{}, fmt.Errorf("%w: corral_id required for GROUP scope", ErrInvalidInput)
	}

	// Invariantes especie/scope.
	if in.Species == animals.SpeciesRabbit && in.Scope == ScopeGroup && in.SubType != RabbitVitaminsCorral {
		return Event{}, fmt.Errorf("%w: RABBIT group events only allowed for VITAMINS_CORRAL", ErrInvalidInput)
	}
	if in.Species == animals.SpeciesChicken && in.Scope != ScopeGroup {
		return Event{}, fmt.Errorf("%w: CHICKEN events must be GROUP (corral)", ErrInvalidInput)
	}
	if in.SubType != "" && !ValidSubType(in.Species, in.SubType) {
		return Event{}, fmt.Errorf("%w: sub-type %q not valid for species %s", ErrInvalidInput, in.SubType, in.Species)
	}

	now := s.now()
	date := in.Date
	if date.IsZero() {
		date = now
	}

	e := Event{
		ID:          uuid.NewString(),
		Category:    in.Category,
		Description: strings.TrimSpace(in.Description),
		Date:        date,
		Scope:       in.Scope,
		Species:     in.Species,
		SubType:     in.SubType,
		AnimalID:    in.AnimalID,
		CorralID:    in.CorralID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		if err := s.repo.Create(ctx, e); err != nil {
			return err
		}
		if s.sched != nil {
			return s.sched.EventRecorded(ctx, e)
		}
		return nil
	})
	if err != nil {
		return Event{}, err
	}
	return e, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (Event, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Event{}, ErrInvalidInput
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, f ListFilter) ([]Event, error) {
	return s.repo.List(ctx, f)
}
