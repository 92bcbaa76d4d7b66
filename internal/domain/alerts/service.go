package alerts

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"farm-husbandry/internal/domain/animals"
	"farm-husbandry/internal/domain/events"
	"farm-husbandry/internal/metrics"
	"farm-husbandry/internal/platform/logger"
	"farm-husbandry/internal/ports/storage"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput = errors.New("invalid input")

	// ErrAlreadyResolved: la alerta está en estado terminal (DONE/EXPIRED).
	ErrAlreadyResolved = errors.New("alert already resolved")

	// ErrMissingReason: Decline exige un motivo no vacío.
	ErrMissingReason = errors.New("decline reason required")
)

// MembershipError lista los ids que no pertenecen a la membresía actual de
// una alerta agrupada.
type MembershipError struct {
	Invalid []string
}

func (e *MembershipError) Error() string {
	return "animals not in alert membership: " + strings.Join(e.Invalid, ", ")
}

// Service es el coordinador de ciclo de vida: listar, completar, rechazar y
// el pase de reconciliación. Cada operación corre dentro de una transacción
// explícita del store.
type Service struct {
	repo    Repository
	animals animals.Repository
	events  events.Repository
	tx      storage.TxRunner
	log     logger.Logger
	now     func() time.Time
}

func NewService(repo Repository, animalRepo animals.Repository, eventRepo events.Repository, tx storage.TxRunner, log logger.Logger) *Service {
	return &Service{
		repo:    repo,
		animals: animalRepo,
		events:  eventRepo,
		tx:      tx,
		log:     log,
		now:     time.Now,
	}
}

// List corre primero el pase de reconciliación y devuelve las alertas del
// estado pedido (PENDING por defecto), ordenadas por urgencia.
func (s *Service) List(ctx context.Context, st Status) ([]Alert, error) {
	if st == "" {
		st = StatusPending
	}

	var out []Alert
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		if err := s.reconcile(ctx); err != nil {
			return err
		}
		var err error
		out, err = s.repo.ListByStatus(ctx, st)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// VerifyAndUpdate dispara el pase de reconciliación de forma explícita.
func (s *Service) VerifyAndUpdate(ctx context.Context) error {
	return s.tx.InTx(ctx, func(ctx context.Context) error {
		return s.reconcile(ctx)
	})
}

// Complete marca la alerta como DONE. Para alertas agrupadas de sacrificio
// exige el subconjunto de miembros a resolver; cada animal seleccionado se
// marca sacrificado, genera su evento individual y actualiza las demás
// alertas que lo referencian. Para el resto, deriva a lo sumo un evento según
// la tabla de despacho (mejor esfuerzo).
func (s *Service) Complete(ctx context.Context, id string, memberIDs []string) (Alert, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Alert{}, ErrNotFound
	}

	var out Alert
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		a, err := s.repo.GetByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if a.Status.Terminal() {
			return ErrAlreadyResolved
		}

		now := s.now()

		if a.Kind == KindSlaughterReminder && a.Species == animals.SpeciesRabbit {
			if err := s.completeSlaughter(ctx, &a, memberIDs, now); err != nil {
				return err
			}
		} else {
			if st, ok := derivedSubType(a.Kind, a.Species); ok {
				// Efecto secundario deliberadamente de mejor esfuerzo: un
				// fallo acá no bloquea la completación.
				evID, err := s.deriveEvent(ctx, a, st, now)
				if err != nil {
					s.log.Warn("derived event failed", map[string]any{
						"alert_id": a.ID, "kind": string(a.Kind), "error": err.Error(),
					})
				} else {
					a.EventID = evID
				}
			}
			a.Status = StatusDone
			a.ResolvedAt = &now
		}

		a.UpdatedAt = now
		if err := s.repo.Update(ctx, a); err != nil {
			return err
		}
		if a.Status == StatusDone {
			metrics.AlertsCompletedTotal.WithLabelValues(string(a.Kind)).Inc()
		}
		out = a
		return nil
	})
	if err != nil {
		return Alert{}, err
	}
	return out, nil
}

// completeSlaughter resuelve (total o parcialmente) una alerta de sacrificio.
// Para alertas agrupadas el caller debe indicar qué miembros sacrificó; para
// alertas individuales se sacrifica el animal ancla.
func (s *Service) completeSlaughter(ctx context.Context, a *Alert, memberIDs []string, now time.Time) error {
	if a.Grouped() {
		if len(memberIDs) == 0 {
			return fmt.Errorf("%w: member_ids required for grouped slaughter alert", ErrInvalidInput)
		}
		var invalid []string
		for _, m := range memberIDs {
			if !a.HasMember(m) {
				invalid = append(invalid, m)
			}
		}
		if len(invalid) > 0 {
			return &MembershipError{Invalid: invalid}
		}

		for _, m := range memberIDs {
			if err := s.slaughterAnimal(ctx, m, now); err != nil {
				return err
			}
		}
		for _, m := range memberIDs {
			if err := s.updateAlertsForSlaughtered(ctx, m, a.ID); err != nil {
				return err
			}
		}

		remaining := subtract(a.MemberIDs, memberIDs)
		if len(remaining) == 0 {
			a.Status = StatusDone
			a.ResolvedAt = &now
			return nil
		}
		a.MemberIDs = remaining
		a.Description = s.slaughterDescription(ctx, remaining)
		return nil
	}

	// Alerta individual: el ancla es el conejo a sacrificar.
	if a.AnimalID != "" {
		if err := s.slaughterAnimal(ctx, a.AnimalID, now); err != nil {
			return err
		}
		if err := s.updateAlertsForSlaughtered(ctx, a.AnimalID, a.ID); err != nil {
			return err
		}
	}
	a.Status = StatusDone
	a.ResolvedAt = &now
	return nil
}

// Decline marca la alerta EXPIRED con el motivo dado. Nunca crea eventos.
func (s *Service) Decline(ctx context.Context, id, reason string) (Alert, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Alert{}, ErrNotFound
	}
	if strings.TrimSpace(reason) == "" {
		return Alert{}, ErrMissingReason
	}

	var out Alert
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		a, err := s.repo.GetByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if a.Status.Terminal() {
			return ErrAlreadyResolved
		}

		now := s.now()
		a.Status = StatusExpired
		a.DeclinedReason = strings.TrimSpace(reason)
		a.ResolvedAt = &now
		a.UpdatedAt = now
		if err := s.repo.Update(ctx, a); err != nil {
			return err
		}
		metrics.AlertsDeclinedTotal.WithLabelValues(string(a.Kind)).Inc()
		out = a
		return nil
	})
	if err != nil {
		return Alert{}, err
	}
	return out, nil
}

// Members devuelve los animales de la membresía de la alerta. Si la alerta
// agrupada no tiene membresía registrada, la recalcula y persiste.
func (s *Service) Members(ctx context.Context, id string) ([]animals.Animal, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, ErrNotFound
	}

	var out []animals.Animal
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		a, err := s.repo.GetByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}

		if len(a.MemberIDs) == 0 && a.Kind == KindSlaughterReminder && a.Species == animals.SpeciesRabbit {
			if err := s.healMembership(ctx, &a); err != nil {
				return err
			}
			a.UpdatedAt = s.now()
			if err := s.repo.Update(ctx, a); err != nil {
				return err
			}
		}

		if len(a.MemberIDs) == 0 {
			return nil
		}
		out, err = s.animals.GetByIDs(ctx, a.MemberIDs)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// slaughterAnimal marca el animal sacrificado + congelador y registra el
// evento individual de sacrificio.
func (s *Service) slaughterAnimal(ctx context.Context, animalID string, now time.Time) error {
	a, err := s.animals.GetByID(ctx, animalID)
	if err != nil {
		return err
	}
	if err := s.animals.MarkSlaughtered(ctx, animalID, now); err != nil {
		return err
	}

	e := events.Event{
		ID:          uuid.NewString(),
		Description: fmt.Sprintf("Conejo %q sacrificado y almacenado en congelador", a.Name),
		Date:        now,
		Scope:       events.ScopeIndividual,
		Species:     animals.SpeciesRabbit,
		SubType:     events.RabbitSlaughter,
		AnimalID:    animalID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	return s.events.Create(ctx, e)
}

// updateAlertsForSlaughtered encoge o auto-completa las demás alertas
// PENDING que referencian al animal recién sacrificado.
func (s *Service) updateAlertsForSlaughtered(ctx context.Context, animalID, excludeAlertID string) error {
	pending, err := s.repo.ListPendingReferencing(ctx, animalID)
	if err != nil {
		return err
	}

	now := s.now()
	for _, a := range pending {
		if a.ID == excludeAlertID {
			continue
		}

		switch {
		case a.Grouped() && a.HasMember(animalID):
			remaining := subtract(a.MemberIDs, []string{animalID})
			if len(remaining) == 0 {
				a.Status = StatusDone
				a.ResolvedAt = &now
			} else {
				a.MemberIDs = remaining
				a.Description = s.slaughterDescription(ctx, remaining)
			}
		case a.AnimalID == animalID && a.Kind == KindSlaughterReminder:
			a.Status = StatusDone
			a.ResolvedAt = &now
		default:
			continue
		}

		a.UpdatedAt = now
		if err := s.repo.Update(ctx, a); err != nil {
			return err
		}
	}
	return nil
}

// deriveEvent registra (o reutiliza, si existe uno idéntico en los últimos 7
// días) el evento derivado de completar la alerta.
func (s *Service) deriveEvent(ctx context.Context, a Alert, st events.SubType, now time.Time) (string, error) {
	recent, err := s.events.FindRecent(ctx, events.RecentQuery{
		Species:  a.Species,
		SubType:  st,
		AnimalID: a.AnimalID,
		CorralID: a.CorralID,
		Since:    now.AddDate(0, 0, -7),
	})
	if err == nil {
		return recent.ID, nil
	}
	if !errors.Is(err, events.ErrNotFound) {
		return "", err
	}

	scope := events.ScopeIndividual
	if a.AnimalID == "" {
		scope = events.ScopeGroup
	}
	e := events.Event{
		ID:          uuid.NewString(),
		Description: a.Description,
		Date:        now,
		Scope:       scope,
		Species:     a.Species,
		SubType:     st,
		AnimalID:    a.AnimalID,
		CorralID:    a.CorralID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.events.Create(ctx, e); err != nil {
		return "", err
	}
	return e.ID, nil
}

// slaughterDescription reescribe la descripción de una alerta agrupada con
// los conejos que quedan.
func (s *Service) slaughterDescription(ctx context.Context, memberIDs []string) string {
	names := make([]string, 0, len(memberIDs))
	members, err := s.animals.GetByIDs(ctx, memberIDs)
	if err == nil {
		for _, m := range members {
			names = append(names, m.Name)
		}
	}
	list := strings.Join(names, ", ")
	if list == "" {
		list = "camada"
	}
	return fmt.Sprintf("Conejos no criadores deben ser sacrificados (80-90 días de edad) - Conejos: %s", list)
}

func subtract(from, remove []string) []string {
	out := make([]string, 0, len(from))
	for _, v := range from {
		found := false
		for _, r := range remove {
			if v == r {
				found = true
				break
			}
		}
		if !found {
			out = append(out, v)
		}
	}
	return out
}
