package alerts

import (
	"context"
	"errors"

	"farm-husbandry/internal/domain/animals"
	"farm-husbandry/internal/metrics"
)

// Ventana rodante de elegibilidad de sacrificio (días desde el nacimiento).
const (
	SlaughterMinAgeDays = 80
	SlaughterMaxAgeDays = 90
)

// reconcile corre los dos barridos idempotentes. Siempre es seguro
// re-ejecutarlo; el caller provee la transacción.
func (s *Service) reconcile(ctx context.Context) error {
	metrics.ReconcileRunsTotal.Inc()
	if err := s.expireStale(ctx); err != nil {
		return err
	}
	return s.sweepGroupedSlaughter(ctx)
}

// expireStale marca EXPIRED toda alerta PENDING cuya ventana ya venció.
func (s *Service) expireStale(ctx context.Context) error {
	pending, err := s.repo.ListByStatus(ctx, StatusPending)
	if err != nil {
		return err
	}

	now := s.now()
	for _, a := range pending {
		if !a.MaxDate.Before(now) {
			continue
		}
		a.Status = StatusExpired
		a.ResolvedAt = &now
		a.UpdatedAt = now
		if err := s.repo.Update(ctx, a); err != nil {
			return err
		}
		metrics.AlertsExpiredTotal.Inc()
	}
	return nil
}

// sweepGroupedSlaughter resuelve la membresía de cada alerta de sacrificio
// pendiente, la sana si falta (registros históricos) y la encoge al
// subconjunto todavía elegible; si no queda nadie, la completa.
func (s *Service) sweepGroupedSlaughter(ctx context.Context) error {
	pending, err := s.repo.ListPendingByKind(ctx, KindSlaughterReminder, animals.SpeciesRabbit)
	if err != nil {
		return err
	}

	now := s.now()
	for _, a := range pending {
		healed := false
		if len(a.MemberIDs) == 0 {
			if err := s.healMembership(ctx, &a); err != nil {
				return err
			}
			healed = true
		}

		eligible, err := s.stillEligible(ctx, a.MemberIDs)
		if err != nil {
			return err
		}

		switch {
		case len(eligible) == 0:
			a.Status = StatusDone
			a.ResolvedAt = &now
		case !equalIDs(a.MemberIDs, eligible):
			a.MemberIDs = eligible
			a.Description = s.slaughterDescription(ctx, eligible)
		case !healed:
			// Sin cambios: no reescribir la fila.
			continue
		}
		a.UpdatedAt = now
		if err := s.repo.Update(ctx, a); err != nil {
			return err
		}
	}
	return nil
}

func equalIDs(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// healMembership es la ruta de compatibilidad para alertas creadas antes de
// que existiera el tracking de membresía: recalcula el grupo vía el escaneo
// de elegibilidad anclado en el animal_id de la alerta. Se puede borrar
// cuando no queden registros históricos sin membresía.
func (s *Service) healMembership(ctx context.Context, a *Alert) error {
	now := s.now()
	list, err := s.animals.ListSlaughterEligible(ctx, animals.EligibilityQuery{
		Species:      animals.SpeciesRabbit,
		MinBirthDate: now.AddDate(0, 0, -SlaughterMaxAgeDays),
		MaxBirthDate: now.AddDate(0, 0, -SlaughterMinAgeDays),
		MotherID:     a.AnimalID,
	})
	if err != nil {
		return err
	}

	if len(list) == 0 && a.AnimalID != "" {
		// El ancla puede ser el propio conejo (alerta individual o registro
		// histórico sin madre).
		anchor, err := s.animals.GetByID(ctx, a.AnimalID)
		if err != nil && !errors.Is(err, animals.ErrNotFound) {
			return err
		}
		if err == nil && anchor.Species == animals.SpeciesRabbit && anchor.SlaughterEligible() {
			list = []animals.Animal{anchor}
		}
	}

	ids := make([]string, 0, len(list))
	for _, r := range list {
		ids = append(ids, r.ID)
	}
	a.MemberIDs = ids
	return nil
}

// stillEligible filtra la membresía al subconjunto que todavía requiere la
// acción (no sacrificado, no descartado).
func (s *Service) stillEligible(ctx context.Context, memberIDs []string) ([]string, error) {
	if len(memberIDs) == 0 {
		return nil, nil
	}
	members, err := s.animals.GetByIDs(ctx, memberIDs)
	if err != nil {
		return nil, err
	}

	out := make([]string, 0, len(members))
	for _, m := range members {
		if !m.Slaughtered && !m.Discarded {
			out = append(out, m.ID)
		}
	}
	return out, nil
}
