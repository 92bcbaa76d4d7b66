// Package rules contiene los generadores de alertas por especie: funciones
// que, dadas una fecha ancla (nacimiento, preñez, destete) y la identidad del
// animal, emiten los recordatorios futuros.
package rules

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"farm-husbandry/internal/domain/alerts"
	"farm-husbandry/internal/domain/animals"
)

// Constantes de tiempo para conejos (en días).
const (
	rabbitBreedingReadyAgeDays  = 120 // 4 meses
	rabbitPregnancyDurationDays = 30
	rabbitLactationDurationDays = 30
	rabbitRestPeriodDays        = 15
)

type Rabbit struct {
	alerts  alerts.Repository
	animals animals.Repository
	now     func() time.Time
}

func NewRabbit(alertRepo alerts.Repository, animalRepo animals.Repository) *Rabbit {
	return &Rabbit{
		alerts:  alertRepo,
		animals: animalRepo,
		now:     time.Now,
	}
}

// BirthAlerts crea las alertas al nacer un conejo: si es hembra criadora,
// recordatorio de monta a los 4 meses; si no es criador, recordatorio de
// sacrificio entre los 80 y 90 días.
func (r *Rabbit) BirthAlerts(ctx context.Context, rabbit animals.Animal) error {
	if rabbit.Species != animals.SpeciesRabbit || rabbit.BirthDate == nil {
		return nil
	}
	birth := *rabbit.BirthDate

	if rabbit.Gender == animals.GenderFemale && rabbit.IsBreeder {
		ready := birth.AddDate(0, 0, rabbitBreedingReadyAgeDays)
		err := create(ctx, r.alerts, r.now(), alerts.Alert{
			Kind:        alerts.KindBreedingReady,
			Description: fmt.Sprintf("Coneja criadora %q está lista para quedar preñada (4 meses de edad)", rabbit.Name),
			InitDate:    ready.AddDate(0, 0, -3),
			MaxDate:     ready.AddDate(0, 0, 7),
			Priority:    alerts.PriorityHigh,
			Species:     animals.SpeciesRabbit,
			AnimalID:    rabbit.ID,
		})
		if err != nil {
			return err
		}
	}

	if !rabbit.IsBreeder {
		return create(ctx, r.alerts, r.now(), alerts.Alert{
			Kind:        alerts.KindSlaughterReminder,
			Description: fmt.Sprintf("Conejo %q debe ser sacrificado (80-90 días de edad)", rabbit.Name),
			InitDate:    birth.AddDate(0, 0, alerts.SlaughterMinAgeDays),
			MaxDate:     birth.AddDate(0, 0, alerts.SlaughterMaxAgeDays),
			Priority:    alerts.PriorityMedium,
			Species:     animals.SpeciesRabbit,
			AnimalID:    rabbit.ID,
		})
	}
	return nil
}

// PregnancyAlerts programa el nacimiento esperado de la camada (30 días de
// gestación, ±2 días).
func (r *Rabbit) PregnancyAlerts(ctx context.Context, rabbitID string, pregnancyDate time.Time) error {
	name := r.animalName(ctx, rabbitID, "Coneja")
	expected := pregnancyDate.AddDate(0, 0, rabbitPregnancyDurationDays)

	return create(ctx, r.alerts, r.now(), alerts.Alert{
		Kind:        alerts.KindExpectedBirth,
		Description: fmt.Sprintf("Nacimiento esperado de camada de la coneja %q (30 días de gestación)", name),
		InitDate:    expected.AddDate(0, 0, -2),
		MaxDate:     expected.AddDate(0, 0, 2),
		Priority:    alerts.PriorityHigh,
		Species:     animals.SpeciesRabbit,
		AnimalID:    rabbitID,
	})
}

// LactationAlerts programa el destete: separar la camada a los 30 días de
// lactancia y, 15 días de descanso después, la coneja queda lista para una
// nueva monta.
func (r *Rabbit) LactationAlerts(ctx context.Context, mother animals.Animal, birthDate time.Time) error {
	children, err := r.animals.ListChildren(ctx, mother.ID, animals.SpeciesRabbit)
	if err != nil {
		return err
	}
	names := make([]string, 0, len(children))
	for _, c := range children {
		names = append(names, c.Name)
	}
	list := strings.Join(names, ", ")
	if list == "" {
		list = "camada"
	}

	separation := birthDate.AddDate(0, 0, rabbitLactationDurationDays)
	err = create(ctx, r.alerts, r.now(), alerts.Alert{
		Kind:        alerts.KindSeparateLitter,
		Description: fmt.Sprintf("Separar camada de la criadora %q (30 días de lactancia) - Conejos: %s", mother.Name, list),
		InitDate:    separation.AddDate(0, 0, -2),
		MaxDate:     separation.AddDate(0, 0, 2),
		Priority:    alerts.PriorityMedium,
		Species:     animals.SpeciesRabbit,
		AnimalID:    mother.ID,
	})
	if err != nil {
		return err
	}

	restEnd := separation.AddDate(0, 0, rabbitRestPeriodDays)
	return create(ctx, r.alerts, r.now(), alerts.Alert{
		Kind:        alerts.KindBreedingReady,
		Description: fmt.Sprintf("Coneja %q lista para quedar preñada de nuevo (15 días de descanso completados)", mother.Name),
		InitDate:    restEnd.AddDate(0, 0, -2),
		MaxDate:     restEnd.AddDate(0, 0, 7),
		Priority:    alerts.PriorityHigh,
		Species:     animals.SpeciesRabbit,
		AnimalID:    mother.ID,
	})
}

// LitterSlaughterAlert crea la alerta agrupada de sacrificio para las crías
// no criadoras de una camada, anclada en la madre.
func (r *Rabbit) LitterSlaughterAlert(ctx context.Context, mother animals.Animal, nonBreeders []animals.Animal, birthDate time.Time) error {
	if len(nonBreeders) == 0 {
		return nil
	}

	ids := make([]string, 0, len(nonBreeders))
	names := make([]string, 0, len(nonBreeders))
	for _, n := range nonBreeders {
		ids = append(ids, n.ID)
		names = append(names, n.Name)
	}
	sort.Strings(ids)

	return create(ctx, r.alerts, r.now(), alerts.Alert{
		Kind:        alerts.KindSlaughterReminder,
		Description: fmt.Sprintf("Conejos no criadores deben ser sacrificados (80-90 días de edad) - Conejos: %s", strings.Join(names, ", ")),
		InitDate:    birthDate.AddDate(0, 0, alerts.SlaughterMinAgeDays),
		MaxDate:     birthDate.AddDate(0, 0, alerts.SlaughterMaxAgeDays),
		Priority:    alerts.PriorityMedium,
		Species:     animals.SpeciesRabbit,
		AnimalID:    mother.ID,
		MemberIDs:   ids,
	})
}

// GroupedSlaughterAlerts escanea los conejos no criadores dentro de la
// ventana rodante de 80-90 días y crea una alerta agrupada por madre, salvo
// que ya exista una PENDING con la misma membresía (clave primaria de
// de-duplicación) o con el mismo ancla (registros históricos, a los que se
// les rellena la membresía en vez de duplicar).
func (r *Rabbit) GroupedSlaughterAlerts(ctx context.Context, motherID string) error {
	today := r.now()
	eligible, err := r.animals.ListSlaughterEligible(ctx, animals.EligibilityQuery{
		Species:      animals.SpeciesRabbit,
		MinBirthDate: today.AddDate(0, 0, -alerts.SlaughterMaxAgeDays),
		MaxBirthDate: today.AddDate(0, 0, -alerts.SlaughterMinAgeDays),
		MotherID:     motherID,
	})
	if err != nil {
		return err
	}
	if len(eligible) == 0 {
		return nil
	}

	// Agrupar por madre para alertas más organizadas.
	byMother := map[string][]animals.Animal{}
	order := make([]string, 0)
	for _, rb := range eligible {
		key := rb.MotherID
		if _, seen := byMother[key]; !seen {
			order = append(order, key)
		}
		byMother[key] = append(byMother[key], rb)
	}

	for _, key := range order {
		group := byMother[key]

		ids := make([]string, 0, len(group))
		names := make([]string, 0, len(group))
		for _, rb := range group {
			ids = append(ids, rb.ID)
			names = append(names, rb.Name)
		}
		sort.Strings(ids)

		anchor := key
		if anchor == "" {
			anchor = group[0].ID
		}

		_, err := r.alerts.FindPendingByMembers(ctx, alerts.KindSlaughterReminder, animals.SpeciesRabbit, ids)
		if err == nil {
			continue // ya existe, no duplicar
		}
		if !errors.Is(err, alerts.ErrNotFound) {
			return err
		}

		legacy, err := r.alerts.FindPendingByAnchor(ctx, alerts.KindSlaughterReminder, animals.SpeciesRabbit, anchor)
		if err == nil {
			// Registro histórico sin membresía: rellenar en vez de duplicar.
			legacy.MemberIDs = ids
			legacy.UpdatedAt = r.now()
			if err := r.alerts.Update(ctx, legacy); err != nil {
				return err
			}
			continue
		}
		if !errors.Is(err, alerts.ErrNotFound) {
			return err
		}

		err = create(ctx, r.alerts, r.now(), alerts.Alert{
			Kind:        alerts.KindSlaughterReminder,
			Description: fmt.Sprintf("Conejos no criadores deben ser sacrificados (80-90 días de edad) - Conejos: %s", strings.Join(names, ", ")),
			InitDate:    today.AddDate(0, 0, -(alerts.SlaughterMaxAgeDays - alerts.SlaughterMinAgeDays)),
			MaxDate:     today.AddDate(0, 0, 7),
			Priority:    alerts.PriorityMedium,
			Species:     animals.SpeciesRabbit,
			AnimalID:    anchor,
			MemberIDs:   ids,
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *Rabbit) animalName(ctx context.Context, id, fallback string) string {
	a, err := r.animals.GetByID(ctx, id)
	if err != nil || a.Name == "" {
		return fallback
	}
	return a.Name
}
