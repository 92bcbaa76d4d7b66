package rules

import (
	"context"
	"errors"
	"fmt"
	"time"

	"farm-husbandry/internal/domain/alerts"
	"farm-husbandry/internal/domain/animals"
	"farm-husbandry/internal/domain/events"
)

// Constantes de tiempo para vacas (en días).
const (
	cowDewormingIntervalDays = 90  // cada 3 meses
	cowBreedingAgeMinDays    = 540 // 18 meses
	cowBreedingAgeMaxDays    = 720 // 24 meses

	// Offsets desde la confirmación de preñez.
	cowPregnancyDewormingDays = 90
	cowSaltStopDays           = 180
	cowPrepartumFoodDays      = 195 // 6.5 meses
	cowPregnancyDurationDays  = 270
	cowPregnancyWindowDays    = 7

	cowLactationDurationDays = 210 // 7 meses
	cowRestMinDays           = 60
	cowRestMaxDays           = 90
)

// dewormingMonthOffsets son los 8 recordatorios de desparasitación del
// ternero, en múltiplos de 3 meses desde el nacimiento.
var dewormingMonthOffsets = []int{3, 6, 9, 12, 15, 18, 21, 24}

type Cow struct {
	alerts  alerts.Repository
	animals animals.Repository
	events  events.Repository
	now     func() time.Time
}

func NewCow(alertRepo alerts.Repository, animalRepo animals.Repository, eventRepo events.Repository) *Cow {
	return &Cow{
		alerts:  alertRepo,
		animals: animalRepo,
		events:  eventRepo,
		now:     time.Now,
	}
}

// BirthAlerts crea las alertas al nacer un ternero: calendario de
// desparasitación, ventana de monta si es hembra criadora, y cuidado
// post-parto + lactancia para la madre si está registrada.
func (c *Cow) BirthAlerts(ctx context.Context, calf animals.Animal) error {
	if calf.Species != animals.SpeciesCow || calf.BirthDate == nil {
		return nil
	}
	birth := *calf.BirthDate

	for _, months := range dewormingMonthOffsets {
		due := birth.AddDate(0, 0, months*30)
		err := create(ctx, c.alerts, c.now(), alerts.Alert{
			Kind:        alerts.KindDewormingReminder,
			Description: fmt.Sprintf("Desparasitación programada para ternero %q (nacido %d meses atrás)", calf.Name, months),
			InitDate:    due.AddDate(0, 0, -7),
			MaxDate:     due.AddDate(0, 0, 7),
			Priority:    alerts.PriorityMedium,
			Species:     animals.SpeciesCow,
			AnimalID:    calf.ID,
		})
		if err != nil {
			return err
		}
	}

	if calf.Gender == animals.GenderFemale && calf.IsBreeder {
		err := create(ctx, c.alerts, c.now(), alerts.Alert{
			Kind:        alerts.KindBreedingReminder,
			Description: fmt.Sprintf("Ternera criadora %q debe ser preñada (18-24 meses de edad)", calf.Name),
			InitDate:    birth.AddDate(0, 0, cowBreedingAgeMinDays),
			MaxDate:     birth.AddDate(0, 0, cowBreedingAgeMaxDays),
			Priority:    alerts.PriorityHigh,
			Species:     animals.SpeciesCow,
			AnimalID:    calf.ID,
		})
		if err != nil {
			return err
		}
	}

	if calf.MotherID == "" {
		return nil
	}
	mother, err := c.animals.GetByID(ctx, calf.MotherID)
	if err != nil {
		if errors.Is(err, animals.ErrNotFound) {
			return nil
		}
		return err
	}
	if mother.Species != animals.SpeciesCow || mother.Gender != animals.GenderFemale {
		return nil
	}

	err = create(ctx, c.alerts, c.now(), alerts.Alert{
		Kind:        alerts.KindPostBirthCare,
		Description: fmt.Sprintf("Desparasitación y vitaminización de vaca %q después del parto del ternero %q", mother.Name, calf.Name),
		InitDate:    birth,
		MaxDate:     birth.AddDate(0, 0, 7),
		Priority:    alerts.PriorityHigh,
		Species:     animals.SpeciesCow,
		AnimalID:    mother.ID,
	})
	if err != nil {
		return err
	}

	return c.LactationAlerts(ctx, mother, birth)
}

// PregnancyAlerts programa las cuatro alertas de la gestación de una vaca a
// partir de la fecha de confirmación.
func (c *Cow) PregnancyAlerts(ctx context.Context, cowID string, pregnancyDate time.Time) error {
	name := c.animalName(ctx, cowID, "Vaca")

	deworming := pregnancyDate.AddDate(0, 0, cowPregnancyDewormingDays)
	err := create(ctx, c.alerts, c.now(), alerts.Alert{
		Kind:        alerts.KindPregnancyDeworming,
		Description: fmt.Sprintf("Desparasitación y vitaminización de vaca preñada %q (3 meses de gestación)", name),
		InitDate:    deworming.AddDate(0, 0, -7),
		MaxDate:     deworming.AddDate(0, 0, 7),
		Priority:    alerts.PriorityMedium,
		Species:     animals.SpeciesCow,
		AnimalID:    cowID,
	})
	if err != nil {
		return err
	}

	saltStop := pregnancyDate.AddDate(0, 0, cowSaltStopDays)
	err = create(ctx, c.alerts, c.now(), alerts.Alert{
		Kind:        alerts.KindStopMineralSalt,
		Description: fmt.Sprintf("Dejar de dar sal mineralizada a vaca preñada %q (6 meses de gestación)", name),
		InitDate:    saltStop.AddDate(0, 0, -3),
		MaxDate:     saltStop.AddDate(0, 0, 3),
		Priority:    alerts.PriorityMedium,
		Species:     animals.SpeciesCow,
		AnimalID:    cowID,
	})
	if err != nil {
		return err
	}

	prepartum := pregnancyDate.AddDate(0, 0, cowPrepartumFoodDays)
	err = create(ctx, c.alerts, c.now(), alerts.Alert{
		Kind:        alerts.KindPrepartumFood,
		Description: fmt.Sprintf("Empezar a dar alimento PRE PARTO a vaca preñada %q (6.5 meses de gestación)", name),
		InitDate:    prepartum.AddDate(0, 0, -3),
		MaxDate:     prepartum.AddDate(0, 0, 3),
		Priority:    alerts.PriorityMedium,
		Species:     animals.SpeciesCow,
		AnimalID:    cowID,
	})
	if err != nil {
		return err
	}

	expected := pregnancyDate.AddDate(0, 0, cowPregnancyDurationDays)
	return create(ctx, c.alerts, c.now(), alerts.Alert{
		Kind:        alerts.KindExpectedBirth,
		Description: fmt.Sprintf("Nacimiento esperado del ternero de la vaca %q (9 meses de gestación, ±1 semana)", name),
		InitDate:    expected.AddDate(0, 0, -cowPregnancyWindowDays),
		MaxDate:     expected.AddDate(0, 0, cowPregnancyWindowDays),
		Priority:    alerts.PriorityHigh,
		Species:     animals.SpeciesCow,
		AnimalID:    cowID,
	})
}

// LactationAlerts programa el secado de ubre a los 7 meses del parto y el
// período de reposo de 2-3 meses.
func (c *Cow) LactationAlerts(ctx context.Context, mother animals.Animal, birthDate time.Time) error {
	calfName := "ternero"
	children, err := c.animals.ListChildren(ctx, mother.ID, animals.SpeciesCow)
	if err != nil {
		return err
	}
	for _, ch := range children {
		if ch.BirthDate != nil && ch.BirthDate.Equal(birthDate) {
			calfName = ch.Name
			break
		}
	}

	drying := birthDate.AddDate(0, 0, cowLactationDurationDays)
	err = create(ctx, c.alerts, c.now(), alerts.Alert{
		Kind:        alerts.KindDryOffUdder,
		Description: fmt.Sprintf("Iniciar proceso de secado de ubre de vaca %q (7 meses de lactancia del ternero %q)", mother.Name, calfName),
		InitDate:    drying.AddDate(0, 0, -7),
		MaxDate:     drying.AddDate(0, 0, 7),
		Priority:    alerts.PriorityMedium,
		Species:     animals.SpeciesCow,
		AnimalID:    mother.ID,
	})
	if err != nil {
		return err
	}

	return create(ctx, c.alerts, c.now(), alerts.Alert{
		Kind:        alerts.KindRestPeriod,
		Description: fmt.Sprintf("Período de reposo de vaca %q después del parto del ternero %q (2-3 meses)", mother.Name, calfName),
		InitDate:    birthDate.AddDate(0, 0, cowRestMinDays),
		MaxDate:     birthDate.AddDate(0, 0, cowRestMaxDays),
		Priority:    alerts.PriorityLow,
		Species:     animals.SpeciesCow,
		AnimalID:    mother.ID,
	})
}

// PeriodicDeworming programa la próxima desparasitación 90 días después de
// la última, salvo que ya exista otro evento de desparasitación en los
// últimos 7 días (guarda contra entradas repetidas).
func (c *Cow) PeriodicDeworming(ctx context.Context, cowID string, lastDeworming time.Time, triggerEventID string) error {
	_, err := c.events.FindRecent(ctx, events.RecentQuery{
		Species:   animals.SpeciesCow,
		SubType:   events.CowDeworming,
		AnimalID:  cowID,
		Since:     c.now().AddDate(0, 0, -7),
		ExcludeID: triggerEventID,
	})
	if err == nil {
		return nil // ya hay un recordatorio derivado de un evento reciente
	}
	if !errors.Is(err, events.ErrNotFound) {
		return err
	}

	name := c.animalName(ctx, cowID, "Vaca")
	next := lastDeworming.AddDate(0, 0, cowDewormingIntervalDays)

	return create(ctx, c.alerts, c.now(), alerts.Alert{
		Kind:        alerts.KindDewormingReminder,
		Description: fmt.Sprintf("Desparasitación periódica de vaca %q (cada 3 meses)", name),
		InitDate:    next.AddDate(0, 0, -7),
		MaxDate:     next.AddDate(0, 0, 7),
		Priority:    alerts.PriorityMedium,
		Species:     animals.SpeciesCow,
		AnimalID:    cowID,
	})
}

func (c *Cow) animalName(ctx context.Context, id, fallback string) string {
	a, err := c.animals.GetByID(ctx, id)
	if err != nil || a.Name == "" {
		return fallback
	}
	return a.Name
}
