package rules

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"farm-husbandry/internal/domain/alerts"
	"farm-husbandry/internal/domain/animals"
	"farm-husbandry/internal/domain/events"
	"farm-husbandry/internal/metrics"
)

const sheepDewormingIntervalDays = 180 // cada 6 meses

// Planner despacha nacimientos y eventos registrados hacia los generadores
// por especie. Implementa los puertos de animals y events.
type Planner struct {
	Rabbit *Rabbit
	Cow    *Cow

	alerts  alerts.Repository
	animals animals.Repository
	now     func() time.Time
}

func NewPlanner(alertRepo alerts.Repository, animalRepo animals.Repository, eventRepo events.Repository) *Planner {
	return &Planner{
		Rabbit:  NewRabbit(alertRepo, animalRepo),
		Cow:     NewCow(alertRepo, animalRepo, eventRepo),
		alerts:  alertRepo,
		animals: animalRepo,
		now:     time.Now,
	}
}

// WithClock fija el reloj del planner y de sus generadores. Para tests.
func (p *Planner) WithClock(now func() time.Time) *Planner {
	p.now = now
	p.Rabbit.now = now
	p.Cow.now = now
	return p
}

// AnimalBorn programa las alertas de nacimiento de un animal individual.
func (p *Planner) AnimalBorn(ctx context.Context, a animals.Animal) error {
	switch a.Species {
	case animals.SpeciesRabbit:
		return p.Rabbit.BirthAlerts(ctx, a)
	case animals.SpeciesCow:
		return p.Cow.BirthAlerts(ctx, a)
	}
	return nil
}

// LitterBorn programa las alertas de una camada de conejos: lactancia y
// destete para la madre, monta para las crías criadoras y la alerta agrupada
// de sacrificio para las no criadoras.
func (p *Planner) LitterBorn(ctx context.Context, mother animals.Animal, offspring []animals.Animal) error {
	if len(offspring) == 0 {
		return nil
	}
	birth := p.now()
	if offspring[0].BirthDate != nil {
		birth = *offspring[0].BirthDate
	}

	if err := p.Rabbit.LactationAlerts(ctx, mother, birth); err != nil {
		return err
	}

	nonBreeders := make([]animals.Animal, 0, len(offspring))
	for _, o := range offspring {
		if o.IsBreeder {
			if err := p.Rabbit.BirthAlerts(ctx, o); err != nil {
				return err
			}
			continue
		}
		nonBreeders = append(nonBreeders, o)
	}
	return p.Rabbit.LitterSlaughterAlert(ctx, mother, nonBreeders, birth)
}

// EventRecorded reacciona a un evento de manejo recién registrado: los
// eventos de preñez y desparasitación disparan sus calendarios de alertas.
func (p *Planner) EventRecorded(ctx context.Context, e events.Event) error {
	switch {
	case e.Species == animals.SpeciesRabbit && e.SubType == events.RabbitPregnancy:
		return p.Rabbit.PregnancyAlerts(ctx, e.AnimalID, e.Date)
	case e.Species == animals.SpeciesCow && e.SubType == events.CowPregnancy:
		return p.Cow.PregnancyAlerts(ctx, e.AnimalID, e.Date)
	case e.Species == animals.SpeciesCow && e.SubType == events.CowDeworming:
		return p.Cow.PeriodicDeworming(ctx, e.AnimalID, e.Date, e.ID)
	case e.Species == animals.SpeciesSheep && e.SubType == events.SheepDeworming:
		return p.sheepDeworming(ctx, e)
	}
	return nil
}

// sheepDeworming programa la próxima desparasitación ovina 6 meses después
// de la registrada.
func (p *Planner) sheepDeworming(ctx context.Context, e events.Event) error {
	name := "Oveja"
	if e.AnimalID != "" {
		if a, err := p.animals.GetByID(ctx, e.AnimalID); err == nil && a.Name != "" {
			name = a.Name
		}
	}
	next := e.Date.AddDate(0, 0, sheepDewormingIntervalDays)

	return create(ctx, p.alerts, p.now(), alerts.Alert{
		Kind:        alerts.KindDewormingReminder,
		Description: fmt.Sprintf("Desparasitación periódica de oveja %q (cada 6 meses)", name),
		InitDate:    next.AddDate(0, 0, -7),
		MaxDate:     next.AddDate(0, 0, 7),
		Priority:    alerts.PriorityMedium,
		Species:     animals.SpeciesSheep,
		AnimalID:    e.AnimalID,
		CorralID:    e.CorralID,
		EventID:     e.ID,
	})
}

// create completa los campos comunes de una alerta nueva y la persiste.
func create(ctx context.Context, repo alerts.Repository, now time.Time, a alerts.Alert) error {
	a.ID = uuid.NewString()
	a.Status = alerts.StatusPending
	a.CreatedAt = now
	a.UpdatedAt = now
	if err := repo.Create(ctx, a); err != nil {
		return err
	}
	metrics.AlertsCreatedTotal.WithLabelValues(string(a.Kind)).Inc()
	return nil
}
