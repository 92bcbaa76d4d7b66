package alerts

import (
	"context"
	"errors"
	"testing"
	"time"

	"farm-husbandry/internal/domain/animals"
	"farm-husbandry/internal/domain/events"
	"farm-husbandry/internal/platform/logger"
)

// -------------------------
// Test repos (in-memory)
// -------------------------

type testTx struct{}

func (testTx) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type testAlertRepo struct {
	byID map[string]Alert
}

func newTestAlertRepo() *testAlertRepo {
	return &testAlertRepo{byID: map[string]Alert{}}
}

func (r *testAlertRepo) Create(ctx context.Context, a Alert) error {
	if a.ID == "" {
		return errors.New("repo: id required")
	}
	r.byID[a.ID] = a
	return nil
}

func (r *testAlertRepo) GetByID(ctx context.Context, id string) (Alert, error) {
	a, ok := r.byID[id]
	if !ok {
		return Alert{}, ErrNotFound
	}
	return a, nil
}

func (r *testAlertRepo) GetByIDForUpdate(ctx context.Context, id string) (Alert, error) {
	return r.GetByID(ctx, id)
}

func (r *testAlertRepo) Update(ctx context.Context, a Alert) error {
	if _, ok := r.byID[a.ID]; !ok {
		return ErrNotFound
	}
	r.byID[a.ID] = a
	return nil
}

func (r *testAlertRepo) ListByStatus(ctx context.Context, st Status) ([]Alert, error) {
	out := make([]Alert, 0)
	for _, a := range r.byID {
		if a.Status == st {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *testAlertRepo) ListPendingByKind(ctx context.Context, kind Kind, species animals.Species) ([]Alert, error) {
	out := make([]Alert, 0)
	for _, a := range r.byID {
		if a.Status == StatusPending && a.Kind == kind && a.Species == species {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *testAlertRepo) FindPendingByMembers(ctx context.Context, kind Kind, species animals.Species, memberIDs []string) (Alert, error) {
	return Alert{}, ErrNotFound
}

func (r *testAlertRepo) FindPendingByAnchor(ctx context.Context, kind Kind, species animals.Species, animalID string) (Alert, error) {
	return Alert{}, ErrNotFound
}

func (r *testAlertRepo) ListPendingReferencing(ctx context.Context, animalID string) ([]Alert, error) {
	out := make([]Alert, 0)
	for _, a := range r.byID {
		if a.Status != StatusPending {
			continue
		}
		if a.AnimalID == animalID || a.HasMember(animalID) {
			out = append(out, a)
		}
	}
	return out, nil
}

type testAnimalRepo struct {
	byID map[string]animals.Animal
}

func newTestAnimalRepo() *testAnimalRepo {
	return &testAnimalRepo{byID: map[string]animals.Animal{}}
}

func (r *testAnimalRepo) Create(ctx context.Context, a animals.Animal) error {
	r.byID[a.ID] = a
	return nil
}

func (r *testAnimalRepo) GetByID(ctx context.Context, id string) (animals.Animal, error) {
	a, ok := r.byID[id]
	if !ok {
		return animals.Animal{}, animals.ErrNotFound
	}
	return a, nil
}

func (r *testAnimalRepo) GetByIDs(ctx context.Context, ids []string) ([]animals.Animal, error) {
	out := make([]animals.Animal, 0, len(ids))
	for _, id := range ids {
		if a, ok := r.byID[id]; ok {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *testAnimalRepo) Update(ctx context.Context, a animals.Animal) error {
	r.byID[a.ID] = a
	return nil
}

func (r *testAnimalRepo) ListChildren(ctx context.Context, motherID string, species animals.Species) ([]animals.Animal, error) {
	out := make([]animals.Animal, 0)
	for _, a := range r.byID {
		if a.MotherID == motherID && a.Species == species && !a.Discarded {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *testAnimalRepo) ListSlaughterEligible(ctx context.Context, q animals.EligibilityQuery) ([]animals.Animal, error) {
	out := make([]animals.Animal, 0)
	for _, a := range r.byID {
		if a.Species != q.Species || !a.SlaughterEligible() || a.BirthDate == nil {
			continue
		}
		if a.BirthDate.Before(q.MinBirthDate) || a.BirthDate.After(q.MaxBirthDate) {
			continue
		}
		if q.MotherID != "" && a.MotherID != q.MotherID {
			continue
		}
		out = append(out, a)
	}
	return out, nil
}

func (r *testAnimalRepo) MarkSlaughtered(ctx context.Context, id string, at time.Time) error {
	a, ok := r.byID[id]
	if !ok {
		return animals.ErrNotFound
	}
	a.Slaughtered = true
	a.SlaughteredDate = &at
	a.InFreezer = true
	r.byID[id] = a
	return nil
}

type testEventRepo struct {
	byID map[string]events.Event
}

func newTestEventRepo() *testEventRepo {
	return &testEventRepo{byID: map[string]events.Event{}}
}

func (r *testEventRepo) Create(ctx context.Context, e events.Event) error {
	r.byID[e.ID] = e
	return nil
}

func (r *testEventRepo) GetByID(ctx context.Context, id string) (events.Event, error) {
	e, ok := r.byID[id]
	if !ok {
		return events.Event{}, events.ErrNotFound
	}
	return e, nil
}

func (r *testEventRepo) List(ctx context.Context, f events.ListFilter) ([]events.Event, error) {
	return nil, nil
}

func (r *testEventRepo) FindRecent(ctx context.Context, q events.RecentQuery) (events.Event, error) {
	for _, e := range r.byID {
		if e.Species != q.Species || e.SubType != q.SubType {
			continue
		}
		if q.AnimalID != "" && e.AnimalID != q.AnimalID {
			continue
		}
		if q.CorralID != "" && e.CorralID != q.CorralID {
			continue
		}
		if e.Date.Before(q.Since) {
			continue
		}
		if q.ExcludeID != "" && e.ID == q.ExcludeID {
			continue
		}
		return e, nil
	}
	return events.Event{}, events.ErrNotFound
}

func (r *testEventRepo) countBySubType(st events.SubType) int {
	n := 0
	for _, e := range r.byID {
		if e.SubType == st {
			n++
		}
	}
	return n
}

// -------------------------
// Helpers
// -------------------------

type fixture struct {
	svc     *Service
	alerts  *testAlertRepo
	animals *testAnimalRepo
	events  *testEventRepo
}

func newFixture(now time.Time) *fixture {
	alertRepo := newTestAlertRepo()
	animalRepo := newTestAnimalRepo()
	eventRepo := newTestEventRepo()

	svc := NewService(alertRepo, animalRepo, eventRepo, testTx{}, logger.New(logger.Options{Level: logger.Error}))
	svc.now = func() time.Time { return now }

	return &fixture{svc: svc, alerts: alertRepo, animals: animalRepo, events: eventRepo}
}

func seedRabbit(f *fixture, id string, motherID string, birth time.Time) {
	f.animals.byID[id] = animals.Animal{
		ID:        id,
		Name:      "Conejo " + id,
		Species:   animals.SpeciesRabbit,
		Gender:    animals.GenderMale,
		BirthDate: &birth,
		MotherID:  motherID,
	}
}

// -------------------------
// Tests: ciclo de vida
// -------------------------

func TestService_Decline_RequiresReason(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	f := newFixture(now)

	f.alerts.byID["a1"] = Alert{
		ID:       "a1",
		Kind:     KindExpectedBirth,
		Status:   StatusPending,
		InitDate: now,
		MaxDate:  now.AddDate(0, 0, 2),
		Species:  animals.SpeciesRabbit,
		AnimalID: "r1",
	}

	_, err := f.svc.Decline(context.Background(), "a1", "   ")
	if !errors.Is(err, ErrMissingReason) {
		t.Fatalf("expected ErrMissingReason, got %v", err)
	}
	if f.alerts.byID["a1"].Status != StatusPending {
		t.Fatalf("expected status unchanged after failed decline, got %s", f.alerts.byID["a1"].Status)
	}

	a, err := f.svc.Decline(context.Background(), "a1", "la coneja no quedó preñada")
	if err != nil {
		t.Fatalf("Decline error: %v", err)
	}
	if a.Status != StatusExpired {
		t.Fatalf("expected EXPIRED, got %s", a.Status)
	}
	if a.DeclinedReason == "" || a.ResolvedAt == nil {
		t.Fatalf("expected reason and resolved_at set")
	}
}

func TestService_TerminalAlerts_RejectFurtherTransitions(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	f := newFixture(now)

	resolved := now.AddDate(0, 0, -1)
	f.alerts.byID["done"] = Alert{
		ID: "done", Kind: KindExpectedBirth, Status: StatusDone,
		InitDate: now, MaxDate: now.AddDate(0, 0, 2),
		Species: animals.SpeciesCow, AnimalID: "c1", ResolvedAt: &resolved,
	}
	f.alerts.byID["expired"] = Alert{
		ID: "expired", Kind: KindExpectedBirth, Status: StatusExpired,
		InitDate: now, MaxDate: now.AddDate(0, 0, 2),
		Species: animals.SpeciesCow, AnimalID: "c1", ResolvedAt: &resolved,
	}

	if _, err := f.svc.Complete(context.Background(), "done", nil); !errors.Is(err, ErrAlreadyResolved) {
		t.Fatalf("expected ErrAlreadyResolved completing DONE alert, got %v", err)
	}
	if _, err := f.svc.Decline(context.Background(), "expired", "motivo"); !errors.Is(err, ErrAlreadyResolved) {
		t.Fatalf("expected ErrAlreadyResolved declining EXPIRED alert, got %v", err)
	}
	if _, err := f.svc.Complete(context.Background(), "missing", nil); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestService_Complete_GroupedSlaughter_PartialThenFull(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	f := newFixture(now)

	birth := now.AddDate(0, 0, -85)
	members := []string{"r1", "r2", "r3", "r4", "r5", "r6"}
	for _, id := range members {
		seedRabbit(f, id, "mother", birth)
	}

	f.alerts.byID["g1"] = Alert{
		ID: "g1", Kind: KindSlaughterReminder, Status: StatusPending,
		InitDate: birth.AddDate(0, 0, 80), MaxDate: birth.AddDate(0, 0, 90),
		Species: animals.SpeciesRabbit, AnimalID: "mother",
		MemberIDs: members,
	}

	// Subconjunto estricto: la alerta se encoge y sigue PENDING.
	a, err := f.svc.Complete(context.Background(), "g1", []string{"r1", "r2", "r3", "r4"})
	if err != nil {
		t.Fatalf("Complete (partial) error: %v", err)
	}
	if a.Status != StatusPending {
		t.Fatalf("expected PENDING after partial completion, got %s", a.Status)
	}
	if len(a.MemberIDs) != 2 {
		t.Fatalf("expected 2 remaining members, got %v", a.MemberIDs)
	}
	if got := f.events.countBySubType(events.RabbitSlaughter); got != 4 {
		t.Fatalf("expected 4 slaughter events after partial completion, got %d", got)
	}
	for _, id := range []string{"r1", "r2", "r3", "r4"} {
		if !f.animals.byID[id].Slaughtered || !f.animals.byID[id].InFreezer {
			t.Fatalf("expected %s slaughtered + in freezer", id)
		}
	}

	// Resto de la membresía: transiciona a DONE.
	a, err = f.svc.Complete(context.Background(), "g1", []string{"r5", "r6"})
	if err != nil {
		t.Fatalf("Complete (rest) error: %v", err)
	}
	if a.Status != StatusDone || a.ResolvedAt == nil {
		t.Fatalf("expected DONE with resolved_at, got %s", a.Status)
	}
	if got := f.events.countBySubType(events.RabbitSlaughter); got != 6 {
		t.Fatalf("expected 6 slaughter events total, got %d", got)
	}
}

func TestService_Complete_GroupedSlaughter_RejectsInvalidMembers(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	f := newFixture(now)

	birth := now.AddDate(0, 0, -85)
	seedRabbit(f, "r1", "mother", birth)
	seedRabbit(f, "r2", "mother", birth)

	f.alerts.byID["g1"] = Alert{
		ID: "g1", Kind: KindSlaughterReminder, Status: StatusPending,
		InitDate: now, MaxDate: now.AddDate(0, 0, 5),
		Species: animals.SpeciesRabbit, AnimalID: "mother",
		MemberIDs: []string{"r1", "r2"},
	}

	// Sin miembros => validación.
	if _, err := f.svc.Complete(context.Background(), "g1", nil); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for empty member subset, got %v", err)
	}

	// Id fuera de la membresía => MembershipError con el id ofensor.
	_, err := f.svc.Complete(context.Background(), "g1", []string{"r1", "intruso"})
	var me *MembershipError
	if !errors.As(err, &me) {
		t.Fatalf("expected MembershipError, got %v", err)
	}
	if len(me.Invalid) != 1 || me.Invalid[0] != "intruso" {
		t.Fatalf("expected invalid ids [intruso], got %v", me.Invalid)
	}
	if f.alerts.byID["g1"].Status != StatusPending {
		t.Fatalf("expected alert unchanged after failed completion")
	}
}

func TestService_Complete_SlaughterCascades_ToOtherAlerts(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	f := newFixture(now)

	birth := now.AddDate(0, 0, -85)
	seedRabbit(f, "r1", "mother", birth)
	seedRabbit(f, "r2", "mother", birth)

	f.alerts.byID["g1"] = Alert{
		ID: "g1", Kind: KindSlaughterReminder, Status: StatusPending,
		InitDate: now, MaxDate: now.AddDate(0, 0, 5),
		Species: animals.SpeciesRabbit, AnimalID: "mother",
		MemberIDs: []string{"r1", "r2"},
	}
	// Alerta individual vieja para el mismo conejo: debe auto-completarse.
	f.alerts.byID["solo"] = Alert{
		ID: "solo", Kind: KindSlaughterReminder, Status: StatusPending,
		InitDate: now, MaxDate: now.AddDate(0, 0, 5),
		Species: animals.SpeciesRabbit, AnimalID: "r1",
	}

	if _, err := f.svc.Complete(context.Background(), "g1", []string{"r1"}); err != nil {
		t.Fatalf("Complete error: %v", err)
	}

	if f.alerts.byID["solo"].Status != StatusDone {
		t.Fatalf("expected individual alert auto-completed, got %s", f.alerts.byID["solo"].Status)
	}
	g := f.alerts.byID["g1"]
	if g.Status != StatusPending || len(g.MemberIDs) != 1 || g.MemberIDs[0] != "r2" {
		t.Fatalf("expected grouped alert shrunk to [r2], got %s %v", g.Status, g.MemberIDs)
	}
}

func TestService_Complete_DerivedEvent_CreatedAndReused(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	f := newFixture(now)

	f.animals.byID["c1"] = animals.Animal{ID: "c1", Name: "Lola", Species: animals.SpeciesCow, Gender: animals.GenderFemale}

	f.alerts.byID["d1"] = Alert{
		ID: "d1", Kind: KindDewormingReminder, Status: StatusPending,
		InitDate: now.AddDate(0, 0, -1), MaxDate: now.AddDate(0, 0, 6),
		Species: animals.SpeciesCow, AnimalID: "c1",
		Description: "Desparasitación de vaca Lola",
	}
	f.alerts.byID["d2"] = Alert{
		ID: "d2", Kind: KindDewormingReminder, Status: StatusPending,
		InitDate: now.AddDate(0, 0, -1), MaxDate: now.AddDate(0, 0, 6),
		Species: animals.SpeciesCow, AnimalID: "c1",
		Description: "Desparasitación de vaca Lola (duplicada)",
	}

	a, err := f.svc.Complete(context.Background(), "d1", nil)
	if err != nil {
		t.Fatalf("Complete error: %v", err)
	}
	if a.Status != StatusDone || a.EventID == "" {
		t.Fatalf("expected DONE with derived event, got %s event=%q", a.Status, a.EventID)
	}
	if got := f.events.countBySubType(events.CowDeworming); got != 1 {
		t.Fatalf("expected 1 derived event, got %d", got)
	}

	// Segunda alerta equivalente dentro de la ventana de 7 días: reutiliza el
	// evento en lugar de duplicarlo.
	b, err := f.svc.Complete(context.Background(), "d2", nil)
	if err != nil {
		t.Fatalf("Complete (second) error: %v", err)
	}
	if b.EventID != a.EventID {
		t.Fatalf("expected reused event id %q, got %q", a.EventID, b.EventID)
	}
	if got := f.events.countBySubType(events.CowDeworming); got != 1 {
		t.Fatalf("expected still 1 derived event, got %d", got)
	}
}

func TestService_Complete_UnmappedKind_NoEvent(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	f := newFixture(now)

	f.alerts.byID["b1"] = Alert{
		ID: "b1", Kind: KindBreedingReady, Status: StatusPending,
		InitDate: now, MaxDate: now.AddDate(0, 0, 7),
		Species: animals.SpeciesRabbit, AnimalID: "r1",
	}

	a, err := f.svc.Complete(context.Background(), "b1", nil)
	if err != nil {
		t.Fatalf("Complete error: %v", err)
	}
	if a.Status != StatusDone {
		t.Fatalf("expected DONE, got %s", a.Status)
	}
	if a.EventID != "" {
		t.Fatalf("expected no derived event for unmapped kind, got %q", a.EventID)
	}
	if len(f.events.byID) != 0 {
		t.Fatalf("expected no events, got %d", len(f.events.byID))
	}
}

// -------------------------
// Tests: reconciliación
// -------------------------

func TestService_Reconcile_ExpiresStalePending(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	f := newFixture(now)

	f.alerts.byID["old"] = Alert{
		ID: "old", Kind: KindExpectedBirth, Status: StatusPending,
		InitDate: now.AddDate(0, 0, -10), MaxDate: now.AddDate(0, 0, -1),
		Species: animals.SpeciesCow, AnimalID: "c1",
	}
	f.alerts.byID["fresh"] = Alert{
		ID: "fresh", Kind: KindExpectedBirth, Status: StatusPending,
		InitDate: now, MaxDate: now.AddDate(0, 0, 3),
		Species: animals.SpeciesCow, AnimalID: "c1",
	}

	pending, err := f.svc.List(context.Background(), "")
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if len(pending) != 1 || pending[0].ID != "fresh" {
		t.Fatalf("expected only fresh alert pending, got %v", pending)
	}

	expired := f.alerts.byID["old"]
	if expired.Status != StatusExpired || expired.ResolvedAt == nil {
		t.Fatalf("expected old alert EXPIRED with resolved_at, got %s", expired.Status)
	}
}

func TestService_Reconcile_Idempotent(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	f := newFixture(now)

	birth := now.AddDate(0, 0, -85)
	seedRabbit(f, "r1", "mother", birth)
	seedRabbit(f, "r2", "mother", birth)

	f.alerts.byID["old"] = Alert{
		ID: "old", Kind: KindExpectedBirth, Status: StatusPending,
		InitDate: now.AddDate(0, 0, -10), MaxDate: now.AddDate(0, 0, -1),
		Species: animals.SpeciesRabbit, AnimalID: "mother",
	}
	f.alerts.byID["g1"] = Alert{
		ID: "g1", Kind: KindSlaughterReminder, Status: StatusPending,
		InitDate: now, MaxDate: now.AddDate(0, 0, 5),
		Species: animals.SpeciesRabbit, AnimalID: "mother",
		MemberIDs: []string{"r1", "r2"},
	}

	if err := f.svc.VerifyAndUpdate(context.Background()); err != nil {
		t.Fatalf("VerifyAndUpdate #1 error: %v", err)
	}
	snapshot := map[string]Alert{}
	for id, a := range f.alerts.byID {
		snapshot[id] = a
	}

	if err := f.svc.VerifyAndUpdate(context.Background()); err != nil {
		t.Fatalf("VerifyAndUpdate #2 error: %v", err)
	}
	for id, a := range f.alerts.byID {
		prev := snapshot[id]
		if a.Status != prev.Status || len(a.MemberIDs) != len(prev.MemberIDs) || a.UpdatedAt != prev.UpdatedAt {
			t.Fatalf("expected second pass to be a no-op, alert %s changed: %#v vs %#v", id, prev, a)
		}
	}
}

func TestService_Reconcile_HealsLegacyMembership(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	f := newFixture(now)

	birth := now.AddDate(0, 0, -85)
	seedRabbit(f, "r1", "mother", birth)
	seedRabbit(f, "r2", "mother", birth)

	// Registro histórico: sin membresía, anclado en la madre.
	f.alerts.byID["legacy"] = Alert{
		ID: "legacy", Kind: KindSlaughterReminder, Status: StatusPending,
		InitDate: now, MaxDate: now.AddDate(0, 0, 5),
		Species: animals.SpeciesRabbit, AnimalID: "mother",
	}

	if err := f.svc.VerifyAndUpdate(context.Background()); err != nil {
		t.Fatalf("VerifyAndUpdate error: %v", err)
	}

	healed := f.alerts.byID["legacy"]
	if healed.Status != StatusPending {
		t.Fatalf("expected legacy alert still PENDING, got %s", healed.Status)
	}
	if len(healed.MemberIDs) != 2 {
		t.Fatalf("expected membership backfilled with 2 rabbits, got %v", healed.MemberIDs)
	}
}

func TestService_Reconcile_IndividualAnchor_NotAutoCompleted(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	f := newFixture(now)

	// Alerta individual de sacrificio: el ancla es el propio conejo, sin
	// madre. La sanación no debe completarla por membresía vacía.
	birth := now.AddDate(0, 0, -85)
	seedRabbit(f, "solo", "", birth)

	f.alerts.byID["s1"] = Alert{
		ID: "s1", Kind: KindSlaughterReminder, Status: StatusPending,
		InitDate: birth.AddDate(0, 0, 80), MaxDate: birth.AddDate(0, 0, 90),
		Species: animals.SpeciesRabbit, AnimalID: "solo",
	}

	if err := f.svc.VerifyAndUpdate(context.Background()); err != nil {
		t.Fatalf("VerifyAndUpdate error: %v", err)
	}

	a := f.alerts.byID["s1"]
	if a.Status != StatusPending {
		t.Fatalf("expected individual slaughter alert still PENDING, got %s", a.Status)
	}
	if len(a.MemberIDs) != 1 || a.MemberIDs[0] != "solo" {
		t.Fatalf("expected membership healed to the anchor itself, got %v", a.MemberIDs)
	}
}

func TestService_Reconcile_ShrinksAndCompletesGrouped(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	f := newFixture(now)

	birth := now.AddDate(0, 0, -85)
	seedRabbit(f, "r1", "mother", birth)
	seedRabbit(f, "r2", "mother", birth)
	seedRabbit(f, "r3", "mother", birth)

	// r1 ya fue sacrificado por fuera, r2 descartado.
	a1 := f.animals.byID["r1"]
	a1.Slaughtered = true
	f.animals.byID["r1"] = a1
	a2 := f.animals.byID["r2"]
	a2.Discarded = true
	f.animals.byID["r2"] = a2

	f.alerts.byID["g1"] = Alert{
		ID: "g1", Kind: KindSlaughterReminder, Status: StatusPending,
		InitDate: now, MaxDate: now.AddDate(0, 0, 5),
		Species: animals.SpeciesRabbit, AnimalID: "mother",
		MemberIDs: []string{"r1", "r2", "r3"},
	}

	if err := f.svc.VerifyAndUpdate(context.Background()); err != nil {
		t.Fatalf("VerifyAndUpdate error: %v", err)
	}

	g := f.alerts.byID["g1"]
	if g.Status != StatusPending || len(g.MemberIDs) != 1 || g.MemberIDs[0] != "r3" {
		t.Fatalf("expected shrink to [r3], got %s %v", g.Status, g.MemberIDs)
	}

	// r3 también resuelto: la alerta se completa sola.
	a3 := f.animals.byID["r3"]
	a3.Slaughtered = true
	f.animals.byID["r3"] = a3

	if err := f.svc.VerifyAndUpdate(context.Background()); err != nil {
		t.Fatalf("VerifyAndUpdate #2 error: %v", err)
	}
	g = f.alerts.byID["g1"]
	if g.Status != StatusDone || g.ResolvedAt == nil {
		t.Fatalf("expected grouped alert auto-completed, got %s", g.Status)
	}
}

// -------------------------
// Tests: miembros
// -------------------------

func TestService_Members_HealsAndReturnsAnimals(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	f := newFixture(now)

	birth := now.AddDate(0, 0, -85)
	seedRabbit(f, "r1", "mother", birth)
	seedRabbit(f, "r2", "mother", birth)

	f.alerts.byID["legacy"] = Alert{
		ID: "legacy", Kind: KindSlaughterReminder, Status: StatusPending,
		InitDate: now, MaxDate: now.AddDate(0, 0, 5),
		Species: animals.SpeciesRabbit, AnimalID: "mother",
	}

	members, err := f.svc.Members(context.Background(), "legacy")
	if err != nil {
		t.Fatalf("Members error: %v", err)
	}
	if len(members) != 2 {
		t.Fatalf("expected 2 members, got %d", len(members))
	}
	if len(f.alerts.byID["legacy"].MemberIDs) != 2 {
		t.Fatalf("expected recomputed membership persisted")
	}
}
