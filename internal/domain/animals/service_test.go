package animals

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

type testTx struct{}

func (testTx) InTx(ctx context.Context, fn func(context.Context) error) error { return fn(ctx) }

type testRepo struct {
	byID map[string]Animal
}

func newTestRepo() *testRepo { return &testRepo{byID: map[string]Animal{}} }

func (r *testRepo) Create(_ context.Context, a Animal) error {
	r.byID[a.ID] = a
	return nil
}

func (r *testRepo) GetByID(_ context.Context, id string) (Animal, error) {
	a, ok := r.byID[id]
	if !ok {
		return Animal{}, ErrNotFound
	}
	return a, nil
}

func (r *testRepo) GetByIDs(_ context.Context, ids []string) ([]Animal, error) {
	out := make([]Animal, 0, len(ids))
	for _, id := range ids {
		if a, ok := r.byID[id]; ok {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *testRepo) Update(_ context.Context, a Animal) error {
	if _, ok := r.byID[a.ID]; !ok {
		return ErrNotFound
	}
	r.byID[a.ID] = a
	return nil
}

func (r *testRepo) ListChildren(_ context.Context, motherID string, species Species) ([]Animal, error) {
	var out []Animal
	for _, a := range r.byID {
		if a.MotherID == motherID && a.Species == species && !a.Discarded {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *testRepo) ListSlaughterEligible(_ context.Context, _ EligibilityQuery) ([]Animal, error) {
	return nil, nil
}

func (r *testRepo) MarkSlaughtered(_ context.Context, id string, at time.Time) error {
	a, ok := r.byID[id]
	if !ok {
		return ErrNotFound
	}
	a.Slaughtered = true
	a.InFreezer = true
	a.SlaughteredDate = &at
	r.byID[id] = a
	return nil
}

type testDeadRepo struct {
	records []DeadOffspring
}

func (r *testDeadRepo) Create(_ context.Context, d DeadOffspring) error {
	r.records = append(r.records, d)
	return nil
}

func (r *testDeadRepo) ListByMother(_ context.Context, motherID string) ([]DeadOffspring, error) {
	var out []DeadOffspring
	for _, d := range r.records {
		if d.MotherID == motherID {
			out = append(out, d)
		}
	}
	return out, nil
}

type testPlanner struct {
	born    []Animal
	litters [][]Animal
}

func (p *testPlanner) AnimalBorn(_ context.Context, a Animal) error {
	p.born = append(p.born, a)
	return nil
}

func (p *testPlanner) LitterBorn(_ context.Context, _ Animal, offspring []Animal) error {
	p.litters = append(p.litters, offspring)
	return nil
}

func newTestService() (*Service, *testRepo, *testDeadRepo, *testPlanner, time.Time) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	repo := newTestRepo()
	dead := &testDeadRepo{}
	planner := &testPlanner{}
	svc := NewService(repo, dead, planner, testTx{})
	svc.now = func() time.Time { return now }
	return svc, repo, dead, planner, now
}

func seedMother(repo *testRepo) Animal {
	m := Animal{
		ID: "mom-1", Name: "Greta",
		Species: SpeciesRabbit, Gender: GenderFemale, IsBreeder: true,
	}
	repo.byID[m.ID] = m
	return m
}

func TestRegister_RequiresNameAndKnownSpecies(t *testing.T) {
	svc, _, _, _, _ := newTestService()

	if _, err := svc.Register(context.Background(), RegisterInput{Species: SpeciesCow}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for empty name, got %v", err)
	}
	if _, err := svc.Register(context.Background(), RegisterInput{Name: "Lola", Species: "LLAMA"}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for unknown species, got %v", err)
	}
}

func TestRegister_ParentsForceBornOrigin(t *testing.T) {
	svc, repo, _, _, _ := newTestService()
	seedMother(repo)

	_, err := svc.Register(context.Background(), RegisterInput{
		Name: "Cría", Species: SpeciesRabbit, Gender: GenderMale,
		Origin: OriginPurchased, MotherID: "mom-1",
	})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for purchased animal with parents, got %v", err)
	}
}

func TestRegister_ValidatesParent(t *testing.T) {
	svc, repo, _, _, _ := newTestService()
	repo.byID["cow-1"] = Animal{ID: "cow-1", Species: SpeciesCow, Gender: GenderFemale}
	repo.byID["discarded"] = Animal{ID: "discarded", Species: SpeciesRabbit, Gender: GenderFemale, Discarded: true}

	birth := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	cases := []struct {
		name     string
		motherID string
	}{
		{"wrong species", "cow-1"},
		{"discarded mother", "discarded"},
		{"missing mother", "ghost"},
	}
	for _, c := range cases {
		_, err := svc.Register(context.Background(), RegisterInput{
			Name: "Cría", Species: SpeciesRabbit, Gender: GenderMale,
			Origin: OriginBorn, BirthDate: &birth, MotherID: c.motherID,
		})
		if err == nil {
			t.Fatalf("%s: expected error", c.name)
		}
	}
}

func TestRegister_BornWithDateTriggersPlanner(t *testing.T) {
	svc, _, _, planner, _ := newTestService()

	birth := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	a, err := svc.Register(context.Background(), RegisterInput{
		Name: "Luna", Species: SpeciesRabbit, Gender: GenderFemale,
		Origin: OriginBorn, BirthDate: &birth, IsBreeder: true,
	})
	if err != nil {
		t.Fatalf("Register error: %v", err)
	}
	if len(planner.born) != 1 || planner.born[0].ID != a.ID {
		t.Fatalf("expected planner notified of the birth, got %+v", planner.born)
	}

	// Un animal comprado no dispara reglas de nacimiento.
	if _, err := svc.Register(context.Background(), RegisterInput{
		Name: "Comprada", Species: SpeciesCow, Gender: GenderFemale,
	}); err != nil {
		t.Fatalf("Register error: %v", err)
	}
	if len(planner.born) != 1 {
		t.Fatalf("purchased animal must not trigger birth rules, got %d calls", len(planner.born))
	}
}

func TestCreateLitter_Validations(t *testing.T) {
	svc, repo, _, _, _ := newTestService()
	seedMother(repo)
	birth := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)

	cases := []struct {
		name string
		in   LitterInput
	}{
		{"missing mother", LitterInput{BirthDate: birth, Count: 3}},
		{"missing birth date", LitterInput{MotherID: "mom-1", Count: 3}},
		{"count too low", LitterInput{MotherID: "mom-1", BirthDate: birth, Count: 0}},
		{"count too high", LitterInput{MotherID: "mom-1", BirthDate: birth, Count: 21}},
		{"genders mismatch", LitterInput{MotherID: "mom-1", BirthDate: birth, Count: 3, Genders: []Gender{GenderMale}}},
		{"invalid gender", LitterInput{MotherID: "mom-1", BirthDate: birth, Count: 1, Genders: []Gender{"OTHER"}}},
		{"dead without recorder", LitterInput{MotherID: "mom-1", BirthDate: birth, Count: 1, DeadCount: 2}},
	}
	for _, c := range cases {
		if _, err := svc.CreateLitter(context.Background(), c.in); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("%s: expected ErrInvalidInput, got %v", c.name, err)
		}
	}
}

func TestCreateLitter_MotherMustBeFemaleRabbit(t *testing.T) {
	svc, repo, _, _, _ := newTestService()
	repo.byID["cow-1"] = Animal{ID: "cow-1", Species: SpeciesCow, Gender: GenderFemale}
	repo.byID["buck-1"] = Animal{ID: "buck-1", Species: SpeciesRabbit, Gender: GenderMale}

	birth := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	for _, motherID := range []string{"cow-1", "buck-1"} {
		_, err := svc.CreateLitter(context.Background(), LitterInput{
			MotherID: motherID, BirthDate: birth, Count: 2,
		})
		if !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("mother %s: expected ErrInvalidInput, got %v", motherID, err)
		}
	}
}

func TestCreateLitter_DefaultsNamesAndGenders(t *testing.T) {
	svc, repo, _, planner, _ := newTestService()
	seedMother(repo)

	birth := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	res, err := svc.CreateLitter(context.Background(), LitterInput{
		MotherID: "mom-1", BirthDate: birth, Count: 4,
	})
	if err != nil {
		t.Fatalf("CreateLitter error: %v", err)
	}
	if len(res.Offspring) != 4 {
		t.Fatalf("expected 4 offspring, got %d", len(res.Offspring))
	}
	for i, kit := range res.Offspring {
		wantName := fmt.Sprintf("Conejo %d", i+1)
		if kit.Name != wantName {
			t.Fatalf("expected name %q, got %q", wantName, kit.Name)
		}
		// Sin genders explícitos se alternan macho/hembra.
		wantGender := GenderFemale
		if i%2 == 0 {
			wantGender = GenderMale
		}
		if kit.Gender != wantGender {
			t.Fatalf("offspring %d: expected gender %s, got %s", i, wantGender, kit.Gender)
		}
		if kit.Origin != OriginBorn || kit.MotherID != "mom-1" {
			t.Fatalf("unexpected offspring fields: %+v", kit)
		}
	}
	if len(planner.litters) != 1 || len(planner.litters[0]) != 4 {
		t.Fatalf("expected litter rules triggered once with 4 offspring, got %+v", planner.litters)
	}
}

func TestCreateLitter_RecordsDeadOffspring(t *testing.T) {
	svc, repo, dead, _, _ := newTestService()
	seedMother(repo)

	birth := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	res, err := svc.CreateLitter(context.Background(), LitterInput{
		MotherID: "mom-1", BirthDate: birth, Count: 2,
		DeadCount: 3, DeadSuspectedCause: "frío", RecordedBy: "user-1",
	})
	if err != nil {
		t.Fatalf("CreateLitter error: %v", err)
	}
	if res.DeadOffspring == nil || res.DeadOffspring.Count != 3 {
		t.Fatalf("expected dead offspring record with count 3, got %+v", res.DeadOffspring)
	}
	if len(dead.records) != 1 || dead.records[0].RecordedBy != "user-1" {
		t.Fatalf("expected persisted dead offspring record, got %+v", dead.records)
	}
}

func TestRegisterDeadOffspring_Standalone(t *testing.T) {
	svc, repo, dead, _, _ := newTestService()
	seedMother(repo)

	birth := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	if _, err := svc.RegisterDeadOffspring(context.Background(), DeadOffspringInput{
		MotherID: "mom-1", BirthDate: birth, Count: 2,
	}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput without recorded_by, got %v", err)
	}

	d, err := svc.RegisterDeadOffspring(context.Background(), DeadOffspringInput{
		MotherID: "mom-1", BirthDate: birth, Count: 2, RecordedBy: "user-1",
	})
	if err != nil {
		t.Fatalf("RegisterDeadOffspring error: %v", err)
	}
	if d.ID == "" || len(dead.records) != 1 {
		t.Fatalf("expected persisted record, got %+v", d)
	}

	listed, err := svc.ListDeadOffspring(context.Background(), "mom-1")
	if err != nil || len(listed) != 1 {
		t.Fatalf("expected 1 record for mother, got %v (%v)", listed, err)
	}
}
