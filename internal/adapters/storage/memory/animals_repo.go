package memory

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"farm-husbandry/internal/domain/animals"
)

type animalRepo struct {
	mu   sync.RWMutex
	byID map[string]animals.Animal
}

func NewAnimalRepo() animals.Repository {
	return &animalRepo{
		byID: make(map[string]animals.Animal),
	}
}

func (r *animalRepo) Create(ctx context.Context, a animals.Animal) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if a.ID == "" {
		return errors.New("animal id required")
	}
	if _, exists := r.byID[a.ID]; exists {
		return errors.New("animal already exists")
	}

	r.byID[a.ID] = a
	return nil
}

func (r *animalRepo) GetByID(ctx context.Context, id string) (animals.Animal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.byID[id]
	if !ok {
		return animals.Animal{}, animals.ErrNotFound
	}
	return a, nil
}

func (r *animalRepo) GetByIDs(ctx context.Context, ids []string) ([]animals.Animal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]animals.Animal, 0, len(ids))
	for _, id := range ids {
		if a, ok := r.byID[id]; ok {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *animalRepo) Update(ctx context.Context, a animals.Animal) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[a.ID]; !ok {
		return animals.ErrNotFound
	}
	r.byID[a.ID] = a
	return nil
}

func (r *animalRepo) ListChildren(ctx context.Context, motherID string, species animals.Species) ([]animals.Animal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]animals.Animal, 0)
	for _, a := range r.byID {
		if a.MotherID != motherID || a.Species != species || a.Discarded {
			continue
		}
		out = append(out, a)
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].Name < out[j].Name
	})
	return out, nil
}

func (r *animalRepo) ListSlaughterEligible(ctx context.Context, q animals.EligibilityQuery) ([]animals.Animal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]animals.Animal, 0)
	for _, a := range r.byID {
		if a.Species != q.Species || !a.SlaughterEligible() {
			continue
		}
		if a.BirthDate == nil {
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

	// Orden estable: madre, luego nombre.
	sort.Slice(out, func(i, j int) bool {
		if out[i].MotherID != out[j].MotherID {
			return out[i].MotherID < out[j].MotherID
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

func (r *animalRepo) MarkSlaughtered(ctx context.Context, id string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.byID[id]
	if !ok {
		return animals.ErrNotFound
	}
	a.Slaughtered = true
	a.SlaughteredDate = &at
	a.InFreezer = true
	a.UpdatedAt = at
	r.byID[id] = a
	return nil
}

type deadOffspringRepo struct {
	mu   sync.RWMutex
	byID map[string]animals.DeadOffspring
}

func NewDeadOffspringRepo() animals.DeadOffspringRepository {
	return &deadOffspringRepo{
		byID: make(map[string]animals.DeadOffspring),
	}
}

func (r *deadOffspringRepo) Create(ctx context.Context, d animals.DeadOffspring) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if d.ID == "" {
		return errors.New("dead offspring id required")
	}
	r.byID[d.ID] = d
	return nil
}

func (r *deadOffspringRepo) ListByMother(ctx context.Context, motherID string) ([]animals.DeadOffspring, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]animals.DeadOffspring, 0)
	for _, d := range r.byID {
		if d.MotherID == motherID {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].BirthDate.After(out[j].BirthDate)
	})
	return out, nil
}
