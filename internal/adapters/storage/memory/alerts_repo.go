package memory

import (
	"context"
	"errors"
	"sort"
	"sync"

	"farm-husbandry/internal/domain/alerts"
	"farm-husbandry/internal/domain/animals"
)

type alertRepo struct {
	mu   sync.RWMutex
	byID map[string]alerts.Alert
}

func NewAlertRepo() alerts.Repository {
	return &alertRepo{
		byID: make(map[string]alerts.Alert),
	}
}

func (r *alertRepo) Create(ctx context.Context, a alerts.Alert) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if a.ID == "" {
		return errors.New("alert id required")
	}
	if _, exists := r.byID[a.ID]; exists {
		return errors.New("alert already exists")
	}

	r.byID[a.ID] = cloneAlert(a)
	return nil
}

func (r *alertRepo) GetByID(ctx context.Context, id string) (alerts.Alert, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.byID[id]
	if !ok {
		return alerts.Alert{}, alerts.ErrNotFound
	}
	return cloneAlert(a), nil
}

// GetByIDForUpdate no necesita lock de fila: el TxRunner en memoria ya
// serializa las operaciones completas.
func (r *alertRepo) GetByIDForUpdate(ctx context.Context, id string) (alerts.Alert, error) {
	return r.GetByID(ctx, id)
}

func (r *alertRepo) Update(ctx context.Context, a alerts.Alert) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[a.ID]; !ok {
		return alerts.ErrNotFound
	}
	r.byID[a.ID] = cloneAlert(a)
	return nil
}

func (r *alertRepo) ListByStatus(ctx context.Context, st alerts.Status) ([]alerts.Alert, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]alerts.Alert, 0)
	for _, a := range r.byID {
		if a.Status == st {
			out = append(out, cloneAlert(a))
		}
	}
	sortByMaxDate(out)
	return out, nil
}

func (r *alertRepo) ListPendingByKind(ctx context.Context, kind alerts.Kind, species animals.Species) ([]alerts.Alert, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]alerts.Alert, 0)
	for _, a := range r.byID {
		if a.Status == alerts.StatusPending && a.Kind == kind && a.Species == species {
			out = append(out, cloneAlert(a))
		}
	}
	sortByMaxDate(out)
	return out, nil
}

func (r *alertRepo) FindPendingByMembers(ctx context.Context, kind alerts.Kind, species animals.Species, memberIDs []string) (alerts.Alert, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, a := range r.byID {
		if a.Status != alerts.StatusPending || a.Kind != kind || a.Species != species {
			continue
		}
		if sameMembers(a.MemberIDs, memberIDs) {
			return cloneAlert(a), nil
		}
	}
	return alerts.Alert{}, alerts.ErrNotFound
}

func (r *alertRepo) FindPendingByAnchor(ctx context.Context, kind alerts.Kind, species animals.Species, animalID string) (alerts.Alert, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, a := range r.byID {
		if a.Status != alerts.StatusPending || a.Kind != kind || a.Species != species {
			continue
		}
		if a.AnimalID == animalID {
			return cloneAlert(a), nil
		}
	}
	return alerts.Alert{}, alerts.ErrNotFound
}

func (r *alertRepo) ListPendingReferencing(ctx context.Context, animalID string) ([]alerts.Alert, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]alerts.Alert, 0)
	for _, a := range r.byID {
		if a.Status != alerts.StatusPending {
			continue
		}
		if a.AnimalID == animalID || a.HasMember(animalID) {
			out = append(out, cloneAlert(a))
		}
	}
	sortByMaxDate(out)
	return out, nil
}

func sortByMaxDate(list []alerts.Alert) {
	sort.Slice(list, func(i, j int) bool {
		if !list[i].MaxDate.Equal(list[j].MaxDate) {
			return list[i].MaxDate.Before(list[j].MaxDate)
		}
		return list[i].ID < list[j].ID
	})
}

// sameMembers compara membresías como conjuntos; ambos lados llegan ordenados
// pero no se asume.
func sameMembers(a, b []string) bool {
	if len(a) != len(b) || len(a) == 0 {
		return false
	}
	as := append([]string(nil), a...)
	bs := append([]string(nil), b...)
	sort.Strings(as)
	sort.Strings(bs)
	for i := range as {
		if as[i] != bs[i] {
			return false
		}
	}
	return true
}

// cloneAlert copia el slice de membresía para que los callers no muten el
// estado interno del repo.
func cloneAlert(a alerts.Alert) alerts.Alert {
	if a.MemberIDs != nil {
		a.MemberIDs = append([]string(nil), a.MemberIDs...)
	}
	return a
}
