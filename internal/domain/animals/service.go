package animals

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"farm-husbandry/internal/ports/storage"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput = errors.New("invalid input")
)

type Service struct {
	repo    Repository
	dead    DeadOffspringRepository
	planner BirthPlanner // puede ser nil (sin reglas cableadas)
	tx      storage.TxRunner
	now     func() time.Time
}

func NewService(repo Repository, dead DeadOffspringRepository, planner BirthPlanner, tx storage.TxRunner) *Service {
	return &Service{
		repo:    repo,
		dead:    dead,
		planner: planner,
		tx:      tx,
		now:     time.Now,
	}
}

type RegisterInput struct {
	Name      string
	Species   Species
	Gender    Gender
	Origin    Origin
	BirthDate *time.Time
	IsBreeder bool
	MotherID  string
	FatherID  string
	CorralID  string
}

// Register crea un animal individual. Si nació en la granja (origin=BORN) y
// tiene fecha de nacimiento, dispara las reglas de nacimiento de su especie.
func (s *Service) Register(ctx context.Context, in RegisterInput) (Animal, error) {
	if strings.TrimSpace(in.Name) == "" {
		return Animal{}, fmt.Errorf("%w: name required", ErrInvalidInput)
	}
	if !ValidSpecies(in.Species) {
		return Animal{}, fmt.Errorf("%w: unknown species %q", ErrInvalidInput, in.Species)
	}
	if in.Origin == "" {
		in.Origin = OriginPurchased
	}
	if in.MotherID != "" || in.FatherID != "" {
		// Animales con padres registrados deben haber nacido en la granja.
		if in.Origin != OriginBorn {
			return Animal{}, fmt.Errorf("%w: animals with parents must have origin=BORN", ErrInvalidInput)
		}
	}

	now := s.now()
	a := Animal{
		ID:        uuid.NewString(),
		Name:      strings.TrimSpace(in.Name),
		Species:   in.Species,
		Gender:    in.Gender,
		Origin:    in.Origin,
		BirthDate: in.BirthDate,
		IsBreeder: in.IsBreeder,
		MotherID:  strings.TrimSpace(in.MotherID),
		FatherID:  strings.TrimSpace(in.FatherID),
		CorralID:  strings.TrimSpace(in.CorralID),
		CreatedAt: now,
		UpdatedAt: now,
	}

	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		if a.MotherID != "" {
			if err := s.checkParent(ctx, a.MotherID, a.Species, GenderFemale); err != nil {
				return err
			}
		}
		if a.FatherID != "" {
			if err := s.checkParent(ctx, a.FatherID, a.Species, GenderMale); err != nil {
				return err
			}
		}

		if err := s.repo.Create(ctx, a); err != nil {
			return err
		}

		if s.planner != nil && a.Origin == OriginBorn && a.BirthDate != nil {
			return s.planner.AnimalBorn(ctx, a)
		}
		return nil
	})
	if err != nil {
		return Animal{}, err
	}
	return a, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (Animal, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Animal{}, ErrInvalidInput
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) checkParent(ctx context.Context, id string, species Species, gender Gender) error {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if p.Species != species {
		return fmt.Errorf("%w: parent %s must be of species %s", ErrInvalidInput, id, species)
	}
	if p.Gender != gender {
		return fmt.Errorf("%w: parent %s must be %s", ErrInvalidInput, id, gender)
	}
	if p.Discarded {
		return fmt.Errorf("%w: parent %s is discarded", ErrInvalidInput, id)
	}
	return nil
}
