package animals

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

type LitterInput struct {
	MotherID  string
	FatherID  string
	BirthDate time.Time
	Count     int

	// Genders, si viene, debe tener exactamente Count elementos.
	Genders []Gender

	NamePrefix string
	CorralID   string

	// Crías nacidas muertas (opcional).
	DeadCount          int
	DeadNotes          string
	DeadSuspectedCause string
	RecordedBy         string
}

type LitterResult struct {
	Offspring     []Animal
	DeadOffspring *DeadOffspring
}

// CreateLitter crea una camada de conejos en una sola operación y dispara las
// reglas de camada (lactancia de la madre, alertas por cría y la alerta
// agrupada de sacrificio para las crías no criadoras).
func (s *Service) CreateLitter(ctx context.Context, in LitterInput) (LitterResult, error) {
	if strings.TrimSpace(in.MotherID) == "" {
		return LitterResult{}, fmt.Errorf("%w: mother_id required", ErrInvalidInput)
	}
	if in.BirthDate.IsZero() {
		return LitterResult{}, fmt.Errorf("%w: birth_date required", ErrInvalidInput)
	}
	if in.Count < 1 || in.Count > 20 {
		return LitterResult{}, fmt.Errorf("%w: count must be between 1 and 20", ErrInvalidInput)
	}
	if len(in.Genders) > 0 && len(in.Genders) != in.Count {
		return LitterResult{}, fmt.Errorf("%w: number of genders (%d) must match count (%d)", ErrInvalidInput, len(in.Genders), in.Count)
	}
	for _, g := range in.Genders {
		if g != GenderMale && g != GenderFemale {
			return LitterResult{}, fmt.Errorf("%w: invalid gender %q", ErrInvalidInput, g)
		}
	}
	if in.DeadCount > 0 && strings.TrimSpace(in.RecordedBy) == "" {
		return LitterResult{}, fmt.Errorf("%w: recorded_by is required when dead_count > 0", ErrInvalidInput)
	}

	prefix := strings.TrimSpace(in.NamePrefix)
	if prefix == "" {
		prefix = "Conejo"
	}

	var out LitterResult
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		mother, err := s.repo.GetByID(ctx, in.MotherID)
		if err != nil {
			return err
		}
		if mother.Species != SpeciesRabbit {
			return fmt.Errorf("%w: mother must be a rabbit", ErrInvalidInput)
		}
		if mother.Gender != GenderFemale {
			return fmt.Errorf("%w: mother must be FEMALE", ErrInvalidInput)
		}
		if mother.Discarded {
			return fmt.Errorf("%w: mother rabbit is discarded", ErrInvalidInput)
		}
		if in.FatherID != "" {
			if err := s.checkParent(ctx, in.FatherID, SpeciesRabbit, GenderMale); err != nil {
				return err
			}
		}

		now := s.now()
		birth := in.BirthDate
		offspring := make([]Animal, 0, in.Count)
		for i := 0; i < in.Count; i++ {
			gender := GenderFemale
			if len(in.Genders) > 0 {
				gender = in.Genders[i]
			} else if i%2 == 0 {
				gender = GenderMale
			}

			r := Animal{
				ID:        uuid.NewString(),
				Name:      fmt.Sprintf("%s %d", prefix, i+1),
				Species:   SpeciesRabbit,
				Gender:    gender,
				Origin:    OriginBorn,
				BirthDate: &birth,
				MotherID:  mother.ID,
				FatherID:  strings.TrimSpace(in.FatherID),
				CorralID:  strings.TrimSpace(in.CorralID),
				CreatedAt: now,
				UpdatedAt: now,
			}
			if err := s.repo.Create(ctx, r); err != nil {
				return err
			}
			offspring = append(offspring, r)
		}

		if in.DeadCount > 0 {
			d := DeadOffspring{
				ID:             uuid.NewString(),
				MotherID:       mother.ID,
				FatherID:       strings.TrimSpace(in.FatherID),
				Species:        SpeciesRabbit,
				BirthDate:      birth,
				Count:          in.DeadCount,
				Notes:          in.DeadNotes,
				SuspectedCause: in.DeadSuspectedCause,
				RecordedBy:     strings.TrimSpace(in.RecordedBy),
				CreatedAt:      now,
			}
			if err := s.dead.Create(ctx, d); err != nil {
				return err
			}
			out.DeadOffspring = &d
		}

		if s.planner != nil {
			if err := s.planner.LitterBorn(ctx, mother, offspring); err != nil {
				return err
			}
		}

		out.Offspring = offspring
		return nil
	})
	if err != nil {
		return LitterResult{}, err
	}
	return out, nil
}

type DeadOffspringInput struct {
	MotherID       string
	FatherID       string
	BirthDate      time.Time
	Count          int
	Notes          string
	SuspectedCause string
	RecordedBy     string
}

// RegisterDeadOffspring registra crías nacidas muertas fuera de la creación de
// una camada viva.
func (s *Service) RegisterDeadOffspring(ctx context.Context, in DeadOffspringInput) (DeadOffspring, error) {
	if strings.TrimSpace(in.MotherID) == "" || strings.TrimSpace(in.RecordedBy) == "" {
		return DeadOffspring{}, fmt.Errorf("%w: mother_id and recorded_by required", ErrInvalidInput)
	}
	if in.BirthDate.IsZero() {
		return DeadOffspring{}, fmt.Errorf("%w: birth_date required", ErrInvalidInput)
	}
	if in.Count < 1 {
		return DeadOffspring{}, fmt.Errorf("%w: count must be at least 1", ErrInvalidInput)
	}

	var d DeadOffspring
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		mother, err := s.repo.GetByID(ctx, in.MotherID)
		if err != nil {
			return err
		}
		if mother.Species != SpeciesRabbit {
			return fmt.Errorf("%w: mother must be a rabbit", ErrInvalidInput)
		}
		if in.FatherID != "" {
			father, err := s.repo.GetByID(ctx, in.FatherID)
			if err != nil {
				return err
			}
			if father.Species != SpeciesRabbit {
				return fmt.Errorf("%w: father must be a rabbit", ErrInvalidInput)
			}
		}

		d = DeadOffspring{
			ID:             uuid.NewString(),
			MotherID:       mother.ID,
			FatherID:       strings.TrimSpace(in.FatherID),
			Species:        SpeciesRabbit,
			BirthDate:      in.BirthDate,
			Count:          in.Count,
			Notes:          in.Notes,
			SuspectedCause: in.SuspectedCause,
			RecordedBy:     strings.TrimSpace(in.RecordedBy),
			CreatedAt:      s.now(),
		}
		return s.dead.Create(ctx, d)
	})
	if err != nil {
		return DeadOffspring{}, err
	}
	return d, nil
}

func (s *Service) ListDeadOffspring(ctx context.Context, motherID string) ([]DeadOffspring, error) {
	motherID = strings.TrimSpace(motherID)
	if motherID == "" {
		return nil, ErrInvalidInput
	}
	return s.dead.ListByMother(ctx, motherID)
}
