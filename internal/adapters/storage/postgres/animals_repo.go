package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"farm-husbandry/internal/domain/animals"
)

type AnimalsRepo struct {
	db *sql.DB
}

func NewAnimalsRepo(db *sql.DB) *AnimalsRepo {
	return &AnimalsRepo{db: db}
}

const animalColumns = `
	id, name, species, gender, origin,
	birth_date, is_breeder,
	mother_id, father_id, corral_id,
	discarded, discarded_reason,
	slaughtered, slaughtered_date, in_freezer,
	created_at, updated_at`

func (r *AnimalsRepo) Create(ctx context.Context, a animals.Animal) error {
	_, err := q(ctx, r.db).ExecContext(ctx, `
		INSERT INTO animals (`+animalColumns+`
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)
	`,
		a.ID,
		a.Name,
		string(a.Species),
		string(a.Gender),
		string(a.Origin),
		toNullDate(a.BirthDate),
		a.IsBreeder,
		a.MotherID,
		a.FatherID,
		a.CorralID,
		a.Discarded,
		a.DiscardedReason,
		a.Slaughtered,
		toNullDate(a.SlaughteredDate),
		a.InFreezer,
		a.CreatedAt,
		a.UpdatedAt,
	)
	return err
}

func (r *AnimalsRepo) Update(ctx context.Context, a animals.Animal) error {
	res, err := q(ctx, r.db).ExecContext(ctx, `
		UPDATE animals
		SET
			name = $2,
			is_breeder = $3,
			corral_id = $4,
			discarded = $5,
			discarded_reason = $6,
			slaughtered = $7,
			slaughtered_date = $8,
			in_freezer = $9,
			updated_at = $10
		WHERE id = $1
	`,
		a.ID,
		a.Name,
		a.IsBreeder,
		a.CorralID,
		a.Discarded,
		a.DiscardedReason,
		a.Slaughtered,
		toNullDate(a.SlaughteredDate),
		a.InFreezer,
		a.UpdatedAt,
	)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return animals.ErrNotFound
	}
	return nil
}

func (r *AnimalsRepo) GetByID(ctx context.Context, id string) (animals.Animal, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return animals.Animal{}, animals.ErrNotFound
	}

	row := q(ctx, r.db).QueryRowContext(ctx, `
		SELECT `+animalColumns+`
		FROM animals
		WHERE id = $1
	`, id)

	a, err := scanAnimal(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return animals.Animal{}, animals.ErrNotFound
		}
		return animals.Animal{}, err
	}
	return a, nil
}

func (r *AnimalsRepo) GetByIDs(ctx context.Context, ids []string) ([]animals.Animal, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	placeholders := make([]string, 0, len(ids))
	args := make([]any, 0, len(ids))
	for i, id := range ids {
		placeholders = append(placeholders, fmt.Sprintf("$%d", i+1))
		args = append(args, id)
	}

	rows, err := q(ctx, r.db).QueryContext(ctx, `
		SELECT `+animalColumns+`
		FROM animals
		WHERE id IN (`+strings.Join(placeholders, ",")+`)
		ORDER BY name ASC
	`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanAnimals(rows)
}

func (r *AnimalsRepo) ListChildren(ctx context.Context, motherID string, species animals.Species) ([]animals.Animal, error) {
	motherID = strings.TrimSpace(motherID)
	if motherID == "" {
		return nil, nil
	}

	rows, err := q(ctx, r.db).QueryContext(ctx, `
		SELECT `+animalColumns+`
		FROM animals
		WHERE mother_id = $1
		  AND species = $2
		  AND discarded = FALSE
		ORDER BY name ASC
	`, motherID, string(species))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanAnimals(rows)
}

func (r *AnimalsRepo) ListSlaughterEligible(ctx context.Context, eq animals.EligibilityQuery) ([]animals.Animal, error) {
	sb := strings.Builder{}
	sb.WriteString(`
		SELECT ` + animalColumns + `
		FROM animals
		WHERE species = $1
		  AND is_breeder = FALSE
		  AND discarded = FALSE
		  AND slaughtered = FALSE
		  AND birth_date IS NOT NULL
		  AND birth_date >= $2
		  AND birth_date <= $3
	`)

	args := []any{string(eq.Species), eq.MinBirthDate, eq.MaxBirthDate}
	if eq.MotherID != "" {
		sb.WriteString(" AND mother_id = $4")
		args = append(args, eq.MotherID)
	}
	sb.WriteString(" ORDER BY mother_id ASC, name ASC")

	rows, err := q(ctx, r.db).QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanAnimals(rows)
}

func (r *AnimalsRepo) MarkSlaughtered(ctx context.Context, id string, at time.Time) error {
	res, err := q(ctx, r.db).ExecContext(ctx, `
		UPDATE animals
		SET
			slaughtered = TRUE,
			slaughtered_date = $2,
			in_freezer = TRUE,
			updated_at = $2
		WHERE id = $1
	`, id, at)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return animals.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAnimal(row rowScanner) (animals.Animal, error) {
	var a animals.Animal
	var species, gender, origin string
	var bd, sd sql.NullTime

	if err := row.Scan(
		&a.ID,
		&a.Name,
		&species,
		&gender,
		&origin,
		&bd,
		&a.IsBreeder,
		&a.MotherID,
		&a.FatherID,
		&a.CorralID,
		&a.Discarded,
		&a.DiscardedReason,
		&a.Slaughtered,
		&sd,
		&a.InFreezer,
		&a.CreatedAt,
		&a.UpdatedAt,
	); err != nil {
		return animals.Animal{}, err
	}

	a.Species = animals.Species(species)
	a.Gender = animals.Gender(gender)
	a.Origin = animals.Origin(origin)
	if bd.Valid {
		t := bd.Time
		a.BirthDate = &t
	}
	if sd.Valid {
		t := sd.Time
		a.SlaughteredDate = &t
	}
	return a, nil
}

func scanAnimals(rows *sql.Rows) ([]animals.Animal, error) {
	out := make([]animals.Animal, 0)
	for rows.Next() {
		a, err := scanAnimal(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// birth_date / slaughtered_date son DATE nullable
func toNullDate(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{Valid: false}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

type DeadOffspringRepo struct {
	db *sql.DB
}

func NewDeadOffspringRepo(db *sql.DB) *DeadOffspringRepo {
	return &DeadOffspringRepo{db: db}
}

func (r *DeadOffspringRepo) Create(ctx context.Context, d animals.DeadOffspring) error {
	_, err := q(ctx, r.db).ExecContext(ctx, `
		INSERT INTO dead_offspring (
			id, mother_id, father_id,
			species, birth_date, count,
			notes, suspected_cause, recorded_by,
			created_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
	`,
		d.ID,
		d.MotherID,
		d.FatherID,
		string(d.Species),
		d.BirthDate,
		d.Count,
		d.Notes,
		d.SuspectedCause,
		d.RecordedBy,
		d.CreatedAt,
	)
	return err
}

func (r *DeadOffspringRepo) ListByMother(ctx context.Context, motherID string) ([]animals.DeadOffspring, error) {
	motherID = strings.TrimSpace(motherID)
	if motherID == "" {
		return nil, nil
	}

	rows, err := q(ctx, r.db).QueryContext(ctx, `
		SELECT
			id, mother_id, father_id,
			species, birth_date, count,
			notes, suspected_cause, recorded_by,
			created_at
		FROM dead_offspring
		WHERE mother_id = $1
		ORDER BY birth_date DESC
	`, motherID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]animals.DeadOffspring, 0)
	for rows.Next() {
		var d animals.DeadOffspring
		var species string
		if err := rows.Scan(
			&d.ID,
			&d.MotherID,
			&d.FatherID,
			&species,
			&d.BirthDate,
			&d.Count,
			&d.Notes,
			&d.SuspectedCause,
			&d.RecordedBy,
			&d.CreatedAt,
		); err != nil {
			return nil, err
		}
		d.Species = animals.Species(species)
		out = append(out, d)
	}
	return out, rows.Err()
}
