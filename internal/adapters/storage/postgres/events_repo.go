package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"farm-husbandry/internal/domain/animals"
	"farm-husbandry/internal/domain/events"
)

type EventsRepo struct {
	db *sql.DB
}

func NewEventsRepo(db *sql.DB) *EventsRepo {
	return &EventsRepo{db: db}
}

const eventColumns = `
	id, category, description, date,
	scope, species, sub_type,
	animal_id, corral_id,
	created_at, updated_at`

func (r *EventsRepo) Create(ctx context.Context, e events.Event) error {
	_, err := q(ctx, r.db).ExecContext(ctx, `
		INSERT INTO husbandry_events (`+eventColumns+`
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
	`,
		e.ID,
		string(e.Category),
		e.Description,
		e.Date,
		string(e.Scope),
		string(e.Species),
		string(e.SubType),
		e.AnimalID,
		e.CorralID,
		e.CreatedAt,
		e.UpdatedAt,
	)
	return err
}

func (r *EventsRepo) GetByID(ctx context.Context, id string) (events.Event, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return events.Event{}, events.ErrNotFound
	}

	row := q(ctx, r.db).QueryRowContext(ctx, `
		SELECT `+eventColumns+`
		FROM husbandry_events
		WHERE id = $1
	`, id)

	e, err := scanEvent(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return events.Event{}, events.ErrNotFound
		}
		return events.Event{}, err
	}
	return e, nil
}

func (r *EventsRepo) List(ctx context.Context, f events.ListFilter) ([]events.Event, error) {
	sb := strings.Builder{}
	sb.WriteString(`
		SELECT ` + eventColumns + `
		FROM husbandry_events
		WHERE 1=1
	`)

	args := []any{}
	argN := 1

	if f.Species != "" {
		sb.WriteString(fmt.Sprintf(" AND species = $%d", argN))
		args = append(args, string(f.Species))
		argN++
	}
	if f.Scope != "" {
		sb.WriteString(fmt.Sprintf(" AND scope = $%d", argN))
		args = append(args, string(f.Scope))
		argN++
	}
	if f.AnimalID != "" {
		sb.WriteString(fmt.Sprintf(" AND animal_id = $%d", argN))
		args = append(args, f.AnimalID)
		argN++
	}
	if f.CorralID != "" {
		sb.WriteString(fmt.Sprintf(" AND corral_id = $%d", argN))
		args = append(args, f.CorralID)
		argN++
	}
	if f.From != nil {
		sb.WriteString(fmt.Sprintf(" AND date >= $%d", argN))
		args = append(args, *f.From)
		argN++
	}
	if f.To != nil {
		sb.WriteString(fmt.Sprintf(" AND date <= $%d", argN))
		args = append(args, *f.To)
		argN++
	}

	limit := f.Limit
	if limit <= 0 {
		limit = 50
	}
	if limit > 200 {
		limit = 200
	}

	sb.WriteString(" ORDER BY date DESC")
	sb.WriteString(fmt.Sprintf(" LIMIT $%d", argN))
	args = append(args, limit)

	rows, err := q(ctx, r.db).QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]events.Event, 0)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *EventsRepo) FindRecent(ctx context.Context, rq events.RecentQuery) (events.Event, error) {
	sb := strings.Builder{}
	sb.WriteString(`
		SELECT ` + eventColumns + `
		FROM husbandry_events
		WHERE species = $1
		  AND sub_type = $2
		  AND date >= $3
	`)

	args := []any{string(rq.Species), string(rq.SubType), rq.Since}
	argN := 4

	if rq.AnimalID != "" {
		sb.WriteString(fmt.Sprintf(" AND animal_id = $%d", argN))
		args = append(args, rq.AnimalID)
		argN++
	}
	if rq.CorralID != "" {
		sb.WriteString(fmt.Sprintf(" AND corral_id = $%d", argN))
		args = append(args, rq.CorralID)
		argN++
	}
	if rq.ExcludeID != "" {
		sb.WriteString(fmt.Sprintf(" AND id <> $%d", argN))
		args = append(args, rq.ExcludeID)
		argN++
	}

	sb.WriteString(" ORDER BY date DESC LIMIT 1")

	row := q(ctx, r.db).QueryRowContext(ctx, sb.String(), args...)
	e, err := scanEvent(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return events.Event{}, events.ErrNotFound
		}
		return events.Event{}, err
	}
	return e, nil
}

func scanEvent(row rowScanner) (events.Event, error) {
	var e events.Event
	var category, scope, species, subType string

	if err := row.Scan(
		&e.ID,
		&category,
		&e.Description,
		&e.Date,
		&scope,
		&species,
		&subType,
		&e.AnimalID,
		&e.CorralID,
		&e.CreatedAt,
		&e.UpdatedAt,
	); err != nil {
		return events.Event{}, err
	}

	e.Category = events.Category(category)
	e.Scope = events.Scope(scope)
	e.Species = animals.Species(species)
	e.SubType = events.SubType(subType)
	return e, nil
}
