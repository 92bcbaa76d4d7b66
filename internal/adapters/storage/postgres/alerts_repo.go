package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"sort"
	"strings"

	"farm-husbandry/internal/domain/alerts"
	"farm-husbandry/internal/domain/animals"
)

type AlertsRepo struct {
	db *sql.DB
}

func NewAlertsRepo(db *sql.DB) *AlertsRepo {
	return &AlertsRepo{db: db}
}

const alertColumns = `
	id, kind, description,
	init_date, max_date,
	status, priority, species,
	animal_id, corral_id, event_id,
	declined_reason, member_ids,
	acknowledged_at, resolved_at,
	created_at, updated_at`

func (r *AlertsRepo) Create(ctx context.Context, a alerts.Alert) error {
	members, err := encodeMembers(a.MemberIDs)
	if err != nil {
		return err
	}

	_, err = q(ctx, r.db).ExecContext(ctx, `
		INSERT INTO alerts (`+alertColumns+`
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)
	`,
		a.ID,
		string(a.Kind),
		a.Description,
		a.InitDate,
		a.MaxDate,
		string(a.Status),
		string(a.Priority),
		string(a.Species),
		a.AnimalID,
		a.CorralID,
		a.EventID,
		a.DeclinedReason,
		members,
		toNullDate(a.AcknowledgedAt),
		toNullDate(a.ResolvedAt),
		a.CreatedAt,
		a.UpdatedAt,
	)
	return err
}

func (r *AlertsRepo) Update(ctx context.Context, a alerts.Alert) error {
	members, err := encodeMembers(a.MemberIDs)
	if err != nil {
		return err
	}

	res, err := q(ctx, r.db).ExecContext(ctx, `
		UPDATE alerts
		SET
			description = $2,
			status = $3,
			event_id = $4,
			declined_reason = $5,
			member_ids = $6,
			acknowledged_at = $7,
			resolved_at = $8,
			updated_at = $9
		WHERE id = $1
	`,
		a.ID,
		a.Description,
		string(a.Status),
		a.EventID,
		a.DeclinedReason,
		members,
		toNullDate(a.AcknowledgedAt),
		toNullDate(a.ResolvedAt),
		a.UpdatedAt,
	)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return alerts.ErrNotFound
	}
	return nil
}

func (r *AlertsRepo) GetByID(ctx context.Context, id string) (alerts.Alert, error) {
	return r.getByID(ctx, id, false)
}

// GetByIDForUpdate toma el lock de fila; solo tiene sentido dentro de una
// transacción del TxManager.
func (r *AlertsRepo) GetByIDForUpdate(ctx context.Context, id string) (alerts.Alert, error) {
	return r.getByID(ctx, id, true)
}

func (r *AlertsRepo) getByID(ctx context.Context, id string, forUpdate bool) (alerts.Alert, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return alerts.Alert{}, alerts.ErrNotFound
	}

	query := `
		SELECT ` + alertColumns + `
		FROM alerts
		WHERE id = $1
	`
	if forUpdate {
		query += " FOR UPDATE"
	}

	row := q(ctx, r.db).QueryRowContext(ctx, query, id)
	a, err := scanAlert(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return alerts.Alert{}, alerts.ErrNotFound
		}
		return alerts.Alert{}, err
	}
	return a, nil
}

func (r *AlertsRepo) ListByStatus(ctx context.Context, st alerts.Status) ([]alerts.Alert, error) {
	rows, err := q(ctx, r.db).QueryContext(ctx, `
		SELECT `+alertColumns+`
		FROM alerts
		WHERE status = $1
		ORDER BY max_date ASC, id ASC
	`, string(st))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanAlerts(rows)
}

func (r *AlertsRepo) ListPendingByKind(ctx context.Context, kind alerts.Kind, species animals.Species) ([]alerts.Alert, error) {
	rows, err := q(ctx, r.db).QueryContext(ctx, `
		SELECT `+alertColumns+`
		FROM alerts
		WHERE status = $1
		  AND kind = $2
		  AND species = $3
		ORDER BY max_date ASC, id ASC
	`, string(alerts.StatusPending), string(kind), string(species))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanAlerts(rows)
}

// FindPendingByMembers compara membresías en Go: member_ids se guarda como
// JSON y la igualdad es de conjunto, no de texto.
func (r *AlertsRepo) FindPendingByMembers(ctx context.Context, kind alerts.Kind, species animals.Species, memberIDs []string) (alerts.Alert, error) {
	if len(memberIDs) == 0 {
		return alerts.Alert{}, alerts.ErrNotFound
	}

	candidates, err := r.ListPendingByKind(ctx, kind, species)
	if err != nil {
		return alerts.Alert{}, err
	}

	want := append([]string(nil), memberIDs...)
	sort.Strings(want)

	for _, a := range candidates {
		got := append([]string(nil), a.MemberIDs...)
		sort.Strings(got)
		if equalSorted(got, want) {
			return a, nil
		}
	}
	return alerts.Alert{}, alerts.ErrNotFound
}

func (r *AlertsRepo) FindPendingByAnchor(ctx context.Context, kind alerts.Kind, species animals.Species, animalID string) (alerts.Alert, error) {
	row := q(ctx, r.db).QueryRowContext(ctx, `
		SELECT `+alertColumns+`
		FROM alerts
		WHERE status = $1
		  AND kind = $2
		  AND species = $3
		  AND animal_id = $4
		ORDER BY created_at ASC
		LIMIT 1
	`, string(alerts.StatusPending), string(kind), string(species), animalID)

	a, err := scanAlert(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return alerts.Alert{}, alerts.ErrNotFound
		}
		return alerts.Alert{}, err
	}
	return a, nil
}

func (r *AlertsRepo) ListPendingReferencing(ctx context.Context, animalID string) ([]alerts.Alert, error) {
	animalID = strings.TrimSpace(animalID)
	if animalID == "" {
		return nil, nil
	}

	// member_ids es jsonb: el operador ? chequea pertenencia de la clave.
	rows, err := q(ctx, r.db).QueryContext(ctx, `
		SELECT `+alertColumns+`
		FROM alerts
		WHERE status = $1
		  AND (animal_id = $2 OR member_ids ? $2)
		ORDER BY max_date ASC, id ASC
	`, string(alerts.StatusPending), animalID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanAlerts(rows)
}

func scanAlert(row rowScanner) (alerts.Alert, error) {
	var a alerts.Alert
	var kind, status, priority, species string
	var members []byte
	var ack, res sql.NullTime

	if err := row.Scan(
		&a.ID,
		&kind,
		&a.Description,
		&a.InitDate,
		&a.MaxDate,
		&status,
		&priority,
		&species,
		&a.AnimalID,
		&a.CorralID,
		&a.EventID,
		&a.DeclinedReason,
		&members,
		&ack,
		&res,
		&a.CreatedAt,
		&a.UpdatedAt,
	); err != nil {
		return alerts.Alert{}, err
	}

	a.Kind = alerts.Kind(kind)
	a.Status = alerts.Status(status)
	a.Priority = alerts.Priority(priority)
	a.Species = animals.Species(species)

	if len(members) > 0 {
		if err := json.Unmarshal(members, &a.MemberIDs); err != nil {
			return alerts.Alert{}, err
		}
	}
	if ack.Valid {
		t := ack.Time
		a.AcknowledgedAt = &t
	}
	if res.Valid {
		t := res.Time
		a.ResolvedAt = &t
	}
	return a, nil
}

func scanAlerts(rows *sql.Rows) ([]alerts.Alert, error) {
	out := make([]alerts.Alert, 0)
	for rows.Next() {
		a, err := scanAlert(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func encodeMembers(ids []string) ([]byte, error) {
	if len(ids) == 0 {
		return []byte("[]"), nil
	}
	return json.Marshal(ids)
}

func equalSorted(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
