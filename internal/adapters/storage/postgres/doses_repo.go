package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"medication-dose-tracker/internal/domain/doses"
	"medication-dose-tracker/internal/platform/table"
)

// batchSize es el techo de items por statement de escritura; cada chunk
// es atómico por sí solo, no hay atomicidad entre chunks.
const batchSize = 25

type DosesRepo struct {
	db *sql.DB
}

func NewDosesRepo(db *sql.DB) *DosesRepo {
	return &DosesRepo{db: db}
}

func (r *DosesRepo) BatchCreate(ctx context.Context, items []doses.Dose) error {
	for start := 0; start < len(items); start += batchSize {
		end := min(start+batchSize, len(items))

		if err := r.writeChunk(ctx, items[start:end]); err != nil {
			return err
		}
	}
	return nil
}

func (r *DosesRepo) writeChunk(ctx context.Context, chunk []doses.Dose) error {
	values := make([]string, 0, len(chunk))
	args := make([]any, 0, len(chunk)*3)

	for _, d := range chunk {
		item, err := json.Marshal(toDoseRecord(d))
		if err != nil {
			return err
		}

		args = append(args, table.CarePK(d.CareRecipientID), table.DoseSK(d.MedicationID, d.DueAt), item)
		n := len(args)
		values = append(values, fmt.Sprintf("($%d,$%d,$%d)", n-2, n-1, n))
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO care_records (pk, sk, item)
		VALUES `+strings.Join(values, ",")+`
		ON CONFLICT (pk, sk) DO UPDATE SET item = EXCLUDED.item
	`, args...)
	return err
}

func (r *DosesRepo) ListUpcoming(ctx context.Context, careRecipientID string, from time.Time) ([]doses.Dose, error) {
	// dueAt se compara como string: formato fijo, orden lexicográfico
	// = orden cronológico. ORDER BY sk es el orden natural del storage.
	rows, err := r.db.QueryContext(ctx, `
		SELECT item FROM care_records
		WHERE pk = $1
		  AND sk LIKE $2 || '%'
		  AND item->>'status' = $3
		  AND item->>'dueAt' >= $4
		ORDER BY sk
	`, table.CarePK(careRecipientID), table.DoseSKPrefix(), string(doses.StatusUpcoming), table.FormatTimestamp(from))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []doses.Dose
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}

		var rec doseRecord
		if err := json.Unmarshal(raw, &rec); err != nil {
			return nil, err
		}
		d, err := fromDoseRecord(rec)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}

	return out, rows.Err()
}

// MarkTaken: un solo UPDATE condicional; la atomicidad la da el statement.
func (r *DosesRepo) MarkTaken(ctx context.Context, careRecipientID, medicationID string, dueAt, takenAt time.Time) (doses.Dose, error) {
	now := table.FormatTimestamp(takenAt)

	row := r.db.QueryRowContext(ctx, `
		UPDATE care_records
		SET item = item || jsonb_build_object('status', $3::text, 'takenAt', $4::text, 'updatedAt', $4::text)
		WHERE pk = $1 AND sk = $2 AND item->>'status' = $5
		RETURNING item
	`, table.CarePK(careRecipientID), table.DoseSK(medicationID, dueAt),
		string(doses.StatusTaken), now, string(doses.StatusUpcoming))

	var raw []byte
	if err := row.Scan(&raw); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// ausente o ya no UPCOMING: "no match", no error de infra
			return doses.Dose{}, doses.ErrNotFound
		}
		return doses.Dose{}, err
	}

	var rec doseRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return doses.Dose{}, err
	}
	return fromDoseRecord(rec)
}
