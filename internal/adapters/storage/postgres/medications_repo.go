package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"medication-dose-tracker/internal/domain/medications"
	"medication-dose-tracker/internal/platform/table"
)

type MedicationsRepo struct {
	db *sql.DB
}

func NewMedicationsRepo(db *sql.DB) *MedicationsRepo {
	return &MedicationsRepo{db: db}
}

func (r *MedicationsRepo) Create(ctx context.Context, m medications.Medication) error {
	item, err := json.Marshal(toMedicationRecord(m))
	if err != nil {
		return err
	}

	// semántica put: upsert sobre (pk, sk)
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO care_records (pk, sk, item)
		VALUES ($1, $2, $3)
		ON CONFLICT (pk, sk) DO UPDATE SET item = EXCLUDED.item
	`, table.CarePK(m.CareRecipientID), table.MedicationSK(m.ID), item)
	return err
}

func (r *MedicationsRepo) GetByID(ctx context.Context, careRecipientID, medicationID string) (medications.Medication, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT item FROM care_records WHERE pk = $1 AND sk = $2
	`, table.CarePK(careRecipientID), table.MedicationSK(medicationID))

	var raw []byte
	if err := row.Scan(&raw); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return medications.Medication{}, medications.ErrNotFound
		}
		return medications.Medication{}, err
	}

	var rec medicationRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return medications.Medication{}, err
	}
	return fromMedicationRecord(rec)
}

func (r *MedicationsRepo) GetByIDs(ctx context.Context, careRecipientID string, medicationIDs []string) ([]medications.Medication, error) {
	if len(medicationIDs) == 0 {
		return nil, nil
	}

	// dedup + placeholders IN (...)
	seen := make(map[string]struct{}, len(medicationIDs))
	args := []any{table.CarePK(careRecipientID)}
	placeholders := make([]string, 0, len(medicationIDs))
	for _, id := range medicationIDs {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		args = append(args, table.MedicationSK(id))
		placeholders = append(placeholders, fmt.Sprintf("$%d", len(args)))
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT item FROM care_records
		WHERE pk = $1 AND sk IN (`+strings.Join(placeholders, ",")+`)
	`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]medications.Medication, 0, len(placeholders))
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}

		var rec medicationRecord
		if err := json.Unmarshal(raw, &rec); err != nil {
			return nil, err
		}
		m, err := fromMedicationRecord(rec)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}

	return out, rows.Err()
}

func (r *MedicationsRepo) SetActive(ctx context.Context, careRecipientID, medicationID string, active bool, updatedAt time.Time) (medications.Medication, error) {
	row := r.db.QueryRowContext(ctx, `
		UPDATE care_records
		SET item = item || jsonb_build_object('active', $3::boolean, 'updatedAt', $4::text)
		WHERE pk = $1 AND sk = $2
		RETURNING item
	`, table.CarePK(careRecipientID), table.MedicationSK(medicationID), active, table.FormatTimestamp(updatedAt))

	var raw []byte
	if err := row.Scan(&raw); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return medications.Medication{}, medications.ErrNotFound
		}
		return medications.Medication{}, err
	}

	var rec medicationRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return medications.Medication{}, err
	}
	return fromMedicationRecord(rec)
}
