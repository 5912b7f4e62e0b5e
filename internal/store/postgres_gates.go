package store

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const gateAssessmentColumns = `id, initiative_id, factors, overall, assessed_by, created_at, updated_at`

func scanGateAssessment(row pgx.Row) (*GateAssessment, error) {
	a := &GateAssessment{}
	var assessedBy sql.NullString
	var factorsJSON, overallJSON []byte

	err := row.Scan(&a.ID, &a.InitiativeID, &factorsJSON, &overallJSON,
		&assessedBy, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if assessedBy.Valid {
		a.AssessedBy = assessedBy.String
	}
	if factorsJSON != nil {
		_ = json.Unmarshal(factorsJSON, &a.Factors)
	}
	if overallJSON != nil {
		_ = json.Unmarshal(overallJSON, &a.Overall)
	}
	return a, nil
}

func (s *PostgresStore) GetGateAssessment(ctx context.Context, initiativeID uuid.UUID) (*GateAssessment, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT `+gateAssessmentColumns+` FROM gate_assessments WHERE initiative_id = $1`, initiativeID)
	a, err := scanGateAssessment(row)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return a, err
}

// PutGateAssessment replaces the one assessment an initiative carries.
func (s *PostgresStore) PutGateAssessment(ctx context.Context, a *GateAssessment) error {
	factorsJSON, _ := json.Marshal(a.Factors)
	overallJSON, _ := json.Marshal(a.Overall)

	return s.pool.QueryRow(ctx, `
		INSERT INTO gate_assessments (initiative_id, factors, overall, assessed_by)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (initiative_id) DO UPDATE SET
			factors = EXCLUDED.factors,
			overall = EXCLUDED.overall,
			assessed_by = EXCLUDED.assessed_by,
			updated_at = NOW()
		RETURNING id, created_at, updated_at`,
		a.InitiativeID, factorsJSON, overallJSON, nullString(a.AssessedBy),
	).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
}
