package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func nullString(v string) sql.NullString {
	return sql.NullString{String: v, Valid: v != ""}
}

// --- Initiatives ---

const initiativeColumns = `id, title, description, status, owner,
	expected_value, strategic_fit, risk_level, team_experience, urgency, cost_score,
	confidence_pct, data_ready, compliance_approved,
	created_at, updated_at`

func scanInitiative(row pgx.Row) (*Initiative, error) {
	init := &Initiative{}
	var description, owner sql.NullString
	err := row.Scan(
		&init.ID, &init.Title, &description, &init.Status, &owner,
		&init.ExpectedValue, &init.StrategicFit, &init.RiskLevel, &init.TeamExperience,
		&init.Urgency, &init.CostScore,
		&init.ConfidencePct, &init.DataReady, &init.ComplianceApproved,
		&init.CreatedAt, &init.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if description.Valid {
		init.Description = description.String
	}
	if owner.Valid {
		init.Owner = owner.String
	}
	return init, nil
}

func (s *PostgresStore) CreateInitiative(ctx context.Context, init *Initiative) error {
	return s.pool.QueryRow(ctx, `
		INSERT INTO initiatives (title, description, status, owner,
			expected_value, strategic_fit, risk_level, team_experience, urgency, cost_score,
			confidence_pct, data_ready, compliance_approved)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id, created_at, updated_at`,
		init.Title, nullString(init.Description), init.Status, nullString(init.Owner),
		init.ExpectedValue, init.StrategicFit, init.RiskLevel, init.TeamExperience,
		init.Urgency, init.CostScore,
		init.ConfidencePct, init.DataReady, init.ComplianceApproved,
	).Scan(&init.ID, &init.CreatedAt, &init.UpdatedAt)
}

func (s *PostgresStore) GetInitiative(ctx context.Context, id uuid.UUID) (*Initiative, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+initiativeColumns+` FROM initiatives WHERE id = $1`, id)
	init, err := scanInitiative(row)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return init, err
}

func (s *PostgresStore) ListInitiatives(ctx context.Context, filter InitiativeFilter) ([]*Initiative, error) {
	query := `SELECT ` + initiativeColumns + ` FROM initiatives WHERE 1=1`
	args := []interface{}{}
	n := 0

	if filter.Status != nil {
		n++
		query += fmt.Sprintf(" AND status = $%d", n)
		args = append(args, string(*filter.Status))
	}
	if filter.Owner != "" {
		n++
		query += fmt.Sprintf(" AND owner = $%d", n)
		args = append(args, filter.Owner)
	}

	query += " ORDER BY created_at ASC"

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	n++
	query += fmt.Sprintf(" LIMIT $%d", n)
	args = append(args, limit)

	if filter.Offset > 0 {
		n++
		query += fmt.Sprintf(" OFFSET $%d", n)
		args = append(args, filter.Offset)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var inits []*Initiative
	for rows.Next() {
		init, err := scanInitiative(rows)
		if err != nil {
			return nil, err
		}
		inits = append(inits, init)
	}
	return inits, rows.Err()
}

func (s *PostgresStore) UpdateInitiative(ctx context.Context, init *Initiative) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE initiatives SET
			title = $2, description = $3, status = $4, owner = $5,
			expected_value = $6, strategic_fit = $7, risk_level = $8, team_experience = $9,
			urgency = $10, cost_score = $11,
			confidence_pct = $12, data_ready = $13, compliance_approved = $14,
			updated_at = NOW()
		WHERE id = $1`,
		init.ID, init.Title, nullString(init.Description), init.Status, nullString(init.Owner),
		init.ExpectedValue, init.StrategicFit, init.RiskLevel, init.TeamExperience,
		init.Urgency, init.CostScore,
		init.ConfidencePct, init.DataReady, init.ComplianceApproved,
	)
	return err
}

func (s *PostgresStore) DeleteInitiative(ctx context.Context, id uuid.UUID) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM initiatives WHERE id = $1`, id)
	return err
}

// --- Scoring models ---

const scoringModelColumns = `id, name, version, weights, active, dimensions, created_at, updated_at`

func scanScoringModel(row pgx.Row) (*ScoringModel, error) {
	m := &ScoringModel{}
	var weightsJSON, dimensionsJSON []byte
	err := row.Scan(&m.ID, &m.Name, &m.Version, &weightsJSON, &m.Active, &dimensionsJSON, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if weightsJSON != nil {
		_ = json.Unmarshal(weightsJSON, &m.Weights)
	}
	if dimensionsJSON != nil {
		_ = json.Unmarshal(dimensionsJSON, &m.Dimensions)
	}
	return m, nil
}

func (s *PostgresStore) CreateScoringModel(ctx context.Context, model *ScoringModel) error {
	weightsJSON, _ := json.Marshal(model.Weights)
	dimensionsJSON, _ := json.Marshal(model.Dimensions)

	return s.pool.QueryRow(ctx, `
		INSERT INTO scoring_models (name, version, weights, active, dimensions)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at`,
		model.Name, model.Version, weightsJSON, model.Active, dimensionsJSON,
	).Scan(&model.ID, &model.CreatedAt, &model.UpdatedAt)
}

func (s *PostgresStore) GetScoringModel(ctx context.Context, id uuid.UUID) (*ScoringModel, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+scoringModelColumns+` FROM scoring_models WHERE id = $1`, id)
	m, err := scanScoringModel(row)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return m, err
}

func (s *PostgresStore) GetActiveScoringModel(ctx context.Context) (*ScoringModel, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+scoringModelColumns+` FROM scoring_models WHERE active = true LIMIT 1`)
	m, err := scanScoringModel(row)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return m, err
}

func (s *PostgresStore) ListScoringModels(ctx context.Context) ([]*ScoringModel, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+scoringModelColumns+` FROM scoring_models ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var models []*ScoringModel
	for rows.Next() {
		m, err := scanScoringModel(rows)
		if err != nil {
			return nil, err
		}
		models = append(models, m)
	}
	return models, rows.Err()
}

// ActivateScoringModel flips the single active flag to the given model in
// one transaction. No other code path writes the flag.
func (s *PostgresStore) ActivateScoringModel(ctx context.Context, id uuid.UUID) (bool, error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return false, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var found uuid.UUID
	err = tx.QueryRow(ctx, `SELECT id FROM scoring_models WHERE id = $1 FOR UPDATE`, id).Scan(&found)
	if err == pgx.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	if _, err := tx.Exec(ctx, `UPDATE scoring_models SET active = false, updated_at = NOW() WHERE active = true AND id <> $1`, id); err != nil {
		return false, fmt.Errorf("deactivate others: %w", err)
	}
	if _, err := tx.Exec(ctx, `UPDATE scoring_models SET active = true, updated_at = NOW() WHERE id = $1`, id); err != nil {
		return false, fmt.Errorf("activate model: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return false, fmt.Errorf("commit: %w", err)
	}
	return true, nil
}

// --- Stats ---

func (s *PostgresStore) GetStats(ctx context.Context) (*PortfolioStats, error) {
	stats := &PortfolioStats{}
	err := s.pool.QueryRow(ctx, `
		SELECT
			(SELECT COUNT(*) FROM initiatives),
			(SELECT COUNT(*) FROM scoring_models),
			(SELECT id FROM scoring_models WHERE active = true LIMIT 1),
			(SELECT COUNT(*) FROM score_snapshots),
			(SELECT COUNT(*) FROM dependency_edges),
			(SELECT COUNT(*) FROM dependency_edges WHERE resolved = false),
			(SELECT COUNT(*) FROM gate_assessments)`,
	).Scan(&stats.TotalInitiatives, &stats.TotalModels, &stats.ActiveModelID,
		&stats.TotalSnapshots, &stats.TotalEdges, &stats.UnresolvedEdges, &stats.TotalAssessments)
	return stats, err
}
