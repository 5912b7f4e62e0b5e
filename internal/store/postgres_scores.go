package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const scoreSnapshotColumns = `id, initiative_id, model_id, dimension_scores, overall_score, rank,
	justification, strengths, weaknesses, confidence, method, scored_by, created_at, updated_at`

func scanScoreSnapshot(row pgx.Row) (*ScoreSnapshot, error) {
	snap := &ScoreSnapshot{}
	var justification, scoredBy sql.NullString
	var dimJSON, strengthsJSON, weaknessesJSON []byte

	err := row.Scan(
		&snap.ID, &snap.InitiativeID, &snap.ModelID,
		&dimJSON, &snap.OverallScore, &snap.Rank,
		&justification, &strengthsJSON, &weaknessesJSON,
		&snap.Confidence, &snap.Method, &scoredBy,
		&snap.CreatedAt, &snap.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if justification.Valid {
		snap.Justification = justification.String
	}
	if scoredBy.Valid {
		snap.ScoredBy = scoredBy.String
	}
	if dimJSON != nil {
		_ = json.Unmarshal(dimJSON, &snap.DimensionScores)
	}
	if strengthsJSON != nil {
		_ = json.Unmarshal(strengthsJSON, &snap.Strengths)
	}
	if weaknessesJSON != nil {
		_ = json.Unmarshal(weaknessesJSON, &snap.Weaknesses)
	}
	return snap, nil
}

func scanScoreSnapshots(rows pgx.Rows) ([]*ScoreSnapshot, error) {
	var snaps []*ScoreSnapshot
	for rows.Next() {
		snap, err := scanScoreSnapshot(rows)
		if err != nil {
			return nil, err
		}
		snaps = append(snaps, snap)
	}
	return snaps, rows.Err()
}

func (s *PostgresStore) GetScoreSnapshot(ctx context.Context, initiativeID, modelID uuid.UUID) (*ScoreSnapshot, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT `+scoreSnapshotColumns+` FROM score_snapshots
		WHERE initiative_id = $1 AND model_id = $2`, initiativeID, modelID)
	snap, err := scanScoreSnapshot(row)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return snap, err
}

func (s *PostgresStore) ListScoreSnapshots(ctx context.Context, modelID uuid.UUID) ([]*ScoreSnapshot, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+scoreSnapshotColumns+` FROM score_snapshots
		WHERE model_id = $1
		ORDER BY rank ASC NULLS LAST, overall_score DESC`, modelID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanScoreSnapshots(rows)
}

func (s *PostgresStore) UpsertScoreSnapshot(ctx context.Context, snap *ScoreSnapshot) error {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := s.upsertSnapshotTx(ctx, tx, snap); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// upsertSnapshotTx replaces the (initiative, model) row in place. The
// superseded version, if any, is copied into score_history first. The rank
// column is left alone; ranking is a separate pass.
func (s *PostgresStore) upsertSnapshotTx(ctx context.Context, tx pgx.Tx, snap *ScoreSnapshot) error {
	row := tx.QueryRow(ctx, `
		SELECT `+scoreSnapshotColumns+` FROM score_snapshots
		WHERE initiative_id = $1 AND model_id = $2 FOR UPDATE`,
		snap.InitiativeID, snap.ModelID)
	prev, err := scanScoreSnapshot(row)
	if err != nil && err != pgx.ErrNoRows {
		return fmt.Errorf("lock snapshot: %w", err)
	}

	dimJSON, _ := json.Marshal(snap.DimensionScores)
	strengthsJSON, _ := json.Marshal(snap.Strengths)
	weaknessesJSON, _ := json.Marshal(snap.Weaknesses)

	if prev == nil {
		return tx.QueryRow(ctx, `
			INSERT INTO score_snapshots (initiative_id, model_id, dimension_scores, overall_score,
				justification, strengths, weaknesses, confidence, method, scored_by)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			RETURNING id, created_at, updated_at`,
			snap.InitiativeID, snap.ModelID, dimJSON, snap.OverallScore,
			nullString(snap.Justification), strengthsJSON, weaknessesJSON,
			snap.Confidence, snap.Method, nullString(snap.ScoredBy),
		).Scan(&snap.ID, &snap.CreatedAt, &snap.UpdatedAt)
	}

	prevDimJSON, _ := json.Marshal(prev.DimensionScores)
	if _, err := tx.Exec(ctx, `
		INSERT INTO score_history (snapshot_id, initiative_id, model_id, dimension_scores,
			overall_score, rank, method, scored_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		prev.ID, prev.InitiativeID, prev.ModelID, prevDimJSON,
		prev.OverallScore, prev.Rank, prev.Method, nullString(prev.ScoredBy),
	); err != nil {
		return fmt.Errorf("log history: %w", err)
	}

	err = tx.QueryRow(ctx, `
		UPDATE score_snapshots SET
			dimension_scores = $2, overall_score = $3,
			justification = $4, strengths = $5, weaknesses = $6,
			confidence = $7, method = $8, scored_by = $9,
			updated_at = NOW()
		WHERE id = $1
		RETURNING created_at, updated_at`,
		prev.ID, dimJSON, snap.OverallScore,
		nullString(snap.Justification), strengthsJSON, weaknessesJSON,
		snap.Confidence, snap.Method, nullString(snap.ScoredBy),
	).Scan(&snap.CreatedAt, &snap.UpdatedAt)
	if err != nil {
		return fmt.Errorf("replace snapshot: %w", err)
	}
	snap.ID = prev.ID
	snap.Rank = prev.Rank
	return nil
}

func (s *PostgresStore) ReplaceAndRerank(ctx context.Context, snap *ScoreSnapshot, rankFn RankFn) (*ScoreSnapshot, error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	// The model row is the serialization point: concurrent scoring runs
	// against the same model queue up here instead of interleaving ranks.
	var modelID uuid.UUID
	err = tx.QueryRow(ctx, `SELECT id FROM scoring_models WHERE id = $1 FOR UPDATE`, snap.ModelID).Scan(&modelID)
	if err == pgx.ErrNoRows {
		return nil, fmt.Errorf("scoring model %s not found", snap.ModelID)
	}
	if err != nil {
		return nil, fmt.Errorf("lock model: %w", err)
	}

	if err := s.upsertSnapshotTx(ctx, tx, snap); err != nil {
		return nil, err
	}

	snaps, err := s.rerankModelTx(ctx, tx, snap.ModelID, rankFn)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	for _, ranked := range snaps {
		if ranked.ID == snap.ID {
			return ranked, nil
		}
	}
	return snap, nil
}

func (s *PostgresStore) RerankModel(ctx context.Context, modelID uuid.UUID, rankFn RankFn) (int, error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var locked uuid.UUID
	err = tx.QueryRow(ctx, `SELECT id FROM scoring_models WHERE id = $1 FOR UPDATE`, modelID).Scan(&locked)
	if err == pgx.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("lock model: %w", err)
	}

	snaps, err := s.rerankModelTx(ctx, tx, modelID, rankFn)
	if err != nil {
		return 0, err
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return len(snaps), nil
}

func (s *PostgresStore) rerankModelTx(ctx context.Context, tx pgx.Tx, modelID uuid.UUID, rankFn RankFn) ([]*ScoreSnapshot, error) {
	rows, err := tx.Query(ctx, `
		SELECT `+scoreSnapshotColumns+` FROM score_snapshots WHERE model_id = $1`, modelID)
	if err != nil {
		return nil, fmt.Errorf("load snapshots: %w", err)
	}
	snaps, err := scanScoreSnapshots(rows)
	rows.Close()
	if err != nil {
		return nil, err
	}

	if rankFn != nil {
		rankFn(snaps)
	}

	for _, snap := range snaps {
		if _, err := tx.Exec(ctx, `UPDATE score_snapshots SET rank = $2 WHERE id = $1`, snap.ID, snap.Rank); err != nil {
			return nil, fmt.Errorf("persist rank: %w", err)
		}
	}
	return snaps, nil
}

func (s *PostgresStore) GetScoreHistory(ctx context.Context, initiativeID uuid.UUID, limit int) ([]*ScoreHistoryEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.pool.Query(ctx, `
		SELECT id, snapshot_id, initiative_id, model_id, dimension_scores,
			overall_score, rank, method, scored_by, superseded_at
		FROM score_history
		WHERE initiative_id = $1
		ORDER BY superseded_at DESC
		LIMIT $2`, initiativeID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*ScoreHistoryEntry
	for rows.Next() {
		e := &ScoreHistoryEntry{}
		var scoredBy sql.NullString
		var dimJSON []byte
		if err := rows.Scan(&e.ID, &e.SnapshotID, &e.InitiativeID, &e.ModelID, &dimJSON,
			&e.OverallScore, &e.Rank, &e.Method, &scoredBy, &e.SupersededAt); err != nil {
			return nil, err
		}
		if scoredBy.Valid {
			e.ScoredBy = scoredBy.String
		}
		if dimJSON != nil {
			_ = json.Unmarshal(dimJSON, &e.DimensionScores)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
