package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Advisory lock key for edge inserts. Serializing inserts means the cycle
// check always sees the full committed edge set.
const dependencyGraphLockID = 7201

const dependencyEdgeColumns = `id, from_id, to_id, kind, blocking, resolved, note, resolved_at, created_at`

func scanDependencyEdge(row pgx.Row) (*DependencyEdge, error) {
	edge := &DependencyEdge{}
	var note sql.NullString
	err := row.Scan(
		&edge.ID, &edge.FromID, &edge.ToID, &edge.Kind, &edge.Blocking,
		&edge.Resolved, &note, &edge.ResolvedAt, &edge.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if note.Valid {
		edge.Note = note.String
	}
	return edge, nil
}

func scanDependencyEdges(rows pgx.Rows) ([]*DependencyEdge, error) {
	var edges []*DependencyEdge
	for rows.Next() {
		edge, err := scanDependencyEdge(rows)
		if err != nil {
			return nil, err
		}
		edges = append(edges, edge)
	}
	return edges, rows.Err()
}

// InsertDependencyEdge adds an edge after checkFn has vetted it against the
// committed edge set, all under one transaction-scoped advisory lock.
func (s *PostgresStore) InsertDependencyEdge(ctx context.Context, edge *DependencyEdge, checkFn EdgeCheckFn) error {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, dependencyGraphLockID); err != nil {
		return fmt.Errorf("acquire graph lock: %w", err)
	}

	if checkFn != nil {
		rows, err := tx.Query(ctx, `SELECT `+dependencyEdgeColumns+` FROM dependency_edges ORDER BY created_at ASC`)
		if err != nil {
			return fmt.Errorf("load edges: %w", err)
		}
		existing, err := scanDependencyEdges(rows)
		rows.Close()
		if err != nil {
			return err
		}
		if err := checkFn(existing, edge); err != nil {
			return err
		}
	}

	err = tx.QueryRow(ctx, `
		INSERT INTO dependency_edges (from_id, to_id, kind, blocking, note)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`,
		edge.FromID, edge.ToID, edge.Kind, edge.Blocking, nullString(edge.Note),
	).Scan(&edge.ID, &edge.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert edge: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetDependencyEdge(ctx context.Context, id uuid.UUID) (*DependencyEdge, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+dependencyEdgeColumns+` FROM dependency_edges WHERE id = $1`, id)
	edge, err := scanDependencyEdge(row)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return edge, err
}

func (s *PostgresStore) ListDependencyEdges(ctx context.Context) ([]*DependencyEdge, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+dependencyEdgeColumns+` FROM dependency_edges ORDER BY created_at ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanDependencyEdges(rows)
}

func (s *PostgresStore) ListDependencyEdgesForInitiative(ctx context.Context, initiativeID uuid.UUID) ([]*DependencyEdge, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+dependencyEdgeColumns+` FROM dependency_edges
		WHERE from_id = $1 OR to_id = $1
		ORDER BY created_at ASC`, initiativeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanDependencyEdges(rows)
}

func (s *PostgresStore) DeleteDependencyEdge(ctx context.Context, id uuid.UUID) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM dependency_edges WHERE id = $1`, id)
	return err
}

func (s *PostgresStore) ResolveDependencyEdge(ctx context.Context, id uuid.UUID) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE dependency_edges SET resolved = true, resolved_at = NOW()
		WHERE id = $1 AND resolved = false`, id)
	return err
}

// --- Resource allocations ---

func (s *PostgresStore) CreateAllocation(ctx context.Context, alloc *ResourceAllocation) error {
	return s.pool.QueryRow(ctx, `
		INSERT INTO resource_allocations (initiative_id, resource_type, resource_name, amount, window_label)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`,
		alloc.InitiativeID, alloc.ResourceType, nullString(alloc.ResourceName),
		alloc.Amount, nullString(alloc.Window),
	).Scan(&alloc.ID, &alloc.CreatedAt)
}

func (s *PostgresStore) ListAllocations(ctx context.Context, filter AllocationFilter) ([]*ResourceAllocation, error) {
	query := `SELECT id, initiative_id, resource_type, resource_name, amount, window_label, created_at
		FROM resource_allocations WHERE 1=1`
	args := []interface{}{}
	n := 0

	if filter.ResourceType != "" {
		n++
		query += fmt.Sprintf(" AND resource_type = $%d", n)
		args = append(args, filter.ResourceType)
	}
	if filter.Window != "" {
		n++
		query += fmt.Sprintf(" AND window_label = $%d", n)
		args = append(args, filter.Window)
	}

	query += " ORDER BY created_at ASC"

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var allocs []*ResourceAllocation
	for rows.Next() {
		a := &ResourceAllocation{}
		var resourceName, window sql.NullString
		if err := rows.Scan(&a.ID, &a.InitiativeID, &a.ResourceType, &resourceName,
			&a.Amount, &window, &a.CreatedAt); err != nil {
			return nil, err
		}
		if resourceName.Valid {
			a.ResourceName = resourceName.String
		}
		if window.Valid {
			a.Window = window.String
		}
		allocs = append(allocs, a)
	}
	return allocs, rows.Err()
}
