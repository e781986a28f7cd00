package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/ordinator/ordinator/internal/entity"
	"github.com/ordinator/ordinator/internal/repository"
)

// ObjectiveAuditRepository implements repository.ObjectiveAuditRepository
// for PostgreSQL, one append-only row per actor per metrics sample.
type ObjectiveAuditRepository struct {
	db *sql.DB
}

// NewObjectiveAuditRepository creates a new ObjectiveAuditRepository.
func NewObjectiveAuditRepository(db *sql.DB) *ObjectiveAuditRepository {
	return &ObjectiveAuditRepository{db: db}
}

// Record appends one objective publication to the audit trail.
func (r *ObjectiveAuditRepository) Record(ctx context.Context, rec repository.ObjectiveRecord) error {
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}

	query := `
		INSERT INTO objective_records (
			id, asset, kind, actor_id, objective, published_at
		) VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.db.ExecContext(ctx, query,
		rec.ID,
		rec.Asset,
		rec.Kind,
		rec.ActorID,
		rec.Objective,
		rec.PublishedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to record objective: %w", err)
	}
	return nil
}

// ListRecent retrieves the most recently published objectives for an asset.
func (r *ObjectiveAuditRepository) ListRecent(ctx context.Context, asset entity.Asset, limit int) ([]repository.ObjectiveRecord, error) {
	query := `
		SELECT id, asset, kind, actor_id, objective, published_at
		FROM objective_records
		WHERE asset = $1
		ORDER BY published_at DESC
		LIMIT $2
	`
	return r.query(ctx, query, asset, limit)
}

// ListRecentByActor retrieves the most recently published objectives for one
// actor within an asset.
func (r *ObjectiveAuditRepository) ListRecentByActor(ctx context.Context, asset entity.Asset, kind repository.ActorKind, actorID entity.Id, limit int) ([]repository.ObjectiveRecord, error) {
	query := `
		SELECT id, asset, kind, actor_id, objective, published_at
		FROM objective_records
		WHERE asset = $1 AND kind = $2 AND actor_id = $3
		ORDER BY published_at DESC
		LIMIT $4
	`
	return r.query(ctx, query, asset, kind, actorID, limit)
}

func (r *ObjectiveAuditRepository) query(ctx context.Context, query string, args ...any) ([]repository.ObjectiveRecord, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query objective records: %w", err)
	}
	defer rows.Close()

	var recs []repository.ObjectiveRecord
	for rows.Next() {
		var rec repository.ObjectiveRecord
		if err := rows.Scan(&rec.ID, &rec.Asset, &rec.Kind, &rec.ActorID, &rec.Objective, &rec.PublishedAt); err != nil {
			return nil, fmt.Errorf("failed to scan objective record: %w", err)
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

// Count returns the total number of recorded objectives for an asset.
func (r *ObjectiveAuditRepository) Count(ctx context.Context, asset entity.Asset) (int64, error) {
	query := `SELECT COUNT(*) FROM objective_records WHERE asset = $1`

	var count int64
	if err := r.db.QueryRowContext(ctx, query, asset).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count objective records: %w", err)
	}
	return count, nil
}
