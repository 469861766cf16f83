package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/streamreco/recommend-engine/internal/models"
)

// BehaviorAuditRepository durably records every accepted behavior event
// alongside the ephemeral Redis ledger. It is additive: the hot path never
// blocks on or retries a failed write here.
type BehaviorAuditRepository struct {
	pool *pgxpool.Pool
}

func NewBehaviorAuditRepository(pool *pgxpool.Pool) *BehaviorAuditRepository {
	return &BehaviorAuditRepository{pool: pool}
}

// Record inserts one audit row for an accepted behavior event.
func (r *BehaviorAuditRepository) Record(ctx context.Context, event models.BehaviorEvent, shard models.ShardEngine) error {
	query := `
		INSERT INTO behavior_audit_log (id, device, video_id, operation, shard_engine, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.pool.Exec(ctx, query,
		uuid.NewString(),
		event.Device,
		event.VideoID,
		event.Operation.String(),
		shard.String(),
		time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert behavior audit row: %w", err)
	}
	return nil
}

// AuditFilters narrows a List query by device and/or a time window.
type AuditFilters struct {
	Device string
	Since  time.Time
	Until  time.Time
	Limit  int
}

// AuditRow is a single recorded behavior event.
type AuditRow struct {
	ID          string
	Device      string
	VideoID     string
	Operation   string
	ShardEngine string
	CreatedAt   time.Time
}

// List returns recorded rows matching the given filters, most recent first.
func (r *BehaviorAuditRepository) List(ctx context.Context, f AuditFilters) ([]AuditRow, error) {
	limit := f.Limit
	if limit <= 0 || limit > 1000 {
		limit = 100
	}

	query := `
		SELECT id, device, video_id, operation, shard_engine, created_at
		FROM behavior_audit_log
		WHERE ($1 = '' OR device = $1)
		  AND ($2::timestamptz IS NULL OR created_at >= $2)
		  AND ($3::timestamptz IS NULL OR created_at <= $3)
		ORDER BY created_at DESC
		LIMIT $4
	`

	var since, until interface{}
	if !f.Since.IsZero() {
		since = f.Since
	}
	if !f.Until.IsZero() {
		until = f.Until
	}

	rows, err := r.pool.Query(ctx, query, f.Device, since, until, limit)
	if err != nil {
		return nil, fmt.Errorf("list behavior audit rows: %w", err)
	}
	defer rows.Close()

	var out []AuditRow
	for rows.Next() {
		var row AuditRow
		if err := rows.Scan(&row.ID, &row.Device, &row.VideoID, &row.Operation, &row.ShardEngine, &row.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan behavior audit row: %w", err)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate behavior audit rows: %w", err)
	}
	return out, nil
}
