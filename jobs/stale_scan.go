package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fleetwatch/fleetwatch/internal/platform/db"
	"github.com/fleetwatch/fleetwatch/internal/vehicles"
)

// StaleScanJob marks vehicles whose telemetry stopped arriving as INACTIVE.
// Operators flip vehicles back manually once they report in again.
type StaleScanJob struct {
	Pool   *pgxpool.Pool
	Logger *slog.Logger
	Cache  *vehicles.Cache
	clock  func() time.Time
}

// NewStaleScanJob initialises the stale-scan handler.
func NewStaleScanJob(pool *pgxpool.Pool, logger *slog.Logger, cache *vehicles.Cache) *StaleScanJob {
	return &StaleScanJob{
		Pool:   pool,
		Logger: logger,
		Cache:  cache,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Handle executes the scan. The select-then-update runs in one transaction so
// a vehicle reporting in mid-scan is not clobbered.
func (j *StaleScanJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Pool == nil {
		return errors.New("stale scan: handler not configured")
	}
	var payload StaleScanPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	if payload.Window <= 0 {
		payload.Window = DefaultStaleWindow
	}

	cutoff := j.clock().Add(-payload.Window)
	var marked []int64

	err := db.WithTx(ctx, j.Pool, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx,
			`SELECT id FROM vehicles WHERE status = 'ACTIVE' AND updated_at < $1 FOR UPDATE`,
			cutoff)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			var id int64
			if err := rows.Scan(&id); err != nil {
				return err
			}
			marked = append(marked, id)
		}
		if err := rows.Err(); err != nil {
			return err
		}
		if len(marked) == 0 {
			return nil
		}
		_, err = tx.Exec(ctx,
			`UPDATE vehicles SET status = 'INACTIVE', speed = 0, updated_at = NOW() WHERE id = ANY($2) AND updated_at < $1`,
			cutoff, marked)
		return err
	})
	if err != nil {
		return err
	}

	if len(marked) > 0 {
		if err := j.Cache.Bump(ctx); err != nil && j.Logger != nil {
			j.Logger.Warn("bump vehicle cache", slog.Any("error", err))
		}
	}
	if j.Logger != nil {
		j.Logger.Info("stale vehicle scan complete",
			slog.Int("marked", len(marked)),
			slog.Time("cutoff", cutoff))
	}
	return nil
}
