// Package postgres persists authentication audit events. The audit trail is
// optional infrastructure; when no database is configured the service runs
// without it.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/esdeck/esdeck-api/internal/errors"
	"github.com/esdeck/esdeck-api/internal/ports"

	// Registers the pgx database/sql driver.
	_ "github.com/jackc/pgx/v5/stdlib"
)

const auditColumns = `id, kind, username, remote_ip, detail, created_at`

// AuditRepo writes audit events to the auth_audit_events table.
type AuditRepo struct {
	db  *sql.DB
	now func() time.Time
}

var _ ports.AuditRecorder = (*AuditRepo)(nil)

// NewAuditRepo wraps an open connection pool. The schema must already exist;
// see EnsureSchema.
func NewAuditRepo(db *sql.DB) *AuditRepo {
	return &AuditRepo{db: db, now: time.Now}
}

// Open connects to the given DSN and verifies the connection.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open audit database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping audit database: %w", err)
	}
	return db, nil
}

// EnsureSchema creates the audit table when it does not exist yet. The table
// is append-only and small enough that a migration tool would be overkill.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	const ddl = `
		CREATE TABLE IF NOT EXISTS auth_audit_events (
			id         UUID PRIMARY KEY,
			kind       TEXT NOT NULL,
			username   TEXT NOT NULL DEFAULT '',
			remote_ip  TEXT NOT NULL DEFAULT '',
			detail     TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL
		)`
	if _, err := db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("ensure audit schema: %w", apperrors.MapDBError(err))
	}
	return nil
}

// Record inserts one audit event. A zero ID or CreatedAt is filled in here so
// callers can pass just the outcome fields.
func (r *AuditRepo) Record(ctx context.Context, event ports.AuditEvent) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = r.now().UTC()
	}

	const query = `
		INSERT INTO auth_audit_events (` + auditColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.db.ExecContext(ctx, query,
		event.ID, event.Kind, event.Username, event.RemoteIP, event.Detail, event.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("record audit event: %w", apperrors.MapDBError(err))
	}
	return nil
}

// Recent returns up to limit events, newest first. Used by operators poking
// at login trouble; not exposed over HTTP.
func (r *AuditRepo) Recent(ctx context.Context, limit int) ([]ports.AuditEvent, error) {
	if limit <= 0 {
		limit = 50
	}

	const query = `
		SELECT ` + auditColumns + `
		FROM auth_audit_events
		ORDER BY created_at DESC
		LIMIT $1`
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list audit events: %w", apperrors.MapDBError(err))
	}
	defer rows.Close()

	var events []ports.AuditEvent
	for rows.Next() {
		var ev ports.AuditEvent
		if err := rows.Scan(&ev.ID, &ev.Kind, &ev.Username, &ev.RemoteIP, &ev.Detail, &ev.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit events: %w", apperrors.MapDBError(err))
	}
	return events, nil
}

// Prune deletes events older than the retention window and reports how many
// rows went away.
func (r *AuditRepo) Prune(ctx context.Context, olderThan time.Duration) (int, error) {
	cutoff := r.now().UTC().Add(-olderThan)
	res, err := r.db.ExecContext(ctx, `DELETE FROM auth_audit_events WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("prune audit events: %w", apperrors.MapDBError(err))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("prune audit events: %w", err)
	}
	return int(n), nil
}
