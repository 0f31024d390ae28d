package postgres_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/esdeck/esdeck-api/internal/adapters/postgres"
	"github.com/esdeck/esdeck-api/internal/ports"
	"github.com/esdeck/esdeck-api/internal/testutil"
)

func TestAuditRepo_Integration_RecordAndList(t *testing.T) {
	testutil.SkipIfNoTestDB(t)

	testutil.WithTestDB(t, func(db *sql.DB) {
		repo := postgres.NewAuditRepo(db)
		ctx := context.Background()

		events := []ports.AuditEvent{
			{Kind: ports.AuditLoginFailure, Username: "mallory", RemoteIP: "10.0.0.9"},
			{Kind: ports.AuditLoginSuccess, Username: "alice", RemoteIP: "10.0.0.5"},
			{Kind: ports.AuditLogout, Username: "alice", RemoteIP: "10.0.0.5"},
		}
		for _, ev := range events {
			require.NoError(t, repo.Record(ctx, ev))
		}

		got, err := repo.Recent(ctx, 10)
		require.NoError(t, err)
		require.Len(t, got, 3)

		// Newest first; IDs and timestamps filled in on insert.
		assert.Equal(t, ports.AuditLogout, got[0].Kind)
		for _, ev := range got {
			assert.NotEmpty(t, ev.ID)
			assert.False(t, ev.CreatedAt.IsZero())
		}
	})
}

func TestAuditRepo_Integration_RecordKeepsCallerFields(t *testing.T) {
	testutil.SkipIfNoTestDB(t)

	testutil.WithTestDB(t, func(db *sql.DB) {
		repo := postgres.NewAuditRepo(db)
		ctx := context.Background()

		when := time.Date(2026, 2, 3, 4, 5, 6, 0, time.UTC)
		require.NoError(t, repo.Record(ctx, ports.AuditEvent{
			ID:        "0b8f9f50-0000-4000-8000-000000000001",
			Kind:      ports.AuditRateLimitBlock,
			Username:  "mallory",
			RemoteIP:  "10.0.0.9",
			Detail:    "blocked after 5 failures",
			CreatedAt: when,
		}))

		got, err := repo.Recent(ctx, 1)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "0b8f9f50-0000-4000-8000-000000000001", got[0].ID)
		assert.Equal(t, "blocked after 5 failures", got[0].Detail)
		assert.True(t, got[0].CreatedAt.Equal(when))
	})
}

func TestAuditRepo_Integration_Prune(t *testing.T) {
	testutil.SkipIfNoTestDB(t)

	testutil.WithTestDB(t, func(db *sql.DB) {
		repo := postgres.NewAuditRepo(db)
		ctx := context.Background()

		old := time.Now().UTC().Add(-48 * time.Hour)
		require.NoError(t, repo.Record(ctx, ports.AuditEvent{Kind: ports.AuditLoginFailure, CreatedAt: old}))
		require.NoError(t, repo.Record(ctx, ports.AuditEvent{Kind: ports.AuditLoginSuccess}))

		removed, err := repo.Prune(ctx, 24*time.Hour)
		require.NoError(t, err)
		assert.Equal(t, 1, removed)

		got, err := repo.Recent(ctx, 10)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, ports.AuditLoginSuccess, got[0].Kind)
	})
}
