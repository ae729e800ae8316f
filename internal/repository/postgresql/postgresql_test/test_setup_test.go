package postgresql_test

import (
	"context"
	"os"
	"testing"

	"github.com/cmlabs-hris/production-dashboard-go/internal/pkg/database"
	"github.com/stretchr/testify/require"
)

// newTestDatabase connects to TEST_DATABASE_URL or skips the test when it is unset
func newTestDatabase(t *testing.T) *database.DB {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	db, err := database.NewPostgreSQLDB(context.Background(), dsn, 2)
	require.NoError(t, err, "failed to connect to test database")
	t.Cleanup(db.Close)
	return db
}

// createTempProductionTable shadows production_records for the current transaction
func createTempProductionTable(t *testing.T, ctx context.Context, q database.Querier) {
	t.Helper()

	_, err := q.Exec(ctx, `
		CREATE TEMP TABLE production_records (
			id                BIGSERIAL PRIMARY KEY,
			date              DATE NOT NULL,
			factory           TEXT NOT NULL,
			team              TEXT NOT NULL,
			machine_name      TEXT NOT NULL,
			operator_id       BIGINT NOT NULL,
			operator_name     TEXT NOT NULL,
			quantity_produced BIGINT NOT NULL,
			quantity_defects  BIGINT NOT NULL
		) ON COMMIT DROP
	`)
	require.NoError(t, err)
}
