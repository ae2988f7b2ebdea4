package postgres

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidSchema(t *testing.T) {
	for _, name := range []string{"jobfilter", "_jobs", "Jobs2"} {
		assert.NoError(t, New("", name).validSchema(), name)
	}
	for _, name := range []string{"", "2jobs", `jobs"; DROP TABLE jobs; --`, "a-b"} {
		assert.Error(t, New("", name).validSchema(), name)
	}
}

func TestConnectRejectsBadSchemaBeforeDialing(t *testing.T) {
	_, err := New("postgres://invalid.invalid/jobs", "bad-name").Connect(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid postgres schema name")
}

// Runs against a live server when JOBFILTER_TEST_PG_DSN is set.
func TestCreateAndOpenSchema(t *testing.T) {
	dsn := os.Getenv("JOBFILTER_TEST_PG_DSN")
	if dsn == "" {
		t.Skip("JOBFILTER_TEST_PG_DSN not set")
	}
	ctx := context.Background()
	a := New(dsn, "jobfilter_test")
	db, err := a.Connect(ctx)
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, a.CreateSchema(ctx, db))
	require.NoError(t, a.OpenSchema(ctx, db))
}
