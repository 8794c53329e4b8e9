package checkpoint

import (
	"context"
	"database/sql"
	"testing"

	"github.com/annagav/garderobe/internal/client/db"
	"github.com/annagav/garderobe/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	sqlDB, err := db.Open(context.Background(), "file::memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return sqlDB
}

func TestLoad_EmptyDatabase(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))

	cp, err := r.Load(context.Background())
	require.NoError(t, err)
	assert.False(t, cp.Authenticated())
	assert.Empty(t, cp.Marker)
}

func TestSaveAndLoad(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.SaveCredential(ctx, "tok-1", common.CredentialKindBearer))
	require.NoError(t, r.SaveMarker(ctx, "m1"))

	cp, err := r.Load(ctx)
	require.NoError(t, err)
	assert.True(t, cp.Authenticated())
	assert.Equal(t, "tok-1", cp.Credential)
	assert.Equal(t, common.CredentialKindBearer, cp.Kind)
	assert.Equal(t, "m1", cp.Marker)
}

func TestSaveMarker_Overwrites(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.SaveMarker(ctx, "m1"))
	require.NoError(t, r.SaveMarker(ctx, "m2"))

	cp, err := r.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "m2", cp.Marker)
}

func TestClear(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.SaveCredential(ctx, "tok-1", common.CredentialKindBearer))
	require.NoError(t, r.SaveMarker(ctx, "m1"))
	require.NoError(t, r.Clear(ctx))

	cp, err := r.Load(ctx)
	require.NoError(t, err)
	assert.False(t, cp.Authenticated())
	assert.Empty(t, cp.Kind)
	assert.Empty(t, cp.Marker)
}
