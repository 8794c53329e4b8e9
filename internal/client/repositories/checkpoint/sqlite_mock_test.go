package checkpoint

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClear_SingleStatement(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer mockDB.Close()

	mock.ExpectExec("DELETE FROM metadata WHERE key IN").
		WithArgs(keyCredential, keyKind, keyMarker).
		WillReturnResult(sqlmock.NewResult(0, 3))

	r := NewSQLiteRepository(mockDB)
	require.NoError(t, r.Clear(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet(), "clear is one all-or-nothing delete")
}

func TestClear_ExecError(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer mockDB.Close()

	boom := errors.New("database is locked")
	mock.ExpectExec("DELETE FROM metadata WHERE key IN").WillReturnError(boom)

	r := NewSQLiteRepository(mockDB)
	assert.ErrorIs(t, r.Clear(context.Background()), boom)
	assert.NoError(t, mock.ExpectationsWereMet())
}
