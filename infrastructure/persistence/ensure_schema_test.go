package persistence

import (
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tmoody1973/rhythm-lab-app-sub003/infrastructure/configuration"
)

func TestEnsureSchema_AddsMissingColumn(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	for range schemaStatements {
		mock.ExpectExec(`CREATE (TABLE|INDEX) IF NOT EXISTS`).WillReturnResult(sqlmock.NewResult(0, 0))
	}
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT 1 FROM information_schema.columns`)).
		WithArgs("mixcloud_oauth_tokens", "mixcloud_username").
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}))
	mock.ExpectExec(regexp.QuoteMeta(`ALTER TABLE mixcloud_oauth_tokens ADD COLUMN mixcloud_username`)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, EnsureSchema(db))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEnsureSchema_ColumnPresent(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	for range schemaStatements {
		mock.ExpectExec(`CREATE (TABLE|INDEX) IF NOT EXISTS`).WillReturnResult(sqlmock.NewResult(0, 0))
	}
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT 1 FROM information_schema.columns`)).
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(1))

	require.NoError(t, EnsureSchema(db))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEnsureSchema_CreateFails(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS profiles`).WillReturnError(errors.New("permission denied"))

	err = EnsureSchema(db)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "permission denied")
}

func TestNewPostgreSQLDB_RequiresHost(t *testing.T) {
	saved := configuration.C.Database.Psql
	t.Cleanup(func() { configuration.C.Database.Psql = saved })
	configuration.C.Database.Psql.Host = ""

	db, err := NewPostgreSQLDB()

	assert.Nil(t, db)
	assert.ErrorIs(t, err, ErrDatabaseNotConfigured)
}
