package schema

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func expectIntrospection(mock sqlmock.Sqlmock) {
	mock.ExpectQuery("SELECT c.table_name, c.column_name").WillReturnRows(
		sqlmock.NewRows([]string{"table_name", "column_name", "data_type", "is_nullable"}).
			AddRow("aluno", "ra", "text", "NO").
			AddRow("aluno", "curso_id", "integer", "YES").
			AddRow("curso", "id", "integer", "NO").
			AddRow("curso", "nome", "text", "NO"))
	mock.ExpectQuery("PRIMARY KEY").WillReturnRows(
		sqlmock.NewRows([]string{"table_name", "column_name"}).
			AddRow("aluno", "ra").
			AddRow("curso", "id"))
	mock.ExpectQuery("FOREIGN KEY").WillReturnRows(
		sqlmock.NewRows([]string{"table_name", "column_name", "ref_table", "ref_column"}).
			AddRow("aluno", "curso_id", "curso", "id"))
}

func TestCatalogRefresh(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	expectIntrospection(mock)

	catalog := NewCatalog(db, time.Hour, nil)
	snap, err := catalog.Refresh(context.Background())
	require.NoError(t, err)

	require.Len(t, snap.Tables, 2)
	assert.Equal(t, "aluno", snap.Tables[0].Name)
	assert.Equal(t, []string{"ra"}, snap.Tables[0].PrimaryKeys)
	require.Len(t, snap.Tables[0].ForeignKeys, 1)
	assert.Equal(t, "curso", snap.Tables[0].ForeignKeys[0].RefTable)
	assert.False(t, snap.Builtin)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCatalogGetServesCachedSnapshot(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	expectIntrospection(mock)

	catalog := NewCatalog(db, time.Hour, nil)

	first, err := catalog.Get(context.Background())
	require.NoError(t, err)
	second, err := catalog.Get(context.Background())
	require.NoError(t, err)

	assert.Same(t, first, second, "second Get must not re-introspect within the TTL")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCatalogFallsBackToBuiltin(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT c.table_name").WillReturnError(fmt.Errorf("connection refused"))

	catalog := NewCatalog(db, time.Hour, nil)
	snap, err := catalog.Get(context.Background())
	require.NoError(t, err)

	assert.True(t, snap.Builtin)
	assert.NotNil(t, snap.Table("matricula"))
}

func TestCatalogFallsBackToLastGoodSnapshot(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	expectIntrospection(mock)
	mock.ExpectQuery("SELECT c.table_name").WillReturnError(fmt.Errorf("connection refused"))

	catalog := NewCatalog(db, time.Hour, nil)

	good, err := catalog.Refresh(context.Background())
	require.NoError(t, err)

	degraded, err := catalog.Refresh(context.Background())
	require.NoError(t, err)

	assert.Same(t, good, degraded, "a failed refresh keeps the last good snapshot")
	assert.False(t, degraded.Builtin)
}
