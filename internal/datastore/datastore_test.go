package datastore

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
)

func openFixtureDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", filepath.Join(t.TempDir(), "centreon.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	for _, name := range []string{"schema.sql", "seed.sql"} {
		script, err := os.ReadFile(filepath.Join("testdata", name))
		require.NoError(t, err)
		_, err = db.Exec(string(script))
		require.NoError(t, err, name)
	}
	return db
}

func TestRowAccessors(t *testing.T) {
	row := Row{"id": "12", "level": "80.5", "flag": "1", "off": "0", "bad": "x", "empty": ""}

	assert.Equal(t, 12, row.Int("id"))
	assert.Equal(t, 0, row.Int("bad"))
	assert.Equal(t, 0, row.Int("missing"))
	assert.Equal(t, 80.5, row.Float("level"))
	assert.True(t, row.Bool("flag"))
	assert.False(t, row.Bool("off"))
	assert.False(t, row.Bool("missing"))
	assert.True(t, row.Has("id"))
	assert.False(t, row.Has("empty"))
}

func TestEveryTableHasQuery(t *testing.T) {
	for _, table := range Tables() {
		q, ok := table.Query()
		assert.True(t, ok, string(table))
		assert.Contains(t, q, string(table))
	}
}

func TestSQLSource_Query(t *testing.T) {
	db := openFixtureDB(t)
	source := NewSQLSource(db, zaptest.NewLogger(t))
	ctx := context.Background()

	t.Run("Rows in key order", func(t *testing.T) {
		rows, err := source.Query(ctx, TableNodes)
		require.NoError(t, err)
		require.Len(t, rows, 2)
		assert.Equal(t, 1, rows[0].Int("id"))
		assert.Equal(t, "Central", rows[0].String("name"))
		assert.True(t, rows[0].Bool("localhost"))
		assert.Equal(t, "Poller-East", rows[1].String("name"))
	})

	t.Run("NULL becomes empty", func(t *testing.T) {
		rows, err := source.Query(ctx, TableBusinessActivities)
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, "Web#S#Shop", rows[0].String("name"))
		assert.False(t, rows[0].Has("event_handler_command"))
		assert.Equal(t, 80.0, rows[0].Float("level_w"))
	})

	t.Run("Empty table", func(t *testing.T) {
		rows, err := source.Query(ctx, TableEscalations)
		require.NoError(t, err)
		assert.Empty(t, rows)
	})

	t.Run("Unknown table", func(t *testing.T) {
		_, err := source.Query(ctx, Table("nope"))
		assert.ErrorIs(t, err, ErrUnknownTable)
	})
}

func TestSQLSource_QueryFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	boom := errors.New("connection reset")
	mock.ExpectQuery("SELECT (.+) FROM contact ORDER BY contact_id").WillReturnError(boom)

	source := NewSQLSource(db, zap.NewNop())
	_, err = source.Query(context.Background(), TableContacts)
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLSource_ScanMock(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT (.+) FROM command").
		WillReturnRows(sqlmock.NewRows([]string{"command_id", "command_name", "command_line", "command_type"}).
			AddRow(3, "notify-by-mail", nil, 1))

	source := NewSQLSource(db, zap.NewNop())
	rows, err := source.Query(context.Background(), TableCommands)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 3, rows[0].Int("command_id"))
	assert.Equal(t, "", rows[0].String("command_line"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLSource_ColumnOrderIsIrrelevant(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT (.+) FROM command").
		WillReturnRows(sqlmock.NewRows([]string{"command_id", "command_name", "command_line", "command_type"}).
			AddRow(3, "notify-by-mail", "mail -s", 1))
	mock.ExpectQuery("SELECT (.+) FROM command").
		WillReturnRows(sqlmock.NewRows([]string{"command_type", "command_line", "command_name", "command_id"}).
			AddRow(1, "mail -s", "notify-by-mail", 3))

	source := NewSQLSource(db, zap.NewNop())
	ordered, err := source.Query(context.Background(), TableCommands)
	require.NoError(t, err)
	reversed, err := source.Query(context.Background(), TableCommands)
	require.NoError(t, err)

	assert.Equal(t, ordered, reversed)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	_, err := Open(ctx, SQLConfig{Driver: "oracle"}, zap.NewNop())
	assert.ErrorIs(t, err, ErrUnsupportedDriver)

	for _, driver := range []string{"sqlite3", "sqlite"} {
		t.Run(driver, func(t *testing.T) {
			source, err := Open(ctx, SQLConfig{
				Driver:       driver,
				DSN:          filepath.Join(t.TempDir(), "open.db"),
				MaxOpenConns: 1,
			}, zaptest.NewLogger(t))
			require.NoError(t, err)
			assert.NotNil(t, source.DB())
			require.NoError(t, source.Close())
		})
	}
}

func TestCache_LoadsOncePerPass(t *testing.T) {
	source := NewMemorySource()
	source.Add(TableHosts, Row{"host_id": "1", "host_name": "a"}, Row{"host_id": "2", "host_name": "b"})
	cache := NewCache(source, zaptest.NewLogger(t))
	ctx := context.Background()

	first, err := cache.Load(ctx, TableHosts)
	require.NoError(t, err)
	second, err := cache.Load(ctx, TableHosts)
	require.NoError(t, err)

	assert.Len(t, first, 2)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, source.Calls(TableHosts))
	assert.True(t, cache.Loaded(TableHosts))

	cache.Flush()
	assert.False(t, cache.Loaded(TableHosts))
	_, err = cache.Load(ctx, TableHosts)
	require.NoError(t, err)
	assert.Equal(t, 2, source.Calls(TableHosts))
}

func TestCache_QueryErrorIsNotCached(t *testing.T) {
	source := NewMemorySource()
	boom := errors.New("table is locked")
	source.FailOn(TableContacts, boom)
	cache := NewCache(source, zap.NewNop())

	_, err := cache.Load(context.Background(), TableContacts)
	require.Error(t, err)

	var qerr *QueryError
	require.True(t, errors.As(err, &qerr))
	assert.Equal(t, TableContacts, qerr.Table)
	assert.ErrorIs(t, err, boom)
	assert.False(t, cache.Loaded(TableContacts))
}

func TestCache_EmptyTableIsCached(t *testing.T) {
	source := NewMemorySource()
	cache := NewCache(source, zap.NewNop())

	rows, err := cache.Load(context.Background(), TableEscalations)
	require.NoError(t, err)
	assert.Empty(t, rows)

	_, err = cache.Load(context.Background(), TableEscalations)
	require.NoError(t, err)
	assert.Equal(t, 1, source.Calls(TableEscalations))
}
