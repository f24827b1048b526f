//go:build integration

package testutil

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go/modules/mysql"
)

const mysqlImage = "mysql:8.0"

// StartMySQL runs a disposable MySQL server loaded with the given SQL
// scripts and returns its DSN and an open connection. The container is
// terminated when the test ends.
func StartMySQL(t *testing.T, scripts ...string) (string, *sql.DB) {
	t.Helper()
	ctx := context.Background()

	abs := make([]string, 0, len(scripts))
	for _, s := range scripts {
		p, err := filepath.Abs(s)
		require.NoError(t, err)
		abs = append(abs, p)
	}

	container, err := mysql.Run(ctx, mysqlImage,
		mysql.WithDatabase("centreon"),
		mysql.WithUsername("bamcfg"),
		mysql.WithPassword("bamcfg"),
		mysql.WithScripts(abs...),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = container.Terminate(context.Background())
	})

	dsn, err := container.ConnectionString(ctx)
	require.NoError(t, err)

	db, err := sql.Open("mysql", dsn)
	require.NoError(t, err)
	db.SetMaxOpenConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, db.PingContext(ctx))
	return dsn, db
}
