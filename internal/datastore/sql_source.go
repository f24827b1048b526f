package datastore

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

// Drivers lists the database/sql driver names a datastore may be opened with
var Drivers = []string{"mysql", "postgres", "sqlite3", "sqlite"}

// SQLConfig describes how to reach the relational datastore
type SQLConfig struct {
	Driver          string
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// SQLSource implements Source on top of database/sql
type SQLSource struct {
	logger *zap.Logger
	db     *sql.DB
}

// Open connects to the datastore and verifies the connection
func Open(ctx context.Context, cfg SQLConfig, logger *zap.Logger) (*SQLSource, error) {
	if !supportedDriver(cfg.Driver) {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedDriver, cfg.Driver)
	}

	db, err := sql.Open(cfg.Driver, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Info("Connected to datastore", zap.String("driver", cfg.Driver))

	return NewSQLSource(db, logger), nil
}

// NewSQLSource wraps an already opened database
func NewSQLSource(db *sql.DB, logger *zap.Logger) *SQLSource {
	return &SQLSource{
		logger: logger.Named("datastore"),
		db:     db,
	}
}

// DB returns the underlying database handle
func (s *SQLSource) DB() *sql.DB {
	return s.db
}

// Query implements Source.Query
func (s *SQLSource) Query(ctx context.Context, table Table) ([]Row, error) {
	query, ok := table.Query()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTable, table)
	}

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to get columns: %w", err)
	}

	var results []Row
	for rows.Next() {
		values := make([]sql.NullString, len(columns))
		dest := make([]interface{}, len(columns))
		for i := range values {
			dest[i] = &values[i]
		}

		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		row := make(Row, len(columns))
		for i, column := range columns {
			row[column] = values[i].String
		}
		results = append(results, row)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during row iteration: %w", err)
	}

	s.logger.Debug("Loaded table",
		zap.String("table", string(table)),
		zap.Int("rows", len(results)))

	return results, nil
}

// Close closes the database connection
func (s *SQLSource) Close() error {
	return s.db.Close()
}

func supportedDriver(name string) bool {
	for _, d := range Drivers {
		if d == name {
			return true
		}
	}
	return false
}
