package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	// registers the "sqlite" driver with database/sql.
	_ "modernc.org/sqlite"
)

const sqlitePragmas = "_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"

type Storage struct {
	Connection *sql.DB
}

// NewSQLiteStorage opens the database file at path, creating it if needed.
func NewSQLiteStorage(ctx context.Context, path string) (*Storage, error) {
	dsn := path
	if !strings.Contains(dsn, "?") {
		dsn += "?" + sqlitePragmas
	}

	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("can't open database: %w", err)
	}

	// one writer at a time; WAL lets readers proceed
	conn.SetMaxOpenConns(1)

	if err = conn.PingContext(ctx); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("can't connect to database: %w", err)
	}

	return &Storage{Connection: conn}, nil
}

func (that *Storage) Close() error {
	return that.Connection.Close()
}
