package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	driver "github.com/go-sql-driver/mysql"

	"salary-import/internal/config"
)

type Storage struct {
	db *sql.DB
}

func New(cfg config.Config) (*Storage, error) {
	const op = "storage.mysql.New"

	if cfg.Journal.DSN == "" {
		return nil, fmt.Errorf("%s: %w", op, errors.New("journal dsn is empty"))
	}

	dsn, err := withParseTime(cfg.Journal.DSN)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	db.SetMaxOpenConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("%s: ping: %w", op, err)
	}

	s := &Storage{db: db}
	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return s, nil
}

// withParseTime forces parseTime on so DATETIME columns scan into time.Time.
func withParseTime(dsn string) (string, error) {
	c, err := driver.ParseDSN(dsn)
	if err != nil {
		return "", fmt.Errorf("parse dsn: %w", err)
	}
	c.ParseTime = true

	return c.FormatDSN(), nil
}

func (s *Storage) Close() error {
	return s.db.Close()
}

func (s *Storage) migrate(ctx context.Context) error {
	const op = "storage.mysql.migrate"

	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS wage_import_ranges (
			import_id       CHAR(36)     NOT NULL,
			start_row       INT          NOT NULL,
			end_row         INT          NOT NULL,
			idempotency_key CHAR(36)     NOT NULL,
			acked_at        DATETIME     NOT NULL,
			PRIMARY KEY (import_id, start_row)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4
	`)
	if err != nil {
		return fmt.Errorf("%s: create wage_import_ranges: %w", op, err)
	}

	return nil
}
