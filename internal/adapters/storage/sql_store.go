package storage

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"
	"github.com/sony/gobreaker"

	"github.com/AchilleasB/pet-care/console-service/internal/config"
	"github.com/AchilleasB/pet-care/console-service/internal/core/ports"
)

const createKVTable = `CREATE TABLE IF NOT EXISTS console_kv (
	key        TEXT PRIMARY KEY,
	value      TEXT NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

// SQLStore persists the session in a single Postgres table.
type SQLStore struct {
	db     *sql.DB
	prefix string
	cb     *gobreaker.CircuitBreaker
}

var _ ports.KeyValueStore = (*SQLStore)(nil)

func NewSQLStore(db *sql.DB, prefix string) *SQLStore {
	return &SQLStore{
		db:     db,
		prefix: prefix,
		cb:     config.NewCircuitBreaker(config.BreakerPostgres),
	}
}

// EnsureSchema creates the backing table if it does not exist yet.
func (s *SQLStore) EnsureSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, createKVTable)
	return err
}

func (s *SQLStore) Get(ctx context.Context, key string) (string, bool, error) {
	res, err := s.cb.Execute(func() (interface{}, error) {
		var value string
		err := s.db.QueryRowContext(ctx,
			"SELECT value FROM console_kv WHERE key = $1",
			s.prefix+key,
		).Scan(&value)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		return value, nil
	})
	if err != nil {
		return "", false, err
	}
	if res == nil {
		return "", false, nil
	}
	return res.(string), true, nil
}

func (s *SQLStore) Set(ctx context.Context, key, value string) error {
	_, err := s.cb.Execute(func() (interface{}, error) {
		return s.db.ExecContext(ctx,
			`INSERT INTO console_kv (key, value, updated_at)
			 VALUES ($1, $2, NOW())
			 ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()`,
			s.prefix+key,
			value,
		)
	})
	return err
}

// Remove deletes all keys in one statement.
func (s *SQLStore) Remove(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = s.prefix + k
	}
	_, err := s.cb.Execute(func() (interface{}, error) {
		return s.db.ExecContext(ctx, "DELETE FROM console_kv WHERE key = ANY($1)", pq.Array(full))
	})
	return err
}

func (s *SQLStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLStore) BreakerState() gobreaker.State { return s.cb.State() }
