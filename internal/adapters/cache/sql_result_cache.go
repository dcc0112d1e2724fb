package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"route-scenario-service/internal/domain"
	"route-scenario-service/internal/platform/db"
	"route-scenario-service/internal/platform/obs"
	"strings"
	"time"
)

// SQLResultCache stores optimizer results in the result_cache table of the
// scenario database. It is used when no redis is configured.
type SQLResultCache struct {
	DB      *sql.DB
	Dialect db.Dialect
	TTL     time.Duration

	now func() time.Time
}

func NewSQLResultCache(conn *sql.DB, dialect db.Dialect, ttl time.Duration) *SQLResultCache {
	return &SQLResultCache{DB: conn, Dialect: dialect, TTL: ttl, now: time.Now}
}

// Fetch a cached result. Expired rows count as misses.
func (s *SQLResultCache) Get(ctx context.Context, key string) (_ *domain.Result, _ bool, err error) {
	defer obs.Time(ctx, "result.cache.Get")(&err)

	if s.DB == nil {
		return nil, false, errors.New("result cache: db is nil")
	}
	if strings.TrimSpace(key) == "" {
		return nil, false, errors.New("get result cache: key must not be empty")
	}

	q := s.Dialect.Rebind(`
	SELECT result
	FROM result_cache
	WHERE cache_key = ?
		AND expires_at > ?;
	`)

	var raw string
	err = s.DB.QueryRowContext(ctx, q, key, s.now().Unix()).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get result cache: query result_cache table: %w", err)
	}

	var res domain.Result
	if err := json.Unmarshal([]byte(raw), &res); err != nil {
		return nil, false, fmt.Errorf("get result cache: decode %q: %w", key, err)
	}

	return &res, true, nil
}

// Store a result, replacing any previous entry for key.
func (s *SQLResultCache) Put(ctx context.Context, key string, result domain.Result) (err error) {
	defer obs.Time(ctx, "result.cache.Put")(&err)

	if s.DB == nil {
		return errors.New("result cache: db is nil")
	}
	if strings.TrimSpace(key) == "" {
		return errors.New("insert result cache: key must not be empty")
	}

	raw, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("insert result cache: encode: %w", err)
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("insert result cache: db begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	q := s.Dialect.Rebind(`
	INSERT INTO result_cache (cache_key, result, expires_at)
	VALUES (?, ?, ?)
	ON CONFLICT (cache_key) DO UPDATE
	SET result = EXCLUDED.result,
		expires_at = EXCLUDED.expires_at;
	`)
	if _, err := tx.ExecContext(ctx, q, key, string(raw), s.now().Add(s.TTL).Unix()); err != nil {
		return fmt.Errorf("insert result cache key=%q: %w", key, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("insert result cache commit: %w", err)
	}

	return nil
}

// Purge deletes expired entries and reports how many were removed.
func (s *SQLResultCache) Purge(ctx context.Context) (int64, error) {
	res, err := s.DB.ExecContext(ctx, s.Dialect.Rebind(`DELETE FROM result_cache WHERE expires_at <= ?;`), s.now().Unix())
	if err != nil {
		return 0, fmt.Errorf("purge result cache: %w", err)
	}
	return res.RowsAffected()
}
