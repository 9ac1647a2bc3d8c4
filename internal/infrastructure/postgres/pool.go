package postgres

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oksasatya/pixel-news/internal/domain/apperr"
)

// DefaultQueryTimeout bounds a single statement when the caller configures none.
const DefaultQueryTimeout = 5 * time.Second

func NewPool(ctx context.Context, dsn string, maxConns, minConns int32, maxConnLife time.Duration) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}
	cfg.MaxConns = maxConns
	cfg.MinConns = minConns
	cfg.MaxConnLifetime = maxConnLife
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}

// store is embedded by every repository: one pool, one per-statement deadline.
type store struct {
	pool    *pgxpool.Pool
	timeout time.Duration
}

func newStore(pool *pgxpool.Pool, timeout time.Duration) store {
	if timeout <= 0 {
		timeout = DefaultQueryTimeout
	}
	return store{pool: pool, timeout: timeout}
}

func (s store) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.timeout)
}

// classify maps driver errors onto application kinds; notFound is used for pgx.ErrNoRows.
func classify(op string, err error, notFound error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) && notFound != nil {
		return notFound
	}
	return apperr.FromStore(op, err)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern builds an ILIKE pattern matching s literally anywhere in the value.
func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}

// limitArg renders a non-positive limit as NULL, which Postgres reads as LIMIT ALL.
func limitArg(limit int) any {
	if limit <= 0 {
		return nil
	}
	return limit
}

// validID reports whether id can address a row; malformed ids are treated as missing
// instead of surfacing a driver cast error.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
