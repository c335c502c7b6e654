package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // pgx driver

	"tutor-bot/internal/dialogue"
)

// SessionRepo keeps session snapshots in Postgres. A row older than MaxAge
// reads as absent, so an abandoned dialogue restarts instead of resuming
// weeks later mid-phase.
type SessionRepo struct {
	DB     *sql.DB
	MaxAge time.Duration
}

func NewSessionRepo(db *sql.DB, maxAge time.Duration) *SessionRepo {
	return &SessionRepo{DB: db, MaxAge: maxAge}
}

func (r *SessionRepo) Load(ctx context.Context, id string) (*dialogue.GraphState, error) {
	const q = `select state_json, updated_at from sessions where id=$1`
	var (
		js []byte
		ts time.Time
	)
	if err := r.DB.QueryRowContext(ctx, q, id).Scan(&js, &ts); err != nil {
		return nil, err
	}
	if r.MaxAge > 0 && time.Since(ts) > r.MaxAge {
		return nil, ErrNotFound
	}
	st, err := decodeState(js)
	if err != nil {
		// A snapshot that no longer parses reads as absent.
		return nil, ErrNotFound
	}
	return st, nil
}

func (r *SessionRepo) Save(ctx context.Context, id string, st *dialogue.GraphState) error {
	js, _ := json.Marshal(st)
	const q = `
insert into sessions (id, state_json)
values ($1, $2)
on conflict (id)
do update set state_json=excluded.state_json, updated_at=now()`
	_, err := r.DB.ExecContext(ctx, q, id, js)
	return err
}

func (r *SessionRepo) Delete(ctx context.Context, id string) error {
	const q = `delete from sessions where id=$1`
	_, err := r.DB.ExecContext(ctx, q, id)
	return err
}

// PurgeOlderThan removes sessions idle past the cutoff so the table does
// not grow without bound.
func (r *SessionRepo) PurgeOlderThan(ctx context.Context, olderThan time.Duration) (int64, error) {
	if olderThan <= 0 {
		return 0, errors.New("olderThan must be > 0")
	}
	cutoff := time.Now().Add(-olderThan)
	const q = `delete from sessions where updated_at < $1`
	res, err := r.DB.ExecContext(ctx, q, cutoff)
	if err != nil {
		return 0, err
	}
	aff, _ := res.RowsAffected()
	return aff, nil
}

// EnsureSchema creates the sessions table when it is missing.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	const q = `
create table if not exists sessions (
  id text primary key,
  state_json jsonb not null,
  created_at timestamptz not null default now(),
  updated_at timestamptz not null default now()
)`
	_, err := db.ExecContext(ctx, q)
	return err
}

// Open connects to Postgres, tunes the pool, verifies the connection and
// makes sure the schema exists.
func Open(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	// connection pool tune (load is a handful of rps)
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(1 * time.Hour)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}
	if err := EnsureSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}
