package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/lib/pq" // Postgres driver

	interfaces "github.com/sheikh-saqib/farmer-portal/internal/interfaces"
	"github.com/sheikh-saqib/farmer-portal/internal/models"
)

const schema = `CREATE TABLE IF NOT EXISTS portal_sessions (
	id          TEXT PRIMARY KEY,
	state       JSONB NOT NULL,
	updated_at  TIMESTAMPTZ NOT NULL
)`

// PostgresSessionStore persists each session snapshot as one JSONB row.
type PostgresSessionStore struct {
	db *sql.DB
}

func NewPostgresSessionStore(db *sql.DB) *PostgresSessionStore {
	return &PostgresSessionStore{
		db: db,
	}
}

// Open connects to dsn, waits for the database to answer and creates the
// sessions table if needed.
func Open(ctx context.Context, dsn string) (*PostgresSessionStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	for i := 0; i < 5; i++ {
		if err = db.PingContext(ctx); err == nil {
			break
		}
		select {
		case <-ctx.Done():
			db.Close()
			return nil, ctx.Err()
		case <-time.After(2 * time.Second):
		}
	}
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	store := NewPostgresSessionStore(db)
	if err := store.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

func (p *PostgresSessionStore) Migrate(ctx context.Context) error {
	if _, err := p.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create portal_sessions: %w", err)
	}
	return nil
}

func (p *PostgresSessionStore) Save(ctx context.Context, snapshot models.SessionSnapshot) error {
	const query = `INSERT INTO portal_sessions (id, state, updated_at)
	VALUES ($1, $2, $3)
	ON CONFLICT (id) DO UPDATE SET state = EXCLUDED.state, updated_at = EXCLUDED.updated_at`

	state, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("encode session %s: %w", snapshot.ID, err)
	}
	_, err = p.db.ExecContext(ctx, query, snapshot.ID, state, snapshot.UpdatedAt)
	return err
}

func (p *PostgresSessionStore) Load(ctx context.Context, id string) (models.SessionSnapshot, error) {
	const query = `SELECT state FROM portal_sessions WHERE id = $1`

	var state []byte
	err := p.db.QueryRowContext(ctx, query, id).Scan(&state)
	if errors.Is(err, sql.ErrNoRows) {
		return models.SessionSnapshot{}, interfaces.ErrSessionNotFound
	}
	if err != nil {
		return models.SessionSnapshot{}, err
	}

	var snapshot models.SessionSnapshot
	if err := json.Unmarshal(state, &snapshot); err != nil {
		return models.SessionSnapshot{}, fmt.Errorf("decode session %s: %w", id, err)
	}
	return snapshot, nil
}

func (p *PostgresSessionStore) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM portal_sessions WHERE id = $1`

	_, err := p.db.ExecContext(ctx, query, id)
	return err
}

func (p *PostgresSessionStore) Close() error {
	return p.db.Close()
}

var _ interfaces.SessionStore = (*PostgresSessionStore)(nil)
