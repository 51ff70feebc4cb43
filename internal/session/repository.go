package session

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBPool matches the methods from *pgxpool.Pool that the repository uses.
type DBPool interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Ping(ctx context.Context) error
}

type Repository interface {
	Create(ctx context.Context, s Session) error
	Get(ctx context.Context, id string) (Session, error)
	Delete(ctx context.Context, id string) error
	// DeleteExpired removes every session expired at now and returns their ids.
	DeleteExpired(ctx context.Context, now time.Time) ([]string, error)
}

type PostgresRepository struct {
	pool DBPool
}

func NewPostgresRepository(pool DBPool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

func (r *PostgresRepository) Create(ctx context.Context, s Session) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO sessions (id, user_id, role, token, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE
		SET user_id=EXCLUDED.user_id, role=EXCLUDED.role, token=EXCLUDED.token,
		    created_at=EXCLUDED.created_at, expires_at=EXCLUDED.expires_at
	`, s.ID, s.UserID, s.Role, s.Token, s.CreatedAt, s.ExpiresAt)
	return err
}

func (r *PostgresRepository) Get(ctx context.Context, id string) (Session, error) {
	var s Session
	row := r.pool.QueryRow(ctx, `SELECT id, user_id, role, token, created_at, expires_at FROM sessions WHERE id=$1`, id)
	if err := row.Scan(&s.ID, &s.UserID, &s.Role, &s.Token, &s.CreatedAt, &s.ExpiresAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Session{}, ErrNotFound
		}
		return Session{}, err
	}
	return s, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM sessions WHERE id=$1`, id)
	return err
}

func (r *PostgresRepository) DeleteExpired(ctx context.Context, now time.Time) ([]string, error) {
	rows, err := r.pool.Query(ctx, `DELETE FROM sessions WHERE expires_at <= $1 RETURNING id`, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *PostgresRepository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}
