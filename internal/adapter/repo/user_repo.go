package repo

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"canvasbot/internal/domain"
)

// UserRepositoryPG implements domain.UserRepository backed by PostgreSQL.
type UserRepositoryPG struct {
	pool *pgxpool.Pool
}

// NewUserRepository creates a new UserRepositoryPG.
func NewUserRepository(pool *pgxpool.Pool) *UserRepositoryPG {
	return &UserRepositoryPG{pool: pool}
}

// UpsertByChatID inserts or refreshes a user keyed by chat ID.
func (r *UserRepositoryPG) UpsertByChatID(ctx context.Context, user *domain.User) (*domain.User, error) {
	query := `
INSERT INTO users (id, chat_id, role, supported_geos)
VALUES ($1, $2, $3, $4)
ON CONFLICT (chat_id) DO UPDATE
SET supported_geos = EXCLUDED.supported_geos,
    updated_at = NOW()
RETURNING id, chat_id, role, supported_geos, created_at, updated_at;
`
	row := r.pool.QueryRow(ctx, query, user.ID, user.ChatID, string(user.Role), geosToStrings(user.SupportedGeos))
	return scanUser(row)
}

// GetByID fetches a user by UUID.
func (r *UserRepositoryPG) GetByID(ctx context.Context, id string) (*domain.User, error) {
	row := r.pool.QueryRow(ctx, `SELECT id, chat_id, role, supported_geos, created_at, updated_at FROM users WHERE id = $1`, id)
	return scanUser(row)
}

// GetByChatID fetches a user by chat ID.
func (r *UserRepositoryPG) GetByChatID(ctx context.Context, chatID int64) (*domain.User, error) {
	row := r.pool.QueryRow(ctx, `SELECT id, chat_id, role, supported_geos, created_at, updated_at FROM users WHERE chat_id = $1`, chatID)
	return scanUser(row)
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var (
		u    domain.User
		geos []string
	)
	if err := row.Scan(&u.ID, &u.ChatID, &u.Role, &geos, &u.CreatedAt, &u.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	for _, g := range geos {
		u.SupportedGeos = append(u.SupportedGeos, domain.Geo(g))
	}
	return &u, nil
}
