package repo

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"canvasbot/internal/domain"
)

// CanvasRepositoryPG implements domain.CanvasRepository using PostgreSQL.
type CanvasRepositoryPG struct {
	pool *pgxpool.Pool
}

// NewCanvasRepository constructs a new canvas repository instance.
func NewCanvasRepository(pool *pgxpool.Pool) *CanvasRepositoryPG {
	return &CanvasRepositoryPG{pool: pool}
}

// Create inserts a canvas record.
func (r *CanvasRepositoryPG) Create(ctx context.Context, canvas *domain.Canvas) error {
	_, err := r.pool.Exec(ctx, `
INSERT INTO canvases (id, user_id, template_id, status)
VALUES ($1, $2, $3, $4);
`, canvas.ID, canvas.UserID, canvas.TemplateID, string(canvas.Status))
	return err
}

// UpdateStatus advances the session state of a canvas.
func (r *CanvasRepositoryPG) UpdateStatus(ctx context.Context, id string, status domain.CanvasStatus) error {
	tag, err := r.pool.Exec(ctx, `
UPDATE canvases
SET status = $2,
    updated_at = NOW()
WHERE id = $1;
`, id, string(status))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// GetByID fetches a canvas record.
func (r *CanvasRepositoryPG) GetByID(ctx context.Context, id string) (*domain.Canvas, error) {
	row := r.pool.QueryRow(ctx, `
SELECT id, user_id, template_id, status, created_at, updated_at
FROM canvases
WHERE id = $1;
`, id)

	var c domain.Canvas
	if err := row.Scan(&c.ID, &c.UserID, &c.TemplateID, &c.Status, &c.CreatedAt, &c.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

// Delete removes a canvas record.
func (r *CanvasRepositoryPG) Delete(ctx context.Context, id string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM canvases WHERE id = $1`, id)
	return err
}
