package repo

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"canvasbot/internal/domain"
)

// TemplateRepositoryPG implements domain.TemplateRepository using PostgreSQL.
type TemplateRepositoryPG struct {
	pool *pgxpool.Pool
}

// NewTemplateRepository constructs a new template repository instance.
func NewTemplateRepository(pool *pgxpool.Pool) *TemplateRepositoryPG {
	return &TemplateRepositoryPG{pool: pool}
}

const templateColumns = `id, slug, description, supported_geos, categories, is_public, version, preview_ref, created_at, updated_at`

// Create inserts a catalogue record.
func (r *TemplateRepositoryPG) Create(ctx context.Context, tpl *domain.Template) error {
	_, err := r.pool.Exec(ctx, `
INSERT INTO templates (id, slug, description, supported_geos, categories, is_public, version, preview_ref)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
`, tpl.ID, tpl.Slug, tpl.Description, geosToStrings(tpl.SupportedGeos), categoriesToStrings(tpl.Categories), tpl.IsPublic, tpl.Version, tpl.PreviewRef)
	return err
}

// Update rewrites every mutable column of a catalogue record.
func (r *TemplateRepositoryPG) Update(ctx context.Context, tpl *domain.Template) error {
	tag, err := r.pool.Exec(ctx, `
UPDATE templates
SET slug = $2,
    description = $3,
    supported_geos = $4,
    categories = $5,
    is_public = $6,
    version = $7,
    preview_ref = $8,
    updated_at = NOW()
WHERE id = $1;
`, tpl.ID, tpl.Slug, tpl.Description, geosToStrings(tpl.SupportedGeos), categoriesToStrings(tpl.Categories), tpl.IsPublic, tpl.Version, tpl.PreviewRef)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete removes a catalogue record.
func (r *TemplateRepositoryPG) Delete(ctx context.Context, id string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM templates WHERE id = $1`, id)
	return err
}

// GetByID fetches one catalogue record.
func (r *TemplateRepositoryPG) GetByID(ctx context.Context, id string) (*domain.Template, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+templateColumns+` FROM templates WHERE id = $1`, id)
	return scanTemplate(row)
}

// ListAll returns every catalogue record, public or not.
func (r *TemplateRepositoryPG) ListAll(ctx context.Context) ([]domain.Template, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+templateColumns+` FROM templates ORDER BY slug ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectTemplates(rows)
}

// ListPublic returns public templates supporting the geo, optionally filtered
// by category, newest first.
func (r *TemplateRepositoryPG) ListPublic(ctx context.Context, geo domain.Geo, category domain.Category, limit, offset int) ([]domain.Template, error) {
	rows, err := r.pool.Query(ctx, `
SELECT `+templateColumns+`
FROM templates
WHERE is_public = TRUE
  AND $1 = ANY(supported_geos)
  AND ($2 = '' OR $2 = ANY(categories))
ORDER BY created_at DESC
LIMIT $3 OFFSET $4;
`, string(geo), string(category), limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectTemplates(rows)
}

func collectTemplates(rows pgx.Rows) ([]domain.Template, error) {
	var templates []domain.Template
	for rows.Next() {
		tpl, err := scanTemplate(rows)
		if err != nil {
			return nil, err
		}
		templates = append(templates, *tpl)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return templates, nil
}

func scanTemplate(row pgx.Row) (*domain.Template, error) {
	var (
		tpl        domain.Template
		geos       []string
		categories []string
	)
	if err := row.Scan(&tpl.ID, &tpl.Slug, &tpl.Description, &geos, &categories, &tpl.IsPublic, &tpl.Version, &tpl.PreviewRef, &tpl.CreatedAt, &tpl.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	for _, g := range geos {
		tpl.SupportedGeos = append(tpl.SupportedGeos, domain.Geo(g))
	}
	for _, c := range categories {
		tpl.Categories = append(tpl.Categories, domain.Category(c))
	}
	return &tpl, nil
}

func geosToStrings(geos []domain.Geo) []string {
	out := make([]string, len(geos))
	for i, g := range geos {
		out[i] = string(g)
	}
	return out
}

func categoriesToStrings(categories []domain.Category) []string {
	out := make([]string, len(categories))
	for i, c := range categories {
		out[i] = string(c)
	}
	return out
}
