package categories

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dulpromax/catalog-api/internal/platform/db"
)

type Repository interface {
	List(ctx context.Context, activeOnly bool) ([]Category, error)
	Get(ctx context.Context, id string) (Category, error)
	Create(ctx context.Context, c Category) (Category, error)
	Update(ctx context.Context, id string, c Category) (Category, error)
	Delete(ctx context.Context, id string) (Category, error)
	SlugExists(ctx context.Context, slug, excludeID string) (bool, error)
}

const columns = `id::text, name, slug, description, parent_id::text, image_url, is_active, sort_order, created_at, updated_at`

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool}
}

func scan(row pgx.Row) (Category, error) {
	var c Category
	err := row.Scan(&c.ID, &c.Name, &c.Slug, &c.Description, &c.ParentID, &c.ImageURL, &c.IsActive, &c.SortOrder, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

func (r *repository) List(ctx context.Context, activeOnly bool) ([]Category, error) {
	query := `SELECT ` + columns + ` FROM categories`
	if activeOnly {
		query += ` WHERE is_active`
	}
	query += ` ORDER BY sort_order, name`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := []Category{}
	for rows.Next() {
		c, err := scan(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, c)
	}
	return list, rows.Err()
}

func (r *repository) Get(ctx context.Context, id string) (Category, error) {
	c, err := scan(r.db.QueryRow(ctx, `SELECT `+columns+` FROM categories WHERE id = $1`, id))
	return c, db.Classify(err, "Category")
}

func (r *repository) Create(ctx context.Context, c Category) (Category, error) {
	query := `INSERT INTO categories (name, slug, description, parent_id, image_url, is_active, sort_order)
		VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING ` + columns
	created, err := scan(r.db.QueryRow(ctx, query, c.Name, c.Slug, c.Description, c.ParentID, c.ImageURL, c.IsActive, c.SortOrder))
	return created, db.Classify(err, "Category")
}

func (r *repository) Update(ctx context.Context, id string, c Category) (Category, error) {
	query := `UPDATE categories SET name = $1, slug = $2, description = $3, parent_id = $4, image_url = $5,
		is_active = $6, sort_order = $7, updated_at = now() WHERE id = $8 RETURNING ` + columns
	updated, err := scan(r.db.QueryRow(ctx, query, c.Name, c.Slug, c.Description, c.ParentID, c.ImageURL, c.IsActive, c.SortOrder, id))
	return updated, db.Classify(err, "Category")
}

func (r *repository) Delete(ctx context.Context, id string) (Category, error) {
	deleted, err := scan(r.db.QueryRow(ctx, `DELETE FROM categories WHERE id = $1 RETURNING `+columns, id))
	return deleted, db.Classify(err, "Category")
}

func (r *repository) SlugExists(ctx context.Context, slug, excludeID string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM categories WHERE slug = $1 AND ($2 = '' OR id::text <> $2))`,
		slug, excludeID).Scan(&exists)
	return exists, err
}
