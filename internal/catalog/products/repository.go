package products

import (
	"context"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dulpromax/catalog-api/internal/platform/db"
)

type Repository interface {
	List(ctx context.Context, filters ListFilters) ([]Product, int, error)
	Get(ctx context.Context, id string) (Product, error)
	Create(ctx context.Context, product Product) (Product, error)
	Update(ctx context.Context, id string, product Product) (Product, error)
	Delete(ctx context.Context, id string) (Product, error)
	SlugExists(ctx context.Context, slug, excludeID string) (bool, error)
	Packs(ctx context.Context, productID string, activeOnly bool) ([]PackSummary, error)
}

const columns = `id::text, slug, name, description, short_description, price, compare_price, sku, stock_quantity,
	category_id::text, images, attributes, is_active, is_featured, created_at, updated_at`

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool}
}

func scan(row pgx.Row) (Product, error) {
	var p Product
	err := row.Scan(&p.ID, &p.Slug, &p.Name, &p.Description, &p.ShortDescription, &p.Price, &p.ComparePrice, &p.SKU,
		&p.StockQuantity, &p.CategoryID, &p.Images, &p.Attributes, &p.IsActive, &p.IsFeatured, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

// where builds the shared filter clause for the page and count queries.
func where(filters ListFilters) (string, []interface{}) {
	clause := ` WHERE 1=1`
	args := []interface{}{}

	if filters.Catalog {
		clause += ` AND is_active`
	}
	if filters.CategoryID != "" {
		args = append(args, filters.CategoryID)
		clause += ` AND category_id = $` + strconv.Itoa(len(args))
	}
	if filters.Search != "" {
		args = append(args, "%"+filters.Search+"%")
		n := strconv.Itoa(len(args))
		clause += ` AND (name ILIKE $` + n + ` OR description ILIKE $` + n + `)`
	}
	return clause, args
}

func (r *repository) List(ctx context.Context, filters ListFilters) ([]Product, int, error) {
	clause, args := where(filters)

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM products`+clause, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + columns + ` FROM products` + clause + ` ORDER BY created_at DESC`
	args = append(args, filters.PerPage)
	query += ` LIMIT $` + strconv.Itoa(len(args))
	args = append(args, (filters.Page-1)*filters.PerPage)
	query += ` OFFSET $` + strconv.Itoa(len(args))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	list := []Product{}
	for rows.Next() {
		p, err := scan(rows)
		if err != nil {
			return nil, 0, err
		}
		list = append(list, p)
	}
	return list, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, id string) (Product, error) {
	p, err := scan(r.db.QueryRow(ctx, `SELECT `+columns+` FROM products WHERE id = $1`, id))
	return p, db.Classify(err, "Product")
}

func (r *repository) Create(ctx context.Context, p Product) (Product, error) {
	query := `INSERT INTO products (slug, name, description, short_description, price, compare_price, sku, stock_quantity,
		category_id, images, attributes, is_active, is_featured)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13) RETURNING ` + columns
	created, err := scan(r.db.QueryRow(ctx, query, p.Slug, p.Name, p.Description, p.ShortDescription, p.Price, p.ComparePrice,
		p.SKU, p.StockQuantity, p.CategoryID, p.Images, p.Attributes, p.IsActive, p.IsFeatured))
	return created, db.Classify(err, "Product")
}

func (r *repository) Update(ctx context.Context, id string, p Product) (Product, error) {
	query := `UPDATE products SET slug = $1, name = $2, description = $3, short_description = $4, price = $5,
		stock_quantity = $6, category_id = $7, updated_at = now() WHERE id = $8 RETURNING ` + columns
	updated, err := scan(r.db.QueryRow(ctx, query, p.Slug, p.Name, p.Description, p.ShortDescription, p.Price,
		p.StockQuantity, p.CategoryID, id))
	return updated, db.Classify(err, "Product")
}

func (r *repository) Delete(ctx context.Context, id string) (Product, error) {
	deleted, err := scan(r.db.QueryRow(ctx, `DELETE FROM products WHERE id = $1 RETURNING `+columns, id))
	return deleted, db.Classify(err, "Product")
}

func (r *repository) SlugExists(ctx context.Context, slug, excludeID string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM products WHERE slug = $1 AND ($2 = '' OR id::text <> $2))`,
		slug, excludeID).Scan(&exists)
	return exists, err
}

func (r *repository) Packs(ctx context.Context, productID string, activeOnly bool) ([]PackSummary, error) {
	query := `SELECT id::text, pack_size, price, is_active FROM product_pack_options WHERE product_id = $1`
	if activeOnly {
		query += ` AND is_active`
	}
	query += ` ORDER BY pack_size ASC`

	rows, err := r.db.Query(ctx, query, productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	packs := []PackSummary{}
	for rows.Next() {
		var p PackSummary
		if err := rows.Scan(&p.ID, &p.PackSize, &p.Price, &p.IsActive); err != nil {
			return nil, err
		}
		packs = append(packs, p)
	}
	return packs, rows.Err()
}
