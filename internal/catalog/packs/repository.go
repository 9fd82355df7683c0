package packs

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dulpromax/catalog-api/internal/platform/db"
)

type Repository interface {
	List(ctx context.Context, productID string) ([]Pack, error)
	Create(ctx context.Context, productID string, in Input) (Pack, error)
	Update(ctx context.Context, productID, packID string, in Input) (Pack, error)
	Delete(ctx context.Context, productID, packID string) (Pack, error)
	ProductExists(ctx context.Context, productID string) (bool, error)
}

// PriceStore is the narrow view of the store used by the Synchronizer.
type PriceStore interface {
	ActivePackPrices(ctx context.Context, productID string) ([]float64, error)
	SetProductPrice(ctx context.Context, productID string, price float64) error
	ProductsWithPacks(ctx context.Context) ([]string, error)
}

const columns = `id::text, product_id::text, pack_size, price, is_active, created_at, updated_at`

// PGRepository implements Repository and PriceStore.
type PGRepository struct {
	db *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{db: pool}
}

func scan(row pgx.Row) (Pack, error) {
	var p Pack
	err := row.Scan(&p.ID, &p.ProductID, &p.PackSize, &p.Price, &p.IsActive, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

func (r *PGRepository) List(ctx context.Context, productID string) ([]Pack, error) {
	rows, err := r.db.Query(ctx, `SELECT `+columns+` FROM product_pack_options WHERE product_id = $1 ORDER BY pack_size ASC`, productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := []Pack{}
	for rows.Next() {
		p, err := scan(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

func (r *PGRepository) Create(ctx context.Context, productID string, in Input) (Pack, error) {
	query := `INSERT INTO product_pack_options (product_id, pack_size, price, is_active)
		VALUES ($1, $2, $3, $4) RETURNING ` + columns
	p, err := scan(r.db.QueryRow(ctx, query, productID, in.PackSize, *in.Price, in.active()))
	return p, db.Classify(err, "Pack")
}

func (r *PGRepository) Update(ctx context.Context, productID, packID string, in Input) (Pack, error) {
	query := `UPDATE product_pack_options SET pack_size = $1, price = $2, is_active = $3, updated_at = now()
		WHERE id = $4 AND product_id = $5 RETURNING ` + columns
	p, err := scan(r.db.QueryRow(ctx, query, in.PackSize, *in.Price, in.active(), packID, productID))
	return p, db.Classify(err, "Pack")
}

func (r *PGRepository) Delete(ctx context.Context, productID, packID string) (Pack, error) {
	p, err := scan(r.db.QueryRow(ctx,
		`DELETE FROM product_pack_options WHERE id = $1 AND product_id = $2 RETURNING `+columns, packID, productID))
	return p, db.Classify(err, "Pack")
}

func (r *PGRepository) ProductExists(ctx context.Context, productID string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM products WHERE id = $1)`, productID).Scan(&exists)
	return exists, err
}

func (r *PGRepository) ActivePackPrices(ctx context.Context, productID string) ([]float64, error) {
	rows, err := r.db.Query(ctx, `SELECT price FROM product_pack_options WHERE product_id = $1 AND is_active`, productID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[float64])
}

func (r *PGRepository) SetProductPrice(ctx context.Context, productID string, price float64) error {
	tag, err := r.db.Exec(ctx, `UPDATE products SET price = $1, updated_at = now() WHERE id = $2`, price, productID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return db.Classify(pgx.ErrNoRows, "Product")
	}
	return nil
}

func (r *PGRepository) ProductsWithPacks(ctx context.Context) ([]string, error) {
	rows, err := r.db.Query(ctx, `SELECT DISTINCT product_id::text FROM product_pack_options ORDER BY 1`)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[string])
}

var (
	_ Repository = (*PGRepository)(nil)
	_ PriceStore = (*PGRepository)(nil)
)
