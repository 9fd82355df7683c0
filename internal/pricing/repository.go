package pricing

import (
	"context"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dulpromax/catalog-api/internal/platform/db"
)

type Repository interface {
	TierStore

	ListSegments(ctx context.Context, f SegmentFilter) ([]SegmentPrice, error)
	CreateSegment(ctx context.Context, in SegmentInput) (SegmentPrice, error)
	UpdateSegment(ctx context.Context, id string, in SegmentInput) (SegmentPrice, error)
	DeleteSegment(ctx context.Context, id string) error

	ListOverrides(ctx context.Context, f OverrideFilter) ([]Override, error)
	CreateOverride(ctx context.Context, in OverrideInput) (Override, error)
	UpdateOverride(ctx context.Context, id string, in OverrideInput) (Override, error)
	DeleteOverride(ctx context.Context, id string) error

	ListUserTypes(ctx context.Context) ([]UserType, error)
	ListOrganizations(ctx context.Context) ([]Organization, error)
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool}
}

// Tiers reads base, segment and override prices in one round trip. The
// segment comes from the organization's user type.
func (r *repository) Tiers(ctx context.Context, productID string, organizationID *string) (Tiers, error) {
	query := `SELECT p.price,
		(SELECT sp.price FROM segment_prices sp
			JOIN organizations o ON o.user_type_id = sp.user_type_id
			WHERE sp.product_id = p.id AND o.id = $2::uuid LIMIT 1),
		(SELECT co.price FROM customer_overrides co
			WHERE co.product_id = p.id AND co.organization_id = $2::uuid LIMIT 1)
		FROM products p WHERE p.id = $1`
	var t Tiers
	err := r.db.QueryRow(ctx, query, productID, organizationID).Scan(&t.Base, &t.Segment, &t.Override)
	return t, db.Classify(err, "Product")
}

const segmentColumns = `id::text, product_id::text, user_type_id::text, price`

func scanSegment(row pgx.Row) (SegmentPrice, error) {
	var s SegmentPrice
	err := row.Scan(&s.ID, &s.ProductID, &s.UserTypeID, &s.Price)
	return s, err
}

func (r *repository) ListSegments(ctx context.Context, f SegmentFilter) ([]SegmentPrice, error) {
	query := `SELECT ` + segmentColumns + ` FROM segment_prices WHERE 1=1`
	args := []interface{}{}
	if f.ProductID != "" {
		args = append(args, f.ProductID)
		query += ` AND product_id = $` + strconv.Itoa(len(args))
	}
	if f.UserTypeID != "" {
		args = append(args, f.UserTypeID)
		query += ` AND user_type_id = $` + strconv.Itoa(len(args))
	}
	query += ` ORDER BY product_id, user_type_id`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	list := []SegmentPrice{}
	for rows.Next() {
		s, err := scanSegment(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, s)
	}
	return list, rows.Err()
}

func (r *repository) CreateSegment(ctx context.Context, in SegmentInput) (SegmentPrice, error) {
	s, err := scanSegment(r.db.QueryRow(ctx,
		`INSERT INTO segment_prices (product_id, user_type_id, price) VALUES ($1, $2, $3) RETURNING `+segmentColumns,
		in.ProductID, in.UserTypeID, *in.Price))
	return s, db.Classify(err, "Segment price")
}

func (r *repository) UpdateSegment(ctx context.Context, id string, in SegmentInput) (SegmentPrice, error) {
	s, err := scanSegment(r.db.QueryRow(ctx,
		`UPDATE segment_prices SET product_id = $1, user_type_id = $2, price = $3 WHERE id = $4 RETURNING `+segmentColumns,
		in.ProductID, in.UserTypeID, *in.Price, id))
	return s, db.Classify(err, "Segment price")
}

func (r *repository) DeleteSegment(ctx context.Context, id string) error {
	return r.deleteByID(ctx, `DELETE FROM segment_prices WHERE id = $1`, id, "Segment price")
}

const overrideColumns = `id::text, product_id::text, organization_id::text, price`

func scanOverride(row pgx.Row) (Override, error) {
	var o Override
	err := row.Scan(&o.ID, &o.ProductID, &o.OrganizationID, &o.Price)
	return o, err
}

func (r *repository) ListOverrides(ctx context.Context, f OverrideFilter) ([]Override, error) {
	query := `SELECT ` + overrideColumns + ` FROM customer_overrides WHERE 1=1`
	args := []interface{}{}
	if f.ProductID != "" {
		args = append(args, f.ProductID)
		query += ` AND product_id = $` + strconv.Itoa(len(args))
	}
	if f.OrganizationID != "" {
		args = append(args, f.OrganizationID)
		query += ` AND organization_id = $` + strconv.Itoa(len(args))
	}
	query += ` ORDER BY product_id, organization_id`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	list := []Override{}
	for rows.Next() {
		o, err := scanOverride(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, o)
	}
	return list, rows.Err()
}

func (r *repository) CreateOverride(ctx context.Context, in OverrideInput) (Override, error) {
	o, err := scanOverride(r.db.QueryRow(ctx,
		`INSERT INTO customer_overrides (product_id, organization_id, price) VALUES ($1, $2, $3) RETURNING `+overrideColumns,
		in.ProductID, in.OrganizationID, *in.Price))
	return o, db.Classify(err, "Override")
}

func (r *repository) UpdateOverride(ctx context.Context, id string, in OverrideInput) (Override, error) {
	o, err := scanOverride(r.db.QueryRow(ctx,
		`UPDATE customer_overrides SET product_id = $1, organization_id = $2, price = $3 WHERE id = $4 RETURNING `+overrideColumns,
		in.ProductID, in.OrganizationID, *in.Price, id))
	return o, db.Classify(err, "Override")
}

func (r *repository) DeleteOverride(ctx context.Context, id string) error {
	return r.deleteByID(ctx, `DELETE FROM customer_overrides WHERE id = $1`, id, "Override")
}

func (r *repository) deleteByID(ctx context.Context, query, id, entity string) error {
	tag, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return db.Classify(err, entity)
	}
	if tag.RowsAffected() == 0 {
		return db.Classify(pgx.ErrNoRows, entity)
	}
	return nil
}

func (r *repository) ListUserTypes(ctx context.Context) ([]UserType, error) {
	rows, err := r.db.Query(ctx, `SELECT id::text, name FROM user_types ORDER BY name`)
	if err != nil {
		return nil, err
	}
	list, err := pgx.CollectRows(rows, pgx.RowToStructByPos[UserType])
	if list == nil {
		list = []UserType{}
	}
	return list, err
}

func (r *repository) ListOrganizations(ctx context.Context) ([]Organization, error) {
	rows, err := r.db.Query(ctx, `SELECT id::text, name, user_type_id::text FROM organizations ORDER BY name`)
	if err != nil {
		return nil, err
	}
	list, err := pgx.CollectRows(rows, pgx.RowToStructByPos[Organization])
	if list == nil {
		list = []Organization{}
	}
	return list, err
}
