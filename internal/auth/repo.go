package auth

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dulpromax/catalog-api/internal/platform/db"
	"github.com/dulpromax/catalog-api/internal/platform/httpx"
)

const profileColumns = `id::text, user_id::text, email, role, organization_id::text`

// PGRepository implements ProfileStore using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

// ProfileByID fetches a profile by primary key.
func (r *PGRepository) ProfileByID(ctx context.Context, id string) (*Profile, error) {
	// Subjects from other issuers are not UUIDs and cannot match the key.
	if _, err := uuid.Parse(id); err != nil {
		return nil, httpx.Wrap(httpx.ErrNotFound, "profile not found", nil)
	}
	return r.one(ctx, `SELECT `+profileColumns+` FROM profiles WHERE id = $1 LIMIT 1`, id)
}

// ProfileByUserID fetches a profile by its user_id column.
func (r *PGRepository) ProfileByUserID(ctx context.Context, userID string) (*Profile, error) {
	return r.one(ctx, `SELECT `+profileColumns+` FROM profiles WHERE user_id::text = $1 LIMIT 1`, userID)
}

// ProfileByEmail fetches a profile by email.
func (r *PGRepository) ProfileByEmail(ctx context.Context, email string) (*Profile, error) {
	return r.one(ctx, `SELECT `+profileColumns+` FROM profiles WHERE email = $1 LIMIT 1`, email)
}

func (r *PGRepository) one(ctx context.Context, query string, arg string) (*Profile, error) {
	var p Profile
	err := r.pool.QueryRow(ctx, query, arg).Scan(&p.ID, &p.UserID, &p.Email, &p.Role, &p.OrganizationID)
	if err != nil {
		return nil, db.Classify(err, "profile")
	}
	return &p, nil
}

var _ ProfileStore = (*PGRepository)(nil)
