package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/dulpromax/catalog-api/internal/platform/httpx"
)

// ProfileStore looks profiles up by each supported key. Implementations
// return an error wrapping httpx.ErrNotFound when nothing matches.
type ProfileStore interface {
	ProfileByID(ctx context.Context, id string) (*Profile, error)
	ProfileByUserID(ctx context.Context, userID string) (*Profile, error)
	ProfileByEmail(ctx context.Context, email string) (*Profile, error)
}

// Strategy is one step of the profile lookup chain. Lookup returns a nil
// profile and nil error when the step does not match.
type Strategy struct {
	Name   string
	Lookup func(ctx context.Context, creds Credentials) (*Profile, error)
}

// DefaultStrategies returns the lookup chain: primary key, user_id column,
// then email when the token carried one.
func DefaultStrategies(store ProfileStore) []Strategy {
	return []Strategy{
		{Name: "by_id", Lookup: func(ctx context.Context, creds Credentials) (*Profile, error) {
			return optional(store.ProfileByID(ctx, creds.SubjectID))
		}},
		{Name: "by_user_id", Lookup: func(ctx context.Context, creds Credentials) (*Profile, error) {
			return optional(store.ProfileByUserID(ctx, creds.SubjectID))
		}},
		{Name: "by_email", Lookup: func(ctx context.Context, creds Credentials) (*Profile, error) {
			if creds.Email == "" {
				return nil, nil
			}
			return optional(store.ProfileByEmail(ctx, creds.Email))
		}},
	}
}

func optional(p *Profile, err error) (*Profile, error) {
	if errors.Is(err, httpx.ErrNotFound) {
		return nil, nil
	}
	return p, err
}

// Resolver maps verified credentials to a Caller.
type Resolver struct {
	strategies []Strategy
}

// NewResolver builds a resolver that tries strategies in the given order.
func NewResolver(strategies ...Strategy) *Resolver {
	return &Resolver{strategies: strategies}
}

// Resolve runs the strategy chain and stops at the first match. When no
// strategy matches the caller gets no role; that is not an error.
func (r *Resolver) Resolve(ctx context.Context, creds Credentials) (Caller, error) {
	for _, s := range r.strategies {
		profile, err := s.Lookup(ctx, creds)
		if err != nil {
			return Caller{}, fmt.Errorf("auth: resolve profile %s: %w", s.Name, err)
		}
		if profile != nil {
			return callerFromProfile(creds, profile), nil
		}
	}
	return Caller{ID: creds.SubjectID, Email: nonEmpty(creds.Email)}, nil
}

func callerFromProfile(creds Credentials, p *Profile) Caller {
	email := p.Email
	if email == nil || *email == "" {
		email = nonEmpty(creds.Email)
	}
	return Caller{
		ID:             creds.SubjectID,
		Email:          email,
		Role:           p.Role,
		OrganizationID: p.OrganizationID,
	}
}

func nonEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
