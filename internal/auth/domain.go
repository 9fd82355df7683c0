package auth

import "context"

// RoleAdmin is the only role allowed through the admin gate.
const RoleAdmin = "admin"

// Profile is a stored user profile.
type Profile struct {
	ID             string
	UserID         *string
	Email          *string
	Role           *string
	OrganizationID *string
}

// Caller is the per-request identity after profile resolution. Role is nil
// when no profile matched.
type Caller struct {
	ID             string  `json:"id"`
	Email          *string `json:"email"`
	Role           *string `json:"role"`
	OrganizationID *string `json:"-"`
}

// IsAdmin reports whether the caller carries exactly the admin role.
func (c Caller) IsAdmin() bool {
	return c.Role != nil && *c.Role == RoleAdmin
}

type callerContextKey struct{}

// WithCaller stores the resolved caller in ctx.
func WithCaller(ctx context.Context, caller Caller) context.Context {
	return context.WithValue(ctx, callerContextKey{}, caller)
}

// CallerFromContext returns the caller stored by the gate middleware.
func CallerFromContext(ctx context.Context) (Caller, bool) {
	caller, ok := ctx.Value(callerContextKey{}).(Caller)
	return caller, ok
}
