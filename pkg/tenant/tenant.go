// Package tenant carries the authenticated tenant through request contexts.
// Every repository query must be scoped by the tenant pulled from here; there
// is deliberately no process-wide fallback.
package tenant

import (
	"context"

	"github.com/google/uuid"

	apperrors "github.com/rjnat/cursorpos-backend/pkg/errors"
)

type ctxKey struct{}

// WithTenantID returns a child context carrying the tenant identifier.
func WithTenantID(ctx context.Context, tenantID uuid.UUID) context.Context {
	return context.WithValue(ctx, ctxKey{}, tenantID)
}

// FromContext extracts the tenant identifier set by the auth middleware.
func FromContext(ctx context.Context) (uuid.UUID, error) {
	tenantID, ok := ctx.Value(ctxKey{}).(uuid.UUID)
	if !ok || tenantID == uuid.Nil {
		return uuid.Nil, apperrors.New(apperrors.CodeUnauthorized, "tenant context missing")
	}
	return tenantID, nil
}

// MustFromContext is for call sites that run strictly behind the auth
// middleware, where a missing tenant is a programming error.
func MustFromContext(ctx context.Context) uuid.UUID {
	tenantID, err := FromContext(ctx)
	if err != nil {
		panic(err)
	}
	return tenantID
}
