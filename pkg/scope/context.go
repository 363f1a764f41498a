// Package scope carries the business-unit scope of a request through
// context. Every engine call is explicitly scoped to one unit
// (raw-hose, after-washing, rvi, molded, btr); there is no ambient
// "current module" state anywhere in the codebase.
package scope

import (
	"context"
	"errors"
)

// contextKey is a private type for context keys to prevent collisions
type contextKey string

const unitCodeKey contextKey = "unit_code"

// ErrNoUnitInContext is returned when the unit scope is missing
var ErrNoUnitInContext = errors.New("no business unit in context")

// WithUnit adds the business-unit code to the context.
// This should be called by middleware after resolving the unit from
// the route.
func WithUnit(ctx context.Context, unitCode string) context.Context {
	return context.WithValue(ctx, unitCodeKey, unitCode)
}

// Unit extracts the business-unit code from context.
// Returns ErrNoUnitInContext if it is not set.
func Unit(ctx context.Context) (string, error) {
	code, ok := ctx.Value(unitCodeKey).(string)
	if !ok || code == "" {
		return "", ErrNoUnitInContext
	}
	return code, nil
}

// MustUnit extracts the unit code and panics if it is missing.
// Use only where a missing unit is a programming error.
func MustUnit(ctx context.Context) string {
	code, err := Unit(ctx)
	if err != nil {
		panic("business unit not found in context")
	}
	return code
}
