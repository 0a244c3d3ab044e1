// Package tenancy resolves tenant identifiers into store handles and threads
// them, together with the caller identity, through request contexts. Nothing
// here is process-global: two requests for different tenants carry
// independent handles and can run in parallel.
package tenancy

import (
	"context"

	"github.com/google/uuid"

	"sstcore/internal/store"
)

type contextKey string

const (
	handleKey contextKey = "store_handle"
	callerKey contextKey = "caller"
)

// Caller is the authenticated identity of the current request.
type Caller struct {
	Email    string
	Name     string
	Role     string
	ClientID uuid.UUID
}

func WithHandle(ctx context.Context, h store.Handle) context.Context {
	return context.WithValue(ctx, handleKey, h)
}

func HandleFromContext(ctx context.Context) (store.Handle, bool) {
	h, ok := ctx.Value(handleKey).(store.Handle)
	return h, ok && !h.Zero()
}

func WithCaller(ctx context.Context, c Caller) context.Context {
	return context.WithValue(ctx, callerKey, c)
}

func CallerFromContext(ctx context.Context) (Caller, bool) {
	c, ok := ctx.Value(callerKey).(Caller)
	return c, ok
}
