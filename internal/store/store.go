// Package store implements the tabular store adapter: generic row operations
// over named tables, always scoped to one tenant through an opaque Handle.
// Typed repositories sit on top and decode rows into domain models.
package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"sstcore/internal/apperrors"
)

// Table names known to the adapter. Table identifiers are interpolated into
// SQL, so anything outside this set is rejected before a query is built.
const (
	TableClients     = "clients"
	TableUsers       = "users"
	TableFormats     = "formats"
	TableFormRecords = "form_records"
	TableActions     = "management_actions"
	TableFindings    = "findings"
	TableAttendance  = "attendance"
)

var knownTables = map[string]struct{}{
	TableClients:     {},
	TableUsers:       {},
	TableFormats:     {},
	TableFormRecords: {},
	TableActions:     {},
	TableFindings:    {},
	TableAttendance:  {},
}

// Handle scopes every store operation to one tenant. It is produced by the
// tenancy router, passed explicitly through call chains, and never stored in
// package-level state. The zero Handle is invalid and rejected by every
// operation.
type Handle struct {
	tenantID uuid.UUID
}

// NewHandle builds a Handle for a resolved tenant id.
func NewHandle(tenantID uuid.UUID) (Handle, error) {
	if tenantID == uuid.Nil {
		return Handle{}, apperrors.Invalid("store.NewHandle", "no tenant configured")
	}
	return Handle{tenantID: tenantID}, nil
}

// TenantID exposes the scoped tenant, used for cache key construction and
// object-storage prefixes. It does not allow rebinding the Handle.
func (h Handle) TenantID() uuid.UUID { return h.tenantID }

// Zero reports whether the Handle is unbound.
func (h Handle) Zero() bool { return h.tenantID == uuid.Nil }

// Row is one stored record. Doc is the raw JSON document; ID is assigned by
// Append and is authoritative over any id carried inside Doc.
type Row struct {
	ID        uuid.UUID
	Doc       []byte
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Decode unmarshals the row document into v.
func (r *Row) Decode(v any) error {
	if err := json.Unmarshal(r.Doc, v); err != nil {
		return apperrors.Internal("store.Decode", err)
	}
	return nil
}

// Filter narrows and orders a List. Match is document containment: every
// key/value pair must be present in the row document. Rows come back in
// insertion order unless Descending is set.
type Filter struct {
	Match      map[string]any
	Descending bool
	Limit      int
}

// Store is the tabular adapter contract. Not-found is a normal result
// (ENotFound); storage failures surface as EUnavailable and are never
// retried here.
type Store interface {
	List(ctx context.Context, h Handle, table string, f Filter) ([]Row, error)
	Get(ctx context.Context, h Handle, table string, id uuid.UUID) (*Row, error)
	Append(ctx context.Context, h Handle, table string, doc any) (uuid.UUID, error)
	Update(ctx context.Context, h Handle, table string, id uuid.UUID, patch map[string]any) (*Row, error)
	Delete(ctx context.Context, h Handle, table string, id uuid.UUID) error
}

func checkScope(op string, h Handle, table string) error {
	if h.Zero() {
		return apperrors.Invalid(op, "no tenant handle")
	}
	if _, ok := knownTables[table]; !ok {
		return apperrors.Invalidf(op, "unknown table %q", table)
	}
	return nil
}
