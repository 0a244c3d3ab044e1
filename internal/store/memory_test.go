package store

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sstcore/internal/apperrors"
)

func memHandle(t *testing.T) Handle {
	t.Helper()
	h, err := NewHandle(uuid.New())
	require.NoError(t, err)
	return h
}

func TestMemory_TenantIsolation(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	h1 := memHandle(t)
	h2 := memHandle(t)

	id, err := m.Append(ctx, h1, TableClients, map[string]any{"name": "Acme"})
	require.NoError(t, err)

	// Visible under the creating handle.
	row, err := m.Get(ctx, h1, TableClients, id)
	require.NoError(t, err)
	assert.Equal(t, id, row.ID)

	// Never visible under another tenant's handle, by id or by list.
	_, err = m.Get(ctx, h2, TableClients, id)
	assert.Equal(t, apperrors.ENotFound, apperrors.ErrorCode(err))

	rows, err := m.List(ctx, h2, TableClients, Filter{})
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestMemory_InsertionOrderAndDescending(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	h := memHandle(t)

	first, _ := m.Append(ctx, h, TableFindings, map[string]any{"n": 1})
	second, _ := m.Append(ctx, h, TableFindings, map[string]any{"n": 2})

	rows, err := m.List(ctx, h, TableFindings, Filter{})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, first, rows[0].ID)

	rows, err = m.List(ctx, h, TableFindings, Filter{Descending: true})
	require.NoError(t, err)
	assert.Equal(t, second, rows[0].ID)
}

func TestMemory_MatchFilter(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	h := memHandle(t)

	open, _ := m.Append(ctx, h, TableFormRecords, map[string]any{"status": "open", "email": "a@x.com"})
	m.Append(ctx, h, TableFormRecords, map[string]any{"status": "closed", "email": "a@x.com"})

	rows, err := m.List(ctx, h, TableFormRecords, Filter{Match: map[string]any{"status": "open"}})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, open, rows[0].ID)
}

func TestMemory_UpdateMergesPatch(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	h := memHandle(t)

	id, _ := m.Append(ctx, h, TableUsers, map[string]any{"email": "a@x.com", "active": true})

	row, err := m.Update(ctx, h, TableUsers, id, map[string]any{"active": false})
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, row.Decode(&doc))
	assert.Equal(t, "a@x.com", doc["email"])
	assert.Equal(t, false, doc["active"])
}

func TestMemory_DeleteNotFound(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	h := memHandle(t)

	err := m.Delete(ctx, h, TableUsers, uuid.New())
	assert.Equal(t, apperrors.ENotFound, apperrors.ErrorCode(err))
}
