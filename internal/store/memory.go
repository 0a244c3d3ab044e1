package store

import (
	"context"
	"encoding/json"
	"reflect"
	"sync"
	"time"

	"github.com/google/uuid"

	"sstcore/internal/apperrors"
)

// Memory is an in-process Store with the same contract as Postgres, used as
// the test double for repositories, services and the workflow engine. It
// keeps insertion order per table and enforces tenant scoping the same way.
type Memory struct {
	mu     sync.RWMutex
	tables map[memKey][]*memRow
}

type memKey struct {
	tenant uuid.UUID
	table  string
}

type memRow struct {
	id        uuid.UUID
	doc       map[string]any
	createdAt time.Time
	updatedAt time.Time
}

func NewMemory() *Memory {
	return &Memory{tables: make(map[memKey][]*memRow)}
}

// normalize round-trips v through JSON so stored values compare the way
// jsonb containment would (numbers become float64, structs become maps).
func normalize(v any) (map[string]any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func matches(doc map[string]any, match map[string]any) bool {
	for k, want := range match {
		got, ok := doc[k]
		if !ok || !reflect.DeepEqual(got, want) {
			return false
		}
	}
	return true
}

func (m *Memory) toRow(r *memRow) (Row, error) {
	doc, err := json.Marshal(r.doc)
	if err != nil {
		return Row{}, apperrors.Internal("store.Memory", err)
	}
	return Row{ID: r.id, Doc: doc, CreatedAt: r.createdAt, UpdatedAt: r.updatedAt}, nil
}

func (m *Memory) List(ctx context.Context, h Handle, table string, f Filter) ([]Row, error) {
	const op = "store.List"
	if err := checkScope(op, h, table); err != nil {
		return nil, err
	}

	var match map[string]any
	if len(f.Match) > 0 {
		var err error
		match, err = normalize(f.Match)
		if err != nil {
			return nil, apperrors.Internal(op, err)
		}
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	rows := m.tables[memKey{h.tenantID, table}]
	var out []Row
	for _, r := range rows {
		if match != nil && !matches(r.doc, match) {
			continue
		}
		row, err := m.toRow(r)
		if err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	if f.Descending {
		for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
			out[i], out[j] = out[j], out[i]
		}
	}
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func (m *Memory) Get(ctx context.Context, h Handle, table string, id uuid.UUID) (*Row, error) {
	const op = "store.Get"
	if err := checkScope(op, h, table); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, r := range m.tables[memKey{h.tenantID, table}] {
		if r.id == id {
			row, err := m.toRow(r)
			if err != nil {
				return nil, err
			}
			return &row, nil
		}
	}
	return nil, apperrors.NotFound(op, "row not found")
}

func (m *Memory) Append(ctx context.Context, h Handle, table string, doc any) (uuid.UUID, error) {
	const op = "store.Append"
	if err := checkScope(op, h, table); err != nil {
		return uuid.Nil, err
	}

	normalized, err := normalize(doc)
	if err != nil {
		return uuid.Nil, apperrors.Internal(op, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	r := &memRow{id: uuid.New(), doc: normalized, createdAt: now, updatedAt: now}
	key := memKey{h.tenantID, table}
	m.tables[key] = append(m.tables[key], r)
	return r.id, nil
}

func (m *Memory) Update(ctx context.Context, h Handle, table string, id uuid.UUID, patch map[string]any) (*Row, error) {
	const op = "store.Update"
	if err := checkScope(op, h, table); err != nil {
		return nil, err
	}

	normalized, err := normalize(patch)
	if err != nil {
		return nil, apperrors.Internal(op, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, r := range m.tables[memKey{h.tenantID, table}] {
		if r.id != id {
			continue
		}
		for k, v := range normalized {
			r.doc[k] = v
		}
		r.updatedAt = time.Now()
		row, err := m.toRow(r)
		if err != nil {
			return nil, err
		}
		return &row, nil
	}
	return nil, apperrors.NotFound(op, "row not found")
}

func (m *Memory) Delete(ctx context.Context, h Handle, table string, id uuid.UUID) error {
	const op = "store.Delete"
	if err := checkScope(op, h, table); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	key := memKey{h.tenantID, table}
	rows := m.tables[key]
	for i, r := range rows {
		if r.id == id {
			m.tables[key] = append(rows[:i:i], rows[i+1:]...)
			return nil
		}
	}
	return apperrors.NotFound(op, "row not found")
}
