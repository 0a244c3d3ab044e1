package caching

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"sstcore/internal/models"
)

// Memory is a process-local CacheService with the same key layout and miss
// semantics as the Redis implementation. It backs tests and single-node
// deployments that run without Redis.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]memEntry
}

type memEntry struct {
	data      []byte
	expiresAt time.Time
}

func NewMemory() *Memory {
	return &Memory{entries: make(map[string]memEntry)}
}

func (m *Memory) get(key string) ([]byte, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	entry, ok := m.entries[key]
	if !ok {
		return nil, false
	}
	if !entry.expiresAt.IsZero() && time.Now().After(entry.expiresAt) {
		return nil, false
	}
	return entry.data, true
}

func (m *Memory) set(key string, data []byte, ttl time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry := memEntry{data: data}
	if ttl > 0 {
		entry.expiresAt = time.Now().Add(ttl)
	}
	m.entries[key] = entry
}

func (m *Memory) GetClients(ctx context.Context, tenantID uuid.UUID) ([]models.Client, error) {
	data, ok := m.get(clientsKey(tenantID))
	if !ok {
		return nil, nil
	}
	var clients []models.Client
	if err := unmarshal(data, &clients); err != nil {
		return nil, err
	}
	return clients, nil
}

func (m *Memory) SetClients(ctx context.Context, tenantID uuid.UUID, clients []models.Client, ttl time.Duration) error {
	data, err := marshal(clients)
	if err != nil {
		return err
	}
	m.set(clientsKey(tenantID), data, ttl)
	return nil
}

func (m *Memory) GetFormats(ctx context.Context, tenantID, clientID uuid.UUID) ([]models.Format, error) {
	data, ok := m.get(formatsKey(tenantID, clientID))
	if !ok {
		return nil, nil
	}
	var formats []models.Format
	if err := unmarshal(data, &formats); err != nil {
		return nil, err
	}
	return formats, nil
}

func (m *Memory) SetFormats(ctx context.Context, tenantID, clientID uuid.UUID, formats []models.Format, ttl time.Duration) error {
	data, err := marshal(formats)
	if err != nil {
		return err
	}
	m.set(formatsKey(tenantID, clientID), data, ttl)
	return nil
}

func (m *Memory) GetProfile(ctx context.Context, tenantID uuid.UUID, email string) (*models.Profile, error) {
	data, ok := m.get(profileKey(tenantID, email))
	if !ok {
		return nil, nil
	}
	var profile models.Profile
	if err := unmarshal(data, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

func (m *Memory) SetProfile(ctx context.Context, tenantID uuid.UUID, profile *models.Profile, ttl time.Duration) error {
	data, err := marshal(profile)
	if err != nil {
		return err
	}
	m.set(profileKey(tenantID, profile.Email), data, ttl)
	return nil
}

func (m *Memory) GetReport(ctx context.Context, tenantID uuid.UUID, name string) ([]byte, error) {
	data, ok := m.get(reportKey(tenantID, name))
	if !ok {
		return nil, nil
	}
	return data, nil
}

func (m *Memory) SetReport(ctx context.Context, tenantID uuid.UUID, name string, data []byte, ttl time.Duration) error {
	m.set(reportKey(tenantID, name), data, ttl)
	return nil
}

func (m *Memory) InvalidateTenant(ctx context.Context, tenantID uuid.UUID) error {
	marker := ":" + tenantID.String() + ":"
	m.mu.Lock()
	defer m.mu.Unlock()
	for key := range m.entries {
		if strings.Contains(key, marker) {
			delete(m.entries, key)
		}
	}
	return nil
}

func (m *Memory) InvalidateAll(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = make(map[string]memEntry)
	return nil
}
