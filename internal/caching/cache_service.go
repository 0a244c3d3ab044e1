// Package caching is the read-through parameter cache over slow-changing
// reference data: client lists, format catalogs and user profiles. A miss
// returns (nil, nil); callers fall through to the store and repopulate.
// Invalidation is wholesale per tenant, never per key.
package caching

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"sstcore/internal/models"
)

type CacheService interface {
	// Client catalog caching
	GetClients(ctx context.Context, tenantID uuid.UUID) ([]models.Client, error)
	SetClients(ctx context.Context, tenantID uuid.UUID, clients []models.Client, ttl time.Duration) error

	// Format catalog caching, per owning client
	GetFormats(ctx context.Context, tenantID, clientID uuid.UUID) ([]models.Format, error)
	SetFormats(ctx context.Context, tenantID, clientID uuid.UUID, formats []models.Format, ttl time.Duration) error

	// Active user profile caching
	GetProfile(ctx context.Context, tenantID uuid.UUID, email string) (*models.Profile, error)
	SetProfile(ctx context.Context, tenantID uuid.UUID, profile *models.Profile, ttl time.Duration) error

	// Precomputed report caching
	GetReport(ctx context.Context, tenantID uuid.UUID, name string) ([]byte, error)
	SetReport(ctx context.Context, tenantID uuid.UUID, name string, data []byte, ttl time.Duration) error

	// Cache invalidation: clears every entry for the tenant unconditionally.
	InvalidateTenant(ctx context.Context, tenantID uuid.UUID) error
	InvalidateAll(ctx context.Context) error
}

// Key layout: sst:<kind>:<tenant>:<rest>. InvalidateTenant depends on the
// tenant id sitting in the third segment.
func clientsKey(tenantID uuid.UUID) string {
	return fmt.Sprintf("sst:clients:%s:all", tenantID.String())
}

func formatsKey(tenantID, clientID uuid.UUID) string {
	return fmt.Sprintf("sst:formats:%s:%s", tenantID.String(), clientID.String())
}

func profileKey(tenantID uuid.UUID, email string) string {
	return fmt.Sprintf("sst:profile:%s:%s", tenantID.String(), email)
}

func reportKey(tenantID uuid.UUID, name string) string {
	return fmt.Sprintf("sst:report:%s:%s", tenantID.String(), name)
}

func marshal(v any) ([]byte, error)      { return json.Marshal(v) }
func unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }

type redisCacheService struct {
	client *redis.Client
	logger zerolog.Logger
}

func NewRedisCacheService(addr, password string, db int, logger zerolog.Logger) CacheService {
	parsedAddr := addr
	if strings.HasPrefix(addr, "redis://") || strings.HasPrefix(addr, "rediss://") {
		if hostPort := strings.TrimPrefix(strings.TrimPrefix(addr, "redis://"), "rediss://"); hostPort != addr {
			parsedAddr = hostPort
		}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     parsedAddr,
		Password: password,
		DB:       db,
	})

	log := logger.With().Str("component", "caching").Logger()
	if pingErr := client.Ping(context.Background()).Err(); pingErr != nil {
		log.Warn().Err(pingErr).Str("addr", parsedAddr).Msg("redis ping failed on initialization")
	}

	return &redisCacheService{client: client, logger: log}
}

func (r *redisCacheService) getJSON(ctx context.Context, key string, v any) (bool, error) {
	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return false, nil // cache miss
		}
		return false, err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, err
	}
	return true, nil
}

func (r *redisCacheService) setJSON(ctx context.Context, key string, v any, ttl time.Duration) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, key, data, ttl).Err()
}

func (r *redisCacheService) GetClients(ctx context.Context, tenantID uuid.UUID) ([]models.Client, error) {
	key := clientsKey(tenantID)
	var clients []models.Client
	hit, err := r.getJSON(ctx, key, &clients)
	if err != nil || !hit {
		return nil, err
	}
	return clients, nil
}

func (r *redisCacheService) SetClients(ctx context.Context, tenantID uuid.UUID, clients []models.Client, ttl time.Duration) error {
	key := clientsKey(tenantID)
	return r.setJSON(ctx, key, clients, ttl)
}

func (r *redisCacheService) GetFormats(ctx context.Context, tenantID, clientID uuid.UUID) ([]models.Format, error) {
	key := formatsKey(tenantID, clientID)
	var formats []models.Format
	hit, err := r.getJSON(ctx, key, &formats)
	if err != nil || !hit {
		return nil, err
	}
	return formats, nil
}

func (r *redisCacheService) SetFormats(ctx context.Context, tenantID, clientID uuid.UUID, formats []models.Format, ttl time.Duration) error {
	key := formatsKey(tenantID, clientID)
	return r.setJSON(ctx, key, formats, ttl)
}

func (r *redisCacheService) GetProfile(ctx context.Context, tenantID uuid.UUID, email string) (*models.Profile, error) {
	key := profileKey(tenantID, email)
	var profile models.Profile
	hit, err := r.getJSON(ctx, key, &profile)
	if err != nil || !hit {
		return nil, err
	}
	return &profile, nil
}

func (r *redisCacheService) SetProfile(ctx context.Context, tenantID uuid.UUID, profile *models.Profile, ttl time.Duration) error {
	key := profileKey(tenantID, profile.Email)
	return r.setJSON(ctx, key, profile, ttl)
}

func (r *redisCacheService) GetReport(ctx context.Context, tenantID uuid.UUID, name string) ([]byte, error) {
	key := reportKey(tenantID, name)
	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil // cache miss
		}
		return nil, err
	}
	return data, nil
}

func (r *redisCacheService) SetReport(ctx context.Context, tenantID uuid.UUID, name string, data []byte, ttl time.Duration) error {
	key := reportKey(tenantID, name)
	return r.client.Set(ctx, key, data, ttl).Err()
}

func (r *redisCacheService) InvalidateTenant(ctx context.Context, tenantID uuid.UUID) error {
	pattern := fmt.Sprintf("sst:*:%s:*", tenantID.String())
	keys, err := r.client.Keys(ctx, pattern).Result()
	if err != nil {
		return err
	}

	if len(keys) > 0 {
		r.logger.Debug().Str("tenant", tenantID.String()).Int("keys", len(keys)).Msg("invalidating tenant cache")
		return r.client.Del(ctx, keys...).Err()
	}
	return nil
}

func (r *redisCacheService) InvalidateAll(ctx context.Context) error {
	keys, err := r.client.Keys(ctx, "sst:*").Result()
	if err != nil {
		return err
	}

	if len(keys) > 0 {
		return r.client.Del(ctx, keys...).Err()
	}
	return nil
}
