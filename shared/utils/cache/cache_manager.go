package cache

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"taskhive-backend/shared/config"
)

// CacheManager wraps the Redis client used for membership role lookups.
type CacheManager struct {
	client *redis.Client
	ctx    context.Context
}

var (
	globalCacheManager *CacheManager

	// RoleTTL bounds how stale a cached role may be.
	RoleTTL = 15 * time.Minute
)

// noMember is the cached sentinel for "user is not a member".
const noMember = "__none__"

// InitCacheManager initializes the global cache manager
func InitCacheManager() error {
	cfg := config.GetConfig()

	redisDB, err := strconv.Atoi(cfg.RedisDB)
	if err != nil {
		log.Printf("❌ Invalid Redis DB number: %s, using default 0", cfg.RedisDB)
		redisDB = 0
	}

	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.RedisHost, cfg.RedisPort),
		Password: cfg.RedisPassword,
		DB:       redisDB,
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to connect to Redis: %v", err)
	}

	globalCacheManager = &CacheManager{
		client: client,
		ctx:    ctx,
	}

	log.Printf("✅ Redis Cache Manager initialized successfully - %s:%s DB:%d",
		cfg.RedisHost, cfg.RedisPort, redisDB)

	return nil
}

// GetCacheManager returns the global cache manager instance, or nil when Redis
// is unavailable. Callers degrade to plain database reads on nil.
func GetCacheManager() *CacheManager {
	return globalCacheManager
}

// OrgRoleKey generates a cache key for an organization membership role
func OrgRoleKey(organizationID, userID string) string {
	return fmt.Sprintf("role:org:%s:user:%s", organizationID, userID)
}

// ProjectRoleKey generates a cache key for a project membership role
func ProjectRoleKey(projectID, userID string) string {
	return fmt.Sprintf("role:project:%s:user:%s", projectID, userID)
}

// GetRole returns the cached role for key. The second result is false on a
// cache miss; an empty role with a true result means "cached non-member".
func (cm *CacheManager) GetRole(key string) (string, bool) {
	if cm == nil || cm.client == nil {
		return "", false
	}

	value, err := cm.client.Get(cm.ctx, key).Result()
	if err != nil {
		return "", false
	}
	if value == noMember {
		return "", true
	}
	return value, true
}

// SetRole caches role for key. An empty role caches the non-member sentinel.
func (cm *CacheManager) SetRole(key, role string) error {
	if cm == nil || cm.client == nil {
		return fmt.Errorf("cache manager not initialized")
	}

	value := role
	if value == "" {
		value = noMember
	}
	return cm.client.Set(cm.ctx, key, value, RoleTTL).Err()
}

// InvalidateRoles removes cached role entries after a membership mutation.
func (cm *CacheManager) InvalidateRoles(keys ...string) {
	if cm == nil || cm.client == nil || len(keys) == 0 {
		return
	}

	if err := cm.client.Del(cm.ctx, keys...).Err(); err != nil {
		log.Printf("❌ Failed to invalidate role cache: %v", err)
	}
}

// Close shuts down the Redis connection
func (cm *CacheManager) Close() error {
	if cm == nil || cm.client == nil {
		return nil
	}
	return cm.client.Close()
}
