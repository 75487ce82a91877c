package repository

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache TTL constants
const (
	ProductCacheTTL     = 5 * time.Minute  // Single product cache
	ProductListCacheTTL = 2 * time.Minute  // Product list cache (shorter due to frequent changes)
	CategoryCacheTTL    = 30 * time.Minute // Categories rarely change
)

// ProductCachePrefix prefixes every product cache key. Inventory uploads and
// admin edits invalidate the whole prefix so catalog reads see fresh data.
const ProductCachePrefix = "products:"

// deleteByPrefix removes every cache key under the given prefix using an
// incremental SCAN so large keyspaces don't block Redis.
func deleteByPrefix(ctx context.Context, rdb *redis.Client, prefix string) error {
	if rdb == nil {
		return nil
	}
	iter := rdb.Scan(ctx, 0, prefix+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
		if len(keys) >= 500 {
			if err := rdb.Del(ctx, keys...).Err(); err != nil {
				return err
			}
			keys = keys[:0]
		}
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) > 0 {
		return rdb.Del(ctx, keys...).Err()
	}
	return nil
}
