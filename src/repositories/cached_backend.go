package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"time"

	"entitycore/src/domain/model"
)

// Cache is the subset of the redis client used for row caching.
type Cache interface {
	GetKey(ctx context.Context, key string) (string, bool, error)
	SetKey(ctx context.Context, key string, value string) error
	InvalidateKeys(ctx context.Context, keys []string) error
}

// RowStore is a backend able to find rows by key.
type RowStore interface {
	model.Backend
	model.Finder
}

// CachedBackend serves FindByKey from the cache when possible and drops the
// cached row after every successful update or delete. Cache failures are
// logged and never fail the call.
type CachedBackend struct {
	logger  *slog.Logger
	backend RowStore
	cache   Cache
}

func NewCachedBackend(logger *slog.Logger, backend RowStore, cache Cache) *CachedBackend {
	return &CachedBackend{
		logger:  logger,
		backend: backend,
		cache:   cache,
	}
}

func (r *CachedBackend) Insert(ctx context.Context, table string, attrs *model.Attributes) error {
	return r.backend.Insert(ctx, table, attrs)
}

func (r *CachedBackend) InsertAndReturnID(ctx context.Context, table string, primaryKey string, attrs *model.Attributes) (any, error) {
	return r.backend.InsertAndReturnID(ctx, table, primaryKey, attrs)
}

func (r *CachedBackend) Update(ctx context.Context, table string, key string, value any, attrs *model.Attributes) error {
	if err := r.backend.Update(ctx, table, key, value, attrs); err != nil {
		return err
	}

	r.invalidate(ctx, table, value)
	return nil
}

func (r *CachedBackend) Delete(ctx context.Context, table string, key string, value any) error {
	if err := r.backend.Delete(ctx, table, key, value); err != nil {
		return err
	}

	r.invalidate(ctx, table, value)
	return nil
}

func (r *CachedBackend) FindByKey(ctx context.Context, table string, key string, value any) (*model.Attributes, error) {
	cacheKey := RowCacheKey(table, value)

	cached, found, err := r.cache.GetKey(ctx, cacheKey)
	if err != nil {
		r.logger.Warn("Cache error", "key", cacheKey, "error", err)
	}
	if found && err == nil {
		attrs := model.NewAttributes()
		if err := json.Unmarshal([]byte(cached), attrs); err == nil {
			r.logger.Debug("Cache HIT", "key", cacheKey)
			return restoreIntegers(attrs), nil
		}
		r.logger.Warn("Discarding unreadable cache entry", "key", cacheKey)
	}

	r.logger.Debug("Cache MISS", "key", cacheKey)

	attrs, err := r.backend.FindByKey(ctx, table, key, value)
	if err != nil {
		return nil, err
	}

	r.store(ctx, cacheKey, attrs)
	return attrs, nil
}

func (r *CachedBackend) store(ctx context.Context, cacheKey string, attrs *model.Attributes) {
	data, err := json.Marshal(attrs)
	if err != nil {
		r.logger.Warn("Failed to marshal cache data", "key", cacheKey, "error", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()

	if err := r.cache.SetKey(ctx, cacheKey, string(data)); err != nil {
		r.logger.Warn("Failed to set cache", "key", cacheKey, "error", err)
	}
}

func (r *CachedBackend) invalidate(ctx context.Context, table string, value any) {
	cacheKey := RowCacheKey(table, value)

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()

	if err := r.cache.InvalidateKeys(ctx, []string{cacheKey}); err != nil {
		r.logger.Warn("Failed to invalidate cache", "key", cacheKey, "error", err)
	}
}

// RowCacheKey is the cache key of the row of table whose primary key is value.
func RowCacheKey(table string, value any) string {
	return fmt.Sprintf("entity:%s:%v", table, value)
}

// restoreIntegers turns whole top level JSON numbers back into int64, the type
// drivers return for integer columns, so cached rows compare like fresh ones.
func restoreIntegers(attrs *model.Attributes) *model.Attributes {
	attrs.Each(func(name string, value any) {
		if number, ok := value.(float64); ok && number == math.Trunc(number) && math.Abs(number) < 1<<53 {
			attrs.Set(name, int64(number))
		}
	})
	return attrs
}
