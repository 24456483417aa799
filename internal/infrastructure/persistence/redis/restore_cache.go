package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"

	"inkwell-api/pkg/metrics"
)

var cacheTracer = otel.Tracer("redis.cache")

// RestoreCache 版本还原内容缓存
//
// 差异链回放的结果按版本缓存，键按章节分组以便整章失效。
type RestoreCache struct {
	client *Client
	ttl    time.Duration
	group  singleflight.Group
}

// NewRestoreCache 创建还原缓存
func NewRestoreCache(client *Client, ttl time.Duration) *RestoreCache {
	return &RestoreCache{
		client: client,
		ttl:    ttl,
	}
}

func restoreKey(chapterID, versionID int64) string {
	return fmt.Sprintf("restore:chapter:%d:version:%d", chapterID, versionID)
}

// Get 获取已缓存的版本全文，未命中返回 ("", false, nil)
func (c *RestoreCache) Get(ctx context.Context, chapterID, versionID int64) (string, bool, error) {
	ctx, span := cacheTracer.Start(ctx, "cache.RestoreCache.Get",
		trace.WithAttributes(attribute.Int64("version.id", versionID)))
	defer span.End()

	val, err := c.client.rdb.Get(ctx, restoreKey(chapterID, versionID)).Result()
	if err != nil {
		if err == redis.Nil {
			span.SetAttributes(attribute.Bool("cache.hit", false))
			metrics.RestoreCacheHits.WithLabelValues("miss").Inc()
			return "", false, nil
		}
		span.RecordError(err)
		metrics.RestoreCacheHits.WithLabelValues("error").Inc()
		return "", false, err
	}

	span.SetAttributes(attribute.Bool("cache.hit", true))
	metrics.RestoreCacheHits.WithLabelValues("hit").Inc()
	return val, true, nil
}

// GetOrLoad 使用 singleflight 合并同一版本的并发还原
func (c *RestoreCache) GetOrLoad(ctx context.Context, chapterID, versionID int64, loader func() (string, error)) (string, error) {
	ctx, span := cacheTracer.Start(ctx, "cache.RestoreCache.GetOrLoad",
		trace.WithAttributes(attribute.Int64("version.id", versionID)))
	defer span.End()

	key := restoreKey(chapterID, versionID)

	val, hit, err := c.Get(ctx, chapterID, versionID)
	if err == nil && hit {
		return val, nil
	}
	// 缓存故障降级为直接加载

	result, err, shared := c.group.Do(key, func() (interface{}, error) {
		// 再次检查缓存（可能已被其他请求填充）
		if val, err := c.client.rdb.Get(ctx, key).Result(); err == nil {
			return val, nil
		}

		content, err := loader()
		if err != nil {
			return nil, err
		}

		if err := c.client.rdb.Set(ctx, key, content, c.ttl).Err(); err != nil {
			// 缓存写入失败不影响返回结果
			span.RecordError(err)
		}

		return content, nil
	})

	span.SetAttributes(attribute.Bool("cache.shared", shared))

	if err != nil {
		span.RecordError(err)
		return "", err
	}

	return result.(string), nil
}

// Set 写入版本全文缓存
func (c *RestoreCache) Set(ctx context.Context, chapterID, versionID int64, content string) error {
	ctx, span := cacheTracer.Start(ctx, "cache.RestoreCache.Set",
		trace.WithAttributes(attribute.Int64("version.id", versionID)))
	defer span.End()

	if err := c.client.rdb.Set(ctx, restoreKey(chapterID, versionID), content, c.ttl).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to set restore cache: %w", err)
	}
	return nil
}

// InvalidateChapter 使章节的全部还原缓存失效
//
// 修剪自动保存后差异链发生变化，必须整章失效。
func (c *RestoreCache) InvalidateChapter(ctx context.Context, chapterID int64) error {
	ctx, span := cacheTracer.Start(ctx, "cache.RestoreCache.InvalidateChapter",
		trace.WithAttributes(attribute.Int64("chapter.id", chapterID)))
	defer span.End()

	pattern := fmt.Sprintf("restore:chapter:%d:version:*", chapterID)
	iter := c.client.rdb.Scan(ctx, 0, pattern, 0).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}

	if err := iter.Err(); err != nil {
		span.RecordError(err)
		return err
	}

	if len(keys) > 0 {
		span.SetAttributes(attribute.Int("cache.invalidated_count", len(keys)))
		return c.client.rdb.Del(ctx, keys...).Err()
	}

	return nil
}
