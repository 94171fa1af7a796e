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

	"movie-recommend-api/pkg/metrics"
)

var cacheTracer = otel.Tracer("redis.cache")

// ResultCache 推荐结果缓存。
// 缓存键编入语料代号，重建后旧代缓存自然失效，无需扫描删除。
type ResultCache struct {
	client *Client
	group  singleflight.Group
}

// NewResultCache 创建结果缓存
func NewResultCache(client *Client) *ResultCache {
	return &ResultCache{client: client}
}

// RecommendKey 推荐结果缓存键
func RecommendKey(generation uint64, strategy string, movieID, k int) string {
	return fmt.Sprintf("rec:%d:%s:%d:%d", generation, strategy, movieID, k)
}

// SectionsKey 详情页推荐栏目缓存键
func SectionsKey(generation uint64, movieID, k int) string {
	return fmt.Sprintf("sections:%d:%d:%d", generation, movieID, k)
}

// GetOrLoad Read-Through 取缓存，未命中时经 singleflight 合并回源。
// loader 返回已序列化的载荷；缓存故障降级为直接回源。
func (c *ResultCache) GetOrLoad(ctx context.Context, key string, ttl time.Duration, loader func() ([]byte, error)) ([]byte, error) {
	ctx, span := cacheTracer.Start(ctx, "cache.GetOrLoad",
		trace.WithAttributes(attribute.String("cache.key", key)))
	defer span.End()

	val, err := c.client.rdb.Get(ctx, key).Bytes()
	if err == nil {
		span.SetAttributes(attribute.Bool("cache.hit", true))
		metrics.CacheRequestsTotal.WithLabelValues("hit").Inc()
		return val, nil
	}
	if err != redis.Nil {
		span.RecordError(err)
		metrics.CacheRequestsTotal.WithLabelValues("error").Inc()
		return loader()
	}

	span.SetAttributes(attribute.Bool("cache.hit", false))
	metrics.CacheRequestsTotal.WithLabelValues("miss").Inc()

	result, err, shared := c.group.Do(key, func() (interface{}, error) {
		// 可能已被并发请求填充，再查一次
		if val, err := c.client.rdb.Get(ctx, key).Bytes(); err == nil {
			return val, nil
		}

		payload, err := loader()
		if err != nil {
			return nil, err
		}
		if err := c.client.rdb.Set(ctx, key, payload, ttl).Err(); err != nil {
			// 缓存写入失败不影响返回结果
			span.RecordError(err)
		}
		return payload, nil
	})
	span.SetAttributes(attribute.Bool("cache.shared", shared))
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return result.([]byte), nil
}
