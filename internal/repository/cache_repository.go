package repository

import (
	"context"
	"coursegate/internal/model"
	"coursegate/pkg/logger"
	"coursegate/pkg/monitoring"
	"encoding/json"
	"errors"
	"sync/atomic"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const cacheKeyPrefix = "coursegate:"

// CacheRepository 后端数据的读穿缓存。所有条目使用同一个过期阈值 staleAfter，
// 超过即视为陈旧，由调用方重新向后端读取。staleAfter 为 0 时关闭缓存。
type CacheRepository struct {
	Redis      *redis.Client
	staleAfter atomic.Int64
}

func NewCacheRepository(rdb *redis.Client, staleAfter time.Duration) *CacheRepository {
	r := &CacheRepository{Redis: rdb}
	r.SetStaleAfter(staleAfter)
	return r
}

// SetStaleAfter 配置热更新时调用
func (r *CacheRepository) SetStaleAfter(d time.Duration) {
	r.staleAfter.Store(int64(d))
}

func (r *CacheRepository) StaleAfter() time.Duration {
	return time.Duration(r.staleAfter.Load())
}

func (r *CacheRepository) enabled() bool {
	return r != nil && r.Redis != nil && r.StaleAfter() > 0
}

func courseKey(slug string) string {
	return cacheKeyPrefix + "course:" + slug
}

func grantsKey(userID, courseID string) string {
	return cacheKeyPrefix + "grants:" + userID + ":" + courseID
}

func progressKey(userID, courseID string) string {
	return cacheKeyPrefix + "progress:" + userID + ":" + courseID
}

func userIndexKey(userID string) string {
	return cacheKeyPrefix + "user:" + userID
}

func (r *CacheRepository) get(ctx context.Context, kind, key string, dst interface{}) bool {
	if !r.enabled() {
		return false
	}
	val, err := r.Redis.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		monitoring.CacheLookups.WithLabelValues(kind, "miss").Inc()
		return false
	}
	if err != nil {
		monitoring.CacheLookups.WithLabelValues(kind, "error").Inc()
		logger.Log.Warn("cache read failed", zap.String("key", key), zap.Error(err))
		return false
	}
	if err := json.Unmarshal(val, dst); err != nil {
		monitoring.CacheLookups.WithLabelValues(kind, "error").Inc()
		logger.Log.Warn("cache entry corrupted", zap.String("key", key), zap.Error(err))
		r.Redis.Del(ctx, key)
		return false
	}
	monitoring.CacheLookups.WithLabelValues(kind, "hit").Inc()
	return true
}

func (r *CacheRepository) set(ctx context.Context, userID, key string, value interface{}) {
	if !r.enabled() {
		return
	}
	payload, err := json.Marshal(value)
	if err != nil {
		logger.Log.Warn("cache encode failed", zap.String("key", key), zap.Error(err))
		return
	}
	ttl := r.StaleAfter()
	pipe := r.Redis.TxPipeline()
	pipe.Set(ctx, key, payload, ttl)
	if userID != "" {
		idx := userIndexKey(userID)
		pipe.SAdd(ctx, idx, key)
		pipe.Expire(ctx, idx, 24*time.Hour)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		logger.Log.Warn("cache write failed", zap.String("key", key), zap.Error(err))
	}
}

func (r *CacheRepository) del(ctx context.Context, keys ...string) {
	if r == nil || r.Redis == nil {
		return
	}
	if err := r.Redis.Del(ctx, keys...).Err(); err != nil {
		logger.Log.Warn("cache invalidation failed", zap.Strings("keys", keys), zap.Error(err))
	}
}

func (r *CacheRepository) GetCourse(ctx context.Context, slug string) (*model.Course, bool) {
	var course model.Course
	if !r.get(ctx, "course", courseKey(slug), &course) {
		return nil, false
	}
	return &course, true
}

func (r *CacheRepository) SetCourse(ctx context.Context, course *model.Course) {
	r.set(ctx, "", courseKey(course.Slug), course)
}

func (r *CacheRepository) GetGrants(ctx context.Context, userID, courseID string) (*model.ViewerGrants, bool) {
	var grants model.ViewerGrants
	if !r.get(ctx, "grants", grantsKey(userID, courseID), &grants) {
		return nil, false
	}
	return &grants, true
}

func (r *CacheRepository) SetGrants(ctx context.Context, userID, courseID string, grants *model.ViewerGrants) {
	r.set(ctx, userID, grantsKey(userID, courseID), grants)
}

func (r *CacheRepository) InvalidateGrants(ctx context.Context, userID, courseID string) {
	r.del(ctx, grantsKey(userID, courseID))
}

func (r *CacheRepository) GetCourseProgress(ctx context.Context, userID, courseID string) (*model.CourseProgress, bool) {
	var p model.CourseProgress
	if !r.get(ctx, "progress", progressKey(userID, courseID), &p) {
		return nil, false
	}
	return &p, true
}

func (r *CacheRepository) SetCourseProgress(ctx context.Context, userID, courseID string, p *model.CourseProgress) {
	r.set(ctx, userID, progressKey(userID, courseID), p)
}

func (r *CacheRepository) InvalidateCourseProgress(ctx context.Context, userID, courseID string) {
	r.del(ctx, progressKey(userID, courseID))
}

// PurgeUser 登出时清理该用户的全部缓存条目
func (r *CacheRepository) PurgeUser(ctx context.Context, userID string) error {
	if r == nil || r.Redis == nil {
		return nil
	}
	idx := userIndexKey(userID)
	keys, err := r.Redis.SMembers(ctx, idx).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return err
	}
	keys = append(keys, idx)
	return r.Redis.Del(ctx, keys...).Err()
}

func durationKey(chapterID string) string {
	return cacheKeyPrefix + "duration:" + chapterID
}

// GetDuration ffprobe 得到的章节时长（秒）
func (r *CacheRepository) GetDuration(ctx context.Context, chapterID string) (float64, bool) {
	var d float64
	if !r.get(ctx, "duration", durationKey(chapterID), &d) {
		return 0, false
	}
	return d, true
}

func (r *CacheRepository) SetDuration(ctx context.Context, chapterID string, seconds float64) {
	r.set(ctx, "", durationKey(chapterID), seconds)
}
