package service

import (
	"context"
	"coursegate/internal/config"
	"coursegate/internal/model"
	"coursegate/internal/repository"
	"coursegate/internal/session"
	"coursegate/internal/util"
	"coursegate/pkg/logger"
	"fmt"
	"time"

	"go.uber.org/zap"
)

type ProbeFunc func(source string, timeout time.Duration) (*util.VideoInfo, error)

// MediaService 解析章节总时长：播放器上报 > 课程树 > ffprobe 探测
type MediaService struct {
	Cache        *repository.CacheRepository
	ProbeEnabled bool
	ProbeTimeout time.Duration
	Probe        ProbeFunc
}

func NewMediaService(cfg *config.MediaConfig, cache *repository.CacheRepository) *MediaService {
	return &MediaService{
		Cache:        cache,
		ProbeEnabled: cfg.ProbeEnabled,
		ProbeTimeout: time.Duration(cfg.ProbeTimeout) * time.Second,
		Probe:        util.ProbeVideo,
	}
}

func (s *MediaService) ResolveDuration(ctx context.Context, sess *session.Session, chapter *model.Chapter, reported float64) (float64, error) {
	if reported > 0 {
		return reported, nil
	}
	if chapter.Duration != nil && *chapter.Duration > 0 {
		return *chapter.Duration, nil
	}
	if s == nil || !s.ProbeEnabled {
		return 0, util.ErrInvalidDuration
	}
	if d, ok := s.Cache.GetDuration(ctx, chapter.ID); ok && d > 0 {
		return d, nil
	}

	videoURL, err := sess.API.GetChapterURL(ctx, chapter.Slug)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", util.ErrInvalidDuration, err)
	}
	info, err := s.Probe(videoURL, s.ProbeTimeout)
	if err != nil {
		logger.Log.Warn("duration probe failed", zap.String("chapter_id", chapter.ID), zap.Error(err))
		return 0, fmt.Errorf("%w: %v", util.ErrInvalidDuration, err)
	}
	s.Cache.SetDuration(ctx, chapter.ID, info.Duration)
	return info.Duration, nil
}
