package service

import (
	"context"
	"coursegate/internal/config"
	"coursegate/internal/model"
	"coursegate/internal/util"
	"coursegate/pkg/logger"
	"fmt"
	"net/url"
	"path"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"
)

// StorageProvider 章节附件（PDF/音频）的访问链接
type StorageProvider interface {
	URL(ctx context.Context, key string, ttl time.Duration) (string, error)
}

// LocalStorageProvider 本地目录，由 gin 静态路由提供
type LocalStorageProvider struct {
	Config *config.StorageConfig
}

func (p *LocalStorageProvider) URL(ctx context.Context, key string, ttl time.Duration) (string, error) {
	if key == "" {
		return "", fmt.Errorf("empty attachment key")
	}
	// 以 / 为根做 Clean，.. 无法越出上传目录
	return "/uploads" + path.Clean("/"+key), nil
}

// MinioStorageProvider 生成预签名 GET 链接
type MinioStorageProvider struct {
	Config *config.StorageConfig
	Client *minio.Client
}

func NewMinioStorageProvider(cfg *config.StorageConfig) (*MinioStorageProvider, error) {
	client, err := minio.New(cfg.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioAccessID, cfg.MinioSecret, ""),
		Secure: cfg.MinioSecure,
	})
	if err != nil {
		return nil, err
	}
	return &MinioStorageProvider{Config: cfg, Client: client}, nil
}

func (p *MinioStorageProvider) URL(ctx context.Context, key string, ttl time.Duration) (string, error) {
	params := url.Values{}
	params.Set("response-content-disposition", "inline; filename=\""+path.Base(key)+"\"")
	u, err := p.Client.PresignedGetObject(ctx, p.Config.MinioBucket, key, ttl, params)
	if err != nil {
		return "", err
	}
	return u.String(), nil
}

type AttachmentLink struct {
	Kind  model.AttachmentKind `json:"kind"`
	Title string               `json:"title"`
	URL   string               `json:"url"`
}

// StorageService 存储服务
type StorageService struct {
	Provider StorageProvider
	TTL      time.Duration
}

func NewStorageService(cfg *config.Config) *StorageService {
	var provider StorageProvider
	if cfg.Storage.Type == util.StorageMinio {
		p, err := NewMinioStorageProvider(&cfg.Storage)
		if err != nil {
			logger.Log.Error("Failed to init minio, falling back to local storage", zap.Error(err))
		} else {
			provider = p
		}
	}
	if provider == nil {
		provider = &LocalStorageProvider{Config: &cfg.Storage}
	}

	ttl := time.Duration(cfg.Storage.PresignMinutes) * time.Minute
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &StorageService{Provider: provider, TTL: ttl}
}

// AttachmentLinks 只在章节可访问后调用；单个附件失败时跳过并记录日志
func (s *StorageService) AttachmentLinks(ctx context.Context, chapter *model.Chapter) []AttachmentLink {
	if s == nil || len(chapter.Attachments) == 0 {
		return nil
	}
	links := make([]AttachmentLink, 0, len(chapter.Attachments))
	for _, a := range chapter.Attachments {
		u, err := s.Provider.URL(ctx, a.Key, s.TTL)
		if err != nil {
			logger.Log.Warn("attachment url failed",
				zap.String("chapter_id", chapter.ID),
				zap.String("key", a.Key),
				zap.Error(err))
			continue
		}
		links = append(links, AttachmentLink{Kind: a.Kind, Title: a.Title, URL: u})
	}
	return links
}
