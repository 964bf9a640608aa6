// Package session 管理一次请求内的用户会话：由认证中间件创建，
// 持有绑定了用户令牌的后端客户端，登出时销毁并清理该用户的缓存。
package session

import (
	"context"
	"coursegate/internal/backend"
	"coursegate/internal/repository"
	"coursegate/internal/util"
	"coursegate/pkg/logger"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Session struct {
	ID        string
	UserID    string
	Role      string
	Token     string
	API       backend.API
	StartedAt time.Time
}

type Manager struct {
	Client *backend.Client
	Cache  *repository.CacheRepository
}

func NewManager(client *backend.Client, cache *repository.CacheRepository) *Manager {
	return &Manager{Client: client, Cache: cache}
}

// Open 令牌校验通过后创建会话
func (m *Manager) Open(claims *util.Claims, token string) *Session {
	return &Session{
		ID:        uuid.New().String(),
		UserID:    claims.UserID,
		Role:      claims.Role,
		Token:     token,
		API:       m.Client.WithToken(token),
		StartedAt: time.Now(),
	}
}

// Close 登出：清理该用户的全部缓存视图
func (m *Manager) Close(ctx context.Context, s *Session) error {
	if s == nil {
		return nil
	}
	if err := m.Cache.PurgeUser(ctx, s.UserID); err != nil {
		return err
	}
	logger.Log.Info("session closed",
		zap.String("session_id", s.ID),
		zap.String("user_id", s.UserID),
		zap.Duration("age", time.Since(s.StartedAt)))
	return nil
}

func Attach(c *gin.Context, s *Session) {
	c.Set(util.ContextSession, s)
}

func FromContext(c *gin.Context) *Session {
	v, ok := c.Get(util.ContextSession)
	if !ok {
		return nil
	}
	s, _ := v.(*Session)
	return s
}
