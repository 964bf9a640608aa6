package middleware

import (
	"coursegate/internal/config"
	"coursegate/internal/session"
	"coursegate/internal/util"
	"coursegate/pkg/logger"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AuthMiddleware 校验 Bearer 令牌（或 ?token=），为本次请求打开会话。
// 未登录统一返回 401 并携带登录页地址。
func AuthMiddleware(cfg *config.Config, manager *session.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := ""
		authHeader := c.GetHeader("Authorization")
		if authHeader != "" {
			tokenString = strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
		}

		if tokenString == "" {
			tokenString = c.Query("token")
		}

		if tokenString == "" {
			util.UnauthorizedRedirect(c, cfg.Server.LoginPath)
			c.Abort()
			return
		}

		claims, err := util.ParseJWT(tokenString, cfg.JWT.Secret)
		if err != nil {
			logger.Log.Debug("jwt rejected", zap.String("path", c.FullPath()), zap.Error(err))
			util.UnauthorizedRedirect(c, cfg.Server.LoginPath)
			c.Abort()
			return
		}

		c.Set(util.ContextUser, claims)
		session.Attach(c, manager.Open(claims, tokenString))
		c.Next()
	}
}

// UserOrIPKey 限流按用户区分，未登录请求按 IP
func UserOrIPKey(c *gin.Context) string {
	if claims := util.GetUserFromContext(c); claims != nil {
		return "user:" + claims.UserID
	}
	return "ip:" + c.ClientIP()
}
