package app

import (
	"coursegate/docs"
	"coursegate/internal/config"
	"coursegate/internal/middleware"
	"coursegate/pkg/monitoring"
	"coursegate/pkg/security"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	window := time.Duration(cfg.RateLimit.WindowMinutes) * time.Minute

	// 1. 公共路由(无需登录)
	public := router.Group("/api")
	public.Use(security.RateLimiter(cfg.RateLimit.MaxRequests, window))
	{
		public.GET("/health", c.health.HealthCheck)
	}

	// 2. 需要登录的路由，按用户限流
	authGroup := router.Group("/api")
	authGroup.Use(
		middleware.AuthMiddleware(cfg, a.sessions),
		security.RateLimiterBy(cfg.RateLimit.MaxRequests, window, middleware.UserOrIPKey),
	)
	{
		a.registerCourseRoutes(authGroup, c)
		a.registerPlayerRoutes(authGroup, c)

		authGroup.POST("/session/logout", c.session.Logout)
	}
}

func (a *App) registerCourseRoutes(group *gin.RouterGroup, c *controllers) {
	courses := group.Group("/courses/:slug")
	{
		courses.GET("", c.course.GetCourse)
		courses.POST("/enroll", c.course.Enroll)
		courses.POST("/refresh", c.course.Refresh)
		courses.GET("/progress", c.course.GetProgress)
		courses.GET("/chapters/:chapterSlug", c.course.GetChapter)
		courses.GET("/chapters/:chapterSlug/navigation", c.course.GetNavigation)
	}
}

func (a *App) registerPlayerRoutes(group *gin.RouterGroup, c *controllers) {
	player := group.Group("/player")
	{
		player.POST("/progress", c.player.ReportProgress)
		player.POST("/ended", c.player.Ended)
	}
}
