package app

import (
	"context"
	"coursegate/internal/backend"
	"coursegate/internal/config"
	"coursegate/internal/controller"
	"coursegate/internal/repository"
	"coursegate/internal/service"
	"coursegate/internal/session"
	"coursegate/internal/util"
	"coursegate/pkg/configwatcher"
	"coursegate/pkg/database"
	"coursegate/pkg/logger"
	"coursegate/pkg/monitoring"
	"coursegate/pkg/security"
	"coursegate/pkg/tracing"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config    *config.Config
	ConfigDir string
	Router    *gin.Engine
	DB        *gorm.DB
	Redis     *redis.Client
	services  *services
	sessions  *session.Manager
	tracer    *sdktrace.TracerProvider

	mu              sync.Mutex
	configCallbacks []func(*config.Config)
}

type repositories struct {
	playback    *repository.PlaybackRepository
	completions *repository.CompletionRepository
	cache       *repository.CacheRepository
}

type services struct {
	storage *service.StorageService
	media   *service.MediaService
	course  *service.CourseService
	player  *service.PlayerService
	tracker *service.ProgressTracker
}

type controllers struct {
	course  *controller.CourseController
	player  *controller.PlayerController
	session *controller.SessionController
	health  *controller.HealthController
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.configCallbacks = append(a.configCallbacks, callback)
}

// applyConfig 热更新：只有登记过回调的配置项会在运行时生效
func (a *App) applyConfig(cfg *config.Config) {
	a.mu.Lock()
	callbacks := append([]func(*config.Config){}, a.configCallbacks...)
	a.mu.Unlock()
	for _, cb := range callbacks {
		cb(cfg)
	}
}

func (a *App) initRepositories(db *gorm.DB, rdb *redis.Client, cfg *config.Config) *repositories {
	return &repositories{
		playback:    repository.NewPlaybackRepository(db),
		completions: repository.NewCompletionRepository(db),
		cache:       repository.NewCacheRepository(rdb, cfg.Cache.StaleAfter()),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config) *services {
	s := &services{}

	s.storage = service.NewStorageService(cfg)
	s.media = service.NewMediaService(&cfg.Media, repos.cache)
	s.course = service.NewCourseService(repos.cache, repos.playback)
	s.player = service.NewPlayerService(s.course, s.storage)
	s.tracker = service.NewProgressTracker(s.course, s.player, s.media, repos.playback, repos.completions, cfg)

	a.RegisterConfigCallback(func(c *config.Config) {
		s.tracker.SetThresholds(c.Gating)
	})
	a.RegisterConfigCallback(func(c *config.Config) {
		repos.cache.SetStaleAfter(c.Cache.StaleAfter())
	})

	return s
}

func (a *App) initControllers(s *services, cfg *config.Config) *controllers {
	loginPath := cfg.Server.LoginPath
	return &controllers{
		course:  controller.NewCourseController(s.course, s.player, loginPath),
		player:  controller.NewPlayerController(s.tracker, loginPath),
		session: controller.NewSessionController(a.sessions, loginPath),
		health:  controller.NewHealthController(a.DB, a.Redis),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())

	// 分布式追踪中间件
	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

func NewApp(cfg *config.Config, configDir string) *App {
	logger.InitLogger(cfg)
	logger.Log.Info("Logger initialized successfully")

	db, err := database.InitDB(&cfg.Database, cfg.Server.Mode)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
	}

	if err := database.Migrate(db); err != nil {
		logger.Log.Fatal("Failed to migrate database", zap.Error(err))
	}
	logger.Log.Info("Database migration completed")

	app := &App{
		Config:    cfg,
		ConfigDir: configDir,
		DB:        db,
	}
	if cfg.MigrateOnly {
		return app
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		// 缓存只是加速层，redis 不可用时直接回源
		logger.Log.Warn("Redis unavailable, cache disabled", zap.Error(err))
	}
	app.Redis = rdb

	repos := app.initRepositories(db, rdb, cfg)
	app.sessions = session.NewManager(backend.NewClient(cfg.Backend), repos.cache)
	services := app.initServices(repos, cfg)
	app.services = services
	controllers := app.initControllers(services, cfg)

	// 监控初始化
	monitoring.Init()

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	app.Router = router

	app.setupMiddlewares(router, cfg)

	if cfg.Tracing.Enabled {
		tp, err := tracing.InitTracer(cfg.Tracing)
		if err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
		app.tracer = tp
	}

	app.registerRoutes(router, controllers, cfg)

	if cfg.Storage.Type == util.StorageLocal {
		router.Static("/uploads", cfg.Storage.LocalPath)
	}

	return app
}

func (a *App) Run() {
	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	if a.ConfigDir != "" {
		if err := configwatcher.Watch(ctx, a.ConfigDir, a.applyConfig); err != nil {
			logger.Log.Warn("Config hot reload disabled", zap.Error(err))
		}
	}

	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	// 启动服务器
	go func() {
		logger.Log.Info("Server running", zap.String("port", a.Config.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// 等待中断信号优雅地关闭服务器（设置5秒的超时时间）
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Error("Server forced to shutdown", zap.Error(err))
	}

	if a.tracer != nil {
		if err := a.tracer.Shutdown(shutdownCtx); err != nil {
			logger.Log.Error("Failed to shutdown tracer provider", zap.Error(err))
		}
	}
	if a.Redis != nil {
		a.Redis.Close()
	}

	logger.Log.Info("Server exiting")
}
