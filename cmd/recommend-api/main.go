// Package main 电影推荐 API 服务入口
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"movie-recommend-api/internal/application/catalog"
	"movie-recommend-api/internal/application/recommend"
	"movie-recommend-api/internal/config"
	"movie-recommend-api/internal/infrastructure/persistence/postgres"
	"movie-recommend-api/internal/infrastructure/persistence/redis"
	"movie-recommend-api/internal/interfaces/http/handler"
	"movie-recommend-api/internal/interfaces/http/middleware"
	"movie-recommend-api/internal/interfaces/http/router"
	"movie-recommend-api/pkg/logger"
	"movie-recommend-api/pkg/tracer"

	"github.com/joho/godotenv"
)

// Version 版本信息，构建时注入
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	// 加载 .env 文件（如果存在）
	_ = godotenv.Load()

	// 加载配置
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 初始化日志
	logger.Init(
		cfg.Observability.Logging.Level,
		cfg.Observability.Logging.Format,
	)

	ctx := context.Background()
	log := logger.FromContext(ctx)
	log.Info("starting recommend-api",
		"version", Version,
		"build_time", BuildTime,
		"env", cfg.App.Env,
	)

	// 初始化追踪
	shutdown, err := tracer.Init(ctx, tracer.Config{
		ServiceName: cfg.App.Name,
		Endpoint:    cfg.Observability.Tracing.Endpoint,
		SampleRate:  cfg.Observability.Tracing.SampleRate,
		Enabled:     cfg.Observability.Tracing.Enabled,
	})
	if err != nil {
		log.Error("failed to init tracer", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := shutdown(ctx); err != nil {
			log.Error("failed to shutdown tracer", "error", err)
		}
	}()

	// 初始化 PostgreSQL
	pgClient, err := postgres.NewClient(&cfg.Database.Postgres)
	if err != nil {
		logger.Fatal(ctx, "failed to init postgres", err)
	}
	defer pgClient.Close()

	// 初始化 Redis（可选）
	var redisClient *redis.Client
	var resultCache *redis.ResultCache
	var limiter middleware.RateLimiter
	if cfg.Cache.Redis.Enabled {
		redisClient, err = redis.NewClient(&cfg.Cache.Redis)
		if err != nil {
			logger.Fatal(ctx, "failed to init redis", err)
		}
		defer redisClient.Close()
		resultCache = redis.NewResultCache(redisClient)
		limiter = redis.NewRateLimiter(redisClient)
	}

	// 装配推荐引擎
	engine := recommend.NewEngine(recommend.Options{
		LexicalMaxDocs:         cfg.Recommend.LexicalMaxDocs,
		CompositeMaxCandidates: cfg.Recommend.CompositeMaxCandidates,
		DefaultLimit:           cfg.Recommend.DefaultLimit,
	})
	movieRepo := postgres.NewMovieRepo(pgClient)
	loader := catalog.NewLoader(movieRepo, engine)

	// 预热语料，失败时降级启动，可由 /v1/admin/rebuild 重试
	if err := loader.Reload(ctx); err != nil {
		log.Error("initial corpus load failed, starting without corpus", "error", err)
	}

	// 装配路由
	r := router.New(cfg, router.Handlers{
		Health:    handler.NewHealthHandler(pgClient, redisClient, engine),
		Movie:     handler.NewMovieHandler(movieRepo),
		Recommend: handler.NewRecommendHandler(engine, movieRepo, loader, resultCache, &cfg.Recommend),
	}, limiter)

	// 创建 HTTP 服务器
	addr := fmt.Sprintf("%s:%d", cfg.Server.HTTP.Host, cfg.Server.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r.Engine(),
		ReadTimeout:  cfg.Server.HTTP.ReadTimeout,
		WriteTimeout: cfg.Server.HTTP.WriteTimeout,
		IdleTimeout:  cfg.Server.HTTP.IdleTimeout,
	}

	// 启动服务器
	go func() {
		log.Info("http server starting", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("http server error", "error", err)
			os.Exit(1)
		}
	}()

	// 等待中断信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	// 优雅关闭
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", "error", err)
	}

	log.Info("server exited")
}
