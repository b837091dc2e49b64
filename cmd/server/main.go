package main

import (
	"context"
	"log"
	"time"

	goRedis "github.com/redis/go-redis/v9"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	apiHandler "github.com/fastygo/worklog/api/handler"
	"github.com/fastygo/worklog/internal/config"
	"github.com/fastygo/worklog/internal/images"
	"github.com/fastygo/worklog/internal/infrastructure/monitor"
	pgInfra "github.com/fastygo/worklog/internal/infrastructure/postgres"
	redisInfra "github.com/fastygo/worklog/internal/infrastructure/redis"
	"github.com/fastygo/worklog/internal/middleware"
	"github.com/fastygo/worklog/internal/router"
	"github.com/fastygo/worklog/internal/services/lifecycle"
	"github.com/fastygo/worklog/pkg/httpcontext"
	"github.com/fastygo/worklog/pkg/logger"
	"github.com/fastygo/worklog/repository"
	"github.com/fastygo/worklog/repository/memory"
	"github.com/fastygo/worklog/repository/postgres"
	redisRepo "github.com/fastygo/worklog/repository/redis"
	taskUC "github.com/fastygo/worklog/usecase/task"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	zapLogger, err := logger.New(logger.Config{
		Level:      cfg.Logger.Level,
		Encoding:   cfg.Logger.Encoding,
		File:       cfg.Logger.File,
		MaxSizeMB:  cfg.Logger.MaxSizeMB,
		MaxBackups: cfg.Logger.MaxBackups,
		MaxAgeDays: cfg.Logger.MaxAgeDays,
	})
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer zapLogger.Sync()

	appCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	manager := lifecycle.New(cfg.Context.ShutdownTimeout, zapLogger)
	manager.Listen(cancel)

	var taskRepo repository.TaskRepository
	switch cfg.Store.Driver {
	case config.StoreDriverMemory:
		zapLogger.Warn("using in-memory task store, data is lost on restart")
		taskRepo = memory.NewTaskRepo()
	default:
		if err := pgInfra.RunMigrations(cfg, zapLogger); err != nil {
			zapLogger.Fatal("migrations failed", zap.Error(err))
		}

		pool, err := pgInfra.NewPool(appCtx, cfg.Database, zapLogger)
		if err != nil {
			zapLogger.Fatal("postgres connection failed", zap.Error(err))
		}
		manager.Register("postgres", func(ctx context.Context) error {
			pool.Close()
			return nil
		})
		taskRepo = postgres.NewTaskRepository(pool)
	}

	var opts []taskUC.Option
	var redisClient *goRedis.Client
	if cfg.CacheEnabled() {
		redisClient, err = redisInfra.NewClient(cfg.Redis)
		if err != nil {
			zapLogger.Fatal("redis connection failed", zap.Error(err))
		}
		manager.Register("redis", func(ctx context.Context) error {
			return redisClient.Close()
		})
		opts = append(opts, taskUC.WithCache(redisRepo.NewRangeCache(redisClient, cfg.Redis.TTL)))
	}

	storage, err := images.NewStorage(cfg.Upload, zapLogger)
	if err != nil {
		zapLogger.Fatal("upload directory unavailable", zap.Error(err))
	}

	mon := monitor.New(taskRepo, redisClient, storage.Dir(), 10*time.Second, zapLogger)
	mon.Start()
	manager.Register("monitor", func(ctx context.Context) error {
		mon.Stop()
		return nil
	})

	taskUseCase := taskUC.New(taskRepo, storage, zapLogger, opts...)

	ctxAdapter := httpcontext.NewAdapter(cfg.Context.RequestTimeout)

	handlers := router.Handlers{
		Task:   apiHandler.NewTaskHandler(taskUseCase, ctxAdapter, zapLogger),
		Health: apiHandler.NewHealthHandler(mon, ctxAdapter, zapLogger),
	}

	r := router.New(handlers, router.Options{
		UploadDir:     storage.Dir(),
		UploadPrefix:  storage.Prefix(),
		StaticDir:     cfg.Static.Dir,
		EnableMetrics: cfg.HTTP.EnableMetrics,
		EnablePprof:   cfg.HTTP.EnablePprof,
	})

	handler := middleware.Chain(r.Handler,
		middleware.RequestID(),
		middleware.Recover(zapLogger),
		middleware.AccessLog(zapLogger),
		middleware.Metrics(),
		middleware.CORS(cfg.HTTP.CORSOrigins),
		middleware.SecureHeaders(),
	)

	server := &fasthttp.Server{
		Handler:            handler,
		ReadTimeout:        cfg.HTTP.ReadTimeout,
		WriteTimeout:       cfg.HTTP.WriteTimeout,
		IdleTimeout:        cfg.HTTP.IdleTimeout,
		MaxRequestBodySize: cfg.HTTP.MaxBodyBytes,
		Concurrency:        cfg.HTTP.MaxConn,
		Name:               cfg.AppName,
	}

	go func() {
		zapLogger.Info("server started",
			zap.String("address", cfg.Address()),
			zap.String("store", cfg.Store.Driver),
			zap.Bool("cache", cfg.CacheEnabled()),
			zap.String("uploads", storage.Dir()))
		if err := server.ListenAndServe(cfg.Address()); err != nil {
			zapLogger.Fatal("server crashed", zap.Error(err))
		}
	}()

	manager.Register("http_server", func(ctx context.Context) error {
		return server.ShutdownWithContext(ctx)
	})

	<-appCtx.Done()

	if err := manager.Shutdown(context.Background()); err != nil {
		zapLogger.Error("graceful shutdown error", zap.Error(err))
	}
}
