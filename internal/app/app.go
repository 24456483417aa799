// Package app 负责应用的依赖装配
package app

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"

	"inkwell-api/internal/application/chaptertree"
	"inkwell-api/internal/application/novel"
	"inkwell-api/internal/application/revision"
	"inkwell-api/internal/application/textdiff"
	"inkwell-api/internal/config"
	"inkwell-api/internal/infrastructure/persistence/postgres"
	"inkwell-api/internal/infrastructure/persistence/redis"
	"inkwell-api/internal/interfaces/http/handler"
	"inkwell-api/internal/interfaces/http/router"
	"inkwell-api/pkg/logger"
)

// App 装配完成的应用
type App struct {
	router *router.Router
	pg     *postgres.Client
	redis  *redis.Client
}

// New 构建应用：基础设施、服务、处理器、路由依次装配
func New(ctx context.Context, cfg *config.Config) (*App, func(), error) {
	pg, err := postgres.NewClient(&cfg.Database.Postgres)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect postgres: %w", err)
	}

	// Redis 不可用时降级运行，版本还原走纯数据库路径
	var redisClient *redis.Client
	var restoreCache *redis.RestoreCache
	redisClient, err = redis.NewClient(&cfg.Cache.Redis)
	if err != nil {
		logger.Warn(ctx, "redis unavailable, restore cache disabled", "error", err)
		redisClient = nil
	} else {
		restoreCache = redis.NewRestoreCache(redisClient, cfg.Revision.RestoreCacheTTL)
	}

	txManager := postgres.NewTxManager(pg)
	novelRepo := postgres.NewNovelRepository(pg)
	chapterRepo := postgres.NewChapterRepository(pg)
	versionRepo := postgres.NewVersionRepository(pg)

	engine := textdiff.NewEngine()

	var cache revision.ContentCache
	if restoreCache != nil {
		cache = restoreCache
	}
	revisionSvc := revision.NewService(versionRepo, chapterRepo, cache, txManager, engine, &cfg.Revision)
	treeSvc := chaptertree.NewService(novelRepo, chapterRepo, revisionSvc, txManager)
	novelSvc := novel.NewService(novelRepo, chapterRepo, txManager)

	r := router.New(cfg, router.Handlers{
		Health:  handler.NewHealthHandler(pg, redisClient),
		Novel:   handler.NewNovelHandler(novelSvc),
		Chapter: handler.NewChapterHandler(treeSvc),
		Version: handler.NewVersionHandler(revisionSvc),
	})

	app := &App{
		router: r,
		pg:     pg,
		redis:  redisClient,
	}

	cleanup := func() {
		if app.redis != nil {
			if err := app.redis.Close(); err != nil {
				logger.Warn(ctx, "failed to close redis", "error", err)
			}
		}
		if err := app.pg.Close(); err != nil {
			logger.Warn(ctx, "failed to close postgres", "error", err)
		}
	}

	return app, cleanup, nil
}

// Engine 返回 HTTP 引擎
func (a *App) Engine() *gin.Engine {
	return a.router.Engine()
}
