package main

import (
	"context"

	"go.uber.org/zap"

	"github.com/rryowa/fitness_session/internal/api"
	"github.com/rryowa/fitness_session/internal/backend"
	"github.com/rryowa/fitness_session/internal/controller"
	"github.com/rryowa/fitness_session/internal/migrations"
	"github.com/rryowa/fitness_session/internal/storage"
	"github.com/rryowa/fitness_session/internal/storage/memory"
	"github.com/rryowa/fitness_session/internal/storage/postgres"
	"github.com/rryowa/fitness_session/internal/storage/redis"
	"github.com/rryowa/fitness_session/internal/util"
)

func main() {
	ctx := context.Background()
	logger := util.NewZapLogger()
	defer logger.Sync() //nolint:errcheck // stdout sync

	storageCfg := util.NewStorageConfig()
	var cleanupFuncs []func()

	var (
		store  storage.Storage
		pinger controller.Pinger
	)
	switch storageCfg.Backend {
	case util.BackendPostgres:
		db, dbCleanup, err := util.NewDBConnection(logger, util.NewDBConfig())
		if err != nil {
			logger.Fatal(zap.Error(err))
		}
		cleanupFuncs = append(cleanupFuncs, dbCleanup)
		if err := migrations.RunMigrations(db, logger); err != nil {
			logger.Fatal(zap.Error(err))
		}
		pgStorage := postgres.NewStorage(db)
		store, pinger = pgStorage, pgStorage
	default:
		store = memory.NewStorage(logger)
	}

	var tokenStorage storage.TokenStorage
	switch storageCfg.TokenBlacklist {
	case util.BackendRedis:
		redisClient, redisCleanup, err := util.NewRedisClient(logger, util.NewRedisConfig())
		if err != nil {
			logger.Fatal(zap.Error(err))
		}
		cleanupFuncs = append(cleanupFuncs, redisCleanup)
		tokenStorage = redis.NewTokenStorage(redisClient)
	default:
		tokenStorage = memory.NewTokenStorage()
	}
	logger.Infow("storage configured", "backend", storageCfg.Backend, "blacklist", storageCfg.TokenBlacklist)

	tokenIssuer := backend.NewTokenIssuer(util.NewTokenConfig(), tokenStorage)
	authService := backend.NewAuthService(store, store, tokenIssuer, logger)
	activityService := backend.NewActivityService(store)

	ctrl := controller.NewController(logger, authService, activityService, pinger)

	apiServer, err := api.NewAPI(ctrl, authService, util.NewServerConfig(), logger, cleanupFuncs)
	if err != nil {
		logger.Fatal(zap.Error(err))
	}
	apiServer.Run(ctx)
}
