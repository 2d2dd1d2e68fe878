// Command backfill creates identities for users that do not have one yet.
package main

import (
	"context"

	"anoa.com/boardinghouse/internal/bootstrap"
	"anoa.com/boardinghouse/internal/config"
	identityRepo "anoa.com/boardinghouse/internal/modules/identity/repository"
	identityService "anoa.com/boardinghouse/internal/modules/identity/service"
	memberRepo "anoa.com/boardinghouse/internal/modules/member/repository"
	"anoa.com/boardinghouse/pkg/database"
	"anoa.com/boardinghouse/pkg/logger"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load configuration: " + err.Error())
	}

	if err := logger.InitLogger(&logger.LogConfig{
		Level:       cfg.LogLevel,
		Environment: cfg.AppEnv,
		ServiceName: "boardinghouse-backfill",
	}); err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	defer logger.Sync()
	log := logger.GetLogger()

	db, err := database.Connect(cfg.Database)
	if err != nil {
		log.Fatal("database connection failed", zap.Error(err))
	}
	if err := bootstrap.Migrate(db); err != nil {
		log.Fatal("migration failed", zap.Error(err))
	}

	identities := identityService.NewIdentityService(
		identityRepo.NewIdentityRepository(db),
		memberRepo.NewMemberRepository(db),
	)

	ctx := logger.WithContext(context.Background(), log)
	if err := bootstrap.BackfillIdentities(ctx, identities); err != nil {
		log.Fatal("backfill failed", zap.Error(err))
	}
	log.Info("backfill finished")
}
