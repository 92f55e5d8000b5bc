package database

import (
	"context"
	"fmt"

	"github.com/tech-arch1tect/sparkauth/config"
	"github.com/tech-arch1tect/sparkauth/services/logging"
	"github.com/tech-arch1tect/sparkauth/services/tokens"
	"github.com/tech-arch1tect/sparkauth/services/users"
	"go.uber.org/zap"
)

// Stores is the persistence backing the account service. Both stores share
// one connection, which Close releases.
type Stores struct {
	Users  users.Store
	Tokens tokens.Store
	close  func(context.Context) error
}

func (s *Stores) Close(ctx context.Context) error {
	if s.close == nil {
		return nil
	}
	return s.close(ctx)
}

func OpenStores(ctx context.Context, cfg *config.Config, logger *logging.Service) (*Stores, error) {
	if IsMongo(cfg.Database.Driver) {
		return openMongoStores(ctx, cfg, logger)
	}

	db, err := ProvideDatabase(*cfg)
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to access connection pool: %w", err)
	}

	logger.Info("database connected", zap.String("driver", cfg.Database.Driver))

	return &Stores{
		Users:  users.NewGormStore(db, cfg.Auth.BcryptCost, logger),
		Tokens: tokens.NewGormStore(db, logger),
		close:  func(context.Context) error { return sqlDB.Close() },
	}, nil
}

func openMongoStores(ctx context.Context, cfg *config.Config, logger *logging.Service) (*Stores, error) {
	client, db, err := ConnectMongo(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}

	userStore := users.NewMongoStore(db, cfg.Auth.BcryptCost, logger)
	tokenStore := tokens.NewMongoStore(db, logger)

	if cfg.Database.AutoMigrate {
		if err := userStore.EnsureIndexes(ctx); err != nil {
			_ = client.Disconnect(ctx)
			return nil, fmt.Errorf("failed to create user indexes: %w", err)
		}
		if err := tokenStore.EnsureIndexes(ctx); err != nil {
			_ = client.Disconnect(ctx)
			return nil, fmt.Errorf("failed to create token indexes: %w", err)
		}
	}

	logger.Info("database connected",
		zap.String("driver", "mongo"),
		zap.String("database", cfg.Database.MongoDatabase))

	return &Stores{
		Users:  userStore,
		Tokens: tokenStore,
		close:  client.Disconnect,
	}, nil
}
