package testutil

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/questx-lab/quest-escrow/config"
	"github.com/questx-lab/quest-escrow/migration"
	"github.com/questx-lab/quest-escrow/pkg/authenticator"
	"github.com/questx-lab/quest-escrow/pkg/logger"
	"github.com/questx-lab/quest-escrow/pkg/xcontext"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// MockContext returns a context carrying a fresh in-memory database with all
// tables migrated, test configs and a silent logger.
func MockContext() context.Context {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		panic(err)
	}

	// A single connection keeps the shared in-memory database alive and
	// serializes statements, sqlite rejects concurrent writers otherwise.
	sqlDB, err := db.DB()
	if err != nil {
		panic(err)
	}
	sqlDB.SetMaxOpenConns(1)

	cfg := config.Configs{
		Env: "test",
		ApiServer: config.APIServerConfigs{
			MaxLimit:     50,
			DefaultLimit: 10,
		},
		Auth: config.AuthConfigs{
			TokenSecret: "secret",
			AccessToken: config.TokenConfigs{
				Name:       "access_token",
				Expiration: time.Minute,
			},
			NonceToken: config.TokenConfigs{
				Name:       "nonce_token",
				Expiration: time.Minute,
			},
		},
		Kafka: config.KafkaConfigs{
			EventTopic: "ledger_events",
		},
		Ledger: config.LedgerConfigs{
			Admin:       Admin,
			LockTimeout: 200 * time.Millisecond,
			LockTTL:     time.Second,
		},
		Vault: config.VaultConfigs{
			Mode:          "book",
			EscrowAccount: EscrowAccount,
		},
	}

	ctx := context.Background()
	ctx = xcontext.WithConfigs(ctx, cfg)
	ctx = xcontext.WithLogger(ctx, logger.NewNopLogger())
	ctx = xcontext.WithTokenEngine(ctx, authenticator.NewTokenEngine(cfg.Auth.TokenSecret))
	ctx = xcontext.WithDB(ctx, db)

	if err := migration.AutoMigrate(ctx); err != nil {
		panic(err)
	}

	return ctx
}

func MockContextWithUserID(ctx context.Context, userID string) context.Context {
	return xcontext.WithRequestUserID(ctx, userID)
}
