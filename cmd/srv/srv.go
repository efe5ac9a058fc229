package main

import (
	"context"
	"fmt"
	"math/big"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/bwmarrin/snowflake"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/questx-lab/quest-escrow/config"
	"github.com/questx-lab/quest-escrow/internal/domain"
	"github.com/questx-lab/quest-escrow/internal/domain/guard"
	"github.com/questx-lab/quest-escrow/internal/domain/vault"
	"github.com/questx-lab/quest-escrow/internal/repository"
	"github.com/questx-lab/quest-escrow/migration"
	"github.com/questx-lab/quest-escrow/pkg/authenticator"
	"github.com/questx-lab/quest-escrow/pkg/ethutil"
	"github.com/questx-lab/quest-escrow/pkg/kafka"
	"github.com/questx-lab/quest-escrow/pkg/logger"
	"github.com/questx-lab/quest-escrow/pkg/pubsub"
	"github.com/questx-lab/quest-escrow/pkg/router"
	"github.com/questx-lab/quest-escrow/pkg/xcontext"
	"github.com/questx-lab/quest-escrow/pkg/xredis"
	"github.com/urfave/cli/v2"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type srv struct {
	app *cli.App
	ctx context.Context

	redisClient xredis.Client
	publisher   pubsub.Publisher
	guard       guard.Guard
	vault       vault.Vault

	questRepo          repository.QuestRepository
	claimRecordRepo    repository.ClaimRecordRepository
	supportedAssetRepo repository.SupportedAssetRepository
	ledgerStateRepo    repository.LedgerStateRepository
	ledgerEventRepo    repository.LedgerEventRepository
	obligationRepo     repository.AssetObligationRepository
	vaultBookRepo      repository.VaultBookRepository
	vaultTransferRepo  repository.VaultTransferRepository

	questDomain  domain.QuestDomain
	rewardDomain domain.RewardDomain
	assetDomain  domain.AssetDomain
	adminDomain  domain.AdminDomain
	authDomain   domain.AuthDomain
	vaultDomain  domain.VaultDomain

	router *router.Router
}

func defaultConfigs() config.Configs {
	return config.Configs{
		Env: "local",
		Database: config.DatabaseConfigs{
			Host:     "localhost",
			Port:     "3306",
			Database: "quest_escrow",
			User:     "mysql",
			LogLevel: "error",
		},
		ApiServer: config.APIServerConfigs{
			ServerConfigs: config.ServerConfigs{Port: "8080"},
			MaxLimit:      50,
			DefaultLimit:  10,
		},
		PrometheusServer: config.ServerConfigs{Port: "9090"},
		Auth: config.AuthConfigs{
			AccessToken: config.TokenConfigs{Name: "ledger_access_token", Expiration: 24 * time.Hour},
			NonceToken:  config.TokenConfigs{Name: "ledger_nonce_token", Expiration: 5 * time.Minute},
		},
		Redis: config.RedisConfigs{Addr: "localhost:6379"},
		Kafka: config.KafkaConfigs{ClientID: "quest-escrow", EventTopic: "ledger_event"},
		Eth:   config.EthConfigs{ReceiptTimeout: 2 * time.Minute},
		Ledger: config.LedgerConfigs{
			LockTimeout: 10 * time.Second,
			LockTTL:     time.Minute,
		},
		Vault: config.VaultConfigs{Mode: "book"},
	}
}

func (s *srv) loadConfig(path string) error {
	cfg := defaultConfigs()
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if _, err := toml.DecodeFile(path, &cfg); err != nil {
				return fmt.Errorf("cannot decode config %s: %w", path, err)
			}
		}
	}

	overrideString(&cfg.Env, "ENV")
	overrideString(&cfg.Database.Host, "MYSQL_HOST")
	overrideString(&cfg.Database.Port, "MYSQL_PORT")
	overrideString(&cfg.Database.Database, "MYSQL_DATABASE")
	overrideString(&cfg.Database.User, "MYSQL_USER")
	overrideString(&cfg.Database.Password, "MYSQL_PASSWORD")
	overrideString(&cfg.Database.LogLevel, "DATABASE_LOG_LEVEL")
	overrideString(&cfg.ApiServer.Host, "API_HOST")
	overrideString(&cfg.ApiServer.Port, "API_PORT")
	overrideString(&cfg.PrometheusServer.Port, "PROMETHEUS_PORT")
	overrideString(&cfg.Auth.TokenSecret, "TOKEN_SECRET")
	overrideString(&cfg.Redis.Addr, "REDIS_ADDRESS")
	overrideString(&cfg.Kafka.Addr, "KAFKA_ADDRESS")
	overrideString(&cfg.Kafka.EventTopic, "KAFKA_EVENT_TOPIC")
	overrideString(&cfg.Eth.RPC, "ETH_RPC")
	overrideString(&cfg.Eth.SecretKey, "ETH_SECRET_KEY")
	overrideString(&cfg.Ledger.Admin, "LEDGER_ADMIN")
	overrideString(&cfg.Vault.Mode, "VAULT_MODE")
	overrideString(&cfg.Vault.EscrowAccount, "VAULT_ESCROW_ACCOUNT")

	if origins := os.Getenv("API_ALLOWED_ORIGINS"); origins != "" {
		cfg.ApiServer.AllowedOrigins = strings.Split(origins, ",")
	}

	if chainID := os.Getenv("ETH_CHAIN_ID"); chainID != "" {
		id, err := strconv.ParseInt(chainID, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid ETH_CHAIN_ID: %w", err)
		}
		cfg.Eth.ChainID = id
	}

	if os.Getenv("LEDGER_DISTRIBUTED_GUARD") == "true" {
		cfg.Ledger.DistributedGuard = true
	}

	if cfg.Auth.TokenSecret == "" {
		return fmt.Errorf("token secret is required")
	}

	s.ctx = xcontext.WithConfigs(s.ctx, cfg)
	s.ctx = xcontext.WithTokenEngine(s.ctx, authenticator.NewTokenEngine(cfg.Auth.TokenSecret))
	return nil
}

func overrideString(field *string, env string) {
	if v := os.Getenv(env); v != "" {
		*field = v
	}
}

func (s *srv) loadLogger() {
	s.ctx = xcontext.WithLogger(s.ctx, logger.NewLogger(logger.ParseLevel(os.Getenv("LOG_LEVEL"))))
}

func (s *srv) newDatabase() *gorm.DB {
	cfg := xcontext.Configs(s.ctx)

	gormConfig := &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormLogLevel(cfg.Database.LogLevel)),
	}

	var dialector gorm.Dialector
	if cfg.Env == "local" && cfg.Database.Host == "sqlite" {
		dialector = sqlite.Open(cfg.Database.Database)
	} else {
		dialector = mysql.New(mysql.Config{
			DSN:                       cfg.Database.ConnectionString(),
			DefaultStringSize:         256,
			DisableDatetimePrecision:  true,
			DontSupportRenameIndex:    true,
			DontSupportRenameColumn:   true,
			SkipInitializeWithVersion: false,
		})
	}

	db, err := gorm.Open(dialector, gormConfig)
	if err != nil {
		panic(err)
	}

	return db
}

func gormLogLevel(level string) gormlogger.LogLevel {
	switch strings.ToLower(level) {
	case "silent":
		return gormlogger.Silent
	case "warn":
		return gormlogger.Warn
	case "info":
		return gormlogger.Info
	default:
		return gormlogger.Error
	}
}

func (s *srv) migrateDB() {
	if err := migration.AutoMigrate(s.ctx); err != nil {
		panic(err)
	}

	if err := migration.Migrate(s.ctx); err != nil {
		panic(err)
	}
}

func (s *srv) loadRedisClient() {
	var err error
	s.redisClient, err = xredis.NewClient(s.ctx)
	if err != nil {
		panic(err)
	}
}

func (s *srv) loadPublisher() {
	cfg := xcontext.Configs(s.ctx)
	if cfg.Kafka.Addr == "" {
		xcontext.Logger(s.ctx).Warnf("No kafka address, ledger events are only stored")
		return
	}

	publisher, err := kafka.NewPublisher(cfg.Kafka.ClientID, strings.Split(cfg.Kafka.Addr, ","))
	if err != nil {
		panic(err)
	}

	s.publisher = publisher
}

func (s *srv) loadGuard() {
	cfg := xcontext.Configs(s.ctx)
	if !cfg.Ledger.DistributedGuard {
		s.guard = guard.NewLocalGuard(cfg.Ledger.LockTimeout)
		return
	}

	s.loadRedisClient()
	s.guard = guard.NewRedisGuard(s.redisClient, cfg.Ledger.LockTimeout, cfg.Ledger.LockTTL)
}

func (s *srv) loadRepos() {
	s.questRepo = repository.NewQuestRepository()
	s.claimRecordRepo = repository.NewClaimRecordRepository()
	s.supportedAssetRepo = repository.NewSupportedAssetRepository()
	s.ledgerStateRepo = repository.NewLedgerStateRepository()
	s.ledgerEventRepo = repository.NewLedgerEventRepository()
	s.obligationRepo = repository.NewAssetObligationRepository()
	s.vaultBookRepo = repository.NewVaultBookRepository()
	s.vaultTransferRepo = repository.NewVaultTransferRepository()
}

func (s *srv) loadVault() error {
	cfg := xcontext.Configs(s.ctx)

	switch cfg.Vault.Mode {
	case "book":
		escrow, err := ethutil.NormalizeAddress(cfg.Vault.EscrowAccount)
		if err != nil {
			return fmt.Errorf("invalid escrow account: %w", err)
		}

		s.vault = vault.NewBookVault(escrow, s.vaultBookRepo)

	case "erc20":
		client, err := ethclient.DialContext(s.ctx, cfg.Eth.RPC)
		if err != nil {
			return err
		}

		privateKey, err := ethutil.GeneratePrivateKey([]byte(cfg.Eth.SecretKey), []byte("escrow"))
		if err != nil {
			return err
		}

		v, err := vault.NewERC20Vault(client, privateKey, big.NewInt(cfg.Eth.ChainID), cfg.Eth.ReceiptTimeout)
		if err != nil {
			return err
		}

		s.vault = v

	default:
		return fmt.Errorf("unknown vault mode %s", cfg.Vault.Mode)
	}

	xcontext.Logger(s.ctx).Infof("Vault %s escrow account is %s", cfg.Vault.Mode, s.vault.Address())
	return nil
}

func (s *srv) loadDomains() error {
	if err := domain.InitLedger(s.ctx, s.ledgerStateRepo, xcontext.Configs(s.ctx).Ledger.Admin); err != nil {
		return fmt.Errorf("cannot init ledger: %w", err)
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	gate := domain.NewLedgerGate(s.ledgerStateRepo, s.ledgerEventRepo, s.vaultTransferRepo,
		s.guard, s.publisher, node, s.vault)

	s.questDomain = domain.NewQuestDomain(gate, s.questRepo, s.supportedAssetRepo,
		s.obligationRepo, s.ledgerEventRepo, s.vault)
	s.rewardDomain = domain.NewRewardDomain(gate, s.questRepo, s.claimRecordRepo, s.obligationRepo, s.vault)
	s.assetDomain = domain.NewAssetDomain(gate, s.supportedAssetRepo, s.obligationRepo, s.vault)
	s.adminDomain = domain.NewAdminDomain(gate, s.ledgerStateRepo, s.supportedAssetRepo, s.vault)
	s.authDomain = domain.NewAuthDomain()
	s.vaultDomain = domain.NewVaultDomain(gate, s.vault)
	return nil
}
