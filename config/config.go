package config

import (
	"fmt"
	"time"
)

type Configs struct {
	Env string

	Database         DatabaseConfigs
	ApiServer        APIServerConfigs
	PrometheusServer ServerConfigs
	Auth             AuthConfigs
	Redis            RedisConfigs
	Kafka            KafkaConfigs
	Eth              EthConfigs
	Ledger           LedgerConfigs
	Vault            VaultConfigs
}

type DatabaseConfigs struct {
	Host     string
	Port     string
	Database string
	User     string
	Password string
	LogLevel string
}

func (d DatabaseConfigs) ConnectionString() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		d.User,
		d.Password,
		d.Host,
		d.Port,
		d.Database,
	)
}

type ServerConfigs struct {
	Host string
	Port string
	Cert string
	Key  string
}

func (c ServerConfigs) Address() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

type APIServerConfigs struct {
	ServerConfigs

	AllowedOrigins []string
	MaxLimit       int
	DefaultLimit   int
}

type AuthConfigs struct {
	TokenSecret string
	AccessToken TokenConfigs
	NonceToken  TokenConfigs
}

type TokenConfigs struct {
	Name       string
	Expiration time.Duration
}

type RedisConfigs struct {
	Addr string
}

type KafkaConfigs struct {
	Addr       string
	ClientID   string
	EventTopic string
}

type EthConfigs struct {
	RPC       string
	ChainID   int64
	SecretKey string
	// ReceiptTimeout bounds the wait for a transfer receipt.
	ReceiptTimeout time.Duration
}

type LedgerConfigs struct {
	// Admin is the administrator bootstrapped into a fresh ledger state.
	Admin string

	// LockTimeout bounds how long a top-level operation waits for the guard.
	LockTimeout time.Duration

	// DistributedGuard selects the redis guard instead of the in-process one.
	DistributedGuard bool
	LockTTL          time.Duration
}

type VaultConfigs struct {
	// Mode is "book" or "erc20".
	Mode string

	// EscrowAccount is the account holding escrowed funds in book mode.
	EscrowAccount string
}
