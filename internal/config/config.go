package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// DSN builds a GORM-compatible connection string.
func (c DatabaseConfig) DSN() string {
	return "host=" + c.Host +
		" port=" + c.Port +
		" user=" + c.User +
		" password=" + c.Password +
		" dbname=" + c.DBName +
		" sslmode=" + c.SSLMode
}

// JWTConfig holds token verification settings.
type JWTConfig struct {
	Secret string
}

// KafkaConfig holds broker settings for event publishing.
type KafkaConfig struct {
	Brokers []string
	Enabled bool
}

// ServiceConfig holds all configuration for the rewards service.
type ServiceConfig struct {
	Port                  string
	AppEnv                string
	StoreDriver           string // "postgres" or "memory"
	DBConfig              DatabaseConfig
	JWTConfig             JWTConfig
	KafkaConfig           KafkaConfig
	SweepInterval         time.Duration
	WalletStartingBalance int64
}

// Load reads configuration from environment variables with sane defaults.
func Load() (*ServiceConfig, error) {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("SERVICE_PORT", ":8084")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("STORE_DRIVER", "postgres")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "rewards")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("JWT_SECRET", "dev-secret-change-me")
	v.SetDefault("KAFKA_BROKERS", "localhost:9092")
	v.SetDefault("KAFKA_ENABLED", true)
	v.SetDefault("SWEEP_INTERVAL", "1m")
	v.SetDefault("WALLET_STARTING_BALANCE", 1250)

	sweepInterval, err := time.ParseDuration(v.GetString("SWEEP_INTERVAL"))
	if err != nil {
		sweepInterval = time.Minute
	}

	port := v.GetString("SERVICE_PORT")
	if !strings.HasPrefix(port, ":") {
		port = ":" + port
	}

	return &ServiceConfig{
		Port:        port,
		AppEnv:      v.GetString("APP_ENV"),
		StoreDriver: v.GetString("STORE_DRIVER"),
		DBConfig: DatabaseConfig{
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetString("DB_PORT"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			DBName:   v.GetString("DB_NAME"),
			SSLMode:  v.GetString("DB_SSLMODE"),
		},
		JWTConfig: JWTConfig{
			Secret: v.GetString("JWT_SECRET"),
		},
		KafkaConfig: KafkaConfig{
			Brokers: strings.Split(v.GetString("KAFKA_BROKERS"), ","),
			Enabled: v.GetBool("KAFKA_ENABLED"),
		},
		SweepInterval:         sweepInterval,
		WalletStartingBalance: v.GetInt64("WALLET_STARTING_BALANCE"),
	}, nil
}
