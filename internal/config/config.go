package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type HTTPConfig struct {
	Host string
	Port int
}

type DBConfig struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type AuthConfig struct {
	AccessSecret  string
	AccessTTL     time.Duration
	AdminUsername string
	AdminPassword string
}

type FareConfig struct {
	Base  float64
	PerKm float64
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	StatsTTL time.Duration
}

type MetricsConfig struct {
	Namespace string
}

type Config struct {
	Environment string
	HTTP        HTTPConfig
	DB          DBConfig
	Auth        AuthConfig
	Fare        FareConfig
	Redis       RedisConfig
	Metrics     MetricsConfig
}

func Load() (*Config, error) {
	// a local .env is optional; real deployments inject the environment directly
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("app")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("./deploy")

	v.AutomaticEnv()

	v.SetDefault("FARE_BASE", 50.0)
	v.SetDefault("FARE_PER_KM", 15.0)
	v.SetDefault("JWT_ACCESS_TTL", "24h")
	v.SetDefault("STATS_CACHE_TTL", "30s")
	v.SetDefault("ADMIN_USERNAME", "admin")
	v.SetDefault("METRICS_NAMESPACE", "taxi")

	_ = v.ReadInConfig()

	cfg := &Config{
		Environment: v.GetString("APP_ENV"),
		HTTP: HTTPConfig{
			Host: v.GetString("HTTP_HOST"),
			Port: v.GetInt("HTTP_PORT"),
		},
		DB: DBConfig{
			DSN:             v.GetString("DB_DSN"),
			MaxOpenConns:    v.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns:    v.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime: v.GetDuration("DB_CONN_MAX_LIFETIME"),
		},
		Auth: AuthConfig{
			AccessSecret:  v.GetString("JWT_ACCESS_SECRET"),
			AccessTTL:     v.GetDuration("JWT_ACCESS_TTL"),
			AdminUsername: v.GetString("ADMIN_USERNAME"),
			AdminPassword: v.GetString("ADMIN_PASSWORD"),
		},
		Fare: FareConfig{
			Base:  v.GetFloat64("FARE_BASE"),
			PerKm: v.GetFloat64("FARE_PER_KM"),
		},
		Redis: RedisConfig{
			Addr:     v.GetString("REDIS_ADDR"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
			StatsTTL: v.GetDuration("STATS_CACHE_TTL"),
		},
		Metrics: MetricsConfig{
			Namespace: v.GetString("METRICS_NAMESPACE"),
		},
	}

	if cfg.HTTP.Host == "" {
		cfg.HTTP.Host = "0.0.0.0"
	}
	if cfg.HTTP.Port == 0 {
		cfg.HTTP.Port = 7090
	}
	if cfg.Environment == "" {
		cfg.Environment = "development"
	}
	if cfg.Auth.AccessTTL <= 0 {
		cfg.Auth.AccessTTL = 24 * time.Hour
	}
	if cfg.Redis.StatsTTL <= 0 {
		cfg.Redis.StatsTTL = 30 * time.Second
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func validate(cfg *Config) error {
	if cfg.DB.DSN == "" {
		return fmt.Errorf("DB_DSN is required")
	}
	if cfg.Auth.AccessSecret == "" {
		return fmt.Errorf("JWT_ACCESS_SECRET is required")
	}
	if cfg.Fare.Base < 0 {
		return fmt.Errorf("FARE_BASE must not be negative")
	}
	if cfg.Fare.PerKm <= 0 {
		return fmt.Errorf("FARE_PER_KM must be positive")
	}
	return nil
}
