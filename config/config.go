package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
	Observ   ObservabilityConfig
	Auth     AuthConfig
	Business BusinessConfig
}

type ServerConfig struct {
	Port     string
	Env      string
	LogLevel string
}

type DatabaseConfig struct {
	Driver string
	URL    string
}

// RedisConfig is optional; an empty Addr disables the catalog cache and order locks.
type RedisConfig struct {
	Addr              string
	Password          string
	DB                int
	CatalogTTLSeconds int
}

type KafkaConfig struct {
	Brokers    []string
	TopicOrder string
}

type ObservabilityConfig struct {
	JaegerEndpoint   string
	TraceSampleRatio float64
}

type AuthConfig struct {
	SecretKey       string
	TokenTTLMinutes int
	PasswordScheme  string
}

type BusinessConfig struct {
	OrderLocks     bool
	LockTTLSeconds int
}

// TokenTTL returns the access token validity window
func (a AuthConfig) TokenTTL() time.Duration {
	return time.Duration(a.TokenTTLMinutes) * time.Minute
}

// CatalogTTL returns how long cached catalog entries live
func (r RedisConfig) CatalogTTL() time.Duration {
	return time.Duration(r.CatalogTTLSeconds) * time.Second
}

// LockTTL returns the expiry of an order lock
func (b BusinessConfig) LockTTL() time.Duration {
	return time.Duration(b.LockTTLSeconds) * time.Second
}

func Load() *Config {
	_ = godotenv.Load()

	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))
	catalogTTL, _ := strconv.Atoi(getEnv("REDIS_CATALOG_TTL_SECONDS", "60"))
	tokenTTL, _ := strconv.Atoi(getEnv("ACCESS_TOKEN_EXPIRE_MINUTES", "30"))
	lockTTL, _ := strconv.Atoi(getEnv("ORDER_LOCK_TTL_SECONDS", "10"))
	orderLocks, _ := strconv.ParseBool(getEnv("ORDER_LOCKS_ENABLED", "false"))
	sampleRatio, err := strconv.ParseFloat(getEnv("TRACE_SAMPLE_RATIO", "1"), 64)
	if err != nil {
		sampleRatio = 1
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:     getEnv("PORT", "8080"),
			Env:      getEnv("ENV", "development"),
			LogLevel: getEnv("LOG_LEVEL", ""),
		},
		Database: DatabaseConfig{
			Driver: getEnv("DB_DRIVER", "sqlite"),
			URL:    getEnv("DATABASE_URL", "shop.db"),
		},
		Redis: RedisConfig{
			Addr:              getEnv("REDIS_ADDR", ""),
			Password:          getEnv("REDIS_PASSWORD", ""),
			DB:                redisDB,
			CatalogTTLSeconds: catalogTTL,
		},
		Kafka: KafkaConfig{
			Brokers:    splitList(getEnv("KAFKA_BROKERS", "")),
			TopicOrder: getEnv("KAFKA_TOPIC_ORDER_EVENTS", "shop-events"),
		},
		Observ: ObservabilityConfig{
			JaegerEndpoint:   getEnv("JAEGER_ENDPOINT", ""),
			TraceSampleRatio: sampleRatio,
		},
		Auth: AuthConfig{
			SecretKey:       getEnv("SECRET_KEY", "mysecretkey"),
			TokenTTLMinutes: tokenTTL,
			PasswordScheme:  getEnv("PASSWORD_SCHEME", "plaintext"),
		},
		Business: BusinessConfig{
			OrderLocks:     orderLocks,
			LockTTLSeconds: lockTTL,
		},
	}

	log.Printf("Config loaded: env=%s, port=%s, db=%s", cfg.Server.Env, cfg.Server.Port, cfg.Database.Driver)
	return cfg
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func splitList(val string) []string {
	var out []string
	for _, part := range strings.Split(val, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
