package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/fayiz2005/Kaze/pkg/database"

	"go.uber.org/zap"
)

type Config struct {
	Port     string
	Origins  []string
	DB       DB
	JWT      JWT
	Redis    Redis
	SMTP     SMTP
	Kafka    Kafka
	Notify   Notify
	Checkout Checkout
	Admin    Admin
}

type DB struct {
	database.Config
}

type JWT struct {
	Secret    string
	Issuer    string
	Audience  string
	AccessExp time.Duration
}

type Redis struct {
	Enabled    bool
	Addr       string
	Password   string
	DB         int
	TTLSeconds int
}

type SMTP struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
	SSL      bool
}

type Kafka struct {
	Brokers []string
	GroupID string
	Topic   string
}

// Notify.Mode: smtp | kafka | log
type Notify struct {
	Mode    string
	Timeout time.Duration
}

type Checkout struct {
	TxTimeout time.Duration
}

// Admin: учётка суперадмина, которую cmd/migrate создаёт при первом запуске.
type Admin struct {
	SuperEmail    string
	SuperPassword string
	InviteTTL     time.Duration
	ResetTTL      time.Duration
}

func Load(log *zap.Logger) *Config {
	c := &Config{
		Port:    getEnvDefault("APP_PORT", ":8080"),
		Origins: splitAndTrim(os.Getenv("CORS_ORIGINS")),
		DB:      LoadDB(log).DB,
		JWT: JWT{
			Secret:    getEnv("JWT_SECRET", log),
			Issuer:    getEnvDefault("JWT_ISSUER", "kaze"),
			Audience:  getEnvDefault("JWT_AUDIENCE", "kaze-admin"),
			AccessExp: parseDurationWithDays(getEnvDefault("ACCESS_EXP", "12h")),
		},
		Redis: Redis{
			Enabled:    getEnvDefault("REDIS_ENABLED", "false") == "true",
			Addr:       getEnvDefault("REDIS_ADDR", "localhost:6379"),
			Password:   os.Getenv("REDIS_PASSWORD"),
			DB:         atoiDefault(os.Getenv("REDIS_DB"), 0),
			TTLSeconds: atoiDefault(os.Getenv("CACHE_TTL_SECONDS"), 60),
		},
		Kafka: LoadKafka(),
		Notify: Notify{
			Mode:    strings.ToLower(getEnvDefault("NOTIFY_MODE", "log")),
			Timeout: parseDurationWithDays(getEnvDefault("NOTIFY_TIMEOUT", "15s")),
		},
		Checkout: Checkout{
			TxTimeout: parseDurationWithDays(getEnvDefault("CHECKOUT_TX_TIMEOUT", "10s")),
		},
		Admin: LoadAdmin(),
	}

	if c.Notify.Mode == "smtp" {
		c.SMTP = LoadSMTP(log)
	}
	if c.Notify.Mode == "kafka" && len(c.Kafka.Brokers) == 0 {
		log.Error("NOTIFY_MODE=kafka требует KAFKA_BROKERS")
		panic("missing required environment variable: KAFKA_BROKERS")
	}
	return c
}

// LoadDB: только то, что нужно для миграции и очистки.
func LoadDB(log *zap.Logger) *Config {
	return &Config{
		DB: DB{
			Config: database.Config{
				Host:     getEnv("DB_HOST", log),
				Port:     getEnv("DB_PORT", log),
				User:     getEnv("DB_USER", log),
				Password: getEnv("DB_PASSWORD", log),
				Name:     getEnv("DB_NAME", log),
				SSLMode:  getEnvDefault("DB_SSLMODE", "disable"),
			},
		},
	}
}

func LoadKafka() Kafka {
	return Kafka{
		Brokers: splitAndTrim(os.Getenv("KAFKA_BROKERS")),
		GroupID: getEnvDefault("KAFKA_GROUP_ID", "kaze-notifier"),
		Topic:   getEnvDefault("KAFKA_TOPIC_EMAIL", "kaze.email"),
	}
}

func LoadAdmin() Admin {
	return Admin{
		SuperEmail:    os.Getenv("SUPERADMIN_EMAIL"),
		SuperPassword: os.Getenv("SUPERADMIN_PASSWORD"),
		InviteTTL:     parseDurationWithDays(getEnvDefault("INVITE_EXP", "3d")),
		ResetTTL:      parseDurationWithDays(getEnvDefault("RESET_EXP", "1h")),
	}
}

func LoadSMTP(log *zap.Logger) SMTP {
	return SMTP{
		Host:     getEnv("SMTP_HOST", log),
		Port:     getEnvInt("SMTP_PORT", log),
		User:     getEnv("SMTP_USER", log),
		Password: getEnv("SMTP_PASSWORD", log),
		From:     getEnv("SMTP_FROM", log),
		SSL:      getEnvDefault("SMTP_SSL", "true") == "true",
	}
}

func getEnv(key string, log *zap.Logger) string {
	if val, exists := os.LookupEnv(key); exists {
		return val
	}
	log.Error("Обязательная переменная окружения не установлена", zap.String("key", key))
	panic("missing required environment variable: " + key)
}

func getEnvDefault(key, def string) string {
	if val, exists := os.LookupEnv(key); exists && val != "" {
		return val
	}
	return def
}

func getEnvInt(key string, log *zap.Logger) int {
	valStr := getEnv(key, log)
	val, err := strconv.Atoi(valStr)
	if err != nil {
		log.Error("Ошибка преобразования переменной окружения в int", zap.String("key", key), zap.Error(err))
		panic("invalid int value for environment variable: " + key)
	}
	return val
}

func parseDurationWithDays(s string) time.Duration {
	if strings.HasSuffix(s, "d") {
		days, err := strconv.Atoi(strings.TrimSuffix(s, "d"))
		if err != nil {
			return 0
		}
		return time.Duration(days) * 24 * time.Hour
	}

	duration, err := time.ParseDuration(s)
	if err != nil {
		return 0
	}
	return duration
}

func atoiDefault(s string, def int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

func splitAndTrim(s string) []string {
	if s == "" {
		return nil
	}
	parts := []string{}
	for _, p := range strings.Split(s, ",") {
		pt := strings.TrimSpace(p)
		if pt != "" {
			parts = append(parts, pt)
		}
	}
	return parts
}
