package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	AppHost  string
	HTTPPort string
	AppEnv   string
	LogLevel string

	// BotToken — токен Telegram Bot API.
	BotToken string
	// AdminIDs — allow-list администраторов (user id).
	AdminIDs []int64
	// AdminChatIDs — дополнительные чаты (например, группы), которые тоже
	// получают каждую новую заявку.
	AdminChatIDs []int64
	// PollTimeout — таймаут long polling getUpdates.
	PollTimeout time.Duration

	// KafkaBrokers/KafkaTopic — если заданы, события тикетов уходят в Kafka.
	KafkaBrokers string
	KafkaTopic   string

	// SearchServiceURL — если задан, тикеты отправляются в search-service
	// для индексации (POST /search/index/ticket).
	SearchServiceURL string

	DB struct {
		Host     string
		Port     string
		User     string
		Password string
		Database string
		SSLMode  string
	}
}

func Load() (*Config, error) {
	_ = godotenv.Load(".env")
	_ = godotenv.Load("../.env")

	cfg := &Config{
		AppHost:          getEnv("APP_HOST", "0.0.0.0"),
		HTTPPort:         firstEnv("APP_PORT", "HTTP_PORT", "8098"),
		AppEnv:           getEnv("APP_ENV", "development"),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		BotToken:         getEnv("BOT_TOKEN", ""),
		KafkaBrokers:     getEnv("KAFKA_BROKERS", ""),
		KafkaTopic:       getEnv("KAFKA_TOPIC", ""),
		SearchServiceURL: getEnv("SEARCH_SERVICE_URL", ""),
	}
	var err error
	if cfg.AdminIDs, err = parseIDList(os.Getenv("ADMIN_IDS")); err != nil {
		return nil, fmt.Errorf("config: ADMIN_IDS: %w", err)
	}
	if cfg.AdminChatIDs, err = parseIDList(os.Getenv("ADMIN_CHAT_IDS")); err != nil {
		return nil, fmt.Errorf("config: ADMIN_CHAT_IDS: %w", err)
	}
	seconds, err := strconv.Atoi(getEnv("POLL_TIMEOUT", "30"))
	if err != nil || seconds <= 0 {
		return nil, errors.New("config: POLL_TIMEOUT must be a positive integer (seconds)")
	}
	cfg.PollTimeout = time.Duration(seconds) * time.Second

	cfg.DB.Host = getEnv("DB_HOST", "localhost")
	cfg.DB.Port = getEnv("DB_PORT", "5432")
	cfg.DB.User = getEnv("DB_USER", "postgres")
	cfg.DB.Password = getEnv("DB_PASSWORD", "postgres")
	cfg.DB.Database = getEnv("DB_DATABASE", "support_bot")
	cfg.DB.SSLMode = getEnv("DB_SSLMODE", "disable")
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.BotToken == "" {
		return errors.New("config: BOT_TOKEN is required")
	}
	if len(c.AdminIDs) == 0 {
		return errors.New("config: ADMIN_IDS is required (at least one admin)")
	}
	if c.DB.Host == "" || c.DB.Database == "" {
		return errors.New("config: DB_HOST and DB_DATABASE are required")
	}
	if c.AppEnv == "production" && c.DB.Password == "" {
		return errors.New("config: in production DB_PASSWORD is required")
	}
	return nil
}

// IsAdmin проверяет user id по allow-list.
func (c *Config) IsAdmin(userID int64) bool {
	for _, id := range c.AdminIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// NotifyTargets — объединение ADMIN_IDS и ADMIN_CHAT_IDS без дублей,
// в порядке объявления.
func (c *Config) NotifyTargets() []int64 {
	seen := make(map[int64]struct{}, len(c.AdminIDs)+len(c.AdminChatIDs))
	out := make([]int64, 0, len(c.AdminIDs)+len(c.AdminChatIDs))
	for _, id := range append(append([]int64{}, c.AdminIDs...), c.AdminChatIDs...) {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DB.Host, c.DB.Port, c.DB.User, c.DB.Password, c.DB.Database, c.DB.SSLMode)
}

func (c *Config) DatabaseURL() string {
	pass := url.QueryEscape(c.DB.Password)
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.DB.User, pass, c.DB.Host, c.DB.Port, c.DB.Database, c.DB.SSLMode)
}

func (c *Config) Addr() string {
	return c.AppHost + ":" + c.HTTPPort
}

func parseIDList(s string) ([]int64, error) {
	var out []int64
	for _, t := range strings.Split(s, ",") {
		if t = strings.TrimSpace(t); t == "" {
			continue
		}
		id, err := strconv.ParseInt(t, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid id %q", t)
		}
		out = append(out, id)
	}
	return out, nil
}

func firstEnv(keysAndDef ...string) string {
	if len(keysAndDef) == 0 {
		return ""
	}
	def := keysAndDef[len(keysAndDef)-1]
	for _, k := range keysAndDef[:len(keysAndDef)-1] {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return def
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
