package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config - настройки сервиса из переменных окружения
type Config struct {
	Port      string
	GinMode   string
	LogFormat string
	Storage   string // postgres или memory

	DBHost              string
	DBPort              string
	DBUser              string
	DBPassword          string
	DBName              string
	DBMaxOpenConns      int
	DBMaxIdleConns      int
	DBConnMaxLifetime   time.Duration
	DBConnectAttempts   int
	DBConnectRetryDelay time.Duration

	RedisHost     string
	RedisPort     string
	RedisPassword string
	CacheEnabled  bool
	TripsCacheTTL time.Duration

	JWTSecret string
}

// Load читает переменные окружения, подставляя значения по умолчанию
func Load() Config {
	return Config{
		Port:      getString("PORT", "8080"),
		GinMode:   getString("GIN_MODE", ""),
		LogFormat: getString("LOG_FORMAT", "text"),
		Storage:   strings.ToLower(getString("STORAGE", "postgres")),

		DBHost:              getString("DB_HOST", "localhost"),
		DBPort:              getString("DB_PORT", "5432"),
		DBUser:              getString("DB_USER", "postgres"),
		DBPassword:          os.Getenv("DB_PASSWORD"),
		DBName:              getString("DB_NAME", "rideshare"),
		DBMaxOpenConns:      getInt("DB_MAX_OPEN_CONNS", 100),
		DBMaxIdleConns:      getInt("DB_MAX_IDLE_CONNS", 25),
		DBConnMaxLifetime:   time.Duration(getInt("DB_CONN_MAX_LIFETIME_MINUTES", 60)) * time.Minute,
		DBConnectAttempts:   getInt("DB_CONNECT_ATTEMPTS", 5),
		DBConnectRetryDelay: time.Duration(getInt("DB_CONNECT_RETRY_SECONDS", 5)) * time.Second,

		RedisHost:     getString("REDIS_HOST", "localhost"),
		RedisPort:     getString("REDIS_PORT", "6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		CacheEnabled:  os.Getenv("CACHE_ENABLED") == "true",
		TripsCacheTTL: time.Duration(getInt("TRIPS_CACHE_TTL_SECONDS", 30)) * time.Second,

		JWTSecret: os.Getenv("JWT_SECRET"),
	}
}

// PostgresDSN собирает строку подключения к Postgres
func (c Config) PostgresDSN() string {
	return "host=" + c.DBHost +
		" port=" + c.DBPort +
		" user=" + c.DBUser +
		" password=" + c.DBPassword +
		" dbname=" + c.DBName +
		" sslmode=disable"
}

func getString(key, def string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return def
}

func getInt(key string, def int) int {
	if val, err := strconv.Atoi(os.Getenv(key)); err == nil && val > 0 {
		return val
	}
	return def
}
