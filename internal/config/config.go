package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds application level configuration loaded from environment variables.
type Config struct {
	ServerPort string

	DBDriver    string
	DatabaseDSN string

	RedisAddr string
	RedisDB   int
	RedisPass string

	JWTSecret   string
	SwaggerHost string

	// RealtimeBroker selects how new_message events reach subscribers: "local" or "redis".
	RealtimeBroker string

	SeedOnStart bool
	ResetDB     bool

	// OrphanSweepCron is a robfig/cron spec; empty disables the sweeper.
	OrphanSweepCron string

	CORSAllowOrigins []string
}

// Load builds Config from a .env file (if present) and the environment with sensible defaults.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		ServerPort:       getEnv("SERVER_PORT", "8080"),
		DBDriver:         strings.ToLower(getEnv("DB_DRIVER", "mysql")),
		DatabaseDSN:      getEnv("DATABASE_DSN", getEnv("MYSQL_DSN", "user:password@tcp(localhost:3306)/realestate?charset=utf8mb4&parseTime=True&loc=Local")),
		RedisAddr:        getEnv("REDIS_ADDR", "localhost:6379"),
		RedisDB:          getEnvInt("REDIS_DB", 0),
		RedisPass:        os.Getenv("REDIS_PASSWORD"),
		JWTSecret:        getEnv("JWT_SECRET", "change-me"),
		SwaggerHost:      os.Getenv("SWAGGER_HOST"),
		RealtimeBroker:   strings.ToLower(getEnv("REALTIME_BROKER", "local")),
		SeedOnStart:      getEnvBool("SEED_ON_START", false),
		ResetDB:          getEnvBool("RESET_DB", false),
		OrphanSweepCron:  getEnv("ORPHAN_SWEEP_CRON", "@hourly"),
		CORSAllowOrigins: getEnvList("CORS_ALLOW_ORIGINS", []string{"*"}),
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.ParseBool(v); err == nil {
			return parsed
		}
	}
	return def
}

func getEnvList(key string, def []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}
