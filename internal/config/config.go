package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	// Environment
	Environment string

	// Server
	Port        string
	FrontendURL string

	// Redis (optional; empty disables the cross-instance event fan-out)
	RedisURL string

	// Default run parameters
	ArenaWidth    float64
	ArenaHeight   float64
	DiskCount     int
	DiskRadius    float64
	MaxCoins      int
	VelocityRange float64
	Policy        string
	Normalization string
	Seed          int

	// Step loop
	StepRateHz       int
	SpeedFactor      float64
	StatsTickSeconds float64
	SnapshotRateHz   int
}

func Load() *Config {
	// Load .env file if it exists
	godotenv.Load()

	return &Config{
		// Environment
		Environment: getEnv("APP_ENV", "development"),

		// Server
		Port:        getEnv("APP_PORT", "8080"),
		FrontendURL: getEnv("FRONTEND_URL", "http://localhost:5173"),

		// Redis
		RedisURL: getEnv("REDIS_URL", ""),

		// Default run parameters (the classic 800x600 six-disk experiment)
		ArenaWidth:    getEnvFloat("ARENA_WIDTH", 800),
		ArenaHeight:   getEnvFloat("ARENA_HEIGHT", 600),
		DiskCount:     getEnvInt("DISK_COUNT", 6),
		DiskRadius:    getEnvFloat("DISK_RADIUS", 40),
		MaxCoins:      getEnvInt("MAX_COINS", 8),
		VelocityRange: getEnvFloat("VELOCITY_RANGE", 200),
		Policy:        getEnv("EXCHANGE_POLICY", "uniform_split"),
		Normalization: getEnv("STATS_NORMALIZATION", "per_disk"),
		Seed:          getEnvInt("RUN_SEED", 0),

		// Step loop
		StepRateHz:       getEnvInt("STEP_RATE_HZ", 60),
		SpeedFactor:      getEnvFloat("SPEED_FACTOR", 1.0),
		StatsTickSeconds: getEnvFloat("STATS_TICK_SECONDS", 0.1),
		SnapshotRateHz:   getEnvInt("SNAPSHOT_RATE_HZ", 10),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}
