package config

import (
	"os"

	"github.com/joho/godotenv"
)

// Config is everything the server reads from the environment.
type Config struct {
	Addr        string
	PoolDir     string
	PostgresDSN string
	Dev         bool
}

// Load reads .env if present, then the environment, with sane defaults.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		Addr:        getenv("ADDR", ":8080"),
		PoolDir:     getenv("POOL_DIR", "pools"),
		PostgresDSN: os.Getenv("POSTGRES_DSN"),
		Dev:         os.Getenv("DEV") == "true",
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
