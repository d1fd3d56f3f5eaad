package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config is everything main needs to assemble the server. Loaded from the
// environment (with .env support) so tests can construct components directly
// without touching globals.
type Config struct {
	// Addr is the fiber listen address.
	Addr string
	// StoreBackend selects the ItemStore: memory, redis or postgres.
	StoreBackend string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// NATSURL enables the accepted-bid event publisher when non-empty.
	NATSURL string
}

// Load reads the environment, pulling in .env first if present.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		Addr:          getenv("SERVER_ADDR", ":9000"),
		StoreBackend:  getenv("STORE_BACKEND", "memory"),
		RedisAddr:     getenv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       getenvInt("REDIS_DB", 0),
		NATSURL:       os.Getenv("NATS_URL"),
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
