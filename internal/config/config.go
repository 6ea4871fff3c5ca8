// config.go
package config

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	MongoURI    string
	MongoDBName string
	AuthURL     string
	RabbitURL   string
	Port        string

	// Statuses whose transitions must carry a non-empty note. Shared with
	// clients so both sides enforce the same guard.
	ReasonRequiredStatuses []string

	HTTPTimeout time.Duration
}

func Load() *Config {
	// Missing .env is fine; env vars win anyway.
	_ = godotenv.Load()

	return &Config{
		MongoURI:               getEnv("MONGO_URI", "mongodb://host.docker.internal:27017"),
		MongoDBName:            getEnv("MONGO_DB_NAME", "replacement_request_db"),
		AuthURL:                getEnv("AUTH_URL", "http://host.docker.internal:3000"),
		RabbitURL:              getEnv("RABBIT_URL", "amqp://host.docker.internal"),
		Port:                   getEnv("PORT", "8080"),
		ReasonRequiredStatuses: splitList(getEnv("REASON_REQUIRED_STATUSES", "rejected,cancelled")),
		HTTPTimeout:            getDuration("HTTP_TIMEOUT", 10*time.Second),
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}

func splitList(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
