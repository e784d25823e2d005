package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	MongoURI       string
	PostgresURI    string
	RedisURI       string
	Port           string
	Environment    string   // ENV: production, development, etc.
	AllowedOrigins []string // CORS: from ALLOWED_ORIGINS or FRONTEND_URL

	// Redis pool sizing. Sessions, rate limiting and the entry-list cache
	// all share one client, so the pool is tuned per deployment.
	RedisPoolSize     int
	RedisMinIdleConns int

	// OpenAI-compatible completion endpoint used for entry analysis.
	// Azure flavour: base URL plus api-key header and api-version query.
	OpenAIEndpoint   string
	OpenAIAPIKey     string
	OpenAIAPIVersion string
	OpenAIModel      string
	AnalysisTimeout  time.Duration
}

func Load() *Config {
	env := strings.ToLower(strings.TrimSpace(getEnv("ENV", "development")))

	allowedOrigins := parseOrigins(getEnv("ALLOWED_ORIGINS", ""))
	if len(allowedOrigins) == 0 {
		for _, u := range []string{getEnv("FRONTEND_URL", "http://localhost:3000"), getEnv("FRONTEND_URL_2", "")} {
			u = strings.TrimSpace(u)
			if u != "" {
				allowedOrigins = append(allowedOrigins, u)
			}
		}
	}
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"http://localhost:3000"}
	}

	return &Config{
		MongoURI:          getEnv("MONGODB_URI", getEnv("MONGO_URI", "mongodb://localhost:27017/journy")),
		PostgresURI:       getEnv("POSTGRES_URI", "postgres://localhost:5432/journy?sslmode=disable"),
		RedisURI:          getEnv("REDIS_URI", "redis://localhost:6379/0"),
		RedisPoolSize:     getInt("REDIS_POOL_SIZE", 10),
		RedisMinIdleConns: getInt("REDIS_MIN_IDLE_CONNS", 5),
		Port:              getEnv("PORT", "8080"),
		Environment:       env,
		AllowedOrigins:    allowedOrigins,
		OpenAIEndpoint:    getEnv("OPEN_AI_ENDPOINT", ""),
		OpenAIAPIKey:      getEnv("OPEN_AI_API_KEY", ""),
		OpenAIAPIVersion:  getEnv("OPEN_AI_API_VERSION", "2024-02-01"),
		OpenAIModel:       getEnv("OPEN_AI_MODEL", "JOURNY-PT"),
		AnalysisTimeout:   getDuration("ANALYSIS_TIMEOUT", 60*time.Second),
	}
}

func parseOrigins(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

// IsProduction returns true when ENV is set to "production".
func (c *Config) IsProduction() bool {
	return strings.ToLower(strings.TrimSpace(c.Environment)) == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil && n > 0 {
			return n
		}
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil && d > 0 {
			return d
		}
	}
	return defaultValue
}
