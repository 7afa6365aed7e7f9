package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port           string
	LogMode        string
	DatabaseURL    string
	GatewayToken   string
	AllowedOrigins []string
	RedisURL       string

	R2AccountID    string
	R2AccessKey    string
	R2AccessSecret string
	R2Bucket       string
	CDNBaseURL     string

	CompletionBaseURL string
	CompletionAPIKey  string
	CompletionModel   string
	GIFBaseURL        string
	GIFAPIKey         string
	GIFSearchTerm     string

	ProfileSyncURL  string
	ProfileSyncPath string
	AuthServiceURL  string

	PointsPerModule      int64
	ChallengeBonusPoints int64
	RankInterval         time.Duration
}

// Load reads .env (if present) and the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading environment variables directly")
	}

	cfg := &Config{
		Port:           getEnv("PORT", "5200"),
		LogMode:        getEnv("LOG_MODE", "dev"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		GatewayToken:   os.Getenv("GATEWAY_SERVICE_TOKEN"),
		AllowedOrigins: splitList(getEnv("ALLOWED_ORIGINS", "http://localhost:3000")),
		RedisURL:       getEnv("REDIS_URL", "redis://localhost:6379/0"),

		R2AccountID:    os.Getenv("CLOUDFLARE_ACCOUNT_ID"),
		R2AccessKey:    os.Getenv("R2_ACCESS_KEY_ID"),
		R2AccessSecret: os.Getenv("R2_ACCESS_KEY_SECRET"),
		R2Bucket:       os.Getenv("R2_BUCKET_NAME"),
		CDNBaseURL:     os.Getenv("CDN_BASE_URL"),

		CompletionBaseURL: getEnv("COMPLETION_BASE_URL", "https://api.openai.com/v1"),
		CompletionAPIKey:  os.Getenv("COMPLETION_API_KEY"),
		CompletionModel:   getEnv("COMPLETION_MODEL", "gpt-4o-mini"),
		GIFBaseURL:        getEnv("GIF_BASE_URL", "https://api.giphy.com"),
		GIFAPIKey:         os.Getenv("GIF_API_KEY"),
		GIFSearchTerm:     getEnv("GIF_SEARCH_TERM", "nigerian comedy"),

		ProfileSyncURL:  os.Getenv("PROFILE_SYNC_URL"),
		ProfileSyncPath: getEnv("PROFILE_SYNC_PATH", "/api/v1/public/profiles"),
		AuthServiceURL:  os.Getenv("AUTH_SERVICE_URL"),
	}

	var err error
	if cfg.PointsPerModule, err = getInt64("POINTS_PER_MODULE", 100); err != nil {
		return nil, err
	}
	if cfg.ChallengeBonusPoints, err = getInt64("CHALLENGE_BONUS_POINTS", 1000); err != nil {
		return nil, err
	}
	if cfg.RankInterval, err = getDuration("RANK_INTERVAL", time.Minute); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate reports the first missing required setting.
func (c *Config) Validate() error {
	required := []struct{ key, value string }{
		{"DATABASE_URL", c.DatabaseURL},
		{"GATEWAY_SERVICE_TOKEN", c.GatewayToken},
		{"CLOUDFLARE_ACCOUNT_ID", c.R2AccountID},
		{"R2_BUCKET_NAME", c.R2Bucket},
	}
	for _, r := range required {
		if r.value == "" {
			return fmt.Errorf("%s environment variable not set", r.key)
		}
	}
	// CORS runs with credentials, which cannot be combined with a wildcard origin
	for _, origin := range c.AllowedOrigins {
		if strings.Contains(origin, "*") {
			return fmt.Errorf("ALLOWED_ORIGINS must list explicit origins, got %q", origin)
		}
	}
	if c.PointsPerModule <= 0 || c.ChallengeBonusPoints <= 0 {
		return fmt.Errorf("point amounts must be positive")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists && strings.TrimSpace(value) != "" {
		return strings.TrimSpace(value)
	}
	return defaultValue
}

func getInt64(key string, defaultValue int64) (int64, error) {
	raw := getEnv(key, "")
	if raw == "" {
		return defaultValue, nil
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	return n, nil
}

func getDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	raw := getEnv(key, "")
	if raw == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	return d, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
