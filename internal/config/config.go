package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	BackendCloudinary = "cloudinary"
	BackendSupabase   = "supabase"
)

type Config struct {
	// Completion API (OpenAI-compatible)
	LLMAPIKey  string
	LLMBaseURL string
	LLMModel   string

	// Image providers
	ClipDropAPIKey           string
	ClipDropBaseURL          string
	ClipDropRemoveBackground bool
	PollinationsBaseURL      string
	PicsumBaseURL            string
	ProviderTimeout          time.Duration

	// Artifact hosting
	ArtifactBackend    string
	CloudinaryURL      string
	ProbeEffects       bool
	EffectProbeTimeout time.Duration

	// Supabase
	SupabaseURL           string
	SupabaseServiceKey    string
	SupabaseJWTSecret     string
	SupabaseStorageBucket string
	RealtimeEnabled       bool

	// Database
	DatabaseURL string

	// Entitlement
	RedisURL              string
	FreeUsageLimit        int
	PremiumOnlyOperations []string

	// Rate limiting, per user
	RateLimitRPS   float64
	RateLimitBurst int

	// Upload ceilings
	MaxImageBytes int64
	MaxPDFBytes   int64

	// Server
	Port        string
	Environment string
	LogLevel    string
	ClientURL   string
	BaseURL     string
}

func Load() (*Config, error) {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	cfg := &Config{
		LLMAPIKey:  getEnv("LLM_API_KEY", ""),
		LLMBaseURL: getEnv("LLM_BASE_URL", "https://generativelanguage.googleapis.com/v1beta/openai/"),
		LLMModel:   getEnv("LLM_MODEL", "gemini-2.0-flash"),

		ClipDropAPIKey:           getEnv("CLIPDROP_API_KEY", ""),
		ClipDropBaseURL:          getEnv("CLIPDROP_BASE_URL", "https://clipdrop-api.co"),
		ClipDropRemoveBackground: getEnvBool("CLIPDROP_REMOVE_BACKGROUND", false),
		PollinationsBaseURL:      getEnv("POLLINATIONS_BASE_URL", "https://image.pollinations.ai"),
		PicsumBaseURL:            getEnv("PICSUM_BASE_URL", "https://picsum.photos"),
		ProviderTimeout:          getEnvDuration("PROVIDER_TIMEOUT", 30*time.Second),

		ArtifactBackend:    strings.ToLower(getEnv("ARTIFACT_BACKEND", BackendCloudinary)),
		CloudinaryURL:      getEnv("CLOUDINARY_URL", ""),
		ProbeEffects:       getEnvBool("PROBE_EFFECTS", true),
		EffectProbeTimeout: getEnvDuration("EFFECT_PROBE_TIMEOUT", 15*time.Second),

		SupabaseURL:           getEnv("SUPABASE_URL", ""),
		SupabaseServiceKey:    getEnv("SUPABASE_SERVICE_KEY", ""),
		SupabaseJWTSecret:     getEnv("SUPABASE_JWT_SECRET", ""),
		SupabaseStorageBucket: getEnv("SUPABASE_STORAGE_BUCKET", "creations"),
		RealtimeEnabled:       getEnvBool("REALTIME_ENABLED", false),

		DatabaseURL: getEnv("DATABASE_URL", ""),

		RedisURL:              getEnv("REDIS_URL", ""),
		FreeUsageLimit:        getEnvInt("FREE_USAGE_LIMIT", 10),
		PremiumOnlyOperations: getEnvList("PREMIUM_ONLY_OPERATIONS"),

		RateLimitRPS:   getEnvFloat("RATE_LIMIT_RPS", 2),
		RateLimitBurst: getEnvInt("RATE_LIMIT_BURST", 5),

		MaxImageBytes: int64(getEnvInt("MAX_IMAGE_BYTES", 10<<20)),
		MaxPDFBytes:   int64(getEnvInt("MAX_PDF_BYTES", 5<<20)),

		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENVIRONMENT", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		ClientURL:   getEnv("CLIENT_URL", "http://localhost:5173"),
		BaseURL:     getEnv("BASE_URL", ""),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.SupabaseJWTSecret == "" {
		return fmt.Errorf("SUPABASE_JWT_SECRET is required")
	}
	if c.LLMAPIKey == "" {
		return fmt.Errorf("LLM_API_KEY is required")
	}
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	switch c.ArtifactBackend {
	case BackendCloudinary:
		if c.CloudinaryURL == "" {
			return fmt.Errorf("CLOUDINARY_URL is required when ARTIFACT_BACKEND=cloudinary")
		}
	case BackendSupabase:
		if c.SupabaseURL == "" || c.SupabaseServiceKey == "" {
			return fmt.Errorf("SUPABASE_URL and SUPABASE_SERVICE_KEY are required when ARTIFACT_BACKEND=supabase")
		}
	default:
		return fmt.Errorf("ARTIFACT_BACKEND must be %q or %q, got %q", BackendCloudinary, BackendSupabase, c.ArtifactBackend)
	}
	if c.RealtimeEnabled && (c.SupabaseURL == "" || c.SupabaseServiceKey == "") {
		return fmt.Errorf("REALTIME_ENABLED requires SUPABASE_URL and SUPABASE_SERVICE_KEY")
	}
	if c.ProviderTimeout <= 0 {
		return fmt.Errorf("PROVIDER_TIMEOUT must be positive")
	}
	if c.FreeUsageLimit < 0 {
		return fmt.Errorf("FREE_USAGE_LIMIT must not be negative")
	}
	if c.RateLimitRPS <= 0 || c.RateLimitBurst <= 0 {
		return fmt.Errorf("RATE_LIMIT_RPS and RATE_LIMIT_BURST must be positive")
	}
	if c.MaxImageBytes <= 0 || c.MaxPDFBytes <= 0 {
		return fmt.Errorf("upload ceilings must be positive")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// Unparseable values fall back to the default; Validate catches the rest.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvList(key string) []string {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
