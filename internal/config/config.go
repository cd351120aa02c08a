package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server
	Port        string
	Environment string
	BaseURL     string

	// Admin
	AdminToken     string
	AdminRateLimit float64
	AdminRateBurst int

	// Proxies whose X-Forwarded-For is believed when keying the rate limit.
	// Empty trusts none.
	TrustedProxies []string

	// Project store
	DataFile         string
	BackupDir        string
	BackupRetention  int
	DatabaseURL      string
	SnapshotSchedule string

	// Media
	UploadDir      string
	MaxUploadBytes int64

	// Gallery
	GalleryDir               string
	GalleryManifest          string
	GallerySaveRequiresAdmin bool

	// CORS
	CORSAllowedOrigins []string

	// Events
	RedisURL string

	// Supabase upload mirror
	SupabaseURL           string
	SupabaseServiceKey    string
	SupabaseStorageBucket string
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Warning: failed to load .env: %v", err)
	}

	cfg := &Config{
		Port:        getEnv("PORT", "8787"),
		Environment: getEnv("ENVIRONMENT", "development"),
		BaseURL:     getEnv("BASE_URL", "http://localhost:8787"),

		AdminToken:     strings.TrimSpace(os.Getenv("ADMIN_TOKEN")),
		AdminRateLimit: getEnvAsFloat("ADMIN_RATE_LIMIT", 5),
		AdminRateBurst: getEnvAsInt("ADMIN_RATE_BURST", 20),
		TrustedProxies: getEnvAsList("TRUSTED_PROXIES"),

		DataFile:         getEnv("DATA_FILE", "data/projects.json"),
		BackupDir:        getEnv("BACKUP_DIR", "data/backups"),
		BackupRetention:  getEnvAsInt("BACKUP_RETENTION", 20),
		DatabaseURL:      getEnv("DATABASE_URL", ""),
		SnapshotSchedule: getEnv("SNAPSHOT_SCHEDULE", ""),

		UploadDir:      getEnv("UPLOAD_DIR", "uploads"),
		MaxUploadBytes: int64(getEnvAsInt("MAX_UPLOAD_BYTES", 15<<20)),

		GalleryDir:               getEnv("GALLERY_DIR", "public/images/gallery"),
		GalleryManifest:          getEnv("GALLERY_MANIFEST", "public/gallery.json"),
		GallerySaveRequiresAdmin: getEnvAsBool("GALLERY_SAVE_REQUIRES_ADMIN", true),

		CORSAllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS"),

		RedisURL: getEnv("REDIS_URL", ""),

		SupabaseURL:           getEnv("SUPABASE_URL", ""),
		SupabaseServiceKey:    getEnv("SUPABASE_SERVICE_KEY", ""),
		SupabaseStorageBucket: getEnv("SUPABASE_STORAGE_BUCKET", "media"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT is required")
	}
	if c.DataFile == "" && c.DatabaseURL == "" {
		return fmt.Errorf("DATA_FILE or DATABASE_URL is required")
	}
	if c.BackupRetention < 1 {
		return fmt.Errorf("BACKUP_RETENTION must be at least 1")
	}
	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("MAX_UPLOAD_BYTES must be positive")
	}
	if c.AdminRateBurst < 1 {
		return fmt.Errorf("ADMIN_RATE_BURST must be at least 1")
	}
	if c.SupabaseURL != "" && c.SupabaseServiceKey == "" {
		return fmt.Errorf("SUPABASE_SERVICE_KEY is required when SUPABASE_URL is set")
	}
	return nil
}

// MirrorEnabled reports whether uploads are copied to Supabase Storage.
func (c *Config) MirrorEnabled() bool {
	return c.SupabaseURL != "" && c.SupabaseServiceKey != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		log.Printf("Warning: %s=%q is not an integer, using %d", key, value, defaultValue)
		return defaultValue
	}
	return n
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		log.Printf("Warning: %s=%q is not a number, using %g", key, value, defaultValue)
		return defaultValue
	}
	return f
}

func getEnvAsBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(strings.TrimSpace(value))
	if err != nil {
		log.Printf("Warning: %s=%q is not a boolean, using %t", key, value, defaultValue)
		return defaultValue
	}
	return b
}

func getEnvAsList(key string) []string {
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
