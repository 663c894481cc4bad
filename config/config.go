package config

import (
	"os"
	"strconv"
	"strings"
)

type Config struct {
	Port           string
	FrontendOrigin string

	Database DatabaseConfig
	JWT      JWTConfig
	Upload   UploadConfig
	Redis    RedisConfig
	S3       S3Config
	SMTP     SMTPConfig

	RateLimitRPS   int
	RateLimitBurst int
}

type DatabaseConfig struct {
	URL      string
	Host     string
	User     string
	Password string
	Name     string
	Port     string
}

type JWTConfig struct {
	Secret string
}

type UploadConfig struct {
	// Backend is "local" or "s3".
	Backend      string
	Dir          string
	MaxFileSize  int64
	MaxFiles     int
	AllowedMIMEs []string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// S3Config covers any S3-compatible object store (AWS S3, Cloudflare R2).
type S3Config struct {
	AccountID       string
	AccessKeyID     string
	SecretAccessKey string
	BucketName      string
	PublicURL       string
	Region          string
}

type SMTPConfig struct {
	Host string
	Port string
	User string
	Pass string
	From string
}

func Load() *Config {
	return &Config{
		Port:           getEnv("PORT", "8080"),
		FrontendOrigin: getEnv("FRONTEND_ORIGIN", "*"),
		Database: DatabaseConfig{
			URL:      os.Getenv("DATABASE_URL"),
			Host:     getEnv("DB_HOST", "localhost"),
			User:     getEnv("DB_USER", "postgres"),
			Password: os.Getenv("DB_PASSWORD"),
			Name:     getEnv("DB_NAME", "aquasentra"),
			Port:     getEnv("DB_PORT", "5432"),
		},
		JWT: JWTConfig{
			Secret: os.Getenv("JWT_SECRET"),
		},
		Upload: UploadConfig{
			Backend:      getEnv("UPLOAD_BACKEND", "local"),
			Dir:          getEnv("UPLOAD_DIR", "./uploads"),
			MaxFileSize:  getEnvInt64("MAX_FILE_SIZE", 10*1024*1024),
			MaxFiles:     getEnvInt("MAX_FILES_PER_REPORT", 5),
			AllowedMIMEs: getEnvList("ALLOWED_MIME_TYPES", "image/jpeg,image/png,image/webp,video/mp4"),
		},
		Redis: RedisConfig{
			Addr:     os.Getenv("REDIS_ADDR"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		S3: S3Config{
			AccountID:       os.Getenv("S3_ACCOUNT_ID"),
			AccessKeyID:     os.Getenv("S3_ACCESS_KEY_ID"),
			SecretAccessKey: os.Getenv("S3_SECRET_ACCESS_KEY"),
			BucketName:      os.Getenv("S3_BUCKET_NAME"),
			PublicURL:       os.Getenv("S3_PUBLIC_URL"),
			Region:          getEnv("S3_REGION", "auto"),
		},
		SMTP: SMTPConfig{
			Host: os.Getenv("SMTP_HOST"),
			Port: getEnv("SMTP_PORT", "587"),
			User: os.Getenv("SMTP_USER"),
			Pass: os.Getenv("SMTP_PASS"),
			From: getEnv("SMTP_FROM", "no-reply@aquasentra.local"),
		},
		RateLimitRPS:   getEnvInt("RATE_LIMIT_RPS", 20),
		RateLimitBurst: getEnvInt("RATE_LIMIT_BURST", 40),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvList(key, fallback string) []string {
	raw := getEnv(key, fallback)
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
