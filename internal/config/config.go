package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Env   string
	Port  int
	DBURL string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	JWTSecret  string
	AccessTTL  time.Duration
	RefreshTTL time.Duration

	CORSOrigins []string

	// SMTP transport for confirmation/reminder mail.
	SMTPHost string
	SMTPPort int
	SMTPUser string
	SMTPPass string
	MailFrom string

	// S3 object store for event posters.
	S3Region     string
	S3Bucket     string
	S3AccessKey  string
	S3SecretKey  string
	PosterURLTTL time.Duration

	DetailCacheTTL time.Duration

	// Reminder sweep cadence and lead time.
	SweepInterval time.Duration
	ReminderLead  time.Duration
	SweepWindow   time.Duration

	// Seed superuser, created at boot when both email and password are set.
	AdminEmail    string
	AdminPassword string
	AdminUsername string

	OTLPEndpoint string
}

func Load() Config {
	// best effort; real deployments set the environment directly
	_ = godotenv.Load()

	return Config{
		Env:   getEnv("APP_ENV", "dev"),
		Port:  getEnvInt("PORT", 8080),
		DBURL: buildDBURL(),

		RedisAddr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		JWTSecret:  getEnv("JWT_SECRET", "dev-secret-change-me"),
		AccessTTL:  getEnvDuration("ACCESS_TOKEN_TTL", 15*time.Minute),
		RefreshTTL: getEnvDuration("REFRESH_TOKEN_TTL", 7*24*time.Hour),

		CORSOrigins: splitCSV(getEnv("CORS_ALLOWED_ORIGINS", "")),

		SMTPHost: getEnv("SMTP_HOST", "127.0.0.1"),
		SMTPPort: getEnvInt("SMTP_PORT", 587),
		SMTPUser: getEnv("SMTP_USER", ""),
		SMTPPass: getEnv("SMTP_PASSWORD", ""),
		MailFrom: getEnv("MAIL_FROM", "no-reply@dicoevent.com"),

		S3Region:     getEnv("S3_REGION", "ap-southeast-1"),
		S3Bucket:     getEnv("S3_BUCKET", "dicoevent-posters"),
		S3AccessKey:  getEnv("AWS_ACCESS_KEY_ID", ""),
		S3SecretKey:  getEnv("AWS_SECRET_ACCESS_KEY", ""),
		PosterURLTTL: getEnvDuration("POSTER_URL_TTL", 15*time.Minute),

		DetailCacheTTL: getEnvDuration("DETAIL_CACHE_TTL", 3600*time.Second),

		SweepInterval: getEnvDuration("REMINDER_SWEEP_INTERVAL", 15*time.Minute),
		ReminderLead:  getEnvDuration("REMINDER_LEAD", 2*time.Hour),
		SweepWindow:   getEnvDuration("REMINDER_WINDOW", 15*time.Minute),

		AdminEmail:    getEnv("ADMIN_EMAIL", ""),
		AdminPassword: getEnv("ADMIN_PASSWORD", ""),
		AdminUsername: getEnv("ADMIN_USERNAME", "admin"),

		OTLPEndpoint: getEnv("OTLP_ENDPOINT", ""),
	}
}

func buildDBURL() string {
	if url := os.Getenv("DATABASE_URL"); url != "" {
		return url
	}

	host := getEnv("DB_HOST", "127.0.0.1")
	port := getEnv("DB_PORT", "5432")
	user := getEnv("DB_USER", "dicoevent")
	pass := getEnv("DB_PASSWORD", "dicoevent")
	name := getEnv("DB_NAME", "dicoevent")
	ssl := getEnv("DB_SSLMODE", "disable")

	return "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=" + ssl
}

func WithTimeout(duration time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), duration)
}

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}

	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))

	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}

	return out
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		num, err := strconv.Atoi(v)

		if err != nil {
			fmt.Println(err)
			return fallback
		}

		return num
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		d, err := time.ParseDuration(v)

		if err != nil {
			fmt.Println(err)
			return fallback
		}

		return d
	}
	return fallback
}
