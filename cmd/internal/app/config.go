package app

import (
	"strings"
	"time"
)

// Config contains all runtime configuration loaded from environment variables.
type Config struct {
	HTTPAddr string
	LogLevel string

	ReadHeaderTimeout time.Duration
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	MaxHeaderBytes    int

	// DatabaseURL is required; the server refuses to start without Postgres.
	DatabaseURL string
	DBMaxConns  int32
	DBMinConns  int32
	DBSchema    string

	// RequireTokenHMAC makes startup fail unless refresh-token digests are
	// keyed with PICHUB_TOKEN_HMAC_KEY.
	RequireTokenHMAC bool

	// Cross-origin policy for browser clients. An empty origin list
	// disables CORS handling entirely.
	CORSAllowedOrigins   []string
	CORSAllowCredentials bool
	CORSMaxAgeSeconds    int

	// S3 asset host settings.
	S3Region       string
	S3AccessKey    string
	S3SecretKey    string
	S3Bucket       string
	S3BaseEndpoint string
	S3PublicURL    string
}

// LoadConfig loads Config from environment variables with defaults.
func LoadConfig() Config {
	return Config{
		HTTPAddr: EnvString("PICHUB_HTTP_ADDR", "0.0.0.0:8080"),
		LogLevel: EnvString("PICHUB_LOG_LEVEL", "info"),

		ReadHeaderTimeout: EnvDuration("PICHUB_HTTP_READ_HEADER_TIMEOUT", 5*time.Second),
		ReadTimeout:       EnvDuration("PICHUB_HTTP_READ_TIMEOUT", 30*time.Second),
		WriteTimeout:      EnvDuration("PICHUB_HTTP_WRITE_TIMEOUT", 30*time.Second),
		IdleTimeout:       EnvDuration("PICHUB_HTTP_IDLE_TIMEOUT", 60*time.Second),

		MaxHeaderBytes: EnvInt("PICHUB_HTTP_MAX_HEADER_BYTES", 1<<20),

		DatabaseURL: EnvString("PICHUB_DATABASE_URL", ""),
		DBMaxConns:  EnvInt32("PICHUB_DB_MAX_CONNS", 10),
		DBMinConns:  EnvInt32("PICHUB_DB_MIN_CONNS", 0),
		DBSchema:    EnvString("PICHUB_DB_SCHEMA", "pichub"),

		RequireTokenHMAC: EnvBool("PICHUB_REQUIRE_TOKEN_HMAC", false),

		CORSAllowedOrigins:splitList(EnvString("PICHUB_CORS_ORIGINS", "")),
		CORSAllowCredentials: EnvBool("PICHUB_CORS_ALLOW_CREDENTIALS", true),
		CORSMaxAgeSeconds:    EnvInt("PICHUB_CORS_MAX_AGE_SECONDS", 600),

		S3Region:      EnvString("PICHUB_S3_REGION", "us-east-1"),
		S3AccessKey:    EnvString("PICHUB_S3_ACCESS_KEY", ""),
		S3SecretKey:    EnvString("PICHUB_S3_SECRET_KEY", ""),
		S3Bucket:       EnvString("PICHUB_S3_BUCKET", ""),
		S3BaseEndpoint: EnvString("PICHUB_S3_BASE_ENDPOINT", ""),
		S3PublicURL:    EnvString("PICHUB_S3_PUBLIC_URL", ""),
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
