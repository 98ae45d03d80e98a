package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerAddr string
	LogLevel   string

	DatabaseURL  string
	StoreTimeout time.Duration

	JWTAccessSecret  []byte
	JWTRefreshSecret []byte
	AccessTokenTTL   time.Duration
	RefreshTokenTTL  time.Duration
	CookieSecure     bool

	StagingDir   string
	MaxUploadMB  int
	AssetTimeout time.Duration
	FFProbePath  string

	S3 ObjectStoreConfig

	KafkaBrokers []string

	ESURL      string
	ESUser     string
	ESPassword string
	ESIndex    string

	CORSOrigins    []string
	AuthRatePerMin int
	CSRFEnabled    bool
}

type ObjectStoreConfig struct {
	Bucket        string
	Region        string
	Endpoint      string
	PublicBaseURL string
}

// Load reads .env (when present) and the process environment.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		ServerAddr: EnvDefault("SERVER_ADDR", ":8000"),
		LogLevel:   EnvDefault("LOG_LEVEL", "info"),

		DatabaseURL:  os.Getenv("DATABASE_URL"),
		StoreTimeout: EnvDurationDefault("STORE_TIMEOUT", 5*time.Second),

		JWTAccessSecret:  []byte(os.Getenv("JWT_ACCESS_SECRET")),
		JWTRefreshSecret: []byte(os.Getenv("JWT_REFRESH_SECRET")),
		AccessTokenTTL:   EnvDurationDefault("ACCESS_TOKEN_TTL", 15*time.Minute),
		RefreshTokenTTL:  EnvDurationDefault("REFRESH_TOKEN_TTL", 7*24*time.Hour),
		CookieSecure:     EnvBoolDefault("COOKIE_SECURE", true),

		StagingDir:   EnvDefault("STAGING_DIR", os.TempDir()),
		MaxUploadMB:  EnvIntDefault("MAX_UPLOAD_MB", 512),
		AssetTimeout: EnvDurationDefault("ASSET_TIMEOUT", 60*time.Second),
		FFProbePath:  os.Getenv("FFPROBE_PATH"),

		S3: ObjectStoreConfig{
			Bucket:        os.Getenv("S3_BUCKET"),
			Region:        EnvDefault("S3_REGION", "us-east-1"),
			Endpoint:      os.Getenv("S3_ENDPOINT"),
			PublicBaseURL: os.Getenv("S3_PUBLIC_BASE_URL"),
		},

		KafkaBrokers: CSV(os.Getenv("KAFKA_BROKERS")),

		ESURL:      os.Getenv("ES_URL"),
		ESUser:     os.Getenv("ES_USER"),
		ESPassword: os.Getenv("ES_PASSWORD"),
		ESIndex:    EnvDefault("ES_INDEX", "videos"),

		CORSOrigins:    CSV(EnvDefault("CORS_ORIGINS", "*")),
		AuthRatePerMin: EnvIntDefault("AUTH_RATE_PER_MIN", 30),
		CSRFEnabled:    EnvBoolDefault("CSRF_ENABLED", false),
	}
}

func CSV(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func EnvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func EnvIntDefault(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func EnvBoolDefault(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func EnvDurationDefault(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return def
	}
	return d
}
