package config

import "log"

func MustNonEmpty(value, envName string) {
	if value == "" {
		log.Fatalf("missing required env %s", envName)
	}
}

func MustNonEmptyBytes(value []byte, envName string) {
	if len(value) == 0 {
		log.Fatalf("missing required env %s", envName)
	}
}

// MustValid stops the process on settings that cannot work together.
func (c Config) MustValid() {
	MustNonEmpty(c.DatabaseURL, "DATABASE_URL")
	MustNonEmptyBytes(c.JWTAccessSecret, "JWT_ACCESS_SECRET")
	MustNonEmptyBytes(c.JWTRefreshSecret, "JWT_REFRESH_SECRET")
	MustNonEmpty(c.S3.Bucket, "S3_BUCKET")
	if string(c.JWTAccessSecret) == string(c.JWTRefreshSecret) {
		log.Fatalf("JWT_ACCESS_SECRET and JWT_REFRESH_SECRET must differ")
	}
}
