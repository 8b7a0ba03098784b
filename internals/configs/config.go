package configs

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
	EnvTest        = "test"
)

type OSSConfig struct {
	Endpoint      string
	AccessKey     string
	SecretKey     string
	SecurityToken string
	Bucket        string
	PublicBase    string
	Prefix        string
	PresignTTL    time.Duration
}

type Config struct {
	AppEnv string
	Port   string

	DBDriver   string // postgres | sqlite
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string
	SQLitePath string

	AdminCleanSecret string

	OSS         OSSConfig
	WebPEnabled bool

	CorsOrigins    []string
	TrustedProxies []string

	SyndicationBaseURL string
	ProfileBaseURL     string
}

func (c Config) IsProduction() bool  { return c.AppEnv == EnvProduction }
func (c Config) IsDevelopment() bool { return c.AppEnv == EnvDevelopment }

// DSN builds the postgres connection string; statement_timeout matches the request timeout.
func (c Config) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s&application_name=archive&options=-c statement_timeout=5000",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName, c.DBSSLMode,
	)
}

// =======================
// ENV LOADER
// =======================

// LoadEnv reads .env (when present) and the process environment into a Config.
func LoadEnv() Config {
	if os.Getenv("RAILWAY_ENVIRONMENT") == "" {
		if err := godotenv.Load(); err != nil {
			log.Println("no .env file found, using system environment")
		}
	}

	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)

	cfg := Config{
		AppEnv: strings.ToLower(strings.TrimSpace(v.GetString("APP_ENV"))),
		Port:   v.GetString("PORT"),

		DBDriver:   strings.ToLower(v.GetString("DB_DRIVER")),
		DBHost:     v.GetString("DB_HOST"),
		DBPort:     v.GetString("DB_PORT"),
		DBUser:     v.GetString("DB_USER"),
		DBPassword: v.GetString("DB_PASSWORD"),
		DBName:     v.GetString("DB_NAME"),
		DBSSLMode:  v.GetString("DB_SSLMODE"),
		SQLitePath: v.GetString("SQLITE_PATH"),

		AdminCleanSecret: v.GetString("ADMIN_CLEAN_SECRET"),

		OSS: OSSConfig{
			Endpoint:      v.GetString("ALI_OSS_ENDPOINT"),
			AccessKey:     v.GetString("ALI_OSS_ACCESS_KEY"),
			SecretKey:     v.GetString("ALI_OSS_SECRET_KEY"),
			SecurityToken: v.GetString("ALI_OSS_SECURITY_TOKEN"),
			Bucket:        v.GetString("ALI_OSS_BUCKET"),
			PublicBase:    v.GetString("ALI_OSS_PUBLIC_BASE"),
			Prefix:        v.GetString("ALI_OSS_PREFIX"),
			PresignTTL:    v.GetDuration("ALI_OSS_PRESIGN_TTL"),
		},
		WebPEnabled: v.GetBool("IMAGE_WEBP_ENABLED"),

		CorsOrigins:    splitList(v.GetString("CORS_ORIGINS")),
		TrustedProxies: splitList(v.GetString("TRUSTED_PROXIES")),

		SyndicationBaseURL: v.GetString("SYNDICATION_BASE_URL"),
		ProfileBaseURL:     v.GetString("PROFILE_BASE_URL"),
	}
	if cfg.AppEnv == "" {
		cfg.AppEnv = EnvProduction
	}
	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_ENV", EnvProduction)
	v.SetDefault("PORT", "3000")
	v.SetDefault("DB_DRIVER", "postgres")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_SSLMODE", "require")
	v.SetDefault("SQLITE_PATH", "archive.db")
	v.SetDefault("ALI_OSS_PREFIX", "uploads")
	v.SetDefault("ALI_OSS_PRESIGN_TTL", 15*time.Minute)
	v.SetDefault("IMAGE_WEBP_ENABLED", false)
	v.SetDefault("CORS_ORIGINS", "http://localhost:5173,http://localhost:3000")
	v.SetDefault("TRUSTED_PROXIES", "")
	v.SetDefault("SYNDICATION_BASE_URL", "https://cdn.syndication.twimg.com")
	v.SetDefault("PROFILE_BASE_URL", "https://syndication.twitter.com")
}

func splitList(raw string) []string {
	out := make([]string, 0)
	for _, p := range strings.Split(raw, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
