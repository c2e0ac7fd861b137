package config

import (
	"fmt"
	"math"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	// EnvPrefix namespaces every environment variable the service reads.
	EnvPrefix = "RECLAIM"

	AppEnvDev  = "development"
	AppEnvProd = "production"
)

// Environment variable names used outside struct tags (tests, error text).
const (
	EnvAppEnv    = "RECLAIM_APP_ENV"
	EnvPort      = "RECLAIM_APP_PORT"
	EnvDBDSN     = "RECLAIM_DB_DSN"
	EnvDBHost    = "RECLAIM_DB_HOST"
	EnvDBUser    = "RECLAIM_DB_USER"
	EnvDBName    = "RECLAIM_DB_NAME"
	EnvRedisURL  = "RECLAIM_REDIS_URL"
	EnvJWTSecret = "RECLAIM_JWT_SECRET"
	EnvJWTIssuer = "RECLAIM_JWT_ISSUER"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	SMTP          SMTPConfig
	Matching      MatchingConfig
	FeatureFlags  FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	if err := cfg.Matching.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"RECLAIM_APP_ENV" required:"true"`
	Port         string `envconfig:"RECLAIM_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"RECLAIM_LOG_LEVEL" default:"info"`
	LogFormat    string `envconfig:"RECLAIM_LOG_FORMAT" default:"json"`
	LogWarnStack bool   `envconfig:"RECLAIM_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN string `envconfig:"RECLAIM_DB_DSN"`

	LegacyHost     string `envconfig:"RECLAIM_DB_HOST"`
	LegacyPort     int    `envconfig:"RECLAIM_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"RECLAIM_DB_USER"`
	LegacyPassword string `envconfig:"RECLAIM_DB_PASSWORD"`
	LegacyName     string `envconfig:"RECLAIM_DB_NAME"`
	LegacySSLMode  string `envconfig:"RECLAIM_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"RECLAIM_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"RECLAIM_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"RECLAIM_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"RECLAIM_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"RECLAIM_REDIS_URL" required:"true"`
	Address      string        `envconfig:"RECLAIM_REDIS_ADDR"`
	Password     string        `envconfig:"RECLAIM_REDIS_PASSWORD"`
	DB           int           `envconfig:"RECLAIM_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"RECLAIM_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"RECLAIM_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"RECLAIM_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"RECLAIM_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"RECLAIM_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"RECLAIM_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"RECLAIM_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"RECLAIM_JWT_EXPIRATION_MINUTES" default:"60"`
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"RECLAIM_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"RECLAIM_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"RECLAIM_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"RECLAIM_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"RECLAIM_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"RECLAIM_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit    int           `envconfig:"RECLAIM_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"RECLAIM_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"RECLAIM_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit int           `envconfig:"RECLAIM_AUTH_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"RECLAIM_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

type SMTPConfig struct {
	Host          string        `envconfig:"RECLAIM_SMTP_HOST"`
	Port          int           `envconfig:"RECLAIM_SMTP_PORT" default:"587"`
	Username      string        `envconfig:"RECLAIM_SMTP_USERNAME"`
	Password      string        `envconfig:"RECLAIM_SMTP_PASSWORD"`
	From          string        `envconfig:"RECLAIM_SMTP_FROM"`
	DialTimeout   time.Duration `envconfig:"RECLAIM_SMTP_DIAL_TIMEOUT" default:"10s"`
	SkipTLSVerify bool          `envconfig:"RECLAIM_SMTP_SKIP_TLS_VERIFY" default:"false"`
}

// MatchingConfig carries every knob the matching engine reads. The weights
// form a convex combination over the compared item fields.
type MatchingConfig struct {
	Threshold         float64       `envconfig:"RECLAIM_MATCH_THRESHOLD" default:"0.70"`
	WindowDays        int           `envconfig:"RECLAIM_MATCH_WINDOW_DAYS" default:"7"`
	SendMatchEmails   bool          `envconfig:"RECLAIM_SEND_MATCH_EMAILS" default:"false"`
	LocationWeight    float64       `envconfig:"RECLAIM_MATCH_WEIGHT_LOCATION" default:"0.30"`
	CategoryWeight    float64       `envconfig:"RECLAIM_MATCH_WEIGHT_CATEGORY" default:"0.20"`
	SubcategoryWeight float64       `envconfig:"RECLAIM_MATCH_WEIGHT_SUBCATEGORY" default:"0.15"`
	DescriptionWeight float64       `envconfig:"RECLAIM_MATCH_WEIGHT_DESCRIPTION" default:"0.35"`
	PairLockTTL       time.Duration `envconfig:"RECLAIM_MATCH_PAIR_LOCK_TTL" default:"10s"`
}

// Validate rejects weight tables that do not sum to 1.0 and out-of-range knobs.
func (m MatchingConfig) Validate() error {
	if m.Threshold < 0 || m.Threshold > 1 {
		return fmt.Errorf("match threshold must be within [0,1], got %v", m.Threshold)
	}
	if m.WindowDays <= 0 {
		return fmt.Errorf("match window days must be positive, got %d", m.WindowDays)
	}
	sum := m.LocationWeight + m.CategoryWeight + m.SubcategoryWeight + m.DescriptionWeight
	if math.Abs(sum-1.0) > 1e-9 {
		return fmt.Errorf("match field weights must sum to 1.0, got %v", sum)
	}
	return nil
}

// Window returns the candidate retrieval window as a duration.
func (m MatchingConfig) Window() time.Duration {
	return time.Duration(m.WindowDays) * 24 * time.Hour
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"RECLAIM_AUTO_MIGRATE" default:"false"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
