package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	FeatureFlags FeatureFlagsConfig
	GCP          GCPConfig
	PubSub       PubSubConfig
	Stripe       StripeConfig
	BankTransfer BankTransferConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"GIGBOARD_APP_ENV" required:"true"`
	Port         string `envconfig:"GIGBOARD_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"GIGBOARD_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"GIGBOARD_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"GIGBOARD_DB_DSN"`
	Driver string `envconfig:"GIGBOARD_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"GIGBOARD_DB_HOST"`
	LegacyPort     int    `envconfig:"GIGBOARD_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"GIGBOARD_DB_USER"`
	LegacyPassword string `envconfig:"GIGBOARD_DB_PASSWORD"`
	LegacyName     string `envconfig:"GIGBOARD_DB_NAME"`
	LegacySSLMode  string `envconfig:"GIGBOARD_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"GIGBOARD_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"GIGBOARD_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"GIGBOARD_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"GIGBOARD_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"GIGBOARD_REDIS_URL" required:"true"`
	Address      string        `envconfig:"GIGBOARD_REDIS_ADDR"`
	Password     string        `envconfig:"GIGBOARD_REDIS_PASSWORD"`
	DB           int           `envconfig:"GIGBOARD_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"GIGBOARD_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"GIGBOARD_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"GIGBOARD_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"GIGBOARD_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"GIGBOARD_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"GIGBOARD_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"GIGBOARD_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"GIGBOARD_JWT_EXPIRATION_MINUTES" default:"60"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"GIGBOARD_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"GIGBOARD_AUTO_MIGRATE" default:"false"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"GIGBOARD_GCP_PROJECT_ID"`
	CredentialsJSON        string `envconfig:"GIGBOARD_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"GIGBOARD_GOOGLE_APPLICATION_CREDENTIALS"`
}

type PubSubConfig struct {
	NotificationTopic string `envconfig:"GIGBOARD_PUBSUB_NOTIFICATION_TOPIC" default:"gb-notification-events"`
}

type StripeConfig struct {
	APIKey  string        `envconfig:"GIGBOARD_STRIPE_API_KEY"`
	Env     string        `envconfig:"GIGBOARD_STRIPE_ENV" default:"test"`
	Timeout time.Duration `envconfig:"GIGBOARD_STRIPE_TIMEOUT" default:"15s"`
}

// Environment returns the normalized Stripe environment (test/live).
func (s StripeConfig) Environment() string {
	env := strings.TrimSpace(strings.ToLower(s.Env))
	if env == "" {
		return "test"
	}
	return env
}

// BankTransferConfig toggles the optional integrity checks on bank-transfer
// payment submissions. Both default to off to match the behavior the product
// shipped with; flip them once the policy decision lands.
type BankTransferConfig struct {
	RequireBuyerMatch  bool `envconfig:"GIGBOARD_BANK_REQUIRE_BUYER_MATCH" default:"false"`
	RequireAmountMatch bool `envconfig:"GIGBOARD_BANK_REQUIRE_AMOUNT_MATCH" default:"false"`
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
