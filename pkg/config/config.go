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
	RateLimit    RateLimitConfig
	FeatureFlags FeatureFlagsConfig
	Mail         MailConfig
	Certificate  CertificateConfig
	Uploads      UploadsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(cfg.FeatureFlags.UseSQLite); err != nil {
		return nil, err
	}
	if err := cfg.Mail.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env           string `envconfig:"AGRIPORTAL_APP_ENV" required:"true"`
	Port          string `envconfig:"AGRIPORTAL_APP_PORT" required:"true"`
	PublicBaseURL string `envconfig:"AGRIPORTAL_PUBLIC_BASE_URL" default:"http://localhost:8080"`
	LogLevel      string `envconfig:"AGRIPORTAL_LOG_LEVEL" default:"info"`
	LogWarnStack  bool   `envconfig:"AGRIPORTAL_LOG_WARN_STACK" default:"false"`

	CORSOrigins []string `envconfig:"AGRIPORTAL_CORS_ORIGINS" default:"http://localhost:3000"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"AGRIPORTAL_DB_DSN"`
	Driver string `envconfig:"AGRIPORTAL_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"AGRIPORTAL_DB_HOST"`
	LegacyPort     int    `envconfig:"AGRIPORTAL_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"AGRIPORTAL_DB_USER"`
	LegacyPassword string `envconfig:"AGRIPORTAL_DB_PASSWORD"`
	LegacyName     string `envconfig:"AGRIPORTAL_DB_NAME"`
	LegacySSLMode  string `envconfig:"AGRIPORTAL_DB_SSLMODE" default:"disable"`

	SQLitePath string `envconfig:"AGRIPORTAL_SQLITE_PATH" default:"agriportal.db"`

	MaxOpenConns    int           `envconfig:"AGRIPORTAL_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"AGRIPORTAL_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"AGRIPORTAL_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"AGRIPORTAL_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"AGRIPORTAL_REDIS_URL"`
	Address      string        `envconfig:"AGRIPORTAL_REDIS_ADDR"`
	Password     string        `envconfig:"AGRIPORTAL_REDIS_PASSWORD"`
	DB           int           `envconfig:"AGRIPORTAL_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"AGRIPORTAL_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"AGRIPORTAL_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"AGRIPORTAL_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"AGRIPORTAL_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"AGRIPORTAL_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"AGRIPORTAL_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"AGRIPORTAL_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"AGRIPORTAL_JWT_EXPIRATION_MINUTES" default:"60"`
}

// RateLimitConfig throttles the unauthenticated submission endpoints.
type RateLimitConfig struct {
	SubmissionWindow     time.Duration `envconfig:"AGRIPORTAL_RATE_LIMIT_SUBMISSION_WINDOW" default:"10m"`
	SubmissionIPLimit    int           `envconfig:"AGRIPORTAL_RATE_LIMIT_SUBMISSION_IP_LIMIT" default:"30"`
	SubmissionEmailLimit int           `envconfig:"AGRIPORTAL_RATE_LIMIT_SUBMISSION_EMAIL_LIMIT" default:"5"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"AGRIPORTAL_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"AGRIPORTAL_AUTO_MIGRATE" default:"false"`
}

type MailConfig struct {
	Transport string `envconfig:"AGRIPORTAL_MAIL_TRANSPORT" default:"log"`
	FromEmail string `envconfig:"AGRIPORTAL_MAIL_FROM_EMAIL" default:"no-reply@agriportal.local"`
	FromName  string `envconfig:"AGRIPORTAL_MAIL_FROM_NAME" default:"AgriPortal Registrations"`

	SMTPHost     string        `envconfig:"AGRIPORTAL_SMTP_HOST"`
	SMTPPort     int           `envconfig:"AGRIPORTAL_SMTP_PORT" default:"587"`
	SMTPUsername string        `envconfig:"AGRIPORTAL_SMTP_USERNAME"`
	SMTPPassword string        `envconfig:"AGRIPORTAL_SMTP_PASSWORD"`
	SMTPTLS      string        `envconfig:"AGRIPORTAL_SMTP_TLS" default:"opportunistic"`
	SMTPTimeout  time.Duration `envconfig:"AGRIPORTAL_SMTP_TIMEOUT" default:"15s"`

	SESRegion string `envconfig:"AGRIPORTAL_SES_REGION" default:"ap-southeast-1"`
}

func (m MailConfig) validate() error {
	switch strings.ToLower(strings.TrimSpace(m.Transport)) {
	case MailTransportLog, MailTransportSES:
		return nil
	case MailTransportSMTP:
		if strings.TrimSpace(m.SMTPHost) == "" {
			return fmt.Errorf("%s is required when mail transport is smtp", EnvSMTPHost)
		}
		return nil
	default:
		return fmt.Errorf("unsupported mail transport %q", m.Transport)
	}
}

// TransportName returns the normalized transport identifier.
func (m MailConfig) TransportName() string {
	name := strings.ToLower(strings.TrimSpace(m.Transport))
	if name == "" {
		return MailTransportLog
	}
	return name
}

// CertificateConfig holds the institutional text printed on registration certificates.
type CertificateConfig struct {
	Country       string `envconfig:"AGRIPORTAL_CERT_COUNTRY" default:"Republic of the Philippines"`
	Department    string `envconfig:"AGRIPORTAL_CERT_DEPARTMENT" default:"Department of Agriculture"`
	Authority     string `envconfig:"AGRIPORTAL_CERT_AUTHORITY" default:"PHILIPPINE COCONUT AUTHORITY"`
	Office        string `envconfig:"AGRIPORTAL_CERT_OFFICE" default:"Regional Office"`
	Signatory     string `envconfig:"AGRIPORTAL_CERT_SIGNATORY" default:"Regional Manager"`
	NumberPrefix  string `envconfig:"AGRIPORTAL_CERT_NUMBER_PREFIX" default:"PCA"`
	ValidityYears int    `envconfig:"AGRIPORTAL_CERT_VALIDITY_YEARS" default:"1"`
}

type UploadsConfig struct {
	Dir         string `envconfig:"AGRIPORTAL_UPLOADS_DIR" default:"public/uploads"`
	PublicPath  string `envconfig:"AGRIPORTAL_UPLOADS_PUBLIC_PATH" default:"/uploads"`
	MaxUploadMB int    `envconfig:"AGRIPORTAL_MAX_UPLOAD_MB" default:"5"`
}

// MaxBytes returns the upload ceiling in bytes.
func (u UploadsConfig) MaxBytes() int64 {
	if u.MaxUploadMB <= 0 {
		return 5 << 20
	}
	return int64(u.MaxUploadMB) << 20
}

func (db *DBConfig) ensureDSN(useSQLite bool) error {
	if db.DSN != "" || useSQLite {
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
