package config

// EnvPrefix is handed to envconfig; every field carries its full name explicitly.
const EnvPrefix = "AGRIPORTAL"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	MailTransportLog  = "log"
	MailTransportSMTP = "smtp"
	MailTransportSES  = "ses"
)

const (
	EnvAppEnv     = "AGRIPORTAL_APP_ENV"
	EnvPort       = "AGRIPORTAL_APP_PORT"
	EnvDBDSN      = "AGRIPORTAL_DB_DSN"
	EnvDBHost     = "AGRIPORTAL_DB_HOST"
	EnvDBUser     = "AGRIPORTAL_DB_USER"
	EnvDBName     = "AGRIPORTAL_DB_NAME"
	EnvRedisURL   = "AGRIPORTAL_REDIS_URL"
	EnvJWTSecret  = "AGRIPORTAL_JWT_SECRET"
	EnvJWTIssuer  = "AGRIPORTAL_JWT_ISSUER"
	EnvUseSQLite  = "AGRIPORTAL_USE_SQLITE"
	EnvMailTransp = "AGRIPORTAL_MAIL_TRANSPORT"
	EnvSMTPHost   = "AGRIPORTAL_SMTP_HOST"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
