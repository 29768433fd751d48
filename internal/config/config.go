package config // package config loads application configuration from environment variables

import (
	"log"
	"os"
	"strconv"
)

// Config holds all runtime configuration values.  Each field
// corresponds to an environment variable.  Admin fields are optional:
// when unset, lifecycle events skip the admin alert entirely.
type Config struct {
	Env       string // application environment (e.g. "dev", "prod")
	Port      string // HTTP port to listen on
	DBUser    string // database username
	DBPass    string // database password (optional)
	DBHost    string // database host address
	DBPort    string // database port number
	DBName    string // database name
	JWTSecret string // secret used to sign JWTs

	DBMaxOpenConns int // optional pool cap (0 = database package default)
	DBMaxIdleConns int // optional idle pool size (0 = database package default)

	AccessTTLMin int // access token time-to-live in minutes
	BcryptCost   int // bcrypt cost for password hashing

	MailerSendAPIKey string // MailerSend API key for the message channel
	MailFromName     string // sender display name on outgoing mail
	MailFromEmail    string // sender address on outgoing mail

	AdminUserID uint64 // optional admin recipient user id (0 = none)
	AdminEmail  string // optional admin recipient address
	AdminName   string // optional admin recipient display name
}

// Load reads configuration values from environment variables and
// returns a Config.  Required variables are enforced by must() and
// missing values cause the program to exit with a fatal log message.
func Load() Config {
	return Config{
		Env:       must("APP_ENV"),
		Port:      must("APP_PORT"),
		DBUser:    must("DB_USER"),
		DBPass:    os.Getenv("DB_PASS"), // empty allowed
		DBHost:    must("DB_HOST"),
		DBPort:    must("DB_PORT"),
		DBName:    must("DB_NAME"),
		JWTSecret: must("JWT_SECRET"),

		DBMaxOpenConns: optInt("DB_MAX_OPEN_CONNS"),
		DBMaxIdleConns: optInt("DB_MAX_IDLE_CONNS"),

		AccessTTLMin: mustInt("ACCESS_TOKEN_TTL_MIN"),
		BcryptCost:   mustInt("BCRYPT_COST"),

		MailerSendAPIKey: must("MAILERSEND_API_KEY"),
		MailFromName:     must("MAIL_FROM_NAME"),
		MailFromEmail:    must("MAIL_FROM_EMAIL"),

		AdminUserID: optUint("ADMIN_USER_ID"),
		AdminEmail:  os.Getenv("ADMIN_EMAIL"),
		AdminName:   os.Getenv("ADMIN_NAME"),
	}
}

// must retrieves the value of a required environment variable.  If
// the variable is unset or empty, the application logs a fatal error
// and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

// mustInt is like must() but converts the retrieved string into an
// integer.  If conversion fails, the application logs a fatal error
// and exits.
func mustInt(key string) int {
	s := must(key)
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, s)
	}
	return n
}

// optInt parses an optional integer variable, returning 0 when unset.
// An unparsable value is fatal rather than silently ignored.
func optInt(key string) int {
	s := os.Getenv(key)
	if s == "" {
		return 0
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, s)
	}
	return n
}

// optUint parses an optional unsigned integer variable, returning 0
// when unset.  An unparsable value is fatal rather than silently
// ignored.
func optUint(key string) uint64 {
	s := os.Getenv(key)
	if s == "" {
		return 0
	}
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		log.Fatalf("invalid uint for %s: %q", key, s)
	}
	return n
}
