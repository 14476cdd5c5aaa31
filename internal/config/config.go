package config // package config loads application configuration from environment variables

import (
    "log" // log is used to report configuration errors and halt execution
    "os"  // os provides access to environment variables
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  Core values (port, database) are required and
// enforced at startup; payment, notification and admin settings are optional
// feature blocks; when one is missing only that feature refuses requests
// and the rest of the service keeps working.
type Config struct {
    Env     string // application environment (e.g. "dev", "prod")
    Port    string // HTTP port to listen on
    BaseURL string // public base URL used for payment redirect targets

    DBUser string // database username
    DBPass string // database password (optional)
    DBHost string // database host address
    DBPort string // database port number
    DBName string // database name

    StripeSecretKey     string // secret API key for the payment provider
    StripeWebhookSecret string // shared secret verifying webhook signatures

    AdminToken     string // static operator token for admin routes
    AdminTokenHash string // optional bcrypt hash of the operator token
    AdminEmail     string // operator address for order notifications

    ResendAPIKey    string // API key for the transactional mail provider
    ResendFromEmail string // sender address for outgoing mail
    PublicLogoURL   string // logo embedded in customer mail, optional
}

// Load reads configuration values from environment variables and returns a
// Config.  Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message.  Optional feature
// variables are read as-is; their absence is handled per feature at
// request time.
func Load() Config {
    return Config{
        Env:     must("APP_ENV"),  // environment (dev/test/prod)
        Port:    must("APP_PORT"), // port to bind the HTTP server
        BaseURL: getenv("BASE_URL", "http://localhost:"+os.Getenv("APP_PORT")),

        DBUser: must("DB_USER"),      // database user
        DBPass: os.Getenv("DB_PASS"), // database password (empty allowed)
        DBHost: must("DB_HOST"),      // database host
        DBPort: must("DB_PORT"),      // database port
        DBName: must("DB_NAME"),      // database name

        StripeSecretKey:     os.Getenv("STRIPE_SECRET_KEY"),
        StripeWebhookSecret: os.Getenv("STRIPE_WEBHOOK_SECRET"),

        AdminToken:     os.Getenv("ADMIN_TOKEN"),
        AdminTokenHash: os.Getenv("ADMIN_TOKEN_HASH"),
        AdminEmail:     os.Getenv("ADMIN_EMAIL"),

        ResendAPIKey:    os.Getenv("RESEND_API_KEY"),
        ResendFromEmail: os.Getenv("RESEND_FROM_EMAIL"),
        PublicLogoURL:   os.Getenv("PUBLIC_LOGO_URL"),
    }
}

// must retrieves the value of a required environment variable.  If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
    v, ok := os.LookupEnv(key)
    if !ok || v == "" {
        log.Fatalf("missing required env var: %s", key)
    }
    return v
}
