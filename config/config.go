package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
)

// Config is the whole application configuration, populated from the
// environment after godotenv has loaded any .env file.
type Config struct {
	Port        string `default:"8080"`
	DatabaseURL string `envconfig:"DATABASE_URL"`

	DBHost     string `envconfig:"DB_HOST" default:"localhost"`
	DBPort     string `envconfig:"DB_PORT" default:"5432"`
	DBUser     string `envconfig:"DB_USER" default:"postgres"`
	DBPassword string `envconfig:"DB_PASSWORD"`
	DBName     string `envconfig:"DB_NAME" default:"funiro"`

	JWTSecret     string `envconfig:"JWT_SECRET" required:"true"`
	SessionSecret string `envconfig:"SESSION_SECRET" required:"true"`
	ReportAPIKey  string `envconfig:"REPORT_API_KEY"`

	ShippingFreeThreshold decimal.Decimal `envconfig:"SHIPPING_FREE_THRESHOLD" default:"500000"`
	ShippingFlatFee       decimal.Decimal `envconfig:"SHIPPING_FLAT_FEE" default:"30000"`

	VNPay VNPayConfig `envconfig:"VNPAY"`
}

// VNPayConfig carries the gateway merchant credentials and endpoints.
type VNPayConfig struct {
	TmnCode    string `envconfig:"TMN_CODE"`
	HashSecret string `envconfig:"HASH_SECRET"`
	URL        string `envconfig:"URL" default:"https://sandbox.vnpayment.vn/paymentv2/vpcpay.html"`
	ReturnURL  string `envconfig:"RETURN_URL"`
	Locale     string `envconfig:"LOCALE" default:"vn"`
}

// DSN assembles the postgres DSN from the discrete variables when
// DATABASE_URL is not set.
func (c Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort,
	)
}

// Load reads the configuration from the environment.
func Load() (Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}
