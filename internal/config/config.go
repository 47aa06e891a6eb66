package config

import (
	"errors"
	"fmt"
)

// Currency is the only currency the storefront charges in.
const Currency = "GBP"

type Config struct {
	Environment Environment
	Log         Log
	HTTP        HTTPServer
	Database    Database
	FrontendURL string `env:"FRONTEND_URL" envDefault:"http://localhost:5173"`
	AdminEmail  string `env:"ADMIN_EMAIL"`

	Auth     Auth
	Paypal   Paypal   `envPrefix:"PAYPAL_"`
	SMTP     SMTP     `envPrefix:"SMTP_"`
	Shipping Shipping
	Invoice  Invoice  `envPrefix:"INVOICE_"`
}

type Paypal struct {
	BaseApiURL   string `env:"BASE_API_URL" envDefault:"https://api-m.sandbox.paypal.com"`
	ClientID     string `env:"CLIENT_ID"`
	ClientSecret string `env:"CLIENT_SECRET"`
	BrandName    string `env:"BRAND_NAME" envDefault:"YourStore"`
}

type SMTP struct {
	Host     string `env:"HOST" envDefault:"smtp.gmail.com"`
	Port     int    `env:"PORT" envDefault:"465"`
	Email    string `env:"EMAIL"`
	Password string `env:"PASSWORD"`
}

type Auth struct {
	JWTSecret string `env:"JWT_SECRET"`
}

// Shipping holds the per-kg rates. FallbackWeightKg is charged for products
// stored without a weight.
type Shipping struct {
	UKStandardRatePerKg    float64 `env:"UK_STANDARD_RATE_PER_KG" envDefault:"4.99"`
	UKNextDayRatePerKg     float64 `env:"UK_NEXT_DAY_RATE_PER_KG" envDefault:"8.99"`
	InternationalRatePerKg float64 `env:"INTERNATIONAL_RATE_PER_KG" envDefault:"9.99"`
	FreeShippingThreshold  float64 `env:"FREE_SHIPPING_THRESHOLD" envDefault:"100"`
	FallbackWeightKg       float64 `env:"FALLBACK_WEIGHT_KG" envDefault:"0.5"`
}

type Invoice struct {
	Dir string `env:"DIR" envDefault:"./invoices"`
}

type Database struct {
	Driver string `env:"DB_DRIVER" envDefault:"sqlite"`
	URL    string `env:"DATABASE_URL" envDefault:"storefront.db"`
}

type Environment struct {
	Name string `env:"ENVIRONMENT" envDefault:"development"`
}

type Log struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"json"`
}

type HTTPServer struct {
	Host string `env:"HTTP_HOST" envDefault:"0.0.0.0"`
	Port string `env:"HTTP_PORT" envDefault:"4000"`
}

func (c *Config) Validate() error {
	if c.Auth.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}

	switch c.Database.Driver {
	case "sqlite", "mysql", "postgres":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.Database.Driver)
	}

	s := c.Shipping
	if s.UKStandardRatePerKg < 0 || s.UKNextDayRatePerKg < 0 || s.InternationalRatePerKg < 0 {
		return errors.New("shipping rates must not be negative")
	}
	if s.FreeShippingThreshold < 0 || s.FallbackWeightKg < 0 {
		return errors.New("shipping threshold and fallback weight must not be negative")
	}

	return nil
}
