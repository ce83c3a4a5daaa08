package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/jessevdk/go-flags"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

type Config struct {
	HTTPAddr    string `long:"http-addr" env:"HTTP_ADDR" default:":8080" description:"HTTP listen address"`
	PostgresURL string `long:"postgres-url" env:"POSTGRES_URL" required:"true" description:"Postgres connection string"`
	RedisAddr   string `long:"redis-addr" env:"REDIS_ADDR" required:"true" description:"Redis address"`

	JWTSecret        string `long:"jwt-secret" env:"JWT_SECRET" required:"true" description:"HS256 secret of bearer tokens"`
	TicketSigningKey string `long:"ticket-signing-key" env:"TICKET_SIGNING_KEY" required:"true" description:"HMAC key of ticket payloads"`
	TicketsDir       string `long:"tickets-dir" env:"TICKETS_DIR" default:"static/tickets" description:"directory of generated ticket PDFs"`

	PaymentAPIURL   string `long:"payment-api-url" env:"PAYMENT_API_URL" default:"https://api-m.sandbox.paypal.com" description:"payment provider base URL"`
	PaymentAPIToken string `long:"payment-api-token" env:"PAYMENT_API_TOKEN" description:"payment provider bearer token"`

	SweepInterval     time.Duration `long:"sweep-interval" env:"SWEEP_INTERVAL" default:"1m" description:"how often expired events are purged, 0 disables"`
	PendingBookingTTL time.Duration `long:"pending-booking-ttl" env:"PENDING_BOOKING_TTL" default:"30m" description:"how long a gateway booking may stay unpaid, 0 disables"`
	ReminderWindow    time.Duration `long:"reminder-window" env:"REMINDER_WINDOW" default:"24h" description:"how long before an event attendees get a reminder, 0 disables"`

	JaegerEndpoint string `long:"jaeger-endpoint" env:"JAEGER_ENDPOINT" description:"Jaeger collector endpoint"`
	GatewayAddr    string `long:"gateway-addr" env:"GATEWAY_ADDR" description:"gateway address, used for Jaeger when no endpoint is set"`
	LogLevel       string `long:"log-level" env:"LOG_LEVEL" default:"info" description:"logrus level"`
}

// Load reads envFile when it exists, then parses args and the environment.
// Variables already set in the environment win over envFile.
func Load(args []string, envFile string) (Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("could not load %s: %w", envFile, err)
		}
	}

	var cfg Config
	if _, err := flags.NewParser(&cfg, flags.Default).ParseArgs(args); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c Config) Level() logrus.Level {
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return logrus.InfoLevel
	}

	return level
}
