package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/ThreeDotsLabs/go-event-driven/common/log"
	"github.com/jessevdk/go-flags"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"eventbooking/app"
	"eventbooking/config"
	"eventbooking/gateway"
	"eventbooking/tracing"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load(os.Args[1:], ".env")
	if err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			return
		}
		os.Exit(2)
	}

	log.Init(cfg.Level())

	traceProvider, err := tracing.ConfigureTraceProvider(cfg.JaegerEndpoint, cfg.GatewayAddr)
	if err != nil {
		logrus.WithError(err).Fatal("could not configure tracing")
	}

	db, err := app.OpenDB(cfg.PostgresURL)
	if err != nil {
		logrus.WithError(err).Fatal("could not connect to database")
	}
	defer db.Close()

	redisClient := redis.NewClient(&redis.Options{
		Addr: cfg.RedisAddr,
	})
	defer redisClient.Close()

	files, err := gateway.NewFilesClient(cfg.TicketsDir)
	if err != nil {
		logrus.WithError(err).Fatal("could not prepare tickets directory")
	}

	err = app.New(
		cfg,
		db,
		redisClient,
		gateway.NewPaymentClient(cfg.PaymentAPIURL, cfg.PaymentAPIToken),
		files,
		gateway.NewNotificationsClient(),
		traceProvider,
	).Run(ctx)
	if err != nil {
		logrus.WithError(err).Fatal("app stopped")
	}
}
