package app

import (
	"context"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/go-event-driven/common/log"
	"github.com/ThreeDotsLabs/watermill/components/forwarder"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	tracesdk "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"golang.org/x/sync/errgroup"

	"eventbooking/booking"
	"eventbooking/config"
	dbLib "eventbooking/db"
	"eventbooking/http"
	"eventbooking/notification"
	"eventbooking/pubsub"
	"eventbooking/pubsub/bus"
	"eventbooking/pubsub/event"
	"eventbooking/pubsub/outbox"
	"eventbooking/ticket"
)

type NotificationSender interface {
	notification.EmailSender
	notification.SMSSender
}

type App struct {
	db              *sqlx.DB
	watermillRouter *message.Router
	forwarder       *forwarder.Forwarder
	httpServer      *http.Server
	bookingService  *booking.Service
	sweepInterval   time.Duration
	traceProvider   *tracesdk.TracerProvider
}

// OpenDB opens postgres through otelsql, so every query gets a span.
func OpenDB(postgresURL string) (*sqlx.DB, error) {
	sqlDB, err := otelsql.Open(
		"postgres",
		postgresURL,
		otelsql.WithAttributes(semconv.DBSystemPostgreSQL),
		otelsql.WithDBName("eventbooking"),
	)
	if err != nil {
		return nil, fmt.Errorf("could not open database: %w", err)
	}

	return sqlx.NewDb(sqlDB, "postgres"), nil
}

func New(
	cfg config.Config,
	db *sqlx.DB,
	redisClient *redis.Client,
	paymentGateway booking.PaymentGateway,
	files ticket.FilesStorage,
	sender NotificationSender,
	traceProvider *tracesdk.TracerProvider,
) App {
	watermillLogger := log.NewWatermill(log.FromContext(context.Background()))

	redisPublisher, err := pubsub.NewRedisPublisher(redisClient, watermillLogger)
	if err != nil {
		panic(err)
	}

	eventBus, err := bus.NewEventBus(redisPublisher)
	if err != nil {
		panic(fmt.Errorf("failed to create event bus: %w", err))
	}

	eventsRepo := dbLib.NewEventsPostgresRepository(db)
	bookingsRepo := dbLib.NewBookingsPostgresRepository(db)
	notificationsRepo := dbLib.NewNotificationsPostgresRepository(db)
	activitiesRepo := dbLib.NewActivitiesPostgresRepository(db)
	reviewsRepo := dbLib.NewReviewsPostgresRepository(db)
	dataLake := dbLib.NewDataLake(db)

	signer, err := ticket.NewSigner(cfg.TicketSigningKey)
	if err != nil {
		panic(fmt.Errorf("failed to create ticket signer: %w", err))
	}
	issuer := ticket.NewIssuer(signer, files, eventBus)

	bookingService := booking.NewService(
		eventsRepo,
		bookingsRepo,
		paymentGateway,
		issuer,
		booking.Config{
			PendingBookingTTL: cfg.PendingBookingTTL,
			ReminderWindow:    cfg.ReminderWindow,
		},
	)

	dispatcher := notification.NewDispatcher(
		notificationsRepo,
		notification.InApp{},
		notification.NewEmail(sender),
		notification.NewSMS(sender),
	)
	eventsHandler := event.NewHandler(dispatcher, activitiesRepo)
	eventProcessorConfig := event.NewProcessorConfig(redisClient, watermillLogger)

	watermillRouter, err := pubsub.NewWatermillRouter(
		redisClient,
		redisPublisher,
		eventProcessorConfig,
		eventsHandler.Handlers(),
		dataLake,
		watermillLogger,
	)
	if err != nil {
		panic(fmt.Errorf("failed to create watermill router: %w", err))
	}

	postgresSubscriber := outbox.NewPostgresSubscriber(db.DB, watermillLogger)
	outboxForwarder, err := outbox.NewForwarder(postgresSubscriber, redisPublisher, watermillLogger)
	if err != nil {
		panic(fmt.Errorf("failed to create outbox forwarder: %w", err))
	}

	httpServer := http.NewServer(
		http.Config{
			Addr:       cfg.HTTPAddr,
			JWTSecret:  cfg.JWTSecret,
			TicketsDir: cfg.TicketsDir,
		},
		eventsRepo,
		bookingsRepo,
		bookingService,
		reviewsRepo,
		issuer,
		notificationsRepo,
		activitiesRepo,
	)

	return App{
		db:              db,
		watermillRouter: watermillRouter,
		forwarder:       outboxForwarder,
		httpServer:      httpServer,
		bookingService:  bookingService,
		sweepInterval:   cfg.SweepInterval,
		traceProvider:   traceProvider,
	}
}

func (s App) Run(ctx context.Context) error {
	if err := dbLib.InitializeDatabaseSchema(s.db); err != nil {
		return fmt.Errorf("failed to initialize database schema: %w", err)
	}

	watermillLogger := log.NewWatermill(log.FromContext(ctx))
	if err := outbox.SubscribeInitialize(s.db.DB, watermillLogger); err != nil {
		return fmt.Errorf("failed to initialize outbox: %w", err)
	}

	g, ctx := errgroup.WithContext(ctx)

	if s.traceProvider != nil {
		g.Go(func() error {
			<-ctx.Done()
			return s.traceProvider.Shutdown(context.Background())
		})
	}

	g.Go(func() error {
		defer s.forwarder.Close()
		return s.forwarder.Run(ctx)
	})

	g.Go(func() error {
		return s.watermillRouter.Run(ctx)
	})

	g.Go(func() error {
		return s.bookingService.RunSweeper(ctx, s.sweepInterval)
	})

	g.Go(func() error {
		// the app is not healthy before the router is ready
		<-s.watermillRouter.Running()

		return s.httpServer.Run(ctx)
	})

	return g.Wait()
}
