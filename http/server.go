package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	echoHTTP "github.com/ThreeDotsLabs/go-event-driven/common/http"
	"github.com/ThreeDotsLabs/go-event-driven/common/log"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"

	"eventbooking/entity"
)

type EventsRepository interface {
	Store(ctx context.Context, event entity.Event) error
	Get(ctx context.Context, eventID string) (entity.Event, error)
	ListUpcoming(ctx context.Context, now time.Time, filter entity.EventFilter) ([]entity.Event, error)
	Featured(ctx context.Context, now time.Time, limit int) ([]entity.Event, error)
	Categories(ctx context.Context) ([]string, error)
	ListAll(ctx context.Context) ([]entity.Event, error)
	ListByStatus(ctx context.Context, status entity.EventStatus) ([]entity.Event, error)
	UpdateStatus(ctx context.Context, eventID string, status entity.EventStatus) (entity.Event, error)
	Delete(ctx context.Context, eventID string, organizerID string) (entity.Event, error)
	DashboardStats(ctx context.Context, now time.Time) (entity.DashboardStats, error)
}

type BookingsRepository interface {
	ListByUser(ctx context.Context, userID string) ([]entity.Booking, error)
	ListByEvent(ctx context.Context, eventID string) ([]entity.Booking, error)
}

type ReviewsRepository interface {
	Store(ctx context.Context, review entity.Review) error
	ListByEvent(ctx context.Context, eventID string) (entity.EventReviews, error)
}

type BookingService interface {
	BookDirect(ctx context.Context, identity entity.Identity, eventID string, attendee entity.Attendee, groupSize int) (entity.Booking, error)
	StartPayment(ctx context.Context, identity entity.Identity, eventID string, attendee entity.Attendee, groupSize int) (entity.Booking, error)
	ConfirmPayment(ctx context.Context, identity entity.Identity, eventID string, providerPaymentID string, payerID string) (entity.Booking, error)
	GetTicket(ctx context.Context, identity entity.Identity, eventID string) (entity.TicketArtifact, error)
	ReclaimExpired(ctx context.Context, now time.Time) (entity.ReclaimResult, error)
	SweepBeforeRead(ctx context.Context)
}

type TicketVerifier interface {
	Verify(ctx context.Context, data []byte) (entity.TicketPayload, error)
}

type NotificationsRepository interface {
	ListByUser(ctx context.Context, userID string) ([]entity.Notification, error)
	GetPreferences(ctx context.Context, userID string) (entity.NotificationPreferences, error)
	SavePreferences(ctx context.Context, prefs entity.NotificationPreferences) error
}

type ActivitiesRepository interface {
	Store(ctx context.Context, activity entity.Activity) error
	List(ctx context.Context, page, perPage int) ([]entity.Activity, int, error)
}

type Config struct {
	Addr       string
	JWTSecret  string
	TicketsDir string
}

type Server struct {
	addr string
	e    *echo.Echo
	now  func() time.Time

	events        EventsRepository
	bookings      BookingsRepository
	bookingSvc    BookingService
	reviews       ReviewsRepository
	tickets       TicketVerifier
	notifications NotificationsRepository
	activities    ActivitiesRepository
}

func NewServer(
	config Config,
	events EventsRepository,
	bookings BookingsRepository,
	bookingSvc BookingService,
	reviews ReviewsRepository,
	tickets TicketVerifier,
	notifications NotificationsRepository,
	activities ActivitiesRepository,
) *Server {
	if config.JWTSecret == "" {
		panic("missing JWT secret")
	}
	if events == nil {
		panic("missing events")
	}
	if bookings == nil {
		panic("missing bookings")
	}
	if bookingSvc == nil {
		panic("missing bookingSvc")
	}
	if reviews == nil {
		panic("missing reviews")
	}
	if tickets == nil {
		panic("missing tickets")
	}
	if notifications == nil {
		panic("missing notifications")
	}
	if activities == nil {
		panic("missing activities")
	}

	e := echoHTTP.NewEcho()
	e.HTTPErrorHandler = errorHandler
	e.Use(otelecho.Middleware("eventbooking"))

	server := &Server{
		addr:          config.Addr,
		e:             e,
		now:           time.Now,
		events:        events,
		bookings:      bookings,
		bookingSvc:    bookingSvc,
		reviews:       reviews,
		tickets:       tickets,
		notifications: notifications,
		activities:    activities,
	}

	e.GET("/health", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	if config.TicketsDir != "" {
		e.Static("/static/tickets", config.TicketsDir)
	}

	e.GET("/", server.GetLanding)

	auth := e.Group("", authenticate(config.JWTSecret), validateIDParam)

	auth.GET("/events", server.GetEvents)
	auth.GET("/events/:id", server.GetEvent)
	auth.POST("/events", server.PostEvent, requireRole(entity.RoleOrganizer))
	auth.DELETE("/events/:id", server.DeleteOwnEvent, requireRole(entity.RoleOrganizer))
	auth.GET("/events/:id/attendees", server.GetAttendees, requireRole(entity.RoleOrganizer, entity.RoleAdmin))

	auth.GET("/events/:id/reviews", server.GetReviews)
	auth.POST("/events/:id/reviews", server.PostReview, requireRole(entity.RoleStudent))

	auth.POST("/events/:id/bookings", server.PostBooking, requireRole(entity.RoleStudent))
	auth.POST("/events/:id/payments", server.PostPayment, requireRole(entity.RoleStudent))
	auth.GET("/events/:id/payments/callback", server.GetPaymentCallback, requireRole(entity.RoleStudent))
	auth.GET("/events/:id/ticket", server.GetTicket)
	auth.POST("/tickets/verify", server.PostVerifyTicket, requireRole(entity.RoleOrganizer, entity.RoleAdmin))
	auth.GET("/bookings", server.GetBookings)

	auth.GET("/notifications", server.GetNotifications)
	auth.GET("/notification-preferences", server.GetNotificationPreferences)
	auth.PUT("/notification-preferences", server.PutNotificationPreferences)

	admin := auth.Group("/admin", requireRole(entity.RoleAdmin))
	admin.GET("/dashboard", server.GetAdminDashboard)
	admin.GET("/events", server.GetAdminEvents)
	admin.POST("/events/:id/approve", server.PostApproveEvent)
	admin.POST("/events/:id/reject", server.PostRejectEvent)
	admin.DELETE("/events/:id", server.DeleteEvent)
	admin.GET("/activity", server.GetActivity)
	admin.GET("/report", server.GetReport)
	admin.POST("/reclaim", server.PostReclaim)

	return server
}

func (s Server) Run(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		err := s.e.Shutdown(shutdownCtx)
		if err != nil {
			log.FromContext(ctx).WithError(err).Error("failed to shutdown HTTP server")
		}
	}()
	log.FromContext(ctx).WithField("addr", s.addr).Info("[HTTP] server listening")
	if err := s.e.Start(s.addr); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// ServeHTTP lets tests drive the routes without a listener.
func (s Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.e.ServeHTTP(w, r)
}

// logActivity records an audit entry. It never fails the request.
func (s Server) logActivity(c echo.Context, activityType, description string) {
	ctx := c.Request().Context()

	err := s.activities.Store(ctx, entity.Activity{
		ActivityID:   uuid.NewString(),
		UserID:       identity(c).UserID,
		ActivityType: activityType,
		Description:  description,
		IPAddress:    c.RealIP(),
		CreatedAt:    s.now().UTC(),
	})
	if err != nil {
		log.FromContext(ctx).WithError(err).Warn("Could not log activity")
	}
}
