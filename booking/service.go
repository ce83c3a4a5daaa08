package booking

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ThreeDotsLabs/go-event-driven/common/log"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/trace"

	"eventbooking/entity"
	"eventbooking/metrics"
)

// settleTimeout bounds confirming or failing a booking once the payment
// provider was called.
const settleTimeout = 30 * time.Second

type EventsRepository interface {
	Get(ctx context.Context, eventID string) (entity.Event, error)
	DeleteExpired(ctx context.Context, now time.Time) (entity.SweepResult, error)
}

type BookingsRepository interface {
	Create(ctx context.Context, booking entity.Booking, now time.Time) (entity.Booking, error)
	Confirm(ctx context.Context, bookingID string, paymentID string, now time.Time) (entity.Booking, error)
	Fail(ctx context.Context, bookingID string, reason string, now time.Time) (entity.Booking, error)
	FindLatestByUserAndEvent(ctx context.Context, userID, eventID string) (entity.Booking, error)
	FindStalePending(ctx context.Context, olderThan time.Time) ([]entity.Booking, error)
	ClaimReminders(ctx context.Context, now time.Time, window time.Duration) (int, error)
}

type PaymentGateway interface {
	FindPayment(ctx context.Context, ref string) (entity.PaymentHandle, error)
	ExecutePayment(ctx context.Context, handle entity.PaymentHandle, payerID string) (bool, error)
}

type TicketIssuer interface {
	Issue(ctx context.Context, booking entity.Booking, event entity.Event) (entity.TicketArtifact, error)
}

type Config struct {
	// PendingBookingTTL is how long a gateway booking may stay pending before
	// the sweeper fails it. Zero keeps pending bookings forever.
	PendingBookingTTL time.Duration

	// ReminderWindow is how long before an event its attendees are reminded.
	// Zero disables reminders.
	ReminderWindow time.Duration

	Now func() time.Time
}

type Service struct {
	events   EventsRepository
	bookings BookingsRepository
	payments PaymentGateway
	issuer   TicketIssuer

	pendingBookingTTL time.Duration
	reminderWindow    time.Duration
	now               func() time.Time
}

func NewService(
	events EventsRepository,
	bookings BookingsRepository,
	payments PaymentGateway,
	issuer TicketIssuer,
	config Config,
) *Service {
	if events == nil {
		panic("missing events")
	}
	if bookings == nil {
		panic("missing bookings")
	}
	if payments == nil {
		panic("missing payments")
	}
	if issuer == nil {
		panic("missing issuer")
	}

	now := config.Now
	if now == nil {
		now = time.Now
	}

	return &Service{
		events:            events,
		bookings:          bookings,
		payments:          payments,
		issuer:            issuer,
		pendingBookingTTL: config.PendingBookingTTL,
		reminderWindow:    config.ReminderWindow,
		now:               now,
	}
}

// BookDirect books without the payment gateway. The booking is created as
// succeeded together with the seat reservation.
func (s *Service) BookDirect(
	ctx context.Context,
	identity entity.Identity,
	eventID string,
	attendee entity.Attendee,
	groupSize int,
) (entity.Booking, error) {
	return s.createBooking(ctx, identity, eventID, attendee, groupSize, entity.PaymentStatusSucceeded)
}

// StartPayment reserves the seats and leaves the booking pending until the
// gateway callback confirms it.
func (s *Service) StartPayment(
	ctx context.Context,
	identity entity.Identity,
	eventID string,
	attendee entity.Attendee,
	groupSize int,
) (entity.Booking, error) {
	return s.createBooking(ctx, identity, eventID, attendee, groupSize, entity.PaymentStatusPending)
}

func (s *Service) createBooking(
	ctx context.Context,
	identity entity.Identity,
	eventID string,
	attendee entity.Attendee,
	groupSize int,
	status entity.PaymentStatus,
) (entity.Booking, error) {
	path := "direct"
	paymentID := entity.NewDirectPaymentID()
	if status == entity.PaymentStatusPending {
		path = "gateway"
		paymentID = entity.NewPendingPaymentID()
	}

	if err := identity.RequireRole(entity.RoleStudent); err != nil {
		return entity.Booking{}, s.rejected(err)
	}
	if err := attendee.Validate(); err != nil {
		return entity.Booking{}, s.rejected(err)
	}

	now := s.now().UTC()
	booking := entity.Booking{
		BookingID:     uuid.NewString(),
		UserID:        identity.UserID,
		EventID:       eventID,
		GroupSize:     groupSize,
		Attendee:      attendee.Normalize(),
		PaymentStatus: status,
		PaymentID:     paymentID,
		BookingDate:   now,
		UpdatedAt:     now,
	}

	booking, err := s.bookings.Create(ctx, booking, now)
	if err != nil {
		return entity.Booking{}, s.rejected(err)
	}

	metrics.BookingsCreated.WithLabelValues(path).Inc()

	log.FromContext(ctx).WithFields(logrus.Fields{
		"booking_id": booking.BookingID,
		"event_id":   booking.EventID,
		"group_size": booking.GroupSize,
		"status":     booking.PaymentStatus,
	}).Info("Booking created")

	return booking, nil
}

// ConfirmPayment finishes a gateway booking after the provider redirected
// the user back. Confirming an already paid booking returns it unchanged.
// A declined or broken payment fails the booking and returns its seats.
func (s *Service) ConfirmPayment(
	ctx context.Context,
	identity entity.Identity,
	eventID string,
	providerPaymentID string,
	payerID string,
) (entity.Booking, error) {
	if err := identity.RequireRole(entity.RoleStudent); err != nil {
		return entity.Booking{}, err
	}

	booking, err := s.bookings.FindLatestByUserAndEvent(ctx, identity.UserID, eventID)
	if err != nil {
		return entity.Booking{}, err
	}

	switch booking.PaymentStatus {
	case entity.PaymentStatusSucceeded:
		return booking, nil
	case entity.PaymentStatusFailed:
		return entity.Booking{}, entity.ErrPaymentFailed
	}

	providerPaymentID = strings.TrimSpace(providerPaymentID)
	payerID = strings.TrimSpace(payerID)
	if providerPaymentID == "" {
		return entity.Booking{}, entity.NewValidationError("paymentId", "is required")
	}
	if payerID == "" {
		return entity.Booking{}, entity.NewValidationError("PayerID", "is required")
	}

	// The provider may capture the payment before the client goes away, so
	// the booking is settled on a context that outlives the request.
	settleCtx, cancel := settleContext(ctx)
	defer cancel()

	approved, err := s.executePayment(settleCtx, providerPaymentID, payerID)
	if err != nil || !approved {
		reason := "payment was declined"
		if err != nil {
			reason = err.Error()
			log.FromContext(ctx).WithError(err).WithField("booking_id", booking.BookingID).Warn("Payment execution failed")
		}

		if _, failErr := s.bookings.Fail(settleCtx, booking.BookingID, reason, s.now().UTC()); failErr != nil {
			return entity.Booking{}, errors.Join(entity.ErrPaymentFailed, fmt.Errorf("could not fail booking %s: %w", booking.BookingID, failErr))
		}

		metrics.PaymentsFailed.Inc()

		return entity.Booking{}, fmt.Errorf("%s: %w", reason, entity.ErrPaymentFailed)
	}

	confirmed, err := s.bookings.Confirm(settleCtx, booking.BookingID, providerPaymentID, s.now().UTC())
	if err != nil {
		return entity.Booking{}, err
	}
	if confirmed.PaymentStatus != entity.PaymentStatusSucceeded {
		// failed concurrently, e.g. by the stale booking sweep
		log.FromContext(ctx).
			WithField("booking_id", booking.BookingID).
			WithField("payment_id", providerPaymentID).
			Error("Payment executed for a booking that is no longer pending")
		return entity.Booking{}, entity.ErrPaymentFailed
	}

	metrics.PaymentsConfirmed.Inc()

	return confirmed, nil
}

// executePayment captures the payment unless the provider already reports
// it as approved, which happens when an earlier callback captured it but
// never got to confirm the booking.
func (s *Service) executePayment(ctx context.Context, providerPaymentID, payerID string) (bool, error) {
	handle, err := s.payments.FindPayment(ctx, providerPaymentID)
	if err != nil {
		return false, fmt.Errorf("could not find payment %s: %w", providerPaymentID, err)
	}

	if handle.State == entity.PaymentStateApproved {
		log.FromContext(ctx).WithField("payment_id", providerPaymentID).Info("Payment already captured")
		return true, nil
	}

	approved, err := s.payments.ExecutePayment(ctx, handle, payerID)
	if err != nil {
		return false, fmt.Errorf("could not execute payment %s: %w", providerPaymentID, err)
	}

	return approved, nil
}

// settleContext keeps the logger, correlation id and span of ctx without
// its cancellation.
func settleContext(ctx context.Context) (context.Context, context.CancelFunc) {
	settleCtx := log.ToContext(context.Background(), log.FromContext(ctx))
	settleCtx = log.ContextWithCorrelationID(settleCtx, log.CorrelationIDFromContext(ctx))
	settleCtx = trace.ContextWithSpan(settleCtx, trace.SpanFromContext(ctx))

	return context.WithTimeout(settleCtx, settleTimeout)
}

// GetTicket issues the ticket of the caller's booking for eventID.
func (s *Service) GetTicket(ctx context.Context, identity entity.Identity, eventID string) (entity.TicketArtifact, error) {
	event, err := s.events.Get(ctx, eventID)
	if err != nil {
		return entity.TicketArtifact{}, err
	}

	booking, err := s.bookings.FindLatestByUserAndEvent(ctx, identity.UserID, eventID)
	if err != nil {
		return entity.TicketArtifact{}, err
	}

	return s.issuer.Issue(ctx, booking, event)
}

// ReclaimExpired deletes events that already took place, with their
// bookings, and fails gateway bookings that stayed pending for longer than
// the configured TTL. It is safe to call any number of times.
func (s *Service) ReclaimExpired(ctx context.Context, now time.Time) (entity.ReclaimResult, error) {
	swept, err := s.events.DeleteExpired(ctx, now)
	if err != nil {
		return entity.ReclaimResult{}, fmt.Errorf("could not delete expired events: %w", err)
	}

	result := entity.ReclaimResult{
		EventsDeleted:   len(swept.EventIDs),
		BookingsDeleted: swept.BookingsDeleted,
	}
	metrics.EventsSwept.Add(float64(result.EventsDeleted))

	if s.pendingBookingTTL <= 0 {
		return result, nil
	}

	stale, err := s.bookings.FindStalePending(ctx, now.Add(-s.pendingBookingTTL))
	if err != nil {
		return result, err
	}

	var errs error
	for _, b := range stale {
		failed, err := s.bookings.Fail(ctx, b.BookingID, "payment not completed in time", now)
		if errors.Is(err, entity.ErrNotFound) {
			continue
		}
		if err != nil {
			errs = errors.Join(errs, fmt.Errorf("could not fail stale booking %s: %w", b.BookingID, err))
			continue
		}
		if failed.PaymentStatus == entity.PaymentStatusFailed {
			result.PendingFailed++
		}
	}

	if result.EventsDeleted > 0 || result.PendingFailed > 0 {
		log.FromContext(ctx).WithFields(logrus.Fields{
			"events_deleted":   result.EventsDeleted,
			"bookings_deleted": result.BookingsDeleted,
			"pending_failed":   result.PendingFailed,
		}).Info("Reclaimed expired inventory")
	}

	return result, errs
}

// SweepBeforeRead runs ReclaimExpired for read paths, where a failed sweep
// must not block the listing.
func (s *Service) SweepBeforeRead(ctx context.Context) {
	if _, err := s.ReclaimExpired(ctx, s.now().UTC()); err != nil {
		log.FromContext(ctx).WithError(err).Warn("Could not reclaim expired events")
	}
}

// ScheduleReminders hands one reminder per confirmed booking of events
// starting within the reminder window to the outbox. Bookings that were
// reminded before are skipped.
func (s *Service) ScheduleReminders(ctx context.Context, now time.Time) (int, error) {
	if s.reminderWindow <= 0 {
		return 0, nil
	}

	scheduled, err := s.bookings.ClaimReminders(ctx, now, s.reminderWindow)
	if err != nil {
		return 0, fmt.Errorf("could not schedule reminders: %w", err)
	}

	if scheduled > 0 {
		metrics.RemindersScheduled.Add(float64(scheduled))
		log.FromContext(ctx).WithField("reminders", scheduled).Info("Scheduled event reminders")
	}

	return scheduled, nil
}

// RunSweeper calls ReclaimExpired and ScheduleReminders every interval until
// ctx is done. A zero interval disables it.
func (s *Service) RunSweeper(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		return nil
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			s.SweepBeforeRead(ctx)

			if _, err := s.ScheduleReminders(ctx, s.now().UTC()); err != nil {
				log.FromContext(ctx).WithError(err).Warn("Could not schedule event reminders")
			}
		}
	}
}

func (s *Service) rejected(err error) error {
	reason := "other"
	switch {
	case errors.Is(err, entity.ErrForbidden):
		reason = "forbidden"
	case errors.Is(err, entity.ErrValidation):
		reason = "validation"
	case errors.Is(err, entity.ErrNotFound):
		reason = "not_found"
	case errors.Is(err, entity.ErrRegistrationClosed):
		reason = "registration_closed"
	case errors.Is(err, entity.ErrSoldOut):
		reason = "sold_out"
	case errors.Is(err, entity.ErrDuplicateBooking):
		reason = "duplicate"
	}
	metrics.BookingsRejected.WithLabelValues(reason).Inc()

	return err
}
