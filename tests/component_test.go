package tests

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/lithammer/shortuuid/v3"
	"github.com/redis/go-redis/v9"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"eventbooking/app"
	"eventbooking/config"
	"eventbooking/db"
	"eventbooking/entity"
	"eventbooking/gateway"
	apiHttp "eventbooking/http"
)

const (
	httpAddress = ":8080"
	baseURL     = "http://localhost:8080"
	jwtSecret   = "component-test-secret"
)

func TestComponent(t *testing.T) {
	defer goleak.VerifyNone(
		t,
		goleak.IgnoreCurrent(),
		goleak.IgnoreTopFunction("github.com/testcontainers/testcontainers-go.(*Reaper).Connect.func1"),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	dbconn, err := sqlx.Open("postgres", postgresURL)
	require.NoError(t, err)
	defer dbconn.Close()

	redisClient := redis.NewClient(&redis.Options{Addr: redisURL})
	defer redisClient.Close()

	paymentsClient := &gateway.PaymentMock{}
	filesClient := &gateway.FilesMock{}
	notificationsClient := &gateway.NotificationsMock{}

	cfg := config.Config{
		HTTPAddr:         httpAddress,
		JWTSecret:        jwtSecret,
		TicketSigningKey: "component-test-signing-key",
	}

	finished := make(chan struct{})
	go func() {
		defer close(finished)
		err := app.New(
			cfg,
			dbconn,
			redisClient,
			paymentsClient,
			filesClient,
			notificationsClient,
			nil,
		).Run(ctx)
		assert.NoError(t, err)
	}()

	client := &http.Client{Timeout: 5 * time.Second}
	defer func() {
		cancel()
		<-finished
		client.CloseIdleConnections()
	}()

	waitForHttpServer(t, client)

	event := storeEvent(t, dbconn)
	student := entity.Identity{
		UserID:   "student-" + uuid.NewString(),
		Username: "ada",
		Role:     entity.RoleStudent,
	}
	attendeeEmail := "ada-" + shortuuid.New() + "@example.com"

	resp := doRequest(t, client, student, http.MethodPost, "/events/"+event.EventID+"/bookings", map[string]any{
		"name":   "Ada Lovelace",
		"email":  attendeeEmail,
		"mobile": "555-0100",
		"branch": "CSE",
		"year":   "3",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = doRequest(t, client, student, http.MethodGet, "/events/"+event.EventID+"/ticket", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, filesClient.Puts())

	assertEmailSent(t, notificationsClient, attendeeEmail, "Booking Confirmed")
	assertNotificationStored(t, dbconn, student.UserID)
	assertTicketPrintedLogged(t, dbconn, student.UserID)
	assertStoredInDataLake(t, dbconn, "BookingConfirmed_v1")
}

func storeEvent(t *testing.T, dbconn *sqlx.DB) entity.Event {
	t.Helper()

	now := time.Now().UTC().Truncate(time.Second)
	event := entity.Event{
		EventID:          uuid.NewString(),
		Title:            "Hackathon",
		Description:      "24h of code",
		Location:         "Main hall",
		Category:         "tech",
		Price:            10,
		Date:             now.Add(48 * time.Hour),
		OrganizerID:      "organizer-" + uuid.NewString(),
		TotalTickets:     10,
		RemainingTickets: 10,
		MinGroupSize:     1,
		MaxGroupSize:     1,
		Status:           entity.EventStatusApproved,
		CreatedAt:        now,
	}
	require.NoError(t, db.NewEventsPostgresRepository(dbconn).Store(context.Background(), event))

	return event
}

func doRequest(t *testing.T, client *http.Client, identity entity.Identity, method, path string, body any) *http.Response {
	t.Helper()

	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		require.NoError(t, err)
	}

	token, err := apiHttp.NewToken(jwtSecret, identity, time.Hour)
	require.NoError(t, err)

	req, err := http.NewRequest(method, baseURL+path, bytes.NewReader(payload))
	require.NoError(t, err)

	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Correlation-ID", shortuuid.New())
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })

	return resp
}

func assertEmailSent(t *testing.T, notifications *gateway.NotificationsMock, to, subject string) {
	t.Helper()

	assert.EventuallyWithT(
		t,
		func(t *assert.CollectT) {
			_, ok := lo.Find(notifications.SentEmails(), func(m gateway.SentMessage) bool {
				return m.To == to && m.Subject == subject
			})
			assert.True(t, ok, "email %q to %s not sent", subject, to)
		},
		10*time.Second,
		100*time.Millisecond,
	)
}

func assertNotificationStored(t *testing.T, dbconn *sqlx.DB, userID string) {
	t.Helper()

	repo := db.NewNotificationsPostgresRepository(dbconn)

	assert.EventuallyWithT(
		t,
		func(t *assert.CollectT) {
			notifications, err := repo.ListByUser(context.Background(), userID)
			if !assert.NoError(t, err) {
				return
			}

			channels := lo.Map(notifications, func(n entity.Notification, _ int) entity.Channel {
				return n.Channel
			})
			assert.Contains(t, channels, entity.ChannelInApp)
			assert.Contains(t, channels, entity.ChannelEmail)
		},
		10*time.Second,
		100*time.Millisecond,
	)
}

func assertTicketPrintedLogged(t *testing.T, dbconn *sqlx.DB, userID string) {
	t.Helper()

	repo := db.NewActivitiesPostgresRepository(dbconn)

	assert.EventuallyWithT(
		t,
		func(t *assert.CollectT) {
			activities, _, err := repo.List(context.Background(), 1, 100)
			if !assert.NoError(t, err) {
				return
			}

			_, ok := lo.Find(activities, func(a entity.Activity) bool {
				return a.UserID == userID && a.ActivityType == "ticket_printed"
			})
			assert.True(t, ok, "ticket_printed activity of %s not found", userID)
		},
		10*time.Second,
		100*time.Millisecond,
	)
}

func assertStoredInDataLake(t *testing.T, dbconn *sqlx.DB, eventName string) {
	t.Helper()

	dataLake := db.NewDataLake(dbconn)

	assert.EventuallyWithT(
		t,
		func(t *assert.CollectT) {
			events, err := dataLake.GetEvents(context.Background())
			if !assert.NoError(t, err) {
				return
			}

			_, ok := lo.Find(events, func(e entity.DataLakeEvent) bool {
				return e.Name == eventName
			})
			assert.True(t, ok, "%s not stored in data lake", eventName)
		},
		10*time.Second,
		100*time.Millisecond,
	)
}

func waitForHttpServer(t *testing.T, client *http.Client) {
	t.Helper()

	require.EventuallyWithT(
		t,
		func(t *assert.CollectT) {
			resp, err := client.Get(baseURL + "/health")
			if !assert.NoError(t, err) {
				return
			}
			defer resp.Body.Close()

			assert.Less(t, resp.StatusCode, 300, "API not ready, http status: %d", resp.StatusCode)
		},
		time.Second*10,
		time.Millisecond*50,
	)
}
