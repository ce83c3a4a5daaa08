package gateway

import (
	"context"

	"github.com/ThreeDotsLabs/go-event-driven/common/log"
	"github.com/sirupsen/logrus"
)

// NotificationsClient is the outbound email and SMS transport. Delivery is
// only logged; no provider is wired.
type NotificationsClient struct{}

func NewNotificationsClient() NotificationsClient {
	return NotificationsClient{}
}

func (c NotificationsClient) SendEmail(ctx context.Context, to, subject, content string) error {
	log.FromContext(ctx).WithFields(logrus.Fields{
		"to":      to,
		"subject": subject,
	}).Info("Sending email")

	return nil
}

func (c NotificationsClient) SendSMS(ctx context.Context, phone, message string) error {
	log.FromContext(ctx).WithFields(logrus.Fields{
		"phone":  phone,
		"length": len(message),
	}).Info("Sending SMS")

	return nil
}
