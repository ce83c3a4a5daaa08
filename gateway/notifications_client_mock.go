package gateway

import (
	"context"
	"sync"
)

type SentMessage struct {
	To      string
	Subject string
	Content string
}

type NotificationsMock struct {
	lock   sync.Mutex
	Emails []SentMessage
	SMS    []SentMessage
}

func (c *NotificationsMock) SendEmail(ctx context.Context, to, subject, content string) error {
	c.lock.Lock()
	defer c.lock.Unlock()

	c.Emails = append(c.Emails, SentMessage{To: to, Subject: subject, Content: content})

	return nil
}

func (c *NotificationsMock) SendSMS(ctx context.Context, phone, message string) error {
	c.lock.Lock()
	defer c.lock.Unlock()

	c.SMS = append(c.SMS, SentMessage{To: phone, Content: message})

	return nil
}

func (c *NotificationsMock) SentEmails() []SentMessage {
	c.lock.Lock()
	defer c.lock.Unlock()

	return append([]SentMessage(nil), c.Emails...)
}

func (c *NotificationsMock) SentSMS() []SentMessage {
	c.lock.Lock()
	defer c.lock.Unlock()

	return append([]SentMessage(nil), c.SMS...)
}
