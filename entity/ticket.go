package entity

import "time"

const TicketDateLayout = "2006-01-02 15:04"

type TicketAttendee struct {
	Name   string `json:"name"`
	Email  string `json:"email"`
	Mobile string `json:"mobile"`
	Branch string `json:"branch"`
	Year   string `json:"year"`
}

// TicketPayload is what gets encoded into the QR code. Field order is fixed
// so the same booking always produces the same bytes.
type TicketPayload struct {
	BookingID     string         `json:"booking_id"`
	EventTitle    string         `json:"event_title"`
	EventDate     string         `json:"event_date"`
	BookingDate   string         `json:"booking_date"`
	Attendee      TicketAttendee `json:"attendee"`
	GroupSize     int            `json:"group_size"`
	PaymentStatus PaymentStatus  `json:"payment_status"`
	PaymentID     string         `json:"payment_id"`
	Signature     string         `json:"signature,omitempty"`
}

func NewTicketPayload(b Booking, e Event) TicketPayload {
	return TicketPayload{
		BookingID:   b.BookingID,
		EventTitle:  e.Title,
		EventDate:   e.Date.UTC().Format(TicketDateLayout),
		BookingDate: b.BookingDate.UTC().Format(TicketDateLayout),
		Attendee: TicketAttendee{
			Name:   b.Name,
			Email:  b.Email,
			Mobile: b.Mobile,
			Branch: b.Branch,
			Year:   b.Year,
		},
		GroupSize:     b.GroupSize,
		PaymentStatus: b.PaymentStatus,
		PaymentID:     b.PaymentID,
	}
}

type TicketArtifact struct {
	Payload     TicketPayload `json:"payload"`
	QRCode      []byte        `json:"-"`
	Document    []byte        `json:"-"`
	FileName    string        `json:"file_name"`
	GeneratedAt time.Time     `json:"generated_at"`
}

func TicketFileName(bookingID string) string {
	return "ticket_" + bookingID + ".pdf"
}

const (
	PaymentStateCreated   = "created"
	PaymentStateApproved  = "approved"
	PaymentStateCompleted = "completed"
)

// PaymentHandle is the provider's view of a payment found by reference.
type PaymentHandle struct {
	ID     string `json:"id"`
	State  string `json:"state"`
	Amount string `json:"amount"`
}
