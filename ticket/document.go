package ticket

import (
	"bytes"
	"fmt"
	"strconv"
	"time"

	"github.com/go-pdf/fpdf"

	"eventbooking/entity"
)

const (
	longDateLayout     = "January 02, 2006"
	timeLayout         = "03:04 PM"
	longDateTimeLayout = "January 02, 2006 03:04 PM"
	qrImageName        = "qr"
)

type line struct {
	label string
	value string
}

func ticketLines(booking entity.Booking, event entity.Event) []line {
	lines := []line{
		{"Event", event.Title},
		{"Date", event.Date.UTC().Format(longDateLayout)},
		{"Time", event.Date.UTC().Format(timeLayout)},
		{"Location", event.Location},
		{"Booking ID", booking.BookingID},
		{"Booking Date", booking.BookingDate.UTC().Format(longDateTimeLayout)},
		{"Attendee", booking.Name},
		{"Email", booking.Email},
		{"Mobile", booking.Mobile},
		{"Branch", booking.Branch},
		{"Year", booking.Year},
	}
	if booking.GroupSize > 1 {
		lines = append(lines, line{"Group Size", strconv.Itoa(booking.GroupSize)})
	}

	return append(lines,
		line{"Payment Status", string(booking.PaymentStatus)},
		line{"Payment ID", booking.PaymentID},
	)
}

// RenderDocument lays the ticket out on a Letter page with the QR code below
// the details. Long values wrap onto further pages.
func RenderDocument(booking entity.Booking, event entity.Event, qrPNG []byte, generatedAt time.Time) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "Letter", "")
	pdf.SetCreationDate(generatedAt)
	pdf.SetModificationDate(generatedAt)
	pdf.SetTitle("Ticket "+booking.BookingID, true)
	pdf.SetAutoPageBreak(true, 20)
	pdf.AddPage()

	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(0, 12, tr(event.Title), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	for _, l := range ticketLines(booking, event) {
		pdf.SetFont("Helvetica", "B", 11)
		pdf.CellFormat(40, 7, tr(l.label+":"), "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 11)
		pdf.MultiCell(0, 7, tr(l.value), "", "L", false)
	}

	if len(qrPNG) > 0 {
		pdf.Ln(6)
		pdf.RegisterImageOptionsReader(qrImageName, fpdf.ImageOptions{ImageType: "PNG"}, bytes.NewReader(qrPNG))
		pdf.ImageOptions(qrImageName, pdf.GetX(), pdf.GetY(), 60, 60, true, fpdf.ImageOptions{ImageType: "PNG"}, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("could not render ticket document: %w", err)
	}

	return buf.Bytes(), nil
}
