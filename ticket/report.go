package ticket

import (
	"bytes"
	"fmt"
	"time"

	"github.com/go-pdf/fpdf"

	"eventbooking/entity"
)

var reportColumns = []struct {
	title string
	width float64
}{
	{"Title", 80},
	{"Date", 45},
	{"Status", 30},
	{"Tickets", 30},
}

// RenderEventsReport renders the admin events overview. The header row is
// repeated on every page.
func RenderEventsReport(events []entity.Event, generatedAt time.Time) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "Letter", "")
	pdf.SetCreationDate(generatedAt)
	pdf.SetModificationDate(generatedAt)
	pdf.SetTitle("Events Report", true)
	pdf.SetAutoPageBreak(true, 20)

	tr := pdf.UnicodeTranslatorFromDescriptor("")

	header := func() {
		pdf.SetFont("Helvetica", "B", 10)
		pdf.SetFillColor(230, 230, 230)
		for _, c := range reportColumns {
			pdf.CellFormat(c.width, 8, c.title, "1", 0, "L", true, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont("Helvetica", "", 10)
	}

	pdf.SetHeaderFunc(func() {
		if pdf.PageNo() > 1 {
			header()
		}
	})

	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, "Events Report", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 6, "Generated "+generatedAt.UTC().Format(longDateTimeLayout), "", 1, "L", false, 0, "")
	pdf.Ln(4)
	header()

	for _, e := range events {
		title := e.Title
		if r := []rune(title); len(r) > 45 {
			title = string(r[:42]) + "..."
		}

		values := []string{
			tr(title),
			e.Date.UTC().Format(entity.TicketDateLayout),
			string(e.Status),
			fmt.Sprintf("%d/%d", e.RemainingTickets, e.TotalTickets),
		}
		for i, c := range reportColumns {
			pdf.CellFormat(c.width, 7, values[i], "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("could not render events report: %w", err)
	}

	return buf.Bytes(), nil
}
