package http

import (
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"eventbooking/entity"
	"eventbooking/ticket"
)

type ticketResponse struct {
	Ticket      entity.TicketPayload `json:"ticket"`
	QRCode      string               `json:"qr_code"`
	PDFURL      string               `json:"pdf_url"`
	GeneratedAt string               `json:"generated_at"`
}

func (s Server) GetTicket(c echo.Context) error {
	artifact, err := s.bookingSvc.GetTicket(c.Request().Context(), identity(c), c.Param("id"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, ticketResponse{
		Ticket:      artifact.Payload,
		QRCode:      ticket.DataURI(artifact.QRCode),
		PDFURL:      "/static/tickets/" + artifact.FileName,
		GeneratedAt: artifact.GeneratedAt.Format(entity.TicketDateLayout),
	})
}

// PostVerifyTicket takes the scanned QR content as the raw request body.
func (s Server) PostVerifyTicket(c echo.Context) error {
	data, err := io.ReadAll(io.LimitReader(c.Request().Body, 64<<10))
	if err != nil {
		return err
	}

	payload, err := s.tickets.Verify(c.Request().Context(), data)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, payload)
}
