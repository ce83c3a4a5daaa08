package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ThreeDotsLabs/go-event-driven/common/log"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"eventbooking/entity"
)

// PaymentClient talks to a PayPal style REST payments API.
type PaymentClient struct {
	baseURL string
	token   string
	client  *http.Client
}

func NewPaymentClient(baseURL, token string) PaymentClient {
	if baseURL == "" {
		panic("missing payment API URL")
	}

	return PaymentClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		client: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
			Timeout:   15 * time.Second,
		},
	}
}

type paymentResponse struct {
	ID           string `json:"id"`
	State        string `json:"state"`
	Transactions []struct {
		Amount struct {
			Total    string `json:"total"`
			Currency string `json:"currency"`
		} `json:"amount"`
	} `json:"transactions"`
}

func (r paymentResponse) handle() entity.PaymentHandle {
	handle := entity.PaymentHandle{ID: r.ID, State: r.State}
	if len(r.Transactions) > 0 {
		handle.Amount = r.Transactions[0].Amount.Total
	}
	return handle
}

func (c PaymentClient) FindPayment(ctx context.Context, ref string) (entity.PaymentHandle, error) {
	if ref == "" {
		return entity.PaymentHandle{}, entity.NewValidationError("paymentId", "is required")
	}

	var resp paymentResponse
	status, err := c.do(ctx, http.MethodGet, "/v1/payments/payment/"+url.PathEscape(ref), nil, &resp)
	if err != nil {
		return entity.PaymentHandle{}, err
	}

	if status == http.StatusNotFound {
		return entity.PaymentHandle{}, fmt.Errorf("payment %s: %w", ref, entity.ErrNotFound)
	}
	if status != http.StatusOK {
		return entity.PaymentHandle{}, fmt.Errorf("unexpected status code for GET payment %s: %d", ref, status)
	}

	return resp.handle(), nil
}

// ExecutePayment captures an approved payment. A declined payment is reported
// as false with no error.
func (c PaymentClient) ExecutePayment(ctx context.Context, handle entity.PaymentHandle, payerID string) (bool, error) {
	if payerID == "" {
		return false, entity.NewValidationError("PayerID", "is required")
	}

	body := map[string]string{"payer_id": payerID}

	var resp paymentResponse
	status, err := c.do(ctx, http.MethodPost, "/v1/payments/payment/"+url.PathEscape(handle.ID)+"/execute", body, &resp)
	if err != nil {
		return false, err
	}

	switch {
	case status == http.StatusOK || status == http.StatusCreated:
		return resp.State == entity.PaymentStateApproved || resp.State == entity.PaymentStateCompleted, nil
	case status >= 400 && status < 500:
		log.FromContext(ctx).WithField("payment_id", handle.ID).Infof("Payment execution declined with status %d", status)
		return false, nil
	default:
		return false, fmt.Errorf("unexpected status code for POST payment %s execute: %d", handle.ID, status)
	}
}

func (c PaymentClient) do(ctx context.Context, method, path string, body any, out any) (int, error) {
	var reqBody io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return 0, fmt.Errorf("could not marshal request: %w", err)
		}
		reqBody = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return 0, fmt.Errorf("could not create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Correlation-ID", log.CorrelationIDFromContext(ctx))
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("could not call payments API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 && out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp.StatusCode, fmt.Errorf("could not decode payments API response: %w", err)
		}
	}

	return resp.StatusCode, nil
}
