package ticket

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"

	"eventbooking/entity"
)

// Signer signs ticket payloads so door staff can tell a real ticket from an
// edited one.
type Signer struct {
	key []byte
}

func NewSigner(key string) (Signer, error) {
	if key == "" {
		return Signer{}, errors.New("missing ticket signing key")
	}

	return Signer{key: []byte(key)}, nil
}

// Sign returns payload with its signature set. The signature covers the JSON
// encoding of the payload without the signature field.
func (s Signer) Sign(payload entity.TicketPayload) (entity.TicketPayload, error) {
	signature, err := s.signature(payload)
	if err != nil {
		return entity.TicketPayload{}, err
	}

	payload.Signature = signature

	return payload, nil
}

// Verify decodes data and checks its signature.
func (s Signer) Verify(data []byte) (entity.TicketPayload, error) {
	var payload entity.TicketPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return entity.TicketPayload{}, entity.NewValidationError("payload", "not a ticket")
	}
	if payload.Signature == "" {
		return entity.TicketPayload{}, entity.NewValidationError("payload", "ticket is not signed")
	}

	expected, err := s.signature(payload)
	if err != nil {
		return entity.TicketPayload{}, err
	}

	if !hmac.Equal([]byte(expected), []byte(payload.Signature)) {
		return entity.TicketPayload{}, entity.NewValidationError("payload", "ticket signature is invalid")
	}

	return payload, nil
}

func (s Signer) signature(payload entity.TicketPayload) (string, error) {
	payload.Signature = ""

	data, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("could not marshal ticket payload: %w", err)
	}

	mac := hmac.New(sha256.New, s.key)
	mac.Write(data)

	return hex.EncodeToString(mac.Sum(nil)), nil
}

func Encode(payload entity.TicketPayload) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("could not marshal ticket payload: %w", err)
	}

	return data, nil
}
