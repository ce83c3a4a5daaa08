package gateway

import (
	"context"
	"fmt"
	"sync"

	"eventbooking/entity"
)

// PaymentMock approves every known payment unless it is listed in Declined
// or Errors.
type PaymentMock struct {
	mock sync.Mutex

	Payments map[string]entity.PaymentHandle
	Declined map[string]bool
	Errors   map[string]error
	Executed map[string]string

	executions int
}

func (c *PaymentMock) AddPayment(id string) {
	c.mock.Lock()
	defer c.mock.Unlock()

	if c.Payments == nil {
		c.Payments = make(map[string]entity.PaymentHandle)
	}
	c.Payments[id] = entity.PaymentHandle{ID: id, State: entity.PaymentStateCreated}
}

func (c *PaymentMock) Decline(id string) {
	c.mock.Lock()
	defer c.mock.Unlock()

	if c.Declined == nil {
		c.Declined = make(map[string]bool)
	}
	c.Declined[id] = true
}

func (c *PaymentMock) FailWith(id string, err error) {
	c.mock.Lock()
	defer c.mock.Unlock()

	if c.Errors == nil {
		c.Errors = make(map[string]error)
	}
	c.Errors[id] = err
}

func (c *PaymentMock) FindPayment(ctx context.Context, ref string) (entity.PaymentHandle, error) {
	c.mock.Lock()
	defer c.mock.Unlock()

	handle, ok := c.Payments[ref]
	if !ok {
		return entity.PaymentHandle{}, fmt.Errorf("payment %s: %w", ref, entity.ErrNotFound)
	}

	return handle, nil
}

func (c *PaymentMock) ExecutePayment(ctx context.Context, handle entity.PaymentHandle, payerID string) (bool, error) {
	c.mock.Lock()
	defer c.mock.Unlock()

	if err, ok := c.Errors[handle.ID]; ok {
		return false, err
	}
	if c.Declined[handle.ID] {
		return false, nil
	}

	if c.Executed == nil {
		c.Executed = make(map[string]string)
	}
	c.Executed[handle.ID] = payerID
	c.executions++

	if stored, ok := c.Payments[handle.ID]; ok {
		stored.State = entity.PaymentStateApproved
		c.Payments[handle.ID] = stored
	}

	return true, nil
}

// ExecutedCount is the number of successful ExecutePayment calls.
func (c *PaymentMock) ExecutedCount() int {
	c.mock.Lock()
	defer c.mock.Unlock()

	return c.executions
}
