package service

import (
	"context"

	"github.com/google/uuid"
)

// Task names understood by the background worker.
const (
	TaskClearDebt       = "clear_debt"
	TaskSendContactCode = "send_contact_code"
)

// Submitter hands work to the background task executor. Services depend
// on this narrow interface so tests can substitute a fake.
type Submitter interface {
	Enqueue(ctx context.Context, name string, payload interface{}) (string, error)
}

// ClearDebtTaskPayload is the payload of a scheduled bulk debt clear.
type ClearDebtTaskPayload struct {
	NetworkIDs []uuid.UUID `json:"networkIds"`
}

// SendContactCodeTaskPayload asks the worker to mail a network's
// contact QR code to the recipient.
type SendContactCodeTaskPayload struct {
	NetworkID uuid.UUID `json:"networkId"`
	Recipient string    `json:"recipient"`
}
