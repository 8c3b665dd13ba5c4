package tasks

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/electrade/network-api/internal/service"
)

// RegisterHandlers binds the application's task handlers to the worker.
func RegisterHandlers(w *Worker, networks *service.NetworkService, debts *service.DebtService) {
	w.Register(service.TaskClearDebt, func(ctx context.Context, payload json.RawMessage) error {
		var p service.ClearDebtTaskPayload
		if err := json.Unmarshal(payload, &p); err != nil {
			return fmt.Errorf("bad clear_debt payload: %w", err)
		}
		_, err := debts.ClearDebtNow(ctx, p.NetworkIDs)
		return err
	})

	w.Register(service.TaskSendContactCode, func(ctx context.Context, payload json.RawMessage) error {
		var p service.SendContactCodeTaskPayload
		if err := json.Unmarshal(payload, &p); err != nil {
			return fmt.Errorf("bad send_contact_code payload: %w", err)
		}
		return networks.DeliverContactCode(ctx, p.NetworkID, p.Recipient)
	})
}
