package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"

	"github.com/noah-isme/kasir-api/internal/common"
	"github.com/noah-isme/kasir-api/internal/obs"
)

// ReceiptWorker delivers queued receipt emails.
type ReceiptWorker struct {
	Mail   common.EmailSender
	Logger zerolog.Logger
}

// HandleReceiptEmail processes one email:receipt task. Returning an error
// lets asynq retry with backoff up to the task's MaxRetry.
func (w ReceiptWorker) HandleReceiptEmail(_ context.Context, task *asynq.Task) error {
	var p ReceiptEmailPayload
	if err := json.Unmarshal(task.Payload(), &p); err != nil {
		return fmt.Errorf("decode receipt payload: %v: %w", err, asynq.SkipRetry)
	}
	if w.Mail == nil {
		return fmt.Errorf("mailer not configured: %w", asynq.SkipRetry)
	}
	subject := fmt.Sprintf("Invoice #%s", p.PurchaseID)
	body := fmt.Sprintf("Your bill total is %s", p.Total)
	if err := w.Mail.Send(p.Recipient, subject, body); err != nil {
		obs.ObserveReceiptEmail("error")
		w.Logger.Error().Err(err).
			Str("purchase_id", p.PurchaseID).
			Msg("send receipt email")
		return err
	}
	obs.ObserveReceiptEmail("sent")
	w.Logger.Info().
		Str("purchase_id", p.PurchaseID).
		Str("recipient", p.Recipient).
		Msg("receipt email sent")
	return nil
}
