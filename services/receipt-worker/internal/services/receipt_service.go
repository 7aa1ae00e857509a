package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fundlane/fundlane/pkg/mail"
	"github.com/fundlane/fundlane/pkg/repositories"
	"github.com/fundlane/fundlane/pkg/utils"
	"github.com/fundlane/fundlane/pkg/views"
	"github.com/fundlane/fundlane/services/receipt-worker/configs"
)

// ReceiptProcessor handles one receipt job end to end.
type ReceiptProcessor interface {
	ProcessReceipt(ctx context.Context, job views.ReceiptJob) error
}

type ReceiptProcessorConfig struct {
	Logger    *zap.Logger
	Config    *configs.Config
	Mailer    mail.Mailer
	OrderRepo repositories.OrderRepository
}

func NewReceiptProcessor(cfg ReceiptProcessorConfig) ReceiptProcessor {
	return &cfg
}

// ProcessReceipt sends the email, then stamps receiptEmailSentAt on the
// order. Transient send failures are retried with jittered backoff up to
// MailRetryAttempts before the job is surfaced to the caller (and from there
// to the DLQ). The stamp is at-most-once at the repository level, so a
// redelivered job re-sends the email at worst and never moves the recorded
// timestamp. Order status is owned by the API and is never touched here.
func (p *ReceiptProcessorConfig) ProcessReceipt(ctx context.Context, job views.ReceiptJob) error {
	orderID, err := uuid.Parse(job.OrderID)
	if err != nil {
		return err
	}

	attempts := p.Config.MailRetryAttempts
	if attempts < 1 {
		attempts = 1
	}
	for attempt := 1; ; attempt++ {
		sendErr := p.sendOnce(ctx, job)
		if sendErr == nil {
			break
		}
		if attempt >= attempts {
			return sendErr
		}
		delay := utils.CalculateExponentialBackoffWithJitter(attempt,
			p.Config.MailRetryBackoff, p.Config.MailRetryBackoffMax)
		p.Logger.Warn("receipt send failed, retrying",
			zap.String("orderId", job.OrderID),
			zap.Int("attempt", attempt),
			zap.Duration("backoff", delay),
			zap.Error(sendErr))
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}

	if err := p.OrderRepo.MarkReceiptSent(ctx, orderID, time.Now().UTC()); err != nil {
		return err
	}
	p.Logger.Info("receipt recorded", zap.String("orderId", job.OrderID))
	return nil
}

// sendOnce bounds a single provider call with the configured timeout.
func (p *ReceiptProcessorConfig) sendOnce(ctx context.Context, job views.ReceiptJob) error {
	sendCtx, cancel := context.WithTimeout(ctx, p.Config.MailSendTimeout)
	defer cancel()
	return p.Mailer.SendReceipt(sendCtx, job)
}
