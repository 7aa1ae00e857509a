package mail

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/fundlane/fundlane/pkg/views"
)

// Mailer delivers one receipt email. Implementations must respect ctx: an
// expired deadline counts as a delivery failure.
type Mailer interface {
	SendReceipt(ctx context.Context, job views.ReceiptJob) error
}

// SimulatedMailer stands in for an email provider. It renders the receipt
// body, waits out a provider latency, and logs the result.
//
// TODO swap in the transactional-email provider once the account is
// provisioned.
type SimulatedMailer struct {
	logger      *zap.Logger
	fromAddress string
	sendLatency time.Duration
}

func NewSimulatedMailer(logger *zap.Logger, fromAddress string, sendLatency time.Duration) *SimulatedMailer {
	return &SimulatedMailer{
		logger:      logger,
		fromAddress: fromAddress,
		sendLatency: sendLatency,
	}
}

func (m *SimulatedMailer) SendReceipt(ctx context.Context, job views.ReceiptJob) error {
	body := renderReceipt(job)

	select {
	case <-ctx.Done():
		return fmt.Errorf("mail send cancelled: %w", ctx.Err())
	case <-time.After(m.sendLatency):
	}

	m.logger.Info("receipt email sent",
		zap.String("from", m.fromAddress),
		zap.String("orderId", job.OrderID),
		zap.String("userId", job.UserID),
		zap.Int("bodyBytes", len(body)),
	)
	return nil
}

func renderReceipt(job views.ReceiptJob) string {
	return fmt.Sprintf(
		"Your %s order for %s (%s) has been executed.\nAmount: %s at NAV %s\nExecuted: %s\nOrder reference: %s\n",
		job.OrderType, job.SchemeName, job.FundHouse,
		job.Amount, job.Nav,
		job.ExecutedAt.Format(time.RFC1123), job.OrderID,
	)
}
