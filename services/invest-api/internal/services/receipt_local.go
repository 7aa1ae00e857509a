package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fundlane/fundlane/pkg/mail"
	"github.com/fundlane/fundlane/pkg/repositories"
	"github.com/fundlane/fundlane/pkg/views"
)

// LocalReceiptProcessor sends receipts in-process when no broker is
// configured. It mirrors what the receipt worker does: send the email
// through a Mailer under the same timeout bound, then stamp the order.
type LocalReceiptProcessor struct {
	logger      *zap.Logger
	orders      repositories.OrderRepository
	mailer      mail.Mailer
	sendTimeout time.Duration
}

func NewLocalReceiptProcessor(logger *zap.Logger, orders repositories.OrderRepository, mailer mail.Mailer, sendTimeout time.Duration) *LocalReceiptProcessor {
	return &LocalReceiptProcessor{
		logger:      logger,
		orders:      orders,
		mailer:      mailer,
		sendTimeout: sendTimeout,
	}
}

func (p *LocalReceiptProcessor) Process(ctx context.Context, job views.ReceiptJob) error {
	orderID, err := uuid.Parse(job.OrderID)
	if err != nil {
		return err
	}

	sendCtx, cancel := context.WithTimeout(ctx, p.sendTimeout)
	defer cancel()
	if err := p.mailer.SendReceipt(sendCtx, job); err != nil {
		p.logger.Error("local receipt send failed",
			zap.String("orderId", job.OrderID),
			zap.Error(err))
		return err
	}
	return p.orders.MarkReceiptSent(ctx, orderID, time.Now().UTC())
}
