package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/fundlane/fundlane/pkg"
	"github.com/fundlane/fundlane/pkg/database"
	"github.com/fundlane/fundlane/pkg/models"
	"github.com/fundlane/fundlane/pkg/utils"
)

// OrderRepository is the order store contract. Implementations must return
// detached copies: a caller mutating a returned Order must never affect
// stored state. Unknown ids surface pkg.ErrOrderNotFound.
type OrderRepository interface {
	// Create persists a new order. The caller is expected to have assigned
	// id, status and timestamps already.
	Create(ctx context.Context, order models.Order) error
	FindByID(ctx context.Context, id uuid.UUID) (models.Order, error)
	// List returns orders matching the filter, newest first. The sort is
	// stable: ties on created_at break on id.
	List(ctx context.Context, filter models.OrderFilter) ([]models.Order, error)
	// UpdateStatus sets the status and updated_at and returns the updated
	// order. The transition check happens inside the write: concurrent
	// updates on the same order serialize here, and a loser racing against
	// an already-settled order gets pkg.ErrTransitionBlocked, never a
	// second transition out of a terminal state.
	UpdateStatus(ctx context.Context, id uuid.UUID, status pkg.OrderStatus, now time.Time) (models.Order, error)
	// MarkReceiptSent stamps receipt_email_sent_at once; later calls are
	// no-ops so a redelivered receipt job cannot overwrite the first stamp.
	MarkReceiptSent(ctx context.Context, id uuid.UUID, sentAt time.Time) error
}

const orderColumns = `id, user_id, scheme_code, scheme_name, fund_house, nav, order_type, amount,
	frequency, sip_start_date, payout_account, target_scheme, transfer_start_date,
	payment_method, payment_gateway, payment_reference, status, receipt_email_sent_at,
	created_at, updated_at`

// PgOrderRepository persists orders in PostgreSQL. When an AES key is
// configured, payment references are encrypted before they hit the wire.
type PgOrderRepository struct {
	db     *database.DB
	aesKey []byte
}

func NewPgOrderRepository(db *database.DB, aesKey []byte) *PgOrderRepository {
	return &PgOrderRepository{db: db, aesKey: aesKey}
}

func (r *PgOrderRepository) Create(ctx context.Context, order models.Order) error {
	ref, err := r.sealReference(order.PaymentReference)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, `
		INSERT INTO orders (`+orderColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)`,
		order.ID, order.UserID, order.SchemeCode, order.SchemeName, order.FundHouse,
		order.Nav, order.OrderType, order.Amount, order.Frequency, order.SIPStartDate,
		order.PayoutAccount, order.TargetScheme, order.TransferStartDate,
		order.PaymentMethod, order.PaymentGateway, ref, order.Status,
		order.ReceiptEmailSentAt, order.CreatedAt, order.UpdatedAt,
	)
	return err
}

func (r *PgOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (models.Order, error) {
	row := r.db.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id)
	return r.scanOrder(row)
}

func (r *PgOrderRepository) List(ctx context.Context, filter models.OrderFilter) ([]models.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE 1=1`
	args := make([]any, 0, 2)
	if filter.UserID != uuid.Nil {
		args = append(args, filter.UserID)
		query += ` AND user_id = $1`
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		if len(args) == 1 {
			query += ` AND status = $1`
		} else {
			query += ` AND status = $2`
		}
	}
	query += ` ORDER BY created_at DESC, id`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []models.Order
	for rows.Next() {
		order, err := r.scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	return orders, rows.Err()
}

func (r *PgOrderRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status pkg.OrderStatus, now time.Time) (models.Order, error) {
	// The transition matrix only permits moves out of processing, so the
	// guard is a single status predicate on the row itself.
	row := r.db.QueryRowWriter(ctx, `
		UPDATE orders SET status = $2, updated_at = $3
		WHERE id = $1 AND status = $4 AND status <> $2
		RETURNING `+orderColumns, id, status, now, pkg.OrderStatusProcessing)
	order, err := r.scanOrder(row)
	if errors.Is(err, pkg.ErrOrderNotFound) {
		// Zero rows: the order is missing, or it is no longer in a state
		// the requested transition may leave.
		if _, findErr := r.FindByID(ctx, id); findErr != nil {
			return models.Order{}, findErr
		}
		return models.Order{}, pkg.ErrTransitionBlocked
	}
	return order, err
}

func (r *PgOrderRepository) MarkReceiptSent(ctx context.Context, id uuid.UUID, sentAt time.Time) error {
	_, err := r.db.Exec(ctx, `
		UPDATE orders SET receipt_email_sent_at = $2
		WHERE id = $1 AND receipt_email_sent_at IS NULL`, id, sentAt)
	return err
}

func (r *PgOrderRepository) scanOrder(row pgx.Row) (models.Order, error) {
	var o models.Order
	err := row.Scan(
		&o.ID, &o.UserID, &o.SchemeCode, &o.SchemeName, &o.FundHouse, &o.Nav,
		&o.OrderType, &o.Amount, &o.Frequency, &o.SIPStartDate, &o.PayoutAccount,
		&o.TargetScheme, &o.TransferStartDate, &o.PaymentMethod, &o.PaymentGateway,
		&o.PaymentReference, &o.Status, &o.ReceiptEmailSentAt, &o.CreatedAt, &o.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Order{}, pkg.ErrOrderNotFound
	}
	if err != nil {
		return models.Order{}, err
	}
	if o.PaymentReference, err = r.openReference(o.PaymentReference); err != nil {
		return models.Order{}, err
	}
	return o, nil
}

func (r *PgOrderRepository) sealReference(ref string) (string, error) {
	if len(r.aesKey) == 0 || ref == "" {
		return ref, nil
	}
	return utils.EncryptAES([]byte(ref), r.aesKey)
}

func (r *PgOrderRepository) openReference(ref string) (string, error) {
	if len(r.aesKey) == 0 || ref == "" {
		return ref, nil
	}
	plain, err := utils.DecryptAES(ref, r.aesKey)
	if err != nil {
		return "", err
	}
	return string(plain), nil
}
