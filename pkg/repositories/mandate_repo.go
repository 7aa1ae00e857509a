package repositories

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/fundlane/fundlane/pkg"
	"github.com/fundlane/fundlane/pkg/database"
	"github.com/fundlane/fundlane/pkg/models"
)

// MandateRepository is the mandate store contract. ToggleStatus must be
// atomic with respect to its own read-modify-write and must never create a
// record for an unknown id (pkg.ErrMandateNotFound instead).
type MandateRepository interface {
	Create(ctx context.Context, mandate models.Mandate) error
	List(ctx context.Context, userID uuid.UUID) ([]models.Mandate, error)
	// ToggleStatus flips a mandate owned by userID. A mandate belonging to
	// another user is indistinguishable from an unknown id.
	ToggleStatus(ctx context.Context, userID uuid.UUID, id uuid.UUID) (models.Mandate, error)
}

const mandateColumns = `id, user_id, nickname, bank, debit_limit, status, created_at`

type PgMandateRepository struct {
	db *database.DB
}

func NewPgMandateRepository(db *database.DB) *PgMandateRepository {
	return &PgMandateRepository{db: db}
}

func (r *PgMandateRepository) Create(ctx context.Context, mandate models.Mandate) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO mandates (`+mandateColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		mandate.ID, mandate.UserID, mandate.Nickname, mandate.Bank,
		mandate.Limit, mandate.Status, mandate.CreatedAt,
	)
	return err
}

func (r *PgMandateRepository) List(ctx context.Context, userID uuid.UUID) ([]models.Mandate, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+mandateColumns+` FROM mandates
		WHERE user_id = $1 ORDER BY created_at DESC, id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var mandates []models.Mandate
	for rows.Next() {
		m, err := scanMandate(rows)
		if err != nil {
			return nil, err
		}
		mandates = append(mandates, m)
	}
	return mandates, rows.Err()
}

// ToggleStatus flips active<->paused in a single statement, so two racing
// toggles on the same mandate serialize on the row lock instead of losing one.
func (r *PgMandateRepository) ToggleStatus(ctx context.Context, userID uuid.UUID, id uuid.UUID) (models.Mandate, error) {
	row := r.db.QueryRowWriter(ctx, `
		UPDATE mandates
		SET status = CASE WHEN status = $3 THEN $4 ELSE $3 END
		WHERE id = $1 AND user_id = $2
		RETURNING `+mandateColumns,
		id, userID, pkg.MandateStatusActive, pkg.MandateStatusPaused)
	return scanMandate(row)
}

func scanMandate(row pgx.Row) (models.Mandate, error) {
	var m models.Mandate
	err := row.Scan(&m.ID, &m.UserID, &m.Nickname, &m.Bank, &m.Limit, &m.Status, &m.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Mandate{}, pkg.ErrMandateNotFound
	}
	return m, err
}
