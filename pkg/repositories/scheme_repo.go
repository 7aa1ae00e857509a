package repositories

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/fundlane/fundlane/pkg"
	"github.com/fundlane/fundlane/pkg/database"
	"github.com/fundlane/fundlane/pkg/models"
)

// SchemeRepository is the fund-catalog store contract. Upserts come from the
// NAV refresh path; reads serve the browse endpoints.
type SchemeRepository interface {
	Upsert(ctx context.Context, scheme models.Scheme) error
	UpsertNavs(ctx context.Context, schemeCode int, points []models.NavPoint) error
	FindByCode(ctx context.Context, schemeCode int) (models.Scheme, error)
	List(ctx context.Context, filter models.SchemeFilter) ([]models.Scheme, error)
	NavHistory(ctx context.Context, schemeCode int, limit int) ([]models.NavPoint, error)
}

const schemeColumns = `scheme_code, scheme_name, fund_house, category, latest_nav, nav_date, updated_at`

type PgSchemeRepository struct {
	db *database.DB
}

func NewPgSchemeRepository(db *database.DB) *PgSchemeRepository {
	return &PgSchemeRepository{db: db}
}

func (r *PgSchemeRepository) Upsert(ctx context.Context, s models.Scheme) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO schemes (`+schemeColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (scheme_code) DO UPDATE SET
			scheme_name = EXCLUDED.scheme_name,
			fund_house  = EXCLUDED.fund_house,
			category    = EXCLUDED.category,
			latest_nav  = EXCLUDED.latest_nav,
			nav_date    = EXCLUDED.nav_date,
			updated_at  = EXCLUDED.updated_at`,
		s.SchemeCode, s.SchemeName, s.FundHouse, s.Category, s.LatestNav, s.NavDate, s.UpdatedAt,
	)
	return err
}

func (r *PgSchemeRepository) UpsertNavs(ctx context.Context, schemeCode int, points []models.NavPoint) error {
	return r.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		for _, p := range points {
			if _, err := tx.Exec(ctx, `
				INSERT INTO scheme_navs (scheme_code, nav_date, nav)
				VALUES ($1, $2, $3)
				ON CONFLICT (scheme_code, nav_date) DO UPDATE SET nav = EXCLUDED.nav`,
				schemeCode, p.Date, p.Nav,
			); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *PgSchemeRepository) FindByCode(ctx context.Context, schemeCode int) (models.Scheme, error) {
	row := r.db.QueryRow(ctx, `SELECT `+schemeColumns+` FROM schemes WHERE scheme_code = $1`, schemeCode)
	return scanScheme(row)
}

func (r *PgSchemeRepository) List(ctx context.Context, filter models.SchemeFilter) ([]models.Scheme, error) {
	query := `SELECT ` + schemeColumns + ` FROM schemes WHERE 1=1`
	args := make([]any, 0, 2)
	if filter.FundHouse != "" {
		args = append(args, filter.FundHouse)
		query += ` AND fund_house = $1`
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		if len(args) == 1 {
			query += ` AND scheme_name ILIKE $1`
		} else {
			query += ` AND scheme_name ILIKE $2`
		}
	}
	query += ` ORDER BY scheme_name, scheme_code`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var schemes []models.Scheme
	for rows.Next() {
		s, err := scanScheme(rows)
		if err != nil {
			return nil, err
		}
		schemes = append(schemes, s)
	}
	return schemes, rows.Err()
}

func (r *PgSchemeRepository) NavHistory(ctx context.Context, schemeCode int, limit int) ([]models.NavPoint, error) {
	rows, err := r.db.Query(ctx, `
		SELECT nav_date, nav FROM scheme_navs
		WHERE scheme_code = $1 ORDER BY nav_date DESC LIMIT $2`, schemeCode, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var points []models.NavPoint
	for rows.Next() {
		var p models.NavPoint
		if err := rows.Scan(&p.Date, &p.Nav); err != nil {
			return nil, err
		}
		points = append(points, p)
	}
	return points, rows.Err()
}

func scanScheme(row pgx.Row) (models.Scheme, error) {
	var s models.Scheme
	err := row.Scan(&s.SchemeCode, &s.SchemeName, &s.FundHouse, &s.Category, &s.LatestNav, &s.NavDate, &s.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Scheme{}, pkg.ErrSchemeNotFound
	}
	return s, err
}
