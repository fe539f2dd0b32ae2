package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/simaogato/riskparity-backend/internal/domain"
)

// priceHistoryRepository implements domain.PriceHistoryRepository
type priceHistoryRepository struct {
	db *DB
}

// NewPriceHistoryRepository creates a new price history repository
func NewPriceHistoryRepository(db *DB) domain.PriceHistoryRepository {
	return &priceHistoryRepository{db: db}
}

// AddBatch stores a batch of price points, skipping dates that already
// exist for the instrument
func (r *priceHistoryRepository) AddBatch(ctx context.Context, points []domain.PricePoint) error {
	if len(points) == 0 {
		return nil
	}

	dbTx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer dbTx.Rollback()

	query := `
		INSERT INTO price_history (id, instrument_id, date, price)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (instrument_id, date) DO NOTHING
	`

	for _, point := range points {
		var price sql.NullString
		if point.Price != nil {
			price = sql.NullString{String: point.Price.String(), Valid: true}
		}
		_, err = dbTx.ExecContext(ctx, query, point.ID, point.InstrumentID, point.Date, price)
		if err != nil {
			return fmt.Errorf("failed to insert price point: %w", err)
		}
	}

	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetLatest retrieves the most recent price point for an instrument
func (r *priceHistoryRepository) GetLatest(ctx context.Context, instrumentID uuid.UUID) (*domain.PricePoint, error) {
	query := `
		SELECT id, instrument_id, date, price
		FROM price_history
		WHERE instrument_id = $1 AND price IS NOT NULL
		ORDER BY date DESC
		LIMIT 1
	`

	var point domain.PricePoint
	var price sql.NullString
	err := r.db.QueryRowContext(ctx, query, instrumentID).Scan(
		&point.ID, &point.InstrumentID, &point.Date, &price,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan price point: %w", err)
	}

	if err := applyPrice(&point, price); err != nil {
		return nil, err
	}
	return &point, nil
}

// ListByInstrument retrieves an instrument's price points ordered
// ascending by date. Zero from/to values mean unbounded.
func (r *priceHistoryRepository) ListByInstrument(ctx context.Context, instrumentID uuid.UUID, from, to time.Time) ([]domain.PricePoint, error) {
	query := `
		SELECT id, instrument_id, date, price
		FROM price_history
		WHERE instrument_id = $1
	`
	args := []any{instrumentID}
	if !from.IsZero() {
		args = append(args, from)
		query += fmt.Sprintf(" AND date >= $%d", len(args))
	}
	if !to.IsZero() {
		args = append(args, to)
		query += fmt.Sprintf(" AND date <= $%d", len(args))
	}
	query += " ORDER BY date ASC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query price history: %w", err)
	}
	defer rows.Close()

	var points []domain.PricePoint
	for rows.Next() {
		var point domain.PricePoint
		var price sql.NullString
		if err := rows.Scan(&point.ID, &point.InstrumentID, &point.Date, &price); err != nil {
			return nil, fmt.Errorf("failed to scan price point: %w", err)
		}
		if err := applyPrice(&point, price); err != nil {
			return nil, err
		}
		points = append(points, point)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate price history: %w", err)
	}
	return points, nil
}

// LatestDate returns the date of the most recent stored point, or the
// zero time when the series is empty
func (r *priceHistoryRepository) LatestDate(ctx context.Context, instrumentID uuid.UUID) (time.Time, error) {
	query := `
		SELECT date
		FROM price_history
		WHERE instrument_id = $1
		ORDER BY date DESC
		LIMIT 1
	`

	var date time.Time
	err := r.db.QueryRowContext(ctx, query, instrumentID).Scan(&date)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return time.Time{}, nil
		}
		return time.Time{}, fmt.Errorf("failed to scan latest date: %w", err)
	}
	return date, nil
}

func applyPrice(point *domain.PricePoint, price sql.NullString) error {
	if !price.Valid {
		return nil
	}
	value, err := decimal.NewFromString(price.String)
	if err != nil {
		return fmt.Errorf("failed to parse stored price: %w", err)
	}
	point.Price = &value
	return nil
}
