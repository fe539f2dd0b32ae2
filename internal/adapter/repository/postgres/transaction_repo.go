package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/simaogato/riskparity-backend/internal/domain"
)

// transactionRepository implements domain.TransactionRepository
type transactionRepository struct {
	db *DB
}

// NewTransactionRepository creates a new transaction repository
func NewTransactionRepository(db *DB) domain.TransactionRepository {
	return &transactionRepository{db: db}
}

// Create creates a new transaction
func (r *transactionRepository) Create(ctx context.Context, tx *domain.Transaction) error {
	query := `
		INSERT INTO transactions (id, user_id, instrument_id, type, shares, price_per_share, date)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.db.ExecContext(ctx, query,
		tx.ID,
		tx.UserID,
		tx.InstrumentID,
		string(tx.Type),
		tx.Shares.String(),
		tx.PricePerShare.String(),
		tx.Date,
	)
	if err != nil {
		return fmt.Errorf("failed to insert transaction: %w", err)
	}
	return nil
}

// ListByUser retrieves all of a user's transactions ordered ascending
// by date
func (r *transactionRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Transaction, error) {
	query := `
		SELECT id, user_id, instrument_id, type, shares, price_per_share, date
		FROM transactions
		WHERE user_id = $1
		ORDER BY date ASC
	`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	return r.scanAll(rows)
}

// List retrieves a paginated list of a user's transactions ordered
// descending by date
func (r *transactionRepository) List(ctx context.Context, userID uuid.UUID, limit, offset int, instrumentID *uuid.UUID) ([]domain.Transaction, error) {
	query := `
		SELECT id, user_id, instrument_id, type, shares, price_per_share, date
		FROM transactions
		WHERE user_id = $1
	`
	args := []any{userID}
	if instrumentID != nil {
		args = append(args, *instrumentID)
		query += fmt.Sprintf(" AND instrument_id = $%d", len(args))
	}
	args = append(args, limit, offset)
	query += fmt.Sprintf(" ORDER BY date DESC LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	return r.scanAll(rows)
}

// Count returns the number of a user's transactions, optionally
// filtered by instrument
func (r *transactionRepository) Count(ctx context.Context, userID uuid.UUID, instrumentID *uuid.UUID) (int, error) {
	query := `SELECT COUNT(*) FROM transactions WHERE user_id = $1`
	args := []any{userID}
	if instrumentID != nil {
		args = append(args, *instrumentID)
		query += fmt.Sprintf(" AND instrument_id = $%d", len(args))
	}

	var count int
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count transactions: %w", err)
	}
	return count, nil
}

func (r *transactionRepository) scanAll(rows *sql.Rows) ([]domain.Transaction, error) {
	var transactions []domain.Transaction
	for rows.Next() {
		var tx domain.Transaction
		var txType, shares, price string

		err := rows.Scan(
			&tx.ID,
			&tx.UserID,
			&tx.InstrumentID,
			&txType,
			&shares,
			&price,
			&tx.Date,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}

		tx.Type = domain.TransactionType(txType)
		if tx.Shares, err = decimal.NewFromString(shares); err != nil {
			return nil, fmt.Errorf("failed to parse shares: %w", err)
		}
		if tx.PricePerShare, err = decimal.NewFromString(price); err != nil {
			return nil, fmt.Errorf("failed to parse price per share: %w", err)
		}
		transactions = append(transactions, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate transactions: %w", err)
	}
	return transactions, nil
}
