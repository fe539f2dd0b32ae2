package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/simaogato/riskparity-backend/internal/domain"
)

// instrumentRepository implements domain.InstrumentRepository
type instrumentRepository struct {
	db *DB
}

// NewInstrumentRepository creates a new instrument repository
func NewInstrumentRepository(db *DB) domain.InstrumentRepository {
	return &instrumentRepository{db: db}
}

// GetByID retrieves an instrument by its ID
func (r *instrumentRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Instrument, error) {
	query := `
		SELECT id, ticker, name, type, quote_kind, benchmark
		FROM instruments
		WHERE id = $1
	`
	return r.scanOne(r.db.QueryRowContext(ctx, query, id))
}

// GetByTicker retrieves an instrument by its ticker symbol
func (r *instrumentRepository) GetByTicker(ctx context.Context, ticker string) (*domain.Instrument, error) {
	query := `
		SELECT id, ticker, name, type, quote_kind, benchmark
		FROM instruments
		WHERE ticker = $1
	`
	return r.scanOne(r.db.QueryRowContext(ctx, query, ticker))
}

// Create creates a new instrument
func (r *instrumentRepository) Create(ctx context.Context, instrument *domain.Instrument) error {
	query := `
		INSERT INTO instruments (id, ticker, name, type, quote_kind, benchmark)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.db.ExecContext(ctx, query,
		instrument.ID,
		instrument.Ticker,
		instrument.Name,
		string(instrument.Type),
		string(instrument.QuoteKind),
		instrument.Benchmark,
	)
	if err != nil {
		return fmt.Errorf("failed to insert instrument: %w", err)
	}
	return nil
}

// List retrieves instruments, optionally filtered by type
func (r *instrumentRepository) List(ctx context.Context, typeFilter domain.InstrumentType) ([]*domain.Instrument, error) {
	query := `
		SELECT id, ticker, name, type, quote_kind, benchmark
		FROM instruments
	`
	args := []any{}
	if typeFilter != "" {
		query += ` WHERE type = $1`
		args = append(args, string(typeFilter))
	}
	query += ` ORDER BY ticker`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query instruments: %w", err)
	}
	defer rows.Close()

	return r.scanAll(rows)
}

// ListBenchmarks retrieves instruments flagged as benchmarks
func (r *instrumentRepository) ListBenchmarks(ctx context.Context) ([]*domain.Instrument, error) {
	query := `
		SELECT id, ticker, name, type, quote_kind, benchmark
		FROM instruments
		WHERE benchmark = TRUE
		ORDER BY ticker
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query benchmarks: %w", err)
	}
	defer rows.Close()

	return r.scanAll(rows)
}

func (r *instrumentRepository) scanOne(row *sql.Row) (*domain.Instrument, error) {
	var instrument domain.Instrument
	var instrumentType, quoteKind string

	err := row.Scan(
		&instrument.ID,
		&instrument.Ticker,
		&instrument.Name,
		&instrumentType,
		&quoteKind,
		&instrument.Benchmark,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan instrument: %w", err)
	}

	instrument.Type = domain.InstrumentType(instrumentType)
	instrument.QuoteKind = domain.QuoteKind(quoteKind)
	return &instrument, nil
}

func (r *instrumentRepository) scanAll(rows *sql.Rows) ([]*domain.Instrument, error) {
	var instruments []*domain.Instrument
	for rows.Next() {
		var instrument domain.Instrument
		var instrumentType, quoteKind string

		err := rows.Scan(
			&instrument.ID,
			&instrument.Ticker,
			&instrument.Name,
			&instrumentType,
			&quoteKind,
			&instrument.Benchmark,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan instrument: %w", err)
		}

		instrument.Type = domain.InstrumentType(instrumentType)
		instrument.QuoteKind = domain.QuoteKind(quoteKind)
		instruments = append(instruments, &instrument)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate instruments: %w", err)
	}
	return instruments, nil
}
