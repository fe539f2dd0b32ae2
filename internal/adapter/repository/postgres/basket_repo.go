package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/simaogato/riskparity-backend/internal/domain"
)

// basketRepository implements domain.BasketRepository
type basketRepository struct {
	db *DB
}

// NewBasketRepository creates a new basket repository
func NewBasketRepository(db *DB) domain.BasketRepository {
	return &basketRepository{db: db}
}

// Create creates a new basket with its allocations in a database
// transaction
func (r *basketRepository) Create(ctx context.Context, basket *domain.Basket) error {
	dbTx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer dbTx.Rollback()

	insertBasket := `INSERT INTO baskets (id, user_id, name) VALUES ($1, $2, $3)`
	if _, err = dbTx.ExecContext(ctx, insertBasket, basket.ID, basket.UserID, basket.Name); err != nil {
		return fmt.Errorf("failed to insert basket: %w", err)
	}

	if err := insertAssets(ctx, dbTx, basket); err != nil {
		return err
	}

	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetByID retrieves a basket with its allocations
func (r *basketRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Basket, error) {
	query := `SELECT id, user_id, name FROM baskets WHERE id = $1`

	var basket domain.Basket
	err := r.db.QueryRowContext(ctx, query, id).Scan(&basket.ID, &basket.UserID, &basket.Name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan basket: %w", err)
	}

	if basket.Assets, err = r.loadAssets(ctx, basket.ID); err != nil {
		return nil, err
	}
	return &basket, nil
}

// ListByUser retrieves all baskets owned by a user, ordered by name
func (r *basketRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Basket, error) {
	query := `SELECT id, user_id, name FROM baskets WHERE user_id = $1 ORDER BY name`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query baskets: %w", err)
	}
	defer rows.Close()

	var baskets []*domain.Basket
	for rows.Next() {
		var basket domain.Basket
		if err := rows.Scan(&basket.ID, &basket.UserID, &basket.Name); err != nil {
			return nil, fmt.Errorf("failed to scan basket: %w", err)
		}
		baskets = append(baskets, &basket)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate baskets: %w", err)
	}

	for _, basket := range baskets {
		if basket.Assets, err = r.loadAssets(ctx, basket.ID); err != nil {
			return nil, err
		}
	}
	return baskets, nil
}

// Update replaces the basket's name and allocations atomically
func (r *basketRepository) Update(ctx context.Context, basket *domain.Basket) error {
	dbTx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer dbTx.Rollback()

	result, err := dbTx.ExecContext(ctx, `UPDATE baskets SET name = $1 WHERE id = $2`, basket.Name, basket.ID)
	if err != nil {
		return fmt.Errorf("failed to update basket: %w", err)
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return domain.ErrNotFound
	}

	if _, err = dbTx.ExecContext(ctx, `DELETE FROM basket_assets WHERE basket_id = $1`, basket.ID); err != nil {
		return fmt.Errorf("failed to clear basket assets: %w", err)
	}
	if err := insertAssets(ctx, dbTx, basket); err != nil {
		return err
	}

	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Delete removes the basket and its allocations
func (r *basketRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM baskets WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete basket: %w", err)
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *basketRepository) loadAssets(ctx context.Context, basketID uuid.UUID) ([]domain.BasketAsset, error) {
	query := `
		SELECT instrument_id, target_percentage
		FROM basket_assets
		WHERE basket_id = $1
		ORDER BY target_percentage DESC
	`
	rows, err := r.db.QueryContext(ctx, query, basketID)
	if err != nil {
		return nil, fmt.Errorf("failed to query basket assets: %w", err)
	}
	defer rows.Close()

	var assets []domain.BasketAsset
	for rows.Next() {
		var asset domain.BasketAsset
		var pct string
		if err := rows.Scan(&asset.InstrumentID, &pct); err != nil {
			return nil, fmt.Errorf("failed to scan basket asset: %w", err)
		}
		if asset.TargetPercentage, err = decimal.NewFromString(pct); err != nil {
			return nil, fmt.Errorf("failed to parse target percentage: %w", err)
		}
		assets = append(assets, asset)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate basket assets: %w", err)
	}
	return assets, nil
}

func insertAssets(ctx context.Context, dbTx *sql.Tx, basket *domain.Basket) error {
	query := `
		INSERT INTO basket_assets (basket_id, instrument_id, target_percentage)
		VALUES ($1, $2, $3)
	`
	for _, asset := range basket.Assets {
		_, err := dbTx.ExecContext(ctx, query, basket.ID, asset.InstrumentID, asset.TargetPercentage.String())
		if err != nil {
			return fmt.Errorf("failed to insert basket asset: %w", err)
		}
	}
	return nil
}
