// Package basket manages target-allocation baskets: CRUD with
// ownership checks and allocation validation.
package basket

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/simaogato/riskparity-backend/internal/domain"
)

// BasketService handles basket lifecycle operations
type BasketService struct {
	Repo           domain.BasketRepository
	InstrumentRepo domain.InstrumentRepository
	Log            zerolog.Logger
}

// NewBasketService creates a new BasketService instance
func NewBasketService(repo domain.BasketRepository, instrumentRepo domain.InstrumentRepository, log zerolog.Logger) *BasketService {
	return &BasketService{
		Repo:           repo,
		InstrumentRepo: instrumentRepo,
		Log:            log.With().Str("component", "basket").Logger(),
	}
}

// Create validates and stores a new basket. Every referenced
// instrument must exist.
func (s *BasketService) Create(ctx context.Context, basket *domain.Basket) error {
	if err := basket.Validate(); err != nil {
		return err
	}
	if err := s.checkInstruments(ctx, basket); err != nil {
		return err
	}

	if basket.ID == uuid.Nil {
		basket.ID = uuid.New()
	}
	if err := s.Repo.Create(ctx, basket); err != nil {
		return fmt.Errorf("failed to create basket: %w", err)
	}

	s.Log.Info().
		Str("basket_id", basket.ID.String()).
		Int("assets", len(basket.Assets)).
		Msg("basket created")
	return nil
}

// Get retrieves one of the user's baskets. Baskets owned by other
// users are reported as not found.
func (s *BasketService) Get(ctx context.Context, userID, basketID uuid.UUID) (*domain.Basket, error) {
	basket, err := s.Repo.GetByID(ctx, basketID)
	if err != nil {
		return nil, err
	}
	if basket.UserID != userID {
		return nil, domain.ErrNotFound
	}
	return basket, nil
}

// List retrieves all of the user's baskets
func (s *BasketService) List(ctx context.Context, userID uuid.UUID) ([]*domain.Basket, error) {
	return s.Repo.ListByUser(ctx, userID)
}

// Update replaces the basket's name and allocations
func (s *BasketService) Update(ctx context.Context, userID uuid.UUID, basket *domain.Basket) error {
	existing, err := s.Get(ctx, userID, basket.ID)
	if err != nil {
		return err
	}
	basket.UserID = existing.UserID

	if err := basket.Validate(); err != nil {
		return err
	}
	if err := s.checkInstruments(ctx, basket); err != nil {
		return err
	}

	return s.Repo.Update(ctx, basket)
}

// Delete removes one of the user's baskets
func (s *BasketService) Delete(ctx context.Context, userID, basketID uuid.UUID) error {
	if _, err := s.Get(ctx, userID, basketID); err != nil {
		return err
	}
	return s.Repo.Delete(ctx, basketID)
}

func (s *BasketService) checkInstruments(ctx context.Context, basket *domain.Basket) error {
	for _, asset := range basket.Assets {
		if _, err := s.InstrumentRepo.GetByID(ctx, asset.InstrumentID); err != nil {
			return fmt.Errorf("instrument %s: %w", asset.InstrumentID, err)
		}
	}
	return nil
}
