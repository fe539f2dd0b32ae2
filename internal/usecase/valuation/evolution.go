package valuation

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/simaogato/riskparity-backend/internal/domain"
)

// EvolutionPeriod selects how far back the portfolio evolution series reaches
type EvolutionPeriod string

const (
	EvolutionWeek  EvolutionPeriod = "week"
	EvolutionMonth EvolutionPeriod = "month"
	EvolutionYear  EvolutionPeriod = "year"
	EvolutionAll   EvolutionPeriod = "all"
)

// EvolutionPoint is one day of the portfolio value series
type EvolutionPoint struct {
	Date  time.Time
	Value float64
}

// Evolution is the daily portfolio value series over the requested period
type Evolution struct {
	Points       []EvolutionPoint
	CurrentValue float64
	InitialDate  *time.Time
}

// GetEvolution reconstructs the portfolio's daily value from the first
// transaction (or the period cutoff) until today. Positions are rebuilt
// day by day and valued at the latest stored price at or before each
// day. Fund values are linearly interpolated between the invested
// amount and the current reported value. The cash balance has no
// history of its own and is only added to the final (current) day.
func (s *ValuationService) GetEvolution(ctx context.Context, userID uuid.UUID, period EvolutionPeriod) (*Evolution, error) {
	transactions, err := s.TransactionRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}

	if len(transactions) == 0 {
		return &Evolution{Points: []EvolutionPoint{}}, nil
	}

	funds, err := s.FundRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list funds: %w", err)
	}

	portfolio, err := s.PortfolioRepo.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load portfolio: %w", err)
	}
	cash, _ := portfolio.CashBalance.Float64()

	histories, err := s.loadHistories(ctx, transactions)
	if err != nil {
		return nil, err
	}

	firstDate := transactions[0].Date
	today := startOfDay(time.Now())

	start := startOfDay(firstDate)
	switch period {
	case EvolutionWeek:
		start = today.AddDate(0, 0, -7)
	case EvolutionMonth:
		start = today.AddDate(0, -1, 0)
	case EvolutionYear:
		start = today.AddDate(-1, 0, 0)
	}

	points := make([]EvolutionPoint, 0)
	shares := make(map[uuid.UUID]float64)
	next := 0 // index of the next transaction to apply

	sorted := make([]domain.Transaction, len(transactions))
	copy(sorted, transactions)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Date.Before(sorted[j].Date) })

	// Transactions before the window still shape the opening positions
	for day := startOfDay(firstDate); !day.After(today); day = day.AddDate(0, 0, 1) {
		for next < len(sorted) && !sorted[next].Date.After(endOfDay(day)) {
			tx := sorted[next]
			qty, _ := tx.Shares.Float64()
			if tx.Type == domain.TransactionTypeBuy {
				shares[tx.InstrumentID] += qty
			} else {
				shares[tx.InstrumentID] -= qty
			}
			next++
		}

		if day.Before(start) {
			continue
		}

		value := 0.0
		for instrumentID, qty := range shares {
			if qty <= 0 {
				continue
			}
			if price := priceAtOrBefore(histories[instrumentID], day); price != nil {
				value += qty * *price
			}
		}

		value += fundsValueAt(funds, day, today)

		if day.Equal(today) {
			value += cash
		}

		points = append(points, EvolutionPoint{Date: day, Value: value})
	}

	current := 0.0
	if len(points) > 0 {
		current = points[len(points)-1].Value
	}

	return &Evolution{
		Points:       points,
		CurrentValue: current,
		InitialDate:  &firstDate,
	}, nil
}

// loadHistories fetches the full price history of every instrument the
// transactions reference, ordered ascending by date.
func (s *ValuationService) loadHistories(ctx context.Context, transactions []domain.Transaction) (map[uuid.UUID][]domain.PricePoint, error) {
	histories := make(map[uuid.UUID][]domain.PricePoint)
	for _, tx := range transactions {
		if _, ok := histories[tx.InstrumentID]; ok {
			continue
		}
		points, err := s.PriceRepo.ListByInstrument(ctx, tx.InstrumentID, time.Time{}, time.Time{})
		if err != nil {
			return nil, fmt.Errorf("failed to load price history: %w", err)
		}
		histories[tx.InstrumentID] = points
	}
	return histories, nil
}

// priceAtOrBefore returns the latest non-nil price at or before day,
// or nil when the series has no observation yet.
func priceAtOrBefore(history []domain.PricePoint, day time.Time) *float64 {
	cutoff := endOfDay(day)
	var found *float64
	for i := range history {
		if history[i].Date.After(cutoff) {
			break
		}
		if p := history[i].PriceFloat(); p != nil {
			found = p
		}
	}
	return found
}

// fundsValueAt estimates the combined fund value at a past day by
// interpolating linearly between each fund's invested amount and its
// current reported value.
func fundsValueAt(funds []*domain.InvestmentFund, day, today time.Time) float64 {
	total := 0.0
	for _, fund := range funds {
		if fund.InvestmentDate.After(endOfDay(day)) {
			continue
		}

		initial, _ := fund.InitialInvestment.Float64()
		current, _ := fund.CurrentValue.Float64()

		totalDays := int(today.Sub(startOfDay(fund.InvestmentDate)).Hours() / 24)
		if totalDays <= 0 {
			total += initial
			continue
		}

		elapsed := int(day.Sub(startOfDay(fund.InvestmentDate)).Hours() / 24)
		progress := float64(elapsed) / float64(totalDays)
		total += initial + (current-initial)*progress
	}
	return total
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func endOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, int(999*time.Millisecond), t.Location())
}
