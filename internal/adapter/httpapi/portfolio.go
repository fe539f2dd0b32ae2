package httpapi

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/simaogato/riskparity-backend/internal/domain"
	"github.com/simaogato/riskparity-backend/internal/usecase/valuation"
)

type positionResponse struct {
	InstrumentID   string   `json:"instrument_id"`
	Shares         float64  `json:"shares"`
	AverageCost    float64  `json:"average_cost"`
	CurrentPrice   *float64 `json:"current_price"`
	CurrentValue   float64  `json:"current_value"`
	TotalCost      float64  `json:"total_cost"`
	UnrealizedGain float64  `json:"unrealized_gain"`
}

type portfolioResponse struct {
	PortfolioID   string             `json:"portfolio_id"`
	CashBalance   float64            `json:"cash_balance"`
	Positions     []positionResponse `json:"positions"`
	FundsValue    float64            `json:"funds_value"`
	TotalValue    float64            `json:"total_value"`
	MissingPrices []string           `json:"missing_prices,omitempty"`
}

func (s *Server) getPortfolio(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserID(r.Context())

	view, err := s.Valuation.GetPortfolio(r.Context(), userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	resp := portfolioResponse{
		PortfolioID: view.PortfolioID.String(),
		CashBalance: view.CashBalance,
		Positions:   make([]positionResponse, 0, len(view.Positions)),
		FundsValue:  view.FundsValue,
		TotalValue:  view.TotalValue,
	}
	for _, pos := range view.Positions {
		resp.Positions = append(resp.Positions, positionResponse{
			InstrumentID:   pos.InstrumentID.String(),
			Shares:         pos.Shares,
			AverageCost:    pos.AverageCost,
			CurrentPrice:   pos.CurrentPrice,
			CurrentValue:   pos.CurrentValue,
			TotalCost:      pos.TotalCost,
			UnrealizedGain: pos.UnrealizedGain,
		})
	}
	for _, id := range view.MissingPrices {
		resp.MissingPrices = append(resp.MissingPrices, id.String())
	}

	writeJSON(w, http.StatusOK, resp)
}

type metricsResponse struct {
	TotalValue       float64 `json:"total_value"`
	TotalGain        float64 `json:"total_gain"`
	TotalGainPercent float64 `json:"total_gain_percent"`
	RiskBalanceScore int     `json:"risk_balance_score"`
	CashBalance      float64 `json:"cash_balance"`
	PositionsValue   float64 `json:"positions_value"`
	FundsValue       float64 `json:"funds_value"`
}

func (s *Server) getMetrics(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserID(r.Context())

	var basket *domain.Basket
	if raw := r.URL.Query().Get("basket_id"); raw != "" {
		basketID, err := uuid.Parse(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid basket_id")
			return
		}
		basket, err = s.Baskets.Get(r.Context(), userID, basketID)
		if err != nil {
			handleServiceError(w, err)
			return
		}
	}

	metrics, err := s.Valuation.GetMetrics(r.Context(), userID, basket)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, metricsResponse{
		TotalValue:       metrics.TotalValue,
		TotalGain:        metrics.TotalGain,
		TotalGainPercent: metrics.TotalGainPercent,
		RiskBalanceScore: metrics.RiskBalanceScore,
		CashBalance:      metrics.CashBalance,
		PositionsValue:   metrics.PositionsValue,
		FundsValue:       metrics.FundsValue,
	})
}

type evolutionPointResponse struct {
	Date  string  `json:"date"`
	Value float64 `json:"value"`
}

type evolutionResponse struct {
	Points       []evolutionPointResponse `json:"points"`
	CurrentValue float64                  `json:"current_value"`
	InitialDate  *string                  `json:"initial_date,omitempty"`
}

func (s *Server) getEvolution(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserID(r.Context())

	period := valuation.EvolutionPeriod(r.URL.Query().Get("period"))
	switch period {
	case "":
		period = valuation.EvolutionAll
	case valuation.EvolutionWeek, valuation.EvolutionMonth, valuation.EvolutionYear, valuation.EvolutionAll:
	default:
		writeError(w, http.StatusBadRequest, "invalid period")
		return
	}

	evolution, err := s.Valuation.GetEvolution(r.Context(), userID, period)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	resp := evolutionResponse{
		Points:       make([]evolutionPointResponse, 0, len(evolution.Points)),
		CurrentValue: evolution.CurrentValue,
	}
	for _, point := range evolution.Points {
		resp.Points = append(resp.Points, evolutionPointResponse{
			Date:  point.Date.Format(time.DateOnly),
			Value: point.Value,
		})
	}
	if evolution.InitialDate != nil {
		formatted := evolution.InitialDate.Format(time.DateOnly)
		resp.InitialDate = &formatted
	}

	writeJSON(w, http.StatusOK, resp)
}

type updateCashRequest struct {
	CashBalance string `json:"cash_balance"`
}

func (s *Server) updateCash(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserID(r.Context())

	var req updateCashRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	balance, err := decimal.NewFromString(req.CashBalance)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid cash_balance format")
		return
	}
	if balance.IsNegative() {
		writeError(w, http.StatusBadRequest, "cash balance cannot be negative")
		return
	}

	portfolio, err := s.Trading.UpdateCashBalance(r.Context(), userID, balance)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"portfolio_id": portfolio.ID.String(),
		"cash_balance": portfolio.CashBalance.String(),
	})
}

type instrumentResponse struct {
	ID        string `json:"id"`
	Ticker    string `json:"ticker"`
	Name      string `json:"name"`
	Type      string `json:"type"`
	QuoteKind string `json:"quote_kind"`
	Benchmark bool   `json:"benchmark"`
}

func (s *Server) listInstruments(w http.ResponseWriter, r *http.Request) {
	typeFilter := domain.InstrumentType(r.URL.Query().Get("type"))

	instruments, err := s.Instruments.List(r.Context(), typeFilter)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	resp := make([]instrumentResponse, 0, len(instruments))
	for _, inst := range instruments {
		resp = append(resp, instrumentResponse{
			ID:        inst.ID.String(),
			Ticker:    inst.Ticker,
			Name:      inst.Name,
			Type:      string(inst.Type),
			QuoteKind: string(inst.QuoteKind),
			Benchmark: inst.Benchmark,
		})
	}

	writeJSON(w, http.StatusOK, resp)
}
