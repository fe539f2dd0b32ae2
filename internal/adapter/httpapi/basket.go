package httpapi

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/simaogato/riskparity-backend/internal/domain"
	"github.com/simaogato/riskparity-backend/internal/usecase/performance"
)

type basketAssetRequest struct {
	InstrumentID     string `json:"instrument_id"`
	TargetPercentage string `json:"target_percentage"`
}

type basketRequest struct {
	Name   string               `json:"name"`
	Assets []basketAssetRequest `json:"assets"`
}

type basketAssetResponse struct {
	InstrumentID     string `json:"instrument_id"`
	TargetPercentage string `json:"target_percentage"`
}

type basketResponse struct {
	ID     string                `json:"id"`
	Name   string                `json:"name"`
	Assets []basketAssetResponse `json:"assets"`
}

func toBasketResponse(b *domain.Basket) basketResponse {
	resp := basketResponse{
		ID:     b.ID.String(),
		Name:   b.Name,
		Assets: make([]basketAssetResponse, 0, len(b.Assets)),
	}
	for _, asset := range b.Assets {
		resp.Assets = append(resp.Assets, basketAssetResponse{
			InstrumentID:     asset.InstrumentID.String(),
			TargetPercentage: asset.TargetPercentage.String(),
		})
	}
	return resp
}

func basketFromRequest(req basketRequest, userID uuid.UUID) (*domain.Basket, error) {
	b := &domain.Basket{
		UserID: userID,
		Name:   req.Name,
		Assets: make([]domain.BasketAsset, 0, len(req.Assets)),
	}
	for _, asset := range req.Assets {
		instrumentID, err := uuid.Parse(asset.InstrumentID)
		if err != nil {
			return nil, fmt.Errorf("invalid instrument_id %q", asset.InstrumentID)
		}
		pct, err := decimal.NewFromString(asset.TargetPercentage)
		if err != nil {
			return nil, fmt.Errorf("invalid target_percentage %q", asset.TargetPercentage)
		}
		b.Assets = append(b.Assets, domain.BasketAsset{
			InstrumentID:     instrumentID,
			TargetPercentage: pct,
		})
	}
	return b, nil
}

func (s *Server) createBasket(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserID(r.Context())

	var req basketRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	b, err := basketFromRequest(req, userID)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := b.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.Baskets.Create(r.Context(), b); err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toBasketResponse(b))
}

func (s *Server) listBaskets(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserID(r.Context())

	baskets, err := s.Baskets.List(r.Context(), userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	resp := make([]basketResponse, 0, len(baskets))
	for _, b := range baskets {
		resp = append(resp, toBasketResponse(b))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) getBasket(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserID(r.Context())

	basketID, err := uuid.Parse(chi.URLParam(r, "basketID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid basket id")
		return
	}

	b, err := s.Baskets.Get(r.Context(), userID, basketID)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toBasketResponse(b))
}

func (s *Server) updateBasket(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserID(r.Context())

	basketID, err := uuid.Parse(chi.URLParam(r, "basketID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid basket id")
		return
	}

	var req basketRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	b, err := basketFromRequest(req, userID)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	b.ID = basketID
	if err := b.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.Baskets.Update(r.Context(), userID, b); err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toBasketResponse(b))
}

func (s *Server) deleteBasket(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserID(r.Context())

	basketID, err := uuid.Parse(chi.URLParam(r, "basketID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid basket id")
		return
	}

	if err := s.Baskets.Delete(r.Context(), userID, basketID); err != nil {
		handleServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type assetReturnResponse struct {
	InstrumentID   string  `json:"instrument_id"`
	Ticker         string  `json:"ticker"`
	StartPrice     float64 `json:"start_price"`
	EndPrice       float64 `json:"end_price"`
	ReturnPct      float64 `json:"return_pct"`
	Allocation     float64 `json:"allocation"`
	WeightedReturn float64 `json:"weighted_return"`
}

type equityPointResponse struct {
	Date  string  `json:"date"`
	Value float64 `json:"value"`
}

type benchmarkResponse struct {
	Name       string  `json:"name"`
	ReturnPct  float64 `json:"return_pct"`
	Difference float64 `json:"difference"`
}

type performanceResponse struct {
	Period              string                `json:"period"`
	PeriodLabel         string                `json:"period_label"`
	StartDate           string                `json:"start_date"`
	EndDate             string                `json:"end_date"`
	ReturnPct           float64               `json:"return_pct"`
	AnnualizedReturnPct float64               `json:"annualized_return_pct"`
	StartValue          float64               `json:"start_value"`
	EndValue            float64               `json:"end_value"`
	AbsoluteGain        float64               `json:"absolute_gain"`
	AssetReturns        []assetReturnResponse `json:"asset_returns"`
	HasSufficientData   bool                  `json:"has_sufficient_data"`
	Volatility          float64               `json:"volatility"`
	SharpeRatio         float64               `json:"sharpe_ratio"`
	EquityCurve         []equityPointResponse `json:"equity_curve"`
	Benchmarks          []benchmarkResponse   `json:"benchmarks"`
}

func (s *Server) getBasketPerformance(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserID(r.Context())

	basketID, err := uuid.Parse(chi.URLParam(r, "basketID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid basket id")
		return
	}

	raw := r.URL.Query().Get("period")
	if raw == "" {
		raw = string(performance.Period1Y)
	}
	period, err := performance.ParsePeriod(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	perf, err := s.Performance.GetBasketPerformance(r.Context(), userID, basketID, period)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	resp := performanceResponse{
		Period:              string(perf.Period),
		PeriodLabel:         perf.PeriodLabel,
		StartDate:           perf.StartDate.Format(time.DateOnly),
		EndDate:             perf.EndDate.Format(time.DateOnly),
		ReturnPct:           perf.ReturnPct,
		AnnualizedReturnPct: perf.AnnualizedReturnPct,
		StartValue:          perf.StartValue,
		EndValue:            perf.EndValue,
		AbsoluteGain:        perf.AbsoluteGain,
		AssetReturns:        make([]assetReturnResponse, 0, len(perf.AssetReturns)),
		HasSufficientData:   perf.HasSufficientData,
		Volatility:          perf.Volatility,
		SharpeRatio:         perf.SharpeRatio,
		EquityCurve:         make([]equityPointResponse, 0, len(perf.EquityCurve)),
		Benchmarks:          make([]benchmarkResponse, 0, len(perf.Benchmarks)),
	}
	for _, ar := range perf.AssetReturns {
		resp.AssetReturns = append(resp.AssetReturns, assetReturnResponse{
			InstrumentID:   ar.InstrumentID.String(),
			Ticker:         ar.Ticker,
			StartPrice:     ar.StartPrice,
			EndPrice:       ar.EndPrice,
			ReturnPct:      ar.ReturnPct,
			Allocation:     ar.Allocation,
			WeightedReturn: ar.WeightedReturn,
		})
	}
	for _, point := range perf.EquityCurve {
		resp.EquityCurve = append(resp.EquityCurve, equityPointResponse{
			Date:  point.Date.Format(time.DateOnly),
			Value: point.Value,
		})
	}
	for _, bench := range perf.Benchmarks {
		resp.Benchmarks = append(resp.Benchmarks, benchmarkResponse{
			Name:       bench.Name,
			ReturnPct:  bench.ReturnPct,
			Difference: bench.Difference,
		})
	}

	writeJSON(w, http.StatusOK, resp)
}

type rebalanceRequest struct {
	TargetAmount      float64 `json:"target_amount"`
	IncludeCashInBase bool    `json:"include_cash_in_base"`
}

type suggestionResponse struct {
	InstrumentID         string  `json:"instrument_id"`
	Ticker               string  `json:"ticker"`
	CurrentPrice         float64 `json:"current_price"`
	CurrentShares        float64 `json:"current_shares"`
	CurrentValue         float64 `json:"current_value"`
	CurrentAllocationPct float64 `json:"current_allocation_pct"`
	TargetAllocationPct  float64 `json:"target_allocation_pct"`
	TargetValue          float64 `json:"target_value"`
	Delta                float64 `json:"delta"`
	Action               string  `json:"action"`
	SuggestedShares      float64 `json:"suggested_shares"`
	EstimatedCost        float64 `json:"estimated_cost"`
}

type rebalancePlanResponse struct {
	BasketID             string               `json:"basket_id"`
	BasketName           string               `json:"basket_name"`
	TargetAmount         float64              `json:"target_amount"`
	CurrentInvestedValue float64              `json:"current_invested_value"`
	CurrentBaseValue     float64              `json:"current_base_value"`
	IncludeCashInBase    bool                 `json:"include_cash_in_base"`
	CashBalance          float64              `json:"cash_balance"`
	TotalEstimatedCost   float64              `json:"total_estimated_cost"`
	CashAfterRebalance   float64              `json:"cash_after_rebalance"`
	Suggestions          []suggestionResponse `json:"suggestions"`
}

func (s *Server) buildRebalancePlan(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserID(r.Context())

	basketID, err := uuid.Parse(chi.URLParam(r, "basketID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid basket id")
		return
	}

	var req rebalanceRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.TargetAmount < 0 {
		writeError(w, http.StatusBadRequest, "target_amount cannot be negative")
		return
	}

	plan, err := s.Rebalance.BuildPlan(r.Context(), userID, basketID, req.TargetAmount, req.IncludeCashInBase)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	resp := rebalancePlanResponse{
		BasketID:             plan.BasketID.String(),
		BasketName:           plan.BasketName,
		TargetAmount:         plan.TargetAmount,
		CurrentInvestedValue: plan.CurrentInvestedValue,
		CurrentBaseValue:     plan.CurrentBaseValue,
		IncludeCashInBase:    plan.IncludeCashInBase,
		CashBalance:          plan.CashBalance,
		TotalEstimatedCost:   plan.TotalEstimatedCost,
		CashAfterRebalance:   plan.CashAfterRebalance,
		Suggestions:          make([]suggestionResponse, 0, len(plan.Suggestions)),
	}
	for _, sug := range plan.Suggestions {
		resp.Suggestions = append(resp.Suggestions, suggestionResponse{
			InstrumentID:         sug.InstrumentID.String(),
			Ticker:               sug.Ticker,
			CurrentPrice:         sug.CurrentPrice,
			CurrentShares:        sug.CurrentShares,
			CurrentValue:         sug.CurrentValue,
			CurrentAllocationPct: sug.CurrentAllocationPct,
			TargetAllocationPct:  sug.TargetAllocationPct,
			TargetValue:          sug.TargetValue,
			Delta:                sug.Delta,
			Action:               string(sug.Action),
			SuggestedShares:      sug.SuggestedShares,
			EstimatedCost:        sug.EstimatedCost,
		})
	}

	writeJSON(w, http.StatusOK, resp)
}
