package httpapi

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/simaogato/riskparity-backend/internal/domain"
)

type recordTradeRequest struct {
	InstrumentID  string `json:"instrument_id"`
	Type          string `json:"type"`
	Shares        string `json:"shares"`
	PricePerShare string `json:"price_per_share"`
	Date          string `json:"date"`
}

type transactionResponse struct {
	ID            string `json:"id"`
	InstrumentID  string `json:"instrument_id"`
	Type          string `json:"type"`
	Shares        string `json:"shares"`
	PricePerShare string `json:"price_per_share"`
	Date          string `json:"date"`
}

func toTransactionResponse(tx *domain.Transaction) transactionResponse {
	return transactionResponse{
		ID:            tx.ID.String(),
		InstrumentID:  tx.InstrumentID.String(),
		Type:          string(tx.Type),
		Shares:        tx.Shares.String(),
		PricePerShare: tx.PricePerShare.String(),
		Date:          tx.Date.Format(time.DateOnly),
	}
}

func (s *Server) recordTrade(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserID(r.Context())

	var req recordTradeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	instrumentID, err := uuid.Parse(req.InstrumentID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid instrument_id")
		return
	}
	shares, err := decimal.NewFromString(req.Shares)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid shares format")
		return
	}
	price, err := decimal.NewFromString(req.PricePerShare)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid price_per_share format")
		return
	}
	date, err := time.Parse(time.DateOnly, req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
		return
	}

	tx := &domain.Transaction{
		ID:            uuid.New(),
		UserID:        userID,
		InstrumentID:  instrumentID,
		Type:          domain.TransactionType(req.Type),
		Shares:        shares,
		PricePerShare: price,
		Date:          date,
	}
	if err := tx.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.Trading.RecordTrade(r.Context(), tx); err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toTransactionResponse(tx))
}

type tradePageResponse struct {
	Trades []transactionResponse `json:"trades"`
	Total  int                   `json:"total"`
	Limit  int                   `json:"limit"`
	Offset int                   `json:"offset"`
}

func (s *Server) listTrades(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserID(r.Context())

	query := r.URL.Query()
	limit, _ := strconv.Atoi(query.Get("limit"))
	offset, _ := strconv.Atoi(query.Get("offset"))

	var instrumentID *uuid.UUID
	if raw := query.Get("instrument_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid instrument_id")
			return
		}
		instrumentID = &id
	}

	page, err := s.Trading.ListTrades(r.Context(), userID, limit, offset, instrumentID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	resp := tradePageResponse{
		Trades: make([]transactionResponse, 0, len(page.Trades)),
		Total:  page.Total,
		Limit:  page.Limit,
		Offset: page.Offset,
	}
	for i := range page.Trades {
		resp.Trades = append(resp.Trades, toTransactionResponse(&page.Trades[i]))
	}

	writeJSON(w, http.StatusOK, resp)
}

type fundRequest struct {
	Name              string  `json:"name"`
	InitialInvestment string  `json:"initial_investment"`
	CurrentValue      string  `json:"current_value"`
	InvestmentDate    string  `json:"investment_date"`
	IndexInstrumentID *string `json:"index_instrument_id"`
}

type fundResponse struct {
	ID                string  `json:"id"`
	Name              string  `json:"name"`
	InitialInvestment string  `json:"initial_investment"`
	CurrentValue      string  `json:"current_value"`
	InvestmentDate    string  `json:"investment_date"`
	IndexInstrumentID *string `json:"index_instrument_id,omitempty"`
}

func toFundResponse(fund *domain.InvestmentFund) fundResponse {
	resp := fundResponse{
		ID:                fund.ID.String(),
		Name:              fund.Name,
		InitialInvestment: fund.InitialInvestment.String(),
		CurrentValue:      fund.CurrentValue.String(),
		InvestmentDate:    fund.InvestmentDate.Format(time.DateOnly),
	}
	if fund.IndexInstrumentID != nil {
		id := fund.IndexInstrumentID.String()
		resp.IndexInstrumentID = &id
	}
	return resp
}

func fundFromRequest(req fundRequest, userID uuid.UUID) (*domain.InvestmentFund, error) {
	initial, err := decimal.NewFromString(req.InitialInvestment)
	if err != nil {
		return nil, fmt.Errorf("invalid initial_investment format")
	}
	current, err := decimal.NewFromString(req.CurrentValue)
	if err != nil {
		return nil, fmt.Errorf("invalid current_value format")
	}
	date, err := time.Parse(time.DateOnly, req.InvestmentDate)
	if err != nil {
		return nil, fmt.Errorf("invalid investment_date, expected YYYY-MM-DD")
	}

	fund := &domain.InvestmentFund{
		UserID:            userID,
		Name:              req.Name,
		InitialInvestment: initial,
		CurrentValue:      current,
		InvestmentDate:    date,
	}
	if req.IndexInstrumentID != nil {
		indexID, err := uuid.Parse(*req.IndexInstrumentID)
		if err != nil {
			return nil, fmt.Errorf("invalid index_instrument_id")
		}
		fund.IndexInstrumentID = &indexID
	}
	return fund, nil
}

func (s *Server) createFund(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserID(r.Context())

	var req fundRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	fund, err := fundFromRequest(req, userID)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	fund.ID = uuid.New()
	if err := fund.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.Trading.CreateFund(r.Context(), fund); err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toFundResponse(fund))
}

func (s *Server) listFunds(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserID(r.Context())

	funds, err := s.Trading.ListFunds(r.Context(), userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	resp := make([]fundResponse, 0, len(funds))
	for _, fund := range funds {
		resp = append(resp, toFundResponse(fund))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) updateFund(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserID(r.Context())

	fundID, err := uuid.Parse(chi.URLParam(r, "fundID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid fund id")
		return
	}

	var req fundRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	fund, err := fundFromRequest(req, userID)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	fund.ID = fundID
	if err := fund.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.Trading.UpdateFund(r.Context(), userID, fund); err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toFundResponse(fund))
}

func (s *Server) deleteFund(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserID(r.Context())

	fundID, err := uuid.Parse(chi.URLParam(r, "fundID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid fund id")
		return
	}

	if err := s.Trading.DeleteFund(r.Context(), userID, fundID); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
