package main

import (
	"encoding/json"
	"net/http"
	"strconv"

	"market-sim-go/internal/sim"
	"market-sim-go/internal/store"
	"go.uber.org/zap"
)

// APIHandler holds dependencies for the API endpoints.
type APIHandler struct {
	log     *zap.Logger
	store   *store.GormStore
	settler *sim.Settler
}

// NewAPIHandler creates a new APIHandler.
func NewAPIHandler(log *zap.Logger, store *store.GormStore, settler *sim.Settler) *APIHandler {
	return &APIHandler{log: log, store: store, settler: settler}
}

func (h *APIHandler) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log.Error("Failed to encode response", zap.Error(err))
	}
}

func pathID(r *http.Request) (uint, bool) {
	id, err := strconv.ParseUint(r.PathValue("id"), 10, 64)
	if err != nil {
		return 0, false
	}
	return uint(id), true
}

func pageParam(r *http.Request) int {
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 0 {
		return 0
	}
	return page
}

// StocksHandler lists every stock with its full timeline.
func (h *APIHandler) StocksHandler(w http.ResponseWriter, r *http.Request) {
	stocks, err := h.store.ListStocks(r.Context())
	if err != nil {
		h.log.Error("Failed to list stocks", zap.Error(err))
		http.Error(w, "Failed to list stocks", http.StatusInternalServerError)
		return
	}
	h.writeJSON(w, stocks)
}

// StockHandler returns the basic price view of one stock.
func (h *APIHandler) StockHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		http.Error(w, "Invalid stock id", http.StatusBadRequest)
		return
	}
	info, err := h.store.BasicInfo(r.Context(), id)
	if err != nil {
		http.Error(w, "Stock not found", http.StatusNotFound)
		return
	}
	h.writeJSON(w, info)
}

// StockAnalyticsHandler returns the settlement-facing view of one stock.
func (h *APIHandler) StockAnalyticsHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		http.Error(w, "Invalid stock id", http.StatusBadRequest)
		return
	}
	analytics, err := h.store.Analytics(r.Context(), id)
	if err != nil {
		http.Error(w, "Stock not found", http.StatusNotFound)
		return
	}
	h.writeJSON(w, analytics)
}

// PortfolioHandler returns a portfolio with its holdings and timeline.
func (h *APIHandler) PortfolioHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		http.Error(w, "Invalid portfolio id", http.StatusBadRequest)
		return
	}
	portfolio, err := h.store.GetPortfolio(r.Context(), id)
	if err != nil {
		http.Error(w, "Portfolio not found", http.StatusNotFound)
		return
	}
	h.writeJSON(w, portfolio)
}

// TransactionsHandler returns one page of a portfolio's transaction log,
// newest first.
func (h *APIHandler) TransactionsHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		http.Error(w, "Invalid portfolio id", http.StatusBadRequest)
		return
	}
	transactions, err := h.settler.TransactionsPage(r.Context(), id, pageParam(r))
	if err != nil {
		h.log.Error("Failed to page transactions", zap.Uint("portfolio_id", id), zap.Error(err))
		http.Error(w, "Portfolio not found", http.StatusNotFound)
		return
	}
	h.writeJSON(w, transactions)
}

// InvestmentsHandler returns one page of a portfolio's holdings enriched
// with current prices.
func (h *APIHandler) InvestmentsHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		http.Error(w, "Invalid portfolio id", http.StatusBadRequest)
		return
	}
	investments, err := h.settler.InvestmentsPage(r.Context(), id, pageParam(r))
	if err != nil {
		h.log.Error("Failed to page investments", zap.Uint("portfolio_id", id), zap.Error(err))
		http.Error(w, "Portfolio not found", http.StatusNotFound)
		return
	}
	h.writeJSON(w, investments)
}
