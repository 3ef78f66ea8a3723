package http

import (
	"net/http"
	"time"

	"pocketwise/internal/core"
	applog "pocketwise/internal/log"
)

type createTransactionRequest struct {
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
	Category    string  `json:"category"`
	Type        string  `json:"type"`
	Date        string  `json:"date"`
}

func (req createTransactionRequest) toInput() core.CreateTransaction {
	return core.CreateTransaction{
		Description: sanitizeInput(req.Description),
		Amount:      req.Amount,
		Category:    sanitizeInput(req.Category),
		Type:        core.TransactionType(req.Type),
		Date:        req.Date,
	}
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}

	var req createTransactionRequest
	if !decodeBody(w, r, &req) {
		return
	}

	tx, err := s.transactions.Create(r.Context(), userID, req.toInput())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.dashboard.Invalidate(userID)

	s.logger.InfoContext(r.Context(), "Transaction created",
		applog.FieldUserID, userID,
		applog.FieldTransactionID, tx.ID,
		applog.FieldTxType, string(tx.Type),
		applog.FieldAmount, tx.Amount)

	writeJSON(w, http.StatusCreated, tx)
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	var (
		txs []core.Transaction
		err error
	)
	if q.Get("year") != "" || q.Get("month") != "" {
		year, month := parseYearMonth(r, time.Now())
		txs, err = s.transactions.ListMonth(r.Context(), userID, year, month)
	} else {
		txs, err = s.transactions.List(r.Context(), userID)
	}
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	if txs == nil {
		txs = []core.Transaction{}
	}
	writeJSON(w, http.StatusOK, txs)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}

	id := r.PathValue("id")
	if err := s.transactions.Delete(r.Context(), userID, id); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.dashboard.Invalidate(userID)
	w.WriteHeader(http.StatusNoContent)
}

type createRecurringRequest struct {
	createTransactionRequest
	Frequency string `json:"frequency"`
	EndDate   string `json:"end_date"`
}

func (s *Server) handleCreateRecurring(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}

	var req createRecurringRequest
	if !decodeBody(w, r, &req) {
		return
	}

	txs, err := s.recurring.Expand(r.Context(), userID, req.toInput(), core.Frequency(req.Frequency), req.EndDate)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.dashboard.Invalidate(userID)

	if txs == nil {
		txs = []core.Transaction{}
	}
	writeJSON(w, http.StatusCreated, txs)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	summary, err := s.transactions.Stats(r.Context(), userID, q.Get("start"), q.Get("end"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handleCategoryStats(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}

	typ := core.TransactionType(r.URL.Query().Get("type"))
	if typ == "" {
		typ = core.Expense
	}
	if !typ.Valid() {
		writeError(w, r, http.StatusBadRequest, core.ErrInvalidType.Error())
		return
	}

	year, month := parseYearMonth(r, time.Now())
	shares, err := s.transactions.CategoryBreakdown(r.Context(), userID, typ, year, month)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	if shares == nil {
		shares = []core.CategoryShare{}
	}
	writeJSON(w, http.StatusOK, shares)
}
