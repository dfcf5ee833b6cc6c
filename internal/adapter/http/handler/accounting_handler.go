package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gtservice/gtledger/internal/adapter/http/dto"
	"github.com/gtservice/gtledger/internal/domain"
	"github.com/gtservice/gtledger/internal/usecase"
)

// AccountingService defines the behavior needed by AccountingHandler.
type AccountingService interface {
	RecordExpense(ctx context.Context, input usecase.RecordExpenseInput) (*domain.Expense, *domain.AccountingRecord, error)
	ListRecords(ctx context.Context, filter domain.RecordFilter) ([]*domain.AccountingRecord, error)
	Summary(ctx context.Context, year, month int) (*domain.AccountingSummary, error)
}

// AccountingHandler handles expenses and the accounting books.
type AccountingHandler struct {
	accountingUC AccountingService
	now          func() time.Time
}

// NewAccountingHandler creates a new AccountingHandler.
func NewAccountingHandler(accountingUC AccountingService) *AccountingHandler {
	return &AccountingHandler{
		accountingUC: accountingUC,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// RecordExpense books an expense and its accounting record.
func (h *AccountingHandler) RecordExpense(w http.ResponseWriter, r *http.Request) {
	var req dto.RecordExpenseRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	expense, record, err := h.accountingUC.RecordExpense(r.Context(), req.ToUseCaseInput())
	if err != nil {
		writeDomainError(w, "failed to record expense", err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.ExpenseFromDomain(expense, record))
}

// ListRecords lists accounting records, newest first. Accepts ?type= and
// RFC 3339 ?from= and ?to= bounds.
func (h *AccountingHandler) ListRecords(w http.ResponseWriter, r *http.Request) {
	limit, offset := pagination(r)
	query := r.URL.Query()

	filter := domain.RecordFilter{
		Type:   domain.RecordType(strings.ToUpper(query.Get("type"))),
		Limit:  limit,
		Offset: offset,
	}

	for key, dst := range map[string]**time.Time{"from": &filter.From, "to": &filter.To} {
		raw := query.Get(key)
		if raw == "" {
			continue
		}
		at, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid "+key+" time", err.Error())
			return
		}
		*dst = &at
	}

	records, err := h.accountingUC.ListRecords(r.Context(), filter)
	if err != nil {
		writeDomainError(w, "failed to list records", err)
		return
	}

	writeJSON(w, http.StatusOK, listResponse(dto.RecordsFromDomain(records), limit, offset))
}

// Summary aggregates the books. ?year= defaults to the current year;
// ?month=1..12 narrows to one month.
func (h *AccountingHandler) Summary(w http.ResponseWriter, r *http.Request) {
	year := parseIntQuery(r, "year", h.now().Year())
	month := parseIntQuery(r, "month", 0)

	summary, err := h.accountingUC.Summary(r.Context(), year, month)
	if err != nil {
		writeDomainError(w, "failed to summarize accounting", err)
		return
	}

	writeJSON(w, http.StatusOK, summary)
}
