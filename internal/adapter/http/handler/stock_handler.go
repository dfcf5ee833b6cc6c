package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/gtservice/gtledger/internal/adapter/http/dto"
	"github.com/gtservice/gtledger/internal/domain"
	"github.com/gtservice/gtledger/internal/usecase"
)

// StockService defines the behavior needed by StockHandler.
type StockService interface {
	CreatePart(ctx context.Context, input usecase.CreatePartInput) (*usecase.MovementResult, error)
	RecordMovement(ctx context.Context, input usecase.RecordMovementInput) (*usecase.MovementResult, error)
	GetPart(ctx context.Context, id string) (*domain.Part, error)
	ListParts(ctx context.Context, input usecase.ListPartsInput) ([]*domain.Part, error)
	ListMovements(ctx context.Context, input usecase.ListMovementsInput) ([]*domain.StockMovement, error)
	GetMovement(ctx context.Context, number string) (*domain.StockMovement, error)
	ListAlerts(ctx context.Context, filter domain.AlertFilter) ([]*domain.StockAlert, error)
	AcknowledgeAlert(ctx context.Context, id string) (*domain.StockAlert, error)
}

// StockHandler handles parts, stock movements and stock alerts.
type StockHandler struct {
	stockUC StockService
	retrier usecase.Retrier
}

// NewStockHandler creates a new StockHandler. retrier may be nil, in which
// case movements are attempted once.
func NewStockHandler(stockUC StockService, retrier usecase.Retrier) *StockHandler {
	return &StockHandler{stockUC: stockUC, retrier: retrier}
}

// CreatePart registers a part.
func (h *StockHandler) CreatePart(w http.ResponseWriter, r *http.Request) {
	var req dto.CreatePartRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.stockUC.CreatePart(r.Context(), req.ToUseCaseInput())
	if err != nil {
		writeDomainError(w, "failed to create part", err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.MovementResultFromUseCase(result))
}

// GetPart retrieves a part by ID.
func (h *StockHandler) GetPart(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing part ID", "")
		return
	}

	part, err := h.stockUC.GetPart(r.Context(), id)
	if err != nil {
		writeDomainError(w, "failed to get part", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.PartFromDomain(part))
}

// ListParts lists parts.
func (h *StockHandler) ListParts(w http.ResponseWriter, r *http.Request) {
	limit, offset := pagination(r)

	parts, err := h.stockUC.ListParts(r.Context(), usecase.ListPartsInput{Limit: limit, Offset: offset})
	if err != nil {
		writeDomainError(w, "failed to list parts", err)
		return
	}

	writeJSON(w, http.StatusOK, listResponse(dto.PartsFromDomain(parts), limit, offset))
}

// RecordMovement books a stock movement. The part comes from the URL when
// routed under a part, otherwise from the body.
func (h *StockHandler) RecordMovement(w http.ResponseWriter, r *http.Request) {
	var req dto.RecordMovementRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	input := req.ToUseCaseInput(chi.URLParam(r, "id"))
	if input.PartID == "" {
		writeError(w, http.StatusBadRequest, "missing part ID", "")
		return
	}

	var result *usecase.MovementResult
	record := func() error {
		var err error
		result, err = h.stockUC.RecordMovement(r.Context(), input)
		return err
	}

	var err error
	if h.retrier != nil {
		err = h.retrier.Retry(r.Context(), record)
	} else {
		err = record()
	}
	if err != nil {
		writeDomainError(w, "failed to record movement", err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.MovementResultFromUseCase(result))
}

// ListMovements lists a part's ledger, newest first.
func (h *StockHandler) ListMovements(w http.ResponseWriter, r *http.Request) {
	partID := chi.URLParam(r, "id")
	if partID == "" {
		writeError(w, http.StatusBadRequest, "missing part ID", "")
		return
	}
	limit, offset := pagination(r)

	movements, err := h.stockUC.ListMovements(r.Context(), usecase.ListMovementsInput{
		PartID: partID,
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		writeDomainError(w, "failed to list movements", err)
		return
	}

	writeJSON(w, http.StatusOK, listResponse(dto.MovementsFromDomain(movements), limit, offset))
}

// GetMovement retrieves a movement by its MOV number.
func (h *StockHandler) GetMovement(w http.ResponseWriter, r *http.Request) {
	number := chi.URLParam(r, "number")
	if number == "" {
		writeError(w, http.StatusBadRequest, "missing movement number", "")
		return
	}

	movement, err := h.stockUC.GetMovement(r.Context(), number)
	if err != nil {
		writeDomainError(w, "failed to get movement", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.MovementFromDomain(movement))
}

// ListAlerts lists stock alerts. ?unread=true keeps unacknowledged ones only.
func (h *StockHandler) ListAlerts(w http.ResponseWriter, r *http.Request) {
	limit, offset := pagination(r)
	query := r.URL.Query()

	alerts, err := h.stockUC.ListAlerts(r.Context(), domain.AlertFilter{
		PartID:     query.Get("part_id"),
		UnreadOnly: query.Get("unread") == "true",
		Limit:      limit,
		Offset:     offset,
	})
	if err != nil {
		writeDomainError(w, "failed to list alerts", err)
		return
	}

	writeJSON(w, http.StatusOK, listResponse(dto.AlertsFromDomain(alerts), limit, offset))
}

// AcknowledgeAlert marks an alert read.
func (h *StockHandler) AcknowledgeAlert(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing alert ID", "")
		return
	}

	alert, err := h.stockUC.AcknowledgeAlert(r.Context(), id)
	if err != nil {
		writeDomainError(w, "failed to acknowledge alert", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.AlertFromDomain(alert))
}

// pagination reads limit and offset, clamped the way the use cases clamp them.
func pagination(r *http.Request) (int, int) {
	return domain.ClampPagination(
		parseIntQuery(r, "limit", domain.DefaultPageSize),
		parseIntQuery(r, "offset", 0),
	)
}
