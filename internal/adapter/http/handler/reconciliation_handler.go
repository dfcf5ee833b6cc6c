package handler

import (
	"context"
	"net/http"

	"github.com/gtservice/gtledger/internal/adapter/http/dto"
	"github.com/gtservice/gtledger/internal/usecase"
)

// ReconciliationService defines the behavior needed by ReconciliationHandler.
type ReconciliationService interface {
	ReconcilePart(ctx context.Context, partID string) (*usecase.ReconciliationResult, error)
	GenerateReconciliationReport(ctx context.Context) (*usecase.ReconciliationReport, error)
}

// ReconciliationHandler checks part quantities against the movement ledger.
type ReconciliationHandler struct {
	reconcileUC ReconciliationService
}

// NewReconciliationHandler creates a new ReconciliationHandler.
func NewReconciliationHandler(reconcileUC ReconciliationService) *ReconciliationHandler {
	return &ReconciliationHandler{reconcileUC: reconcileUC}
}

// Reconcile checks one part when ?part_id= is given, every part otherwise.
func (h *ReconciliationHandler) Reconcile(w http.ResponseWriter, r *http.Request) {
	if partID := r.URL.Query().Get("part_id"); partID != "" {
		result, err := h.reconcileUC.ReconcilePart(r.Context(), partID)
		if err != nil {
			writeDomainError(w, "failed to reconcile part", err)
			return
		}
		writeJSON(w, http.StatusOK, dto.ReconciliationResultFromUseCase(result))
		return
	}

	report, err := h.reconcileUC.GenerateReconciliationReport(r.Context())
	if err != nil {
		writeDomainError(w, "failed to reconcile stock", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ReconciliationReportFromUseCase(report))
}
