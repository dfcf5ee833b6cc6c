package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/gtservice/gtledger/internal/adapter/http/dto"
	"github.com/gtservice/gtledger/internal/domain"
	"github.com/gtservice/gtledger/internal/usecase"
)

// InvoiceService defines the behavior needed by InvoiceHandler.
type InvoiceService interface {
	CreateInvoice(ctx context.Context, input usecase.CreateInvoiceInput) (*domain.Invoice, error)
	CancelInvoice(ctx context.Context, id, reason string) (*domain.Invoice, error)
	GetInvoice(ctx context.Context, id string) (*domain.Invoice, error)
	ListInvoices(ctx context.Context, filter domain.InvoiceFilter) ([]*domain.Invoice, error)
}

// PaymentService defines the payment behavior needed by InvoiceHandler.
type PaymentService interface {
	RecordPayment(ctx context.Context, input usecase.RecordPaymentInput) (*usecase.PaymentResult, error)
	ListPayments(ctx context.Context, invoiceID string) ([]*domain.Payment, error)
}

// InvoiceHandler handles invoice-related HTTP requests.
type InvoiceHandler struct {
	invoiceUC InvoiceService
	paymentUC PaymentService
}

// NewInvoiceHandler creates a new InvoiceHandler.
func NewInvoiceHandler(invoiceUC InvoiceService, paymentUC PaymentService) *InvoiceHandler {
	return &InvoiceHandler{invoiceUC: invoiceUC, paymentUC: paymentUC}
}

// Create issues an invoice.
func (h *InvoiceHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateInvoiceRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	invoice, err := h.invoiceUC.CreateInvoice(r.Context(), req.ToUseCaseInput())
	if err != nil {
		writeDomainError(w, "failed to create invoice", err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.InvoiceFromDomain(invoice))
}

// Get retrieves an invoice by ID.
func (h *InvoiceHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing invoice ID", "")
		return
	}

	invoice, err := h.invoiceUC.GetInvoice(r.Context(), id)
	if err != nil {
		writeDomainError(w, "failed to get invoice", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.InvoiceFromDomain(invoice))
}

// List lists invoices, optionally by ?status= and ?customer_id=.
func (h *InvoiceHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := pagination(r)
	query := r.URL.Query()

	invoices, err := h.invoiceUC.ListInvoices(r.Context(), domain.InvoiceFilter{
		Status:     domain.InvoiceStatus(query.Get("status")),
		CustomerID: query.Get("customer_id"),
		Limit:      limit,
		Offset:     offset,
	})
	if err != nil {
		writeDomainError(w, "failed to list invoices", err)
		return
	}

	writeJSON(w, http.StatusOK, listResponse(dto.InvoicesFromDomain(invoices), limit, offset))
}

// Cancel cancels an unpaid invoice.
func (h *InvoiceHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing invoice ID", "")
		return
	}

	var req dto.CancelInvoiceRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	invoice, err := h.invoiceUC.CancelInvoice(r.Context(), id, req.Reason)
	if err != nil {
		writeDomainError(w, "failed to cancel invoice", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.InvoiceFromDomain(invoice))
}

// RecordPayment books a payment against an invoice.
func (h *InvoiceHandler) RecordPayment(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing invoice ID", "")
		return
	}

	var req dto.RecordPaymentRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.paymentUC.RecordPayment(r.Context(), req.ToUseCaseInput(id))
	if err != nil {
		writeDomainError(w, "failed to record payment", err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.PaymentResultFromUseCase(result))
}

// ListPayments lists the payments booked against an invoice.
func (h *InvoiceHandler) ListPayments(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing invoice ID", "")
		return
	}

	payments, err := h.paymentUC.ListPayments(r.Context(), id)
	if err != nil {
		writeDomainError(w, "failed to list payments", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.PaymentsFromDomain(payments))
}
