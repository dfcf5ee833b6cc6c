package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/gtservice/gtledger/internal/adapter/http/dto"
	"github.com/gtservice/gtledger/internal/domain"
	"github.com/gtservice/gtledger/internal/usecase"
)

// CustomerService defines the behavior needed by CustomerHandler.
type CustomerService interface {
	CreateCustomer(ctx context.Context, input usecase.CreateCustomerInput) (*domain.Customer, error)
	GetCustomer(ctx context.Context, id string) (*domain.Customer, error)
	ListCustomers(ctx context.Context, limit, offset int) ([]*domain.Customer, error)
	AddVehicle(ctx context.Context, input usecase.AddVehicleInput) (*domain.Vehicle, error)
	ListVehicles(ctx context.Context, customerID string) ([]*domain.Vehicle, error)
}

// CustomerHandler handles customers and their vehicles.
type CustomerHandler struct {
	customerUC CustomerService
}

// NewCustomerHandler creates a new CustomerHandler.
func NewCustomerHandler(customerUC CustomerService) *CustomerHandler {
	return &CustomerHandler{customerUC: customerUC}
}

// Create creates a customer.
func (h *CustomerHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateCustomerRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	customer, err := h.customerUC.CreateCustomer(r.Context(), req.ToUseCaseInput())
	if err != nil {
		writeDomainError(w, "failed to create customer", err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.CustomerFromDomain(customer))
}

// Get retrieves a customer by ID.
func (h *CustomerHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing customer ID", "")
		return
	}

	customer, err := h.customerUC.GetCustomer(r.Context(), id)
	if err != nil {
		writeDomainError(w, "failed to get customer", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.CustomerFromDomain(customer))
}

// List lists customers.
func (h *CustomerHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := pagination(r)

	customers, err := h.customerUC.ListCustomers(r.Context(), limit, offset)
	if err != nil {
		writeDomainError(w, "failed to list customers", err)
		return
	}

	writeJSON(w, http.StatusOK, listResponse(dto.CustomersFromDomain(customers), limit, offset))
}

// AddVehicle registers a vehicle for a customer.
func (h *CustomerHandler) AddVehicle(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing customer ID", "")
		return
	}

	var req dto.AddVehicleRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	vehicle, err := h.customerUC.AddVehicle(r.Context(), req.ToUseCaseInput(id))
	if err != nil {
		writeDomainError(w, "failed to add vehicle", err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.VehicleFromDomain(vehicle))
}

// ListVehicles lists a customer's vehicles.
func (h *CustomerHandler) ListVehicles(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing customer ID", "")
		return
	}

	vehicles, err := h.customerUC.ListVehicles(r.Context(), id)
	if err != nil {
		writeDomainError(w, "failed to list vehicles", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.VehiclesFromDomain(vehicles))
}
