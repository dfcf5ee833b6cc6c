package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gtservice/gtledger/internal/domain"
)

// CustomerUseCase manages customers and their vehicles.
type CustomerUseCase struct {
	customerRepo CustomerRepository
	idGen        IDGenerator
}

// NewCustomerUseCase creates a new CustomerUseCase.
func NewCustomerUseCase(customerRepo CustomerRepository, idGen IDGenerator) *CustomerUseCase {
	return &CustomerUseCase{
		customerRepo: customerRepo,
		idGen:        idGen,
	}
}

// CreateCustomerInput represents input for creating a customer.
type CreateCustomerInput struct {
	Name  string
	Phone string
	Email string
	Notes string
}

// CreateCustomer creates a new customer.
func (uc *CustomerUseCase) CreateCustomer(ctx context.Context, input CreateCustomerInput) (*domain.Customer, error) {
	name := strings.TrimSpace(input.Name)
	if err := domain.ValidateName(name); err != nil {
		return nil, err
	}

	email := strings.TrimSpace(input.Email)
	if email != "" {
		if err := domain.ValidateEmail(email); err != nil {
			return nil, err
		}
	}

	now := time.Now().UTC()
	customer := &domain.Customer{
		ID:        uc.idGen.Generate(),
		Name:      name,
		Phone:     strings.TrimSpace(input.Phone),
		Email:     strings.ToLower(email),
		Notes:     input.Notes,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := uc.customerRepo.Create(ctx, customer); err != nil {
		return nil, domain.NewPersistenceError("create customer", err)
	}

	return customer, nil
}

// GetCustomer retrieves a customer by ID.
func (uc *CustomerUseCase) GetCustomer(ctx context.Context, id string) (*domain.Customer, error) {
	customer, err := uc.customerRepo.GetByID(ctx, id)
	if err != nil {
		return nil, domain.NewPersistenceError("get customer", err)
	}
	return customer, nil
}

// ListCustomers lists customers with pagination.
func (uc *CustomerUseCase) ListCustomers(ctx context.Context, limit, offset int) ([]*domain.Customer, error) {
	limit, offset = domain.ClampPagination(limit, offset)
	customers, err := uc.customerRepo.List(ctx, limit, offset)
	if err != nil {
		return nil, domain.NewPersistenceError("list customers", err)
	}
	return customers, nil
}

// AddVehicleInput represents input for registering a vehicle.
type AddVehicleInput struct {
	CustomerID string
	Plate      string
	Make       string
	Model      string
	Year       int
	VIN        string
}

// AddVehicle registers a vehicle for an existing customer.
func (uc *CustomerUseCase) AddVehicle(ctx context.Context, input AddVehicleInput) (*domain.Vehicle, error) {
	plate := domain.NormalizePlate(input.Plate)
	if plate == "" {
		return nil, fmt.Errorf("%w: plate is required", domain.ErrInvalidName)
	}
	if input.Year != 0 && (input.Year < 1900 || input.Year > time.Now().Year()+1) {
		return nil, fmt.Errorf("%w: year %d", domain.ErrInvalidName, input.Year)
	}

	if _, err := uc.customerRepo.GetByID(ctx, input.CustomerID); err != nil {
		return nil, domain.NewPersistenceError("get customer", err)
	}

	vehicle := &domain.Vehicle{
		ID:         uc.idGen.Generate(),
		CustomerID: input.CustomerID,
		Plate:      plate,
		Make:       strings.TrimSpace(input.Make),
		Model:      strings.TrimSpace(input.Model),
		Year:       input.Year,
		VIN:        strings.ToUpper(strings.TrimSpace(input.VIN)),
		CreatedAt:  time.Now().UTC(),
	}

	if err := uc.customerRepo.CreateVehicle(ctx, vehicle); err != nil {
		return nil, domain.NewPersistenceError("create vehicle", err)
	}

	return vehicle, nil
}

// ListVehicles lists a customer's vehicles.
func (uc *CustomerUseCase) ListVehicles(ctx context.Context, customerID string) ([]*domain.Vehicle, error) {
	vehicles, err := uc.customerRepo.ListVehicles(ctx, customerID)
	if err != nil {
		return nil, domain.NewPersistenceError("list vehicles", err)
	}
	return vehicles, nil
}
