package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/gtservice/gtledger/internal/domain"
	"github.com/gtservice/gtledger/internal/usecase"
)

// CreatePartRequest represents a request to register a part.
type CreatePartRequest struct {
	Code            string          `json:"code"`
	Name            string          `json:"name"`
	UnitCost        decimal.Decimal `json:"unit_cost"`
	LowThreshold    int64           `json:"low_threshold"`
	InitialQuantity int64           `json:"initial_quantity"`
}

// ToUseCaseInput converts to use case input.
func (r *CreatePartRequest) ToUseCaseInput() usecase.CreatePartInput {
	return usecase.CreatePartInput{
		Code:            r.Code,
		Name:            r.Name,
		UnitCost:        r.UnitCost,
		LowThreshold:    r.LowThreshold,
		InitialQuantity: r.InitialQuantity,
	}
}

// RecordMovementRequest represents a stock movement on one part.
type RecordMovementRequest struct {
	PartID         string           `json:"part_id,omitempty"`
	Delta          int64            `json:"delta"`
	Reason         string           `json:"reason"`
	UnitCost       *decimal.Decimal `json:"unit_cost,omitempty"`
	Notes          string           `json:"notes,omitempty"`
	JobID          *string          `json:"job_id,omitempty"`
	CorrectsNumber *string          `json:"corrects_number,omitempty"`
}

// ToUseCaseInput converts to use case input. partID wins over the body's
// part_id when set.
func (r *RecordMovementRequest) ToUseCaseInput(partID string) usecase.RecordMovementInput {
	if partID == "" {
		partID = r.PartID
	}
	return usecase.RecordMovementInput{
		PartID:         partID,
		Delta:          r.Delta,
		Reason:         domain.MovementReason(r.Reason),
		UnitCost:       r.UnitCost,
		Notes:          r.Notes,
		JobID:          r.JobID,
		CorrectsNumber: r.CorrectsNumber,
	}
}

// InvoiceItemRequest is one line of a new invoice.
type InvoiceItemRequest struct {
	Kind        string          `json:"kind"`
	Description string          `json:"description"`
	PartID      *string         `json:"part_id,omitempty"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

// CreateInvoiceRequest represents a request to issue an invoice.
type CreateInvoiceRequest struct {
	CustomerID string               `json:"customer_id"`
	JobID      *string              `json:"job_id,omitempty"`
	Items      []InvoiceItemRequest `json:"items"`
	TaxRate    *decimal.Decimal     `json:"tax_rate,omitempty"`
	Notes      string               `json:"notes,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateInvoiceRequest) ToUseCaseInput() usecase.CreateInvoiceInput {
	items := make([]usecase.InvoiceItemInput, len(r.Items))
	for i, item := range r.Items {
		items[i] = usecase.InvoiceItemInput{
			Kind:        domain.InvoiceItemKind(item.Kind),
			Description: item.Description,
			PartID:      item.PartID,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
		}
	}
	return usecase.CreateInvoiceInput{
		CustomerID: r.CustomerID,
		JobID:      r.JobID,
		Items:      items,
		TaxRate:    r.TaxRate,
		Notes:      r.Notes,
	}
}

// CancelInvoiceRequest carries the cancellation reason.
type CancelInvoiceRequest struct {
	Reason string `json:"reason"`
}

// RecordPaymentRequest represents a payment against an invoice.
type RecordPaymentRequest struct {
	Amount    decimal.Decimal `json:"amount"`
	Method    string          `json:"method"`
	Reference string          `json:"reference,omitempty"`
}

// ToUseCaseInput converts to use case input for invoiceID.
func (r *RecordPaymentRequest) ToUseCaseInput(invoiceID string) usecase.RecordPaymentInput {
	return usecase.RecordPaymentInput{
		InvoiceID: invoiceID,
		Amount:    r.Amount,
		Method:    domain.PaymentMethod(r.Method),
		Reference: r.Reference,
	}
}

// RecordExpenseRequest represents an expense.
type RecordExpenseRequest struct {
	Category    string          `json:"category"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description,omitempty"`
	Supplier    string          `json:"supplier,omitempty"`
	PaidAt      *time.Time      `json:"paid_at,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *RecordExpenseRequest) ToUseCaseInput() usecase.RecordExpenseInput {
	return usecase.RecordExpenseInput{
		Category:    r.Category,
		Amount:      r.Amount,
		Description: r.Description,
		Supplier:    r.Supplier,
		PaidAt:      r.PaidAt,
	}
}

// CreateCustomerRequest represents a new customer.
type CreateCustomerRequest struct {
	Name  string `json:"name"`
	Phone string `json:"phone,omitempty"`
	Email string `json:"email,omitempty"`
	Notes string `json:"notes,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateCustomerRequest) ToUseCaseInput() usecase.CreateCustomerInput {
	return usecase.CreateCustomerInput{
		Name:  r.Name,
		Phone: r.Phone,
		Email: r.Email,
		Notes: r.Notes,
	}
}

// AddVehicleRequest registers a vehicle for a customer.
type AddVehicleRequest struct {
	Plate string `json:"plate"`
	Make  string `json:"make,omitempty"`
	Model string `json:"model,omitempty"`
	Year  int    `json:"year,omitempty"`
	VIN   string `json:"vin,omitempty"`
}

// ToUseCaseInput converts to use case input for customerID.
func (r *AddVehicleRequest) ToUseCaseInput(customerID string) usecase.AddVehicleInput {
	return usecase.AddVehicleInput{
		CustomerID: customerID,
		Plate:      r.Plate,
		Make:       r.Make,
		Model:      r.Model,
		Year:       r.Year,
		VIN:        r.VIN,
	}
}

// CreateJobRequest opens a job.
type CreateJobRequest struct {
	CustomerID  string `json:"customer_id"`
	VehicleID   string `json:"vehicle_id,omitempty"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	AssignedTo  string `json:"assigned_to,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateJobRequest) ToUseCaseInput() usecase.CreateJobInput {
	return usecase.CreateJobInput{
		CustomerID:  r.CustomerID,
		VehicleID:   r.VehicleID,
		Title:       r.Title,
		Description: r.Description,
		AssignedTo:  r.AssignedTo,
	}
}

// TransitionJobRequest moves a job to another column.
type TransitionJobRequest struct {
	Status string `json:"status"`
}

// ConsumePartRequest books parts used on a job.
type ConsumePartRequest struct {
	PartID   string `json:"part_id"`
	Quantity int64  `json:"quantity"`
	Notes    string `json:"notes,omitempty"`
}

// LoginRequest represents a login request
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	TOTPCode string `json:"totp_code,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *LoginRequest) ToUseCaseInput() usecase.LoginInput {
	return usecase.LoginInput{
		Email:    r.Email,
		Password: r.Password,
		TOTPCode: r.TOTPCode,
	}
}

// CreateUserRequest creates a staff account.
type CreateUserRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateUserRequest) ToUseCaseInput() usecase.CreateUserInput {
	return usecase.CreateUserInput{
		Email:    r.Email,
		Name:     r.Name,
		Password: r.Password,
		Role:     domain.Role(r.Role),
	}
}

// SetUserActiveRequest enables or disables an account.
type SetUserActiveRequest struct {
	Active bool `json:"active"`
}

// ConfirmTOTPRequest proves an authenticator app holds the secret.
type ConfirmTOTPRequest struct {
	Code string `json:"code"`
}
