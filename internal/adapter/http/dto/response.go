package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/gtservice/gtledger/internal/domain"
	"github.com/gtservice/gtledger/internal/usecase"
)

func mapAll[T, R any](items []T, fn func(T) R) []R {
	result := make([]R, len(items))
	for i, item := range items {
		result[i] = fn(item)
	}
	return result
}

// PartResponse represents a part in API responses.
type PartResponse struct {
	ID           string          `json:"id"`
	Code         string          `json:"code"`
	Name         string          `json:"name"`
	Quantity     int64           `json:"quantity"`
	UnitCost     decimal.Decimal `json:"unit_cost"`
	TotalValue   decimal.Decimal `json:"total_value"`
	LowThreshold int64           `json:"low_threshold"`
	StockLevel   string          `json:"stock_level"`
	Version      int64           `json:"version"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// PartFromDomain converts a domain part to response.
func PartFromDomain(p *domain.Part) *PartResponse {
	return &PartResponse{
		ID:           p.ID,
		Code:         p.Code,
		Name:         p.Name,
		Quantity:     p.Quantity,
		UnitCost:     p.UnitCost,
		TotalValue:   p.TotalValue,
		LowThreshold: p.LowThreshold,
		StockLevel:   string(p.StockLevel),
		Version:      p.Version,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}

// PartsFromDomain converts domain parts to responses.
func PartsFromDomain(parts []*domain.Part) []*PartResponse {
	return mapAll(parts, PartFromDomain)
}

// MovementResponse represents a stock movement in API responses.
type MovementResponse struct {
	ID             string          `json:"id"`
	Number         string          `json:"number"`
	PartID         string          `json:"part_id"`
	Reason         string          `json:"reason"`
	Delta          int64           `json:"delta"`
	BalanceBefore  int64           `json:"balance_before"`
	BalanceAfter   int64           `json:"balance_after"`
	UnitCost       decimal.Decimal `json:"unit_cost"`
	TotalValue     decimal.Decimal `json:"total_value"`
	Notes          string          `json:"notes,omitempty"`
	JobID          *string         `json:"job_id,omitempty"`
	CorrectsNumber *string         `json:"corrects_number,omitempty"`
	PerformedBy    string          `json:"performed_by"`
	CreatedAt      time.Time       `json:"created_at"`
}

// MovementFromDomain converts a domain movement to response.
func MovementFromDomain(m *domain.StockMovement) *MovementResponse {
	return &MovementResponse{
		ID:             m.ID,
		Number:         m.Number,
		PartID:         m.PartID,
		Reason:         string(m.Reason),
		Delta:          m.Delta,
		BalanceBefore:  m.BalanceBefore,
		BalanceAfter:   m.BalanceAfter,
		UnitCost:       m.UnitCost,
		TotalValue:     m.TotalValue,
		Notes:          m.Notes,
		JobID:          m.JobID,
		CorrectsNumber: m.CorrectsNumber,
		PerformedBy:    m.PerformedBy,
		CreatedAt:      m.CreatedAt,
	}
}

// MovementsFromDomain converts domain movements to responses.
func MovementsFromDomain(movements []*domain.StockMovement) []*MovementResponse {
	return mapAll(movements, MovementFromDomain)
}

// AlertResponse represents a stock alert in API responses.
type AlertResponse struct {
	ID           string     `json:"id"`
	PartID       string     `json:"part_id"`
	Severity     string     `json:"severity"`
	Message      string     `json:"message"`
	Balance      int64      `json:"balance"`
	LowThreshold int64      `json:"low_threshold"`
	IsRead       bool       `json:"is_read"`
	ReadBy       string     `json:"read_by,omitempty"`
	ReadAt       *time.Time `json:"read_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// AlertFromDomain converts a domain alert to response.
func AlertFromDomain(a *domain.StockAlert) *AlertResponse {
	return &AlertResponse{
		ID:           a.ID,
		PartID:       a.PartID,
		Severity:     string(a.Severity),
		Message:      a.Message,
		Balance:      a.Balance,
		LowThreshold: a.LowThreshold,
		IsRead:       a.IsRead,
		ReadBy:       a.ReadBy,
		ReadAt:       a.ReadAt,
		CreatedAt:    a.CreatedAt,
		UpdatedAt:    a.UpdatedAt,
	}
}

// AlertsFromDomain converts domain alerts to responses.
func AlertsFromDomain(alerts []*domain.StockAlert) []*AlertResponse {
	return mapAll(alerts, AlertFromDomain)
}

// MovementResultResponse is the outcome of a committed movement.
type MovementResultResponse struct {
	Part         *PartResponse     `json:"part"`
	Movement     *MovementResponse `json:"movement,omitempty"`
	Alert        *AlertResponse    `json:"alert,omitempty"`
	AlertCreated bool              `json:"alert_created"`
}

// MovementResultFromUseCase converts a movement result to response.
func MovementResultFromUseCase(r *usecase.MovementResult) *MovementResultResponse {
	resp := &MovementResultResponse{
		Part:         PartFromDomain(r.Part),
		AlertCreated: r.AlertCreated,
	}
	if r.Movement != nil {
		resp.Movement = MovementFromDomain(r.Movement)
	}
	if r.Alert != nil {
		resp.Alert = AlertFromDomain(r.Alert)
	}
	return resp
}

// InvoiceItemResponse is one invoice line.
type InvoiceItemResponse struct {
	ID          string          `json:"id"`
	Kind        string          `json:"kind"`
	Description string          `json:"description"`
	PartID      *string         `json:"part_id,omitempty"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	LineTotal   decimal.Decimal `json:"line_total"`
}

// InvoiceResponse represents an invoice in API responses.
type InvoiceResponse struct {
	ID          string                 `json:"id"`
	Number      string                 `json:"number"`
	CustomerID  string                 `json:"customer_id"`
	JobID       *string                `json:"job_id,omitempty"`
	Status      string                 `json:"status"`
	Items       []*InvoiceItemResponse `json:"items,omitempty"`
	Subtotal    decimal.Decimal        `json:"subtotal"`
	TaxRate     decimal.Decimal        `json:"tax_rate"`
	TaxAmount   decimal.Decimal        `json:"tax_amount"`
	Total       decimal.Decimal        `json:"total"`
	AmountPaid  decimal.Decimal        `json:"amount_paid"`
	Outstanding decimal.Decimal        `json:"outstanding"`
	Notes       string                 `json:"notes,omitempty"`
	IssuedAt    time.Time              `json:"issued_at"`
	DueAt       time.Time              `json:"due_at"`
	CreatedBy   string                 `json:"created_by"`
}

// InvoiceFromDomain converts a domain invoice to response.
func InvoiceFromDomain(inv *domain.Invoice) *InvoiceResponse {
	resp := &InvoiceResponse{
		ID:          inv.ID,
		Number:      inv.Number,
		CustomerID:  inv.CustomerID,
		JobID:       inv.JobID,
		Status:      string(inv.Status),
		Subtotal:    inv.Subtotal,
		TaxRate:     inv.TaxRate,
		TaxAmount:   inv.TaxAmount,
		Total:       inv.Total,
		AmountPaid:  inv.AmountPaid,
		Outstanding: inv.Outstanding(),
		Notes:       inv.Notes,
		IssuedAt:    inv.IssuedAt,
		DueAt:       inv.DueAt,
		CreatedBy:   inv.CreatedBy,
	}
	for _, item := range inv.Items {
		resp.Items = append(resp.Items, &InvoiceItemResponse{
			ID:          item.ID,
			Kind:        string(item.Kind),
			Description: item.Description,
			PartID:      item.PartID,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			LineTotal:   item.LineTotal,
		})
	}
	return resp
}

// InvoicesFromDomain converts domain invoices to responses.
func InvoicesFromDomain(invoices []*domain.Invoice) []*InvoiceResponse {
	return mapAll(invoices, InvoiceFromDomain)
}

// RecordResponse represents an accounting record.
type RecordResponse struct {
	ID             string          `json:"id"`
	Number         string          `json:"number"`
	Type           string          `json:"type"`
	Category       string          `json:"category,omitempty"`
	Amount         decimal.Decimal `json:"amount"`
	Description    string          `json:"description,omitempty"`
	InvoiceID      *string         `json:"invoice_id,omitempty"`
	ExpenseID      *string         `json:"expense_id,omitempty"`
	PaymentID      *string         `json:"payment_id,omitempty"`
	ReversesNumber *string         `json:"reverses_number,omitempty"`
	PerformedBy    string          `json:"performed_by"`
	RecordedAt     time.Time       `json:"recorded_at"`
}

// RecordFromDomain converts a domain record to response.
func RecordFromDomain(r *domain.AccountingRecord) *RecordResponse {
	return &RecordResponse{
		ID:             r.ID,
		Number:         r.Number,
		Type:           string(r.Type),
		Category:       r.Category,
		Amount:         r.Amount,
		Description:    r.Description,
		InvoiceID:      r.InvoiceID,
		ExpenseID:      r.ExpenseID,
		PaymentID:      r.PaymentID,
		ReversesNumber: r.ReversesNumber,
		PerformedBy:    r.PerformedBy,
		RecordedAt:     r.RecordedAt,
	}
}

// RecordsFromDomain converts domain records to responses.
func RecordsFromDomain(records []*domain.AccountingRecord) []*RecordResponse {
	return mapAll(records, RecordFromDomain)
}

// ExpenseResponse represents a recorded expense and its record.
type ExpenseResponse struct {
	ID          string          `json:"id"`
	Category    string          `json:"category"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description,omitempty"`
	Supplier    string          `json:"supplier,omitempty"`
	PaidAt      time.Time       `json:"paid_at"`
	Record      *RecordResponse `json:"record"`
}

// ExpenseFromDomain converts a domain expense and its record to response.
func ExpenseFromDomain(e *domain.Expense, record *domain.AccountingRecord) *ExpenseResponse {
	return &ExpenseResponse{
		ID:          e.ID,
		Category:    e.Category,
		Amount:      e.Amount,
		Description: e.Description,
		Supplier:    e.Supplier,
		PaidAt:      e.PaidAt,
		Record:      RecordFromDomain(record),
	}
}

// PaymentResponse represents a payment.
type PaymentResponse struct {
	ID         string          `json:"id"`
	InvoiceID  string          `json:"invoice_id"`
	Amount     decimal.Decimal `json:"amount"`
	Method     string          `json:"method"`
	Reference  string          `json:"reference,omitempty"`
	ReceivedBy string          `json:"received_by"`
	ReceivedAt time.Time       `json:"received_at"`
}

// PaymentFromDomain converts a domain payment to response.
func PaymentFromDomain(p *domain.Payment) *PaymentResponse {
	return &PaymentResponse{
		ID:         p.ID,
		InvoiceID:  p.InvoiceID,
		Amount:     p.Amount,
		Method:     string(p.Method),
		Reference:  p.Reference,
		ReceivedBy: p.ReceivedBy,
		ReceivedAt: p.ReceivedAt,
	}
}

// PaymentsFromDomain converts domain payments to responses.
func PaymentsFromDomain(payments []*domain.Payment) []*PaymentResponse {
	return mapAll(payments, PaymentFromDomain)
}

// PaymentResultResponse is the outcome of a recorded payment.
type PaymentResultResponse struct {
	Invoice *InvoiceResponse `json:"invoice"`
	Payment *PaymentResponse `json:"payment"`
	Record  *RecordResponse  `json:"record"`
}

// PaymentResultFromUseCase converts a payment result to response.
func PaymentResultFromUseCase(r *usecase.PaymentResult) *PaymentResultResponse {
	return &PaymentResultResponse{
		Invoice: InvoiceFromDomain(r.Invoice),
		Payment: PaymentFromDomain(r.Payment),
		Record:  RecordFromDomain(r.Record),
	}
}

// CustomerResponse represents a customer.
type CustomerResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone,omitempty"`
	Email     string    `json:"email,omitempty"`
	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// CustomerFromDomain converts a domain customer to response.
func CustomerFromDomain(c *domain.Customer) *CustomerResponse {
	return &CustomerResponse{
		ID:        c.ID,
		Name:      c.Name,
		Phone:     c.Phone,
		Email:     c.Email,
		Notes:     c.Notes,
		CreatedAt: c.CreatedAt,
	}
}

// CustomersFromDomain converts domain customers to responses.
func CustomersFromDomain(customers []*domain.Customer) []*CustomerResponse {
	return mapAll(customers, CustomerFromDomain)
}

// VehicleResponse represents a vehicle.
type VehicleResponse struct {
	ID         string    `json:"id"`
	CustomerID string    `json:"customer_id"`
	Plate      string    `json:"plate"`
	Make       string    `json:"make,omitempty"`
	Model      string    `json:"model,omitempty"`
	Year       int       `json:"year,omitempty"`
	VIN        string    `json:"vin,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// VehicleFromDomain converts a domain vehicle to response.
func VehicleFromDomain(v *domain.Vehicle) *VehicleResponse {
	return &VehicleResponse{
		ID:         v.ID,
		CustomerID: v.CustomerID,
		Plate:      v.Plate,
		Make:       v.Make,
		Model:      v.Model,
		Year:       v.Year,
		VIN:        v.VIN,
		CreatedAt:  v.CreatedAt,
	}
}

// VehiclesFromDomain converts domain vehicles to responses.
func VehiclesFromDomain(vehicles []*domain.Vehicle) []*VehicleResponse {
	return mapAll(vehicles, VehicleFromDomain)
}

// JobResponse represents a job card.
type JobResponse struct {
	ID          string     `json:"id"`
	Number      string     `json:"number"`
	CustomerID  string     `json:"customer_id"`
	VehicleID   string     `json:"vehicle_id,omitempty"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Status      string     `json:"status"`
	AssignedTo  string     `json:"assigned_to,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	ClosedAt    *time.Time `json:"closed_at,omitempty"`
}

// JobFromDomain converts a domain job to response.
func JobFromDomain(j *domain.Job) *JobResponse {
	return &JobResponse{
		ID:          j.ID,
		Number:      j.Number,
		CustomerID:  j.CustomerID,
		VehicleID:   j.VehicleID,
		Title:       j.Title,
		Description: j.Description,
		Status:      string(j.Status),
		AssignedTo:  j.AssignedTo,
		CreatedAt:   j.CreatedAt,
		UpdatedAt:   j.UpdatedAt,
		ClosedAt:    j.ClosedAt,
	}
}

// JobsFromDomain converts domain jobs to responses.
func JobsFromDomain(jobs []*domain.Job) []*JobResponse {
	return mapAll(jobs, JobFromDomain)
}

// BoardColumnResponse is one column of the job board.
type BoardColumnResponse struct {
	Status string         `json:"status"`
	Jobs   []*JobResponse `json:"jobs"`
}

// BoardFromUseCase converts the job board to response.
func BoardFromUseCase(board []usecase.BoardColumn) []BoardColumnResponse {
	return mapAll(board, func(c usecase.BoardColumn) BoardColumnResponse {
		return BoardColumnResponse{Status: string(c.Status), Jobs: JobsFromDomain(c.Jobs)}
	})
}

// UserResponse represents a staff account without credentials.
type UserResponse struct {
	ID          string     `json:"id"`
	Email       string     `json:"email"`
	Name        string     `json:"name"`
	Role        string     `json:"role"`
	Active      bool       `json:"active"`
	TOTPEnabled bool       `json:"totp_enabled"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// UserFromDomain converts a domain user to response.
func UserFromDomain(u *domain.User) *UserResponse {
	return &UserResponse{
		ID:          u.ID,
		Email:       u.Email,
		Name:        u.Name,
		Role:        string(u.Role),
		Active:      u.Active,
		TOTPEnabled: u.TOTPEnabled,
		LastLoginAt: u.LastLoginAt,
		CreatedAt:   u.CreatedAt,
	}
}

// LoginResponse represents a login response
type LoginResponse struct {
	Token     string        `json:"token"`
	ExpiresAt time.Time     `json:"expires_at"`
	User      *UserResponse `json:"user"`
}

// TOTPEnrollmentResponse carries a new two-factor secret.
type TOTPEnrollmentResponse struct {
	Secret string `json:"secret"`
	URI    string `json:"uri"`
}

// ReconciliationResultResponse is the check of one part.
type ReconciliationResultResponse struct {
	PartID            string    `json:"part_id"`
	PartCode          string    `json:"part_code"`
	RecordedQuantity  int64     `json:"recorded_quantity"`
	CalculatedBalance int64     `json:"calculated_balance"`
	Difference        int64     `json:"difference"`
	MovementCount     int64     `json:"movement_count"`
	LastBalanceAfter  *int64    `json:"last_balance_after,omitempty"`
	IsReconciled      bool      `json:"is_reconciled"`
	LastChecked       time.Time `json:"last_checked"`
}

// ReconciliationResultFromUseCase converts a part check to response.
func ReconciliationResultFromUseCase(r *usecase.ReconciliationResult) *ReconciliationResultResponse {
	return &ReconciliationResultResponse{
		PartID:            r.PartID,
		PartCode:          r.PartCode,
		RecordedQuantity:  r.RecordedQuantity,
		CalculatedBalance: r.CalculatedBalance,
		Difference:        r.Difference,
		MovementCount:     r.MovementCount,
		LastBalanceAfter:  r.LastBalanceAfter,
		IsReconciled:      r.IsReconciled,
		LastChecked:       r.LastChecked,
	}
}

// ReconciliationReportResponse summarizes a full check.
type ReconciliationReportResponse struct {
	Consistent      bool                            `json:"consistent"`
	TotalParts      int                             `json:"total_parts"`
	ReconciledParts int                             `json:"reconciled_parts"`
	Discrepancies   []*ReconciliationResultResponse `json:"discrepancies"`
	CheckedAt       time.Time                       `json:"checked_at"`
}

// ReconciliationReportFromUseCase converts a report to response.
func ReconciliationReportFromUseCase(r *usecase.ReconciliationReport) *ReconciliationReportResponse {
	return &ReconciliationReportResponse{
		Consistent:      r.Consistent(),
		TotalParts:      r.TotalParts,
		ReconciledParts: r.ReconciledParts,
		Discrepancies:   mapAll(r.Discrepancies, ReconciliationResultFromUseCase),
		CheckedAt:       r.CheckedAt,
	}
}

// ListResponse wraps a page of items.
type ListResponse[T any] struct {
	Items  []T `json:"items"`
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
