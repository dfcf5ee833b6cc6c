package domain

import (
	"context"
	"encoding/json"
	"time"
)

// AuditLog represents an audit trail entry for compliance and debugging
type AuditLog struct {
	ID           string
	UserID       string // Who performed the action
	Action       string // stock.move, invoice.issue, user.login, ...
	ResourceType string // part, invoice, job, user, ...
	ResourceID   string // ID of the resource
	IPAddress    string // Client IP address
	UserAgent    string // Client user agent
	RequestID    string // Request ID for tracing
	BeforeState  JSON   // State before the action
	AfterState   JSON   // State after the action
	Status       string // success, failure, error
	ErrorMessage string // If status=error, the error message
	CreatedAt    time.Time
}

// JSON is a type alias for JSON data
type JSON map[string]any

// AuditAction represents different types of auditable actions
type AuditAction string

const (
	AuditActionPartCreate    AuditAction = "part.create"
	AuditActionStockMove     AuditAction = "stock.move"
	AuditActionAlertAck      AuditAction = "alert.acknowledge"
	AuditActionInvoiceIssue  AuditAction = "invoice.issue"
	AuditActionInvoiceCancel AuditAction = "invoice.cancel"
	AuditActionPaymentRecord AuditAction = "payment.record"
	AuditActionExpenseRecord AuditAction = "expense.record"
	AuditActionJobCreate     AuditAction = "job.create"
	AuditActionJobTransition AuditAction = "job.transition"
	AuditActionUserCreate    AuditAction = "user.create"
	AuditActionUserLogin     AuditAction = "user.login"
	AuditActionUserLocked    AuditAction = "user.locked"
	AuditActionUserActive    AuditAction = "user.set_active"
	AuditActionTOTPEnroll    AuditAction = "user.totp_enroll"
	AuditActionTOTPConfirm   AuditAction = "user.totp_confirm"
)

// AuditStatus represents the status of an audited action
type AuditStatus string

const (
	AuditStatusSuccess AuditStatus = "success"
	AuditStatusFailure AuditStatus = "failure"
	AuditStatusError   AuditStatus = "error"
)

// NewAuditLog builds a successful audit entry attributed to the user and
// request in ctx.
func NewAuditLog(ctx context.Context, id string, action AuditAction, resourceType, resourceID string, after any) *AuditLog {
	meta := RequestMetaFromContext(ctx)
	return &AuditLog{
		ID:           id,
		UserID:       ActorFromContext(ctx),
		Action:       string(action),
		ResourceType: resourceType,
		ResourceID:   resourceID,
		IPAddress:    meta.IPAddress,
		UserAgent:    meta.UserAgent,
		RequestID:    meta.RequestID,
		AfterState:   MarshalState(after),
		Status:       string(AuditStatusSuccess),
		CreatedAt:    time.Now().UTC(),
	}
}

// MarshalState converts a domain object to JSON for audit logging
func MarshalState(v any) JSON {
	if v == nil {
		return nil
	}

	data, err := json.Marshal(v)
	if err != nil {
		return JSON{"error": "failed to marshal state"}
	}

	var result JSON
	if err := json.Unmarshal(data, &result); err != nil {
		return JSON{"error": "failed to unmarshal state"}
	}

	return result
}

// AuditFilter defines filters for querying audit logs
type AuditFilter struct {
	UserID       string
	Action       string
	ResourceType string
	ResourceID   string
	StartDate    *time.Time
	EndDate      *time.Time
	Limit        int
	Offset       int
}
