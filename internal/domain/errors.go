package domain

import (
	"errors"
	"fmt"
)

var (
	// Part errors
	ErrPartNotFound      = errors.New("part not found")
	ErrDuplicatePartCode = errors.New("part code already exists")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrInvalidQuantity   = errors.New("quantity must be non-zero")
	ErrInvalidThreshold  = errors.New("low threshold must not be negative")
	ErrInvalidReason     = errors.New("invalid movement reason")
	ErrMovementNotFound  = errors.New("stock movement not found")

	// Alert errors
	ErrAlertNotFound = errors.New("stock alert not found")

	// Numbering errors
	ErrDuplicateSequence = errors.New("duplicate document number")

	// Money errors
	ErrInvalidAmount        = errors.New("amount must be positive")
	ErrInvalidPaymentMethod = errors.New("invalid payment method")

	// Persistence
	ErrPersistence = errors.New("persistence failure")
)

// PersistenceError wraps a store failure with the operation that produced it.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ErrPersistence) match any PersistenceError.
func (e *PersistenceError) Is(target error) bool {
	return target == ErrPersistence
}

// NewPersistenceError wraps err unless it is nil or already a domain error.
func NewPersistenceError(op string, err error) error {
	if err == nil {
		return nil
	}
	if IsDomainError(err) {
		return err
	}
	var pe *PersistenceError
	if errors.As(err, &pe) {
		return err
	}
	return &PersistenceError{Op: op, Err: err}
}

var domainErrors = []error{
	ErrPartNotFound,
	ErrDuplicatePartCode,
	ErrInsufficientStock,
	ErrInvalidQuantity,
	ErrInvalidThreshold,
	ErrInvalidReason,
	ErrMovementNotFound,
	ErrAlertNotFound,
	ErrDuplicateSequence,
	ErrInvalidAmount,
	ErrInvalidPaymentMethod,
	ErrInvoiceNotFound,
	ErrInvalidInvoice,
	ErrInvoiceCancelled,
	ErrInvoiceHasPayments,
	ErrOverpayment,
	ErrExpenseNotFound,
	ErrCustomerNotFound,
	ErrVehicleNotFound,
	ErrDuplicatePlate,
	ErrJobNotFound,
	ErrJobClosed,
	ErrInvalidTransition,
	ErrUserNotFound,
	ErrDuplicateEmail,
	ErrInvalidCredentials,
	ErrAccountLocked,
	ErrAccountInactive,
	ErrInvalidTOTP,
	ErrTOTPNotEnrolled,
	ErrUnauthorized,
	ErrInsufficientRole,
	ErrInvalidEmail,
	ErrPasswordTooWeak,
	ErrInvalidName,
	ErrInvalidPartCode,
	ErrAmountTooLarge,
}

// IsDomainError reports whether err is one of the business rule errors.
func IsDomainError(err error) bool {
	for _, target := range domainErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
