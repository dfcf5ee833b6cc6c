package domain

import (
	"errors"
	"strings"
	"time"
)

var (
	ErrCustomerNotFound = errors.New("customer not found")
	ErrVehicleNotFound  = errors.New("vehicle not found")
	ErrDuplicatePlate   = errors.New("vehicle plate already registered")
)

type Customer struct {
	ID        string
	Name      string
	Phone     string
	Email     string
	Notes     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Vehicle struct {
	ID         string
	CustomerID string
	Plate      string
	Make       string
	Model      string
	Year       int
	VIN        string
	CreatedAt  time.Time
}

// NormalizePlate strips spaces and dashes and upper-cases a licence plate.
func NormalizePlate(plate string) string {
	plate = strings.ToUpper(strings.TrimSpace(plate))
	return strings.NewReplacer(" ", "", "-", "").Replace(plate)
}
