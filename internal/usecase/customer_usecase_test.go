package usecase_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gtservice/gtledger/internal/domain"
	"github.com/gtservice/gtledger/internal/usecase"
)

func TestCustomerAndVehicles(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	ctx := context.Background()

	customer, err := h.crm.CreateCustomer(ctx, usecase.CreateCustomerInput{Name: "  Marta Ruiz ", Email: "Marta@Example.com"})
	require.NoError(t, err)
	assert.Equal(t, "Marta Ruiz", customer.Name)
	assert.Equal(t, "marta@example.com", customer.Email)

	_, err = h.crm.CreateCustomer(ctx, usecase.CreateCustomerInput{Name: "Bad", Email: "not-an-email"})
	assert.ErrorIs(t, err, domain.ErrInvalidEmail)

	_, err = h.crm.CreateCustomer(ctx, usecase.CreateCustomerInput{Name: " "})
	assert.Error(t, err)

	vehicle, err := h.crm.AddVehicle(ctx, usecase.AddVehicleInput{CustomerID: customer.ID, Plate: "p 123-abc", VIN: "1hgbh41jxmn109186"})
	require.NoError(t, err)
	assert.Equal(t, "P123ABC", vehicle.Plate)
	assert.Equal(t, "1HGBH41JXMN109186", vehicle.VIN)

	_, err = h.crm.AddVehicle(ctx, usecase.AddVehicleInput{CustomerID: customer.ID, Plate: "P123ABC"})
	assert.ErrorIs(t, err, domain.ErrDuplicatePlate)

	_, err = h.crm.AddVehicle(ctx, usecase.AddVehicleInput{CustomerID: "missing", Plate: "Q1"})
	assert.ErrorIs(t, err, domain.ErrCustomerNotFound)

	_, err = h.crm.AddVehicle(ctx, usecase.AddVehicleInput{CustomerID: customer.ID, Plate: "Q2", Year: 1850})
	assert.Error(t, err)

	vehicles, err := h.crm.ListVehicles(ctx, customer.ID)
	require.NoError(t, err)
	assert.Len(t, vehicles, 1)

	customers, err := h.crm.ListCustomers(ctx, 0, 0)
	require.NoError(t, err)
	assert.Len(t, customers, 1)

	got, err := h.crm.GetCustomer(ctx, customer.ID)
	require.NoError(t, err)
	assert.Equal(t, customer.ID, got.ID)
}
