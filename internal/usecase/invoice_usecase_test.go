package usecase_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gtservice/gtledger/internal/domain"
	"github.com/gtservice/gtledger/internal/usecase"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func brakeJobInvoice(customerID string) usecase.CreateInvoiceInput {
	return usecase.CreateInvoiceInput{
		CustomerID: customerID,
		Items: []usecase.InvoiceItemInput{
			{Kind: domain.ItemKindLabor, Description: "Brake service", Quantity: d("2"), UnitPrice: d("150.00")},
			{Kind: domain.ItemKindPart, Description: "Brake pads", Quantity: d("1"), UnitPrice: d("80.50")},
		},
	}
}

func TestCreateInvoice_NumbersAndBooksIncome(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	ctx := context.Background()

	invoice, err := h.invoice.CreateInvoice(ctx, brakeJobInvoice("cust-1"))
	require.NoError(t, err)

	assert.Equal(t, domain.DocInvoice.Format(currentYear(), 1), invoice.Number)
	assert.Equal(t, "380.5", invoice.Subtotal.String())
	assert.Equal(t, "45.66", invoice.TaxAmount.String())
	assert.Equal(t, "426.16", invoice.Total.String())
	assert.Equal(t, domain.InvoiceStatusIssued, invoice.Status)
	require.Len(t, invoice.Items, 2)
	assert.Equal(t, invoice.ID, invoice.Items[0].InvoiceID)
	assert.NotEmpty(t, invoice.Items[1].ID)

	records, err := h.records.GetByInvoice(ctx, invoice.ID)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, domain.RecordTypeIncome, records[0].Type)
	assert.Equal(t, domain.DocAccountingRecord.Format(currentYear(), 1), records[0].Number)
	assert.True(t, records[0].Amount.Equal(invoice.Total))

	second, err := h.invoice.CreateInvoice(ctx, brakeJobInvoice("cust-2"))
	require.NoError(t, err)
	assert.Equal(t, domain.DocInvoice.Format(currentYear(), 2), second.Number)

	assert.Contains(t, h.outboxTypes(t, domain.AggregateTypeInvoice, invoice.ID), domain.EventTypeInvoiceIssued)
}

func TestCreateInvoice_InvalidLeavesNoNumbers(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	ctx := context.Background()

	_, err := h.invoice.CreateInvoice(ctx, usecase.CreateInvoiceInput{CustomerID: "cust-1"})
	assert.ErrorIs(t, err, domain.ErrInvalidInvoice)

	_, err = h.invoice.CreateInvoice(ctx, usecase.CreateInvoiceInput{
		CustomerID: "cust-1",
		Items:      []usecase.InvoiceItemInput{{Description: "Bad", Quantity: d("0"), UnitPrice: d("1")}},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInvoice)

	_, err = h.invoice.CreateInvoice(ctx, usecase.CreateInvoiceInput{Items: brakeJobInvoice("").Items})
	assert.ErrorIs(t, err, domain.ErrInvalidInvoice)

	invoice, err := h.invoice.CreateInvoice(ctx, brakeJobInvoice("cust-1"))
	require.NoError(t, err)
	assert.Equal(t, domain.DocInvoice.Format(currentYear(), 1), invoice.Number)
}

func TestCreateInvoice_TaxRateOverride(t *testing.T) {
	t.Parallel()

	h := newHarness(t)

	input := brakeJobInvoice("cust-1")
	zero := decimal.Zero
	input.TaxRate = &zero

	invoice, err := h.invoice.CreateInvoice(context.Background(), input)
	require.NoError(t, err)
	assert.True(t, invoice.TaxAmount.IsZero())
	assert.Equal(t, "380.5", invoice.Total.String())
}

func TestCancelInvoice_BooksCompensatingRecord(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	ctx := context.Background()

	invoice, err := h.invoice.CreateInvoice(ctx, brakeJobInvoice("cust-1"))
	require.NoError(t, err)

	cancelled, err := h.invoice.CancelInvoice(ctx, invoice.ID, "duplicate")
	require.NoError(t, err)
	assert.Equal(t, domain.InvoiceStatusCancelled, cancelled.Status)

	records, err := h.records.GetByInvoice(ctx, invoice.ID)
	require.NoError(t, err)
	require.Len(t, records, 2)

	original, reversal := records[0], records[1]
	assert.Nil(t, original.ReversesNumber, "original income record is untouched")
	require.NotNil(t, reversal.ReversesNumber)
	assert.Equal(t, original.Number, *reversal.ReversesNumber)
	assert.True(t, reversal.Amount.Equal(invoice.Total.Neg()))
	assert.Contains(t, reversal.Description, "duplicate")

	_, err = h.invoice.CancelInvoice(ctx, invoice.ID, "again")
	assert.ErrorIs(t, err, domain.ErrInvoiceCancelled)

	summary, err := h.accounting.Summary(ctx, currentYear(), 0)
	require.NoError(t, err)
	assert.True(t, summary.Income.IsZero(), "cancellation nets the income out")
}

func TestCancelInvoice_RejectsPaidInvoice(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	ctx := context.Background()

	invoice, err := h.invoice.CreateInvoice(ctx, brakeJobInvoice("cust-1"))
	require.NoError(t, err)

	_, err = h.accounting.RecordPayment(ctx, usecase.RecordPaymentInput{
		InvoiceID: invoice.ID, Amount: d("100"), Method: domain.PaymentMethodCash,
	})
	require.NoError(t, err)

	_, err = h.invoice.CancelInvoice(ctx, invoice.ID, "")
	assert.ErrorIs(t, err, domain.ErrInvoiceHasPayments)

	_, err = h.invoice.CancelInvoice(ctx, "missing", "")
	assert.ErrorIs(t, err, domain.ErrInvoiceNotFound)
}

func TestListInvoices_Filters(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	ctx := context.Background()

	first, err := h.invoice.CreateInvoice(ctx, brakeJobInvoice("cust-1"))
	require.NoError(t, err)
	_, err = h.invoice.CreateInvoice(ctx, brakeJobInvoice("cust-2"))
	require.NoError(t, err)
	_, err = h.invoice.CancelInvoice(ctx, first.ID, "")
	require.NoError(t, err)

	all, err := h.invoice.ListInvoices(ctx, domain.InvoiceFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	issued, err := h.invoice.ListInvoices(ctx, domain.InvoiceFilter{Status: domain.InvoiceStatusIssued})
	require.NoError(t, err)
	require.Len(t, issued, 1)
	assert.Equal(t, "cust-2", issued[0].CustomerID)

	got, err := h.invoice.GetInvoice(ctx, first.ID)
	require.NoError(t, err)
	assert.Len(t, got.Items, 2)
}
