package handler

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/gtservice/gtledger/internal/domain"
	"github.com/gtservice/gtledger/internal/usecase"
)

type accountingServiceStub struct {
	expenseFn func(ctx context.Context, input usecase.RecordExpenseInput) (*domain.Expense, *domain.AccountingRecord, error)
	recordsFn func(ctx context.Context, filter domain.RecordFilter) ([]*domain.AccountingRecord, error)
	summaryFn func(ctx context.Context, year, month int) (*domain.AccountingSummary, error)
}

func (s *accountingServiceStub) RecordExpense(ctx context.Context, input usecase.RecordExpenseInput) (*domain.Expense, *domain.AccountingRecord, error) {
	return s.expenseFn(ctx, input)
}

func (s *accountingServiceStub) ListRecords(ctx context.Context, filter domain.RecordFilter) ([]*domain.AccountingRecord, error) {
	return s.recordsFn(ctx, filter)
}

func (s *accountingServiceStub) Summary(ctx context.Context, year, month int) (*domain.AccountingSummary, error) {
	return s.summaryFn(ctx, year, month)
}

func TestAccountingHandler_RecordExpense(t *testing.T) {
	handler := NewAccountingHandler(&accountingServiceStub{
		expenseFn: func(ctx context.Context, input usecase.RecordExpenseInput) (*domain.Expense, *domain.AccountingRecord, error) {
			if input.Category != "rent" || !input.Amount.Equal(decimal.NewFromInt(900)) {
				t.Fatalf("unexpected input %+v", input)
			}
			return &domain.Expense{ID: "exp-1", Category: input.Category, Amount: input.Amount},
				&domain.AccountingRecord{ID: "rec-1", Number: "ACC-2026-000001", Type: domain.RecordTypeExpense, Amount: input.Amount},
				nil
		},
	})

	req := httptest.NewRequest(http.MethodPost, "/expenses", bytes.NewBufferString(`{"category": "rent", "amount": "900"}`))
	rec := httptest.NewRecorder()

	handler.RecordExpense(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestAccountingHandler_RecordExpense_InvalidAmount(t *testing.T) {
	handler := NewAccountingHandler(&accountingServiceStub{
		expenseFn: func(ctx context.Context, input usecase.RecordExpenseInput) (*domain.Expense, *domain.AccountingRecord, error) {
			return nil, nil, domain.ErrInvalidAmount
		},
	})

	req := httptest.NewRequest(http.MethodPost, "/expenses", bytes.NewBufferString(`{"category": "rent", "amount": "-1"}`))
	rec := httptest.NewRecorder()

	handler.RecordExpense(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestAccountingHandler_ListRecords_ParsesFilter(t *testing.T) {
	var captured domain.RecordFilter
	handler := NewAccountingHandler(&accountingServiceStub{
		recordsFn: func(ctx context.Context, filter domain.RecordFilter) ([]*domain.AccountingRecord, error) {
			captured = filter
			return nil, nil
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/accounting/records?type=payment&from=2026-01-01T00:00:00Z", nil)
	rec := httptest.NewRecorder()

	handler.ListRecords(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if captured.Type != domain.RecordTypePayment {
		t.Fatalf("expected PAYMENT filter, got %q", captured.Type)
	}
	if captured.From == nil || !captured.From.Equal(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)) || captured.To != nil {
		t.Fatalf("unexpected period %v %v", captured.From, captured.To)
	}
}

func TestAccountingHandler_ListRecords_BadTime(t *testing.T) {
	handler := NewAccountingHandler(&accountingServiceStub{
		recordsFn: func(ctx context.Context, filter domain.RecordFilter) ([]*domain.AccountingRecord, error) {
			t.Fatal("ListRecords should not be called")
			return nil, nil
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/accounting/records?to=yesterday", nil)
	rec := httptest.NewRecorder()

	handler.ListRecords(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestAccountingHandler_Summary_DefaultsToCurrentYear(t *testing.T) {
	var gotYear, gotMonth int
	handler := NewAccountingHandler(&accountingServiceStub{
		summaryFn: func(ctx context.Context, year, month int) (*domain.AccountingSummary, error) {
			gotYear, gotMonth = year, month
			return &domain.AccountingSummary{Year: year, Month: month}, nil
		},
	})
	handler.now = func() time.Time { return time.Date(2026, 6, 15, 0, 0, 0, 0, time.UTC) }

	req := httptest.NewRequest(http.MethodGet, "/accounting/summary?month=3", nil)
	rec := httptest.NewRecorder()

	handler.Summary(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if gotYear != 2026 || gotMonth != 3 {
		t.Fatalf("expected 2026-03, got %d-%d", gotYear, gotMonth)
	}
}
