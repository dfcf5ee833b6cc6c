package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gtservice/gtledger/internal/usecase"
)

func TestHealthHandler_Readiness(t *testing.T) {
	ok := func(ctx context.Context) error { return nil }
	down := func(ctx context.Context) error { return errors.New("connection refused") }

	tests := []struct {
		name     string
		checks   map[string]Check
		expected int
	}{
		{"no dependencies", nil, http.StatusOK},
		{"all healthy", map[string]Check{"postgres": ok, "redis": ok}, http.StatusOK},
		{"redis down", map[string]Check{"postgres": ok, "redis": down}, http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			handler := NewHealthHandler(tt.checks)
			rec := httptest.NewRecorder()

			handler.Readiness(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))

			if rec.Code != tt.expected {
				t.Fatalf("expected %d, got %d: %s", tt.expected, rec.Code, rec.Body.String())
			}
		})
	}
}

func TestHealthHandler_Liveness(t *testing.T) {
	rec := httptest.NewRecorder()
	NewHealthHandler(nil).Liveness(rec, httptest.NewRequest(http.MethodGet, "/health/live", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

type reconciliationServiceStub struct {
	partFn   func(ctx context.Context, partID string) (*usecase.ReconciliationResult, error)
	reportFn func(ctx context.Context) (*usecase.ReconciliationReport, error)
}

func (s *reconciliationServiceStub) ReconcilePart(ctx context.Context, partID string) (*usecase.ReconciliationResult, error) {
	return s.partFn(ctx, partID)
}

func (s *reconciliationServiceStub) GenerateReconciliationReport(ctx context.Context) (*usecase.ReconciliationReport, error) {
	return s.reportFn(ctx)
}

func TestReconciliationHandler_SinglePart(t *testing.T) {
	handler := NewReconciliationHandler(&reconciliationServiceStub{
		partFn: func(ctx context.Context, partID string) (*usecase.ReconciliationResult, error) {
			return &usecase.ReconciliationResult{PartID: partID, IsReconciled: true}, nil
		},
		reportFn: func(ctx context.Context) (*usecase.ReconciliationReport, error) {
			t.Fatal("full report should not run for a single part")
			return nil, nil
		},
	})

	rec := httptest.NewRecorder()
	handler.Reconcile(rec, httptest.NewRequest(http.MethodGet, "/stock/reconciliation?part_id=part-1", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestReconciliationHandler_Report(t *testing.T) {
	handler := NewReconciliationHandler(&reconciliationServiceStub{
		reportFn: func(ctx context.Context) (*usecase.ReconciliationReport, error) {
			return &usecase.ReconciliationReport{
				TotalParts:    2,
				Discrepancies: []*usecase.ReconciliationResult{{PartID: "part-2", Difference: 3}},
			}, nil
		},
	})

	rec := httptest.NewRecorder()
	handler.Reconcile(rec, httptest.NewRequest(http.MethodGet, "/stock/reconciliation", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}
