package dto

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/gtservice/gtledger/internal/domain"
	"github.com/gtservice/gtledger/internal/usecase"
)

func TestPartFromDomain(t *testing.T) {
	now := time.Now()
	part := &domain.Part{
		ID:           "part-1",
		Code:         "BP-100",
		Name:         "Brake pads",
		Quantity:     6,
		UnitCost:     decimal.RequireFromString("25.00"),
		TotalValue:   decimal.RequireFromString("150.00"),
		LowThreshold: 10,
		StockLevel:   domain.StockLevelLow,
		Version:      3,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	resp := PartFromDomain(part)
	if resp.ID != part.ID || resp.StockLevel != "LOW" || resp.Version != 3 {
		t.Fatalf("unexpected part response: %+v", resp)
	}

	list := PartsFromDomain([]*domain.Part{part})
	if len(list) != 1 || list[0].Code != "BP-100" {
		t.Fatalf("PartsFromDomain returned %+v", list)
	}
}

func TestMovementResultFromUseCase_OmitsMissingAlert(t *testing.T) {
	result := &usecase.MovementResult{
		Part:     &domain.Part{ID: "part-1"},
		Movement: &domain.StockMovement{Number: "MOV-2025-000001", Delta: 5},
	}

	data, err := json.Marshal(MovementResultFromUseCase(result))
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if _, ok := decoded["alert"]; ok {
		t.Fatalf("expected no alert key, got %s", data)
	}
	movement, ok := decoded["movement"].(map[string]any)
	if !ok || movement["number"] != "MOV-2025-000001" {
		t.Fatalf("unexpected movement %s", data)
	}
}

func TestInvoiceFromDomain_ReportsOutstanding(t *testing.T) {
	partID := "part-1"
	inv := &domain.Invoice{
		ID:         "inv-1",
		Number:     "INV-2025-000001",
		Status:     domain.InvoiceStatusPartiallyPaid,
		Total:      decimal.RequireFromString("426.16"),
		AmountPaid: decimal.RequireFromString("200"),
		Items: []domain.InvoiceItem{
			{ID: "item-1", Kind: domain.ItemKindPart, PartID: &partID, Quantity: decimal.NewFromInt(2)},
		},
	}

	resp := InvoiceFromDomain(inv)
	if resp.Outstanding.StringFixed(2) != "226.16" {
		t.Fatalf("unexpected outstanding %s", resp.Outstanding)
	}
	if len(resp.Items) != 1 || *resp.Items[0].PartID != partID {
		t.Fatalf("unexpected items %+v", resp.Items)
	}
}

func TestBoardFromUseCase_KeepsEmptyColumns(t *testing.T) {
	board := []usecase.BoardColumn{
		{Status: domain.JobStatusReceived, Jobs: []*domain.Job{{ID: "job-1", Status: domain.JobStatusReceived}}},
		{Status: domain.JobStatusDiagnosis, Jobs: []*domain.Job{}},
	}

	data, err := json.Marshal(BoardFromUseCase(board))
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var decoded []map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if len(decoded) != 2 {
		t.Fatalf("expected 2 columns, got %s", data)
	}
	if jobs, ok := decoded[1]["jobs"].([]any); !ok || len(jobs) != 0 {
		t.Fatalf("expected empty jobs array for DIAGNOSIS, got %s", data)
	}
}

func TestReconciliationReportFromUseCase(t *testing.T) {
	report := &usecase.ReconciliationReport{
		TotalParts:      2,
		ReconciledParts: 1,
		Discrepancies:   []*usecase.ReconciliationResult{{PartID: "part-2", Difference: 2}},
	}

	resp := ReconciliationReportFromUseCase(report)
	if resp.Consistent || len(resp.Discrepancies) != 1 || resp.Discrepancies[0].Difference != 2 {
		t.Fatalf("unexpected report %+v", resp)
	}
}
