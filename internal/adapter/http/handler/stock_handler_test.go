package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"

	"github.com/gtservice/gtledger/internal/adapter/http/dto"
	"github.com/gtservice/gtledger/internal/domain"
	"github.com/gtservice/gtledger/internal/usecase"
)

type stockServiceStub struct {
	createPartFn    func(ctx context.Context, input usecase.CreatePartInput) (*usecase.MovementResult, error)
	recordFn        func(ctx context.Context, input usecase.RecordMovementInput) (*usecase.MovementResult, error)
	getPartFn       func(ctx context.Context, id string) (*domain.Part, error)
	listPartsFn     func(ctx context.Context, input usecase.ListPartsInput) ([]*domain.Part, error)
	listMovementsFn func(ctx context.Context, input usecase.ListMovementsInput) ([]*domain.StockMovement, error)
	getMovementFn   func(ctx context.Context, number string) (*domain.StockMovement, error)
	listAlertsFn    func(ctx context.Context, filter domain.AlertFilter) ([]*domain.StockAlert, error)
	ackFn           func(ctx context.Context, id string) (*domain.StockAlert, error)
}

func (s *stockServiceStub) CreatePart(ctx context.Context, input usecase.CreatePartInput) (*usecase.MovementResult, error) {
	return s.createPartFn(ctx, input)
}

func (s *stockServiceStub) RecordMovement(ctx context.Context, input usecase.RecordMovementInput) (*usecase.MovementResult, error) {
	return s.recordFn(ctx, input)
}

func (s *stockServiceStub) GetPart(ctx context.Context, id string) (*domain.Part, error) {
	return s.getPartFn(ctx, id)
}

func (s *stockServiceStub) ListParts(ctx context.Context, input usecase.ListPartsInput) ([]*domain.Part, error) {
	return s.listPartsFn(ctx, input)
}

func (s *stockServiceStub) ListMovements(ctx context.Context, input usecase.ListMovementsInput) ([]*domain.StockMovement, error) {
	return s.listMovementsFn(ctx, input)
}

func (s *stockServiceStub) GetMovement(ctx context.Context, number string) (*domain.StockMovement, error) {
	return s.getMovementFn(ctx, number)
}

func (s *stockServiceStub) ListAlerts(ctx context.Context, filter domain.AlertFilter) ([]*domain.StockAlert, error) {
	return s.listAlertsFn(ctx, filter)
}

func (s *stockServiceStub) AcknowledgeAlert(ctx context.Context, id string) (*domain.StockAlert, error) {
	return s.ackFn(ctx, id)
}

type countingRetrier struct {
	calls int
}

func (r *countingRetrier) Retry(ctx context.Context, operation func() error) error {
	var err error
	for i := 0; i < 3; i++ {
		r.calls++
		if err = operation(); err == nil {
			return nil
		}
	}
	return err
}

func movementResult(partID string, quantity int64) *usecase.MovementResult {
	return &usecase.MovementResult{
		Part: &domain.Part{
			ID:         partID,
			Code:       "BRK-001",
			Quantity:   quantity,
			UnitCost:   decimal.NewFromInt(12),
			StockLevel: domain.ClassifyStock(quantity, 5),
		},
		Movement: &domain.StockMovement{
			ID:           "mov-1",
			Number:       "MOV-2026-000001",
			PartID:       partID,
			BalanceAfter: quantity,
		},
	}
}

func TestStockHandler_CreatePart_Success(t *testing.T) {
	var captured usecase.CreatePartInput
	handler := NewStockHandler(&stockServiceStub{
		createPartFn: func(ctx context.Context, input usecase.CreatePartInput) (*usecase.MovementResult, error) {
			captured = input
			return movementResult("part-1", input.InitialQuantity), nil
		},
	}, nil)

	body, _ := json.Marshal(dto.CreatePartRequest{
		Code:            "brk-001",
		Name:            "Brake pad",
		UnitCost:        decimal.NewFromInt(12),
		LowThreshold:    5,
		InitialQuantity: 20,
	})
	req := httptest.NewRequest(http.MethodPost, "/parts", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handler.CreatePart(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if captured.Code != "brk-001" || captured.InitialQuantity != 20 || captured.LowThreshold != 5 {
		t.Fatalf("expected input to match request, got %+v", captured)
	}

	var resp dto.MovementResultResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Part.ID != "part-1" || resp.Movement == nil || resp.Movement.Number != "MOV-2026-000001" {
		t.Fatalf("unexpected response %+v", resp)
	}
}

func TestStockHandler_CreatePart_DuplicateCode(t *testing.T) {
	handler := NewStockHandler(&stockServiceStub{
		createPartFn: func(ctx context.Context, input usecase.CreatePartInput) (*usecase.MovementResult, error) {
			return nil, domain.ErrDuplicatePartCode
		},
	}, nil)

	body, _ := json.Marshal(dto.CreatePartRequest{Code: "BRK-001", Name: "Brake pad"})
	req := httptest.NewRequest(http.MethodPost, "/parts", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handler.CreatePart(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
}

func TestStockHandler_RecordMovement_InvalidBody(t *testing.T) {
	handler := NewStockHandler(&stockServiceStub{
		recordFn: func(ctx context.Context, input usecase.RecordMovementInput) (*usecase.MovementResult, error) {
			t.Fatal("RecordMovement should not be called")
			return nil, nil
		},
	}, nil)

	req := httptest.NewRequest(http.MethodPost, "/stock/movements", bytes.NewBufferString("{bad json"))
	rec := httptest.NewRecorder()

	handler.RecordMovement(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestStockHandler_RecordMovement_MissingPart(t *testing.T) {
	handler := NewStockHandler(&stockServiceStub{
		recordFn: func(ctx context.Context, input usecase.RecordMovementInput) (*usecase.MovementResult, error) {
			t.Fatal("RecordMovement should not be called without a part")
			return nil, nil
		},
	}, nil)

	req := httptest.NewRequest(http.MethodPost, "/stock/movements", bytes.NewBufferString(`{"delta": 3, "reason": "PURCHASE"}`))
	rec := httptest.NewRecorder()

	handler.RecordMovement(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestStockHandler_RecordMovement_PartFromBody(t *testing.T) {
	var captured usecase.RecordMovementInput
	handler := NewStockHandler(&stockServiceStub{
		recordFn: func(ctx context.Context, input usecase.RecordMovementInput) (*usecase.MovementResult, error) {
			captured = input
			return movementResult(input.PartID, 7), nil
		},
	}, nil)

	body := `{"part_id": "part-9", "delta": -3, "reason": "SALE"}`
	req := httptest.NewRequest(http.MethodPost, "/stock/movements", bytes.NewBufferString(body))
	rec := httptest.NewRecorder()

	handler.RecordMovement(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if captured.PartID != "part-9" || captured.Delta != -3 || captured.Reason != domain.ReasonSale {
		t.Fatalf("unexpected input %+v", captured)
	}
}

func TestStockHandler_RecordMovement_InsufficientStock(t *testing.T) {
	handler := NewStockHandler(&stockServiceStub{
		recordFn: func(ctx context.Context, input usecase.RecordMovementInput) (*usecase.MovementResult, error) {
			return nil, domain.ErrInsufficientStock
		},
	}, nil)

	req := httptest.NewRequest(http.MethodPost, "/parts/part-1/movements", bytes.NewBufferString(`{"delta": -50, "reason": "SALE"}`))
	req = setChiURLParam(req, "id", "part-1")
	rec := httptest.NewRecorder()

	handler.RecordMovement(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}
}

func TestStockHandler_RecordMovement_RetriesConflicts(t *testing.T) {
	attempts := 0
	retrier := &countingRetrier{}
	handler := NewStockHandler(&stockServiceStub{
		recordFn: func(ctx context.Context, input usecase.RecordMovementInput) (*usecase.MovementResult, error) {
			attempts++
			if attempts == 1 {
				return nil, domain.NewPersistenceError("lock part", &pgconn.PgError{Code: "40001"})
			}
			return movementResult(input.PartID, 10), nil
		},
	}, retrier)

	req := httptest.NewRequest(http.MethodPost, "/parts/part-1/movements", bytes.NewBufferString(`{"delta": 2, "reason": "PURCHASE"}`))
	req = setChiURLParam(req, "id", "part-1")
	rec := httptest.NewRecorder()

	handler.RecordMovement(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 after retry, got %d: %s", rec.Code, rec.Body.String())
	}
	if retrier.calls != 2 {
		t.Fatalf("expected 2 attempts through the retrier, got %d", retrier.calls)
	}
}

func TestStockHandler_RecordMovement_ConflictWithoutRetrier(t *testing.T) {
	handler := NewStockHandler(&stockServiceStub{
		recordFn: func(ctx context.Context, input usecase.RecordMovementInput) (*usecase.MovementResult, error) {
			return nil, domain.NewPersistenceError("lock part", &pgconn.PgError{Code: "40P01"})
		},
	}, nil)

	req := httptest.NewRequest(http.MethodPost, "/parts/part-1/movements", bytes.NewBufferString(`{"delta": 2, "reason": "PURCHASE"}`))
	req = setChiURLParam(req, "id", "part-1")
	rec := httptest.NewRecorder()

	handler.RecordMovement(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
}

func TestStockHandler_GetPart_NotFound(t *testing.T) {
	handler := NewStockHandler(&stockServiceStub{
		getPartFn: func(ctx context.Context, id string) (*domain.Part, error) {
			return nil, domain.ErrPartNotFound
		},
	}, nil)

	req := httptest.NewRequest(http.MethodGet, "/parts/missing", nil)
	req = setChiURLParam(req, "id", "missing")
	rec := httptest.NewRecorder()

	handler.GetPart(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestStockHandler_ListMovements_Pagination(t *testing.T) {
	var captured usecase.ListMovementsInput
	handler := NewStockHandler(&stockServiceStub{
		listMovementsFn: func(ctx context.Context, input usecase.ListMovementsInput) ([]*domain.StockMovement, error) {
			captured = input
			return nil, nil
		},
	}, nil)

	req := httptest.NewRequest(http.MethodGet, "/parts/part-1/movements?limit=5&offset=10", nil)
	req = setChiURLParam(req, "id", "part-1")
	rec := httptest.NewRecorder()

	handler.ListMovements(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if captured.PartID != "part-1" || captured.Limit != 5 || captured.Offset != 10 {
		t.Fatalf("unexpected input %+v", captured)
	}

	var resp dto.ListResponse[*dto.MovementResponse]
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Items == nil || len(resp.Items) != 0 {
		t.Fatalf("expected empty item list, got %+v", resp.Items)
	}
}

func TestStockHandler_ListAlerts_UnreadFilter(t *testing.T) {
	var captured domain.AlertFilter
	handler := NewStockHandler(&stockServiceStub{
		listAlertsFn: func(ctx context.Context, filter domain.AlertFilter) ([]*domain.StockAlert, error) {
			captured = filter
			return []*domain.StockAlert{{ID: "alert-1", PartID: "part-1", Severity: domain.AlertSeverityWarning}}, nil
		},
	}, nil)

	req := httptest.NewRequest(http.MethodGet, "/alerts?unread=true&part_id=part-1", nil)
	rec := httptest.NewRecorder()

	handler.ListAlerts(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !captured.UnreadOnly || captured.PartID != "part-1" {
		t.Fatalf("unexpected filter %+v", captured)
	}
}

func TestStockHandler_AcknowledgeAlert(t *testing.T) {
	handler := NewStockHandler(&stockServiceStub{
		ackFn: func(ctx context.Context, id string) (*domain.StockAlert, error) {
			return &domain.StockAlert{ID: id, IsRead: true, ReadBy: "user-1"}, nil
		},
	}, nil)

	req := httptest.NewRequest(http.MethodPost, "/alerts/alert-1/ack", nil)
	req = setChiURLParam(req, "id", "alert-1")
	rec := httptest.NewRecorder()

	handler.AcknowledgeAlert(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp dto.AlertResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.ID != "alert-1" || !resp.IsRead {
		t.Fatalf("unexpected response %+v", resp)
	}
}
