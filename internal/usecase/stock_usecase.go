package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/gtservice/gtledger/internal/domain"
	"github.com/gtservice/gtledger/internal/infrastructure/logger"
	"github.com/gtservice/gtledger/internal/infrastructure/metrics"
)

// StockUseCase owns every change to part quantities. Each change is one
// transaction: lock the part, validate, number, append the movement, update the
// part, raise or refresh the alert, commit.
type StockUseCase struct {
	txManager    TransactionManager
	partRepo     PartRepository
	movementRepo MovementRepository
	alertRepo    AlertRepository
	sequenceRepo SequenceRepository
	outboxRepo   OutboxRepository
	auditRepo    AuditRepository
	idGen        IDGenerator
	metrics      *metrics.Metrics
	logger       zerolog.Logger
}

// NewStockUseCase creates a new StockUseCase.
func NewStockUseCase(
	txManager TransactionManager,
	partRepo PartRepository,
	movementRepo MovementRepository,
	alertRepo AlertRepository,
	sequenceRepo SequenceRepository,
	outboxRepo OutboxRepository,
	auditRepo AuditRepository,
	idGen IDGenerator,
	metrics *metrics.Metrics,
	log zerolog.Logger,
) *StockUseCase {
	return &StockUseCase{
		txManager:    txManager,
		partRepo:     partRepo,
		movementRepo: movementRepo,
		alertRepo:    alertRepo,
		sequenceRepo: sequenceRepo,
		outboxRepo:   outboxRepo,
		auditRepo:    auditRepo,
		idGen:        idGen,
		metrics:      metrics,
		logger:       log,
	}
}

// CreatePartInput represents input for creating a part.
type CreatePartInput struct {
	Code            string
	Name            string
	UnitCost        decimal.Decimal
	LowThreshold    int64
	InitialQuantity int64
}

// RecordMovementInput represents a request to change a part's quantity.
type RecordMovementInput struct {
	PartID         string
	Delta          int64
	Reason         domain.MovementReason
	UnitCost       *decimal.Decimal
	Notes          string
	JobID          *string
	CorrectsNumber *string

	// Precondition, when set, runs on the movement's transaction before the
	// part is locked. An error aborts the movement.
	Precondition func(ctx context.Context, tx Transaction) error
}

// MovementResult is what a committed movement produced.
type MovementResult struct {
	Part         *domain.Part
	Movement     *domain.StockMovement
	Alert        *domain.StockAlert
	AlertCreated bool
}

// CreatePart creates a part. A positive initial quantity is booked as an
// INITIAL movement in the same transaction so the ledger explains all stock.
func (uc *StockUseCase) CreatePart(ctx context.Context, input CreatePartInput) (*MovementResult, error) {
	now := time.Now().UTC()

	part := &domain.Part{
		ID:           uc.idGen.Generate(),
		Code:         domain.NormalizePartCode(input.Code),
		Name:         input.Name,
		UnitCost:     input.UnitCost,
		LowThreshold: input.LowThreshold,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	part.TotalValue = decimal.Zero
	part.StockLevel = domain.ClassifyStock(0, part.LowThreshold)

	if err := part.Validate(); err != nil {
		return nil, err
	}
	if input.InitialQuantity < 0 || input.InitialQuantity > MaxMovementQuantity {
		return nil, fmt.Errorf("%w: initial quantity %d", domain.ErrInvalidQuantity, input.InitialQuantity)
	}

	result, err := inTransaction(ctx, uc.txManager, "create part", func(txCtx context.Context, tx Transaction) (*MovementResult, error) {
		if err := uc.partRepo.Create(txCtx, tx, part); err != nil {
			return nil, domain.NewPersistenceError("insert part", err)
		}

		err := writeOutbox(txCtx, tx, uc.outboxRepo, domain.NewOutboxEvent(
			uc.idGen.Generate(), domain.AggregateTypePart, part.ID, domain.EventTypePartCreated,
			map[string]any{"part_id": part.ID, "code": part.Code, "name": part.Name},
			now,
		))
		if err != nil {
			return nil, err
		}

		if err := writeAudit(txCtx, tx, uc.auditRepo, domain.NewAuditLog(
			ctx, uc.idGen.Generate(), domain.AuditActionPartCreate, "part", part.ID, part,
		)); err != nil {
			return nil, err
		}

		if input.InitialQuantity == 0 {
			return &MovementResult{Part: part}, nil
		}

		cost := input.UnitCost
		return uc.apply(txCtx, ctx, tx, part, RecordMovementInput{
			PartID:   part.ID,
			Delta:    input.InitialQuantity,
			Reason:   domain.ReasonInitial,
			UnitCost: &cost,
			Notes:    "opening balance",
		}, now)
	})
	if err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.PartsCreated.Inc()
	}
	uc.observe(ctx, result, now)

	return result, nil
}

// RecordMovement applies a signed quantity change to a part. A rejected
// movement leaves no trace: no ledger row, no balance change, no alert.
func (uc *StockUseCase) RecordMovement(ctx context.Context, input RecordMovementInput) (*MovementResult, error) {
	start := time.Now()

	if err := validateMovementInput(input); err != nil {
		uc.reject(err)
		return nil, err
	}

	result, err := inTransaction(ctx, uc.txManager, "record movement", func(txCtx context.Context, tx Transaction) (*MovementResult, error) {
		if input.Precondition != nil {
			if err := input.Precondition(txCtx, tx); err != nil {
				return nil, err
			}
		}

		part, err := uc.partRepo.GetByIDForUpdate(txCtx, tx, input.PartID)
		if err != nil {
			return nil, domain.NewPersistenceError("lock part", err)
		}

		if input.CorrectsNumber != nil {
			if err := uc.checkCorrection(txCtx, part, *input.CorrectsNumber); err != nil {
				return nil, err
			}
		}

		return uc.apply(txCtx, ctx, tx, part, input, time.Now().UTC())
	})
	if err != nil {
		uc.reject(err)
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.MovementDuration.Observe(time.Since(start).Seconds())
	}
	uc.observe(ctx, result, start)

	return result, nil
}

// apply runs the ledger steps on a part already locked by tx.
// reqCtx carries the caller identity for audit; txCtx bounds the statements.
func (uc *StockUseCase) apply(
	txCtx, reqCtx context.Context,
	tx Transaction,
	part *domain.Part,
	input RecordMovementInput,
	now time.Time,
) (*MovementResult, error) {
	change, err := part.ApplyDelta(input.Delta, input.UnitCost)
	if err != nil {
		return nil, err
	}

	movement, err := appendNumbered(txCtx, tx, uc.sequenceRepo, domain.DocStockMovement, now,
		func(number string) *domain.StockMovement {
			return &domain.StockMovement{
				ID:             uc.idGen.Generate(),
				Number:         number,
				PartID:         part.ID,
				Reason:         input.Reason,
				Delta:          input.Delta,
				BalanceBefore:  change.Before,
				BalanceAfter:   change.After,
				UnitCost:       movementCost(input, change),
				TotalValue:     domain.MovementValue(input.Delta, movementCost(input, change)),
				Notes:          input.Notes,
				JobID:          input.JobID,
				CorrectsNumber: input.CorrectsNumber,
				PerformedBy:    domain.ActorFromContext(reqCtx),
				CreatedAt:      now,
			}
		},
		uc.movementRepo.Create,
	)
	if err != nil {
		return nil, err
	}

	part.Commit(change, now)
	if err := uc.partRepo.Update(txCtx, tx, part); err != nil {
		return nil, domain.NewPersistenceError("update part balance", err)
	}

	result := &MovementResult{Part: part, Movement: movement}

	events := []*domain.OutboxEvent{domain.NewOutboxEvent(
		uc.idGen.Generate(), domain.AggregateTypePart, part.ID, domain.EventTypeStockMoved,
		domain.StockMovedPayload(movement, part), now,
	)}

	if candidate := domain.EvaluateAlert(part, change.After); candidate != nil {
		alert, created, err := uc.upsertAlert(txCtx, tx, candidate, now)
		if err != nil {
			return nil, err
		}
		result.Alert = alert
		result.AlertCreated = created

		events = append(events, domain.NewOutboxEvent(
			uc.idGen.Generate(), domain.AggregateTypePart, part.ID, domain.EventTypeStockAlertRaised,
			domain.StockAlertPayload(alert, part), now,
		))
	}

	if err := writeOutbox(txCtx, tx, uc.outboxRepo, events...); err != nil {
		return nil, err
	}

	if err := writeAudit(txCtx, tx, uc.auditRepo, domain.NewAuditLog(
		reqCtx, uc.idGen.Generate(), domain.AuditActionStockMove, "part", part.ID, movement,
	)); err != nil {
		return nil, err
	}

	return result, nil
}

// upsertAlert keeps a single unread alert per part: an open alert is
// refreshed in place, otherwise a new one is inserted.
func (uc *StockUseCase) upsertAlert(ctx context.Context, tx Transaction, candidate *domain.StockAlert, now time.Time) (*domain.StockAlert, bool, error) {
	open, err := uc.alertRepo.GetOpenForUpdate(ctx, tx, candidate.PartID)
	if err != nil {
		return nil, false, domain.NewPersistenceError("lock open alert", err)
	}

	if open != nil {
		open.Refresh(candidate, now)
		if err := uc.alertRepo.Update(ctx, tx, open); err != nil {
			return nil, false, domain.NewPersistenceError("refresh alert", err)
		}
		return open, false, nil
	}

	candidate.ID = uc.idGen.Generate()
	candidate.CreatedAt = now
	candidate.UpdatedAt = now
	if err := uc.alertRepo.Create(ctx, tx, candidate); err != nil {
		return nil, false, domain.NewPersistenceError("insert alert", err)
	}

	return candidate, true, nil
}

func (uc *StockUseCase) checkCorrection(ctx context.Context, part *domain.Part, number string) error {
	original, err := uc.movementRepo.GetByNumber(ctx, number)
	if err != nil {
		return domain.NewPersistenceError("load corrected movement", err)
	}
	if original.PartID != part.ID {
		return fmt.Errorf("%w: %s belongs to another part", domain.ErrInvalidReason, number)
	}
	return nil
}

func validateMovementInput(input RecordMovementInput) error {
	if !input.Reason.IsValid() || input.Reason == domain.ReasonInitial {
		return fmt.Errorf("%w: %q", domain.ErrInvalidReason, input.Reason)
	}
	if input.Delta == 0 || input.Delta > MaxMovementQuantity || input.Delta < -MaxMovementQuantity {
		return fmt.Errorf("%w: %d", domain.ErrInvalidQuantity, input.Delta)
	}
	if !input.Reason.AllowsDelta(input.Delta) {
		return fmt.Errorf("%w: %s does not allow delta %d", domain.ErrInvalidReason, input.Reason, input.Delta)
	}
	if (input.Reason == domain.ReasonCorrection) != (input.CorrectsNumber != nil) {
		return fmt.Errorf("%w: corrections must reference the corrected movement", domain.ErrInvalidReason)
	}
	if input.UnitCost != nil && input.UnitCost.IsNegative() {
		return domain.ErrInvalidAmount
	}
	return nil
}

func movementCost(input RecordMovementInput, change domain.BalanceChange) decimal.Decimal {
	if input.Delta > 0 && input.UnitCost != nil {
		return *input.UnitCost
	}
	return change.UnitCost
}

func (uc *StockUseCase) reject(err error) {
	if uc.metrics == nil {
		return
	}
	uc.metrics.StockRejections.WithLabelValues(rejectionCause(err)).Inc()
}

func rejectionCause(err error) string {
	switch {
	case errors.Is(err, domain.ErrInsufficientStock):
		return "insufficient_stock"
	case errors.Is(err, domain.ErrPartNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrDuplicateSequence):
		return "duplicate_sequence"
	case errors.Is(err, domain.ErrJobClosed):
		return "job_closed"
	case errors.Is(err, domain.ErrPersistence):
		return "persistence"
	default:
		return "invalid"
	}
}

func (uc *StockUseCase) observe(ctx context.Context, result *MovementResult, start time.Time) {
	log := logger.FromContext(ctx, uc.logger)

	if result.Movement != nil {
		if uc.metrics != nil {
			uc.metrics.StockMovements.WithLabelValues(string(result.Movement.Reason)).Inc()
			uc.metrics.SequenceNumbers.WithLabelValues(domain.DocStockMovement.Prefix).Inc()
		}
		log.Info().
			Str("movement", result.Movement.Number).
			Str("part_code", result.Part.Code).
			Int64("delta", result.Movement.Delta).
			Int64("balance_after", result.Movement.BalanceAfter).
			Str("stock_level", string(result.Part.StockLevel)).
			Dur("duration", time.Since(start)).
			Msg("movement recorded")
	}

	if result.Alert != nil {
		outcome := "refreshed"
		if result.AlertCreated {
			outcome = "created"
		}
		if uc.metrics != nil {
			uc.metrics.StockAlerts.WithLabelValues(string(result.Alert.Severity), outcome).Inc()
		}
		log.Warn().
			Str("part_code", result.Part.Code).
			Str("severity", string(result.Alert.Severity)).
			Str("outcome", outcome).
			Msg(result.Alert.Message)
	}
}

// GetPart retrieves a part by ID.
func (uc *StockUseCase) GetPart(ctx context.Context, id string) (*domain.Part, error) {
	part, err := uc.partRepo.GetByID(ctx, id)
	if err != nil {
		return nil, domain.NewPersistenceError("get part", err)
	}
	return part, nil
}

// ListPartsInput represents input for listing parts.
type ListPartsInput struct {
	Limit  int
	Offset int
}

// ListParts lists parts with pagination.
func (uc *StockUseCase) ListParts(ctx context.Context, input ListPartsInput) ([]*domain.Part, error) {
	limit, offset := domain.ClampPagination(input.Limit, input.Offset)
	parts, err := uc.partRepo.List(ctx, limit, offset)
	if err != nil {
		return nil, domain.NewPersistenceError("list parts", err)
	}
	return parts, nil
}

// ListMovementsInput represents input for listing a part's movements.
type ListMovementsInput struct {
	PartID string
	Limit  int
	Offset int
}

// ListMovements lists a part's ledger, newest first.
func (uc *StockUseCase) ListMovements(ctx context.Context, input ListMovementsInput) ([]*domain.StockMovement, error) {
	if _, err := uc.GetPart(ctx, input.PartID); err != nil {
		return nil, err
	}

	limit, offset := domain.ClampPagination(input.Limit, input.Offset)
	movements, err := uc.movementRepo.ListByPart(ctx, input.PartID, limit, offset)
	if err != nil {
		return nil, domain.NewPersistenceError("list movements", err)
	}
	return movements, nil
}

// GetMovement retrieves a movement by its document number.
func (uc *StockUseCase) GetMovement(ctx context.Context, number string) (*domain.StockMovement, error) {
	movement, err := uc.movementRepo.GetByNumber(ctx, number)
	if err != nil {
		return nil, domain.NewPersistenceError("get movement", err)
	}
	return movement, nil
}

// ListAlerts lists stock alerts.
func (uc *StockUseCase) ListAlerts(ctx context.Context, filter domain.AlertFilter) ([]*domain.StockAlert, error) {
	filter.Limit, filter.Offset = domain.ClampPagination(filter.Limit, filter.Offset)
	alerts, err := uc.alertRepo.List(ctx, filter)
	if err != nil {
		return nil, domain.NewPersistenceError("list alerts", err)
	}
	return alerts, nil
}

// AcknowledgeAlert marks an alert read. Acknowledging twice is a no-op.
func (uc *StockUseCase) AcknowledgeAlert(ctx context.Context, id string) (*domain.StockAlert, error) {
	actor := domain.ActorFromContext(ctx)
	now := time.Now().UTC()

	alert, err := uc.alertRepo.MarkRead(ctx, id, actor, now)
	if err != nil {
		return nil, domain.NewPersistenceError("acknowledge alert", err)
	}

	if uc.auditRepo != nil {
		log := domain.NewAuditLog(ctx, uc.idGen.Generate(), domain.AuditActionAlertAck, "stock_alert", alert.ID, alert)
		if err := uc.auditRepo.Create(ctx, log); err != nil {
			logger.FromContext(ctx, uc.logger).Error().Err(err).Str("alert_id", alert.ID).Msg("failed to audit alert acknowledgement")
		}
	}

	if uc.metrics != nil {
		uc.metrics.AlertsAcknowledged.Inc()
	}

	return alert, nil
}
