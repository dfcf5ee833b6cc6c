package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/gtservice/gtledger/internal/domain"
	"github.com/gtservice/gtledger/internal/infrastructure/logger"
	"github.com/gtservice/gtledger/internal/infrastructure/metrics"
)

// StockRecorder books stock movements. *StockUseCase satisfies it.
type StockRecorder interface {
	RecordMovement(ctx context.Context, input RecordMovementInput) (*MovementResult, error)
}

// JobUseCase runs the workshop job board.
type JobUseCase struct {
	txManager    TransactionManager
	jobRepo      JobRepository
	customerRepo CustomerRepository
	sequenceRepo SequenceRepository
	outboxRepo   OutboxRepository
	auditRepo    AuditRepository
	stock        StockRecorder
	idGen        IDGenerator
	metrics      *metrics.Metrics
	logger       zerolog.Logger
}

// NewJobUseCase creates a new JobUseCase.
func NewJobUseCase(
	txManager TransactionManager,
	jobRepo JobRepository,
	customerRepo CustomerRepository,
	sequenceRepo SequenceRepository,
	outboxRepo OutboxRepository,
	auditRepo AuditRepository,
	stock StockRecorder,
	idGen IDGenerator,
	metrics *metrics.Metrics,
	log zerolog.Logger,
) *JobUseCase {
	return &JobUseCase{
		txManager:    txManager,
		jobRepo:      jobRepo,
		customerRepo: customerRepo,
		sequenceRepo: sequenceRepo,
		outboxRepo:   outboxRepo,
		auditRepo:    auditRepo,
		stock:        stock,
		idGen:        idGen,
		metrics:      metrics,
		logger:       log,
	}
}

// CreateJobInput represents input for opening a job.
type CreateJobInput struct {
	CustomerID  string
	VehicleID   string
	Title       string
	Description string
	AssignedTo  string
}

// CreateJob opens a numbered job in the RECEIVED column.
func (uc *JobUseCase) CreateJob(ctx context.Context, input CreateJobInput) (*domain.Job, error) {
	title := strings.TrimSpace(input.Title)
	if err := domain.ValidateName(title); err != nil {
		return nil, err
	}

	if _, err := uc.customerRepo.GetByID(ctx, input.CustomerID); err != nil {
		return nil, domain.NewPersistenceError("get customer", err)
	}

	if input.VehicleID != "" {
		vehicle, err := uc.customerRepo.GetVehicle(ctx, input.VehicleID)
		if err != nil {
			return nil, domain.NewPersistenceError("get vehicle", err)
		}
		if vehicle.CustomerID != input.CustomerID {
			return nil, fmt.Errorf("%w: vehicle belongs to another customer", domain.ErrVehicleNotFound)
		}
	}

	now := time.Now().UTC()

	job, err := inTransaction(ctx, uc.txManager, "create job", func(txCtx context.Context, tx Transaction) (*domain.Job, error) {
		job, err := appendNumbered(txCtx, tx, uc.sequenceRepo, domain.DocJob, now,
			func(number string) *domain.Job {
				return &domain.Job{
					ID:          uc.idGen.Generate(),
					Number:      number,
					CustomerID:  input.CustomerID,
					VehicleID:   input.VehicleID,
					Title:       title,
					Description: input.Description,
					Status:      domain.JobStatusReceived,
					AssignedTo:  input.AssignedTo,
					CreatedAt:   now,
					UpdatedAt:   now,
				}
			},
			uc.jobRepo.Create,
		)
		if err != nil {
			return nil, err
		}

		if err := writeAudit(txCtx, tx, uc.auditRepo, domain.NewAuditLog(
			ctx, uc.idGen.Generate(), domain.AuditActionJobCreate, "job", job.ID, job,
		)); err != nil {
			return nil, err
		}

		return job, nil
	})
	if err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.JobTransitions.WithLabelValues(string(job.Status)).Inc()
		uc.metrics.SequenceNumbers.WithLabelValues(domain.DocJob.Prefix).Inc()
	}

	return job, nil
}

// TransitionJob moves a job to another board column.
func (uc *JobUseCase) TransitionJob(ctx context.Context, id string, status domain.JobStatus) (*domain.Job, error) {
	if !status.IsValid() {
		return nil, fmt.Errorf("%w: unknown status %q", domain.ErrInvalidTransition, status)
	}

	now := time.Now().UTC()

	var from domain.JobStatus
	job, err := inTransaction(ctx, uc.txManager, "transition job", func(txCtx context.Context, tx Transaction) (*domain.Job, error) {
		job, err := uc.jobRepo.GetByIDForUpdate(txCtx, tx, id)
		if err != nil {
			return nil, domain.NewPersistenceError("lock job", err)
		}

		from = job.Status
		if from.IsTerminal() {
			return nil, fmt.Errorf("%w: %s is %s", domain.ErrJobClosed, job.Number, from)
		}
		if err := job.TransitionTo(status, now); err != nil {
			return nil, err
		}

		if err := uc.jobRepo.UpdateStatus(txCtx, tx, job); err != nil {
			return nil, domain.NewPersistenceError("update job", err)
		}

		err = writeOutbox(txCtx, tx, uc.outboxRepo, domain.NewOutboxEvent(
			uc.idGen.Generate(), domain.AggregateTypeJob, job.ID, domain.EventTypeJobStatusChanged,
			map[string]any{"job_id": job.ID, "number": job.Number, "from": string(from), "to": string(status)},
			now,
		))
		if err != nil {
			return nil, err
		}

		if err := writeAudit(txCtx, tx, uc.auditRepo, domain.NewAuditLog(
			ctx, uc.idGen.Generate(), domain.AuditActionJobTransition, "job", job.ID, job,
		)); err != nil {
			return nil, err
		}

		return job, nil
	})
	if err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.JobTransitions.WithLabelValues(string(status)).Inc()
	}

	logger.FromContext(ctx, uc.logger).Info().
		Str("job", job.Number).
		Str("from", string(from)).
		Str("to", string(status)).
		Msg("job moved")

	return job, nil
}

// ConsumePart books parts used on a job as a JOB_USAGE movement. The job is
// locked and re-checked on the movement's transaction, so a job closed
// concurrently cannot receive parts.
func (uc *JobUseCase) ConsumePart(ctx context.Context, jobID, partID string, quantity int64, notes string) (*MovementResult, error) {
	if quantity <= 0 {
		return nil, fmt.Errorf("%w: quantity must be positive", domain.ErrInvalidQuantity)
	}

	job, err := uc.jobRepo.GetByID(ctx, jobID)
	if err != nil {
		return nil, domain.NewPersistenceError("get job", err)
	}
	if err := ensureJobOpen(job); err != nil {
		return nil, err
	}

	if notes == "" {
		notes = "Used on " + job.Number
	}

	return uc.stock.RecordMovement(ctx, RecordMovementInput{
		PartID: partID,
		Delta:  -quantity,
		Reason: domain.ReasonJobUsage,
		Notes:  notes,
		JobID:  &job.ID,
		Precondition: func(txCtx context.Context, tx Transaction) error {
			locked, err := uc.jobRepo.GetByIDForUpdate(txCtx, tx, job.ID)
			if err != nil {
				return domain.NewPersistenceError("lock job", err)
			}
			return ensureJobOpen(locked)
		},
	})
}

func ensureJobOpen(job *domain.Job) error {
	if job.Status.IsTerminal() {
		return fmt.Errorf("%w: %s is %s", domain.ErrJobClosed, job.Number, job.Status)
	}
	return nil
}

// GetJob retrieves a job by ID.
func (uc *JobUseCase) GetJob(ctx context.Context, id string) (*domain.Job, error) {
	job, err := uc.jobRepo.GetByID(ctx, id)
	if err != nil {
		return nil, domain.NewPersistenceError("get job", err)
	}
	return job, nil
}

// ListJobs lists jobs, newest first.
func (uc *JobUseCase) ListJobs(ctx context.Context, filter domain.JobFilter) ([]*domain.Job, error) {
	filter.Limit, filter.Offset = domain.ClampPagination(filter.Limit, filter.Offset)
	jobs, err := uc.jobRepo.List(ctx, filter)
	if err != nil {
		return nil, domain.NewPersistenceError("list jobs", err)
	}
	return jobs, nil
}

// BoardColumn is one status column of the job board.
type BoardColumn struct {
	Status domain.JobStatus
	Jobs   []*domain.Job
}

// Board groups open jobs by status in board order. Every column is present,
// even when empty.
func (uc *JobUseCase) Board(ctx context.Context) ([]BoardColumn, error) {
	var open []*domain.Job
	for offset := 0; ; offset += domain.MaxPageSize {
		page, err := uc.jobRepo.List(ctx, domain.JobFilter{OpenOnly: true, Limit: domain.MaxPageSize, Offset: offset})
		if err != nil {
			return nil, domain.NewPersistenceError("list open jobs", err)
		}
		open = append(open, page...)
		if len(page) < domain.MaxPageSize {
			break
		}
	}

	byStatus := make(map[domain.JobStatus][]*domain.Job, len(domain.BoardColumns))
	for _, job := range open {
		byStatus[job.Status] = append(byStatus[job.Status], job)
	}

	board := make([]BoardColumn, 0, len(domain.BoardColumns))
	for _, status := range domain.BoardColumns {
		jobs := byStatus[status]
		if jobs == nil {
			jobs = []*domain.Job{}
		}
		board = append(board, BoardColumn{Status: status, Jobs: jobs})
	}

	return board, nil
}
