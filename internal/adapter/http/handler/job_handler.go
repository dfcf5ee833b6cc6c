package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/gtservice/gtledger/internal/adapter/http/dto"
	"github.com/gtservice/gtledger/internal/domain"
	"github.com/gtservice/gtledger/internal/usecase"
)

// JobService defines the behavior needed by JobHandler.
type JobService interface {
	CreateJob(ctx context.Context, input usecase.CreateJobInput) (*domain.Job, error)
	TransitionJob(ctx context.Context, id string, status domain.JobStatus) (*domain.Job, error)
	ConsumePart(ctx context.Context, jobID, partID string, quantity int64, notes string) (*usecase.MovementResult, error)
	GetJob(ctx context.Context, id string) (*domain.Job, error)
	ListJobs(ctx context.Context, filter domain.JobFilter) ([]*domain.Job, error)
	Board(ctx context.Context) ([]usecase.BoardColumn, error)
}

// JobHandler handles the workshop job board.
type JobHandler struct {
	jobUC JobService
}

// NewJobHandler creates a new JobHandler.
func NewJobHandler(jobUC JobService) *JobHandler {
	return &JobHandler{jobUC: jobUC}
}

// Create opens a job.
func (h *JobHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateJobRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	job, err := h.jobUC.CreateJob(r.Context(), req.ToUseCaseInput())
	if err != nil {
		writeDomainError(w, "failed to create job", err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.JobFromDomain(job))
}

// Get retrieves a job by ID.
func (h *JobHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing job ID", "")
		return
	}

	job, err := h.jobUC.GetJob(r.Context(), id)
	if err != nil {
		writeDomainError(w, "failed to get job", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.JobFromDomain(job))
}

// List lists jobs. Accepts ?status=, ?customer_id= and ?open=true.
func (h *JobHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := pagination(r)
	query := r.URL.Query()

	jobs, err := h.jobUC.ListJobs(r.Context(), domain.JobFilter{
		Status:     domain.JobStatus(strings.ToUpper(query.Get("status"))),
		CustomerID: query.Get("customer_id"),
		OpenOnly:   query.Get("open") == "true",
		Limit:      limit,
		Offset:     offset,
	})
	if err != nil {
		writeDomainError(w, "failed to list jobs", err)
		return
	}

	writeJSON(w, http.StatusOK, listResponse(dto.JobsFromDomain(jobs), limit, offset))
}

// Board returns open jobs grouped by column.
func (h *JobHandler) Board(w http.ResponseWriter, r *http.Request) {
	board, err := h.jobUC.Board(r.Context())
	if err != nil {
		writeDomainError(w, "failed to load board", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.BoardFromUseCase(board))
}

// Transition moves a job to another column.
func (h *JobHandler) Transition(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing job ID", "")
		return
	}

	var req dto.TransitionJobRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	job, err := h.jobUC.TransitionJob(r.Context(), id, domain.JobStatus(strings.ToUpper(req.Status)))
	if err != nil {
		writeDomainError(w, "failed to move job", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.JobFromDomain(job))
}

// ConsumePart books parts used on a job.
func (h *JobHandler) ConsumePart(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing job ID", "")
		return
	}

	var req dto.ConsumePartRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.PartID == "" {
		writeError(w, http.StatusBadRequest, "missing part ID", "")
		return
	}

	result, err := h.jobUC.ConsumePart(r.Context(), id, req.PartID, req.Quantity, req.Notes)
	if err != nil {
		writeDomainError(w, "failed to consume part", err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.MovementResultFromUseCase(result))
}
