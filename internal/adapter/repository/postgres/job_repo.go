package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/gtservice/gtledger/internal/domain"
	"github.com/gtservice/gtledger/internal/usecase"
)

const jobColumns = `id, number, customer_id, vehicle_id, title, description, status,
	assigned_to, created_at, updated_at, closed_at`

// JobRepository implements usecase.JobRepository.
type JobRepository struct {
	db DB
}

// NewJobRepository creates a new JobRepository.
func NewJobRepository(db DB) *JobRepository {
	return &JobRepository{db: db}
}

// Create inserts a job. An empty vehicle ID is stored as NULL.
func (r *JobRepository) Create(ctx context.Context, tx usecase.Transaction, job *domain.Job) error {
	pgTx, err := pgxTx(tx)
	if err != nil {
		return err
	}

	_, err = pgTx.Exec(ctx, `
		INSERT INTO jobs (`+jobColumns+`)
		VALUES ($1, $2, $3, NULLIF($4, ''), $5, $6, $7, $8, $9, $10, $11)`,
		job.ID, job.Number, job.CustomerID, job.VehicleID, job.Title, job.Description,
		string(job.Status), job.AssignedTo, job.CreatedAt, job.UpdatedAt, job.ClosedAt,
	)

	return translate(err, nil)
}

// GetByID retrieves a job by ID.
func (r *JobRepository) GetByID(ctx context.Context, id string) (*domain.Job, error) {
	job, err := scanJob(r.db.QueryRow(ctx, `SELECT `+jobColumns+` FROM jobs WHERE id = $1`, id))
	if err != nil {
		return nil, translate(err, domain.ErrJobNotFound)
	}

	return job, nil
}

// GetByIDForUpdate retrieves a job with a FOR UPDATE lock held until tx ends.
func (r *JobRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Job, error) {
	pgTx, err := pgxTx(tx)
	if err != nil {
		return nil, err
	}

	job, err := scanJob(pgTx.QueryRow(ctx, `SELECT `+jobColumns+` FROM jobs WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		return nil, translate(err, domain.ErrJobNotFound)
	}

	return job, nil
}

// UpdateStatus stores a job's status and close time.
func (r *JobRepository) UpdateStatus(ctx context.Context, tx usecase.Transaction, job *domain.Job) error {
	pgTx, err := pgxTx(tx)
	if err != nil {
		return err
	}

	tag, err := pgTx.Exec(ctx, `
		UPDATE jobs SET status = $2, updated_at = $3, closed_at = $4
		WHERE id = $1`,
		job.ID, string(job.Status), job.UpdatedAt, job.ClosedAt,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrJobNotFound
	}

	return nil
}

// List retrieves jobs, newest number first.
func (r *JobRepository) List(ctx context.Context, filter domain.JobFilter) ([]*domain.Job, error) {
	var (
		conditions []string
		args       []any
	)
	if filter.Status != "" {
		args = append(args, string(filter.Status))
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.CustomerID != "" {
		args = append(args, filter.CustomerID)
		conditions = append(conditions, fmt.Sprintf("customer_id = $%d", len(args)))
	}
	if filter.OpenOnly {
		args = append(args, string(domain.JobStatusDelivered), string(domain.JobStatusCancelled))
		conditions = append(conditions, fmt.Sprintf("status NOT IN ($%d, $%d)", len(args)-1, len(args)))
	}

	query := `SELECT ` + jobColumns + ` FROM jobs`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	args = append(args, filter.Limit, filter.Offset)
	query += fmt.Sprintf(" ORDER BY number DESC LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var jobs []*domain.Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}

	return jobs, rows.Err()
}

func scanJob(row pgx.Row) (*domain.Job, error) {
	var (
		job       domain.Job
		vehicleID *string
		status    string
	)
	err := row.Scan(&job.ID, &job.Number, &job.CustomerID, &vehicleID, &job.Title, &job.Description,
		&status, &job.AssignedTo, &job.CreatedAt, &job.UpdatedAt, &job.ClosedAt)
	if err != nil {
		return nil, err
	}
	if vehicleID != nil {
		job.VehicleID = *vehicleID
	}
	job.Status = domain.JobStatus(status)
	return &job, nil
}
