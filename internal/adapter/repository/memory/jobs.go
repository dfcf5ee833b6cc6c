package memory

import (
	"context"

	"github.com/gtservice/gtledger/internal/domain"
	"github.com/gtservice/gtledger/internal/usecase"
)

// JobRepository implements usecase.JobRepository.
type JobRepository struct {
	store *Store
}

// NewJobRepository creates a new JobRepository.
func NewJobRepository(store *Store) *JobRepository {
	return &JobRepository{store: store}
}

func (r *JobRepository) Create(_ context.Context, tx usecase.Transaction, job *domain.Job) error {
	return r.store.write(tx, func(s *state) error {
		for _, existing := range s.jobs {
			if existing.Number == job.Number {
				return domain.ErrDuplicateSequence
			}
		}
		s.jobs[job.ID] = *job
		return nil
	})
}

func (r *JobRepository) GetByID(_ context.Context, id string) (*domain.Job, error) {
	var job domain.Job
	err := r.store.read(func(s *state) error {
		j, ok := s.jobs[id]
		if !ok {
			return domain.ErrJobNotFound
		}
		job = j
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &job, nil
}

func (r *JobRepository) GetByIDForUpdate(_ context.Context, tx usecase.Transaction, id string) (*domain.Job, error) {
	var job domain.Job
	err := r.store.write(tx, func(s *state) error {
		j, ok := s.jobs[id]
		if !ok {
			return domain.ErrJobNotFound
		}
		job = j
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &job, nil
}

func (r *JobRepository) UpdateStatus(_ context.Context, tx usecase.Transaction, job *domain.Job) error {
	return r.store.write(tx, func(s *state) error {
		stored, ok := s.jobs[job.ID]
		if !ok {
			return domain.ErrJobNotFound
		}
		stored.Status = job.Status
		stored.UpdatedAt = job.UpdatedAt
		stored.ClosedAt = job.ClosedAt
		s.jobs[job.ID] = stored
		return nil
	})
}

// List returns jobs, newest number first.
func (r *JobRepository) List(_ context.Context, filter domain.JobFilter) ([]*domain.Job, error) {
	var jobs []*domain.Job
	_ = r.store.read(func(s *state) error {
		for _, j := range sortedValues(s.jobs, func(a, b *domain.Job) bool { return a.Number > b.Number }) {
			if filter.Status != "" && j.Status != filter.Status {
				continue
			}
			if filter.CustomerID != "" && j.CustomerID != filter.CustomerID {
				continue
			}
			if filter.OpenOnly && j.Status.IsTerminal() {
				continue
			}
			jobs = append(jobs, j)
		}
		return nil
	})
	return page(jobs, filter.Limit, filter.Offset), nil
}
