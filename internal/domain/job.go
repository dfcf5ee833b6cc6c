package domain

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrJobNotFound       = errors.New("job not found")
	ErrJobClosed         = errors.New("job is closed")
	ErrInvalidTransition = errors.New("invalid job status transition")
)

// JobStatus is a column on the workshop board.
type JobStatus string

const (
	JobStatusReceived     JobStatus = "RECEIVED"
	JobStatusDiagnosis    JobStatus = "DIAGNOSIS"
	JobStatusWaitingParts JobStatus = "WAITING_PARTS"
	JobStatusInProgress   JobStatus = "IN_PROGRESS"
	JobStatusQualityCheck JobStatus = "QUALITY_CHECK"
	JobStatusReady        JobStatus = "READY"
	JobStatusDelivered    JobStatus = "DELIVERED"
	JobStatusCancelled    JobStatus = "CANCELLED"
)

// BoardColumns lists open statuses in board order.
var BoardColumns = []JobStatus{
	JobStatusReceived,
	JobStatusDiagnosis,
	JobStatusWaitingParts,
	JobStatusInProgress,
	JobStatusQualityCheck,
	JobStatusReady,
}

var jobTransitions = map[JobStatus][]JobStatus{
	JobStatusReceived:     {JobStatusDiagnosis},
	JobStatusDiagnosis:    {JobStatusWaitingParts, JobStatusInProgress},
	JobStatusWaitingParts: {JobStatusInProgress},
	JobStatusInProgress:   {JobStatusWaitingParts, JobStatusQualityCheck},
	JobStatusQualityCheck: {JobStatusInProgress, JobStatusReady},
	JobStatusReady:        {JobStatusDelivered},
}

// IsTerminal reports whether no further transitions are possible.
func (s JobStatus) IsTerminal() bool {
	return s == JobStatusDelivered || s == JobStatusCancelled
}

// IsValid reports whether s is a known status.
func (s JobStatus) IsValid() bool {
	if s == JobStatusDelivered || s == JobStatusCancelled {
		return true
	}
	_, ok := jobTransitions[s]
	return ok
}

// CanTransition reports whether from -> to is an allowed move.
func CanTransition(from, to JobStatus) bool {
	if from.IsTerminal() {
		return false
	}
	if to == JobStatusCancelled {
		return true
	}
	for _, next := range jobTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Job is a repair order tracked on the board.
type Job struct {
	ID          string
	Number      string
	CustomerID  string
	VehicleID   string
	Title       string
	Description string
	Status      JobStatus
	AssignedTo  string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	ClosedAt    *time.Time
}

// TransitionTo moves the job to status, stamping ClosedAt on terminal states.
func (j *Job) TransitionTo(status JobStatus, at time.Time) error {
	if !CanTransition(j.Status, status) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, j.Status, status)
	}
	j.Status = status
	j.UpdatedAt = at
	if status.IsTerminal() {
		closed := at
		j.ClosedAt = &closed
	}
	return nil
}

type JobFilter struct {
	Status     JobStatus
	CustomerID string
	OpenOnly   bool
	Limit      int
	Offset     int
}
