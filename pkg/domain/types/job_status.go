package types

import "fmt"

// JobStatus represents the state of an ingestion job
type JobStatus string

const (
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"

	// JobStatusNotFound is only reported by status reads; a job is never stored with it
	JobStatusNotFound JobStatus = "not_found"
)

// IsValid checks if the job status is valid
func (s JobStatus) IsValid() bool {
	switch s {
	case JobStatusProcessing,
		JobStatusCompleted,
		JobStatusFailed,
		JobStatusNotFound:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether no further transition is allowed from s
func (s JobStatus) IsTerminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed
}

// CanTransitionTo reports whether moving from s to next goes forward.
// The only allowed transitions are processing -> completed and processing -> failed.
func (s JobStatus) CanTransitionTo(next JobStatus) bool {
	return s == JobStatusProcessing && next.IsTerminal()
}

// String returns the string representation of the job status
func (s JobStatus) String() string {
	return string(s)
}

// ParseJobStatus parses a string into a JobStatus
func ParseJobStatus(s string) (JobStatus, error) {
	status := JobStatus(s)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid job status: %s", s)
	}
	return status, nil
}
