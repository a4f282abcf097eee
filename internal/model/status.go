package model

// Status represents the lifecycle of a dispatched call or a transfer task
type Status string

const (
	// StatusPending means the work is registered but its worker has not started
	StatusPending Status = "Pending"

	// StatusRunning means the worker is executing
	StatusRunning Status = "Running"

	// StatusCompleted means the work finished successfully
	StatusCompleted Status = "Completed"

	// StatusFailed means the work finished with an error
	StatusFailed Status = "Failed"
)

// String returns the string representation of Status
func (s Status) String() string {
	return string(s)
}

// IsActive returns true while a worker owns the work
func (s Status) IsActive() bool {
	return s == StatusPending || s == StatusRunning
}

// IsFinished returns true if the work reached a terminal state
func (s Status) IsFinished() bool {
	return s == StatusCompleted || s == StatusFailed
}

// ListState is the state of a paginated list controller
type ListState string

const (
	ListIdle       ListState = "Idle"
	ListLoading    ListState = "Loading"
	ListDisplaying ListState = "Displaying"
	ListFiltering  ListState = "Filtering"
	ListMutating   ListState = "Mutating"
)

// String returns the string representation of ListState
func (s ListState) String() string {
	return string(s)
}

// IsBusy returns true when the controller has an operation in flight
func (s ListState) IsBusy() bool {
	return s == ListLoading || s == ListFiltering || s == ListMutating
}
