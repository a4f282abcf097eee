package model

import "testing"

func TestStatus_IsActive(t *testing.T) {
	tests := []struct {
		status   Status
		expected bool
	}{
		{StatusPending, true},
		{StatusRunning, true},
		{StatusCompleted, false},
		{StatusFailed, false},
	}

	for _, test := range tests {
		result := test.status.IsActive()
		if result != test.expected {
			t.Errorf("Status(%s).IsActive() = %v, expected %v", test.status, result, test.expected)
		}
	}
}

func TestStatus_IsFinished(t *testing.T) {
	tests := []struct {
		status   Status
		expected bool
	}{
		{StatusPending, false},
		{StatusRunning, false},
		{StatusCompleted, true},
		{StatusFailed, true},
	}

	for _, test := range tests {
		result := test.status.IsFinished()
		if result != test.expected {
			t.Errorf("Status(%s).IsFinished() = %v, expected %v", test.status, result, test.expected)
		}
	}
}

func TestListState_IsBusy(t *testing.T) {
	busy := []ListState{ListLoading, ListFiltering, ListMutating}
	for _, s := range busy {
		if !s.IsBusy() {
			t.Errorf("ListState(%s).IsBusy() = false, expected true", s)
		}
	}
	for _, s := range []ListState{ListIdle, ListDisplaying} {
		if s.IsBusy() {
			t.Errorf("ListState(%s).IsBusy() = true, expected false", s)
		}
	}
}

func TestStatus_String(t *testing.T) {
	if StatusRunning.String() != "Running" {
		t.Errorf("Expected 'Running', got '%s'", StatusRunning.String())
	}
}
