package booking

import "fmt"

// Status represents the approval state of a booking.
type Status string

const (
	// StatusWaiting is the initial state of every booking, pending the
	// item owner's decision.
	StatusWaiting Status = "waiting"
	// StatusApproved means the item owner accepted the booking.
	StatusApproved Status = "approved"
	// StatusRejected means the item owner declined the booking.
	StatusRejected Status = "rejected"
	// StatusCancelled is a terminal state with no transition into it
	// defined by this service; it exists for records written by other
	// parts of the platform.
	StatusCancelled Status = "cancelled"
)

// validTransitions defines the state machine for booking status changes.
var validTransitions = map[Status][]Status{
	StatusWaiting:   {StatusApproved, StatusRejected},
	StatusApproved:  {},
	StatusRejected:  {},
	StatusCancelled: {},
}

// IsValid returns true if the status is a recognized booking status.
func (s Status) IsValid() bool {
	_, exists := validTransitions[s]
	return exists
}

// CanTransitionTo returns true if a transition from this status to the target is allowed.
func (s Status) CanTransitionTo(target Status) bool {
	allowed, exists := validTransitions[s]
	if !exists {
		return false
	}
	for _, t := range allowed {
		if t == target {
			return true
		}
	}
	return false
}

// IsTerminal returns true if no further transitions are possible from this status.
func (s Status) IsTerminal() bool {
	allowed, exists := validTransitions[s]
	if !exists {
		return true
	}
	return len(allowed) == 0
}

// String returns the string representation of the status.
func (s Status) String() string {
	return string(s)
}

// ParseStatus converts a string to a Status, returning an error if invalid.
func ParseStatus(s string) (Status, error) {
	status := Status(s)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid booking status: %s", s)
	}
	return status, nil
}
