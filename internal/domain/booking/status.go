package booking

import "github.com/BruksfildServices01/booking-api/internal/httperr"

// ===============================
// Booking Status
// ===============================

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
	StatusCompleted Status = "completed"
	StatusNoShow    Status = "no_show"
)

// transitions lists the legal next states. Terminal states have none.
var transitions = map[Status][]Status{
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusCancelled, StatusCompleted, StatusNoShow},
	StatusCancelled: nil,
	StatusCompleted: nil,
	StatusNoShow:    nil,
}

// ActiveStatuses are the statuses that occupy a provider's time.
var ActiveStatuses = []string{string(StatusPending), string(StatusConfirmed)}

func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if _, ok := transitions[st]; !ok {
		return "", httperr.ErrBusiness("invalid_status")
	}
	return st, nil
}

func (s Status) IsActive() bool {
	return s == StatusPending || s == StatusConfirmed
}

func (s Status) IsTerminal() bool {
	return len(transitions[s]) == 0
}

// ===============================
// Validations
// ===============================

// CanTransition accepts staying in the same state as a no-op.
func CanTransition(from, to Status) error {
	if from == to {
		return nil
	}
	for _, next := range transitions[from] {
		if next == to {
			return nil
		}
	}
	return httperr.ErrInvalidTransition("invalid_transition")
}

// InitialStatus depends on the service approval policy.
func InitialStatus(requiresApproval bool) Status {
	if requiresApproval {
		return StatusPending
	}
	return StatusConfirmed
}
