package triage

import (
	"errors"
	"fmt"

	vo "triage/internal/domain/triage/valueobjects"
)

// ErrTicketTerminal is returned when a transition targets a ticket that is
// already Finished, Expired or Cancelled.
var ErrTicketTerminal = errors.New("ticket is in a terminal state")

// Ticket is one admission attempt of a patient into a unit's queue.
type Ticket struct {
	id        int64
	number    int
	patientID int64
	priority  vo.PriorityClass
	state     vo.TicketState
}

// NewTicket admits a patient with the class inferred from their attributes.
// The ticket id is assigned by the store on first save.
func NewTicket(rawNumber int64, patient *Patient) (*Ticket, error) {
	if patient == nil {
		return nil, fmt.Errorf("patient is required")
	}
	priority := patient.InferPriority()
	return &Ticket{
		number:    NormalizeTicketNumber(rawNumber),
		patientID: patient.ID(),
		priority:  priority,
		state:     vo.InitialState(priority),
	}, nil
}

// NewCancelledTicket records a duplicate admission attempt. It is persisted
// for traceability and never enqueued.
func NewCancelledTicket(rawNumber int64, patient *Patient) (*Ticket, error) {
	t, err := NewTicket(rawNumber, patient)
	if err != nil {
		return nil, err
	}
	t.state = vo.StateCancelled
	return t, nil
}

func ReconstructTicket(id int64, number int, patientID int64, priority vo.PriorityClass, state vo.TicketState) (*Ticket, error) {
	if id <= 0 {
		return nil, fmt.Errorf("ticket ID must be positive")
	}
	if !priority.IsValid() {
		return nil, fmt.Errorf("invalid priority class %d", priority)
	}
	if !state.IsValid() {
		return nil, fmt.Errorf("invalid ticket state %d", state)
	}
	return &Ticket{
		id:        id,
		number:    number,
		patientID: patientID,
		priority:  priority,
		state:     state,
	}, nil
}

func (t *Ticket) ID() int64 {
	return t.id
}

func (t *Ticket) SetID(id int64) {
	t.id = id
}

func (t *Ticket) Number() int {
	return t.number
}

func (t *Ticket) PatientID() int64 {
	return t.patientID
}

func (t *Ticket) Priority() vo.PriorityClass {
	return t.priority
}

func (t *Ticket) State() vo.TicketState {
	return t.state
}

func (t *Ticket) IsActive() bool {
	return !t.state.IsTerminal()
}

// Score is the queue score derived from the ticket's class and number.
func (t *Ticket) Score() float64 {
	return Score(t.priority, t.number)
}

// Escalate forces an active ticket to Emergency.
func (t *Ticket) Escalate() error {
	if t.state.IsTerminal() {
		return fmt.Errorf("escalate ticket %d: %w", t.id, ErrTicketTerminal)
	}
	t.priority = vo.PriorityEmergency
	t.state = vo.StatePrioritizedEmergency
	return nil
}

// Cancel moves the ticket to Cancelled.
func (t *Ticket) Cancel() {
	t.state = vo.StateCancelled
}

// Close moves the ticket to a terminal state other than Cancelled.
func (t *Ticket) Close(state vo.TicketState) error {
	if state != vo.StateFinished && state != vo.StateExpired {
		return fmt.Errorf("cannot close ticket with state %s", state)
	}
	if t.state.IsTerminal() {
		return fmt.Errorf("close ticket %d: %w", t.id, ErrTicketTerminal)
	}
	t.state = state
	return nil
}
