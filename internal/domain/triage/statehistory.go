package triage

import (
	"time"

	vo "triage/internal/domain/triage/valueobjects"
)

// StateRecord is one row of a ticket's state history. The triple is its identity.
type StateRecord struct {
	TicketID int64
	State    vo.TicketState
	At       time.Time
}

func NewStateRecord(ticketID int64, state vo.TicketState, at time.Time) StateRecord {
	return StateRecord{TicketID: ticketID, State: state, At: at.UTC()}
}
