// Package events decodes inbound queue events into validated envelopes.
package events

import (
	"time"

	"github.com/google/uuid"
)

// EventType is the kind of an inbound event.
type EventType string

const (
	EventStaffClockIn      EventType = "MEDICO_ENTRA_NO_PONTO"
	EventStaffClockOut     EventType = "MEDICO_SAI_DO_PONTO"
	EventTicketIssued      EventType = "RETIRADA_DE_SENHA"
	EventTicketPrioritized EventType = "SENHA_PRIORIZADA"
	EventTicketFinished    EventType = "ATENDIMENTO_FINALIZADO"
	EventTicketExpired     EventType = "SENHA_EXPIRADA"
)

var knownEventTypes = map[EventType]bool{
	EventStaffClockIn:      true,
	EventStaffClockOut:     true,
	EventTicketIssued:      true,
	EventTicketPrioritized: true,
	EventTicketFinished:    true,
	EventTicketExpired:     true,
}

func (t EventType) IsValid() bool {
	return knownEventTypes[t]
}

func (t EventType) String() string {
	return string(t)
}

// ForcesMetricsRefresh reports kinds that change the on-duty count or free a
// doctor, so the aggregate is refreshed even when nothing was written.
func (t EventType) ForcesMetricsRefresh() bool {
	switch t {
	case EventStaffClockIn, EventStaffClockOut, EventTicketFinished:
		return true
	default:
		return false
	}
}

// Envelope is a decoded event. Payload holds one of ClockPayload,
// TicketIssuedPayload or TicketRefPayload depending on Type.
type Envelope struct {
	ID         uuid.UUID
	Type       EventType
	OccurredAt time.Time
	Payload    Payload
}

// Unit is the unit named by the payload, or "" when it carries none.
func (e *Envelope) Unit() string {
	if e.Payload == nil {
		return ""
	}
	return e.Payload.UnitName()
}

// EventTime is the payload timestamp, falling back to OccurredAt.
func (e *Envelope) EventTime() time.Time {
	if e.Payload != nil {
		if ts := e.Payload.EventTimestamp(); ts != nil {
			return *ts
		}
	}
	return e.OccurredAt
}

// Payload is implemented by every typed payload.
type Payload interface {
	UnitName() string
	EventTimestamp() *time.Time
}

// ClockPayload is carried by staff clock-in and clock-out events.
type ClockPayload struct {
	StaffID   int64
	Unit      string
	Timestamp *time.Time
}

func (p ClockPayload) UnitName() string           { return p.Unit }
func (p ClockPayload) EventTimestamp() *time.Time { return p.Timestamp }

// TicketIssuedPayload is carried by ticket issuance events.
type TicketIssuedPayload struct {
	Unit         string
	TicketNumber int64
	PatientID    int64
	Timestamp    *time.Time
}

func (p TicketIssuedPayload) UnitName() string           { return p.Unit }
func (p TicketIssuedPayload) EventTimestamp() *time.Time { return p.Timestamp }

// TicketRefPayload references an existing ticket by id.
type TicketRefPayload struct {
	Unit      string
	TicketID  int64
	Timestamp *time.Time
}

func (p TicketRefPayload) UnitName() string           { return p.Unit }
func (p TicketRefPayload) EventTimestamp() *time.Time { return p.Timestamp }
