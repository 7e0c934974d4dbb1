package triage

import (
	"context"

	vo "triage/internal/domain/triage/valueobjects"
)

// Repositories read the partition bound in ctx. Lookups of missing rows
// return an errors.NotFound AppError.

type PatientRepository interface {
	GetByID(ctx context.Context, id int64) (*Patient, error)
}

type StaffRepository interface {
	GetByID(ctx context.Context, id int64) (*Staff, error)
}

type TicketRepository interface {
	// Save inserts a ticket without id (assigning it) or updates an existing one.
	Save(ctx context.Context, ticket *Ticket) error
	GetByID(ctx context.Context, id int64) (*Ticket, error)
	// FindActiveByPatient returns the patient's non-terminal tickets by ascending id.
	FindActiveByPatient(ctx context.Context, patientID int64) ([]*Ticket, error)
	// FindByNumberAndPatient returns nil, nil when nothing matches.
	FindByNumberAndPatient(ctx context.Context, number int, patientID int64) (*Ticket, error)
	CountActiveByPriority(ctx context.Context, priority vo.PriorityClass) (int64, error)
}

type StateHistoryRepository interface {
	// Append writes the record unless the same triple already exists.
	Append(ctx context.Context, record StateRecord) error
}

type ClockEntryRepository interface {
	Create(ctx context.Context, entry *ClockEntry) error
	Update(ctx context.Context, entry *ClockEntry) error
	// FindOpenByStaff returns the most recently opened entry without
	// clock-out, or nil, nil.
	FindOpenByStaff(ctx context.Context, staffID int64) (*ClockEntry, error)
	CountOnDuty(ctx context.Context) (int64, error)
}
