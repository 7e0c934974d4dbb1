package triage

import (
	"fmt"
	"math"
	"time"
)

// ClockEntrySequence names the counter that numbers clock entries.
const ClockEntrySequence = "seq:ponto_medicos"

// ClockEntry is one on-duty interval of a staff member. An entry without a
// clock-out time means the staff member is on duty.
type ClockEntry struct {
	id       int64
	staffID  int64
	clockIn  time.Time
	clockOut *time.Time
}

// NewClockEntry opens an entry. id comes from the sequence generator since
// the store does not assign one.
func NewClockEntry(id, staffID int64, clockIn time.Time) (*ClockEntry, error) {
	if id <= 0 || id > math.MaxInt32 {
		return nil, fmt.Errorf("clock entry ID %d out of range", id)
	}
	if staffID <= 0 {
		return nil, fmt.Errorf("staff ID is required")
	}
	return &ClockEntry{id: id, staffID: staffID, clockIn: clockIn.UTC()}, nil
}

func ReconstructClockEntry(id, staffID int64, clockIn time.Time, clockOut *time.Time) *ClockEntry {
	return &ClockEntry{id: id, staffID: staffID, clockIn: clockIn, clockOut: clockOut}
}

func (c *ClockEntry) ID() int64 {
	return c.id
}

func (c *ClockEntry) StaffID() int64 {
	return c.staffID
}

func (c *ClockEntry) ClockIn() time.Time {
	return c.clockIn
}

func (c *ClockEntry) ClockOut() *time.Time {
	return c.clockOut
}

func (c *ClockEntry) IsOpen() bool {
	return c.clockOut == nil
}

// Close sets the clock-out time. A closed entry is never reopened.
func (c *ClockEntry) Close(at time.Time) error {
	if !c.IsOpen() {
		return fmt.Errorf("clock entry %d already closed", c.id)
	}
	out := at.UTC()
	c.clockOut = &out
	return nil
}
