package mappers

import (
	"fmt"
	"time"

	"triage/internal/domain/triage"
	vo "triage/internal/domain/triage/valueobjects"
	"triage/internal/infrastructure/persistence/models"
)

const pregnantIndicator = "S"

// TicketMapper converts tickets between the domain and persistence models.
type TicketMapper interface {
	ToModel(t *triage.Ticket) *models.TicketModel
	ToDomain(model *models.TicketModel) (*triage.Ticket, error)
}

type TicketMapperImpl struct{}

func NewTicketMapper() TicketMapper {
	return &TicketMapperImpl{}
}

func (m *TicketMapperImpl) ToModel(t *triage.Ticket) *models.TicketModel {
	return &models.TicketModel{
		ID:           t.ID(),
		Number:       t.Number(),
		PatientID:    t.PatientID(),
		PriorityCode: t.Priority().Code(),
		StateCode:    t.State().Code(),
	}
}

func (m *TicketMapperImpl) ToDomain(model *models.TicketModel) (*triage.Ticket, error) {
	priority, err := vo.ParsePriorityClass(model.PriorityCode)
	if err != nil {
		return nil, fmt.Errorf("ticket %d: %w", model.ID, err)
	}
	state, err := vo.ParseTicketState(model.StateCode)
	if err != nil {
		return nil, fmt.Errorf("ticket %d: %w", model.ID, err)
	}
	return triage.ReconstructTicket(model.ID, model.Number, model.PatientID, priority, state)
}

func PatientToDomain(model *models.PatientModel) *triage.Patient {
	age := 0
	if model.Age != nil {
		age = *model.Age
	}
	return triage.ReconstructPatient(model.ID, model.Name, age, model.PregnantIndicator == pregnantIndicator)
}

// StaffToDomain joins a staff row with its role row, which may be nil.
func StaffToDomain(model *models.StaffModel, role *models.RoleModel) *triage.Staff {
	var (
		roleID   int
		roleName string
	)
	if role != nil {
		roleID = role.ID
		roleName = role.Name
	}
	return triage.ReconstructStaff(model.ID, model.Name, roleID, roleName)
}

func ClockEntryToModel(e *triage.ClockEntry) *models.ClockEntryModel {
	return &models.ClockEntryModel{
		ID:       e.ID(),
		StaffID:  e.StaffID(),
		ClockIn:  e.ClockIn(),
		ClockOut: e.ClockOut(),
	}
}

func ClockEntryToDomain(model *models.ClockEntryModel) *triage.ClockEntry {
	var out *time.Time
	if model.ClockOut != nil {
		t := model.ClockOut.UTC()
		out = &t
	}
	return triage.ReconstructClockEntry(model.ID, model.StaffID, model.ClockIn.UTC(), out)
}
