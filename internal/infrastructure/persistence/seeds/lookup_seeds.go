package seeds

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"triage/internal/domain/triage"
	vo "triage/internal/domain/triage/valueobjects"
	"triage/internal/infrastructure/persistence/models"
)

var priorityTypeNames = map[vo.PriorityClass]string{
	vo.PriorityNormal:    "NORMAL",
	vo.PriorityElderly:   "IDOSO",
	vo.PriorityPregnant:  "GESTANTE",
	vo.PriorityEmergency: "EMERGENCIA",
}

// DoctorRoleID is the role code seeded for doctors.
const DoctorRoleID = 1

// SeedLookupTables inserts the priority, state and role reference rows.
// Existing rows are left untouched.
func SeedLookupTables(db *gorm.DB) error {
	priorities := make([]models.PriorityTypeModel, 0, len(priorityTypeNames))
	for _, p := range []vo.PriorityClass{vo.PriorityNormal, vo.PriorityElderly, vo.PriorityPregnant, vo.PriorityEmergency} {
		priorities = append(priorities, models.PriorityTypeModel{Code: p.Code(), Name: priorityTypeNames[p]})
	}

	states := make([]models.StateTypeModel, 0, len(vo.AllStates()))
	for _, s := range vo.AllStates() {
		states = append(states, models.StateTypeModel{Code: s.Code(), Name: s.String(), Description: s.Description()})
	}

	roles := []models.RoleModel{
		{ID: DoctorRoleID, Name: triage.DoctorRole},
		{ID: 2, Name: "ENFERMEIRO"},
		{ID: 3, Name: "RECEPCIONISTA"},
	}

	return db.Transaction(func(tx *gorm.DB) error {
		ignore := tx.Clauses(clause.OnConflict{DoNothing: true})
		if err := ignore.Create(&priorities).Error; err != nil {
			return err
		}
		if err := ignore.Create(&states).Error; err != nil {
			return err
		}
		return ignore.Create(&roles).Error
	})
}
