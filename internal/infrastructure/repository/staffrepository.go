package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"triage/internal/domain/triage"
	"triage/internal/infrastructure/persistence/mappers"
	"triage/internal/infrastructure/persistence/models"
	db "triage/internal/shared/db"
	apperrors "triage/internal/shared/errors"
)

type StaffRepository struct {
	db *gorm.DB
}

func NewStaffRepository(db *gorm.DB) *StaffRepository {
	return &StaffRepository{db: db}
}

// GetByID loads the staff member and, with a second lookup, their role.
func (r *StaffRepository) GetByID(ctx context.Context, id int64) (*triage.Staff, error) {
	var model models.StaffModel
	tx := db.GetTxFromContext(ctx, r.db)

	if err := tx.Where("cod_id_colaborador = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFoundError("staff member not found", fmt.Sprintf("codIdColaborador=%d", id))
		}
		return nil, fmt.Errorf("failed to find staff member: %w", err)
	}

	if model.RoleID == nil {
		return mappers.StaffToDomain(&model, nil), nil
	}

	var role models.RoleModel
	err := tx.Where("cod_id_funcao = ?", *model.RoleID).First(&role).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return mappers.StaffToDomain(&model, nil), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find staff role: %w", err)
	}
	return mappers.StaffToDomain(&model, &role), nil
}
