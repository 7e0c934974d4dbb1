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

type PatientRepository struct {
	db *gorm.DB
}

func NewPatientRepository(db *gorm.DB) *PatientRepository {
	return &PatientRepository{db: db}
}

func (r *PatientRepository) GetByID(ctx context.Context, id int64) (*triage.Patient, error) {
	var model models.PatientModel
	tx := db.GetTxFromContext(ctx, r.db)

	if err := tx.Where("cod_cadastro_sus_paciente = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFoundError("patient not found", fmt.Sprintf("codCadastroSusPaciente=%d", id))
		}
		return nil, fmt.Errorf("failed to find patient: %w", err)
	}
	return mappers.PatientToDomain(&model), nil
}
