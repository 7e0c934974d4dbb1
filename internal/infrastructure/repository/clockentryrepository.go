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
)

const clockOutColumn = "horario_saida"

type ClockEntryRepository struct {
	db *gorm.DB
}

func NewClockEntryRepository(db *gorm.DB) *ClockEntryRepository {
	return &ClockEntryRepository{db: db}
}

func (r *ClockEntryRepository) Create(ctx context.Context, entry *triage.ClockEntry) error {
	tx := db.GetTxFromContext(ctx, r.db)
	if err := tx.Create(mappers.ClockEntryToModel(entry)).Error; err != nil {
		return fmt.Errorf("failed to create clock entry: %w", err)
	}
	return nil
}

func (r *ClockEntryRepository) Update(ctx context.Context, entry *triage.ClockEntry) error {
	tx := db.GetTxFromContext(ctx, r.db)
	err := tx.Model(&models.ClockEntryModel{}).
		Where("nr_seq_horario = ?", entry.ID()).
		Update(clockOutColumn, entry.ClockOut()).Error
	if err != nil {
		return fmt.Errorf("failed to update clock entry %d: %w", entry.ID(), err)
	}
	return nil
}

func (r *ClockEntryRepository) FindOpenByStaff(ctx context.Context, staffID int64) (*triage.ClockEntry, error) {
	var model models.ClockEntryModel
	tx := db.GetTxFromContext(ctx, r.db)

	err := tx.Where("cod_id_colaborador = ?", staffID).
		Scopes(db.IsNull(clockOutColumn)).
		Order("horario_entrada DESC").
		First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find open clock entry: %w", err)
	}
	return mappers.ClockEntryToDomain(&model), nil
}

func (r *ClockEntryRepository) CountOnDuty(ctx context.Context) (int64, error) {
	var count int64
	tx := db.GetTxFromContext(ctx, r.db)

	err := tx.Model(&models.ClockEntryModel{}).Scopes(db.IsNull(clockOutColumn)).Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count staff on duty: %w", err)
	}
	return count, nil
}
