package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"triage/internal/domain/triage"
	"triage/internal/infrastructure/persistence/models"
	db "triage/internal/shared/db"
)

// stateTimePrecision is the finest precision every supported driver keeps,
// so a reprocessed record compares equal to the stored one.
const stateTimePrecision = time.Millisecond

type StateHistoryRepository struct {
	db *gorm.DB
}

func NewStateHistoryRepository(db *gorm.DB) *StateHistoryRepository {
	return &StateHistoryRepository{db: db}
}

func (r *StateHistoryRepository) Append(ctx context.Context, record triage.StateRecord) error {
	model := models.TicketStateModel{
		TicketID:  record.TicketID,
		StateCode: record.State.Code(),
		At:        record.At.UTC().Truncate(stateTimePrecision),
	}
	tx := db.GetTxFromContext(ctx, r.db)

	var count int64
	err := tx.Model(&models.TicketStateModel{}).
		Where("nr_seq_atendimento = ? AND cod_tipo_estado = ? AND timestamp_estado = ?", model.TicketID, model.StateCode, model.At).
		Count(&count).Error
	if err != nil {
		return fmt.Errorf("failed to check ticket state history: %w", err)
	}
	if count > 0 {
		return nil
	}

	if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&model).Error; err != nil {
		return fmt.Errorf("failed to append ticket state history: %w", err)
	}
	return nil
}
