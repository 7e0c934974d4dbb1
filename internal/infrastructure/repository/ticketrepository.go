package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"triage/internal/domain/triage"
	vo "triage/internal/domain/triage/valueobjects"
	"triage/internal/infrastructure/persistence/mappers"
	"triage/internal/infrastructure/persistence/models"
	db "triage/internal/shared/db"
	apperrors "triage/internal/shared/errors"
)

// ticketUpdateColumns are written on every update, zero values included.
var ticketUpdateColumns = []string{
	"nr_senha_atendimento",
	"cod_cadastro_sus_paciente",
	"cod_tipo_priorizacao",
	"cod_estado_senha",
}

type TicketRepository struct {
	db     *gorm.DB
	mapper mappers.TicketMapper
}

func NewTicketRepository(db *gorm.DB) *TicketRepository {
	return &TicketRepository{
		db:     db,
		mapper: mappers.NewTicketMapper(),
	}
}

func terminalStateCodes() []any {
	states := vo.TerminalStates()
	codes := make([]any, len(states))
	for i, s := range states {
		codes[i] = s.Code()
	}
	return codes
}

func (r *TicketRepository) Save(ctx context.Context, t *triage.Ticket) error {
	model := r.mapper.ToModel(t)
	tx := db.GetTxFromContext(ctx, r.db)

	if t.ID() == 0 {
		if err := tx.Create(model).Error; err != nil {
			return fmt.Errorf("failed to save ticket: %w", err)
		}
		t.SetID(model.ID)
		return nil
	}

	result := tx.Model(&models.TicketModel{}).
		Where("nr_seq_atendimento = ?", model.ID).
		Select(ticketUpdateColumns).
		Updates(model)
	if result.Error != nil {
		return fmt.Errorf("failed to update ticket %d: %w", model.ID, result.Error)
	}
	return nil
}

func (r *TicketRepository) GetByID(ctx context.Context, id int64) (*triage.Ticket, error) {
	var model models.TicketModel
	tx := db.GetTxFromContext(ctx, r.db)

	if err := tx.Where("nr_seq_atendimento = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFoundError("ticket not found", fmt.Sprintf("nrSeqAtendimento=%d", id))
		}
		return nil, fmt.Errorf("failed to find ticket: %w", err)
	}
	return r.mapper.ToDomain(&model)
}

func (r *TicketRepository) FindActiveByPatient(ctx context.Context, patientID int64) ([]*triage.Ticket, error) {
	var rows []models.TicketModel
	tx := db.GetTxFromContext(ctx, r.db)

	err := tx.Where("cod_cadastro_sus_paciente = ?", patientID).
		Scopes(db.NotIn("cod_estado_senha", terminalStateCodes()...)).
		Order("nr_seq_atendimento ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list active tickets: %w", err)
	}

	tickets := make([]*triage.Ticket, 0, len(rows))
	for i := range rows {
		t, err := r.mapper.ToDomain(&rows[i])
		if err != nil {
			return nil, err
		}
		tickets = append(tickets, t)
	}
	return tickets, nil
}

func (r *TicketRepository) FindByNumberAndPatient(ctx context.Context, number int, patientID int64) (*triage.Ticket, error) {
	var model models.TicketModel
	tx := db.GetTxFromContext(ctx, r.db)

	err := tx.Where("nr_senha_atendimento = ? AND cod_cadastro_sus_paciente = ?", number, patientID).
		Order("nr_seq_atendimento DESC").
		First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find ticket by number: %w", err)
	}
	return r.mapper.ToDomain(&model)
}

func (r *TicketRepository) CountActiveByPriority(ctx context.Context, priority vo.PriorityClass) (int64, error) {
	var count int64
	tx := db.GetTxFromContext(ctx, r.db)

	err := tx.Model(&models.TicketModel{}).
		Where("cod_tipo_priorizacao = ?", priority.Code()).
		Scopes(db.NotIn("cod_estado_senha", terminalStateCodes()...)).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count active tickets: %w", err)
	}
	return count, nil
}
