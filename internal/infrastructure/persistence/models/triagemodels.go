package models

import "time"

// Table and column names follow the network's existing per-unit schema.
// There are no foreign key constraints or associations; references are
// plain ids resolved by the repositories.

type PatientModel struct {
	ID                int64  `gorm:"column:cod_cadastro_sus_paciente;primaryKey;autoIncrement:false"`
	Name              string `gorm:"column:nome_paciente;size:150"`
	Age               *int   `gorm:"column:idade_paciente"`
	PregnantIndicator string `gorm:"column:indicador_gestante;size:1"`
}

func (PatientModel) TableName() string {
	return "cadastro_sus"
}

type RoleModel struct {
	ID   int    `gorm:"column:cod_id_funcao;primaryKey;autoIncrement:false"`
	Name string `gorm:"column:nome_funcao;size:80;not null"`
}

func (RoleModel) TableName() string {
	return "funcoes_colab_unidade"
}

type StaffModel struct {
	ID     int64  `gorm:"column:cod_id_colaborador;primaryKey;autoIncrement:false"`
	Name   string `gorm:"column:nome_colaborador;size:150"`
	RoleID *int   `gorm:"column:cod_id_funcao;index"`
}

func (StaffModel) TableName() string {
	return "colaboradores"
}

type ClockEntryModel struct {
	ID       int64      `gorm:"column:nr_seq_horario;primaryKey;autoIncrement:false"`
	StaffID  int64      `gorm:"column:cod_id_colaborador;not null;index"`
	ClockIn  time.Time  `gorm:"column:horario_entrada;not null"`
	ClockOut *time.Time `gorm:"column:horario_saida;index"`
}

func (ClockEntryModel) TableName() string {
	return "ponto_medicos"
}

type PriorityTypeModel struct {
	Code int    `gorm:"column:cod_tipo_priorizacao;primaryKey;autoIncrement:false"`
	Name string `gorm:"column:nome_priorizacao;size:50;not null"`
}

func (PriorityTypeModel) TableName() string {
	return "tipo_priorizacao"
}

type StateTypeModel struct {
	Code        int    `gorm:"column:cod_tipo_estado;primaryKey;autoIncrement:false"`
	Name        string `gorm:"column:nome_status;size:50;not null"`
	Description string `gorm:"column:descricao_status;size:200"`
}

func (StateTypeModel) TableName() string {
	return "tipo_estado_senha"
}

type TicketModel struct {
	ID           int64 `gorm:"column:nr_seq_atendimento;primaryKey;autoIncrement"`
	Number       int   `gorm:"column:nr_senha_atendimento;not null"`
	PatientID    int64 `gorm:"column:cod_cadastro_sus_paciente;not null;index"`
	PriorityCode int   `gorm:"column:cod_tipo_priorizacao;not null"`
	StateCode    int   `gorm:"column:cod_estado_senha;not null;index"`
}

func (TicketModel) TableName() string {
	return "atendimentos_unidade"
}

// TicketStateModel is the state history; the three columns form the key.
type TicketStateModel struct {
	TicketID  int64     `gorm:"column:nr_seq_atendimento;primaryKey;autoIncrement:false"`
	StateCode int       `gorm:"column:cod_tipo_estado;primaryKey;autoIncrement:false"`
	At        time.Time `gorm:"column:timestamp_estado;primaryKey"`
}

func (TicketStateModel) TableName() string {
	return "estado_atendimento"
}

// All lists every per-partition table in creation order.
func All() []any {
	return []any{
		&PriorityTypeModel{},
		&StateTypeModel{},
		&RoleModel{},
		&PatientModel{},
		&StaffModel{},
		&ClockEntryModel{},
		&TicketModel{},
		&TicketStateModel{},
	}
}
