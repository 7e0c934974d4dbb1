package dto

import (
	"time"

	vo "triage/internal/domain/triage/valueobjects"
)

// ClassEstimate is the per-class entry of the cached aggregate.
type ClassEstimate struct {
	ActiveTickets int64  `json:"senhasAtivas"`
	Minutes       *int64 `json:"tempoEstimadoMin"`
}

// WaitTimeAggregate is the document cached under metrics:tempoAtendimentoMedio:<unit>.
// Emergency has no entry.
type WaitTimeAggregate struct {
	Unit                  string        `json:"unidadeAtendimento"`
	CalculatedAt          time.Time     `json:"calculadoEm"`
	OnDuty                int64         `json:"medicosEmAtendimento"`
	AverageServiceMinutes int           `json:"tempoMedioAtendimentoMin"`
	Normal                ClassEstimate `json:"normal"`
	Elderly               ClassEstimate `json:"idoso"`
	Pregnant              ClassEstimate `json:"gestante"`
}

// Set stores e under the entry of class. Emergency is ignored.
func (a *WaitTimeAggregate) Set(class vo.PriorityClass, e ClassEstimate) {
	switch class {
	case vo.PriorityNormal:
		a.Normal = e
	case vo.PriorityElderly:
		a.Elderly = e
	case vo.PriorityPregnant:
		a.Pregnant = e
	}
}

// QueueEstimate is a live estimate for one queue position.
type QueueEstimate struct {
	Minutes     *int64 `json:"tempoEstimadoMin"`
	PeopleAhead int64  `json:"pessoasNaFrente"`
	OnDuty      int64  `json:"medicosEmAtendimento"`
	TicketID    *int64 `json:"nrSeqAtendimento,omitempty"`
}

// CachedEstimate is the per-class figure read back from the cached aggregate.
type CachedEstimate struct {
	Minutes *int64 `json:"tempoEstimadoMin"`
}
