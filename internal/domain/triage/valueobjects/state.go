package valueobjects

import "fmt"

// TicketState codes as persisted in tipo_estado_senha.
type TicketState int

const (
	StateCreated              TicketState = 1
	StatePrioritizedPregnant  TicketState = 2
	StatePrioritizedElderly   TicketState = 3
	StatePrioritizedEmergency TicketState = 4
	StateFinished             TicketState = 6
	StateExpired              TicketState = 90
	StateCancelled            TicketState = 91
)

type stateInfo struct {
	name        string
	description string
	terminal    bool
}

var ticketStates = map[TicketState]stateInfo{
	StateCreated:              {"SENHA_CRIADA", "Senha normal criada", false},
	StatePrioritizedPregnant:  {"SENHA_PRIORIZADA_GESTANTE", "Senha priorizada para gestante", false},
	StatePrioritizedElderly:   {"SENHA_PRIORIZADA_IDOSO", "Senha priorizada para idoso", false},
	StatePrioritizedEmergency: {"SENHA_PRIORIZADA_EMERGENCIA", "Senha priorizada por emergência", false},
	StateFinished:             {"ATENDIMENTO_FINALIZADO", "Atendimento finalizado", true},
	StateExpired:              {"SENHA_EXPIRADA", "Senha expirada", true},
	StateCancelled:            {"SENHA_CANCELADA", "Senha cancelada", true},
}

func (s TicketState) IsValid() bool {
	_, ok := ticketStates[s]
	return ok
}

func (s TicketState) Code() int {
	return int(s)
}

func (s TicketState) IsTerminal() bool {
	return ticketStates[s].terminal
}

func (s TicketState) String() string {
	if info, ok := ticketStates[s]; ok {
		return info.name
	}
	return fmt.Sprintf("state(%d)", int(s))
}

func (s TicketState) Description() string {
	return ticketStates[s].description
}

func ParseTicketState(code int) (TicketState, error) {
	s := TicketState(code)
	if !s.IsValid() {
		return 0, fmt.Errorf("invalid ticket state code %d", code)
	}
	return s, nil
}

// InitialState is the state a freshly admitted ticket of class p starts in.
func InitialState(p PriorityClass) TicketState {
	switch p {
	case PriorityPregnant:
		return StatePrioritizedPregnant
	case PriorityElderly:
		return StatePrioritizedElderly
	case PriorityEmergency:
		return StatePrioritizedEmergency
	default:
		return StateCreated
	}
}

// TerminalStates lists every state from which a ticket never leaves.
func TerminalStates() []TicketState {
	return []TicketState{StateFinished, StateExpired, StateCancelled}
}

// AllStates returns every known state ordered by code.
func AllStates() []TicketState {
	return []TicketState{
		StateCreated,
		StatePrioritizedPregnant,
		StatePrioritizedElderly,
		StatePrioritizedEmergency,
		StateFinished,
		StateExpired,
		StateCancelled,
	}
}
