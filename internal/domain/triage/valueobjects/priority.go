package valueobjects

import "fmt"

// PriorityClass is the triage category of a ticket. The numeric codes are the
// ones persisted in tipo_priorizacao and accepted by the read API.
type PriorityClass int

const (
	PriorityNormal    PriorityClass = 0
	PriorityElderly   PriorityClass = 1
	PriorityPregnant  PriorityClass = 2
	PriorityEmergency PriorityClass = 3
)

// ElderlyAge is the minimum patient age that yields PriorityElderly.
const ElderlyAge = 60

var priorityNames = map[PriorityClass]string{
	PriorityNormal:    "normal",
	PriorityElderly:   "idoso",
	PriorityPregnant:  "gestante",
	PriorityEmergency: "emergencia",
}

// queue rank: lower is served first
var priorityRanks = map[PriorityClass]int{
	PriorityEmergency: 0,
	PriorityPregnant:  1,
	PriorityElderly:   2,
	PriorityNormal:    3,
}

func (p PriorityClass) IsValid() bool {
	_, ok := priorityNames[p]
	return ok
}

func (p PriorityClass) Code() int {
	return int(p)
}

// Name is the lower-case key used in the cached aggregate document.
func (p PriorityClass) Name() string {
	if name, ok := priorityNames[p]; ok {
		return name
	}
	return fmt.Sprintf("priority(%d)", int(p))
}

func (p PriorityClass) String() string {
	return p.Name()
}

// Rank orders classes in the queue. Unknown classes rank with Normal.
func (p PriorityClass) Rank() int {
	if r, ok := priorityRanks[p]; ok {
		return r
	}
	return priorityRanks[PriorityNormal]
}

// ParsePriorityClass converts a persisted or query code.
func ParsePriorityClass(code int) (PriorityClass, error) {
	p := PriorityClass(code)
	if !p.IsValid() {
		return 0, fmt.Errorf("invalid priority class code %d", code)
	}
	return p, nil
}

// InferPriority derives the class of a new ticket from patient attributes.
// Pregnancy takes precedence over age.
func InferPriority(pregnant bool, age int) PriorityClass {
	switch {
	case pregnant:
		return PriorityPregnant
	case age >= ElderlyAge:
		return PriorityElderly
	default:
		return PriorityNormal
	}
}

// AggregateClasses are the classes reported in the cached wait-time aggregate.
// Emergency tickets are served immediately and carry no displayed estimate.
func AggregateClasses() []PriorityClass {
	return []PriorityClass{PriorityNormal, PriorityElderly, PriorityPregnant}
}
