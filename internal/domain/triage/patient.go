package triage

import (
	vo "triage/internal/domain/triage/valueobjects"
)

// Patient is read-only for the consumer.
type Patient struct {
	id       int64
	name     string
	age      int
	pregnant bool
}

func ReconstructPatient(id int64, name string, age int, pregnant bool) *Patient {
	return &Patient{id: id, name: name, age: age, pregnant: pregnant}
}

func (p *Patient) ID() int64 {
	return p.id
}

func (p *Patient) Name() string {
	return p.name
}

func (p *Patient) Age() int {
	return p.age
}

func (p *Patient) IsPregnant() bool {
	return p.pregnant
}

func (p *Patient) InferPriority() vo.PriorityClass {
	return vo.InferPriority(p.pregnant, p.age)
}
