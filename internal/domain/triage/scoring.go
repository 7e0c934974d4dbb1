package triage

import (
	vo "triage/internal/domain/triage/valueobjects"
)

const (
	// MaxTicketNumber is the upper bound of the cyclic ticket-number range.
	MaxTicketNumber = 999
	// ScoreBucket separates ranks; it must exceed MaxTicketNumber.
	ScoreBucket = 1_000_000
)

// NormalizeTicketNumber folds a raw ticket number into 1..MaxTicketNumber.
func NormalizeTicketNumber(n int64) int {
	if n <= 0 {
		return 1
	}
	return int((n-1)%MaxTicketNumber) + 1
}

// Rank returns the queue rank of p; lower ranks are served first.
func Rank(p vo.PriorityClass) int {
	return p.Rank()
}

// Score is the sorted-set score of a ticket admitted with class p and an
// already normalized ticket number. Lower scores are served sooner.
func Score(p vo.PriorityClass, normalizedNumber int) float64 {
	return float64(Rank(p)*ScoreBucket + normalizedNumber)
}
