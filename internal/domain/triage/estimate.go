package triage

// AverageServiceMinutes is the assumed time one doctor spends per ticket.
const AverageServiceMinutes = 10

// EstimateWaitMinutes returns ceil(count*AverageServiceMinutes/onDuty), floored
// at zero, or nil when nobody is on duty. Aggregate and per-ticket estimates
// both go through this function.
func EstimateWaitMinutes(count, onDuty int64) *int64 {
	if onDuty <= 0 {
		return nil
	}
	if count < 0 {
		count = 0
	}
	total := count * AverageServiceMinutes
	minutes := (total + onDuty - 1) / onDuty
	return &minutes
}
