package evaluate

const (
	// IdleCPUThreshold is the average CPU percentage below which an instance is idle.
	IdleCPUThreshold = 5.0
	// ReservationUptimeDays is the uptime from which an instance should be reserved.
	ReservationUptimeDays = 30
	// BudgetUsageLimit is the share of the monthly budget, in percent, that must not be reached.
	BudgetUsageLimit = 80.0
)

// AverageDatapoints averages values; an empty series averages to zero.
func AverageDatapoints(values []float64) float64 {
	return SumDatapoints(values) / float64(max(1, len(values)))
}

func SumDatapoints(values []float64) float64 {
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum
}

func CPUActive(average float64) bool {
	return average >= IdleCPUThreshold
}

// BudgetUsagePercent returns spend as a percentage of limit; a non-positive limit
// counts as fully used whenever anything was spent.
func BudgetUsagePercent(limit, spend float64) float64 {
	if limit <= 0 {
		if spend > 0 {
			return 100
		}
		return 0
	}
	return spend / limit * 100
}
