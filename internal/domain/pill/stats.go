// internal/domain/pill/stats.go
package pill

// AdherenceStats buckets historical dose outcomes for reporting. Rest
// days and days that have not yet come due are excluded from the total.
type AdherenceStats struct {
	OnTime         int
	Delayed        int
	MissedOrDouble int
	Total          int

	OnTimePercent         float64
	DelayedPercent        float64
	MissedOrDoublePercent float64
}

// ComputeAdherenceStats aggregates record outcomes across a set of
// cycles, normalizing today's statuses to their historical variants so
// that the current day is bucketed like any other.
func ComputeAdherenceStats(cycles []Cycle, delayThresholdMinutes int, now Clock) AdherenceStats {
	stats := AdherenceStats{}
	evalDate := now.Now()
	for _, c := range cycles {
		for _, rec := range c.Records {
			status := derivedStatusWithOverride(rec, delayThresholdMinutes, evalDate).HistoricalVariant()
			switch status {
			case StatusTaken:
				stats.OnTime++
			case StatusTakenDelayed, StatusTakenTooEarly:
				stats.Delayed++
			case StatusMissed, StatusTakenDouble:
				stats.MissedOrDouble++
			case StatusRest, StatusScheduled:
				continue
			default:
				continue
			}
			stats.Total++
		}
	}

	if stats.Total > 0 {
		stats.OnTimePercent = percent(stats.OnTime, stats.Total)
		stats.DelayedPercent = percent(stats.Delayed, stats.Total)
		stats.MissedOrDoublePercent = percent(stats.MissedOrDouble, stats.Total)
	}
	return stats
}

func percent(part, total int) float64 {
	return float64(part) / float64(total) * 100
}
