package monitoring

import "time"

// Health is the body of the health endpoint.
type Health struct {
	Status        string  `json:"status"`
	Uptime        string  `json:"uptime"`
	TotalRequests int64   `json:"total_requests"`
	TotalErrors   int64   `json:"total_errors"`
	AvgResponseMs float64 `json:"avg_response_ms"`
	FSOperations  int64   `json:"fs_operations"`
	FSFailures    int64   `json:"fs_failures"`
}

// Health summarizes the snapshot for the health endpoint.
func (m *Metrics) Health() Health {
	snap := m.Snapshot()

	var avg float64
	if snap.RequestCount > 0 {
		avg = snap.TotalDuration / float64(snap.RequestCount) * 1000
	}

	return Health{
		Status:        "healthy",
		Uptime:        m.UptimeSince().Truncate(time.Second).String(),
		TotalRequests: snap.TotalRequests,
		TotalErrors:   snap.TotalErrors,
		AvgResponseMs: avg,
		FSOperations:  snap.FSOperations,
		FSFailures:    snap.FSFailures,
	}
}
