package http

import (
	"github.com/GriffinCanCode/weaverest/internal/infrastructure/monitoring"
)

// HandlerMetrics wraps handlers with metrics tracking
type HandlerMetrics struct {
	metrics *monitoring.Metrics
}

// NewHandlerMetrics creates a metrics wrapper. A nil metrics disables
// recording.
func NewHandlerMetrics(metrics *monitoring.Metrics) *HandlerMetrics {
	return &HandlerMetrics{metrics: metrics}
}

// TrackOperation starts timing a filesystem operation. The returned func
// records the outcome: "ok" or the error kind.
func (hm *HandlerMetrics) TrackOperation(operation string) func(err error) {
	timer := monitoring.NewTimer(hm.metrics, operation)
	return func(err error) {
		outcome := monitoring.OutcomeOK
		if err != nil {
			outcome = MapError(err).Kind.String()
		}
		timer.Stop(outcome)
	}
}
