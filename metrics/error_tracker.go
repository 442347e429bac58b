package metrics

import (
	"fmt"
	"runtime"
)

// TrackPanic tracks panic occurrences
func TrackPanic(component string) {
	if m := GetMetrics(); m != nil {
		m.Error.PanicsTotal.WithLabelValues(component).Inc()
	}
}

// TrackError tracks errors by component and type
func TrackError(component, errorType string) {
	if m := GetMetrics(); m != nil {
		m.Error.ErrorsTotal.WithLabelValues(component, errorType).Inc()
	}
}

// SetComponentHealth sets the health status of a component
func SetComponentHealth(component string, healthy bool) {
	m := GetMetrics()
	if m == nil {
		return
	}
	var status float64
	if healthy {
		status = 1
	}
	m.Error.ComponentHealth.WithLabelValues(component).Set(status)
}

// RecoverFromPanic records a panic and re-panics with the caller's name.
// Must be deferred directly.
func RecoverFromPanic(component string) {
	if r := recover(); r != nil {
		pc, _, _, ok := runtime.Caller(1)
		functionName := "unknown"
		if ok {
			if fn := runtime.FuncForPC(pc); fn != nil {
				functionName = fn.Name()
			}
		}

		TrackPanic(component)
		TrackError(component, "panic")

		panic(fmt.Sprintf("recovered panic in %s.%s: %v", component, functionName, r))
	}
}
