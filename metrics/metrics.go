// Package metrics defines the instrumentation surface for verification
// operations, with Prometheus and noop implementations.
package metrics

import "time"

// Recorder receives verification event counts and operation latencies.
type Recorder interface {
	IncCounter(name string, labels map[string]string)
	ObserveLatency(name string, duration time.Duration, labels map[string]string)
}
