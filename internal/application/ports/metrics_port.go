package ports

import (
	"context"
	"time"
)

// MetricsRecorder registra la duración y el resultado de una operación de negocio
// (checkout, return, transfer, archive, ...).
type MetricsRecorder interface {
	Observe(ctx context.Context, operation string, success bool, duration time.Duration)
}

// NopMetrics descarta las observaciones.
type NopMetrics struct{}

// Observe no hace nada.
func (NopMetrics) Observe(context.Context, string, bool, time.Duration) {}
