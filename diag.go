package pulse

import (
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/forgelabs/pulse/internal/diag"
)

// Diagnostics receives scheduler lifecycle events: phase and system
// start/end, event emission, and background harvests. Implementations must
// be safe for concurrent use and must not block the caller for long — a
// slow Diagnostics implementation slows down every tick.
type Diagnostics = diag.Diagnostics

// NopDiagnostics discards every diagnostics call. It is the default when
// New is given a nil Diagnostics.
type NopDiagnostics = diag.Nop

// NewSlogDiagnostics logs every diagnostics call to logger via structured
// slog records. A nil logger falls back to slog.Default().
func NewSlogDiagnostics(logger *slog.Logger) Diagnostics {
	return diag.NewSlog(logger)
}

// NewPromDiagnostics records diagnostics as Prometheus metrics, registered
// against reg (pass prometheus.DefaultRegisterer for the global registry).
func NewPromDiagnostics(reg prometheus.Registerer) Diagnostics {
	return diag.NewProm(reg)
}
