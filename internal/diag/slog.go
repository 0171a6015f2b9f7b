package diag

import (
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// Slog logs every diagnostics call through a *slog.Logger. Every call made
// between one BeginTick and the next carries that tick's correlation id as
// a "tick_id" field.
type Slog struct {
	log    *slog.Logger
	tickId atomic.Pointer[string]
}

// NewSlog creates a Slog diagnostics handler. A nil logger falls back to
// slog.Default().
func NewSlog(log *slog.Logger) *Slog {
	if log == nil {
		log = slog.Default()
	}
	return &Slog{log: log}
}

func (s *Slog) BeginTick() string {
	id := uuid.NewString()
	s.tickId.Store(&id)
	s.log.Debug("tick started", "tick_id", id)
	return id
}

func (s *Slog) currentTickId() string {
	if p := s.tickId.Load(); p != nil {
		return *p
	}
	return ""
}

func (s *Slog) PhaseStart(phase Phase) {
	s.log.Debug("phase started", "tick_id", s.currentTickId(), "phase", phase)
}

func (s *Slog) PhaseEnd(phase Phase, duration time.Duration) {
	s.log.Debug("phase finished", "tick_id", s.currentTickId(), "phase", phase, "duration", duration)
}

func (s *Slog) SystemStart(name string, phase Phase) {
	s.log.Debug("system started", "tick_id", s.currentTickId(), "system", name, "phase", phase)
}

func (s *Slog) SystemEnd(name string, phase Phase, err error, duration time.Duration) {
	if err != nil {
		s.log.Error("system finished with error", "tick_id", s.currentTickId(), "system", name, "phase", phase, "duration", duration, "error", err)
		return
	}
	s.log.Debug("system finished", "tick_id", s.currentTickId(), "system", name, "phase", phase, "duration", duration)
}

func (s *Slog) EventEmit(name string, count int) {
	s.log.Debug("event emitted", "tick_id", s.currentTickId(), "event", name, "count", count)
}

func (s *Slog) BackgroundHarvest(name string, duration time.Duration) {
	s.log.Info("background system harvested", "tick_id", s.currentTickId(), "system", name, "duration", duration)
}

var _ Diagnostics = (*Slog)(nil)
