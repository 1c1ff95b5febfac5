package system

import (
	"time"

	"github.com/ifcquery/ifcview/internal/core/event"
	coresys "github.com/ifcquery/ifcview/internal/core/system"
	"github.com/ifcquery/ifcview/internal/metrics"
	"github.com/ifcquery/ifcview/internal/net"
	"github.com/ifcquery/ifcview/internal/viewer"
)

// MetricsSystem samples viewer state into gauges each tick and counts
// notifications as they are dispatched. Phase 3 (PostUpdate).
type MetricsSystem struct {
	viewer   *viewer.Viewer
	sessions *net.SessionStore
	m        *metrics.Metrics
}

func NewMetricsSystem(v *viewer.Viewer, sessions *net.SessionStore, m *metrics.Metrics) *MetricsSystem {
	s := &MetricsSystem{viewer: v, sessions: sessions, m: m}
	bus := v.Bus()
	event.Subscribe(bus, func(event.EntitySelected) { s.count("EntitySelected") })
	event.Subscribe(bus, func(event.EntityUnselected) { s.count("EntityUnselected") })
	event.Subscribe(bus, func(event.ModelCleared) { s.count("ModelCleared") })
	event.Subscribe(bus, func(event.ModelLoadingStarted) { s.count("ModelLoadingStarted") })
	event.Subscribe(bus, func(e event.ModelLoadingDone) {
		s.count("ModelLoadingDone")
		if e.Err == nil {
			m.LoadDuration.Observe(e.Elapsed.Seconds())
		}
	})
	event.Subscribe(bus, func(event.CommandFinished) { m.Commands.WithLabelValues("finished").Inc() })
	event.Subscribe(bus, func(event.CommandCancelled) { m.Commands.WithLabelValues("cancelled").Inc() })
	event.Subscribe(bus, func(event.CommandUndone) { m.Commands.WithLabelValues("undone").Inc() })
	event.Subscribe(bus, func(event.CommandRedone) { m.Commands.WithLabelValues("redone").Inc() })
	event.Subscribe(bus, func(event.HistoryCleared) { s.count("HistoryCleared") })
	return s
}

func (s *MetricsSystem) count(name string) {
	s.m.Events.WithLabelValues(name).Inc()
}

func (s *MetricsSystem) Phase() coresys.Phase { return coresys.PhasePostUpdate }

func (s *MetricsSystem) Update(_ time.Duration) {
	st := s.viewer.State()
	s.m.SelectionSize.Set(float64(len(st.Selected)))
	s.m.Undoable.Set(float64(st.Undoable))
	s.m.Redoable.Set(float64(st.Redoable))
	s.m.Entities.Set(float64(st.Entities))
	s.m.Nodes.Set(float64(s.viewer.Graph().Len()))
	if s.sessions != nil {
		s.m.Sessions.Set(float64(s.sessions.Count()))
	}
}

// TickTimer wraps a runner tick and records its duration.
func TickTimer(m *metrics.Metrics, tick func()) {
	start := time.Now()
	tick()
	m.TickDuration.Observe(time.Since(start).Seconds())
}
