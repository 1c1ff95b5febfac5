package system

import (
	"time"

	"go.uber.org/zap"

	coresys "github.com/ifcquery/ifcview/internal/core/system"
	"github.com/ifcquery/ifcview/internal/metrics"
	"github.com/ifcquery/ifcview/internal/net"
	"github.com/ifcquery/ifcview/internal/net/packet"
)

// SessionSource delivers accepted and dead sessions. *net.Server implements it.
type SessionSource interface {
	NewSessions() <-chan *net.Session
	DeadSessions() <-chan uint64
	NotifyDead(sessionID uint64)
}

// InputSystem drains packet queues from all sessions and dispatches them
// through the packet registry. Phase 0 (Input).
type InputSystem struct {
	source     SessionSource
	registry   *packet.Registry
	store      *net.SessionStore
	maxPerTick int
	metrics    *metrics.Metrics
	log        *zap.Logger
}

func NewInputSystem(
	source SessionSource,
	registry *packet.Registry,
	store *net.SessionStore,
	maxPerTick int,
	m *metrics.Metrics,
	log *zap.Logger,
) *InputSystem {
	if maxPerTick <= 0 {
		maxPerTick = 32
	}
	return &InputSystem{
		source:     source,
		registry:   registry,
		store:      store,
		maxPerTick: maxPerTick,
		metrics:    m,
		log:        log,
	}
}

func (s *InputSystem) Phase() coresys.Phase { return coresys.PhaseInput }

func (s *InputSystem) Update(_ time.Duration) {
	// Accept new sessions
	for {
		select {
		case sess := <-s.source.NewSessions():
			s.store.Add(sess)
		default:
			goto doneNew
		}
	}
doneNew:

	// Process dead sessions
	for {
		select {
		case id := <-s.source.DeadSessions():
			s.store.Remove(id)
		default:
			goto doneDead
		}
	}
doneDead:

	for id, sess := range s.store.Raw() {
		if sess.IsClosed() {
			s.log.Info("control client disconnected",
				zap.Uint64("session", id),
				zap.String("client", sess.ClientName),
			)
			s.source.NotifyDead(id)
			s.store.Remove(id)
			continue
		}

		for i := 0; i < s.maxPerTick; i++ {
			select {
			case data := <-sess.InQueue:
				s.dispatch(sess, data)
			default:
				goto nextSession
			}
		}
	nextSession:
	}
}

func (s *InputSystem) dispatch(sess *net.Session, data []byte) {
	err := s.registry.Dispatch(sess, sess.State(), data)
	if err != nil {
		s.log.Debug("packet dispatch error",
			zap.Uint64("session", sess.ID),
			zap.Error(err),
		)
	}
	if s.metrics == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	s.metrics.Packets.WithLabelValues(result).Inc()
}
