package system

import "time"

// Phase defines execution ordering within a single tick.
type Phase int

const (
	PhaseInput      Phase = iota // 0: drain control sessions and reload requests
	PhasePreUpdate               // 1: deliver last tick's events
	PhaseUpdate                  // 2: viewer logic
	PhasePostUpdate              // 3: gauges
	PhaseOutput                  // 4: flush session output
	PhasePersist                 // 5: journal flush
	PhaseCleanup                 // 6: destroy queued entities
)

// System is the interface every loop system implements.
type System interface {
	Phase() Phase
	Update(dt time.Duration)
}
