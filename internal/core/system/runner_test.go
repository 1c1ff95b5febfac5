package system

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type recordingSystem struct {
	phase Phase
	name  string
	log   *[]string
}

func (s *recordingSystem) Phase() Phase { return s.phase }
func (s *recordingSystem) Update(time.Duration) {
	*s.log = append(*s.log, s.name)
}

func TestRunnerOrdersByPhase(t *testing.T) {
	var log []string
	r := NewRunner()
	r.Register(&recordingSystem{PhaseCleanup, "cleanup", &log})
	r.Register(&recordingSystem{PhaseInput, "input", &log})
	r.Register(&recordingSystem{PhaseOutput, "output", &log})
	r.Register(&recordingSystem{PhaseInput, "reload", &log})

	r.Tick(time.Millisecond)
	assert.Equal(t, []string{"input", "reload", "output", "cleanup"}, log)

	log = nil
	r.TickPhase(PhaseInput, 0)
	assert.Equal(t, []string{"input", "reload"}, log)
}
