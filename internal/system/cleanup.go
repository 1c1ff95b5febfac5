package system

import (
	"time"

	"go.uber.org/zap"

	"github.com/ifcquery/ifcview/internal/core/ecs"
	coresys "github.com/ifcquery/ifcview/internal/core/system"
)

// CleanupSystem frees the entities of an unloaded model at tick end.
// Phase 6 (Cleanup).
type CleanupSystem struct {
	world *ecs.World
	log   *zap.Logger
}

func NewCleanupSystem(world *ecs.World, log *zap.Logger) *CleanupSystem {
	return &CleanupSystem{world: world, log: log}
}

func (s *CleanupSystem) Phase() coresys.Phase { return coresys.PhaseCleanup }

func (s *CleanupSystem) Update(_ time.Duration) {
	if n := s.world.FlushDestroyQueue(); n > 0 {
		s.log.Debug("entities destroyed", zap.Int("count", n))
	}
}
