package system

import (
	"context"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	coresys "github.com/ifcquery/ifcview/internal/core/system"
	"github.com/ifcquery/ifcview/internal/scripting"
	"github.com/ifcquery/ifcview/internal/viewer"
)

const reloadTimeout = 30 * time.Second

// ModelPaths maps watched file paths back to model keys.
// *blob.Filesystem implements it.
type ModelPaths interface {
	Key(path string) (string, bool)
}

// ReloadSystem applies file changes reported by the watcher: script edits
// rebuild the Lua engine, edits to the loaded model reload it.
// Phase 0 (Input).
type ReloadSystem struct {
	changes <-chan string
	viewer  *viewer.Viewer
	engine  *scripting.Engine // nil when scripting is off
	models  ModelPaths        // nil when the source is not a filesystem
	log     *zap.Logger
}

func NewReloadSystem(changes <-chan string, v *viewer.Viewer, engine *scripting.Engine, models ModelPaths, log *zap.Logger) *ReloadSystem {
	return &ReloadSystem{changes: changes, viewer: v, engine: engine, models: models, log: log}
}

func (s *ReloadSystem) Phase() coresys.Phase { return coresys.PhaseInput }

func (s *ReloadSystem) Update(_ time.Duration) {
	var scripts, model bool
	for {
		select {
		case path := <-s.changes:
			switch {
			case s.isScript(path):
				scripts = true
			case s.isLoadedModel(path):
				model = true
			default:
				s.log.Debug("ignoring change", zap.String("path", path))
			}
		default:
			goto drained
		}
	}
drained:

	if scripts {
		if err := s.engine.Reload(); err != nil {
			s.log.Error("script reload failed, keeping previous scripts", zap.Error(err))
		} else {
			ApplyScripts(s.viewer, s.engine)
		}
	}
	if model {
		ctx, cancel := context.WithTimeout(context.Background(), reloadTimeout)
		defer cancel()
		if err := s.viewer.Reload(ctx); err != nil {
			s.log.Error("model reload failed", zap.Error(err))
		}
	}
}

func (s *ReloadSystem) isScript(path string) bool {
	if s.engine == nil || s.engine.Dir() == "" || filepath.Ext(path) != ".lua" {
		return false
	}
	rel, err := filepath.Rel(s.engine.Dir(), path)
	return err == nil && !strings.HasPrefix(rel, "..")
}

func (s *ReloadSystem) isLoadedModel(path string) bool {
	cur := s.viewer.Model()
	if s.models == nil || cur == nil {
		return false
	}
	key, ok := s.models.Key(path)
	return ok && key == cur.Key
}

// ApplyScripts installs the engine's key bindings and highlight colour.
func ApplyScripts(v *viewer.Viewer, e *scripting.Engine) {
	v.SetKeymap(e)
	if rgba, ok := e.HighlightColor(); ok {
		v.SetHighlightColor(rgba)
	}
}
