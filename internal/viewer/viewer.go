// Package viewer ties the loaded model, its scene, the selection and the
// command history together behind the operations a front-end invokes.
// A Viewer is owned by the loop goroutine; none of its methods lock.
package viewer

import (
	"time"

	"go.uber.org/zap"

	"github.com/ifcquery/ifcview/internal/blob"
	"github.com/ifcquery/ifcview/internal/command"
	"github.com/ifcquery/ifcview/internal/core/ecs"
	"github.com/ifcquery/ifcview/internal/core/event"
	"github.com/ifcquery/ifcview/internal/data"
	"github.com/ifcquery/ifcview/internal/model"
	"github.com/ifcquery/ifcview/internal/scene"
	"github.com/ifcquery/ifcview/internal/scripting"
	"github.com/ifcquery/ifcview/internal/selection"
)

// Keymap turns key presses into actions.
type Keymap interface {
	KeyAction(ev scripting.KeyEvent) scripting.Action
}

type defaultKeymap struct{}

func (defaultKeymap) KeyAction(ev scripting.KeyEvent) scripting.Action {
	return scripting.DefaultKeyAction(ev)
}

// Options tune a Viewer. Zero values are usable.
type Options struct {
	HistoryLimit int
	Highlight    *scene.Material
	Materials    *data.MaterialTable
	Keymap       Keymap
}

// ModelInfo describes the loaded model.
type ModelInfo struct {
	Key         string
	Name        string
	Schema      string
	Fingerprint string
	Entities    int
	Nodes       int
	LoadedAt    time.Time
}

type Viewer struct {
	bus   *event.Bus
	world *ecs.World
	reg   *model.Registry
	graph *scene.Graph
	sel   *selection.Machine
	cmds  *command.Manager
	src   blob.Source
	mats  *data.MaterialTable
	keys  Keymap
	log   *zap.Logger

	current *ModelInfo
}

func New(bus *event.Bus, world *ecs.World, src blob.Source, opts Options, log *zap.Logger) *Viewer {
	if log == nil {
		log = zap.NewNop()
	}
	if opts.Keymap == nil {
		opts.Keymap = defaultKeymap{}
	}
	graph := scene.NewGraph(log.Named("scene"))
	return &Viewer{
		bus:   bus,
		world: world,
		reg:   model.NewRegistry(world),
		graph: graph,
		sel:   selection.New(graph, opts.Highlight, bus, log.Named("selection")),
		cmds:  command.NewManager(opts.HistoryLimit, bus, log.Named("command")),
		src:   src,
		mats:  opts.Materials,
		keys:  opts.Keymap,
		log:   log,
	}
}

func (v *Viewer) Bus() *event.Bus               { return v.bus }
func (v *Viewer) World() *ecs.World             { return v.world }
func (v *Viewer) Registry() *model.Registry     { return v.reg }
func (v *Viewer) Graph() *scene.Graph           { return v.graph }
func (v *Viewer) Selection() *selection.Machine { return v.sel }
func (v *Viewer) Commands() *command.Manager    { return v.cmds }
func (v *Viewer) Source() blob.Source           { return v.src }

// Model returns the loaded model, nil when none is.
func (v *Viewer) Model() *ModelInfo { return v.current }

// SetKeymap replaces the key bindings.
func (v *Viewer) SetKeymap(k Keymap) {
	if k == nil {
		k = defaultKeymap{}
	}
	v.keys = k
}

// SetHighlightColor changes the selection highlight.
func (v *Viewer) SetHighlightColor(rgba [4]float32) {
	v.sel.SetHighlight(scene.NewMaterial("selected", rgba))
}
