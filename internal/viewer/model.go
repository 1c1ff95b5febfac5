package viewer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/ifcquery/ifcview/internal/command"
	"github.com/ifcquery/ifcview/internal/core/event"
	"github.com/ifcquery/ifcview/internal/data"
)

var ErrNoModel = errors.New("no model loaded")

// loadModel is the command form of a model load. It keeps the default
// policy: stored but not undoable, so finishing it empties the history.
type loadModel struct {
	command.Base
	v    *Viewer
	ctx  context.Context
	key  string
	info *ModelInfo
}

func (c *loadModel) Name() string { return "LoadModel" }

func (c *loadModel) Execute() error {
	info, err := c.v.build(c.ctx, c.key)
	if err != nil {
		return err
	}
	c.info = info
	return nil
}

// LoadModel replaces the current model with the one stored under key.
// Selection and history are reset before the old model goes away, even
// when the new one fails to load.
func (v *Viewer) LoadModel(ctx context.Context, key string) error {
	start := time.Now()
	v.unload()
	event.Emit(v.bus, event.ModelLoadingStarted{Source: key})
	v.log.Info("loading model", zap.String("key", key))

	cmd := &loadModel{v: v, ctx: ctx, key: key}
	if err := v.cmds.Run(cmd); err != nil {
		v.reg.Clear()
		v.graph.Reset()
		event.Emit(v.bus, event.ModelLoadingDone{Source: key, Elapsed: time.Since(start), Err: err})
		return err
	}
	v.current = cmd.info
	v.log.Info("model loaded",
		zap.String("key", key),
		zap.String("name", cmd.info.Name),
		zap.Int("entities", cmd.info.Entities),
		zap.Int("nodes", cmd.info.Nodes),
	)
	event.Emit(v.bus, event.ModelLoadingDone{
		Source:      key,
		Fingerprint: cmd.info.Fingerprint,
		Entities:    cmd.info.Entities,
		Elapsed:     time.Since(start),
	})
	return nil
}

// Reload loads the current model's key again.
func (v *Viewer) Reload(ctx context.Context) error {
	if v.current == nil {
		return ErrNoModel
	}
	return v.LoadModel(ctx, v.current.Key)
}

// ClearModel drops the loaded model.
func (v *Viewer) ClearModel() {
	v.unload()
}

// unload resets selection and history, then the model, and announces it.
func (v *Viewer) unload() {
	v.cmds.CancelCurrent(nil)
	v.sel.Clear()
	v.cmds.ClearHistory()
	n := v.reg.Clear()
	v.graph.Reset()
	v.current = nil
	if n > 0 {
		v.log.Debug("model cleared", zap.Int("entities", n))
	}
	event.Emit(v.bus, event.ModelCleared{})
}

func (v *Viewer) build(ctx context.Context, key string) (*ModelInfo, error) {
	if v.src == nil {
		return nil, fmt.Errorf("load %s: no model source", key)
	}
	_, rc, err := v.src.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", key, err)
	}
	defer rc.Close()
	mf, err := data.ReadModel(rc)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", key, err)
	}
	stats, err := data.Build(mf, v.reg, v.graph, v.mats)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", key, err)
	}
	return &ModelInfo{
		Key:         key,
		Name:        mf.Name,
		Schema:      mf.Schema,
		Fingerprint: mf.Fingerprint,
		Entities:    stats.Entities,
		Nodes:       stats.Nodes,
		LoadedAt:    time.Now(),
	}, nil
}
