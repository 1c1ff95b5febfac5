// Package data reads building-model files and the shared material table.
//
// A model file is YAML holding the already-tessellated product tree of an
// IFC model: one entry per product with its STEP tag, GlobalId, class and
// a description of its geometry.
package data

import (
	"encoding/hex"
	"fmt"
	"io"

	"golang.org/x/crypto/blake2b"
	"gopkg.in/yaml.v3"

	"github.com/ifcquery/ifcview/internal/ifcguid"
	"github.com/ifcquery/ifcview/internal/model"
	"github.com/ifcquery/ifcview/internal/scene"
)

// ModelFile is the parsed form of a model file.
type ModelFile struct {
	Name      string                `yaml:"name"`
	Schema    string                `yaml:"schema"`
	Materials map[string][4]float32 `yaml:"materials"`
	Entities  []EntityDef           `yaml:"entities"`

	Fingerprint string `yaml:"-"` // blake2b-256 of the raw file
}

// EntityDef is one product in a model file.
type EntityDef struct {
	Tag        int         `yaml:"tag"`
	GUID       string      `yaml:"guid"` // generated when empty
	Class      string      `yaml:"class"`
	Name       string      `yaml:"name"`
	Material   string      `yaml:"material"`
	Meshes     int         `yaml:"meshes"`
	Curves     bool        `yaml:"curves"`      // has a curve representation switch
	NoGeometry bool        `yaml:"no_geometry"` // entity without a scene node
	Children   []EntityDef `yaml:"children"`
}

// Stats summarises one Build.
type Stats struct {
	Entities int
	Nodes    int
	Curves   int
}

// ReadModel parses a model file and fingerprints its bytes.
func ReadModel(r io.Reader) (*ModelFile, error) {
	h, _ := blake2b.New256(nil)
	raw, err := io.ReadAll(io.TeeReader(r, h))
	if err != nil {
		return nil, fmt.Errorf("read model: %w", err)
	}
	var f ModelFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse model: %w", err)
	}
	f.Fingerprint = hex.EncodeToString(h.Sum(nil))
	return &f, nil
}

// builder carries per-build state so material pointers are shared by every
// node that names the same material.
type builder struct {
	reg    *model.Registry
	graph  *scene.Graph
	file   *ModelFile
	shared *MaterialTable
	mats   map[string]*scene.Material
	stats  Stats
}

// Build adds f's entities to reg and their geometry to graph. shared may
// be nil. On error the registry and graph hold a partial model; the caller
// clears both.
func Build(f *ModelFile, reg *model.Registry, graph *scene.Graph, shared *MaterialTable) (Stats, error) {
	b := &builder{
		reg:    reg,
		graph:  graph,
		file:   f,
		shared: shared,
		mats:   make(map[string]*scene.Material),
	}
	for i := range f.Entities {
		if err := b.add(&f.Entities[i], nil, graph.Root()); err != nil {
			return b.stats, err
		}
	}
	return b.stats, nil
}

func (b *builder) add(def *EntityDef, parent *model.Entity, parentNode *scene.Node) error {
	guid := def.GUID
	if guid == "" {
		guid = ifcguid.New()
	} else if !ifcguid.Valid(guid) {
		return fmt.Errorf("entity #%d: %w: %q", def.Tag, ifcguid.ErrInvalid, guid)
	}
	e := model.Entity{Tag: def.Tag, GUID: guid, Class: def.Class, Name: def.Name}
	if parent != nil {
		e.Parent = parent.ID
	}
	added, err := b.reg.Add(e)
	if err != nil {
		return fmt.Errorf("entity #%d: %w", def.Tag, err)
	}
	b.stats.Entities++

	node := parentNode
	if !def.NoGeometry {
		node = scene.NewProductNode(guid, def.Tag, def.Class)
		if def.Material != "" {
			m, err := b.material(def.Material)
			if err != nil {
				return fmt.Errorf("entity #%d: %w", def.Tag, err)
			}
			b.graph.SetMaterial(node, m)
		}
		for i := 0; i < def.Meshes; i++ {
			if err := b.attach(node, scene.NewNode(fmt.Sprintf("mesh %d", i))); err != nil {
				return err
			}
		}
		if def.Curves {
			sw := scene.NewNode(scene.CurveRepresentation)
			if err := b.attach(sw, scene.NewNode("curves")); err != nil {
				return err
			}
			if err := b.attach(node, sw); err != nil {
				return err
			}
			b.stats.Curves++
		}
		if err := b.attach(parentNode, node); err != nil {
			return err
		}
	}

	for i := range def.Children {
		if err := b.add(&def.Children[i], added, node); err != nil {
			return err
		}
	}
	return nil
}

func (b *builder) attach(parent, child *scene.Node) error {
	if err := b.graph.Attach(parent, child); err != nil {
		return err
	}
	b.stats.Nodes++
	return nil
}

func (b *builder) material(name string) (*scene.Material, error) {
	if m, ok := b.mats[name]; ok {
		return m, nil
	}
	var m *scene.Material
	if rgba, ok := b.file.Materials[name]; ok {
		m = scene.NewMaterial(name, rgba)
	} else if b.shared != nil {
		m = b.shared.Get(name)
	}
	if m == nil {
		return nil, fmt.Errorf("unknown material %q", name)
	}
	b.mats[name] = m
	return m, nil
}
