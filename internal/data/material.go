package data

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/ifcquery/ifcview/internal/scene"
)

// MaterialEntry defines one named material of the shared library.
type MaterialEntry struct {
	Name  string     `yaml:"name"`
	Color [4]float32 `yaml:"color"`
	Note  string     `yaml:"note"`
}

// MaterialTable is the material library shared by every loaded model.
// Each name maps to one *scene.Material for the life of the process.
type MaterialTable struct {
	materials map[string]*scene.Material
}

// LoadMaterialTable loads materials.yaml.
func LoadMaterialTable(path string) (*MaterialTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read material table: %w", err)
	}
	var entries []MaterialEntry
	if err := yaml.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("parse material table: %w", err)
	}
	return NewMaterialTable(entries), nil
}

func NewMaterialTable(entries []MaterialEntry) *MaterialTable {
	t := &MaterialTable{
		materials: make(map[string]*scene.Material, len(entries)),
	}
	for _, e := range entries {
		t.materials[e.Name] = scene.NewMaterial(e.Name, e.Color)
	}
	return t
}

// Get returns the named material, or nil if none.
func (t *MaterialTable) Get(name string) *scene.Material {
	if t == nil {
		return nil
	}
	return t.materials[name]
}

// Count returns the number of materials loaded.
func (t *MaterialTable) Count() int {
	if t == nil {
		return 0
	}
	return len(t.materials)
}
