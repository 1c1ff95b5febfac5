package selection

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ifcquery/ifcview/internal/core/ecs"
	"github.com/ifcquery/ifcview/internal/core/event"
	"github.com/ifcquery/ifcview/internal/ifcguid"
	"github.com/ifcquery/ifcview/internal/model"
	"github.com/ifcquery/ifcview/internal/scene"
)

type fixture struct {
	bus   *event.Bus
	reg   *model.Registry
	graph *scene.Graph
	sel   *Machine
	nodes map[string]*scene.Node
}

// newFixture builds site -> {building -> wall, terrain}, plus a door entity
// without geometry.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		bus:   event.NewBus(),
		reg:   model.NewRegistry(ecs.NewWorld()),
		graph: scene.NewGraph(nil),
		nodes: make(map[string]*scene.Node),
	}
	f.sel = New(f.graph, nil, f.bus, nil)

	add := func(name, class string, tag int, parent string) {
		var pid ecs.EntityID
		pnode := f.graph.Root()
		if parent != "" {
			p, ok := f.reg.ByGUID(f.nodes[parent].GUID)
			require.True(t, ok)
			pid = p.ID
			pnode = f.nodes[parent]
		}
		e, err := f.reg.Add(model.Entity{Tag: tag, GUID: ifcguid.New(), Class: class, Parent: pid})
		require.NoError(t, err)
		n := scene.NewProductNode(e.GUID, tag, class)
		require.NoError(t, f.graph.Attach(pnode, n))
		f.nodes[name] = n
	}
	add("site", "IfcSite", 1, "")
	add("building", "IfcBuilding", 2, "site")
	add("terrain", "IfcGeographicElement", 3, "site")
	add("wall", "IfcWall", 4, "building")
	_, err := f.reg.Add(model.Entity{Tag: 5, GUID: ifcguid.New(), Class: "IfcDoor"})
	require.NoError(t, err)
	return f
}

func (f *fixture) entity(t *testing.T, name string) *model.Entity {
	t.Helper()
	e, ok := f.reg.ByGUID(f.nodes[name].GUID)
	require.True(t, ok)
	return e
}

func (f *fixture) events() []any {
	var out []any
	event.Subscribe(f.bus, func(e event.EntitySelected) { out = append(out, e) })
	event.Subscribe(f.bus, func(e event.EntityUnselected) { out = append(out, e) })
	f.bus.SwapBuffers()
	f.bus.DispatchAll()
	return out
}

func TestSelectDeselectRestoresExactMaterial(t *testing.T) {
	f := newFixture(t)
	wall := f.entity(t, "wall")
	orig := scene.NewMaterial("brick", [4]float32{0.6, 0.3, 0.2, 1})
	f.graph.SetMaterial(f.nodes["wall"], orig)

	require.True(t, f.sel.Select(wall, nil))
	assert.Same(t, f.sel.Highlight(), f.nodes["wall"].Material())
	entry, ok := f.sel.Entry(wall.GUID)
	require.True(t, ok)
	prev, ok := entry.Previous(f.nodes["wall"])
	require.True(t, ok)
	assert.Same(t, orig, prev)

	require.True(t, f.sel.Deselect(wall))
	assert.Same(t, orig, f.nodes["wall"].Material())
	assert.False(t, f.sel.IsSelected(wall.GUID))
}

func TestDeselectRestoresMissingMaterial(t *testing.T) {
	f := newFixture(t)
	wall := f.entity(t, "wall")
	f.sel.Select(wall, nil)
	f.sel.Deselect(wall)
	assert.Nil(t, f.nodes["wall"].Material())
}

func TestSiteSkipsBuildingChildren(t *testing.T) {
	f := newFixture(t)
	site := f.entity(t, "site")

	require.True(t, f.sel.Select(site, nil))
	assert.Nil(t, f.nodes["building"].Material())
	assert.Nil(t, f.nodes["site"].Material())
	assert.Same(t, f.sel.Highlight(), f.nodes["terrain"].Material())

	entry, _ := f.sel.Entry(site.GUID)
	assert.Equal(t, []*scene.Node{f.nodes["terrain"]}, entry.Decorated())
	assert.Same(t, f.nodes["site"], entry.Node)
}

func TestSiteRuleUsesNameWhenClassMissing(t *testing.T) {
	f := newFixture(t)
	site := f.entity(t, "site")
	legacy := scene.NewNode(ifcguid.New() + "#9=IfcBuilding")
	require.NoError(t, f.graph.Attach(f.nodes["site"], legacy))

	f.sel.Select(site, nil)
	assert.Nil(t, legacy.Material())
}

func TestSelectMissesAreSilent(t *testing.T) {
	f := newFixture(t)
	door, ok := f.reg.ByTag(5)
	require.True(t, ok)

	assert.False(t, f.sel.Select(door, nil))
	assert.False(t, f.sel.Select(nil, nil))
	assert.False(t, f.sel.Deselect(door))
	assert.Equal(t, 0, f.sel.Len())
	assert.Empty(t, f.events())
}

func TestReselectIsNoop(t *testing.T) {
	f := newFixture(t)
	wall := f.entity(t, "wall")
	assert.True(t, f.sel.Select(wall, nil))
	assert.False(t, f.sel.Select(wall, nil))
	assert.Equal(t, 1, f.sel.Len())
	assert.Len(t, f.events(), 1)
}

func TestExplicitNode(t *testing.T) {
	f := newFixture(t)
	door, _ := f.reg.ByTag(5)
	n := scene.NewNode("door geometry")
	require.True(t, f.sel.Select(door, n))
	assert.Same(t, f.sel.Highlight(), n.Material())
}

func TestClearSelection(t *testing.T) {
	f := newFixture(t)
	orig := scene.NewMaterial("glass", [4]float32{0, 0, 1, 0.3})
	f.graph.SetMaterial(f.nodes["terrain"], orig)

	f.sel.Select(f.entity(t, "wall"), nil)
	f.sel.Select(f.entity(t, "site"), nil)
	f.sel.Select(f.entity(t, "building"), nil)
	require.Equal(t, 3, f.sel.Len())

	assert.Equal(t, 3, f.sel.Clear())
	assert.Equal(t, 0, f.sel.Len())
	assert.Empty(t, f.sel.Snapshot())
	for name, n := range f.nodes {
		if name == "terrain" {
			assert.Same(t, orig, n.Material())
			continue
		}
		assert.Nil(t, n.Material(), name)
		assert.False(t, f.sel.Highlighted(n), name)
	}

	evs := f.events()
	assert.Len(t, evs, 6)

	assert.Equal(t, 0, f.sel.Clear())
	assert.Empty(t, f.events())
}

func TestOverlappingDecorationsRestoreInAnyOrder(t *testing.T) {
	f := newFixture(t)
	orig := scene.NewMaterial("grass", [4]float32{0, 1, 0, 1})
	f.graph.SetMaterial(f.nodes["terrain"], orig)
	site := f.entity(t, "site")
	terrain := f.entity(t, "terrain")

	f.sel.Select(terrain, nil)
	f.sel.Select(site, nil)

	f.sel.Deselect(terrain)
	assert.Same(t, f.sel.Highlight(), f.nodes["terrain"].Material(), "still highlighted through the site")
	f.sel.Deselect(site)
	assert.Same(t, orig, f.nodes["terrain"].Material())
}

func TestSnapshotOrderAndEvents(t *testing.T) {
	f := newFixture(t)
	wall := f.entity(t, "wall")
	bldg := f.entity(t, "building")
	f.sel.Select(wall, nil)
	f.sel.Select(bldg, nil)

	snap := f.sel.Snapshot()
	require.Len(t, snap, 2)
	assert.Same(t, wall, snap[0].Entity)
	assert.Equal(t, []string{wall.GUID, bldg.GUID}, f.sel.GUIDs())

	f.sel.DeselectGUID(wall.GUID)
	assert.Len(t, snap, 2, "snapshot is detached from the live selection")

	evs := f.events()
	require.Len(t, evs, 3)
	assert.Equal(t, event.EntitySelected{EntityID: wall.ID, GUID: wall.GUID}, evs[0])
	assert.Equal(t, event.EntityUnselected{EntityID: wall.ID, GUID: wall.GUID}, evs[2])
}

func TestSetHighlightRepaints(t *testing.T) {
	f := newFixture(t)
	f.sel.Select(f.entity(t, "wall"), nil)
	h := scene.NewMaterial("red", [4]float32{1, 0, 0, 1})
	f.sel.SetHighlight(h)
	assert.Same(t, h, f.nodes["wall"].Material())
	f.sel.Clear()
	assert.Nil(t, f.nodes["wall"].Material())
}
