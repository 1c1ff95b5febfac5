package scene

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	siteGUID  = "1xS3BCk291UvhgP2dvNsgp"
	bldgGUID  = "2FCZDorxHDT9NI0MuBUbF9"
	wallGUID  = "3cUkl32yn9qRSPvBJVyWw5"
	otherGUID = "0K7w7JMOP1_eEs0ZMHO$dx"
)

func buildGraph(t *testing.T) (*Graph, *Node, *Node, *Node) {
	t.Helper()
	g := NewGraph(nil)
	site := NewProductNode(siteGUID, 10, "IfcSite")
	bldg := NewProductNode(bldgGUID, 20, "IfcBuilding")
	wall := NewProductNode(wallGUID, 30, "IfcWall")
	require.NoError(t, g.Attach(g.Root(), site))
	require.NoError(t, g.Attach(site, bldg))
	require.NoError(t, g.Attach(bldg, wall))
	require.NoError(t, g.Attach(wall, NewNode("mesh")))
	return g, site, bldg, wall
}

func TestFindSubgraphByIndex(t *testing.T) {
	g, site, _, wall := buildGraph(t)
	assert.Equal(t, 3, g.Len())

	n, ok := g.FindSubgraph(wallGUID)
	require.True(t, ok)
	assert.Same(t, wall, n)
	assert.Equal(t, wallGUID+"#30=IfcWall", n.Name)

	n, ok = g.FindSubgraph(siteGUID)
	require.True(t, ok)
	assert.Same(t, site, n)

	_, ok = g.FindSubgraph(otherGUID)
	assert.False(t, ok)
}

func TestFindSubgraphByNameFallback(t *testing.T) {
	g := NewGraph(nil)
	legacy := NewNode(otherGUID + "#7=IfcSlab")
	require.NoError(t, g.Attach(g.Root(), legacy))
	assert.Equal(t, 0, g.Len())

	n, ok := g.FindSubgraph(otherGUID)
	require.True(t, ok)
	assert.Same(t, legacy, n)
	assert.Equal(t, 1, g.Len())
}

func TestAttachBuildsIndexOnlyWhenReachable(t *testing.T) {
	g := NewGraph(nil)
	floating := NewProductNode(siteGUID, 1, "IfcSite")
	require.NoError(t, g.Attach(floating, NewProductNode(wallGUID, 2, "IfcWall")))
	assert.Equal(t, 0, g.Len())

	require.NoError(t, g.Attach(g.Root(), floating))
	assert.Equal(t, 2, g.Len())

	assert.Error(t, g.Attach(g.Root(), floating))
	assert.Error(t, g.Attach(floating.Child(0), floating))
}

func TestMaterialIdentity(t *testing.T) {
	g, _, _, wall := buildGraph(t)
	assert.Nil(t, g.Material(wall))

	a := NewMaterial("concrete", [4]float32{0.5, 0.5, 0.5, 1})
	b := NewMaterial("concrete", [4]float32{0.5, 0.5, 0.5, 1})
	g.SetMaterial(wall, a)
	assert.Same(t, a, g.Material(wall))
	assert.NotSame(t, b, g.Material(wall))

	g.SetMaterial(wall, nil)
	assert.Nil(t, wall.Material())
}

func TestDetachAndReattachChildren(t *testing.T) {
	g, site, bldg, wall := buildGraph(t)

	kids := g.DetachChildren(site)
	require.Equal(t, []*Node{bldg}, kids)
	assert.Equal(t, 0, site.NumChildren())
	assert.Nil(t, bldg.Parent())
	_, ok := g.FindSubgraph(wallGUID)
	assert.False(t, ok, "descendants of detached nodes leave the index")
	_, ok = g.FindSubgraph(siteGUID)
	assert.True(t, ok)

	require.NoError(t, g.AttachChildren(site, kids))
	assert.Same(t, site, bldg.Parent())
	n, ok := g.FindSubgraph(wallGUID)
	require.True(t, ok)
	assert.Same(t, wall, n)
	assert.Empty(t, g.DetachChildren(wall.Child(0)))
}

func TestCurveRepresentationSwitch(t *testing.T) {
	g, _, _, wall := buildGraph(t)
	curve := NewNode(CurveRepresentation)
	require.NoError(t, g.Attach(wall, curve))

	assert.Equal(t, []*Node{curve}, g.SetCurveRepresentation(false))
	assert.False(t, curve.Visible())
	assert.Empty(t, g.SetCurveRepresentation(false))
	assert.Equal(t, []*Node{curve}, g.SetCurveRepresentation(true))
	assert.True(t, curve.Visible())

	g.SetVisible([]*Node{curve}, false)
	assert.False(t, curve.Visible())
}

func TestReset(t *testing.T) {
	g, _, _, _ := buildGraph(t)
	old := g.Root()
	g.Reset()
	assert.NotSame(t, old, g.Root())
	assert.Equal(t, 0, g.Len())
	_, ok := g.FindSubgraph(siteGUID)
	assert.False(t, ok)
}
