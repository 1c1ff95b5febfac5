package data

import (
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ifcquery/ifcview/internal/core/ecs"
	"github.com/ifcquery/ifcview/internal/ifcguid"
	"github.com/ifcquery/ifcview/internal/model"
	"github.com/ifcquery/ifcview/internal/scene"
)

func readHouse(t *testing.T) *ModelFile {
	t.Helper()
	f, err := os.Open("testdata/house.yaml")
	require.NoError(t, err)
	defer f.Close()
	mf, err := ReadModel(f)
	require.NoError(t, err)
	return mf
}

func TestReadModel(t *testing.T) {
	mf := readHouse(t)
	assert.Equal(t, "Small house", mf.Name)
	assert.Equal(t, "IFC4", mf.Schema)
	require.Len(t, mf.Entities, 1)
	assert.Len(t, mf.Fingerprint, 64)
	assert.Equal(t, mf.Fingerprint, readHouse(t).Fingerprint)
}

func TestBuildHouse(t *testing.T) {
	mats, err := LoadMaterialTable("testdata/materials.yaml")
	require.NoError(t, err)
	assert.Equal(t, 3, mats.Count())

	reg := model.NewRegistry(ecs.NewWorld())
	graph := scene.NewGraph(nil)
	stats, err := Build(readHouse(t), reg, graph, mats)
	require.NoError(t, err)

	assert.Equal(t, 9, stats.Entities)
	assert.Equal(t, 1, stats.Curves)
	assert.Equal(t, 9, reg.Len())
	assert.Equal(t, 7, graph.Len(), "project and space have no geometry")

	space, ok := reg.ByTag(43)
	require.True(t, ok)
	assert.True(t, ifcguid.Valid(space.GUID))
	assert.Equal(t, model.KindSpace, space.Kind)

	site, ok := reg.ByTag(10)
	require.True(t, ok)
	siteNode, ok := graph.FindSubgraph(site.GUID)
	require.True(t, ok)
	assert.Same(t, graph.Root(), siteNode.Parent(), "geometry-less project is skipped in the scene")

	wall, _ := reg.ByTag(40)
	slab, _ := reg.ByTag(41)
	door, _ := reg.ByTag(42)
	wallNode, _ := graph.FindSubgraph(wall.GUID)
	slabNode, _ := graph.FindSubgraph(slab.GUID)
	doorNode, _ := graph.FindSubgraph(door.GUID)
	assert.Equal(t, 4, wallNode.NumChildren())
	assert.Same(t, wallNode.Material(), slabNode.Material(), "one pointer per material name")
	assert.Same(t, mats.Get("oak"), doorNode.Material())
	assert.True(t, strings.HasPrefix(wallNode.Name, wall.GUID))

	storey, _ := reg.ByTag(30)
	assert.Len(t, reg.Children(storey.ID), 4)
}

func TestBuildErrors(t *testing.T) {
	cases := map[string]struct {
		yaml string
		want error
	}{
		"bad guid": {
			yaml: "entities:\n  - {tag: 1, guid: not-a-guid, class: IfcWall}\n",
			want: ifcguid.ErrInvalid,
		},
		"duplicate guid": {
			yaml: "entities:\n  - {tag: 1, guid: 1xS3BCk291UvhgP2dvNsgp, class: IfcWall}\n  - {tag: 2, guid: 1xS3BCk291UvhgP2dvNsgp, class: IfcWall}\n",
			want: model.ErrDuplicateGUID,
		},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			mf, err := ReadModel(strings.NewReader(tc.yaml))
			require.NoError(t, err)
			_, err = Build(mf, model.NewRegistry(ecs.NewWorld()), scene.NewGraph(nil), nil)
			assert.ErrorIs(t, err, tc.want)
		})
	}

	mf, err := ReadModel(strings.NewReader("entities:\n  - {tag: 1, class: IfcWall, material: unobtainium}\n"))
	require.NoError(t, err)
	_, err = Build(mf, model.NewRegistry(ecs.NewWorld()), scene.NewGraph(nil), nil)
	assert.ErrorContains(t, err, "unobtainium")

	_, err = ReadModel(strings.NewReader("entities: [[["))
	assert.Error(t, err)
}
