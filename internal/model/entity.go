package model

import "github.com/ifcquery/ifcview/internal/core/ecs"

// Entity is one semantic object of the loaded building model. The registry
// owns every Entity; other packages hold pointers only while the model that
// produced them is loaded.
type Entity struct {
	ID     ecs.EntityID
	Tag    int    // STEP instance number (#12)
	GUID   string // IFC GlobalId, 22 chars
	Class  string // IFC class name as written in the source
	Kind   Kind
	Name   string
	Parent ecs.EntityID // zero for roots
}
