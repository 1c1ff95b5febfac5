package viewer

import (
	"go.uber.org/zap"

	"github.com/ifcquery/ifcview/internal/model"
)

// Select highlights the entity with the given guid. Unknown identities and
// entities without geometry are ignored.
func (v *Viewer) Select(guid string) bool {
	e, ok := v.reg.ByGUID(guid)
	if !ok {
		v.log.Debug("select: unknown entity", zap.String("guid", guid))
		return false
	}
	return v.sel.Select(e, nil)
}

func (v *Viewer) Deselect(guid string) bool {
	return v.sel.DeselectGUID(guid)
}

func (v *Viewer) ClearSelection() int {
	return v.sel.Clear()
}

// Pick applies a click on the product with the given guid. A selected
// product is deselected. Otherwise the selection is replaced by it, or
// extended when additive (ctrl held). An empty guid is a click on nothing.
func (v *Viewer) Pick(guid string, additive bool) bool {
	if guid != "" && v.sel.IsSelected(guid) {
		return v.sel.DeselectGUID(guid)
	}
	if !additive {
		v.sel.Clear()
	}
	if guid == "" {
		return false
	}
	return v.Select(guid)
}

// Entity looks up a loaded entity.
func (v *Viewer) Entity(guid string) (*model.Entity, bool) {
	return v.reg.ByGUID(guid)
}
