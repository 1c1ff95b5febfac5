package viewer

// State is a snapshot of what a front-end shows besides the 3D view.
type State struct {
	ModelKey  string
	ModelName string
	Entities  int
	Selected  []string
	Undoable  int
	Redoable  int
	Current   string
}

func (v *Viewer) State() State {
	s := State{
		Entities: v.reg.Len(),
		Selected: v.sel.GUIDs(),
		Undoable: v.cmds.CountUndoable(),
		Redoable: v.cmds.CountRedoable(),
	}
	if v.current != nil {
		s.ModelKey = v.current.Key
		s.ModelName = v.current.Name
	}
	if c := v.cmds.Current(); c != nil {
		s.Current = c.Name()
	}
	return s
}
