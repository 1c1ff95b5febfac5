package model

import "strings"

// Kind is the closed set of entity categories the viewer distinguishes.
// It is derived once from the IFC class name at load time.
type Kind uint8

const (
	KindUnknown Kind = iota
	KindProject
	KindSite
	KindBuilding
	KindStorey
	KindSpace
	KindElement
	KindOpening
	KindAnnotation
)

var kindNames = [...]string{
	KindUnknown:    "unknown",
	KindProject:    "project",
	KindSite:       "site",
	KindBuilding:   "building",
	KindStorey:     "storey",
	KindSpace:      "space",
	KindElement:    "element",
	KindOpening:    "opening",
	KindAnnotation: "annotation",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// classKinds maps lower-cased IFC class names with a dedicated kind.
// Facilities from IFC4x3 count as buildings.
var classKinds = map[string]Kind{
	"ifcproject":             KindProject,
	"ifcsite":                KindSite,
	"ifcbuilding":            KindBuilding,
	"ifcfacility":            KindBuilding,
	"ifcbridge":              KindBuilding,
	"ifcroad":                KindBuilding,
	"ifcrailway":             KindBuilding,
	"ifcmarinefacility":      KindBuilding,
	"ifcbuildingstorey":      KindStorey,
	"ifcfacilitypart":        KindStorey,
	"ifcspace":               KindSpace,
	"ifcopeningelement":      KindOpening,
	"ifcopeningstandardcase": KindOpening,
	"ifcvoidingfeature":      KindOpening,
	"ifcannotation":          KindAnnotation,
	"ifcgrid":                KindAnnotation,
	"ifcvirtualelement":      KindAnnotation,
}

// ParseKind classifies an IFC class name. Any other Ifc-prefixed class is
// treated as a physical element.
func ParseKind(class string) Kind {
	c := strings.ToLower(strings.TrimSpace(class))
	if k, ok := classKinds[c]; ok {
		return k
	}
	if strings.HasPrefix(c, "ifc") && len(c) > 3 {
		return KindElement
	}
	return KindUnknown
}

// IsSpatialContainer reports whether entities of this kind aggregate others
// in the spatial structure.
func (k Kind) IsSpatialContainer() bool {
	switch k {
	case KindProject, KindSite, KindBuilding, KindStorey, KindSpace:
		return true
	}
	return false
}

func (k Kind) IsSiteLike() bool     { return k == KindSite }
func (k Kind) IsBuildingLike() bool { return k == KindBuilding }
