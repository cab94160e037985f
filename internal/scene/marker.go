package scene

import "github.com/OCAP2/fingerprint-editor/pkg/core"

// Kind distinguishes stored markers from the one being placed.
type Kind int

const (
	KindPermanent Kind = iota
	KindPending
)

func (k Kind) String() string {
	switch k {
	case KindPermanent:
		return "permanent"
	case KindPending:
		return "pending"
	default:
		return "unknown"
	}
}

// Marker is a named point annotation on a floor plan.
type Marker struct {
	Name     string
	Position core.Position2D
	Kind     Kind
	Color    Color
}
