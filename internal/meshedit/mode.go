package meshedit

import "fmt"

// Mode selects which kind of element picking and rendering operate on.
type Mode int

const (
	ModeNone   Mode = 0
	ModeVertex Mode = 1
	ModeEdge   Mode = 2
	ModeFace   Mode = 3
)

// String returns a human-readable mode name.
func (m Mode) String() string {
	switch m {
	case ModeNone:
		return "None"
	case ModeVertex:
		return "Vertex"
	case ModeEdge:
		return "Edge"
	case ModeFace:
		return "Face"
	default:
		return fmt.Sprintf("Unknown(%d)", int(m))
	}
}

// ParseMode converts a config or script name ("vertex", "edge", "face") to a Mode.
func ParseMode(name string) (Mode, error) {
	switch name {
	case "vertex", "Vertex":
		return ModeVertex, nil
	case "edge", "Edge":
		return ModeEdge, nil
	case "face", "Face":
		return ModeFace, nil
	case "none", "None", "":
		return ModeNone, nil
	default:
		return ModeNone, fmt.Errorf("unknown edit mode %q", name)
	}
}
