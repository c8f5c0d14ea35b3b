package types

// Action identifies why an image left the active collection.
type Action int

const (
	// ActionKeep advances past the image without touching disk
	ActionKeep Action = iota
	// ActionBad moves the image and all of its sidecars to the bad folder
	ActionBad
	// ActionRaw moves only the raw sidecars to the bad folder
	ActionRaw
)

func (a Action) String() string {
	switch a {
	case ActionKeep:
		return "keep"
	case ActionBad:
		return "bad"
	case ActionRaw:
		return "raw"
	default:
		return "unknown"
	}
}
