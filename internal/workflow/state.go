package workflow

import "fmt"

// State is a workflow state.
type State int

const (
	Idle State = iota
	Locating
	Downloading
	Success
	Error
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Locating:
		return "locating"
	case Downloading:
		return "downloading"
	case Success:
		return "success"
	case Error:
		return "error"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Terminal reports whether s ends a run.
func (s State) Terminal() bool {
	return s == Success || s == Error
}

// Variant distinguishes the per-item download from the direct download.
type Variant int

const (
	Standard Variant = iota
	Emergency
)

func (v Variant) String() string {
	if v == Emergency {
		return "emergency"
	}
	return "standard"
}

// Label is the audit action recorded for a capture on behalf of the item
// called name.
func (v Variant) Label(name string, cached bool) string {
	var label string
	switch v {
	case Emergency:
		label = "Emergency: " + name + " Direct Download"
	default:
		label = "Download: " + name
	}
	if cached {
		label += " (Cached)"
	}
	return label
}
