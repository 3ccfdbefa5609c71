package entity

import (
	"placemap/internal/errors"
)

// SelectionState is a state of the add-place selection workflow.
type SelectionState int

const (
	// SelectionIdle ignores map clicks.
	SelectionIdle SelectionState = iota
	// SelectionArmed turns the next map click into a draft.
	SelectionArmed
	// SelectionDrafting holds a captured point until submit or cancel.
	SelectionDrafting
)

// MarshalText encodes the state by name.
func (s SelectionState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes a state name produced by MarshalText.
func (s *SelectionState) UnmarshalText(text []byte) error {
	switch string(text) {
	case "idle":
		*s = SelectionIdle
	case "armed":
		*s = SelectionArmed
	case "drafting":
		*s = SelectionDrafting
	default:
		return errors.Errorf("unknown selection state %q", text)
	}

	return nil
}

func (s SelectionState) String() string {
	switch s {
	case SelectionIdle:
		return "idle"
	case SelectionArmed:
		return "armed"
	case SelectionDrafting:
		return "drafting"
	default:
		return "unknown"
	}
}

// SelectionDraft is the transient point captured for a place that is not yet persisted.
type SelectionDraft struct {
	Point LatLng `json:"point"`
}
