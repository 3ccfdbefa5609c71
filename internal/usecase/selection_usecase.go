package usecase

import "placemap/internal/domain/entity"

// SelectionController drives the "pick a point on the map to create a place" workflow.
type SelectionController interface {
	State() entity.SelectionState

	// Draft returns the captured draft while Drafting.
	Draft() (entity.SelectionDraft, bool)

	// ToggleArm switches between Idle and Armed. It is ignored while Drafting.
	ToggleArm() entity.SelectionState

	// MapClick captures point when Armed and reports whether a draft was opened.
	MapClick(point entity.LatLng) bool

	// Cancel discards the draft. Reports whether a draft was open.
	Cancel() bool

	// Complete closes the draft after the place has been persisted.
	Complete() bool

	Subscribe(fn func(state entity.SelectionState, draft *entity.SelectionDraft)) (unsubscribe func())
}
