package impl

import (
	"sync"

	"placemap/internal/domain/entity"
	"placemap/internal/usecase"
)

type selectionChange struct {
	state entity.SelectionState
	draft *entity.SelectionDraft
}

type selectionController struct {
	mu    sync.Mutex
	state entity.SelectionState
	draft *entity.SelectionDraft

	subscribers listeners[selectionChange]
}

// NewSelectionController creates a selection workflow in the Idle state.
func NewSelectionController() usecase.SelectionController {
	return &selectionController{state: entity.SelectionIdle}
}

func (c *selectionController) State() entity.SelectionState {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.state
}

func (c *selectionController) Draft() (entity.SelectionDraft, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.draft == nil {
		return entity.SelectionDraft{}, false
	}

	return *c.draft, true
}

// ToggleArm arms or disarms point capture. An open draft must be submitted or
// cancelled first, so the toggle is ignored while Drafting.
func (c *selectionController) ToggleArm() entity.SelectionState {
	c.mu.Lock()
	switch c.state {
	case entity.SelectionIdle:
		c.state = entity.SelectionArmed
	case entity.SelectionArmed:
		c.state = entity.SelectionIdle
	default:
		state := c.state
		c.mu.Unlock()

		return state
	}
	change := c.changeLocked()
	c.mu.Unlock()

	c.subscribers.notify(change)

	return change.state
}

func (c *selectionController) MapClick(point entity.LatLng) bool {
	c.mu.Lock()
	if c.state != entity.SelectionArmed {
		c.mu.Unlock()

		return false
	}
	c.state = entity.SelectionDrafting
	c.draft = &entity.SelectionDraft{Point: point}
	change := c.changeLocked()
	c.mu.Unlock()

	c.subscribers.notify(change)

	return true
}

func (c *selectionController) Cancel() bool {
	return c.closeDraft()
}

func (c *selectionController) Complete() bool {
	return c.closeDraft()
}

func (c *selectionController) closeDraft() bool {
	c.mu.Lock()
	if c.state != entity.SelectionDrafting {
		c.mu.Unlock()

		return false
	}
	c.state = entity.SelectionIdle
	c.draft = nil
	change := c.changeLocked()
	c.mu.Unlock()

	c.subscribers.notify(change)

	return true
}

func (c *selectionController) Subscribe(fn func(entity.SelectionState, *entity.SelectionDraft)) func() {
	return c.subscribers.add(func(ch selectionChange) {
		fn(ch.state, ch.draft)
	})
}

func (c *selectionController) changeLocked() selectionChange {
	change := selectionChange{state: c.state}
	if c.draft != nil {
		d := *c.draft
		change.draft = &d
	}

	return change
}
