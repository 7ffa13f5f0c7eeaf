// Package session drives the multi-turn input-collection flow for one canvas:
// it tracks which photo/text slots still need values, folds inbound messages
// into the settings document, and decides when to preview, finalize, or stop.
package session

import (
	"errors"

	"canvasbot/internal/domain"
)

// Action is an event the state machine reacts to.
type Action string

const (
	ActionMessage Action = "message"
	ActionConfirm Action = "confirm"
	ActionCancel  Action = "cancel"
)

// ErrInvalidTransition is returned when an action is not legal from the
// session's current state, e.g. confirm while still collecting.
var ErrInvalidTransition = errors.New("session: invalid transition")

// transitions is the full table of legal actions per state. Confirm stays
// legal on a confirmed session so a repeated confirm re-renders idempotently
// instead of failing; everything else on a terminal state is rejected.
var transitions = map[domain.CanvasStatus]map[Action]struct{}{
	domain.CanvasCollecting: {
		ActionMessage: {},
		ActionCancel:  {},
	},
	domain.CanvasPreviewing: {
		ActionMessage: {},
		ActionConfirm: {},
		ActionCancel:  {},
	},
	domain.CanvasConfirmed: {
		ActionConfirm: {},
	},
	domain.CanvasCancelled: {},
}

// allowed reports whether action is legal from state.
func allowed(state domain.CanvasStatus, action Action) bool {
	actions, ok := transitions[state]
	if !ok {
		return false
	}
	_, ok = actions[action]
	return ok
}

// guard returns the error a caller should surface for an illegal action.
func guard(state domain.CanvasStatus, action Action) error {
	if allowed(state, action) {
		return nil
	}
	if state == domain.CanvasConfirmed || state == domain.CanvasCancelled {
		return domain.ErrSessionFinished
	}
	return ErrInvalidTransition
}
