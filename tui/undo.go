// ABOUTME: Undo/redo stack manager for config parameter edits
// ABOUTME: Manages state history with maximum stack size limit

package tui

import "touch-composer/config"

// ConfigState captures a snapshot of the tunable config for undo/redo.
type ConfigState struct {
	Config    config.SearchConfig
	CursorPos int
}

// UndoManager manages undo/redo stacks with maximum size limit.
type UndoManager struct {
	undoStack []ConfigState
	redoStack []ConfigState
	maxSize   int
}

// NewUndoManager creates a new undo manager with the specified max stack size.
func NewUndoManager(maxSize int) *UndoManager {
	return &UndoManager{
		undoStack: []ConfigState{},
		redoStack: []ConfigState{},
		maxSize:   maxSize,
	}
}

// Push saves a new state to the undo stack.
// Clears the redo stack (you can't redo after a new edit).
func (um *UndoManager) Push(state ConfigState) {
	um.undoStack = append(um.undoStack, state)

	if len(um.undoStack) > um.maxSize {
		um.undoStack = um.undoStack[1:]
	}

	um.redoStack = []ConfigState{}
}

// Undo restores the previous state.
// Returns the state and true if undo was successful, or zero value and false if nothing to undo.
func (um *UndoManager) Undo(currentState ConfigState) (ConfigState, bool) {
	if len(um.undoStack) == 0 {
		return ConfigState{}, false
	}

	um.redoStack = append(um.redoStack, currentState)
	if len(um.redoStack) > um.maxSize {
		um.redoStack = um.redoStack[1:]
	}

	state := um.undoStack[len(um.undoStack)-1]
	um.undoStack = um.undoStack[:len(um.undoStack)-1]

	return state, true
}

// Redo restores the next state.
// Returns the state and true if redo was successful, or zero value and false if nothing to redo.
func (um *UndoManager) Redo(currentState ConfigState) (ConfigState, bool) {
	if len(um.redoStack) == 0 {
		return ConfigState{}, false
	}

	um.undoStack = append(um.undoStack, currentState)
	if len(um.undoStack) > um.maxSize {
		um.undoStack = um.undoStack[1:]
	}

	state := um.redoStack[len(um.redoStack)-1]
	um.redoStack = um.redoStack[:len(um.redoStack)-1]

	return state, true
}

// UndoSize returns the number of items in the undo stack.
func (um *UndoManager) UndoSize() int {
	return len(um.undoStack)
}

// RedoSize returns the number of items in the redo stack.
func (um *UndoManager) RedoSize() int {
	return len(um.redoStack)
}

// Clear clears both stacks.
func (um *UndoManager) Clear() {
	um.undoStack = []ConfigState{}
	um.redoStack = []ConfigState{}
}
