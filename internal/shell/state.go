// Package shell implements the interactive form that chooses a root, offers the
// discovered extensions as a checklist, and runs the combine.
package shell

import (
	"sort"

	"github.com/temirov/combiner/internal/combine"
)

// Phase names the form's position in its state machine.
type Phase string

const (
	// PhaseIdle means no root directory has been chosen.
	PhaseIdle Phase = "idle"
	// PhaseRootSelected means a root is chosen and its extensions are offered.
	PhaseRootSelected Phase = "root_selected"
)

// SelectionState is the user's current choice of root and extensions.
// Transitions return a new value and never mutate the receiver.
type SelectionState struct {
	Root       string
	Extensions []string
	Included   map[string]bool
}

// Phase reports the state machine position implied by the selection.
func (state SelectionState) Phase() Phase {
	if state.Root == "" {
		return PhaseIdle
	}
	return PhaseRootSelected
}

// IsIncluded reports whether extension is checked.
func (state SelectionState) IsIncluded(extension string) bool {
	return state.Included[extension]
}

// SelectRoot chooses a root and resets the checklist to its extensions, all checked.
func SelectRoot(state SelectionState, root string, extensions []string) SelectionState {
	included := make(map[string]bool, len(extensions))
	for _, extension := range extensions {
		included[extension] = true
	}
	return SelectionState{
		Root:       root,
		Extensions: append([]string(nil), extensions...),
		Included:   included,
	}
}

// ToggleExtension flips the include flag of one extension. Unknown extensions
// leave the state unchanged.
func ToggleExtension(state SelectionState, extension string) SelectionState {
	if _, known := state.Included[extension]; !known {
		return state
	}
	next := state.clone()
	next.Included[extension] = !state.Included[extension]
	return next
}

// SetAllExtensions checks or unchecks every extension.
func SetAllExtensions(state SelectionState, included bool) SelectionState {
	next := state.clone()
	for _, extension := range next.Extensions {
		next.Included[extension] = included
	}
	return next
}

// ValidateConfirmation returns the checked extensions sorted ascending, or the
// reason the selection cannot be combined yet.
func ValidateConfirmation(state SelectionState) ([]string, error) {
	if state.Root == "" {
		return nil, combine.ErrRootNotSelected
	}
	var selected []string
	for _, extension := range state.Extensions {
		if state.Included[extension] {
			selected = append(selected, extension)
		}
	}
	if len(selected) == 0 {
		return nil, combine.ErrNoExtensionsSelected
	}
	sort.Strings(selected)
	return selected, nil
}

func (state SelectionState) clone() SelectionState {
	included := make(map[string]bool, len(state.Included))
	for extension, flag := range state.Included {
		included[extension] = flag
	}
	return SelectionState{
		Root:       state.Root,
		Extensions: append([]string(nil), state.Extensions...),
		Included:   included,
	}
}
