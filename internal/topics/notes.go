package topics

import (
	"errors"
	"fmt"

	"roadmap/pkg/interfaces"
	"roadmap/pkg/types"
)

const msgNoNotes = "No notes found. Save a note first!"

// FUNCTIONAL DISCOVERY: A missing log is a normal first-visit outcome and
// renders as a block; any other storage failure aborts the render
func (d *Dispatcher) fileHandling(_ *types.SessionState, ev types.Event, out *types.Output) error {
	switch ev.Action {
	case "":
	case types.ActionSaveNote:
		if err := d.notes.Append(ev.Inputs.Note); err != nil {
			return fmt.Errorf("save note: %w", err)
		}
		out.Add(types.BlockSuccess, "Note saved to "+d.notes.Path())
	case types.ActionReadNotes:
		content, err := d.notes.ReadAll()
		if errors.Is(err, interfaces.ErrNoNotes) {
			out.Add(types.BlockError, msgNoNotes)
			return nil
		}
		if err != nil {
			return fmt.Errorf("read notes: %w", err)
		}
		out.Add(types.BlockText, "Saved Notes")
		out.Add(types.BlockCode, content)
	default:
		return unknownAction(ev)
	}
	return nil
}
