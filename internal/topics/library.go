package topics

import (
	"fmt"

	"roadmap/pkg/types"
)

// NewLibrary returns the catalog every session starts with.
func NewLibrary() *types.Library {
	lib := &types.Library{}
	lib.AddBook(types.Book{Title: "Python Basics", Author: "Imtiaz", Available: true})
	lib.AddBook(types.Book{Title: "AI with Python", Author: "Imtiaz", Available: true})
	return lib
}

func (d *Dispatcher) oop(st *types.SessionState, ev types.Event, out *types.Output) error {
	if ev.Action != "" {
		return unknownAction(ev)
	}
	if st.Library == nil {
		st.Library = NewLibrary()
	}

	for _, b := range st.Library.Books {
		out.Add(types.BlockText, fmt.Sprintf("%s by %s", b.Title, b.Author))
	}
	return nil
}
