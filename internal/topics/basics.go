package topics

import (
	"fmt"

	"roadmap/pkg/types"
)

const basicsExample = `// Example
name := "Imtiaz"
fmt.Println("Hello", name)`

// Greeting is the Basics success message.
func Greeting(name string) string {
	return fmt.Sprintf("Hello, %s! Welcome to Go", name)
}

func (d *Dispatcher) basics(_ *types.SessionState, ev types.Event, out *types.Output) error {
	switch ev.Action {
	case "":
	case types.ActionSayHello:
		out.Add(types.BlockSuccess, Greeting(ev.Inputs.Name))
	default:
		return unknownAction(ev)
	}

	out.Add(types.BlockCode, basicsExample)
	return nil
}
