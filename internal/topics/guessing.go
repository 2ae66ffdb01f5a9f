package topics

import (
	"roadmap/pkg/types"
)

// Guess widget range; the widget starts at its minimum.
const (
	GuessMin = 1
	GuessMax = 10
)

const (
	msgCorrect = "Correct! You guessed it."
	msgTooLow  = "Too low! Try again."
	msgTooHigh = "Too high! Try again."
)

const guessingExample = `// Example
num := rand.IntN(10) + 1
var guess int
fmt.Scan(&guess)
if guess == num {
	fmt.Println("Correct!")
}`

// FUNCTIONAL DISCOVERY: The game never ends; a correct guess just draws the
// next target
func (d *Dispatcher) controlFlow(st *types.SessionState, ev types.Event, out *types.Output) error {
	if st.Number == nil {
		n := d.draw()
		st.Number = &n
	}

	guess, err := types.IntInRange("guess", ev.Inputs.Guess, GuessMin, GuessMin, GuessMax)
	if err != nil {
		return err
	}

	switch ev.Action {
	case "":
	case types.ActionCheck:
		switch {
		case guess == *st.Number:
			out.Add(types.BlockSuccess, msgCorrect)
			n := d.draw()
			st.Number = &n
		case guess < *st.Number:
			out.Add(types.BlockWarning, msgTooLow)
		default:
			out.Add(types.BlockWarning, msgTooHigh)
		}
	default:
		return unknownAction(ev)
	}

	out.Add(types.BlockCode, guessingExample)
	return nil
}
