package topics

import (
	"iter"
	"slices"

	"roadmap/pkg/types"
)

// Generator slider range and default
const (
	CountMin     = 1
	CountMax     = 10
	CountDefault = 5
)

// Decorate wraps f so its result is framed by "Before" and "After".
func Decorate(f func() string) func() string {
	return func() string {
		return "Before → " + f() + " → After"
	}
}

// CountUpTo yields 1..n. Each range over the sequence starts again at 1.
func CountUpTo(n int) iter.Seq[int] {
	return func(yield func(int) bool) {
		for i := 1; i <= n; i++ {
			if !yield(i) {
				return
			}
		}
	}
}

var sayHello = Decorate(func() string { return "Hello Imtiaz!" })

func (d *Dispatcher) advanced(_ *types.SessionState, ev types.Event, out *types.Output) error {
	if ev.Action != "" {
		return unknownAction(ev)
	}

	n, err := types.IntInRange("n", ev.Inputs.N, CountDefault, CountMin, CountMax)
	if err != nil {
		return err
	}

	out.Add(types.BlockInfo, "Decorator Example")
	out.Add(types.BlockText, sayHello())

	out.Add(types.BlockInfo, "Generator Example")
	out.Blocks = append(out.Blocks, types.Block{Kind: types.BlockList, Items: slices.Collect(CountUpTo(n))})
	return nil
}
