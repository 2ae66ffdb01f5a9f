package topics

import (
	"fmt"

	"roadmap/internal/classifier"
	"roadmap/pkg/types"
)

// Slider ranges and defaults, in cm
var (
	sepalLengthRange = sliderRange{4.0, 8.0, 5.0}
	sepalWidthRange  = sliderRange{2.0, 4.5, 3.0}
	petalLengthRange = sliderRange{1.0, 7.0, 4.0}
	petalWidthRange  = sliderRange{0.1, 2.5, 1.0}
)

type sliderRange struct {
	lo, hi, def float64
}

func (r sliderRange) read(field string, v *float64) (float64, error) {
	return types.FloatInRange(field, v, r.def, r.lo, r.hi)
}

// ARCHITECTURAL DISCOVERY: The model is retrained on every render and never
// cached, so accuracy and predictions depend only on the embedded data
func (d *Dispatcher) aimlIntro(_ *types.SessionState, ev types.Event, out *types.Output) error {
	if ev.Action != "" && ev.Action != types.ActionPredict {
		return unknownAction(ev)
	}

	in := ev.Inputs
	sl, err := sepalLengthRange.read("sepal_length", in.SepalLength)
	if err != nil {
		return err
	}
	sw, err := sepalWidthRange.read("sepal_width", in.SepalWidth)
	if err != nil {
		return err
	}
	pl, err := petalLengthRange.read("petal_length", in.PetalLength)
	if err != nil {
		return err
	}
	pw, err := petalWidthRange.read("petal_width", in.PetalWidth)
	if err != nil {
		return err
	}

	trained, err := classifier.TrainIris()
	if err != nil {
		return fmt.Errorf("train classifier: %w", err)
	}
	out.Add(types.BlockSuccess, fmt.Sprintf("Model trained with accuracy: %.2f", trained.Accuracy))

	out.Add(types.BlockInfo, "Predict Flower Type")
	if ev.Action == types.ActionPredict {
		label, err := trained.PredictLabel(sl, sw, pl, pw)
		if err != nil {
			return fmt.Errorf("predict: %w", err)
		}
		out.Add(types.BlockSuccess, "Predicted Flower: "+label)
	}
	return nil
}
