package classifier

import "fmt"

// Demo settings: 20% held out, seed 42, 200 training iterations.
const (
	TestSize = 0.2
	Seed     = 42
	MaxIter  = 200
)

// Trained is a freshly fitted iris model and its held-out accuracy.
type Trained struct {
	Model    *LogisticRegression
	Accuracy float64
	Labels   []string
}

// TrainIris loads the dataset, splits it and fits a new model. Nothing is
// cached; every call repeats the whole pipeline.
func TrainIris() (*Trained, error) {
	data, err := LoadIris()
	if err != nil {
		return nil, err
	}

	train, test, err := TrainTestSplit(data, TestSize, Seed)
	if err != nil {
		return nil, err
	}

	model := NewLogisticRegression(MaxIter)
	if err := model.Fit(train.Features, train.Targets, len(data.TargetNames)); err != nil {
		return nil, fmt.Errorf("fit iris model: %w", err)
	}

	acc, err := model.Score(test.Features, test.Targets)
	if err != nil {
		return nil, fmt.Errorf("score iris model: %w", err)
	}

	return &Trained{Model: model, Accuracy: acc, Labels: data.TargetNames}, nil
}

// PredictLabel classifies one flower measurement.
func (t *Trained) PredictLabel(sepalLength, sepalWidth, petalLength, petalWidth float64) (string, error) {
	idx, err := t.Model.Predict([]float64{sepalLength, sepalWidth, petalLength, petalWidth})
	if err != nil {
		return "", err
	}
	return t.Labels[idx], nil
}
