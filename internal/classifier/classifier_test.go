package classifier

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadIris(t *testing.T) {
	d, err := LoadIris()
	require.NoError(t, err)

	assert.Equal(t, 150, d.Len())
	assert.Equal(t, []string{"setosa", "versicolor", "virginica"}, d.TargetNames)

	counts := make(map[int]int)
	for _, y := range d.Targets {
		counts[y]++
	}
	assert.Equal(t, map[int]int{0: 50, 1: 50, 2: 50}, counts)
	for _, row := range d.Features {
		assert.Len(t, row, NumFeatures)
	}
}

func TestTrainTestSplit(t *testing.T) {
	d, err := LoadIris()
	require.NoError(t, err)

	train, test, err := TrainTestSplit(d, 0.2, 42)
	require.NoError(t, err)
	assert.Equal(t, 120, train.Len())
	assert.Equal(t, 30, test.Len())

	// same seed, same split
	train2, test2, err := TrainTestSplit(d, 0.2, 42)
	require.NoError(t, err)
	assert.Equal(t, train.Targets, train2.Targets)
	assert.Equal(t, test.Features, test2.Features)

	_, _, err = TrainTestSplit(d, 0, 42)
	assert.Error(t, err)
	_, _, err = TrainTestSplit(d, 1, 42)
	assert.Error(t, err)
}

func TestTrainIris_Accuracy(t *testing.T) {
	trained, err := TrainIris()
	require.NoError(t, err)

	assert.GreaterOrEqual(t, trained.Accuracy, 0.0)
	assert.LessOrEqual(t, trained.Accuracy, 1.0)
	assert.GreaterOrEqual(t, trained.Accuracy, 0.9, "iris is nearly separable")

	again, err := TrainIris()
	require.NoError(t, err)
	assert.Equal(t, trained.Accuracy, again.Accuracy)
}

func TestPredictLabel(t *testing.T) {
	trained, err := TrainIris()
	require.NoError(t, err)

	valid := map[string]bool{"setosa": true, "versicolor": true, "virginica": true}

	tests := []struct {
		name           string
		sl, sw, pl, pw float64
		want           string
	}{
		{"small petals", 5.0, 3.5, 1.4, 0.2, "setosa"},
		{"large petals", 7.0, 3.0, 6.0, 2.2, "virginica"},
		{"widget defaults", 5.0, 3.0, 4.0, 1.0, ""},
		{"slider corner", 8.0, 2.0, 1.0, 2.5, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			label, err := trained.PredictLabel(tt.sl, tt.sw, tt.pl, tt.pw)
			require.NoError(t, err)
			assert.True(t, valid[label], "unexpected label %q", label)
			if tt.want != "" {
				assert.Equal(t, tt.want, label)
			}
		})
	}
}

func TestLogisticRegression_Errors(t *testing.T) {
	m := NewLogisticRegression(10)

	_, err := m.Predict([]float64{1, 2, 3, 4})
	assert.ErrorIs(t, err, ErrNotFitted)

	assert.Error(t, m.Fit(nil, nil, 3))
	assert.Error(t, m.Fit([][]float64{{1}, {2}}, []int{0, 1}, 1))
	assert.Error(t, m.Fit([][]float64{{1}, {2}}, []int{0, 5}, 2))
	assert.ErrorIs(t, m.Fit([][]float64{{1, 2}, {2}}, []int{0, 1}, 2), ErrFeatureLength)

	require.NoError(t, m.Fit([][]float64{{0}, {1}, {10}, {11}}, []int{0, 0, 1, 1}, 2))
	_, err = m.Predict([]float64{1, 2})
	assert.ErrorIs(t, err, ErrFeatureLength)

	p, err := m.Predict([]float64{10.5})
	require.NoError(t, err)
	assert.Equal(t, 1, p)
}

func TestLogisticRegression_FitsTrainingSet(t *testing.T) {
	d, err := LoadIris()
	require.NoError(t, err)

	m := NewLogisticRegression(MaxIter)
	require.NoError(t, m.Fit(d.Features, d.Targets, len(d.TargetNames)))

	acc, err := m.Score(d.Features, d.Targets)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, acc, 0.95)
}

func TestLogisticRegression_RejectsBadC(t *testing.T) {
	m := NewLogisticRegression(10)
	m.C = 0
	assert.Error(t, m.Fit([][]float64{{0}, {1}}, []int{0, 1}, 2))
}
