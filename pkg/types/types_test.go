package types

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }
func floatPtr(v float64) *float64 { return &v }

func TestMenu_HasTenUniqueTopics(t *testing.T) {
	seen := make(map[string]bool)
	for _, label := range Menu {
		assert.False(t, seen[label], "duplicate label %q", label)
		seen[label] = true
	}
	assert.Len(t, Menu, 10)
}

func TestEvent_Validate(t *testing.T) {
	tests := []struct {
		name      string
		event     Event
		wantTopic string
		wantErr   error
	}{
		{name: "empty topic defaults to first entry", event: Event{}, wantTopic: TopicBasics},
		{name: "known topic", event: Event{Topic: TopicOOP}, wantTopic: TopicOOP},
		{name: "unknown topic", event: Event{Topic: "Rust"}, wantErr: ErrUnknownTopic},
		{name: "case matters", event: Event{Topic: "basics"}, wantErr: ErrUnknownTopic},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.event.Validate()
			if tt.wantErr != nil {
				assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantTopic, tt.event.Topic)
		})
	}
}

func TestIntInRange(t *testing.T) {
	v, err := IntInRange("guess", nil, 1, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, v)

	v, err = IntInRange("guess", intPtr(10), 1, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, 10, v)

	_, err = IntInRange("guess", intPtr(0), 1, 1, 10)
	assert.ErrorIs(t, err, ErrOutOfRange)

	_, err = IntInRange("score", intPtr(101), 0, 0, 100)
	assert.ErrorIs(t, err, ErrOutOfRange)
}

func TestFloatInRange(t *testing.T) {
	v, err := FloatInRange("sepal_width", nil, 3.0, 2.0, 4.5)
	require.NoError(t, err)
	assert.Equal(t, 3.0, v)

	_, err = FloatInRange("sepal_width", floatPtr(4.6), 3.0, 2.0, 4.5)
	assert.ErrorIs(t, err, ErrOutOfRange)

	assert.Equal(t, 7.5, FloatOr(floatPtr(7.5), 0))
	assert.Equal(t, 10.0, FloatOr(nil, 10))
}

func TestSessionState_CloneIsDeep(t *testing.T) {
	n := 4
	orig := SessionState{
		Number:   &n,
		Students: map[string]int{"Ali": 90},
		Library:  &Library{Books: []Book{{Title: "Python Basics", Author: "Imtiaz", Available: true}}},
	}

	cp := orig.Clone()
	*cp.Number = 9
	cp.Students["Ali"] = 50
	cp.Library.AddBook(Book{Title: "Extra"})
	cp.Library.Books[0].Available = false

	assert.Equal(t, 4, *orig.Number)
	assert.Equal(t, 90, orig.Students["Ali"])
	assert.Len(t, orig.Library.Books, 1)
	assert.True(t, orig.Library.Books[0].Available)
}

func TestSessionState_CloneOfEmptyStaysEmpty(t *testing.T) {
	cp := SessionState{}.Clone()
	assert.Nil(t, cp.Number)
	assert.Nil(t, cp.Students)
	assert.Nil(t, cp.Library)
}
