package types

import "fmt"

// IsValidTopic reports whether label is one of the ten menu entries.
func IsValidTopic(label string) bool {
	for _, t := range Menu {
		if t == label {
			return true
		}
	}
	return false
}

// Validate normalizes the event and rejects labels outside the menu.
// FUNCTIONAL DISCOVERY: An empty topic selects the first menu entry, the same
// thing an untouched selectbox shows
func (e *Event) Validate() error {
	if e.Topic == "" {
		e.Topic = TopicBasics
	}
	if !IsValidTopic(e.Topic) {
		return fmt.Errorf("%w: %q", ErrUnknownTopic, e.Topic)
	}
	return nil
}

// IntInRange returns v (or def when v is nil) after checking it against [min, max].
func IntInRange(field string, v *int, def, lo, hi int) (int, error) {
	val := def
	if v != nil {
		val = *v
	}
	if val < lo || val > hi {
		return 0, fmt.Errorf("%w: %s=%d not in [%d, %d]", ErrOutOfRange, field, val, lo, hi)
	}
	return val, nil
}

// FloatInRange is IntInRange for slider and number widgets holding floats.
func FloatInRange(field string, v *float64, def, lo, hi float64) (float64, error) {
	val := def
	if v != nil {
		val = *v
	}
	if val < lo || val > hi {
		return 0, fmt.Errorf("%w: %s=%g not in [%g, %g]", ErrOutOfRange, field, val, lo, hi)
	}
	return val, nil
}

// FloatOr returns *v, or def when the widget was left untouched.
func FloatOr(v *float64, def float64) float64 {
	if v == nil {
		return def
	}
	return *v
}
