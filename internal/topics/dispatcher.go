// Package topics renders the ten tutorial topics.
package topics

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/rs/zerolog"

	"roadmap/pkg/interfaces"
	"roadmap/pkg/types"
)

// Observer receives one call per render. internal/metrics implements it.
type Observer interface {
	ObserveRender(topic, outcome string, elapsed time.Duration)
}

// Render outcomes reported to the Observer
const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
)

// UnknownTopic is reported to the Observer in place of a label outside the
// menu, so client input never becomes a metric label.
const UnknownTopic = "unknown"

// handler renders one topic into out, mutating st in place. st is always a
// private copy, so a handler may leave it half-updated when it fails.
type handler func(st *types.SessionState, ev types.Event, out *types.Output) error

type topic struct {
	header string
	render handler
}

// Dispatcher maps a topic label to exactly one handler.
// ARCHITECTURAL DISCOVERY: Handlers never see committed state, only a clone;
// the caller decides whether to keep the returned state
type Dispatcher struct {
	topics   map[string]topic
	notes    interfaces.NoteLog
	logger   zerolog.Logger
	observer Observer
	draw     func() int // guessing target in [1, 10]
}

// NewDispatcher wires the handlers. notes backs the File Handling topic.
func NewDispatcher(notes interfaces.NoteLog, logger zerolog.Logger) *Dispatcher {
	d := &Dispatcher{
		notes:  notes,
		logger: logger.With().Str("component", "topics").Logger(),
		draw:   func() int { return rand.IntN(GuessMax-GuessMin+1) + GuessMin },
	}

	d.topics = map[string]topic{
		types.TopicBasics:         {"Basics: Print, Variables, Input", d.basics},
		types.TopicControlFlow:    {"Control Flow: Number Guessing Game", d.controlFlow},
		types.TopicFunctions:      {"Functions: Simple Calculator", d.functions},
		types.TopicDataStructures: {"Data Structures: Student Records", d.dataStructures},
		types.TopicOOP:            {"OOP: Library System", d.oop},
		types.TopicFileHandling:   {"File Handling: Save & Read Notes", d.fileHandling},
		types.TopicErrorHandling:  {"Error Handling: Divide Numbers Safely", d.errorHandling},
		types.TopicAdvanced:       {"Advanced: Decorators & Generators", d.advanced},
		types.TopicPopularLibs:    {"Popular Libraries: Tables & Charts", d.popularLibraries},
		types.TopicAIMLIntro:      {"AI/ML Intro: Iris Flower Classifier", d.aimlIntro},
	}
	return d
}

// SetObserver installs a render observer. Call before serving traffic.
func (d *Dispatcher) SetObserver(o Observer) {
	d.observer = o
}

// Topics lists the labels in menu order.
func (d *Dispatcher) Topics() []string {
	out := make([]string, len(types.Menu))
	copy(out, types.Menu)
	return out
}

// Render runs the handler for ev.Topic against a copy of state. On error the
// original state is returned untouched and no output is produced.
func (d *Dispatcher) Render(state types.SessionState, ev types.Event) (types.SessionState, *types.Output, error) {
	start := time.Now()

	if err := ev.Validate(); err != nil {
		d.observe(ev.Topic, OutcomeError, start)
		return state, nil, err
	}

	t := d.topics[ev.Topic]
	next := state.Clone()
	out := &types.Output{Topic: ev.Topic, Header: t.header}

	if err := t.render(&next, ev, out); err != nil {
		d.observe(ev.Topic, OutcomeError, start)
		d.logger.Warn().Err(err).
			Str("topic", ev.Topic).
			Str("action", ev.Action).
			Msg("render failed")
		return state, nil, fmt.Errorf("render %s: %w", ev.Topic, err)
	}

	d.observe(ev.Topic, OutcomeOK, start)
	d.logger.Debug().
		Str("topic", ev.Topic).
		Str("action", ev.Action).
		Int("blocks", len(out.Blocks)).
		Msg("rendered")
	return next, out, nil
}

// Bind returns a RenderFunc for one event, ready for SessionManager.Apply.
func (d *Dispatcher) Bind(ev types.Event) interfaces.RenderFunc {
	return func(state types.SessionState) (types.SessionState, *types.Output, error) {
		return d.Render(state, ev)
	}
}

func (d *Dispatcher) observe(topic, outcome string, start time.Time) {
	if d.observer == nil {
		return
	}
	if !types.IsValidTopic(topic) {
		topic = UnknownTopic
	}
	d.observer.ObserveRender(topic, outcome, time.Since(start))
}

// unknownAction rejects a button the topic does not have.
func unknownAction(ev types.Event) error {
	return fmt.Errorf("%w: %q on %q", types.ErrUnknownAction, ev.Action, ev.Topic)
}
