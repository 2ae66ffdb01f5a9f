package types

import (
	"time"
)

// ARCHITECTURAL DISCOVERY: Topic labels defined exactly as shown in the sidebar menu
// so the dispatcher, API and websocket handler all agree on the closed label set
const (
	TopicBasics         = "Basics"
	TopicControlFlow    = "Control Flow"
	TopicFunctions      = "Functions"
	TopicDataStructures = "Data Structures"
	TopicOOP            = "OOP"
	TopicFileHandling   = "File Handling"
	TopicErrorHandling  = "Error Handling"
	TopicAdvanced       = "Advanced (Decorators/Generators)"
	TopicPopularLibs    = "Popular Libraries"
	TopicAIMLIntro      = "AI/ML Intro"
)

// Actions are the button presses a topic understands. An empty action is a
// plain re-render.
const (
	ActionSayHello   = "say_hello"
	ActionCheck      = "check"
	ActionCalculate  = "calculate"
	ActionAddStudent = "add"
	ActionSaveNote   = "save_note"
	ActionReadNotes  = "read_notes"
	ActionDivide     = "divide"
	ActionPredict    = "predict"
)

// Session statuses
const (
	SessionStatusActive = "active"
	SessionStatusEnded  = "ended"
)

// Menu lists the topic labels in sidebar order.
var Menu = []string{
	TopicBasics,
	TopicControlFlow,
	TopicFunctions,
	TopicDataStructures,
	TopicOOP,
	TopicFileHandling,
	TopicErrorHandling,
	TopicAdvanced,
	TopicPopularLibs,
	TopicAIMLIntro,
}

// Session represents one learner's continuous use of the app
// FUNCTIONAL DISCOVERY: State lives on the session so ending the session
// discards every demo's progress in one step
type Session struct {
	ID        string       `json:"id"`
	CreatedAt time.Time    `json:"created_at"`
	LastSeen  time.Time    `json:"last_seen"`
	EndedAt   *time.Time   `json:"ended_at,omitempty"`
	Status    string       `json:"status"`
	State     SessionState `json:"state"`
}

// SessionState holds the per-demo values that survive between renders.
// Every field is nil until the owning topic first touches it.
type SessionState struct {
	Number   *int           `json:"number,omitempty"`
	Students map[string]int `json:"students,omitempty"`
	Library  *Library       `json:"library,omitempty"`
}

// Clone returns a deep copy so a failed render can be thrown away without
// leaking partial mutation into the committed state.
func (s SessionState) Clone() SessionState {
	var out SessionState
	if s.Number != nil {
		n := *s.Number
		out.Number = &n
	}
	if s.Students != nil {
		out.Students = make(map[string]int, len(s.Students))
		for name, score := range s.Students {
			out.Students[name] = score
		}
	}
	if s.Library != nil {
		lib := &Library{Books: make([]Book, len(s.Library.Books))}
		copy(lib.Books, s.Library.Books)
		out.Library = lib
	}
	return out
}

// Book is a single catalog entry.
type Book struct {
	Title     string `json:"title"`
	Author    string `json:"author"`
	Available bool   `json:"available"`
}

// Library is an ordered, append-only catalog.
type Library struct {
	Books []Book `json:"books"`
}

// AddBook appends a book to the catalog.
func (l *Library) AddBook(b Book) {
	l.Books = append(l.Books, b)
}

// Event is one user interaction: the selected topic, the button pressed (if
// any) and the current widget values.
type Event struct {
	Topic  string `json:"topic"`
	Action string `json:"action,omitempty"`
	Inputs Inputs `json:"inputs"`
}

// Inputs carries widget values. A nil pointer means the widget still shows
// its default value.
// ARCHITECTURAL DISCOVERY: One flat struct for all topics keeps the wire
// format simple; each handler reads only the fields it renders
type Inputs struct {
	Name        string   `json:"name,omitempty"`
	Guess       *int     `json:"guess,omitempty"`
	A           *float64 `json:"a,omitempty"`
	B           *float64 `json:"b,omitempty"`
	Operation   string   `json:"operation,omitempty"`
	StudentName string   `json:"student_name,omitempty"`
	Score       *int     `json:"score,omitempty"`
	Note        string   `json:"note,omitempty"`
	X           *float64 `json:"x,omitempty"`
	Y           *float64 `json:"y,omitempty"`
	N           *int     `json:"n,omitempty"`
	SepalLength *float64 `json:"sepal_length,omitempty"`
	SepalWidth  *float64 `json:"sepal_width,omitempty"`
	PetalLength *float64 `json:"petal_length,omitempty"`
	PetalWidth  *float64 `json:"petal_width,omitempty"`
}

// Block kinds
const (
	BlockSuccess = "success"
	BlockWarning = "warning"
	BlockError   = "error"
	BlockInfo    = "info"
	BlockText    = "text"
	BlockCode    = "code"
	BlockTable   = "table"
	BlockChart   = "chart"
	BlockList    = "list"
)

// Output is everything one render displays, top to bottom.
type Output struct {
	Topic  string  `json:"topic"`
	Header string  `json:"header"`
	Blocks []Block `json:"blocks"`
}

// Block is one displayed element.
type Block struct {
	Kind  string `json:"kind"`
	Text  string `json:"text,omitempty"`
	Table *Table `json:"table,omitempty"`
	Chart string `json:"chart,omitempty"` // SVG document
	Items []int  `json:"items,omitempty"`
}

// Table is a small column-ordered dataset.
type Table struct {
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

// Add appends a block to the output.
func (o *Output) Add(kind, text string) {
	o.Blocks = append(o.Blocks, Block{Kind: kind, Text: text})
}
