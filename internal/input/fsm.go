// Package input arbitrates operator keystrokes between camera control and
// frequency or text editing.
package input

import (
	"fmt"
	"strconv"
	"strings"

	"wavelattice/internal/wavefield"
)

// Mode is one state of the machine: Idle, Select, Edit or TextEdit.
type Mode interface {
	isMode()
	String() string
}

// Idle leaves the keyboard to the camera.
type Idle struct{}

// Select waits for a digit naming the frequency to edit.
type Select struct{}

// Edit collects the new value for Frequencies[Target].
type Edit struct {
	Target int
	Buffer string
}

// TextEdit collects free text for the Responder.
type TextEdit struct {
	Buffer string
}

func (Idle) isMode()     {}
func (Select) isMode()   {}
func (Edit) isMode()     {}
func (TextEdit) isMode() {}

func (Idle) String() string     { return "idle" }
func (Select) String() string   { return "select" }
func (e Edit) String() string   { return fmt.Sprintf("edit[%d]", e.Target) }
func (TextEdit) String() string { return "text" }

// EventKind enumerates the keys the machine understands.
type EventKind int

const (
	ModeKey EventKind = iota
	TextModeKey
	Digit
	Char
	Delete
	Confirm
	Cancel
)

// Event is one key press. Rune is set for Digit and Char.
type Event struct {
	Kind EventKind
	Rune rune
}

// Responder answers committed text. Implementations live outside the core.
type Responder interface {
	Respond(text string) (response string, confidence float64)
}

// ParseError reports a buffer that could not be converted at commit.
type ParseError struct {
	Buffer string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse frequency %q: %v", e.Buffer, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Result describes what a single event changed outside the machine.
type Result struct {
	// Committed is true when a frequency was written.
	Committed bool
	Target    int
	Value     float64

	// Replied is true when text was dispatched to the Responder.
	Replied    bool
	Text       string
	Response   string
	Confidence float64

	// Err is a *ParseError when an Edit commit was discarded.
	Err error
}

// Machine owns the transient input session. Only a commit from Edit touches the
// frequency set.
type Machine struct {
	mode      Mode
	freqs     wavefield.FrequencySet
	responder Responder
	damping   float64
}

// NewMachine starts in Idle editing freqs in place. responder may be nil.
// Commits are checked against wavefield.DefaultDamping until SetDamping.
func NewMachine(freqs wavefield.FrequencySet, responder Responder) *Machine {
	return &Machine{mode: Idle{}, freqs: freqs, responder: responder, damping: wavefield.DefaultDamping}
}

// SetDamping sets the damping used to reject singular frequencies at commit.
func (m *Machine) SetDamping(k float64) { m.damping = k }

func (m *Machine) Mode() Mode { return m.mode }

// Capturing reports whether keystrokes belong to the machine rather than the camera.
func (m *Machine) Capturing() bool {
	_, idle := m.mode.(Idle)
	return !idle
}

// Handle applies one event and reports any committed side effect.
func (m *Machine) Handle(ev Event) Result {
	switch ev.Kind {
	case ModeKey:
		m.mode = Select{}
		return Result{}
	case TextModeKey:
		if _, idle := m.mode.(Idle); idle {
			m.mode = TextEdit{}
			return Result{}
		}
	case Cancel:
		m.mode = Idle{}
		return Result{}
	}

	switch mode := m.mode.(type) {
	case Select:
		return m.handleSelect(ev)
	case Edit:
		return m.handleEdit(mode, ev)
	case TextEdit:
		return m.handleText(mode, ev)
	}
	return Result{}
}

func (m *Machine) handleSelect(ev Event) Result {
	switch ev.Kind {
	case Digit:
		idx := int(ev.Rune - '0')
		if idx >= 0 && idx < m.freqs.Len() {
			m.mode = Edit{Target: idx}
		}
	case Confirm:
		m.mode = Idle{}
	}
	return Result{}
}

func (m *Machine) handleEdit(mode Edit, ev Event) Result {
	switch ev.Kind {
	case Digit, Char:
		mode.Buffer += string(ev.Rune)
		m.mode = mode
	case Delete:
		mode.Buffer = trimLastRune(mode.Buffer)
		m.mode = mode
	case Confirm:
		m.mode = Idle{}
		v, err := parseFrequency(mode.Buffer, m.damping)
		if err != nil {
			return Result{Err: err}
		}
		if err := m.freqs.Set(mode.Target, v); err != nil {
			return Result{Err: err}
		}
		return Result{Committed: true, Target: mode.Target, Value: v}
	}
	return Result{}
}

func (m *Machine) handleText(mode TextEdit, ev Event) Result {
	switch ev.Kind {
	case Digit, Char:
		mode.Buffer += string(ev.Rune)
		m.mode = mode
	case Delete:
		mode.Buffer = trimLastRune(mode.Buffer)
		m.mode = mode
	case Confirm:
		m.mode = Idle{}
		res := Result{Replied: true, Text: mode.Buffer}
		if m.responder != nil {
			res.Response, res.Confidence = m.responder.Respond(mode.Buffer)
		}
		return res
	}
	return Result{}
}

func parseFrequency(buf string, damping float64) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(buf), 64)
	if err != nil {
		return 0, &ParseError{Buffer: buf, Err: err}
	}
	if err := wavefield.CheckFrequency(v, damping); err != nil {
		return 0, &ParseError{Buffer: buf, Err: err}
	}
	return v, nil
}

func trimLastRune(s string) string {
	r := []rune(s)
	if len(r) == 0 {
		return s
	}
	return string(r[:len(r)-1])
}
