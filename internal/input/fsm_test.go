package input

import (
	"errors"
	"strconv"
	"testing"

	"wavelattice/internal/wavefield"
)

func chars(s string) []Event {
	out := make([]Event, 0, len(s))
	for _, r := range s {
		out = append(out, Event{Kind: Char, Rune: r})
	}
	return out
}

func feed(m *Machine, events ...Event) Result {
	var last Result
	for _, ev := range events {
		last = m.Handle(ev)
	}
	return last
}

func TestCommitFrequency(t *testing.T) {
	freqs := wavefield.NewFrequencySet(3)
	m := NewMachine(freqs, nil)

	m.Handle(Event{Kind: ModeKey})
	if _, ok := m.Mode().(Select); !ok {
		t.Fatalf("expected select, got %v", m.Mode())
	}
	m.Handle(Event{Kind: Digit, Rune: '1'})
	if e, ok := m.Mode().(Edit); !ok || e.Target != 1 {
		t.Fatalf("expected edit[1], got %v", m.Mode())
	}
	feed(m, chars("4.5")...)
	if e := m.Mode().(Edit); e.Buffer != "4.5" {
		t.Fatalf("expected buffer 4.5, got %q", e.Buffer)
	}
	res := m.Handle(Event{Kind: Confirm})
	if !res.Committed || res.Target != 1 || res.Value != 4.5 {
		t.Fatalf("unexpected result %+v", res)
	}
	if freqs[1] != 4.5 {
		t.Fatalf("expected freqs[1] == 4.5, got %v", freqs[1])
	}
	if _, ok := m.Mode().(Idle); !ok {
		t.Fatalf("expected idle, got %v", m.Mode())
	}
}

func TestMalformedBufferDiscarded(t *testing.T) {
	freqs := wavefield.FrequencySet{1, 2, 3}
	m := NewMachine(freqs, nil)
	feed(m, Event{Kind: ModeKey}, Event{Kind: Digit, Rune: '0'})
	feed(m, chars("abc")...)
	res := m.Handle(Event{Kind: Confirm})

	var perr *ParseError
	if !errors.As(res.Err, &perr) {
		t.Fatalf("expected ParseError, got %v", res.Err)
	}
	if perr.Buffer != "abc" || !errors.Is(res.Err, strconv.ErrSyntax) {
		t.Fatalf("unexpected parse error %v", perr)
	}
	if res.Committed {
		t.Fatal("malformed buffer must not commit")
	}
	if freqs[0] != 1 || freqs[1] != 2 || freqs[2] != 3 {
		t.Fatalf("frequencies changed: %v", freqs)
	}
	if m.Capturing() {
		t.Fatalf("expected idle, got %v", m.Mode())
	}
}

func TestRejectsNonFinite(t *testing.T) {
	freqs := wavefield.NewFrequencySet(3)
	m := NewMachine(freqs, nil)
	for _, buf := range []string{"NaN", "Inf", "-inf", ""} {
		feed(m, Event{Kind: ModeKey}, Event{Kind: Digit, Rune: '2'})
		feed(m, chars(buf)...)
		if res := m.Handle(Event{Kind: Confirm}); res.Err == nil {
			t.Fatalf("expected %q to be rejected", buf)
		}
	}
	if freqs[2] != 0 {
		t.Fatalf("frequency changed to %v", freqs[2])
	}
}

func TestRejectsSingularFrequency(t *testing.T) {
	freqs := wavefield.FrequencySet{1, 2, 3}
	m := NewMachine(freqs, nil)
	feed(m, Event{Kind: ModeKey}, Event{Kind: Digit, Rune: '0'})
	feed(m, chars("-100")...)
	res := m.Handle(Event{Kind: Confirm})
	var perr *ParseError
	if !errors.As(res.Err, &perr) || !errors.Is(res.Err, wavefield.ErrSingularFrequency) {
		t.Fatalf("expected singular ParseError, got %v", res.Err)
	}
	if res.Committed || freqs[0] != 1 {
		t.Fatalf("singular value was committed: %+v %v", res, freqs)
	}

	m.SetDamping(0.5)
	feed(m, Event{Kind: ModeKey}, Event{Kind: Digit, Rune: '0'})
	feed(m, chars("-100")...)
	if res := m.Handle(Event{Kind: Confirm}); !res.Committed || freqs[0] != -100 {
		t.Fatalf("expected -100 to commit under damping 0.5, got %+v", res)
	}
	feed(m, Event{Kind: ModeKey}, Event{Kind: Digit, Rune: '1'})
	feed(m, chars("-2")...)
	if res := m.Handle(Event{Kind: Confirm}); res.Err == nil {
		t.Fatal("expected -2 to be singular under damping 0.5")
	}
}

func TestDeleteAndWhitespace(t *testing.T) {
	freqs := wavefield.NewFrequencySet(3)
	m := NewMachine(freqs, nil)
	feed(m, Event{Kind: ModeKey}, Event{Kind: Digit, Rune: '2'})
	feed(m, chars(" 7.25x")...)
	m.Handle(Event{Kind: Delete})
	if e := m.Mode().(Edit); e.Buffer != " 7.25" {
		t.Fatalf("expected buffer %q, got %q", " 7.25", e.Buffer)
	}
	res := m.Handle(Event{Kind: Confirm})
	if !res.Committed || freqs[2] != 7.25 {
		t.Fatalf("expected 7.25 committed, got %+v %v", res, freqs)
	}

	// Delete on an empty buffer stays in Edit.
	feed(m, Event{Kind: ModeKey}, Event{Kind: Digit, Rune: '0'}, Event{Kind: Delete})
	if e, ok := m.Mode().(Edit); !ok || e.Buffer != "" {
		t.Fatalf("expected empty edit buffer, got %v", m.Mode())
	}
}

func TestSelectIgnoresOutOfRange(t *testing.T) {
	m := NewMachine(wavefield.NewFrequencySet(3), nil)
	feed(m, Event{Kind: ModeKey}, Event{Kind: Digit, Rune: '5'}, Event{Kind: Char, Rune: 'x'})
	if _, ok := m.Mode().(Select); !ok {
		t.Fatalf("expected to stay in select, got %v", m.Mode())
	}
	m.Handle(Event{Kind: Confirm})
	if m.Capturing() {
		t.Fatal("confirm without a target should return to idle")
	}
}

func TestModeKeyRestartsSession(t *testing.T) {
	freqs := wavefield.NewFrequencySet(3)
	m := NewMachine(freqs, nil)
	feed(m, Event{Kind: ModeKey}, Event{Kind: Digit, Rune: '1'})
	feed(m, chars("9")...)
	m.Handle(Event{Kind: ModeKey})
	if _, ok := m.Mode().(Select); !ok {
		t.Fatalf("expected select after re-entry, got %v", m.Mode())
	}
	feed(m, Event{Kind: Digit, Rune: '1'})
	if e := m.Mode().(Edit); e.Buffer != "" {
		t.Fatalf("expected cleared buffer, got %q", e.Buffer)
	}
}

func TestCancel(t *testing.T) {
	freqs := wavefield.NewFrequencySet(3)
	m := NewMachine(freqs, nil)
	feed(m, Event{Kind: ModeKey}, Event{Kind: Digit, Rune: '1'})
	feed(m, chars("3")...)
	m.Handle(Event{Kind: Cancel})
	if m.Capturing() || freqs[1] != 0 {
		t.Fatalf("cancel must leave idle with no change, mode=%v freqs=%v", m.Mode(), freqs)
	}
}

func TestIdleIgnoresEditing(t *testing.T) {
	freqs := wavefield.NewFrequencySet(3)
	m := NewMachine(freqs, nil)
	for _, ev := range []Event{{Kind: Digit, Rune: '1'}, {Kind: Char, Rune: 'w'}, {Kind: Delete}, {Kind: Confirm}} {
		if res := m.Handle(ev); res.Committed || res.Err != nil || res.Replied {
			t.Fatalf("idle produced %+v", res)
		}
	}
	if m.Capturing() {
		t.Fatal("expected idle")
	}
}

type stubResponder struct{ got string }

func (s *stubResponder) Respond(text string) (string, float64) {
	s.got = text
	return "fine", 0.75
}

func TestTextEdit(t *testing.T) {
	freqs := wavefield.NewFrequencySet(3)
	r := &stubResponder{}
	m := NewMachine(freqs, r)
	m.Handle(Event{Kind: TextModeKey})
	if _, ok := m.Mode().(TextEdit); !ok {
		t.Fatalf("expected text mode, got %v", m.Mode())
	}
	feed(m, chars("how are you?")...)
	res := m.Handle(Event{Kind: Confirm})
	if !res.Replied || res.Response != "fine" || res.Confidence != 0.75 || r.got != "how are you?" {
		t.Fatalf("unexpected reply %+v (responder saw %q)", res, r.got)
	}
	if m.Capturing() {
		t.Fatal("expected idle after text commit")
	}
	for _, f := range freqs {
		if f != 0 {
			t.Fatalf("text commit changed frequencies: %v", freqs)
		}
	}
}

func TestTextModeKeyIgnoredWhileEditing(t *testing.T) {
	m := NewMachine(wavefield.NewFrequencySet(3), nil)
	feed(m, Event{Kind: ModeKey}, Event{Kind: Digit, Rune: '0'}, Event{Kind: TextModeKey})
	if _, ok := m.Mode().(Edit); !ok {
		t.Fatalf("expected to stay in edit, got %v", m.Mode())
	}
}
