package main

import (
	"unicode"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"wavelattice/internal/input"
)

const (
	keyRepeatDelay    = 30
	keyRepeatInterval = 3
)

// handleInput feeds this tick's key presses to the input machine in the order
// mode keys, typed characters, then editing keys.
func (g *Game) handleInput() {
	var events []input.Event
	if inpututil.IsKeyJustPressed(ebiten.KeyBackquote) {
		events = append(events, input.Event{Kind: input.ModeKey})
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyTab) {
		events = append(events, input.Event{Kind: input.TextModeKey})
	}
	events = appendCharEvents(events, ebiten.AppendInputChars(nil))
	if repeatingKeyPressed(ebiten.KeyBackspace) {
		events = append(events, input.Event{Kind: input.Delete})
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEnter) || inpututil.IsKeyJustPressed(ebiten.KeyNumpadEnter) {
		events = append(events, input.Event{Kind: input.Confirm})
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		events = append(events, input.Event{Kind: input.Cancel})
	}
	for _, ev := range events {
		g.applyResult(g.input.Handle(ev))
	}
}

// appendCharEvents converts typed runes into Digit and Char events. The mode
// key and control characters are delivered through key presses instead.
func appendCharEvents(events []input.Event, runes []rune) []input.Event {
	for _, r := range runes {
		switch {
		case r == '`' || unicode.IsControl(r):
			continue
		case r >= '0' && r <= '9':
			events = append(events, input.Event{Kind: input.Digit, Rune: r})
		default:
			events = append(events, input.Event{Kind: input.Char, Rune: r})
		}
	}
	return events
}

// repeatingKeyPressed fires on the first tick of a press and then at a fixed
// rate while the key is held.
func repeatingKeyPressed(key ebiten.Key) bool {
	d := inpututil.KeyPressDuration(key)
	if d == 1 {
		return true
	}
	return d >= keyRepeatDelay && (d-keyRepeatDelay)%keyRepeatInterval == 0
}
