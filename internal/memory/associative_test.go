package memory

import (
	"math"
	"testing"
)

func TestRespondExactAndPartial(t *testing.T) {
	a := NewAssociative(
		Pair{Prompt: "hello how are you", Response: "I am fine"},
		Pair{Prompt: "what time is it", Response: "wave time"},
	)
	if a.Len() != 2 {
		t.Fatalf("expected 2 entries, got %d", a.Len())
	}

	resp, conf := a.Respond("Hello, how are you?")
	if resp != "I am fine" || conf != 1 {
		t.Fatalf("expected exact match, got %q %v", resp, conf)
	}

	resp, conf = a.Respond("is it late")
	// {is, it, late} vs {what, time, is, it}: 2 shared of 5 distinct.
	if resp != "wave time" || math.Abs(conf-0.4) > 1e-12 {
		t.Fatalf("expected partial match 0.4, got %q %v", resp, conf)
	}
}

func TestRespondNoMatch(t *testing.T) {
	a := NewAssociative(Pair{Prompt: "hello", Response: "hi"})
	for _, in := range []string{"", "   ", "goodbye", "?!"} {
		if resp, conf := a.Respond(in); resp != "" || conf != 0 {
			t.Fatalf("%q: expected no match, got %q %v", in, resp, conf)
		}
	}
}

func TestLearnIgnoresEmptyPrompt(t *testing.T) {
	a := NewAssociative()
	a.Learn("  ", "nothing")
	if a.Len() != 0 {
		t.Fatalf("expected empty prompt to be ignored")
	}
}
