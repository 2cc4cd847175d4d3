// Package memory provides a small associative responder for free-text commits.
package memory

import (
	"strings"
	"unicode"
)

// Pair is one learned prompt and its reply.
type Pair struct {
	Prompt   string `yaml:"prompt" env:"PROMPT"`
	Response string `yaml:"response" env:"RESPONSE"`
}

type entry struct {
	tokens   map[string]struct{}
	response string
}

// Associative answers with the reply whose prompt shares the most words with the
// input. Confidence is the Jaccard similarity of the two word sets.
type Associative struct {
	entries []entry
}

// NewAssociative seeds a responder with pairs.
func NewAssociative(pairs ...Pair) *Associative {
	a := &Associative{}
	for _, p := range pairs {
		a.Learn(p.Prompt, p.Response)
	}
	return a
}

// Learn stores prompt -> response. Empty prompts are ignored.
func (a *Associative) Learn(prompt, response string) {
	tokens := tokenize(prompt)
	if len(tokens) == 0 {
		return
	}
	a.entries = append(a.entries, entry{tokens: tokens, response: response})
}

// Len reports how many pairs have been learned.
func (a *Associative) Len() int { return len(a.entries) }

// Respond returns the best match, or "" with zero confidence when nothing overlaps.
// Ties go to the earliest learned pair.
func (a *Associative) Respond(text string) (string, float64) {
	query := tokenize(text)
	if len(query) == 0 {
		return "", 0
	}
	best, bestScore := "", 0.0
	for _, e := range a.entries {
		shared := 0
		for tok := range query {
			if _, ok := e.tokens[tok]; ok {
				shared++
			}
		}
		if shared == 0 {
			continue
		}
		score := float64(shared) / float64(len(query)+len(e.tokens)-shared)
		if score > bestScore {
			best, bestScore = e.response, score
		}
	}
	return best, bestScore
}

func tokenize(s string) map[string]struct{} {
	words := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	out := make(map[string]struct{}, len(words))
	for _, w := range words {
		out[w] = struct{}{}
	}
	return out
}
