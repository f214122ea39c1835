// Package scoring derives the three mandatory well-being metrics from entry
// text when the classifier did not supply explicit values.
package scoring

import (
	"math"
	"strings"
)

// Neutral is the score used when no keyword rule matches.
const Neutral = 5

// rule maps a keyword set to the score inferred when any keyword occurs in
// the text. Rules are checked in order; the first match wins.
type rule struct {
	keywords []string
	score    int
}

var moodRules = []rule{
	{[]string{"exhausted", "tired", "guilty", "sad", "depressed"}, 3},
	{[]string{"good", "happy", "won", "excited", "great"}, 8},
	{[]string{"okay", "fine", "normal"}, 6},
}

var energyRules = []rule{
	{[]string{"exhausted", "tired", "drained", "worn out"}, 2},
	{[]string{"energetic", "excited", "active", "pumped"}, 8},
}

var productivityRules = []rule{
	{[]string{"working", "solved", "completed", "won", "finished"}, 8},
	{[]string{"bug", "couldn't", "failed", "stuck"}, 3},
}

func infer(text string, rules []rule) int {
	lowered := strings.ToLower(text)
	for _, r := range rules {
		for _, kw := range r.keywords {
			if strings.Contains(lowered, kw) {
				return r.score
			}
		}
	}
	return Neutral
}

func InferMood(text string) int         { return infer(text, moodRules) }
func InferEnergy(text string) int       { return infer(text, energyRules) }
func InferProductivity(text string) int { return infer(text, productivityRules) }

// Clamp bounds the value into [1,10], rounding to the nearest integer. Every
// stored score, inferred or caller-supplied, goes through this.
func Clamp(v float64) int {
	// Bound in float space; converting an out-of-range float to int is
	// implementation defined.
	if v < 1 {
		return 1
	}
	if v > 10 {
		return 10
	}
	return int(math.Round(v))
}
