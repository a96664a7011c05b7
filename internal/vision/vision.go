// Package vision scores how fleshed out an idea is while it is being typed.
package vision

import (
	"strings"
	"time"
	"unicode/utf8"
)

// FinalizeThreshold is the strength above which the submit control reads "Finalize Synthesis".
const FinalizeThreshold = 85

var (
	emptyTips  = []string{"Initialize your vision. The engine awaits.", "Every empire begins with a single prompt."}
	shortTips  = []string{"Analyzing core spark... Feed the model more detail.", "Define your 'Unfair Advantage' to strengthen the blueprint."}
	mediumTips = []string{"Signal detected. The market gap is becoming visible.", "Strategic alignment is strong. Proceed to finalize?"}
	longTips   = []string{"Maximum Clarity. You have constructed a high-fidelity vision.", "Ready for Synthesis. This is an investor-grade draft."}
)

func length(idea string) int {
	return utf8.RuneCountInString(strings.TrimSpace(idea))
}

// Strength maps the trimmed idea length to 0..100.
func Strength(idea string) int {
	s := length(idea) * 2 / 7 // floor(len / 3.5)
	if s > 100 {
		return 100
	}
	return s
}

// Tip picks the coaching line for the idea. The empty-idea tip rotates every five seconds.
func Tip(idea string, now time.Time) string {
	n := length(idea)
	switch {
	case n == 0:
		return emptyTips[int(now.Unix()/5)%len(emptyTips)]
	case n < 60:
		return shortTips[0]
	case n < 250:
		return mediumTips[(n/120)%len(mediumTips)]
	default:
		return longTips[0]
	}
}

// Level buckets a strength into four bands for coloring: 0 (<20), 1 (<50), 2 (<85), 3.
func Level(strength int) int {
	switch {
	case strength < 20:
		return 0
	case strength < 50:
		return 1
	case strength < FinalizeThreshold:
		return 2
	default:
		return 3
	}
}

func SubmitLabel(strength int) string {
	if strength > FinalizeThreshold {
		return "Finalize Synthesis"
	}
	return "Begin Synthesis"
}
