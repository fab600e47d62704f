package interview

import "strings"

// uncertaintyMarkers are tokens that signal hesitation. Matching is exact,
// on lower-cased whitespace-separated tokens.
var uncertaintyMarkers = map[string]struct{}{
	"maybe": {},
	"um":    {},
	"idk":   {},
}

const vagueTokenThreshold = 8

type analysis struct {
	vague     bool
	uncertain bool
}

// analyze runs the triage heuristic on a candidate answer: short answers are
// vague, answers containing an uncertainty marker are uncertain.
func analyze(answer string) analysis {
	tokens := strings.Fields(strings.ToLower(answer))

	result := analysis{vague: len(tokens) < vagueTokenThreshold}
	for _, token := range tokens {
		if _, ok := uncertaintyMarkers[token]; ok {
			result.uncertain = true
			break
		}
	}

	return result
}
