package interview

import (
	"strings"

	"github.com/ashevtsov/interview-partner/internal/session"
)

const efficientTokenLimit = 6

// ApplyPersona transforms a raw candidate answer according to the selected
// persona. It is pure: no side effects, no model calls. The caller applies it
// before handing the answer to the controller, which never learns a transform
// happened.
func ApplyPersona(text string, persona session.Persona) string {
	t := strings.TrimSpace(text)

	switch persona {
	case session.PersonaConfused:
		return "Umm… I'm not fully sure but " + t + "?"
	case session.PersonaEfficient:
		tokens := strings.Fields(t)
		if len(tokens) > efficientTokenLimit {
			tokens = tokens[:efficientTokenLimit]
		}
		return strings.Join(tokens, " ")
	case session.PersonaChatty:
		return t + ". Actually that reminds me of something interesting…"
	case session.PersonaEdge:
		return t + " ?? maybe idk"
	default:
		return t
	}
}
