// Package prompts holds the pure prompt library: system instructions per
// interview role and the canned phrase lists the dialogue controller samples
// from. Everything here is stateless.
package prompts

const base = "You are a professional interviewer. " +
	"Ask only one question at a time. " +
	"Keep replies short, clear and professional. " +
	"Do not ask multiple questions. " +
	"Stay strictly in the interviewer role."

var roleFocus = map[string]string{
	"sales": "You interview sales candidates. " +
		"Ask about negotiation, targets, customer handling and communication.",
	"engineer": "You interview software engineers. " +
		"Ask technical, debugging, problem-solving and teamwork questions.",
	"retail": "You interview retail associates. " +
		"Ask about customer service, conflict handling and teamwork.",
	"behavioral": "You conduct behavioral interviews. " +
		"Ask STAR-based questions about conflict, leadership and decisions.",
}

// SystemInstruction returns the interviewer persona for the given role.
// Unknown roles get a generic professional-interview clause.
func SystemInstruction(role string) string {
	focus, ok := roleFocus[role]
	if !ok {
		focus = "Ask professional interview questions."
	}
	return base + " " + focus
}

// Encouragements are appended to the next-question instruction when the
// candidate sounded uncertain. They shape tone only and are never recorded.
var Encouragements = []string{
	"Take your time.",
	"You're doing well.",
	"Feel free to think it through.",
	"No rush.",
	"Continue when ready.",
}

// Probes are single-sentence follow-up phrasings. The controller currently
// asks the model to generate its own probe instead of sampling this list.
var Probes = []string{
	"Can you share a specific example?",
	"What exactly was your role in that?",
	"What result did you achieve?",
	"What challenge did you face and how did you handle it?",
	"Can you explain that a bit more clearly?",
}
