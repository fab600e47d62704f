// Package interview holds the dialogue controller: per-session conversational
// state, the triage heuristic deciding between probing, advancing and closing,
// and the persona transforms applied to candidate answers.
package interview

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ashevtsov/interview-partner/internal/ai"
	"github.com/ashevtsov/interview-partner/internal/prompts"
	"github.com/ashevtsov/interview-partner/internal/session"
)

const (
	// DefaultMaxQuestions is the question quota before the closing turn.
	DefaultMaxQuestions = 7

	// emptyReplyFallback replaces an empty or whitespace-only model reply.
	emptyReplyFallback = "Could you explain that more clearly?"

	openingPrompt = "Greet the candidate briefly. Then ask ONE question: " +
		"'Tell me about yourself.'"
	probePrompt = "Ask ONE probing follow-up question requesting clarity " +
		"or a specific example."
	closingPrompt = "Thank the candidate and ask ONE final question: " +
		"'Do you have any questions for me?'"
)

// formatConstraints are appended verbatim to every system instruction to keep
// the model's output shape under control.
const formatConstraints = "\nAsk ONLY ONE question in your reply." +
	"\nDo NOT ask multiple questions." +
	"\nKeep replies 1–3 sentences maximum."

// Controller drives one interview session. It owns the transcript and the
// question counter and decides the next conversational action from the triage
// heuristic. Not safe for concurrent use; one candidate turn at a time.
type Controller struct {
	role         session.Role
	maxQuestions int
	conv         ai.Conversation
	logger       *zap.Logger

	questionCount int
	transcript    []session.Turn
	pick          func(n int) int
}

// Option customizes a Controller.
type Option func(*Controller)

// WithPicker overrides the pseudo-random index picker used for encouragement
// phrase selection. Tests use it to make runs deterministic.
func WithPicker(pick func(n int) int) Option {
	return func(c *Controller) {
		c.pick = pick
	}
}

// WithMaxQuestions overrides the question quota.
func WithMaxQuestions(maxQuestions int) Option {
	return func(c *Controller) {
		if maxQuestions > 0 {
			c.maxQuestions = maxQuestions
		}
	}
}

// New builds the system instruction for the role, opens a model conversation
// seeded with it and returns a controller ready to start the interview.
func New(ctx context.Context, role session.Role, starter ai.ChatStarter, logger *zap.Logger, opts ...Option) (*Controller, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	c := &Controller{
		role:         role,
		maxQuestions: DefaultMaxQuestions,
		logger:       logger,
		pick:         rng.Intn,
	}

	for _, opt := range opts {
		opt(c)
	}

	instruction := prompts.SystemInstruction(string(role)) + formatConstraints

	conv, err := starter.StartConversation(ctx, instruction)
	if err != nil {
		return nil, fmt.Errorf("start conversation: %w", err)
	}
	c.conv = conv

	return c, nil
}

// StartInterview asks the fixed opening question and returns the interviewer's
// first turn. It always succeeds: model failures degrade to fixed text.
func (c *Controller) StartInterview(ctx context.Context) string {
	reply := c.send(ctx, openingPrompt)
	c.recordInterviewer(reply)
	c.questionCount++
	return reply
}

// ProcessAnswer records the candidate answer, triages it and issues the next
// conversational action: probe, closing or next question.
func (c *Controller) ProcessAnswer(ctx context.Context, answer string) string {
	c.recordCandidate(answer)
	result := analyze(answer)

	c.logger.Debug("triaged answer",
		zap.Bool("vague", result.vague),
		zap.Bool("uncertain", result.uncertain),
		zap.Int("question_count", c.questionCount),
	)

	if result.vague && c.questionCount < c.maxQuestions {
		return c.probe(ctx)
	}

	if c.questionCount >= c.maxQuestions {
		return c.closing(ctx)
	}

	return c.nextQuestion(ctx, result)
}

// probe asks for clarity or an example. It does not count toward the quota.
func (c *Controller) probe(ctx context.Context) string {
	reply := c.send(ctx, probePrompt)
	c.recordInterviewer(reply)
	return reply
}

func (c *Controller) nextQuestion(ctx context.Context, result analysis) string {
	encouragement := ""
	if result.uncertain {
		encouragement = prompts.Encouragements[c.pick(len(prompts.Encouragements))]
	}

	prompt := fmt.Sprintf(
		"Ask ONE next interview question for the role: %s. "+
			"Keep it short, job-related, and professional. %s",
		c.role, encouragement,
	)

	reply := c.send(ctx, prompt)
	c.recordInterviewer(reply)
	c.questionCount++
	return reply
}

// closing thanks the candidate and asks the fixed final question. This is the
// turn that pushes the session past completion.
func (c *Controller) closing(ctx context.Context) string {
	reply := c.send(ctx, closingPrompt)
	c.recordInterviewer(reply)
	c.questionCount++
	return reply
}

// send issues one model call and applies the empty-reply fallback. The
// controller never surfaces a model failure to the caller.
func (c *Controller) send(ctx context.Context, prompt string) string {
	reply, err := c.conv.SendMessage(ctx, prompt)
	if err != nil {
		c.logger.Warn("model call failed", zap.Error(err))
		reply = ""
	}
	if strings.TrimSpace(reply) == "" {
		reply = emptyReplyFallback
	}
	return reply
}

// IsComplete reports whether the closing turn has been asked. Completion
// requires the count to pass the quota by exactly one, which guarantees a
// transcript ends with exactly one closing turn, never two.
func (c *Controller) IsComplete() bool {
	return c.questionCount >= c.maxQuestions+1
}

// QuestionCount returns the number of quota-counted questions asked so far.
func (c *Controller) QuestionCount() int {
	return c.questionCount
}

// Transcript returns a copy of the recorded turns in conversation order.
func (c *Controller) Transcript() []session.Turn {
	out := make([]session.Turn, len(c.transcript))
	copy(out, c.transcript)
	return out
}

// TranscriptText renders the transcript as role-labelled lines. It feeds the
// feedback evaluator, not the UI.
func (c *Controller) TranscriptText() string {
	lines := make([]string, 0, len(c.transcript))
	for _, turn := range c.transcript {
		label := "Candidate"
		if turn.Speaker == session.SpeakerInterviewer {
			label = "Interviewer"
		}
		lines = append(lines, fmt.Sprintf("%s: %s", label, turn.Text))
	}
	return strings.Join(lines, "\n")
}

func (c *Controller) recordInterviewer(text string) {
	c.transcript = append(c.transcript, session.Turn{Speaker: session.SpeakerInterviewer, Text: text})
}

func (c *Controller) recordCandidate(text string) {
	c.transcript = append(c.transcript, session.Turn{Speaker: session.SpeakerCandidate, Text: text})
}
