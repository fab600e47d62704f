package interview

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/ashevtsov/interview-partner/internal/ai"
	"github.com/ashevtsov/interview-partner/internal/prompts"
	"github.com/ashevtsov/interview-partner/internal/session"
)

type stubConversation struct {
	replies []string
	next    int
	err     error

	prompts []string
}

func (s *stubConversation) SendMessage(_ context.Context, message string) (string, error) {
	s.prompts = append(s.prompts, message)
	if s.err != nil {
		return "", s.err
	}
	if s.next < len(s.replies) {
		reply := s.replies[s.next]
		s.next++
		return reply, nil
	}
	return "What would you do next?", nil
}

func (s *stubConversation) lastPrompt() string {
	if len(s.prompts) == 0 {
		return ""
	}
	return s.prompts[len(s.prompts)-1]
}

type stubStarter struct {
	conv        *stubConversation
	instruction string
	err         error
}

func (s *stubStarter) StartConversation(_ context.Context, systemInstruction string) (ai.Conversation, error) {
	s.instruction = systemInstruction
	if s.err != nil {
		return nil, s.err
	}
	return s.conv, nil
}

func newTestController(t *testing.T, role session.Role, opts ...Option) (*Controller, *stubConversation) {
	t.Helper()

	conv := &stubConversation{}
	starter := &stubStarter{conv: conv}

	c, err := New(context.Background(), role, starter, zap.NewNop(), opts...)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.Contains(starter.instruction, "one question at a time") {
		t.Fatalf("expected base instruction, got %q", starter.instruction)
	}
	if !strings.Contains(starter.instruction, "Ask ONLY ONE question in your reply.") {
		t.Fatalf("expected format constraints in instruction, got %q", starter.instruction)
	}

	return c, conv
}

// detailedAnswer has well over 8 tokens and no uncertainty markers.
const detailedAnswer = "I led the migration of our billing system to a new platform over six months"

func TestNewSeedsRoleInstruction(t *testing.T) {
	conv := &stubConversation{}
	starter := &stubStarter{conv: conv}

	_, err := New(context.Background(), session.RoleEngineer, starter, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.Contains(starter.instruction, "software engineers") {
		t.Fatalf("expected engineer clause in instruction, got %q", starter.instruction)
	}
}

func TestNewPropagatesStarterFailure(t *testing.T) {
	starter := &stubStarter{err: errors.New("boom")}

	if _, err := New(context.Background(), session.RoleSales, starter, nil); err == nil {
		t.Fatal("expected error when conversation cannot be started")
	}
}

func TestStartInterviewRecordsOpeningTurn(t *testing.T) {
	c, conv := newTestController(t, session.RoleEngineer)
	conv.replies = []string{"Hello! Tell me about yourself."}

	reply := c.StartInterview(context.Background())

	if reply != "Hello! Tell me about yourself." {
		t.Fatalf("unexpected reply: %q", reply)
	}
	if c.QuestionCount() != 1 {
		t.Fatalf("expected question count 1, got %d", c.QuestionCount())
	}
	if !strings.Contains(conv.lastPrompt(), "Tell me about yourself.") {
		t.Fatalf("unexpected opening prompt: %q", conv.lastPrompt())
	}

	transcript := c.Transcript()
	if len(transcript) != 1 || transcript[0].Speaker != session.SpeakerInterviewer {
		t.Fatalf("unexpected transcript: %+v", transcript)
	}
}

func TestVagueAnswerTriggersProbeWithoutIncrement(t *testing.T) {
	c, conv := newTestController(t, session.RoleEngineer)
	c.StartInterview(context.Background())

	reply := c.ProcessAnswer(context.Background(), "maybe idk")

	if reply == "" {
		t.Fatal("expected a probe reply")
	}
	if !strings.Contains(conv.lastPrompt(), "probing follow-up question") {
		t.Fatalf("expected probe prompt, got %q", conv.lastPrompt())
	}
	if c.QuestionCount() != 1 {
		t.Fatalf("probe must not increment question count, got %d", c.QuestionCount())
	}
	if c.IsComplete() {
		t.Fatal("session must not be complete after a probe")
	}
}

func TestDetailedAnswerAdvancesToNextQuestion(t *testing.T) {
	c, conv := newTestController(t, session.RoleRetail)
	c.StartInterview(context.Background())

	c.ProcessAnswer(context.Background(), detailedAnswer)

	if !strings.Contains(conv.lastPrompt(), "next interview question for the role: retail") {
		t.Fatalf("expected next-question prompt, got %q", conv.lastPrompt())
	}
	if c.QuestionCount() != 2 {
		t.Fatalf("expected question count 2, got %d", c.QuestionCount())
	}
}

func TestUncertainDetailedAnswerAppendsEncouragement(t *testing.T) {
	c, conv := newTestController(t, session.RoleSales, WithPicker(func(int) int { return 3 }))
	c.StartInterview(context.Background())

	// 8 tokens including an uncertainty marker, so not vague but uncertain.
	c.ProcessAnswer(context.Background(), "um I negotiated the contract renewal with procurement last quarter")

	if !strings.Contains(conv.lastPrompt(), prompts.Encouragements[3]) {
		t.Fatalf("expected encouragement %q in prompt %q", prompts.Encouragements[3], conv.lastPrompt())
	}
	if c.QuestionCount() != 2 {
		t.Fatalf("expected question count 2, got %d", c.QuestionCount())
	}
}

func TestConfidentAnswerOmitsEncouragement(t *testing.T) {
	c, conv := newTestController(t, session.RoleSales, WithPicker(func(int) int { return 0 }))
	c.StartInterview(context.Background())

	c.ProcessAnswer(context.Background(), detailedAnswer)

	for _, phrase := range prompts.Encouragements {
		if strings.Contains(conv.lastPrompt(), phrase) {
			t.Fatalf("unexpected encouragement %q in prompt %q", phrase, conv.lastPrompt())
		}
	}
}

func TestClosingFiresOnceAtQuota(t *testing.T) {
	c, conv := newTestController(t, session.RoleBehavioral, WithMaxQuestions(2))
	c.StartInterview(context.Background())

	c.ProcessAnswer(context.Background(), detailedAnswer)
	if c.IsComplete() {
		t.Fatal("must not be complete before the closing turn")
	}

	c.ProcessAnswer(context.Background(), detailedAnswer)

	if !strings.Contains(conv.lastPrompt(), "Do you have any questions for me?") {
		t.Fatalf("expected closing prompt, got %q", conv.lastPrompt())
	}
	if c.QuestionCount() != 3 {
		t.Fatalf("expected count max+1 after closing, got %d", c.QuestionCount())
	}
	if !c.IsComplete() {
		t.Fatal("expected completion after the closing turn")
	}
}

func TestVagueAnswerAtQuotaStillCloses(t *testing.T) {
	c, conv := newTestController(t, session.RoleEngineer, WithMaxQuestions(1))
	c.StartInterview(context.Background())

	// Vague, but the quota is already reached so closing wins.
	c.ProcessAnswer(context.Background(), "idk")

	if !strings.Contains(conv.lastPrompt(), "Do you have any questions for me?") {
		t.Fatalf("expected closing prompt, got %q", conv.lastPrompt())
	}
	if !c.IsComplete() {
		t.Fatal("expected completion")
	}
}

func TestEmptyReplyFallback(t *testing.T) {
	c, conv := newTestController(t, session.RoleEngineer)
	conv.replies = []string{"   "}

	reply := c.StartInterview(context.Background())

	if reply != emptyReplyFallback {
		t.Fatalf("expected fallback reply, got %q", reply)
	}
}

func TestModelFailureDowngradedToFallback(t *testing.T) {
	c, conv := newTestController(t, session.RoleEngineer)
	conv.err = errors.New("transport down")

	reply := c.StartInterview(context.Background())

	if reply != emptyReplyFallback {
		t.Fatalf("expected fallback reply, got %q", reply)
	}

	reply = c.ProcessAnswer(context.Background(), detailedAnswer)
	if reply != emptyReplyFallback {
		t.Fatalf("expected fallback reply, got %q", reply)
	}
}

// TestFullEngineerRun walks a complete session with the default quota: a
// candidate who always answers in detail gets the opening, six follow-on
// questions and one closing turn, 15 turns in total.
func TestFullEngineerRun(t *testing.T) {
	c, _ := newTestController(t, session.RoleEngineer)
	c.StartInterview(context.Background())

	answers := 0
	for !c.IsComplete() {
		c.ProcessAnswer(context.Background(), detailedAnswer)
		answers++
		if answers > 20 {
			t.Fatal("interview did not complete")
		}
	}

	if answers != DefaultMaxQuestions {
		t.Fatalf("expected %d candidate answers, got %d", DefaultMaxQuestions, answers)
	}

	transcript := c.Transcript()
	wantTurns := 2*DefaultMaxQuestions + 1
	if len(transcript) != wantTurns {
		t.Fatalf("expected %d turns, got %d", wantTurns, len(transcript))
	}

	interviewer := 0
	for _, turn := range transcript {
		if turn.Speaker == session.SpeakerInterviewer {
			interviewer++
		}
	}
	if interviewer != DefaultMaxQuestions+1 {
		t.Fatalf("expected %d interviewer turns, got %d", DefaultMaxQuestions+1, interviewer)
	}

	if last := transcript[len(transcript)-1]; last.Speaker != session.SpeakerInterviewer {
		t.Fatalf("expected the transcript to end with the interviewer, got %+v", last)
	}

	if c.QuestionCount() != DefaultMaxQuestions+1 {
		t.Fatalf("expected final count %d, got %d", DefaultMaxQuestions+1, c.QuestionCount())
	}
}

func TestTranscriptTextLabelsSpeakers(t *testing.T) {
	c, conv := newTestController(t, session.RoleEngineer)
	conv.replies = []string{"Tell me about yourself.", "Why Go?"}

	c.StartInterview(context.Background())
	c.ProcessAnswer(context.Background(), detailedAnswer)

	text := c.TranscriptText()
	lines := strings.Split(text, "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d: %q", len(lines), text)
	}
	if !strings.HasPrefix(lines[0], "Interviewer: ") {
		t.Fatalf("unexpected first line: %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "Candidate: ") {
		t.Fatalf("unexpected second line: %q", lines[1])
	}
}

func TestTranscriptReturnsCopy(t *testing.T) {
	c, _ := newTestController(t, session.RoleEngineer)
	c.StartInterview(context.Background())

	first := c.Transcript()
	first[0].Text = "mutated"

	if c.Transcript()[0].Text == "mutated" {
		t.Fatal("transcript must not share backing storage with callers")
	}
}
