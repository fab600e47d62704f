// Package feedback requests a structured quality evaluation of a finished
// interview transcript and parses it into a fixed score schema.
package feedback

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/ashevtsov/interview-partner/internal/utils"
)

type contentGenerator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
}

const defaultMaxLogLength = 200

// Analyzer builds the evaluation prompt, runs one-shot generation and decodes
// the result. It never returns an error: any failure yields the fallback record.
type Analyzer struct {
	generator contentGenerator
	logger    *zap.Logger
	maxLogLen int
}

// NewAnalyzer creates an Analyzer around the given one-shot generator.
func NewAnalyzer(generator contentGenerator, logger *zap.Logger, maxLogLength int) *Analyzer {
	if logger == nil {
		logger = zap.NewNop()
	}
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}
	return &Analyzer{
		generator: generator,
		logger:    logger,
		maxLogLen: maxLogLength,
	}
}

// AnalyzeInterview evaluates the transcript for the given role. The returned
// record is always fully populated.
func (a *Analyzer) AnalyzeInterview(ctx context.Context, role, transcript string) *Record {
	prompt := buildPrompt(role, transcript)

	a.logger.Debug("feedback generation request",
		zap.String("role", role),
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", utils.TruncateForLog(prompt, a.maxLogLen)),
	)

	raw, err := a.generator.GenerateContent(ctx, prompt)
	if err != nil {
		a.logger.Warn("feedback generation failed", zap.Error(err))
		return fallbackRecord(raw)
	}
	raw = strings.TrimSpace(raw)

	a.logger.Debug("feedback generation response",
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", utils.TruncateForLog(raw, a.maxLogLen)),
	)

	record, err := parseRecord(raw)
	if err != nil {
		a.logger.Warn("falling back to generic feedback", zap.Error(err))
		return fallbackRecord(raw)
	}

	return record
}

// parseRecord strips accidental code fences and a leading json language tag,
// then attempts a strict decode into the record schema.
func parseRecord(raw string) (*Record, error) {
	cleaned := raw
	if strings.HasPrefix(cleaned, "```") {
		cleaned = strings.Trim(cleaned, "`")
	}
	if strings.HasPrefix(cleaned, "json") {
		cleaned = cleaned[len("json"):]
	}

	var record Record
	if err := json.Unmarshal([]byte(cleaned), &record); err != nil {
		return nil, fmt.Errorf("decode feedback json: %w", err)
	}

	if !record.valid() {
		return nil, fmt.Errorf("feedback record failed schema validation")
	}

	return &record, nil
}

func buildPrompt(role, transcript string) string {
	var b strings.Builder
	b.WriteString("You are an interview evaluation assistant.\n\n")
	fmt.Fprintf(&b, "Evaluate the following mock interview for a **%s** role.\n\n", role)
	b.WriteString("Provide structured results.\n\n")
	b.WriteString("Return your feedback in EXACTLY the following JSON format:\n\n")
	b.WriteString(`{
  "overall_score": <number 1-10>,
  "scores": {
    "communication": <1-10>,
    "structure": <1-10>,
    "confidence": <1-10>,
    "content_quality": <1-10>,
    "role_fit": <1-10>
  },
  "strengths": [
    "<strength 1>",
    "<strength 2>",
    "<strength 3>"
  ],
  "improvements": [
    "<improvement 1>",
    "<improvement 2>",
    "<improvement 3>"
  ],
  "best_answer": "<text>",
  "needs_work": "<text>",
  "summary": "<2-3 sentence summary>"
}`)
	b.WriteString("\n\nInterview Transcript:\n")
	b.WriteString(transcript)
	b.WriteString("\n\nIMPORTANT RULES:\n")
	b.WriteString("- Do NOT include explanations outside the JSON.\n")
	b.WriteString("- Do NOT add any markdown.\n")
	b.WriteString("- Return ONLY the JSON object.\n")
	return b.String()
}
