package feedback

// Scores holds the five named sub-scores, each on a 1-10 scale.
type Scores struct {
	Communication  int `json:"communication"`
	Structure      int `json:"structure"`
	Confidence     int `json:"confidence"`
	ContentQuality int `json:"content_quality"`
	RoleFit        int `json:"role_fit"`
}

// Record is the structured evaluation produced once per completed session.
// A record handed to callers is always fully populated: either the model's
// well-formed output or the built-in fallback.
type Record struct {
	OverallScore int      `json:"overall_score"`
	Scores       Scores   `json:"scores"`
	Strengths    []string `json:"strengths"`
	Improvements []string `json:"improvements"`
	BestAnswer   string   `json:"best_answer"`
	NeedsWork    string   `json:"needs_work"`
	Summary      string   `json:"summary"`
}

// valid reports whether the decoded record satisfies the schema: every score
// inside [1,10] and both lists populated. Anything else takes the fallback
// path, the same as a JSON decode error.
func (r *Record) valid() bool {
	scores := []int{
		r.OverallScore,
		r.Scores.Communication,
		r.Scores.Structure,
		r.Scores.Confidence,
		r.Scores.ContentQuality,
		r.Scores.RoleFit,
	}
	for _, s := range scores {
		if s < 1 || s > 10 {
			return false
		}
	}
	return len(r.Strengths) > 0 && len(r.Improvements) > 0
}

// fallbackRecord returns the deterministic record substituted when structured
// generation fails. The raw model output is kept as the summary so a human
// can still read what the model said.
func fallbackRecord(raw string) *Record {
	return &Record{
		OverallScore: 7,
		Scores: Scores{
			Communication:  7,
			Structure:      7,
			Confidence:     7,
			ContentQuality: 7,
			RoleFit:        7,
		},
		Strengths:    []string{"Good participation", "Clear answers", "Professional tone"},
		Improvements: []string{"More examples needed", "Use STAR format", "Give measurable results"},
		BestAnswer:   "N/A",
		NeedsWork:    "N/A",
		Summary:      raw,
	}
}
