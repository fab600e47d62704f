package session

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"
)

const defaultListLimit = 50

// Store persists finished session records as one JSON file per session,
// named {session_id}_{role}.json. Writes are best-effort: a failed save is
// logged and reported through an empty path, and callers proceed without
// persistence.
type Store struct {
	dir    string
	logger *zap.Logger
}

// Summary is the condensed view of a stored session used by listings and
// statistics.
type Summary struct {
	SessionID       string  `json:"session_id"`
	Role            Role    `json:"role"`
	Persona         Persona `json:"persona"`
	Timestamp       string  `json:"timestamp"`
	DurationSeconds int     `json:"duration_seconds"`
	OverallScore    int     `json:"overall_score"`
	QuestionCount   int     `json:"question_count"`
	Filename        string  `json:"filename"`
}

// Stats aggregates the saved session history.
type Stats struct {
	TotalInterviews   int
	AverageScore      float64
	RolesDistribution map[Role]int
	LatestInterview   *Summary
}

// NewStore creates the session directory if needed and returns a Store.
func NewStore(dir string, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create sessions dir: %w", err)
	}
	return &Store{dir: dir, logger: logger}, nil
}

// Save writes the record and returns the resulting path. On failure the path
// is empty and the error describes what went wrong; records are never
// partially updated in place.
func (s *Store) Save(record *Record) (string, error) {
	if record == nil {
		return "", fmt.Errorf("record is required")
	}

	sessionID := record.SessionID
	if sessionID == "" {
		sessionID = NewSessionID(time.Now())
		record.SessionID = sessionID
	}

	role := record.Role
	if role == "" {
		role = "unknown"
	}

	record.SavedAt = time.Now().Format(time.RFC3339)

	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal session record: %w", err)
	}

	path := filepath.Join(s.dir, fmt.Sprintf("%s_%s.json", sessionID, role))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write session record: %w", err)
	}

	s.logger.Debug("saved session", zap.String("session_id", sessionID), zap.String("path", path))

	return path, nil
}

// Load returns the record stored under the given session id, or nil when no
// matching file exists.
func (s *Store) Load(sessionID string) (*Record, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("read sessions dir: %w", err)
	}

	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasPrefix(name, sessionID) || !strings.HasSuffix(name, ".json") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(s.dir, name))
		if err != nil {
			return nil, fmt.Errorf("read session record: %w", err)
		}

		var record Record
		if err := json.Unmarshal(data, &record); err != nil {
			return nil, fmt.Errorf("decode session record %s: %w", name, err)
		}

		return &record, nil
	}

	return nil, nil
}

// List returns session summaries, newest first by modification time.
func (s *Store) List(limit int) []Summary {
	if limit <= 0 {
		limit = defaultListLimit
	}

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		s.logger.Warn("listing sessions failed", zap.Error(err))
		return nil
	}

	type candidate struct {
		name    string
		modTime time.Time
	}

	files := make([]candidate, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		files = append(files, candidate{name: entry.Name(), modTime: info.ModTime()})
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].modTime.After(files[j].modTime)
	})

	summaries := make([]Summary, 0, limit)
	for _, file := range files {
		if len(summaries) >= limit {
			break
		}

		data, err := os.ReadFile(filepath.Join(s.dir, file.name))
		if err != nil {
			s.logger.Warn("reading session file failed", zap.String("filename", file.name), zap.Error(err))
			continue
		}

		var record Record
		if err := json.Unmarshal(data, &record); err != nil {
			s.logger.Warn("decoding session file failed", zap.String("filename", file.name), zap.Error(err))
			continue
		}

		summaries = append(summaries, summarize(&record, file.name))
	}

	return summaries
}

// Delete removes the session stored under the given id. It reports whether a
// matching record was deleted.
func (s *Store) Delete(sessionID string) bool {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		s.logger.Warn("listing sessions failed", zap.Error(err))
		return false
	}

	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasPrefix(name, sessionID) || !strings.HasSuffix(name, ".json") {
			continue
		}
		if err := os.Remove(filepath.Join(s.dir, name)); err != nil {
			s.logger.Warn("deleting session failed", zap.String("filename", name), zap.Error(err))
			return false
		}
		return true
	}

	return false
}

// Stats aggregates up to 500 most recent sessions: total count, mean overall
// score rounded to two decimals, role distribution and the latest summary.
func (s *Store) Stats() Stats {
	sessions := s.List(500)

	stats := Stats{RolesDistribution: map[Role]int{}}
	if len(sessions) == 0 {
		return stats
	}

	stats.TotalInterviews = len(sessions)

	sum := 0
	for i := range sessions {
		sum += sessions[i].OverallScore
		stats.RolesDistribution[sessions[i].Role]++
	}

	average := float64(sum) / float64(len(sessions))
	stats.AverageScore = math.Round(average*100) / 100
	stats.LatestInterview = &sessions[0]

	return stats
}

func summarize(record *Record, filename string) Summary {
	score := 0
	if record.Feedback != nil {
		score = record.Feedback.OverallScore
	}

	questions := 0
	for _, turn := range record.Messages {
		if turn.Speaker == SpeakerInterviewer {
			questions++
		}
	}

	return Summary{
		SessionID:       record.SessionID,
		Role:            record.Role,
		Persona:         record.Persona,
		Timestamp:       record.TimestampStart,
		DurationSeconds: record.DurationSeconds,
		OverallScore:    score,
		QuestionCount:   questions,
		Filename:        filename,
	}
}
