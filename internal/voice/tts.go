// Package voice holds the optional speech collaborators. Both directions are
// best-effort: failures are logged and reported through sentinel values so
// the interview core never blocks on audio.
package voice

import (
	"bytes"
	"context"
	"crypto/md5"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
)

// maxChunkLen bounds the text length per synthesis request. Longer text is
// split on word boundaries and the audio segments concatenated.
const maxChunkLen = 180

// Synthesizer turns one bounded text chunk into audio bytes.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
}

// Speaker wraps a Synthesizer with a flat content-hash cache of mp3
// artifacts, so identical text is synthesized once.
type Speaker struct {
	synth    Synthesizer
	cacheDir string
	logger   *zap.Logger
}

// NewSpeaker creates the audio cache directory if needed.
func NewSpeaker(synth Synthesizer, cacheDir string, logger *zap.Logger) (*Speaker, error) {
	if synth == nil {
		return nil, errors.New("synthesizer is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		return nil, fmt.Errorf("create audio cache dir: %w", err)
	}
	return &Speaker{synth: synth, cacheDir: cacheDir, logger: logger}, nil
}

// ToSpeech returns the path to a synthesized audio artifact for the text,
// reusing the cached artifact when one exists. An empty path means the
// feature is unavailable for this utterance.
func (s *Speaker) ToSpeech(ctx context.Context, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", errors.New("text must not be empty")
	}

	path := s.cachePath(text)
	if _, err := os.Stat(path); err == nil {
		s.logger.Debug("audio cache hit", zap.String("path", path))
		return path, nil
	}

	var audio bytes.Buffer
	for _, chunk := range chunkText(text, maxChunkLen) {
		segment, err := s.synth.Synthesize(ctx, chunk)
		if err != nil {
			s.logger.Warn("synthesizing chunk failed", zap.Error(err))
			return "", fmt.Errorf("synthesize chunk: %w", err)
		}
		audio.Write(segment)
	}

	if err := os.WriteFile(path, audio.Bytes(), 0o644); err != nil {
		s.logger.Warn("writing audio artifact failed", zap.Error(err))
		return "", fmt.Errorf("write audio artifact: %w", err)
	}

	return path, nil
}

// ClearCache removes every cached artifact.
func (s *Speaker) ClearCache() error {
	entries, err := os.ReadDir(s.cacheDir)
	if err != nil {
		return fmt.Errorf("read audio cache dir: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".mp3") {
			continue
		}
		if err := os.Remove(filepath.Join(s.cacheDir, entry.Name())); err != nil {
			return fmt.Errorf("remove cached artifact: %w", err)
		}
	}

	return nil
}

func (s *Speaker) cachePath(text string) string {
	hash := md5.Sum([]byte(text))
	return filepath.Join(s.cacheDir, fmt.Sprintf("%x.mp3", hash))
}

// chunkText splits text into chunks no longer than maxLen, breaking on word
// boundaries. A single word longer than maxLen becomes its own chunk.
func chunkText(text string, maxLen int) []string {
	words := strings.Fields(text)

	var chunks []string
	var current []string
	length := 0

	for _, word := range words {
		candidate := length + len(word)
		if len(current) > 0 {
			candidate++ // joining space
		}
		if candidate > maxLen && len(current) > 0 {
			chunks = append(chunks, strings.Join(current, " "))
			current = current[:0]
			length = 0
		}
		if len(current) > 0 {
			length++
		}
		current = append(current, word)
		length += len(word)
	}

	if len(current) > 0 {
		chunks = append(chunks, strings.Join(current, " "))
	}

	return chunks
}

const translateTTSEndpoint = "https://translate.google.com/translate_tts"

// TranslateSynthesizer fetches mp3 audio from the public Google Translate
// text-to-speech endpoint.
type TranslateSynthesizer struct {
	client   *http.Client
	language string
}

// NewTranslateSynthesizer returns a synthesizer speaking the given language.
func NewTranslateSynthesizer(language string) *TranslateSynthesizer {
	if strings.TrimSpace(language) == "" {
		language = "en"
	}
	return &TranslateSynthesizer{
		client:   &http.Client{Timeout: 30 * time.Second},
		language: language,
	}
}

// Synthesize fetches audio for one text chunk.
func (t *TranslateSynthesizer) Synthesize(ctx context.Context, text string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, translateTTSEndpoint, nil)
	if err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("ie", "UTF-8")
	q.Set("client", "tw-ob")
	q.Set("tl", t.language)
	q.Set("q", text)
	req.URL.RawQuery = q.Encode()

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tts request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("tts bad status: %s", resp.Status)
	}

	return io.ReadAll(resp.Body)
}
