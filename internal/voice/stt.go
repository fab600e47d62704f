package voice

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Recognition failures are distinguishable by the caller but all non-fatal:
// each simply yields no text for the utterance.
var (
	// ErrTimeout means no speech arrived before the deadline.
	ErrTimeout = errors.New("speech recognition timed out")
	// ErrUnintelligible means audio was received but not understood.
	ErrUnintelligible = errors.New("speech could not be understood")
	// ErrTransport means the recognition service was unreachable or failed.
	ErrTransport = errors.New("speech recognition transport failed")
)

// Recognizer converts one audio stream into text.
type Recognizer interface {
	Recognize(ctx context.Context, audio io.Reader) (string, error)
}

// Transcriber wraps a Recognizer with logging and the absent-result policy:
// on any failure the text is empty and the sentinel error explains why.
type Transcriber struct {
	recognizer Recognizer
	logger     *zap.Logger
	timeout    time.Duration
}

// NewTranscriber returns a Transcriber. A zero timeout defaults to ten
// seconds per utterance.
func NewTranscriber(recognizer Recognizer, logger *zap.Logger, timeout time.Duration) *Transcriber {
	if logger == nil {
		logger = zap.NewNop()
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Transcriber{recognizer: recognizer, logger: logger, timeout: timeout}
}

// Available reports whether a recognizer is configured.
func (t *Transcriber) Available() bool {
	return t != nil && t.recognizer != nil
}

// Transcribe recognizes speech from the audio stream. The returned error is
// one of the package sentinels; callers treat it as "no text this time".
func (t *Transcriber) Transcribe(ctx context.Context, audio io.Reader) (string, error) {
	if !t.Available() {
		return "", ErrTransport
	}

	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	text, err := t.recognizer.Recognize(ctx, audio)
	if err != nil {
		switch {
		case errors.Is(err, context.DeadlineExceeded), errors.Is(err, ErrTimeout):
			t.logger.Warn("speech recognition timed out")
			return "", ErrTimeout
		case errors.Is(err, ErrUnintelligible):
			t.logger.Warn("speech not understood")
			return "", ErrUnintelligible
		default:
			t.logger.Warn("speech recognition failed", zap.Error(err))
			return "", ErrTransport
		}
	}

	return strings.TrimSpace(text), nil
}

// TranscribeFile recognizes speech from a recorded audio file.
func (t *Transcriber) TranscribeFile(ctx context.Context, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		t.logger.Warn("opening audio file failed", zap.String("path", path), zap.Error(err))
		return "", ErrTransport
	}
	defer f.Close()

	return t.Transcribe(ctx, f)
}

const webSpeechEndpoint = "http://www.google.com/speech-api/v2/recognize"

// WebSpeechRecognizer posts FLAC audio to the public Google web speech
// endpoint and extracts the best transcript.
type WebSpeechRecognizer struct {
	client   *http.Client
	language string
	apiKey   string
}

// NewWebSpeechRecognizer returns a recognizer for the given language.
func NewWebSpeechRecognizer(language, apiKey string) *WebSpeechRecognizer {
	if strings.TrimSpace(language) == "" {
		language = "en-US"
	}
	return &WebSpeechRecognizer{
		client:   &http.Client{Timeout: 30 * time.Second},
		language: language,
		apiKey:   apiKey,
	}
}

// Recognize sends the audio and parses the line-delimited JSON response.
func (r *WebSpeechRecognizer) Recognize(ctx context.Context, audio io.Reader) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, webSpeechEndpoint, audio)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrTransport, err)
	}

	q := url.Values{}
	q.Set("client", "chromium")
	q.Set("lang", r.language)
	if r.apiKey != "" {
		q.Set("key", r.apiKey)
	}
	req.URL.RawQuery = q.Encode()
	req.Header.Set("Content-Type", "audio/x-flac; rate=16000")

	resp, err := r.client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return "", ErrTimeout
		}
		return "", fmt.Errorf("%w: %v", ErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: bad status %s", ErrTransport, resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrTransport, err)
	}

	return parseWebSpeechResponse(body)
}

// parseWebSpeechResponse walks the line-delimited JSON payload looking for
// the first non-empty transcript alternative.
func parseWebSpeechResponse(body []byte) (string, error) {
	type alternative struct {
		Transcript string `json:"transcript"`
	}
	type result struct {
		Alternative []alternative `json:"alternative"`
	}
	type response struct {
		Result []result `json:"result"`
	}

	for _, line := range strings.Split(string(body), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		var parsed response
		if err := json.Unmarshal([]byte(line), &parsed); err != nil {
			continue
		}

		for _, res := range parsed.Result {
			for _, alt := range res.Alternative {
				if text := strings.TrimSpace(alt.Transcript); text != "" {
					return text, nil
				}
			}
		}
	}

	return "", ErrUnintelligible
}
