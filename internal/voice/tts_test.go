package voice

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type countingSynthesizer struct {
	calls  int
	chunks []string
	err    error
}

func (c *countingSynthesizer) Synthesize(_ context.Context, text string) ([]byte, error) {
	c.calls++
	c.chunks = append(c.chunks, text)
	if c.err != nil {
		return nil, c.err
	}
	return []byte("audio:" + text + ";"), nil
}

func TestToSpeechCachesByContent(t *testing.T) {
	synth := &countingSynthesizer{}
	speaker, err := NewSpeaker(synth, t.TempDir(), zap.NewNop())
	require.NoError(t, err)

	first, err := speaker.ToSpeech(context.Background(), "Tell me about yourself.")
	require.NoError(t, err)
	require.NotEmpty(t, first)
	assert.Equal(t, 1, synth.calls)

	second, err := speaker.ToSpeech(context.Background(), "Tell me about yourself.")
	require.NoError(t, err)

	assert.Equal(t, first, second, "identical text must map to the same artifact")
	assert.Equal(t, 1, synth.calls, "cache hit must not re-synthesize")

	// Different text gets its own artifact.
	third, err := speaker.ToSpeech(context.Background(), "Why this company?")
	require.NoError(t, err)
	assert.NotEqual(t, first, third)
	assert.Equal(t, 2, synth.calls)
}

func TestToSpeechConcatenatesChunks(t *testing.T) {
	synth := &countingSynthesizer{}
	speaker, err := NewSpeaker(synth, t.TempDir(), zap.NewNop())
	require.NoError(t, err)

	long := strings.Repeat("carefully chosen words ", 20) // well past one chunk
	path, err := speaker.ToSpeech(context.Background(), long)
	require.NoError(t, err)

	assert.Greater(t, synth.calls, 1, "long text must be split into multiple chunks")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, synth.calls, strings.Count(string(data), "audio:"), "all segments must be concatenated")
}

func TestToSpeechFailureYieldsEmptyPath(t *testing.T) {
	synth := &countingSynthesizer{err: errors.New("service down")}
	speaker, err := NewSpeaker(synth, t.TempDir(), zap.NewNop())
	require.NoError(t, err)

	path, err := speaker.ToSpeech(context.Background(), "hello there")
	assert.Error(t, err)
	assert.Empty(t, path)
}

func TestToSpeechRejectsEmptyText(t *testing.T) {
	speaker, err := NewSpeaker(&countingSynthesizer{}, t.TempDir(), zap.NewNop())
	require.NoError(t, err)

	_, err = speaker.ToSpeech(context.Background(), "   ")
	assert.Error(t, err)
}

func TestClearCache(t *testing.T) {
	synth := &countingSynthesizer{}
	dir := t.TempDir()
	speaker, err := NewSpeaker(synth, dir, zap.NewNop())
	require.NoError(t, err)

	_, err = speaker.ToSpeech(context.Background(), "one")
	require.NoError(t, err)
	_, err = speaker.ToSpeech(context.Background(), "two")
	require.NoError(t, err)

	require.NoError(t, speaker.ClearCache())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)

	// After clearing, the same text is synthesized again.
	_, err = speaker.ToSpeech(context.Background(), "one")
	require.NoError(t, err)
	assert.Equal(t, 3, synth.calls)
}

func TestChunkTextRespectsBound(t *testing.T) {
	t.Parallel()

	long := strings.Repeat("alpha beta gamma delta epsilon ", 30)
	chunks := chunkText(long, 180)

	require.NotEmpty(t, chunks)
	for _, chunk := range chunks {
		assert.LessOrEqual(t, len(chunk), 180, "chunk %q", chunk)
	}

	reassembled := strings.Join(chunks, " ")
	assert.Equal(t, strings.Join(strings.Fields(long), " "), reassembled, "no words may be lost")
}

func TestChunkTextShortInput(t *testing.T) {
	t.Parallel()

	chunks := chunkText("short sentence", 180)
	assert.Equal(t, []string{"short sentence"}, chunks)
}

func TestChunkTextOversizedWord(t *testing.T) {
	t.Parallel()

	word := strings.Repeat("x", 200)
	chunks := chunkText("small "+word+" tail", 180)

	assert.Contains(t, chunks, word, "an oversized word becomes its own chunk")
}
