package capture

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRecognizer feeds scripted events to the session.
type fakeRecognizer struct {
	events  chan Event
	started bool
	stopped bool
}

func newFakeRecognizer() *fakeRecognizer {
	return &fakeRecognizer{events: make(chan Event, 8)}
}

func (f *fakeRecognizer) Start(ctx context.Context) (<-chan Event, error) {
	if f.started {
		f.events = make(chan Event, 8)
	}
	f.started = true
	f.stopped = false
	return f.events, nil
}

func (f *fakeRecognizer) Stop() error {
	f.stopped = true
	close(f.events)
	return nil
}

func waitTranscript(t *testing.T, s *Session, want string) {
	t.Helper()
	require.Eventually(t, func() bool {
		return s.Transcript() == want
	}, time.Second, 5*time.Millisecond)
}

func TestSessionTranscriptReplacedPerEvent(t *testing.T) {
	rec := newFakeRecognizer()
	s := NewSession(rec)

	require.NoError(t, s.Start(context.Background()))
	assert.True(t, s.Recording())

	rec.events <- Event{Segments: []string{"buy milk"}}
	waitTranscript(t, s, "buy milk")

	// Each event carries the full result so far and replaces the transcript.
	rec.events <- Event{Segments: []string{"buy milk", "and eggs"}}
	waitTranscript(t, s, "buy milk and eggs")

	require.NoError(t, s.Stop())
	assert.False(t, s.Recording())
	assert.Equal(t, "buy milk and eggs", s.Transcript())
}

func TestSessionDoubleStart(t *testing.T) {
	rec := newFakeRecognizer()
	s := NewSession(rec)

	require.NoError(t, s.Start(context.Background()))
	assert.ErrorIs(t, s.Start(context.Background()), ErrCaptureActive)
	require.NoError(t, s.Stop())
}

func TestSessionEngineEndReturnsToIdle(t *testing.T) {
	rec := newFakeRecognizer()
	s := NewSession(rec)

	require.NoError(t, s.Start(context.Background()))
	rec.events <- Event{Segments: []string{"hello"}}
	waitTranscript(t, s, "hello")

	// Recognizer closes the stream on its own, not via Stop.
	close(rec.events)
	require.Eventually(t, func() bool { return !s.Recording() }, time.Second, 5*time.Millisecond)
	assert.Equal(t, "hello", s.Transcript())

	// Stop after the stream already ended is a no-op.
	assert.NoError(t, s.Stop())
}

func TestSessionRestartResetsTranscript(t *testing.T) {
	rec := newFakeRecognizer()
	s := NewSession(rec)

	require.NoError(t, s.Start(context.Background()))
	rec.events <- Event{Segments: []string{"first take"}}
	waitTranscript(t, s, "first take")
	require.NoError(t, s.Stop())
	assert.Equal(t, "first take", s.Transcript())

	require.NoError(t, s.Start(context.Background()))
	assert.Equal(t, "", s.Transcript())

	rec.events <- Event{Segments: []string{"second take"}}
	waitTranscript(t, s, "second take")
	require.NoError(t, s.Stop())
}

func TestSessionRecognizerError(t *testing.T) {
	rec := newFakeRecognizer()
	s := NewSession(rec)

	require.NoError(t, s.Start(context.Background()))
	rec.events <- Event{Segments: []string{"partial"}}
	waitTranscript(t, s, "partial")

	streamErr := errors.New("stream dropped")
	rec.events <- Event{Err: streamErr}
	close(rec.events)

	require.Eventually(t, func() bool { return !s.Recording() }, time.Second, 5*time.Millisecond)
	assert.ErrorIs(t, s.Err(), streamErr)
	assert.Equal(t, "partial", s.Transcript())
}
