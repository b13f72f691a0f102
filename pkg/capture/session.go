// Package capture wraps a streaming speech-to-text session. It only
// accumulates transcript text; persisting the result is the caller's
// explicit save through the note API.
package capture

import (
	"context"
	"errors"
	"strings"
	"sync"
)

// ErrCaptureActive is returned by Start while a session is recording.
// Only one accumulated transcript exists, so a second session cannot run
// concurrently; callers stop the first session explicitly.
var ErrCaptureActive = errors.New("capture session already recording")

// Event is one recognition update. Segments carries the full set of
// transcript segments observed so far in the session, not a delta.
type Event struct {
	Segments []string
	Err      error
}

// Recognizer is the external speech-to-text capability. Start returns a
// stream of events; the recognizer closes the channel when the session
// ends, whether by Stop or on its own (silence timeout, stream close).
type Recognizer interface {
	Start(ctx context.Context) (<-chan Event, error)
	Stop() error
}

type state int

const (
	stateIdle state = iota
	stateRecording
)

// Session drives a recognizer through idle -> recording -> idle and
// accumulates its transcript. Each event replaces the transcript with
// the joined segments, so out-of-order replays cannot duplicate text.
type Session struct {
	rec Recognizer

	mu         sync.Mutex
	state      state
	transcript string
	lastErr    error
	done       chan struct{}
}

func NewSession(rec Recognizer) *Session {
	return &Session{
		rec: rec,
	}
}

func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.state == stateRecording {
		s.mu.Unlock()
		return ErrCaptureActive
	}

	events, err := s.rec.Start(ctx)
	if err != nil {
		s.mu.Unlock()
		return err
	}

	s.state = stateRecording
	s.transcript = ""
	s.lastErr = nil
	s.done = make(chan struct{})
	s.mu.Unlock()

	go s.pump(events)
	return nil
}

// Stop ends the session and waits for the recognizer stream to drain.
// If the engine already ended the session on its own, Stop is a no-op;
// both paths converge on the same idle state with the transcript intact.
func (s *Session) Stop() error {
	s.mu.Lock()
	if s.state != stateRecording {
		s.mu.Unlock()
		return nil
	}
	done := s.done
	s.mu.Unlock()

	err := s.rec.Stop()
	<-done
	return err
}

func (s *Session) Recording() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state == stateRecording
}

// Transcript returns the accumulated text. Valid during and after a
// session; a new Start resets it.
func (s *Session) Transcript() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.transcript
}

// Err reports the last recognizer failure, if any.
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

func (s *Session) pump(events <-chan Event) {
	for ev := range events {
		s.mu.Lock()
		if ev.Err != nil {
			s.lastErr = ev.Err
		}
		if ev.Segments != nil {
			s.transcript = strings.Join(ev.Segments, " ")
		}
		s.mu.Unlock()
	}

	// Stream closed: engine-initiated end and explicit Stop land here
	// the same way.
	s.mu.Lock()
	s.state = stateIdle
	close(s.done)
	s.mu.Unlock()
}
