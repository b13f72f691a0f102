package capture

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	gws "github.com/gorilla/websocket"
)

// transcriptionMessage mirrors the Deepgram live-transcription payload.
type transcriptionMessage struct {
	IsFinal bool `json:"is_final"`
	Channel struct {
		Alternatives []struct {
			Transcript string  `json:"transcript"`
			Confidence float64 `json:"confidence"`
		} `json:"alternatives"`
	} `json:"channel"`
}

// DeepgramRecognizer streams audio to a Deepgram-compatible websocket
// endpoint and turns its live results into capture events. Each event
// carries every segment observed so far: finalized segments stay, the
// trailing interim segment is replaced as it firms up.
type DeepgramRecognizer struct {
	url    string
	apiKey string
	audio  <-chan []byte

	mu   sync.Mutex
	conn *gws.Conn
}

func NewDeepgramRecognizer(url, apiKey string, audio <-chan []byte) *DeepgramRecognizer {
	return &DeepgramRecognizer{
		url:    url,
		apiKey: apiKey,
		audio:  audio,
	}
}

func (r *DeepgramRecognizer) Start(ctx context.Context) (<-chan Event, error) {
	header := http.Header{
		"Authorization": {fmt.Sprintf("Token %s", r.apiKey)},
	}
	conn, _, err := gws.DefaultDialer.DialContext(ctx, r.url, header)
	if err != nil {
		return nil, fmt.Errorf("speech engine dial: %w", err)
	}

	r.mu.Lock()
	r.conn = conn
	r.mu.Unlock()

	events := make(chan Event)

	// Writer: audio chunks up. A write failure ends the session; the
	// reader observes the closed connection and finishes the stream.
	go func() {
		for {
			select {
			case chunk, ok := <-r.audio:
				if !ok {
					r.Stop()
					return
				}
				if len(chunk) == 0 {
					continue
				}
				if err := conn.WriteMessage(gws.BinaryMessage, chunk); err != nil {
					return
				}
			case <-ctx.Done():
				r.Stop()
				return
			}
		}
	}()

	// Reader: results down, until the engine or Stop closes the socket.
	go func() {
		defer close(events)
		defer conn.Close()

		var finals []string
		interim := ""

		for {
			_, message, err := conn.ReadMessage()
			if err != nil {
				if !gws.IsCloseError(err, gws.CloseNormalClosure, gws.CloseGoingAway) {
					select {
					case events <- Event{Err: err}:
					case <-ctx.Done():
					}
				}
				return
			}

			var msg transcriptionMessage
			if err := json.Unmarshal(message, &msg); err != nil {
				continue
			}
			if len(msg.Channel.Alternatives) == 0 {
				continue
			}
			text := msg.Channel.Alternatives[0].Transcript
			if text == "" {
				continue
			}

			if msg.IsFinal {
				finals = append(finals, text)
				interim = ""
			} else {
				interim = text
			}

			segments := make([]string, 0, len(finals)+1)
			segments = append(segments, finals...)
			if interim != "" {
				segments = append(segments, interim)
			}

			select {
			case events <- Event{Segments: segments}:
			case <-ctx.Done():
				return
			}
		}
	}()

	return events, nil
}

// Stop closes the websocket; the reader goroutine then finishes the
// event stream.
func (r *DeepgramRecognizer) Stop() error {
	r.mu.Lock()
	conn := r.conn
	r.conn = nil
	r.mu.Unlock()

	if conn == nil {
		return nil
	}
	conn.WriteMessage(gws.CloseMessage, gws.FormatCloseMessage(gws.CloseNormalClosure, ""))
	return conn.Close()
}
