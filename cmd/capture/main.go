// Command capture records a voice note from stdin audio: it streams raw
// audio chunks to the speech engine, prints the live transcript, and on
// end of input saves the result as a note through the REST API.
//
// Usage:
//
//	arecord -f S16_LE -r 16000 -t raw | go run ./cmd/capture -title "Standup"
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"voicenotes-be/internal/config"
	"voicenotes-be/internal/dto"
	"voicenotes-be/pkg/capture"
	"voicenotes-be/pkg/client"
)

func main() {
	title := flag.String("title", "Voice note", "title for the saved note")
	server := flag.String("server", "", "API base URL (defaults to APP_BASE_URL)")
	flag.Parse()

	cfg := config.Load()
	if cfg.Speech.APIKey == "" {
		log.Fatal("SPEECH_API_KEY is not set")
	}
	token := os.Getenv("API_TOKEN")
	if token == "" {
		log.Fatal("API_TOKEN is not set (login first and export the access token)")
	}

	baseURL := *server
	if baseURL == "" {
		baseURL = cfg.App.BaseURL
	}

	audio := make(chan []byte)
	rec := capture.NewDeepgramRecognizer(cfg.Speech.WebsocketURL, cfg.Speech.APIKey, audio)
	session := capture.NewSession(rec)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := session.Start(ctx); err != nil {
		log.Fatalf("Failed to start capture: %v", err)
	}

	// Pump stdin into the recognizer until EOF.
	go func() {
		defer close(audio)
		buf := make([]byte, 4096)
		for {
			n, err := os.Stdin.Read(buf)
			if n > 0 {
				chunk := make([]byte, n)
				copy(chunk, buf[:n])
				audio <- chunk
			}
			if err == io.EOF {
				return
			}
			if err != nil {
				log.Printf("stdin read: %v", err)
				return
			}
		}
	}()

	// Show the transcript as it firms up.
	last := ""
	for session.Recording() {
		if t := session.Transcript(); t != last {
			last = t
			fmt.Printf("\r> %s", t)
		}
		time.Sleep(200 * time.Millisecond)
	}
	fmt.Println()

	if err := session.Err(); err != nil {
		log.Fatalf("Capture failed: %v", err)
	}

	transcript := session.Transcript()
	if transcript == "" {
		log.Println("Nothing transcribed, no note saved")
		return
	}

	noteClient := client.NewNoteClient(baseURL, token)
	note, err := noteClient.CreateNote(context.Background(), &dto.CreateNoteRequest{
		Title:         *title,
		Content:       transcript,
		Transcription: transcript,
	})
	if err != nil {
		log.Fatalf("Failed to save note: %v", err)
	}

	log.Printf("Saved note %s (%q)", note.Id, note.Title)
}
