// Package client is the presentation layer's gateway to the notes API:
// an HTTP client for the REST surface plus an in-memory cache that only
// ever reflects server-confirmed state.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"voicenotes-be/internal/dto"
	"voicenotes-be/internal/pkg/apperror"

	"github.com/google/uuid"
)

// NoteClient performs authenticated round-trips against the note API.
type NoteClient struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

func NewNoteClient(baseURL, token string) *NoteClient {
	return &NoteClient{
		baseURL: baseURL,
		token:   token,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// SetToken swaps the bearer credential, e.g. after a token refresh.
func (c *NoteClient) SetToken(token string) {
	c.token = token
}

func (c *NoteClient) ListNotes(ctx context.Context) ([]*dto.NoteResponse, error) {
	return doRequest[[]*dto.NoteResponse](ctx, c, http.MethodGet, "/api/note/v1", nil)
}

func (c *NoteClient) GetNote(ctx context.Context, id uuid.UUID) (*dto.NoteResponse, error) {
	return doRequest[*dto.NoteResponse](ctx, c, http.MethodGet, "/api/note/v1/"+id.String(), nil)
}

func (c *NoteClient) CreateNote(ctx context.Context, req *dto.CreateNoteRequest) (*dto.NoteResponse, error) {
	return doRequest[*dto.NoteResponse](ctx, c, http.MethodPost, "/api/note/v1", req)
}

func (c *NoteClient) UpdateNote(ctx context.Context, id uuid.UUID, req *dto.UpdateNoteRequest) (*dto.NoteResponse, error) {
	return doRequest[*dto.NoteResponse](ctx, c, http.MethodPut, "/api/note/v1/"+id.String(), req)
}

func (c *NoteClient) FavoriteNote(ctx context.Context, id uuid.UUID, favorite bool) (*dto.NoteResponse, error) {
	req := dto.FavoriteNoteRequest{Favorite: &favorite}
	return doRequest[*dto.NoteResponse](ctx, c, http.MethodPut, "/api/note/v1/"+id.String()+"/favorite", req)
}

func (c *NoteClient) DeleteNote(ctx context.Context, id uuid.UUID) error {
	_, err := doRequest[any](ctx, c, http.MethodDelete, "/api/note/v1/"+id.String(), nil)
	return err
}

type envelope[T any] struct {
	Success bool   `json:"success"`
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    T      `json:"data"`
}

func doRequest[T any](ctx context.Context, c *NoteClient, method, path string, body interface{}) (T, error) {
	var zero T

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return zero, err
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return zero, err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return zero, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return zero, err
	}

	var env envelope[T]
	if err := json.Unmarshal(raw, &env); err != nil {
		return zero, fmt.Errorf("malformed response (%d): %w", resp.StatusCode, err)
	}

	if !env.Success {
		return zero, &apperror.AppError{Code: resp.StatusCode, Message: env.Message}
	}

	return env.Data, nil
}
