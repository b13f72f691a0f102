package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"voicenotes-be/internal/dto"
	"voicenotes-be/internal/pkg/apperror"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeNoteServer is an in-memory stand-in for the REST surface, speaking
// the same response envelope.
type fakeNoteServer struct {
	mu    sync.Mutex
	notes []*dto.NoteResponse
	owner uuid.UUID

	failNext bool
}

func newFakeNoteServer() *fakeNoteServer {
	return &fakeNoteServer{owner: uuid.New()}
}

func (f *fakeNoteServer) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()

		if f.failNext {
			f.failNext = false
			writeEnvelope(w, http.StatusInternalServerError, false, "internal server error", nil)
			return
		}

		path := strings.TrimPrefix(r.URL.Path, "/api/note/v1")
		path = strings.TrimPrefix(path, "/")

		switch {
		case r.Method == http.MethodGet && path == "":
			writeEnvelope(w, http.StatusOK, true, "Success list notes", f.notes)

		case r.Method == http.MethodPost && path == "":
			var req dto.CreateNoteRequest
			json.NewDecoder(r.Body).Decode(&req)
			if strings.TrimSpace(req.Title) == "" {
				writeEnvelope(w, http.StatusBadRequest, false, "title is required", nil)
				return
			}
			note := &dto.NoteResponse{
				Id:        uuid.New(),
				Title:     req.Title,
				Content:   req.Content,
				UserId:    f.owner,
				CreatedAt: time.Now(),
			}
			f.notes = append([]*dto.NoteResponse{note}, f.notes...)
			writeEnvelope(w, http.StatusCreated, true, "Success create note", note)

		case r.Method == http.MethodPut && strings.HasSuffix(path, "/favorite"):
			id, err := uuid.Parse(strings.TrimSuffix(path, "/favorite"))
			if err != nil {
				writeEnvelope(w, http.StatusNotFound, false, "note not found", nil)
				return
			}
			var req dto.FavoriteNoteRequest
			json.NewDecoder(r.Body).Decode(&req)
			for _, n := range f.notes {
				if n.Id == id {
					n.Favorite = *req.Favorite
					writeEnvelope(w, http.StatusOK, true, "Success favorite note", n)
					return
				}
			}
			writeEnvelope(w, http.StatusNotFound, false, "note not found", nil)

		case r.Method == http.MethodPut:
			id, err := uuid.Parse(path)
			if err != nil {
				writeEnvelope(w, http.StatusNotFound, false, "note not found", nil)
				return
			}
			var req dto.UpdateNoteRequest
			json.NewDecoder(r.Body).Decode(&req)
			for _, n := range f.notes {
				if n.Id == id {
					if req.Title != nil {
						n.Title = *req.Title
					}
					if req.Content != nil {
						n.Content = *req.Content
					}
					writeEnvelope(w, http.StatusOK, true, "Success update note", n)
					return
				}
			}
			writeEnvelope(w, http.StatusNotFound, false, "note not found", nil)

		case r.Method == http.MethodGet:
			id, _ := uuid.Parse(path)
			for _, n := range f.notes {
				if n.Id == id {
					writeEnvelope(w, http.StatusOK, true, "Success show note", n)
					return
				}
			}
			writeEnvelope(w, http.StatusNotFound, false, "note not found", nil)

		case r.Method == http.MethodDelete:
			id, _ := uuid.Parse(path)
			for i, n := range f.notes {
				if n.Id == id {
					f.notes = append(f.notes[:i], f.notes[i+1:]...)
					writeEnvelope(w, http.StatusOK, true, "Success delete note", nil)
					return
				}
			}
			writeEnvelope(w, http.StatusNotFound, false, "note not found", nil)

		default:
			writeEnvelope(w, http.StatusNotFound, false, "not found", nil)
		}
	})
}

func writeEnvelope(w http.ResponseWriter, status int, success bool, message string, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": success,
		"code":    status,
		"message": message,
		"data":    data,
	})
}

func newTestCache(t *testing.T) (*NoteCache, *fakeNoteServer) {
	t.Helper()
	fake := newFakeNoteServer()
	srv := httptest.NewServer(fake.handler())
	t.Cleanup(srv.Close)
	return NewNoteCache(NewNoteClient(srv.URL, "test-token")), fake
}

func TestCacheLoadAndCreate(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()

	assert.False(t, cache.Loaded())
	require.NoError(t, cache.Load(ctx))
	assert.True(t, cache.Loaded())
	assert.Empty(t, cache.Notes())

	first, err := cache.Create(ctx, &dto.CreateNoteRequest{Title: "first"})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, first.Id)

	second, err := cache.Create(ctx, &dto.CreateNoteRequest{Title: "second"})
	require.NoError(t, err)

	notes := cache.Notes()
	require.Len(t, notes, 2)
	assert.Equal(t, second.Id, notes[0].Id)
	assert.Equal(t, first.Id, notes[1].Id)
}

func TestCacheFailedMutationLeavesCacheUntouched(t *testing.T) {
	cache, fake := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Load(ctx))
	note, err := cache.Create(ctx, &dto.CreateNoteRequest{Title: "keep me"})
	require.NoError(t, err)

	fake.failNext = true
	title := "changed"
	_, err = cache.Update(ctx, note.Id, &dto.UpdateNoteRequest{Title: &title})
	require.Error(t, err)

	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, http.StatusInternalServerError, appErr.Code)

	notes := cache.Notes()
	require.Len(t, notes, 1)
	assert.Equal(t, "keep me", notes[0].Title)
}

func TestCacheRejectedCreateAddsNothing(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Load(ctx))
	_, err := cache.Create(ctx, &dto.CreateNoteRequest{Title: "   "})
	require.Error(t, err)

	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, http.StatusBadRequest, appErr.Code)
	assert.Empty(t, cache.Notes())
}

func TestCacheUpdateAndDelete(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Load(ctx))
	note, err := cache.Create(ctx, &dto.CreateNoteRequest{Title: "draft"})
	require.NoError(t, err)

	updated, err := cache.Favorite(ctx, note.Id, true)
	require.NoError(t, err)
	assert.True(t, updated.Favorite)
	assert.True(t, cache.Notes()[0].Favorite)

	require.NoError(t, cache.Delete(ctx, note.Id))
	assert.Empty(t, cache.Notes())
}

func TestCacheNotifiesSubscribers(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()

	var mu sync.Mutex
	calls := 0
	cache.Subscribe(func() {
		mu.Lock()
		calls++
		mu.Unlock()
	})

	require.NoError(t, cache.Load(ctx))
	_, err := cache.Create(ctx, &dto.CreateNoteRequest{Title: "note"})
	require.NoError(t, err)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 2, calls)
}

func TestCacheRefreshPullsServerCopy(t *testing.T) {
	cache, fake := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Load(ctx))
	note, err := cache.Create(ctx, &dto.CreateNoteRequest{Title: "stale"})
	require.NoError(t, err)

	// Another device changed the note server-side.
	fake.mu.Lock()
	fake.notes[0].Title = "fresh"
	fake.mu.Unlock()

	require.NoError(t, cache.Refresh(ctx, note.Id))
	assert.Equal(t, "fresh", cache.Notes()[0].Title)
}
