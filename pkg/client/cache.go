package client

import (
	"context"
	"sync"

	"voicenotes-be/internal/dto"

	"github.com/google/uuid"
)

// NoteCache holds the owner's last-known note list. Every mutation goes
// to the server first; the cached list changes only from the server's
// confirmed response, so a failed call leaves it untouched. Views inject
// the cache and subscribe for re-render triggers instead of sharing a
// mutable global.
type NoteCache struct {
	client *NoteClient

	mu     sync.RWMutex
	notes  []*dto.NoteResponse
	loaded bool
	subs   []func()
}

func NewNoteCache(client *NoteClient) *NoteCache {
	return &NoteCache{
		client: client,
	}
}

// Subscribe registers a change listener. Listeners run after every
// confirmed mutation, outside the cache lock.
func (c *NoteCache) Subscribe(fn func()) {
	c.mu.Lock()
	c.subs = append(c.subs, fn)
	c.mu.Unlock()
}

// Notes returns a snapshot copy of the cached list.
func (c *NoteCache) Notes() []*dto.NoteResponse {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]*dto.NoteResponse, len(c.notes))
	copy(out, c.notes)
	return out
}

func (c *NoteCache) Loaded() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loaded
}

// Load populates the cache with one full list fetch.
func (c *NoteCache) Load(ctx context.Context) error {
	notes, err := c.client.ListNotes(ctx)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.notes = notes
	c.loaded = true
	c.mu.Unlock()

	c.notify()
	return nil
}

// Create round-trips to the server and prepends the returned note; the
// server is the sole assigner of id and created_at, and the list is
// newest-first.
func (c *NoteCache) Create(ctx context.Context, req *dto.CreateNoteRequest) (*dto.NoteResponse, error) {
	note, err := c.client.CreateNote(ctx, req)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.notes = append([]*dto.NoteResponse{note}, c.notes...)
	c.mu.Unlock()

	c.notify()
	return note, nil
}

// Update replaces only the affected note with the server's copy.
func (c *NoteCache) Update(ctx context.Context, id uuid.UUID, req *dto.UpdateNoteRequest) (*dto.NoteResponse, error) {
	note, err := c.client.UpdateNote(ctx, id, req)
	if err != nil {
		return nil, err
	}

	c.replace(note)
	c.notify()
	return note, nil
}

func (c *NoteCache) Favorite(ctx context.Context, id uuid.UUID, favorite bool) (*dto.NoteResponse, error) {
	note, err := c.client.FavoriteNote(ctx, id, favorite)
	if err != nil {
		return nil, err
	}

	c.replace(note)
	c.notify()
	return note, nil
}

func (c *NoteCache) Delete(ctx context.Context, id uuid.UUID) error {
	if err := c.client.DeleteNote(ctx, id); err != nil {
		return err
	}

	c.mu.Lock()
	for i, n := range c.notes {
		if n.Id == id {
			c.notes = append(c.notes[:i], c.notes[i+1:]...)
			break
		}
	}
	c.mu.Unlock()

	c.notify()
	return nil
}

// Refresh re-fetches a single note, e.g. after a change event arrives on
// the websocket stream.
func (c *NoteCache) Refresh(ctx context.Context, id uuid.UUID) error {
	note, err := c.client.GetNote(ctx, id)
	if err != nil {
		return err
	}

	c.replace(note)
	c.notify()
	return nil
}

func (c *NoteCache) replace(note *dto.NoteResponse) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, n := range c.notes {
		if n.Id == note.Id {
			c.notes[i] = note
			return
		}
	}
	c.notes = append([]*dto.NoteResponse{note}, c.notes...)
}

func (c *NoteCache) notify() {
	c.mu.RLock()
	subs := make([]func(), len(c.subs))
	copy(subs, c.subs)
	c.mu.RUnlock()

	for _, fn := range subs {
		fn()
	}
}
