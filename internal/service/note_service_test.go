package service

import (
	"context"
	"sort"
	"testing"
	"time"

	"voicenotes-be/internal/dto"
	"voicenotes-be/internal/entity"
	"voicenotes-be/internal/pkg/apperror"
	"voicenotes-be/internal/repository/contract"
	"voicenotes-be/internal/repository/specification"
	"voicenotes-be/internal/repository/unitofwork"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeNoteRepository keeps notes in memory and interprets the query
// specifications the service actually uses.
type fakeNoteRepository struct {
	notes map[uuid.UUID]*entity.Note
}

func newFakeNoteRepository() *fakeNoteRepository {
	return &fakeNoteRepository{notes: make(map[uuid.UUID]*entity.Note)}
}

func (r *fakeNoteRepository) Create(ctx context.Context, note *entity.Note) error {
	cp := *note
	r.notes[note.Id] = &cp
	return nil
}

func (r *fakeNoteRepository) Update(ctx context.Context, note *entity.Note) error {
	cp := *note
	r.notes[note.Id] = &cp
	return nil
}

func (r *fakeNoteRepository) Delete(ctx context.Context, id uuid.UUID) error {
	delete(r.notes, id)
	return nil
}

func (r *fakeNoteRepository) matches(note *entity.Note, specs []specification.Specification) bool {
	for _, spec := range specs {
		switch s := spec.(type) {
		case specification.ByID:
			if note.Id != s.ID {
				return false
			}
		case specification.OwnedBy:
			if note.UserId != s.UserID {
				return false
			}
		case specification.FavoriteOnly:
			if !note.Favorite {
				return false
			}
		}
	}
	return true
}

func (r *fakeNoteRepository) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Note, error) {
	for _, note := range r.notes {
		if r.matches(note, specs) {
			cp := *note
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeNoteRepository) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Note, error) {
	var out []*entity.Note
	for _, note := range r.notes {
		if r.matches(note, specs) {
			cp := *note
			out = append(out, &cp)
		}
	}

	for _, spec := range specs {
		if s, ok := spec.(specification.OrderBy); ok && s.Field == "created_at" {
			sort.Slice(out, func(i, j int) bool {
				if s.Desc {
					return out[i].CreatedAt.After(out[j].CreatedAt)
				}
				return out[i].CreatedAt.Before(out[j].CreatedAt)
			})
		}
	}
	for _, spec := range specs {
		if s, ok := spec.(specification.Pagination); ok {
			start := s.Offset
			if start > len(out) {
				start = len(out)
			}
			end := start + s.Limit
			if end > len(out) {
				end = len(out)
			}
			out = out[start:end]
		}
	}
	return out, nil
}

func (r *fakeNoteRepository) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	for _, note := range r.notes {
		if r.matches(note, specs) {
			count++
		}
	}
	return count, nil
}

type fakeUserRepository struct{}

func (r *fakeUserRepository) Create(ctx context.Context, user *entity.User) error { return nil }
func (r *fakeUserRepository) Update(ctx context.Context, user *entity.User) error { return nil }
func (r *fakeUserRepository) Delete(ctx context.Context, id uuid.UUID) error      { return nil }
func (r *fakeUserRepository) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.User, error) {
	return nil, nil
}
func (r *fakeUserRepository) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	return 0, nil
}

type fakeUnitOfWork struct {
	noteRepo *fakeNoteRepository
}

func (u *fakeUnitOfWork) Begin(ctx context.Context) error         { return nil }
func (u *fakeUnitOfWork) Commit() error                           { return nil }
func (u *fakeUnitOfWork) Rollback() error                         { return nil }
func (u *fakeUnitOfWork) UserRepository() contract.UserRepository { return &fakeUserRepository{} }
func (u *fakeUnitOfWork) NoteRepository() contract.NoteRepository { return u.noteRepo }

type fakeUowFactory struct {
	uow *fakeUnitOfWork
}

func (f *fakeUowFactory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork {
	return f.uow
}

type fakePublisher struct {
	published [][]byte
}

func (p *fakePublisher) Publish(ctx context.Context, payload []byte) error {
	p.published = append(p.published, payload)
	return nil
}

type nopLogger struct{}

func (nopLogger) Debug(module, message string, details map[string]interface{}) {}
func (nopLogger) Info(module, message string, details map[string]interface{})  {}
func (nopLogger) Warn(module, message string, details map[string]interface{})  {}
func (nopLogger) Error(module, message string, details map[string]interface{}) {}
func (nopLogger) Sync() error                                                  { return nil }

func newTestNoteService() (INoteService, *fakeNoteRepository, *fakePublisher) {
	repo := newFakeNoteRepository()
	pub := &fakePublisher{}
	svc := NewNoteService(&fakeUowFactory{uow: &fakeUnitOfWork{noteRepo: repo}}, pub, nil, nopLogger{})
	return svc, repo, pub
}

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }

func TestNoteServiceCreateAndList(t *testing.T) {
	svc, _, pub := newTestNoteService()
	ctx := context.Background()
	owner := uuid.New()

	created, err := svc.Create(ctx, owner, &dto.CreateNoteRequest{
		Title:   "Groceries",
		Content: "milk, eggs",
	})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, created.Id)
	assert.Equal(t, owner, created.UserId)
	assert.False(t, created.CreatedAt.IsZero())
	assert.False(t, created.Favorite)

	notes, err := svc.List(ctx, owner, nil)
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, created.Id, notes[0].Id)
	assert.Equal(t, "Groceries", notes[0].Title)
	assert.Equal(t, "milk, eggs", notes[0].Content)

	// Another owner sees nothing
	other, err := svc.List(ctx, uuid.New(), nil)
	require.NoError(t, err)
	assert.Empty(t, other)

	// One event per mutation
	assert.Len(t, pub.published, 1)
}

func TestNoteServiceCreateBlankTitle(t *testing.T) {
	svc, repo, _ := newTestNoteService()
	ctx := context.Background()
	owner := uuid.New()

	for _, title := range []string{"", "   ", "\t\n"} {
		_, err := svc.Create(ctx, owner, &dto.CreateNoteRequest{Title: title})
		assert.True(t, apperror.IsValidation(err), "title %q should be rejected", title)
	}

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count, "no record may be persisted on validation failure")
}

func TestNoteServiceOwnershipIsolation(t *testing.T) {
	svc, repo, _ := newTestNoteService()
	ctx := context.Background()
	ownerA := uuid.New()
	ownerB := uuid.New()

	created, err := svc.Create(ctx, ownerA, &dto.CreateNoteRequest{Title: "private", Content: "secret"})
	require.NoError(t, err)

	// Foreign update fails with NotFound, never Unauthorized: existence
	// must not leak.
	_, err = svc.Update(ctx, ownerB, &dto.UpdateNoteRequest{Id: created.Id, Title: strPtr("stolen")})
	assert.True(t, apperror.IsNotFound(err))

	err = svc.Delete(ctx, ownerB, created.Id)
	assert.True(t, apperror.IsNotFound(err))

	_, err = svc.Show(ctx, ownerB, created.Id)
	assert.True(t, apperror.IsNotFound(err))

	// The note is unchanged
	stored := repo.notes[created.Id]
	require.NotNil(t, stored)
	assert.Equal(t, "private", stored.Title)
	assert.Equal(t, "secret", stored.Content)
	assert.Equal(t, ownerA, stored.UserId)
}

func TestNoteServicePartialUpdate(t *testing.T) {
	svc, _, _ := newTestNoteService()
	ctx := context.Background()
	owner := uuid.New()

	created, err := svc.Create(ctx, owner, &dto.CreateNoteRequest{
		Title:         "recording",
		Content:       "body",
		AudioRef:      "blob:abc",
		Image:         "img.png",
		Transcription: "hello world",
	})
	require.NoError(t, err)

	// Toggling favorite changes nothing else
	updated, err := svc.Update(ctx, owner, &dto.UpdateNoteRequest{Id: created.Id, Favorite: boolPtr(true)})
	require.NoError(t, err)
	assert.True(t, updated.Favorite)
	assert.Equal(t, created.Title, updated.Title)
	assert.Equal(t, created.Content, updated.Content)
	assert.Equal(t, created.AudioRef, updated.AudioRef)
	assert.Equal(t, created.Image, updated.Image)
	assert.Equal(t, created.Transcription, updated.Transcription)
	assert.Equal(t, created.UserId, updated.UserId)
	assert.True(t, created.CreatedAt.Equal(updated.CreatedAt))
	require.NotNil(t, updated.UpdatedAt)

	// Clearing the title is rejected and nothing changes
	_, err = svc.Update(ctx, owner, &dto.UpdateNoteRequest{Id: created.Id, Title: strPtr("  ")})
	assert.True(t, apperror.IsValidation(err))

	after, err := svc.Show(ctx, owner, created.Id)
	require.NoError(t, err)
	assert.Equal(t, "recording", after.Title)
}

func TestNoteServiceFavoriteFilter(t *testing.T) {
	svc, _, _ := newTestNoteService()
	ctx := context.Background()
	owner := uuid.New()

	a, err := svc.Create(ctx, owner, &dto.CreateNoteRequest{Title: "a"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, owner, &dto.CreateNoteRequest{Title: "b"})
	require.NoError(t, err)

	_, err = svc.Favorite(ctx, owner, &dto.FavoriteNoteRequest{Id: a.Id, Favorite: boolPtr(true)})
	require.NoError(t, err)

	favorites, err := svc.List(ctx, owner, &dto.ListNotesQuery{FavoriteOnly: true})
	require.NoError(t, err)
	require.Len(t, favorites, 1)
	assert.Equal(t, a.Id, favorites[0].Id)
}

func TestNoteServiceDelete(t *testing.T) {
	svc, _, pub := newTestNoteService()
	ctx := context.Background()
	owner := uuid.New()

	created, err := svc.Create(ctx, owner, &dto.CreateNoteRequest{Title: "gone soon"})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, owner, created.Id))

	notes, err := svc.List(ctx, owner, nil)
	require.NoError(t, err)
	assert.Empty(t, notes)

	// Deleting twice is an error, not a silent no-op
	err = svc.Delete(ctx, owner, created.Id)
	assert.True(t, apperror.IsNotFound(err))

	assert.Len(t, pub.published, 2) // create + delete
}

func TestNoteServiceListNewestFirst(t *testing.T) {
	svc, repo, _ := newTestNoteService()
	ctx := context.Background()
	owner := uuid.New()

	first, err := svc.Create(ctx, owner, &dto.CreateNoteRequest{Title: "first"})
	require.NoError(t, err)
	second, err := svc.Create(ctx, owner, &dto.CreateNoteRequest{Title: "second"})
	require.NoError(t, err)

	// Force distinct timestamps regardless of clock resolution
	older := repo.notes[first.Id]
	older.CreatedAt = older.CreatedAt.Add(-time.Second)

	notes, err := svc.List(ctx, owner, nil)
	require.NoError(t, err)
	require.Len(t, notes, 2)
	assert.Equal(t, second.Id, notes[0].Id)
	assert.Equal(t, first.Id, notes[1].Id)
}
