package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"voicenotes-be/internal/dto"
	"voicenotes-be/internal/entity"
	"voicenotes-be/internal/pkg/apperror"
	"voicenotes-be/internal/pkg/logger"
	"voicenotes-be/internal/repository/specification"
	"voicenotes-be/internal/repository/unitofwork"
	"voicenotes-be/pkg/events"
	pktNats "voicenotes-be/pkg/nats"

	"github.com/google/uuid"
)

type INoteService interface {
	Create(ctx context.Context, userId uuid.UUID, req *dto.CreateNoteRequest) (*dto.NoteResponse, error)
	List(ctx context.Context, userId uuid.UUID, q *dto.ListNotesQuery) ([]*dto.NoteResponse, error)
	Show(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*dto.NoteResponse, error)
	Update(ctx context.Context, userId uuid.UUID, req *dto.UpdateNoteRequest) (*dto.NoteResponse, error)
	Favorite(ctx context.Context, userId uuid.UUID, req *dto.FavoriteNoteRequest) (*dto.NoteResponse, error)
	Delete(ctx context.Context, userId uuid.UUID, id uuid.UUID) error
}

type noteService struct {
	uowFactory       unitofwork.RepositoryFactory
	publisherService IPublisherService
	eventPublisher   *pktNats.Publisher
	log              logger.ILogger
}

func NewNoteService(
	uowFactory unitofwork.RepositoryFactory,
	publisherService IPublisherService,
	eventPublisher *pktNats.Publisher,
	log logger.ILogger,
) INoteService {
	return &noteService{
		uowFactory:       uowFactory,
		publisherService: publisherService,
		eventPublisher:   eventPublisher,
		log:              log,
	}
}

func (s *noteService) Create(ctx context.Context, userId uuid.UUID, req *dto.CreateNoteRequest) (*dto.NoteResponse, error) {
	if strings.TrimSpace(req.Title) == "" {
		return nil, apperror.Validation("title", "title is required")
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	note := entity.Note{
		Id:            uuid.New(),
		Title:         req.Title,
		Content:       req.Content,
		AudioRef:      req.AudioRef,
		Image:         req.Image,
		Transcription: req.Transcription,
		UserId:        userId,
		CreatedAt:     time.Now(),
	}

	if err := uow.NoteRepository().Create(ctx, &note); err != nil {
		return nil, err
	}

	s.publishNoteEvent(ctx, events.NoteCreated, &note)

	return toNoteResponse(&note), nil
}

func (s *noteService) List(ctx context.Context, userId uuid.UUID, q *dto.ListNotesQuery) ([]*dto.NoteResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	specs := []specification.Specification{
		specification.OwnedBy{UserID: userId},
	}
	if q != nil && q.FavoriteOnly {
		specs = append(specs, specification.FavoriteOnly{})
	}
	specs = append(specs, specification.NewestFirst())
	if q != nil && q.Limit > 0 {
		specs = append(specs, specification.Pagination{Limit: q.Limit, Offset: q.Offset})
	}

	notes, err := uow.NoteRepository().FindAll(ctx, specs...)
	if err != nil {
		return nil, err
	}

	response := make([]*dto.NoteResponse, 0, len(notes))
	for _, note := range notes {
		response = append(response, toNoteResponse(note))
	}
	return response, nil
}

func (s *noteService) Show(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*dto.NoteResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	note, err := s.findOwnedNote(ctx, uow, userId, id)
	if err != nil {
		return nil, err
	}
	return toNoteResponse(note), nil
}

func (s *noteService) Update(ctx context.Context, userId uuid.UUID, req *dto.UpdateNoteRequest) (*dto.NoteResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	note, err := s.findOwnedNote(ctx, uow, userId, req.Id)
	if err != nil {
		return nil, err
	}

	// Partial merge: only fields present in the payload change. Id,
	// UserId and CreatedAt are not merge candidates at all.
	if req.Title != nil {
		if strings.TrimSpace(*req.Title) == "" {
			return nil, apperror.Validation("title", "title cannot be cleared")
		}
		note.Title = *req.Title
	}
	if req.Content != nil {
		note.Content = *req.Content
	}
	if req.AudioRef != nil {
		note.AudioRef = *req.AudioRef
	}
	if req.Image != nil {
		note.Image = *req.Image
	}
	if req.Transcription != nil {
		note.Transcription = *req.Transcription
	}
	if req.Favorite != nil {
		note.Favorite = *req.Favorite
	}

	now := time.Now()
	note.UpdatedAt = &now

	if err := uow.NoteRepository().Update(ctx, note); err != nil {
		return nil, err
	}

	s.publishNoteEvent(ctx, events.NoteUpdated, note)

	return toNoteResponse(note), nil
}

func (s *noteService) Favorite(ctx context.Context, userId uuid.UUID, req *dto.FavoriteNoteRequest) (*dto.NoteResponse, error) {
	return s.Update(ctx, userId, &dto.UpdateNoteRequest{
		Id:       req.Id,
		Favorite: req.Favorite,
	})
}

func (s *noteService) Delete(ctx context.Context, userId uuid.UUID, id uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	note, err := s.findOwnedNote(ctx, uow, userId, id)
	if err != nil {
		return err
	}

	if err := uow.NoteRepository().Delete(ctx, id); err != nil {
		return err
	}

	s.publishNoteEvent(ctx, events.NoteDeleted, note)

	return nil
}

// findOwnedNote resolves an id within the caller's ownership scope. A
// foreign note and a missing note produce the same NotFound, so the API
// never leaks the existence of other owners' notes.
func (s *noteService) findOwnedNote(ctx context.Context, uow unitofwork.UnitOfWork, userId, id uuid.UUID) (*entity.Note, error) {
	note, err := uow.NoteRepository().FindOne(ctx,
		specification.ByID{ID: id},
		specification.OwnedBy{UserID: userId},
	)
	if err != nil {
		return nil, err
	}
	if note == nil {
		return nil, apperror.NotFound("note not found")
	}
	return note, nil
}

// publishNoteEvent fans a lifecycle event out to the in-process bus (for
// the websocket hub) and, when connected, to NATS. Delivery is auxiliary:
// failures are logged and never fail the request.
func (s *noteService) publishNoteEvent(ctx context.Context, eventType string, note *entity.Note) {
	msg := dto.NoteEventMessage{
		Type:   eventType,
		NoteId: note.Id,
		UserId: note.UserId,
	}
	payload, err := json.Marshal(msg)
	if err == nil {
		if err := s.publisherService.Publish(ctx, payload); err != nil {
			s.log.Warn("NoteService", "Failed to publish note event", map[string]interface{}{
				"type": eventType, "note_id": note.Id, "error": err.Error(),
			})
		}
	}

	if s.eventPublisher != nil {
		evt := events.NewNoteEvent(eventType, note.Id, note.UserId, note.Title)
		if err := s.eventPublisher.Publish(ctx, evt); err != nil {
			s.log.Warn("NoteService", "Failed to publish note event to NATS", map[string]interface{}{
				"type": eventType, "note_id": note.Id, "error": err.Error(),
			})
		}
	}
}

func toNoteResponse(note *entity.Note) *dto.NoteResponse {
	return &dto.NoteResponse{
		Id:            note.Id,
		Title:         note.Title,
		Content:       note.Content,
		AudioRef:      note.AudioRef,
		Image:         note.Image,
		Transcription: note.Transcription,
		Favorite:      note.Favorite,
		UserId:        note.UserId,
		CreatedAt:     note.CreatedAt,
		UpdatedAt:     note.UpdatedAt,
	}
}
