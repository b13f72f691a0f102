package integration

import (
	"context"
	"log"
	"os"
	"testing"
	"time"

	"voicenotes-be/internal/entity"
	"voicenotes-be/internal/repository/specification"
	"voicenotes-be/internal/repository/unitofwork"
	"voicenotes-be/pkg/database"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormConnection(t *testing.T) {
	// Load .env from root
	err := godotenv.Load("../../.env")
	if err != nil {
		log.Println("No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		t.Skip("Skipping integration test: DB_CONNECTION_STRING not set")
	}

	gormDB, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		t.Fatalf("Failed to connect to DB: %v", err)
	}

	// Verify Wiring
	uowFactory := unitofwork.NewRepositoryFactory(gormDB)
	uow := uowFactory.NewUnitOfWork(context.Background())

	assert.NotNil(t, uow.UserRepository())
	assert.NotNil(t, uow.NoteRepository())

	// Basic Ping
	sqlDB, _ := gormDB.DB()
	err = sqlDB.Ping()
	assert.NoError(t, err)
	t.Log("Successfully connected to DB and initialized UnitOfWork Factory")

	t.Run("Check User Repository", func(t *testing.T) {
		count, err := uow.UserRepository().Count(context.Background())
		assert.NoError(t, err)
		t.Logf("User count: %d", count)
	})

	t.Run("Note CRUD Round Trip", func(t *testing.T) {
		ctx := context.Background()

		userId := uuid.New()
		user := &entity.User{
			Id:           userId,
			Email:        "test-integration-" + uuid.New().String() + "@example.com",
			FullName:     "Integration Test User",
			PasswordHash: "not-a-real-hash",
			CreatedAt:    time.Now(),
		}
		require.NoError(t, uow.UserRepository().Create(ctx, user))
		defer uow.UserRepository().Delete(ctx, userId)

		noteId := uuid.New()
		note := &entity.Note{
			Id:        noteId,
			Title:     "Integration Note",
			Content:   "created by the integration suite",
			UserId:    userId,
			CreatedAt: time.Now(),
		}
		require.NoError(t, uow.NoteRepository().Create(ctx, note))
		defer uow.NoteRepository().Delete(ctx, noteId)

		found, err := uow.NoteRepository().FindOne(ctx,
			specification.ByID{ID: noteId}, specification.OwnedBy{UserID: userId})
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, "Integration Note", found.Title)
		assert.False(t, found.Favorite)

		found.Favorite = true
		require.NoError(t, uow.NoteRepository().Update(ctx, found))

		favorites, err := uow.NoteRepository().FindAll(ctx,
			specification.OwnedBy{UserID: userId}, specification.FavoriteOnly{})
		require.NoError(t, err)
		require.Len(t, favorites, 1)
		assert.Equal(t, noteId, favorites[0].Id)
	})

	t.Run("Transactional Note Create", func(t *testing.T) {
		ctx := context.Background()

		userId := uuid.New()
		user := &entity.User{
			Id:           userId,
			Email:        "test-integration-" + uuid.New().String() + "@example.com",
			FullName:     "Integration Test User",
			PasswordHash: "not-a-real-hash",
			CreatedAt:    time.Now(),
		}

		txUow := uowFactory.NewUnitOfWork(ctx)
		require.NoError(t, txUow.Begin(ctx))

		require.NoError(t, txUow.UserRepository().Create(ctx, user))

		noteId := uuid.New()
		note := &entity.Note{
			Id:        noteId,
			Title:     "Rolled Back Note",
			UserId:    userId,
			CreatedAt: time.Now(),
		}
		require.NoError(t, txUow.NoteRepository().Create(ctx, note))

		require.NoError(t, txUow.Rollback())

		// Nothing from the rolled back transaction is visible.
		gone, err := uow.NoteRepository().FindOne(ctx, specification.ByID{ID: noteId})
		require.NoError(t, err)
		assert.Nil(t, gone)
	})
}
