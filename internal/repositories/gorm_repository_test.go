package repositories_test

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"blog/internal/database"
	"blog/internal/models"
	"blog/internal/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })
	return db
}

func TestGORMUserRepository(t *testing.T) {
	db := openTestDB(t)
	repo := repositories.NewGORMUserRepository(db)

	alice := &models.User{Username: "alice", Email: "alice@example.com", Password: "hash"}
	require.NoError(t, repo.Create(alice))
	assert.NotZero(t, alice.ID)
	assert.Equal(t, models.DefaultImageFile, alice.ImageFile)
	assert.False(t, alice.LastSeen.IsZero())

	t.Run("Lookups", func(t *testing.T) {
		byName, err := repo.GetByUsername("alice")
		require.NoError(t, err)
		assert.Equal(t, alice.ID, byName.ID)

		byEmail, err := repo.GetByEmail("alice@example.com")
		require.NoError(t, err)
		assert.Equal(t, alice.ID, byEmail.ID)

		_, err = repo.GetByID(alice.ID + 50)
		assert.ErrorIs(t, err, repositories.ErrNotFound)
		_, err = repo.GetByEmail("nobody@example.com")
		assert.ErrorIs(t, err, repositories.ErrNotFound)
	})

	t.Run("DuplicatesAreRejected", func(t *testing.T) {
		err := repo.Create(&models.User{Username: "alice", Email: "other@example.com", Password: "hash"})
		assert.ErrorIs(t, err, repositories.ErrDuplicate)
		err = repo.Create(&models.User{Username: "other", Email: "alice@example.com", Password: "hash"})
		assert.ErrorIs(t, err, repositories.ErrDuplicate)
	})

	t.Run("UpdateWritesEmptyValues", func(t *testing.T) {
		stored, err := repo.GetByID(alice.ID)
		require.NoError(t, err)
		stored.AboutMe = "bio"
		require.NoError(t, repo.Update(stored))

		stored.AboutMe = ""
		stored.Username = "alice2"
		require.NoError(t, repo.Update(stored))

		reloaded, err := repo.GetByID(alice.ID)
		require.NoError(t, err)
		assert.Empty(t, reloaded.AboutMe)
		assert.Equal(t, "alice2", reloaded.Username)
		assert.Equal(t, "hash", reloaded.Password)
	})

	t.Run("UpdateOfMissingUser", func(t *testing.T) {
		ghost := &models.User{Username: "ghost", Email: "ghost@example.com"}
		ghost.ID = 9999
		assert.ErrorIs(t, repo.Update(ghost), repositories.ErrNotFound)

		var count int64
		require.NoError(t, db.Model(&models.User{}).Where("username = ?", "ghost").Count(&count).Error)
		assert.Zero(t, count)
	})

	t.Run("UpdateIntoTakenEmail", func(t *testing.T) {
		bob := &models.User{Username: "bobby", Email: "bob@example.com", Password: "hash"}
		require.NoError(t, repo.Create(bob))
		bob.Email = "alice@example.com"
		assert.ErrorIs(t, repo.Update(bob), repositories.ErrDuplicate)
	})

	t.Run("UpdateLastSeen", func(t *testing.T) {
		seen := time.Now().Add(-10 * time.Minute).Truncate(time.Second)
		require.NoError(t, repo.UpdateLastSeen(alice.ID, seen))
		reloaded, err := repo.GetByID(alice.ID)
		require.NoError(t, err)
		assert.True(t, reloaded.LastSeen.Equal(seen))
	})
}

func TestGORMPostRepository(t *testing.T) {
	db := openTestDB(t)
	users := repositories.NewGORMUserRepository(db)
	repo := repositories.NewGORMPostRepository(db)

	author := &models.User{Username: "writer", Email: "writer@example.com", Password: "hash"}
	require.NoError(t, users.Create(author))

	older := &models.Post{Title: "older", Content: "a", UserID: author.ID}
	require.NoError(t, repo.Create(older))
	newer := &models.Post{Title: "newer", Content: "b", UserID: author.ID}
	require.NoError(t, repo.Create(newer))

	posts, err := repo.GetAll()
	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, "newer", posts[0].Title)
	assert.Equal(t, "writer", posts[0].Author.Username)

	got, err := repo.GetByID(older.ID)
	require.NoError(t, err)
	assert.Equal(t, "writer", got.Author.Username)

	got.Title = "older, edited"
	got.UserID = 12345
	require.NoError(t, repo.Update(got))
	reloaded, err := repo.GetByID(older.ID)
	require.NoError(t, err)
	assert.Equal(t, "older, edited", reloaded.Title)
	assert.Equal(t, author.ID, reloaded.UserID)

	require.NoError(t, repo.Delete(newer.ID))
	_, err = repo.GetByID(newer.ID)
	assert.ErrorIs(t, err, repositories.ErrNotFound)
	assert.ErrorIs(t, repo.Delete(newer.ID), repositories.ErrNotFound)

	missing := &models.Post{Title: "x"}
	missing.ID = 777
	assert.ErrorIs(t, repo.Update(missing), repositories.ErrNotFound)
}
