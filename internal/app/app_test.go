package app_test

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"blog/internal/app"
	"blog/internal/config"
	"blog/internal/database"
	"blog/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type countingPublisher struct{ count int }

func (p *countingPublisher) PublishEvent(string, map[string]interface{}) error {
	p.count++
	return nil
}

func TestNewApp_RequiresDatabase(t *testing.T) {
	_, _, err := app.NewApp(&config.Config{StaticDir: t.TempDir()}, app.Deps{})
	assert.Error(t, err)
}

func TestNewApp_SeedsDemoDataAndPlaceholder(t *testing.T) {
	db, err := gorm.Open(sqlite.Open("file:app_seed?mode=memory&cache=shared"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	staticDir := t.TempDir()
	publisher := &countingPublisher{}
	cfg := &config.Config{
		JWTSecret:  "app-secret",
		StaticDir:  staticDir,
		AvatarSize: 125,
		Locale:     "en",
		SeedDemo:   true,
	}
	application, authService, err := app.NewApp(cfg, app.Deps{DB: db, Publisher: publisher})
	require.NoError(t, err)
	require.NotNil(t, authService)

	_, err = os.Stat(filepath.Join(staticDir, "image", models.DefaultImageFile))
	assert.NoError(t, err)

	var users, posts int64
	require.NoError(t, db.Model(&models.User{}).Count(&users).Error)
	require.NoError(t, db.Model(&models.Post{}).Count(&posts).Error)
	assert.Positive(t, users)
	assert.Equal(t, users*3, posts)
	assert.Equal(t, int(users+posts), publisher.count)

	resp, err := application.Test(httptest.NewRequest(http.MethodGet, "/posts", nil), -1)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
