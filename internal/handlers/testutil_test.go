package handlers_test

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/slugbase/slugbase/internal/models"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Team{},
		&models.TeamMember{},
		&models.Bookmark{},
		&models.Folder{},
		&models.Tag{},
		&models.BookmarkFolder{},
		&models.BookmarkTag{},
		&models.BookmarkUserShare{},
		&models.BookmarkTeamShare{},
		&models.FolderUserShare{},
		&models.FolderTeamShare{},
	))
	return db
}

func createUser(t *testing.T, db *gorm.DB, name string) *models.User {
	t.Helper()
	user := &models.User{
		Name:    name,
		Email:   fmt.Sprintf("%s@example.com", name),
		UserKey: fmt.Sprintf("%s-key", name),
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

// newContext builds an echo context carrying the JWT claims the auth
// middleware would normally set. userID 0 leaves the request
// unauthenticated.
func newContext(e *echo.Echo, method, target, body string, userID uint) (echo.Context, *httptest.ResponseRecorder) {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if userID != 0 {
		c.Set("user", &models.JwtCustomClaims{UserID: userID})
	}
	return c, rec
}

func httpStatus(t *testing.T, err error) int {
	t.Helper()
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok, "expected *echo.HTTPError, got %T: %v", err, err)
	return he.Code
}
