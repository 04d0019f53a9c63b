package repositories_test

import (
	"fmt"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/slugbase/slugbase/internal/models"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupDB opens an in-memory sqlite database with the full schema. A
// single connection keeps every query on the same in-memory store.
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

func createTeam(t *testing.T, db *gorm.DB, name string, memberIDs ...uint) *models.Team {
	t.Helper()
	team := &models.Team{Name: name}
	require.NoError(t, db.Create(team).Error)
	for _, id := range memberIDs {
		require.NoError(t, db.Create(&models.TeamMember{TeamID: team.ID, UserID: id}).Error)
	}
	return team
}

func createBookmark(t *testing.T, db *gorm.DB, userID uint, title string) *models.Bookmark {
	t.Helper()
	bookmark := &models.Bookmark{
		UserID: userID,
		Title:  title,
		URL:    fmt.Sprintf("https://example.com/%d", userID),
	}
	require.NoError(t, db.Create(bookmark).Error)
	return bookmark
}

func createFolder(t *testing.T, db *gorm.DB, userID uint, name string) *models.Folder {
	t.Helper()
	folder := &models.Folder{UserID: userID, Name: name}
	require.NoError(t, db.Create(folder).Error)
	return folder
}

func createTag(t *testing.T, db *gorm.DB, userID uint, name string) *models.Tag {
	t.Helper()
	tag := &models.Tag{UserID: userID, Name: name}
	require.NoError(t, db.Create(tag).Error)
	return tag
}

func strptr(s string) *string { return &s }
