package repositories_test

import (
	"testing"

	"github.com/slugbase/slugbase/internal/models"
	"github.com/slugbase/slugbase/internal/repositories"
	"github.com/slugbase/slugbase/internal/visibility"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestFolderListVisible(t *testing.T) {
	db := setupDB(t)
	repo := repositories.NewGormFolderRepository(db)

	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")
	team := createTeam(t, db, "research", bob.ID)

	createFolder(t, db, alice.ID, "private")
	viaUser := createFolder(t, db, alice.ID, "via-user")
	viaTeam := createFolder(t, db, alice.ID, "via-team")
	own := createFolder(t, db, bob.ID, "own")

	require.NoError(t, db.Create(&models.FolderUserShare{FolderID: viaUser.ID, UserID: bob.ID}).Error)
	require.NoError(t, db.Create(&models.FolderTeamShare{FolderID: viaTeam.ID, TeamID: team.ID}).Error)

	folders, err := repo.ListVisible(visibility.Membership{UserID: bob.ID, TeamIDs: []uint{team.ID}})
	require.NoError(t, err)

	ids := make(map[uint]bool)
	for _, f := range folders {
		ids[f.ID] = true
	}
	assert.Len(t, folders, 3)
	assert.True(t, ids[viaUser.ID])
	assert.True(t, ids[viaTeam.ID])
	assert.True(t, ids[own.ID])
}

func TestFolderGetVisibleByID_HidesExistingRows(t *testing.T) {
	db := setupDB(t)
	repo := repositories.NewGormFolderRepository(db)

	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")
	private := createFolder(t, db, alice.ID, "private")

	_, err := repo.GetVisibleByID(private.ID, visibility.Membership{UserID: bob.ID})
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestCreateFolder_TeamShareRequiresMembership(t *testing.T) {
	db := setupDB(t)
	repo := repositories.NewGormFolderRepository(db)

	alice := createUser(t, db, "alice")
	team := createTeam(t, db, "closed")

	f := &models.Folder{UserID: alice.ID, Name: "x"}
	err := repo.CreateFolder(f, repositories.FolderAssociations{ShareTeamIDs: []uint{team.ID}})
	assert.ErrorIs(t, err, repositories.ErrNotTeamMember)

	var count int64
	require.NoError(t, db.Model(&models.Folder{}).Count(&count).Error)
	assert.Zero(t, count, "failed share validation rolls back the folder insert")
}

func TestUpdateFolder_ReplacesShares(t *testing.T) {
	db := setupDB(t)
	repo := repositories.NewGormFolderRepository(db)

	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")
	carol := createUser(t, db, "carol")

	f := &models.Folder{UserID: alice.ID, Name: "x"}
	require.NoError(t, repo.CreateFolder(f, repositories.FolderAssociations{ShareUserIDs: []uint{bob.ID}}))

	newSet := []uint{carol.ID}
	require.NoError(t, repo.UpdateFolder(f, repositories.FolderAssociationUpdate{ShareUserIDs: &newSet}))

	var shares []models.FolderUserShare
	require.NoError(t, db.Where("folder_id = ?", f.ID).Find(&shares).Error)
	require.Len(t, shares, 1)
	assert.Equal(t, carol.ID, shares[0].UserID)
}

func TestDeleteFolder_KeepsBookmarks(t *testing.T) {
	db := setupDB(t)
	repo := repositories.NewGormFolderRepository(db)

	alice := createUser(t, db, "alice")
	folder := createFolder(t, db, alice.ID, "work")
	bookmark := createBookmark(t, db, alice.ID, "keep-me")
	require.NoError(t, db.Create(&models.BookmarkFolder{BookmarkID: bookmark.ID, FolderID: folder.ID}).Error)

	require.NoError(t, repo.DeleteFolder(folder.ID, alice.ID))

	var edgeCount int64
	require.NoError(t, db.Model(&models.BookmarkFolder{}).Where("folder_id = ?", folder.ID).Count(&edgeCount).Error)
	assert.Zero(t, edgeCount, "membership edges removed")

	var got models.Bookmark
	assert.NoError(t, db.First(&got, bookmark.ID).Error, "bookmark itself survives folder deletion")
}

func TestDeleteFolder_OwnerOnly(t *testing.T) {
	db := setupDB(t)
	repo := repositories.NewGormFolderRepository(db)

	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")
	folder := createFolder(t, db, alice.ID, "work")

	err := repo.DeleteFolder(folder.ID, bob.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
