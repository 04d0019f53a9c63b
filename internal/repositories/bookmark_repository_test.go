package repositories_test

import (
	"testing"
	"time"

	"github.com/slugbase/slugbase/internal/models"
	"github.com/slugbase/slugbase/internal/repositories"
	"github.com/slugbase/slugbase/internal/visibility"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestListVisible_UnionOfSharePaths(t *testing.T) {
	db := setupDB(t)
	repo := repositories.NewGormBookmarkRepository(db)

	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")
	team := createTeam(t, db, "research", bob.ID)

	private := createBookmark(t, db, alice.ID, "private")
	viaUser := createBookmark(t, db, alice.ID, "via-user-share")
	viaTeam := createBookmark(t, db, alice.ID, "via-team-share")
	viaFolder := createBookmark(t, db, alice.ID, "via-folder-share")
	own := createBookmark(t, db, bob.ID, "bobs-own")

	require.NoError(t, db.Create(&models.BookmarkUserShare{BookmarkID: viaUser.ID, UserID: bob.ID}).Error)
	require.NoError(t, db.Create(&models.BookmarkTeamShare{BookmarkID: viaTeam.ID, TeamID: team.ID}).Error)

	folder := createFolder(t, db, alice.ID, "shared-folder")
	require.NoError(t, db.Create(&models.FolderTeamShare{FolderID: folder.ID, TeamID: team.ID}).Error)
	require.NoError(t, db.Create(&models.BookmarkFolder{BookmarkID: viaFolder.ID, FolderID: folder.ID}).Error)
	// viaUser also sits in the shared folder; it must still appear once.
	require.NoError(t, db.Create(&models.BookmarkFolder{BookmarkID: viaUser.ID, FolderID: folder.ID}).Error)

	m := visibility.Membership{UserID: bob.ID, TeamIDs: []uint{team.ID}}
	bookmarks, err := repo.ListVisible(m, repositories.BookmarkListOptions{})
	require.NoError(t, err)

	ids := make(map[uint]int)
	for _, b := range bookmarks {
		ids[b.ID]++
	}
	assert.Len(t, bookmarks, 4)
	assert.Equal(t, 1, ids[viaUser.ID], "bookmark reachable through two paths appears once")
	assert.Equal(t, 1, ids[viaTeam.ID])
	assert.Equal(t, 1, ids[viaFolder.ID])
	assert.Equal(t, 1, ids[own.ID])
	assert.Zero(t, ids[private.ID], "private bookmark must not leak")

	// The owner's view contains all their rows and nothing of bob's.
	aliceView, err := repo.ListVisible(visibility.Membership{UserID: alice.ID}, repositories.BookmarkListOptions{})
	require.NoError(t, err)
	assert.Len(t, aliceView, 4)

	// Without the team membership, team-mediated paths disappear.
	solo, err := repo.ListVisible(visibility.Membership{UserID: bob.ID}, repositories.BookmarkListOptions{})
	require.NoError(t, err)
	soloIDs := make(map[uint]bool)
	for _, b := range solo {
		soloIDs[b.ID] = true
	}
	assert.True(t, soloIDs[viaUser.ID])
	assert.False(t, soloIDs[viaTeam.ID])
	assert.False(t, soloIDs[viaFolder.ID])
}

func TestListVisible_FolderAndTagFilters(t *testing.T) {
	db := setupDB(t)
	repo := repositories.NewGormBookmarkRepository(db)

	alice := createUser(t, db, "alice")
	inFolder := createBookmark(t, db, alice.ID, "in-folder")
	tagged := createBookmark(t, db, alice.ID, "tagged")
	createBookmark(t, db, alice.ID, "loose")

	folder := createFolder(t, db, alice.ID, "work")
	tag := createTag(t, db, alice.ID, "golang")
	require.NoError(t, db.Create(&models.BookmarkFolder{BookmarkID: inFolder.ID, FolderID: folder.ID}).Error)
	require.NoError(t, db.Create(&models.BookmarkTag{BookmarkID: tagged.ID, TagID: tag.ID}).Error)

	m := visibility.Membership{UserID: alice.ID}

	byFolder, err := repo.ListVisible(m, repositories.BookmarkListOptions{FolderID: &folder.ID})
	require.NoError(t, err)
	require.Len(t, byFolder, 1)
	assert.Equal(t, inFolder.ID, byFolder[0].ID)

	byTag, err := repo.ListVisible(m, repositories.BookmarkListOptions{TagID: &tag.ID})
	require.NoError(t, err)
	require.Len(t, byTag, 1)
	assert.Equal(t, tagged.ID, byTag[0].ID)
}

func TestListVisible_Sorting(t *testing.T) {
	db := setupDB(t)
	repo := repositories.NewGormBookmarkRepository(db)
	alice := createUser(t, db, "alice")
	m := visibility.Membership{UserID: alice.ID}

	banana := createBookmark(t, db, alice.ID, "banana")
	apple := createBookmark(t, db, alice.ID, "Apple")
	cherry := createBookmark(t, db, alice.ID, "cherry")

	older := time.Now().Add(-2 * time.Hour)
	newer := time.Now().Add(-1 * time.Hour)
	require.NoError(t, db.Model(banana).UpdateColumns(map[string]interface{}{
		"last_accessed_at": older, "access_count": 3,
	}).Error)
	require.NoError(t, db.Model(cherry).UpdateColumns(map[string]interface{}{
		"last_accessed_at": newer, "access_count": 7,
	}).Error)
	// apple was never accessed: last_accessed_at stays NULL.

	alpha, err := repo.ListVisible(m, repositories.BookmarkListOptions{SortBy: repositories.SortAlphabetical})
	require.NoError(t, err)
	require.Len(t, alpha, 3)
	assert.Equal(t, "Apple", alpha[0].Title)
	assert.Equal(t, "banana", alpha[1].Title)
	assert.Equal(t, "cherry", alpha[2].Title)

	used, err := repo.ListVisible(m, repositories.BookmarkListOptions{SortBy: repositories.SortMostUsed})
	require.NoError(t, err)
	assert.Equal(t, cherry.ID, used[0].ID)
	assert.Equal(t, banana.ID, used[1].ID)

	accessed, err := repo.ListVisible(m, repositories.BookmarkListOptions{SortBy: repositories.SortRecentlyAccessed})
	require.NoError(t, err)
	require.Len(t, accessed, 3)
	assert.Equal(t, cherry.ID, accessed[0].ID)
	assert.Equal(t, banana.ID, accessed[1].ID)
	assert.Equal(t, apple.ID, accessed[2].ID, "never-accessed rows sort last")
}

func TestGetVisibleByID_HidesExistingRows(t *testing.T) {
	db := setupDB(t)
	repo := repositories.NewGormBookmarkRepository(db)

	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")
	private := createBookmark(t, db, alice.ID, "private")

	_, err := repo.GetVisibleByID(private.ID, visibility.Membership{UserID: bob.ID})
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound, "existing but invisible ids read as not found")

	got, err := repo.GetVisibleByID(private.ID, visibility.Membership{UserID: alice.ID})
	require.NoError(t, err)
	assert.Equal(t, private.ID, got.ID)
}

func TestCreateBookmark_SlugScoping(t *testing.T) {
	db := setupDB(t)
	repo := repositories.NewGormBookmarkRepository(db)

	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")

	first := &models.Bookmark{UserID: alice.ID, Title: "docs", URL: "https://example.com", Slug: strptr("docs")}
	require.NoError(t, repo.CreateBookmark(first, repositories.BookmarkAssociations{}))

	// Two different users may hold the identical slug.
	other := &models.Bookmark{UserID: bob.ID, Title: "docs", URL: "https://example.com", Slug: strptr("docs")}
	require.NoError(t, repo.CreateBookmark(other, repositories.BookmarkAssociations{}))

	// One user may not reuse a slug across bookmarks.
	dup := &models.Bookmark{UserID: alice.ID, Title: "docs2", URL: "https://example.com", Slug: strptr("docs")}
	err := repo.CreateBookmark(dup, repositories.BookmarkAssociations{})
	assert.ErrorIs(t, err, repositories.ErrSlugTaken)

	taken, err := repo.SlugTaken(alice.ID, "docs", 0)
	require.NoError(t, err)
	assert.True(t, taken)
	taken, err = repo.SlugTaken(alice.ID, "docs", first.ID)
	require.NoError(t, err)
	assert.False(t, taken, "a bookmark keeping its own slug is not a conflict")
}

func TestCreateBookmark_RollsBackOnBadEdges(t *testing.T) {
	db := setupDB(t)
	repo := repositories.NewGormBookmarkRepository(db)

	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")
	bobsFolder := createFolder(t, db, bob.ID, "bobs")

	b := &models.Bookmark{UserID: alice.ID, Title: "x", URL: "https://example.com"}
	err := repo.CreateBookmark(b, repositories.BookmarkAssociations{FolderIDs: []uint{bobsFolder.ID}})
	assert.ErrorIs(t, err, repositories.ErrFolderNotOwned)

	var count int64
	require.NoError(t, db.Model(&models.Bookmark{}).Count(&count).Error)
	assert.Zero(t, count, "failed validation rolls back the bookmark insert")

	team := createTeam(t, db, "closed")
	b2 := &models.Bookmark{UserID: alice.ID, Title: "y", URL: "https://example.com"}
	err = repo.CreateBookmark(b2, repositories.BookmarkAssociations{ShareTeamIDs: []uint{team.ID}})
	assert.ErrorIs(t, err, repositories.ErrNotTeamMember)
	require.NoError(t, db.Model(&models.Bookmark{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestCreateBookmark_FiltersSelfShare(t *testing.T) {
	db := setupDB(t)
	repo := repositories.NewGormBookmarkRepository(db)

	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")

	b := &models.Bookmark{UserID: alice.ID, Title: "x", URL: "https://example.com"}
	err := repo.CreateBookmark(b, repositories.BookmarkAssociations{ShareUserIDs: []uint{alice.ID, bob.ID, bob.ID}})
	require.NoError(t, err)

	var shares []models.BookmarkUserShare
	require.NoError(t, db.Where("bookmark_id = ?", b.ID).Find(&shares).Error)
	require.Len(t, shares, 1, "self-share dropped, duplicate deduplicated")
	assert.Equal(t, bob.ID, shares[0].UserID)
}

func TestUpdateBookmark_ReplaceAssociationsIdempotent(t *testing.T) {
	db := setupDB(t)
	repo := repositories.NewGormBookmarkRepository(db)

	alice := createUser(t, db, "alice")
	tag1 := createTag(t, db, alice.ID, "one")
	tag2 := createTag(t, db, alice.ID, "two")

	b := &models.Bookmark{UserID: alice.ID, Title: "x", URL: "https://example.com"}
	require.NoError(t, repo.CreateBookmark(b, repositories.BookmarkAssociations{TagIDs: []uint{tag1.ID, tag2.ID}}))

	sameSet := []uint{tag1.ID, tag2.ID}
	require.NoError(t, repo.UpdateBookmark(b, repositories.BookmarkAssociationUpdate{TagIDs: &sameSet}))

	var edges []models.BookmarkTag
	require.NoError(t, db.Where("bookmark_id = ?", b.ID).Order("tag_id").Find(&edges).Error)
	require.Len(t, edges, 2)
	assert.Equal(t, tag1.ID, edges[0].TagID)
	assert.Equal(t, tag2.ID, edges[1].TagID)

	// Omitted lists stay untouched.
	title := "renamed"
	b.Title = title
	require.NoError(t, repo.UpdateBookmark(b, repositories.BookmarkAssociationUpdate{}))
	require.NoError(t, db.Where("bookmark_id = ?", b.ID).Find(&edges).Error)
	assert.Len(t, edges, 2)

	// A present list replaces the set wholesale.
	onlyOne := []uint{tag2.ID}
	require.NoError(t, repo.UpdateBookmark(b, repositories.BookmarkAssociationUpdate{TagIDs: &onlyOne}))
	require.NoError(t, db.Where("bookmark_id = ?", b.ID).Find(&edges).Error)
	require.Len(t, edges, 1)
	assert.Equal(t, tag2.ID, edges[0].TagID)
}

func TestDeleteBookmark_OwnerOnly(t *testing.T) {
	db := setupDB(t)
	repo := repositories.NewGormBookmarkRepository(db)

	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")
	b := createBookmark(t, db, alice.ID, "x")
	require.NoError(t, db.Create(&models.BookmarkUserShare{BookmarkID: b.ID, UserID: bob.ID}).Error)

	err := repo.DeleteBookmark(b.ID, bob.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound, "shared access is read-only")

	require.NoError(t, repo.DeleteBookmark(b.ID, alice.ID))
	var count int64
	require.NoError(t, db.Model(&models.BookmarkUserShare{}).Where("bookmark_id = ?", b.ID).Count(&count).Error)
	assert.Zero(t, count, "share edges removed with the bookmark")
}

func TestTrackAccess(t *testing.T) {
	db := setupDB(t)
	repo := repositories.NewGormBookmarkRepository(db)

	alice := createUser(t, db, "alice")
	b := createBookmark(t, db, alice.ID, "x")
	require.Nil(t, b.LastAccessedAt)

	require.NoError(t, repo.TrackAccess(b.ID))
	require.NoError(t, repo.TrackAccess(b.ID))

	var got models.Bookmark
	require.NoError(t, db.First(&got, b.ID).Error)
	assert.EqualValues(t, 2, got.AccessCount)
	assert.NotNil(t, got.LastAccessedAt)
}

func TestSearchVisible(t *testing.T) {
	db := setupDB(t)
	repo := repositories.NewGormBookmarkRepository(db)

	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")
	m := visibility.Membership{UserID: alice.ID}

	example := createBookmark(t, db, alice.ID, "Example")
	createBookmark(t, db, alice.ID, "unrelated")
	createBookmark(t, db, bob.ID, "example hidden")

	folder := createFolder(t, db, alice.ID, "Examples Folder")
	createFolder(t, db, bob.ID, "example private folder")
	tag := createTag(t, db, alice.ID, "examples")
	createTag(t, db, bob.ID, "examples")

	results, err := repo.SearchVisible(m, "exa")
	require.NoError(t, err)
	require.Len(t, results.Bookmarks, 1, "substring match is case-insensitive and visibility-scoped")
	assert.Equal(t, example.ID, results.Bookmarks[0].ID)
	require.Len(t, results.Folders, 1)
	assert.Equal(t, folder.ID, results.Folders[0].ID)
	require.Len(t, results.Tags, 1)
	assert.Equal(t, tag.ID, results.Tags[0].ID)
}

func TestSearchVisible_CategoryCaps(t *testing.T) {
	db := setupDB(t)
	repo := repositories.NewGormBookmarkRepository(db)

	alice := createUser(t, db, "alice")
	m := visibility.Membership{UserID: alice.ID}
	for i := 0; i < 12; i++ {
		createBookmark(t, db, alice.ID, "match")
	}
	for i := 0; i < 7; i++ {
		createFolder(t, db, alice.ID, "match")
		createTag(t, db, alice.ID, "match")
	}

	results, err := repo.SearchVisible(m, "match")
	require.NoError(t, err)
	assert.Len(t, results.Bookmarks, 10)
	assert.Len(t, results.Folders, 5)
	assert.Len(t, results.Tags, 5)
}

func TestGetForForwarding(t *testing.T) {
	db := setupDB(t)
	repo := repositories.NewGormBookmarkRepository(db)

	alice := createUser(t, db, "alice")
	enabled := &models.Bookmark{
		UserID: alice.ID, Title: "docs", URL: "https://example.com/docs",
		Slug: strptr("docs"), ForwardingEnabled: true,
	}
	require.NoError(t, db.Create(enabled).Error)
	disabled := &models.Bookmark{
		UserID: alice.ID, Title: "draft", URL: "https://example.com/draft",
		Slug: strptr("draft"), ForwardingEnabled: false,
	}
	require.NoError(t, db.Create(disabled).Error)

	got, err := repo.GetForForwarding(alice.UserKey, "docs")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/docs", got.URL)

	_, err = repo.GetForForwarding(alice.UserKey, "draft")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound, "forwarding disabled means no public resolution")

	_, err = repo.GetForForwarding("wrong-key", "docs")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
