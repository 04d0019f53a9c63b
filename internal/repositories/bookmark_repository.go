package repositories

import (
	"time"

	"github.com/slugbase/slugbase/internal/models"
	"github.com/slugbase/slugbase/internal/visibility"
	"gorm.io/gorm"
)

// Sort keys accepted by ListVisible.
const (
	SortRecentlyAdded    = "recently_added"
	SortAlphabetical     = "alphabetical"
	SortMostUsed         = "most_used"
	SortRecentlyAccessed = "recently_accessed"
)

// Preload paths needed to evaluate the visibility predicate and build
// responses: share edges plus each containing folder's own shares.
var bookmarkPreloads = []string{
	"FolderLinks",
	"FolderLinks.Folder",
	"FolderLinks.Folder.UserShares",
	"FolderLinks.Folder.TeamShares",
	"TagLinks",
	"UserShares",
	"TeamShares",
}

// BookmarkListOptions narrows and orders a visible-bookmark listing.
type BookmarkListOptions struct {
	FolderID *uint
	TagID    *uint
	SortBy   string
}

// BookmarkAssociations is the full edge set written on create.
type BookmarkAssociations struct {
	FolderIDs    []uint
	TagIDs       []uint
	ShareUserIDs []uint
	ShareTeamIDs []uint
}

// BookmarkAssociationUpdate carries the edge lists of an update; a nil
// list leaves that edge set untouched, a non-nil list replaces it
// wholesale.
type BookmarkAssociationUpdate struct {
	FolderIDs    *[]uint
	TagIDs       *[]uint
	ShareUserIDs *[]uint
	ShareTeamIDs *[]uint
}

// SearchResults groups the per-category hits of a substring search.
type SearchResults struct {
	Bookmarks []models.Bookmark `json:"-"`
	Folders   []models.Folder   `json:"-"`
	Tags      []models.Tag      `json:"-"`
}

// BookmarkRepository defines the interface for bookmark data operations
type BookmarkRepository interface {
	ListVisible(m visibility.Membership, opts BookmarkListOptions) ([]models.Bookmark, error)
	GetVisibleByID(id uint, m visibility.Membership) (*models.Bookmark, error)
	GetOwnedByID(id, userID uint) (*models.Bookmark, error)
	SlugTaken(userID uint, slug string, excludeID uint) (bool, error)
	CreateBookmark(b *models.Bookmark, assoc BookmarkAssociations) error
	UpdateBookmark(b *models.Bookmark, assoc BookmarkAssociationUpdate) error
	DeleteBookmark(id, userID uint) error
	TrackAccess(id uint) error
	SearchVisible(m visibility.Membership, query string) (*SearchResults, error)
	GetForForwarding(userKey, slug string) (*models.Bookmark, error)
}

// GormBookmarkRepository implements BookmarkRepository
type GormBookmarkRepository struct {
	db *gorm.DB
}

// NewGormBookmarkRepository creates a new GormBookmarkRepository
func NewGormBookmarkRepository(db *gorm.DB) *GormBookmarkRepository {
	return &GormBookmarkRepository{db: db}
}

// orderClause picks the ORDER BY text per sort key. The null handling
// of recently_accessed differs per backend: postgres understands NULLS
// LAST, sqlite gets an IS NULL sort key prefix with the same effect.
func (r *GormBookmarkRepository) orderClause(sortBy string) string {
	switch sortBy {
	case SortAlphabetical:
		return "LOWER(bookmarks.title) ASC"
	case SortMostUsed:
		return "bookmarks.access_count DESC"
	case SortRecentlyAccessed:
		if r.db.Dialector.Name() == "postgres" {
			return "bookmarks.last_accessed_at DESC NULLS LAST"
		}
		return "bookmarks.last_accessed_at IS NULL, bookmarks.last_accessed_at DESC"
	default:
		return "bookmarks.created_at DESC"
	}
}

func preloadBookmark(db *gorm.DB) *gorm.DB {
	for _, p := range bookmarkPreloads {
		db = db.Preload(p)
	}
	return db
}

// ListVisible returns the bookmarks readable under the membership
// snapshot, optionally filtered to one folder or tag. A bookmark
// reachable through several share paths appears once.
func (r *GormBookmarkRepository) ListVisible(m visibility.Membership, opts BookmarkListOptions) ([]models.Bookmark, error) {
	q := preloadBookmark(r.db.Model(&models.Bookmark{})).
		Scopes(visibility.BookmarkScope(m))
	if opts.FolderID != nil {
		q = q.Where("bookmarks.id IN (SELECT bookmark_id FROM bookmark_folders WHERE folder_id = ?)", *opts.FolderID)
	}
	if opts.TagID != nil {
		q = q.Where("bookmarks.id IN (SELECT bookmark_id FROM bookmark_tags WHERE tag_id = ?)", *opts.TagID)
	}

	var bookmarks []models.Bookmark
	if err := q.Order(r.orderClause(opts.SortBy)).Find(&bookmarks).Error; err != nil {
		return nil, err
	}
	return bookmarks, nil
}

// GetVisibleByID fetches one bookmark and re-checks the visibility
// predicate on the loaded row. An existing but invisible id reports
// record-not-found so other users' private items are never disclosed.
func (r *GormBookmarkRepository) GetVisibleByID(id uint, m visibility.Membership) (*models.Bookmark, error) {
	var bookmark models.Bookmark
	if err := preloadBookmark(r.db).First(&bookmark, id).Error; err != nil {
		return nil, err
	}
	if !visibility.BookmarkVisible(&bookmark, m) {
		return nil, gorm.ErrRecordNotFound
	}
	return &bookmark, nil
}

// GetOwnedByID fetches one bookmark only if the user owns it.
func (r *GormBookmarkRepository) GetOwnedByID(id, userID uint) (*models.Bookmark, error) {
	var bookmark models.Bookmark
	err := preloadBookmark(r.db).
		Where("bookmarks.id = ? AND bookmarks.user_id = ?", id, userID).
		First(&bookmark).Error
	if err != nil {
		return nil, err
	}
	return &bookmark, nil
}

// SlugTaken reports whether the owner already uses the slug on a
// bookmark other than excludeID. Slug uniqueness is scoped per owner:
// two users may hold the identical slug.
func (r *GormBookmarkRepository) SlugTaken(userID uint, slug string, excludeID uint) (bool, error) {
	return slugTaken(r.db, userID, slug, excludeID)
}

func slugTaken(db *gorm.DB, userID uint, slug string, excludeID uint) (bool, error) {
	var count int64
	err := db.Model(&models.Bookmark{}).
		Where("user_id = ? AND slug = ? AND id <> ?", userID, slug, excludeID).
		Count(&count).Error
	return count > 0, err
}

// CreateBookmark inserts the bookmark and its folder/tag/share edges in
// one transaction; a failed slug, folder-ownership or team-membership
// check rolls back everything.
func (r *GormBookmarkRepository) CreateBookmark(b *models.Bookmark, assoc BookmarkAssociations) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if b.Slug != nil {
			taken, err := slugTaken(tx, b.UserID, *b.Slug, 0)
			if err != nil {
				return err
			}
			if taken {
				return ErrSlugTaken
			}
		}
		if err := tx.Create(b).Error; err != nil {
			return err
		}
		return writeBookmarkEdges(tx, b, assoc)
	})
}

// UpdateBookmark persists the changed fields and replaces each edge set
// present in the update, all inside one transaction. Replacement is
// delete-then-reinsert; an unchanged list therefore ends up as the same
// edge set.
func (r *GormBookmarkRepository) UpdateBookmark(b *models.Bookmark, assoc BookmarkAssociationUpdate) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if b.Slug != nil {
			taken, err := slugTaken(tx, b.UserID, *b.Slug, b.ID)
			if err != nil {
				return err
			}
			if taken {
				return ErrSlugTaken
			}
		}
		err := tx.Model(&models.Bookmark{}).Where("id = ?", b.ID).
			Select("title", "url", "slug", "forwarding_enabled", "pinned").
			Updates(map[string]interface{}{
				"title":              b.Title,
				"url":                b.URL,
				"slug":               b.Slug,
				"forwarding_enabled": b.ForwardingEnabled,
				"pinned":             b.Pinned,
			}).Error
		if err != nil {
			return err
		}

		full := BookmarkAssociations{}
		replace := false
		if assoc.FolderIDs != nil {
			if err := tx.Where("bookmark_id = ?", b.ID).Delete(&models.BookmarkFolder{}).Error; err != nil {
				return err
			}
			full.FolderIDs = *assoc.FolderIDs
			replace = true
		}
		if assoc.TagIDs != nil {
			if err := tx.Where("bookmark_id = ?", b.ID).Delete(&models.BookmarkTag{}).Error; err != nil {
				return err
			}
			full.TagIDs = *assoc.TagIDs
			replace = true
		}
		if assoc.ShareUserIDs != nil {
			if err := tx.Where("bookmark_id = ?", b.ID).Delete(&models.BookmarkUserShare{}).Error; err != nil {
				return err
			}
			full.ShareUserIDs = *assoc.ShareUserIDs
			replace = true
		}
		if assoc.ShareTeamIDs != nil {
			if err := tx.Where("bookmark_id = ?", b.ID).Delete(&models.BookmarkTeamShare{}).Error; err != nil {
				return err
			}
			full.ShareTeamIDs = *assoc.ShareTeamIDs
			replace = true
		}
		if !replace {
			return nil
		}
		return writeBookmarkEdges(tx, b, full)
	})
}

// writeBookmarkEdges validates and inserts edges for a bookmark owned
// by b.UserID. Folder attachments require folder ownership; team shares
// require the owner's membership; self-shares are silently dropped;
// tags need no check beyond later read-scoping.
func writeBookmarkEdges(tx *gorm.DB, b *models.Bookmark, assoc BookmarkAssociations) error {
	for _, folderID := range uniqueIDs(assoc.FolderIDs) {
		var count int64
		err := tx.Model(&models.Folder{}).
			Where("id = ? AND user_id = ?", folderID, b.UserID).
			Count(&count).Error
		if err != nil {
			return err
		}
		if count == 0 {
			return ErrFolderNotOwned
		}
		if err := tx.Create(&models.BookmarkFolder{BookmarkID: b.ID, FolderID: folderID}).Error; err != nil {
			return err
		}
	}
	for _, tagID := range uniqueIDs(assoc.TagIDs) {
		if err := tx.Create(&models.BookmarkTag{BookmarkID: b.ID, TagID: tagID}).Error; err != nil {
			return err
		}
	}
	for _, userID := range uniqueIDs(assoc.ShareUserIDs) {
		if userID == b.UserID {
			continue
		}
		if err := tx.Create(&models.BookmarkUserShare{BookmarkID: b.ID, UserID: userID}).Error; err != nil {
			return err
		}
	}
	for _, teamID := range uniqueIDs(assoc.ShareTeamIDs) {
		var count int64
		err := tx.Model(&models.TeamMember{}).
			Where("team_id = ? AND user_id = ?", teamID, b.UserID).
			Count(&count).Error
		if err != nil {
			return err
		}
		if count == 0 {
			return ErrNotTeamMember
		}
		if err := tx.Create(&models.BookmarkTeamShare{BookmarkID: b.ID, TeamID: teamID}).Error; err != nil {
			return err
		}
	}
	return nil
}

func uniqueIDs(ids []uint) []uint {
	seen := make(map[uint]bool, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

// DeleteBookmark removes an owned bookmark and its edges.
func (r *GormBookmarkRepository) DeleteBookmark(id, userID uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ? AND user_id = ?", id, userID).Delete(&models.Bookmark{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		for _, edge := range []interface{}{
			&models.BookmarkFolder{}, &models.BookmarkTag{},
			&models.BookmarkUserShare{}, &models.BookmarkTeamShare{},
		} {
			if err := tx.Where("bookmark_id = ?", id).Delete(edge).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// TrackAccess bumps the access counter and stamps last_accessed_at.
func (r *GormBookmarkRepository) TrackAccess(id uint) error {
	now := time.Now()
	return r.db.Model(&models.Bookmark{}).Where("id = ?", id).
		UpdateColumns(map[string]interface{}{
			"access_count":     gorm.Expr("access_count + 1"),
			"last_accessed_at": now,
		}).Error
}

// SearchVisible runs a case-insensitive substring match over bookmark
// title/url/slug, folder names and the caller's own tag names, each
// category independently capped.
func (r *GormBookmarkRepository) SearchVisible(m visibility.Membership, query string) (*SearchResults, error) {
	pattern := "%" + query + "%"
	results := &SearchResults{}

	err := preloadBookmark(r.db.Model(&models.Bookmark{})).
		Scopes(visibility.BookmarkScope(m)).
		Where("LOWER(bookmarks.title) LIKE LOWER(?) OR LOWER(bookmarks.url) LIKE LOWER(?) OR LOWER(bookmarks.slug) LIKE LOWER(?)",
			pattern, pattern, pattern).
		Order("bookmarks.created_at DESC").
		Limit(10).
		Find(&results.Bookmarks).Error
	if err != nil {
		return nil, err
	}

	err = r.db.Model(&models.Folder{}).
		Preload("UserShares").Preload("TeamShares").
		Scopes(visibility.FolderScope(m)).
		Where("LOWER(folders.name) LIKE LOWER(?)", pattern).
		Order("folders.name ASC").
		Limit(5).
		Find(&results.Folders).Error
	if err != nil {
		return nil, err
	}

	// Tags are private labels, so the search never leaves the caller's
	// own namespace.
	err = r.db.Model(&models.Tag{}).
		Where("user_id = ? AND LOWER(name) LIKE LOWER(?)", m.UserID, pattern).
		Order("name ASC").
		Limit(5).
		Find(&results.Tags).Error
	if err != nil {
		return nil, err
	}

	return results, nil
}

// GetForForwarding resolves a public {user_key}/{slug} pair to its
// bookmark when forwarding is enabled.
func (r *GormBookmarkRepository) GetForForwarding(userKey, slug string) (*models.Bookmark, error) {
	var bookmark models.Bookmark
	err := r.db.
		Joins("JOIN users ON users.id = bookmarks.user_id").
		Where("users.user_key = ? AND bookmarks.slug = ? AND bookmarks.forwarding_enabled = ?", userKey, slug, true).
		First(&bookmark).Error
	if err != nil {
		return nil, err
	}
	return &bookmark, nil
}
