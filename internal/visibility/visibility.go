// Package visibility decides which bookmarks and folders a user may
// read. A bookmark is visible when the user owns it, is named in one of
// its direct user shares, belongs to a team named in one of its team
// shares, or when the bookmark sits in a folder whose shares name the
// user or one of their teams. Folders follow the same rule without the
// container clause. Everything here takes an explicit Membership
// snapshot; nothing consults ambient state.
package visibility

import (
	"github.com/slugbase/slugbase/internal/models"
	"gorm.io/gorm"
)

// Membership is the per-request snapshot of the requesting user and
// their current team ids, loaded fresh on every request.
type Membership struct {
	UserID  uint
	TeamIDs []uint
}

// InTeam reports whether the snapshot contains the given team.
func (m Membership) InTeam(teamID uint) bool {
	for _, id := range m.TeamIDs {
		if id == teamID {
			return true
		}
	}
	return false
}

// BookmarkVisible reports whether the bookmark is readable under the
// membership snapshot. The bookmark's share edges and folder links
// (including each folder's own shares) must be preloaded.
func BookmarkVisible(b *models.Bookmark, m Membership) bool {
	if b.UserID == m.UserID {
		return true
	}
	for _, s := range b.UserShares {
		if s.UserID == m.UserID {
			return true
		}
	}
	for _, s := range b.TeamShares {
		if m.InTeam(s.TeamID) {
			return true
		}
	}
	for _, link := range b.FolderLinks {
		if folderShared(link.Folder.UserShares, link.Folder.TeamShares, m) {
			return true
		}
	}
	return false
}

// FolderVisible reports whether the folder is readable under the
// membership snapshot. Folders do not inherit visibility from other
// folders. Share edges must be preloaded.
func FolderVisible(f *models.Folder, m Membership) bool {
	if f.UserID == m.UserID {
		return true
	}
	return folderShared(f.UserShares, f.TeamShares, m)
}

func folderShared(userShares []models.FolderUserShare, teamShares []models.FolderTeamShare, m Membership) bool {
	for _, s := range userShares {
		if s.UserID == m.UserID {
			return true
		}
	}
	for _, s := range teamShares {
		if m.InTeam(s.TeamID) {
			return true
		}
	}
	return false
}

// OwnershipTag returns the bookmark_type/folder_type annotation for a
// row owned by ownerID as seen by userID.
func OwnershipTag(ownerID, userID uint) string {
	if ownerID == userID {
		return models.BookmarkTypeOwn
	}
	return models.BookmarkTypeShared
}

// teamIDsOrNone keeps `IN ?` valid when the user has no teams.
func teamIDsOrNone(m Membership) []uint {
	if len(m.TeamIDs) == 0 {
		return []uint{0}
	}
	return m.TeamIDs
}

// BookmarkScope restricts a bookmark query to rows visible under the
// membership snapshot. It expresses the same union as BookmarkVisible
// in SQL, so list/search/dashboard queries never load invisible rows.
func BookmarkScope(m Membership) func(*gorm.DB) *gorm.DB {
	teamIDs := teamIDsOrNone(m)
	return func(db *gorm.DB) *gorm.DB {
		return db.Where(`bookmarks.user_id = ?
			OR bookmarks.id IN (SELECT bookmark_id FROM bookmark_user_shares WHERE user_id = ?)
			OR bookmarks.id IN (SELECT bookmark_id FROM bookmark_team_shares WHERE team_id IN ?)
			OR bookmarks.id IN (
				SELECT bookmark_id FROM bookmark_folders
				WHERE folder_id IN (SELECT folder_id FROM folder_user_shares WHERE user_id = ?)
				   OR folder_id IN (SELECT folder_id FROM folder_team_shares WHERE team_id IN ?))`,
			m.UserID, m.UserID, teamIDs, m.UserID, teamIDs)
	}
}

// FolderScope restricts a folder query to rows visible under the
// membership snapshot.
func FolderScope(m Membership) func(*gorm.DB) *gorm.DB {
	teamIDs := teamIDsOrNone(m)
	return func(db *gorm.DB) *gorm.DB {
		return db.Where(`folders.user_id = ?
			OR folders.id IN (SELECT folder_id FROM folder_user_shares WHERE user_id = ?)
			OR folders.id IN (SELECT folder_id FROM folder_team_shares WHERE team_id IN ?)`,
			m.UserID, m.UserID, teamIDs)
	}
}
