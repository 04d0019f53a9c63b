package models

import (
	"sort"
	"time"
)

// BookmarkType values returned on list/detail rows; the client uses the
// tag to decide whether to show mutation affordances. Only owners may
// edit or delete, and that is re-checked server-side on every mutation.
const (
	BookmarkTypeOwn    = "own"
	BookmarkTypeShared = "shared"
)

type Bookmark struct {
	ID                uint       `json:"id" gorm:"primaryKey"`
	UserID            uint       `json:"user_id" gorm:"index;uniqueIndex:idx_owner_slug"`
	Title             string     `json:"title"`
	URL               string     `json:"url"`
	Slug              *string    `json:"slug" gorm:"uniqueIndex:idx_owner_slug"` // Unique per owner when non-null
	ForwardingEnabled bool       `json:"forwarding_enabled"`
	Pinned            bool       `json:"pinned"`
	AccessCount       int64      `json:"access_count"`
	LastAccessedAt    *time.Time `json:"last_accessed_at"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`

	FolderLinks []BookmarkFolder    `json:"-" gorm:"foreignKey:BookmarkID"`
	TagLinks    []BookmarkTag       `json:"-" gorm:"foreignKey:BookmarkID"`
	UserShares  []BookmarkUserShare `json:"-" gorm:"foreignKey:BookmarkID"`
	TeamShares  []BookmarkTeamShare `json:"-" gorm:"foreignKey:BookmarkID"`

	User User `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

// BookmarkFolder places a bookmark in a folder; a bookmark may belong
// to any number of folders.
type BookmarkFolder struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	BookmarkID uint      `json:"bookmark_id" gorm:"index;uniqueIndex:idx_bookmark_folder"`
	FolderID   uint      `json:"folder_id" gorm:"index;uniqueIndex:idx_bookmark_folder"`
	CreatedAt  time.Time `json:"created_at"`

	Folder Folder `json:"-" gorm:"foreignKey:FolderID;constraint:OnDelete:CASCADE"`
}

type BookmarkTag struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	BookmarkID uint      `json:"bookmark_id" gorm:"index;uniqueIndex:idx_bookmark_tag"`
	TagID      uint      `json:"tag_id" gorm:"index;uniqueIndex:idx_bookmark_tag"`
	CreatedAt  time.Time `json:"created_at"`

	Tag Tag `json:"-" gorm:"foreignKey:TagID;constraint:OnDelete:CASCADE"`
}

// BookmarkUserShare grants a specific user read access to a bookmark.
type BookmarkUserShare struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	BookmarkID uint      `json:"bookmark_id" gorm:"index;uniqueIndex:idx_bookmark_user_share"`
	UserID     uint      `json:"user_id" gorm:"index;uniqueIndex:idx_bookmark_user_share"`
	CreatedAt  time.Time `json:"created_at"`
}

// BookmarkTeamShare grants every member of a team read access to a bookmark.
type BookmarkTeamShare struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	BookmarkID uint      `json:"bookmark_id" gorm:"index;uniqueIndex:idx_bookmark_team_share"`
	TeamID     uint      `json:"team_id" gorm:"index;uniqueIndex:idx_bookmark_team_share"`
	CreatedAt  time.Time `json:"created_at"`
}

type CreateBookmarkRequest struct {
	Title             string `json:"title" validate:"required,min=1,max=255"`
	URL               string `json:"url" validate:"required,url"`
	Slug              string `json:"slug,omitempty" validate:"omitempty,max=100"`
	ForwardingEnabled bool   `json:"forwarding_enabled"`
	Pinned            bool   `json:"pinned"`
	FolderIDs         []uint `json:"folder_ids"`
	TagIDs            []uint `json:"tag_ids"`
	ShareUserIDs      []uint `json:"share_user_ids"`
	ShareTeamIDs      []uint `json:"share_team_ids"`
	ShareAllTeams     bool   `json:"share_all_teams"`
}

// UpdateBookmarkRequest uses pointers so omitted fields stay untouched.
// Association lists, when present, replace the existing set wholesale.
type UpdateBookmarkRequest struct {
	Title             *string `json:"title" validate:"omitempty,min=1,max=255"`
	URL               *string `json:"url" validate:"omitempty,url"`
	Slug              *string `json:"slug" validate:"omitempty,max=100"`
	ForwardingEnabled *bool   `json:"forwarding_enabled"`
	Pinned            *bool   `json:"pinned"`
	FolderIDs         *[]uint `json:"folder_ids"`
	TagIDs            *[]uint `json:"tag_ids"`
	ShareUserIDs      *[]uint `json:"share_user_ids"`
	ShareTeamIDs      *[]uint `json:"share_team_ids"`
	ShareAllTeams     bool    `json:"share_all_teams"`
}

// BookmarkResponse is the wire shape for list/detail rows. Slug is
// normalized to an empty string and the shared id sets are the union of
// the bookmark's direct shares and the shares of every folder it
// belongs to, recomputed on each read.
type BookmarkResponse struct {
	ID                uint       `json:"id"`
	UserID            uint       `json:"user_id"`
	Title             string     `json:"title"`
	URL               string     `json:"url"`
	Slug              string     `json:"slug"`
	ForwardingEnabled bool       `json:"forwarding_enabled"`
	Pinned            bool       `json:"pinned"`
	AccessCount       int64      `json:"access_count"`
	LastAccessedAt    *time.Time `json:"last_accessed_at"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
	BookmarkType      string     `json:"bookmark_type"`
	FolderIDs         []uint     `json:"folder_ids"`
	TagIDs            []uint     `json:"tag_ids"`
	SharedUserIDs     []uint     `json:"shared_user_ids"`
	SharedTeamIDs     []uint     `json:"shared_team_ids"`
}

// NewBookmarkResponse builds the client view of a bookmark for the
// given requester. The bookmark must have its folder, tag and share
// edges (including each folder's shares) preloaded.
func NewBookmarkResponse(b *Bookmark, requesterID uint) BookmarkResponse {
	resp := BookmarkResponse{
		ID:                b.ID,
		UserID:            b.UserID,
		Title:             b.Title,
		URL:               b.URL,
		ForwardingEnabled: b.ForwardingEnabled,
		Pinned:            b.Pinned,
		AccessCount:       b.AccessCount,
		LastAccessedAt:    b.LastAccessedAt,
		CreatedAt:         b.CreatedAt,
		UpdatedAt:         b.UpdatedAt,
		BookmarkType:      BookmarkTypeShared,
		FolderIDs:         []uint{},
		TagIDs:            []uint{},
	}
	if b.UserID == requesterID {
		resp.BookmarkType = BookmarkTypeOwn
	}
	if b.Slug != nil {
		resp.Slug = *b.Slug
	}

	userSet := make(map[uint]bool)
	teamSet := make(map[uint]bool)
	for _, s := range b.UserShares {
		userSet[s.UserID] = true
	}
	for _, s := range b.TeamShares {
		teamSet[s.TeamID] = true
	}
	for _, link := range b.FolderLinks {
		resp.FolderIDs = append(resp.FolderIDs, link.FolderID)
		for _, s := range link.Folder.UserShares {
			userSet[s.UserID] = true
		}
		for _, s := range link.Folder.TeamShares {
			teamSet[s.TeamID] = true
		}
	}
	for _, link := range b.TagLinks {
		resp.TagIDs = append(resp.TagIDs, link.TagID)
	}
	resp.SharedUserIDs = sortedIDSet(userSet)
	resp.SharedTeamIDs = sortedIDSet(teamSet)

	return resp
}

func sortedIDSet(set map[uint]bool) []uint {
	ids := make([]uint, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
