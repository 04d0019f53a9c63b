package repositories

import "errors"

// Sentinel errors surfaced by mutating repository methods so handlers
// can map them onto the API error taxonomy.
var (
	// ErrSlugTaken: the owner already uses this slug on another bookmark.
	ErrSlugTaken = errors.New("slug already in use")
	// ErrFolderNotOwned: attempt to attach a bookmark to a folder the
	// caller does not own.
	ErrFolderNotOwned = errors.New("folder not owned by caller")
	// ErrNotTeamMember: attempt to share with a team the caller does not
	// belong to.
	ErrNotTeamMember = errors.New("caller is not a member of team")
)
