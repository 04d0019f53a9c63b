package handlers

import (
	"bufio"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/slugbase/slugbase/internal/importer"
	"github.com/slugbase/slugbase/internal/models"
	"github.com/slugbase/slugbase/internal/repositories"
	"github.com/slugbase/slugbase/internal/visibility"
	"gorm.io/gorm"
)

// BookmarkHandler handles bookmark HTTP requests
type BookmarkHandler struct {
	bookmarkRepository repositories.BookmarkRepository
	teamRepository     repositories.TeamRepository
}

// NewBookmarkHandler creates a new BookmarkHandler
func NewBookmarkHandler(bookmarkRepo repositories.BookmarkRepository, teamRepo repositories.TeamRepository) *BookmarkHandler {
	return &BookmarkHandler{
		bookmarkRepository: bookmarkRepo,
		teamRepository:     teamRepo,
	}
}

// RegisterBookmarkRoutes registers bookmark routes
func (h *BookmarkHandler) RegisterBookmarkRoutes(g *echo.Group) {
	g.GET("/bookmarks", h.ListBookmarks)
	g.GET("/bookmarks/search", h.Search)
	g.GET("/bookmarks/export", h.Export)
	g.POST("/bookmarks/import", h.Import)
	g.GET("/bookmarks/:id", h.GetBookmark)
	g.POST("/bookmarks", h.CreateBookmark)
	g.PUT("/bookmarks/:id", h.UpdateBookmark)
	g.DELETE("/bookmarks/:id", h.DeleteBookmark)
	g.POST("/bookmarks/:id/track-access", h.TrackAccess)
}

// membership loads a fresh team-membership snapshot for the requester.
func (h *BookmarkHandler) membership(c echo.Context) (visibility.Membership, error) {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return visibility.Membership{}, errUnauthorized("User not authenticated")
	}
	m, err := h.teamRepository.MembershipOf(currentUserID)
	if err != nil {
		return visibility.Membership{}, errInternal(err)
	}
	return m, nil
}

// ListBookmarks returns all bookmarks visible to the current user,
// optionally filtered by folder or tag and ordered by sort_by.
func (h *BookmarkHandler) ListBookmarks(c echo.Context) error {
	m, err := h.membership(c)
	if err != nil {
		return err
	}

	opts := repositories.BookmarkListOptions{SortBy: c.QueryParam("sort_by")}
	if v := c.QueryParam("folder_id"); v != "" {
		id, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			return errValidation("Invalid folder_id")
		}
		folderID := uint(id)
		opts.FolderID = &folderID
	}
	if v := c.QueryParam("tag_id"); v != "" {
		id, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			return errValidation("Invalid tag_id")
		}
		tagID := uint(id)
		opts.TagID = &tagID
	}

	bookmarks, err := h.bookmarkRepository.ListVisible(m, opts)
	if err != nil {
		return errInternal(err)
	}

	responses := make([]models.BookmarkResponse, len(bookmarks))
	for i := range bookmarks {
		responses[i] = models.NewBookmarkResponse(&bookmarks[i], m.UserID)
	}
	return c.JSON(http.StatusOK, responses)
}

// GetBookmark returns one visible bookmark
func (h *BookmarkHandler) GetBookmark(c echo.Context) error {
	m, err := h.membership(c)
	if err != nil {
		return err
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return errValidation("Invalid bookmark ID")
	}

	bookmark, err := h.bookmarkRepository.GetVisibleByID(uint(id), m)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return errNotFound("Bookmark not found")
		}
		return errInternal(err)
	}

	return c.JSON(http.StatusOK, models.NewBookmarkResponse(bookmark, m.UserID))
}

// CreateBookmark creates a bookmark with its folder, tag and share
// edges in one shot.
func (h *BookmarkHandler) CreateBookmark(c echo.Context) error {
	m, err := h.membership(c)
	if err != nil {
		return err
	}

	var req models.CreateBookmarkRequest
	if err := c.Bind(&req); err != nil {
		return errValidation("Invalid request payload")
	}

	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return errValidation(err.Error())
	}

	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		return errValidation("Title is required")
	}
	req.Slug = strings.TrimSpace(req.Slug)
	if req.ForwardingEnabled && req.Slug == "" {
		return errValidation("Slug is required when forwarding is enabled")
	}

	bookmark := &models.Bookmark{
		UserID:            m.UserID,
		Title:             req.Title,
		URL:               req.URL,
		ForwardingEnabled: req.ForwardingEnabled,
		Pinned:            req.Pinned,
	}
	if req.Slug != "" {
		bookmark.Slug = &req.Slug
	}

	shareTeamIDs := req.ShareTeamIDs
	if req.ShareAllTeams {
		// Share with every team the caller currently belongs to.
		shareTeamIDs = m.TeamIDs
	}

	assoc := repositories.BookmarkAssociations{
		FolderIDs:    req.FolderIDs,
		TagIDs:       req.TagIDs,
		ShareUserIDs: req.ShareUserIDs,
		ShareTeamIDs: shareTeamIDs,
	}

	if err := h.bookmarkRepository.CreateBookmark(bookmark, assoc); err != nil {
		return h.mapMutationError(err)
	}

	created, err := h.bookmarkRepository.GetOwnedByID(bookmark.ID, m.UserID)
	if err != nil {
		return errInternal(err)
	}
	return c.JSON(http.StatusCreated, models.NewBookmarkResponse(created, m.UserID))
}

// UpdateBookmark updates an owned bookmark. Omitted fields stay
// untouched; association lists, when present, replace the prior set.
func (h *BookmarkHandler) UpdateBookmark(c echo.Context) error {
	m, err := h.membership(c)
	if err != nil {
		return err
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return errValidation("Invalid bookmark ID")
	}

	// Ownership re-verified per request; shared access is read-only.
	bookmark, err := h.bookmarkRepository.GetOwnedByID(uint(id), m.UserID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return errNotFound("Bookmark not found")
		}
		return errInternal(err)
	}

	var req models.UpdateBookmarkRequest
	if err := c.Bind(&req); err != nil {
		return errValidation("Invalid request payload")
	}

	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return errValidation(err.Error())
	}

	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return errValidation("Title must not be empty")
		}
		bookmark.Title = title
	}
	if req.URL != nil {
		bookmark.URL = *req.URL
	}
	if req.Slug != nil {
		slug := strings.TrimSpace(*req.Slug)
		if slug == "" {
			bookmark.Slug = nil
		} else {
			bookmark.Slug = &slug
		}
	}
	if req.ForwardingEnabled != nil {
		bookmark.ForwardingEnabled = *req.ForwardingEnabled
	}
	if req.Pinned != nil {
		bookmark.Pinned = *req.Pinned
	}
	if bookmark.ForwardingEnabled && bookmark.Slug == nil {
		return errValidation("Slug is required when forwarding is enabled")
	}

	shareTeamIDs := req.ShareTeamIDs
	if req.ShareAllTeams {
		teamIDs := m.TeamIDs
		shareTeamIDs = &teamIDs
	}

	assoc := repositories.BookmarkAssociationUpdate{
		FolderIDs:    req.FolderIDs,
		TagIDs:       req.TagIDs,
		ShareUserIDs: req.ShareUserIDs,
		ShareTeamIDs: shareTeamIDs,
	}

	if err := h.bookmarkRepository.UpdateBookmark(bookmark, assoc); err != nil {
		return h.mapMutationError(err)
	}

	updated, err := h.bookmarkRepository.GetOwnedByID(bookmark.ID, m.UserID)
	if err != nil {
		return errInternal(err)
	}
	return c.JSON(http.StatusOK, models.NewBookmarkResponse(updated, m.UserID))
}

// DeleteBookmark deletes an owned bookmark
func (h *BookmarkHandler) DeleteBookmark(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return errUnauthorized("User not authenticated")
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return errValidation("Invalid bookmark ID")
	}

	if err := h.bookmarkRepository.DeleteBookmark(uint(id), currentUserID); err != nil {
		if err == gorm.ErrRecordNotFound {
			return errNotFound("Bookmark not found")
		}
		return errInternal(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// TrackAccess bumps the access counter for a bookmark. The call is
// fire-and-forget: failures are logged and swallowed so the caller's
// navigation is never blocked.
func (h *BookmarkHandler) TrackAccess(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err == nil {
		if err := h.bookmarkRepository.TrackAccess(uint(id)); err != nil {
			log.Printf("track-access failed for bookmark %d: %v", id, err)
		}
	}
	return c.NoContent(http.StatusNoContent)
}

// Search runs a case-insensitive substring search over visible
// bookmarks, folders and own tags.
func (h *BookmarkHandler) Search(c echo.Context) error {
	m, err := h.membership(c)
	if err != nil {
		return err
	}

	query := strings.TrimSpace(c.QueryParam("q"))
	if query == "" {
		return errValidation("Search query 'q' is required")
	}

	results, err := h.bookmarkRepository.SearchVisible(m, query)
	if err != nil {
		return errInternal(err)
	}

	bookmarks := make([]models.BookmarkResponse, len(results.Bookmarks))
	for i := range results.Bookmarks {
		bookmarks[i] = models.NewBookmarkResponse(&results.Bookmarks[i], m.UserID)
	}
	folders := make([]models.FolderResponse, len(results.Folders))
	for i := range results.Folders {
		folders[i] = models.NewFolderResponse(&results.Folders[i], m.UserID)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"bookmarks": bookmarks,
		"folders":   folders,
		"tags":      results.Tags,
	})
}

// Export serializes the visible-bookmark set to a flat JSON array.
// Folder, tag and sharing data are deliberately absent from the format.
func (h *BookmarkHandler) Export(c echo.Context) error {
	m, err := h.membership(c)
	if err != nil {
		return err
	}

	bookmarks, err := h.bookmarkRepository.ListVisible(m, repositories.BookmarkListOptions{})
	if err != nil {
		return errInternal(err)
	}

	entries := make([]importer.Entry, len(bookmarks))
	for i, b := range bookmarks {
		entries[i] = importer.Entry{
			Title:             b.Title,
			URL:               b.URL,
			ForwardingEnabled: b.ForwardingEnabled,
			Pinned:            b.Pinned,
			CreatedAt:         b.CreatedAt,
		}
		if b.Slug != nil {
			entries[i].Slug = *b.Slug
		}
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="bookmarks.json"`)
	return c.JSON(http.StatusOK, entries)
}

// ImportSummary reports the outcome of a bulk import. Per-entry
// failures are collected here instead of aborting the batch.
type ImportSummary struct {
	Success int      `json:"success"`
	Failed  int      `json:"failed"`
	Errors  []string `json:"errors"`
}

// Import accepts a flat JSON bookmark array or a Netscape-format HTML
// bookmarks file and inserts each entry independently. A slug already
// taken in the account is dropped (forwarding disabled) rather than
// failing the entry.
func (h *BookmarkHandler) Import(c echo.Context) error {
	m, err := h.membership(c)
	if err != nil {
		return err
	}

	body := bufio.NewReader(c.Request().Body)
	var entries []importer.Entry
	if isNetscapePayload(body) {
		entries, err = importer.ParseNetscape(body)
	} else {
		entries, err = importer.ParseJSON(body)
	}
	if err != nil {
		return errValidation("Unrecognized import format: " + err.Error())
	}

	validate := validator.New()
	summary := ImportSummary{Errors: []string{}}
	for i, entry := range entries {
		if err := h.importEntry(validate, m.UserID, entry); err != nil {
			summary.Failed++
			summary.Errors = append(summary.Errors, "entry "+strconv.Itoa(i+1)+": "+err.Error())
			continue
		}
		summary.Success++
	}

	return c.JSON(http.StatusOK, summary)
}

func (h *BookmarkHandler) importEntry(validate *validator.Validate, userID uint, entry importer.Entry) error {
	title := strings.TrimSpace(entry.Title)
	if title == "" {
		return errValidation("title is required")
	}
	if len(title) > 255 {
		title = title[:255]
	}
	if err := validate.Var(entry.URL, "required,url"); err != nil {
		return errValidation("invalid url")
	}

	bookmark := &models.Bookmark{
		UserID:            userID,
		Title:             title,
		URL:               entry.URL,
		ForwardingEnabled: entry.ForwardingEnabled,
		Pinned:            entry.Pinned,
	}
	slug := strings.TrimSpace(entry.Slug)
	if slug != "" {
		taken, err := h.bookmarkRepository.SlugTaken(userID, slug, 0)
		if err != nil {
			return err
		}
		if taken {
			// Degrade gracefully: keep the bookmark, drop the slug.
			slug = ""
		}
	}
	if slug != "" {
		bookmark.Slug = &slug
	} else {
		bookmark.ForwardingEnabled = false
	}

	return h.bookmarkRepository.CreateBookmark(bookmark, repositories.BookmarkAssociations{})
}

// isNetscapePayload peeks at the body: Netscape bookmark files start
// with markup, the JSON export format with an array.
func isNetscapePayload(r *bufio.Reader) bool {
	for {
		b, err := r.ReadByte()
		if err != nil {
			return false
		}
		switch b {
		case ' ', '\t', '\r', '\n':
			continue
		default:
			_ = r.UnreadByte()
			return b == '<'
		}
	}
}

func (h *BookmarkHandler) mapMutationError(err error) error {
	switch err {
	case repositories.ErrSlugTaken:
		return errConflict("Slug already in use on another bookmark")
	case repositories.ErrFolderNotOwned:
		return errForbidden("Cannot attach bookmark to a folder you do not own")
	case repositories.ErrNotTeamMember:
		return errForbidden("Cannot share with a team you are not a member of")
	default:
		return errInternal(err)
	}
}
