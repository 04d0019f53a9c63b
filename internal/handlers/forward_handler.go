package handlers

import (
	"log"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/slugbase/slugbase/internal/repositories"
	"gorm.io/gorm"
)

// ForwardHandler serves the public short-URL redirects. No session is
// required: a {user_key}/{slug} pair resolves only when the owner
// enabled forwarding for that bookmark.
type ForwardHandler struct {
	bookmarkRepository repositories.BookmarkRepository
}

// NewForwardHandler creates a new ForwardHandler
func NewForwardHandler(bookmarkRepo repositories.BookmarkRepository) *ForwardHandler {
	return &ForwardHandler{bookmarkRepository: bookmarkRepo}
}

// RegisterForwardRoutes registers the public redirect route
func (h *ForwardHandler) RegisterForwardRoutes(e *echo.Echo) {
	e.GET("/:userKey/:slug", h.Forward)
}

// Forward redirects to the bookmark's target URL and bumps its access
// counter. Counter failures never block the redirect.
func (h *ForwardHandler) Forward(c echo.Context) error {
	userKey := c.Param("userKey")
	slug := c.Param("slug")

	bookmark, err := h.bookmarkRepository.GetForForwarding(userKey, slug)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return errNotFound("Not found")
		}
		return errInternal(err)
	}

	if err := h.bookmarkRepository.TrackAccess(bookmark.ID); err != nil {
		log.Printf("track-access failed for bookmark %d: %v", bookmark.ID, err)
	}

	return c.Redirect(http.StatusFound, bookmark.URL)
}
