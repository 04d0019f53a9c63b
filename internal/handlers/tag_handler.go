package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/slugbase/slugbase/internal/models"
	"github.com/slugbase/slugbase/internal/repositories"
	"gorm.io/gorm"
)

// TagHandler handles tag HTTP requests. Tags are private labels, so
// every route operates strictly inside the caller's own namespace.
type TagHandler struct {
	tagRepository repositories.TagRepository
}

// NewTagHandler creates a new TagHandler
func NewTagHandler(tagRepo repositories.TagRepository) *TagHandler {
	return &TagHandler{tagRepository: tagRepo}
}

// RegisterTagRoutes registers tag routes
func (h *TagHandler) RegisterTagRoutes(g *echo.Group) {
	g.GET("/tags", h.ListTags)
	g.GET("/tags/:id", h.GetTag)
	g.POST("/tags", h.CreateTag)
	g.PUT("/tags/:id", h.UpdateTag)
	g.DELETE("/tags/:id", h.DeleteTag)
}

// ListTags returns the caller's tags
func (h *TagHandler) ListTags(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return errUnauthorized("User not authenticated")
	}

	tags, err := h.tagRepository.ListByUser(currentUserID)
	if err != nil {
		return errInternal(err)
	}
	return c.JSON(http.StatusOK, tags)
}

// GetTag returns one owned tag
func (h *TagHandler) GetTag(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return errUnauthorized("User not authenticated")
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return errValidation("Invalid tag ID")
	}

	tag, err := h.tagRepository.GetOwnedByID(uint(id), currentUserID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return errNotFound("Tag not found")
		}
		return errInternal(err)
	}
	return c.JSON(http.StatusOK, tag)
}

// CreateTag creates a tag
func (h *TagHandler) CreateTag(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return errUnauthorized("User not authenticated")
	}

	var req models.CreateTagRequest
	if err := c.Bind(&req); err != nil {
		return errValidation("Invalid request payload")
	}

	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return errValidation(err.Error())
	}

	tag := &models.Tag{
		UserID: currentUserID,
		Name:   strings.TrimSpace(req.Name),
	}
	if tag.Name == "" {
		return errValidation("Name is required")
	}

	if err := h.tagRepository.CreateTag(tag); err != nil {
		return errInternal(err)
	}
	return c.JSON(http.StatusCreated, tag)
}

// UpdateTag renames an owned tag
func (h *TagHandler) UpdateTag(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return errUnauthorized("User not authenticated")
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return errValidation("Invalid tag ID")
	}

	tag, err := h.tagRepository.GetOwnedByID(uint(id), currentUserID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return errNotFound("Tag not found")
		}
		return errInternal(err)
	}

	var req models.UpdateTagRequest
	if err := c.Bind(&req); err != nil {
		return errValidation("Invalid request payload")
	}

	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return errValidation(err.Error())
	}

	tag.Name = strings.TrimSpace(req.Name)
	if tag.Name == "" {
		return errValidation("Name must not be empty")
	}

	if err := h.tagRepository.UpdateTag(tag); err != nil {
		return errInternal(err)
	}
	return c.JSON(http.StatusOK, tag)
}

// DeleteTag deletes an owned tag and its bookmark edges
func (h *TagHandler) DeleteTag(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return errUnauthorized("User not authenticated")
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return errValidation("Invalid tag ID")
	}

	if err := h.tagRepository.DeleteTag(uint(id), currentUserID); err != nil {
		if err == gorm.ErrRecordNotFound {
			return errNotFound("Tag not found")
		}
		return errInternal(err)
	}
	return c.NoContent(http.StatusNoContent)
}
