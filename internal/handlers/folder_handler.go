package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/slugbase/slugbase/internal/models"
	"github.com/slugbase/slugbase/internal/repositories"
	"github.com/slugbase/slugbase/internal/visibility"
	"gorm.io/gorm"
)

// FolderHandler handles folder HTTP requests
type FolderHandler struct {
	folderRepository repositories.FolderRepository
	teamRepository   repositories.TeamRepository
}

// NewFolderHandler creates a new FolderHandler
func NewFolderHandler(folderRepo repositories.FolderRepository, teamRepo repositories.TeamRepository) *FolderHandler {
	return &FolderHandler{
		folderRepository: folderRepo,
		teamRepository:   teamRepo,
	}
}

// RegisterFolderRoutes registers folder routes
func (h *FolderHandler) RegisterFolderRoutes(g *echo.Group) {
	g.GET("/folders", h.ListFolders)
	g.GET("/folders/:id", h.GetFolder)
	g.POST("/folders", h.CreateFolder)
	g.PUT("/folders/:id", h.UpdateFolder)
	g.DELETE("/folders/:id", h.DeleteFolder)
}

func (h *FolderHandler) membership(c echo.Context) (visibility.Membership, error) {
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

// ListFolders returns all folders visible to the current user
func (h *FolderHandler) ListFolders(c echo.Context) error {
	m, err := h.membership(c)
	if err != nil {
		return err
	}

	folders, err := h.folderRepository.ListVisible(m)
	if err != nil {
		return errInternal(err)
	}

	responses := make([]models.FolderResponse, len(folders))
	for i := range folders {
		responses[i] = models.NewFolderResponse(&folders[i], m.UserID)
	}
	return c.JSON(http.StatusOK, responses)
}

// GetFolder returns one visible folder
func (h *FolderHandler) GetFolder(c echo.Context) error {
	m, err := h.membership(c)
	if err != nil {
		return err
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return errValidation("Invalid folder ID")
	}

	folder, err := h.folderRepository.GetVisibleByID(uint(id), m)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return errNotFound("Folder not found")
		}
		return errInternal(err)
	}
	return c.JSON(http.StatusOK, models.NewFolderResponse(folder, m.UserID))
}

// CreateFolder creates a folder with its share edges
func (h *FolderHandler) CreateFolder(c echo.Context) error {
	m, err := h.membership(c)
	if err != nil {
		return err
	}

	var req models.CreateFolderRequest
	if err := c.Bind(&req); err != nil {
		return errValidation("Invalid request payload")
	}

	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return errValidation(err.Error())
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return errValidation("Name is required")
	}

	folder := &models.Folder{
		UserID: m.UserID,
		Name:   req.Name,
		Icon:   req.Icon,
	}

	shareTeamIDs := req.ShareTeamIDs
	if req.ShareAllTeams {
		shareTeamIDs = m.TeamIDs
	}

	assoc := repositories.FolderAssociations{
		ShareUserIDs: req.ShareUserIDs,
		ShareTeamIDs: shareTeamIDs,
	}

	if err := h.folderRepository.CreateFolder(folder, assoc); err != nil {
		if err == repositories.ErrNotTeamMember {
			return errForbidden("Cannot share with a team you are not a member of")
		}
		return errInternal(err)
	}

	created, err := h.folderRepository.GetOwnedByID(folder.ID, m.UserID)
	if err != nil {
		return errInternal(err)
	}
	return c.JSON(http.StatusCreated, models.NewFolderResponse(created, m.UserID))
}

// UpdateFolder updates an owned folder; share lists present in the
// request replace the prior set.
func (h *FolderHandler) UpdateFolder(c echo.Context) error {
	m, err := h.membership(c)
	if err != nil {
		return err
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return errValidation("Invalid folder ID")
	}

	folder, err := h.folderRepository.GetOwnedByID(uint(id), m.UserID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return errNotFound("Folder not found")
		}
		return errInternal(err)
	}

	var req models.UpdateFolderRequest
	if err := c.Bind(&req); err != nil {
		return errValidation("Invalid request payload")
	}

	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return errValidation(err.Error())
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return errValidation("Name must not be empty")
		}
		folder.Name = name
	}
	if req.Icon != nil {
		folder.Icon = *req.Icon
	}

	shareTeamIDs := req.ShareTeamIDs
	if req.ShareAllTeams {
		teamIDs := m.TeamIDs
		shareTeamIDs = &teamIDs
	}

	assoc := repositories.FolderAssociationUpdate{
		ShareUserIDs: req.ShareUserIDs,
		ShareTeamIDs: shareTeamIDs,
	}

	if err := h.folderRepository.UpdateFolder(folder, assoc); err != nil {
		if err == repositories.ErrNotTeamMember {
			return errForbidden("Cannot share with a team you are not a member of")
		}
		return errInternal(err)
	}

	updated, err := h.folderRepository.GetOwnedByID(folder.ID, m.UserID)
	if err != nil {
		return errInternal(err)
	}
	return c.JSON(http.StatusOK, models.NewFolderResponse(updated, m.UserID))
}

// DeleteFolder deletes an owned folder. Bookmarks inside the folder are
// untouched; only the membership edges go.
func (h *FolderHandler) DeleteFolder(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return errUnauthorized("User not authenticated")
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return errValidation("Invalid folder ID")
	}

	if err := h.folderRepository.DeleteFolder(uint(id), currentUserID); err != nil {
		if err == gorm.ErrRecordNotFound {
			return errNotFound("Folder not found")
		}
		return errInternal(err)
	}
	return c.NoContent(http.StatusNoContent)
}
