package handlers

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/slugbase/slugbase/internal/models"
	"github.com/slugbase/slugbase/internal/repositories"
	"gorm.io/gorm"
)

// UserHandler handles HTTP requests related to the user's own profile
type UserHandler struct {
	userRepository repositories.UserRepository
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(userRepo repositories.UserRepository) *UserHandler {
	return &UserHandler{userRepository: userRepo}
}

// RegisterProfileRoutes registers user profile-related routes
func (h *UserHandler) RegisterProfileRoutes(g *echo.Group) {
	g.GET("/profile", h.GetProfile)
	g.PUT("/profile", h.UpdateProfile)
	g.DELETE("/profile", h.DeleteProfile)
}

// GetProfile retrieves the authenticated user's profile
func (h *UserHandler) GetProfile(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return errUnauthorized("User not authenticated")
	}

	user, err := h.userRepository.GetUserByID(currentUserID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return errNotFound("User profile not found")
		}
		return errInternal(err)
	}
	return c.JSON(http.StatusOK, user)
}

// UpdateProfile updates the authenticated user's profile, including
// locale and theme preferences.
func (h *UserHandler) UpdateProfile(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return errUnauthorized("User not authenticated")
	}

	var req models.UpdateProfileRequest
	if err := c.Bind(&req); err != nil {
		return errValidation("Invalid request payload")
	}

	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return errValidation(err.Error())
	}

	user, err := h.userRepository.GetUserByID(currentUserID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return errNotFound("User profile not found")
		}
		return errInternal(err)
	}

	if req.Name != "" {
		user.Name = req.Name
	}
	if req.Email != "" {
		user.Email = req.Email
	}
	if req.Locale != "" {
		user.Locale = req.Locale
	}
	if req.Theme != "" {
		user.Theme = req.Theme
	}

	if err := h.userRepository.UpdateUser(user); err != nil {
		return errInternal(err)
	}

	return c.JSON(http.StatusOK, user)
}

// DeleteProfile deletes the authenticated user's account, cascading
// all owned bookmarks, folders and tags.
func (h *UserHandler) DeleteProfile(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return errUnauthorized("User not authenticated")
	}

	if err := h.userRepository.DeleteUser(currentUserID); err != nil {
		if err == gorm.ErrRecordNotFound {
			return errNotFound("User profile not found")
		}
		return errInternal(err)
	}

	return c.NoContent(http.StatusNoContent)
}
