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

// TeamHandler handles team HTTP requests. Creating and deleting teams
// is restricted to admins; any authenticated user can see the teams
// they belong to.
type TeamHandler struct {
	teamRepository repositories.TeamRepository
	userRepository repositories.UserRepository
}

// NewTeamHandler creates a new TeamHandler
func NewTeamHandler(teamRepo repositories.TeamRepository, userRepo repositories.UserRepository) *TeamHandler {
	return &TeamHandler{
		teamRepository: teamRepo,
		userRepository: userRepo,
	}
}

// RegisterTeamRoutes registers team routes
func (h *TeamHandler) RegisterTeamRoutes(g *echo.Group) {
	g.GET("/teams", h.ListTeams)
	g.GET("/teams/:id", h.GetTeam)
	g.POST("/teams", h.CreateTeam)
	g.PUT("/teams/:id", h.UpdateTeam)
	g.DELETE("/teams/:id", h.DeleteTeam)
	g.POST("/teams/:id/members", h.AddMember)
	g.DELETE("/teams/:id/members/:userId", h.RemoveMember)
}

// ListTeams returns all teams for admins, the caller's teams otherwise.
func (h *TeamHandler) ListTeams(c echo.Context) error {
	claims := getClaimsFromContext(c)
	if claims == nil {
		return errUnauthorized("User not authenticated")
	}

	var (
		teams []models.Team
		err   error
	)
	if claims.IsAdmin {
		teams, err = h.teamRepository.GetTeams()
	} else {
		teams, err = h.teamRepository.GetTeamsForUser(claims.UserID)
	}
	if err != nil {
		return errInternal(err)
	}
	return c.JSON(http.StatusOK, teams)
}

// GetTeam returns one team with its members. Non-admins only see teams
// they belong to; anything else reads as not found.
func (h *TeamHandler) GetTeam(c echo.Context) error {
	claims := getClaimsFromContext(c)
	if claims == nil {
		return errUnauthorized("User not authenticated")
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return errValidation("Invalid team ID")
	}

	if !claims.IsAdmin {
		isMember, err := h.teamRepository.IsMember(uint(id), claims.UserID)
		if err != nil {
			return errInternal(err)
		}
		if !isMember {
			return errNotFound("Team not found")
		}
	}

	team, err := h.teamRepository.GetTeamByID(uint(id))
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return errNotFound("Team not found")
		}
		return errInternal(err)
	}

	members, err := h.teamRepository.GetMembers(team.ID)
	if err != nil {
		return errInternal(err)
	}

	return c.JSON(http.StatusOK, echo.Map{"team": team, "members": members})
}

// CreateTeam creates a team (admin only)
func (h *TeamHandler) CreateTeam(c echo.Context) error {
	claims := getClaimsFromContext(c)
	if claims == nil {
		return errUnauthorized("User not authenticated")
	}
	if !claims.IsAdmin {
		return errForbidden("Only admins may create teams")
	}

	var req models.CreateTeamRequest
	if err := c.Bind(&req); err != nil {
		return errValidation("Invalid request payload")
	}

	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return errValidation(err.Error())
	}

	team := &models.Team{
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
	}
	if team.Name == "" {
		return errValidation("Name is required")
	}

	if err := h.teamRepository.CreateTeam(team); err != nil {
		return errInternal(err)
	}
	return c.JSON(http.StatusCreated, team)
}

// UpdateTeam edits a team's name/description (admin only)
func (h *TeamHandler) UpdateTeam(c echo.Context) error {
	claims := getClaimsFromContext(c)
	if claims == nil {
		return errUnauthorized("User not authenticated")
	}
	if !claims.IsAdmin {
		return errForbidden("Only admins may edit teams")
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return errValidation("Invalid team ID")
	}

	team, err := h.teamRepository.GetTeamByID(uint(id))
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return errNotFound("Team not found")
		}
		return errInternal(err)
	}

	var req models.UpdateTeamRequest
	if err := c.Bind(&req); err != nil {
		return errValidation("Invalid request payload")
	}

	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return errValidation(err.Error())
	}

	if req.Name != "" {
		team.Name = strings.TrimSpace(req.Name)
	}
	if req.Description != "" {
		team.Description = req.Description
	}

	if err := h.teamRepository.UpdateTeam(team); err != nil {
		return errInternal(err)
	}
	return c.JSON(http.StatusOK, team)
}

// DeleteTeam deletes a team and its membership/share edges (admin only)
func (h *TeamHandler) DeleteTeam(c echo.Context) error {
	claims := getClaimsFromContext(c)
	if claims == nil {
		return errUnauthorized("User not authenticated")
	}
	if !claims.IsAdmin {
		return errForbidden("Only admins may delete teams")
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return errValidation("Invalid team ID")
	}

	if err := h.teamRepository.DeleteTeam(uint(id)); err != nil {
		return errInternal(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// AddMember adds a user to a team (admin only)
func (h *TeamHandler) AddMember(c echo.Context) error {
	claims := getClaimsFromContext(c)
	if claims == nil {
		return errUnauthorized("User not authenticated")
	}
	if !claims.IsAdmin {
		return errForbidden("Only admins may manage team members")
	}

	teamID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return errValidation("Invalid team ID")
	}

	var req models.AddTeamMemberRequest
	if err := c.Bind(&req); err != nil {
		return errValidation("Invalid request payload")
	}

	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return errValidation(err.Error())
	}

	if _, err := h.teamRepository.GetTeamByID(uint(teamID)); err != nil {
		if err == gorm.ErrRecordNotFound {
			return errNotFound("Team not found")
		}
		return errInternal(err)
	}
	if _, err := h.userRepository.GetUserByID(req.UserID); err != nil {
		if err == gorm.ErrRecordNotFound {
			return errNotFound("User not found")
		}
		return errInternal(err)
	}

	isMember, err := h.teamRepository.IsMember(uint(teamID), req.UserID)
	if err != nil {
		return errInternal(err)
	}
	if isMember {
		return errConflict("User is already a member of this team")
	}

	if err := h.teamRepository.AddMember(uint(teamID), req.UserID); err != nil {
		return errInternal(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// RemoveMember removes a user from a team (admin only)
func (h *TeamHandler) RemoveMember(c echo.Context) error {
	claims := getClaimsFromContext(c)
	if claims == nil {
		return errUnauthorized("User not authenticated")
	}
	if !claims.IsAdmin {
		return errForbidden("Only admins may manage team members")
	}

	teamID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return errValidation("Invalid team ID")
	}
	userID, err := strconv.ParseUint(c.Param("userId"), 10, 32)
	if err != nil {
		return errValidation("Invalid user ID")
	}

	if err := h.teamRepository.RemoveMember(uint(teamID), uint(userID)); err != nil {
		if err == gorm.ErrRecordNotFound {
			return errNotFound("Membership not found")
		}
		return errInternal(err)
	}
	return c.NoContent(http.StatusNoContent)
}
