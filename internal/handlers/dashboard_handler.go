package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/slugbase/slugbase/internal/models"
	"github.com/slugbase/slugbase/internal/repositories"
)

// DashboardHandler serves the read-only dashboard aggregates
type DashboardHandler struct {
	dashboardRepository repositories.DashboardRepository
	teamRepository      repositories.TeamRepository
}

// NewDashboardHandler creates a new DashboardHandler
func NewDashboardHandler(dashboardRepo repositories.DashboardRepository, teamRepo repositories.TeamRepository) *DashboardHandler {
	return &DashboardHandler{
		dashboardRepository: dashboardRepo,
		teamRepository:      teamRepo,
	}
}

// RegisterDashboardRoutes registers dashboard routes
func (h *DashboardHandler) RegisterDashboardRoutes(g *echo.Group) {
	g.GET("/dashboard/stats", h.GetStats)
}

// GetStats returns owned/shared counts, recent bookmarks and top tags
func (h *DashboardHandler) GetStats(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return errUnauthorized("User not authenticated")
	}

	m, err := h.teamRepository.MembershipOf(currentUserID)
	if err != nil {
		return errInternal(err)
	}

	stats, err := h.dashboardRepository.GetStats(m)
	if err != nil {
		return errInternal(err)
	}

	recent := make([]models.BookmarkResponse, len(stats.RecentBookmarks))
	for i := range stats.RecentBookmarks {
		recent[i] = models.NewBookmarkResponse(&stats.RecentBookmarks[i], currentUserID)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"total_bookmarks":  stats.TotalBookmarks,
		"total_folders":    stats.TotalFolders,
		"total_tags":       stats.TotalTags,
		"shared_bookmarks": stats.SharedBookmarks,
		"shared_folders":   stats.SharedFolders,
		"recent_bookmarks": recent,
		"top_tags":         stats.TopTags,
	})
}
