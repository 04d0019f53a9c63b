package repositories

import (
	"github.com/slugbase/slugbase/internal/models"
	"github.com/slugbase/slugbase/internal/visibility"
	"gorm.io/gorm"
)

// DashboardStats holds the read-only aggregates shown on the dashboard.
type DashboardStats struct {
	TotalBookmarks  int64             `json:"total_bookmarks"`
	TotalFolders    int64             `json:"total_folders"`
	TotalTags       int64             `json:"total_tags"`
	SharedBookmarks int64             `json:"shared_bookmarks"`
	SharedFolders   int64             `json:"shared_folders"`
	RecentBookmarks []models.Bookmark `json:"-"`
	TopTags         []TagUsage        `json:"top_tags"`
}

// TagUsage pairs an owned tag with its bookmark-attachment count.
type TagUsage struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Count int64  `json:"count"`
}

// DashboardRepository aggregates counts for the dashboard view. It has
// no write side effects.
type DashboardRepository interface {
	GetStats(m visibility.Membership) (*DashboardStats, error)
}

// GormDashboardRepository implements DashboardRepository
type GormDashboardRepository struct {
	db *gorm.DB
}

// NewGormDashboardRepository creates a new GormDashboardRepository
func NewGormDashboardRepository(db *gorm.DB) *GormDashboardRepository {
	return &GormDashboardRepository{db: db}
}

// GetStats computes owned counts, shared counts under the same
// visibility union as listings (restricted to rows the requester does
// not own), the five most recent own bookmarks and the five own tags
// with the most attachments.
func (r *GormDashboardRepository) GetStats(m visibility.Membership) (*DashboardStats, error) {
	stats := &DashboardStats{}

	if err := r.db.Model(&models.Bookmark{}).Where("user_id = ?", m.UserID).Count(&stats.TotalBookmarks).Error; err != nil {
		return nil, err
	}
	if err := r.db.Model(&models.Folder{}).Where("user_id = ?", m.UserID).Count(&stats.TotalFolders).Error; err != nil {
		return nil, err
	}
	if err := r.db.Model(&models.Tag{}).Where("user_id = ?", m.UserID).Count(&stats.TotalTags).Error; err != nil {
		return nil, err
	}

	err := r.db.Model(&models.Bookmark{}).
		Scopes(visibility.BookmarkScope(m)).
		Where("bookmarks.user_id <> ?", m.UserID).
		Count(&stats.SharedBookmarks).Error
	if err != nil {
		return nil, err
	}
	err = r.db.Model(&models.Folder{}).
		Scopes(visibility.FolderScope(m)).
		Where("folders.user_id <> ?", m.UserID).
		Count(&stats.SharedFolders).Error
	if err != nil {
		return nil, err
	}

	err = r.db.Model(&models.Bookmark{}).
		Where("user_id = ?", m.UserID).
		Order("created_at DESC").
		Limit(5).
		Find(&stats.RecentBookmarks).Error
	if err != nil {
		return nil, err
	}

	err = r.db.Model(&models.Tag{}).
		Select("tags.id, tags.name, COUNT(bookmark_tags.id) AS count").
		Joins("LEFT JOIN bookmark_tags ON bookmark_tags.tag_id = tags.id").
		Where("tags.user_id = ?", m.UserID).
		Group("tags.id, tags.name").
		Order("count DESC").
		Limit(5).
		Scan(&stats.TopTags).Error
	if err != nil {
		return nil, err
	}

	return stats, nil
}
