package repositories

import (
	"github.com/slugbase/slugbase/internal/models"
	"github.com/slugbase/slugbase/internal/visibility"
	"gorm.io/gorm"
)

// FolderAssociations is the share edge set written on create.
type FolderAssociations struct {
	ShareUserIDs []uint
	ShareTeamIDs []uint
}

// FolderAssociationUpdate carries the share lists of an update; nil
// leaves a set untouched, non-nil replaces it wholesale.
type FolderAssociationUpdate struct {
	ShareUserIDs *[]uint
	ShareTeamIDs *[]uint
}

// FolderRepository defines the interface for folder data operations
type FolderRepository interface {
	ListVisible(m visibility.Membership) ([]models.Folder, error)
	GetVisibleByID(id uint, m visibility.Membership) (*models.Folder, error)
	GetOwnedByID(id, userID uint) (*models.Folder, error)
	CreateFolder(f *models.Folder, assoc FolderAssociations) error
	UpdateFolder(f *models.Folder, assoc FolderAssociationUpdate) error
	DeleteFolder(id, userID uint) error
}

// GormFolderRepository implements FolderRepository
type GormFolderRepository struct {
	db *gorm.DB
}

// NewGormFolderRepository creates a new GormFolderRepository
func NewGormFolderRepository(db *gorm.DB) *GormFolderRepository {
	return &GormFolderRepository{db: db}
}

// ListVisible returns the folders readable under the membership
// snapshot, owned first then alphabetical.
func (r *GormFolderRepository) ListVisible(m visibility.Membership) ([]models.Folder, error) {
	var folders []models.Folder
	err := r.db.Model(&models.Folder{}).
		Preload("UserShares").Preload("TeamShares").
		Scopes(visibility.FolderScope(m)).
		Order("folders.name ASC").
		Find(&folders).Error
	if err != nil {
		return nil, err
	}
	return folders, nil
}

// GetVisibleByID fetches one folder, reporting record-not-found for
// existing but invisible ids.
func (r *GormFolderRepository) GetVisibleByID(id uint, m visibility.Membership) (*models.Folder, error) {
	var folder models.Folder
	err := r.db.Preload("UserShares").Preload("TeamShares").First(&folder, id).Error
	if err != nil {
		return nil, err
	}
	if !visibility.FolderVisible(&folder, m) {
		return nil, gorm.ErrRecordNotFound
	}
	return &folder, nil
}

// GetOwnedByID fetches one folder only if the user owns it.
func (r *GormFolderRepository) GetOwnedByID(id, userID uint) (*models.Folder, error) {
	var folder models.Folder
	err := r.db.Preload("UserShares").Preload("TeamShares").
		Where("id = ? AND user_id = ?", id, userID).
		First(&folder).Error
	if err != nil {
		return nil, err
	}
	return &folder, nil
}

// CreateFolder inserts the folder and its share edges in one transaction.
func (r *GormFolderRepository) CreateFolder(f *models.Folder, assoc FolderAssociations) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(f).Error; err != nil {
			return err
		}
		return writeFolderEdges(tx, f, assoc)
	})
}

// UpdateFolder persists changed fields and replaces each share set
// present in the update.
func (r *GormFolderRepository) UpdateFolder(f *models.Folder, assoc FolderAssociationUpdate) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&models.Folder{}).Where("id = ?", f.ID).
			Updates(map[string]interface{}{"name": f.Name, "icon": f.Icon}).Error
		if err != nil {
			return err
		}

		full := FolderAssociations{}
		replace := false
		if assoc.ShareUserIDs != nil {
			if err := tx.Where("folder_id = ?", f.ID).Delete(&models.FolderUserShare{}).Error; err != nil {
				return err
			}
			full.ShareUserIDs = *assoc.ShareUserIDs
			replace = true
		}
		if assoc.ShareTeamIDs != nil {
			if err := tx.Where("folder_id = ?", f.ID).Delete(&models.FolderTeamShare{}).Error; err != nil {
				return err
			}
			full.ShareTeamIDs = *assoc.ShareTeamIDs
			replace = true
		}
		if !replace {
			return nil
		}
		return writeFolderEdges(tx, f, full)
	})
}

func writeFolderEdges(tx *gorm.DB, f *models.Folder, assoc FolderAssociations) error {
	for _, userID := range uniqueIDs(assoc.ShareUserIDs) {
		if userID == f.UserID {
			continue
		}
		if err := tx.Create(&models.FolderUserShare{FolderID: f.ID, UserID: userID}).Error; err != nil {
			return err
		}
	}
	for _, teamID := range uniqueIDs(assoc.ShareTeamIDs) {
		var count int64
		err := tx.Model(&models.TeamMember{}).
			Where("team_id = ? AND user_id = ?", teamID, f.UserID).
			Count(&count).Error
		if err != nil {
			return err
		}
		if count == 0 {
			return ErrNotTeamMember
		}
		if err := tx.Create(&models.FolderTeamShare{FolderID: f.ID, TeamID: teamID}).Error; err != nil {
			return err
		}
	}
	return nil
}

// DeleteFolder removes an owned folder, its share edges and its
// bookmark-membership edges. The bookmarks themselves are never
// deleted.
func (r *GormFolderRepository) DeleteFolder(id, userID uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ? AND user_id = ?", id, userID).Delete(&models.Folder{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		for _, edge := range []interface{}{
			&models.BookmarkFolder{}, &models.FolderUserShare{}, &models.FolderTeamShare{},
		} {
			if err := tx.Where("folder_id = ?", id).Delete(edge).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
