package repositories

import (
	"github.com/slugbase/slugbase/internal/models"
	"gorm.io/gorm"
)

// UserRepository defines the interface for user data operations
type UserRepository interface {
	CreateUser(user *models.User) error
	GetUserByID(id uint) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
	GetUserByUserKey(userKey string) (*models.User, error)
	UpdateUser(user *models.User) error
	DeleteUser(id uint) error
}

// GormUserRepository implements UserRepository on the configured
// relational backend (PostgreSQL or SQLite).
type GormUserRepository struct {
	db *gorm.DB
}

// NewGormUserRepository creates a new GormUserRepository
func NewGormUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

// CreateUser creates a new user
func (r *GormUserRepository) CreateUser(user *models.User) error {
	return r.db.Create(user).Error
}

// GetUserByID retrieves a user by ID
func (r *GormUserRepository) GetUserByID(id uint) (*models.User, error) {
	var user models.User
	if err := r.db.First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUserByEmail retrieves a user by email address
func (r *GormUserRepository) GetUserByEmail(email string) (*models.User, error) {
	var user models.User
	if err := r.db.Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUserByUserKey retrieves a user by their public forwarding key
func (r *GormUserRepository) GetUserByUserKey(userKey string) (*models.User, error) {
	var user models.User
	if err := r.db.Where("user_key = ?", userKey).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateUser updates an existing user
func (r *GormUserRepository) UpdateUser(user *models.User) error {
	return r.db.Save(user).Error
}

// DeleteUser deletes a user by ID, cascading all owned bookmarks,
// folders and tags.
func (r *GormUserRepository) DeleteUser(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		// SQLite builds without foreign_keys pragma enforcement would
		// otherwise leave orphaned rows, so owned rows are removed
		// explicitly before the user itself.
		var bookmarkIDs []uint
		if err := tx.Model(&models.Bookmark{}).Where("user_id = ?", id).Pluck("id", &bookmarkIDs).Error; err != nil {
			return err
		}
		if len(bookmarkIDs) > 0 {
			for _, edge := range []interface{}{
				&models.BookmarkFolder{}, &models.BookmarkTag{},
				&models.BookmarkUserShare{}, &models.BookmarkTeamShare{},
			} {
				if err := tx.Where("bookmark_id IN ?", bookmarkIDs).Delete(edge).Error; err != nil {
					return err
				}
			}
		}
		var folderIDs []uint
		if err := tx.Model(&models.Folder{}).Where("user_id = ?", id).Pluck("id", &folderIDs).Error; err != nil {
			return err
		}
		if len(folderIDs) > 0 {
			for _, edge := range []interface{}{
				&models.BookmarkFolder{}, &models.FolderUserShare{}, &models.FolderTeamShare{},
			} {
				if err := tx.Where("folder_id IN ?", folderIDs).Delete(edge).Error; err != nil {
					return err
				}
			}
		}
		var tagIDs []uint
		if err := tx.Model(&models.Tag{}).Where("user_id = ?", id).Pluck("id", &tagIDs).Error; err != nil {
			return err
		}
		if len(tagIDs) > 0 {
			if err := tx.Where("tag_id IN ?", tagIDs).Delete(&models.BookmarkTag{}).Error; err != nil {
				return err
			}
		}
		for _, owned := range []interface{}{
			&models.Bookmark{}, &models.Folder{}, &models.Tag{},
		} {
			if err := tx.Where("user_id = ?", id).Delete(owned).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("user_id = ?", id).Delete(&models.TeamMember{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", id).Delete(&models.BookmarkUserShare{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", id).Delete(&models.FolderUserShare{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.User{}, id).Error
	})
}
