package repositories

import (
	"github.com/slugbase/slugbase/internal/models"
	"gorm.io/gorm"
)

// TagRepository defines the interface for tag data operations. Tags are
// private to their owner, so every method is scoped by user id.
type TagRepository interface {
	ListByUser(userID uint) ([]models.Tag, error)
	GetOwnedByID(id, userID uint) (*models.Tag, error)
	CreateTag(tag *models.Tag) error
	UpdateTag(tag *models.Tag) error
	DeleteTag(id, userID uint) error
}

// GormTagRepository implements TagRepository
type GormTagRepository struct {
	db *gorm.DB
}

// NewGormTagRepository creates a new GormTagRepository
func NewGormTagRepository(db *gorm.DB) *GormTagRepository {
	return &GormTagRepository{db: db}
}

func (r *GormTagRepository) ListByUser(userID uint) ([]models.Tag, error) {
	var tags []models.Tag
	if err := r.db.Where("user_id = ?", userID).Order("name ASC").Find(&tags).Error; err != nil {
		return nil, err
	}
	return tags, nil
}

func (r *GormTagRepository) GetOwnedByID(id, userID uint) (*models.Tag, error) {
	var tag models.Tag
	if err := r.db.Where("id = ? AND user_id = ?", id, userID).First(&tag).Error; err != nil {
		return nil, err
	}
	return &tag, nil
}

func (r *GormTagRepository) CreateTag(tag *models.Tag) error {
	return r.db.Create(tag).Error
}

func (r *GormTagRepository) UpdateTag(tag *models.Tag) error {
	return r.db.Save(tag).Error
}

// DeleteTag removes an owned tag and its bookmark edges.
func (r *GormTagRepository) DeleteTag(id, userID uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ? AND user_id = ?", id, userID).Delete(&models.Tag{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return tx.Where("tag_id = ?", id).Delete(&models.BookmarkTag{}).Error
	})
}
