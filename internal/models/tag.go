package models

import "time"

// Tag is a private organizational label; tags have no sharing concept.
type Tag struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    uint      `json:"user_id" gorm:"index"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	User User `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

type CreateTagRequest struct {
	Name string `json:"name" validate:"required,min=1,max=100"`
}

type UpdateTagRequest struct {
	Name string `json:"name" validate:"required,min=1,max=100"`
}
