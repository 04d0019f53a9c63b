package models

import "time"

type Team struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TeamMember links a user to a team; team-scoped shares are inherited
// through these rows.
type TeamMember struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    uint      `json:"user_id" gorm:"index;uniqueIndex:idx_team_member"`
	TeamID    uint      `json:"team_id" gorm:"index;uniqueIndex:idx_team_member"`
	CreatedAt time.Time `json:"created_at"`

	User User `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Team Team `json:"-" gorm:"foreignKey:TeamID;constraint:OnDelete:CASCADE"`
}

type CreateTeamRequest struct {
	Name        string `json:"name" validate:"required,min=1,max=100"`
	Description string `json:"description" validate:"max=500"`
}

type UpdateTeamRequest struct {
	Name        string `json:"name,omitempty" validate:"omitempty,min=1,max=100"`
	Description string `json:"description,omitempty" validate:"omitempty,max=500"`
}

type AddTeamMemberRequest struct {
	UserID uint `json:"user_id" validate:"required"`
}
