package models

import "time"

const (
	FolderTypeOwn    = "own"
	FolderTypeShared = "shared"
)

type Folder struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    uint      `json:"user_id" gorm:"index"`
	Name      string    `json:"name"`
	Icon      string    `json:"icon"` // Icon identifier, validated at the presentation layer only
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	UserShares []FolderUserShare `json:"-" gorm:"foreignKey:FolderID"`
	TeamShares []FolderTeamShare `json:"-" gorm:"foreignKey:FolderID"`

	User User `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

// FolderUserShare grants a user read access to every bookmark currently
// placed in the folder. Access is structural: nothing is copied onto
// the member bookmarks.
type FolderUserShare struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	FolderID  uint      `json:"folder_id" gorm:"index;uniqueIndex:idx_folder_user_share"`
	UserID    uint      `json:"user_id" gorm:"index;uniqueIndex:idx_folder_user_share"`
	CreatedAt time.Time `json:"created_at"`
}

type FolderTeamShare struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	FolderID  uint      `json:"folder_id" gorm:"index;uniqueIndex:idx_folder_team_share"`
	TeamID    uint      `json:"team_id" gorm:"index;uniqueIndex:idx_folder_team_share"`
	CreatedAt time.Time `json:"created_at"`
}

type CreateFolderRequest struct {
	Name          string `json:"name" validate:"required,min=1,max=150"`
	Icon          string `json:"icon" validate:"omitempty,max=50"`
	ShareUserIDs  []uint `json:"share_user_ids"`
	ShareTeamIDs  []uint `json:"share_team_ids"`
	ShareAllTeams bool   `json:"share_all_teams"`
}

type UpdateFolderRequest struct {
	Name          *string `json:"name" validate:"omitempty,min=1,max=150"`
	Icon          *string `json:"icon" validate:"omitempty,max=50"`
	ShareUserIDs  *[]uint `json:"share_user_ids"`
	ShareTeamIDs  *[]uint `json:"share_team_ids"`
	ShareAllTeams bool    `json:"share_all_teams"`
}

type FolderResponse struct {
	ID            uint      `json:"id"`
	UserID        uint      `json:"user_id"`
	Name          string    `json:"name"`
	Icon          string    `json:"icon"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
	FolderType    string    `json:"folder_type"`
	SharedUserIDs []uint    `json:"shared_user_ids"`
	SharedTeamIDs []uint    `json:"shared_team_ids"`
}

// NewFolderResponse builds the client view of a folder; its share edges
// must be preloaded.
func NewFolderResponse(f *Folder, requesterID uint) FolderResponse {
	resp := FolderResponse{
		ID:         f.ID,
		UserID:     f.UserID,
		Name:       f.Name,
		Icon:       f.Icon,
		CreatedAt:  f.CreatedAt,
		UpdatedAt:  f.UpdatedAt,
		FolderType: FolderTypeShared,
	}
	if f.UserID == requesterID {
		resp.FolderType = FolderTypeOwn
	}

	userSet := make(map[uint]bool)
	teamSet := make(map[uint]bool)
	for _, s := range f.UserShares {
		userSet[s.UserID] = true
	}
	for _, s := range f.TeamShares {
		teamSet[s.TeamID] = true
	}
	resp.SharedUserIDs = sortedIDSet(userSet)
	resp.SharedTeamIDs = sortedIDSet(teamSet)

	return resp
}
