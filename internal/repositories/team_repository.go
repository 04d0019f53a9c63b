package repositories

import (
	"github.com/slugbase/slugbase/internal/models"
	"github.com/slugbase/slugbase/internal/visibility"
	"gorm.io/gorm"
)

// TeamRepository defines the interface for team and membership operations
type TeamRepository interface {
	CreateTeam(team *models.Team) error
	GetTeamByID(id uint) (*models.Team, error)
	GetTeams() ([]models.Team, error)
	GetTeamsForUser(userID uint) ([]models.Team, error)
	UpdateTeam(team *models.Team) error
	DeleteTeam(id uint) error
	AddMember(teamID, userID uint) error
	RemoveMember(teamID, userID uint) error
	GetMembers(teamID uint) ([]models.User, error)
	IsMember(teamID, userID uint) (bool, error)
	MembershipOf(userID uint) (visibility.Membership, error)
}

// GormTeamRepository implements TeamRepository
type GormTeamRepository struct {
	db *gorm.DB
}

// NewGormTeamRepository creates a new GormTeamRepository
func NewGormTeamRepository(db *gorm.DB) *GormTeamRepository {
	return &GormTeamRepository{db: db}
}

func (r *GormTeamRepository) CreateTeam(team *models.Team) error {
	return r.db.Create(team).Error
}

func (r *GormTeamRepository) GetTeamByID(id uint) (*models.Team, error) {
	var team models.Team
	if err := r.db.First(&team, id).Error; err != nil {
		return nil, err
	}
	return &team, nil
}

func (r *GormTeamRepository) GetTeams() ([]models.Team, error) {
	var teams []models.Team
	if err := r.db.Order("name ASC").Find(&teams).Error; err != nil {
		return nil, err
	}
	return teams, nil
}

// GetTeamsForUser returns the teams the user currently belongs to.
func (r *GormTeamRepository) GetTeamsForUser(userID uint) ([]models.Team, error) {
	var teams []models.Team
	err := r.db.
		Joins("JOIN team_members ON team_members.team_id = teams.id").
		Where("team_members.user_id = ?", userID).
		Order("teams.name ASC").
		Find(&teams).Error
	if err != nil {
		return nil, err
	}
	return teams, nil
}

func (r *GormTeamRepository) UpdateTeam(team *models.Team) error {
	return r.db.Save(team).Error
}

// DeleteTeam removes a team along with its membership and share edges.
func (r *GormTeamRepository) DeleteTeam(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("team_id = ?", id).Delete(&models.TeamMember{}).Error; err != nil {
			return err
		}
		if err := tx.Where("team_id = ?", id).Delete(&models.BookmarkTeamShare{}).Error; err != nil {
			return err
		}
		if err := tx.Where("team_id = ?", id).Delete(&models.FolderTeamShare{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Team{}, id).Error
	})
}

func (r *GormTeamRepository) AddMember(teamID, userID uint) error {
	return r.db.Create(&models.TeamMember{TeamID: teamID, UserID: userID}).Error
}

func (r *GormTeamRepository) RemoveMember(teamID, userID uint) error {
	res := r.db.Where("team_id = ? AND user_id = ?", teamID, userID).Delete(&models.TeamMember{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *GormTeamRepository) GetMembers(teamID uint) ([]models.User, error) {
	var users []models.User
	err := r.db.
		Joins("JOIN team_members ON team_members.user_id = users.id").
		Where("team_members.team_id = ?", teamID).
		Order("users.name ASC").
		Find(&users).Error
	if err != nil {
		return nil, err
	}
	return users, nil
}

func (r *GormTeamRepository) IsMember(teamID, userID uint) (bool, error) {
	var count int64
	err := r.db.Model(&models.TeamMember{}).
		Where("team_id = ? AND user_id = ?", teamID, userID).
		Count(&count).Error
	return count > 0, err
}

// MembershipOf loads a fresh visibility snapshot for the user. Every
// request that evaluates the visibility predicate starts here; the
// snapshot is never cached across requests.
func (r *GormTeamRepository) MembershipOf(userID uint) (visibility.Membership, error) {
	var teamIDs []uint
	err := r.db.Model(&models.TeamMember{}).
		Where("user_id = ?", userID).
		Pluck("team_id", &teamIDs).Error
	if err != nil {
		return visibility.Membership{}, err
	}
	return visibility.Membership{UserID: userID, TeamIDs: teamIDs}, nil
}
