package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"charaverse-api/models"
)

type TeamController struct {
	db *gorm.DB
}

func NewTeamController(db *gorm.DB) *TeamController {
	return &TeamController{db: db}
}

type CreateTeamRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	EmblemURL   string `json:"emblem_url"`
}

func (tc *TeamController) GetTeams(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 50 {
		limit = 20
	}
	offset := (page - 1) * limit

	var teams []models.Team
	if err := tc.db.Order("members_count DESC").Offset(offset).Limit(limit).Find(&teams).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch teams"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"teams": teams})
}

func (tc *TeamController) GetTeam(c *gin.Context) {
	teamID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid team ID"})
		return
	}

	var team models.Team
	if err := tc.db.Preload("Members", "is_archived = ?", false).First(&team, uint(teamID)).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Team not found"})
		return
	}

	c.JSON(http.StatusOK, team)
}

func (tc *TeamController) CreateTeam(c *gin.Context) {
	userID := c.GetString("user_id")

	var req CreateTeamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	team := models.Team{
		Name:        req.Name,
		Description: req.Description,
		EmblemURL:   req.EmblemURL,
		OwnerID:     userID,
	}

	if err := tc.db.Create(&team).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create team"})
		return
	}

	c.JSON(http.StatusCreated, team)
}

func (tc *TeamController) UpdateTeam(c *gin.Context) {
	userID := c.GetString("user_id")

	teamID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid team ID"})
		return
	}

	var team models.Team
	if err := tc.db.First(&team, "id = ? AND owner_id = ?", uint(teamID), userID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Team not found or access denied"})
		return
	}

	var req CreateTeamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updates := map[string]interface{}{
		"name":        req.Name,
		"description": req.Description,
		"emblem_url":  req.EmblemURL,
	}

	if err := tc.db.Model(&team).Updates(updates).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update team"})
		return
	}

	c.JSON(http.StatusOK, team)
}

func (tc *TeamController) DeleteTeam(c *gin.Context) {
	userID := c.GetString("user_id")

	teamID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid team ID"})
		return
	}

	var team models.Team
	if err := tc.db.First(&team, "id = ? AND owner_id = ?", uint(teamID), userID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Team not found or access denied"})
		return
	}

	err = tc.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Character{}).Where("team_id = ?", team.ID).
			Updates(map[string]interface{}{"team_id": nil, "team_role": ""}).Error; err != nil {
			return err
		}
		return tx.Delete(&team).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete team"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Team deleted successfully"})
}

type JoinTeamRequest struct {
	CharacterID uint   `json:"character_id" binding:"required"`
	Role        string `json:"role"`
}

func (tc *TeamController) JoinTeam(c *gin.Context) {
	userID := c.GetString("user_id")

	teamID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid team ID"})
		return
	}

	var req JoinTeamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var team models.Team
	if err := tc.db.First(&team, uint(teamID)).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Team not found"})
		return
	}

	var character models.Character
	if err := tc.db.First(&character, "id = ? AND user_id = ?", req.CharacterID, userID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Character not found or access denied"})
		return
	}

	if character.TeamID != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Character is already in a team"})
		return
	}

	err = tc.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&character).
			Updates(map[string]interface{}{"team_id": team.ID, "team_role": req.Role}).Error; err != nil {
			return err
		}
		return tx.Model(&team).Update("members_count", gorm.Expr("members_count + 1")).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to join team"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Joined team successfully"})
}

func (tc *TeamController) LeaveTeam(c *gin.Context) {
	userID := c.GetString("user_id")

	teamID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid team ID"})
		return
	}

	characterID, err := strconv.ParseUint(c.Query("character_id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid character ID"})
		return
	}

	var character models.Character
	if err := tc.db.First(&character, "id = ? AND user_id = ?", uint(characterID), userID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Character not found or access denied"})
		return
	}

	if character.TeamID == nil || *character.TeamID != uint(teamID) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Character is not in this team"})
		return
	}

	err = tc.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&character).
			Updates(map[string]interface{}{"team_id": nil, "team_role": ""}).Error; err != nil {
			return err
		}
		return tx.Model(&models.Team{}).Where("id = ?", uint(teamID)).
			Update("members_count", gorm.Expr("members_count - 1")).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to leave team"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Left team successfully"})
}
