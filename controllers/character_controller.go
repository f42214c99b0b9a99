package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"charaverse-api/models"
	"charaverse-api/utils"
)

type CharacterController struct {
	db *gorm.DB
}

func NewCharacterController(db *gorm.DB) *CharacterController {
	return &CharacterController{db: db}
}

type CreateCharacterRequest struct {
	Name      string `json:"name" binding:"required"`
	Tagline   string `json:"tagline"`
	Bio       string `json:"bio"`
	AvatarURL string `json:"avatar_url"`
	IsPrivate bool   `json:"is_private"`
}

func (cc *CharacterController) GetCharacters(c *gin.Context) {
	userID := c.GetString("user_id")

	var characters []models.Character
	if err := cc.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&characters).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch characters"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"characters": characters})
}

func (cc *CharacterController) GetCharacter(c *gin.Context) {
	userID := c.GetString("user_id")

	characterID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid character ID"})
		return
	}

	var character models.Character
	if err := cc.db.Preload("User").Preload("Team").First(&character, uint(characterID)).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Character not found"})
		return
	}

	// Private and archived characters are only visible to their owner
	if (character.IsPrivate || character.IsArchived) && character.UserID != userID {
		c.JSON(http.StatusNotFound, gin.H{"error": "Character not found"})
		return
	}

	character.User.Password = ""
	c.JSON(http.StatusOK, character)
}

func (cc *CharacterController) CreateCharacter(c *gin.Context) {
	userID := c.GetString("user_id")

	var req CreateCharacterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if !utils.IsValidCharacterName(req.Name) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid character name"})
		return
	}

	character := models.Character{
		UserID:    userID,
		Name:      req.Name,
		Tagline:   req.Tagline,
		Bio:       req.Bio,
		AvatarURL: req.AvatarURL,
		IsPrivate: req.IsPrivate,
	}

	if err := cc.db.Create(&character).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create character"})
		return
	}

	c.JSON(http.StatusCreated, character)
}

type UpdateCharacterRequest struct {
	Name      string `json:"name"`
	Tagline   string `json:"tagline"`
	Bio       string `json:"bio"`
	AvatarURL string `json:"avatar_url"`
	IsPrivate *bool  `json:"is_private"`
}

func (cc *CharacterController) UpdateCharacter(c *gin.Context) {
	userID := c.GetString("user_id")

	characterID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid character ID"})
		return
	}

	var character models.Character
	if err := cc.db.First(&character, "id = ? AND user_id = ?", uint(characterID), userID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Character not found or access denied"})
		return
	}

	var req UpdateCharacterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updates := map[string]interface{}{}
	if req.Name != "" {
		updates["name"] = req.Name
	}
	if req.Tagline != "" {
		updates["tagline"] = req.Tagline
	}
	if req.Bio != "" {
		updates["bio"] = req.Bio
	}
	if req.AvatarURL != "" {
		updates["avatar_url"] = req.AvatarURL
	}
	if req.IsPrivate != nil {
		updates["is_private"] = *req.IsPrivate
	}

	if len(updates) > 0 {
		if err := cc.db.Model(&character).Updates(updates).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update character"})
			return
		}
	}

	c.JSON(http.StatusOK, character)
}

// ArchiveCharacter hides a character from the platform without deleting
// its history.
func (cc *CharacterController) ArchiveCharacter(c *gin.Context) {
	userID := c.GetString("user_id")

	characterID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid character ID"})
		return
	}

	var character models.Character
	if err := cc.db.First(&character, "id = ? AND user_id = ?", uint(characterID), userID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Character not found or access denied"})
		return
	}

	if err := cc.db.Model(&character).Update("is_archived", true).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to archive character"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Character archived successfully"})
}

func (cc *CharacterController) DeleteCharacter(c *gin.Context) {
	userID := c.GetString("user_id")

	characterID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid character ID"})
		return
	}

	var character models.Character
	if err := cc.db.First(&character, "id = ? AND user_id = ?", uint(characterID), userID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Character not found or access denied"})
		return
	}

	if err := cc.db.Delete(&character).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete character"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Character deleted successfully"})
}
