package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"charaverse-api/models"
	"charaverse-api/services"
	"charaverse-api/utils"
)

type RelationshipController struct {
	service *services.RelationshipService
}

func NewRelationshipController(service *services.RelationshipService) *RelationshipController {
	return &RelationshipController{service: service}
}

type ProposeRelationshipRequest struct {
	Character1ID uint   `json:"character1_id" binding:"required"`
	Character2ID uint   `json:"character2_id" binding:"required"`
	Type         string `json:"type" binding:"required"`
	Description  string `json:"description"`
	Status       string `json:"status"`
}

func (rc *RelationshipController) Propose(c *gin.Context) {
	userID := c.GetString("user_id")

	var req ProposeRelationshipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rel, err := rc.service.Propose(services.ProposeRelationshipInput{
		Character1ID: req.Character1ID,
		Character2ID: req.Character2ID,
		Type:         req.Type,
		Description:  req.Description,
		Status:       models.RelationshipStatus(req.Status),
	}, userID)
	if err != nil {
		utils.SendServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, rel)
}

func (rc *RelationshipController) Approve(c *gin.Context) {
	userID := c.GetString("user_id")

	relationshipID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid relationship ID"})
		return
	}

	rel, err := rc.service.Approve(uint(relationshipID), userID)
	if err != nil {
		utils.SendServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, rel)
}

func (rc *RelationshipController) Decline(c *gin.Context) {
	userID := c.GetString("user_id")

	relationshipID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid relationship ID"})
		return
	}

	if err := rc.service.Decline(uint(relationshipID), userID); err != nil {
		utils.SendServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Relationship request declined"})
}

type UpdateRelationshipRequest struct {
	Type        string `json:"type" binding:"required"`
	Description string `json:"description"`
	Status      string `json:"status" binding:"required"`
}

func (rc *RelationshipController) Update(c *gin.Context) {
	userID := c.GetString("user_id")

	relationshipID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid relationship ID"})
		return
	}

	var req UpdateRelationshipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rel, err := rc.service.Update(uint(relationshipID), req.Type, req.Description,
		models.RelationshipStatus(req.Status), userID)
	if err != nil {
		utils.SendServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, rel)
}

func (rc *RelationshipController) Delete(c *gin.Context) {
	userID := c.GetString("user_id")

	relationshipID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid relationship ID"})
		return
	}

	if err := rc.service.Delete(uint(relationshipID), userID); err != nil {
		utils.SendServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Relationship removed"})
}

func (rc *RelationshipController) ListForCharacter(c *gin.Context) {
	userID := c.GetString("user_id")

	characterID, err := strconv.ParseUint(c.Param("character_id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid character ID"})
		return
	}

	views, err := rc.service.ListForCharacter(uint(characterID), userID)
	if err != nil {
		utils.SendServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"relationships": views})
}
