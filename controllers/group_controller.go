package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"charaverse-api/models"
	"charaverse-api/repositories"
	"charaverse-api/services"
	"charaverse-api/utils"
)

type GroupController struct {
	db             *gorm.DB
	messageService *services.MessageService
	messageRepo    *repositories.MessageRepository
}

func NewGroupController(db *gorm.DB, messageService *services.MessageService) *GroupController {
	return &GroupController{
		db:             db,
		messageService: messageService,
		messageRepo:    repositories.NewMessageRepository(db),
	}
}

type CreateGroupRequest struct {
	Name        string `json:"name" binding:"required"`
	CharacterID uint   `json:"character_id" binding:"required"`
}

func (gc *GroupController) CreateGroup(c *gin.Context) {
	userID := c.GetString("user_id")

	var req CreateGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var character models.Character
	if err := gc.db.First(&character, "id = ? AND user_id = ?", req.CharacterID, userID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Character not found or access denied"})
		return
	}

	group := models.GroupConversation{
		Name:        req.Name,
		InviteCode:  strings.ReplaceAll(uuid.New().String(), "-", "")[:12],
		CreatedByID: character.ID,
	}

	err := gc.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&group).Error; err != nil {
			return err
		}
		return tx.Create(&models.GroupMember{
			GroupID:     group.ID,
			CharacterID: character.ID,
		}).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create group"})
		return
	}

	c.JSON(http.StatusCreated, group)
}

type JoinGroupRequest struct {
	InviteCode  string `json:"invite_code" binding:"required"`
	CharacterID uint   `json:"character_id" binding:"required"`
}

func (gc *GroupController) JoinGroup(c *gin.Context) {
	userID := c.GetString("user_id")

	var req JoinGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var character models.Character
	if err := gc.db.First(&character, "id = ? AND user_id = ?", req.CharacterID, userID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Character not found or access denied"})
		return
	}

	var group models.GroupConversation
	if err := gc.db.First(&group, "invite_code = ?", req.InviteCode).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Group not found"})
		return
	}

	var existing int64
	gc.db.Model(&models.GroupMember{}).
		Where("group_id = ? AND character_id = ?", group.ID, character.ID).
		Count(&existing)
	if existing > 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "Character is already a member"})
		return
	}

	member := models.GroupMember{
		GroupID:     group.ID,
		CharacterID: character.ID,
	}
	if err := gc.db.Create(&member).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to join group"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Joined group successfully", "group": group})
}

func (gc *GroupController) GetGroup(c *gin.Context) {
	userID := c.GetString("user_id")

	groupID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid group ID"})
		return
	}

	var group models.GroupConversation
	if err := gc.db.Preload("Members.Character").First(&group, uint(groupID)).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Group not found"})
		return
	}

	if !gc.isMember(group.ID, userID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "None of your characters are in this group"})
		return
	}

	c.JSON(http.StatusOK, group)
}

type SendGroupMessageRequest struct {
	SenderID uint   `json:"sender_id" binding:"required"`
	Content  string `json:"content" binding:"required"`
}

func (gc *GroupController) SendMessage(c *gin.Context) {
	userID := c.GetString("user_id")

	groupID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid group ID"})
		return
	}

	var req SendGroupMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	msg, err := gc.messageService.SendToGroup(req.SenderID, uint(groupID), req.Content, userID)
	if err != nil {
		utils.SendServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, msg)
}

func (gc *GroupController) GetMessages(c *gin.Context) {
	userID := c.GetString("user_id")

	groupID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid group ID"})
		return
	}

	var group models.GroupConversation
	if err := gc.db.First(&group, uint(groupID)).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Group not found"})
		return
	}

	if !gc.isMember(group.ID, userID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "None of your characters are in this group"})
		return
	}

	messages, err := gc.messageRepo.GroupMessages(group.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch messages"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"messages": messages})
}

// isMember reports whether any of the user's characters belongs to the
// group.
func (gc *GroupController) isMember(groupID uint, userID string) bool {
	var count int64
	gc.db.Model(&models.GroupMember{}).
		Joins("JOIN characters ON characters.id = group_members.character_id").
		Where("group_members.group_id = ? AND characters.user_id = ?", groupID, userID).
		Count(&count)
	return count > 0
}
