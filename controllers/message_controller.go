package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"charaverse-api/services"
	"charaverse-api/utils"
)

type MessageController struct {
	service *services.MessageService
}

func NewMessageController(service *services.MessageService) *MessageController {
	return &MessageController{service: service}
}

type SendMessageRequest struct {
	SenderID   uint   `json:"sender_id" binding:"required"`
	ReceiverID uint   `json:"receiver_id" binding:"required"`
	Content    string `json:"content" binding:"required"`
}

func (mc *MessageController) Send(c *gin.Context) {
	userID := c.GetString("user_id")

	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	msg, err := mc.service.Send(req.SenderID, req.ReceiverID, req.Content, userID)
	if err != nil {
		utils.SendServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, msg)
}

// GetInbox returns the deduplicated conversation partner list for one
// of the requesting user's characters.
func (mc *MessageController) GetInbox(c *gin.Context) {
	userID := c.GetString("user_id")

	characterID, err := strconv.ParseUint(c.Param("character_id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid character ID"})
		return
	}

	inbox, err := mc.service.Inbox(uint(characterID), userID)
	if err != nil {
		utils.SendServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, inbox)
}

// GetConversation returns the pairwise history and marks unread
// messages from the partner as read.
func (mc *MessageController) GetConversation(c *gin.Context) {
	userID := c.GetString("user_id")

	characterID, err := strconv.ParseUint(c.Param("character_id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid character ID"})
		return
	}
	partnerID, err := strconv.ParseUint(c.Param("partner_id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid partner ID"})
		return
	}

	view, err := mc.service.Conversation(uint(characterID), uint(partnerID), userID)
	if err != nil {
		utils.SendServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}

func (mc *MessageController) Delete(c *gin.Context) {
	userID := c.GetString("user_id")

	messageID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid message ID"})
		return
	}

	if err := mc.service.Delete(uint(messageID), userID); err != nil {
		utils.SendServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Message deleted"})
}
