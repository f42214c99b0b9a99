package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"charaverse-api/models"
)

type ThreadController struct {
	db *gorm.DB
}

func NewThreadController(db *gorm.DB) *ThreadController {
	return &ThreadController{db: db}
}

type CreateThreadRequest struct {
	CharacterID uint   `json:"character_id" binding:"required"`
	Title       string `json:"title" binding:"required"`
	Body        string `json:"body" binding:"required"`
}

func (tc *ThreadController) CreateThread(c *gin.Context) {
	userID := c.GetString("user_id")

	var req CreateThreadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var character models.Character
	if err := tc.db.First(&character, "id = ? AND user_id = ?", req.CharacterID, userID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Character not found or access denied"})
		return
	}

	thread := models.Thread{
		CharacterID: character.ID,
		Title:       req.Title,
		Body:        req.Body,
	}

	if err := tc.db.Create(&thread).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create thread"})
		return
	}

	c.JSON(http.StatusCreated, thread)
}

func (tc *ThreadController) GetThreads(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 50 {
		limit = 20
	}
	offset := (page - 1) * limit

	var threads []models.Thread
	if err := tc.db.Preload("Character").
		Order("updated_at DESC").
		Offset(offset).Limit(limit).
		Find(&threads).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch threads"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"threads": threads})
}

func (tc *ThreadController) GetThread(c *gin.Context) {
	threadID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid thread ID"})
		return
	}

	var thread models.Thread
	if err := tc.db.Preload("Character").Preload("Replies.Character").
		First(&thread, uint(threadID)).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Thread not found"})
		return
	}

	c.JSON(http.StatusOK, thread)
}

type ReplyRequest struct {
	CharacterID uint   `json:"character_id" binding:"required"`
	Body        string `json:"body" binding:"required"`
}

func (tc *ThreadController) Reply(c *gin.Context) {
	userID := c.GetString("user_id")

	threadID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid thread ID"})
		return
	}

	var req ReplyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var thread models.Thread
	if err := tc.db.First(&thread, uint(threadID)).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Thread not found"})
		return
	}

	if thread.IsLocked {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Thread is locked"})
		return
	}

	var character models.Character
	if err := tc.db.First(&character, "id = ? AND user_id = ?", req.CharacterID, userID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Character not found or access denied"})
		return
	}

	reply := models.ThreadReply{
		ThreadID:    thread.ID,
		CharacterID: character.ID,
		Body:        req.Body,
	}

	err = tc.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&reply).Error; err != nil {
			return err
		}
		return tx.Model(&thread).Update("replies_count", gorm.Expr("replies_count + 1")).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to post reply"})
		return
	}

	c.JSON(http.StatusCreated, reply)
}
