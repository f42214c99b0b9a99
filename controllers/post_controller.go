package controllers

import (
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"charaverse-api/models"
)

type PostController struct {
	db *gorm.DB
}

func NewPostController(db *gorm.DB) *PostController {
	return &PostController{db: db}
}

type CreatePostRequest struct {
	CharacterID uint     `json:"character_id" binding:"required"`
	Body        string   `json:"body" binding:"required"`
	ImageUrls   []string `json:"image_urls"`
}

func (pc *PostController) CreatePost(c *gin.Context) {
	userID := c.GetString("user_id")

	var req CreatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var character models.Character
	if err := pc.db.First(&character, "id = ? AND user_id = ?", req.CharacterID, userID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Character not found or access denied"})
		return
	}

	post := models.Post{
		ID:          uuid.New().String(),
		CharacterID: character.ID,
		Body:        req.Body,
		ImageUrls:   models.StringSlice(req.ImageUrls),
	}

	if err := pc.db.Create(&post).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create post"})
		return
	}

	c.JSON(http.StatusCreated, post)
}

func (pc *PostController) GetPost(c *gin.Context) {
	postID := c.Param("id")

	var post models.Post
	if err := pc.db.Preload("Character").First(&post, "id = ?", postID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
		return
	}

	c.JSON(http.StatusOK, post)
}

type UpdatePostRequest struct {
	Body string `json:"body" binding:"required"`
}

func (pc *PostController) UpdatePost(c *gin.Context) {
	userID := c.GetString("user_id")
	postID := c.Param("id")

	var post models.Post
	if err := pc.db.Preload("Character").First(&post, "id = ?", postID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
		return
	}

	if post.Character.UserID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "You do not own this post"})
		return
	}

	var req UpdatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := pc.db.Model(&post).Update("body", req.Body).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update post"})
		return
	}

	c.JSON(http.StatusOK, post)
}

func (pc *PostController) DeletePost(c *gin.Context) {
	userID := c.GetString("user_id")
	postID := c.Param("id")

	var post models.Post
	if err := pc.db.Preload("Character").First(&post, "id = ?", postID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
		return
	}

	if post.Character.UserID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "You do not own this post"})
		return
	}

	err := pc.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", post.ID).Delete(&models.PostLike{}).Error; err != nil {
			return err
		}
		return tx.Delete(&post).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete post"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Post deleted successfully"})
}

type LikePostRequest struct {
	CharacterID uint `json:"character_id" binding:"required"`
}

func (pc *PostController) LikePost(c *gin.Context) {
	userID := c.GetString("user_id")
	postID := c.Param("id")

	var req LikePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var character models.Character
	if err := pc.db.First(&character, "id = ? AND user_id = ?", req.CharacterID, userID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Character not found or access denied"})
		return
	}

	var post models.Post
	if err := pc.db.First(&post, "id = ?", postID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
		return
	}

	var existing int64
	pc.db.Model(&models.PostLike{}).
		Where("post_id = ? AND character_id = ?", post.ID, character.ID).
		Count(&existing)
	if existing > 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "Already liked this post"})
		return
	}

	err := pc.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&models.PostLike{PostID: post.ID, CharacterID: character.ID}).Error; err != nil {
			return err
		}
		return tx.Model(&post).Update("likes_count", gorm.Expr("likes_count + 1")).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to like post"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Post liked"})
}

func (pc *PostController) UnlikePost(c *gin.Context) {
	userID := c.GetString("user_id")
	postID := c.Param("id")

	characterID, err := strconv.ParseUint(c.Query("character_id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid character ID"})
		return
	}

	var character models.Character
	if err := pc.db.First(&character, "id = ? AND user_id = ?", uint(characterID), userID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Character not found or access denied"})
		return
	}

	res := pc.db.Where("post_id = ? AND character_id = ?", postID, character.ID).Delete(&models.PostLike{})
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to unlike post"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Like not found"})
		return
	}

	if err := pc.db.Model(&models.Post{}).Where("id = ?", postID).
		Update("likes_count", gorm.Expr("likes_count - 1")).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to unlike post"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Post unliked"})
}

// GetFeed returns the paginated feed of posts by visible characters,
// newest first, decorated with the viewing character's like state.
func (pc *PostController) GetFeed(c *gin.Context) {
	userID := c.GetString("user_id")
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	viewerCharID, _ := strconv.ParseUint(c.DefaultQuery("character_id", "0"), 10, 32)

	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 50 {
		limit = 10
	}
	offset := (page - 1) * limit

	base := pc.db.Model(&models.Post{}).
		Joins("JOIN characters ON characters.id = posts.character_id").
		Where("characters.is_archived = ? AND (characters.is_private = ? OR characters.user_id = ?)",
			false, false, userID)

	var total int64
	if err := base.Count(&total).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch feed"})
		return
	}

	var posts []models.Post
	if err := base.Preload("Character").
		Order("posts.created_at DESC").
		Offset(offset).Limit(limit).
		Find(&posts).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch feed"})
		return
	}

	likedPosts := map[string]bool{}
	if viewerCharID > 0 && len(posts) > 0 {
		postIDs := make([]string, 0, len(posts))
		for _, p := range posts {
			postIDs = append(postIDs, p.ID)
		}
		var likes []models.PostLike
		pc.db.Where("character_id = ? AND post_id IN ?", uint(viewerCharID), postIDs).Find(&likes)
		for _, like := range likes {
			likedPosts[like.PostID] = true
		}
	}

	decorated := make([]models.PostWithInteractions, 0, len(posts))
	for _, p := range posts {
		decorated = append(decorated, models.PostWithInteractions{
			Post:    p,
			IsLiked: likedPosts[p.ID],
		})
	}

	totalPages := int(math.Ceil(float64(total) / float64(limit)))
	c.JSON(http.StatusOK, models.FeedResponse{
		Posts:      decorated,
		Page:       page,
		Limit:      limit,
		Total:      total,
		HasMore:    page < totalPages,
		TotalPages: totalPages,
	})
}
