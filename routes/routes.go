package routes

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"charaverse-api/config"
	"charaverse-api/controllers"
	"charaverse-api/middleware"
	"charaverse-api/services"
)

func SetupRoutes(r *gin.Engine, db *gorm.DB, cfg *config.Config, logger *zap.Logger, emailService *services.EmailService) {
	// Services
	webhookService := services.NewWebhookService(cfg.DiscordWebhookURL, logger)
	relationshipService := services.NewRelationshipService(db, webhookService, logger)
	messageService := services.NewMessageService(db, webhookService, logger)

	// Controllers
	authController := controllers.NewAuthController(db, cfg.JWTSecret, emailService)
	userController := controllers.NewUserController(db)
	characterController := controllers.NewCharacterController(db)
	relationshipController := controllers.NewRelationshipController(relationshipService)
	messageController := controllers.NewMessageController(messageService)
	groupController := controllers.NewGroupController(db, messageService)
	teamController := controllers.NewTeamController(db)
	postController := controllers.NewPostController(db)
	threadController := controllers.NewThreadController(db)

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
			"status":  "healthy",
		})
	})

	// API version 1
	v1 := r.Group("/api/v1")

	// Auth routes (public)
	auth := v1.Group("/auth")
	{
		auth.POST("/login", authController.Login)
		auth.POST("/register", authController.Register)
		auth.POST("/logout", authController.Logout)
		auth.POST("/send-verification", authController.SendVerification)
		auth.POST("/verify-code", authController.VerifyCode)
	}

	// Protected routes
	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	{
		users := protected.Group("/users")
		{
			users.GET("/profile", userController.GetProfile)
			users.PUT("/profile", userController.UpdateProfile)
		}

		characters := protected.Group("/characters")
		{
			characters.GET("/", characterController.GetCharacters)
			characters.POST("/", characterController.CreateCharacter)
			characters.GET("/:id", characterController.GetCharacter)
			characters.PUT("/:id", characterController.UpdateCharacter)
			characters.POST("/:id/archive", characterController.ArchiveCharacter)
			characters.DELETE("/:id", characterController.DeleteCharacter)
		}

		relationships := protected.Group("/relationships")
		{
			relationships.POST("/", relationshipController.Propose)
			relationships.POST("/:id/approve", relationshipController.Approve)
			relationships.POST("/:id/decline", relationshipController.Decline)
			relationships.PUT("/:id", relationshipController.Update)
			relationships.DELETE("/:id", relationshipController.Delete)
			relationships.GET("/character/:character_id", relationshipController.ListForCharacter)
		}

		messages := protected.Group("/messages")
		{
			messages.POST("/", messageController.Send)
			messages.GET("/inbox/:character_id", messageController.GetInbox)
			messages.GET("/conversation/:character_id/:partner_id", messageController.GetConversation)
			messages.DELETE("/:id", messageController.Delete)
		}

		groups := protected.Group("/groups")
		{
			groups.POST("/", groupController.CreateGroup)
			groups.POST("/join", groupController.JoinGroup)
			groups.GET("/:id", groupController.GetGroup)
			groups.POST("/:id/messages", groupController.SendMessage)
			groups.GET("/:id/messages", groupController.GetMessages)
		}

		teams := protected.Group("/teams")
		{
			teams.GET("/", teamController.GetTeams)
			teams.POST("/", teamController.CreateTeam)
			teams.GET("/:id", teamController.GetTeam)
			teams.PUT("/:id", teamController.UpdateTeam)
			teams.DELETE("/:id", teamController.DeleteTeam)
			teams.POST("/:id/join", teamController.JoinTeam)
			teams.DELETE("/:id/leave", teamController.LeaveTeam)
		}

		posts := protected.Group("/posts")
		{
			posts.POST("/", postController.CreatePost)
			posts.GET("/feed", postController.GetFeed)
			posts.GET("/:id", postController.GetPost)
			posts.PUT("/:id", postController.UpdatePost)
			posts.DELETE("/:id", postController.DeletePost)
			posts.POST("/:id/like", postController.LikePost)
			posts.DELETE("/:id/unlike", postController.UnlikePost)
		}

		threads := protected.Group("/threads")
		{
			threads.GET("/", threadController.GetThreads)
			threads.POST("/", threadController.CreateThread)
			threads.GET("/:id", threadController.GetThread)
			threads.POST("/:id/replies", threadController.Reply)
		}
	}
}
