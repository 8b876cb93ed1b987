package api

import (
	"net/http"

	"fitcabinet/coach-crm/internal/domain"
	"fitcabinet/coach-crm/internal/service"

	"github.com/gin-gonic/gin"
)

// SetupRoutes wires every handler into the gin engine.
func SetupRoutes(
	router *gin.Engine,
	jwtSecret string,
	authService service.AuthService,
	clientService service.ClientService,
	sessionService service.SessionService,
	notificationService service.NotificationService,
	catalogService service.CatalogService,
) {
	authHandler := NewAuthHandler(authService)
	clientHandler := NewClientHandler(clientService)
	sessionHandler := NewSessionHandler(sessionService)
	notificationHandler := NewNotificationHandler(notificationService)
	catalogHandler := NewCatalogHandler(catalogService)

	authMiddleware := AuthMiddleware(jwtSecret)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	apiV1 := router.Group("/api/v1")

	authGroup := apiV1.Group("/auth")
	{
		authGroup.POST("/register", authHandler.Register)
		authGroup.POST("/login", authHandler.Login)
	}

	protected := apiV1.Group("")
	protected.Use(authMiddleware)
	{
		protected.GET("/me", func(c *gin.Context) {
			accountID, err := currentAccountID(c)
			if err != nil {
				abortWithError(c, http.StatusInternalServerError, "Failed to get account from token")
				return
			}
			role, _ := c.Get(ContextUserRoleKey)
			c.JSON(http.StatusOK, gin.H{"userId": accountID.Hex(), "role": role})
		})

		// --- Client cards ---
		// Listing and item access are visibility-scoped, so both roles
		// share the routes; provisioning is a coach action.
		clientGroup := protected.Group("/clients")
		{
			clientGroup.GET("", clientHandler.ListClients)
			clientGroup.POST("", RoleMiddleware(domain.RoleCoach), clientHandler.OnboardClient)
			clientGroup.GET("/:clientId", clientHandler.GetClient)
			clientGroup.PATCH("/:clientId", RoleMiddleware(domain.RoleCoach), clientHandler.UpdateClient)
			clientGroup.DELETE("/:clientId", RoleMiddleware(domain.RoleCoach), clientHandler.DeleteClient)

			clientGroup.GET("/:clientId/attributes", clientHandler.ListAttributes)
			clientGroup.POST("/:clientId/attributes", clientHandler.AddAttribute)
			clientGroup.PUT("/:clientId/attributes/:slug", clientHandler.UpdateAttribute)
		}

		// --- Sessions & comments ---
		sessionGroup := protected.Group("/sessions")
		{
			sessionGroup.GET("", sessionHandler.ListSessions)
			sessionGroup.POST("", sessionHandler.CreateSession)
			sessionGroup.GET("/:sessionId", sessionHandler.GetSession)
			sessionGroup.PATCH("/:sessionId", sessionHandler.UpdateSession)

			sessionGroup.GET("/:sessionId/comments", sessionHandler.ListComments)
			sessionGroup.POST("/:sessionId/comments", sessionHandler.AddComment)
			sessionGroup.POST("/:sessionId/comments/read", sessionHandler.MarkCommentsRead)
			sessionGroup.POST("/:sessionId/comments/attachment/upload-url", sessionHandler.RequestCommentAttachmentUpload)
			sessionGroup.GET("/:sessionId/comments/:commentId/attachment", sessionHandler.GetCommentAttachment)

			sessionGroup.POST("/:sessionId/attachment/upload-url", sessionHandler.RequestAttachmentUpload)
			sessionGroup.POST("/:sessionId/attachment/confirm", sessionHandler.ConfirmAttachment)
			sessionGroup.GET("/:sessionId/attachment", sessionHandler.GetAttachment)
		}

		// --- Notifications ---
		notificationGroup := protected.Group("/notifications")
		{
			notificationGroup.GET("", notificationHandler.ListMine)
			notificationGroup.GET("/unread-count", notificationHandler.UnreadCount)
			notificationGroup.POST("/:notificationId/read", notificationHandler.MarkRead)
			notificationGroup.POST("/read-all", notificationHandler.MarkAllRead)
		}

		// --- Reference catalogs ---
		// Reads are open to both roles (the client app renders names and
		// colors); writes are coach-only.
		catalogGroup := protected.Group("/catalogs")
		{
			catalogGroup.GET("/categories", catalogHandler.ListCategories)
			catalogGroup.POST("/categories", RoleMiddleware(domain.RoleCoach), catalogHandler.CreateCategory)
			catalogGroup.DELETE("/categories/:slug", RoleMiddleware(domain.RoleCoach), catalogHandler.DeleteCategory)

			catalogGroup.GET("/tags", catalogHandler.ListTags)
			catalogGroup.POST("/tags", RoleMiddleware(domain.RoleCoach), catalogHandler.CreateTag)
			catalogGroup.DELETE("/tags/:slug", RoleMiddleware(domain.RoleCoach), catalogHandler.DeleteTag)

			catalogGroup.GET("/attributes", catalogHandler.ListAttributes)
			catalogGroup.POST("/attributes", RoleMiddleware(domain.RoleCoach), catalogHandler.CreateAttribute)
			catalogGroup.DELETE("/attributes/:slug", RoleMiddleware(domain.RoleCoach), catalogHandler.DeleteAttribute)
		}
	}
}
