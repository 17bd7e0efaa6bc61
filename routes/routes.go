package routes

import (
	"log"
	"net/http"

	"quizsite/handlers"
	"quizsite/middleware"
	"quizsite/services"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // the token check below is the access control
	},
}

func SetupRoutes(
	router *gin.Engine,
	authHandler *handlers.AuthHandler,
	quizHandler *handlers.QuizHandler,
	resultHandler *handlers.ResultHandler,
	adminHandler *handlers.AdminHandler,
	userService *services.UserService,
	hub *services.Hub,
	jwtSecret string,
) {
	api := router.Group("/api")
	{
		// Auth routes (public)
		auth := api.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
		}

		// Protected routes
		protected := api.Group("/")
		protected.Use(middleware.AuthMiddleware(jwtSecret))
		{
			protected.GET("/auth/profile", authHandler.GetProfile)
			protected.PUT("/auth/profile", authHandler.UpdateProfile)

			quizzes := protected.Group("/quizzes")
			{
				quizzes.GET("", quizHandler.ListQuizzes)
				quizzes.GET("/:id/start", quizHandler.StartQuiz)
				quizzes.POST("/:id/submit", quizHandler.SubmitQuiz)
			}

			results := protected.Group("/results")
			{
				results.GET("", resultHandler.History)
				results.GET("/:id", resultHandler.GetResult)
			}

			protected.GET("/stats/me", resultHandler.MyStats)

			// Staff routes
			admin := protected.Group("/admin")
			admin.Use(middleware.RequireStaff(userService))
			{
				admin.GET("/dashboard", adminHandler.Dashboard)
				admin.GET("/users", adminHandler.Users)
				admin.DELETE("/users/:id", adminHandler.DeleteUser)

				admin.GET("/quizzes", adminHandler.ListQuizzes)
				admin.POST("/quizzes", adminHandler.CreateQuiz)
				admin.GET("/quizzes/:id", adminHandler.GetQuiz)
				admin.PUT("/quizzes/:id", adminHandler.UpdateQuiz)
				admin.DELETE("/quizzes/:id", adminHandler.DeleteQuiz)
				admin.POST("/quizzes/:id/import", adminHandler.ImportQuestions)

				admin.GET("/results", adminHandler.Results)
				admin.GET("/results/:id", adminHandler.ViewResult)
			}
		}
	}

	// WebSocket endpoint for the live admin feed
	ws := router.Group("/ws")
	ws.Use(middleware.AuthMiddleware(jwtSecret), middleware.RequireStaff(userService))
	ws.GET("/admin", func(c *gin.Context) {
		userID := c.GetUint("user_id")
		username := c.GetString("username")

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.Printf("WebSocket upgrade failed for user %d: %v", userID, err)
			return
		}

		log.Printf("Admin feed connection established for user %d (%s)", userID, username)
		hub.RegisterClient(conn, userID, username)
	})

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
}
