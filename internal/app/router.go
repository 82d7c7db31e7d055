package app

import (
	"qa_forum_backend/docs"
	"qa_forum_backend/internal/config"
	"qa_forum_backend/internal/middleware"
	"qa_forum_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, repos *repositories, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())
	router.GET("/", c.health.Info)

	api := router.Group("/api")
	api.GET("", c.health.Info)
	api.GET("/health", c.health.HealthCheck)

	auth := middleware.AuthMiddleware(cfg, repos.user)
	tryAuth := middleware.TryAuthMiddleware(cfg, repos.user)
	activity := middleware.ActivityMiddleware(repos.user)

	a.registerAuthRoutes(api, c, auth, activity)
	a.registerQuestionRoutes(api, c, auth, tryAuth, activity)
	a.registerAnswerRoutes(api, c, auth, activity)
	a.registerCommentRoutes(api, c, auth, activity)
	a.registerSocialRoutes(api, c, auth, tryAuth, activity)

	reports := api.Group("/reports", auth, activity)
	{
		reports.POST("", c.report.CreateReport)
	}

	ai := api.Group("/ai", auth)
	{
		ai.POST("/suggest-answer", c.ai.SuggestAnswer)
		ai.POST("/suggest-tags", c.ai.SuggestTags)
		ai.POST("/improve-question", c.ai.ImproveQuestion)
		ai.POST("/chat", c.ai.Chat)
	}

	upload := api.Group("/upload", auth)
	{
		upload.POST("", c.upload.Upload)
		upload.POST("/avatar", c.upload.UploadAvatar)
	}

	a.registerAdminRoutes(api, c, auth)
}

func (a *App) registerAuthRoutes(api *gin.RouterGroup, c *controllers, auth, activity gin.HandlerFunc) {
	public := api.Group("/auth")
	{
		public.POST("/register", c.auth.Register)
		public.POST("/login", c.auth.Login)
		public.GET("/verify-email/:token", c.auth.VerifyEmail)
		public.POST("/forgot-password", c.auth.ForgotPassword)
		public.POST("/reset-password/:token", c.auth.ResetPassword)
	}

	private := api.Group("/auth", auth, activity)
	{
		private.GET("/me", c.auth.Me)
		private.POST("/resend-verification", c.auth.ResendVerification)
		private.PUT("/profile", c.auth.UpdateProfile)
		private.PUT("/settings", c.auth.UpdateSettings)
		private.PUT("/change-password", c.auth.ChangePassword)
	}
}

func (a *App) registerQuestionRoutes(api *gin.RouterGroup, c *controllers, auth, tryAuth, activity gin.HandlerFunc) {
	questions := api.Group("/questions")
	{
		// Guests may browse; a signed-in viewer only affects view counting.
		questions.GET("", tryAuth, c.question.ListQuestions)
		questions.GET("/tags", c.question.PopularTags)
		questions.GET("/:id", tryAuth, c.question.GetQuestion)

		questions.POST("", auth, activity, c.question.CreateQuestion)
		questions.PUT("/:id", auth, activity, c.question.UpdateQuestion)
		questions.DELETE("/:id", auth, activity, c.question.DeleteQuestion)
		questions.POST("/:id/vote", auth, activity, c.question.VoteQuestion)
	}
}

func (a *App) registerAnswerRoutes(api *gin.RouterGroup, c *controllers, auth, activity gin.HandlerFunc) {
	answers := api.Group("/answers")
	{
		answers.GET("/question/:questionId", c.answer.ListAnswers)

		// POST /answers/:id takes the question id; gin requires one wildcard
		// name per position, and /:id/vote already claims it.
		answers.POST("/:id", auth, activity, c.answer.CreateAnswer)
		answers.PUT("/:id", auth, activity, c.answer.UpdateAnswer)
		answers.DELETE("/:id", auth, activity, c.answer.DeleteAnswer)
		answers.POST("/:id/vote", auth, activity, c.answer.VoteAnswer)
		answers.POST("/:id/accept", auth, activity, c.answer.AcceptAnswer)
	}
}

func (a *App) registerCommentRoutes(api *gin.RouterGroup, c *controllers, auth, activity gin.HandlerFunc) {
	comments := api.Group("/comments")
	{
		comments.GET("/:contentType/:contentId", c.comment.ListComments)
		comments.POST("", auth, activity, c.comment.CreateComment)
		comments.PUT("/:id", auth, activity, c.comment.UpdateComment)
		comments.DELETE("/:id", auth, activity, c.comment.DeleteComment)
	}
}

func (a *App) registerSocialRoutes(api *gin.RouterGroup, c *controllers, auth, tryAuth, activity gin.HandlerFunc) {
	bookmarks := api.Group("/bookmarks", auth, activity)
	{
		bookmarks.GET("", c.bookmark.ListBookmarks)
		bookmarks.POST("/:questionId", c.bookmark.AddBookmark)
		bookmarks.DELETE("/:questionId", c.bookmark.RemoveBookmark)
		bookmarks.GET("/:questionId/status", c.bookmark.BookmarkStatus)
	}

	users := api.Group("/users")
	{
		users.GET("", c.user.ListUsers)
		users.GET("/:id", tryAuth, c.user.GetUser)
		users.GET("/:id/questions", c.user.GetUserQuestions)
		users.GET("/:id/answers", c.user.GetUserAnswers)
		users.GET("/:id/followers", c.user.Followers)
		users.GET("/:id/following", c.user.Following)
		users.POST("/:id/follow", auth, activity, c.user.Follow)
		users.DELETE("/:id/follow", auth, activity, c.user.Unfollow)
	}

	friends := api.Group("/friends", auth, activity)
	{
		friends.GET("", c.friend.ListFriends)
		friends.POST("/:userId", c.friend.AddFriend)
		friends.DELETE("/:userId", c.friend.RemoveFriend)
		friends.GET("/:userId/status", c.friend.FriendStatus)
	}

	notifications := api.Group("/notifications", auth, activity)
	{
		notifications.GET("", c.notification.ListNotifications)
		notifications.GET("/unread-count", c.notification.UnreadCount)
		notifications.GET("/ws", c.notification.Stream)
		notifications.PUT("/read-all", c.notification.MarkAllRead)
		notifications.PUT("/:id/read", c.notification.MarkRead)
		notifications.DELETE("/:id", c.notification.DeleteNotification)
	}
}

func (a *App) registerAdminRoutes(api *gin.RouterGroup, c *controllers, auth gin.HandlerFunc) {
	admin := api.Group("/admin", auth, middleware.AdminMiddleware())
	{
		admin.GET("/stats", c.admin.GetStats)

		admin.GET("/users", c.admin.ListUsers)
		admin.GET("/users/:id", c.admin.GetUser)
		admin.PUT("/users/:id/action", c.admin.UserAction)
		admin.DELETE("/users/:id", c.admin.DeleteUser)

		admin.GET("/reports", c.admin.ListReports)
		admin.PUT("/reports/:id/resolve", c.admin.ResolveReport)

		admin.DELETE("/content/:contentType/:id", c.admin.DeleteContent)
		admin.GET("/questions", c.admin.ListQuestions)
	}
}
