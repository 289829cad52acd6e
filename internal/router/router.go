package router

import (
	"sweetholic/internal/handlers"
	"sweetholic/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.Engine) {
	// Handlers
	authHandler := handlers.NewAuthHandler()
	postHandler := handlers.NewPostHandler()
	listHandler := handlers.NewListHandler()
	reactionHandler := handlers.NewReactionHandler()
	commentHandler := handlers.NewCommentHandler()
	followHandler := handlers.NewFollowHandler()
	userHandler := handlers.NewUserHandler()
	imageHandler := handlers.NewImageHandler()

	// 公共路由 (Public Routes)
	r.POST("/auth/signup", authHandler.Signup)
	r.POST("/auth/login", authHandler.Login)
	r.POST("/auth/logout", authHandler.Logout)
	r.GET("/auth/me", authHandler.Me)

	r.GET("/posts/feed", postHandler.Feed)                  // 动态流
	r.GET("/posts/user/:username", postHandler.ListByUser)  // 某用户的帖子
	r.GET("/posts/:id", postHandler.Detail)                 // 帖子详情

	r.GET("/comments/post/:id", commentHandler.ListByPost)        // 帖子下的评论
	r.GET("/comments/user/:username", commentHandler.ListByUser)  // 某用户的评论

	r.GET("/reactions/:postId", reactionHandler.Get)
	r.GET("/reactions/:postId/users/:type", reactionHandler.Users)

	r.GET("/lists/user/:username", listHandler.ListByUser)
	r.GET("/lists/:id", listHandler.Detail)

	r.GET("/users/:username", userHandler.Profile)

	r.GET("/follows/:username/followers", followHandler.Followers)
	r.GET("/follows/:username/following", followHandler.Following)

	// 受保护路由 (Protected Routes)
	authorized := r.Group("/")
	authorized.Use(middleware.AuthRequired())
	{
		authorized.POST("/posts", postHandler.Create)
		authorized.PUT("/posts/:id", postHandler.Update)
		authorized.DELETE("/posts/:id", postHandler.Delete)

		authorized.POST("/comments/post/:id", commentHandler.Create)
		authorized.PUT("/comments/:id", commentHandler.Update)
		authorized.DELETE("/comments/:id", commentHandler.Delete)

		authorized.POST("/reactions/:postId", reactionHandler.Add)
		authorized.DELETE("/reactions/:postId/:type", reactionHandler.Remove)

		authorized.POST("/lists", listHandler.Create)
		authorized.PUT("/lists/:id", listHandler.Update)
		authorized.DELETE("/lists/:id", listHandler.Delete)
		authorized.POST("/lists/:id/posts/:postId", listHandler.AddPost)
		authorized.DELETE("/lists/:id/posts/:postId", listHandler.RemovePost)
		authorized.PUT("/lists/:id/reorder", listHandler.Reorder)

		authorized.POST("/follows/:username", followHandler.Follow)
		authorized.DELETE("/follows/:username", followHandler.Unfollow)

		authorized.PUT("/users/me", userHandler.UpdateMe)

		authorized.POST("/images", imageHandler.Upload)
	}
}
