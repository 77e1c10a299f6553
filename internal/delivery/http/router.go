package http

import (
	"time"

	"ChatHive/internal/config"
	"ChatHive/internal/delivery/http/controllers"
	authctrl "ChatHive/internal/delivery/http/controllers/auth"
	"ChatHive/internal/delivery/http/controllers/middleware"
	"ChatHive/internal/delivery/ws"
	"ChatHive/internal/models"
	"ChatHive/internal/service"
	"ChatHive/pkg/logger"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func InitRoutes(l logger.Log, u service.Collection, cfg *config.Config, wsHandler *ws.Handler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	origins := cfg.WS.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:5173"}
	}
	corsConfig := cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	r.Use(cors.New(corsConfig))

	authMW := middleware.NewAuthMiddlewareProvider(l, u.AuthService, cfg.JWT)

	statusController := controllers.NewStatusHandler()
	authController := authctrl.NewAuthHandler(l, u.AuthService, cfg.JWT)
	roomController := controllers.NewRoomHandler(l, u.ChatService)
	friendController := controllers.NewFriendHandler(l, u.FriendService)
	communityController := controllers.NewCommunityHandler(l, u.CommunityService)
	userController := controllers.NewUserHandler(l, u.UserService)

	// Every /v1 route passes through Authenticate: it resolves the bearer
	// token, silently renews expired sessions, and leaves anonymous requests
	// untouched. RequireAuth then gates the routes that need an identity.
	v1 := r.Group("/v1", middleware.LoggingMiddleware(l), authMW.Authenticate)
	{
		v1.GET("/status", statusController.Status)

		auth := v1.Group("/auth")
		{
			auth.POST("/register", authController.Register)
			auth.POST("/login", authController.Login)
			auth.POST("/logout", middleware.RequireAuth, authController.Logout)
		}

		v1.GET("/me", middleware.RequireAuth, authController.Me)
		v1.POST("/my-account/password", middleware.RequireAuth, authController.ChangePassword)
		// DELETE /my-account is exempted from the interceptor and resolves
		// its own token, so an expired session is never renewed only to be
		// destroyed a moment later.
		v1.DELETE("/my-account", authController.DeleteAccount)

		rooms := v1.Group("/rooms", middleware.RequireAuth)
		{
			rooms.POST("", roomController.CreateRoom)
			rooms.GET("", roomController.MyRooms)
			rooms.GET("/:room_id", roomController.Room)
			rooms.POST("/:room_id/join", roomController.Join)
			rooms.DELETE("/:room_id/leave", roomController.Leave)
			rooms.GET("/:room_id/messages", roomController.History)
			rooms.POST("/:room_id/files", roomController.UploadAttachment)
			rooms.GET("/:room_id/files/:file_key", roomController.AttachmentURL)
		}

		friends := v1.Group("/friends", middleware.RequireAuth)
		{
			friends.POST("/requests", friendController.SendRequest)
			friends.PATCH("/requests/:request_id", friendController.Respond)
			friends.GET("", friendController.Friends)
			friends.GET("/requests", friendController.Pending)
			friends.POST("/blocks", friendController.Block)
			friends.DELETE("/blocks/:email", friendController.Unblock)
		}

		community := v1.Group("/community")
		{
			community.GET("/posts", communityController.Posts)
			community.GET("/posts/:post_id", communityController.Post)

			member := community.Group("", middleware.RequireAuth)
			{
				member.POST("/posts", communityController.CreatePost)
				member.PATCH("/posts/:post_id", communityController.UpdatePost)
				member.DELETE("/posts/:post_id", communityController.DeletePost)
				member.POST("/inquiries", communityController.CreateInquiry)
				member.GET("/inquiries", communityController.MyInquiries)
			}

			admin := community.Group("", middleware.RequireAuth, middleware.RequireRoles(models.RoleAdmin))
			{
				admin.PATCH("/inquiries/:inquiry_id/answer", communityController.AnswerInquiry)
			}
		}

		users := v1.Group("/users", middleware.RequireAuth)
		{
			users.GET("/search", userController.Search)
			users.GET("/:email", userController.Profile)
			users.GET("/:email/avatar", userController.Avatar)
			users.PATCH("/me/nickname", userController.UpdateNickname)
			users.PUT("/me/avatar", userController.UploadAvatar)
		}
	}

	// STOMP over websocket; the CONNECT frame carries the bearer token, so
	// the HTTP interceptor is not applied here.
	r.GET("/ws", wsHandler.Serve)

	return r
}
