package api

import (
	"github.com/gin-gonic/gin"

	"github.com/qs3c/blog_go_server/config"
	"github.com/qs3c/blog_go_server/internal/api/handler"
	"github.com/qs3c/blog_go_server/internal/api/middleware"
)

type Router struct {
	authHandler      *handler.AuthHandler
	userHandler      *handler.UserHandler
	articleHandler   *handler.ArticleHandler
	commentHandler   *handler.CommentHandler
	tagHandler       *handler.TagHandler
	uploadHandler    *handler.UploadHandler
	websocketHandler *handler.WebSocketHandler
	cfg              *config.Config
}

func NewRouter(
	authHandler *handler.AuthHandler,
	userHandler *handler.UserHandler,
	articleHandler *handler.ArticleHandler,
	commentHandler *handler.CommentHandler,
	tagHandler *handler.TagHandler,
	uploadHandler *handler.UploadHandler,
	websocketHandler *handler.WebSocketHandler,
	cfg *config.Config,
) *Router {
	return &Router{
		authHandler:      authHandler,
		userHandler:      userHandler,
		articleHandler:   articleHandler,
		commentHandler:   commentHandler,
		tagHandler:       tagHandler,
		uploadHandler:    uploadHandler,
		websocketHandler: websocketHandler,
		cfg:              cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	if r.cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(middleware.CORS(r.cfg.CORS))

	jwtSecret := r.cfg.JWT.Secret

	api := engine.Group("/api")
	{
		// WebSocket 通知推送
		api.GET("/ws", r.websocketHandler.Handle)

		// 注册 / 登录 / 用户搜索
		users := api.Group("/users")
		{
			users.POST("", r.authHandler.Register)
			users.POST("/login", r.authHandler.Login)
			users.GET("/search", r.userHandler.Search)
		}

		// GitHub OAuth
		oauth := api.Group("/auth")
		{
			oauth.GET("/github", r.authHandler.GithubAuth)
			oauth.GET("/github/callback", r.authHandler.GithubCallback)
		}

		// 当前用户与账号流程
		user := api.Group("/user")
		{
			user.POST("/emailActivate", r.authHandler.Activate)
			user.POST("/forgotPassword", r.authHandler.ForgotPassword)
			user.PUT("/resetPassword/:resetToken", r.authHandler.ResetPassword)

			userAuth := user.Group("")
			userAuth.Use(middleware.Auth(jwtSecret))
			{
				userAuth.GET("", r.userHandler.Current)
				userAuth.PUT("", r.userHandler.Update)
			}
		}

		// 重发激活邮件
		mailer := api.Group("/mailer")
		mailer.Use(middleware.Auth(jwtSecret))
		{
			mailer.POST("/signUp", r.authHandler.ResendActivation)
		}

		// 用户主页（可选认证，following 按请求者解析）
		profiles := api.Group("/profiles")
		profiles.Use(middleware.OptionalAuth(jwtSecret))
		{
			profiles.GET("/:username", r.userHandler.Profile)
		}
		profilesAuth := api.Group("/profiles")
		profilesAuth.Use(middleware.Auth(jwtSecret))
		{
			profilesAuth.POST("/:username/follow", r.userHandler.Follow)
			profilesAuth.DELETE("/:username/follow", r.userHandler.Unfollow)
		}

		// 文章 - 公开读取（可选认证，favorited 按请求者解析）
		articles := api.Group("/articles")
		articles.Use(middleware.OptionalAuth(jwtSecret))
		{
			articles.GET("", r.articleHandler.List)
			articles.GET("/popular", r.articleHandler.Popular)
			articles.GET("/search", r.articleHandler.Search)
			articles.GET("/:slug", r.articleHandler.Get)
			articles.GET("/:slug/relative", r.articleHandler.Relative)
			articles.GET("/:slug/comments", r.commentHandler.List)
		}

		// 文章 - 需要认证
		articlesAuth := api.Group("/articles")
		articlesAuth.Use(middleware.Auth(jwtSecret))
		{
			articlesAuth.GET("/feed", r.articleHandler.Feed)
			articlesAuth.POST("", r.articleHandler.Create)
			articlesAuth.PUT("/:slug", r.articleHandler.Update)
			articlesAuth.DELETE("/:slug", r.articleHandler.Delete)
			articlesAuth.POST("/:slug/favorite", r.articleHandler.Favorite)
			articlesAuth.DELETE("/:slug/favorite", r.articleHandler.Unfavorite)
			articlesAuth.POST("/:slug/comments", r.commentHandler.Create)
			articlesAuth.DELETE("/:slug/comments/:id", r.commentHandler.Delete)
		}

		// 标签
		tags := api.Group("/tags")
		{
			tags.GET("", r.tagHandler.List)
			tags.GET("/search", r.tagHandler.Search)
		}

		// 图片上传
		upload := api.Group("/upload")
		upload.Use(middleware.Auth(jwtSecret))
		{
			upload.POST("/image", r.uploadHandler.Image)
		}
	}

	return engine
}
