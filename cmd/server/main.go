package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/qs3c/blog_go_server/config"
	"github.com/qs3c/blog_go_server/internal/api"
	"github.com/qs3c/blog_go_server/internal/api/handler"
	"github.com/qs3c/blog_go_server/internal/database"
	"github.com/qs3c/blog_go_server/internal/pkg/cron"
	"github.com/qs3c/blog_go_server/internal/pkg/oauth"
	"github.com/qs3c/blog_go_server/internal/pkg/oss"
	"github.com/qs3c/blog_go_server/internal/pkg/pubsub"
	"github.com/qs3c/blog_go_server/internal/pkg/queue"
	"github.com/qs3c/blog_go_server/internal/pkg/ws"
	"github.com/qs3c/blog_go_server/internal/repository"
	"github.com/qs3c/blog_go_server/internal/service"
)

func main() {
	// 加载配置
	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 初始化数据库
	db, err := database.NewMySQL(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect database: %v", err)
	}
	log.Println("Database connected")

	// 初始化 Redis
	rdb, err := database.NewRedis(&cfg.Redis)
	if err != nil {
		log.Fatalf("Failed to connect redis: %v", err)
	}
	log.Println("Redis connected")

	// 初始化 OSS（可选）
	var ossClient *oss.Client
	if cfg.OSS.Endpoint != "" && cfg.OSS.AccessKeyID != "" {
		ossClient, err = oss.NewClient(&cfg.OSS)
		if err != nil {
			log.Printf("Warning: Failed to init OSS client: %v", err)
		} else {
			log.Println("OSS client initialized")
		}
	}

	// 邮件队列与通知发布
	mailQueue := queue.NewQueue(rdb, cfg.Queue.MailQueue)
	publisher := pubsub.NewPublisher(rdb)

	// WebSocket Hub，通知经 Redis 订阅转发到在线连接
	wsHub := ws.NewHub()
	subscriber := pubsub.NewSubscriber(rdb)
	subCtx, subCancel := context.WithCancel(context.Background())
	defer subCancel()
	go func() {
		err := subscriber.Subscribe(subCtx, func(n *pubsub.Notification) {
			if err := wsHub.Notify(n.UserID, n.Type, n); err != nil {
				log.Printf("Failed to push notification to user %d: %v", n.UserID, err)
			}
		})
		if err != nil && subCtx.Err() == nil {
			log.Printf("Notification subscriber stopped: %v", err)
		}
	}()
	log.Println("WebSocket hub started")

	// 初始化 Repository
	userRepo := repository.NewUserRepository(db)
	articleRepo := repository.NewArticleRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	tagRepo := repository.NewTagRepository(db)
	interactionRepo := repository.NewInteractionRepository(db)

	// 初始化 Service
	authService := service.NewAuthService(userRepo, mailQueue, cfg)
	userService := service.NewUserService(userRepo, articleRepo, interactionRepo)
	articleService := service.NewArticleService(articleRepo, commentRepo, userRepo, tagRepo, interactionRepo)
	commentService := service.NewCommentService(commentRepo, articleRepo, userRepo, publisher)
	tagService := service.NewTagService(tagRepo, articleRepo, rdb, time.Duration(cfg.Tags.CacheTTLSeconds)*time.Second)

	// 定时任务：过期重置令牌清理 + 标签计数对账
	cronService := cron.NewService(userRepo, tagService)
	cronService.Start()
	defer cronService.Stop()

	// 初始化 Handler
	stateStore := oauth.NewStateStore(rdb)
	authHandler := handler.NewAuthHandler(authService, stateStore)
	userHandler := handler.NewUserHandler(userService)
	articleHandler := handler.NewArticleHandler(articleService)
	commentHandler := handler.NewCommentHandler(commentService)
	tagHandler := handler.NewTagHandler(tagService)
	uploadHandler := handler.NewUploadHandler(ossClient, cfg)
	websocketHandler := handler.NewWebSocketHandler(wsHub, cfg.JWT.Secret)

	// 初始化 Router
	router := api.NewRouter(
		authHandler,
		userHandler,
		articleHandler,
		commentHandler,
		tagHandler,
		uploadHandler,
		websocketHandler,
		cfg,
	)
	engine := router.Setup()

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: engine,
	}

	go func() {
		log.Printf("Server starting on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// 等待退出信号，优雅关闭
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan
	log.Println("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}
	log.Println("Server shutdown complete")
}
