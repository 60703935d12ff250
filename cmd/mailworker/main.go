package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/qs3c/blog_go_server/config"
	"github.com/qs3c/blog_go_server/internal/database"
	"github.com/qs3c/blog_go_server/internal/pkg/email"
	"github.com/qs3c/blog_go_server/internal/pkg/queue"
)

func main() {
	// 加载配置
	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 初始化 Redis
	rdb, err := database.NewRedis(&cfg.Redis)
	if err != nil {
		log.Fatalf("Failed to connect redis: %v", err)
	}
	log.Println("Redis connected")

	mailQueue := queue.NewQueue(rdb, cfg.Queue.MailQueue)
	mailer := email.NewService(&cfg.Email)

	// 创建 context 用于优雅关闭
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 监听退出信号
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		log.Println("Received shutdown signal")
		cancel()
	}()

	workers := cfg.Queue.MaxWorkers
	if workers <= 0 {
		workers = 1
	}
	log.Printf("Mail worker started, max workers: %d", workers)

	for i := 0; i < workers; i++ {
		go func(workerID int) {
			for {
				select {
				case <-ctx.Done():
					log.Printf("Worker %d shutting down", workerID)
					return
				default:
					msg, err := mailQueue.Pop(ctx, 5*time.Second)
					if err != nil {
						if ctx.Err() != nil {
							return
						}
						log.Printf("Worker %d: failed to pop mail: %v", workerID, err)
						continue
					}

					if msg == nil {
						continue // 超时，继续等待
					}

					if err := send(mailer, msg); err != nil {
						log.Printf("Worker %d: failed to send %s mail to %s: %v", workerID, msg.Type, msg.To, err)
					} else {
						log.Printf("Worker %d: sent %s mail to %s", workerID, msg.Type, msg.To)
					}
				}
			}
		}(i)
	}

	<-ctx.Done()
	log.Println("Mail worker shutdown complete")
}

func send(mailer *email.Service, msg *queue.MailMessage) error {
	switch msg.Type {
	case queue.MailActivation:
		return mailer.SendActivation(msg.To, msg.Username, msg.Link)
	case queue.MailPasswordReset:
		return mailer.SendPasswordReset(msg.To, msg.Link)
	case queue.MailWelcome:
		return mailer.SendWelcome(msg.To, msg.Username)
	default:
		log.Printf("Unknown mail type %q, dropping", msg.Type)
		return nil
	}
}
