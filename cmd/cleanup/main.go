package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"github.com/qs3c/blog_go_server/config"
	"github.com/qs3c/blog_go_server/internal/database"
	"github.com/qs3c/blog_go_server/internal/repository"
	"github.com/qs3c/blog_go_server/internal/service"
)

var (
	purgeTokens   = flag.Bool("purge-tokens", true, "Purge expired password reset tokens")
	reconcileTags = flag.Bool("reconcile-tags", true, "Recount tag usage from articles")
)

// 一次性维护任务，和服务内的定时任务做同样的事，用于手动触发或排障
func main() {
	flag.Parse()

	log.Println("Starting maintenance task...")

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := database.NewMySQL(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect database: %v", err)
	}

	rdb, err := database.NewRedis(&cfg.Redis)
	if err != nil {
		log.Fatalf("Failed to connect redis: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if *purgeTokens {
		userRepo := repository.NewUserRepository(db)
		purged, err := userRepo.PurgeExpiredResetTokens(time.Now())
		if err != nil {
			log.Fatalf("Failed to purge expired reset tokens: %v", err)
		}
		log.Printf("Purged %d expired reset tokens", purged)
	}

	if *reconcileTags {
		tagService := service.NewTagService(
			repository.NewTagRepository(db),
			repository.NewArticleRepository(db),
			rdb,
			time.Duration(cfg.Tags.CacheTTLSeconds)*time.Second,
		)
		if err := tagService.Reconcile(ctx); err != nil {
			log.Fatalf("Failed to reconcile tag counts: %v", err)
		}
		log.Println("Tag counts reconciled, cache invalidated")
	}

	log.Println("Maintenance completed")
}
