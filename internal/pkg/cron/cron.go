package cron

import (
	"context"
	"log"
	"time"

	"github.com/qs3c/blog_go_server/internal/repository"
	"github.com/qs3c/blog_go_server/internal/service"
)

type Service struct {
	userRepo   *repository.UserRepository
	tagService *service.TagService
	stopChan   chan struct{}
}

func NewService(userRepo *repository.UserRepository, tagService *service.TagService) *Service {
	return &Service{
		userRepo:   userRepo,
		tagService: tagService,
		stopChan:   make(chan struct{}),
	}
}

// Start 启动定时任务
func (s *Service) Start() {
	go s.runDailyTokenPurge()
	go s.runTagReconcile()
	log.Println("Cron service started (token purge + tag reconcile)")
}

// Stop 停止定时任务
func (s *Service) Stop() {
	close(s.stopChan)
	log.Println("Cron service stopped")
}

// runDailyTokenPurge 每日清理过期的密码重置令牌
func (s *Service) runDailyTokenPurge() {
	now := time.Now().UTC()
	nextMidnight := time.Date(now.Year(), now.Month(), now.Day()+1, 0, 0, 0, 0, time.UTC)
	timer := time.NewTimer(nextMidnight.Sub(now))

	for {
		select {
		case <-s.stopChan:
			timer.Stop()
			return
		case <-timer.C:
			s.purgeExpiredTokens()
			timer.Reset(24 * time.Hour)
		}
	}
}

// purgeExpiredTokens 清理所有已过期的重置令牌
func (s *Service) purgeExpiredTokens() {
	purged, err := s.userRepo.PurgeExpiredResetTokens(time.Now())
	if err != nil {
		log.Printf("Failed to purge expired reset tokens: %v", err)
		return
	}
	if purged > 0 {
		log.Printf("Purged %d expired reset tokens", purged)
	}
}

// runTagReconcile 每小时按文章全量重算标签计数
func (s *Service) runTagReconcile() {
	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			s.reconcileTags()
		}
	}
}

// reconcileTags 标签计数对账并刷新缓存
func (s *Service) reconcileTags() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.tagService.Reconcile(ctx); err != nil {
		log.Printf("Failed to reconcile tag counts: %v", err)
		return
	}
	log.Println("Tag count reconcile completed")
}

// RunNow 立即执行一次全部任务（用于测试或手动触发）
func (s *Service) RunNow(ctx context.Context) error {
	if _, err := s.userRepo.PurgeExpiredResetTokens(time.Now()); err != nil {
		return err
	}
	return s.tagService.Reconcile(ctx)
}
