package service

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/qs3c/blog_go_server/internal/model"
	"github.com/qs3c/blog_go_server/internal/repository"
)

const tagListCacheKey = "tags:list"

// TagService 标签聚合，列表页走 Redis 短缓存
type TagService struct {
	tagRepo     *repository.TagRepository
	articleRepo *repository.ArticleRepository
	rdb         *redis.Client
	cacheTTL    time.Duration
}

func NewTagService(
	tagRepo *repository.TagRepository,
	articleRepo *repository.ArticleRepository,
	rdb *redis.Client,
	cacheTTL time.Duration,
) *TagService {
	return &TagService{
		tagRepo:     tagRepo,
		articleRepo: articleRepo,
		rdb:         rdb,
		cacheTTL:    cacheTTL,
	}
}

// List 按计数倒序获取标签，缓存命中直接返回
func (s *TagService) List(ctx context.Context) ([]*model.Tag, error) {
	if s.rdb != nil {
		cached, err := s.rdb.Get(ctx, tagListCacheKey).Result()
		if err == nil {
			var tags []*model.Tag
			if jsonErr := json.Unmarshal([]byte(cached), &tags); jsonErr == nil {
				return tags, nil
			}
		} else if err != redis.Nil {
			log.Printf("Tag cache read failed: %v", err)
		}
	}

	tags, err := s.tagRepo.ListActive()
	if err != nil {
		return nil, err
	}
	if tags == nil {
		tags = []*model.Tag{}
	}

	if s.rdb != nil {
		if data, err := json.Marshal(tags); err == nil {
			if err := s.rdb.Set(ctx, tagListCacheKey, data, s.cacheTTL).Err(); err != nil {
				log.Printf("Tag cache write failed: %v", err)
			}
		}
	}

	return tags, nil
}

// Search 按名称搜索标签
func (s *TagService) Search(keyword string) ([]*model.Tag, error) {
	return s.tagRepo.Search(keyword, 20)
}

// Invalidate 让列表缓存失效
func (s *TagService) Invalidate(ctx context.Context) {
	if s.rdb == nil {
		return
	}
	if err := s.rdb.Del(ctx, tagListCacheKey).Err(); err != nil {
		log.Printf("Tag cache invalidate failed: %v", err)
	}
}

// Reconcile 按文章标签重算计数并重建标签表
func (s *TagService) Reconcile(ctx context.Context) error {
	tagLists, err := s.articleRepo.ListTagLists(repository.ListFilter{})
	if err != nil {
		return err
	}

	counts := make(map[string]int)
	for _, list := range tagLists {
		for _, tag := range list {
			counts[tag]++
		}
	}

	if err := s.tagRepo.ReplaceAll(counts); err != nil {
		return err
	}

	s.Invalidate(ctx)
	return nil
}
