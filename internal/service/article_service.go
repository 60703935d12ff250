package service

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"gorm.io/gorm"

	"github.com/qs3c/blog_go_server/internal/model"
	"github.com/qs3c/blog_go_server/internal/model/dto"
	"github.com/qs3c/blog_go_server/internal/repository"
)

var (
	ErrArticleForbidden     = errors.New("无权操作此文章")
	ErrArticleTitleRequired = errors.New("标题不能为空")
	ErrArticleBodyRequired  = errors.New("正文不能为空")
	ErrArticleDescRequired  = errors.New("描述不能为空")
)

var slugStripPattern = regexp.MustCompile(`[^a-z0-9]+`)

// slugify 标题转 slug，最终 slug 会追加 "-<id>" 保证唯一
func slugify(title string) string {
	s := strings.ToLower(strings.TrimSpace(title))
	s = slugStripPattern.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

type ArticleService struct {
	articleRepo     *repository.ArticleRepository
	commentRepo     *repository.CommentRepository
	userRepo        *repository.UserRepository
	tagRepo         *repository.TagRepository
	interactionRepo *repository.InteractionRepository
}

func NewArticleService(
	articleRepo *repository.ArticleRepository,
	commentRepo *repository.CommentRepository,
	userRepo *repository.UserRepository,
	tagRepo *repository.TagRepository,
	interactionRepo *repository.InteractionRepository,
) *ArticleService {
	return &ArticleService{
		articleRepo:     articleRepo,
		commentRepo:     commentRepo,
		userRepo:        userRepo,
		tagRepo:         tagRepo,
		interactionRepo: interactionRepo,
	}
}

// Create 创建文章。slug 在拿到主键后生成，标签计数同步增加。
func (s *ArticleService) Create(userID int64, req *dto.CreateArticleRequest) (*dto.ArticleItem, error) {
	if strings.TrimSpace(req.Title) == "" {
		return nil, ErrArticleTitleRequired
	}
	if strings.TrimSpace(req.Description) == "" {
		return nil, ErrArticleDescRequired
	}
	if strings.TrimSpace(req.Body) == "" {
		return nil, ErrArticleBodyRequired
	}

	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, err
	}

	article := &model.Article{
		Slug:         fmt.Sprintf("pending-%d", userID), // 插入后重写
		Title:        req.Title,
		Description:  req.Description,
		Body:         req.Body,
		ThumbnailURL: req.ThumbnailURL,
		TagList:      model.StringArray(req.TagList),
		CommentList:  model.Int64Array{},
		AuthorID:     user.ID,
		AuthorName:   user.Username,
		AuthorImage:  user.Image,
	}
	if article.TagList == nil {
		article.TagList = model.StringArray{}
	}

	if err := s.articleRepo.Create(article); err != nil {
		return nil, err
	}

	article.Slug = fmt.Sprintf("%s-%d", slugify(article.Title), article.ID)
	if err := s.articleRepo.UpdateFields(article.ID, map[string]interface{}{"slug": article.Slug}); err != nil {
		return nil, err
	}

	for _, tag := range article.TagList {
		if err := s.tagRepo.IncrementCount(tag, 1); err != nil {
			return nil, err
		}
	}

	return s.buildItem(article, false), nil
}

// Get 按 slug 获取文章，favorited 按请求者解析（未登录为 false）
func (s *ArticleService) Get(slug string, viewerID *int64) (*dto.ArticleItem, error) {
	article, err := s.articleRepo.GetBySlug(slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrArticleNotFound
		}
		return nil, err
	}

	favorited, err := s.isFavorited(article.ID, viewerID)
	if err != nil {
		return nil, err
	}
	return s.buildItem(article, favorited), nil
}

// Update 更新文章，仅作者可操作；改标题会重建 slug，标签变更调整计数
func (s *ArticleService) Update(userID int64, slug string, req *dto.UpdateArticleRequest) (*dto.ArticleItem, error) {
	article, err := s.articleRepo.GetBySlug(slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrArticleNotFound
		}
		return nil, err
	}
	if article.AuthorID != userID {
		return nil, ErrArticleForbidden
	}

	if req.Title != "" && req.Title != article.Title {
		article.Title = req.Title
		article.Slug = fmt.Sprintf("%s-%d", slugify(req.Title), article.ID)
	}
	if req.Description != "" {
		article.Description = req.Description
	}
	if req.Body != "" {
		article.Body = req.Body
	}
	if req.ThumbnailURL != "" {
		article.ThumbnailURL = req.ThumbnailURL
	}
	if req.TagList != nil {
		s.adjustTagCounts(article.TagList, req.TagList)
		article.TagList = model.StringArray(req.TagList)
	}

	if err := s.articleRepo.Update(article); err != nil {
		return nil, err
	}

	favorited, err := s.isFavorited(article.ID, &userID)
	if err != nil {
		return nil, err
	}
	return s.buildItem(article, favorited), nil
}

// Delete 删除文章并级联清理评论、收藏记录与标签计数
func (s *ArticleService) Delete(userID int64, slug string) error {
	article, err := s.articleRepo.GetBySlug(slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrArticleNotFound
		}
		return err
	}
	if article.AuthorID != userID {
		return ErrArticleForbidden
	}

	if _, err := s.commentRepo.DeleteByArticleID(article.ID); err != nil {
		return err
	}
	if err := s.interactionRepo.DeleteFavoritesByArticleID(article.ID); err != nil {
		return err
	}
	for _, tag := range article.TagList {
		if err := s.tagRepo.IncrementCount(tag, -1); err != nil {
			return err
		}
	}

	return s.articleRepo.Delete(article.ID)
}

// ListQuery 文章列表查询参数
type ListQuery struct {
	Tag       string
	Author    string
	Favorited string // 按收藏者用户名过滤
	Limit     int
	Offset    int // 页码
}

// List 过滤分页获取文章，并按过滤维度附带聚合信息
func (s *ArticleService) List(query ListQuery, viewerID *int64) (*dto.ArticleListResult, error) {
	if query.Limit <= 0 {
		query.Limit = 20
	}
	if query.Offset <= 0 {
		query.Offset = 1
	}

	filter := repository.ListFilter{
		Tag:    query.Tag,
		Author: query.Author,
	}

	if query.Favorited != "" {
		user, err := s.userRepo.GetByUsername(query.Favorited)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrUserNotFound
			}
			return nil, err
		}
		ids, err := s.interactionRepo.ListFavoritedArticleIDs(user.ID)
		if err != nil {
			return nil, err
		}
		if ids == nil {
			ids = []int64{}
		}
		filter.FavedIDs = ids
	}

	articles, total, err := s.articleRepo.List(filter, query.Offset, query.Limit)
	if err != nil {
		return nil, err
	}

	items, err := s.buildItems(articles, viewerID)
	if err != nil {
		return nil, err
	}

	pages := int(total) / query.Limit
	if int(total)%query.Limit != 0 {
		pages++
	}

	result := &dto.ArticleListResult{
		Articles: items,
		Page:     query.Offset,
		Pages:    pages,
		Total:    total,
	}

	// 按标签/收藏过滤时附带作者聚合，按作者过滤时附带标签聚合
	if query.Tag != "" || query.Favorited != "" {
		authors, err := s.articleRepo.ListDistinctAuthors(filter)
		if err != nil {
			return nil, err
		}
		result.TotalAuthor = len(authors)
		images := make([]string, 0, len(authors))
		for _, a := range authors {
			images = append(images, a.Image)
		}
		result.AuthImages = images
	}
	if query.Author != "" {
		tagLists, err := s.articleRepo.ListTagLists(filter)
		if err != nil {
			return nil, err
		}
		seen := make(map[string]struct{})
		tags := []string{}
		for _, list := range tagLists {
			for _, tag := range list {
				if _, ok := seen[tag]; !ok {
					seen[tag] = struct{}{}
					tags = append(tags, tag)
				}
			}
		}
		result.TotalTag = tags
	}

	return result, nil
}

// Feed 关注作者的文章流
func (s *ArticleService) Feed(userID int64, limit, offset int) (*dto.ArticleListResult, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset <= 0 {
		offset = 1
	}

	authorIDs, err := s.interactionRepo.ListFolloweeIDs(userID)
	if err != nil {
		return nil, err
	}
	if authorIDs == nil {
		authorIDs = []int64{}
	}

	articles, total, err := s.articleRepo.List(repository.ListFilter{AuthorIDs: authorIDs}, offset, limit)
	if err != nil {
		return nil, err
	}

	items, err := s.buildItems(articles, &userID)
	if err != nil {
		return nil, err
	}

	pages := int(total) / limit
	if int(total)%limit != 0 {
		pages++
	}

	return &dto.ArticleListResult{
		Articles: items,
		Page:     offset,
		Pages:    pages,
		Total:    total,
	}, nil
}

// Popular 按收藏数取热门文章
func (s *ArticleService) Popular(viewerID *int64) ([]*dto.ArticleItem, error) {
	articles, err := s.articleRepo.ListPopular(5)
	if err != nil {
		return nil, err
	}
	return s.buildItems(articles, viewerID)
}

// Relative 同标签的相关文章
func (s *ArticleService) Relative(slug string, viewerID *int64) ([]*dto.ArticleItem, error) {
	article, err := s.articleRepo.GetBySlug(slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrArticleNotFound
		}
		return nil, err
	}

	articles, err := s.articleRepo.ListRelative(article.ID, []string(article.TagList), 5)
	if err != nil {
		return nil, err
	}
	return s.buildItems(articles, viewerID)
}

// Search 标题搜索
func (s *ArticleService) Search(keyword string, viewerID *int64) ([]*dto.ArticleItem, error) {
	articles, err := s.articleRepo.Search(keyword, 20)
	if err != nil {
		return nil, err
	}
	return s.buildItems(articles, viewerID)
}

// Favorite 收藏文章，幂等
func (s *ArticleService) Favorite(userID int64, slug string) (*dto.ArticleItem, error) {
	article, err := s.articleRepo.GetBySlug(slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrArticleNotFound
		}
		return nil, err
	}

	added, err := s.interactionRepo.AddFavorite(userID, article.ID)
	if err != nil {
		return nil, err
	}
	if added {
		if err := s.articleRepo.IncrementFavoriteCount(article.ID, 1); err != nil {
			return nil, err
		}
		article.FavoriteCount++
	}

	return s.buildItem(article, true), nil
}

// Unfavorite 取消收藏，幂等
func (s *ArticleService) Unfavorite(userID int64, slug string) (*dto.ArticleItem, error) {
	article, err := s.articleRepo.GetBySlug(slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrArticleNotFound
		}
		return nil, err
	}

	removed, err := s.interactionRepo.RemoveFavorite(userID, article.ID)
	if err != nil {
		return nil, err
	}
	if removed {
		if err := s.articleRepo.IncrementFavoriteCount(article.ID, -1); err != nil {
			return nil, err
		}
		article.FavoriteCount--
	}

	return s.buildItem(article, false), nil
}

func (s *ArticleService) isFavorited(articleID int64, viewerID *int64) (bool, error) {
	if viewerID == nil {
		return false, nil
	}
	return s.interactionRepo.IsFavorited(*viewerID, articleID)
}

func (s *ArticleService) buildItem(article *model.Article, favorited bool) *dto.ArticleItem {
	return &dto.ArticleItem{
		Slug:          article.Slug,
		Title:         article.Title,
		Description:   article.Description,
		Body:          article.Body,
		ThumbnailURL:  article.ThumbnailURL,
		TagList:       []string(article.TagList),
		Favorited:     favorited,
		FavoriteCount: article.FavoriteCount,
		CommentList:   []int64(article.CommentList),
		AuthorID:      article.AuthorID,
		AuthorName:    article.AuthorName,
		AuthorImage:   article.AuthorImage,
		CreatedAt:     article.CreatedAt,
		UpdatedAt:     article.UpdatedAt,
	}
}

func (s *ArticleService) buildItems(articles []*model.Article, viewerID *int64) ([]*dto.ArticleItem, error) {
	// 一次取出请求者的收藏集合，避免逐篇查询
	favedSet := make(map[int64]struct{})
	if viewerID != nil {
		ids, err := s.interactionRepo.ListFavoritedArticleIDs(*viewerID)
		if err != nil {
			return nil, err
		}
		for _, id := range ids {
			favedSet[id] = struct{}{}
		}
	}

	items := make([]*dto.ArticleItem, len(articles))
	for i, article := range articles {
		_, favorited := favedSet[article.ID]
		items[i] = s.buildItem(article, favorited)
	}
	return items, nil
}

func (s *ArticleService) adjustTagCounts(old model.StringArray, updated []string) {
	oldSet := make(map[string]struct{}, len(old))
	for _, tag := range old {
		oldSet[tag] = struct{}{}
	}
	newSet := make(map[string]struct{}, len(updated))
	for _, tag := range updated {
		newSet[tag] = struct{}{}
	}

	for tag := range newSet {
		if _, ok := oldSet[tag]; !ok {
			s.tagRepo.IncrementCount(tag, 1)
		}
	}
	for tag := range oldSet {
		if _, ok := newSet[tag]; !ok {
			s.tagRepo.IncrementCount(tag, -1)
		}
	}
}
