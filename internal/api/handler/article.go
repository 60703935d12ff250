package handler

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/qs3c/blog_go_server/internal/api/middleware"
	"github.com/qs3c/blog_go_server/internal/model/dto"
	"github.com/qs3c/blog_go_server/internal/pkg/response"
	"github.com/qs3c/blog_go_server/internal/service"
)

type ArticleHandler struct {
	articleService *service.ArticleService
}

func NewArticleHandler(articleService *service.ArticleService) *ArticleHandler {
	return &ArticleHandler{
		articleService: articleService,
	}
}

// Create 发布文章
// POST /api/articles
func (h *ArticleHandler) Create(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "")
		return
	}

	var req dto.CreateArticleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	item, err := h.articleService.Create(userID, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrArticleTitleRequired):
			response.FieldError(c, "title", "can't be empty")
		case errors.Is(err, service.ErrArticleDescRequired):
			response.FieldError(c, "description", "can't be empty")
		case errors.Is(err, service.ErrArticleBodyRequired):
			response.FieldError(c, "body", "can't be empty")
		default:
			response.ServerError(c, "")
		}
		return
	}

	response.Success(c, gin.H{"article": item})
}

// Get 按 slug 获取文章
// GET /api/articles/:slug
func (h *ArticleHandler) Get(c *gin.Context) {
	item, err := h.articleService.Get(c.Param("slug"), middleware.GetUserIDPtr(c))
	if err != nil {
		if errors.Is(err, service.ErrArticleNotFound) {
			response.NotFound(c, err.Error())
			return
		}
		response.ServerError(c, "")
		return
	}

	response.Success(c, gin.H{"article": item})
}

// Update 更新文章，仅作者可操作
// PUT /api/articles/:slug
func (h *ArticleHandler) Update(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "")
		return
	}

	var req dto.UpdateArticleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	item, err := h.articleService.Update(userID, c.Param("slug"), &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrArticleNotFound):
			response.NotFound(c, err.Error())
		case errors.Is(err, service.ErrArticleForbidden):
			response.Forbidden(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}

	response.Success(c, gin.H{"article": item})
}

// Delete 删除文章及其评论、收藏记录
// DELETE /api/articles/:slug
func (h *ArticleHandler) Delete(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "")
		return
	}

	if err := h.articleService.Delete(userID, c.Param("slug")); err != nil {
		switch {
		case errors.Is(err, service.ErrArticleNotFound):
			response.NotFound(c, err.Error())
		case errors.Is(err, service.ErrArticleForbidden):
			response.Forbidden(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}

	response.Success(c, gin.H{"message": "删除成功"})
}

// List 过滤分页获取文章
// GET /api/articles?tag=&author=&favorited=&limit=&offset=
func (h *ArticleHandler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "1"))

	query := service.ListQuery{
		Tag:       c.Query("tag"),
		Author:    c.Query("author"),
		Favorited: c.Query("favorited"),
		Limit:     limit,
		Offset:    offset,
	}

	result, err := h.articleService.List(query, middleware.GetUserIDPtr(c))
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			response.NotFound(c, err.Error())
			return
		}
		response.ServerError(c, "")
		return
	}

	response.Success(c, result)
}

// Feed 关注作者的文章流
// GET /api/articles/feed
func (h *ArticleHandler) Feed(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "")
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "1"))

	result, err := h.articleService.Feed(userID, limit, offset)
	if err != nil {
		response.ServerError(c, "")
		return
	}

	response.Success(c, result)
}

// Popular 热门文章
// GET /api/articles/popular
func (h *ArticleHandler) Popular(c *gin.Context) {
	items, err := h.articleService.Popular(middleware.GetUserIDPtr(c))
	if err != nil {
		response.ServerError(c, "")
		return
	}

	response.Success(c, gin.H{"articles": items})
}

// Relative 同标签的相关文章
// GET /api/articles/:slug/relative
func (h *ArticleHandler) Relative(c *gin.Context) {
	items, err := h.articleService.Relative(c.Param("slug"), middleware.GetUserIDPtr(c))
	if err != nil {
		if errors.Is(err, service.ErrArticleNotFound) {
			response.NotFound(c, err.Error())
			return
		}
		response.ServerError(c, "")
		return
	}

	response.Success(c, gin.H{"articles": items})
}

// Search 标题搜索
// GET /api/articles/search?q=
func (h *ArticleHandler) Search(c *gin.Context) {
	items, err := h.articleService.Search(c.Query("q"), middleware.GetUserIDPtr(c))
	if err != nil {
		response.ServerError(c, "")
		return
	}

	response.Success(c, gin.H{"articles": items})
}

// Favorite 收藏文章
// POST /api/articles/:slug/favorite
func (h *ArticleHandler) Favorite(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "")
		return
	}

	item, err := h.articleService.Favorite(userID, c.Param("slug"))
	if err != nil {
		if errors.Is(err, service.ErrArticleNotFound) {
			response.NotFound(c, err.Error())
			return
		}
		response.ServerError(c, "")
		return
	}

	response.Success(c, gin.H{"article": item})
}

// Unfavorite 取消收藏
// DELETE /api/articles/:slug/favorite
func (h *ArticleHandler) Unfavorite(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "")
		return
	}

	item, err := h.articleService.Unfavorite(userID, c.Param("slug"))
	if err != nil {
		if errors.Is(err, service.ErrArticleNotFound) {
			response.NotFound(c, err.Error())
			return
		}
		response.ServerError(c, "")
		return
	}

	response.Success(c, gin.H{"article": item})
}
