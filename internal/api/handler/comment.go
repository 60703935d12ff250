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

type CommentHandler struct {
	commentService *service.CommentService
}

func NewCommentHandler(commentService *service.CommentService) *CommentHandler {
	return &CommentHandler{
		commentService: commentService,
	}
}

// Create 发表评论或回复
// POST /api/articles/:slug/comments
func (h *CommentHandler) Create(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "")
		return
	}

	var req dto.CreateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	comment, err := h.commentService.Create(userID, c.Param("slug"), &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCommentBodyRequired):
			response.FieldError(c, "body", "can't be empty")
		case errors.Is(err, service.ErrArticleNotFound),
			errors.Is(err, service.ErrCommentNotFound):
			response.NotFound(c, err.Error())
		case errors.Is(err, service.ErrParentNotInArticle):
			response.ParamError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}

	response.Success(c, gin.H{"comment": comment})
}

// List 分页获取文章的一级评论（含回复内容）
// GET /api/articles/:slug/comments
func (h *CommentHandler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "1"))

	result, err := h.commentService.List(c.Param("slug"), limit, offset)
	if err != nil {
		if errors.Is(err, service.ErrArticleNotFound) {
			response.NotFound(c, err.Error())
			return
		}
		response.ServerError(c, "")
		return
	}

	response.Success(c, result)
}

// Delete 删除评论并级联清理其子回复
// DELETE /api/articles/:slug/comments/:id
func (h *CommentHandler) Delete(c *gin.Context) {
	if _, ok := middleware.GetUserID(c); !ok {
		response.Unauthorized(c, "")
		return
	}

	commentID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ParamError(c, "无效的评论ID")
		return
	}

	result, err := h.commentService.Delete(c.Param("slug"), commentID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrArticleNotFound),
			errors.Is(err, service.ErrCommentNotFound):
			response.NotFound(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}

	response.Success(c, result)
}
