package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/qs3c/blog_go_server/internal/pkg/response"
	"github.com/qs3c/blog_go_server/internal/service"
)

type TagHandler struct {
	tagService *service.TagService
}

func NewTagHandler(tagService *service.TagService) *TagHandler {
	return &TagHandler{
		tagService: tagService,
	}
}

// List 获取全部在用标签，按热度排序
// GET /api/tags
func (h *TagHandler) List(c *gin.Context) {
	tags, err := h.tagService.List(c.Request.Context())
	if err != nil {
		response.ServerError(c, "")
		return
	}

	// 前端只需要名字列表
	names := make([]string, len(tags))
	for i, tag := range tags {
		names[i] = tag.Name
	}
	response.Success(c, gin.H{"tags": names})
}

// Search 标签搜索
// GET /api/tags/search?q=
func (h *TagHandler) Search(c *gin.Context) {
	tags, err := h.tagService.Search(c.Query("q"))
	if err != nil {
		response.ServerError(c, "")
		return
	}

	names := make([]string, len(tags))
	for i, tag := range tags {
		names[i] = tag.Name
	}
	response.Success(c, gin.H{"tags": names})
}
