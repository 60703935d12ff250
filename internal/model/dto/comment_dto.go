package dto

import (
	"github.com/qs3c/blog_go_server/internal/model"
)

// CreateCommentRequest 发表评论/回复请求
type CreateCommentRequest struct {
	Body   string `json:"body"`
	Parent *int64 `json:"parent,omitempty"`
}

// CommentListResult 文章评论分页结果
type CommentListResult struct {
	Comments []*model.Comment `json:"comments"`
	Page     int              `json:"page"`
	Pages    int              `json:"pages"`
	Total    int              `json:"total"`
}

// DeleteCommentResult 删除评论结果
type DeleteCommentResult struct {
	Comment      *model.Comment `json:"comment"`
	NumCmtDelete int64          `json:"numCmtDelete"`
}
