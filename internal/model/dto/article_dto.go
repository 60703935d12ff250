package dto

import "time"

// CreateArticleRequest 创建文章请求
type CreateArticleRequest struct {
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	Body         string   `json:"body"`
	ThumbnailURL string   `json:"thumbnail_url"`
	TagList      []string `json:"tagList"`
}

// UpdateArticleRequest 更新文章请求，零值字段不更新
type UpdateArticleRequest struct {
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	Body         string   `json:"body"`
	ThumbnailURL string   `json:"thumbnail_url"`
	TagList      []string `json:"tagList"`
}

// ArticleItem 文章视图，favorited 按当前请求者解析
type ArticleItem struct {
	Slug          string    `json:"slug"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	Body          string    `json:"body"`
	ThumbnailURL  string    `json:"thumbnail_url"`
	TagList       []string  `json:"tagList"`
	Favorited     bool      `json:"favorited"`
	FavoriteCount int       `json:"favoriteCount"`
	CommentList   []int64   `json:"commentList"`
	AuthorID      int64     `json:"auth_id"`
	AuthorName    string    `json:"auth_name"`
	AuthorImage   string    `json:"auth_image"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// ArticleListResult 列表查询结果与按过滤维度附带的聚合
type ArticleListResult struct {
	Articles    []*ArticleItem `json:"articles"`
	Page        int            `json:"page"`
	Pages       int            `json:"pages"`
	Total       int64          `json:"total"`
	TotalAuthor int            `json:"totalAuthor,omitempty"`
	TotalTag    []string       `json:"totalTag,omitempty"`
	AuthImages  []string       `json:"authImages,omitempty"`
}
