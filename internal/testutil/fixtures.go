package testutil

import (
	"fmt"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/qs3c/blog_go_server/internal/model"
)

// TestUser 创建测试用户
func TestUser(t *testing.T, db *gorm.DB, opts ...func(*model.User)) *model.User {
	t.Helper()

	email := fmt.Sprintf("test_%d@example.com", time.Now().UnixNano())
	passwordHash := "$2a$10$abcdefghijklmnopqrstuvwxyz123456" // bcrypt hash placeholder
	user := &model.User{
		Username:     fmt.Sprintf("testuser_%d", time.Now().UnixNano()%100000),
		Email:        &email,
		PasswordHash: &passwordHash,
		Activated:    true,
	}

	for _, opt := range opts {
		opt(user)
	}

	if err := db.Create(user).Error; err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}

	return user
}

// WithUsername 设置用户名
func WithUsername(username string) func(*model.User) {
	return func(u *model.User) {
		u.Username = username
	}
}

// WithEmail 设置邮箱
func WithEmail(email string) func(*model.User) {
	return func(u *model.User) {
		u.Email = &email
	}
}

// WithActivated 设置激活状态
func WithActivated(activated bool) func(*model.User) {
	return func(u *model.User) {
		u.Activated = activated
	}
}

// WithImage 设置头像
func WithImage(image string) func(*model.User) {
	return func(u *model.User) {
		u.Image = image
	}
}

// TestArticle 创建测试文章
func TestArticle(t *testing.T, db *gorm.DB, author *model.User, opts ...func(*model.Article)) *model.Article {
	t.Helper()

	article := &model.Article{
		Slug:        fmt.Sprintf("test-article-%d", time.Now().UnixNano()),
		Title:       fmt.Sprintf("Test Article %d", time.Now().UnixNano()%100000),
		Description: "A test article",
		Body:        "Test article body",
		TagList:     model.StringArray{"test"},
		CommentList: model.Int64Array{},
		AuthorID:    author.ID,
		AuthorName:  author.Username,
		AuthorImage: author.Image,
	}

	for _, opt := range opts {
		opt(article)
	}

	if err := db.Create(article).Error; err != nil {
		t.Fatalf("Failed to create test article: %v", err)
	}

	return article
}

// WithSlug 设置文章 slug
func WithSlug(slug string) func(*model.Article) {
	return func(a *model.Article) {
		a.Slug = slug
	}
}

// WithTitle 设置文章标题
func WithTitle(title string) func(*model.Article) {
	return func(a *model.Article) {
		a.Title = title
	}
}

// WithTags 设置标签列表
func WithTags(tags ...string) func(*model.Article) {
	return func(a *model.Article) {
		a.TagList = model.StringArray(tags)
	}
}

// WithCommentList 设置评论 ID 列表
func WithCommentList(ids ...int64) func(*model.Article) {
	return func(a *model.Article) {
		a.CommentList = model.Int64Array(ids)
	}
}

// TestComment 创建一级评论并登记到文章的 commentList
func TestComment(t *testing.T, db *gorm.DB, author *model.User, article *model.Article, body string) *model.Comment {
	t.Helper()

	comment := &model.Comment{
		Body:        body,
		AuthorID:    author.ID,
		AuthorName:  author.Username,
		AuthorImage: author.Image,
		ArticleID:   article.ID,
		Level:       1,
		ReplyList:   model.Int64Array{},
	}

	if err := db.Create(comment).Error; err != nil {
		t.Fatalf("Failed to create test comment: %v", err)
	}

	article.CommentList = append(article.CommentList, comment.ID)
	if err := db.Model(article).Update("comment_list", article.CommentList).Error; err != nil {
		t.Fatalf("Failed to register comment on article: %v", err)
	}

	return comment
}

// TestReply 创建回复评论（父评论快照、层级、replyList 维护与线上写路径一致）
func TestReply(t *testing.T, db *gorm.DB, author *model.User, article *model.Article, parent *model.Comment, body string) *model.Comment {
	t.Helper()

	comment := &model.Comment{
		Body:             body,
		AuthorID:         author.ID,
		AuthorName:       author.Username,
		AuthorImage:      author.Image,
		ArticleID:        article.ID,
		ParentID:         &parent.ID,
		ParentBody:       parent.Body,
		ParentAuthorID:   &parent.AuthorID,
		ParentAuthorName: parent.AuthorName,
		Level:            parent.Level + 1,
		ReplyList:        model.Int64Array{},
	}

	if err := db.Create(comment).Error; err != nil {
		t.Fatalf("Failed to create test reply: %v", err)
	}

	parent.ReplyList = append(parent.ReplyList, comment.ID)
	if err := db.Model(parent).Update("reply_list", parent.ReplyList).Error; err != nil {
		t.Fatalf("Failed to register reply on parent: %v", err)
	}

	// 三级回复同时登记到一级祖先
	if parent.ParentID != nil {
		var root model.Comment
		if err := db.First(&root, *parent.ParentID).Error; err != nil {
			t.Fatalf("Failed to load root comment: %v", err)
		}
		root.ReplyList = append(root.ReplyList, comment.ID)
		if err := db.Model(&root).Update("reply_list", root.ReplyList).Error; err != nil {
			t.Fatalf("Failed to register reply on root: %v", err)
		}
	}

	article.CommentList = append(article.CommentList, comment.ID)
	if err := db.Model(article).Update("comment_list", article.CommentList).Error; err != nil {
		t.Fatalf("Failed to register reply on article: %v", err)
	}

	return comment
}

// TestFavorite 创建收藏记录
func TestFavorite(t *testing.T, db *gorm.DB, userID, articleID int64) *model.Favorite {
	t.Helper()

	favorite := &model.Favorite{
		UserID:    userID,
		ArticleID: articleID,
	}

	if err := db.Create(favorite).Error; err != nil {
		t.Fatalf("Failed to create test favorite: %v", err)
	}

	return favorite
}

// TestFollow 创建关注记录
func TestFollow(t *testing.T, db *gorm.DB, followerID, followeeID int64) *model.Follow {
	t.Helper()

	follow := &model.Follow{
		FollowerID: followerID,
		FolloweeID: followeeID,
	}

	if err := db.Create(follow).Error; err != nil {
		t.Fatalf("Failed to create test follow: %v", err)
	}

	return follow
}

// TestTag 创建标签记录
func TestTag(t *testing.T, db *gorm.DB, name string, count int) *model.Tag {
	t.Helper()

	tag := &model.Tag{
		Name:  name,
		Count: count,
	}

	if err := db.Create(tag).Error; err != nil {
		t.Fatalf("Failed to create test tag: %v", err)
	}

	return tag
}
