package model

import (
	"time"
)

// Comment 评论，level 1 为文章下的根评论，2/3 为嵌套回复。
// 作者和父评论的信息在创建时快照到本行，读取时不再联表。
type Comment struct {
	ID               int64      `gorm:"primaryKey" json:"id"`
	Body             string     `gorm:"type:text;not null" json:"body"`
	AuthorID         int64      `gorm:"column:auth_id;not null;index" json:"auth_id"`
	AuthorName       string     `gorm:"column:auth_name;size:50;not null" json:"auth_name"`
	AuthorImage      string     `gorm:"column:auth_image;size:500" json:"auth_image"`
	ArticleID        int64      `gorm:"not null;index" json:"article_id"`
	ParentID         *int64     `gorm:"index" json:"parent_id"`
	ParentBody       string     `gorm:"type:text" json:"parent_body,omitempty"`
	ParentAuthorID   *int64     `gorm:"column:parent_auth_id" json:"parent_auth_id,omitempty"`
	ParentAuthorName string     `gorm:"column:parent_auth_name;size:50" json:"parent_auth_name,omitempty"`
	Level            int        `gorm:"not null;default:1" json:"level"`
	ReplyList        Int64Array `gorm:"type:json" json:"replyList"`
	CreatedAt        time.Time  `gorm:"index" json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`

	// 物化视图：按 ReplyList 解析出的子评论，读取时填充，不落库
	ReplyContentList []*Comment `gorm:"-" json:"replyContentList"`
}

func (Comment) TableName() string {
	return "comments"
}
