package model

import (
	"time"
)

// Favorite 用户收藏文章
type Favorite struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	UserID    int64     `gorm:"not null;index:idx_fav_user_article,unique" json:"user_id"`
	ArticleID int64     `gorm:"not null;index:idx_fav_user_article,unique;index" json:"article_id"`
	CreatedAt time.Time `json:"created_at"`
}

func (Favorite) TableName() string {
	return "favorites"
}

// Follow 用户关注作者
type Follow struct {
	ID         int64     `gorm:"primaryKey" json:"id"`
	FollowerID int64     `gorm:"not null;index:idx_follow_pair,unique" json:"follower_id"`
	FolloweeID int64     `gorm:"not null;index:idx_follow_pair,unique;index" json:"followee_id"`
	CreatedAt  time.Time `json:"created_at"`
}

func (Follow) TableName() string {
	return "follows"
}
