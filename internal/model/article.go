package model

import (
	"database/sql/driver"
	"encoding/json"
	"time"
)

// StringArray 用于 JSON 数组字段
type StringArray []string

func (s StringArray) Value() (driver.Value, error) {
	if s == nil {
		return "[]", nil
	}
	return json.Marshal(s)
}

func (s *StringArray) Scan(value interface{}) error {
	if value == nil {
		*s = []string{}
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, s)
	case string:
		return json.Unmarshal([]byte(v), s)
	}
	return nil
}

// Int64Array 用于 JSON 形式的 ID 列表字段（commentList / replyList）
type Int64Array []int64

func (a Int64Array) Value() (driver.Value, error) {
	if a == nil {
		return "[]", nil
	}
	return json.Marshal(a)
}

func (a *Int64Array) Scan(value interface{}) error {
	if value == nil {
		*a = []int64{}
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, a)
	case string:
		return json.Unmarshal([]byte(v), a)
	}
	return nil
}

// Contains 判断 id 是否在列表中
func (a Int64Array) Contains(id int64) bool {
	for _, v := range a {
		if v == id {
			return true
		}
	}
	return false
}

// Remove 返回去掉指定 id 后的新列表
func (a Int64Array) Remove(ids ...int64) Int64Array {
	drop := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		drop[id] = struct{}{}
	}
	out := make(Int64Array, 0, len(a))
	for _, v := range a {
		if _, ok := drop[v]; !ok {
			out = append(out, v)
		}
	}
	return out
}

type Article struct {
	ID            int64       `gorm:"primaryKey" json:"id"`
	Slug          string      `gorm:"size:255;uniqueIndex;not null" json:"slug"`
	Title         string      `gorm:"size:200;not null" json:"title"`
	Description   string      `gorm:"type:text;not null" json:"description"`
	Body          string      `gorm:"type:text;not null" json:"body"`
	ThumbnailURL  string      `gorm:"size:500" json:"thumbnail_url"`
	TagList       StringArray `gorm:"type:json" json:"tagList"`
	FavoriteCount int         `gorm:"default:0" json:"favoriteCount"`
	CommentList   Int64Array  `gorm:"type:json" json:"commentList"`
	AuthorID      int64       `gorm:"column:auth_id;not null;index" json:"auth_id"`
	AuthorName    string      `gorm:"column:auth_name;size:50;not null" json:"auth_name"`
	AuthorImage   string      `gorm:"column:auth_image;size:500" json:"auth_image"`
	CreatedAt     time.Time   `gorm:"index" json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
}

func (Article) TableName() string {
	return "articles"
}
