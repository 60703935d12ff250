package model

import (
	"time"
)

type User struct {
	ID             int64      `gorm:"primaryKey" json:"id"`
	Username       string     `gorm:"size:50;uniqueIndex;not null" json:"username"`
	Email          *string    `gorm:"size:100;uniqueIndex" json:"email,omitempty"`
	PasswordHash   *string    `gorm:"size:255" json:"-"`
	Image          string     `gorm:"size:500" json:"image"`
	Bio            string     `gorm:"type:text" json:"bio"`
	GithubID       *string    `gorm:"column:github_id;size:50;uniqueIndex" json:"-"`
	Activated      bool       `gorm:"default:false" json:"activated"`
	ResetToken     *string    `gorm:"size:255" json:"-"`
	ResetExpiresAt *time.Time `json:"-"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}
