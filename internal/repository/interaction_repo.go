package repository

import (
	"gorm.io/gorm"

	"github.com/qs3c/blog_go_server/internal/model"
)

// InteractionRepository 管理收藏与关注关系
type InteractionRepository struct {
	db *gorm.DB
}

func NewInteractionRepository(db *gorm.DB) *InteractionRepository {
	return &InteractionRepository{db: db}
}

// AddFavorite 收藏文章，已收藏时不重复写入
func (r *InteractionRepository) AddFavorite(userID, articleID int64) (bool, error) {
	exists, err := r.IsFavorited(userID, articleID)
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}

	err = r.db.Create(&model.Favorite{UserID: userID, ArticleID: articleID}).Error
	if err != nil {
		return false, err
	}
	return true, nil
}

// RemoveFavorite 取消收藏
func (r *InteractionRepository) RemoveFavorite(userID, articleID int64) (bool, error) {
	result := r.db.Where("user_id = ? AND article_id = ?", userID, articleID).
		Delete(&model.Favorite{})
	return result.RowsAffected > 0, result.Error
}

// IsFavorited 检查是否已收藏
func (r *InteractionRepository) IsFavorited(userID, articleID int64) (bool, error) {
	var count int64
	err := r.db.Model(&model.Favorite{}).
		Where("user_id = ? AND article_id = ?", userID, articleID).
		Count(&count).Error
	return count > 0, err
}

// ListFavoritedArticleIDs 获取用户收藏的文章 ID
func (r *InteractionRepository) ListFavoritedArticleIDs(userID int64) ([]int64, error) {
	var ids []int64
	err := r.db.Model(&model.Favorite{}).
		Where("user_id = ?", userID).
		Pluck("article_id", &ids).Error
	return ids, err
}

// DeleteFavoritesByArticleID 删除文章的全部收藏记录
func (r *InteractionRepository) DeleteFavoritesByArticleID(articleID int64) error {
	return r.db.Where("article_id = ?", articleID).Delete(&model.Favorite{}).Error
}

// AddFollow 关注用户，已关注时不重复写入
func (r *InteractionRepository) AddFollow(followerID, followeeID int64) (bool, error) {
	exists, err := r.IsFollowing(followerID, followeeID)
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}

	err = r.db.Create(&model.Follow{FollowerID: followerID, FolloweeID: followeeID}).Error
	if err != nil {
		return false, err
	}
	return true, nil
}

// RemoveFollow 取消关注
func (r *InteractionRepository) RemoveFollow(followerID, followeeID int64) (bool, error) {
	result := r.db.Where("follower_id = ? AND followee_id = ?", followerID, followeeID).
		Delete(&model.Follow{})
	return result.RowsAffected > 0, result.Error
}

// IsFollowing 检查是否已关注
func (r *InteractionRepository) IsFollowing(followerID, followeeID int64) (bool, error) {
	var count int64
	err := r.db.Model(&model.Follow{}).
		Where("follower_id = ? AND followee_id = ?", followerID, followeeID).
		Count(&count).Error
	return count > 0, err
}

// ListFolloweeIDs 获取用户关注的作者 ID
func (r *InteractionRepository) ListFolloweeIDs(followerID int64) ([]int64, error) {
	var ids []int64
	err := r.db.Model(&model.Follow{}).
		Where("follower_id = ?", followerID).
		Pluck("followee_id", &ids).Error
	return ids, err
}

// CountFollowers 统计粉丝数
func (r *InteractionRepository) CountFollowers(followeeID int64) (int64, error) {
	var count int64
	err := r.db.Model(&model.Follow{}).
		Where("followee_id = ?", followeeID).
		Count(&count).Error
	return count, err
}
