package repository

import (
	"gorm.io/gorm"

	"github.com/qs3c/blog_go_server/internal/model"
)

type CommentRepository struct {
	db *gorm.DB
}

func NewCommentRepository(db *gorm.DB) *CommentRepository {
	return &CommentRepository{db: db}
}

// Create 创建评论
func (r *CommentRepository) Create(comment *model.Comment) error {
	return r.db.Create(comment).Error
}

// GetByID 根据 ID 获取评论
func (r *CommentRepository) GetByID(id int64) (*model.Comment, error) {
	var comment model.Comment
	err := r.db.Where("id = ?", id).First(&comment).Error
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

// Update 保存评论
func (r *CommentRepository) Update(comment *model.Comment) error {
	return r.db.Save(comment).Error
}

// UpdateReplyList 更新回复 ID 列表
func (r *CommentRepository) UpdateReplyList(id int64, replyList model.Int64Array) error {
	return r.db.Model(&model.Comment{}).Where("id = ?", id).
		Update("reply_list", replyList).Error
}

// Delete 删除评论
func (r *CommentRepository) Delete(id int64) error {
	return r.db.Delete(&model.Comment{}, id).Error
}

// DeleteByIDs 批量删除评论
func (r *CommentRepository) DeleteByIDs(ids []int64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	result := r.db.Where("id IN ?", ids).Delete(&model.Comment{})
	return result.RowsAffected, result.Error
}

// DeleteByArticleID 删除文章下的全部评论
func (r *CommentRepository) DeleteByArticleID(articleID int64) (int64, error) {
	result := r.db.Where("article_id = ?", articleID).Delete(&model.Comment{})
	return result.RowsAffected, result.Error
}

// ListByIDs 批量获取评论，按创建时间升序
func (r *CommentRepository) ListByIDs(ids []int64) ([]*model.Comment, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var comments []*model.Comment
	err := r.db.Where("id IN ?", ids).
		Order("created_at ASC").
		Find(&comments).Error
	return comments, err
}

// ListRootsByIDs 从候选 ID 中分页取一级评论，按创建时间升序
func (r *CommentRepository) ListRootsByIDs(ids []int64, offset, limit int) ([]*model.Comment, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var comments []*model.Comment
	err := r.db.Where("id IN ? AND level = ?", ids, 1).
		Order("created_at ASC").
		Offset(offset).
		Limit(limit).
		Find(&comments).Error
	return comments, err
}

// CountRootsByIDs 统计候选 ID 中的一级评论数
func (r *CommentRepository) CountRootsByIDs(ids []int64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	var count int64
	err := r.db.Model(&model.Comment{}).
		Where("id IN ? AND level = ?", ids, 1).
		Count(&count).Error
	return count, err
}
