package repository

import (
	"errors"

	"gorm.io/gorm"

	"github.com/qs3c/blog_go_server/internal/model"
)

type TagRepository struct {
	db *gorm.DB
}

func NewTagRepository(db *gorm.DB) *TagRepository {
	return &TagRepository{db: db}
}

func (r *TagRepository) GetByName(name string) (*model.Tag, error) {
	var tag model.Tag
	err := r.db.Where("name = ?", name).First(&tag).Error
	if err != nil {
		return nil, err
	}
	return &tag, nil
}

// IncrementCount 标签计数加减，标签不存在时创建
func (r *TagRepository) IncrementCount(name string, delta int) error {
	result := r.db.Model(&model.Tag{}).Where("name = ?", name).
		Update("count", gorm.Expr("count + ?", delta))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 && delta > 0 {
		err := r.db.Create(&model.Tag{Name: name, Count: delta}).Error
		// 并发创建时退回计数更新
		if err != nil && errors.Is(err, gorm.ErrDuplicatedKey) {
			return r.db.Model(&model.Tag{}).Where("name = ?", name).
				Update("count", gorm.Expr("count + ?", delta)).Error
		}
		return err
	}
	return nil
}

// ListActive 获取计数大于零的标签，按计数倒序
func (r *TagRepository) ListActive() ([]*model.Tag, error) {
	var tags []*model.Tag
	err := r.db.Where("count > 0").Order("count DESC").Find(&tags).Error
	return tags, err
}

// Search 按名称模糊搜索
func (r *TagRepository) Search(keyword string, limit int) ([]*model.Tag, error) {
	var tags []*model.Tag
	err := r.db.Where("name LIKE ? AND count > 0", "%"+keyword+"%").
		Order("count DESC").
		Limit(limit).
		Find(&tags).Error
	return tags, err
}

// ReplaceAll 用对账后的计数整体重建标签表
func (r *TagRepository) ReplaceAll(counts map[string]int) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&model.Tag{}).Error; err != nil {
			return err
		}
		for name, count := range counts {
			if count <= 0 {
				continue
			}
			if err := tx.Create(&model.Tag{Name: name, Count: count}).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
