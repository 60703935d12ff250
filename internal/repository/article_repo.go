package repository

import (
	"gorm.io/gorm"

	"github.com/qs3c/blog_go_server/internal/model"
)

type ArticleRepository struct {
	db *gorm.DB
}

func NewArticleRepository(db *gorm.DB) *ArticleRepository {
	return &ArticleRepository{db: db}
}

func (r *ArticleRepository) Create(article *model.Article) error {
	return r.db.Create(article).Error
}

func (r *ArticleRepository) GetByID(id int64) (*model.Article, error) {
	var article model.Article
	err := r.db.Where("id = ?", id).First(&article).Error
	if err != nil {
		return nil, err
	}
	return &article, nil
}

func (r *ArticleRepository) GetBySlug(slug string) (*model.Article, error) {
	var article model.Article
	err := r.db.Where("slug = ?", slug).First(&article).Error
	if err != nil {
		return nil, err
	}
	return &article, nil
}

func (r *ArticleRepository) Update(article *model.Article) error {
	return r.db.Save(article).Error
}

func (r *ArticleRepository) UpdateFields(id int64, fields map[string]interface{}) error {
	return r.db.Model(&model.Article{}).Where("id = ?", id).Updates(fields).Error
}

// UpdateCommentList 更新文章的评论 ID 列表
func (r *ArticleRepository) UpdateCommentList(id int64, commentList model.Int64Array) error {
	return r.db.Model(&model.Article{}).Where("id = ?", id).
		Update("comment_list", commentList).Error
}

func (r *ArticleRepository) Delete(id int64) error {
	return r.db.Delete(&model.Article{}, id).Error
}

// ListFilter 文章列表过滤条件
type ListFilter struct {
	Tag       string
	Author    string
	FavedIDs  []int64 // favorited 过滤解析出的文章 ID，nil 表示未启用
	AuthorIDs []int64 // feed 过滤，nil 表示未启用
}

// List 按过滤条件分页获取文章，按创建时间倒序
func (r *ArticleRepository) List(filter ListFilter, page, pageSize int) ([]*model.Article, int64, error) {
	var articles []*model.Article
	var total int64

	query := r.applyFilter(r.db.Model(&model.Article{}), filter)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	if err := query.Order("created_at DESC").Offset(offset).Limit(pageSize).Find(&articles).Error; err != nil {
		return nil, 0, err
	}

	return articles, total, nil
}

func (r *ArticleRepository) applyFilter(query *gorm.DB, filter ListFilter) *gorm.DB {
	if filter.Tag != "" {
		// tag_list 为 JSON 数组，按序列化后的元素匹配
		query = query.Where("tag_list LIKE ?", "%\""+filter.Tag+"\"%")
	}
	if filter.Author != "" {
		query = query.Where("auth_name = ?", filter.Author)
	}
	if filter.FavedIDs != nil {
		if len(filter.FavedIDs) == 0 {
			// 无收藏时返回空集
			query = query.Where("1 = 0")
		} else {
			query = query.Where("id IN ?", filter.FavedIDs)
		}
	}
	if filter.AuthorIDs != nil {
		if len(filter.AuthorIDs) == 0 {
			query = query.Where("1 = 0")
		} else {
			query = query.Where("auth_id IN ?", filter.AuthorIDs)
		}
	}
	return query
}

// ListPopular 按收藏数倒序获取热门文章
func (r *ArticleRepository) ListPopular(limit int) ([]*model.Article, error) {
	var articles []*model.Article
	err := r.db.Order("favorite_count DESC").Limit(limit).Find(&articles).Error
	return articles, err
}

// ListRelative 获取同标签的相关文章（排除自身）
func (r *ArticleRepository) ListRelative(articleID int64, tags []string, limit int) ([]*model.Article, error) {
	if len(tags) == 0 {
		return nil, nil
	}

	query := r.db.Where("id <> ?", articleID)

	tagQuery := r.db
	for _, tag := range tags {
		tagQuery = tagQuery.Or("tag_list LIKE ?", "%\""+tag+"\"%")
	}
	query = query.Where(tagQuery)

	var articles []*model.Article
	err := query.Order("created_at DESC").Limit(limit).Find(&articles).Error
	return articles, err
}

// Search 按标题模糊搜索
func (r *ArticleRepository) Search(keyword string, limit int) ([]*model.Article, error) {
	var articles []*model.Article
	err := r.db.Where("title LIKE ?", "%"+keyword+"%").
		Order("created_at DESC").
		Limit(limit).
		Find(&articles).Error
	return articles, err
}

// IncrementFavoriteCount 增加收藏数
func (r *ArticleRepository) IncrementFavoriteCount(id int64, delta int) error {
	return r.db.Model(&model.Article{}).Where("id = ?", id).
		Update("favorite_count", gorm.Expr("favorite_count + ?", delta)).Error
}

// UpdateAuthorSnapshot 同步作者冗余信息到其全部文章
func (r *ArticleRepository) UpdateAuthorSnapshot(authorID int64, name, image string) error {
	return r.db.Model(&model.Article{}).Where("auth_id = ?", authorID).
		Updates(map[string]interface{}{"auth_name": name, "auth_image": image}).Error
}

// AuthorSnapshot 文章上冗余的作者信息
type AuthorSnapshot struct {
	Name  string `gorm:"column:auth_name"`
	Image string `gorm:"column:auth_image"`
}

// ListDistinctAuthors 获取过滤结果中去重后的作者快照
func (r *ArticleRepository) ListDistinctAuthors(filter ListFilter) ([]AuthorSnapshot, error) {
	var rows []AuthorSnapshot
	err := r.applyFilter(r.db.Model(&model.Article{}), filter).
		Distinct("auth_name", "auth_image").
		Find(&rows).Error
	return rows, err
}

// ListTagLists 获取过滤结果中全部文章的标签列表（聚合与标签计数对账用）
func (r *ArticleRepository) ListTagLists(filter ListFilter) ([]model.StringArray, error) {
	var articles []*model.Article
	query := r.applyFilter(r.db.Model(&model.Article{}), filter)
	if err := query.Select("tag_list").Find(&articles).Error; err != nil {
		return nil, err
	}

	tagLists := make([]model.StringArray, 0, len(articles))
	for _, a := range articles {
		tagLists = append(tagLists, a.TagList)
	}
	return tagLists, nil
}
