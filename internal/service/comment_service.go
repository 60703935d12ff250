package service

import (
	"context"
	"errors"
	"log"

	"gorm.io/gorm"

	"github.com/qs3c/blog_go_server/internal/model"
	"github.com/qs3c/blog_go_server/internal/model/dto"
	"github.com/qs3c/blog_go_server/internal/pkg/pubsub"
	"github.com/qs3c/blog_go_server/internal/repository"
)

var (
	ErrArticleNotFound     = errors.New("文章不存在")
	ErrCommentNotFound     = errors.New("评论不存在")
	ErrParentNotInArticle  = errors.New("父评论不属于该文章")
	ErrCommentBodyRequired = errors.New("评论内容不能为空")
)

// CommentService 维护评论树：层级、父子快照、replyList 与文章 commentList 的一致性。
// 多步写入之间不加事务，和存储层的最后写入为准语义保持一致。
type CommentService struct {
	commentRepo *repository.CommentRepository
	articleRepo *repository.ArticleRepository
	userRepo    *repository.UserRepository
	publisher   *pubsub.Publisher
}

func NewCommentService(
	commentRepo *repository.CommentRepository,
	articleRepo *repository.ArticleRepository,
	userRepo *repository.UserRepository,
	publisher *pubsub.Publisher,
) *CommentService {
	return &CommentService{
		commentRepo: commentRepo,
		articleRepo: articleRepo,
		userRepo:    userRepo,
		publisher:   publisher,
	}
}

// Create 发表评论或回复。
// 无 parent 时创建一级评论并返回它；有 parent 时返回刷新后的一级根评论。
// 对三级评论的回复会重定向到其二级祖先，层级固定不超过三级。
func (s *CommentService) Create(userID int64, slug string, req *dto.CreateCommentRequest) (*model.Comment, error) {
	if req.Body == "" {
		return nil, ErrCommentBodyRequired
	}

	article, err := s.articleRepo.GetBySlug(slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrArticleNotFound
		}
		return nil, err
	}

	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, err
	}

	// 一级评论
	if req.Parent == nil {
		comment := &model.Comment{
			Body:        req.Body,
			AuthorID:    user.ID,
			AuthorName:  user.Username,
			AuthorImage: user.Image,
			ArticleID:   article.ID,
			Level:       1,
			ReplyList:   model.Int64Array{},
		}
		if err := s.commentRepo.Create(comment); err != nil {
			return nil, err
		}

		article.CommentList = append(article.CommentList, comment.ID)
		if err := s.articleRepo.UpdateCommentList(article.ID, article.CommentList); err != nil {
			return nil, err
		}

		s.notify(article, user, comment.ID, pubsub.EventNewComment)

		comment.ReplyContentList = []*model.Comment{}
		return comment, nil
	}

	// 回复：解析父评论
	parent, err := s.commentRepo.GetByID(*req.Parent)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCommentNotFound
		}
		return nil, err
	}
	if parent.ArticleID != article.ID {
		return nil, ErrParentNotInArticle
	}

	// 对三级评论的回复挂到它的二级祖先下
	if parent.Level == 3 {
		if parent.ParentID == nil {
			return nil, ErrCommentNotFound
		}
		parent, err = s.commentRepo.GetByID(*parent.ParentID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrCommentNotFound
			}
			return nil, err
		}
	}

	level := 2
	var root *model.Comment
	if parent.ParentID != nil {
		// 父评论是二级，新评论为三级，需要同时登记到一级根
		level = 3
		root, err = s.commentRepo.GetByID(*parent.ParentID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrCommentNotFound
			}
			return nil, err
		}
	}

	comment := &model.Comment{
		Body:             req.Body,
		AuthorID:         user.ID,
		AuthorName:       user.Username,
		AuthorImage:      user.Image,
		ArticleID:        article.ID,
		ParentID:         &parent.ID,
		ParentBody:       parent.Body,
		ParentAuthorID:   &parent.AuthorID,
		ParentAuthorName: parent.AuthorName,
		Level:            level,
		ReplyList:        model.Int64Array{},
	}
	if err := s.commentRepo.Create(comment); err != nil {
		return nil, err
	}

	parent.ReplyList = append(parent.ReplyList, comment.ID)
	if err := s.commentRepo.UpdateReplyList(parent.ID, parent.ReplyList); err != nil {
		return nil, err
	}

	// 一级根的 replyList 记录整棵子树的全部回复 ID
	rootID := parent.ID
	if root != nil {
		root.ReplyList = append(root.ReplyList, comment.ID)
		if err := s.commentRepo.UpdateReplyList(root.ID, root.ReplyList); err != nil {
			return nil, err
		}
		rootID = root.ID
	}

	article.CommentList = append(article.CommentList, comment.ID)
	if err := s.articleRepo.UpdateCommentList(article.ID, article.CommentList); err != nil {
		return nil, err
	}

	s.notify(article, user, comment.ID, pubsub.EventNewReply)

	return s.refreshed(rootID)
}

// List 分页获取文章的一级评论。
// limit 默认 10，offset 为页码，默认 1；pages 按一级评论数折算，
// total 统计文章评论索引中的全部 ID。
func (s *CommentService) List(slug string, limit, offset int) (*dto.CommentListResult, error) {
	article, err := s.articleRepo.GetBySlug(slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrArticleNotFound
		}
		return nil, err
	}

	if limit <= 0 {
		limit = 10
	}
	if offset <= 0 {
		offset = 1
	}

	ids := []int64(article.CommentList)

	totalRoots, err := s.commentRepo.CountRootsByIDs(ids)
	if err != nil {
		return nil, err
	}

	roots, err := s.commentRepo.ListRootsByIDs(ids, (offset-1)*limit, limit)
	if err != nil {
		return nil, err
	}
	if roots == nil {
		roots = []*model.Comment{}
	}

	for _, root := range roots {
		if err := s.materialize(root); err != nil {
			return nil, err
		}
	}

	pages := int(totalRoots) / limit
	if int(totalRoots)%limit != 0 {
		pages++
	}

	return &dto.CommentListResult{
		Comments: roots,
		Page:     offset,
		Pages:    pages,
		Total:    len(article.CommentList),
	}, nil
}

// Delete 删除评论并级联清理。
// 三级：从二级父与一级根的 replyList 中摘除；二级：连带其全部三级子评论；
// 一级：连带 replyList 中的整棵子树。返回刷新后的一级根（删根时返回被删记录）。
func (s *CommentService) Delete(slug string, commentID int64) (*dto.DeleteCommentResult, error) {
	article, err := s.articleRepo.GetBySlug(slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrArticleNotFound
		}
		return nil, err
	}

	comment, err := s.commentRepo.GetByID(commentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCommentNotFound
		}
		return nil, err
	}
	if comment.ArticleID != article.ID {
		return nil, ErrCommentNotFound
	}

	switch comment.Level {
	case 3:
		return s.deleteLevel3(article, comment)
	case 2:
		return s.deleteLevel2(article, comment)
	default:
		return s.deleteRoot(article, comment)
	}
}

func (s *CommentService) deleteLevel3(article *model.Article, comment *model.Comment) (*dto.DeleteCommentResult, error) {
	if comment.ParentID == nil {
		return nil, ErrCommentNotFound
	}
	parent, err := s.commentRepo.GetByID(*comment.ParentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCommentNotFound
		}
		return nil, err
	}

	parent.ReplyList = parent.ReplyList.Remove(comment.ID)
	if err := s.commentRepo.UpdateReplyList(parent.ID, parent.ReplyList); err != nil {
		return nil, err
	}

	if parent.ParentID == nil {
		return nil, ErrCommentNotFound
	}
	root, err := s.commentRepo.GetByID(*parent.ParentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCommentNotFound
		}
		return nil, err
	}

	root.ReplyList = root.ReplyList.Remove(comment.ID)
	if err := s.commentRepo.UpdateReplyList(root.ID, root.ReplyList); err != nil {
		return nil, err
	}

	article.CommentList = article.CommentList.Remove(comment.ID)
	if err := s.articleRepo.UpdateCommentList(article.ID, article.CommentList); err != nil {
		return nil, err
	}

	if err := s.commentRepo.Delete(comment.ID); err != nil {
		return nil, err
	}

	refreshed, err := s.refreshed(root.ID)
	if err != nil {
		return nil, err
	}
	return &dto.DeleteCommentResult{Comment: refreshed, NumCmtDelete: 1}, nil
}

func (s *CommentService) deleteLevel2(article *model.Article, comment *model.Comment) (*dto.DeleteCommentResult, error) {
	if comment.ParentID == nil {
		return nil, ErrCommentNotFound
	}
	root, err := s.commentRepo.GetByID(*comment.ParentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCommentNotFound
		}
		return nil, err
	}

	children := []int64(comment.ReplyList)
	removed := append(append([]int64{}, children...), comment.ID)

	root.ReplyList = root.ReplyList.Remove(removed...)
	if err := s.commentRepo.UpdateReplyList(root.ID, root.ReplyList); err != nil {
		return nil, err
	}

	if _, err := s.commentRepo.DeleteByIDs(children); err != nil {
		return nil, err
	}

	article.CommentList = article.CommentList.Remove(removed...)
	if err := s.articleRepo.UpdateCommentList(article.ID, article.CommentList); err != nil {
		return nil, err
	}

	if err := s.commentRepo.Delete(comment.ID); err != nil {
		return nil, err
	}

	refreshed, err := s.refreshed(root.ID)
	if err != nil {
		return nil, err
	}
	return &dto.DeleteCommentResult{
		Comment:      refreshed,
		NumCmtDelete: int64(1 + len(children)),
	}, nil
}

func (s *CommentService) deleteRoot(article *model.Article, comment *model.Comment) (*dto.DeleteCommentResult, error) {
	// 一级根的 replyList 覆盖其下全部二三级回复
	descendants := []int64(comment.ReplyList)

	if _, err := s.commentRepo.DeleteByIDs(descendants); err != nil {
		return nil, err
	}

	removed := append(append([]int64{}, descendants...), comment.ID)
	article.CommentList = article.CommentList.Remove(removed...)
	if err := s.articleRepo.UpdateCommentList(article.ID, article.CommentList); err != nil {
		return nil, err
	}

	if err := s.commentRepo.Delete(comment.ID); err != nil {
		return nil, err
	}

	return &dto.DeleteCommentResult{
		Comment:      comment,
		NumCmtDelete: int64(1 + len(descendants)),
	}, nil
}

// refreshed 重新加载一级根并重建 replyContentList
func (s *CommentService) refreshed(rootID int64) (*model.Comment, error) {
	root, err := s.commentRepo.GetByID(rootID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCommentNotFound
		}
		return nil, err
	}
	if err := s.materialize(root); err != nil {
		return nil, err
	}
	return root, nil
}

// materialize 按 replyList 重建 replyContentList，不落库
func (s *CommentService) materialize(c *model.Comment) error {
	c.ReplyContentList = []*model.Comment{}
	if len(c.ReplyList) == 0 {
		return nil
	}

	replies, err := s.commentRepo.ListByIDs([]int64(c.ReplyList))
	if err != nil {
		return err
	}
	c.ReplyContentList = replies
	return nil
}

// notify 向文章作者推送评论通知，失败只记日志
func (s *CommentService) notify(article *model.Article, actor *model.User, commentID int64, event string) {
	if s.publisher == nil || article.AuthorID == actor.ID {
		return
	}

	err := s.publisher.Publish(context.Background(), &pubsub.Notification{
		Type:         event,
		UserID:       article.AuthorID,
		ActorName:    actor.Username,
		ArticleSlug:  article.Slug,
		ArticleTitle: article.Title,
		CommentID:    commentID,
	})
	if err != nil {
		log.Printf("Failed to publish comment notification: %v", err)
	}
}
