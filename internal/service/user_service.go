package service

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/qs3c/blog_go_server/internal/model"
	"github.com/qs3c/blog_go_server/internal/model/dto"
	"github.com/qs3c/blog_go_server/internal/repository"
)

var (
	ErrProfileNotFound = errors.New("用户主页不存在")
	ErrSelfFollow      = errors.New("不能关注自己")
)

type UserService struct {
	userRepo        *repository.UserRepository
	articleRepo     *repository.ArticleRepository
	interactionRepo *repository.InteractionRepository
}

func NewUserService(
	userRepo *repository.UserRepository,
	articleRepo *repository.ArticleRepository,
	interactionRepo *repository.InteractionRepository,
) *UserService {
	return &UserService{
		userRepo:        userRepo,
		articleRepo:     articleRepo,
		interactionRepo: interactionRepo,
	}
}

// Get 获取当前用户
func (s *UserService) Get(userID int64) (*model.User, error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// Update 更新当前用户，nil 字段不变。
// 用户名或头像变化时同步其文章上的作者快照。
func (s *UserService) Update(userID int64, req *dto.UpdateUserRequest) (*model.User, error) {
	user, err := s.Get(userID)
	if err != nil {
		return nil, err
	}

	snapshotChanged := false

	if req.Username != nil && *req.Username != user.Username {
		exists, err := s.userRepo.ExistsByUsername(*req.Username)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, ErrUsernameExists
		}
		user.Username = *req.Username
		snapshotChanged = true
	}
	if req.Email != nil && (user.Email == nil || *req.Email != *user.Email) {
		exists, err := s.userRepo.ExistsByEmail(*req.Email)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, ErrEmailExists
		}
		user.Email = req.Email
	}
	if req.Password != nil && *req.Password != "" {
		hashed, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		hash := string(hashed)
		user.PasswordHash = &hash
	}
	if req.Bio != nil {
		user.Bio = *req.Bio
	}
	if req.Image != nil && *req.Image != user.Image {
		user.Image = *req.Image
		snapshotChanged = true
	}

	if err := s.userRepo.Update(user); err != nil {
		return nil, err
	}

	if snapshotChanged {
		if err := s.articleRepo.UpdateAuthorSnapshot(user.ID, user.Username, user.Image); err != nil {
			return nil, err
		}
	}

	return user, nil
}

// GetProfile 获取用户主页，following 按请求者解析
func (s *UserService) GetProfile(username string, viewerID *int64) (*dto.ProfileResponse, error) {
	user, err := s.userRepo.GetByUsername(username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}

	following := false
	if viewerID != nil {
		following, err = s.interactionRepo.IsFollowing(*viewerID, user.ID)
		if err != nil {
			return nil, err
		}
	}

	return &dto.ProfileResponse{
		Username:  user.Username,
		Bio:       user.Bio,
		Image:     user.Image,
		Following: following,
	}, nil
}

// Follow 关注用户，幂等
func (s *UserService) Follow(followerID int64, username string) (*dto.ProfileResponse, error) {
	followee, err := s.userRepo.GetByUsername(username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}
	if followee.ID == followerID {
		return nil, ErrSelfFollow
	}

	if _, err := s.interactionRepo.AddFollow(followerID, followee.ID); err != nil {
		return nil, err
	}

	return &dto.ProfileResponse{
		Username:  followee.Username,
		Bio:       followee.Bio,
		Image:     followee.Image,
		Following: true,
	}, nil
}

// Unfollow 取消关注，幂等
func (s *UserService) Unfollow(followerID int64, username string) (*dto.ProfileResponse, error) {
	followee, err := s.userRepo.GetByUsername(username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}

	if _, err := s.interactionRepo.RemoveFollow(followerID, followee.ID); err != nil {
		return nil, err
	}

	return &dto.ProfileResponse{
		Username:  followee.Username,
		Bio:       followee.Bio,
		Image:     followee.Image,
		Following: false,
	}, nil
}

// Search 按用户名搜索
func (s *UserService) Search(keyword string) ([]*dto.ProfileResponse, error) {
	users, err := s.userRepo.Search(keyword, 20)
	if err != nil {
		return nil, err
	}

	profiles := make([]*dto.ProfileResponse, len(users))
	for i, user := range users {
		profiles[i] = &dto.ProfileResponse{
			Username: user.Username,
			Bio:      user.Bio,
			Image:    user.Image,
		}
	}
	return profiles, nil
}
