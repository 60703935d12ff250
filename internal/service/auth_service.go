package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/qs3c/blog_go_server/config"
	"github.com/qs3c/blog_go_server/internal/model"
	"github.com/qs3c/blog_go_server/internal/model/dto"
	"github.com/qs3c/blog_go_server/internal/pkg/jwt"
	"github.com/qs3c/blog_go_server/internal/pkg/oauth"
	"github.com/qs3c/blog_go_server/internal/pkg/queue"
	"github.com/qs3c/blog_go_server/internal/repository"
)

var (
	ErrEmailExists        = errors.New("邮箱已被注册")
	ErrUsernameExists     = errors.New("用户名已被使用")
	ErrInvalidCredentials = errors.New("邮箱或密码错误")
	ErrInvalidActivation  = errors.New("激活链接无效或已过期")
	ErrInvalidResetToken  = errors.New("重置链接无效或已过期")
	ErrUserNotFound       = errors.New("用户不存在")
)

type AuthService struct {
	userRepo    *repository.UserRepository
	mailQueue   *queue.Queue
	cfg         *config.Config
	githubOAuth *oauth.GithubOAuth
}

func NewAuthService(userRepo *repository.UserRepository, mailQueue *queue.Queue, cfg *config.Config) *AuthService {
	return &AuthService{
		userRepo:  userRepo,
		mailQueue: mailQueue,
		cfg:       cfg,
		githubOAuth: oauth.NewGithubOAuth(
			cfg.OAuth.Github.ClientID,
			cfg.OAuth.Github.ClientSecret,
			cfg.OAuth.Github.RedirectURI,
		),
	}
}

// Register 用户注册，入队激活邮件
func (s *AuthService) Register(req *dto.RegisterRequest) (*dto.UserResponse, error) {
	exists, err := s.userRepo.ExistsByEmail(req.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrEmailExists
	}

	exists, err = s.userRepo.ExistsByUsername(req.Username)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrUsernameExists
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	passwordStr := string(hashedPassword)
	user := &model.User{
		Username:     req.Username,
		Email:        &req.Email,
		PasswordHash: &passwordStr,
	}

	if err := s.userRepo.Create(user); err != nil {
		return nil, err
	}

	s.enqueueActivationMail(user)

	token, err := jwt.GenerateToken(user.ID, s.cfg.JWT.Secret, s.cfg.JWT.ExpireHours)
	if err != nil {
		return nil, err
	}
	return s.buildUserResponse(user, token), nil
}

// Login 用户登录
func (s *AuthService) Login(req *dto.LoginRequest) (*dto.UserResponse, error) {
	user, err := s.userRepo.GetByEmail(req.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if user.PasswordHash == nil {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(*user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, err := jwt.GenerateToken(user.ID, s.cfg.JWT.Secret, s.cfg.JWT.ExpireHours)
	if err != nil {
		return nil, err
	}
	return s.buildUserResponse(user, token), nil
}

// Activate 按激活令牌（注册时签发的 JWT）激活账号
func (s *AuthService) Activate(token string) (*dto.UserResponse, error) {
	claims, err := jwt.ParseToken(token, s.cfg.JWT.Secret)
	if err != nil {
		return nil, ErrInvalidActivation
	}

	user, err := s.userRepo.GetByID(claims.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidActivation
		}
		return nil, err
	}

	if !user.Activated {
		user.Activated = true
		if err := s.userRepo.Update(user); err != nil {
			return nil, err
		}
		s.enqueueWelcomeMail(user)
	}

	sessionToken, err := jwt.GenerateToken(user.ID, s.cfg.JWT.Secret, s.cfg.JWT.ExpireHours)
	if err != nil {
		return nil, err
	}
	return s.buildUserResponse(user, sessionToken), nil
}

// ResendActivation 重发激活邮件
func (s *AuthService) ResendActivation(userID int64) error {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	s.enqueueActivationMail(user)
	return nil
}

// ForgotPassword 生成重置令牌并入队重置邮件。
// 邮箱不存在时静默返回，不暴露账号是否注册。
func (s *AuthService) ForgotPassword(email string) error {
	user, err := s.userRepo.GetByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}

	token, err := generateRandomToken(32)
	if err != nil {
		return err
	}

	expiresAt := time.Now().Add(30 * time.Minute)
	user.ResetToken = &token
	user.ResetExpiresAt = &expiresAt
	if err := s.userRepo.Update(user); err != nil {
		return err
	}

	s.enqueueMail(&queue.MailMessage{
		Type:     queue.MailPasswordReset,
		To:       email,
		Username: user.Username,
		Link:     fmt.Sprintf("%s/resetPassword/%s", s.cfg.Client.BaseURL, token),
	})
	return nil
}

// ResetPassword 按重置令牌设置新密码
func (s *AuthService) ResetPassword(token, password string) (*dto.UserResponse, error) {
	user, err := s.userRepo.GetByResetToken(token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidResetToken
		}
		return nil, err
	}

	if user.ResetExpiresAt == nil || time.Now().After(*user.ResetExpiresAt) {
		return nil, ErrInvalidResetToken
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	passwordStr := string(hashedPassword)
	user.PasswordHash = &passwordStr
	user.ResetToken = nil
	user.ResetExpiresAt = nil
	if err := s.userRepo.Update(user); err != nil {
		return nil, err
	}

	sessionToken, err := jwt.GenerateToken(user.ID, s.cfg.JWT.Secret, s.cfg.JWT.ExpireHours)
	if err != nil {
		return nil, err
	}
	return s.buildUserResponse(user, sessionToken), nil
}

// GetGithubAuthURL 获取 GitHub 授权 URL
func (s *AuthService) GetGithubAuthURL(state string) string {
	return s.githubOAuth.GetAuthURL(state)
}

// GithubCallback 处理 GitHub OAuth 回调，按 github id 建立或复用账号
func (s *AuthService) GithubCallback(ctx context.Context, code string) (*dto.UserResponse, error) {
	token, err := s.githubOAuth.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange code: %w", err)
	}

	githubUser, err := s.githubOAuth.GetUser(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("failed to get github user: %w", err)
	}

	githubIDStr := fmt.Sprintf("%d", githubUser.ID)

	user, err := s.userRepo.GetByGithubID(githubIDStr)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if user == nil {
		user = &model.User{
			Username:  githubUser.Login,
			GithubID:  &githubIDStr,
			Image:     githubUser.AvatarURL,
			Bio:       githubUser.Bio,
			Activated: true, // OAuth 用户视为已激活
		}

		if githubUser.Email != "" {
			user.Email = &githubUser.Email
		}

		// 确保用户名唯一
		exists, _ := s.userRepo.ExistsByUsername(user.Username)
		if exists {
			user.Username = fmt.Sprintf("%s_%d", githubUser.Login, githubUser.ID)
		}

		if err := s.userRepo.Create(user); err != nil {
			return nil, fmt.Errorf("failed to create user: %w", err)
		}
	}

	jwtToken, err := jwt.GenerateToken(user.ID, s.cfg.JWT.Secret, s.cfg.JWT.ExpireHours)
	if err != nil {
		return nil, err
	}
	return s.buildUserResponse(user, jwtToken), nil
}

// GetUserByID 根据 ID 获取用户
func (s *AuthService) GetUserByID(id int64) (*model.User, error) {
	return s.userRepo.GetByID(id)
}

func (s *AuthService) enqueueActivationMail(user *model.User) {
	if user.Email == nil {
		return
	}

	// 激活令牌复用 JWT，链接由前端回传到 emailActivate
	activateToken, err := jwt.GenerateToken(user.ID, s.cfg.JWT.Secret, s.cfg.JWT.ExpireHours)
	if err != nil {
		log.Printf("Failed to sign activation token for user %d: %v", user.ID, err)
		return
	}

	s.enqueueMail(&queue.MailMessage{
		Type:     queue.MailActivation,
		To:       *user.Email,
		Username: user.Username,
		Link:     fmt.Sprintf("%s/emailActivate?token=%s", s.cfg.Client.BaseURL, activateToken),
	})
}

func (s *AuthService) enqueueWelcomeMail(user *model.User) {
	if user.Email == nil {
		return
	}
	s.enqueueMail(&queue.MailMessage{
		Type:     queue.MailWelcome,
		To:       *user.Email,
		Username: user.Username,
		Link:     s.cfg.Client.BaseURL,
	})
}

func (s *AuthService) enqueueMail(msg *queue.MailMessage) {
	if s.mailQueue == nil {
		return
	}
	if err := s.mailQueue.Push(context.Background(), msg); err != nil {
		log.Printf("Failed to enqueue %s mail for %s: %v", msg.Type, msg.To, err)
	}
}

func (s *AuthService) buildUserResponse(user *model.User, token string) *dto.UserResponse {
	resp := &dto.UserResponse{
		ID:       user.ID,
		Username: user.Username,
		Bio:      user.Bio,
		Image:    user.Image,
		Token:    token,
	}
	if user.Email != nil {
		resp.Email = *user.Email
	}
	return resp
}

func generateRandomToken(length int) (string, error) {
	bytes := make([]byte, length/2)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}
