package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/qs3c/blog_go_server/internal/api/middleware"
	"github.com/qs3c/blog_go_server/internal/model/dto"
	"github.com/qs3c/blog_go_server/internal/pkg/oauth"
	"github.com/qs3c/blog_go_server/internal/pkg/response"
	"github.com/qs3c/blog_go_server/internal/service"
)

type AuthHandler struct {
	authService *service.AuthService
	stateStore  *oauth.StateStore
}

func NewAuthHandler(authService *service.AuthService, stateStore *oauth.StateStore) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		stateStore:  stateStore,
	}
}

// Register 注册新用户，发送激活邮件
// POST /api/users
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	user, err := h.authService.Register(&req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmailExists):
			response.FieldError(c, "email", "has already been taken")
		case errors.Is(err, service.ErrUsernameExists):
			response.FieldError(c, "username", "has already been taken")
		default:
			response.ServerError(c, "")
		}
		return
	}

	response.Success(c, gin.H{"user": user})
}

// Login 邮箱密码登录
// POST /api/users/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	user, err := h.authService.Login(&req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			response.FieldError(c, "email or password", "is invalid")
			return
		}
		response.ServerError(c, "")
		return
	}

	response.Success(c, gin.H{"user": user})
}

// Activate 邮箱激活
// POST /api/user/emailActivate
func (h *AuthHandler) Activate(c *gin.Context) {
	var req dto.ActivateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	user, err := h.authService.Activate(req.Token)
	if err != nil {
		if errors.Is(err, service.ErrInvalidActivation) {
			response.ParamError(c, err.Error())
			return
		}
		response.ServerError(c, "")
		return
	}

	response.Success(c, gin.H{"user": user})
}

// ResendActivation 重发激活邮件
// POST /api/mailer/signUp
func (h *AuthHandler) ResendActivation(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "")
		return
	}

	if err := h.authService.ResendActivation(userID); err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			response.NotFound(c, err.Error())
			return
		}
		response.ServerError(c, "")
		return
	}

	response.Success(c, gin.H{"message": "激活邮件已发送"})
}

// ForgotPassword 发送密码重置邮件。
// 无论邮箱是否存在都返回成功，避免探测注册邮箱。
// POST /api/user/forgotPassword
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req dto.ForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	if err := h.authService.ForgotPassword(req.Email); err != nil {
		response.ServerError(c, "")
		return
	}

	response.Success(c, gin.H{"message": "重置邮件已发送"})
}

// ResetPassword 使用重置令牌设置新密码
// POST /api/user/resetPassword/:resetToken
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req dto.ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	user, err := h.authService.ResetPassword(c.Param("resetToken"), req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidResetToken) {
			response.ParamError(c, err.Error())
			return
		}
		response.ServerError(c, "")
		return
	}

	response.Success(c, gin.H{"user": user})
}

// GithubAuth 跳转到 GitHub 授权页
// GET /api/auth/github
func (h *AuthHandler) GithubAuth(c *gin.Context) {
	state, err := h.stateStore.GenerateState(c.Request.Context(), c.Query("redirect_uri"))
	if err != nil {
		response.ServerError(c, "")
		return
	}

	c.Redirect(http.StatusFound, h.authService.GetGithubAuthURL(state))
}

// GithubCallback GitHub 授权回调，换取令牌并返回登录态
// GET /api/auth/github/callback
func (h *AuthHandler) GithubCallback(c *gin.Context) {
	if _, err := h.stateStore.ValidateState(c.Request.Context(), c.Query("state")); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	user, err := h.authService.GithubCallback(c.Request.Context(), c.Query("code"))
	if err != nil {
		response.ServerError(c, "")
		return
	}

	response.Success(c, gin.H{"user": user})
}
