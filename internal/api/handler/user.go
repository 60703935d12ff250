package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/qs3c/blog_go_server/internal/api/middleware"
	"github.com/qs3c/blog_go_server/internal/model/dto"
	"github.com/qs3c/blog_go_server/internal/pkg/response"
	"github.com/qs3c/blog_go_server/internal/service"
)

type UserHandler struct {
	userService *service.UserService
}

func NewUserHandler(userService *service.UserService) *UserHandler {
	return &UserHandler{
		userService: userService,
	}
}

// Current 获取当前登录用户
// GET /api/user
func (h *UserHandler) Current(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "")
		return
	}

	user, err := h.userService.Get(userID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			response.NotFound(c, err.Error())
			return
		}
		response.ServerError(c, "")
		return
	}

	response.Success(c, gin.H{"user": user})
}

// Update 更新当前用户资料
// PUT /api/user
func (h *UserHandler) Update(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "")
		return
	}

	var req dto.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	user, err := h.userService.Update(userID, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUsernameExists):
			response.FieldError(c, "username", "has already been taken")
		case errors.Is(err, service.ErrEmailExists):
			response.FieldError(c, "email", "has already been taken")
		case errors.Is(err, service.ErrUserNotFound):
			response.NotFound(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}

	response.Success(c, gin.H{"user": user})
}

// Profile 获取用户主页
// GET /api/profiles/:username
func (h *UserHandler) Profile(c *gin.Context) {
	profile, err := h.userService.GetProfile(c.Param("username"), middleware.GetUserIDPtr(c))
	if err != nil {
		if errors.Is(err, service.ErrProfileNotFound) {
			response.NotFound(c, err.Error())
			return
		}
		response.ServerError(c, "")
		return
	}

	response.Success(c, gin.H{"profile": profile})
}

// Follow 关注用户
// POST /api/profiles/:username/follow
func (h *UserHandler) Follow(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "")
		return
	}

	profile, err := h.userService.Follow(userID, c.Param("username"))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrProfileNotFound):
			response.NotFound(c, err.Error())
		case errors.Is(err, service.ErrSelfFollow):
			response.ParamError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}

	response.Success(c, gin.H{"profile": profile})
}

// Unfollow 取消关注
// DELETE /api/profiles/:username/follow
func (h *UserHandler) Unfollow(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "")
		return
	}

	profile, err := h.userService.Unfollow(userID, c.Param("username"))
	if err != nil {
		if errors.Is(err, service.ErrProfileNotFound) {
			response.NotFound(c, err.Error())
			return
		}
		response.ServerError(c, "")
		return
	}

	response.Success(c, gin.H{"profile": profile})
}

// Search 按用户名搜索用户
// GET /api/users/search?q=
func (h *UserHandler) Search(c *gin.Context) {
	profiles, err := h.userService.Search(c.Query("q"))
	if err != nil {
		response.ServerError(c, "")
		return
	}

	response.Success(c, gin.H{"profiles": profiles})
}
