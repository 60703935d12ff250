package handler

import (
	"io"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/qs3c/blog_go_server/config"
	"github.com/qs3c/blog_go_server/internal/api/middleware"
	"github.com/qs3c/blog_go_server/internal/pkg/oss"
	"github.com/qs3c/blog_go_server/internal/pkg/response"
)

type UploadHandler struct {
	ossClient *oss.Client
	cfg       *config.Config
}

func NewUploadHandler(ossClient *oss.Client, cfg *config.Config) *UploadHandler {
	return &UploadHandler{
		ossClient: ossClient,
		cfg:       cfg,
	}
}

// Image 上传图片到 OSS，kind=avatar 存为头像，其余作为文章题图
// POST /api/upload/image
func (h *UploadHandler) Image(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "")
		return
	}

	file, header, err := c.Request.FormFile("image")
	if err != nil {
		response.ParamError(c, "请上传图片")
		return
	}
	defer file.Close()

	if header.Size > h.cfg.Upload.MaxSize {
		response.ParamError(c, "图片过大")
		return
	}

	ext := strings.ToLower(filepath.Ext(header.Filename))
	allowed := false
	for _, allowedExt := range h.cfg.Upload.AllowedExtensions {
		if ext == allowedExt {
			allowed = true
			break
		}
	}
	if !allowed {
		response.ParamError(c, "不支持的图片格式")
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		response.ServerError(c, "图片读取失败")
		return
	}

	var url string
	if c.PostForm("kind") == "avatar" {
		url, err = h.ossClient.UploadAvatar(userID, data, ext)
	} else {
		url, err = h.ossClient.UploadThumbnail(userID, data, ext)
	}
	if err != nil {
		response.ServerError(c, "图片上传失败")
		return
	}

	response.Success(c, gin.H{"url": url})
}
