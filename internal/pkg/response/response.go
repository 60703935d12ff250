package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// 各状态码的默认消息
var defaultMessages = map[int]string{
	http.StatusBadRequest:          "bad request",
	http.StatusUnauthorized:        "authentication required",
	http.StatusForbidden:           "permission denied",
	http.StatusNotFound:            "resource not found",
	http.StatusInternalServerError: "internal server error",
}

// ErrorBody 非校验类错误的统一结构
type ErrorBody struct {
	Message string `json:"message"`
}

// ValidationBody 422 校验错误结构：字段 -> 原因列表
type ValidationBody struct {
	Errors map[string][]string `json:"errors"`
}

// Success 成功响应，payload 原样输出
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, data)
}

// ValidationError 422 字段校验错误
func ValidationError(c *gin.Context, errs map[string][]string) {
	c.JSON(http.StatusUnprocessableEntity, ValidationBody{Errors: errs})
}

// FieldError 单字段校验错误的简写
func FieldError(c *gin.Context, field, reason string) {
	ValidationError(c, map[string][]string{field: {reason}})
}

// Error 按状态码输出错误
func Error(c *gin.Context, status int, message string) {
	if message == "" {
		message = defaultMessages[status]
	}
	c.JSON(status, ErrorBody{Message: message})
}

// ParamError 请求参数错误
func ParamError(c *gin.Context, message string) {
	Error(c, http.StatusBadRequest, message)
}

// Unauthorized 认证失败
func Unauthorized(c *gin.Context, message string) {
	Error(c, http.StatusUnauthorized, message)
}

// Forbidden 权限不足
func Forbidden(c *gin.Context, message string) {
	Error(c, http.StatusForbidden, message)
}

// NotFound 资源不存在
func NotFound(c *gin.Context, message string) {
	Error(c, http.StatusNotFound, message)
}

// ServerError 服务器错误
func ServerError(c *gin.Context, message string) {
	Error(c, http.StatusInternalServerError, message)
}
