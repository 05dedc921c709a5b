package response

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// MessageBody 仅含提示消息的响应体
type MessageBody struct {
	Message string `json:"message"`
}

// VerifyBody 校验结果响应体
type VerifyBody struct {
	Verified bool   `json:"verified"`
	Message  string `json:"message,omitempty"`
}

// Pagination 分页信息，通过响应头下发，保持响应体为纯数组
type Pagination struct {
	Page     int
	PageSize int
	Total    int64
}

// Header 分页相关响应头
const (
	HeaderTotalCount = "X-Total-Count"
	HeaderPage       = "X-Page"
	HeaderPageSize   = "X-Page-Size"
)

// JSON 直接输出数据
func JSON(c *gin.Context, status int, data interface{}) {
	c.JSON(status, data)
}

// Message 输出 {"message": msg}
func Message(c *gin.Context, status int, msg string) {
	c.JSON(status, MessageBody{Message: msg})
}

// Verified 校验成功
func Verified(c *gin.Context) {
	c.JSON(http.StatusOK, VerifyBody{Verified: true})
}

// NotVerified 校验失败
func NotVerified(c *gin.Context, status int, msg string) {
	c.JSON(status, VerifyBody{Verified: false, Message: msg})
}

// SuccessWithPage 输出列表并写入分页响应头
func SuccessWithPage(c *gin.Context, data interface{}, pagination Pagination) {
	c.Header(HeaderTotalCount, strconv.FormatInt(pagination.Total, 10))
	if pagination.PageSize > 0 {
		c.Header(HeaderPage, strconv.Itoa(pagination.Page))
		c.Header(HeaderPageSize, strconv.Itoa(pagination.PageSize))
	}
	c.JSON(http.StatusOK, data)
}

// Error 按 AppError 输出错误
func Error(c *gin.Context, appErr *AppError) {
	if appErr == nil {
		Message(c, CodeInternal, "Internal server error")
		return
	}
	Message(c, appErr.Status(), appErr.Message)
}
