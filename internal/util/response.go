package util

import (
	"github.com/gin-gonic/gin"
)

// Business error codes carried next to the HTTP status.
const (
	CodeOK           = 0
	CodeInvalidParam = 40001
	CodeInvalidRef   = 40002
	CodeDuplicate    = 40003
	CodeInactive     = 40004
	CodeAuth         = 40101
	CodeNotFound     = 40401
	CodeConflict     = 40901
	CodeServerErr    = 50001
	CodeUnavailable  = 50301
)

// Success writes the uniform success envelope.
func Success(c *gin.Context, httpStatus int, data any) {
	c.JSON(httpStatus, gin.H{
		"code": CodeOK,
		"data": data,
	})
}

// Error writes the uniform error envelope.
func Error(c *gin.Context, httpStatus int, code int, msg string) {
	c.JSON(httpStatus, gin.H{
		"code":    code,
		"message": msg,
	})
}
