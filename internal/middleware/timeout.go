package middleware

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
)

// Timeout 限制每個請求的 context 期限；逾時由下游轉成可重試錯誤
func Timeout(d time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if d <= 0 {
			c.Next()
			return
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), d)
		defer cancel()

		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
