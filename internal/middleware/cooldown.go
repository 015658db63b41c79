package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// ==================== 冷却限流中间件 ====================

// Cooldown 冷却限流中间件
// 单站点部署，按接口维度全局限流即可
//
// 使用示例:
//
//	router.POST("/api/sync",
//	    middleware.Cooldown(middleware.KeyProductSync, 0),
//	    controller.TriggerSync,
//	)
//
// 参数:
//   - key: 限流键
//   - interval: 冷却间隔，0 表示使用默认值
func Cooldown(key string, interval time.Duration) gin.HandlerFunc {
	if interval == 0 {
		interval = GetInterval(key)
	}

	return func(c *gin.Context) {
		result := GetLimiter().Check(key, interval)
		if !result.Allowed {
			c.Header("Retry-After", fmt.Sprintf("%d", int(result.RetryAfter.Seconds())))
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":       formatRetryMessage(result.RetryAfter),
				"retry_after": int(result.RetryAfter.Seconds()),
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

// formatRetryMessage 格式化重试提示信息
func formatRetryMessage(d time.Duration) string {
	seconds := int(d.Seconds())
	if seconds < 60 {
		return fmt.Sprintf("操作冷却中，请 %d 秒后重试", seconds)
	}

	minutes := seconds / 60
	remainingSeconds := seconds % 60
	if remainingSeconds == 0 {
		return fmt.Sprintf("操作冷却中，请 %d 分钟后重试", minutes)
	}
	return fmt.Sprintf("操作冷却中，请 %d 分 %d 秒后重试", minutes, remainingSeconds)
}
