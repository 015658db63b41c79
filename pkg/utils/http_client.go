package utils

import (
	"time"

	"github.com/go-resty/resty/v2"
)

// NewRestyClient 创建统一配置的 Resty 客户端
// 它是全系统对外请求的统一入口
func NewRestyClient() *resty.Client {
	return resty.New().
		SetTimeout(20 * time.Second).                      // 全局默认超时 (批量拉取可能比较慢，给 20s)
		SetRetryCount(2).                                  // 瞬时网络错误重试
		SetRetryWaitTime(500 * time.Millisecond).          //
		SetHeader("User-Agent", "MailChimp-WC-Go-App/1.0") // 标准 UA
}
