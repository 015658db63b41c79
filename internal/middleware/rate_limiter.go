package middleware

import (
	"sync"
	"time"
)

// ==================== CooldownLimiter 冷却限流器 ====================

// CooldownLimiter 按 key 维度的冷却限流
// 防止频繁触发手动同步导致 MailChimp API 限流
type CooldownLimiter struct {
	locks sync.Map // key -> *lockEntry
}

type lockEntry struct {
	lastTime time.Time
	mu       sync.Mutex
}

// 全局限流器实例
var globalLimiter = &CooldownLimiter{}

// GetLimiter 获取全局限流器
func GetLimiter() *CooldownLimiter {
	return globalLimiter
}

// ==================== 限流检查 ====================

// CheckResult 检查结果
type CheckResult struct {
	Allowed    bool          // 是否允许
	RetryAfter time.Duration // 剩余冷却时间
}

// Check 检查是否允许执行，允许时顺带更新最后执行时间
func (r *CooldownLimiter) Check(key string, interval time.Duration) CheckResult {
	actual, _ := r.locks.LoadOrStore(key, &lockEntry{})
	entry := actual.(*lockEntry)

	entry.mu.Lock()
	defer entry.mu.Unlock()

	now := time.Now()
	elapsed := now.Sub(entry.lastTime)

	if elapsed < interval {
		return CheckResult{
			Allowed:    false,
			RetryAfter: interval - elapsed,
		}
	}

	entry.lastTime = now
	return CheckResult{Allowed: true}
}

// Reset 重置指定 key 的限流
func (r *CooldownLimiter) Reset(key string) {
	r.locks.Delete(key)
}

// ==================== 限流 Key ====================

const (
	// KeyProductSync 手动商品同步的全局冷却
	KeyProductSync = "sync:products"
	// KeyLogin 登录接口的全局冷却 (粗粒度防爆破)
	KeyLogin = "auth:login"
)

// DefaultIntervals 默认冷却间隔
var DefaultIntervals = map[string]time.Duration{
	KeyProductSync: time.Minute,
	KeyLogin:       time.Second,
}

// GetInterval 获取 key 的默认冷却间隔
func GetInterval(key string) time.Duration {
	if interval, ok := DefaultIntervals[key]; ok {
		return interval
	}
	return time.Minute
}
