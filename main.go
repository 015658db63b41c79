package main

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// 1. 定义与数据库表对应的结构体
type Option struct {
	ID    int64
	Key   string
	Value string
}

func main() {
	fmt.Println(">>> 开始执行全链路测试...")

	// ------------------------------------------------
	// 2. 连接数据库
	// ------------------------------------------------
	dsn := "host=localhost user=postgres password=postgres dbname=mailchimp_wc port=5432 sslmode=disable"
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("❌ 数据库连接失败: %v", err)
	}
	fmt.Println("✅ 数据库连接成功！")

	// ------------------------------------------------
	// 3. 从数据库读取已保存的 API Key
	// ------------------------------------------------
	var opt Option
	result := db.Where("key = ?", "mailchimp_api_key").First(&opt)
	if result.Error != nil {
		log.Fatalf("❌ 未找到已保存的 API Key，请先在设置界面提交 api_key Tab: %v", result.Error)
	}
	fmt.Printf("✅ 读取配置成功: [Key长度: %d]\n", len(opt.Value))

	// Key 后缀就是数据中心，拼出 base URL
	idx := strings.LastIndex(opt.Value, "-")
	if idx < 0 || idx == len(opt.Value)-1 {
		log.Fatalf("❌ API Key 格式错误，缺少数据中心后缀 (形如 xxxx-us6)")
	}
	dc := opt.Value[idx+1:]

	// ------------------------------------------------
	// 4. 发起 MailChimp API 请求 (Ping)
	// ------------------------------------------------
	client := resty.New()

	// 设置超时和重试，防止网络波动
	client.SetTimeout(10 * time.Second)
	client.SetRetryCount(3)

	// 关键：MailChimp 用 Basic Auth，用户名随意，密码是 API Key
	client.SetBasicAuth("mailchimp", opt.Value)

	fmt.Println(">>> 正在向 MailChimp 发起 Ping 请求...")

	resp, err := client.R().Get(fmt.Sprintf("https://%s.api.mailchimp.com/3.0/ping", dc))

	// ------------------------------------------------
	// 5. 结果验证
	// ------------------------------------------------
	if err != nil {
		log.Fatalf("❌ 请求失败 (网络不通): %v", err)
	}

	if resp.StatusCode() == 200 {
		fmt.Println("🎉🎉🎉 测试成功！全链路已打通！")
		fmt.Printf("MailChimp 响应: %s\n", resp.String())
	} else {
		fmt.Printf("⚠️ 连接通了，但 MailChimp 拒绝了请求 (状态码 %d)\n", resp.StatusCode())
		fmt.Printf("错误信息: %s\n", resp.String())
		fmt.Println("提示: 如果是 401，通常是 API Key 填错了；如果是 429，是请求太快了。")
	}
}
