package mailchimp

import "fmt"

// APIError MailChimp 返回的 problem+json 错误体
// https://mailchimp.com/developer/marketing/docs/errors/
type APIError struct {
	Type       string `json:"type"`
	Title      string `json:"title"`
	StatusCode int    `json:"status"`
	Detail     string `json:"detail"`
	Instance   string `json:"instance"`
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("mailchimp: %s (%d): %s", e.Title, e.StatusCode, e.Detail)
	}
	return fmt.Sprintf("mailchimp: %s (%d)", e.Title, e.StatusCode)
}
