package mailchimp

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-resty/resty/v2"

	"mailchimp_wc_v1_202608/pkg/utils"
)

// ==================== Client 接口 ====================

// Client MailChimp Marketing API v3 客户端
// 业务层只依赖这个接口，测试里用假实现替换
type Client interface {
	// Ping 连通性+密钥校验，nil 表示密钥可用
	Ping(ctx context.Context) error

	// 列表 (Audience)
	GetLists(ctx context.Context) ([]List, error)
	HasList(ctx context.Context, listID string) (bool, error)
	CreateList(ctx context.Context, sub *CreateListSubmission) (*List, error)
	DeleteList(ctx context.Context, listID string) error

	// 电商 Store
	GetStore(ctx context.Context, storeID string) (*Store, error) // 不存在返回 (nil, nil)
	AddStore(ctx context.Context, store *Store) (*Store, error)
	UpdateStore(ctx context.Context, store *Store) (*Store, error)
	DeleteStore(ctx context.Context, storeID string) error
	Stores(ctx context.Context) ([]Store, error)

	// Store 下属资源 (调试界面用)
	Orders(ctx context.Context, storeID string, page, limit int) (*OrdersResp, error)
	Products(ctx context.Context, storeID string, page, limit int) (*ProductsResp, error)
	Carts(ctx context.Context, storeID string, page, limit int) (*CartsResp, error)
	DeleteStoreOrder(ctx context.Context, storeID, orderID string) error
	DeleteCartByID(ctx context.Context, storeID, cartID string) error
}

// ==================== 实现 ====================

type apiClient struct {
	http *resty.Client
}

// New 根据 API Key 创建客户端
// Key 格式 "xxxx-us6"，短横线后缀就是数据中心
func New(apiKey string) Client {
	dc := datacenter(apiKey)
	baseURL := fmt.Sprintf("https://%s.api.mailchimp.com/3.0", dc)
	return NewWithBaseURL(apiKey, baseURL)
}

// NewWithBaseURL 指定 base URL 创建客户端 (测试指向 httptest 用)
func NewWithBaseURL(apiKey, baseURL string) Client {
	client := utils.NewRestyClient().
		SetBaseURL(baseURL).
		SetBasicAuth("mailchimp", apiKey)
	return &apiClient{http: client}
}

// datacenter 从 Key 后缀提取数据中心，无后缀时退回 us1 (请求会以 401 失败)
func datacenter(apiKey string) string {
	idx := strings.LastIndex(apiKey, "-")
	if idx < 0 || idx == len(apiKey)-1 {
		return "us1"
	}
	return apiKey[idx+1:]
}

// respErr 把非 2xx 响应转成 *APIError
func respErr(resp *resty.Response) error {
	if apiErr, ok := resp.Error().(*APIError); ok && apiErr.Title != "" {
		if apiErr.StatusCode == 0 {
			apiErr.StatusCode = resp.StatusCode()
		}
		return apiErr
	}
	return &APIError{
		Title:      http.StatusText(resp.StatusCode()),
		StatusCode: resp.StatusCode(),
	}
}

// ==================== 连通性 ====================

// Ping GET /ping
func (c *apiClient) Ping(ctx context.Context) error {
	var result PingResp
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&result).
		SetError(&APIError{}).
		Get("/ping")
	if err != nil {
		return err
	}
	if resp.IsError() {
		return respErr(resp)
	}
	return nil
}

// ==================== 列表 ====================

// GetLists GET /lists
func (c *apiClient) GetLists(ctx context.Context) ([]List, error) {
	var result ListsResp
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("count", "100").
		SetResult(&result).
		SetError(&APIError{}).
		Get("/lists")
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, respErr(resp)
	}
	return result.Lists, nil
}

// HasList GET /lists/{id}，404 视为不存在而不是错误
func (c *apiClient) HasList(ctx context.Context, listID string) (bool, error) {
	var result List
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&result).
		SetError(&APIError{}).
		Get("/lists/" + url.PathEscape(listID))
	if err != nil {
		return false, err
	}
	if resp.StatusCode() == http.StatusNotFound {
		return false, nil
	}
	if resp.IsError() {
		return false, respErr(resp)
	}
	return result.ID != "", nil
}

// CreateList POST /lists
func (c *apiClient) CreateList(ctx context.Context, sub *CreateListSubmission) (*List, error) {
	var result List
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(sub).
		SetResult(&result).
		SetError(&APIError{}).
		Post("/lists")
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, respErr(resp)
	}
	return &result, nil
}

// DeleteList DELETE /lists/{id}
func (c *apiClient) DeleteList(ctx context.Context, listID string) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetError(&APIError{}).
		Delete("/lists/" + url.PathEscape(listID))
	if err != nil {
		return err
	}
	if resp.IsError() {
		return respErr(resp)
	}
	return nil
}

// ==================== 电商 Store ====================

// GetStore GET /ecommerce/stores/{id}，404 返回 (nil, nil)
func (c *apiClient) GetStore(ctx context.Context, storeID string) (*Store, error) {
	var result Store
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&result).
		SetError(&APIError{}).
		Get("/ecommerce/stores/" + url.PathEscape(storeID))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode() == http.StatusNotFound {
		return nil, nil
	}
	if resp.IsError() {
		return nil, respErr(resp)
	}
	return &result, nil
}

// AddStore POST /ecommerce/stores
func (c *apiClient) AddStore(ctx context.Context, store *Store) (*Store, error) {
	var result Store
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(store).
		SetResult(&result).
		SetError(&APIError{}).
		Post("/ecommerce/stores")
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, respErr(resp)
	}
	return &result, nil
}

// UpdateStore PATCH /ecommerce/stores/{id}
func (c *apiClient) UpdateStore(ctx context.Context, store *Store) (*Store, error) {
	var result Store
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(store).
		SetResult(&result).
		SetError(&APIError{}).
		Patch("/ecommerce/stores/" + url.PathEscape(store.ID))
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, respErr(resp)
	}
	return &result, nil
}

// DeleteStore DELETE /ecommerce/stores/{id}
func (c *apiClient) DeleteStore(ctx context.Context, storeID string) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetError(&APIError{}).
		Delete("/ecommerce/stores/" + url.PathEscape(storeID))
	if err != nil {
		return err
	}
	if resp.IsError() {
		return respErr(resp)
	}
	return nil
}

// Stores GET /ecommerce/stores
func (c *apiClient) Stores(ctx context.Context) ([]Store, error) {
	var result StoresResp
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("count", "100").
		SetResult(&result).
		SetError(&APIError{}).
		Get("/ecommerce/stores")
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, respErr(resp)
	}
	return result.Stores, nil
}

// ==================== Store 下属资源 ====================

// pageParams 把 page/limit 翻译成 MailChimp 的 offset/count
func pageParams(page, limit int) map[string]string {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	return map[string]string{
		"offset": strconv.Itoa((page - 1) * limit),
		"count":  strconv.Itoa(limit),
	}
}

// Orders GET /ecommerce/stores/{id}/orders
func (c *apiClient) Orders(ctx context.Context, storeID string, page, limit int) (*OrdersResp, error) {
	var result OrdersResp
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(pageParams(page, limit)).
		SetResult(&result).
		SetError(&APIError{}).
		Get("/ecommerce/stores/" + url.PathEscape(storeID) + "/orders")
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, respErr(resp)
	}
	return &result, nil
}

// Products GET /ecommerce/stores/{id}/products
func (c *apiClient) Products(ctx context.Context, storeID string, page, limit int) (*ProductsResp, error) {
	var result ProductsResp
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(pageParams(page, limit)).
		SetResult(&result).
		SetError(&APIError{}).
		Get("/ecommerce/stores/" + url.PathEscape(storeID) + "/products")
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, respErr(resp)
	}
	return &result, nil
}

// Carts GET /ecommerce/stores/{id}/carts
func (c *apiClient) Carts(ctx context.Context, storeID string, page, limit int) (*CartsResp, error) {
	var result CartsResp
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(pageParams(page, limit)).
		SetResult(&result).
		SetError(&APIError{}).
		Get("/ecommerce/stores/" + url.PathEscape(storeID) + "/carts")
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, respErr(resp)
	}
	return &result, nil
}

// DeleteStoreOrder DELETE /ecommerce/stores/{id}/orders/{order_id}
func (c *apiClient) DeleteStoreOrder(ctx context.Context, storeID, orderID string) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetError(&APIError{}).
		Delete("/ecommerce/stores/" + url.PathEscape(storeID) + "/orders/" + url.PathEscape(orderID))
	if err != nil {
		return err
	}
	if resp.IsError() {
		return respErr(resp)
	}
	return nil
}

// DeleteCartByID DELETE /ecommerce/stores/{id}/carts/{cart_id}
func (c *apiClient) DeleteCartByID(ctx context.Context, storeID, cartID string) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetError(&APIError{}).
		Delete("/ecommerce/stores/" + url.PathEscape(storeID) + "/carts/" + url.PathEscape(cartID))
	if err != nil {
		return err
	}
	if resp.IsError() {
		return respErr(resp)
	}
	return nil
}
