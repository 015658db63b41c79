package mailchimp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==================== 测试辅助 ====================

func newTestServer(t *testing.T, handler http.HandlerFunc) (Client, *httptest.Server) {
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewWithBaseURL("test-key-us6", srv.URL), srv
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

// ==================== 单元测试 ====================

func TestDatacenter(t *testing.T) {
	assert.Equal(t, "us6", datacenter("abc123-us6"))
	assert.Equal(t, "us21", datacenter("a-b-us21"))
	// 无后缀时退回 us1
	assert.Equal(t, "us1", datacenter("nodash"))
	assert.Equal(t, "us1", datacenter("trailing-"))
}

func TestPing_Success(t *testing.T) {
	client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/ping", r.URL.Path)
		user, pass, ok := r.BasicAuth()
		require.True(t, ok)
		assert.Equal(t, "mailchimp", user)
		assert.Equal(t, "test-key-us6", pass)
		writeJSON(w, 200, PingResp{HealthStatus: "Everything's Chimpy!"})
	})

	assert.NoError(t, client.Ping(context.Background()))
}

func TestPing_Unauthorized(t *testing.T) {
	client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, 401, APIError{Type: "about:blank", Title: "API Key Invalid", StatusCode: 401, Detail: "Your API key may be invalid."})
	})

	err := client.Ping(context.Background())
	require.Error(t, err)

	apiErr, ok := err.(*APIError)
	require.True(t, ok)
	assert.Equal(t, 401, apiErr.StatusCode)
	assert.Contains(t, apiErr.Error(), "API Key Invalid")
}

func TestHasList(t *testing.T) {
	client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/lists/exists1":
			writeJSON(w, 200, List{ID: "exists1", Name: "Main"})
		default:
			writeJSON(w, 404, APIError{Title: "Resource Not Found", StatusCode: 404})
		}
	})

	ok, err := client.HasList(context.Background(), "exists1")
	require.NoError(t, err)
	assert.True(t, ok)

	// 404 不是错误，就是不存在
	ok, err = client.HasList(context.Background(), "ghost")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCreateList(t *testing.T) {
	client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/lists", r.URL.Path)

		var sub CreateListSubmission
		require.NoError(t, json.NewDecoder(r.Body).Decode(&sub))
		assert.Equal(t, "Demo Shop", sub.Name)
		assert.True(t, sub.EmailTypeOption)

		writeJSON(w, 200, List{ID: "new42", Name: sub.Name})
	})

	list, err := client.CreateList(context.Background(), &CreateListSubmission{
		Name:            "Demo Shop",
		EmailTypeOption: true,
	})
	require.NoError(t, err)
	assert.Equal(t, "new42", list.ID)
}

func TestCreateList_ErrorDetail(t *testing.T) {
	client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, 400, APIError{Title: "Invalid Resource", StatusCode: 400, Detail: "contact.country is required"})
	})

	_, err := client.CreateList(context.Background(), &CreateListSubmission{Name: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "contact.country is required")
}

func TestGetStore_NotFound(t *testing.T) {
	client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, 404, APIError{Title: "Resource Not Found", StatusCode: 404})
	})

	store, err := client.GetStore(context.Background(), "https://shop.example.com")
	require.NoError(t, err)
	assert.Nil(t, store)
}

func TestAddAndUpdateStore(t *testing.T) {
	var gotMethod, gotPath string
	client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		// EscapedPath 保留 %2F，能看出 Store id 是否按整段转义
		gotMethod, gotPath = r.Method, r.URL.EscapedPath()
		writeJSON(w, 200, Store{ID: "https://shop.example.com"})
	})

	store := &Store{ID: "https://shop.example.com", Name: "Demo"}

	_, err := client.AddStore(context.Background(), store)
	require.NoError(t, err)
	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, "/ecommerce/stores", gotPath)

	_, err = client.UpdateStore(context.Background(), store)
	require.NoError(t, err)
	assert.Equal(t, http.MethodPatch, gotMethod)
	// Store id 里的斜杠要转义进路径
	assert.Equal(t, "/ecommerce/stores/https:%2F%2Fshop.example.com", gotPath)
}

func TestProducts_Pagination(t *testing.T) {
	client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "20", r.URL.Query().Get("offset"))
		assert.Equal(t, "10", r.URL.Query().Get("count"))
		writeJSON(w, 200, ProductsResp{Products: []Product{{ID: "p1"}}, TotalItems: 21})
	})

	resp, err := client.Products(context.Background(), "store1", 3, 10)
	require.NoError(t, err)
	assert.Equal(t, 21, resp.TotalItems)
	assert.Len(t, resp.Products, 1)
}

func TestDeleteStoreOrder(t *testing.T) {
	var gotPath string
	client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		assert.Equal(t, http.MethodDelete, r.Method)
		w.WriteHeader(204)
	})

	err := client.DeleteStoreOrder(context.Background(), "store1", "order9")
	require.NoError(t, err)
	assert.Equal(t, "/ecommerce/stores/store1/orders/order9", gotPath)
}
