package utils

import (
	"testing"
	"time"
)

func TestCache_SetAndGet(t *testing.T) {
	SetCache("k1", true, time.Minute)
	defer DeleteCache("k1")

	val, ok := GetCache("k1")
	if !ok {
		t.Fatalf("刚写入的缓存应能读到")
	}
	if val.(bool) != true {
		t.Errorf("缓存值不对: %v", val)
	}
}

func TestCache_Expires(t *testing.T) {
	SetCache("k2", "v", 20*time.Millisecond)
	defer DeleteCache("k2")

	if _, ok := GetCache("k2"); !ok {
		t.Fatalf("未过期时应能读到")
	}

	time.Sleep(40 * time.Millisecond)
	if _, ok := GetCache("k2"); ok {
		t.Errorf("过期后不应再能读到")
	}
}

func TestCache_Delete(t *testing.T) {
	SetCache("k3", 42, time.Minute)
	DeleteCache("k3")

	if _, ok := GetCache("k3"); ok {
		t.Errorf("删除后不应再能读到")
	}
}

func TestCache_MissingKey(t *testing.T) {
	if _, ok := GetCache("never-set"); ok {
		t.Errorf("不存在的 key 不应命中")
	}
}
