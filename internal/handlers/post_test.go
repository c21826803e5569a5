package handlers

import (
	"fmt"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestCloneRenderDataKeepsSharedUntouched(t *testing.T) {
	shared := gin.H{
		"Post":     "title",
		"Comments": []int{1, 2, 3},
	}

	data := cloneRenderData(shared)
	data["PendingComments"] = []string{"待审"}

	if _, ok := shared["PendingComments"]; ok {
		t.Error("私有字段写进了共享渲染数据")
	}
	if data["Post"] != "title" {
		t.Errorf("副本丢失了共享字段: %v", data["Post"])
	}
	if len(shared) != 2 {
		t.Errorf("共享数据被改动，字段数 %d", len(shared))
	}
}

// 模拟多个缓存命中的请求同时注入各自的待审评论，共享 map 不能被写
func TestCloneRenderDataConcurrentInjection(t *testing.T) {
	shared := gin.H{"Post": "title"}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			data := cloneRenderData(shared)
			data["PendingComments"] = fmt.Sprintf("user-%d", i)
		}(i)
	}
	wg.Wait()

	if len(shared) != 1 {
		t.Errorf("共享数据被并发写入，字段数 %d", len(shared))
	}
}
