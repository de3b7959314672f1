package provider

import (
	"context"
	"net/http"

	"github.com/John-Robertt/segdecode/internal/domain"
)

// Provider 把“远程输入源的差异”限制在 provider 包内部；核心流程只拿到统一的记录文本。
//
// 约束：
// - Fetch 不做缓存、不做重试（由 cache/httpx 层统一实现）
// - Parse 必须是纯函数：相同输入 => 相同输出；返回 "10 个参考 | k 个输出" 的逐行文本
type Provider interface {
	Name() string
	Fetch(ctx context.Context, ref domain.PuzzleRef, c *http.Client) (body []byte, pageURL string, err error)
	Parse(ref domain.PuzzleRef, body []byte, pageURL string) ([]byte, error)
}
