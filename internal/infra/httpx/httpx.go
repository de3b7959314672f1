package httpx

import (
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	defaultTimeout  = 20 * time.Second
	defaultRetryMax = 2

	// UserAgent 标识本工具；题目站点要求自动化请求带可联系的 UA。
	UserAgent = "segdecode (+https://github.com/John-Robertt/segdecode)"
)

// Transport 把“固定 UA + session cookie + 代理 + 有界重试”固化为统一策略。
//
// provider 只负责“定位页面 + 解析内容”，不关心网络策略细节。
type Transport struct {
	Base *http.Transport

	// Session 非空时以 cookie "session" 附加到每个请求。
	Session string

	// RetryMax 表示最大重试次数（不含首次尝试）。例如 2 表示最多 3 次尝试。
	RetryMax int
}

func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req == nil {
		return nil, errors.New("nil request")
	}
	if t.Base == nil {
		return nil, errors.New("nil base transport")
	}

	// 只对“可重放”的请求做重试：GET/HEAD 且无 body。
	canRetry := (req.Method == http.MethodGet || req.Method == http.MethodHead) && req.Body == nil
	max := t.RetryMax
	if max < 0 || !canRetry {
		max = 0
	}

	var lastErr error
	for attempt := 0; attempt <= max; attempt++ {
		r := req.Clone(req.Context())
		if r.Header.Get("User-Agent") == "" {
			r.Header.Set("User-Agent", UserAgent)
		}
		if t.Session != "" {
			r.AddCookie(&http.Cookie{Name: "session", Value: t.Session})
		}

		resp, err := t.Base.RoundTrip(r)
		if err == nil {
			return resp, nil
		}
		lastErr = err
		if req.Context().Err() != nil {
			// ctx 已取消：不再重试。
			return nil, lastErr
		}
	}
	return nil, lastErr
}

// NewClient 构造用于抓取题目输入/页面的 HTTP client。
//
// 规则：
// - proxyURL 非空：走代理，且禁用 keep-alive（每请求新连接）
// - session 非空：每个请求附带 session cookie
// - 有界重试 + 总超时
func NewClient(proxyURL, session string) (*http.Client, error) {
	base := &http.Transport{
		Proxy:                 nil,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 15 * time.Second,
	}

	proxyURL = strings.TrimSpace(proxyURL)
	if proxyURL != "" {
		u, err := url.Parse(proxyURL)
		if err != nil {
			return nil, err
		}
		base.Proxy = http.ProxyURL(u)
		base.DisableKeepAlives = true
	}

	return &http.Client{
		Transport: &Transport{
			Base:     base,
			Session:  strings.TrimSpace(session),
			RetryMax: defaultRetryMax,
		},
		Timeout: defaultTimeout,
	}, nil
}
