package example

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/John-Robertt/segdecode/internal/domain"
	providerx "github.com/John-Robertt/segdecode/internal/provider"
)

// Provider 从题目描述页中提取示例记录。
//
// 题目页可能有多个 <pre><code> 块（单行演示 + 完整示例）；选含 "|" 行数最多的那个。
type Provider struct {
	BaseURL string
}

func (Provider) Name() string { return "example" }

func (p Provider) Fetch(ctx context.Context, ref domain.PuzzleRef, c *http.Client) ([]byte, string, error) {
	if !ref.Valid() {
		return nil, "", errors.New("无效的题目引用")
	}
	pageURL := providerx.DayURL(p.BaseURL, ref)
	b, err := providerx.FetchURL(ctx, c, pageURL)
	return b, pageURL, err
}

func (Provider) Parse(_ domain.PuzzleRef, html []byte, _ string) ([]byte, error) {
	if len(html) == 0 {
		return nil, errors.New("html 为空")
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return nil, err
	}

	best, bestN := "", 0
	doc.Find("pre code").Each(func(_ int, s *goquery.Selection) {
		lines := recordLines(s.Text())
		if len(lines) > bestN {
			best, bestN = strings.Join(lines, "\n")+"\n", len(lines)
		}
	})
	if bestN == 0 {
		return nil, errors.New("未找到示例记录块")
	}
	return []byte(best), nil
}

// recordLines 返回含 "|" 的行；题目页会把过长的记录折成两行（"... |" + 下一行），这里拼回去。
func recordLines(text string) []string {
	var out []string
	pending := ""
	for _, raw := range strings.Split(text, "\n") {
		line := strings.Join(strings.Fields(raw), " ")
		if line == "" {
			continue
		}
		if pending != "" {
			line = pending + " " + line
			pending = ""
		}
		if !strings.Contains(line, "|") {
			continue
		}
		if strings.HasSuffix(line, "|") {
			pending = line
			continue
		}
		out = append(out, line)
	}
	return out
}
