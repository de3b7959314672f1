package cache

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/John-Robertt/segdecode/internal/domain"
	"github.com/John-Robertt/segdecode/internal/infra/fsx"
)

// Store 提供 <cache_dir>/<provider>/ 下的输入缓存读写。
//
// 每个 provider 每道题两份文件：
// - <ref>.raw：抓取到的原始响应（puzzle 输入或题目 HTML），便于排查解析问题
// - <ref>.txt：解析后的记录文本，命中即不再访问网络
type Store struct {
	Dir string
}

func New(dir string) Store {
	return Store{Dir: filepath.Clean(strings.TrimSpace(dir))}
}

// TextPath 返回解析后文本缓存的绝对路径。
func (s Store) TextPath(provider string, ref domain.PuzzleRef) (string, error) {
	return s.path(provider, ref, ".txt")
}

// RawPath 返回原始响应缓存的绝对路径。
func (s Store) RawPath(provider string, ref domain.PuzzleRef) (string, error) {
	return s.path(provider, ref, ".raw")
}

func (s Store) ReadText(provider string, ref domain.PuzzleRef) ([]byte, bool, error) {
	path, err := s.TextPath(provider, ref)
	if err != nil {
		return nil, false, err
	}
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return b, true, nil
}

func (s Store) WriteText(provider string, ref domain.PuzzleRef, text []byte) error {
	return s.write(provider, ref, ".txt", text)
}

func (s Store) WriteRaw(provider string, ref domain.PuzzleRef, raw []byte) error {
	return s.write(provider, ref, ".raw", raw)
}

func (s Store) write(provider string, ref domain.PuzzleRef, ext string, b []byte) error {
	path, err := s.path(provider, ref, ext)
	if err != nil {
		return err
	}
	return fsx.WriteFileAtomic(filepath.Dir(path), filepath.Base(path), b)
}

func (s Store) path(provider string, ref domain.PuzzleRef, ext string) (string, error) {
	if s.Dir == "" || s.Dir == "." {
		return "", fmt.Errorf("cache_dir 不能为空")
	}
	p, err := cleanProvider(provider)
	if err != nil {
		return "", err
	}
	if !ref.Valid() {
		return "", fmt.Errorf("无效的题目引用：%d/%d", ref.Year, ref.Day)
	}
	return filepath.Join(s.Dir, p, ref.String()+ext), nil
}

var providerNameRE = regexp.MustCompile(`^[a-z0-9_]+$`)

func cleanProvider(p string) (string, error) {
	p = strings.ToLower(strings.TrimSpace(p))
	if p == "" {
		return "", fmt.Errorf("provider 不能为空")
	}
	// 最小约束：避免路径穿越。
	if !providerNameRE.MatchString(p) {
		return "", fmt.Errorf("非法 provider：%q", p)
	}
	return p, nil
}
