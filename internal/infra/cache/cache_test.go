package cache

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/John-Robertt/segdecode/internal/domain"
)

func TestStore_ReadWriteText(t *testing.T) {
	root := t.TempDir()
	ref := domain.PuzzleRef{Year: 2021, Day: 8}

	s := New(root)
	if _, ok, err := s.ReadText("puzzle", ref); err != nil || ok {
		t.Fatalf("空缓存应未命中：ok=%v err=%v", ok, err)
	}

	if err := s.WriteText("puzzle", ref, []byte("a | b\n")); err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	b, ok, err := s.ReadText("puzzle", ref)
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if !ok {
		t.Fatalf("期望命中缓存，但 ok=false")
	}
	if string(b) != "a | b\n" {
		t.Fatalf("内容不一致：%q", string(b))
	}

	path, err := s.TextPath("puzzle", ref)
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if path != filepath.Join(root, "puzzle", "2021-08.txt") {
		t.Fatalf("缓存路径不符合约定：%q", path)
	}
}

func TestStore_WriteRaw(t *testing.T) {
	root := t.TempDir()
	ref := domain.PuzzleRef{Year: 2021, Day: 8}

	s := New(root)
	if err := s.WriteRaw("example", ref, []byte("<html/>")); err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	path, _ := s.RawPath("example", ref)
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("期望文件存在，但 Stat 失败：%v", err)
	}
}

func TestStore_RejectsBadKeys(t *testing.T) {
	s := New(t.TempDir())
	if _, err := s.TextPath("../etc", domain.PuzzleRef{Year: 2021, Day: 8}); err == nil {
		t.Fatalf("期望拒绝路径穿越的 provider 名称")
	}
	if _, err := s.TextPath("puzzle", domain.PuzzleRef{Year: 2021, Day: 0}); err == nil {
		t.Fatalf("期望拒绝无效的题目引用")
	}
	if _, err := New("").TextPath("puzzle", domain.PuzzleRef{Year: 2021, Day: 8}); err == nil {
		t.Fatalf("期望拒绝空 cache_dir")
	}
}
