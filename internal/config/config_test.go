package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadEffective_Defaults(t *testing.T) {
	cwd := t.TempDir()

	eff, err := LoadEffective(cwd, CLIArgs{})
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if eff.ConfigFile != "" {
		t.Fatalf("不应读取任何配置文件，实际 %q", eff.ConfigFile)
	}
	if eff.Source != DefaultSource || eff.Input != StdinInput {
		t.Fatalf("默认 source/input 不正确：%q %q", eff.Source, eff.Input)
	}
	if eff.Width != DefaultWidth || eff.Concurrency != DefaultConcurrency || eff.OnError != OnErrorFail {
		t.Fatalf("默认值不正确：%+v", eff)
	}
	if eff.Ref.Year != DefaultYear || eff.Ref.Day != DefaultDay {
		t.Fatalf("默认 year/day 不正确：%+v", eff.Ref)
	}
	if eff.BaseURL != DefaultBaseURL {
		t.Fatalf("默认 base_url 不正确：%q", eff.BaseURL)
	}
}

func TestLoadEffective_ConfigDirRequired(t *testing.T) {
	cwd := t.TempDir()

	_, err := LoadEffective(cwd, CLIArgs{ConfigDir: "missing"})
	if Code(err) != ErrCodeNotFound {
		t.Fatalf("期望 %q，实际 err=%v (code=%q)", ErrCodeNotFound, err, Code(err))
	}
}

func TestLoadEffective_TOMLAndCLIOverride(t *testing.T) {
	cwd := t.TempDir()
	writeFile(t, filepath.Join(cwd, "segdecode.toml"), []byte(`
input = "notes/day8.txt"
concurrency = 8
on_error = "skip"
`))

	eff, err := LoadEffective(cwd, CLIArgs{})
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if eff.ConfigFile != filepath.Join(cwd, "segdecode.toml") {
		t.Fatalf("配置文件路径不正确：%q", eff.ConfigFile)
	}
	// 配置文件中的相对 input 相对配置文件所在目录。
	if want := filepath.Join(cwd, "notes", "day8.txt"); eff.Input != want {
		t.Fatalf("期望 input=%q，实际=%q", want, eff.Input)
	}
	if eff.Concurrency != 8 || eff.OnError != OnErrorSkip {
		t.Fatalf("配置文件字段未生效：%+v", eff)
	}

	// CLI 显式指定覆盖配置文件。
	eff2, err := LoadEffective(cwd, CLIArgs{
		Input:          "other.txt",
		OnError:        OnErrorFail,
		OnErrorSet:     true,
		Concurrency:    100,
		ConcurrencySet: true,
	})
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if want := filepath.Join(cwd, "other.txt"); eff2.Input != want {
		t.Fatalf("期望 input=%q，实际=%q", want, eff2.Input)
	}
	if eff2.OnError != OnErrorFail {
		t.Fatalf("期望 on_error=fail，实际=%q", eff2.OnError)
	}
	if eff2.Concurrency != 32 {
		t.Fatalf("concurrency 应截断到 32，实际=%d", eff2.Concurrency)
	}
}

func TestLoadEffective_YAMLInConfigDir(t *testing.T) {
	cwd := t.TempDir()
	dir := filepath.Join(cwd, "conf")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("创建目录失败：%v", err)
	}
	writeFile(t, filepath.Join(dir, "segdecode.yaml"), []byte("source: example\nyear: 2021\nday: 8\nwidth: 4\n"))

	eff, err := LoadEffective(cwd, CLIArgs{ConfigDir: "conf"})
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if eff.Source != SourceExample {
		t.Fatalf("期望 source=example，实际=%q", eff.Source)
	}
}

func TestLoadEffective_EnvBetweenFileAndCLI(t *testing.T) {
	cwd := t.TempDir()
	writeFile(t, filepath.Join(cwd, "segdecode.toml"), []byte(`concurrency = 2`))
	t.Setenv("SEGDECODE_CONCURRENCY", "6")
	t.Setenv("SEGDECODE_ON_ERROR", "skip")

	eff, err := LoadEffective(cwd, CLIArgs{})
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if eff.Concurrency != 6 || eff.OnError != OnErrorSkip {
		t.Fatalf("环境变量应覆盖配置文件：%+v", eff)
	}

	eff, err = LoadEffective(cwd, CLIArgs{Concurrency: 3, ConcurrencySet: true})
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if eff.Concurrency != 3 {
		t.Fatalf("CLI 应覆盖环境变量，实际=%d", eff.Concurrency)
	}
}

func TestLoadEffective_InputSourceNeedsSession(t *testing.T) {
	cwd := t.TempDir()

	_, err := LoadEffective(cwd, CLIArgs{Source: SourceInput, SourceSet: true})
	if Code(err) != ErrCodeInvalid {
		t.Fatalf("期望 %q，实际 err=%v (code=%q)", ErrCodeInvalid, err, Code(err))
	}

	t.Setenv("SEGDECODE_SESSION", "abc")
	eff, err := LoadEffective(cwd, CLIArgs{Source: SourceInput, SourceSet: true, Ref: "2021/8", RefSet: true})
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if eff.Session != "abc" {
		t.Fatalf("session 未生效：%q", eff.Session)
	}
}

func TestLoadEffective_Invalid(t *testing.T) {
	cases := []struct {
		name string
		toml string
		cli  CLIArgs
	}{
		{name: "bad source", toml: `source = "nope"`},
		{name: "bad on_error", toml: `on_error = "ignore"`},
		{name: "bad width", toml: `width = 0`},
		{name: "bad day", toml: `day = 26`},
		{name: "bad base_url", toml: `base_url = "ftp://example.test"`},
		{name: "bad proxy", toml: `proxy_url = "http://[::1"`},
		{name: "broken toml", toml: `source = `},
		{name: "bad cli ref", cli: CLIArgs{Ref: "yesterday", RefSet: true}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cwd := t.TempDir()
			if tc.toml != "" {
				writeFile(t, filepath.Join(cwd, "segdecode.toml"), []byte(tc.toml))
			}
			_, err := LoadEffective(cwd, tc.cli)
			if Code(err) != ErrCodeInvalid {
				t.Fatalf("期望 %q，实际 err=%v (code=%q)", ErrCodeInvalid, err, Code(err))
			}
		})
	}
}

func TestLoadEffective_ReportAbsolute(t *testing.T) {
	cwd := t.TempDir()

	eff, err := LoadEffective(cwd, CLIArgs{Report: "out/report.json", Input: "-"})
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if want := filepath.Join(cwd, "out", "report.json"); eff.Report != want {
		t.Fatalf("期望 report=%q，实际=%q", want, eff.Report)
	}
	if eff.Input != StdinInput {
		t.Fatalf("期望 input=-，实际=%q", eff.Input)
	}
}

func writeFile(t *testing.T, path string, b []byte) {
	t.Helper()
	if err := os.WriteFile(path, b, 0o644); err != nil {
		t.Fatalf("写入文件失败 %q：%v", path, err)
	}
}
