package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/John-Robertt/segdecode/internal/domain"
	"github.com/John-Robertt/segdecode/internal/logging"
)

const (
	// ErrCodeNotFound 表示显式指定了 --config-dir，但其中没有任何配置文件。
	ErrCodeNotFound = domain.ErrCodeConfigNotFound
	// ErrCodeInvalid 表示配置文件无法读取/解析，或字段不合法。
	ErrCodeInvalid = domain.ErrCodeConfigInvalid
)

const (
	SourceFile    = "file"
	SourceInput   = "input"
	SourceExample = "example"

	OnErrorFail = "fail"
	OnErrorSkip = "skip"
)

const (
	DefaultSource      = SourceFile
	DefaultConcurrency = 4
	DefaultWidth       = 4
	DefaultYear        = 2021
	DefaultDay         = 8
	DefaultBaseURL     = "https://adventofcode.com"

	// StdinInput 表示从标准输入读取。
	StdinInput = "-"

	envPrefix = "SEGDECODE_"
)

// fileNames 是配置文件的发现顺序：命中第一个即停止。
var fileNames = []string{"segdecode.toml", "segdecode.yaml", "segdecode.yml"}

// CLIArgs 只包含 CLI 暴露的入口，并保留“是否显式指定”的信息，
// 以保证 --on-error=fail 之类的显式值能覆盖配置文件。
type CLIArgs struct {
	ConfigDir string

	Input string

	Source    string
	SourceSet bool

	Ref    string
	RefSet bool

	Concurrency    int
	ConcurrencySet bool

	OnError    string
	OnErrorSet bool

	Report string
}

// FileConfig 是 defaults + 配置文件 + 环境变量合并后的原始字段。
type FileConfig struct {
	Source      string `koanf:"source"`
	Input       string `koanf:"input"`
	Year        int    `koanf:"year"`
	Day         int    `koanf:"day"`
	Width       int    `koanf:"width"`
	Concurrency int    `koanf:"concurrency"`
	OnError     string `koanf:"on_error"`
	BaseURL     string `koanf:"base_url"`
	Session     string `koanf:"session"`
	CacheDir    string `koanf:"cache_dir"`
	ProxyURL    string `koanf:"proxy_url"`
	Report      string `koanf:"report"`
}

// EffectiveConfig 是合并并做最小规范化后的最终配置（实现层直接消费，不再做二次默认/优先级判断）。
type EffectiveConfig struct {
	// ConfigFile 为实际读取的配置文件；未读取时为空。
	ConfigFile string

	Source string
	// Input 为绝对路径，或 StdinInput。
	Input string
	Ref   domain.PuzzleRef
	Width int

	Concurrency int
	OnError     string

	BaseURL  string
	Session  string
	CacheDir string
	ProxyURL string

	// Report 为 JSON 报告的绝对路径；为空表示不写文件。
	Report string
}

// Error 是配置阶段的结构化错误（带 error_code）。
type Error struct {
	Code string
	Path string
	Err  error
}

func (e *Error) Error() string {
	switch e.Code {
	case ErrCodeNotFound:
		return fmt.Sprintf("%s：目录 %q 下未找到配置文件（%s）", e.Code, e.Path, strings.Join(fileNames, "/"))
	case ErrCodeInvalid:
		if e.Err != nil {
			if e.Path == "" {
				return fmt.Sprintf("%s：%v", e.Code, e.Err)
			}
			return fmt.Sprintf("%s：配置文件 %q 无效：%v", e.Code, e.Path, e.Err)
		}
		return fmt.Sprintf("%s：配置文件 %q 无效", e.Code, e.Path)
	default:
		if e.Err != nil {
			return fmt.Sprintf("%s：%v", e.Code, e.Err)
		}
		return e.Code
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Code 从 error 中提取 error_code；若不是 *Error 则返回空串。
func Code(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// LoadEffective 发现并读取配置文件，与环境变量、CLI 参数合并为最终配置。
//
// 发现规则（固定）：
// 1) CLI 提供 --config-dir：必须在该目录找到 segdecode.toml / segdecode.yaml / segdecode.yml
// 2) 否则：在 cwd 下按同样顺序查找（可选）
//
// 覆盖优先级（固定）：CLI（显式指定）> SEGDECODE_* 环境变量 > 配置文件 > 内置默认。
func LoadEffective(cwd string, cli CLIArgs) (EffectiveConfig, error) {
	log := logging.Component("config")

	cwdAbs, err := filepath.Abs(cwd)
	if err != nil {
		return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cwd, Err: err}
	}

	k := koanf.New(".")
	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Err: fmt.Errorf("载入默认值失败：%w", err)}
	}

	dir := cwdAbs
	required := strings.TrimSpace(cli.ConfigDir) != ""
	if required {
		dir = absCleanFrom(cwdAbs, cli.ConfigDir)
	}
	cfgPath, err := loadFile(k, dir)
	if err != nil {
		return EffectiveConfig{}, err
	}
	if cfgPath == "" && required {
		return EffectiveConfig{}, &Error{Code: ErrCodeNotFound, Path: dir, Err: os.ErrNotExist}
	}

	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, envPrefix))
	}), nil); err != nil {
		return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Err: fmt.Errorf("载入环境变量失败：%w", err)}
	}

	var fc FileConfig
	if err := k.UnmarshalWithConf("", &fc, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cfgPath, Err: err}
	}

	eff, err := merge(cwdAbs, cli, fc, cfgPath)
	if err != nil {
		return EffectiveConfig{}, err
	}
	log.Debug().
		Str("config_file", eff.ConfigFile).
		Str("source", eff.Source).
		Str("input", eff.Input).
		Int("concurrency", eff.Concurrency).
		Str("on_error", eff.OnError).
		Msg("配置已生效")
	return eff, nil
}

func defaults() map[string]interface{} {
	return map[string]interface{}{
		"source":      DefaultSource,
		"input":       StdinInput,
		"year":        DefaultYear,
		"day":         DefaultDay,
		"width":       DefaultWidth,
		"concurrency": DefaultConcurrency,
		"on_error":    OnErrorFail,
		"base_url":    DefaultBaseURL,
		"cache_dir":   filepath.Join(xdg.CacheHome, "segdecode"),
	}
}

// loadFile 在 dir 下按 fileNames 顺序查找配置文件并载入 k；未找到返回空路径。
func loadFile(k *koanf.Koanf, dir string) (string, error) {
	for _, name := range fileNames {
		path := filepath.Join(dir, name)
		fi, err := os.Stat(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return "", &Error{Code: ErrCodeInvalid, Path: path, Err: err}
		}
		if fi.IsDir() {
			return "", &Error{Code: ErrCodeInvalid, Path: path, Err: fmt.Errorf("期望文件，实际是目录")}
		}

		var parser koanf.Parser = toml.Parser()
		if filepath.Ext(name) != ".toml" {
			parser = yaml.Parser()
		}
		if err := k.Load(file.Provider(path), parser); err != nil {
			return "", &Error{Code: ErrCodeInvalid, Path: path, Err: err}
		}
		return path, nil
	}
	return "", nil
}

func merge(cwdAbs string, cli CLIArgs, fc FileConfig, cfgPath string) (EffectiveConfig, error) {
	invalid := func(err error) error { return &Error{Code: ErrCodeInvalid, Path: cfgPath, Err: err} }

	source := strings.ToLower(strings.TrimSpace(fc.Source))
	if cli.SourceSet {
		source = cli.Source
	}
	if err := validateSource(source); err != nil {
		return EffectiveConfig{}, invalid(err)
	}

	// input：CLI 位置参数 > 配置；相对路径相对 cwd（配置文件中的相对路径相对配置文件所在目录）。
	input := StdinInput
	switch {
	case strings.TrimSpace(cli.Input) != "":
		input = absInput(cwdAbs, cli.Input)
	case strings.TrimSpace(fc.Input) != "":
		base := cwdAbs
		if cfgPath != "" {
			base = filepath.Dir(cfgPath)
		}
		input = absInput(base, fc.Input)
	}

	ref := domain.PuzzleRef{Year: fc.Year, Day: fc.Day}
	if cli.RefSet {
		r, ok := domain.ParseRef(cli.Ref)
		if !ok {
			return EffectiveConfig{}, invalid(fmt.Errorf("--day 只能是 YYYY/D 形态，实际是 %q", cli.Ref))
		}
		ref = r
	}
	if !ref.Valid() {
		return EffectiveConfig{}, invalid(fmt.Errorf("year/day 无效：%d/%d", ref.Year, ref.Day))
	}

	width := fc.Width
	if width < 1 || width > 9 {
		return EffectiveConfig{}, invalid(fmt.Errorf("width 只能在 [1, 9]，实际是 %d", width))
	}

	concurrency := fc.Concurrency
	if cli.ConcurrencySet {
		concurrency = cli.Concurrency
	}
	if concurrency == 0 {
		concurrency = DefaultConcurrency
	}
	// 范围 [1, 32]；超出截断。
	if concurrency < 1 {
		concurrency = 1
	}
	if concurrency > 32 {
		concurrency = 32
	}

	onError := strings.ToLower(strings.TrimSpace(fc.OnError))
	if cli.OnErrorSet {
		onError = cli.OnError
	}
	if onError != OnErrorFail && onError != OnErrorSkip {
		return EffectiveConfig{}, invalid(fmt.Errorf("on_error 只能是 fail 或 skip，实际是 %q", onError))
	}

	baseURL := strings.TrimRight(strings.TrimSpace(fc.BaseURL), "/")
	if err := validateHTTPURL("base_url", baseURL); err != nil {
		return EffectiveConfig{}, invalid(err)
	}

	proxyURL := strings.TrimSpace(fc.ProxyURL)
	if proxyURL != "" {
		if _, err := url.Parse(proxyURL); err != nil {
			return EffectiveConfig{}, invalid(fmt.Errorf("proxy_url 无效：%w", err))
		}
	}

	session := strings.TrimSpace(fc.Session)
	if source == SourceInput && session == "" {
		return EffectiveConfig{}, invalid(fmt.Errorf("source=input 需要 session（配置文件或 %sSESSION）", envPrefix))
	}

	report := strings.TrimSpace(fc.Report)
	if strings.TrimSpace(cli.Report) != "" {
		report = cli.Report
	}
	if report != "" {
		report = absCleanFrom(cwdAbs, report)
	}

	return EffectiveConfig{
		ConfigFile:  cfgPath,
		Source:      source,
		Input:       input,
		Ref:         ref,
		Width:       width,
		Concurrency: concurrency,
		OnError:     onError,
		BaseURL:     baseURL,
		Session:     session,
		CacheDir:    absCleanFrom(cwdAbs, fc.CacheDir),
		ProxyURL:    proxyURL,
		Report:      report,
	}, nil
}

func validateSource(s string) error {
	switch s {
	case SourceFile, SourceInput, SourceExample:
		return nil
	case "":
		return fmt.Errorf("source 不能为空")
	default:
		return fmt.Errorf("source 只能是 file、input 或 example，实际是 %q", s)
	}
}

func validateHTTPURL(field, raw string) error {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%s 无效：%q", field, raw)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%s 必须是 http/https：%q", field, raw)
	}
	return nil
}

func absInput(base, p string) string {
	if strings.TrimSpace(p) == StdinInput {
		return StdinInput
	}
	return absCleanFrom(base, p)
}

// absCleanFrom 以 base 为基准，把 p 变为 clean + absolute。
// - p 若已是绝对路径：直接 Clean
// - p 若是相对路径：Join(base, p) 后 Clean
func absCleanFrom(base, p string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return ""
	}
	p = filepath.Clean(p)
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Clean(filepath.Join(base, p))
}
