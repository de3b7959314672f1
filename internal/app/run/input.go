package run

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/John-Robertt/segdecode/internal/config"
	"github.com/John-Robertt/segdecode/internal/domain"
	"github.com/John-Robertt/segdecode/internal/infra/cache"
	"github.com/John-Robertt/segdecode/internal/infra/httpx"
	"github.com/John-Robertt/segdecode/internal/logging"
	"github.com/John-Robertt/segdecode/internal/provider"
)

// Input 是读入阶段的产物：完整的记录文本及其来源。
type Input struct {
	Text []byte
	// Origin 为本地路径、"-"（stdin）、缓存文件路径或抓取 URL。
	Origin   string
	CacheHit bool
}

// InputError 把读入失败归类为 report 的 error_code。
type InputError struct {
	Code string
	Err  error
}

func (e *InputError) Error() string { return fmt.Sprintf("%s: %v", e.Code, e.Err) }

func (e *InputError) Unwrap() error { return e.Err }

// ProviderFor 把 source 映射为 provider 名称；source=file 返回空串。
func ProviderFor(source string) string {
	switch source {
	case config.SourceInput:
		return "puzzle"
	case config.SourceExample:
		return "example"
	default:
		return ""
	}
}

// LoadInput 按 eff.Source 读取记录文本。
//
// - file：读取 eff.Input（"-" 时读 stdin）
// - input/example：先查缓存，未命中再经 provider 抓取；成功后写回 .txt 与 .raw
func LoadInput(ctx context.Context, eff config.EffectiveConfig, reg provider.Registry, stdin io.Reader) (Input, error) {
	if eff.Source == config.SourceFile || eff.Source == "" {
		return loadLocal(eff.Input, stdin)
	}
	return loadRemote(ctx, eff, reg)
}

func loadLocal(path string, stdin io.Reader) (Input, error) {
	if path == "" || path == config.StdinInput {
		if stdin == nil {
			return Input{}, &InputError{Code: domain.ErrCodeIOFailed, Err: errors.New("stdin 不可用")}
		}
		b, err := io.ReadAll(stdin)
		if err != nil {
			return Input{}, &InputError{Code: domain.ErrCodeIOFailed, Err: fmt.Errorf("读取 stdin 失败：%w", err)}
		}
		return Input{Text: b, Origin: config.StdinInput}, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return Input{}, &InputError{Code: domain.ErrCodeIOFailed, Err: err}
	}
	return Input{Text: b, Origin: path}, nil
}

func loadRemote(ctx context.Context, eff config.EffectiveConfig, reg provider.Registry) (Input, error) {
	log := logging.Component("input")
	name := ProviderFor(eff.Source)
	if name == "" {
		return Input{}, &InputError{Code: domain.ErrCodeConfigInvalid, Err: fmt.Errorf("未知 source：%q", eff.Source)}
	}

	store := cache.New(eff.CacheDir)
	if b, ok, err := store.ReadText(name, eff.Ref); err != nil {
		log.Warn().Err(err).Msg("读取缓存失败，改为在线抓取")
	} else if ok {
		p, _ := store.TextPath(name, eff.Ref)
		log.Info().Str("provider", name).Str("ref", eff.Ref.String()).Str("path", p).Msg("命中缓存")
		return Input{Text: b, Origin: p, CacheHit: true}, nil
	}

	c, err := httpx.NewClient(eff.ProxyURL, eff.Session)
	if err != nil {
		return Input{}, &InputError{Code: domain.ErrCodeConfigInvalid, Err: fmt.Errorf("proxy_url 无效：%w", err)}
	}

	text, pageURL, raw, err := provider.FetchParse(ctx, reg, name, eff.Ref, c)
	if len(raw) > 0 {
		// raw 在解析失败时同样保留，便于排查。
		if werr := store.WriteRaw(name, eff.Ref, raw); werr != nil {
			log.Warn().Err(werr).Msg("写入原始响应缓存失败")
		}
	}
	if err != nil {
		return Input{}, &InputError{Code: providerErrCode(err), Err: err}
	}
	if werr := store.WriteText(name, eff.Ref, text); werr != nil {
		log.Warn().Err(werr).Msg("写入输入缓存失败")
	}
	return Input{Text: text, Origin: pageURL}, nil
}

func providerErrCode(err error) string {
	var pe *provider.Error
	if errors.As(err, &pe) && pe.Stage == "parse" {
		return domain.ErrCodeParseFailed
	}
	return domain.ErrCodeFetchFailed
}
