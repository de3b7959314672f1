package run

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/John-Robertt/segdecode/internal/config"
	"github.com/John-Robertt/segdecode/internal/decode"
	"github.com/John-Robertt/segdecode/internal/domain"
	"github.com/John-Robertt/segdecode/internal/logging"
	"github.com/John-Robertt/segdecode/internal/notes"
	"github.com/John-Robertt/segdecode/internal/provider"
)

// Execute 执行一次批量解码，并返回对外稳定的 RunReport。
// 该函数尽量把错误“降级”为 item 级失败（单个单元失败不影响其他单元）。
func Execute(ctx context.Context, eff config.EffectiveConfig, reg provider.Registry, stdin io.Reader) domain.RunReport {
	return ExecuteWithObserver(ctx, eff, reg, stdin, nil)
}

// ExecuteWithObserver 与 Execute 相同，但允许传入 Observer 以输出进度/阶段信息（由上层决定是否启用）。
func ExecuteWithObserver(ctx context.Context, eff config.EffectiveConfig, reg provider.Registry, stdin io.Reader, obs Observer) domain.RunReport {
	log := logging.Component("run")
	started := time.Now().UTC()

	if obs != nil {
		obs.OnStart(eff)
	}

	rr := domain.RunReport{
		Input:     eff.Input,
		Source:    eff.Source,
		StartedAt: started,
		Items:     make([]domain.UnitResult, 0, 256),
	}
	if eff.Source != config.SourceFile {
		rr.Input = eff.Ref.String()
	}

	readStarted := time.Now()
	in, err := LoadInput(ctx, eff, reg, stdin)
	if err != nil {
		code := domain.ErrCodeIOFailed
		var ie *InputError
		if errors.As(err, &ie) {
			code = ie.Code
		}
		log.Error().Err(err).Str("error_code", code).Msg("读取输入失败")
		rr.Items = append(rr.Items, syntheticFailed(code, err.Error()))
		rr.FinishedAt = time.Now().UTC()
		rr.Finalize()
		return rr
	}

	units, bad, err := notes.Parse(bytes.NewReader(in.Text), eff.Width)
	if err != nil {
		rr.Items = append(rr.Items, syntheticFailed(domain.ErrCodeIOFailed, err.Error()))
		rr.FinishedAt = time.Now().UTC()
		rr.Finalize()
		return rr
	}
	readDur := time.Since(readStarted)

	for _, re := range bad {
		rr.Items = append(rr.Items, failedItem(re.Line, re))
	}

	if obs != nil {
		obs.OnPhaseDone("read", map[string]any{
			"units":     len(units),
			"malformed": len(bad),
			"cache_hit": in.CacheHit,
		}, readDur)
	}

	// 执行阶段：按单元并发（worker pool），单元内八步串行。
	workers := eff.Concurrency
	if workers < 1 {
		workers = 1
	}

	if obs != nil {
		obs.OnPhaseDone("exec", map[string]any{
			"workers":     workers,
			"total_units": len(units),
		}, 0)
	}

	type execResult struct {
		res domain.UnitResult
		dur time.Duration
	}

	jobs := make(chan domain.DisplayUnit)
	results := make(chan execResult, len(units))

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for u := range jobs {
				oneStarted := time.Now()
				results <- execResult{res: execOne(u), dur: time.Since(oneStarted)}
			}
		}()
	}

	go func() {
		defer func() {
			close(jobs)
			wg.Wait()
			close(results)
		}()
		for i, u := range units {
			select {
			case jobs <- u:
			case <-ctx.Done():
				// 未派发的单元直接记为取消。
				for _, rest := range units[i:] {
					results <- execResult{res: failedItem(rest.Line, ctx.Err())}
				}
				return
			}
		}
	}()

	done := 0
	for it := range results {
		done++
		rr.Items = append(rr.Items, it.res)
		if it.res.Status == domain.StatusFailed {
			log.Debug().Int("line", it.res.Line).Str("error_code", it.res.ErrorCode).Str("step", it.res.Step).Msg(it.res.ErrorMsg)
		}
		if obs != nil {
			obs.OnItemDone(done, len(units), it.res, it.dur)
		}
	}

	rr.FinishedAt = time.Now().UTC()
	rr.Finalize()
	log.Info().
		Int("units", rr.Summary.Units).
		Int("decoded", rr.Summary.Decoded).
		Int("failed", rr.Summary.Failed).
		Int("total", rr.Summary.Total).
		Msg("运行完成")
	return rr
}

func execOne(u domain.DisplayUnit) domain.UnitResult {
	res, err := decode.DecodeUnit(u)
	if err != nil {
		return failedItem(u.Line, err)
	}
	return domain.UnitResult{
		Line:       u.Line,
		Status:     domain.StatusDecoded,
		Value:      res.Value,
		Digits:     res.Digits,
		EasyDigits: res.EasyDigits,
	}
}

func failedItem(line int, err error) domain.UnitResult {
	code := decode.ErrorCode(err)
	if code == "" {
		code = domain.ErrCodeIOFailed
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			code = domain.ErrCodeCanceled
		}
	}
	return domain.UnitResult{
		Line:      line,
		Status:    domain.StatusFailed,
		Digits:    []int{},
		ErrorCode: code,
		ErrorMsg:  err.Error(),
		Step:      decode.FailedStep(err),
	}
}

func syntheticFailed(code, msg string) domain.UnitResult {
	return domain.UnitResult{
		Status:    domain.StatusFailed,
		Digits:    []int{},
		ErrorCode: code,
		ErrorMsg:  msg,
	}
}

// ShouldFail 判断本次运行是否应以非 0 退出：on_error=skip 时单元失败不影响退出码，
// 但读入失败（line==0 的合成条目）与取消始终视为失败。
func ShouldFail(rr domain.RunReport, onError string) bool {
	for _, it := range rr.Items {
		if it.Status != domain.StatusFailed {
			continue
		}
		if it.Line == 0 || it.ErrorCode == domain.ErrCodeCanceled || onError != config.OnErrorSkip {
			return true
		}
	}
	return false
}
