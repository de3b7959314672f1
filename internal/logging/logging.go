package logging

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Setup 按 verbosity 配置全局 logger。
//
// 日志只写到 w（通常是 stderr）：stdout 保留给结果输出（TTY 摘要或 RunReport JSON）。
// 0=warn 1=info 2=debug 3+=trace；debug 及以上附带 caller。
func Setup(verbosity int, w io.Writer) {
	switch verbosity {
	case 0:
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case 1:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case 2:
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.TraceLevel)
	}

	if w == nil {
		w = os.Stderr
	}
	console := zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: time.Kitchen,
	}
	ctx := zerolog.New(console).With().Timestamp()
	if verbosity >= 2 {
		ctx = ctx.Caller()
	}
	log.Logger = ctx.Logger()

	log.Debug().Int("verbosity", verbosity).Msg("logger 初始化完成")
}

// Component 返回带 component 字段的 logger。
func Component(name string) zerolog.Logger {
	return log.With().Str("component", name).Logger()
}

// OperationStart 记录一次操作的开始，返回的函数在结束时记录耗时。
func OperationStart(logger zerolog.Logger, operation string) func() {
	start := time.Now()
	logger.Debug().Str("operation", operation).Msg("开始")
	return func() {
		logger.Debug().
			Str("operation", operation).
			Dur("duration", time.Since(start)).
			Msg("完成")
	}
}
