package notes

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/John-Robertt/segdecode/internal/deduce"
	"github.com/John-Robertt/segdecode/internal/domain"
)

// DefaultWidth 是每个单元的输出个数（四位数码管）。
const DefaultWidth = 4

const separator = "|"

// Parse 逐行读取 "10 个参考 | width 个输出" 形态的记录。
//
// 规则：
// - 空行（含仅空白）忽略，但仍计入行号
// - 结构不合法的行记为 *domain.RecordError，继续处理后续行（单元级错误互不影响）
// - 返回的 error 仅表示读取本身失败（I/O）
func Parse(r io.Reader, width int) ([]domain.DisplayUnit, []*domain.RecordError, error) {
	if width < 1 {
		width = DefaultWidth
	}

	var (
		units []domain.DisplayUnit
		bad   []*domain.RecordError
	)
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}
		u, err := ParseLine(line, text, width)
		if err != nil {
			bad = append(bad, err)
			continue
		}
		units = append(units, u)
	}
	if err := sc.Err(); err != nil {
		return nil, nil, err
	}
	return units, bad, nil
}

// ParseLine 解析单行记录；line 仅用于定位。
func ParseLine(line int, text string, width int) (domain.DisplayUnit, *domain.RecordError) {
	lhs, rhs, ok := strings.Cut(text, separator)
	if !ok {
		return domain.DisplayUnit{}, &domain.RecordError{Line: line, Reason: "缺少分隔符 \"|\""}
	}
	if strings.Contains(rhs, separator) {
		return domain.DisplayUnit{}, &domain.RecordError{Line: line, Reason: "分隔符 \"|\" 出现多次"}
	}
	signals := strings.Fields(lhs)
	outputs := strings.Fields(rhs)
	if len(signals) != deduce.SignalCount {
		return domain.DisplayUnit{}, &domain.RecordError{Line: line, Reason: fmt.Sprintf("需要 %d 个参考组合，实际 %d 个", deduce.SignalCount, len(signals))}
	}
	if len(outputs) != width {
		return domain.DisplayUnit{}, &domain.RecordError{Line: line, Reason: fmt.Sprintf("需要 %d 个输出组合，实际 %d 个", width, len(outputs))}
	}
	return domain.DisplayUnit{
		Line:    line,
		Signals: signals,
		Outputs: outputs,
	}, nil
}
