package domain

import "fmt"

// DisplayUnit 是输入中的一条记录：10 个参考段组合 + 若干输出段组合（原始 token，未规范化）。
// 由输入读取层构造，解码一次后丢弃。
type DisplayUnit struct {
	// Line 为 1-based 行号，用于 report 定位。
	Line    int
	Signals []string
	Outputs []string
}

// RecordError 表示某一行的结构不合法（不是 "10 个参考 | k 个输出" 的形态）。
type RecordError struct {
	Line   int
	Reason string
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("第 %d 行格式错误：%s", e.Line, e.Reason)
}
