package domain

import (
	"encoding/json"
	"sort"
	"time"
)

const (
	StatusDecoded = "decoded"
	StatusFailed  = "failed"
)

const (
	ErrCodeMalformedRecord    = "malformed_record"
	ErrCodeMalformedPattern   = "malformed_pattern"
	ErrCodeAmbiguousCandidate = "ambiguous_candidate"
	ErrCodeUnknownOutput      = "unknown_output"
	ErrCodeFetchFailed        = "fetch_failed"
	ErrCodeParseFailed        = "parse_failed"
	ErrCodeIOFailed           = "io_failed"
	ErrCodeCanceled           = "canceled"
	ErrCodeConfigNotFound     = "config_not_found"
	ErrCodeConfigInvalid      = "config_invalid"
)

// RunReport 是对外稳定输出（--report 文件 / stdout JSON）的结构。
type RunReport struct {
	Input  string `json:"input"`
	Source string `json:"source"`

	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`

	Summary ReportSummary `json:"summary"`
	Items   []UnitResult  `json:"items"`
}

type ReportSummary struct {
	Units   int `json:"units"`
	Decoded int `json:"decoded"`
	Failed  int `json:"failed"`

	// Total 只累加 decoded 单元的值。
	Total      int `json:"total"`
	EasyDigits int `json:"easy_digits"`
}

type UnitResult struct {
	Line   int    `json:"line"`
	Status string `json:"status"`

	Value      int   `json:"value"`
	Digits     []int `json:"digits"`
	EasyDigits int   `json:"easy_digits"`

	ErrorCode string `json:"error_code"`
	ErrorMsg  string `json:"error_msg"`
	// Step 仅在 ambiguous_candidate 时给出失败的推导步骤。
	Step string `json:"step,omitempty"`
}

// Finalize 做三件事：
// 1) 时间统一为 UTC（确保 JSON 为 RFC3339 且后缀 Z）
// 2) items 稳定排序：按行号升序；line==0 的合成条目排在最后
// 3) summary 由 items 计算得出
func (r *RunReport) Finalize() {
	r.StartedAt = r.StartedAt.UTC()
	r.FinishedAt = r.FinishedAt.UTC()

	sort.SliceStable(r.Items, func(i, j int) bool {
		a := r.Items[i].Line
		b := r.Items[j].Line
		if a == 0 {
			return false
		}
		if b == 0 {
			return true
		}
		return a < b
	})

	var s ReportSummary
	for _, it := range r.Items {
		if it.Line > 0 {
			s.Units++
		}
		switch it.Status {
		case StatusDecoded:
			s.Decoded++
			s.Total += it.Value
			s.EasyDigits += it.EasyDigits
		case StatusFailed:
			s.Failed++
		}
	}
	r.Summary = s
}

// MarshalJSON 仅用于集中约束输出的稳定性：nil 切片输出为 []。
func (r RunReport) MarshalJSON() ([]byte, error) {
	type Alias RunReport
	a := Alias(r)
	if a.Items == nil {
		a.Items = []UnitResult{}
	}
	for i := range a.Items {
		if a.Items[i].Digits == nil {
			a.Items[i].Digits = []int{}
		}
	}
	return json.Marshal(a)
}
