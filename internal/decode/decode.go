package decode

import (
	"errors"
	"fmt"

	"github.com/John-Robertt/segdecode/internal/deduce"
	"github.com/John-Robertt/segdecode/internal/domain"
	"github.com/John-Robertt/segdecode/internal/segment"
)

// UnknownOutputError 表示某个输出段组合不等于任何已推导的参考组合。
type UnknownOutputError struct {
	Index   int
	Pattern segment.Pattern
}

func (e *UnknownOutputError) Error() string {
	return fmt.Sprintf("第 %d 个输出 %q 不在参考组合中", e.Index+1, e.Pattern.String())
}

// UnitError 给单元级错误附加行号（Total 等批量接口使用）。
type UnitError struct {
	Line int
	Err  error
}

func (e *UnitError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e *UnitError) Unwrap() error { return e.Err }

// Result 是单个显示单元的解码结果。
type Result struct {
	Value      int
	Digits     []int
	EasyDigits int
	Mapping    deduce.Mapping
}

// Digits 按映射把输出逐个翻译为数字。
func Digits(outputs []segment.Pattern, m deduce.Mapping) ([]int, error) {
	digits := make([]int, 0, len(outputs))
	for i, p := range outputs {
		d, ok := m.Digit(p)
		if !ok {
			return nil, &UnknownOutputError{Index: i, Pattern: p}
		}
		digits = append(digits, d)
	}
	return digits, nil
}

// Decode 把 k 个输出按位值合成为一个整数：sum(d_i * 10^(k-1-i))。
// 前导 0 按位保留，例如 [0 3 9 1] => 391。
func Decode(outputs []segment.Pattern, m deduce.Mapping) (int, error) {
	digits, err := Digits(outputs, m)
	if err != nil {
		return 0, err
	}
	return PlaceValue(digits), nil
}

func PlaceValue(digits []int) int {
	v := 0
	for _, d := range digits {
		v = v*10 + d
	}
	return v
}

// DecodeUnit 完成一个单元的规范化、推导与解码。每次调用使用独立的 Resolver。
func DecodeUnit(u domain.DisplayUnit) (Result, error) {
	signals, _, err := segment.ParseAll(u.Signals)
	if err != nil {
		return Result{}, err
	}
	outputs, _, err := segment.ParseAll(u.Outputs)
	if err != nil {
		return Result{}, err
	}

	m, err := deduce.Resolve(signals)
	if err != nil {
		return Result{}, err
	}
	digits, err := Digits(outputs, m)
	if err != nil {
		return Result{}, err
	}
	return Result{
		Value:      PlaceValue(digits),
		Digits:     digits,
		EasyDigits: CountEasy(outputs),
		Mapping:    m,
	}, nil
}

// Total 顺序累加所有单元的解码值；遇到第一个失败单元即返回 *UnitError。
// 并发批处理见 internal/app/run。
func Total(units []domain.DisplayUnit) (int, error) {
	sum := 0
	for _, u := range units {
		res, err := DecodeUnit(u)
		if err != nil {
			return 0, &UnitError{Line: u.Line, Err: err}
		}
		sum += res.Value
	}
	return sum, nil
}

// ErrorCode 把单元级错误映射为 report 的 error_code；未知错误返回空串。
func ErrorCode(err error) string {
	var (
		me *segment.MalformedError
		ce *deduce.CandidateError
		ue *UnknownOutputError
		re *domain.RecordError
	)
	switch {
	case errors.As(err, &me):
		return domain.ErrCodeMalformedPattern
	case errors.As(err, &ce):
		return domain.ErrCodeAmbiguousCandidate
	case errors.As(err, &ue):
		return domain.ErrCodeUnknownOutput
	case errors.As(err, &re):
		return domain.ErrCodeMalformedRecord
	default:
		return ""
	}
}

// FailedStep 返回推导失败的步骤名；不是推导错误时返回空串。
func FailedStep(err error) string {
	var ce *deduce.CandidateError
	if errors.As(err, &ce) {
		return ce.Step
	}
	return ""
}
