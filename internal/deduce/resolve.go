package deduce

import (
	"github.com/John-Robertt/segdecode/internal/segment"
)

// SignalCount 是每个显示单元的参考 Pattern 数量（数字 0..9 各一次）。
const SignalCount = 10

// TraceStep 记录一步推导选中的结果（用于 explain 输出）。
type TraceStep struct {
	Step    string
	Digit   int // discriminator 步骤为 -1
	Pattern segment.Pattern
}

// Resolver 持有单个显示单元的推导状态。每个单元必须新建一个 Resolver，状态不跨单元共享。
type Resolver struct {
	signals []segment.Pattern
	used    [SignalCount]bool

	byDigit [10]segment.Pattern

	// e 是 8-4-3 得到的判别段（区分 2 与 5）。
	e segment.Pattern

	trace []TraceStep
}

// pipeline 是固定的推导顺序：后一步依赖前一步已确定的数字，不能并行也不能调换。
var pipeline = []struct {
	name string
	fn   func(*Resolver) error
}{
	{StepUnique, (*Resolver).stepUnique},
	{StepThree, (*Resolver).stepThree},
	{StepNine, (*Resolver).stepNine},
	{StepDiscriminator, (*Resolver).stepDiscriminator},
	{StepTwo, (*Resolver).stepTwo},
	{StepFive, (*Resolver).stepFive},
	{StepZero, (*Resolver).stepZero},
	{StepSix, (*Resolver).stepSix},
}

// NewResolver 校验输入为 10 个互不相同的 Pattern。
func NewResolver(signals []segment.Pattern) (*Resolver, error) {
	seen := make(map[segment.Pattern]struct{}, len(signals))
	for _, p := range signals {
		seen[p] = struct{}{}
	}
	if len(signals) != SignalCount || len(seen) != SignalCount {
		return nil, &CandidateError{Step: StepInput, Digit: -1, Found: len(seen)}
	}
	return &Resolver{
		signals: append([]segment.Pattern(nil), signals...),
		trace:   make([]TraceStep, 0, len(pipeline)+3),
	}, nil
}

// Resolve 对一个单元的 10 个参考 Pattern 执行完整推导。
func Resolve(signals []segment.Pattern) (Mapping, error) {
	m, _, err := ResolveTrace(signals)
	return m, err
}

// ResolveTrace 与 Resolve 相同，但额外返回每一步的选择。失败时 trace 包含已完成的步骤。
func ResolveTrace(signals []segment.Pattern) (Mapping, []TraceStep, error) {
	r, err := NewResolver(signals)
	if err != nil {
		return Mapping{}, nil, err
	}
	return r.Run()
}

// Run 按 pipeline 顺序执行全部步骤。
func (r *Resolver) Run() (Mapping, []TraceStep, error) {
	for _, st := range pipeline {
		if err := st.fn(r); err != nil {
			return Mapping{}, r.trace, err
		}
	}
	return Mapping{byDigit: r.byDigit}, r.trace, nil
}

func (r *Resolver) stepUnique() error {
	for _, u := range []struct{ length, digit int }{
		{2, 1},
		{3, 7},
		{4, 4},
		{7, 8},
	} {
		n := u.length
		if err := r.pick(StepUnique, u.digit, func(p segment.Pattern) bool { return p.Len() == n }); err != nil {
			return err
		}
	}
	return nil
}

// 3 是唯一包含 1 的 5 段数字。
func (r *Resolver) stepThree() error {
	one := r.byDigit[1]
	return r.pick(StepThree, 3, func(p segment.Pattern) bool {
		return p.Len() == 5 && p.ContainsAll(one)
	})
}

// 9 是唯一同时包含 3 与 4 的 6 段数字。
func (r *Resolver) stepNine() error {
	three, four := r.byDigit[3], r.byDigit[4]
	return r.pick(StepNine, 9, func(p segment.Pattern) bool {
		return p.Len() == 6 && p.ContainsAll(three) && p.ContainsAll(four)
	})
}

func (r *Resolver) stepDiscriminator() error {
	e := r.byDigit[8].Difference(r.byDigit[4]).Difference(r.byDigit[3])
	if e.Len() != 1 {
		return &CandidateError{Step: StepDiscriminator, Digit: -1, Found: e.Len()}
	}
	r.e = e
	r.trace = append(r.trace, TraceStep{Step: StepDiscriminator, Digit: -1, Pattern: e})
	return nil
}

// 2 是剩余 5 段数字中包含判别段的那一个。
func (r *Resolver) stepTwo() error {
	e := r.e
	return r.pick(StepTwo, 2, func(p segment.Pattern) bool {
		return p.Len() == 5 && p.ContainsAll(e)
	})
}

func (r *Resolver) stepFive() error {
	return r.pick(StepFive, 5, func(p segment.Pattern) bool { return p.Len() == 5 })
}

// 0 是剩余 6 段数字中包含 7 的那一个（6 不包含 7）。
func (r *Resolver) stepZero() error {
	seven := r.byDigit[7]
	return r.pick(StepZero, 0, func(p segment.Pattern) bool {
		return p.Len() == 6 && p.ContainsAll(seven)
	})
}

func (r *Resolver) stepSix() error {
	return r.pick(StepSix, 6, func(p segment.Pattern) bool { return p.Len() == 6 })
}

// pick 在未分配的 Pattern 中查找恰好一个满足 pred 的候选，并把它分配给 digit。
func (r *Resolver) pick(step string, digit int, pred func(segment.Pattern) bool) error {
	found, idx := 0, -1
	for i, p := range r.signals {
		if r.used[i] || !pred(p) {
			continue
		}
		found++
		idx = i
	}
	if found != 1 {
		return &CandidateError{Step: step, Digit: digit, Found: found}
	}
	r.used[idx] = true
	r.byDigit[digit] = r.signals[idx]
	r.trace = append(r.trace, TraceStep{Step: step, Digit: digit, Pattern: r.signals[idx]})
	return nil
}
