package deduce

import "fmt"

// 推导步骤名，写入 CandidateError.Step 与 report 的 step 字段。
const (
	StepInput         = "input"
	StepUnique        = "unique_length"
	StepThree         = "three"
	StepNine          = "nine"
	StepDiscriminator = "discriminator"
	StepTwo           = "two"
	StepFive          = "five"
	StepZero          = "zero"
	StepSix           = "six"
)

// CandidateError 表示某一步的候选数不是恰好 1 个。
// 这意味着输入的 10 个 Pattern 不构成一套完整的七段数字。
type CandidateError struct {
	Step string
	// Digit 为该步要确定的数字；input/discriminator 步骤为 -1。
	Digit int
	// Found 为满足谓词的候选数（discriminator 步骤为差集的段数）。
	Found int
}

func (e *CandidateError) Error() string {
	switch e.Step {
	case StepInput:
		return fmt.Sprintf("推导失败（%s）：需要 10 个互不相同的段组合，实际有效 %d 个", e.Step, e.Found)
	case StepDiscriminator:
		return fmt.Sprintf("推导失败（%s）：8-4-3 应恰好剩 1 段，实际 %d 段", e.Step, e.Found)
	}
	if e.Found == 0 {
		return fmt.Sprintf("推导失败（%s）：数字 %d 没有候选", e.Step, e.Digit)
	}
	return fmt.Sprintf("推导失败（%s）：数字 %d 有 %d 个候选（ambiguous）", e.Step, e.Digit, e.Found)
}
