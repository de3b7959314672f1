package deduce

import "github.com/John-Robertt/segdecode/internal/segment"

// Mapping 是单个显示单元内 Pattern 与数字 0..9 的双射。
// 只能由 Resolve 构造；构造完成后不可变。
type Mapping struct {
	byDigit [10]segment.Pattern
}

// Pattern 返回数字 d 对应的 Pattern；d 越界时返回 (0, false)。
func (m Mapping) Pattern(d int) (segment.Pattern, bool) {
	if d < 0 || d > 9 {
		return 0, false
	}
	return m.byDigit[d], true
}

// Digit 按集合相等查找 p 对应的数字。
func (m Mapping) Digit(p segment.Pattern) (int, bool) {
	for d, q := range m.byDigit {
		if q.Equal(p) {
			return d, true
		}
	}
	return 0, false
}

// Patterns 返回按数字顺序排列的 10 个 Pattern（副本）。
func (m Mapping) Patterns() [10]segment.Pattern { return m.byDigit }
