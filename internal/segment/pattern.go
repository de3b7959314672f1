package segment

import (
	"fmt"
	"math/bits"
	"strings"
)

// Alphabet 是固定的 7 段标签；Pattern 的第 i 位对应 Alphabet[i]。
const Alphabet = "abcdefg"

// Pattern 是一组被点亮的段（位集）。
//
// 与输入顺序/重复无关：Parse("ab") == Parse("ba") == Parse("abb")。
// 值类型，可直接用 == 比较，也可作为 map key。
type Pattern uint8

// MalformedError 表示 token 为空或含字母表外的符号。
type MalformedError struct {
	Token string
	// Symbol 为首个非法符号；空 token 时为 0。
	Symbol rune
}

func (e *MalformedError) Error() string {
	if e.Symbol == 0 {
		return "空的段组合"
	}
	return fmt.Sprintf("段组合 %q 含非法符号 %q（只允许 %s）", e.Token, e.Symbol, Alphabet)
}

// Parse 把原始 token 规范化为 Pattern。
func Parse(raw string) (Pattern, error) {
	if raw == "" {
		return 0, &MalformedError{Token: raw}
	}
	var p Pattern
	for _, r := range raw {
		i := strings.IndexRune(Alphabet, r)
		if i < 0 {
			return 0, &MalformedError{Token: raw, Symbol: r}
		}
		p |= 1 << i
	}
	return p, nil
}

// MustParse 用于测试与常量表；非法输入直接 panic。
func MustParse(raw string) Pattern {
	p, err := Parse(raw)
	if err != nil {
		panic(err)
	}
	return p
}

// ParseAll 依次规范化 tokens；遇到第一个非法 token 即返回其下标与错误。
func ParseAll(tokens []string) ([]Pattern, int, error) {
	out := make([]Pattern, 0, len(tokens))
	for i, t := range tokens {
		p, err := Parse(t)
		if err != nil {
			return nil, i, err
		}
		out = append(out, p)
	}
	return out, -1, nil
}

// Len 返回点亮的段数。
func (p Pattern) Len() int { return bits.OnesCount8(uint8(p)) }

// ContainsAll 判断 other 是否为 p 的子集。
func (p Pattern) ContainsAll(other Pattern) bool { return p&other == other }

// Difference 返回在 p 中但不在 other 中的段。
func (p Pattern) Difference(other Pattern) Pattern { return p &^ other }

func (p Pattern) Equal(other Pattern) bool { return p == other }

// String 按字母序输出规范形式，例如 "abdf"。
func (p Pattern) String() string {
	var b strings.Builder
	b.Grow(len(Alphabet))
	for i := 0; i < len(Alphabet); i++ {
		if p&(1<<i) != 0 {
			b.WriteByte(Alphabet[i])
		}
	}
	return b.String()
}
