package domain

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// PuzzleRef 标识一道远程题目（year/day），也是输入缓存的主键。
type PuzzleRef struct {
	Year int
	Day  int
}

var refRE = regexp.MustCompile(`^([0-9]{4})[/-]([0-9]{1,2})$`)

// ParseRef 解析 "2021/8" 或 "2021-08" 形态的引用。
func ParseRef(s string) (PuzzleRef, bool) {
	m := refRE.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return PuzzleRef{}, false
	}
	y, _ := strconv.Atoi(m[1])
	d, _ := strconv.Atoi(m[2])
	r := PuzzleRef{Year: y, Day: d}
	return r, r.Valid()
}

// Valid 检查 day 落在 1..25 且 year 不早于 2015。
func (r PuzzleRef) Valid() bool {
	return r.Year >= 2015 && r.Day >= 1 && r.Day <= 25
}

// String 返回 "2021-08"，可直接用作缓存文件名。
func (r PuzzleRef) String() string {
	return fmt.Sprintf("%04d-%02d", r.Year, r.Day)
}
