package provider

import (
	"fmt"
	"strings"

	"github.com/John-Robertt/segdecode/internal/domain"
)

// DefaultBaseURL 是题目站点的根地址。
const DefaultBaseURL = "https://adventofcode.com"

// DayURL 返回 "<base>/<year>/day/<day>"（day 不补零）。
func DayURL(base string, ref domain.PuzzleRef) string {
	base = strings.TrimRight(strings.TrimSpace(base), "/")
	if base == "" {
		base = DefaultBaseURL
	}
	return fmt.Sprintf("%s/%d/day/%d", base, ref.Year, ref.Day)
}
