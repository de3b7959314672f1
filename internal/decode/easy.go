package decode

import "github.com/John-Robertt/segdecode/internal/segment"

// CountEasy 统计段数唯一的输出（1/7/4/8，即 2/3/4/7 段）。不需要推导映射。
func CountEasy(outputs []segment.Pattern) int {
	n := 0
	for _, p := range outputs {
		switch p.Len() {
		case 2, 3, 4, 7:
			n++
		}
	}
	return n
}
