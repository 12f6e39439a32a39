package models

import (
	"fmt"
	"strconv"
	"strings"
)

// NextCode returns the code following last for the given prefix. Numbers are
// zero padded to three digits and keep growing past 999 (M999, M1000).
func NextCode(prefix, last string) string {
	next := 1
	if strings.HasPrefix(last, prefix) {
		if n, err := strconv.Atoi(strings.TrimPrefix(last, prefix)); err == nil && n >= 1 {
			next = n + 1
		}
	}
	return fmt.Sprintf("%s%03d", prefix, next)
}
