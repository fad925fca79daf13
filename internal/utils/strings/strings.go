package strings

import (
	"strings"
	"unicode/utf8"

	"github.com/mattn/go-runewidth"
	"github.com/mitchellh/go-wordwrap"
)

// WrapLines word wraps v to maxWidth display cells. Words longer than the limit are split.
func WrapLines(v string, maxWidth int) []string {
	if maxWidth <= 0 {
		return strings.Split(v, "\n")
	}
	strs := strings.Split(wordwrap.WrapString(v, uint(maxWidth)), "\n")
	res := make([]string, 0, len(strs))
	for _, s := range strs {
		for runewidth.StringWidth(s) > maxWidth {
			head := runewidth.Truncate(s, maxWidth, "")
			if head == "" {
				_, size := utf8.DecodeRuneInString(s)
				head = s[:size]
			}
			res = append(res, head)
			s = s[len(head):]
		}
		res = append(res, s)
	}
	return res
}

func WrapString(v string, maxWidth int) string {
	return strings.Join(WrapLines(v, maxWidth), "\n")
}
