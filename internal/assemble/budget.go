package assemble

import "unicode/utf8"

// Budget accounts characters against a fixed limit. Lines are joined with a
// newline, so every accepted line after the first also spends one character
// on its separator.
type Budget struct {
	Limit int
	Used  int
}

// Cost returns what accepting line would spend.
func (b Budget) Cost(line string) int {
	n := utf8.RuneCountInString(line)
	if b.Used > 0 {
		n++
	}
	return n
}

// Accept spends line against the budget if it fits and reports whether it
// did. A line that does not fit leaves the budget untouched.
func (b *Budget) Accept(line string) bool {
	cost := b.Cost(line)
	if b.Used+cost > b.Limit {
		return false
	}
	b.Used += cost
	return true
}

// Remaining returns the unspent characters.
func (b Budget) Remaining() int {
	return max(b.Limit-b.Used, 0)
}

// Truncate cuts s to at most n characters, marking a cut with "...".
func Truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	if n <= len(ellipsis) {
		return string(r[:max(n, 0)])
	}
	return string(r[:n-len(ellipsis)]) + ellipsis
}

const ellipsis = "..."
