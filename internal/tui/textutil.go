package tui

import "github.com/mattn/go-runewidth"

// truncateEnd shortens s to at most limit terminal cells, appending an
// ellipsis if truncation occurs.
func truncateEnd(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	return runewidth.Truncate(s, limit, "…")
}

// truncateMiddle keeps both ends of s and puts a single ellipsis in the
// middle. Used for links where host and path tail both matter.
func truncateMiddle(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) <= limit {
		return s
	}
	if limit <= 1 {
		return "…"
	}
	r := []rune(s)
	keep := limit - 1
	left := keep / 2
	right := keep - left
	if right > len(r) {
		right = len(r)
	}
	return string(r[:left]) + "…" + string(r[len(r)-right:])
}
