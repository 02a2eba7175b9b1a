package verdict

import "unicode/utf8"

// MaxTextRunes bounds the item text carried by a Decision.
const MaxTextRunes = 280

// TruncateText cuts s to MaxTextRunes runes, appending an ellipsis when cut.
func TruncateText(s string) string {
	if utf8.RuneCountInString(s) <= MaxTextRunes {
		return s
	}
	runes := []rune(s)
	return string(runes[:MaxTextRunes]) + "…"
}
