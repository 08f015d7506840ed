package flashcard

import "unicode"

// Hint masks every letter of back except the first letter of each word.
// Digits, punctuation and spaces are kept.
func Hint(back string) string {
	out := make([]rune, 0, len(back))
	inWord := false
	for _, r := range back {
		switch {
		case unicode.IsLetter(r):
			if inWord {
				out = append(out, '_')
			} else {
				out = append(out, r)
			}
			inWord = true
		case unicode.IsDigit(r) || r == '\'' || r == '-':
			out = append(out, r)
		default:
			out = append(out, r)
			inWord = false
		}
	}
	return string(out)
}
