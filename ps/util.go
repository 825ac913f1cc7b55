package ps

import (
	"strings"

	"github.com/tdewolff/parse/v2"
)

func isIdentChar(c byte) bool {
	return 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z' || '0' <= c && c <= '9' || c == '_'
}

// isWordOp returns true for dash operators such as -eq, -and or -not.
func isWordOp(op string) bool {
	return 1 < len(op) && op[0] == '-' && ('a' <= op[1] && op[1] <= 'z' || 'A' <= op[1] && op[1] <= 'Z')
}

// needsSpaceAfter returns true when c cannot directly follow a keyword. Delimiters, quotes and
// separators end the preceding token on their own.
func needsSpaceAfter(c byte) bool {
	switch c {
	case 0, '(', ')', '{', '}', '[', ']', '\'', '"', ',', ';', '|':
		return false
	}
	return !parse.IsWhitespace(c)
}

// isOperandStart returns true when c would merge with a preceding dash operator such as -eq1.
func isOperandStart(c byte) bool {
	return isIdentChar(c) || c == '-' || c == '.' || c == '?'
}

// stripWhitespace removes all whitespace, as in type names like [System.Collections.Generic.List[ string ]].
func stripWhitespace(s string) string {
	if strings.IndexFunc(s, func(r rune) bool { return r < 0x80 && parse.IsWhitespace(byte(r)) }) == -1 {
		return s
	}
	b := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		if !parse.IsWhitespace(s[i]) {
			b = append(b, s[i])
		}
	}
	return string(b)
}

// isSimpleName returns true when a variable name can be written without braces.
func isSimpleName(name string) bool {
	if name == "" {
		return false
	}
	for i := 0; i < len(name); i++ {
		if !isIdentChar(name[i]) {
			return false
		}
	}
	return true
}

// isBraced returns true for a raw ${name} variable reference.
func isBraced(raw string) bool {
	return 2 < len(raw) && raw[0] == '$' && raw[1] == '{'
}
