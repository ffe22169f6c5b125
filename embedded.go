package pricewatch

import "strings"

// ExtractAssignedJSON finds a JavaScript assignment such as
// "window.productJSON = {...};" inside doc and returns the object literal
// assigned after marker. Braces inside string literals and escaped quotes are
// skipped, so the returned text is balanced. Reports false if the marker is
// missing, is not followed by an object, or the object is never closed.
func ExtractAssignedJSON(doc, marker string) (string, bool) {
	idx := strings.Index(doc, marker)
	if idx < 0 {
		return "", false
	}
	rest := strings.TrimLeft(doc[idx+len(marker):], " \t\r\n")
	if !strings.HasPrefix(rest, "{") {
		return "", false
	}

	depth := 0
	var quote byte
	escaped := false
	for i := 0; i < len(rest); i++ {
		c := rest[i]
		if quote != 0 {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == quote:
				quote = 0
			}
			continue
		}
		switch c {
		case '"', '\'':
			quote = c
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return rest[:i+1], true
			}
		}
	}
	return "", false
}
