package xmlevent

import "unicode/utf8"

// isValidXMLChar reports whether r is a valid XML 1.0 character.
// Per XML 1.0 spec section 2.2, Char excludes most control codes.
func isValidXMLChar(r rune) bool {
	switch {
	case r == 0x9 || r == 0xA || r == 0xD:
		return true
	case r >= 0x20 && r <= 0xD7FF:
		return true
	case r >= 0xE000 && r <= 0xFFFD:
		return true
	case r >= 0x10000 && r <= 0x10FFFF:
		return true
	default:
		return false
	}
}

var whitespaceLUT = [256]bool{
	'\t': true,
	'\n': true,
	'\r': true,
	' ':  true,
}

func isWhitespace(b byte) bool {
	return whitespaceLUT[b]
}

// checkChars validates that data decodes to XML characters only.
func checkChars(data []byte) error {
	for i := 0; i < len(data); {
		r, size := utf8.DecodeRune(data[i:])
		if r == utf8.RuneError && size == 1 {
			return ErrInvalidUTF8
		}
		if !isValidXMLChar(r) {
			return ErrInvalidChar
		}
		i += size
	}
	return nil
}

func trimWhitespace(data []byte) []byte {
	start := 0
	for start < len(data) && isWhitespace(data[start]) {
		start++
	}
	end := len(data)
	for end > start && isWhitespace(data[end-1]) {
		end--
	}
	return data[start:end]
}
