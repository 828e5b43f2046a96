package xmlevent

import (
	"bytes"
	"unicode/utf8"
)

var predefinedEntities = map[string]string{
	"lt":   "<",
	"gt":   ">",
	"amp":  "&",
	"apos": "'",
	"quot": "\"",
}

// Unescape decodes the five predefined entities and numeric character
// references in data. When data contains no references it is returned
// unchanged without copying; Unescape is therefore idempotent on plain
// text and is never applied twice.
func Unescape(data []byte) ([]byte, error) {
	if err := validUTF8(data); err != nil {
		return nil, err
	}
	if bytes.IndexByte(data, '&') < 0 {
		return data, nil
	}
	return appendUnescape(make([]byte, 0, len(data)), data)
}

// AppendUnescape appends the decoded form of data to dst. The result never
// aliases data, so it is safe to retain across pulls.
func AppendUnescape(dst, data []byte) ([]byte, error) {
	if err := validUTF8(data); err != nil {
		return nil, err
	}
	return appendUnescape(dst, data)
}

// UnescapeString decodes data into a string.
func UnescapeString(data []byte) (string, error) {
	out, err := Unescape(data)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func appendUnescape(dst, data []byte) ([]byte, error) {
	for i := 0; i < len(data); {
		if data[i] != '&' {
			dst = append(dst, data[i])
			i++
			continue
		}
		consumed, replacement, r, numeric, err := parseReference(data[i:])
		if err != nil {
			return nil, err
		}
		if numeric {
			dst = utf8.AppendRune(dst, r)
		} else {
			dst = append(dst, replacement...)
		}
		i += consumed
	}
	return dst, nil
}

// parseReference parses one reference at data[0] == '&'. It returns the
// consumed byte count and either a replacement string (named entity) or a
// rune (numeric reference).
func parseReference(data []byte) (int, string, rune, bool, error) {
	semi := bytes.IndexByte(data, ';')
	if semi < 2 {
		return 0, "", 0, false, ErrUnknownEntity
	}
	ref := data[1:semi]
	if ref[0] == '#' {
		r, err := parseCharRef(ref)
		if err != nil {
			return 0, "", 0, false, err
		}
		return semi + 1, "", r, true, nil
	}
	replacement, ok := predefinedEntities[string(ref)]
	if !ok {
		return 0, "", 0, false, ErrUnknownEntity
	}
	return semi + 1, replacement, 0, false, nil
}

func parseCharRef(ref []byte) (rune, error) {
	if len(ref) < 2 {
		return 0, ErrInvalidCharRef
	}
	base := 10
	start := 1
	if ref[1] == 'x' || ref[1] == 'X' {
		base = 16
		start = 2
	}
	if start >= len(ref) {
		return 0, ErrInvalidCharRef
	}
	var value uint64
	for i := start; i < len(ref); i++ {
		b := ref[i]
		var digit byte
		switch {
		case b >= '0' && b <= '9':
			digit = b - '0'
		case base == 16 && b >= 'a' && b <= 'f':
			digit = b - 'a' + 10
		case base == 16 && b >= 'A' && b <= 'F':
			digit = b - 'A' + 10
		default:
			return 0, ErrInvalidCharRef
		}
		value = value*uint64(base) + uint64(digit)
		if value > utf8.MaxRune {
			return 0, ErrInvalidCharRef
		}
	}
	r := rune(value)
	if r == 0 || (r >= 0xD800 && r <= 0xDFFF) || !isValidXMLChar(r) {
		return 0, ErrInvalidCharRef
	}
	return r, nil
}

func validUTF8(data []byte) error {
	if !utf8.Valid(data) {
		return ErrInvalidUTF8
	}
	return nil
}
