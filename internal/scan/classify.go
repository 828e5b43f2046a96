package scan

import "bytes"

// Form further classifies a tag span.
type Form uint8

const (
	FormStart Form = iota
	FormEmpty
	FormEnd
)

// String returns a stable name for the form, suitable for debugging.
func (f Form) String() string {
	switch f {
	case FormStart:
		return "Start"
	case FormEmpty:
		return "Empty"
	case FormEnd:
		return "End"
	default:
		return "Unknown"
	}
}

var litXML = []byte("xml")

// ClassifyTag splits a raw tag span into its form, qualified name, and
// attribute bytes. data must include the surrounding angle brackets.
// The returned slices alias data; nothing is copied.
func ClassifyTag(data []byte) (Form, []byte, []byte, error) {
	inner := data[1 : len(data)-1]
	form := FormStart
	if len(inner) > 0 && inner[0] == '/' {
		form = FormEnd
		inner = inner[1:]
	} else if n := len(inner); n > 0 && inner[n-1] == '/' {
		form = FormEmpty
		inner = inner[:n-1]
	}
	name, rest, err := splitTagName(inner)
	if err != nil {
		return 0, nil, nil, err
	}
	if form == FormEnd && len(trimLeftSpace(rest)) > 0 {
		return 0, nil, nil, ErrMalformedMarkup
	}
	return form, name, rest, nil
}

func splitTagName(inner []byte) (name, rest []byte, err error) {
	if len(inner) == 0 || !IsNameStartByte(inner[0]) {
		return nil, nil, ErrInvalidName
	}
	i := 1
	for i < len(inner) && IsNameByte(inner[i]) {
		i++
	}
	name = inner[:i]
	rest = inner[i:]
	if len(rest) > 0 && !IsSpace(rest[0]) {
		return nil, nil, ErrInvalidName
	}
	if c := bytes.IndexByte(name, ':'); c >= 0 {
		if c == 0 || c == len(name)-1 || bytes.IndexByte(name[c+1:], ':') >= 0 {
			return nil, nil, ErrInvalidName
		}
	}
	return name, rest, nil
}

// SplitQName splits a qualified name into its raw prefix and local part.
// The prefix is nil when the name carries none.
func SplitQName(name []byte) (prefix, local []byte) {
	if c := bytes.IndexByte(name, ':'); c >= 0 {
		return name[:c], name[c+1:]
	}
	return nil, name
}

// SplitPI returns the target of a processing instruction span.
// data must include the <? and ?> delimiters.
func SplitPI(data []byte) (target, rest []byte, err error) {
	inner := data[2 : len(data)-2]
	if len(inner) == 0 || !IsNameStartByte(inner[0]) {
		return nil, nil, ErrInvalidName
	}
	i := 1
	for i < len(inner) && IsNameByte(inner[i]) {
		i++
	}
	target = inner[:i]
	rest = trimLeftSpace(inner[i:])
	return target, rest, nil
}

// PIText returns the full content of a processing instruction span,
// target included, without the delimiters.
func PIText(data []byte) []byte {
	return data[2 : len(data)-2]
}

// IsDecl reports whether a processing instruction target is the XML
// declaration.
func IsDecl(target []byte) bool {
	return bytes.EqualFold(target, litXML)
}

// CommentText returns the comment body without the <!-- --> delimiters.
func CommentText(data []byte) []byte {
	return data[len(litCommentStart) : len(data)-len(litCommentEnd)]
}

// CDATAText returns the CDATA body without the <![CDATA[ ]]> delimiters.
func CDATAText(data []byte) []byte {
	return data[len(litCDATAStart) : len(data)-len(litCDATAEnd)]
}

var litDoctype = []byte("DOCTYPE")

// DoctypeText returns the doctype body after the DOCTYPE keyword.
func DoctypeText(data []byte) ([]byte, error) {
	inner := data[2 : len(data)-1]
	if len(inner) < len(litDoctype) || !bytes.EqualFold(inner[:len(litDoctype)], litDoctype) {
		return nil, ErrMalformedMarkup
	}
	return trimLeftSpace(inner[len(litDoctype):]), nil
}

func trimLeftSpace(data []byte) []byte {
	i := 0
	for i < len(data) && IsSpace(data[i]) {
		i++
	}
	return data[i:]
}
