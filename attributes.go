package xmlevent

import (
	"bytes"

	"github.com/jacoelho/xmlevent/internal/scan"
)

// Attr is one attribute of a start or empty tag. Key and Value borrow the
// reader's buffer; Value keeps its original escaping.
type Attr struct {
	r     *Reader
	Key   []byte
	Value []byte
	Quote byte
}

// Prefix returns the raw namespace prefix of the key, or nil.
func (a Attr) Prefix() []byte {
	prefix, _ := scan.SplitQName(a.Key)
	return prefix
}

// LocalKey returns the key after any prefix.
func (a Attr) LocalKey() []byte {
	_, local := scan.SplitQName(a.Key)
	return local
}

// Namespace resolves the attribute's namespace URI. Unprefixed attributes
// are in no namespace; the default namespace does not apply to them.
func (a Attr) Namespace() (string, error) {
	prefix, _ := scan.SplitQName(a.Key)
	if bytes.Equal(a.Key, xmlnsLiteral) || string(prefix) == "xmlns" {
		return xmlnsNamespace, nil
	}
	if len(prefix) == 0 {
		return "", nil
	}
	if a.r == nil {
		return "", ErrUnboundPrefix
	}
	uri, ok := a.r.ns.lookup(prefix)
	if !ok {
		return "", ErrUnboundPrefix
	}
	return uri, nil
}

// UnescapeValue returns the decoded value in a freshly allocated slice.
func (a Attr) UnescapeValue() ([]byte, error) {
	return AppendUnescape(nil, a.Value)
}

// UnescapeValueString returns the decoded value as a string.
func (a Attr) UnescapeValueString() (string, error) {
	out, err := a.UnescapeValue()
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// Attributes walks a tag's attributes left to right:
//
//	attrs := tag.Attributes()
//	for attrs.Next() {
//		a := attrs.Attr()
//	}
//	if err := attrs.Err(); err != nil { ... }
//
// The cursor does not unescape values; decoding is an explicit step on the
// returned Attr. Obtaining a new cursor from the tag restarts the walk.
type Attributes struct {
	r    *Reader
	data []byte
	err  error
	attr Attr
	seen attrSeen
	pos  int
}

// Next advances to the next attribute. It returns false at the end of the
// tag or on the first error.
func (it *Attributes) Next() bool {
	if it.err != nil {
		return false
	}
	raw, next, ok, err := nextRawAttr(it.data, it.pos)
	if err != nil {
		it.err = err
		return false
	}
	if !ok {
		return false
	}
	it.pos = next
	if !it.seen.insert(raw.key) {
		it.err = ErrDuplicateAttribute
		return false
	}
	if it.r != nil && it.r.opts.maxAttrs > 0 && it.seen.n > it.r.opts.maxAttrs {
		it.err = ErrAttrLimit
		return false
	}
	it.attr = Attr{r: it.r, Key: raw.key, Value: raw.value, Quote: raw.quote}
	return true
}

// Attr returns the attribute produced by the last successful Next.
func (it *Attributes) Attr() Attr {
	return it.attr
}

// Err returns the error that stopped the walk, if any.
func (it *Attributes) Err() error {
	return it.err
}

type rawAttr struct {
	key   []byte
	value []byte
	quote byte
}

// nextRawAttr scans one key="value" pair starting at pos. ok is false with a
// nil error at the end of the attribute bytes.
func nextRawAttr(data []byte, pos int) (rawAttr, int, bool, error) {
	for pos < len(data) && scan.IsSpace(data[pos]) {
		pos++
	}
	if pos >= len(data) {
		return rawAttr{}, pos, false, nil
	}
	if !scan.IsNameStartByte(data[pos]) {
		return rawAttr{}, pos, false, ErrMalformedAttribute
	}
	keyStart := pos
	for pos < len(data) && scan.IsNameByte(data[pos]) {
		pos++
	}
	key := data[keyStart:pos]
	for pos < len(data) && scan.IsSpace(data[pos]) {
		pos++
	}
	if pos >= len(data) || data[pos] != '=' {
		return rawAttr{}, pos, false, ErrMalformedAttribute
	}
	pos++
	for pos < len(data) && scan.IsSpace(data[pos]) {
		pos++
	}
	if pos >= len(data) {
		return rawAttr{}, pos, false, ErrMalformedAttribute
	}
	quote := data[pos]
	if quote != '\'' && quote != '"' {
		return rawAttr{}, pos, false, ErrMalformedAttribute
	}
	pos++
	end := bytes.IndexByte(data[pos:], quote)
	if end < 0 {
		return rawAttr{}, pos, false, ErrMalformedAttribute
	}
	value := data[pos : pos+end]
	pos += end + 1
	if pos < len(data) && !scan.IsSpace(data[pos]) {
		return rawAttr{}, pos, false, ErrMalformedAttribute
	}
	return rawAttr{key: key, value: value, quote: quote}, pos, true, nil
}

const attrSeenSmallMax = 8

// attrSeen tracks keys already produced for one tag. Small tags stay on a
// fixed array; larger ones spill to a map.
type attrSeen struct {
	small [attrSeenSmallMax][]byte
	m     map[string]struct{}
	n     int
}

// insert records key and reports whether it was unseen.
func (s *attrSeen) insert(key []byte) bool {
	for i := 0; i < s.n && i < attrSeenSmallMax; i++ {
		if bytes.Equal(s.small[i], key) {
			return false
		}
	}
	if s.n < attrSeenSmallMax {
		s.small[s.n] = key
		s.n++
		return true
	}
	if s.m == nil {
		s.m = make(map[string]struct{}, attrSeenSmallMax*2)
	}
	if _, dup := s.m[string(key)]; dup {
		return false
	}
	s.m[string(key)] = struct{}{}
	s.n++
	return true
}
