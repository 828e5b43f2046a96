package xmlevent

// Kind identifies the structural kind of an event.
type Kind uint8

const (
	KindNone Kind = iota
	KindStart
	KindEmpty
	KindEnd
	KindText
	KindComment
	KindCData
	KindPI
	KindDocType
	KindDecl
	KindEOF
)

// String returns a stable name for the kind, suitable for debugging.
func (k Kind) String() string {
	switch k {
	case KindNone:
		return "None"
	case KindStart:
		return "Start"
	case KindEmpty:
		return "Empty"
	case KindEnd:
		return "End"
	case KindText:
		return "Text"
	case KindComment:
		return "Comment"
	case KindCData:
		return "CDATA"
	case KindPI:
		return "PI"
	case KindDocType:
		return "DocType"
	case KindDecl:
		return "Decl"
	case KindEOF:
		return "EOF"
	default:
		return "Unknown"
	}
}

// Event is one structural unit of the document.
//
// Non-trivial events carry views into the reader's buffer: they are valid
// until the next call to Next. A caller that needs to retain text across
// pulls must copy it out, for example via TextView.String or
// Attr.UnescapeValueString.
type Event struct {
	tag   Tag
	text  TextView
	decl  Decl
	depth int
	kind  Kind
}

// Kind reports the event kind.
func (e *Event) Kind() Kind {
	return e.kind
}

// Depth reports the number of open enclosing elements, not counting the
// event's own element.
func (e *Event) Depth() int {
	return e.depth
}

// Tag returns the tag view for Start, Empty, and End events, nil otherwise.
func (e *Event) Tag() *Tag {
	switch e.kind {
	case KindStart, KindEmpty, KindEnd:
		return &e.tag
	}
	return nil
}

// Text returns the text view for Text, Comment, CDATA, PI, and DocType
// events, nil otherwise.
func (e *Event) Text() *TextView {
	switch e.kind {
	case KindText, KindComment, KindCData, KindPI, KindDocType:
		return &e.text
	}
	return nil
}

// Decl returns the declaration view for Decl events, nil otherwise.
func (e *Event) Decl() *Decl {
	if e.kind == KindDecl {
		return &e.decl
	}
	return nil
}

// Tag is a borrowed view of a start, empty, or end tag.
type Tag struct {
	r        *Reader
	name     []byte
	prefix   []byte
	local    []byte
	attrData []byte
	ns       string
}

// Name returns the qualified tag name, prefix included.
func (t *Tag) Name() []byte {
	return t.name
}

// LocalName returns the tag name after any prefix.
func (t *Tag) LocalName() []byte {
	return t.local
}

// Prefix returns the raw namespace prefix, or nil when the name has none.
func (t *Tag) Prefix() []byte {
	return t.prefix
}

// Namespace returns the resolved namespace URI, or the empty string when
// the tag is in no namespace or its prefix is unbound.
func (t *Tag) Namespace() string {
	return t.ns
}

// Attributes returns a fresh cursor over the tag's attributes.
// Only Start and Empty events carry attributes; the cursor is empty for End.
func (t *Tag) Attributes() *Attributes {
	return &Attributes{r: t.r, data: t.attrData}
}

// TextView is a borrowed view of character data, a comment, a CDATA
// section, a processing instruction, or a doctype body.
type TextView struct {
	data     []byte
	entities bool
}

// Raw returns the undecoded bytes, escaping intact.
func (v *TextView) Raw() []byte {
	return v.data
}

// Unescape returns the decoded text in a freshly allocated slice, safe to
// retain across pulls. Entity references are resolved for character data
// only; CDATA, comments, and the other literal kinds are copied as is.
func (v *TextView) Unescape() ([]byte, error) {
	if !v.entities {
		if err := validUTF8(v.data); err != nil {
			return nil, err
		}
		out := make([]byte, len(v.data))
		copy(out, v.data)
		return out, nil
	}
	return AppendUnescape(nil, v.data)
}

// String returns the decoded text as a string, validating UTF-8.
func (v *TextView) String() (string, error) {
	out, err := v.Unescape()
	if err != nil {
		return "", err
	}
	return string(out), nil
}
