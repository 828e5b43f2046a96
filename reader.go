package xmlevent

import (
	"io"
	"os"

	"github.com/jacoelho/xmlevent/internal/scan"
)

// Reader pulls structural events from an XML byte stream. It is not safe
// for concurrent use; nothing is shared across reader instances.
type Reader struct {
	sc   *scan.Scanner
	err  error
	file *os.File
	opts readerOptions

	ns    nsStack
	elems []string

	pendingEndTag   Tag
	pendingEndDepth int
	pendingEnd      bool
	pendingPop      bool
	started         bool
	charsetDone     bool
}

// Open creates a reader over the named file. Close releases it.
func Open(path string, opts ...Option) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	r := NewReader(f, opts...)
	r.file = f
	return r, nil
}

// NewReader creates a reader over src.
func NewReader(src io.Reader, opts ...Option) *Reader {
	r := &Reader{}
	r.Reset(src, opts...)
	return r
}

// Reset prepares the reader for a new input stream. A reader previously
// obtained from Open keeps owning (and must still Close) its file.
func (r *Reader) Reset(src io.Reader, opts ...Option) {
	options, cfg := resolveOptions(JoinOptions(opts...))
	if r.sc == nil {
		r.sc = scan.NewScanner(src, cfg)
	} else {
		r.sc.Reset(src, cfg)
	}
	r.opts = options
	r.err = nil
	r.ns = nsStack{}
	r.elems = r.elems[:0]
	r.pendingEnd = false
	r.pendingEndTag = Tag{}
	r.pendingEndDepth = 0
	r.pendingPop = false
	r.started = false
	r.charsetDone = false
}

// Close releases the file owned by a reader obtained from Open.
func (r *Reader) Close() error {
	if r.file == nil {
		return nil
	}
	f := r.file
	r.file = nil
	return f.Close()
}

// Depth reports the number of currently open elements.
func (r *Reader) Depth() int {
	return len(r.elems)
}

// Position reports the current absolute offset and, when position tracking
// is enabled, the 1-based line and column.
func (r *Reader) Position() (offset int64, line, column int) {
	return r.sc.Position()
}

// Next returns the next event.
//
// Views carried by the event are valid until the following Next call.
// Exactly one KindEOF event terminates a well-formed sequence; afterwards
// Next keeps returning io.EOF. Structural errors are terminal for the
// reader. ErrUnboundPrefix is returned together with a usable event, and
// the caller may keep pulling.
func (r *Reader) Next() (Event, error) {
	if r.err != nil {
		return Event{}, r.err
	}
	if r.pendingEnd {
		r.pendingEnd = false
		ev := Event{kind: KindEnd, tag: r.pendingEndTag, depth: r.pendingEndDepth}
		r.elems = r.elems[:len(r.elems)-1]
		r.ns.pop()
		return ev, nil
	}
	if r.pendingPop {
		r.ns.pop()
		r.pendingPop = false
	}
	for {
		sp, err := r.sc.Next()
		if err != nil {
			if err == io.EOF {
				if len(r.elems) > 0 {
					return Event{}, r.fail(ErrUnclosedElement)
				}
				r.err = io.EOF
				return Event{kind: KindEOF}, nil
			}
			return Event{}, r.fail(err)
		}
		first := !r.started
		r.started = true

		switch sp.Shape {
		case scan.ShapeText:
			data := sp.Data
			if r.opts.trimText {
				data = trimWhitespace(data)
				if len(data) == 0 {
					continue
				}
			}
			if r.opts.checkCharacters {
				if err := checkChars(data); err != nil {
					return Event{}, r.failAt(sp, err)
				}
			}
			return Event{
				kind:  KindText,
				text:  TextView{data: data, entities: true},
				depth: len(r.elems),
			}, nil

		case scan.ShapeComment:
			body := scan.CommentText(sp.Data)
			if r.opts.checkCharacters {
				if err := checkChars(body); err != nil {
					return Event{}, r.failAt(sp, err)
				}
			}
			return Event{
				kind:  KindComment,
				text:  TextView{data: body},
				depth: len(r.elems),
			}, nil

		case scan.ShapeCDATA:
			body := scan.CDATAText(sp.Data)
			if r.opts.checkCharacters {
				if err := checkChars(body); err != nil {
					return Event{}, r.failAt(sp, err)
				}
			}
			return Event{
				kind:  KindCData,
				text:  TextView{data: body},
				depth: len(r.elems),
			}, nil

		case scan.ShapePI:
			target, rest, err := scan.SplitPI(sp.Data)
			if err != nil {
				return Event{}, r.failAt(sp, err)
			}
			if scan.IsDecl(target) {
				decl := Decl{data: rest}
				if first {
					if err := r.applyCharset(&decl); err != nil {
						return Event{}, r.failAt(sp, err)
					}
				}
				return Event{kind: KindDecl, decl: decl, depth: len(r.elems)}, nil
			}
			return Event{
				kind:  KindPI,
				text:  TextView{data: scan.PIText(sp.Data)},
				depth: len(r.elems),
			}, nil

		case scan.ShapeDoctype:
			body, err := scan.DoctypeText(sp.Data)
			if err != nil {
				return Event{}, r.failAt(sp, err)
			}
			return Event{
				kind:  KindDocType,
				text:  TextView{data: body},
				depth: len(r.elems),
			}, nil

		default:
			return r.tagEvent(sp)
		}
	}
}

func (r *Reader) tagEvent(sp scan.Span) (Event, error) {
	form, name, attrData, err := scan.ClassifyTag(sp.Data)
	if err != nil {
		return Event{}, r.failAt(sp, err)
	}
	prefix, local := scan.SplitQName(name)

	if form == scan.FormEnd {
		if len(r.elems) == 0 || r.elems[len(r.elems)-1] != string(name) {
			return Event{}, r.failAt(sp, ErrMismatchedEndTag)
		}
		uri, bound := r.ns.lookup(prefix)
		r.elems = r.elems[:len(r.elems)-1]
		r.ns.pop()
		ev := Event{
			kind:  KindEnd,
			tag:   Tag{r: r, name: name, prefix: prefix, local: local, ns: uri},
			depth: len(r.elems),
		}
		if !bound {
			return ev, ErrUnboundPrefix
		}
		return ev, nil
	}

	if r.opts.maxDepth > 0 && len(r.elems) >= r.opts.maxDepth {
		return Event{}, r.failAt(sp, ErrDepthLimit)
	}

	// Declarations on the tag take effect before the tag's own name and
	// attributes resolve.
	r.ns.push(collectScope(attrData))
	uri, bound := r.ns.lookup(prefix)
	var nsErr error
	if !bound {
		nsErr = ErrUnboundPrefix
	}
	depth := len(r.elems)
	tag := Tag{r: r, name: name, prefix: prefix, local: local, attrData: attrData, ns: uri}

	if form == scan.FormStart {
		r.elems = append(r.elems, string(name))
		return Event{kind: KindStart, tag: tag, depth: depth}, nsErr
	}

	if r.opts.expandEmpty {
		r.elems = append(r.elems, string(name))
		endTag := tag
		endTag.attrData = nil
		r.pendingEnd = true
		r.pendingEndTag = endTag
		r.pendingEndDepth = depth
		return Event{kind: KindStart, tag: tag, depth: depth}, nsErr
	}

	// The scope pushed for an empty element lives for exactly this one
	// event; it is popped on the next pull, after the caller had its
	// chance to resolve the tag's attributes.
	r.pendingPop = true
	return Event{kind: KindEmpty, tag: tag, depth: depth}, nsErr
}

// applyCharset swaps the remaining input through the configured charset
// reader when the declaration names a non-UTF-8 encoding.
func (r *Reader) applyCharset(decl *Decl) error {
	if r.opts.charsetReader == nil || r.charsetDone {
		return nil
	}
	r.charsetDone = true
	label := decl.encodingLabel()
	if label == "" || isUTF8Label(label) {
		return nil
	}
	return r.sc.SwapReader(func(src io.Reader) (io.Reader, error) {
		return r.opts.charsetReader(label, src)
	})
}

func (r *Reader) fail(err error) error {
	offset, line, column := r.sc.Position()
	syntax := &SyntaxError{
		Offset:  offset,
		Line:    line,
		Column:  column,
		Snippet: r.sc.Snippet(),
		Err:     err,
	}
	r.err = syntax
	return syntax
}

func (r *Reader) failAt(sp scan.Span, err error) error {
	syntax := &SyntaxError{
		Offset:  sp.Offset,
		Line:    sp.Line,
		Column:  sp.Column,
		Snippet: r.sc.Snippet(),
		Err:     err,
	}
	r.err = syntax
	return syntax
}
