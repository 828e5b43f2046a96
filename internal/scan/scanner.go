package scan

import (
	"bytes"
	"errors"
	"io"
)

// DefaultBufferSize is the initial read buffer size when none is configured.
const DefaultBufferSize = 32 * 1024

// maxZeroReads bounds consecutive zero-byte reads from a misbehaving
// source before the scanner gives up with io.ErrNoProgress.
const maxZeroReads = 100

var (
	ErrUnexpectedEOF   = errors.New("unexpected EOF")
	ErrMalformedMarkup = errors.New("malformed markup")
	ErrSpanTooLarge    = errors.New("span exceeds MaxSpanSize")
	ErrInvalidName     = errors.New("invalid XML name")
)

// Pre-computed byte slices to avoid allocations in hot paths
var (
	litCommentStart = []byte("<!--")
	litCommentEnd   = []byte("-->")
	litDoubleDash   = []byte("--")
	litCDATAStart   = []byte("<![CDATA[")
	litCDATAEnd     = []byte("]]>")
	litPIEnd        = []byte("?>")
	litUTF8BOM      = []byte("\xef\xbb\xbf")
)

// Shape identifies the coarse syntactic shape of a raw span.
type Shape uint8

const (
	ShapeText Shape = iota
	ShapeTag
	ShapeComment
	ShapeCDATA
	ShapePI
	ShapeDoctype
)

// String returns a stable name for the shape, suitable for debugging.
func (s Shape) String() string {
	switch s {
	case ShapeText:
		return "Text"
	case ShapeTag:
		return "Tag"
	case ShapeComment:
		return "Comment"
	case ShapeCDATA:
		return "CDATA"
	case ShapePI:
		return "PI"
	case ShapeDoctype:
		return "Doctype"
	default:
		return "Unknown"
	}
}

// Span is one raw delimited unit including its delimiters.
// Data points into the scanner buffer and is valid until the next Next call.
type Span struct {
	Data   []byte
	Offset int64
	Line   int
	Column int
	Shape  Shape
}

// Config controls scanner buffering and position tracking.
type Config struct {
	BufferSize    int
	MaxSpanSize   int
	TrackPosition bool
}

// Scanner locates raw delimited spans in a byte stream.
// It grows its buffer to hold a complete span and never truncates one.
type Scanner struct {
	r      io.Reader
	err    error
	buf    []byte
	pos    int
	base   int64
	line   int
	column int
	cfg        Config
	zeroReads  int
	eof        bool
	bomChecked bool
}

// NewScanner creates a scanner reading from r.
func NewScanner(r io.Reader, cfg Config) *Scanner {
	s := &Scanner{}
	s.Reset(r, cfg)
	return s
}

// Reset prepares the scanner for a new input stream.
func (s *Scanner) Reset(r io.Reader, cfg Config) {
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = DefaultBufferSize
	}
	s.r = r
	s.cfg = cfg
	s.buf = s.buf[:0]
	s.pos = 0
	s.base = 0
	s.eof = false
	s.err = nil
	s.zeroReads = 0
	s.bomChecked = false
	s.line, s.column = 0, 0
	if cfg.TrackPosition {
		s.line, s.column = 1, 1
	}
}

// Position reports the current absolute offset and, when tracking is enabled,
// the 1-based line and column.
func (s *Scanner) Position() (offset int64, line, column int) {
	return s.base + int64(s.pos), s.line, s.column
}

// Snippet returns a copy of the bytes surrounding the current position.
func (s *Scanner) Snippet() []byte {
	const window = 32
	start := s.pos - window
	if start < 0 {
		start = 0
	}
	end := s.pos + window
	if end > len(s.buf) {
		end = len(s.buf)
	}
	if start >= end {
		return nil
	}
	out := make([]byte, end-start)
	copy(out, s.buf[start:end])
	return out
}

// SwapReader replaces the remaining input with the reader produced by wrap.
// The unread buffered bytes are handed to wrap ahead of the underlying source,
// so a charset transformation sees the stream from the current position.
func (s *Scanner) SwapReader(wrap func(io.Reader) (io.Reader, error)) error {
	rest := make([]byte, len(s.buf)-s.pos)
	copy(rest, s.buf[s.pos:])
	wrapped, err := wrap(io.MultiReader(bytes.NewReader(rest), s.r))
	if err != nil {
		return err
	}
	s.base += int64(s.pos)
	s.r = wrapped
	s.buf = s.buf[:0]
	s.pos = 0
	s.eof = false
	s.zeroReads = 0
	return nil
}

// Next returns the next raw span, or io.EOF after the last one.
// The span data is invalidated by the following Next call.
func (s *Scanner) Next() (Span, error) {
	if s.err != nil {
		return Span{}, s.err
	}
	s.compact()
	if !s.bomChecked {
		s.bomChecked = true
		if err := s.ensure(len(litUTF8BOM)); err != nil && err != io.EOF {
			return Span{}, s.fail(err)
		}
		if bytes.HasPrefix(s.buf[s.pos:], litUTF8BOM) {
			s.pos += len(litUTF8BOM)
		}
	}
	if err := s.ensure(1); err != nil {
		if err == io.EOF {
			s.err = io.EOF
			return Span{}, io.EOF
		}
		return Span{}, s.fail(err)
	}
	span := Span{Offset: s.base + int64(s.pos), Line: s.line, Column: s.column}
	if s.buf[s.pos] != '<' {
		return s.scanText(span)
	}
	if err := s.ensure(2); err != nil {
		return Span{}, s.fail(eofErr(err))
	}
	switch s.buf[s.pos+1] {
	case '!':
		return s.scanBang(span)
	case '?':
		return s.scanPI(span)
	default:
		return s.scanTag(span)
	}
}

func (s *Scanner) scanText(span Span) (Span, error) {
	start := s.pos
	for {
		if idx := bytes.IndexByte(s.buf[s.pos:], '<'); idx >= 0 {
			s.advance(idx)
			break
		}
		s.advance(len(s.buf) - s.pos)
		if s.eof {
			break
		}
		if err := s.readMore(); err != nil && err != io.EOF {
			return Span{}, s.fail(err)
		}
	}
	data := s.buf[start:s.pos]
	if bytes.Contains(data, litCDATAEnd) {
		return Span{}, s.fail(ErrMalformedMarkup)
	}
	span.Shape = ShapeText
	span.Data = data
	return span, nil
}

// scanTag reads a start, empty, or end tag, terminating at the first '>'
// outside a quoted attribute value. A bare '<' anywhere inside is malformed.
func (s *Scanner) scanTag(span Span) (Span, error) {
	start := s.pos
	s.advance(1)
	var quote byte
	for {
		if err := s.ensure(1); err != nil {
			return Span{}, s.fail(eofErr(err))
		}
		b := s.buf[s.pos]
		if quote != 0 {
			switch b {
			case quote:
				quote = 0
			case '<':
				return Span{}, s.fail(ErrMalformedMarkup)
			}
			s.advance(1)
			continue
		}
		switch b {
		case '\'', '"':
			quote = b
			s.advance(1)
		case '<':
			return Span{}, s.fail(ErrMalformedMarkup)
		case '>':
			s.advance(1)
			span.Shape = ShapeTag
			span.Data = s.buf[start:s.pos]
			return span, nil
		default:
			s.advance(1)
		}
	}
}

func (s *Scanner) scanPI(span Span) (Span, error) {
	start := s.pos
	s.advance(2)
	idx, err := s.scanUntil(litPIEnd)
	if err != nil {
		return Span{}, s.fail(err)
	}
	s.advanceTo(idx + len(litPIEnd))
	span.Shape = ShapePI
	span.Data = s.buf[start:s.pos]
	return span, nil
}

func (s *Scanner) scanBang(span Span) (Span, error) {
	ok, err := s.matchLiteral(litCommentStart)
	if err != nil {
		return Span{}, s.fail(err)
	}
	if ok {
		return s.scanComment(span)
	}
	ok, err = s.matchLiteral(litCDATAStart)
	if err != nil {
		return Span{}, s.fail(err)
	}
	if ok {
		return s.scanCDATA(span)
	}
	return s.scanDoctype(span)
}

func (s *Scanner) scanComment(span Span) (Span, error) {
	start := s.pos
	s.advance(len(litCommentStart))
	idx, err := s.scanUntil(litCommentEnd)
	if err != nil {
		return Span{}, s.fail(err)
	}
	inner := s.buf[s.pos:idx]
	if bytes.Contains(inner, litDoubleDash) || (len(inner) > 0 && inner[len(inner)-1] == '-') {
		return Span{}, s.fail(ErrMalformedMarkup)
	}
	s.advanceTo(idx + len(litCommentEnd))
	span.Shape = ShapeComment
	span.Data = s.buf[start:s.pos]
	return span, nil
}

func (s *Scanner) scanCDATA(span Span) (Span, error) {
	start := s.pos
	s.advance(len(litCDATAStart))
	idx, err := s.scanUntil(litCDATAEnd)
	if err != nil {
		return Span{}, s.fail(err)
	}
	s.advanceTo(idx + len(litCDATAEnd))
	span.Shape = ShapeCDATA
	span.Data = s.buf[start:s.pos]
	return span, nil
}

// scanDoctype reads until the matching '>', accounting for nested [...] of an
// internal subset and for quoted sections which may contain either bracket.
func (s *Scanner) scanDoctype(span Span) (Span, error) {
	start := s.pos
	s.advance(2)
	depth := 0
	var quote byte
	for {
		if err := s.ensure(1); err != nil {
			return Span{}, s.fail(eofErr(err))
		}
		b := s.buf[s.pos]
		if quote != 0 {
			if b == quote {
				quote = 0
			}
			s.advance(1)
			continue
		}
		switch b {
		case '\'', '"':
			quote = b
			s.advance(1)
		case '[':
			depth++
			s.advance(1)
		case ']':
			if depth > 0 {
				depth--
			}
			s.advance(1)
		case '>':
			if depth == 0 {
				s.advance(1)
				span.Shape = ShapeDoctype
				span.Data = s.buf[start:s.pos]
				return span, nil
			}
			s.advance(1)
		default:
			s.advance(1)
		}
	}
}

func (s *Scanner) scanUntil(seq []byte) (int, error) {
	for {
		if idx := bytes.Index(s.buf[s.pos:], seq); idx >= 0 {
			return s.pos + idx, nil
		}
		if s.eof {
			return 0, ErrUnexpectedEOF
		}
		if err := s.readMore(); err != nil && err != io.EOF {
			return 0, err
		}
	}
}

func (s *Scanner) matchLiteral(lit []byte) (bool, error) {
	for len(s.buf)-s.pos < len(lit) {
		if s.eof {
			return false, nil
		}
		if err := s.readMore(); err != nil && err != io.EOF {
			return false, err
		}
	}
	return bytes.HasPrefix(s.buf[s.pos:], lit), nil
}

func (s *Scanner) ensure(n int) error {
	for len(s.buf)-s.pos < n {
		if s.eof {
			return io.EOF
		}
		if err := s.readMore(); err != nil && err != io.EOF {
			return err
		}
	}
	return nil
}

func (s *Scanner) readMore() error {
	if s.eof {
		return io.EOF
	}
	if len(s.buf) == cap(s.buf) {
		if err := s.grow(); err != nil {
			return err
		}
	}
	n, err := s.r.Read(s.buf[len(s.buf):cap(s.buf)])
	if n > 0 {
		s.buf = s.buf[:len(s.buf)+n]
		s.zeroReads = 0
		return nil
	}
	if err == io.EOF {
		s.eof = true
		return io.EOF
	}
	if err != nil {
		return err
	}
	s.zeroReads++
	if s.zeroReads >= maxZeroReads {
		return io.ErrNoProgress
	}
	return nil
}

func (s *Scanner) grow() error {
	capNow := cap(s.buf)
	newCap := capNow * 2
	if newCap < s.cfg.BufferSize {
		newCap = s.cfg.BufferSize
	}
	if s.cfg.MaxSpanSize > 0 && newCap > s.cfg.MaxSpanSize {
		newCap = s.cfg.MaxSpanSize
	}
	if newCap <= capNow {
		return ErrSpanTooLarge
	}
	next := make([]byte, len(s.buf), newCap)
	copy(next, s.buf)
	s.buf = next
	return nil
}

func (s *Scanner) compact() {
	if s.pos == 0 {
		return
	}
	n := copy(s.buf, s.buf[s.pos:])
	s.buf = s.buf[:n]
	s.base += int64(s.pos)
	s.pos = 0
}

func (s *Scanner) advance(n int) {
	if n <= 0 {
		return
	}
	if s.cfg.TrackPosition {
		for _, b := range s.buf[s.pos : s.pos+n] {
			if b == '\n' {
				s.line++
				s.column = 1
			} else {
				s.column++
			}
		}
	}
	s.pos += n
}

func (s *Scanner) advanceTo(pos int) {
	s.advance(pos - s.pos)
}

func (s *Scanner) fail(err error) error {
	s.err = err
	return err
}

func eofErr(err error) error {
	if err == io.EOF {
		return ErrUnexpectedEOF
	}
	return err
}
