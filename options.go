package xmlevent

import (
	"io"

	"github.com/jacoelho/xmlevent/internal/scan"
)

const defaultMaxDepth = 1024

// Option holds reader configuration values.
// The zero value means no overrides.
type Option struct {
	charsetReader   func(label string, r io.Reader) (io.Reader, error)
	bufferSize      int
	maxSpanSize     int
	maxDepth        int
	maxAttrs        int
	trackPosition   bool
	trimText        bool
	expandEmpty     bool
	checkCharacters bool

	charsetReaderSet   bool
	bufferSizeSet      bool
	maxSpanSizeSet     bool
	maxDepthSet        bool
	maxAttrsSet        bool
	trackPositionSet   bool
	trimTextSet        bool
	expandEmptySet     bool
	checkCharactersSet bool
}

// JoinOptions combines multiple option sets into one in declaration order.
// Later options override earlier ones when set.
func JoinOptions(opts ...Option) Option {
	var merged Option
	for _, src := range opts {
		merged.merge(src)
	}
	return merged
}

func (o *Option) merge(src Option) {
	if src.charsetReaderSet {
		o.charsetReader = src.charsetReader
		o.charsetReaderSet = true
	}
	if src.bufferSizeSet {
		o.bufferSize = src.bufferSize
		o.bufferSizeSet = true
	}
	if src.maxSpanSizeSet {
		o.maxSpanSize = src.maxSpanSize
		o.maxSpanSizeSet = true
	}
	if src.maxDepthSet {
		o.maxDepth = src.maxDepth
		o.maxDepthSet = true
	}
	if src.maxAttrsSet {
		o.maxAttrs = src.maxAttrs
		o.maxAttrsSet = true
	}
	if src.trackPositionSet {
		o.trackPosition = src.trackPosition
		o.trackPositionSet = true
	}
	if src.trimTextSet {
		o.trimText = src.trimText
		o.trimTextSet = true
	}
	if src.expandEmptySet {
		o.expandEmpty = src.expandEmpty
		o.expandEmptySet = true
	}
	if src.checkCharactersSet {
		o.checkCharacters = src.checkCharacters
		o.checkCharactersSet = true
	}
}

// WithBufferSize sets the initial read buffer size.
func WithBufferSize(n int) Option {
	return Option{bufferSize: n, bufferSizeSet: true}
}

// WithMaxSpanSize bounds the size of a single span. Zero means unbounded.
func WithMaxSpanSize(n int) Option {
	return Option{maxSpanSize: n, maxSpanSizeSet: true}
}

// WithMaxDepth bounds element nesting. Zero means unbounded.
func WithMaxDepth(n int) Option {
	return Option{maxDepth: n, maxDepthSet: true}
}

// WithMaxAttrs bounds the attribute count of a single tag. Zero means
// unbounded.
func WithMaxAttrs(n int) Option {
	return Option{maxAttrs: n, maxAttrsSet: true}
}

// TrackPosition controls line and column tracking for error reporting.
// It is on by default.
func TrackPosition(value bool) Option {
	return Option{trackPosition: value, trackPositionSet: true}
}

// TrimText trims surrounding whitespace from text events and drops events
// that contain nothing else.
func TrimText(value bool) Option {
	return Option{trimText: value, trimTextSet: true}
}

// ExpandEmpty reports empty-element tags as a Start and End pair instead
// of a single Empty event.
func ExpandEmpty(value bool) Option {
	return Option{expandEmpty: value, expandEmptySet: true}
}

// CheckCharacters rejects character data, CDATA, and comments containing
// code points outside the XML character range.
func CheckCharacters(value bool) Option {
	return Option{checkCharacters: value, checkCharactersSet: true}
}

// WithCharsetReader registers a decoder for inputs whose declaration names
// an encoding other than UTF-8. See DeclCharsetReader.
func WithCharsetReader(fn func(label string, r io.Reader) (io.Reader, error)) Option {
	return Option{charsetReader: fn, charsetReaderSet: true}
}

type readerOptions struct {
	charsetReader   func(label string, r io.Reader) (io.Reader, error)
	maxDepth        int
	maxAttrs        int
	trimText        bool
	expandEmpty     bool
	checkCharacters bool
}

func resolveOptions(o Option) (readerOptions, scan.Config) {
	opts := readerOptions{
		charsetReader:   o.charsetReader,
		maxDepth:        defaultMaxDepth,
		maxAttrs:        o.maxAttrs,
		trimText:        o.trimText,
		expandEmpty:     o.expandEmpty,
		checkCharacters: o.checkCharacters,
	}
	if o.maxDepthSet {
		opts.maxDepth = o.maxDepth
	}
	cfg := scan.Config{
		BufferSize:    o.bufferSize,
		MaxSpanSize:   o.maxSpanSize,
		TrackPosition: true,
	}
	if o.trackPositionSet {
		cfg.TrackPosition = o.trackPosition
	}
	return opts, cfg
}
