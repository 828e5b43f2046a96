package xmlevent

import (
	"errors"
	"fmt"

	"github.com/jacoelho/xmlevent/internal/scan"
)

// Structural errors terminate the reader; the pull loop must not continue
// after receiving one. Decode errors are scoped to the single call.
var (
	ErrUnexpectedEOF   = scan.ErrUnexpectedEOF
	ErrMalformedMarkup = scan.ErrMalformedMarkup
	ErrSpanTooLarge    = scan.ErrSpanTooLarge
	ErrInvalidName     = scan.ErrInvalidName

	ErrMismatchedEndTag   = errors.New("mismatched end tag")
	ErrUnclosedElement    = errors.New("unclosed element at end of input")
	ErrDuplicateAttribute = errors.New("duplicate attribute name")
	ErrMalformedAttribute = errors.New("malformed attribute")
	ErrUnboundPrefix      = errors.New("unbound namespace prefix")
	ErrInvalidUTF8        = errors.New("invalid UTF-8")
	ErrUnknownEntity      = errors.New("unknown entity reference")
	ErrInvalidCharRef     = errors.New("invalid character reference")
	ErrMissingVersion     = errors.New("missing version in XML declaration")
	ErrDepthLimit         = errors.New("element depth exceeds MaxDepth")
	ErrAttrLimit          = errors.New("attribute count exceeds MaxAttrs")
	ErrInvalidChar        = errors.New("code point outside the XML character range")
)

// SyntaxError reports a well-formedness error with location context.
type SyntaxError struct {
	Offset  int64
	Line    int
	Column  int
	Snippet []byte
	Err     error
}

// Error formats the syntax error with location and cause.
func (e *SyntaxError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Line > 0 && e.Column > 0 {
		return fmt.Sprintf("xml syntax error at line %d, column %d: %v", e.Line, e.Column, e.Err)
	}
	return fmt.Sprintf("xml syntax error at offset %d: %v", e.Offset, e.Err)
}

// Unwrap exposes the underlying error.
func (e *SyntaxError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}
