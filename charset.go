package xmlevent

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/transform"
)

// DeclCharsetReader decodes input in the encoding named by an XML
// declaration label, using the IANA character set registry. Pass it to
// WithCharsetReader to honor non-UTF-8 declarations:
//
//	r := xmlevent.NewReader(src, xmlevent.WithCharsetReader(xmlevent.DeclCharsetReader))
func DeclCharsetReader(label string, r io.Reader) (io.Reader, error) {
	enc, err := ianaindex.IANA.Encoding(label)
	if err != nil {
		return nil, fmt.Errorf("unsupported encoding %q: %w", label, err)
	}
	if enc == nil {
		return nil, fmt.Errorf("unsupported encoding %q", label)
	}
	return transform.NewReader(r, enc.NewDecoder()), nil
}

// isUTF8Label reports whether label names an encoding the scanner already
// reads natively.
func isUTF8Label(label string) bool {
	switch strings.ToLower(label) {
	case "utf-8", "utf8", "us-ascii", "ascii":
		return true
	}
	return false
}
