package xmlevent

import "bytes"

// Decl is the XML declaration view. The accessors are independently
// fallible: a fault in one pseudo-attribute does not block the others.
type Decl struct {
	data []byte
}

var (
	litVersion    = []byte("version")
	litEncoding   = []byte("encoding")
	litStandalone = []byte("standalone")
)

// Version returns the declared version. Its absence is an error: version
// is mandatory per the XML declaration grammar.
func (d *Decl) Version() ([]byte, error) {
	value, ok, err := d.find(litVersion)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrMissingVersion
	}
	if err := validUTF8(value); err != nil {
		return nil, err
	}
	return value, nil
}

// Encoding returns the declared encoding label, when present.
func (d *Decl) Encoding() ([]byte, bool, error) {
	return d.optional(litEncoding)
}

// Standalone returns the declared standalone value, when present.
func (d *Decl) Standalone() ([]byte, bool, error) {
	return d.optional(litStandalone)
}

func (d *Decl) optional(name []byte) ([]byte, bool, error) {
	value, ok, err := d.find(name)
	if err != nil {
		return nil, false, err
	}
	if !ok {
		return nil, false, nil
	}
	if err := validUTF8(value); err != nil {
		return nil, true, err
	}
	return value, true, nil
}

func (d *Decl) find(name []byte) ([]byte, bool, error) {
	pos := 0
	for {
		raw, next, ok, err := nextRawAttr(d.data, pos)
		if err != nil {
			return nil, false, err
		}
		if !ok {
			return nil, false, nil
		}
		pos = next
		if bytes.Equal(raw.key, name) {
			return raw.value, true, nil
		}
	}
}

// encodingLabel returns the declared encoding as a string for charset
// lookup, or "" when absent or unreadable.
func (d *Decl) encodingLabel() string {
	value, ok, err := d.Encoding()
	if err != nil || !ok {
		return ""
	}
	return string(value)
}
