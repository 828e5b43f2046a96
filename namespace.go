package xmlevent

import "bytes"

// Namespaces with fixed, predeclared bindings.
const (
	xmlNamespace   = "http://www.w3.org/XML/1998/namespace"
	xmlnsNamespace = "http://www.w3.org/2000/xmlns/"
)

var (
	xmlnsLiteral = []byte("xmlns")
	xmlLiteral   = []byte("xml")
)

type nsBinding struct {
	prefix string
	uri    string
}

// nsScope holds the prefix bindings declared on one element. One scope is
// pushed per open element, declarations or not, so the stack depth always
// equals the count of open elements.
type nsScope struct {
	bindings   []nsBinding
	defaultNS  string
	defaultSet bool
}

type nsStack struct {
	scopes []nsScope
}

func (s *nsStack) push(scope nsScope) {
	s.scopes = append(s.scopes, scope)
}

func (s *nsStack) pop() {
	if len(s.scopes) == 0 {
		return
	}
	s.scopes = s.scopes[:len(s.scopes)-1]
}

// lookup resolves prefix innermost-to-outermost. An empty prefix resolves
// to the default namespace, or to no namespace when none is declared.
func (s *nsStack) lookup(prefix []byte) (string, bool) {
	if bytes.Equal(prefix, xmlLiteral) {
		return xmlNamespace, true
	}
	if len(prefix) == 0 {
		for i := len(s.scopes) - 1; i >= 0; i-- {
			if s.scopes[i].defaultSet {
				return s.scopes[i].defaultNS, true
			}
		}
		return "", true
	}
	for i := len(s.scopes) - 1; i >= 0; i-- {
		for _, b := range s.scopes[i].bindings {
			if b.prefix == string(prefix) {
				return b.uri, true
			}
		}
	}
	return "", false
}

// collectScope gathers the xmlns declarations present on a tag's attribute
// bytes. The walk is tolerant: a malformed attribute stops collection and
// the fault is surfaced when the caller enumerates the attributes itself.
func collectScope(attrData []byte) nsScope {
	var scope nsScope
	pos := 0
	for {
		raw, next, ok, err := nextRawAttr(attrData, pos)
		if err != nil || !ok {
			return scope
		}
		pos = next
		if bytes.Equal(raw.key, xmlnsLiteral) {
			scope.defaultNS = scopeValue(raw.value)
			scope.defaultSet = true
			continue
		}
		prefix, local := splitXmlnsKey(raw.key)
		if prefix == nil {
			continue
		}
		// The xml and xmlns prefixes are fixed and cannot be redeclared.
		if bytes.Equal(local, xmlLiteral) || bytes.Equal(local, xmlnsLiteral) {
			continue
		}
		scope.bindings = append(scope.bindings, nsBinding{
			prefix: string(local),
			uri:    scopeValue(raw.value),
		})
	}
}

// splitXmlnsKey returns the declared prefix for keys of the form
// xmlns:prefix, or nil for any other key.
func splitXmlnsKey(key []byte) (marker, declared []byte) {
	c := bytes.IndexByte(key, ':')
	if c < 0 || !bytes.Equal(key[:c], xmlnsLiteral) {
		return nil, nil
	}
	return key[:c], key[c+1:]
}

func scopeValue(raw []byte) string {
	if bytes.IndexByte(raw, '&') < 0 {
		return string(raw)
	}
	out, err := AppendUnescape(nil, raw)
	if err != nil {
		return string(raw)
	}
	return string(out)
}
