// Package xmlevent provides a pull-based, namespace-aware streaming XML
// event reader. It tokenizes well-formed XML into structural events over
// zero-copy byte views with explicit lifetimes, resolving namespaces per
// element scope and decoding entities only on demand.
package xmlevent
