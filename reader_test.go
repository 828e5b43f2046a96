package xmlevent

import (
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// eventSummary is a copied-out snapshot of one event, safe to hold after
// the next pull.
type eventSummary struct {
	Kind      string
	Name      string
	Namespace string
	Text      string
	Depth     int
}

func summarize(t *testing.T, ev Event) eventSummary {
	t.Helper()
	s := eventSummary{Kind: ev.Kind().String(), Depth: ev.Depth()}
	if tag := ev.Tag(); tag != nil {
		s.Name = string(tag.Name())
		s.Namespace = tag.Namespace()
	}
	if text := ev.Text(); text != nil {
		s.Text = string(text.Raw())
	}
	return s
}

func pullAll(t *testing.T, input string, opts ...Option) []eventSummary {
	t.Helper()
	r := NewReader(strings.NewReader(input), opts...)
	var events []eventSummary
	for {
		ev, err := r.Next()
		if err != nil {
			t.Fatalf("Next error = %v", err)
		}
		events = append(events, summarize(t, ev))
		if ev.Kind() == KindEOF {
			return events
		}
	}
}

func TestReaderEventSequence(t *testing.T) {
	input := `<?xml version="1.0"?><root><!-- c --><child a="1">text</child><leaf/><![CDATA[<x>]]><?pi d?></root>`

	got := pullAll(t, input)
	want := []eventSummary{
		{Kind: "Decl"},
		{Kind: "Start", Name: "root"},
		{Kind: "Comment", Text: " c ", Depth: 1},
		{Kind: "Start", Name: "child", Depth: 1},
		{Kind: "Text", Text: "text", Depth: 2},
		{Kind: "End", Name: "child", Depth: 1},
		{Kind: "Empty", Name: "leaf", Depth: 1},
		{Kind: "CDATA", Text: "<x>", Depth: 1},
		{Kind: "PI", Text: "pi d", Depth: 1},
		{Kind: "End", Name: "root"},
		{Kind: "EOF"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("event sequence mismatch (-want +got):\n%s", diff)
	}
}

func TestReaderDepthOrdering(t *testing.T) {
	got := pullAll(t, `<a><b><c/></b></a>`)
	want := []eventSummary{
		{Kind: "Start", Name: "a", Depth: 0},
		{Kind: "Start", Name: "b", Depth: 1},
		{Kind: "Empty", Name: "c", Depth: 2},
		{Kind: "End", Name: "b", Depth: 1},
		{Kind: "End", Name: "a", Depth: 0},
		{Kind: "EOF"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("depth ordering mismatch (-want +got):\n%s", diff)
	}
}

func TestReaderMismatchedEndTag(t *testing.T) {
	r := NewReader(strings.NewReader(`<a><b></a>`))
	var err error
	for err == nil {
		_, err = r.Next()
	}
	if !errors.Is(err, ErrMismatchedEndTag) {
		t.Fatalf("err = %v, want %v", err, ErrMismatchedEndTag)
	}
	var syntax *SyntaxError
	if !errors.As(err, &syntax) {
		t.Fatalf("err %T does not wrap *SyntaxError", err)
	}
	// structural errors are terminal: the reader keeps failing.
	if _, again := r.Next(); !errors.Is(again, ErrMismatchedEndTag) {
		t.Fatalf("err after failure = %v, want %v", again, ErrMismatchedEndTag)
	}
}

func TestReaderUnclosedElement(t *testing.T) {
	r := NewReader(strings.NewReader(`<a><b></b>`))
	var err error
	for err == nil {
		_, err = r.Next()
	}
	if !errors.Is(err, ErrUnclosedElement) {
		t.Fatalf("err = %v, want %v", err, ErrUnclosedElement)
	}
}

func TestReaderEOFExactlyOnce(t *testing.T) {
	r := NewReader(strings.NewReader(`<a/>`))
	var kinds []Kind
	for {
		ev, err := r.Next()
		if err != nil {
			if err != io.EOF {
				t.Fatalf("Next error = %v", err)
			}
			break
		}
		kinds = append(kinds, ev.Kind())
	}
	want := []Kind{KindEmpty, KindEOF}
	if len(kinds) != len(want) {
		t.Fatalf("kinds = %v, want %v", kinds, want)
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Fatalf("kinds = %v, want %v", kinds, want)
		}
	}
	if _, err := r.Next(); err != io.EOF {
		t.Fatalf("err after EOF = %v, want io.EOF", err)
	}
}

func TestReaderTrimText(t *testing.T) {
	input := "<a>\n  <b>  padded  </b>\n</a>"

	got := pullAll(t, input, TrimText(true))
	want := []eventSummary{
		{Kind: "Start", Name: "a", Depth: 0},
		{Kind: "Start", Name: "b", Depth: 1},
		{Kind: "Text", Text: "padded", Depth: 2},
		{Kind: "End", Name: "b", Depth: 1},
		{Kind: "End", Name: "a", Depth: 0},
		{Kind: "EOF"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("trimmed sequence mismatch (-want +got):\n%s", diff)
	}
}

func TestReaderExpandEmpty(t *testing.T) {
	got := pullAll(t, `<a><b x="1"/></a>`, ExpandEmpty(true))
	want := []eventSummary{
		{Kind: "Start", Name: "a", Depth: 0},
		{Kind: "Start", Name: "b", Depth: 1},
		{Kind: "End", Name: "b", Depth: 1},
		{Kind: "End", Name: "a", Depth: 0},
		{Kind: "EOF"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("expanded sequence mismatch (-want +got):\n%s", diff)
	}
}

func TestReaderMaxDepth(t *testing.T) {
	r := NewReader(strings.NewReader(`<a><b><c/></b></a>`), WithMaxDepth(2))
	var err error
	for err == nil {
		_, err = r.Next()
	}
	if !errors.Is(err, ErrDepthLimit) {
		t.Fatalf("err = %v, want %v", err, ErrDepthLimit)
	}
}

func TestReaderSkipsUTF8BOM(t *testing.T) {
	got := pullAll(t, "\xef\xbb\xbf<doc/>")
	want := []eventSummary{
		{Kind: "Empty", Name: "doc"},
		{Kind: "EOF"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("event sequence mismatch (-want +got):\n%s", diff)
	}
}

func TestReaderMaxAttrs(t *testing.T) {
	r := NewReader(strings.NewReader(`<a b="1" c="2" d="3"/>`), WithMaxAttrs(2))
	ev, err := r.Next()
	if err != nil {
		t.Fatalf("Next error = %v", err)
	}
	attrs := ev.Tag().Attributes()
	var n int
	for attrs.Next() {
		n++
	}
	if n != 2 {
		t.Fatalf("attrs produced = %d, want 2", n)
	}
	if err := attrs.Err(); !errors.Is(err, ErrAttrLimit) {
		t.Fatalf("err = %v, want %v", err, ErrAttrLimit)
	}
}

func TestReaderCheckCharacters(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  error
	}{
		{"control in text", "<a>bad\x01text</a>", ErrInvalidChar},
		{"control in cdata", "<a><![CDATA[bad\x02]]></a>", ErrInvalidChar},
		{"control in comment", "<a><!--bad\x03--></a>", ErrInvalidChar},
		{"invalid utf8 in text", "<a>\xff\xfe</a>", ErrInvalidUTF8},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewReader(strings.NewReader(tt.input), CheckCharacters(true))
			var err error
			for err == nil {
				_, err = r.Next()
			}
			if !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestReaderCheckCharactersOffByDefault(t *testing.T) {
	r := NewReader(strings.NewReader("<a>ok\x01</a>"))
	ev, err := r.Next()
	if err != nil {
		t.Fatalf("start error = %v", err)
	}
	ev, err = r.Next()
	if err != nil {
		t.Fatalf("text error = %v", err)
	}
	if ev.Kind() != KindText {
		t.Fatalf("kind = %v, want %v", ev.Kind(), KindText)
	}
}

func TestReaderSyntaxErrorPosition(t *testing.T) {
	r := NewReader(strings.NewReader("<a>\n<a><b></a>"))
	var err error
	for err == nil {
		_, err = r.Next()
	}
	var syntax *SyntaxError
	if !errors.As(err, &syntax) {
		t.Fatalf("err %T does not wrap *SyntaxError", err)
	}
	if syntax.Line != 2 {
		t.Fatalf("line = %d, want 2", syntax.Line)
	}
	if len(syntax.Snippet) == 0 {
		t.Fatalf("snippet is empty")
	}
}

func TestReaderDecodeErrorDoesNotPoisonReader(t *testing.T) {
	r := NewReader(strings.NewReader(`<a>x&undefined;y<b/></a>`))
	if _, err := r.Next(); err != nil {
		t.Fatalf("start error = %v", err)
	}
	ev, err := r.Next()
	if err != nil {
		t.Fatalf("text error = %v", err)
	}
	if _, derr := ev.Text().Unescape(); !errors.Is(derr, ErrUnknownEntity) {
		t.Fatalf("decode err = %v, want %v", derr, ErrUnknownEntity)
	}
	// the reader keeps producing events after a failed decode.
	ev, err = r.Next()
	if err != nil {
		t.Fatalf("Next after decode failure error = %v", err)
	}
	if ev.Kind() != KindEmpty || string(ev.Tag().Name()) != "b" {
		t.Fatalf("event after decode failure = %v %q", ev.Kind(), ev.Tag().Name())
	}
}

func TestReaderViewsValidUntilNextPull(t *testing.T) {
	r := NewReader(strings.NewReader(`<a>first</a>`), WithBufferSize(4))
	if _, err := r.Next(); err != nil {
		t.Fatalf("start error = %v", err)
	}
	ev, err := r.Next()
	if err != nil {
		t.Fatalf("text error = %v", err)
	}
	copied, err := ev.Text().String()
	if err != nil {
		t.Fatalf("String error = %v", err)
	}
	if _, err := r.Next(); err != nil {
		t.Fatalf("end error = %v", err)
	}
	if copied != "first" {
		t.Fatalf("copied text = %q, want first", copied)
	}
}

func TestReaderReset(t *testing.T) {
	r := NewReader(strings.NewReader(`<a/>`))
	for {
		ev, err := r.Next()
		if err != nil {
			t.Fatalf("Next error = %v", err)
		}
		if ev.Kind() == KindEOF {
			break
		}
	}
	r.Reset(strings.NewReader(`<b/>`))
	ev, err := r.Next()
	if err != nil {
		t.Fatalf("Next after Reset error = %v", err)
	}
	if ev.Kind() != KindEmpty || string(ev.Tag().Name()) != "b" {
		t.Fatalf("event after Reset = %v %q", ev.Kind(), ev.Tag().Name())
	}
}

func TestReaderDoctypeEvent(t *testing.T) {
	got := pullAll(t, `<!DOCTYPE note SYSTEM "note.dtd"><note/>`)
	want := []eventSummary{
		{Kind: "DocType", Text: `note SYSTEM "note.dtd"`},
		{Kind: "Empty", Name: "note"},
		{Kind: "EOF"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("doctype sequence mismatch (-want +got):\n%s", diff)
	}
}
