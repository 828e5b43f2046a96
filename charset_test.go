package xmlevent

import (
	"io"
	"strings"
	"testing"
)

func TestDeclCharsetReaderLatin1(t *testing.T) {
	// caf\xe9 is "café" in ISO-8859-1.
	input := "<?xml version=\"1.0\" encoding=\"ISO-8859-1\"?><a>caf\xe9</a>"

	r := NewReader(strings.NewReader(input), WithCharsetReader(DeclCharsetReader))
	ev, err := r.Next()
	if err != nil {
		t.Fatalf("decl error = %v", err)
	}
	if ev.Kind() != KindDecl {
		t.Fatalf("kind = %v, want %v", ev.Kind(), KindDecl)
	}
	if _, err := r.Next(); err != nil {
		t.Fatalf("start error = %v", err)
	}
	ev, err = r.Next()
	if err != nil {
		t.Fatalf("text error = %v", err)
	}
	text, err := ev.Text().String()
	if err != nil {
		t.Fatalf("String error = %v", err)
	}
	if text != "café" {
		t.Fatalf("text = %q, want café", text)
	}
}

func TestDeclCharsetReaderAfterBOM(t *testing.T) {
	input := "\xef\xbb\xbf<?xml version=\"1.0\" encoding=\"ISO-8859-1\"?><a>caf\xe9</a>"

	r := NewReader(strings.NewReader(input), WithCharsetReader(DeclCharsetReader))
	ev, err := r.Next()
	if err != nil {
		t.Fatalf("decl error = %v", err)
	}
	if ev.Kind() != KindDecl {
		t.Fatalf("kind = %v, want %v", ev.Kind(), KindDecl)
	}
	if _, err := r.Next(); err != nil {
		t.Fatalf("start error = %v", err)
	}
	ev, err = r.Next()
	if err != nil {
		t.Fatalf("text error = %v", err)
	}
	text, err := ev.Text().String()
	if err != nil {
		t.Fatalf("String error = %v", err)
	}
	if text != "café" {
		t.Fatalf("text = %q, want café", text)
	}
}

func TestDeclCharsetReaderUnknownLabel(t *testing.T) {
	if _, err := DeclCharsetReader("no-such-charset", strings.NewReader("")); err == nil {
		t.Fatalf("DeclCharsetReader accepted an unknown label")
	}
}

func TestCharsetReaderSkippedForUTF8(t *testing.T) {
	input := `<?xml version="1.0" encoding="UTF-8"?><a>ok</a>`

	called := false
	fn := func(label string, src io.Reader) (io.Reader, error) {
		called = true
		return src, nil
	}
	r := NewReader(strings.NewReader(input), WithCharsetReader(fn))
	for {
		ev, err := r.Next()
		if err != nil {
			t.Fatalf("Next error = %v", err)
		}
		if ev.Kind() == KindEOF {
			break
		}
	}
	if called {
		t.Fatalf("charset reader invoked for a UTF-8 document")
	}
}
