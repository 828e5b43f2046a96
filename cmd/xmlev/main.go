package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jacoelho/xmlevent"
)

func main() {
	os.Exit(run())
}

func run() int {
	return runWithArgs(os.Args[1:], os.Stdout, os.Stderr)
}

func runWithArgs(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("xmlev", flag.ContinueOnError)
	fs.SetOutput(stderr)
	trim := fs.Bool("trim", false, "drop whitespace-only text events")
	strictNS := fs.Bool("strict-ns", false, "treat unbound namespace prefixes as fatal")
	var usageErr error
	fs.Usage = func() {
		usageErr = errors.Join(
			usageErr,
			writef(stderr, "Usage: %s [flags] <document.xml>\n\n", os.Args[0]),
			writeln(stderr, "Prints the event structure of an XML document."),
			writeln(stderr),
			writeln(stderr, "Options:"),
		)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return 2
	}

	remaining := fs.Args()
	if len(remaining) != 1 {
		if err := writeln(stderr, "error: exactly one XML file argument is required"); err != nil {
			return 1
		}
		fs.Usage()
		if usageErr != nil {
			return 1
		}
		return 2
	}

	r, err := xmlevent.Open(remaining[0], xmlevent.TrimText(*trim))
	if err != nil {
		if writeErr := writef(stderr, "error opening document: %v\n", err); writeErr != nil {
			return 1
		}
		return 1
	}
	defer func() {
		_ = r.Close()
	}()

	for {
		ev, err := r.Next()
		if err != nil {
			if errors.Is(err, xmlevent.ErrUnboundPrefix) && !*strictNS {
				if writeErr := writef(stderr, "warning: %v\n", err); writeErr != nil {
					return 1
				}
			} else {
				if writeErr := writef(stderr, "error: %v\n", err); writeErr != nil {
					return 1
				}
				return 1
			}
		}
		if err := printEvent(stdout, ev); err != nil {
			return 1
		}
		if ev.Kind() == xmlevent.KindEOF {
			break
		}
	}
	return 0
}

func printEvent(w io.Writer, ev xmlevent.Event) error {
	indent := strings.Repeat("  ", ev.Depth())
	switch ev.Kind() {
	case xmlevent.KindStart, xmlevent.KindEmpty:
		tag := ev.Tag()
		label := "start"
		if ev.Kind() == xmlevent.KindEmpty {
			label = "empty"
		}
		if ns := tag.Namespace(); ns != "" {
			if err := writef(w, "%s%s %s {%s}\n", indent, label, tag.Name(), ns); err != nil {
				return err
			}
		} else if err := writef(w, "%s%s %s\n", indent, label, tag.Name()); err != nil {
			return err
		}
		attrs := tag.Attributes()
		for attrs.Next() {
			a := attrs.Attr()
			value, err := a.UnescapeValueString()
			if err != nil {
				value = string(a.Value)
			}
			if err := writef(w, "%s  @%s=%q\n", indent, a.Key, value); err != nil {
				return err
			}
		}
		if err := attrs.Err(); err != nil {
			return writef(w, "%s  attribute error: %v\n", indent, err)
		}
	case xmlevent.KindEnd:
		return writef(w, "%send %s\n", indent, ev.Tag().Name())
	case xmlevent.KindText:
		text, err := ev.Text().String()
		if err != nil {
			text = string(ev.Text().Raw())
		}
		return writef(w, "%stext %q\n", indent, text)
	case xmlevent.KindComment:
		return writef(w, "%scomment %q\n", indent, ev.Text().Raw())
	case xmlevent.KindCData:
		return writef(w, "%scdata %q\n", indent, ev.Text().Raw())
	case xmlevent.KindPI:
		return writef(w, "%spi %q\n", indent, ev.Text().Raw())
	case xmlevent.KindDocType:
		return writef(w, "%sdoctype %q\n", indent, ev.Text().Raw())
	case xmlevent.KindDecl:
		decl := ev.Decl()
		version, err := decl.Version()
		if err != nil {
			return writef(w, "%sdecl error: %v\n", indent, err)
		}
		line := fmt.Sprintf("%sdecl version=%s", indent, version)
		if enc, ok, err := decl.Encoding(); err == nil && ok {
			line += fmt.Sprintf(" encoding=%s", enc)
		}
		if sa, ok, err := decl.Standalone(); err == nil && ok {
			line += fmt.Sprintf(" standalone=%s", sa)
		}
		return writeln(w, line)
	case xmlevent.KindEOF:
		return writeln(w, "eof")
	}
	return nil
}

func writef(w io.Writer, format string, args ...any) error {
	_, err := fmt.Fprintf(w, format, args...)
	return err
}

func writeln(w io.Writer, args ...any) error {
	_, err := fmt.Fprintln(w, args...)
	return err
}
