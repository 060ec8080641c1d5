package archive

import (
	"bytes"
	"context"
	"io"
	"regexp"
	"testing"

	"github.com/klauspost/compress/zip"
)

var re_safe = regexp.MustCompile(`^[A-Za-z0-9\-_.]+\.kml$`)

func TestEntryName(t *testing.T) {

	tests := map[string]string{
		"IMG_0001.JPG":       "IMG_0001.kml",
		"Paris café.jpg":     "Paris_caf_.kml",
		"holiday.2019.jpeg":  "holiday.2019.kml",
		"a/b/c d.jpg":        "c_d.kml",
		"no-extension":       "no-extension.kml",
		".jpg":               "placemark.kml",
		"":                   "placemark.kml",
		"日本.jpg":             "__.kml",
		`we<ird>&"name'.jpg`: "we_ird___name_.kml",
	}

	for input, expected := range tests {

		name := EntryName(input)

		if name != expected {
			t.Fatalf("Unexpected entry name for %q: %q (expected %q)", input, name, expected)
		}

		if !re_safe.MatchString(name) {
			t.Fatalf("Entry name %q contains unsafe characters", name)
		}
	}
}

func TestNamer(t *testing.T) {

	n := new(Namer)

	inputs := []string{
		"a b.jpg",
		"a_b.jpeg",
		"a?b.JPG",
		"a_b_2.jpg",
		"c.jpg",
	}

	expected := []string{
		"a_b.kml",
		"a_b_2.kml",
		"a_b_3.kml",
		"a_b_2_2.kml",
		"c.kml",
	}

	for i, input := range inputs {
		if name := n.Name(input); name != expected[i] {
			t.Fatalf("Unexpected name for %q: %q (expected %q)", input, name, expected[i])
		}
	}
}

func TestAssemble(t *testing.T) {

	ctx := context.Background()

	docs := []*Document{
		{EntryName: "one.kml", Content: []byte("<kml>one</kml>")},
		{EntryName: "two.kml", Content: bytes.Repeat([]byte("<kml>two</kml>"), 100)},
	}

	for _, method := range []uint16{Store, Deflate} {

		opts := DefaultAssembleOptions()
		opts.Method = method

		body, err := Assemble(ctx, docs, opts)

		if err != nil {
			t.Fatalf("Failed to assemble archive, %v", err)
		}

		again, err := Assemble(ctx, docs, opts)

		if err != nil {
			t.Fatalf("Failed to assemble archive, %v", err)
		}

		if !bytes.Equal(body, again) {
			t.Fatalf("Expected identical inputs to produce identical archives")
		}

		r, err := zip.NewReader(bytes.NewReader(body), int64(len(body)))

		if err != nil {
			t.Fatalf("Failed to read archive, %v", err)
		}

		if len(r.File) != len(docs) {
			t.Fatalf("Expected %d entries, got %d", len(docs), len(r.File))
		}

		for i, f := range r.File {

			if f.Name != docs[i].EntryName {
				t.Fatalf("Unexpected entry %d: %s", i, f.Name)
			}

			if f.Method != method {
				t.Fatalf("Unexpected method for %s: %d", f.Name, f.Method)
			}

			fh, err := f.Open()

			if err != nil {
				t.Fatalf("Failed to open %s, %v", f.Name, err)
			}

			content, err := io.ReadAll(fh)
			fh.Close()

			if err != nil {
				t.Fatalf("Failed to read %s, %v", f.Name, err)
			}

			if !bytes.Equal(content, docs[i].Content) {
				t.Fatalf("Unexpected content for %s", f.Name)
			}
		}
	}
}

func TestAssembleErrors(t *testing.T) {

	ctx := context.Background()

	dupes := []*Document{
		{EntryName: "a.kml", Content: []byte("a")},
		{EntryName: "a.kml", Content: []byte("b")},
	}

	if _, err := Assemble(ctx, dupes, nil); err == nil {
		t.Fatalf("Expected duplicate entry names to fail")
	}

	if _, err := Assemble(ctx, []*Document{{Content: []byte("a")}}, nil); err == nil {
		t.Fatalf("Expected missing entry name to fail")
	}

	if _, err := Assemble(ctx, nil, &AssembleOptions{Method: 99}); err == nil {
		t.Fatalf("Expected unsupported method to fail")
	}

	if _, err := Assemble(ctx, nil, &AssembleOptions{Method: Deflate, Level: 42}); err == nil {
		t.Fatalf("Expected invalid level to fail")
	}

	cancelled, cancel := context.WithCancel(ctx)
	cancel()

	if _, err := Assemble(cancelled, dupes, nil); err != context.Canceled {
		t.Fatalf("Expected context.Canceled, got %v", err)
	}
}
