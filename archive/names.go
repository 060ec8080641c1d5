package archive

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

// The extension appended to every entry name.
const Extension = ".kml"

// The name used when a sanitized filename is empty.
const DefaultName = "placemark"

var re_ext = regexp.MustCompile(`\.[^.]+$`)

// EntryName derives an archive entry name from an image filename: the (last) extension is removed,
// every character outside [A-Za-z0-9-_.] is replaced with "_" and Extension is appended.
func EntryName(filename string) string {

	base := filepath.Base(filename)

	if base == "." || base == string(filepath.Separator) {
		base = ""
	}

	base = re_ext.ReplaceAllString(base, "")

	var sb strings.Builder

	for _, r := range base {

		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			sb.WriteRune(r)
		default:
			sb.WriteRune('_')
		}
	}

	name := sb.String()

	if name == "" {
		name = DefaultName
	}

	return name + Extension
}

// Namer assigns unique entry names within a single archive. The zero value is ready to use.
type Namer struct {
	seen map[string]bool
}

// Name returns EntryName(filename), disambiguated with a "_2", "_3", ... suffix if that name
// (or the suffixed name) has already been assigned.
func (n *Namer) Name(filename string) string {

	if n.seen == nil {
		n.seen = make(map[string]bool)
	}

	name := EntryName(filename)

	if !n.seen[name] {
		n.seen[name] = true
		return name
	}

	stem := strings.TrimSuffix(name, Extension)

	for i := 2; ; i++ {

		candidate := fmt.Sprintf("%s_%d%s", stem, i, Extension)

		if !n.seen[candidate] {
			n.seen[candidate] = true
			return candidate
		}
	}
}
