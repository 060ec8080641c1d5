package kml

import (
	"strings"
)

var xml_replacer = strings.NewReplacer(
	"<", "&lt;",
	">", "&gt;",
	"&", "&amp;",
	"'", "&apos;",
	`"`, "&quot;",
)

var html_replacer = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#39;",
)

// EscapeXML escapes 'v' for use as text or attribute content in the (strict) KML document. Characters
// that are not allowed in XML 1.0 are dropped.
func EscapeXML(v string) string {
	return xml_replacer.Replace(stripInvalid(v))
}

// EscapeHTML escapes 'v' for use as a text node in a placemark's (HTML) description. The description is
// itself embedded in the KML document so characters that are not allowed in XML 1.0 are dropped.
func EscapeHTML(v string) string {
	return html_replacer.Replace(stripInvalid(v))
}

// stripInvalid removes every rune outside the XML 1.0 Char production.
func stripInvalid(v string) string {

	return strings.Map(func(r rune) rune {

		switch {
		case r == '\t', r == '\n', r == '\r':
			return r
		case r < 0x20:
			return -1
		case r >= 0xD800 && r <= 0xDFFF, r == 0xFFFE, r == 0xFFFF:
			return -1
		default:
			return r
		}
	}, v)
}
