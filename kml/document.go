// Package kml renders KML placemark documents, with an embedded photo and metadata table, for located photos.
package kml

import (
	"encoding/base64"
	"fmt"
	"mime"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/sfomuseum/go-photos-kmz/coords"
	"github.com/sfomuseum/go-photos-kmz/metadata"
)

const default_mimetype = "image/jpeg"

// DataURI returns a base64-encoded "data:" URI for 'body', with a mimetype derived from 'filename'.
func DataURI(filename string, body []byte) string {

	t := mime.TypeByExtension(strings.ToLower(filepath.Ext(filename)))

	if !strings.HasPrefix(t, "image/") {
		t = default_mimetype
	}

	return fmt.Sprintf("data:%s;base64,%s", t, base64.StdEncoding.EncodeToString(body))
}

// Description returns the HTML description for a placemark: a heading, the photo and a table of metadata rows.
func Description(filename string, md *metadata.Metadata, pt coords.Point, data_uri string) string {

	var sb strings.Builder

	for _, r := range Rows(md, pt) {
		sb.WriteString(`<tr><th style="text-align:left;padding:4px 8px;background:#f3f4f6;border:1px solid #d1d5db;">`)
		sb.WriteString(r.Label)
		sb.WriteString(`</th><td style="padding:4px 8px;border:1px solid #d1d5db;">`)
		sb.WriteString(r.Value)
		sb.WriteString(`</td></tr>`)
	}

	name := EscapeHTML(filename)

	return "\n" +
		`    <div style="font-family:Arial,sans-serif;">` + "\n" +
		`      <h2 style="margin-top:0;">` + name + `</h2>` + "\n" +
		`      <img src="` + data_uri + `" alt="` + name + `" style="max-width:100%;height:auto;border-radius:8px;margin-bottom:12px;" />` + "\n" +
		`      <table style="border-collapse:collapse;font-size:14px;">` + sb.String() + `</table>` + "\n" +
		`    </div>` + "\n  "
}

// Coordinates returns the "longitude,latitude,altitude" string for a KML Point. Altitude defaults to 0.
func Coordinates(md *metadata.Metadata, pt coords.Point) string {

	alt := 0.0

	if v, ok := coords.Altitude(md); ok {
		alt = v
	}

	return strings.Join([]string{
		formatFloat(pt.Longitude),
		formatFloat(pt.Latitude),
		formatFloat(alt),
	}, ",")
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Document returns a KML document containing a single placemark for a photo.
func Document(filename string, md *metadata.Metadata, pt coords.Point, data_uri string) []byte {

	description := Description(filename, md, pt, data_uri)

	var sb strings.Builder

	sb.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	sb.WriteString(`<kml xmlns="http://www.opengis.net/kml/2.2">` + "\n")
	sb.WriteString("  <Placemark>\n")
	sb.WriteString("    <name>" + EscapeXML(filename) + "</name>\n")
	sb.WriteString("    <description><![CDATA[" + cdata(description) + "]]></description>\n")
	sb.WriteString("    <Point>\n")
	sb.WriteString("      <coordinates>" + Coordinates(md, pt) + "</coordinates>\n")
	sb.WriteString("    </Point>\n")
	sb.WriteString("  </Placemark>\n")
	sb.WriteString("</kml>")

	return []byte(sb.String())
}

// cdata splits any "]]>" sequence so that it can't terminate the enclosing CDATA section.
func cdata(v string) string {
	return strings.ReplaceAll(v, "]]>", "]]]]><![CDATA[>")
}
