// Package metadatatest builds JPEG images carrying EXIF and GPS tags, for use in tests.
package metadatatest

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/color"
	"image/jpeg"
	"math"
	"sort"
)

// GPS describes the GPS IFD written by JPEG. Zero values are omitted.
type GPS struct {
	Latitude          []float64
	LatitudeRef       string
	Longitude         []float64
	LongitudeRef      string
	Altitude          *float64
	AltitudeRef       *byte
	ImgDirection      *float64
	ImgDirectionRef   string
	HPositioningError *float64
	DateStamp         string
	TimeStamp         []float64
}

// Fixture describes the image returned by JPEG.
type Fixture struct {
	Make              string
	Model             string
	LensModel         string
	DateTimeOriginal  string
	DateTimeDigitized string
	GPS               *GPS
	// If true a real (decodable) 16x16 pixel image follows the EXIF segment. Otherwise the
	// image is just a SOI marker, the EXIF segment and an EOI marker.
	Pixels bool
}

// Float returns a pointer to 'v'.
func Float(v float64) *float64 {
	return &v
}

// Byte returns a pointer to 'v'.
func Byte(v byte) *byte {
	return &v
}

const (
	typeByte     uint16 = 1
	typeASCII    uint16 = 2
	typeLong     uint16 = 4
	typeRational uint16 = 5
)

const rationalDenominator = 10000

var order = binary.LittleEndian

type entry struct {
	tag   uint16
	typ   uint16
	count uint32
	data  []byte
}

type ifd []entry

func (d ifd) size() uint32 {

	n := uint32(2 + 12*len(d) + 4)

	for _, e := range d {
		if len(e.data) > 4 {
			n += uint32(len(e.data) + len(e.data)%2)
		}
	}

	return n
}

func (d ifd) encode(buf *bytes.Buffer, start uint32) {

	sort.Slice(d, func(i, j int) bool { return d[i].tag < d[j].tag })

	data_offset := start + uint32(2+12*len(d)+4)
	data := new(bytes.Buffer)

	binary.Write(buf, order, uint16(len(d)))

	for _, e := range d {

		binary.Write(buf, order, e.tag)
		binary.Write(buf, order, e.typ)
		binary.Write(buf, order, e.count)

		if len(e.data) <= 4 {
			v := make([]byte, 4)
			copy(v, e.data)
			buf.Write(v)
			continue
		}

		binary.Write(buf, order, data_offset+uint32(data.Len()))
		data.Write(e.data)

		if len(e.data)%2 == 1 {
			data.WriteByte(0)
		}
	}

	binary.Write(buf, order, uint32(0))
	buf.Write(data.Bytes())
}

func asciiEntry(tag uint16, s string) entry {
	b := append([]byte(s), 0)
	return entry{tag: tag, typ: typeASCII, count: uint32(len(b)), data: b}
}

func byteEntry(tag uint16, v ...byte) entry {
	return entry{tag: tag, typ: typeByte, count: uint32(len(v)), data: v}
}

func longEntry(tag uint16, v uint32) entry {
	b := make([]byte, 4)
	order.PutUint32(b, v)
	return entry{tag: tag, typ: typeLong, count: 1, data: b}
}

func rationalEntry(tag uint16, values ...float64) entry {

	b := make([]byte, 8*len(values))

	for i, v := range values {
		num := uint32(math.Round(v * rationalDenominator))
		order.PutUint32(b[i*8:], num)
		order.PutUint32(b[i*8+4:], rationalDenominator)
	}

	return entry{tag: tag, typ: typeRational, count: uint32(len(values)), data: b}
}

// TIFF returns the TIFF structure (the payload of an EXIF APP1 segment, minus its "Exif\0\0" header) for 'f'.
func TIFF(f *Fixture) []byte {

	ifd0 := ifd{}
	exif_ifd := ifd{}
	gps_ifd := ifd{}

	if f.Make != "" {
		ifd0 = append(ifd0, asciiEntry(0x010F, f.Make))
	}

	if f.Model != "" {
		ifd0 = append(ifd0, asciiEntry(0x0110, f.Model))
	}

	if f.DateTimeOriginal != "" {
		exif_ifd = append(exif_ifd, asciiEntry(0x9003, f.DateTimeOriginal))
	}

	if f.DateTimeDigitized != "" {
		exif_ifd = append(exif_ifd, asciiEntry(0x9004, f.DateTimeDigitized))
	}

	if f.LensModel != "" {
		exif_ifd = append(exif_ifd, asciiEntry(0xA434, f.LensModel))
	}

	if g := f.GPS; g != nil {

		gps_ifd = append(gps_ifd, byteEntry(0x0000, 2, 3, 0, 0))

		if g.LatitudeRef != "" {
			gps_ifd = append(gps_ifd, asciiEntry(0x0001, g.LatitudeRef))
		}

		if len(g.Latitude) > 0 {
			gps_ifd = append(gps_ifd, rationalEntry(0x0002, g.Latitude...))
		}

		if g.LongitudeRef != "" {
			gps_ifd = append(gps_ifd, asciiEntry(0x0003, g.LongitudeRef))
		}

		if len(g.Longitude) > 0 {
			gps_ifd = append(gps_ifd, rationalEntry(0x0004, g.Longitude...))
		}

		if g.AltitudeRef != nil {
			gps_ifd = append(gps_ifd, byteEntry(0x0005, *g.AltitudeRef))
		}

		if g.Altitude != nil {
			gps_ifd = append(gps_ifd, rationalEntry(0x0006, *g.Altitude))
		}

		if len(g.TimeStamp) > 0 {
			gps_ifd = append(gps_ifd, rationalEntry(0x0007, g.TimeStamp...))
		}

		if g.ImgDirectionRef != "" {
			gps_ifd = append(gps_ifd, asciiEntry(0x0010, g.ImgDirectionRef))
		}

		if g.ImgDirection != nil {
			gps_ifd = append(gps_ifd, rationalEntry(0x0011, *g.ImgDirection))
		}

		if g.DateStamp != "" {
			gps_ifd = append(gps_ifd, asciiEntry(0x001D, g.DateStamp))
		}

		if g.HPositioningError != nil {
			gps_ifd = append(gps_ifd, rationalEntry(0x001F, *g.HPositioningError))
		}
	}

	// pointer entries are appended with placeholder values first so that ifd0.size() is final

	if len(exif_ifd) > 0 {
		ifd0 = append(ifd0, longEntry(0x8769, 0))
	}

	if len(gps_ifd) > 0 {
		ifd0 = append(ifd0, longEntry(0x8825, 0))
	}

	ifd0_offset := uint32(8)
	exif_offset := ifd0_offset + ifd0.size()
	gps_offset := exif_offset

	if len(exif_ifd) > 0 {
		gps_offset = exif_offset + exif_ifd.size()
	}

	for i, e := range ifd0 {
		switch e.tag {
		case 0x8769:
			ifd0[i] = longEntry(0x8769, exif_offset)
		case 0x8825:
			ifd0[i] = longEntry(0x8825, gps_offset)
		}
	}

	buf := new(bytes.Buffer)
	buf.WriteString("II")
	binary.Write(buf, order, uint16(42))
	binary.Write(buf, order, ifd0_offset)

	ifd0.encode(buf, ifd0_offset)

	if len(exif_ifd) > 0 {
		exif_ifd.encode(buf, exif_offset)
	}

	if len(gps_ifd) > 0 {
		gps_ifd.encode(buf, gps_offset)
	}

	return buf.Bytes()
}

// JPEG returns the bytes of a JPEG image whose APP1 segment carries the EXIF data described by 'f'.
func JPEG(f *Fixture) []byte {

	payload := append([]byte("Exif\x00\x00"), TIFF(f)...)

	app1 := []byte{0xFF, 0xE1}
	app1 = binary.BigEndian.AppendUint16(app1, uint16(len(payload)+2))
	app1 = append(app1, payload...)

	out := []byte{0xFF, 0xD8}
	out = append(out, app1...)

	if f.Pixels {
		out = append(out, Plain()[2:]...)
	} else {
		out = append(out, 0xFF, 0xD9)
	}

	return out
}

// Plain returns the bytes of a small JPEG image without any EXIF data.
func Plain() []byte {

	im := image.NewRGBA(image.Rect(0, 0, 16, 16))

	for x := 0; x < 16; x++ {
		for y := 0; y < 16; y++ {
			im.Set(x, y, color.RGBA{R: uint8(x * 16), G: uint8(y * 16), B: 128, A: 255})
		}
	}

	buf := new(bytes.Buffer)

	err := jpeg.Encode(buf, im, nil)

	if err != nil {
		panic(err)
	}

	return buf.Bytes()
}
