// Package fields derives the data-entry contract of a label layout.
//
// [Discover] lists the keys a caller must supply to fill every element of
// a schema. Text and image elements contribute their data key (elements
// without one are static and skipped). Barcode and QR elements always
// contribute a key: their own, or a synthesized "<type>_value_<n>" where n
// is the element's 1-based position among all elements.
//
// Keys are de-duplicated in first-seen order. Text and image fields share
// one namespace; code fields are de-duplicated per kind, so a barcode and a
// QR code bound to the same key both appear.
package fields

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/matzehuels/labelpress/pkg/schema"
)

// Kind is the input type of a field.
type Kind string

const (
	KindText    Kind = "TEXT"
	KindImage   Kind = "IMAGE"
	KindBarcode Kind = "BARCODE"
	KindQRCode  Kind = "QRCODE"
)

// IsCode reports whether k is a barcode or QR field.
func (k Kind) IsCode() bool { return k == KindBarcode || k == KindQRCode }

// Descriptor is one fillable input of a layout.
type Descriptor struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Kind  Kind   `json:"kind"`
}

// Discover returns the fillable fields of s in schema order.
func Discover(s schema.Schema) []Descriptor {
	var out []Descriptor
	seen := make(map[string]bool)

	for _, e := range s.Elements() {
		f := e.Base()
		var (
			kind   Kind
			key    = f.DataKey
			dedupe string
		)

		switch e.(type) {
		case schema.Text, schema.Image:
			if key == "" {
				continue
			}
			kind = KindText
			if e.Kind() == schema.KindImage {
				kind = KindImage
			}
			dedupe = key
		case schema.Barcode, schema.QRCode:
			kind = KindBarcode
			if e.Kind() == schema.KindQRCode {
				kind = KindQRCode
			}
			if key == "" {
				key = string(e.Kind()) + "_value_" + strconv.Itoa(f.Index+1)
			}
			dedupe = string(kind) + "\x00" + key
		default:
			continue
		}

		if seen[dedupe] {
			continue
		}
		seen[dedupe] = true
		out = append(out, Descriptor{Key: key, Label: Label(key), Kind: kind})
	}
	return out
}

// Label turns a key into a display label: underscores become spaces and
// each word is capitalized with the rest lower-cased.
func Label(key string) string {
	var b strings.Builder
	b.Grow(len(key))
	prevLetter := false
	for _, r := range strings.ReplaceAll(key, "_", " ") {
		switch {
		case unicode.IsLetter(r) && !prevLetter:
			b.WriteRune(unicode.ToTitle(r))
		case unicode.IsLetter(r):
			b.WriteRune(unicode.ToLower(r))
		default:
			b.WriteRune(r)
		}
		prevLetter = unicode.IsLetter(r)
	}
	return b.String()
}
