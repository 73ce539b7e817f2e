package schema

import "strings"

// Kind identifies an element variant.
type Kind string

// Element kinds as they appear in the "type" field.
const (
	KindText    Kind = "text"
	KindImage   Kind = "image"
	KindBarcode Kind = "barcode"
	KindQRCode  Kind = "qrcode"
)

// Element defaults applied when a field is absent.
const (
	DefaultWidth    = 80
	DefaultHeight   = 20
	DefaultFontSize = 12
)

// Element is a positioned drawable unit of a layout.
// The set of implementations is closed: Text, Image, Barcode, QRCode and Unsupported.
type Element interface {
	// Kind returns the element variant.
	Kind() Kind
	// Base returns the shared placement fields.
	Base() Frame
	isElement()
}

// Frame holds the fields every element carries.
type Frame struct {
	ID      string
	X, Y    int
	W, H    int
	DataKey string // trimmed; empty means unbound
	Index   int    // 0-based position in the source element list
}

// Bound reports whether the element has a data key.
func (f Frame) Bound() bool { return f.DataKey != "" }

// Text draws a string at its top-left position.
type Text struct {
	Frame
	FontSize int
	Value    string // literal fallback when the data key yields nothing
}

// Image composites a fetched raster asset into its box.
type Image struct{ Frame }

// Barcode composites a linear barcode into its box.
type Barcode struct{ Frame }

// QRCode composites a QR symbol into its box.
type QRCode struct{ Frame }

// Unsupported is an element whose type is not known to this version.
type Unsupported struct {
	Frame
	Type string
}

func (Text) Kind() Kind          { return KindText }
func (Image) Kind() Kind         { return KindImage }
func (Barcode) Kind() Kind       { return KindBarcode }
func (QRCode) Kind() Kind        { return KindQRCode }
func (u Unsupported) Kind() Kind { return Kind(u.Type) }

func (e Text) Base() Frame        { return e.Frame }
func (e Image) Base() Frame       { return e.Frame }
func (e Barcode) Base() Frame     { return e.Frame }
func (e QRCode) Base() Frame      { return e.Frame }
func (e Unsupported) Base() Frame { return e.Frame }

func (Text) isElement()        {}
func (Image) isElement()       {}
func (Barcode) isElement()     {}
func (QRCode) isElement()      {}
func (Unsupported) isElement() {}

// ElementSpec is the exchange shape of one element. Numeric fields are
// pointers so that absent values can be told apart from zero.
type ElementSpec struct {
	ID       string `json:"id,omitempty" yaml:"id,omitempty" toml:"id,omitempty" bson:"id,omitempty"`
	Type     string `json:"type" yaml:"type" toml:"type" bson:"type"`
	X        *int   `json:"x,omitempty" yaml:"x,omitempty" toml:"x,omitempty" bson:"x,omitempty"`
	Y        *int   `json:"y,omitempty" yaml:"y,omitempty" toml:"y,omitempty" bson:"y,omitempty"`
	W        *int   `json:"w,omitempty" yaml:"w,omitempty" toml:"w,omitempty" bson:"w,omitempty"`
	H        *int   `json:"h,omitempty" yaml:"h,omitempty" toml:"h,omitempty" bson:"h,omitempty"`
	FontSize *int   `json:"fontSize,omitempty" yaml:"fontSize,omitempty" toml:"fontSize,omitempty" bson:"fontSize,omitempty"`
	DataKey  string `json:"dataKey,omitempty" yaml:"dataKey,omitempty" toml:"dataKey,omitempty" bson:"dataKey,omitempty"`
	Value    string `json:"value,omitempty" yaml:"value,omitempty" toml:"value,omitempty" bson:"value,omitempty"`
}

// Document is the top-level exchange shape of a schema.
type Document struct {
	Elements []ElementSpec `json:"elements" yaml:"elements" toml:"elements" bson:"elements"`
}

// newElement converts a spec at position index into its variant, applying defaults.
func newElement(spec ElementSpec, index int) Element {
	f := Frame{
		ID:      spec.ID,
		X:       nonNegative(spec.X, 0),
		Y:       nonNegative(spec.Y, 0),
		W:       positive(spec.W, DefaultWidth),
		H:       positive(spec.H, DefaultHeight),
		DataKey: strings.TrimSpace(spec.DataKey),
		Index:   index,
	}

	switch Kind(spec.Type) {
	case KindText:
		return Text{Frame: f, FontSize: positive(spec.FontSize, DefaultFontSize), Value: spec.Value}
	case KindImage:
		return Image{Frame: f}
	case KindBarcode:
		return Barcode{Frame: f}
	case KindQRCode:
		return QRCode{Frame: f}
	default:
		return Unsupported{Frame: f, Type: spec.Type}
	}
}

// specOf converts an element back into its exchange shape.
func specOf(e Element) ElementSpec {
	f := e.Base()
	spec := ElementSpec{
		ID:      f.ID,
		Type:    string(e.Kind()),
		X:       intPtr(f.X),
		Y:       intPtr(f.Y),
		W:       intPtr(f.W),
		H:       intPtr(f.H),
		DataKey: f.DataKey,
	}
	if t, ok := e.(Text); ok {
		spec.FontSize = intPtr(t.FontSize)
		spec.Value = t.Value
	}
	return spec
}

func nonNegative(v *int, def int) int {
	if v == nil {
		return def
	}
	return max(*v, 0)
}

func positive(v *int, def int) int {
	if v == nil || *v <= 0 {
		return def
	}
	return *v
}

func intPtr(v int) *int { return &v }
