package render

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/draw"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"
	"golang.org/x/image/font"

	"github.com/matzehuels/labelpress/pkg/asset"
	"github.com/matzehuels/labelpress/pkg/errors"
	"github.com/matzehuels/labelpress/pkg/fonts"
	"github.com/matzehuels/labelpress/pkg/observability"
	"github.com/matzehuels/labelpress/pkg/schema"
	"github.com/matzehuels/labelpress/pkg/symbol"
)

// DefaultMaxCanvasPixels caps the canvas at 100 megapixels.
const DefaultMaxCanvasPixels = 100_000_000

// Literal payloads used when neither the element's key nor "sku" has a value.
const (
	FallbackBarcode = "CODE"
	FallbackQR      = "QR"
	SKUKey          = "sku"
)

// Options configures a [Renderer]. Zero fields take defaults.
type Options struct {
	Fonts           *fonts.Provider         // default: embedded font
	Assets          *asset.Resolver         // default: every image is a placeholder
	Barcodes        symbol.BarcodeGenerator // default: Code 128 with EAN-13 fallback
	QR              symbol.QRGenerator      // default: Medium recovery
	MaxCanvasPixels int                     // default: DefaultMaxCanvasPixels
	Logger          *log.Logger             // default: discard
}

// Renderer composites label layouts. It is safe for concurrent use.
type Renderer struct {
	opts Options
}

// New returns a renderer with defaults applied to opts.
func New(opts Options) *Renderer {
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	if opts.Fonts == nil {
		opts.Fonts = fonts.New("", opts.Logger)
	}
	if opts.Assets == nil {
		opts.Assets = asset.NewResolver(nil, 0, opts.Logger)
	}
	if opts.MaxCanvasPixels <= 0 {
		opts.MaxCanvasPixels = DefaultMaxCanvasPixels
	}
	return &Renderer{opts: opts}
}

// FontSource names the font the renderer draws text with.
func (r *Renderer) FontSource() string { return r.opts.Fonts.Source() }

// RenderTemplate renders a template's layout at its own size.
func (r *Renderer) RenderTemplate(ctx context.Context, t schema.Template, data Data) (*image.RGBA, error) {
	return r.Render(ctx, t.Layout(), TargetOf(t), data)
}

// Render draws s at target with data. The result is always opaque and
// exactly target.Pixels() in size.
func (r *Renderer) Render(ctx context.Context, s schema.Schema, target Target, data Data) (img *image.RGBA, err error) {
	hooks := observability.Render()
	hooks.OnRenderStart(ctx, s.Len())
	start := time.Now()
	var w, h int
	defer func() {
		hooks.OnRenderComplete(ctx, w, h, time.Since(start), err)
	}()

	if err := target.Validate(); err != nil {
		return nil, err
	}
	if w, h, err = target.canvas(r.opts.MaxCanvasPixels); err != nil {
		return nil, err
	}

	canvas := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(canvas, canvas.Bounds(), image.White, image.Point{}, draw.Src)

	run := &job{
		Renderer: r,
		ctx:      ctx,
		canvas:   canvas,
		dc:       gg.NewContextForRGBA(canvas),
		data:     data,
		faces:    make(map[int]font.Face),
	}
	for _, e := range s.Elements() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := run.draw(e); err != nil {
			return nil, err
		}
	}
	return canvas, nil
}

// job holds the state of one Render call.
type job struct {
	*Renderer
	ctx    context.Context
	canvas *image.RGBA
	dc     *gg.Context
	data   Data
	faces  map[int]font.Face
}

func (j *job) draw(e schema.Element) error {
	switch e := e.(type) {
	case schema.Text:
		if err := j.fits(e, e.FontSize, e.FontSize); err != nil {
			return err
		}
		j.drawText(e)
	case schema.Image:
		if err := j.fits(e, e.W, e.H); err != nil {
			return err
		}
		j.drawImage(e)
	case schema.Barcode:
		if err := j.fits(e, e.W, e.H); err != nil {
			return err
		}
		j.drawBarcode(e)
	case schema.QRCode:
		if err := j.fits(e, e.W, e.H); err != nil {
			return err
		}
		return j.drawQR(e)
	default:
		j.opts.Logger.Debug("skipping unsupported element", "type", e.Kind(), "index", e.Base().Index)
	}
	return nil
}

func (j *job) drawText(e schema.Text) {
	text := e.Value
	if v, ok := j.data.lookup(e.DataKey); ok {
		text = v
	}
	if text == "" {
		return
	}

	face := j.face(e.FontSize)
	m := face.Metrics()
	ascent := float64(m.Ascent) / 64
	lineHeight := float64(m.Height) / 64

	j.dc.SetFontFace(face)
	j.dc.SetColor(color.Black)
	y := float64(e.Y) + ascent
	for _, line := range strings.Split(text, "\n") {
		j.dc.DrawString(line, float64(e.X), y)
		y += lineHeight
	}
}

func (j *job) drawImage(e schema.Image) {
	ref, _ := j.data.lookup(e.DataKey)
	img, ok := j.opts.Assets.Resolve(j.ctx, ref, e.W, e.H)
	if !ok && ref != "" {
		j.degraded(e.Frame, e.Kind(), "image unavailable")
	}
	j.composite(img, e.Frame)
}

func (j *job) drawBarcode(e schema.Barcode) {
	payload := j.data.first(FallbackBarcode, e.DataKey, SKUKey)
	res := j.opts.Barcodes.Generate(payload, e.W, e.H)
	if res.Degraded() {
		reason := "encoded as " + string(res.Symbology)
		if res.Err != nil {
			reason = res.Err.Error()
		}
		j.opts.Logger.Warn("barcode degraded", "element", e.ID, "payload", payload, "symbology", res.Symbology, "err", res.Err)
		j.degraded(e.Frame, e.Kind(), reason)
	}
	j.composite(res.Image, e.Frame)
}

func (j *job) drawQR(e schema.QRCode) error {
	payload := j.data.first(FallbackQR, e.DataKey, SKUKey)
	img, err := j.opts.QR.Generate(payload, e.W, e.H)
	if err != nil {
		j.opts.Logger.Error("qr encode failed", "element", e.ID, "err", err)
		return err
	}
	j.composite(img, e.Frame)
	return nil
}

// fits refuses an element whose w×h raster would be larger than the
// canvas cap. Symbols and placeholders are allocated at full box size
// before clipping.
func (j *job) fits(e schema.Element, w, h int) error {
	w, h = max(w, 1), max(h, 1)
	if w > j.opts.MaxCanvasPixels/h {
		return errors.New(errors.ErrCodeResourceExhausted, "%s element %d: %dx%d box exceeds %d pixels",
			e.Kind(), e.Base().Index, w, h, j.opts.MaxCanvasPixels)
	}
	return nil
}

// composite alpha-blends src onto the canvas at the element's origin.
func (j *job) composite(src image.Image, f schema.Frame) {
	cb := j.canvas.Bounds()
	if f.X >= cb.Max.X || f.Y >= cb.Max.Y {
		return
	}
	b := src.Bounds()
	dst := image.Rect(f.X, f.Y, f.X+b.Dx(), f.Y+b.Dy())
	draw.Draw(j.canvas, dst, src, b.Min, draw.Over)
}

func (j *job) face(size int) font.Face {
	if face, ok := j.faces[size]; ok {
		return face
	}
	face := j.opts.Fonts.Face(size)
	j.faces[size] = face
	return face
}

func (j *job) degraded(f schema.Frame, kind schema.Kind, reason string) {
	observability.Render().OnElementDegraded(j.ctx, string(kind), f.Index, reason)
}

// EncodePNG encodes img as lossless PNG.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := WritePNG(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WritePNG writes img to w as lossless PNG.
func WritePNG(w io.Writer, img image.Image) error {
	if err := imaging.Encode(w, img, imaging.PNG); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "encode png")
	}
	return nil
}
