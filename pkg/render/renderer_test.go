package render

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"math"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/boombuler/barcode"
	"github.com/disintegration/imaging"

	"github.com/matzehuels/labelpress/pkg/asset"
	"github.com/matzehuels/labelpress/pkg/errors"
	"github.com/matzehuels/labelpress/pkg/schema"
	"github.com/matzehuels/labelpress/pkg/symbol"
)

var (
	red  = color.NRGBA{R: 255, A: 255}
	blue = color.NRGBA{B: 255, A: 255}

	labelTarget = Target{WidthMM: 50, HeightMM: 30, DPI: 300}
)

func mustParse(t *testing.T, doc string) schema.Schema {
	t.Helper()
	s, err := schema.Parse([]byte(doc))
	if err != nil {
		t.Fatalf("schema.Parse: %v", err)
	}
	return s
}

func newTestRenderer(opts Options) *Renderer {
	if opts.Assets == nil {
		mem := asset.NewMemoryFetcher()
		mem.Add("red", imaging.New(4, 4, red))
		mem.Add("blue", imaging.New(4, 4, blue))
		opts.Assets = asset.NewResolver(mem, time.Second, nil)
	}
	return New(opts)
}

func pixel(img *image.RGBA, x, y int) color.RGBA {
	return img.RGBAAt(x, y)
}

func within(a, b uint8) bool {
	d := int(a) - int(b)
	return d >= -3 && d <= 3
}

func isColor(c color.RGBA, want color.NRGBA) bool {
	return within(c.R, want.R) && within(c.G, want.G) && within(c.B, want.B)
}

func countDark(img *image.RGBA, r image.Rectangle) int {
	n := 0
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			if img.RGBAAt(x, y).R < 128 {
				n++
			}
		}
	}
	return n
}

// inkBounds returns the smallest rectangle holding every non-white pixel.
func inkBounds(img *image.RGBA) image.Rectangle {
	var r image.Rectangle
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if c := img.RGBAAt(x, y); c.R != 255 || c.G != 255 || c.B != 255 {
				r = r.Union(image.Rect(x, y, x+1, y+1))
			}
		}
	}
	return r
}

func TestRenderWidgetScenario(t *testing.T) {
	s := mustParse(t, `{"elements":[{"type":"text","x":0,"y":0,"w":100,"h":20,"dataKey":"name"}]}`)

	tests := []struct {
		name    string
		data    Data
		wantInk bool
	}{
		{"named", Data{"name": "Widget"}, true},
		{"missing name", Data{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img, err := newTestRenderer(Options{}).Render(context.Background(), s, labelTarget, tt.data)
			if err != nil {
				t.Fatalf("Render: %v", err)
			}
			if b := img.Bounds(); b.Dx() != 591 || b.Dy() != 354 {
				t.Errorf("size = %dx%d, want 591x354", b.Dx(), b.Dy())
			}

			ink := inkBounds(img)
			if !tt.wantInk {
				if !ink.Empty() {
					t.Errorf("marks at %v, want a blank label", ink)
				}
				return
			}
			if ink.Empty() {
				t.Fatal("no marks, want the text Widget")
			}
			if box := image.Rect(0, 0, 100, 20); !ink.In(box) {
				t.Errorf("marks span %v, want them inside the text box %v", ink, box)
			}
		})
	}
}

func TestRenderTextOffset(t *testing.T) {
	s := mustParse(t, `{"elements":[{"type":"text","x":10,"y":10,"dataKey":"name"}]}`)
	img, err := newTestRenderer(Options{}).Render(context.Background(), s, labelTarget, Data{"name": "Widget"})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}

	if b := img.Bounds(); b.Dx() != 591 || b.Dy() != 354 {
		t.Errorf("size = %dx%d, want 591x354", b.Dx(), b.Dy())
	}
	if n := countDark(img, image.Rect(10, 10, 90, 30)); n == 0 {
		t.Error("no text pixels near (10,10)")
	}
	if n := countDark(img, image.Rect(0, 0, 10, 354)); n != 0 {
		t.Errorf("%d dark pixels left of the text origin, want 0", n)
	}
	if n := countDark(img, image.Rect(0, 60, 591, 354)); n != 0 {
		t.Errorf("%d dark pixels below the text line, want 0", n)
	}
}

func TestRenderEmptyDataScenario(t *testing.T) {
	s := mustParse(t, `{"elements":[
		{"type":"text","x":5,"y":5,"dataKey":"product_name"},
		{"type":"image","x":5,"y":40,"w":80,"h":40,"dataKey":"logo"},
		{"type":"barcode","x":100,"y":40,"w":140,"h":60,"dataKey":"code_value"},
		{"type":"qrcode","x":260,"y":40,"w":60,"h":60,"dataKey":"code_value"}
	]}`)

	img, err := newTestRenderer(Options{}).Render(context.Background(), s, labelTarget, Data{})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 591 || b.Dy() != 354 {
		t.Errorf("size = %dx%d, want 591x354", b.Dx(), b.Dy())
	}
	if c := pixel(img, 5, 40); !isColor(c, asset.PlaceholderBorder) {
		t.Errorf("image origin = %v, want placeholder border", c)
	}
	if n := countDark(img, image.Rect(100, 40, 240, 100)); n == 0 {
		t.Error("barcode box is blank, want the CODE barcode")
	}
	if n := countDark(img, image.Rect(260, 40, 320, 100)); n == 0 {
		t.Error("qr box is blank, want the QR fallback")
	}
	if n := countDark(img, image.Rect(0, 0, 591, 39)); n != 0 {
		t.Errorf("text row has %d dark pixels, want none for a missing value", n)
	}
}

func TestRenderTextValueFallback(t *testing.T) {
	s := mustParse(t, `[{"type":"text","x":0,"y":0,"dataKey":"missing","value":"Fallback"}]`)
	img, err := newTestRenderer(Options{}).Render(context.Background(), s, labelTarget, nil)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if n := countDark(img, image.Rect(0, 0, 100, 20)); n == 0 {
		t.Error("literal value not drawn")
	}
}

func TestRenderPaintOrder(t *testing.T) {
	s := mustParse(t, `[
		{"type":"image","x":0,"y":0,"w":100,"h":100,"dataKey":"first"},
		{"type":"image","x":50,"y":50,"w":100,"h":100,"dataKey":"second"}
	]`)
	img, err := newTestRenderer(Options{}).Render(context.Background(), s, labelTarget, Data{"first": "red", "second": "blue"})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}

	tests := []struct {
		name string
		x, y int
		want color.NRGBA
	}{
		{"first only", 25, 25, red},
		{"overlap", 75, 75, blue},
		{"second only", 125, 125, blue},
		{"background", 200, 200, color.NRGBA{255, 255, 255, 255}},
	}
	for _, tt := range tests {
		if c := pixel(img, tt.x, tt.y); !isColor(c, tt.want) {
			t.Errorf("%s pixel (%d,%d) = %v, want %v", tt.name, tt.x, tt.y, c, tt.want)
		}
	}
}

func TestRenderMissingImageUsesPlaceholder(t *testing.T) {
	s := mustParse(t, `[{"type":"image","x":20,"y":20,"w":80,"h":40,"dataKey":"logo"}]`)
	img, err := newTestRenderer(Options{}).Render(context.Background(), s, labelTarget, Data{"logo": "https://unreachable.invalid/logo.png"})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if c := pixel(img, 20, 20); !isColor(c, asset.PlaceholderBorder) {
		t.Errorf("corner = %v, want placeholder border", c)
	}
	if c := pixel(img, 90, 50); !isColor(c, asset.PlaceholderFill) {
		t.Errorf("inside = %v, want placeholder fill", c)
	}
}

func TestRenderBarcodeNeverFails(t *testing.T) {
	fail := func(string) (barcode.Barcode, error) { return nil, errors.New(errors.ErrCodeEncodeFailed, "forced") }
	r := newTestRenderer(Options{Barcodes: symbol.BarcodeGenerator{Code128: fail, EAN13: fail}})

	s := mustParse(t, `[{"type":"barcode","x":10,"y":10,"w":120,"h":40,"dataKey":"code"}]`)
	img, err := r.Render(context.Background(), s, labelTarget, Data{"code": "ABC-1"})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if n := countDark(img, image.Rect(10, 10, 130, 50)); n == 0 {
		t.Error("error raster text missing")
	}
}

func TestRenderQRFailureAborts(t *testing.T) {
	s := mustParse(t, `[{"type":"qrcode","dataKey":"code"}]`)
	_, err := newTestRenderer(Options{}).Render(context.Background(), s, labelTarget, Data{"code": strings.Repeat("x", 5000)})
	if !errors.Is(err, errors.ErrCodeEncodeFailed) {
		t.Errorf("Render error = %v, want ENCODE_FAILED", err)
	}
}

func TestRenderTargetErrors(t *testing.T) {
	s := mustParse(t, `[]`)

	tests := []struct {
		name   string
		target Target
		max    int
		code   errors.Code
	}{
		{"zero width", Target{WidthMM: 0, HeightMM: 30, DPI: 300}, 0, errors.ErrCodeInvalidTarget},
		{"negative height", Target{WidthMM: 50, HeightMM: -1, DPI: 300}, 0, errors.ErrCodeInvalidTarget},
		{"zero dpi", Target{WidthMM: 50, HeightMM: 30}, 0, errors.ErrCodeInvalidTarget},
		{"sub-pixel", Target{WidthMM: 0.01, HeightMM: 30, DPI: 100}, 0, errors.ErrCodeInvalidTarget},
		{"too large", labelTarget, 1000, errors.ErrCodeResourceExhausted},
		{"area wraps int64", Target{WidthMM: 4294967296, HeightMM: 4294967296, DPI: 25.4}, 0, errors.ErrCodeResourceExhausted},
		{"one huge side", Target{WidthMM: 1e300, HeightMM: 30, DPI: 300}, 0, errors.ErrCodeResourceExhausted},
		{"huge by sub-pixel", Target{WidthMM: 1e300, HeightMM: 1e-300, DPI: 300}, 0, errors.ErrCodeInvalidTarget},
		{"infinite width", Target{WidthMM: math.Inf(1), HeightMM: 30, DPI: 300}, 0, errors.ErrCodeInvalidTarget},
		{"nan height", Target{WidthMM: 50, HeightMM: math.NaN(), DPI: 300}, 0, errors.ErrCodeInvalidTarget},
		{"infinite dpi", Target{WidthMM: 50, HeightMM: 30, DPI: math.Inf(1)}, 0, errors.ErrCodeInvalidTarget},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestRenderer(Options{MaxCanvasPixels: tt.max})
			_, err := r.Render(context.Background(), s, tt.target, nil)
			if got := errors.GetCode(err); got != tt.code {
				t.Errorf("Render code = %q, want %q (err %v)", got, tt.code, err)
			}
		})
	}
}

func TestRenderOversizedElementBoxes(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"image", `[{"type":"image","w":2147483648,"h":2147483648,"dataKey":"img"}]`},
		{"barcode", `[{"type":"barcode","w":2147483648,"h":2147483648,"dataKey":"code"}]`},
		{"qrcode", `[{"type":"qrcode","w":2147483648,"h":2147483648,"dataKey":"code"}]`},
		{"wide barcode", `[{"type":"barcode","w":200000000,"h":1,"dataKey":"code"}]`},
		{"text", `[{"type":"text","fontSize":2147483648,"value":"big"}]`},
	}

	tiny := Target{WidthMM: 10, HeightMM: 10, DPI: 300}
	data := Data{"img": "red", "code": "ABC-1"}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newTestRenderer(Options{}).Render(context.Background(), mustParse(t, tt.doc), tiny, data)
			if !errors.Is(err, errors.ErrCodeResourceExhausted) {
				t.Errorf("Render error = %v, want RESOURCE_EXHAUSTED", err)
			}
		})
	}
}

func TestRenderOffCanvasElementIsSkipped(t *testing.T) {
	s := mustParse(t, `[
		{"type":"image","x":2147483647,"y":0,"w":100,"h":100,"dataKey":"img"},
		{"type":"barcode","x":0,"y":2147483647,"w":100,"h":40,"dataKey":"code"}
	]`)
	img, err := newTestRenderer(Options{}).Render(context.Background(), s, labelTarget, Data{"img": "red", "code": "ABC-1"})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	for i, v := range img.Pix {
		if v != 255 {
			t.Fatalf("pixel %d is not white, want a blank canvas", i/4)
		}
	}
}

func TestRenderOutputIsOpaqueAndClipped(t *testing.T) {
	s := mustParse(t, `[
		{"type":"image","x":560,"y":330,"w":100,"h":100,"dataKey":"img"},
		{"type":"widget","x":0,"y":0},
		{"type":"text","x":580,"y":340,"value":"overflowing text"}
	]`)
	img, err := newTestRenderer(Options{}).Render(context.Background(), s, labelTarget, Data{"img": "red"})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 591 || b.Dy() != 354 {
		t.Fatalf("size = %dx%d, want 591x354", b.Dx(), b.Dy())
	}
	for i := 3; i < len(img.Pix); i += 4 {
		if img.Pix[i] != 255 {
			t.Fatalf("pixel %d alpha = %d, want 255", i/4, img.Pix[i])
		}
	}
}

func TestRenderCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := mustParse(t, `[{"type":"text","value":"x"}]`)
	if _, err := newTestRenderer(Options{}).Render(ctx, s, labelTarget, nil); err != context.Canceled {
		t.Errorf("Render error = %v, want context.Canceled", err)
	}
}

func TestRenderTemplate(t *testing.T) {
	tmpl, _ := schema.PremadeByID("type-3")
	img, err := newTestRenderer(Options{}).RenderTemplate(context.Background(), tmpl, Data{"product_name": "Widget", "sku": "SKU-1"})
	if err != nil {
		t.Fatalf("RenderTemplate: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 591 || b.Dy() != 591 {
		t.Errorf("size = %dx%d, want 591x591", b.Dx(), b.Dy())
	}
}

func TestRenderConcurrentIdentical(t *testing.T) {
	tmpl, _ := schema.PremadeByID("type-1")
	r := newTestRenderer(Options{})
	data := Data{"product_name": "Widget", "sku": "SKU-1", "logo_image": "red"}

	const n = 4
	outputs := make([][]byte, n)
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			img, err := r.RenderTemplate(context.Background(), tmpl, data)
			if err != nil {
				errs[i] = err
				return
			}
			outputs[i], errs[i] = EncodePNG(img)
		}()
	}
	wg.Wait()

	for i := range n {
		if errs[i] != nil {
			t.Fatalf("render %d: %v", i, errs[i])
		}
		if !bytes.Equal(outputs[i], outputs[0]) {
			t.Errorf("render %d differs from render 0", i)
		}
	}
}

func TestEncodePNG(t *testing.T) {
	s := mustParse(t, `[{"type":"text","value":"PNG"}]`)
	img, err := newTestRenderer(Options{}).Render(context.Background(), s, labelTarget, nil)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}

	data, err := EncodePNG(img)
	if err != nil {
		t.Fatalf("EncodePNG: %v", err)
	}
	decoded, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("png.Decode: %v", err)
	}
	if b := decoded.Bounds(); b.Dx() != 591 || b.Dy() != 354 {
		t.Errorf("decoded size = %dx%d, want 591x354", b.Dx(), b.Dy())
	}
}
