package symbol

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/disintegration/imaging"
	qrcode "github.com/skip2/go-qrcode"

	lperrors "github.com/matzehuels/labelpress/pkg/errors"
)

// QR raster geometry.
const (
	qrModuleSize = 10 // px per module
	qrBorder     = 1  // quiet-zone modules on each side
)

// QREncoder turns a payload into a module matrix without a quiet zone.
// true marks a dark module.
type QREncoder func(payload string) ([][]bool, error)

// EncodeQR encodes payload at Medium recovery with the smallest fitting version.
func EncodeQR(payload string) ([][]bool, error) {
	q, err := qrcode.New(payload, qrcode.Medium)
	if err != nil {
		return nil, err
	}
	q.DisableBorder = true
	return q.Bitmap(), nil
}

// QRGenerator renders QR symbols. A zero value uses [EncodeQR].
type QRGenerator struct {
	Encode QREncoder
}

var defaultQR QRGenerator

// QR renders payload into a w×h raster using the default encoder.
func QR(payload string, w, h int) (*image.NRGBA, error) {
	return defaultQR.Generate(payload, w, h)
}

// Generate renders payload into a w×h raster. Payloads that fit no QR
// version fail with ENCODE_FAILED.
func (g QRGenerator) Generate(payload string, w, h int) (*image.NRGBA, error) {
	encode := g.Encode
	if encode == nil {
		encode = EncodeQR
	}

	matrix, err := encode(payload)
	if err != nil {
		return nil, lperrors.Wrap(lperrors.ErrCodeEncodeFailed, err, "qr payload of %d bytes", len(payload))
	}
	if len(matrix) == 0 {
		return nil, lperrors.New(lperrors.ErrCodeEncodeFailed, "qr encoder returned an empty matrix")
	}

	return imaging.Resize(qrRaster(matrix), max(w, 1), max(h, 1), imaging.Lanczos), nil
}

// qrRaster paints matrix at qrModuleSize with a qrBorder quiet zone.
func qrRaster(matrix [][]bool) *image.NRGBA {
	side := (len(matrix) + 2*qrBorder) * qrModuleSize
	img := imaging.New(side, side, color.White)

	dark := image.NewUniform(color.Black)
	for y, row := range matrix {
		for x, on := range row {
			if !on {
				continue
			}
			px := (x + qrBorder) * qrModuleSize
			py := (y + qrBorder) * qrModuleSize
			draw.Draw(img, image.Rect(px, py, px+qrModuleSize, py+qrModuleSize), dark, image.Point{}, draw.Src)
		}
	}
	return img
}
