// Package sharecard renders the social share image served at
// /og-image.png: a 1200x630 PNG with the current temperature and air
// quality for a location, tinted by the EPA color of the AQI band.
package sharecard

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"strings"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"github.com/Pegasus1106/Ecohealth/internal/aqi"
)

// Standard Open Graph image dimensions.
const (
	Width  = 1200
	Height = 630
)

// Data holds the values rendered onto a share card.
type Data struct {
	Location    string
	Temperature float64
	AQI         float64
}

var (
	fontOnce    sync.Once
	fontErr     error
	faceRegular font.Face
	faceBig     font.Face
)

func loadFaces() {
	regular, err := opentype.Parse(goregular.TTF)
	if err != nil {
		fontErr = fmt.Errorf("parse regular font: %w", err)
		return
	}
	bold, err := opentype.Parse(gobold.TTF)
	if err != nil {
		fontErr = fmt.Errorf("parse bold font: %w", err)
		return
	}

	faceRegular, err = opentype.NewFace(regular, &opentype.FaceOptions{
		Size:    36,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		fontErr = fmt.Errorf("create regular face: %w", err)
		return
	}

	faceBig, err = opentype.NewFace(bold, &opentype.FaceOptions{
		Size:    120,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		fontErr = fmt.Errorf("create display face: %w", err)
	}
}

// Generate renders a share card and returns it as PNG bytes.
func Generate(d Data) ([]byte, error) {
	fontOnce.Do(loadFaces)
	if fontErr != nil {
		return nil, fontErr
	}

	img := image.NewRGBA(image.Rect(0, 0, Width, Height))
	tint := parseHexColor(aqi.Color(d.AQI))
	drawBackground(img, tint)
	drawBottomShade(img)

	white := color.RGBA{255, 255, 255, 255}
	gray := color.RGBA{209, 213, 219, 255}

	drawText(img, "IcoHealth", 60, 80, faceRegular, gray)
	drawText(img, fmt.Sprintf("%.1f°C", d.Temperature), 60, Height-180, faceBig, white)
	if d.Location != "" {
		drawText(img, d.Location, 60, Height-80, faceRegular, white)
	}

	// AQI swatch plus label, bottom left.
	swatch := image.Rect(60, Height-56, 88, Height-28)
	draw.Draw(img, swatch, image.NewUniform(tint), image.Point{}, draw.Src)
	label := fmt.Sprintf("AQI %.0f · %s", d.AQI, aqi.Label(d.AQI))
	drawText(img, label, 104, Height-30, faceRegular, gray)

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode share card: %w", err)
	}
	return buf.Bytes(), nil
}

// drawBackground fills the image with a vertical gradient from a dark
// base toward a dimmed shade of the AQI tint.
func drawBackground(img *image.RGBA, tint color.RGBA) {
	bounds := img.Bounds()
	h := bounds.Dy()
	for y := 0; y < h; y++ {
		progress := float64(y) / float64(h-1)
		c := color.RGBA{
			R: uint8(18 + progress*0.45*float64(tint.R)),
			G: uint8(18 + progress*0.45*float64(tint.G)),
			B: uint8(24 + progress*0.45*float64(tint.B)),
			A: 255,
		}
		for x := 0; x < bounds.Dx(); x++ {
			img.SetRGBA(x, y, c)
		}
	}
}

// drawBottomShade darkens the lower band of the image so the text
// stays readable over bright tints.
func drawBottomShade(img *image.RGBA) {
	bounds := img.Bounds()
	h := bounds.Dy()
	const shadeHeight = 300
	for y := h - shadeHeight; y < h; y++ {
		progress := float64(y-(h-shadeHeight)) / float64(shadeHeight)
		alpha := progress * progress * 0.85
		for x := 0; x < bounds.Dx(); x++ {
			orig := img.RGBAAt(x, y)
			img.SetRGBA(x, y, color.RGBA{
				R: uint8(float64(orig.R) * (1 - alpha)),
				G: uint8(float64(orig.G) * (1 - alpha)),
				B: uint8(float64(orig.B) * (1 - alpha)),
				A: 255,
			})
		}
	}
}

// drawText renders a string with its baseline at (x, y).
func drawText(img *image.RGBA, text string, x, y int, face font.Face, col color.Color) {
	d := font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(col),
		Face: face,
		Dot:  fixed.Point26_6{X: fixed.I(x), Y: fixed.I(y)},
	}
	d.DrawString(text)
}

// parseHexColor converts a #rrggbb string to an RGBA color. Malformed
// input falls back to a neutral gray.
func parseHexColor(s string) color.RGBA {
	s = strings.TrimPrefix(s, "#")
	var r, g, b uint8
	if _, err := fmt.Sscanf(s, "%02x%02x%02x", &r, &g, &b); err != nil {
		return color.RGBA{64, 64, 64, 255}
	}
	return color.RGBA{r, g, b, 255}
}
