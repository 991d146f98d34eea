package service

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"strconv"
	"strings"

	"github.com/skip2/go-qrcode"

	"github.com/iliyamo/shoe-workshop/internal/config"
)

const pngDataURLPrefix = "data:image/png;base64,"

var qrLevels = map[string]qrcode.RecoveryLevel{
	"L": qrcode.Low,
	"M": qrcode.Medium,
	"Q": qrcode.High,
	"H": qrcode.Highest,
}

// QRGenerator renders batch QR codes as PNG data URLs.  Output depends only
// on the batch id and the configuration.
type QRGenerator struct {
	level  qrcode.RecoveryLevel
	margin int
	width  int
	dark   color.Color
	light  color.Color
}

// NewQRGenerator validates cfg.
func NewQRGenerator(cfg config.QRConfig) (*QRGenerator, error) {
	level, ok := qrLevels[strings.ToUpper(cfg.Level)]
	if !ok {
		return nil, fmt.Errorf("qr: unknown error correction level %q", cfg.Level)
	}
	dark, err := parseHexColor(cfg.Dark)
	if err != nil {
		return nil, err
	}
	light, err := parseHexColor(cfg.Light)
	if err != nil {
		return nil, err
	}
	if cfg.Margin < 0 {
		cfg.Margin = 0
	}
	if cfg.Width < 21 {
		return nil, fmt.Errorf("qr: width %d too small", cfg.Width)
	}
	return &QRGenerator{level: level, margin: cfg.Margin, width: cfg.Width, dark: dark, light: light}, nil
}

// parseHexColor accepts #RGB and #RRGGBB.
func parseHexColor(s string) (color.Color, error) {
	h := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(h) == 3 {
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
	}
	if len(h) != 6 {
		return nil, fmt.Errorf("qr: invalid colour %q", s)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return nil, fmt.Errorf("qr: invalid colour %q", s)
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, nil
}

// BatchPayload is the JSON encoded into a batch QR code.
type BatchPayload struct {
	BatchID uint64 `json:"batchId"`
}

// Batch returns the data URL of the QR code for batchID.
func (g *QRGenerator) Batch(batchID uint64) (string, error) {
	content, err := json.Marshal(BatchPayload{BatchID: batchID})
	if err != nil {
		return "", err
	}
	raw, err := g.PNG(string(content))
	if err != nil {
		return "", err
	}
	return pngDataURLPrefix + base64.StdEncoding.EncodeToString(raw), nil
}

// PNG encodes content as a square PNG of the configured width with a quiet
// zone of margin modules.
func (g *QRGenerator) PNG(content string) ([]byte, error) {
	q, err := qrcode.New(content, g.level)
	if err != nil {
		return nil, fmt.Errorf("qr: encode: %w", err)
	}
	q.DisableBorder = true
	bits := q.Bitmap()

	modules := len(bits) + 2*g.margin
	img := image.NewPaletted(image.Rect(0, 0, g.width, g.width), color.Palette{g.light, g.dark})
	for y := 0; y < g.width; y++ {
		my := y*modules/g.width - g.margin
		for x := 0; x < g.width; x++ {
			mx := x*modules/g.width - g.margin
			if my >= 0 && my < len(bits) && mx >= 0 && mx < len(bits) && bits[my][mx] {
				img.SetColorIndex(x, y, 1)
			}
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("qr: png: %w", err)
	}
	return buf.Bytes(), nil
}
