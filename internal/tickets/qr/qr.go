package qr

import (
	"fmt"

	"github.com/skip2/go-qrcode"
)

// DefaultSize is the PNG edge length in pixels.
const DefaultSize = 256

type Generator struct {
	Size  int
	Level qrcode.RecoveryLevel
}

func NewGenerator() *Generator {
	return &Generator{Size: DefaultSize, Level: qrcode.Medium}
}

// PNG renders the ticket code as a QR image. Scanning it yields the code
// exactly as stored.
func (g *Generator) PNG(code string) ([]byte, error) {
	size := g.Size
	if size <= 0 {
		size = DefaultSize
	}
	png, err := qrcode.Encode(code, g.Level, size)
	if err != nil {
		return nil, fmt.Errorf("failed to encode QR for %s: %w", code, err)
	}
	return png, nil
}
