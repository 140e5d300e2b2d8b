package clipboard

import (
	"bytes"
	"fmt"
	"image/png"

	"golang.design/x/clipboard"

	"github.com/clipv/clipv/internal/types"
)

// designBackend reads and writes the platform clipboard through
// golang.design/x/clipboard. Images travel as PNG bytes; dimensions
// are recovered from the PNG header for the item metadata.
type designBackend struct{}

// newDesignBackend initializes the native clipboard. Init is called
// here rather than in an init() func so client-only invocations never
// touch the display server.
func newDesignBackend() (Backend, error) {
	if err := clipboard.Init(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return &designBackend{}, nil
}

func (b *designBackend) Name() string { return "native" }

// Read prefers image content over text, matching the priority the
// platform gives a copied screenshot that also exposes a text form.
func (b *designBackend) Read() (types.Item, error) {
	if data := clipboard.Read(clipboard.FmtImage); len(data) > 0 {
		width, height := pngSize(data)
		return types.NewImage(width, height, "png", data), nil
	}
	if data := clipboard.Read(clipboard.FmtText); len(data) > 0 {
		return types.NewText(string(data)), nil
	}
	return types.Item{}, ErrEmpty
}

func (b *designBackend) Write(item types.Item) error {
	switch item.Kind {
	case types.KindText:
		clipboard.Write(clipboard.FmtText, []byte(item.Text))
		return nil
	case types.KindImage:
		if item.Image == nil {
			return ErrUnsupported
		}
		clipboard.Write(clipboard.FmtImage, item.Image.Data)
		return nil
	default:
		return ErrUnsupported
	}
}

// pngSize decodes only the PNG header. A malformed image still gets
// recorded; it just renders as 0x0.
func pngSize(data []byte) (width, height int) {
	cfg, err := png.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return 0, 0
	}
	return cfg.Width, cfg.Height
}
