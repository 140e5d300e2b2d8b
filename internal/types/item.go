package types

import (
	"bytes"
	"fmt"
	"strings"
)

// Kind discriminates the clipboard content variants.
type Kind string

const (
	KindText  Kind = "text"
	KindImage Kind = "image"
)

// ImageData holds raw image bytes plus the metadata needed to
// re-offer the image to the platform clipboard.
type ImageData struct {
	Width  int    `cbor:"width" yaml:"width"`
	Height int    `cbor:"height" yaml:"height"`
	Format string `cbor:"format" yaml:"format"`
	Data   []byte `cbor:"data" yaml:"data"`
}

// Item is a tagged union of clipboard content. Exactly one of Text or
// Image is meaningful, selected by Kind. The zero Item is empty.
type Item struct {
	Kind  Kind       `cbor:"kind" yaml:"kind"`
	Text  string     `cbor:"text,omitempty" yaml:"text,omitempty"`
	Image *ImageData `cbor:"image,omitempty" yaml:"image,omitempty"`
}

// NewText returns a text item.
func NewText(s string) Item {
	return Item{Kind: KindText, Text: s}
}

// NewImage returns an image item.
func NewImage(width, height int, format string, data []byte) Item {
	return Item{Kind: KindImage, Image: &ImageData{
		Width:  width,
		Height: height,
		Format: format,
		Data:   data,
	}}
}

// Equal reports whether two items carry the same content. Comparison
// is by value: the kind tag plus the text string or the image bytes.
// Image dimensions follow from the bytes and do not participate.
func (i Item) Equal(other Item) bool {
	if i.Kind != other.Kind {
		return false
	}
	switch i.Kind {
	case KindText:
		return i.Text == other.Text
	case KindImage:
		if i.Image == nil || other.Image == nil {
			return i.Image == other.Image
		}
		return bytes.Equal(i.Image.Data, other.Image.Data)
	default:
		return true
	}
}

// Empty reports whether the item carries no recordable content:
// the zero item, whitespace-only text, or an image without bytes.
func (i Item) Empty() bool {
	switch i.Kind {
	case KindText:
		return strings.TrimSpace(i.Text) == ""
	case KindImage:
		return i.Image == nil || len(i.Image.Data) == 0
	default:
		return true
	}
}

// String renders the item for logs and CLI output. Text is shown
// verbatim, images by their dimensions.
func (i Item) String() string {
	switch i.Kind {
	case KindText:
		return i.Text
	case KindImage:
		if i.Image == nil {
			return "[image]"
		}
		return fmt.Sprintf("[image %dx%d]", i.Image.Width, i.Image.Height)
	default:
		return ""
	}
}
