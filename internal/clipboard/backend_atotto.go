package clipboard

import (
	"fmt"

	"github.com/atotto/clipboard"

	"github.com/clipv/clipv/internal/types"
)

// atottoBackend shells out to the platform clipboard utilities via
// github.com/atotto/clipboard. Text only; used when the native backend
// cannot initialize.
type atottoBackend struct{}

func newAtottoBackend() Backend {
	return &atottoBackend{}
}

func (b *atottoBackend) Name() string { return "atotto" }

func (b *atottoBackend) Read() (types.Item, error) {
	text, err := clipboard.ReadAll()
	if err != nil {
		return types.Item{}, fmt.Errorf("clipboard: read: %w", err)
	}
	if text == "" {
		return types.Item{}, ErrEmpty
	}
	return types.NewText(text), nil
}

func (b *atottoBackend) Write(item types.Item) error {
	if item.Kind != types.KindText {
		return ErrUnsupported
	}
	return clipboard.WriteAll(item.Text)
}
