package output

import (
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/atotto/clipboard"
	"github.com/micmonay/keybd_event"
)

// Delay between placing text on the clipboard and synthesising the paste
// chord. Clipboard managers need a moment to observe the new contents
// before the focused application reads them.
const pasteSettle = 50 * time.Millisecond

var _ Sink = (*Keyboard)(nil)

// Keyboard injects text into the focused window by staging it on the system
// clipboard and synthesising a paste chord (Ctrl+V, Cmd+V on darwin). The
// previous clipboard contents are restored afterwards when they could be
// read.
type Keyboard struct {
	mu sync.Mutex
	kb keybd_event.KeyBonding
}

// NewKeyboard prepares the virtual keyboard. On Linux this opens a uinput
// device, which needs a short warm-up before the first synthesised event is
// reliably delivered.
func NewKeyboard() (*Keyboard, error) {
	kb, err := keybd_event.NewKeyBonding()
	if err != nil {
		return nil, fmt.Errorf("output: virtual keyboard: %w", err)
	}
	if runtime.GOOS == "linux" {
		time.Sleep(2 * time.Second)
	}

	kb.SetKeys(keybd_event.VK_V)
	if runtime.GOOS == "darwin" {
		kb.HasSuper(true)
	} else {
		kb.HasCTRL(true)
	}
	return &Keyboard{kb: kb}, nil
}

// Type places text on the clipboard, pastes it into the focused window and
// restores the prior clipboard contents.
func (k *Keyboard) Type(text string) error {
	k.mu.Lock()
	defer k.mu.Unlock()

	previous, restoreErr := clipboard.ReadAll()

	if err := clipboard.WriteAll(text); err != nil {
		return fmt.Errorf("output: clipboard write: %w", err)
	}
	time.Sleep(pasteSettle)

	if err := k.kb.Launching(); err != nil {
		return fmt.Errorf("output: paste chord: %w", err)
	}
	time.Sleep(pasteSettle)

	if restoreErr == nil {
		if err := clipboard.WriteAll(previous); err != nil {
			return fmt.Errorf("output: clipboard restore: %w", err)
		}
	}
	return nil
}
