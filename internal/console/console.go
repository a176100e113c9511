// Package console owns the two pieces of terminal interaction: the
// overwrite confirmation prompt and the raw-mode quit-key watcher that
// gives the acquisition loop a non-blocking cancellation check.
package console

import (
	"bufio"
	"fmt"
	"io"

	"github.com/pkg/term"

	"github.com/jhau/s7150duo/internal/errors"
	"github.com/jhau/s7150duo/internal/logger"
)

const keyEscape = 0x1b

// ConfirmOverwrite asks whether an existing data file may be replaced.
// Only 'y' or 'Y' confirms; anything else aborts.
func ConfirmOverwrite(path string, in io.Reader, out io.Writer) bool {
	fmt.Fprintf(out, "\a\nFile '%s' exists - Overwrite? [Y/*] ", path)

	r := bufio.NewReader(in)
	key, err := r.ReadByte()
	if err != nil {
		return false
	}

	return key == 'y' || key == 'Y'
}

// Keyboard watches the controlling terminal for keypresses without
// blocking the caller. A nil Keyboard is valid and never reports a key,
// which is how non-interactive sessions run.
type Keyboard struct {
	tty  *term.Term
	keys chan byte
}

// OpenKeyboard puts the controlling terminal into raw mode and starts a
// watcher goroutine that forwards keypresses to an internal channel.
func OpenKeyboard() (*Keyboard, error) {
	tty, err := term.Open("/dev/tty")
	if err != nil {
		return nil, errors.New().Wrap(ErrNoTerminal, err)
	}

	if err := tty.SetRaw(); err != nil {
		tty.Close()
		return nil, errors.New().Wrap(ErrRawMode, err)
	}

	k := &Keyboard{
		tty:  tty,
		keys: make(chan byte, 8),
	}
	go k.watch()

	return k, nil
}

func (k *Keyboard) watch() {
	buf := make([]byte, 1)
	for {
		n, err := k.tty.Read(buf)
		if err != nil {
			close(k.keys)
			return
		}
		if n == 0 {
			continue
		}
		select {
		case k.keys <- buf[0]:
		default:
			// Drop the key rather than stall the watcher.
		}
	}
}

// Poll returns the next pending keypress, if any, without blocking.
func (k *Keyboard) Poll() (byte, bool) {
	if k == nil {
		return 0, false
	}
	select {
	case key, ok := <-k.keys:
		return key, ok
	default:
		return 0, false
	}
}

// QuitRequested reports whether a pending keypress asks to stop the
// acquisition ('q', 'Q' or escape).
func (k *Keyboard) QuitRequested() bool {
	key, ok := k.Poll()
	return ok && isQuitKey(key)
}

// WaitKey blocks until any key is pressed. Used to hold the plot window
// open after the acquisition finishes.
func (k *Keyboard) WaitKey() {
	if k == nil {
		return
	}
	<-k.keys
}

// Close restores the terminal settings.
func (k *Keyboard) Close() {
	if k == nil {
		return
	}
	if err := k.tty.Restore(); err != nil {
		logger.Warn().Msgf("Failed to restore terminal settings: %v", err)
	}
	k.tty.Close()
}

func isQuitKey(key byte) bool {
	return key == 'q' || key == 'Q' || key == keyEscape
}
