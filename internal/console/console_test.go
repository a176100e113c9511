package console

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfirmOverwrite(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{"lowercase yes", "y\n", true},
		{"uppercase yes", "Y\n", true},
		{"no", "n\n", false},
		{"anything else", "x\n", false},
		{"bare newline", "\n", false},
		{"empty input", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			got := ConfirmOverwrite("run.dat", strings.NewReader(tt.input), &out)

			assert.Equal(t, tt.want, got)
			assert.Contains(t, out.String(), "File 'run.dat' exists - Overwrite? [Y/*]")
		})
	}
}

func TestNilKeyboardIsSafe(t *testing.T) {
	var k *Keyboard

	key, ok := k.Poll()
	assert.Zero(t, key)
	assert.False(t, ok)
	assert.False(t, k.QuitRequested())
	k.WaitKey()
	k.Close()
}

func TestQuitRequested(t *testing.T) {
	k := &Keyboard{keys: make(chan byte, 8)}

	assert.False(t, k.QuitRequested(), "no pending key")

	k.keys <- 'a'
	assert.False(t, k.QuitRequested(), "'a' is not a quit key")

	for _, key := range []byte{'q', 'Q', keyEscape} {
		k.keys <- key
		assert.True(t, k.QuitRequested())
	}
}

func TestPollDoesNotBlock(t *testing.T) {
	k := &Keyboard{keys: make(chan byte, 8)}

	key, ok := k.Poll()
	assert.Zero(t, key)
	assert.False(t, ok)

	k.keys <- 'x'
	key, ok = k.Poll()
	assert.True(t, ok)
	assert.Equal(t, byte('x'), key)
}

func TestPollAfterWatcherExit(t *testing.T) {
	k := &Keyboard{keys: make(chan byte, 8)}
	close(k.keys)

	_, ok := k.Poll()
	assert.False(t, ok)
	assert.False(t, k.QuitRequested())
}
