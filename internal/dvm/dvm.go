// Package dvm drives a Solartron 7150 (or 7150-plus) digital multimeter
// over a GPIB connection. The protocol is plain command strings; the
// instrument answers with a fixed-length text readout.
package dvm

import (
	"strings"
	"time"

	"github.com/jhau/s7150duo/internal/errors"
	"github.com/jhau/s7150duo/internal/logger"
)

const (
	// settleTime is the pause after the device-clear command before the
	// instrument accepts further setup.
	settleTime = 2 * time.Second

	// responseLen covers the 15 readout characters plus the terminator.
	responseLen = 16

	// cmdClear is the instrument-level clear. The 7150 reports an error
	// on DC1 at this point, so the short form is used during open.
	cmdClear = "A"

	// cmdInit selects CR as delimiter (U7), verbose output (N0) and
	// tracking mode (T1).
	cmdInit = "U7N0T1"

	// cmdReset is the reset-and-clear sequence sent on close.
	cmdReset = "DC1\nA\n"
)

// sleep is replaced in tests to avoid real settle delays.
var sleep = time.Sleep

// Conn is the bus binding the driver talks through.
type Conn interface {
	Address() int
	WriteString(s string) error
	Read(p []byte) (int, error)
	Clear() error
	Local() error
	Close() error
}

type state int

const (
	stateOpen state = iota
	stateConfigured
	stateClosed
)

// Device is an open handle to one multimeter. A Device is not shared
// across instruments and is not safe for concurrent use.
type Device struct {
	conn  Conn
	state state
	mode  Mode
}

// Open initialises the instrument on an established bus connection:
// device clear, a fixed settle pause, then the delimiter/verbosity/
// tracking setup string.
func Open(conn Conn) (*Device, error) {
	errFactory := errors.New()

	if err := conn.WriteString(cmdClear); err != nil {
		return nil, errFactory.Wrap(ErrOpenFailed, err).WithData(conn.Address())
	}
	sleep(settleTime)

	if err := conn.WriteString(cmdInit); err != nil {
		return nil, errFactory.Wrap(ErrOpenFailed, err).WithData(conn.Address())
	}

	logger.Debug().Msgf("Instrument at GPIB address %d initialised", conn.Address())

	return &Device{conn: conn, state: stateOpen}, nil
}

// Configure sets display state, measurement mode, range and integration
// time in a single command. The integration code is derived from the
// requested sampling frequency.
func (d *Device) Configure(displayOn bool, mode Mode, rng Range, freq float64) error {
	errFactory := errors.New()

	if d.state == stateClosed {
		return errFactory.WithData(ErrInvalidState, "configure on closed device")
	}
	if !mode.IsValid() {
		return errFactory.WithData(ErrInvalidMode, int(mode))
	}

	// The 7150 uses D1 to switch the display OFF.
	disp := 0
	if !displayOn {
		disp = 1
	}

	code := IntegrationCode(freq)
	cmd := commandString(disp, mode, rng, code)

	logger.Debug().Msgf("%.2f Hz -> using I%d (command %q)", freq, code, cmd)

	if err := d.conn.WriteString(cmd); err != nil {
		return errFactory.Wrap(ErrConfigureFailed, err).WithData(d.conn.Address())
	}

	d.state = stateConfigured
	d.mode = mode

	return nil
}

// Read returns one raw reading from the instrument. A nonzero delay
// sleeps delay tenths of a second first; zero means free-running and
// skips the sleep. The returned string is the instrument text verbatim,
// terminator stripped, with any embedded error-flag character passed
// through unparsed.
func (d *Device) Read(delayTenths int) (string, error) {
	errFactory := errors.New()

	if d.state != stateConfigured {
		return "", errFactory.WithData(ErrInvalidState, "read before configure")
	}

	if delayTenths > 0 {
		sleep(time.Duration(delayTenths) * 100 * time.Millisecond)
	}

	buf := make([]byte, responseLen)
	n, err := d.conn.Read(buf)
	if err != nil {
		return "", errFactory.Wrap(ErrReadFailed, err).WithData(d.conn.Address())
	}
	if n == 0 {
		return "", errFactory.WithData(ErrShortResponse, d.conn.Address())
	}

	return strings.TrimRight(string(buf[:n]), "\r\n"), nil
}

// Close resets the instrument, hands control back to the front panel and
// releases the bus connection. The device cannot be reused afterwards.
func (d *Device) Close() error {
	errFactory := errors.New()

	if d.state == stateClosed {
		return nil
	}
	d.state = stateClosed

	if err := d.conn.WriteString(cmdReset); err != nil {
		d.conn.Close()
		return errFactory.Wrap(ErrCloseFailed, err).WithData(d.conn.Address())
	}

	if err := d.conn.Local(); err != nil {
		d.conn.Close()
		return errFactory.Wrap(ErrCloseFailed, err).WithData(d.conn.Address())
	}

	return d.conn.Close()
}

// Address returns the GPIB address of the underlying connection.
func (d *Device) Address() int {
	return d.conn.Address()
}

// Mode returns the measurement mode set by the last Configure call.
func (d *Device) Mode() Mode {
	return d.mode
}

// IntegrationCode maps a sampling frequency to the 7150 integration
// setting: I0 = 6.7 ms, I1 = 40 ms, I3 = 400 ms, I4 = averaging.
func IntegrationCode(freq float64) int {
	switch {
	case freq > 10.0:
		return 0
	case freq > 1.5:
		return 1
	case freq < 0.25:
		return 4
	default:
		return 3
	}
}
