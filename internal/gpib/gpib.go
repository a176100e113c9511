// Package gpib binds a GPIB instrument address through a Prologix
// GPIB-USB controller attached to a serial port. Each instrument gets
// its own adapter, so a connection owns both the serial port and the
// controller bound to it.
package gpib

import (
	"time"

	"github.com/gotmc/prologix"
	"go.bug.st/serial"

	"github.com/jhau/s7150duo/internal/errors"
	"github.com/jhau/s7150duo/internal/logger"
)

const (
	baudRate = 115200

	// readTimeout is the fixed per-connection bus timeout applied at
	// dial time. There is no per-read timeout beyond this.
	readTimeout = time.Second
)

// Conn is an open binding to one instrument on the bus.
type Conn struct {
	port serial.Port
	ctrl *prologix.Controller
	addr int
}

// Dial opens the serial port of the Prologix adapter and binds the
// controller to the given GPIB primary address. Read-after-write stays
// off; the instrument driver decides when the bus is read.
func Dial(device string, addr int) (*Conn, error) {
	errFactory := errors.New()

	port, err := serial.Open(device, &serial.Mode{
		BaudRate: baudRate,
		DataBits: 8,
		StopBits: serial.OneStopBit,
		Parity:   serial.NoParity,
	})
	if err != nil {
		return nil, errFactory.Wrap(ErrDialFailed, err).WithData(device)
	}

	if err := port.SetReadTimeout(readTimeout); err != nil {
		port.Close()
		return nil, errFactory.Wrap(ErrDialFailed, err).WithData(device)
	}

	ctrl, err := prologix.NewController(port, addr, false)
	if err != nil {
		port.Close()
		return nil, errFactory.Wrap(ErrAddressBind, err).WithData(addr)
	}

	logger.Debug().Msgf("Bound GPIB address %d via %s", addr, device)

	return &Conn{port: port, ctrl: ctrl, addr: addr}, nil
}

// Address returns the GPIB primary address this connection is bound to.
func (c *Conn) Address() int {
	return c.addr
}

// WriteString sends a command string to the instrument.
func (c *Conn) WriteString(s string) error {
	if err := c.ctrl.Command("%s", s); err != nil {
		return errors.New().Wrap(ErrWriteFailed, err).WithData(c.addr)
	}

	return nil
}

// Read reads instrument output into p and returns the byte count.
func (c *Conn) Read(p []byte) (int, error) {
	n, err := c.ctrl.Read(p)
	if err != nil {
		return n, errors.New().Wrap(ErrReadFailed, err).WithData(c.addr)
	}

	return n, nil
}

// Clear sends the Selected Device Clear message to the instrument.
func (c *Conn) Clear() error {
	if err := c.ctrl.ClearDevice(); err != nil {
		return errors.New().Wrap(ErrWriteFailed, err).WithData(c.addr)
	}

	return nil
}

// Local returns the instrument to front-panel control.
func (c *Conn) Local() error {
	if err := c.ctrl.FrontPanel(true); err != nil {
		return errors.New().Wrap(ErrWriteFailed, err).WithData(c.addr)
	}

	return nil
}

// Close releases the serial port of the adapter.
func (c *Conn) Close() error {
	if err := c.port.Close(); err != nil {
		return errors.New().Wrap(ErrCloseFailed, err).WithData(c.addr)
	}

	return nil
}
