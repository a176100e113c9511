// Package plot mirrors the acquisition on a live gnuplot window, fed
// through a text command pipe. The data file itself is the transfer
// medium: every redraw re-reads it, so the plot can never run ahead of
// what has been flushed to disk.
package plot

import (
	"fmt"
	"io"
	"os/exec"

	"github.com/jhau/s7150duo/internal/errors"
	"github.com/jhau/s7150duo/internal/logger"
)

// Axis labels one y-axis: the GPIB address of the instrument feeding it
// and the physical unit of its readings.
type Axis struct {
	Address int
	Unit    string
}

// Bridge drives one gnuplot process. A disabled bridge is valid and all
// its methods are no-ops, so callers never branch on plot availability.
type Bridge struct {
	w        io.Writer
	closer   io.Closer
	cmd      *exec.Cmd
	dataPath string
	y1, y2   Axis
	enabled  bool
}

// Disabled returns a bridge that ignores all commands.
func Disabled() *Bridge {
	return &Bridge{}
}

// New builds a bridge over an already-open command stream and sends the
// display defaults: mouse mode, line style, grid, axis labels and a
// second y-axis for the second instrument.
func New(w io.Writer, dataPath string, y1, y2 Axis) *Bridge {
	b := &Bridge{
		w:        w,
		dataPath: dataPath,
		y1:       y1,
		y2:       y2,
		enabled:  true,
	}

	fmt.Fprintf(w, "set mouse;set mouse labels; set style data lines; set title '%s'\n", dataPath)
	fmt.Fprintf(w, "set grid xt; set grid yt; set xlabel 'min'; set ylabel '%s'\n", y1.Unit)
	fmt.Fprintf(w, "set y2label '%s'; set y2tics\n", y2.Unit)

	return b
}

// Launch starts the external gnuplot process and connects a bridge to
// its stdin. If the process cannot be launched the session continues
// without plotting: the returned bridge is disabled, not an error.
func Launch(gnuplot, dataPath string, y1, y2 Axis) *Bridge {
	cmd := exec.Command(gnuplot)

	stdin, err := cmd.StdinPipe()
	if err != nil {
		logger.Warn().Msgf("Cannot launch %s, will continue \"as is\": %v", gnuplot, err)
		return Disabled()
	}

	if err := cmd.Start(); err != nil {
		logger.Warn().Msgf("Cannot launch %s, will continue \"as is\": %v", gnuplot, err)
		stdin.Close()
		return Disabled()
	}

	b := New(stdin, dataPath, y1, y2)
	b.closer = stdin
	b.cmd = cmd

	return b
}

// Enabled reports whether a gnuplot process is attached.
func (b *Bridge) Enabled() bool {
	return b.enabled
}

// Replot redraws both traces from the data file. Instrument 1 is column
// 2 and instrument 2 column 5, the raw readings splitting into
// sub-fields on the gnuplot side.
func (b *Bridge) Replot() error {
	if !b.enabled {
		return nil
	}

	_, err := fmt.Fprintf(b.w, "plot '%s' using 1:2 title '%d: %s', '' using 1:5 title '%d: %s'\n",
		b.dataPath, b.y1.Address, b.y1.Unit, b.y2.Address, b.y2.Unit)
	if err != nil {
		return errors.New().Wrap(ErrPipeWrite, err)
	}

	return nil
}

// Close shuts the command pipe and reaps the gnuplot process.
func (b *Bridge) Close() error {
	if !b.enabled {
		return nil
	}
	b.enabled = false

	if b.closer != nil {
		b.closer.Close()
	}
	if b.cmd != nil {
		if err := b.cmd.Wait(); err != nil {
			return errors.New().Wrap(ErrProcessExit, err)
		}
	}

	return nil
}
