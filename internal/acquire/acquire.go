// Package acquire runs the acquisition loop: two multimeters read in
// strict sequence, one sample record appended per iteration, periodic
// durable flushes and plot redraws. Everything happens on one control
// flow; the instruments are never accessed concurrently.
package acquire

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/jhau/s7150duo/internal/datafile"
	"github.com/jhau/s7150duo/internal/errors"
	"github.com/jhau/s7150duo/internal/logger"
	"github.com/jhau/s7150duo/internal/telemetry"
)

// Instrument is the slice of the multimeter driver the loop needs.
type Instrument interface {
	Read(delayTenths int) (string, error)
	Address() int
}

// Recorder is where sample records land.
type Recorder interface {
	Append(rec datafile.Record) error
	Flush() error
}

// Plotter redraws the live plot. A disabled plot bridge satisfies this
// with no-ops.
type Plotter interface {
	Replot() error
}

// Mirror is the optional secondary sample sink.
type Mirror interface {
	Record(ctx context.Context, sample *telemetry.Sample) error
}

// Loop drives one acquisition session. Fields other than the two
// instruments, the recorder and the plotter are optional.
type Loop struct {
	Instrument1 Instrument
	Instrument2 Instrument
	Output      Recorder
	Plot        Plotter
	Mirror      Mirror

	// QuitRequested is polled once per iteration; nil disables the
	// keyboard stop.
	QuitRequested func() bool

	// Status receives the per-iteration progress line.
	Status io.Writer

	// Now is replaced in tests.
	Now func() time.Time

	// Delay is the configured inter-sample delay in 0.1 s units. The
	// loop halves it and hands the half to each instrument read; the
	// total is an approximation, not synchronized sampling, and is
	// kept that way on purpose.
	Delay int

	// FlushEvery forces a durable flush and plot redraw every N
	// iterations.
	FlushEvery int

	// StopAfter stops the loop once elapsed minutes exceed it; zero
	// means no time-based stop.
	StopAfter float64
}

// HalfDelay returns the per-instrument read delay for a configured
// total delay, truncating like the original integer division.
func HalfDelay(delay int) int {
	return delay / 2
}

// SampleFrequency converts a per-instrument delay into the sampling
// frequency handed to the instrument setup. A zero delay means
// free-running; the +Inf result selects the fastest integration.
func SampleFrequency(halfDelay int) float64 {
	return 10.0 / float64(halfDelay)
}

// Run executes the loop until an instrument error, the time-based stop,
// a quit keypress or context cancellation. It returns the number of
// completed iterations; the error is non-nil only for instrument or
// recorder failures.
func (l *Loop) Run(ctx context.Context) (uint64, error) {
	errFactory := errors.New()

	if l.FlushEvery < 1 {
		return 0, errFactory.WithData(ErrBadFlushInterval, l.FlushEvery)
	}

	now := l.Now
	if now == nil {
		now = time.Now
	}
	status := l.Status
	if status == nil {
		status = io.Discard
	}

	half := HalfDelay(l.Delay)
	start := now()

	var iterations uint64
	for {
		reading1, err := l.Instrument1.Read(half)
		if err != nil {
			return iterations, errFactory.Wrap(ErrInstrumentRead, err).WithData(l.Instrument1.Address())
		}
		reading2, err := l.Instrument2.Read(half)
		if err != nil {
			return iterations, errFactory.Wrap(ErrInstrumentRead, err).WithData(l.Instrument2.Address())
		}

		elapsed := now().Sub(start).Minutes()
		rec := datafile.Record{Minutes: elapsed, Reading1: reading1, Reading2: reading2}

		if err := l.Output.Append(rec); err != nil {
			return iterations, errFactory.Wrap(ErrRecordWrite, err)
		}
		iterations++

		fmt.Fprintf(status, "%10d %10.2f min    %s\t%s\r", iterations, elapsed, reading1, reading2)

		if l.Mirror != nil {
			if err := l.Mirror.Record(ctx, &telemetry.Sample{
				SessionStart: start,
				Minutes:      elapsed,
				Reading1:     reading1,
				Reading2:     reading2,
			}); err != nil {
				logger.Warn().Msgf("Telemetry mirror failed: %v", err)
			}
		}

		stop := l.StopAfter > 0 && elapsed > l.StopAfter

		if iterations%uint64(l.FlushEvery) == 0 {
			if err := l.Output.Flush(); err != nil {
				return iterations, errFactory.Wrap(ErrFlushFailed, err)
			}
			if err := l.Plot.Replot(); err != nil {
				logger.Warn().Msgf("Plot redraw failed: %v", err)
			}
		}

		if l.QuitRequested != nil && l.QuitRequested() {
			logger.Info().Msg("Stop requested from keyboard")
			stop = true
		}

		select {
		case <-ctx.Done():
			logger.Info().Msg("Acquisition cancelled")
			stop = true
		default:
		}

		if stop {
			break
		}
	}

	// One more durable flush and redraw after the loop, so the file and
	// the plot always cover the final records.
	if err := l.Output.Flush(); err != nil {
		return iterations, errFactory.Wrap(ErrFlushFailed, err)
	}
	if err := l.Plot.Replot(); err != nil {
		logger.Warn().Msgf("Plot redraw failed: %v", err)
	}

	return iterations, nil
}
