// Package datafile writes the acquisition log: a commented header block,
// one tab-delimited line per sample, and a stop-timestamp footer. The
// file is append-only; prior content is never rewritten.
package datafile

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/jhau/s7150duo/internal/errors"
)

// Timestamps match the original log format (ctime style).
const timeLayout = time.ANSIC

// Record is one acquired sample. The reading strings are the verbatim
// instrument text including embedded unit/mode/error-flag characters;
// they are never re-parsed here.
type Record struct {
	Minutes  float64
	Reading1 string
	Reading2 string
}

type syncer interface {
	Sync() error
}

// Writer appends the acquisition log to its underlying stream. It is
// not safe for concurrent use; the acquisition loop is single-threaded.
type Writer struct {
	buf        *bufio.Writer
	file       syncer
	closer     io.Closer
	wroteHead  bool
	wroteFoot  bool
	numRecords int
}

// Create opens path for writing, truncating any existing content. The
// overwrite decision is made by the caller before this point.
func Create(path string) (*Writer, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, errors.New().Wrap(ErrCreateFailed, err).WithData(path)
	}

	w := NewWriter(f)
	w.file = f
	w.closer = f

	return w, nil
}

// NewWriter returns a Writer over an arbitrary stream. Flush degrades to
// a buffered flush when the stream cannot sync.
func NewWriter(w io.Writer) *Writer {
	return &Writer{buf: bufio.NewWriter(w)}
}

// WriteHeader writes the header block. It must be called exactly once,
// before any record.
func (w *Writer) WriteHeader(program, version, comment string, start time.Time) error {
	errFactory := errors.New()

	if w.wroteHead {
		return errFactory.New(ErrHeaderTwice)
	}

	fmt.Fprintf(w.buf, "# %s %s\n", program, version)
	fmt.Fprintf(w.buf, "# %s\n", comment)
	fmt.Fprintf(w.buf, "# Acquisition start: %s\n", start.Format(timeLayout))
	fmt.Fprintf(w.buf, "# min\treadout  errflag  unit  mode  unit mode\n")

	if err := w.buf.Flush(); err != nil {
		return errFactory.Wrap(ErrWriteFailed, err)
	}
	w.wroteHead = true

	return nil
}

// Append writes one sample line. The header must exist and the footer
// must not.
func (w *Writer) Append(rec Record) error {
	errFactory := errors.New()

	if !w.wroteHead {
		return errFactory.New(ErrNoHeader)
	}
	if w.wroteFoot {
		return errFactory.New(ErrAfterFooter)
	}

	if _, err := fmt.Fprintf(w.buf, "%.4f\t%s\t%s\n", rec.Minutes, rec.Reading1, rec.Reading2); err != nil {
		return errFactory.Wrap(ErrWriteFailed, err)
	}
	w.numRecords++

	return nil
}

// WriteFooter writes the stop timestamp. Exactly once, after the loop.
func (w *Writer) WriteFooter(stop time.Time) error {
	errFactory := errors.New()

	if !w.wroteHead {
		return errFactory.New(ErrNoHeader)
	}
	if w.wroteFoot {
		return errFactory.New(ErrFooterTwice)
	}

	if _, err := fmt.Fprintf(w.buf, "# Acquisition stop: %s\n", stop.Format(timeLayout)); err != nil {
		return errFactory.Wrap(ErrWriteFailed, err)
	}
	w.wroteFoot = true

	return w.Flush()
}

// Flush forces buffered lines to the stream and, when backed by a file,
// syncs them to stable storage. Callable any number of times,
// independent of program exit.
func (w *Writer) Flush() error {
	errFactory := errors.New()

	if err := w.buf.Flush(); err != nil {
		return errFactory.Wrap(ErrWriteFailed, err)
	}
	if w.file != nil {
		if err := w.file.Sync(); err != nil {
			return errFactory.Wrap(ErrSyncFailed, err)
		}
	}

	return nil
}

// NumRecords reports how many sample lines have been appended.
func (w *Writer) NumRecords() int {
	return w.numRecords
}

// Close flushes and releases the underlying file, if any.
func (w *Writer) Close() error {
	if err := w.Flush(); err != nil {
		if w.closer != nil {
			w.closer.Close()
		}
		return err
	}
	if w.closer != nil {
		return w.closer.Close()
	}

	return nil
}
