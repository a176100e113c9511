package datafile_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhau/s7150duo/internal/datafile"
	"github.com/jhau/s7150duo/internal/errors"
)

var testStart = time.Date(2025, 8, 11, 14, 30, 0, 0, time.UTC)

func TestHeaderWrittenExactlyOnce(t *testing.T) {
	var buf bytes.Buffer
	w := datafile.NewWriter(&buf)

	require.NoError(t, w.WriteHeader("s7150duo", "v1.0.0", "test run", testStart))

	err := w.WriteHeader("s7150duo", "v1.0.0", "test run", testStart)
	require.Error(t, err)
	assert.Equal(t, datafile.ErrHeaderTwice, errors.CodeOf(err))

	assert.Equal(t, 1, strings.Count(buf.String(), "# s7150duo"))
}

func TestAppendRequiresHeader(t *testing.T) {
	w := datafile.NewWriter(&bytes.Buffer{})

	err := w.Append(datafile.Record{Minutes: 0.1})
	require.Error(t, err)
	assert.Equal(t, datafile.ErrNoHeader, errors.CodeOf(err))
}

func TestHeaderPrecedesRecords(t *testing.T) {
	var buf bytes.Buffer
	w := datafile.NewWriter(&buf)

	require.NoError(t, w.WriteHeader("s7150duo", "v1.0.0", "", testStart))
	require.NoError(t, w.Append(datafile.Record{Minutes: 0.1, Reading1: "a", Reading2: "b"}))
	require.NoError(t, w.Flush())

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 5)
	assert.Equal(t, "# s7150duo v1.0.0", lines[0])
	assert.Equal(t, "# Acquisition start: "+testStart.Format(time.ANSIC), lines[2])
	assert.Equal(t, "# min\treadout  errflag  unit  mode  unit mode", lines[3])
	assert.Equal(t, "0.1000\ta\tb", lines[4])
}

func TestFooterRules(t *testing.T) {
	var buf bytes.Buffer
	w := datafile.NewWriter(&buf)

	require.NoError(t, w.WriteHeader("s7150duo", "v1.0.0", "", testStart))
	require.NoError(t, w.WriteFooter(testStart.Add(2*time.Minute)))

	err := w.WriteFooter(testStart.Add(2 * time.Minute))
	require.Error(t, err)
	assert.Equal(t, datafile.ErrFooterTwice, errors.CodeOf(err))

	err = w.Append(datafile.Record{Minutes: 1})
	require.Error(t, err)
	assert.Equal(t, datafile.ErrAfterFooter, errors.CodeOf(err))

	assert.Equal(t, 1, strings.Count(buf.String(), "# Acquisition stop: "))
}

func TestRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.dat")

	w, err := datafile.Create(path)
	require.NoError(t, err)

	records := []datafile.Record{
		{Minutes: 0.0001, Reading1: " 1.99997 0 V  0", Reading2: " 0.12345 0 mA 0"},
		{Minutes: 0.5, Reading1: " 1.99912 0 V !0", Reading2: " 0.12346 0 mA 0"},
		{Minutes: 1.25, Reading1: " 1.99800 0 V  0", Reading2: " 0.12349 0 mA 0"},
	}

	stop := testStart.Add(90 * time.Second)
	require.NoError(t, w.WriteHeader("s7150duo", "v1.0.0", "cell discharge", testStart))
	for _, rec := range records {
		require.NoError(t, w.Append(rec))
	}
	require.NoError(t, w.WriteFooter(stop))
	require.NoError(t, w.Close())

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	log, err := datafile.ReadLog(f)
	require.NoError(t, err)

	assert.Equal(t, "s7150duo v1.0.0", log.Program)
	assert.Equal(t, "cell discharge", log.Comment)
	assert.Equal(t, testStart.Format(time.ANSIC), log.Start.Format(time.ANSIC))
	assert.Equal(t, stop.Format(time.ANSIC), log.Stop.Format(time.ANSIC))
	assert.Equal(t, records, log.Records)
}

func TestReadLogRejectsMalformedLine(t *testing.T) {
	in := strings.NewReader("# s7150duo v1.0.0\n0.1\tonly-two-fields\n")

	_, err := datafile.ReadLog(in)
	require.Error(t, err)
	assert.Equal(t, datafile.ErrParseFailed, errors.CodeOf(err))
}

func TestNumRecords(t *testing.T) {
	w := datafile.NewWriter(&bytes.Buffer{})
	require.NoError(t, w.WriteHeader("s7150duo", "v1.0.0", "", testStart))

	for i := 0; i < 7; i++ {
		require.NoError(t, w.Append(datafile.Record{Minutes: float64(i)}))
	}
	assert.Equal(t, 7, w.NumRecords())
}

func TestFlushIsRepeatable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.dat")
	w, err := datafile.Create(path)
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, w.WriteHeader("s7150duo", "v1.0.0", "", testStart))
	require.NoError(t, w.Append(datafile.Record{Minutes: 0.1, Reading1: "x", Reading2: "y"}))
	require.NoError(t, w.Flush())
	require.NoError(t, w.Flush())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "0.1000\tx\ty\n")
}
