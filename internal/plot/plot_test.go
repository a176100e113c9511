package plot_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhau/s7150duo/internal/errors"
	"github.com/jhau/s7150duo/internal/plot"
)

func TestNewSendsDisplayDefaults(t *testing.T) {
	var buf bytes.Buffer

	b := plot.New(&buf, "run.dat",
		plot.Axis{Address: 16, Unit: "V"},
		plot.Axis{Address: 12, Unit: "mA"},
	)
	require.True(t, b.Enabled())

	out := buf.String()
	assert.Contains(t, out, "set mouse;set mouse labels; set style data lines; set title 'run.dat'\n")
	assert.Contains(t, out, "set grid xt; set grid yt; set xlabel 'min'; set ylabel 'V'\n")
	assert.Contains(t, out, "set y2label 'mA'; set y2tics\n")
}

func TestReplotCommand(t *testing.T) {
	var buf bytes.Buffer

	b := plot.New(&buf, "run.dat",
		plot.Axis{Address: 16, Unit: "V"},
		plot.Axis{Address: 12, Unit: "mA"},
	)
	buf.Reset()

	require.NoError(t, b.Replot())
	assert.Equal(t,
		"plot 'run.dat' using 1:2 title '16: V', '' using 1:5 title '12: mA'\n",
		buf.String())
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, assert.AnError
}

func TestReplotPipeError(t *testing.T) {
	b := plot.New(failingWriter{}, "run.dat", plot.Axis{}, plot.Axis{})

	err := b.Replot()
	require.Error(t, err)
	assert.Equal(t, plot.ErrPipeWrite, errors.CodeOf(err))
}

func TestDisabledBridgeIsInert(t *testing.T) {
	b := plot.Disabled()

	assert.False(t, b.Enabled())
	assert.NoError(t, b.Replot())
	assert.NoError(t, b.Close())
}

func TestLaunchFailureDisablesPlot(t *testing.T) {
	b := plot.Launch("/nonexistent/gnuplot", "run.dat", plot.Axis{}, plot.Axis{})

	assert.False(t, b.Enabled())
	assert.NoError(t, b.Replot())
	assert.NoError(t, b.Close())
}
