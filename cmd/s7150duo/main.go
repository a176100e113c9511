// Command s7150duo acquires data from two Solartron 7150 digital
// multimeters over GPIB, logging tab-delimited readings to a text file
// with an optional live gnuplot display.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/jhau/s7150duo/internal/acquire"
	"github.com/jhau/s7150duo/internal/config"
	"github.com/jhau/s7150duo/internal/console"
	"github.com/jhau/s7150duo/internal/datafile"
	"github.com/jhau/s7150duo/internal/dvm"
	"github.com/jhau/s7150duo/internal/errors"
	"github.com/jhau/s7150duo/internal/gpib"
	"github.com/jhau/s7150duo/internal/logger"
	"github.com/jhau/s7150duo/internal/pid"
	"github.com/jhau/s7150duo/internal/plot"
	"github.com/jhau/s7150duo/internal/telemetry"
)

const (
	program = "s7150duo"
	version = "v1.0.0"
)

// Exit codes: usage errors, then the two distinct failure classes
// callers script against.
const (
	exitUsage      = 1
	exitFile       = 4
	exitInstrument = 5
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		fmt.Fprintf(os.Stderr, "%s: %v\n'%s -h' for help.\n", program, err, program)
		return exitUsage
	}

	level := config.LogLevel(strings.ToLower(cfg.LogLevel))
	logger.Init(
		cfg.Debug || level == config.LogLevelDebug,
		cfg.Verbose || level == config.LogLevelInfo,
		logger.IsService(),
	)

	if err := pid.Write(); err != nil {
		logger.Error().Msgf("%v", err)
		return exitUsage
	}
	defer pid.Remove()

	// Existing file needs explicit confirmation unless -f was given.
	if _, err := os.Stat(cfg.DataFile); err == nil && !cfg.Overwrite {
		if !console.ConfirmOverwrite(cfg.DataFile, os.Stdin, os.Stderr) {
			return exitUsage
		}
	}

	out, err := datafile.Create(cfg.DataFile)
	if err != nil {
		logger.Error().Msgf("Could not open '%s' for writing: %v", cfg.DataFile, err)
		return exitFile
	}
	defer out.Close()

	mode1 := dvm.Mode(cfg.Mode1)
	mode2 := dvm.Mode(cfg.Mode2)

	bridge := plot.Disabled()
	if !cfg.NoGraph {
		bridge = plot.Launch(cfg.Gnuplot, cfg.DataFile,
			plot.Axis{Address: cfg.Address1, Unit: mode1.Unit()},
			plot.Axis{Address: cfg.Address2, Unit: mode2.Unit()},
		)
	}
	defer bridge.Close()

	keyboard, err := console.OpenKeyboard()
	if err != nil {
		logger.Info().Msgf("No interactive terminal, keyboard stop disabled: %v", err)
	}
	defer keyboard.Close()

	collector, err := telemetry.NewService(telemetry.Config{
		Enabled: cfg.Telemetry,
		DBPath:  cfg.TelemetryDB,
	})
	if err != nil {
		logger.Warn().Msgf("Telemetry mirror unavailable: %v", err)
		collector, _ = telemetry.NewService(telemetry.Config{})
	}
	defer collector.Close()

	dev1, dev2, err := openInstruments(cfg)
	if err != nil {
		logger.Error().Msgf("%v", err)
		fmt.Fprintln(os.Stderr, "Quit.")
		return exitInstrument
	}

	printBanner(cfg)

	start := time.Now()
	if err := out.WriteHeader(program, version, cfg.Comment, start); err != nil {
		logger.Error().Msgf("%v", err)
		closeInstruments(dev1, dev2)
		return exitFile
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	loop := &acquire.Loop{
		Instrument1:   dev1,
		Instrument2:   dev2,
		Output:        out,
		Plot:          bridge,
		Mirror:        collector,
		QuitRequested: keyboard.QuitRequested,
		Status:        os.Stdout,
		Delay:         cfg.Delay,
		FlushEvery:    cfg.FlushEvery,
		StopAfter:     cfg.StopAfter,
	}

	iterations, err := loop.Run(ctx)
	if err != nil {
		logger.Error().Msgf("%v", err)
		fmt.Fprintln(os.Stderr, "Quit.")
		if errors.CodeOf(err) == acquire.ErrInstrumentRead {
			return exitInstrument
		}
		return exitFile
	}
	logger.Info().Msgf("Acquired %d samples", iterations)

	if err := out.WriteFooter(time.Now()); err != nil {
		logger.Error().Msgf("%v", err)
		closeInstruments(dev1, dev2)
		return exitFile
	}

	if err := closeInstruments(dev1, dev2); err != nil {
		logger.Error().Msgf("%v", err)
		fmt.Fprintln(os.Stderr, "Quit.")
		return exitInstrument
	}

	// Hold the plot window open until a keypress so the final state
	// stays visible.
	if bridge.Enabled() && keyboard != nil {
		bridge.Replot()
		fmt.Println("\nAcquisition finished. Press any key to terminate graphic display and exit.")
		keyboard.WaitKey()
	}

	fmt.Println()
	return 0
}

// openInstruments binds, initialises and configures both multimeters.
// Any failure tears down whatever was already open; a half-open pair is
// never returned.
func openInstruments(cfg *config.Config) (dev1, dev2 *dvm.Device, err error) {
	conn1, err := gpib.Dial(cfg.Port1, cfg.Address1)
	if err != nil {
		return nil, nil, err
	}

	dev1, err = dvm.Open(conn1)
	if err != nil {
		conn1.Close()
		return nil, nil, err
	}

	conn2, err := gpib.Dial(cfg.Port2, cfg.Address2)
	if err != nil {
		dev1.Close()
		return nil, nil, err
	}

	dev2, err = dvm.Open(conn2)
	if err != nil {
		conn2.Close()
		dev1.Close()
		return nil, nil, err
	}

	half := acquire.HalfDelay(cfg.Delay)
	freq := acquire.SampleFrequency(half)

	if err := dev1.Configure(cfg.Display, dvm.Mode(cfg.Mode1), dvm.RangeAuto, freq); err != nil {
		closeInstruments(dev1, dev2)
		return nil, nil, err
	}
	if err := dev2.Configure(cfg.Display, dvm.Mode(cfg.Mode2), dvm.RangeAuto, freq); err != nil {
		closeInstruments(dev1, dev2)
		return nil, nil, err
	}

	return dev1, dev2, nil
}

func closeInstruments(dev1, dev2 *dvm.Device) error {
	err1 := dev1.Close()
	err2 := dev2.Close()
	if err1 != nil {
		return err1
	}
	return err2
}

func printBanner(cfg *config.Config) {
	fmt.Printf("\n GPIB address :  %d and %d", cfg.Address1, cfg.Address2)
	fmt.Printf("\n  Output file :  %s", cfg.DataFile)
	if cfg.Comment != "" {
		fmt.Printf("\n      Comment :  %s", cfg.Comment)
	}
	fmt.Printf("\n     Sampling :  %.1f s", float64(2*acquire.HalfDelay(cfg.Delay))/10.0)
	fmt.Printf("\n      Refresh :  %d", cfg.FlushEvery)
	if cfg.StopAfter > 0 {
		fmt.Printf("\n   Halt after :  %g min", cfg.StopAfter)
	}
	fmt.Printf("\n         Stop :  Press 'q' or ESC.\n")
	fmt.Printf("\n     Count           Time      Reading\n")
}
