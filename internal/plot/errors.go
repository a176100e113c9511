package plot

import "github.com/jhau/s7150duo/internal/errors"

const (
	ErrPipeWrite   = errors.ErrorCode("plot_pipe_write_failed")
	ErrProcessExit = errors.ErrorCode("plot_process_exit_failed")
)
